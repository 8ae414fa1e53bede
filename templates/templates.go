package templates

import "embed"

// FS holds layouts, views, partials and static assets of the web ui.
//
//go:embed layouts views partials assets
var FS embed.FS
