package watch

import (
	"net/url"
)

// Canonicalize returns the canonical watch url for a request that reached
// the page by another path. Requests to CanonicalPath are never redirected,
// whatever their parameters, and every target has CanonicalPath, so a
// redirected request is accepted on the next pass.
func Canonicalize(path string, v url.Values) (string, bool) {
	if path == CanonicalPath {
		return "", false
	}
	q := ParseQuery(v)
	switch {
	case q.Play != "":
		return LocalURL(q.Play), true
	case q.YouTube != "":
		return YouTubeURL(q.YouTube), true
	default:
		return CanonicalPath, true
	}
}
