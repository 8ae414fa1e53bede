package watch

import (
	"github.com/webtor-io/watch-ui/services/catalog"
	"github.com/webtor-io/watch-ui/services/youtube"
)

type Page struct {
	Query       Query
	Source      Source
	Metadata    Result[*catalog.Video]
	Related     Result[[]catalog.Video]
	Suggestions Result[[]youtube.Video]
}

// Err returns the metadata error, the only one blocking the whole page.
func (p *Page) Err() error {
	if p.Metadata.Failed() {
		return p.Metadata.Err
	}
	return nil
}

// AutoSelect returns the url of the first related video with an id when
// the url selects nothing. Entries without id would select nothing again.
func (p *Page) AutoSelect() (string, bool) {
	if !p.Query.Empty() || !p.Related.Succeeded() {
		return "", false
	}
	for _, v := range p.Related.Value {
		if v.ID != "" {
			return LocalURL(v.ID), true
		}
	}
	return "", false
}

func (p *Page) Video() *catalog.Video {
	if p.Metadata.Succeeded() {
		return p.Metadata.Value
	}
	return nil
}

func (p *Page) CurrentID() string {
	if v := p.Video(); v != nil {
		return v.ID
	}
	return p.Query.Play
}

func (p *Page) EmbedURL() string {
	if p.Source.Kind != SourceYouTube {
		return ""
	}
	return youtube.EmbedURL(p.Source.ID)
}

// PlaysLocal reports whether the primary player shows the local video.
func (p *Page) PlaysLocal() bool {
	return p.Source.Kind == SourceLocal && p.Video() != nil
}
