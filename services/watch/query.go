package watch

import (
	"net/url"
)

const (
	CanonicalPath = "/watch"
	PlayParam     = "play"
	YouTubeParam  = "youtube"
)

// Query holds the video ids taken from the watch url. They are passed to
// the fetchers as is, the fetchers report malformed ones.
type Query struct {
	Play    string
	YouTube string
}

func ParseQuery(v url.Values) Query {
	return Query{
		Play:    v.Get(PlayParam),
		YouTube: v.Get(YouTubeParam),
	}
}

func (q Query) Empty() bool {
	return q.Play == "" && q.YouTube == ""
}

type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceLocal
	SourceYouTube
)

func (s SourceKind) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceYouTube:
		return "youtube"
	default:
		return "none"
	}
}

// Source is the video driving the primary player.
type Source struct {
	Kind SourceKind
	ID   string
}

// Primary returns the single source of the player. YouTube wins when both
// ids are present.
func (q Query) Primary() Source {
	if q.YouTube != "" {
		return Source{Kind: SourceYouTube, ID: q.YouTube}
	}
	if q.Play != "" {
		return Source{Kind: SourceLocal, ID: q.Play}
	}
	return Source{Kind: SourceNone}
}

func LocalURL(id string) string {
	return CanonicalPath + "?" + PlayParam + "=" + url.QueryEscape(id)
}

func YouTubeURL(id string) string {
	return CanonicalPath + "?" + YouTubeParam + "=" + url.QueryEscape(id)
}
