package watch

import (
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	ws "github.com/webtor-io/watch-ui/services/watch"
)

func NewHelper() template.FuncMap {
	return template.FuncMap{
		"formatSize":     FormatSize,
		"formatDuration": FormatDuration,
		"localURL":       ws.LocalURL,
		"youtubeURL":     ws.YouTubeURL,
	}
}

func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

// FormatDuration returns an empty string for an unknown or zero duration.
func FormatDuration(sec *float64) string {
	if sec == nil || *sec <= 0 {
		return ""
	}
	d := time.Duration(*sec * float64(time.Second)).Round(time.Second)
	if d == 0 {
		return "0 seconds"
	}
	return durafmt.Parse(d).LimitFirstN(2).String()
}
