package catalog

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by GetVideo when the storage backend has no such file.
var ErrNotFound = errors.New("not found")

// Video describes a locally hosted video file.
type Video struct {
	ID        string   `json:"file_id"`
	Name      string   `json:"file_name"`
	Size      int64    `json:"size"`
	Duration  *float64 `json:"duration,omitempty"`
	MimeType  string   `json:"mime_type,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Path      string   `json:"path,omitempty"`
}

// StorageKey returns the key of the video content in storage.
func (v *Video) StorageKey() string {
	if v.Path != "" {
		return v.Path
	}
	return v.ID
}

// Catalog is the narrow contract of the storage backend metadata service.
type Catalog interface {
	// GetName returns the name of the catalog for logging purposes
	GetName() string
	// GetVideo returns metadata of a single video or ErrNotFound
	GetVideo(ctx context.Context, id string) (*Video, error)
	// ListVideos returns all videos available to the user in backend order
	ListVideos(ctx context.Context) ([]Video, error)
}
