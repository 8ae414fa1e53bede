package catalog

import (
	"context"
	"time"

	"github.com/webtor-io/lazymap"
	"github.com/webtor-io/watch-ui/services/common"
)

const (
	listKey        = "list"
	sharedTimeout  = 30 * time.Second
	errorExpire    = 5 * time.Second
	videosCapacity = 1000
)

// Cached wraps another Catalog and shares results of concurrent and
// closely following calls.
type Cached struct {
	inner  Catalog
	videos *lazymap.LazyMap[*Video]
	lists  *lazymap.LazyMap[[]Video]
}

// Ensure Cached implements Catalog
var _ Catalog = (*Cached)(nil)

// NewCached keeps results for expire and failures, not found included,
// for errorExpire. At most videosCapacity videos are kept, least recently
// used ones are dropped first.
func NewCached(inner Catalog, expire time.Duration) *Cached {
	return &Cached{
		inner: inner,
		videos: lazymap.New[*Video](&lazymap.Config{
			Expire:      expire,
			ErrorExpire: errorExpire,
			StoreErrors: true,
			Capacity:    videosCapacity,
		}),
		lists: lazymap.New[[]Video](&lazymap.Config{
			Expire:      expire,
			ErrorExpire: errorExpire,
			StoreErrors: true,
		}),
	}
}

func (s *Cached) GetName() string {
	return "Cached " + s.inner.GetName()
}

func (s *Cached) GetVideo(ctx context.Context, id string) (*Video, error) {
	return common.Shared(ctx, sharedTimeout, func(ctx context.Context) (*Video, error) {
		return s.videos.Get(id, func() (*Video, error) {
			return s.inner.GetVideo(ctx, id)
		})
	})
}

func (s *Cached) ListVideos(ctx context.Context) ([]Video, error) {
	return common.Shared(ctx, sharedTimeout, func(ctx context.Context) ([]Video, error) {
		return s.lists.Get(listKey, func() ([]Video, error) {
			return s.inner.ListVideos(ctx)
		})
	})
}
