package watch

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/watch-ui/services/catalog"
	"github.com/webtor-io/watch-ui/services/youtube"
)

type MetadataFetcher interface {
	GetVideo(ctx context.Context, id string) (*catalog.Video, error)
}

type RelatedLister interface {
	ListVideos(ctx context.Context) ([]catalog.Video, error)
}

type SuggestionSearcher interface {
	Search(ctx context.Context, query string) ([]youtube.Video, error)
}

type State int

const (
	StateAbsent State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "absent"
	}
}

// Result is the outcome of a single fetch.
type Result[T any] struct {
	State State
	Value T
	Err   error
}

func (r Result[T]) Succeeded() bool {
	return r.State == StateSuccess
}

func (r Result[T]) Failed() bool {
	return r.State == StateError
}

func done[T any](v T, err error) Result[T] {
	if err != nil {
		return Result[T]{State: StateError, Err: err}
	}
	return Result[T]{State: StateSuccess, Value: v}
}

// Loader runs the fetches of a watch page. Metadata and related videos are
// fetched concurrently, suggestions wait for metadata because the video
// name is their query.
type Loader struct {
	meta    MetadataFetcher
	related RelatedLister
	suggest SuggestionSearcher
}

// NewLoader accepts nil suggest, suggestions are then never fetched.
func NewLoader(meta MetadataFetcher, related RelatedLister, suggest SuggestionSearcher) *Loader {
	return &Loader{
		meta:    meta,
		related: related,
		suggest: suggest,
	}
}

// Load returns ctx error if a fetch was cut off by ctx, partial results
// are dropped then. Fetches that completed before ctx ended are kept.
func (s *Loader) Load(ctx context.Context, q Query) (*Page, error) {
	p := &Page{
		Query:  q,
		Source: q.Primary(),
	}
	if q.Play != "" {
		p.Metadata.State = StateLoading
	}
	p.Related.State = StateLoading

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.Related = s.loadRelated(ctx)
	}()
	go func() {
		defer wg.Done()
		p.Metadata = s.loadMetadata(ctx, q.Play)
		p.Suggestions = s.loadSuggestions(ctx, suggestionQuery(q, p.Metadata))
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil && p.interrupted() {
		return nil, errors.Wrap(err, "page load interrupted")
	}
	return p, nil
}

// interrupted reports whether any fetch was cut off by its context.
func (p *Page) interrupted() bool {
	for _, err := range []error{p.Metadata.Err, p.Related.Err, p.Suggestions.Err} {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true
		}
	}
	return false
}

func (s *Loader) loadMetadata(ctx context.Context, id string) Result[*catalog.Video] {
	if id == "" {
		return Result[*catalog.Video]{State: StateAbsent}
	}
	v, err := s.meta.GetVideo(ctx, id)
	if err != nil {
		log.WithError(err).WithField("video_id", id).Warn("failed to get video metadata")
	}
	return done(v, err)
}

func (s *Loader) loadRelated(ctx context.Context) Result[[]catalog.Video] {
	l, err := s.related.ListVideos(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to list related videos")
	}
	return done(l, err)
}

func (s *Loader) loadSuggestions(ctx context.Context, query string) Result[[]youtube.Video] {
	if s.suggest == nil || query == "" {
		return Result[[]youtube.Video]{State: StateAbsent}
	}
	l, err := s.suggest.Search(ctx, query)
	if err != nil {
		log.WithError(err).WithField("query", query).Warn("failed to search suggestions")
	}
	return done(l, err)
}

func suggestionQuery(q Query, meta Result[*catalog.Video]) string {
	if meta.Failed() {
		return ""
	}
	if meta.Succeeded() && meta.Value != nil && meta.Value.Name != "" {
		return meta.Value.Name
	}
	return q.YouTube
}
