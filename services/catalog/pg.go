package catalog

import (
	"context"

	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/watch-ui/models"
)

// PG reads videos from the storage backend database.
type PG struct {
	pg    *cs.PG
	limit int
}

// Ensure PG implements Catalog
var _ Catalog = (*PG)(nil)

func NewPG(pg *cs.PG, limit int) *PG {
	return &PG{
		pg:    pg,
		limit: limit,
	}
}

func (s *PG) GetName() string {
	return "PG"
}

func (s *PG) GetVideo(ctx context.Context, id string) (*Video, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database connection not available")
	}
	m, err := models.GetVideo(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	v := fromModel(m)
	return &v, nil
}

func (s *PG) ListVideos(ctx context.Context) ([]Video, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database connection not available")
	}
	ms, err := models.ListVideos(ctx, db, s.limit)
	if err != nil {
		return nil, err
	}
	res := make([]Video, 0, len(ms))
	for i := range ms {
		res = append(res, fromModel(&ms[i]))
	}
	return res, nil
}

func fromModel(m *models.Video) Video {
	return Video{
		ID:        m.VideoID,
		Name:      m.Name,
		Size:      m.SizeBytes,
		Duration:  m.DurationSec,
		MimeType:  m.MimeType,
		Thumbnail: m.Thumbnail,
		Path:      m.Path,
	}
}
