package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

type Video struct {
	tableName struct{} `pg:"video"`

	VideoID     string    `pg:"video_id,pk"`
	Name        string    `pg:"name,notnull"`
	SizeBytes   int64     `pg:"size_bytes,notnull,use_zero"`
	DurationSec *float64  `pg:"duration_sec"`
	MimeType    string    `pg:"mime_type"`
	Thumbnail   string    `pg:"thumbnail"`
	Path        string    `pg:"path"`
	CreatedAt   time.Time `pg:"created_at,default:now()"`
}

func GetVideo(ctx context.Context, db *pg.DB, id string) (*Video, error) {
	var v Video
	err := db.Model(&v).
		Context(ctx).
		Where("video_id = ?", id).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch video")
	}
	return &v, nil
}

func ListVideos(ctx context.Context, db *pg.DB, limit int) ([]Video, error) {
	var vs []Video
	q := db.Model(&vs).
		Context(ctx).
		Order("created_at DESC", "video_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list videos")
	}
	return vs, nil
}

func UpsertVideo(ctx context.Context, db *pg.DB, v *Video) error {
	_, err := db.Model(v).
		Context(ctx).
		OnConflict("(video_id) DO UPDATE").
		Set(`
			name = EXCLUDED.name,
			size_bytes = EXCLUDED.size_bytes,
			duration_sec = EXCLUDED.duration_sec,
			mime_type = EXCLUDED.mime_type,
			thumbnail = EXCLUDED.thumbnail,
			path = EXCLUDED.path
		`).
		Insert()
	if err != nil {
		return errors.Wrap(err, "failed to upsert video")
	}
	return nil
}

func DeleteVideo(ctx context.Context, db *pg.DB, id string) error {
	_, err := db.Model((*Video)(nil)).
		Context(ctx).
		Where("video_id = ?", id).
		Delete()
	if err != nil {
		return errors.Wrap(err, "failed to delete video")
	}
	return nil
}
