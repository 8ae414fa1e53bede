package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	storageBackendFlag = "storage-backend"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

var ErrNotFound = errors.New("content not found")

func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = append(f,
		cli.StringFlag{
			Name:   storageBackendFlag,
			Usage:  "video content storage (local or s3)",
			Value:  BackendLocal,
			EnvVar: "STORAGE_BACKEND",
		},
	)
	f = registerLocalFlags(f)
	return registerS3Flags(f)
}

// Content tells how to deliver a video: either by redirect or from a local file.
type Content struct {
	RedirectURL string
	FilePath    string
}

type Storage interface {
	Locate(ctx context.Context, key string) (*Content, error)
}

func New(c *cli.Context) (Storage, error) {
	switch c.String(storageBackendFlag) {
	case BackendLocal:
		return NewLocal(c.String(storageRootFlag)), nil
	case BackendS3:
		return NewS3(c)
	default:
		return nil, errors.Errorf("unknown storage backend %v", c.String(storageBackendFlag))
	}
}
