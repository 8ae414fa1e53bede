package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	storageRootFlag = "storage-root"
)

func registerLocalFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   storageRootFlag,
			Usage:  "root dir of local video content",
			Value:  ".",
			EnvVar: "STORAGE_ROOT",
		},
	)
}

type Local struct {
	root string
}

// Ensure Local implements Storage
var _ Storage = (*Local)(nil)

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (s *Local) Locate(_ context.Context, key string) (*Content, error) {
	// keys never leave root
	p := filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+key)))
	st, err := os.Stat(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat content key=%v", key)
	}
	if st.IsDir() {
		return nil, ErrNotFound
	}
	return &Content{FilePath: p}, nil
}
