package migration

import (
	"github.com/go-pg/migrations/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

const (
	migrationsDirFlag = "migrations-dir"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   migrationsDirFlag,
			Usage:  "directory with sql migrations",
			Value:  "migrations",
			EnvVar: "MIGRATIONS_DIR",
		},
	)
}

// PGMigration applies sql migrations of the video catalog.
type PGMigration struct {
	db  *cs.PG
	dir string
	col *migrations.Collection
}

func New(c *cli.Context, db *cs.PG) *PGMigration {
	return NewPGMigration(db, c.String(migrationsDirFlag))
}

func NewPGMigration(db *cs.PG, dir string) *PGMigration {
	return &PGMigration{
		db:  db,
		dir: dir,
		col: migrations.NewCollection(),
	}
}

// Run runs a go-pg migrations command (up, down, reset or version), up by default.
func (s *PGMigration) Run(a ...string) error {
	db := s.db.Get()
	if db == nil {
		log.Info("database not configured, skipping migration")
		return nil
	}
	if err := s.col.DiscoverSQLMigrations(s.dir); err != nil {
		return errors.Wrapf(err, "failed to discover migrations dir=%v", s.dir)
	}
	if _, _, err := s.col.Run(db, "init"); err != nil {
		return errors.Wrap(err, "failed to init migrations table")
	}
	oldVersion, newVersion, err := s.col.Run(db, a...)
	if err != nil {
		return errors.Wrapf(err, "failed to migrate from version %v to %v", oldVersion, newVersion)
	}
	la := log.WithField("version", newVersion)
	if newVersion != oldVersion {
		la.WithField("from", oldVersion).Info("database migrated")
	} else {
		la.Info("database is up to date")
	}
	return nil
}
