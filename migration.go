package main

import (
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/watch-ui/services/migration"
)

func makePGMigrationCMD() cli.Command {
	migrateCmd := cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrates video catalog database",
	}
	configurePGMigration(&migrateCmd)
	return migrateCmd
}

func configurePGMigration(c *cli.Command) {
	for _, a := range []struct {
		name  string
		alias string
		usage string
	}{
		{"up", "u", "Runs all available migrations"},
		{"down", "d", "Reverts last migration"},
		{"reset", "r", "Reverts all migrations"},
		{"version", "v", "Prints current db version"},
	} {
		action := a.name
		cmd := cli.Command{
			Name:    a.name,
			Aliases: []string{a.alias},
			Usage:   a.usage,
			Action: func(c *cli.Context) error {
				return pgMigrate(c, action)
			},
		}
		configureSubPGMigration(&cmd)
		c.Subcommands = append(c.Subcommands, cmd)
	}
}

func configureSubPGMigration(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = migration.RegisterFlags(c.Flags)
}

func pgMigrate(c *cli.Context, a ...string) error {
	// Setting DB
	db := cs.NewPG(c)
	defer db.Close()

	// Run
	return migration.New(c, db).Run(a...)
}
