package common

import (
	"time"

	"github.com/urfave/cli"
)

var (
	DomainFlag        = "domain"
	SessionSecretFlag = "secret"
	FetchTimeoutFlag  = "fetch-timeout"
	MaxPlayersFlag    = "max-players"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = append(f,
		cli.StringFlag{
			Name:   DomainFlag,
			Usage:  "domain",
			Value:  "http://localhost:8080",
			EnvVar: "DOMAIN",
		},
		cli.StringFlag{
			Name:   SessionSecretFlag,
			Usage:  "session secret",
			Value:  "secret123",
			EnvVar: "SESSION_SECRET",
		},
		cli.DurationFlag{
			Name:   FetchTimeoutFlag,
			Usage:  "timeout for all data fetches of a single page",
			Value:  10 * time.Second,
			EnvVar: "FETCH_TIMEOUT",
		},
		cli.IntFlag{
			Name:   MaxPlayersFlag,
			Usage:  "max number of local players held by one browser session",
			Value:  4,
			EnvVar: "MAX_PLAYERS",
		},
	)

	return f
}
