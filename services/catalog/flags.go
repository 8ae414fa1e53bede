package catalog

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

const (
	catalogBackendFlag  = "catalog-backend"
	catalogApiURLFlag   = "catalog-api-url"
	catalogApiTokenFlag = "catalog-api-token"
	catalogListLimit    = "catalog-list-limit"
	catalogExpireFlag   = "catalog-expire"
)

const (
	BackendAPI = "api"
	BackendPG  = "pg"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   catalogBackendFlag,
			Usage:  "catalog backend (api or pg)",
			Value:  BackendAPI,
			EnvVar: "CATALOG_BACKEND",
		},
		cli.StringFlag{
			Name:   catalogApiURLFlag,
			Usage:  "storage backend api url",
			Value:  "http://localhost:8081",
			EnvVar: "CATALOG_API_URL",
		},
		cli.StringFlag{
			Name:   catalogApiTokenFlag,
			Usage:  "storage backend api token",
			EnvVar: "CATALOG_API_TOKEN",
		},
		cli.IntFlag{
			Name:   catalogListLimit,
			Usage:  "max number of listed videos",
			Value:  100,
			EnvVar: "CATALOG_LIST_LIMIT",
		},
		cli.DurationFlag{
			Name:   catalogExpireFlag,
			Usage:  "how long catalog responses are reused",
			Value:  30 * time.Second,
			EnvVar: "CATALOG_EXPIRE",
		},
	)
}

// New builds the configured catalog backend wrapped into a Cached one.
func New(c *cli.Context, cl *http.Client, pg *cs.PG) (*Cached, error) {
	var inner Catalog
	switch c.String(catalogBackendFlag) {
	case BackendAPI:
		inner = NewApi(cl, c.String(catalogApiURLFlag), c.String(catalogApiTokenFlag))
	case BackendPG:
		if pg == nil {
			return nil, errors.New("pg catalog requires database")
		}
		inner = NewPG(pg, c.Int(catalogListLimit))
	default:
		return nil, errors.Errorf("unknown catalog backend %v", c.String(catalogBackendFlag))
	}
	return NewCached(inner, c.Duration(catalogExpireFlag)), nil
}
