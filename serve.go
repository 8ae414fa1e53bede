package main

import (
	"net/http"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/webtor-io/watch-ui/handlers/health"
	sess "github.com/webtor-io/watch-ui/handlers/session"
	sta "github.com/webtor-io/watch-ui/handlers/static"
	"github.com/webtor-io/watch-ui/handlers/stream"
	"github.com/webtor-io/watch-ui/handlers/video"
	wh "github.com/webtor-io/watch-ui/handlers/watch"
	"github.com/webtor-io/watch-ui/services/catalog"
	"github.com/webtor-io/watch-ui/services/common"
	"github.com/webtor-io/watch-ui/services/migration"
	"github.com/webtor-io/watch-ui/services/player"
	"github.com/webtor-io/watch-ui/services/storage"
	"github.com/webtor-io/watch-ui/services/template"
	"github.com/webtor-io/watch-ui/services/watch"
	w "github.com/webtor-io/watch-ui/services/web"
	"github.com/webtor-io/watch-ui/services/youtube"
	"github.com/webtor-io/watch-ui/templates"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = migration.RegisterFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = common.RegisterFlags(c.Flags)
	c.Flags = catalog.RegisterFlags(c.Flags)
	c.Flags = youtube.RegisterFlags(c.Flags)
	c.Flags = player.RegisterFlags(c.Flags)
	c.Flags = storage.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := migration.New(c, pg).Run()
	if err != nil {
		return err
	}

	// Setting template renderer
	re := multitemplate.NewRenderer()

	// Setting TemplateManager
	tm := template.NewManager(re, templates.FS)

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false
	r.HTMLRender = re

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting Session
	sess.RegisterHandler(c, r)

	// Setting Static
	err = sta.RegisterHandler(r, templates.FS)
	if err != nil {
		return err
	}

	// Setting Health
	health.RegisterHandler(r)

	// Setting Catalog
	cat, err := catalog.New(c, cl, pg)
	if err != nil {
		return err
	}

	// Setting YouTube
	var suggest watch.SuggestionSearcher
	if yt := youtube.New(c, cl); yt != nil {
		suggest = yt
	} else {
		log.Info("youtube api key not set, suggestions disabled")
	}

	// Setting Storage
	st, err := storage.New(c)
	if err != nil {
		return err
	}

	// Setting Player
	leases, closeLeases := player.NewStore(c)
	defer closeLeases()
	players := player.New(c, leases)
	tokens := player.NewTokens(c.String(common.SessionSecretFlag))

	// Setting WatchHandler
	wh.RegisterHandler(c, r, tm, watch.NewLoader(cat, cat, suggest), players, tokens)

	// Setting StreamHandler
	stream.RegisterHandler(r, cat, st, players, tokens)

	// Setting VideoHandler
	video.RegisterHandler(r, cat, suggest)

	// Render templates
	err = tm.Init()
	if err != nil {
		return err
	}

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
