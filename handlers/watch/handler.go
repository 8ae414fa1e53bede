package watch

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli"
	"github.com/webtor-io/watch-ui/services/common"
	"github.com/webtor-io/watch-ui/services/player"
	"github.com/webtor-io/watch-ui/services/template"
	ws "github.com/webtor-io/watch-ui/services/watch"
)

type Handler struct {
	loader     *ws.Loader
	players    *player.Manager
	tokens     *player.Tokens
	timeout    time.Duration
	maxPlayers int
	tb         *template.Builder
}

func RegisterHandler(c *cli.Context, r *gin.Engine, tm *template.Manager, l *ws.Loader, pm *player.Manager, tokens *player.Tokens) {
	h := newHandler(tm, l, pm, tokens, c.Duration(common.FetchTimeoutFlag), c.Int(common.MaxPlayersFlag))
	h.register(r)
}

func newHandler(tm *template.Manager, l *ws.Loader, pm *player.Manager, tokens *player.Tokens, timeout time.Duration, maxPlayers int) *Handler {
	if maxPlayers < 1 {
		maxPlayers = 1
	}
	return &Handler{
		loader:     l,
		players:    pm,
		tokens:     tokens,
		timeout:    timeout,
		maxPlayers: maxPlayers,
		tb: tm.MustRegisterViews("watch/*").
			WithLayout("main").
			WithFuncs(NewHelper()),
	}
}

func (s *Handler) register(r *gin.Engine) {
	r.GET(ws.CanonicalPath, s.get)
	r.GET(ws.CanonicalPath+"/", s.canonical)
	r.GET("/", s.canonical)
	r.GET("/index.html", s.canonical)
	r.GET("/file/:id", s.legacy)
	r.GET("/play/:id", s.legacy)
	r.POST(ws.CanonicalPath+"/release", s.release)
}
