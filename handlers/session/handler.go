package session

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli"
	"github.com/webtor-io/watch-ui/services/common"
)

const (
	sessionName   = "watch-session"
	sessionMaxAge = 30 * 24 * 60 * 60
)

func RegisterHandler(c *cli.Context, r *gin.Engine) {
	store := cookie.NewStore([]byte(c.String(common.SessionSecretFlag)))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
}
