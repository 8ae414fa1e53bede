package watch

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/watch-ui/services/catalog"
	ws "github.com/webtor-io/watch-ui/services/watch"
	"github.com/webtor-io/watch-ui/services/web"
)

type GetData struct {
	Page         *ws.Page
	StreamURL    string
	ReleaseToken string
}

func (s *Handler) get(c *gin.Context) {
	indexTpl := s.tb.Build("watch/index")
	errorTpl := s.tb.Build("watch/error")

	q := ws.ParseQuery(c.Request.URL.Query())
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	p, err := s.loader.Load(ctx, q)
	if err != nil {
		if c.Request.Context().Err() != nil {
			log.WithError(err).Debug("client gone before page was loaded")
			c.Abort()
			return
		}
		errorTpl.HTML(http.StatusGatewayTimeout, web.NewContext(c).WithErr(err))
		return
	}
	if err := p.Err(); err != nil {
		errorTpl.HTML(errorStatus(err), web.NewContext(c).WithErr(err))
		return
	}
	if target, ok := p.AutoSelect(); ok {
		c.Redirect(http.StatusFound, target)
		return
	}

	d := &GetData{Page: p}
	if p.PlaysLocal() {
		token, err := s.acquire(c, p.Video().ID)
		if err != nil {
			log.WithError(err).Error("failed to acquire player")
			errorTpl.HTML(http.StatusInternalServerError, web.NewContext(c).WithErr(err))
			return
		}
		d.StreamURL = "/stream/" + token
		d.ReleaseToken = token
	}
	indexTpl.HTML(http.StatusOK, web.NewContext(c).WithData(d))
}

func errorStatus(err error) int {
	if errors.Is(err, catalog.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
