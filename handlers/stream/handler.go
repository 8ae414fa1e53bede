package stream

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/watch-ui/services/catalog"
	"github.com/webtor-io/watch-ui/services/player"
	"github.com/webtor-io/watch-ui/services/storage"
)

type videoGetter interface {
	GetVideo(ctx context.Context, id string) (*catalog.Video, error)
}

type Handler struct {
	catalog videoGetter
	storage storage.Storage
	players *player.Manager
	tokens  *player.Tokens
}

func RegisterHandler(r *gin.Engine, cat videoGetter, st storage.Storage, pm *player.Manager, tokens *player.Tokens) {
	h := &Handler{
		catalog: cat,
		storage: st,
		players: pm,
		tokens:  tokens,
	}
	r.GET("/stream/:token", h.get)
	r.HEAD("/stream/:token", h.get)
}

func (s *Handler) get(c *gin.Context) {
	ctx := c.Request.Context()
	clms, err := s.tokens.Parse(c.Param("token"))
	if err != nil {
		log.WithError(err).Debug("bad stream token")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	la := log.WithField("lease_id", clms.LeaseID).WithField("video_id", clms.VideoID)
	l, err := s.players.Active(ctx, clms.LeaseID)
	if err != nil {
		la.WithError(err).Error("failed to get player lease")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if l == nil {
		c.AbortWithStatus(http.StatusGone)
		return
	}
	if l.VideoID != clms.VideoID {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if err := s.players.Touch(ctx, l); err != nil {
		la.WithError(err).Warn("failed to prolong player lease")
	}
	v, err := s.catalog.GetVideo(ctx, clms.VideoID)
	if errors.Is(err, catalog.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		la.WithError(err).Error("failed to get video")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	content, err := s.storage.Locate(ctx, v.StorageKey())
	if errors.Is(err, storage.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		la.WithError(err).Error("failed to locate video content")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if content.RedirectURL != "" {
		c.Redirect(http.StatusFound, content.RedirectURL)
		return
	}
	if v.MimeType != "" {
		c.Header("Content-Type", v.MimeType)
	}
	c.File(content.FilePath)
}
