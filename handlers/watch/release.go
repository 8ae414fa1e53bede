package watch

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// release is called by the page on pagehide with the stream token of its
// own player. Players of other pages are never touched.
func (s *Handler) release(c *gin.Context) {
	token := c.PostForm("token")
	if token == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	clms, err := s.tokens.Parse(token)
	if err != nil {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if err := s.releaseLease(c, clms.LeaseID); err != nil {
		log.WithError(err).Error("failed to release player")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
