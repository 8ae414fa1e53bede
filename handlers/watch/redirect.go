package watch

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ws "github.com/webtor-io/watch-ui/services/watch"
)

func (s *Handler) canonical(c *gin.Context) {
	target, ok := ws.Canonicalize(c.Request.URL.Path, c.Request.URL.Query())
	if !ok {
		s.get(c)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// legacy redirects share links of the storage backend.
func (s *Handler) legacy(c *gin.Context) {
	c.Redirect(http.StatusMovedPermanently, ws.LocalURL(c.Param("id")))
}
