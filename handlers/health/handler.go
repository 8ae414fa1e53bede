package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterHandler(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}
