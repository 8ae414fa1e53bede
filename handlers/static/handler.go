package static

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// RegisterHandler serves the assets directory of fsys under /assets.
func RegisterHandler(r *gin.Engine, fsys fs.FS) error {
	sub, err := fs.Sub(fsys, "assets")
	if err != nil {
		return errors.Wrap(err, "failed to open assets")
	}
	r.StaticFS("/assets", http.FS(sub))
	return nil
}
