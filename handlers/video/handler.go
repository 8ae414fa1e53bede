package video

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/watch-ui/services/catalog"
	"github.com/webtor-io/watch-ui/services/watch"
	"github.com/webtor-io/watch-ui/services/youtube"
)

type Handler struct {
	catalog catalog.Catalog
	suggest watch.SuggestionSearcher
}

// VideoResponse is a catalog video without its storage location.
type VideoResponse struct {
	ID        string   `json:"file_id"`
	Name      string   `json:"file_name"`
	Size      int64    `json:"size"`
	Duration  *float64 `json:"duration,omitempty"`
	MimeType  string   `json:"mime_type,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

func newVideoResponse(v *catalog.Video) *VideoResponse {
	return &VideoResponse{
		ID:        v.ID,
		Name:      v.Name,
		Size:      v.Size,
		Duration:  v.Duration,
		MimeType:  v.MimeType,
		Thumbnail: v.Thumbnail,
	}
}

type ListResponse struct {
	Videos []*VideoResponse `json:"videos"`
}

type SuggestionsResponse struct {
	Videos []youtube.Video `json:"videos"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterHandler binds the read-only json api. suggest may be nil.
func RegisterHandler(r *gin.Engine, cat catalog.Catalog, suggest watch.SuggestionSearcher) {
	h := &Handler{
		catalog: cat,
		suggest: suggest,
	}
	gr := r.Group("/api")
	gr.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	gr.GET("/videos", h.list)
	gr.GET("/videos/:id", h.get)
	gr.GET("/suggestions", h.suggestions)
	gr.OPTIONS("/*path", func(c *gin.Context) {})
}

func (s *Handler) list(c *gin.Context) {
	l, err := s.catalog.ListVideos(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to list videos")
		c.JSON(http.StatusBadGateway, &ErrorResponse{Error: err.Error()})
		return
	}
	res := &ListResponse{Videos: make([]*VideoResponse, 0, len(l))}
	for i := range l {
		res.Videos = append(res.Videos, newVideoResponse(&l[i]))
	}
	c.JSON(http.StatusOK, res)
}

func (s *Handler) get(c *gin.Context) {
	v, err := s.catalog.GetVideo(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})
		return
	} else if err != nil {
		log.WithError(err).WithField("video_id", c.Param("id")).Error("failed to get video")
		c.JSON(http.StatusBadGateway, &ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, newVideoResponse(v))
}

func (s *Handler) suggestions(c *gin.Context) {
	res := &SuggestionsResponse{Videos: []youtube.Video{}}
	if s.suggest == nil {
		c.JSON(http.StatusOK, res)
		return
	}
	l, err := s.suggest.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		log.WithError(err).Warn("failed to search suggestions")
		c.JSON(http.StatusBadGateway, &ErrorResponse{Error: err.Error()})
		return
	}
	if l != nil {
		res.Videos = l
	}
	c.JSON(http.StatusOK, res)
}
