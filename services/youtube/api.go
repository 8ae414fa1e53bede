package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/lazymap"
	"github.com/webtor-io/watch-ui/services/common"
)

const (
	searchTimeout  = 15 * time.Second
	searchCapacity = 1000
	maxQueryLength = 100
)

const (
	youtubeApiKeyFlag        = "youtube-api-key"
	youtubeApiURLFlag        = "youtube-api-url"
	youtubeApiMaxResultsFlag = "youtube-api-max-results"
)

const embedURL = "https://www.youtube.com/embed/%s?autoplay=1&rel=0"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   youtubeApiKeyFlag,
			Usage:  "youtube data api key",
			Value:  "",
			EnvVar: "YOUTUBE_API_KEY",
		},
		cli.StringFlag{
			Name:   youtubeApiURLFlag,
			Usage:  "youtube data api url",
			Value:  "https://www.googleapis.com/youtube/v3",
			EnvVar: "YOUTUBE_API_URL",
		},
		cli.IntFlag{
			Name:   youtubeApiMaxResultsFlag,
			Usage:  "max number of suggestions",
			Value:  10,
			EnvVar: "YOUTUBE_API_MAX_RESULTS",
		},
	)
}

// Video is a single search suggestion.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Channel     string    `json:"channel"`
	Thumbnail   string    `json:"thumbnail"`
	PublishedAt time.Time `json:"published_at"`
}

// EmbedURL returns the autoplaying embed frame url for a video id.
func EmbedURL(id string) string {
	return fmt.Sprintf(embedURL, url.PathEscape(id))
}

type searchResponse struct {
	Items []searchItem `json:"items"`
	Error *apiError    `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type searchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string    `json:"title"`
		ChannelTitle string    `json:"channelTitle"`
		PublishedAt  time.Time `json:"publishedAt"`
		Thumbnails   map[string]struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type Api struct {
	url        string
	key        string
	maxResults int
	cl         *http.Client
	cache      *lazymap.LazyMap[[]Video]
}

// New returns nil when no api key is configured.
func New(c *cli.Context, cl *http.Client) *Api {
	key := c.String(youtubeApiKeyFlag)
	if key == "" {
		return nil
	}
	u := c.String(youtubeApiURLFlag)
	log.Infof("youtube api endpoint %v", u)
	return NewApi(cl, u, key, c.Int(youtubeApiMaxResultsFlag))
}

func NewApi(cl *http.Client, u string, key string, maxResults int) *Api {
	return &Api{
		url:        strings.TrimSuffix(u, "/"),
		key:        key,
		maxResults: maxResults,
		cl:         cl,
		cache: lazymap.New[[]Video](&lazymap.Config{
			Expire:      5 * time.Minute,
			ErrorExpire: 10 * time.Second,
			StoreErrors: true,
			Capacity:    searchCapacity,
		}),
	}
}

// Search returns video suggestions for query.
func (s *Api) Search(ctx context.Context, query string) ([]Video, error) {
	query = truncate(strings.TrimSpace(query), maxQueryLength)
	key := strings.ToLower(query)
	if key == "" {
		return nil, nil
	}
	return common.Shared(ctx, searchTimeout, func(ctx context.Context) ([]Video, error) {
		return s.cache.Get(key, func() ([]Video, error) {
			return s.search(ctx, query)
		})
	})
}

func (s *Api) search(ctx context.Context, query string) ([]Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"/search", nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	q := req.URL.Query()
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(s.maxResults))
	q.Set("key", s.key)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := s.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errors.Wrapf(err, "decode response status=%v", resp.StatusCode)
	}
	if sr.Error != nil {
		return nil, errors.Errorf("youtube error code=%v: %v", sr.Error.Code, sr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("youtube returned status %d", resp.StatusCode)
	}
	res := make([]Video, 0, len(sr.Items))
	for _, it := range sr.Items {
		if it.ID.VideoID == "" {
			continue
		}
		res = append(res, Video{
			ID:          it.ID.VideoID,
			Title:       it.Snippet.Title,
			Channel:     it.Snippet.ChannelTitle,
			Thumbnail:   thumbnail(it),
			PublishedAt: it.Snippet.PublishedAt,
		})
	}
	return res, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func thumbnail(it searchItem) string {
	for _, k := range []string{"medium", "high", "default"} {
		if t, ok := it.Snippet.Thumbnails[k]; ok && t.URL != "" {
			return t.URL
		}
	}
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", it.ID.VideoID)
}
