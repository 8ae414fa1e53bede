package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Api talks to the storage backend file api.
type Api struct {
	url   string
	token string
	cl    *retryablehttp.Client
}

// Ensure Api implements Catalog
var _ Catalog = (*Api)(nil)

type listResponse struct {
	Files []Video `json:"files"`
}

func NewApi(cl *http.Client, u string, token string) *Api {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cl
	rc.RetryMax = 2
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.Logger = log.StandardLogger()
	log.Infof("catalog api endpoint %v", u)
	return &Api{
		url:   strings.TrimSuffix(u, "/"),
		token: token,
		cl:    rc,
	}
}

func (s *Api) GetName() string {
	return fmt.Sprintf("Api (%v)", s.url)
}

func (s *Api) GetVideo(ctx context.Context, id string) (*Video, error) {
	var v Video
	found, err := s.do(ctx, "/api/files/"+url.PathEscape(id), nil, &v)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	if v.ID == "" {
		v.ID = id
	}
	return &v, nil
}

func (s *Api) ListVideos(ctx context.Context) ([]Video, error) {
	q := url.Values{}
	q.Set("type", "video")
	var l listResponse
	found, err := s.do(ctx, "/api/files", q, &l)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("files endpoint not found")
	}
	return l.Files, nil
}

func (s *Api) do(ctx context.Context, p string, q url.Values, v any) (bool, error) {
	u := s.url + p
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.cl.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "failed to execute request")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("catalog api returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, errors.Wrap(err, "failed to decode JSON response")
	}
	return true, nil
}
