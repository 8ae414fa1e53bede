package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webtor-io/watch-ui/services/catalog"
	"github.com/webtor-io/watch-ui/services/player"
	"github.com/webtor-io/watch-ui/services/template"
	ws "github.com/webtor-io/watch-ui/services/watch"
	"github.com/webtor-io/watch-ui/services/youtube"
	"github.com/webtor-io/watch-ui/templates"
)

type mockCatalog struct {
	mu       sync.Mutex
	videos   map[string]*catalog.Video
	list     []catalog.Video
	listErr  error
	getCalls []string
}

func (m *mockCatalog) GetVideo(_ context.Context, id string) (*catalog.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls = append(m.getCalls, id)
	v, ok := m.videos[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return v, nil
}

func (m *mockCatalog) ListVideos(_ context.Context) ([]catalog.Video, error) {
	return m.list, m.listErr
}

func (m *mockCatalog) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.getCalls...)
}

type mockSearcher struct {
	videos []youtube.Video
	err    error
}

func (m *mockSearcher) Search(_ context.Context, _ string) ([]youtube.Video, error) {
	return m.videos, m.err
}

type testEnv struct {
	r       *gin.Engine
	players *player.Manager
	tokens  *player.Tokens
}

func newTestEnv(t *testing.T, cat *mockCatalog, yt ws.SuggestionSearcher) *testEnv {
	t.Helper()
	return newTestEnvWithPlayers(t, cat, yt, 4)
}

func newTestEnvWithPlayers(t *testing.T, cat *mockCatalog, yt ws.SuggestionSearcher, maxPlayers int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("watch", cookie.NewStore([]byte("secret"))))
	re := multitemplate.NewRenderer()
	tm := template.NewManager(re, templates.FS)
	pm := player.NewManager(player.NewMemoryStore(), time.Minute)
	tokens := player.NewTokens("secret")
	h := newHandler(tm, ws.NewLoader(cat, cat, yt), pm, tokens, 5*time.Second, maxPlayers)
	h.register(r)
	require.NoError(t, tm.Init())
	r.HTMLRender = re
	return &testEnv{r: r, players: pm, tokens: tokens}
}

func (e *testEnv) do(method, target string, body url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

var streamRe = regexp.MustCompile(`/stream/([^"]+)"`)

func streamToken(t *testing.T, body string) string {
	t.Helper()
	m := streamRe.FindStringSubmatch(body)
	require.Len(t, m, 2, "no stream url in page")
	return m[1]
}

func duration(v float64) *float64 {
	return &v
}

func testCatalog() *mockCatalog {
	a := &catalog.Video{ID: "a", Name: "Alpha Movie", Size: 1500000, Duration: duration(888)}
	b := &catalog.Video{ID: "b", Name: "Beta Clip", Size: 2048}
	return &mockCatalog{
		videos: map[string]*catalog.Video{"a": a, "b": b},
		list:   []catalog.Video{*a, *b},
	}
}

func TestGet_PlayFetchesMetadataOnce(t *testing.T) {
	cat := testCatalog()
	e := newTestEnv(t, cat, &mockSearcher{videos: []youtube.Video{{ID: "yt1", Title: "Alpha Trailer", Channel: "Studio"}}})

	w := e.do(http.MethodGet, "/watch?play=a", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a"}, cat.calls())
	body := w.Body.String()
	assert.Contains(t, body, "Alpha Movie")
	assert.Contains(t, body, `id="local-player"`)
	assert.Contains(t, body, "1.5 MB")
	assert.Contains(t, body, "14 minutes 48 seconds")
	assert.Contains(t, body, `class="current"`)
	assert.Contains(t, body, "Alpha Trailer")
	assert.Contains(t, body, "/watch?youtube=yt1")
	assert.NotContains(t, body, "youtube-player")
	assert.NotEmpty(t, streamToken(t, body))
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestGet_YouTubeOnly(t *testing.T) {
	cat := testCatalog()
	e := newTestEnv(t, cat, nil)

	w := e.do(http.MethodGet, "/watch?youtube=dQw4w9WgXcQ", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cat.calls())
	body := w.Body.String()
	assert.Contains(t, body, "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1")
	assert.Contains(t, body, `allow="autoplay; encrypted-media"`)
	assert.NotContains(t, body, "local-player")
}

func TestGet_YouTubeWinsOverPlay(t *testing.T) {
	cat := testCatalog()
	e := newTestEnv(t, cat, nil)

	w := e.do(http.MethodGet, "/watch?play=a&youtube=yt1", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a"}, cat.calls())
	body := w.Body.String()
	assert.Contains(t, body, "youtube-player")
	assert.NotContains(t, body, "local-player")
	assert.Contains(t, body, "Alpha Movie")
}

func TestGet_AutoSelectsFirstRelated(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)

	w := e.do(http.MethodGet, "/watch", nil, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/watch?play=a", w.Header().Get("Location"))
}

func TestGet_AutoSelectTerminates(t *testing.T) {
	cat := testCatalog()
	cat.list = []catalog.Video{{Name: "broken entry"}, *cat.videos["b"]}
	e := newTestEnv(t, cat, nil)

	target := "/watch"
	for hops := 0; ; hops++ {
		require.Less(t, hops, 3, "still redirecting at %v", target)
		w := e.do(http.MethodGet, target, nil, nil)
		if w.Code != http.StatusFound {
			assert.Equal(t, http.StatusOK, w.Code)
			break
		}
		target = w.Header().Get("Location")
	}
	assert.Equal(t, "/watch?play=b", target)
}

func TestGet_EmptyRelatedStays(t *testing.T) {
	e := newTestEnv(t, &mockCatalog{}, nil)

	w := e.do(http.MethodGet, "/watch", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), "No videos yet.")
}

func TestGet_FailedRelatedStays(t *testing.T) {
	e := newTestEnv(t, &mockCatalog{listErr: errors.New("boom")}, nil)

	w := e.do(http.MethodGet, "/watch", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), "Your videos are unavailable right now.")
}

func TestGet_MetadataNotFound(t *testing.T) {
	e := newTestEnv(t, testCatalog(), &mockSearcher{})

	w := e.do(http.MethodGet, "/watch?play=missing", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "not found")
	assert.NotContains(t, body, "<video")
	assert.NotContains(t, body, "<iframe")
	assert.NotContains(t, body, "Your Videos")
	assert.NotContains(t, body, "YouTube Suggestions")
}

func TestGet_NoDuration(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)

	w := e.do(http.MethodGet, "/watch?play=b", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<span class="size">2.0 kB</span>`)
	assert.NotContains(t, body, `class="duration"`)
}

func TestGet_ZeroDuration(t *testing.T) {
	cat := testCatalog()
	cat.videos["z"] = &catalog.Video{ID: "z", Name: "Zero", Size: 2048, Duration: duration(0)}
	e := newTestEnv(t, cat, nil)

	w := e.do(http.MethodGet, "/watch?play=z", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `class="duration"`)
}

func TestGet_ReleaseSkipsBackForwardCache(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)

	w := e.do(http.MethodGet, "/watch?play=a", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "if (event.persisted)")
	assert.Less(t, strings.Index(body, "event.persisted"), strings.Index(body, "sendBeacon"))
}

func TestGet_FailedSuggestions(t *testing.T) {
	e := newTestEnv(t, testCatalog(), &mockSearcher{err: errors.New("quota exceeded")})

	w := e.do(http.MethodGet, "/watch?play=a", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Suggestions are unavailable right now.")
}

func TestCanonicalRedirects(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)
	for _, tc := range []struct {
		target   string
		code     int
		location string
	}{
		{"/?play=a", http.StatusFound, "/watch?play=a"},
		{"/watch/?youtube=yt1", http.StatusFound, "/watch?youtube=yt1"},
		{"/index.html", http.StatusFound, "/watch"},
		{"/file/a%20b", http.StatusMovedPermanently, "/watch?play=a+b"},
		{"/play/a", http.StatusMovedPermanently, "/watch?play=a"},
	} {
		t.Run(tc.target, func(t *testing.T) {
			w := e.do(http.MethodGet, tc.target, nil, nil)
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}

func (e *testEnv) lease(t *testing.T, body string) *player.StreamClaims {
	t.Helper()
	clms, err := e.tokens.Parse(streamToken(t, body))
	require.NoError(t, err)
	return clms
}

func (e *testEnv) active(t *testing.T, id string) bool {
	t.Helper()
	l, err := e.players.Active(context.Background(), id)
	require.NoError(t, err)
	return l != nil
}

// mergeCookies keeps the latest value of every cookie, as a browser does.
func mergeCookies(jar []*http.Cookie, w *httptest.ResponseRecorder) []*http.Cookie {
	res := append([]*http.Cookie(nil), w.Result().Cookies()...)
	for _, c := range jar {
		found := false
		for _, n := range res {
			if n.Name == c.Name {
				found = true
			}
		}
		if !found {
			res = append(res, c)
		}
	}
	return res
}

func TestPagesInOtherTabsKeepTheirPlayers(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)

	w := e.do(http.MethodGet, "/watch?play=a", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := e.lease(t, w.Body.String())
	jar := mergeCookies(nil, w)

	w = e.do(http.MethodGet, "/watch?youtube=yt1", nil, jar)
	require.Equal(t, http.StatusOK, w.Code)
	jar = mergeCookies(jar, w)
	assert.True(t, e.active(t, first.LeaseID))

	w = e.do(http.MethodGet, "/watch?play=b", nil, jar)
	require.Equal(t, http.StatusOK, w.Code)
	second := e.lease(t, w.Body.String())
	assert.Equal(t, "b", second.VideoID)
	assert.True(t, e.active(t, first.LeaseID))
	assert.True(t, e.active(t, second.LeaseID))
}

func TestSessionPlayersAreCapped(t *testing.T) {
	e := newTestEnvWithPlayers(t, testCatalog(), nil, 2)

	var jar []*http.Cookie
	var leases []string
	for _, id := range []string{"a", "b", "a"} {
		w := e.do(http.MethodGet, "/watch?play="+id, nil, jar)
		require.Equal(t, http.StatusOK, w.Code)
		leases = append(leases, e.lease(t, w.Body.String()).LeaseID)
		jar = mergeCookies(jar, w)
	}

	assert.False(t, e.active(t, leases[0]))
	assert.True(t, e.active(t, leases[1]))
	assert.True(t, e.active(t, leases[2]))
}

func TestRelease(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)
	ctx := context.Background()

	w := e.do(http.MethodGet, "/watch?play=a", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := streamToken(t, w.Body.String())
	clms, err := e.tokens.Parse(token)
	require.NoError(t, err)

	w = e.do(http.MethodPost, "/watch/release", url.Values{"token": {token}}, w.Result().Cookies())
	assert.Equal(t, http.StatusNoContent, w.Code)

	l, err := e.players.Active(ctx, clms.LeaseID)
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestRelease_KeepsOtherPlayers(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)

	w := e.do(http.MethodGet, "/watch?play=a", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := streamToken(t, w.Body.String())
	jar := mergeCookies(nil, w)
	w = e.do(http.MethodGet, "/watch?play=b", nil, jar)
	require.Equal(t, http.StatusOK, w.Code)
	second := e.lease(t, w.Body.String())
	jar = mergeCookies(jar, w)

	w = e.do(http.MethodPost, "/watch/release", url.Values{"token": {first}}, jar)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, e.active(t, second.LeaseID))
}

func TestRelease_NoToken(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)

	w := e.do(http.MethodPost, "/watch/release", url.Values{}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelease_BadToken(t *testing.T) {
	e := newTestEnv(t, testCatalog(), nil)

	w := e.do(http.MethodPost, "/watch/release", url.Values{"token": {"garbage"}}, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", FormatDuration(nil))
	assert.Equal(t, "", FormatDuration(duration(0)))
	assert.Equal(t, "1 minute 30 seconds", FormatDuration(duration(90.2)))
	assert.Equal(t, "0 seconds", FormatDuration(duration(0.1)))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(-1))
	assert.Equal(t, "1.5 MB", FormatSize(1500000))
}
