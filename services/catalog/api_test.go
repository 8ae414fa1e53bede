package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApi_GetVideo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files/abc 1", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"file_id":"abc 1","file_name":"Sintel.mkv","size":1048576,"duration":888.5}`))
	}))
	defer server.Close()

	api := NewApi(&http.Client{}, server.URL+"/", "tkn")
	v, err := api.GetVideo(context.Background(), "abc 1")
	require.NoError(t, err)
	assert.Equal(t, "abc 1", v.ID)
	assert.Equal(t, "Sintel.mkv", v.Name)
	assert.Equal(t, int64(1048576), v.Size)
	require.NotNil(t, v.Duration)
	assert.Equal(t, 888.5, *v.Duration)
}

func TestApi_GetVideo_NoDuration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"file_id":"x","file_name":"clip.mp4","size":10}`))
	}))
	defer server.Close()

	v, err := NewApi(&http.Client{}, server.URL, "").GetVideo(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, v.Duration)
}

func TestApi_GetVideo_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewApi(&http.Client{}, server.URL, "").GetVideo(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "not found", err.Error())
}

func TestApi_GetVideo_ServerErrorIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewApi(&http.Client{}, server.URL, "").GetVideo(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestApi_ListVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files", r.URL.Path)
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		_ = json.NewEncoder(w).Encode(listResponse{Files: []Video{
			{ID: "b", Name: "Second"},
			{ID: "a", Name: "First"},
		}})
	}))
	defer server.Close()

	l, err := NewApi(&http.Client{}, server.URL, "").ListVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, l, 2)
	// backend order is kept
	assert.Equal(t, "b", l[0].ID)
	assert.Equal(t, "a", l[1].ID)
}

func TestApi_ListVideos_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	_, err := NewApi(&http.Client{}, server.URL, "").ListVideos(context.Background())
	assert.Error(t, err)
}

func TestVideo_StorageKey(t *testing.T) {
	assert.Equal(t, "id1", (&Video{ID: "id1"}).StorageKey())
	assert.Equal(t, "movies/a.mp4", (&Video{ID: "id1", Path: "movies/a.mp4"}).StorageKey())
}
