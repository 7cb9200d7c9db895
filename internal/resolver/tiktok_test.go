package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/embedfixer/embedfixer/internal/fetch"
)

const tiktokStateTemplate = `<!DOCTYPE html><html><head></head><body>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">
{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{
"id":"123","desc":"a dancing cat",
"author":{"nickname":"catlover","avatarThumb":"https://cdn.example/ava.jpg"},
"stats":{"diggCount":1500,"commentCount":42,"playCount":90000},
"video":{"playAddr":"%s","cover":"https://cdn.example/cover.jpg"}
}}}}}
</script></body></html>`

func newTestFetcher() *fetch.Fetcher {
	return fetch.New(1000, 2*time.Second)
}

func TestTikTokResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, tiktokStateTemplate, "https://cdn.example/v.mp4")
	}))
	defer srv.Close()

	tk := NewTikTok(newTestFetcher())

	desc, err := tk.Resolve(context.Background(), srv.URL+"/@catlover/video/123")
	require.NoError(t, err)
	require.True(t, desc.IsVideo)
	require.Equal(t, "https://cdn.example/v.mp4", desc.PrimaryAddress)
	require.Equal(t, "a dancing cat", desc.Caption)
	require.NotNil(t, desc.Author)
	require.Equal(t, "catlover", desc.Author.Name)
	require.NotNil(t, desc.Counts)
	require.Equal(t, int64(1500), desc.Counts.Reactions)
	require.Equal(t, int64(42), desc.Counts.Comments)
	require.Equal(t, int64(90000), desc.Counts.Views)
}

func TestTikTokResolveStripsQuery(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		fmt.Fprintf(w, tiktokStateTemplate, "https://cdn.example/v.mp4")
	}))
	defer srv.Close()

	tk := NewTikTok(newTestFetcher())

	_, err := tk.Resolve(context.Background(), srv.URL+"/@u/video/9?is_copy_url=1&lang=en")
	require.NoError(t, err)
	require.Equal(t, "/@u/video/9", gotPath)
}

func TestTikTokResolveNoStateBlob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	defer srv.Close()

	tk := NewTikTok(newTestFetcher())

	_, err := tk.Resolve(context.Background(), srv.URL+"/@u/video/9")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTikTokResolveMissingDetailPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">{"__DEFAULT_SCOPE__":{}}</script></body></html>`))
	}))
	defer srv.Close()

	tk := NewTikTok(newTestFetcher())

	_, err := tk.Resolve(context.Background(), srv.URL+"/@u/video/9")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTikTokResolveFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tk := NewTikTok(newTestFetcher())

	_, err := tk.Resolve(context.Background(), srv.URL+"/@u/video/9")
	require.ErrorIs(t, err, ErrUpstream)
	require.False(t, errors.Is(err, ErrNotFound))
}
