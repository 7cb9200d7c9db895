package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const facebookVideoPage = `<!DOCTYPE html><html><head></head><body>
<script type="application/json">
{"require":[{"preferred_thumbnail":{"image":{"uri":"https://cdn.example/thumb.jpg"}},
"browser_native_hd_url":"https://cdn.example/video_hd.mp4"}]}
</script>
<script type="application/json">
{"require":[{"data":{
"id":"777","title":{"text":"beach day"},
"owner":{"name":"Some Page"},
"feedback":{"total_comment_count":7,"reaction_count":{"count":100},
"video_view_count_renderer":{"feedback":{"play_count":5000}}},
"representations":[{"mime_type":"audio/mp4","base_url":"https://cdn.example/a.mp4"},
{"mime_type":"video/mp4","base_url":"https://cdn.example/rep.mp4"}]
}}]}
</script></body></html>`

func TestFacebookResolveVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(facebookVideoPage))
	}))
	defer srv.Close()

	fb := NewFacebook(newTestFetcher(), 5)

	desc, err := fb.Resolve(context.Background(), srv.URL+"/reel/777")
	require.NoError(t, err)
	require.True(t, desc.IsVideo)
	require.Equal(t, "https://cdn.example/video_hd.mp4", desc.PrimaryAddress)
	require.Equal(t, "beach day", desc.Caption)
	require.Equal(t, "https://cdn.example/thumb.jpg", desc.ThumbnailURL)
	require.NotNil(t, desc.Counts)
	require.Equal(t, int64(7), desc.Counts.Comments)
	require.Equal(t, int64(100), desc.Counts.Reactions)
}

func TestFacebookResolveVideoRepresentationsFallback(t *testing.T) {
	page := strings.Replace(facebookVideoPage,
		`"browser_native_hd_url":"https://cdn.example/video_hd.mp4"`,
		`"browser_native_hd_url":null`, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	fb := NewFacebook(newTestFetcher(), 5)

	desc, err := fb.Resolve(context.Background(), srv.URL+"/reel/777")
	require.NoError(t, err)
	// Audio representation is skipped; the video one is picked.
	require.Equal(t, "https://cdn.example/rep.mp4", desc.PrimaryAddress)
}

func TestFacebookResolveVideoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>login wall</body></html>"))
	}))
	defer srv.Close()

	fb := NewFacebook(newTestFetcher(), 5)

	_, err := fb.Resolve(context.Background(), srv.URL+"/reel/777")
	require.ErrorIs(t, err, ErrNotFound)
}

func galleryImageURL(host, segment, name string) string {
	// CDN sources are long; the scraper drops anything under 100 characters.
	return "https://" + host + "/" + segment + "/t39.30808-6/" + name +
		"?stp=dst-jpg_s600x600&_nc_cat=100&ccb=1-7&_nc_sid=aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
}

func galleryPage(extra string) string {
	img1 := galleryImageURL("scontent.example", "v/p720x720", "photo_1.jpg")
	img2 := galleryImageURL("scontent.example", "v/p720x720", "photo_2.jpg")
	other := galleryImageURL("scontent.example", "v/other666", "unrelated.jpg")

	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><head>`)
	sb.WriteString(`<meta property="og:title" content="Post Owner"/>`)
	sb.WriteString(`<meta property="og:description" content="holiday photos"/>`)
	sb.WriteString(`<link as="image" href="https://scontent.example/profile.jpg_s40x40.jpg"/>`)
	sb.WriteString(`</head><body>`)
	// Icon inside a hyperlink container is navigation chrome, skipped.
	sb.WriteString(`<a href="/home"><div><img src="` + img1 + `"/></div></a>`)
	sb.WriteString(`<div><img src="` + img1 + `"/></div>`)
	sb.WriteString(`<div><img src="https://scontent.example/icon.png"/></div>`)
	sb.WriteString(`<div><img src="` + img2 + `"/></div>`)

	if extra != "" {
		sb.WriteString(`<div><span>` + extra + `</span></div>`)
	}

	// Different source path pattern ends collection.
	sb.WriteString(`<div><img src="` + other + `"/></div>`)
	sb.WriteString(`<div><img src="` + img1 + `"/></div>`)
	sb.WriteString(`</body></html>`)

	return sb.String()
}

func TestFacebookResolveGallery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(galleryPage("+2")))
	}))
	defer srv.Close()

	fb := NewFacebook(newTestFetcher(), 5)

	desc, err := fb.Resolve(context.Background(), srv.URL+"/posts/p1")
	require.NoError(t, err)
	require.False(t, desc.IsVideo)
	require.Len(t, desc.AdditionalAddresses, 2)
	require.Equal(t, desc.AdditionalAddresses[0], desc.PrimaryAddress)
	require.Equal(t, "Post Owner", desc.Author.Name)
	require.Equal(t, "https://scontent.example/profile.jpg_s40x40.jpg", desc.Author.ProfileImageURL)
	require.Equal(t, "holiday photos", desc.Caption)
	require.Equal(t, "+2", desc.ExtraCount)
}

func TestFacebookResolveGalleryCap(t *testing.T) {
	var sb strings.Builder

	sb.WriteString("<html><body>")

	for i := 0; i < 8; i++ {
		src := galleryImageURL("scontent.example", "v/p720x720", "photo.jpg")
		sb.WriteString(`<div><img src="` + src + `"/></div>`)
	}

	sb.WriteString("</body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sb.String()))
	}))
	defer srv.Close()

	fb := NewFacebook(newTestFetcher(), 5)

	desc, err := fb.Resolve(context.Background(), srv.URL+"/posts/p1")
	require.NoError(t, err)
	require.Len(t, desc.AdditionalAddresses, 5)
	require.Empty(t, desc.ExtraCount)
}

func TestFacebookResolveGalleryRetriesThenFails(t *testing.T) {
	var hits int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++

		_, _ = w.Write([]byte("<html><body>empty</body></html>"))
	}))
	defer srv.Close()

	fb := NewFacebook(newTestFetcher(), 5)

	_, err := fb.Resolve(context.Background(), srv.URL+"/posts/p1")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, galleryScrapeAttempts, hits)
}
