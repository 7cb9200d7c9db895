package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/embedfixer/embedfixer/internal/fetch"
	"github.com/embedfixer/embedfixer/internal/linkdetect"
	"github.com/embedfixer/embedfixer/internal/nested"
)

// facebookVideoMarkers are the URL shapes that carry a video rather than a
// photo post.
var facebookVideoMarkers = []string{
	"fb.watch", "/watch", "/reel/", "/videos/", "video.php", "story.php", "/share/v/", "/share/r/",
}

// Facebook resolves Facebook video and photo-post URLs. Videos come from the
// inlined JSON state blocks; photo posts from DOM traversal of the rendered
// page.
type Facebook struct {
	fetcher      *fetch.Fetcher
	galleryLimit int
}

func NewFacebook(fetcher *fetch.Fetcher, galleryLimit int) *Facebook {
	if galleryLimit <= 0 {
		galleryLimit = 5
	}

	return &Facebook{fetcher: fetcher, galleryLimit: galleryLimit}
}

func (f *Facebook) Resolve(ctx context.Context, rawURL string) (*MediaDescriptor, error) {
	if isFacebookVideoURL(rawURL) {
		return f.resolveVideo(ctx, rawURL)
	}

	return f.resolveGallery(ctx, rawURL)
}

func isFacebookVideoURL(rawURL string) bool {
	for _, marker := range facebookVideoMarkers {
		if strings.Contains(rawURL, marker) {
			return true
		}
	}

	return false
}

func (f *Facebook) resolveVideo(ctx context.Context, rawURL string) (*MediaDescriptor, error) {
	pageURL, err := f.canonicalizeVideoURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	htmlBytes, err := f.fetcher.Page(ctx, pageURL)
	if err != nil {
		return nil, upstream(err)
	}

	blocks := jsonScripts(htmlBytes)

	thumbnail, hdAddress := scanThumbnailBlock(blocks)

	data, block := scanVideoDataBlock(blocks)
	if data == nil {
		return nil, fmt.Errorf("%w: no video state block on page", ErrNotFound)
	}

	if hdAddress == "" {
		hdAddress = representationsAddress(block)
	}

	if hdAddress == "" {
		return nil, fmt.Errorf("%w: no playable address in state", ErrNotFound)
	}

	desc := &MediaDescriptor{
		Platform:       linkdetect.PlatformFacebook,
		IsVideo:        true,
		PrimaryAddress: hdAddress,
		Caption:        videoCaption(data),
		ThumbnailURL:   thumbnail,
		SourceURL:      pageURL,
	}

	if owner := videoOwner(block, data); owner != nil {
		desc.Author = owner
	}

	if feedback := nested.FindMap(data, "feedback"); feedback != nil {
		counts := &Counts{}
		counts.Comments, _ = nested.FindInt(feedback, "total_comment_count")

		if reactions := nested.FindMap(feedback, "reaction_count"); reactions != nil {
			counts.Reactions, _ = nested.FindInt(reactions, "count")
		}

		counts.Views, _ = nested.FindInt(feedback, "play_count")
		desc.Counts = counts
	}

	return desc, nil
}

// canonicalizeVideoURL rewrites share-redirect forms to the canonical reel
// page. fb.watch and watch?v links redirect to a /videos/<id>/ URL whose id
// segment names the reel.
func (f *Facebook) canonicalizeVideoURL(ctx context.Context, rawURL string) (string, error) {
	if !strings.Contains(rawURL, "fb.watch") && !strings.Contains(rawURL, "/watch/?v") {
		return rawURL, nil
	}

	final, err := f.fetcher.FinalURL(ctx, rawURL)
	if err != nil {
		return "", upstream(fmt.Errorf("resolve share link: %w", err))
	}

	_, after, ok := strings.Cut(final, "/videos/")
	if !ok {
		return "", fmt.Errorf("%w: share link did not resolve to a video", ErrNotFound)
	}

	videoID, _, _ := strings.Cut(after, "/")
	if videoID == "" {
		return "", fmt.Errorf("%w: share link did not resolve to a video", ErrNotFound)
	}

	return "https://www.facebook.com/reel/" + videoID, nil
}

// scanThumbnailBlock finds the state block carrying the preferred thumbnail
// and, when present, the HD stream address.
func scanThumbnailBlock(blocks []string) (thumbnail, hdAddress string) {
	for _, block := range blocks {
		if !strings.Contains(block, "preferred_thumbnail") {
			continue
		}

		var state any
		if err := json.Unmarshal([]byte(block), &state); err != nil {
			continue
		}

		if preferred := nested.FindMap(state, "preferred_thumbnail"); preferred != nil {
			thumbnail = nested.FindString(preferred, "uri")
		}

		hdAddress = nested.FindString(state, "browser_native_hd_url")

		return thumbnail, hdAddress
	}

	return "", ""
}

// scanVideoDataBlock finds the block holding the post data payload, keyed by
// the pair of markers the page reliably inlines for videos.
func scanVideoDataBlock(blocks []string) (data map[string]any, state any) {
	for _, block := range blocks {
		if !strings.Contains(block, "base_url") || !strings.Contains(block, "total_comment_count") {
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(block), &decoded); err != nil {
			continue
		}

		if d := nested.FindMap(decoded, "data"); d != nil {
			return d, decoded
		}
	}

	return nil, nil
}

// representationsAddress recovers a stream address from the representations
// list when the state has no browser_native_hd_url. Audio-only entries are
// skipped.
func representationsAddress(state any) string {
	representations, ok := nested.FindKey(state, "representations").([]any)
	if !ok {
		return ""
	}

	for _, rep := range representations {
		m, ok := rep.(map[string]any)
		if !ok {
			continue
		}

		mime, _ := m["mime_type"].(string)
		if !strings.Contains(strings.ToLower(mime), "video") {
			continue
		}

		if addr, ok := m["base_url"].(string); ok && addr != "" {
			return addr
		}
	}

	return ""
}

func videoCaption(data map[string]any) string {
	if title := nested.FindMap(data, "title"); title != nil {
		if text := nested.FindString(title, "text"); text != "" {
			return text
		}
	}

	if message := nested.FindMap(data, "message"); message != nil {
		return nested.FindString(message, "text")
	}

	return ""
}

func videoOwner(state any, data map[string]any) *Author {
	if owner := nested.FindMap(state, "owner_as_page"); owner != nil {
		return &Author{
			Name:            nested.FindString(owner, "name"),
			ProfileImageURL: nested.FindString(owner, "uri"),
		}
	}

	if owner := nested.FindMap(data, "owner"); owner != nil {
		return &Author{Name: nested.FindString(owner, "name")}
	}

	return nil
}
