package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/embedfixer/embedfixer/internal/fetch"
	"github.com/embedfixer/embedfixer/internal/linkdetect"
	"github.com/embedfixer/embedfixer/internal/nested"
)

const universalDataScriptID = "__UNIVERSAL_DATA_FOR_REHYDRATION__"

// TikTok resolves TikTok video URLs by scraping the hydration state blob
// embedded in the video page.
type TikTok struct {
	fetcher *fetch.Fetcher
}

func NewTikTok(fetcher *fetch.Fetcher) *TikTok {
	return &TikTok{fetcher: fetcher}
}

func (t *TikTok) Resolve(ctx context.Context, rawURL string) (*MediaDescriptor, error) {
	pageURL, err := t.canonicalize(ctx, rawURL)
	if err != nil {
		return nil, upstream(err)
	}

	htmlBytes, err := t.fetcher.Page(ctx, pageURL)
	if err != nil {
		return nil, upstream(err)
	}

	blob := scriptByID(htmlBytes, universalDataScriptID)
	if blob == "" {
		return nil, fmt.Errorf("%w: no hydration state on page", ErrNotFound)
	}

	var state map[string]any
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, upstream(fmt.Errorf("decode hydration state: %w", err))
	}

	item, err := videoItem(state)
	if err != nil {
		return nil, err
	}

	address := bestStreamAddress(item)
	if address == "" {
		return nil, fmt.Errorf("%w: item has no playable address", ErrNotFound)
	}

	desc := &MediaDescriptor{
		Platform:       linkdetect.PlatformTikTok,
		IsVideo:        true,
		PrimaryAddress: address,
		Caption:        nested.FindString(item, "desc"),
		ThumbnailURL:   nested.FindString(item, "cover"),
		SourceURL:      pageURL,
	}

	if authorMap := nested.FindMap(item, "author"); authorMap != nil {
		desc.Author = &Author{
			Name:            nested.FindString(authorMap, "nickname"),
			ProfileImageURL: nested.FindString(authorMap, "avatarThumb"),
		}
	}

	if stats := nested.FindMap(item, "stats"); stats != nil {
		counts := &Counts{}
		counts.Comments, _ = nested.FindInt(stats, "commentCount")
		counts.Reactions, _ = nested.FindInt(stats, "diggCount")
		counts.Views, _ = nested.FindInt(stats, "playCount")
		desc.Counts = counts
	}

	return desc, nil
}

// canonicalize rewrites share-link redirect forms (vm.tiktok.com/<id>,
// tiktok.com/t/<id>) to the canonical video page by following the redirect.
// Full video URLs pass through with their query stripped.
func (t *TikTok) canonicalize(ctx context.Context, rawURL string) (string, error) {
	if isTikTokShortLink(rawURL) {
		final, err := t.fetcher.FinalURL(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("resolve share link: %w", err)
		}

		rawURL = final
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, nil
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String(), nil
}

func isTikTokShortLink(rawURL string) bool {
	return strings.Contains(rawURL, "vm.tiktok.com/") ||
		strings.Contains(rawURL, "vt.tiktok.com/") ||
		strings.Contains(rawURL, "tiktok.com/t/")
}

// videoItem asserts the well-known hydration path and returns the raw item
// payload.
func videoItem(state map[string]any) (map[string]any, error) {
	scope, ok := state["__DEFAULT_SCOPE__"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing default scope", ErrNotFound)
	}

	detail, ok := scope["webapp.video-detail"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing video detail", ErrNotFound)
	}

	item := nested.FindMap(detail, "itemStruct")
	if item == nil {
		return nil, fmt.Errorf("%w: missing item struct", ErrNotFound)
	}

	return item, nil
}

// bestStreamAddress picks the highest-fidelity stream the page offers. The
// bitrate list carries the quality ladder; playAddr is the fallback.
func bestStreamAddress(item map[string]any) string {
	video := nested.FindMap(item, "video")
	if video == nil {
		return ""
	}

	if bitrates, ok := video["bitrateInfo"].([]any); ok && len(bitrates) > 0 {
		if urls, ok := nested.FindKey(bitrates[0], "UrlList").([]any); ok && len(urls) > 0 {
			if addr, ok := urls[0].(string); ok {
				return addr
			}
		}
	}

	return nested.FindString(video, "playAddr")
}
