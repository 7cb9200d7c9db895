// Package resolver turns recognized platform URLs into direct media
// addresses by scraping the source pages. The page formats are unstable
// external contracts; everything brittle lives behind this package.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/embedfixer/embedfixer/internal/fetch"
	"github.com/embedfixer/embedfixer/internal/linkdetect"
)

var (
	// ErrNotFound indicates the page held no extractable media.
	ErrNotFound = errors.New("media not found")

	// ErrUpstream indicates the fetch or parse itself failed. Callers treat
	// it like ErrNotFound but it is logged with detail.
	ErrUpstream = errors.New("upstream scrape failure")

	errUnsupportedPlatform = errors.New("unsupported platform")
)

// Author identifies the poster of a piece of media.
type Author struct {
	Name            string
	ProfileImageURL string
}

// Counts carries optional engagement numbers.
type Counts struct {
	Comments  int64
	Reactions int64
	Views     int64
}

// MediaDescriptor is the normalized result of a resolution. Only
// PrimaryAddress is mandatory; every other field may be zero.
type MediaDescriptor struct {
	Platform       linkdetect.Platform
	IsVideo        bool
	PrimaryAddress string
	// AdditionalAddresses holds the gallery image URLs for non-video posts,
	// capped at the configured gallery limit.
	AdditionalAddresses []string
	Author              *Author
	Caption             string
	Counts              *Counts
	ThumbnailURL        string
	// ExtraCount is the "+N" affordance for gallery items beyond the cap.
	ExtraCount string
	SourceURL  string
}

// Registry dispatches a classified link to its platform resolver.
type Registry struct {
	tiktok   *TikTok
	facebook *Facebook
	logger   *zerolog.Logger
}

func NewRegistry(fetcher *fetch.Fetcher, galleryLimit int, logger *zerolog.Logger) *Registry {
	return &Registry{
		tiktok:   NewTikTok(fetcher),
		facebook: NewFacebook(fetcher, galleryLimit),
		logger:   logger,
	}
}

func (r *Registry) Resolve(ctx context.Context, link linkdetect.Link) (*MediaDescriptor, error) {
	switch link.Platform {
	case linkdetect.PlatformTikTok:
		return r.tiktok.Resolve(ctx, link.URL)
	case linkdetect.PlatformFacebook:
		return r.facebook.Resolve(ctx, link.URL)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedPlatform, link.Platform)
	}
}

// upstream wraps err as an ErrUpstream unless it already carries one of the
// resolver sentinels.
func upstream(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUpstream) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
