// Package orchestrator drives the per-URL resolution flow: mirror-domain
// embed attempts with bounded polling, fallback to the platform resolvers,
// rich-message dispatch, and cleanup of intermediate replies.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/embedfixer/embedfixer/internal/components"
	"github.com/embedfixer/embedfixer/internal/discord"
	"github.com/embedfixer/embedfixer/internal/linkdetect"
	"github.com/embedfixer/embedfixer/internal/mirror"
	"github.com/embedfixer/embedfixer/internal/platform/observability"
	"github.com/embedfixer/embedfixer/internal/resolver"
)

const facebookAccentColor = 0x1877F2

func errorNoticeText(lifetime time.Duration) string {
	return fmt.Sprintf(
		"**Error: Can't get video url**\n-# *This message will be deleted in %d seconds.*",
		int(lifetime.Seconds()),
	)
}

// Messenger is the chat capability consumed by the state machine. Must be
// safe for concurrent use; one orchestrator goroutine runs per detected URL.
type Messenger interface {
	Reply(ctx context.Context, orig discord.MessageRef, content string) (discord.MessageRef, error)
	EmbedCount(ctx context.Context, ref discord.MessageRef) (int, error)
	SuppressEmbeds(ctx context.Context, ref discord.MessageRef) error
	Delete(ctx context.Context, ref discord.MessageRef) error
	SendComponents(ctx context.Context, orig discord.MessageRef, payload *components.MessagePayload, files []discord.File) (discord.MessageRef, error)
	JumpLink(ref discord.MessageRef) string
}

// Resolver produces a media descriptor for a classified link.
type Resolver interface {
	Resolve(ctx context.Context, link linkdetect.Link) (*resolver.MediaDescriptor, error)
}

// ImageFetcher downloads gallery images for attachment upload.
type ImageFetcher interface {
	Image(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Clock abstracts time for the polling loops.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Config carries the per-strategy timing knobs and mirror host lists.
type Config struct {
	// MirrorHosts maps a platform to its ordered mirror host list.
	MirrorHosts map[linkdetect.Platform][]string

	PollInterval        time.Duration
	FirstMirrorTimeout  time.Duration
	BackupMirrorTimeout time.Duration
	ErrorNoticeLifetime time.Duration
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}

	if c.FirstMirrorTimeout <= 0 {
		c.FirstMirrorTimeout = 10 * time.Second
	}

	if c.BackupMirrorTimeout <= 0 {
		c.BackupMirrorTimeout = 5 * time.Second
	}

	if c.ErrorNoticeLifetime <= 0 {
		c.ErrorNoticeLifetime = 30 * time.Second
	}
}

type Orchestrator struct {
	messenger Messenger
	resolvers Resolver
	images    ImageFetcher
	cfg       Config
	clock     Clock
	logger    *zerolog.Logger
}

func New(messenger Messenger, resolvers Resolver, images ImageFetcher, cfg Config, logger *zerolog.Logger) *Orchestrator {
	cfg.applyDefaults()

	return &Orchestrator{
		messenger: messenger,
		resolvers: resolvers,
		images:    images,
		cfg:       cfg,
		clock:     realClock{},
		logger:    logger,
	}
}

// WithClock swaps the time source. Tests use it to run the polling loops on
// a fake clock.
func (o *Orchestrator) WithClock(clock Clock) *Orchestrator {
	o.clock = clock

	return o
}

// Process runs the full state machine for one detected link. Exactly one
// externally visible reply survives on any success path; every intermediate
// reply is removed before the corresponding branch exits.
func (o *Orchestrator) Process(ctx context.Context, origin discord.MessageRef, link linkdetect.Link) {
	observability.LinksDetected.WithLabelValues(string(link.Platform)).Inc()

	if o.tryMirrors(ctx, origin, link) {
		return
	}

	o.fallbackResolve(ctx, origin, link)
}

// tryMirrors walks the configured mirror hosts in order. Attempts are
// strictly sequential: each intermediate reply is deleted before the next
// host is posted.
func (o *Orchestrator) tryMirrors(ctx context.Context, origin discord.MessageRef, link linkdetect.Link) bool {
	for i, host := range o.cfg.MirrorHosts[link.Platform] {
		rewritten := mirror.Rewrite(link.URL, host)
		content := fmt.Sprintf("> [Video on %s](%s)", platformLabel(link.Platform), rewritten)

		reply, err := o.messenger.Reply(ctx, origin, content)
		if err != nil {
			o.logger.Warn().Err(err).Str("host", host).Msg("mirror reply failed")

			continue
		}

		timeout := o.cfg.BackupMirrorTimeout
		if i == 0 {
			timeout = o.cfg.FirstMirrorTimeout
		}

		start := o.clock.Now()

		if o.waitForEmbed(ctx, reply, timeout) {
			observability.EmbedWaitDuration.Observe(o.clock.Now().Sub(start).Seconds())
			observability.MirrorAttempts.WithLabelValues(string(link.Platform), "embedded").Inc()

			if err := o.messenger.SuppressEmbeds(ctx, origin); err != nil {
				o.logger.Warn().Err(err).Msg("suppress original embed failed")
			}

			return true
		}

		observability.MirrorAttempts.WithLabelValues(string(link.Platform), "timeout").Inc()

		if err := o.messenger.Delete(ctx, reply); err != nil {
			o.logger.Warn().Err(err).Msg("delete stale mirror reply failed")
		}
	}

	return false
}

// waitForEmbed polls the posted reply until the platform attaches a preview
// or the deadline passes. Timing out is flow control, not an error.
func (o *Orchestrator) waitForEmbed(ctx context.Context, ref discord.MessageRef, timeout time.Duration) bool {
	deadline := o.clock.Now().Add(timeout)

	for {
		count, err := o.messenger.EmbedCount(ctx, ref)
		if err != nil {
			o.logger.Debug().Err(err).Msg("poll mirror reply failed")
		} else if count > 0 {
			return true
		}

		if !o.clock.Now().Before(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-o.clock.After(o.cfg.PollInterval):
		}
	}
}

func (o *Orchestrator) fallbackResolve(ctx context.Context, origin discord.MessageRef, link linkdetect.Link) {
	desc, err := o.resolvers.Resolve(ctx, link)
	if err != nil {
		status := "not_found"
		if errors.Is(err, resolver.ErrUpstream) {
			status = "upstream"
			o.logger.Error().Err(err).Str("url", link.URL).Msg("resolver scrape failed")
		} else {
			o.logger.Warn().Err(err).Str("url", link.URL).Msg("no media resolved")
		}

		observability.Resolutions.WithLabelValues(string(link.Platform), status).Inc()
		o.postErrorNotice(ctx, origin)

		return
	}

	observability.Resolutions.WithLabelValues(string(link.Platform), "success").Inc()
	o.dispatch(ctx, origin, link, desc)
}

func (o *Orchestrator) dispatch(ctx context.Context, origin discord.MessageRef, link linkdetect.Link, desc *resolver.MediaDescriptor) {
	var (
		payload *components.MessagePayload
		files   []discord.File
		err     error
	)

	if desc.IsVideo {
		payload, err = components.BuildMessage(components.Gallery(components.Media(desc.PrimaryAddress)))
	} else {
		payload, files, err = o.buildGalleryMessage(ctx, link, desc)
	}

	if err != nil {
		o.logger.Error().Err(err).Str("url", link.URL).Msg("payload construction failed")
		o.postErrorNotice(ctx, origin)

		return
	}

	if _, err := o.messenger.SendComponents(ctx, origin, payload, files); err != nil {
		// No retry: a duplicate final reply is worse than a missing one.
		observability.DispatchFailures.Inc()
		o.logger.Error().Err(err).
			Str("url", link.URL).
			Str("message", o.messenger.JumpLink(origin)).
			Msg("final reply rejected")

		return
	}

	if desc.IsVideo {
		if err := o.messenger.SuppressEmbeds(ctx, origin); err != nil {
			o.logger.Warn().Err(err).Msg("suppress original embed failed")
		}
	}
}

// buildGalleryMessage downloads the gallery images and assembles the
// container payload referencing them as attachments.
func (o *Orchestrator) buildGalleryMessage(ctx context.Context, link linkdetect.Link, desc *resolver.MediaDescriptor) (*components.MessagePayload, []discord.File, error) {
	var (
		files []discord.File
		items []components.MediaItem
	)

	for i, address := range desc.AdditionalAddresses {
		data, name, err := o.images.Image(ctx, address)
		if err != nil {
			o.logger.Warn().Err(err).Str("url", address).Msg("gallery image download failed")

			continue
		}

		filename := fmt.Sprintf("%d_%s", i, name)
		files = append(files, discord.File{Name: filename, ContentType: "image/jpeg", Data: data})
		items = append(items, components.Media("attachment://"+filename))
	}

	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: no gallery image could be downloaded", resolver.ErrUpstream)
	}

	sourceURL := desc.SourceURL
	if sourceURL == "" {
		sourceURL = link.URL
	}

	children := []components.Node{}

	if desc.Author != nil && desc.Author.Name != "" {
		children = append(children, components.Text(fmt.Sprintf("### [%s](%s)", desc.Author.Name, sourceURL)))
	}

	if desc.Caption != "" {
		children = append(children, components.Text(desc.Caption))
	}

	children = append(children,
		components.Separator(components.SpacingSmall),
		components.Gallery(items...),
		components.Row(components.LinkButton(galleryButtonLabel(desc), sourceURL)),
	)

	payload, err := components.BuildMessage(components.Container(facebookAccentColor, children...))
	if err != nil {
		return nil, nil, err
	}

	return payload, files, nil
}

func galleryButtonLabel(desc *resolver.MediaDescriptor) string {
	label := platformLabel(desc.Platform)

	if desc.ExtraCount != "" {
		return fmt.Sprintf("And more %s images on %s", strings.TrimPrefix(desc.ExtraCount, "+"), label)
	}

	return "View on " + label
}

// postErrorNotice posts the transient failure message and removes it after
// the configured lifetime.
func (o *Orchestrator) postErrorNotice(ctx context.Context, origin discord.MessageRef) {
	notice, err := o.messenger.Reply(ctx, origin, errorNoticeText(o.cfg.ErrorNoticeLifetime))
	if err != nil {
		o.logger.Warn().Err(err).Msg("error notice failed")

		return
	}

	select {
	case <-ctx.Done():
	case <-o.clock.After(o.cfg.ErrorNoticeLifetime):
	}

	if err := o.messenger.Delete(ctx, notice); err != nil {
		o.logger.Warn().Err(err).Msg("delete error notice failed")
	}
}

func platformLabel(platform linkdetect.Platform) string {
	switch platform {
	case linkdetect.PlatformTikTok:
		return "Tiktok"
	case linkdetect.PlatformFacebook:
		return "Facebook"
	case linkdetect.PlatformInstagram:
		return "Instagram"
	default:
		return "Unknown"
	}
}
