// Package bot is the Discord front end: it owns the gateway session,
// registers the application commands, and fans detected links out to the
// resolution pipeline.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/embedfixer/embedfixer/internal/discord"
	"github.com/embedfixer/embedfixer/internal/linkdetect"
)

const (
	translitCommandName = "ไอเชี่ยนี่ลืมเปลี่ยนภาษา"

	confirmationLifetime = 10 * time.Second
)

// Processor runs the resolution pipeline for one detected link.
type Processor interface {
	Process(ctx context.Context, origin discord.MessageRef, link linkdetect.Link)
}

// ChannelStore answers and records per-channel opt-out state.
type ChannelStore interface {
	IsChannelEnabled(ctx context.Context, channelID string) (bool, error)
	SetChannelEnabled(ctx context.Context, channelID string, enabled bool) error
}

// Replier posts plain replies, used by the transliteration command.
type Replier interface {
	Reply(ctx context.Context, orig discord.MessageRef, content string) (discord.MessageRef, error)
}

type Bot struct {
	session   *discordgo.Session
	store     ChannelStore
	pipeline  Processor
	messenger Replier
	logger    *zerolog.Logger

	// base context for handler goroutines, set by Run.
	ctx context.Context
}

func New(session *discordgo.Session, store ChannelStore, pipeline Processor, messenger Replier, logger *zerolog.Logger) *Bot {
	return &Bot{
		session:   session,
		store:     store,
		pipeline:  pipeline,
		messenger: messenger,
		logger:    logger,
	}
}

// Run opens the gateway session and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	b.session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway session: %w", err)
	}

	<-ctx.Done()

	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info().Str("user", r.User.Username).Msg("connected to gateway")

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "enable",
			Description: "Enable link fixing in this channel",
		},
		{
			Name:        "disable",
			Description: "Disable link fixing in this channel",
		},
		{
			Name: translitCommandName,
			Type: discordgo.MessageApplicationCommand,
		},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(r.User.ID, "", cmd); err != nil {
			b.logger.Error().Err(err).Str("command", cmd.Name).Msg("command registration failed")
		}
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	links := linkdetect.Classify(m.Content)
	if len(links) == 0 {
		return
	}

	// Opt-out state is re-read per message so a /disable issued moments
	// earlier takes effect without a restart.
	enabled, err := b.store.IsChannelEnabled(b.ctx, m.ChannelID)
	if err != nil {
		b.logger.Error().Err(err).Str("channel_id", m.ChannelID).Msg("opt-out lookup failed")

		return
	}

	if !enabled {
		return
	}

	origin := discord.MessageRef{GuildID: m.GuildID, ChannelID: m.ChannelID, MessageID: m.ID}

	for _, link := range links {
		b.logger.Info().Str("url", link.URL).Str("platform", string(link.Platform)).Msg("link detected")

		go b.pipeline.Process(b.ctx, origin, link)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()

	switch data.Name {
	case "enable":
		b.handleToggle(s, i, true)
	case "disable":
		b.handleToggle(s, i, false)
	case translitCommandName:
		b.handleTranslit(s, i, data)
	}
}

func (b *Bot) handleToggle(s *discordgo.Session, i *discordgo.InteractionCreate, enabled bool) {
	if err := b.store.SetChannelEnabled(b.ctx, i.ChannelID, enabled); err != nil {
		b.logger.Error().Err(err).Str("channel_id", i.ChannelID).Msg("opt-out update failed")
		b.respondEphemeral(s, i, "Something went wrong, try again.")

		return
	}

	verb := "enabled"
	if !enabled {
		verb = "disabled"
	}

	b.respondEphemeral(s, i, fmt.Sprintf("Link fixing %s for <#%s>.", verb, i.ChannelID))
}

func (b *Bot) handleTranslit(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := data.Resolved.Messages[data.TargetID]
	if target == nil {
		b.respondEphemeral(s, i, "Message not available.")

		return
	}

	origin := discord.MessageRef{GuildID: i.GuildID, ChannelID: i.ChannelID, MessageID: target.ID}
	content := fmt.Sprintf(
		"%s\n-# %s uses the '%s' command.",
		TranslitEnToThai(target.Content), invokerName(i), data.Name,
	)

	if _, err := b.messenger.Reply(b.ctx, origin, content); err != nil {
		b.logger.Error().Err(err).Msg("transliteration reply failed")
		b.respondEphemeral(s, i, "Something went wrong, try again.")

		return
	}

	b.respondEphemeral(s, i, "✅ ใช้งานคำสั่งเรียบร้อย")

	go func() {
		select {
		case <-b.ctx.Done():
		case <-time.After(confirmationLifetime):
		}

		if err := s.InteractionResponseDelete(i.Interaction); err != nil {
			b.logger.Warn().Err(err).Msg("delete command confirmation failed")
		}
	}()
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("interaction response failed")
	}
}

func invokerName(i *discordgo.InteractionCreate) string {
	if i.Member != nil {
		if i.Member.Nick != "" {
			return i.Member.Nick
		}

		if i.Member.User != nil {
			return i.Member.User.Username
		}
	}

	if i.User != nil {
		return i.User.Username
	}

	return "someone"
}
