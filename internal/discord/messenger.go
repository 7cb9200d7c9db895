// Package discord adapts the narrow messaging capability the resolution
// pipeline needs onto discordgo and the Discord REST API. Component-based
// payloads go through the REST endpoint directly since they are not covered
// by the gateway library's send helpers.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// MessageRef is an opaque handle to a message in a channel.
type MessageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// Messenger exposes reply, fetch, suppress, delete and rich-dispatch
// operations over a single shared session. Safe for concurrent use.
type Messenger struct {
	session *discordgo.Session
	rest    *restClient
}

func NewMessenger(session *discordgo.Session, token string) *Messenger {
	return &Messenger{
		session: session,
		rest:    newRESTClient(token),
	}
}

// Reply posts content as a reply to orig without mentioning its author.
func (m *Messenger) Reply(ctx context.Context, orig MessageRef, content string) (MessageRef, error) {
	sent, err := m.session.ChannelMessageSendComplex(orig.ChannelID, &discordgo.MessageSend{
		Content: content,
		Reference: &discordgo.MessageReference{
			GuildID:   orig.GuildID,
			ChannelID: orig.ChannelID,
			MessageID: orig.MessageID,
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{RepliedUser: false},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return MessageRef{}, fmt.Errorf("send reply: %w", err)
	}

	return MessageRef{GuildID: orig.GuildID, ChannelID: orig.ChannelID, MessageID: sent.ID}, nil
}

// EmbedCount re-fetches ref and reports how many embeds the platform has
// attached to it so far.
func (m *Messenger) EmbedCount(ctx context.Context, ref MessageRef) (int, error) {
	msg, err := m.session.ChannelMessage(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("fetch message: %w", err)
	}

	return len(msg.Embeds), nil
}

// SuppressEmbeds hides the native link previews on ref.
func (m *Messenger) SuppressEmbeds(ctx context.Context, ref MessageRef) error {
	flags := discordgo.MessageFlagsSuppressEmbeds

	_, err := m.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: ref.ChannelID,
		ID:      ref.MessageID,
		Flags:   flags,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("suppress embeds: %w", err)
	}

	return nil
}

// Delete removes ref.
func (m *Messenger) Delete(ctx context.Context, ref MessageRef) error {
	if err := m.session.ChannelMessageDelete(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	return nil
}

// JumpLink returns the stable reference URL for ref, used in logs.
func (m *Messenger) JumpLink(ref MessageRef) string {
	guild := ref.GuildID
	if guild == "" {
		guild = "@me"
	}

	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guild, ref.ChannelID, ref.MessageID)
}
