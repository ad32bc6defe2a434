// Package discord delivers notify events to a Discord channel.
package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/zulandar/sprintdeck/internal/notify"
)

// session abstracts the discordgo methods we use, enabling test mocks.
type session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts alerts to a single Discord channel.
type Notifier struct {
	session   session
	channelID string
}

// New creates a Discord notifier from a bot token and target channel.
func New(botToken, channelID string) (*Notifier, error) {
	if botToken == "" {
		return nil, errors.New("discord: bot token is required")
	}
	if channelID == "" {
		return nil, errors.New("discord: channel id is required")
	}
	dg, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &Notifier{session: dg, channelID: channelID}, nil
}

func (n *Notifier) Name() string { return "discord" }

// Notify posts the event as a plain message. Discord REST calls carry no
// context, so cancellation is checked up front.
func (n *Notifier) Notify(ctx context.Context, ev notify.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("discord: %w", err)
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, notify.Format(ev)); err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}
