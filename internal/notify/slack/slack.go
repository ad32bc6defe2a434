// Package slack delivers notify events to a Slack channel using the Web API.
package slack

import (
	"context"
	"errors"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/sprintdeck/internal/notify"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Notifier posts alerts to a single Slack channel.
type Notifier struct {
	client    slackClient
	channelID string
}

// New creates a Slack notifier from a bot token and target channel.
func New(botToken, channelID string) (*Notifier, error) {
	if botToken == "" {
		return nil, errors.New("slack: bot token is required")
	}
	if channelID == "" {
		return nil, errors.New("slack: channel id is required")
	}
	return &Notifier{
		client:    slackapi.New(botToken),
		channelID: channelID,
	}, nil
}

func (n *Notifier) Name() string { return "slack" }

// Notify posts the event as a single message with a severity color bar.
func (n *Notifier) Notify(ctx context.Context, ev notify.Event) error {
	attachment := slackapi.Attachment{
		Color: colorFor(ev.Risk),
		Text:  notify.Format(ev),
	}
	_, _, err := n.client.PostMessageContext(ctx, n.channelID,
		slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

func colorFor(risk string) string {
	switch risk {
	case "critical":
		return "#d32f2f"
	case "warning":
		return "#f9a825"
	default:
		return "#36a64f"
	}
}
