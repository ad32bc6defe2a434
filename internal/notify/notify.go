// Package notify pushes analysis alerts to chat platforms (Slack, Discord).
// Delivery is best effort; a failed notifier never fails the analysis that
// triggered it.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Event is an analysis outcome worth telling the team about.
type Event struct {
	SpaceID        string
	SprintName     string
	ItemTitle      string
	StoryPoints    int
	Risk           string
	Recommendation string
	Reasoning      string
}

// Notifier delivers events to a single platform.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Name() string
}

// Format renders an event as the plain-text message both platforms share.
func Format(ev Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":rotating_light: Sprint impact alert: %s\n", ev.SprintName)
	fmt.Fprintf(&b, "Item: %s (%d SP)\n", ev.ItemTitle, ev.StoryPoints)
	fmt.Fprintf(&b, "Risk: %s | Recommendation: %s\n", strings.ToUpper(ev.Risk), ev.Recommendation)
	b.WriteString(ev.Reasoning)
	return b.String()
}

// Fanout sends an event to every notifier, logging failures instead of
// propagating them.
type Fanout struct {
	Notifiers []Notifier
	Log       zerolog.Logger
}

// Notify delivers the event to all configured notifiers.
func (f *Fanout) Notify(ctx context.Context, ev Event) {
	for _, n := range f.Notifiers {
		if err := n.Notify(ctx, ev); err != nil {
			f.Log.Warn().
				Err(err).
				Str("notifier", n.Name()).
				Str("item", ev.ItemTitle).
				Msg("notification failed")
			continue
		}
		f.Log.Debug().
			Str("notifier", n.Name()).
			Str("item", ev.ItemTitle).
			Msg("notification sent")
	}
}
