package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeNotifier struct {
	name  string
	calls int
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, ev Event) error {
	f.calls++
	return f.err
}

func (f *fakeNotifier) Name() string { return f.name }

func TestFormat(t *testing.T) {
	msg := Format(Event{
		SprintName:     "Sprint 7",
		ItemTitle:      "Fix login",
		StoryPoints:    5,
		Risk:           "critical",
		Recommendation: "SWAP",
		Reasoning:      "over capacity",
	})
	for _, want := range []string{"Sprint 7", "Fix login", "5 SP", "CRITICAL", "SWAP", "over capacity"} {
		if !strings.Contains(msg, want) {
			t.Errorf("formatted message missing %q:\n%s", want, msg)
		}
	}
}

func TestFanoutContinuesAfterFailure(t *testing.T) {
	broken := &fakeNotifier{name: "broken", err: errors.New("boom")}
	healthy := &fakeNotifier{name: "healthy"}
	f := &Fanout{
		Notifiers: []Notifier{broken, healthy},
		Log:       zerolog.Nop(),
	}

	f.Notify(context.Background(), Event{ItemTitle: "x"})

	if broken.calls != 1 || healthy.calls != 1 {
		t.Errorf("calls = broken %d, healthy %d; want 1 each", broken.calls, healthy.calls)
	}
}

func TestFanoutWithNoNotifiers(t *testing.T) {
	f := &Fanout{Log: zerolog.Nop()}
	// Must not panic.
	f.Notify(context.Background(), Event{ItemTitle: "x"})
}
