package slack

import (
	"context"
	"errors"
	"testing"

	slackapi "github.com/slack-go/slack"

	"github.com/zulandar/sprintdeck/internal/notify"
)

type mockClient struct {
	channelID string
	optCount  int
	err       error
}

func (m *mockClient) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.channelID = channelID
	m.optCount = len(options)
	return "C1", "ts", m.err
}

func sampleEvent() notify.Event {
	return notify.Event{
		SprintName:     "Sprint 7",
		ItemTitle:      "Fix login",
		StoryPoints:    5,
		Risk:           "critical",
		Recommendation: "SWAP",
		Reasoning:      "over capacity",
	}
}

func TestNotifyPostsToConfiguredChannel(t *testing.T) {
	mock := &mockClient{}
	n := &Notifier{client: mock, channelID: "C042"}

	if err := n.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if mock.channelID != "C042" {
		t.Errorf("posted to %s, want C042", mock.channelID)
	}
	if mock.optCount == 0 {
		t.Error("no message options attached")
	}
}

func TestNotifyWrapsAPIError(t *testing.T) {
	mock := &mockClient{err: errors.New("channel_not_found")}
	n := &Notifier{client: mock, channelID: "C042"}

	err := n.Notify(context.Background(), sampleEvent())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "slack: post message: channel_not_found" {
		t.Errorf("err = %q", got)
	}
}

func TestNewValidatesInputs(t *testing.T) {
	if _, err := New("", "C042"); err == nil {
		t.Error("missing token accepted")
	}
	if _, err := New("xoxb-token", ""); err == nil {
		t.Error("missing channel accepted")
	}
	if n, err := New("xoxb-token", "C042"); err != nil || n == nil {
		t.Errorf("valid inputs rejected: %v", err)
	}
}

func TestColorFor(t *testing.T) {
	if colorFor("critical") == colorFor("safe") {
		t.Error("critical and safe share a color")
	}
	if colorFor("unknown") != colorFor("safe") {
		t.Error("unknown risk should fall back to the safe color")
	}
}
