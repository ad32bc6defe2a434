package discord

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/zulandar/sprintdeck/internal/notify"
)

type mockSession struct {
	channelID string
	content   string
	err       error
}

func (m *mockSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channelID = channelID
	m.content = content
	return &discordgo.Message{}, m.err
}

func sampleEvent() notify.Event {
	return notify.Event{
		SprintName:     "Sprint 7",
		ItemTitle:      "Fix login",
		StoryPoints:    5,
		Risk:           "critical",
		Recommendation: "DEFER",
		Reasoning:      "over capacity",
	}
}

func TestNotifySendsFormattedMessage(t *testing.T) {
	mock := &mockSession{}
	n := &Notifier{session: mock, channelID: "789"}

	if err := n.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if mock.channelID != "789" {
		t.Errorf("sent to %s, want 789", mock.channelID)
	}
	if !strings.Contains(mock.content, "Fix login") || !strings.Contains(mock.content, "DEFER") {
		t.Errorf("message missing event details: %q", mock.content)
	}
}

func TestNotifyWrapsSendError(t *testing.T) {
	mock := &mockSession{err: errors.New("missing access")}
	n := &Notifier{session: mock, channelID: "789"}

	err := n.Notify(context.Background(), sampleEvent())
	if err == nil || !strings.Contains(err.Error(), "discord: send message") {
		t.Errorf("err = %v", err)
	}
}

func TestNotifyHonorsCancelledContext(t *testing.T) {
	mock := &mockSession{}
	n := &Notifier{session: mock, channelID: "789"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, sampleEvent()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if mock.content != "" {
		t.Error("message sent despite cancelled context")
	}
}

func TestNewValidatesInputs(t *testing.T) {
	if _, err := New("", "789"); err == nil {
		t.Error("missing token accepted")
	}
	if _, err := New("token", ""); err == nil {
		t.Error("missing channel accepted")
	}
}
