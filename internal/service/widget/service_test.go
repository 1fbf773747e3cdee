package widget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
)

func newTestService() (*Service, *clock.Mock) {
	mock := clock.NewMock()
	svc := NewService(testConfig(), faq.NewMemoryStore(faq.Seed()), mock, Hooks{}, nil)
	return svc, mock
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	conv := svc.Create(ctx)
	if conv.ID() == "" {
		t.Fatal("expected a generated session identifier")
	}

	got, err := svc.Get(ctx, conv.ID())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != conv {
		t.Fatal("expected Get to return the same conversation instance")
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestServiceRemoveStopsTheConversation(t *testing.T) {
	svc, mock := newTestService()
	ctx := context.Background()

	conv := svc.Create(ctx)
	conv.Open()
	conv.Send("asdkjasd")

	svc.Remove(ctx, conv.ID())

	if _, err := svc.Get(ctx, conv.ID()); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected the conversation to be gone, got %v", err)
	}

	before := len(conv.View().Messages)
	mock.Add(time.Hour)
	if got := len(conv.View().Messages); got != before {
		t.Fatalf("expected no timer callbacks after removal, got %d messages (was %d)", got, before)
	}
}

func TestServiceSummariesOrderedByActivity(t *testing.T) {
	svc, mock := newTestService()
	ctx := context.Background()

	first := svc.Create(ctx)
	first.Open()

	mock.Add(time.Minute)

	second := svc.Create(ctx)
	second.Open()
	second.Send("where is my order?")

	summaries := svc.Summaries(ctx)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].SessionID != second.ID() {
		t.Fatalf("expected the most recently active conversation first, got %s", summaries[0].SessionID)
	}
	if summaries[1].LastMessage != testConfig().WelcomeMessage {
		t.Fatalf("expected the welcome message as last activity, got %q", summaries[1].LastMessage)
	}
}
