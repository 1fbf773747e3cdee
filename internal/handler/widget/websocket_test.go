package widget

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/benbjohnson/clock"

	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
	widgetService "github.com/zhouzirui/shopmate/backend/internal/service/widget"
)

func newTestMachine() (*widgetService.Conversation, *clock.Mock) {
	mock := clock.NewMock()
	svc := widgetService.NewService(testWidgetConfig(), faq.NewMemoryStore(faq.Seed()), mock, widgetService.Hooks{}, nil)
	return svc.Create(context.Background()), mock
}

func event(kind string, data any) *inboundEvent {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	return &inboundEvent{Type: kind, Data: raw}
}

func TestHandleEventDrivesTheStateMachine(t *testing.T) {
	conv, mock := newTestMachine()
	handler := NewWebSocketHandler(nil)
	conn := &wsConn{}

	handler.handleEvent(conn, conv, event("open", nil))
	if view := conv.View(); view.Form != widgetService.FormOpen || len(view.Messages) != 1 {
		t.Fatalf("expected an open widget with a welcome message, got %s with %d messages", view.Form, len(view.Messages))
	}

	handler.handleEvent(conn, conv, event("message", messageEvent{Text: "where is my order?"}))
	mock.Add(testWidgetConfig().ResponseDelay)
	view := conv.View()
	if view.Messages[len(view.Messages)-1].Role != chat.RoleBot {
		t.Fatal("expected a bot reply after the message event")
	}

	handler.handleEvent(conn, conv, event("quick_action", quickActionEvent{Action: chat.ActionTalkToAgent}))
	if got := conv.View().Status; got != chat.StatusWaiting {
		t.Fatalf("expected a handoff after the quick_action event, got %s", got)
	}

	handler.handleEvent(conn, conv, event("minimize", nil))
	if got := conv.View().Form; got != widgetService.FormMinimized {
		t.Fatalf("expected a minimized widget, got %s", got)
	}

	handler.handleEvent(conn, conv, event("page", pageEvent{Path: "/checkout"}))
	handler.handleEvent(conn, conv, event("clear", nil))
	if got := len(conv.View().Messages); got != 0 {
		t.Fatalf("expected an empty transcript after clear, got %d messages", got)
	}
}
