package render

import (
	"strings"
	"testing"

	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
	"github.com/zhouzirui/shopmate/backend/internal/service/widget"
)

func openView() widget.View {
	return widget.View{
		SessionID:    "s1",
		Form:         widget.FormOpen,
		BotName:      "Mia",
		HeaderName:   "Mia",
		HeaderOnline: true,
		ButtonCorner: "bottom-right",
		Composer:     true,
		ScrollTo:     "s1-2",
		Messages: []chat.Message{
			{ID: "s1-1", Role: chat.RoleBot, Content: "Hi! How can I help?", Actions: []chat.QuickAction{
				{ID: "a1", Label: "Track my order", Action: chat.ActionTrackOrder},
			}},
			{ID: "s1-2", Role: chat.RoleUser, Content: "where is my order?"},
		},
	}
}

func TestWidgetOpenFormRendersTranscript(t *testing.T) {
	html := Widget(openView())

	for _, want := range []string{
		"Hi! How can I help?",
		"where is my order?",
		`data-quick-action="` + chat.ActionTrackOrder + `"`,
		"sm-composer",
		`data-scroll-to="s1-2"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("open form missing %q in %s", want, html)
		}
	}
}

func TestWidgetClosedFormShowsBadge(t *testing.T) {
	view := widget.View{Form: widget.FormClosed, Badge: "9+", ButtonCorner: "bottom-right"}
	html := Widget(view)

	if !strings.Contains(html, "9+") {
		t.Fatalf("expected the unread badge on the launcher, got %s", html)
	}
	if !strings.Contains(html, `data-action="open"`) {
		t.Fatalf("expected an open action on the launcher, got %s", html)
	}
	if strings.Contains(html, "sm-composer") {
		t.Fatal("the closed form must not render a composer")
	}
}

func TestWidgetMinimizedFormShowsName(t *testing.T) {
	view := widget.View{Form: widget.FormMinimized, HeaderName: "Alex", Badge: "2", ButtonCorner: "bottom-left"}
	html := Widget(view)

	for _, want := range []string{"Alex", "2", `data-action="maximize"`, "sm-corner-bottom-left"} {
		if !strings.Contains(html, want) {
			t.Errorf("minimized form missing %q in %s", want, html)
		}
	}
}

func TestWidgetTypingPlaceholder(t *testing.T) {
	view := openView()
	view.Messages = append(view.Messages, chat.Message{ID: "s1-3", Role: chat.RoleBot, IsTyping: true})

	if !strings.Contains(Widget(view), "sm-typing") {
		t.Fatal("expected a typing bubble in the transcript")
	}
}

func TestPageWrapsDocument(t *testing.T) {
	html := Page(openView())

	if !strings.Contains(html, "<html>") || !strings.Contains(html, "<body>") {
		t.Fatalf("expected a full document, got %s", html)
	}
	if !strings.Contains(html, "Hi! How can I help?") {
		t.Fatal("expected the widget fragment inside the document")
	}
}
