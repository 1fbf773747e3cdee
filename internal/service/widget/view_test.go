package widget

import (
	"fmt"
	"testing"
	"time"
)

func TestBadgeLabel(t *testing.T) {
	cases := []struct {
		unread int
		want   string
	}{
		{0, ""},
		{-3, ""},
		{1, "1"},
		{9, "9"},
		{10, "9+"},
		{42, "9+"},
	}
	for _, c := range cases {
		if got := badgeLabel(c.unread); got != c.want {
			t.Errorf("badgeLabel(%d) = %q, want %q", c.unread, got, c.want)
		}
	}
}

func TestBadgeCapsInTheMinimizedView(t *testing.T) {
	conv, mock := newTestConversation(Hooks{}, nil)
	conv.Open()
	conv.Minimize()

	for i := 0; i < 12; i++ {
		conv.Send(fmt.Sprintf("question %d asdkjasd", i))
		mock.Add(time.Second)
	}

	view := conv.View()
	if view.Unread != 12 {
		t.Fatalf("expected 12 unread replies, got %d", view.Unread)
	}
	if view.Badge != "9+" {
		t.Fatalf("expected the badge to cap at \"9+\", got %q", view.Badge)
	}
}

func TestFormFollowsWindowState(t *testing.T) {
	conv, _ := newTestConversation(Hooks{}, nil)

	if view := conv.View(); view.Form != FormClosed || view.Composer {
		t.Fatalf("expected the closed form without a composer, got %s composer=%v", view.Form, view.Composer)
	}

	conv.Open()
	if view := conv.View(); view.Form != FormOpen || !view.Composer {
		t.Fatalf("expected the open form with a composer, got %s composer=%v", view.Form, view.Composer)
	}

	conv.Minimize()
	if view := conv.View(); view.Form != FormMinimized || view.Composer {
		t.Fatalf("expected the minimized form without a composer, got %s composer=%v", view.Form, view.Composer)
	}
}

func TestHeaderSwitchesToAgentIdentity(t *testing.T) {
	conv, mock := newTestConversation(Hooks{}, nil)
	conv.Open()

	view := conv.View()
	if view.HeaderName != view.BotName {
		t.Fatalf("expected the bot header before handoff, got %q", view.HeaderName)
	}

	conv.RequestAgent()
	mock.Add(2 * time.Second)

	view = conv.View()
	if !view.Connected {
		t.Fatal("expected a connected view after the handoff completes")
	}
	if view.HeaderName != "Alex" || !view.HeaderOnline {
		t.Fatalf("expected the agent header, got %q online=%v", view.HeaderName, view.HeaderOnline)
	}
}

func TestScrollTargetTracksLatestMessage(t *testing.T) {
	conv, mock := newTestConversation(Hooks{}, nil)

	if view := conv.View(); view.ScrollTo != "" {
		t.Fatalf("expected no scroll target on an empty transcript, got %q", view.ScrollTo)
	}

	conv.Open()
	conv.Send("where is my order?")
	mock.Add(time.Second)

	view := conv.View()
	if view.ScrollTo != view.Messages[len(view.Messages)-1].ID {
		t.Fatalf("expected the scroll target on the latest message, got %q", view.ScrollTo)
	}
}
