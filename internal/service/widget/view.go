package widget

import (
	"strconv"

	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
)

// Form is one of the three mutually exclusive visual forms of the widget.
type Form string

const (
	FormClosed    Form = "closed"
	FormMinimized Form = "minimized"
	FormOpen      Form = "open"
)

// View is the render-ready snapshot pushed to the client after every state
// change. It is a pure function of conversation state: the client shim only
// draws it and reports events back.
type View struct {
	SessionID    string         `json:"sessionId"`
	Form         Form           `json:"form"`
	Status       chat.Status    `json:"status"`
	Unread       int            `json:"unread"`
	Badge        string         `json:"badge,omitempty"`
	BotName      string         `json:"botName"`
	HeaderName   string         `json:"headerName"`
	HeaderAvatar string         `json:"headerAvatar,omitempty"`
	HeaderOnline bool           `json:"headerOnline"`
	Connected    bool           `json:"connected"`
	ButtonCorner string         `json:"buttonCorner"`
	Messages     []chat.Message `json:"messages"`
	ScrollTo     string         `json:"scrollTo,omitempty"`
	Composer     bool           `json:"composer"`
}

// View returns the current snapshot.
func (c *Conversation) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, _ := c.viewLocked()
	return view
}

func (c *Conversation) viewLocked() (View, func(View)) {
	form := FormClosed
	switch c.window {
	case WindowMinimized:
		form = FormMinimized
	case WindowOpen:
		form = FormOpen
	}

	headerName := c.cfg.BotName
	headerAvatar := ""
	headerOnline := true
	connected := c.status == chat.StatusConnected
	if connected && c.agent != nil {
		headerName = c.agent.Name
		headerAvatar = c.agent.Avatar
		headerOnline = c.agent.IsOnline
	}

	scrollTo := ""
	if len(c.messages) > 0 {
		scrollTo = c.messages[len(c.messages)-1].ID
	}

	view := View{
		SessionID:    c.id,
		Form:         form,
		Status:       c.status,
		Unread:       c.unread,
		Badge:        badgeLabel(c.unread),
		BotName:      c.cfg.BotName,
		HeaderName:   headerName,
		HeaderAvatar: headerAvatar,
		HeaderOnline: headerOnline,
		Connected:    connected,
		ButtonCorner: c.cfg.ButtonCorner,
		Messages:     append([]chat.Message(nil), c.messages...),
		ScrollTo:     scrollTo,
		Composer:     form == FormOpen,
	}
	return view, c.listener
}

// badgeLabel caps the unread display at "9+".
func badgeLabel(unread int) string {
	if unread <= 0 {
		return ""
	}
	if unread > 9 {
		return "9+"
	}
	return strconv.Itoa(unread)
}
