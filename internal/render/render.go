// Package render turns widget view snapshots into HTML fragments. The embed
// script injects these fragments; it never computes state on its own.
package render

import (
	"github.com/chasefleming/elem-go"
	"github.com/chasefleming/elem-go/attrs"

	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
	"github.com/zhouzirui/shopmate/backend/internal/service/widget"
)

// Widget renders the fragment for the view's current form.
func Widget(view widget.View) string {
	switch view.Form {
	case widget.FormOpen:
		return panel(view).Render()
	case widget.FormMinimized:
		return pill(view).Render()
	default:
		return launcher(view).Render()
	}
}

// Page wraps the widget fragment in a standalone document, used by the
// preview endpoint.
func Page(view widget.View) string {
	doc := elem.Html(nil,
		elem.Head(nil,
			elem.Title(nil, elem.Text(view.BotName)),
			elem.Meta(attrs.Props{"charset": "utf-8"}),
		),
		elem.Body(nil, fragmentFor(view)),
	)
	return doc.Render()
}

func fragmentFor(view widget.View) elem.Node {
	switch view.Form {
	case widget.FormOpen:
		return panel(view)
	case widget.FormMinimized:
		return pill(view)
	default:
		return launcher(view)
	}
}

// launcher is the floating button shown while the widget is closed.
func launcher(view widget.View) *elem.Element {
	children := []elem.Node{elem.Span(attrs.Props{attrs.Class: "sm-launcher-icon"}, elem.Text("Chat"))}
	if view.Badge != "" {
		children = append(children, badge(view.Badge))
	}
	return elem.Button(attrs.Props{
		attrs.Class:   "sm-launcher sm-corner-" + view.ButtonCorner,
		"data-action": "open",
	}, children...)
}

// pill is the minimized bar with the bot name and the unread badge.
func pill(view widget.View) *elem.Element {
	children := []elem.Node{elem.Span(attrs.Props{attrs.Class: "sm-pill-name"}, elem.Text(view.HeaderName))}
	if view.Badge != "" {
		children = append(children, badge(view.Badge))
	}
	return elem.Div(attrs.Props{
		attrs.Class:   "sm-pill sm-corner-" + view.ButtonCorner,
		"data-action": "maximize",
	}, children...)
}

// panel is the full chat window: header, transcript and composer.
func panel(view widget.View) *elem.Element {
	children := []elem.Node{header(view), transcript(view)}
	if view.Composer {
		children = append(children, composer())
	}
	return elem.Div(attrs.Props{attrs.Class: "sm-panel sm-corner-" + view.ButtonCorner}, children...)
}

func header(view widget.View) *elem.Element {
	presence := "sm-presence-offline"
	if view.HeaderOnline {
		presence = "sm-presence-online"
	}
	return elem.Div(attrs.Props{attrs.Class: "sm-header"},
		elem.Span(attrs.Props{attrs.Class: presence}),
		elem.Span(attrs.Props{attrs.Class: "sm-header-name"}, elem.Text(view.HeaderName)),
		elem.Button(attrs.Props{attrs.Class: "sm-minimize", "data-action": "minimize"}, elem.Text("_")),
		elem.Button(attrs.Props{attrs.Class: "sm-close", "data-action": "close"}, elem.Text("x")),
	)
}

func transcript(view widget.View) *elem.Element {
	nodes := make([]elem.Node, 0, len(view.Messages))
	for _, msg := range view.Messages {
		nodes = append(nodes, bubble(msg))
	}
	props := attrs.Props{attrs.Class: "sm-transcript"}
	if view.ScrollTo != "" {
		props["data-scroll-to"] = view.ScrollTo
	}
	return elem.Div(props, nodes...)
}

func bubble(msg chat.Message) *elem.Element {
	if msg.IsTyping {
		return elem.Div(attrs.Props{attrs.ID: msg.ID, attrs.Class: "sm-bubble sm-typing"}, elem.Text("..."))
	}

	children := []elem.Node{elem.Span(attrs.Props{attrs.Class: "sm-bubble-text"}, elem.Text(msg.Content))}
	if len(msg.Actions) > 0 {
		buttons := make([]elem.Node, 0, len(msg.Actions))
		for _, action := range msg.Actions {
			buttons = append(buttons, elem.Button(attrs.Props{
				attrs.Class:         "sm-quick-action",
				"data-quick-action": action.Action,
			}, elem.Text(action.Label)))
		}
		children = append(children, elem.Div(attrs.Props{attrs.Class: "sm-quick-actions"}, buttons...))
	}

	return elem.Div(attrs.Props{attrs.ID: msg.ID, attrs.Class: "sm-bubble sm-role-" + string(msg.Role)}, children...)
}

func composer() *elem.Element {
	return elem.Div(attrs.Props{attrs.Class: "sm-composer"},
		elem.Input(attrs.Props{
			attrs.Type:        "text",
			attrs.Class:       "sm-composer-input",
			attrs.Placeholder: "Type a message...",
		}),
		elem.Button(attrs.Props{attrs.Class: "sm-send", "data-action": "send"}, elem.Text("Send")),
	)
}

func badge(label string) *elem.Element {
	return elem.Span(attrs.Props{attrs.Class: "sm-badge"}, elem.Text(label))
}
