package widget

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/zhouzirui/shopmate/backend/internal/analysis/sentiment"
	"github.com/zhouzirui/shopmate/backend/internal/config"
	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
)

// FallbackMessage is the canned reply for input no knowledge-base entry matches.
const FallbackMessage = "Sorry, I don't have a good answer for that yet. Pick a topic below, or ask to talk to an agent."

const (
	connectingMessage = "Connecting you to a support agent. One moment, please..."
	trackOrderInfo    = "You can track your order from the Orders page in your account, or with the tracking link in your shipping confirmation email. If the tracking page looks wrong, an agent can check the carrier status for you."
)

// Window is the widget's visual form on the page.
type Window string

const (
	WindowClosed    Window = "closed"
	WindowMinimized Window = "minimized"
	WindowOpen      Window = "open"
)

// Hooks are the outbound callbacks the host application implements. They run
// outside the conversation lock and must not call back into the conversation.
type Hooks struct {
	OnSendMessage  func(sessionID, text string)
	OnRequestAgent func(sessionID, page string)
	OnChatOpen     func(sessionID string)
	OnChatClose    func(sessionID string)
}

// Responder produces the fallback reply when the FAQ matcher misses. It is
// optional; without one the fixed FallbackMessage is used.
type Responder interface {
	Reply(ctx context.Context, history []chat.Message, userText string) (string, error)
}

// Conversation is the per-visitor widget state machine. All simulated
// latencies run through the injected clock so tests drive the machine with a
// mock and production uses the wall clock; every timer callback re-checks its
// guard (generation counter, window form, status) before mutating state.
type Conversation struct {
	id        string
	cfg       config.WidgetConfig
	faqs      faq.Store
	clk       clock.Clock
	hooks     Hooks
	responder Responder

	mu            sync.Mutex
	messages      []chat.Message
	status        chat.Status
	agent         *chat.Agent
	window        Window
	unread        int
	welcomed      bool
	proactiveDone bool
	page          string
	updatedAt     time.Time

	gen            int
	stopped        bool
	proactiveTimer *clock.Timer
	pending        []*clock.Timer
	seq            int

	listener func(View)
}

func newConversation(id string, cfg config.WidgetConfig, faqs faq.Store, clk clock.Clock, hooks Hooks, responder Responder) *Conversation {
	return &Conversation{
		id:        id,
		cfg:       cfg,
		faqs:      faqs,
		clk:       clk,
		hooks:     hooks,
		responder: responder,
		status:    chat.StatusIdle,
		window:    WindowClosed,
		updatedAt: clk.Now(),
	}
}

// ID returns the session identifier.
func (c *Conversation) ID() string {
	return c.id
}

// SetListener registers the single view subscriber (nil unregisters). The
// listener receives a fresh snapshot after every state change.
func (c *Conversation) SetListener(fn func(View)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// Open makes the window visible, resets unread and injects the welcome
// message exactly once per session. Opening consumes the proactive trigger.
func (c *Conversation) Open() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	wasOpen := c.window == WindowOpen
	c.window = WindowOpen
	c.unread = 0
	c.cancelProactiveLocked()
	c.proactiveDone = true
	if !c.welcomed {
		c.welcomed = true
		c.appendLocked(chat.Message{Role: chat.RoleBot, Content: c.cfg.WelcomeMessage, Actions: faq.DefaultMenu()})
	}
	view, listener := c.viewLocked()
	c.mu.Unlock()

	if !wasOpen && c.hooks.OnChatOpen != nil {
		c.hooks.OnChatOpen(c.id)
	}
	emit(listener, view)
}

// Close hides the widget and ends the conversation state. The transcript
// survives; reopening does not re-inject the welcome message.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	wasClosed := c.window == WindowClosed
	c.window = WindowClosed
	c.status = chat.StatusClosed
	c.agent = nil
	view, listener := c.viewLocked()
	c.mu.Unlock()

	if !wasClosed && c.hooks.OnChatClose != nil {
		c.hooks.OnChatClose(c.id)
	}
	emit(listener, view)
}

// Minimize collapses the window to the pill without touching the transcript.
func (c *Conversation) Minimize() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.window = WindowMinimized
	view, listener := c.viewLocked()
	c.mu.Unlock()
	emit(listener, view)
}

// Maximize restores the window from the pill and clears the unread count.
func (c *Conversation) Maximize() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.window = WindowOpen
	c.unread = 0
	c.proactiveDone = true
	view, listener := c.viewLocked()
	c.mu.Unlock()
	emit(listener, view)
}

// Send appends a user message and, unless a live agent is connected,
// schedules exactly one automatic reply after the configured latency.
// Empty and whitespace-only input is silently dropped.
func (c *Conversation) Send(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.appendLocked(chat.Message{Role: chat.RoleUser, Content: trimmed})

	if c.status != chat.StatusConnected {
		typingID := ""
		if c.cfg.TypingIndicator {
			typingID = c.appendLocked(chat.Message{Role: chat.RoleBot, IsTyping: true}).ID
		}
		gen := c.gen
		t := c.clk.AfterFunc(c.cfg.ResponseDelay, func() { c.deliverReply(gen, trimmed, typingID) })
		c.pending = append(c.pending, t)
	}
	view, listener := c.viewLocked()
	c.mu.Unlock()

	if c.hooks.OnSendMessage != nil {
		c.hooks.OnSendMessage(c.id, trimmed)
	}
	emit(listener, view)
}

// deliverReply runs when the simulated response latency elapses. Completion
// order is not call order, so every guard is re-checked here.
func (c *Conversation) deliverReply(gen int, userText, typingID string) {
	c.mu.Lock()
	if c.stopped || gen != c.gen {
		c.mu.Unlock()
		return
	}
	if typingID != "" {
		c.removeMessageLocked(typingID)
	}

	// The window may have closed, or an agent may have connected, while the
	// reply was pending. Both suppress the automatic response.
	if c.window == WindowClosed || c.status == chat.StatusConnected {
		view, listener := c.viewLocked()
		c.mu.Unlock()
		emit(listener, view)
		return
	}

	entry, matched := c.faqs.Match(userText)
	content := FallbackMessage
	actions := faq.DefaultMenu()
	if matched {
		content = entry.Answer
		actions = append([]chat.QuickAction(nil), entry.Actions...)
	}

	if !matched && c.responder != nil {
		history := append([]chat.Message(nil), c.messages...)
		c.mu.Unlock()
		reply, err := c.responder.Reply(context.Background(), history, userText)
		c.mu.Lock()
		if c.stopped || gen != c.gen {
			c.mu.Unlock()
			return
		}
		if c.window == WindowClosed || c.status == chat.StatusConnected {
			c.mu.Unlock()
			return
		}
		if err != nil {
			log.Printf("[widget] assisted fallback failed, using canned reply: %v", err)
		} else if strings.TrimSpace(reply) != "" {
			content = strings.TrimSpace(reply)
		}
	}

	if sentiment.Analyze(userText) == sentiment.Frustrated {
		actions = ensureAgentOffer(actions)
	}

	c.appendLocked(chat.Message{Role: chat.RoleBot, Content: content, Actions: actions})
	view, listener := c.viewLocked()
	c.mu.Unlock()
	emit(listener, view)
}

// RequestAgent starts the human handoff: waiting immediately, then connected
// with the default agent after the simulated connect latency. Repeated
// requests while waiting or connected are ignored.
func (c *Conversation) RequestAgent() {
	c.mu.Lock()
	if c.stopped || c.status == chat.StatusWaiting || c.status == chat.StatusConnected {
		c.mu.Unlock()
		return
	}
	c.status = chat.StatusWaiting
	c.appendLocked(chat.Message{Role: chat.RoleBot, Content: connectingMessage})
	gen := c.gen
	page := c.page
	t := c.clk.AfterFunc(c.cfg.ConnectDelay, func() { c.completeHandoff(gen) })
	c.pending = append(c.pending, t)
	view, listener := c.viewLocked()
	c.mu.Unlock()

	if c.hooks.OnRequestAgent != nil {
		c.hooks.OnRequestAgent(c.id, page)
	}
	emit(listener, view)
}

func (c *Conversation) completeHandoff(gen int) {
	c.mu.Lock()
	if c.stopped || gen != c.gen || c.status != chat.StatusWaiting {
		c.mu.Unlock()
		return
	}
	agent := defaultAgent()
	c.status = chat.StatusConnected
	c.agent = &agent
	c.appendLocked(chat.Message{Role: chat.RoleAgent, Content: agentGreeting(agent.Name)})
	view, listener := c.viewLocked()
	c.mu.Unlock()
	emit(listener, view)
}

// QuickAction dispatches a quick-action tag: replay a canonical phrase
// through Send, append a canned info message, or start the handoff directly.
// Unknown tags are silently ignored.
func (c *Conversation) QuickAction(tag string) {
	switch tag {
	case chat.ActionShippingInfo:
		c.Send("How long does shipping take?")
	case chat.ActionReturns:
		c.Send("What is your return policy?")
	case chat.ActionTrackOrder:
		c.appendCanned(trackOrderInfo, []chat.QuickAction{
			{ID: "track-offer-agent", Label: "Talk to an agent", Action: chat.ActionTalkToAgent},
		})
	case chat.ActionTalkToAgent:
		c.RequestAgent()
	default:
		// Custom tags were planned but never defined; ignore them.
	}
}

func (c *Conversation) appendCanned(content string, actions []chat.QuickAction) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.appendLocked(chat.Message{Role: chat.RoleBot, Content: content, Actions: actions})
	view, listener := c.viewLocked()
	c.mu.Unlock()
	emit(listener, view)
}

// Clear resets the transcript, re-arms the welcome message and returns the
// conversation to idle. Pending replies and handoffs are cancelled.
func (c *Conversation) Clear() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.stopTimersLocked()
	c.messages = nil
	c.status = chat.StatusIdle
	c.agent = nil
	c.unread = 0
	c.welcomed = false
	view, listener := c.viewLocked()
	c.mu.Unlock()
	emit(listener, view)
}

// TrackPage records the visitor's current page and re-arms the proactive
// trigger when it is still eligible: never fired, window closed, page on the
// allow-list. Checkout-like pages wait longer before prompting.
func (c *Conversation) TrackPage(path string) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.page = path
	c.cancelProactiveLocked()
	if !c.proactiveDone && c.window == WindowClosed && c.cfg.PathAllowed(path) {
		gen := c.gen
		c.proactiveTimer = c.clk.AfterFunc(c.cfg.ProactiveDelayFor(path), func() { c.fireProactive(gen) })
	}
	c.mu.Unlock()
}

func (c *Conversation) fireProactive(gen int) {
	c.mu.Lock()
	if c.stopped || gen != c.gen || c.proactiveDone || c.window != WindowClosed {
		c.mu.Unlock()
		return
	}
	c.proactiveDone = true
	c.appendLocked(chat.Message{Role: chat.RoleBot, Content: c.cfg.ProactiveMessage, Actions: faq.DefaultMenu()})
	// The window is closed here, so appendLocked did not count this one.
	c.unread++
	view, listener := c.viewLocked()
	c.mu.Unlock()
	emit(listener, view)
}

// Stop disposes the conversation: all pending timers are cancelled and later
// callbacks become no-ops. The conversation accepts no further input.
func (c *Conversation) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.gen++
	c.stopTimersLocked()
	c.listener = nil
	c.mu.Unlock()
}

// Summary condenses the conversation for the support dashboard.
type Summary struct {
	SessionID   string      `json:"sessionId"`
	Status      chat.Status `json:"status"`
	Window      Window      `json:"window"`
	Unread      int         `json:"unread"`
	Messages    int         `json:"messages"`
	LastMessage string      `json:"lastMessage,omitempty"`
	Page        string      `json:"page,omitempty"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Summarize returns the dashboard view of this conversation.
func (c *Conversation) Summarize() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	last := ""
	for i := len(c.messages) - 1; i >= 0; i-- {
		if !c.messages[i].IsTyping {
			last = c.messages[i].Content
			break
		}
	}

	return Summary{
		SessionID:   c.id,
		Status:      c.status,
		Window:      c.window,
		Unread:      c.unread,
		Messages:    len(c.messages),
		LastMessage: last,
		Page:        c.page,
		UpdatedAt:   c.updatedAt,
	}
}

// appendLocked stamps and stores a message. Replies arriving while the window
// is minimized count as unread; user messages never do.
func (c *Conversation) appendLocked(msg chat.Message) chat.Message {
	c.seq++
	msg.ID = fmt.Sprintf("%s-%d", c.id, c.seq)
	msg.Timestamp = c.clk.Now()
	c.messages = append(c.messages, msg)
	c.updatedAt = msg.Timestamp
	if msg.Role != chat.RoleUser && !msg.IsTyping && c.window == WindowMinimized {
		c.unread++
	}
	return msg
}

func (c *Conversation) removeMessageLocked(id string) {
	for i, msg := range c.messages {
		if msg.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return
		}
	}
}

func (c *Conversation) cancelProactiveLocked() {
	if c.proactiveTimer != nil {
		c.proactiveTimer.Stop()
		c.proactiveTimer = nil
	}
}

func (c *Conversation) stopTimersLocked() {
	c.cancelProactiveLocked()
	for _, t := range c.pending {
		t.Stop()
	}
	c.pending = nil
}

func ensureAgentOffer(actions []chat.QuickAction) []chat.QuickAction {
	for _, action := range actions {
		if action.Action == chat.ActionTalkToAgent {
			return actions
		}
	}
	return append(actions, chat.QuickAction{ID: "offer-agent", Label: "Talk to an agent", Action: chat.ActionTalkToAgent})
}

func defaultAgent() chat.Agent {
	return chat.Agent{ID: "agent-default", Name: "Alex", IsOnline: true}
}

func agentGreeting(name string) string {
	return fmt.Sprintf("Hi, this is %s from customer support. I can see your conversation so far - how can I help?", name)
}

func emit(listener func(View), view View) {
	if listener != nil {
		listener(view)
	}
}
