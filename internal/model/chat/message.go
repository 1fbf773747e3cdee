package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleBot   Role = "bot"
	RoleAgent Role = "agent"
)

// Message is a single transcript entry. Messages are immutable once appended;
// the only exception is the transient typing placeholder, which is removed
// (never mutated) when the real reply lands.
type Message struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Role      Role          `json:"role"`
	Timestamp time.Time     `json:"timestamp"`
	IsTyping  bool          `json:"isTyping,omitempty"`
	Actions   []QuickAction `json:"actions,omitempty"`
}

// QuickAction is a labeled button attached to a bot message. Clicking one
// re-enters dispatch with its Action tag instead of free text.
type QuickAction struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Dispatch tags understood by the widget. Unknown tags are ignored.
const (
	ActionShippingInfo = "shipping-info"
	ActionReturns      = "returns"
	ActionTrackOrder   = "track-order"
	ActionTalkToAgent  = "talk-to-agent"
)
