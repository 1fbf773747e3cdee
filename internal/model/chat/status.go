package chat

// Status is the single authoritative conversation state. It decides whether
// user text is routed to the FAQ matcher or assumed to reach a live agent.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusWaiting   Status = "waiting"
	StatusConnected Status = "connected"
	StatusClosed    Status = "closed"
)

// Agent describes the live support agent once a handoff completes.
// It exists only while Status is StatusConnected.
type Agent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	IsOnline bool   `json:"isOnline"`
}
