package widget

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	widgetService "github.com/zhouzirui/shopmate/backend/internal/service/widget"
)

// WebSocketHandler pushes view snapshots to the embed script and feeds its
// events back into the state machine.
type WebSocketHandler struct {
	widgetSvc *widgetService.Service
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler creates the websocket handler.
func NewWebSocketHandler(widgetSvc *widgetService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		widgetSvc: widgetSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/widget/ws/{sessionID}", h.handleWebSocket)
}

type inboundEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

type messageEvent struct {
	Text string `json:"text"`
}

type quickActionEvent struct {
	Action string `json:"action"`
}

type pageEvent struct {
	Path string `json:"path"`
}

type outgoingEnvelope struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// wsConn serializes writes. Snapshots arrive from timer goroutines as well as
// the read loop, and gorilla connections allow one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conv, err := h.widgetSvc.Get(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	rawConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer rawConn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	conn := &wsConn{conn: rawConn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	rawConn.SetReadDeadline(time.Now().Add(60 * time.Second))
	rawConn.SetPongHandler(func(string) error {
		rawConn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)

	conv.SetListener(func(view widgetService.View) {
		h.sendState(conn, view)
	})
	defer conv.SetListener(nil)

	// Initial snapshot so the embed script can draw before any event.
	h.sendState(conn, conv.View())

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var event inboundEvent
			if err := rawConn.ReadJSON(&event); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			rawConn.SetReadDeadline(time.Now().Add(60 * time.Second))

			if event.SessionID != "" && event.SessionID != sessionID {
				h.sendError(conn, "session mismatch")
				continue
			}

			h.handleEvent(conn, conv, &event)
		}
	}
}

func (h *WebSocketHandler) handleEvent(conn *wsConn, conv *widgetService.Conversation, event *inboundEvent) {
	switch event.Type {
	case "open":
		conv.Open()
	case "close":
		conv.Close()
	case "minimize":
		conv.Minimize()
	case "maximize":
		conv.Maximize()
	case "clear":
		conv.Clear()
	case "message":
		var payload messageEvent
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			h.sendError(conn, "invalid message payload")
			return
		}
		conv.Send(payload.Text)
	case "quick_action":
		var payload quickActionEvent
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			h.sendError(conn, "invalid quick_action payload")
			return
		}
		conv.QuickAction(payload.Action)
	case "request_agent":
		conv.RequestAgent()
	case "page":
		var payload pageEvent
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			h.sendError(conn, "invalid page payload")
			return
		}
		conv.TrackPage(payload.Path)
	default:
		h.sendError(conn, "unsupported event type: "+event.Type)
	}
}

func (h *WebSocketHandler) sendState(conn *wsConn, view widgetService.View) {
	envelope := outgoingEnvelope{
		Type:      "state",
		SessionID: view.SessionID,
		Data:      view,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.writeJSON(envelope); err != nil {
		log.Printf("[websocket] write state failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *wsConn, message string) {
	envelope := outgoingEnvelope{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.writeJSON(envelope); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *wsConn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
