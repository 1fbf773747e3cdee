package widget

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/shopmate/backend/internal/config"
	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
	"github.com/zhouzirui/shopmate/backend/internal/render"
	widgetService "github.com/zhouzirui/shopmate/backend/internal/service/widget"
	"github.com/zhouzirui/shopmate/backend/pkg/utils"
)

// Handler serves the widget's REST surface: session provisioning, the static
// configuration the embed script needs, the knowledge base and a preview page.
type Handler struct {
	widgetSvc *widgetService.Service
	faqs      faq.Store
	cfg       config.WidgetConfig
}

// New creates the widget REST handler.
func New(widgetSvc *widgetService.Service, faqs faq.Store, cfg config.WidgetConfig) *Handler {
	return &Handler{
		widgetSvc: widgetSvc,
		faqs:      faqs,
		cfg:       cfg,
	}
}

// RegisterRoutes mounts the widget routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/widget/sessions", h.handleCreateSession)
	r.Delete("/widget/sessions/{sessionID}", h.handleDeleteSession)
	r.Get("/widget/config", h.handleConfig)
	r.Get("/widget/faqs", h.handleFAQs)
	r.Get("/widget/preview", h.handlePreview)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Page string `json:"page"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv := h.widgetSvc.Create(r.Context())
	if payload.Page != "" {
		conv.TrackPage(payload.Page)
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"sessionId": conv.ID(),
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.widgetSvc.Get(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	h.widgetSvc.Remove(r.Context(), sessionID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// handleConfig returns the display settings the embed script applies before
// the first websocket snapshot arrives.
func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"botName":         h.cfg.BotName,
		"buttonCorner":    h.cfg.ButtonCorner,
		"typingIndicator": h.cfg.TypingIndicator,
	})
}

func (h *Handler) handleFAQs(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"entries": h.faqs.List(),
		"menu":    faq.DefaultMenu(),
	})
}

// handlePreview renders a throwaway opened widget as a standalone page, for
// eyeballing the markup without a storefront.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	conv := h.widgetSvc.Create(r.Context())
	defer h.widgetSvc.Remove(r.Context(), conv.ID())

	conv.Open()
	page := render.Page(conv.View())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page)); err != nil {
		return
	}
}
