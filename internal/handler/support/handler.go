package support

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/shopmate/backend/internal/repository"
	widgetService "github.com/zhouzirui/shopmate/backend/internal/service/widget"
	"github.com/zhouzirui/shopmate/backend/pkg/utils"
)

// Handler serves the support desk's read-only view: live conversations plus
// the archived transcripts and handoff queue when Mongo is configured.
type Handler struct {
	widgetSvc *widgetService.Service
	archive   *repository.WidgetArchive
}

// New creates the support handler. The archive may be nil.
func New(widgetSvc *widgetService.Service, archive *repository.WidgetArchive) *Handler {
	return &Handler{
		widgetSvc: widgetSvc,
		archive:   archive,
	}
}

// RegisterRoutes mounts the support routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/support/conversations", h.handleConversations)
	r.Get("/support/archive/{sessionID}", h.handleArchivedTranscript)
	r.Get("/support/handoffs", h.handleHandoffs)
}

func (h *Handler) handleConversations(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"conversations": h.widgetSvc.Summaries(r.Context()),
	})
}

func (h *Handler) handleArchivedTranscript(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	messages, err := h.archive.MessagesBySession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load archived transcript")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  messages,
	})
}

func (h *Handler) handleHandoffs(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "archive not configured")
		return
	}

	handoffs, err := h.archive.Handoffs(r.Context(), 50)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load handoffs")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"handoffs": handoffs})
}
