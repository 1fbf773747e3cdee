package widget

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/shopmate/backend/internal/config"
	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
	widgetService "github.com/zhouzirui/shopmate/backend/internal/service/widget"
)

func testWidgetConfig() config.WidgetConfig {
	return config.WidgetConfig{
		BotName:          "Mia",
		WelcomeMessage:   "Hi! I'm your shopping assistant. How can I help you today?",
		ProactiveMessage: "Need a hand?",
		TypingIndicator:  true,
		ButtonCorner:     "bottom-right",

		ResponseDelay: time.Second,
		ConnectDelay:  2 * time.Second,

		ProactiveDelay:         30 * time.Second,
		ProactiveCheckoutDelay: 45 * time.Second,
		ProactivePaths:         []string{"/products", "/cart", "/checkout"},
	}
}

func setupRouter() (*chi.Mux, *widgetService.Service) {
	cfg := testWidgetConfig()
	faqs := faq.NewMemoryStore(faq.Seed())
	svc := widgetService.NewService(cfg, faqs, clock.NewMock(), widgetService.Hooks{}, nil)
	handler := New(svc, faqs, cfg)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func TestCreateSessionReturnsID(t *testing.T) {
	r, svc := setupRouter()
	payload, _ := json.Marshal(map[string]string{"page": "/products/sneakers"})

	req := httptest.NewRequest(http.MethodPost, "/widget/sessions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["sessionId"] == "" {
		t.Fatal("expected a sessionId in the response")
	}
	if _, err := svc.Get(req.Context(), body["sessionId"]); err != nil {
		t.Fatalf("expected the session to be registered: %v", err)
	}
}

func TestCreateSessionEmptyBody(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/widget/sessions", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for an empty body, got %d", resp.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	r, svc := setupRouter()
	conv := svc.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context())

	req := httptest.NewRequest(http.MethodDelete, "/widget/sessions/"+conv.ID(), nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if _, err := svc.Get(req.Context(), conv.ID()); err == nil {
		t.Fatal("expected the session to be gone")
	}
}

func TestDeleteUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodDelete, "/widget/sessions/missing", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestConfigEndpoint(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/widget/config", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["botName"] != "Mia" || body["buttonCorner"] != "bottom-right" {
		t.Fatalf("unexpected config payload: %v", body)
	}
}

func TestFAQEndpointExposesMenu(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/widget/faqs", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Entries []faq.Entry `json:"entries"`
		Menu    []any       `json:"menu"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Entries) == 0 {
		t.Fatal("expected seeded FAQ entries")
	}
	if len(body.Menu) != 4 {
		t.Fatalf("expected the four-item default menu, got %d", len(body.Menu))
	}
}

func TestPreviewRendersHTML(t *testing.T) {
	r, svc := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/widget/preview", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected an HTML response, got %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "shopping assistant") {
		t.Fatal("expected the welcome message in the preview markup")
	}

	// The throwaway preview session must not linger in the registry.
	if got := len(svc.Summaries(req.Context())); got != 0 {
		t.Fatalf("expected no lingering sessions, got %d", got)
	}
}
