package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/shopmate/backend/internal/config"
	"github.com/zhouzirui/shopmate/backend/internal/handler/support"
	widgetHandler "github.com/zhouzirui/shopmate/backend/internal/handler/widget"
	middlewarePkg "github.com/zhouzirui/shopmate/backend/internal/middleware"
	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
	"github.com/zhouzirui/shopmate/backend/internal/repository"
	widgetService "github.com/zhouzirui/shopmate/backend/internal/service/widget"
)

// NewRouter wires HTTP routes to core services. The archive may be nil when
// no Mongo target is configured; the support routes degrade gracefully.
func NewRouter(cfg config.WidgetConfig, widgetSvc *widgetService.Service, faqs faq.Store, archive *repository.WidgetArchive) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	restHandler := widgetHandler.New(widgetSvc, faqs, cfg)
	wsHandler := widgetHandler.NewWebSocketHandler(widgetSvc)
	supportHandler := support.New(widgetSvc, archive)

	r.Route("/api", func(api chi.Router) {
		restHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
		supportHandler.RegisterRoutes(api)
	})

	return r
}
