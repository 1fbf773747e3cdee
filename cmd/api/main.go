package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	mongoOptions "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zhouzirui/shopmate/backend/internal/config"
	"github.com/zhouzirui/shopmate/backend/internal/handler"
	"github.com/zhouzirui/shopmate/backend/internal/model/chat"
	"github.com/zhouzirui/shopmate/backend/internal/model/faq"
	"github.com/zhouzirui/shopmate/backend/internal/repository"
	"github.com/zhouzirui/shopmate/backend/internal/service/assist"
	"github.com/zhouzirui/shopmate/backend/internal/service/notify"
	"github.com/zhouzirui/shopmate/backend/internal/service/widget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	faqStore := faq.NewMemoryStore(faq.Seed())

	// Optional Mongo transcript archive.
	var archive *repository.WidgetArchive
	if cfg.Archive.Enabled() {
		client, err := mongo.Connect(ctx, mongoOptions.Client().ApplyURI(cfg.Archive.MongoURI))
		if err != nil {
			log.Printf("warning: failed to connect to mongo: %v", err)
			log.Println("continuing without transcript archiving")
		} else {
			defer func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(disconnectCtx)
			}()
			archive = repository.NewWidgetArchive(client.Database(cfg.Archive.Database))
			log.Println("Transcript archive initialized successfully")
		}
	} else {
		log.Println("MONGO_URI not set, skipping transcript archiving")
	}

	// Optional Redis handoff notifier.
	var notifier *notify.RedisNotifier
	if cfg.Notify.Enabled() {
		notifier, err = notify.NewRedisNotifier(ctx, cfg.Notify)
		if err != nil {
			log.Printf("warning: failed to initialize redis notifier: %v", err)
			log.Println("continuing without handoff notifications")
			notifier = nil
		} else {
			defer notifier.Close()
			log.Println("Handoff notifier initialized successfully")
		}
	} else {
		log.Println("REDIS_ADDR not set, skipping handoff notifications")
	}

	// Optional LLM-assisted fallback responder.
	var responder widget.Responder
	if cfg.AI.Enabled() {
		assistSvc, err := assist.NewService(ctx, cfg.AI, cfg.Widget.BotName)
		if err != nil {
			log.Printf("warning: failed to initialize assist service: %v", err)
			log.Println("continuing with canned fallback replies only")
		} else {
			responder = assistSvc
			log.Println("Assist service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, using canned fallback replies")
	}

	hooks := buildHooks(archive, notifier)
	widgetSvc := widget.NewService(cfg.Widget, faqStore, clock.New(), hooks, responder)

	router := handler.NewRouter(cfg.Widget, widgetSvc, faqStore, archive)

	startServer(ctx, cfg.Server, router)
}

// buildHooks forwards widget events to the configured sinks. Sink failures are
// logged and never block the conversation.
func buildHooks(archive *repository.WidgetArchive, notifier *notify.RedisNotifier) widget.Hooks {
	hooks := widget.Hooks{}
	if archive == nil && notifier == nil {
		return hooks
	}

	sinkCtx := func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), 5*time.Second)
	}

	if archive != nil {
		hooks.OnSendMessage = func(sessionID, text string) {
			ctx, cancel := sinkCtx()
			defer cancel()
			err := archive.AddMessage(ctx, repository.ArchivedMessage{
				SessionID: sessionID,
				Role:      chat.RoleUser,
				Content:   text,
			})
			if err != nil {
				log.Printf("[archive] failed to store message for session=%s: %v", sessionID, err)
			}
		}
	}

	hooks.OnRequestAgent = func(sessionID, page string) {
		ctx, cancel := sinkCtx()
		defer cancel()

		if archive != nil {
			err := archive.AddHandoff(ctx, repository.ArchivedHandoff{
				SessionID: sessionID,
				Page:      page,
			})
			if err != nil {
				log.Printf("[archive] failed to store handoff for session=%s: %v", sessionID, err)
			}
		}

		if notifier != nil {
			err := notifier.PublishHandoff(ctx, notify.HandoffPayload{
				SessionID:   sessionID,
				Page:        page,
				RequestedAt: time.Now(),
			})
			if err != nil {
				log.Printf("[notify] failed to publish handoff for session=%s: %v", sessionID, err)
			}
		}
	}

	return hooks
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Shopmate widget backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
