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

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/funds-assistant/backend/internal/config"
	"github.com/zhouzirui/funds-assistant/backend/internal/handler"
	"github.com/zhouzirui/funds-assistant/backend/internal/logging"
	"github.com/zhouzirui/funds-assistant/backend/internal/service/ai"
	"github.com/zhouzirui/funds-assistant/backend/internal/service/conversation"
	"github.com/zhouzirui/funds-assistant/backend/internal/service/intent"
	"github.com/zhouzirui/funds-assistant/backend/internal/service/session"
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

	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	store, sweeper, closeStore, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}
	defer closeStore()
	go session.RunJanitor(ctx, sweeper, cfg.Session.SweepInterval)

	promptSpec, err := intent.LoadPrompt(cfg.AI.PromptFile)
	if err != nil {
		log.Fatalf("failed to load intent prompt: %v", err)
	}

	var chatModel model.BaseChatModel
	if cfg.AI.Enabled() {
		chatModel, err = ai.NewChatModel(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize %s chat model: %v", cfg.AI.Provider, err)
			log.Println("continuing with keyword classification only")
		} else {
			logging.Infof("ai", "%s chat model initialized", cfg.AI.Provider)
		}
	} else {
		log.Printf("%s 凭证未配置，使用关键词意图识别", cfg.AI.Provider)
	}

	classifier, err := intent.NewClassifier(ctx, chatModel, promptSpec)
	if err != nil {
		log.Fatalf("failed to initialize intent classifier: %v", err)
	}

	convSvc := conversation.NewService(store, classifier)
	router := handler.NewRouter(convSvc, cfg.Server, cfg.Session.TTL)

	startServer(ctx, cfg.Server, router)
}

func newSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, session.Sweeper, func(), error) {
	switch cfg.Backend {
	case config.SessionPostgres:
		db, err := session.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		store := session.NewPostgresStore(db, cfg.TTL)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logging.Infof("session", "using postgres session store")
		return store, store, func() { db.Close() }, nil
	default:
		store := session.NewMemoryStore(cfg.TTL)
		logging.Infof("session", "using in-memory session store")
		return store, store, func() {}, nil
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Funds assistant backend listening on %s", addr)
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
