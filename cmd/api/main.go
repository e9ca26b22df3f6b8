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

	"github.com/joho/godotenv"

	"github.com/promptly-app/promptly/backend/internal/config"
	"github.com/promptly-app/promptly/backend/internal/handler"
	"github.com/promptly-app/promptly/backend/internal/service/account"
	chatservice "github.com/promptly-app/promptly/backend/internal/service/chat"
	"github.com/promptly-app/promptly/backend/internal/service/completion"
	"github.com/promptly-app/promptly/backend/internal/service/history"
	"github.com/promptly-app/promptly/backend/internal/store"
	"github.com/promptly-app/promptly/backend/internal/token"
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

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer func() {
		if err := store.Close(db); err != nil {
			log.Printf("warning: failed to close store: %v", err)
		}
	}()

	tokens := token.NewManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	accounts := account.NewService(db)
	historySvc := history.NewService(db)

	var completionClient completion.Client
	if cfg.Completion.Enabled() {
		completionClient, err = completion.NewClient(ctx, cfg.Completion)
		if err != nil {
			log.Printf("warning: failed to initialize completion client: %v", err)
			log.Println("continuing without assistant replies - check LLM provider environment variables")
		} else {
			log.Printf("completion client initialized with provider %s", cfg.Completion.Provider)
		}
	} else {
		log.Println("LLM 凭证未配置，跳过助手回复功能初始化")
	}

	chatSvc := chatservice.NewService(historySvc, completionClient)

	router := handler.NewRouter(accounts, chatSvc, tokens)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Promptly backend listening on %s", addr)
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
