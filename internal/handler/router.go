package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	authHandler "github.com/promptly-app/promptly/backend/internal/handler/auth"
	chatHandler "github.com/promptly-app/promptly/backend/internal/handler/chat"
	middlewarePkg "github.com/promptly-app/promptly/backend/internal/middleware"
	"github.com/promptly-app/promptly/backend/internal/service/account"
	chatService "github.com/promptly-app/promptly/backend/internal/service/chat"
	"github.com/promptly-app/promptly/backend/internal/token"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(accounts *account.Service, chatSvc *chatService.Service, tokens *token.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	auth := authHandler.New(accounts, tokens)
	chat := chatHandler.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		auth.RegisterRoutes(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middlewarePkg.Authenticator(tokens))
			chat.RegisterRoutes(protected)
		})
	})

	return r
}
