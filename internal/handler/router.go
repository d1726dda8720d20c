package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/funds-assistant/backend/internal/config"
	"github.com/zhouzirui/funds-assistant/backend/internal/handler/conversation"
	middlewarePkg "github.com/zhouzirui/funds-assistant/backend/internal/middleware"
	conversationService "github.com/zhouzirui/funds-assistant/backend/internal/service/conversation"
	"github.com/zhouzirui/funds-assistant/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(convSvc *conversationService.Service, serverCfg config.ServerConfig, sessionTTL time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(serverCfg.AllowedOrigins))

	conversationHandler := conversation.New(convSvc, conversation.CookieOptions{
		Secure: serverCfg.CookieSecure,
		MaxAge: sessionTTL,
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)
		conversationHandler.RegisterRoutes(api)
	})

	return r
}

// handleHealth 健康检查，与会话状态无关
func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
