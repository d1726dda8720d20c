package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/funds-assistant/backend/internal/logging"
	conversationService "github.com/zhouzirui/funds-assistant/backend/internal/service/conversation"
	"github.com/zhouzirui/funds-assistant/backend/internal/service/session"
	"github.com/zhouzirui/funds-assistant/backend/pkg/utils"
)

// Handler 意图对话的HTTP处理器
type Handler struct {
	svc      *conversationService.Service
	cookies  CookieOptions
	upgrader websocket.Upgrader
}

// New 创建对话处理器
func New(svc *conversationService.Service, cookies CookieOptions) *Handler {
	return &Handler{
		svc:     svc,
		cookies: cookies,
		upgrader: websocket.Upgrader{
			// 跨域策略由 CORS 中间件负责
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册对话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/start", h.handleStart)
	r.Post("/process", h.handleProcess)
	r.Get("/ws", h.handleWebSocket)
}

// handleStart 开始新的对话
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	key := ensureClientKey(r)

	result, err := h.svc.Start(r.Context(), key)
	if err != nil {
		logging.Errorf("conversation", "error starting conversation: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.cookies.setClientCookie(w, key)
	utils.RespondJSON(w, http.StatusOK, result)
}

type processRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// handleProcess 对用户消息进行意图分类
func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var payload processRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := clientKey(r)
	result, err := h.svc.Process(r.Context(), key, payload.SessionID, payload.Message)
	if err != nil {
		status, message := errorStatus(err)
		if status == http.StatusInternalServerError {
			logging.Errorf("conversation", "error processing conversation: %v", err)
		}
		utils.RespondError(w, status, message)
		return
	}

	if !result.Intent.Resolved() {
		h.cookies.setClientCookie(w, key)
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// errorStatus 将服务层错误映射为 HTTP 状态码与对外文案，内部错误不暴露细节。
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, conversationService.ErrMessageRequired):
		return http.StatusBadRequest, "Message is required"
	case errors.Is(err, conversationService.ErrSessionIDRequired):
		return http.StatusBadRequest, "Session ID is required"
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "No active session"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
