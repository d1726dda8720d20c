package conversation

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/zhouzirui/funds-assistant/backend/internal/logging"
)

const (
	frameStart   = "start"
	frameProcess = "process"
	frameStarted = "started"
	frameResult  = "result"
	frameError   = "error"
)

type inboundFrame struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type outboundFrame struct {
	Type       string `json:"type"`
	Message    string `json:"message,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Intent     string `json:"intent,omitempty"`
	NextPrompt string `json:"next_prompt,omitempty"`
	Status     int    `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

// handleWebSocket 在同一个连接上提供 start / process 两种操作。客户端标识取自握手请求的
// cookie，缺失时在握手响应中下发。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	key := ensureClientKey(r)

	header := http.Header{}
	header.Add("Set-Cookie", h.cookies.cookie(key).String())

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		logging.Errorf("ws", "upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Errorf("ws", "read failed: %v", err)
			}
			return
		}

		reply := h.handleFrame(ctx, key, frame)
		if err := conn.WriteJSON(reply); err != nil {
			logging.Errorf("ws", "write failed: %v", err)
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (h *Handler) handleFrame(ctx context.Context, key string, frame inboundFrame) outboundFrame {
	switch frame.Type {
	case frameStart:
		result, err := h.svc.Start(ctx, key)
		if err != nil {
			logging.Errorf("ws", "error starting conversation: %v", err)
			return errorFrame(http.StatusInternalServerError, "Internal server error")
		}
		return outboundFrame{
			Type:       frameStarted,
			Message:    result.Message,
			SessionID:  result.SessionID,
			NextPrompt: result.NextPrompt,
		}
	case frameProcess:
		result, err := h.svc.Process(ctx, key, frame.SessionID, frame.Message)
		if err != nil {
			status, message := errorStatus(err)
			if status == http.StatusInternalServerError {
				logging.Errorf("ws", "error processing conversation: %v", err)
			}
			return errorFrame(status, message)
		}
		return outboundFrame{
			Type:       frameResult,
			Intent:     result.Intent.String(),
			NextPrompt: result.NextPrompt,
		}
	default:
		return errorFrame(http.StatusBadRequest, "unsupported message type")
	}
}

func errorFrame(status int, message string) outboundFrame {
	return outboundFrame{Type: frameError, Status: status, Error: message}
}
