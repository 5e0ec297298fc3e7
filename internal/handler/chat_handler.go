package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hitoshi/foodhub/internal/chat"
	"github.com/hitoshi/foodhub/internal/middleware"
	"github.com/hitoshi/foodhub/internal/model"
)

// ConnectionMetrics はwebsocket接続数の計測に必要なインターフェース。
type ConnectionMetrics interface {
	WSConnectionOpened()
	WSConnectionClosed()
}

// ChatHandler はリアルタイムチャットのwebsocketハンドラー。
type ChatHandler struct {
	relay    *chat.Relay
	metrics  ConnectionMetrics
	upgrader websocket.Upgrader
}

// NewChatHandler はChatHandlerを生成する。
// allowedOriginが空でない場合、Originヘッダーが一致するリクエストのみ許可する。
func NewChatHandler(relay *chat.Relay, metrics ConnectionMetrics, allowedOrigin string) *ChatHandler {
	return &ChatHandler{
		relay:   relay,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return allowedOrigin == "" || origin == allowedOrigin
			},
		},
	}
}

// ServeWS はwebsocket接続を確立し、切断までフレームを中継する。
// 送信者はペイロードではなく認証済みセッションから解決される。
// GET /ws
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgradeが失敗した場合はUpgrade自身がエラーレスポンスを書き込み済み
		slog.Warn("websocket upgrade failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	h.metrics.WSConnectionOpened()
	defer h.metrics.WSConnectionClosed()

	client := chat.NewClient(conn, userID)
	go client.WritePump()

	// 切断までブロックする。終了時に全ルームから退室しクローズされる。
	client.ReadPump(r.Context(), h.relay)
}
