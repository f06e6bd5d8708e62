package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thereayou/teamdesk/internal/middleware"
	ws "github.com/thereayou/teamdesk/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub            *ws.Hub
	messageHandler *MessageHandler
	upgrader       websocket.Upgrader
	log            *zap.Logger
}

// NewWebSocketHandler создает новый WebSocket handler; браузерные соединения принимаются только с allowedOrigin
func NewWebSocketHandler(hub *ws.Hub, messageHandler *MessageHandler, allowedOrigin string, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		messageHandler: messageHandler,
		log:            log.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowedOrigin)
			},
		},
	}
}

func originAllowed(origin, allowed string) bool {
	if origin == "" || allowed == "*" {
		return true
	}
	return strings.EqualFold(strings.TrimRight(origin, "/"), strings.TrimRight(allowed, "/"))
}

// HandleWebSocket обрабатывает WebSocket соединения; пользователь и команда уже проверены WSAuthMiddleware
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	teamID := middleware.CurrentTeamID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, userID, teamID)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.messageHandler)
}
