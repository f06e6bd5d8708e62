package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"github.com/thereayou/teamdesk/internal/services"
	"github.com/thereayou/teamdesk/internal/websocket"
)

// MessageHandler обрабатывает события, пришедшие от клиента по WebSocket
type MessageHandler struct {
	chat *services.ChatService
	hub  *websocket.Hub
}

func NewMessageHandler(chat *services.ChatService, hub *websocket.Hub) *MessageHandler {
	return &MessageHandler{
		chat: chat,
		hub:  hub,
	}
}

func (h *MessageHandler) HandleMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeJoinChatRoom:
		return h.handleJoin(ctx, client, msg)

	case websocket.TypeLeaveChatRoom:
		roomID, err := roomOf(msg)
		if err != nil {
			return err
		}
		h.hub.LeaveRoom(client, roomID)
		return nil

	case websocket.TypeSendMessage:
		return h.handleSendMessage(ctx, client, msg)

	case websocket.TypeMarkMessageSeen:
		return h.handleMarkSeen(ctx, client, msg)

	default:
		return websocket.ErrUnknownType
	}
}

// handleJoin подписывает только участников комнаты
func (h *MessageHandler) handleJoin(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	roomID, err := roomOf(msg)
	if err != nil {
		return err
	}

	if err := h.chat.CanJoin(ctx, roomID, client.UserID); err != nil {
		return err
	}

	h.hub.JoinRoom(client, roomID)
	return nil
}

func (h *MessageHandler) handleSendMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.SendMessageRequest
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return websocket.ErrInvalidMessage
	}

	roomID, err := roomFromMessage(msg, payload.ChatRoomID)
	if err != nil {
		return err
	}

	// новое сообщение придёт отправителю через канал комнаты
	_, err = h.chat.SendMessage(ctx, services.SendMessageInput{
		ChatRoomID: roomID,
		SenderID:   client.UserID,
		Content:    payload.Content,
		ImageFile:  payload.ImageFile,
	})
	return err
}

func (h *MessageHandler) handleMarkSeen(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.MarkSeenRequest
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return websocket.ErrInvalidMessage
	}

	messageID, err := uuid.Parse(payload.MessageID)
	if err != nil {
		return websocket.ErrInvalidMessage
	}

	_, err = h.chat.MarkSeen(ctx, messageID, client.UserID)
	return err
}

// roomOf читает комнату для join/leave: {"room_id": ...} или data {"chatRoomId": ...}
func roomOf(msg *websocket.Message) (uuid.UUID, error) {
	var payload struct {
		ChatRoomID string `json:"chatRoomId"`
	}
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return uuid.Nil, websocket.ErrInvalidMessage
		}
	}
	return roomFromMessage(msg, payload.ChatRoomID)
}

// roomFromMessage берёт id комнаты из data, а если его нет - из room_id кадра
func roomFromMessage(msg *websocket.Message, fromData string) (uuid.UUID, error) {
	if fromData != "" {
		id, err := uuid.Parse(fromData)
		if err != nil {
			return uuid.Nil, websocket.ErrInvalidMessage
		}
		return id, nil
	}
	if msg.RoomID == nil {
		return uuid.Nil, websocket.ErrInvalidMessage
	}
	return *msg.RoomID, nil
}
