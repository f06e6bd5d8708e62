package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType определяет типы сообщений
type MessageType string

const (
	// Системные типы
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	// Клиент -> сервер
	TypeJoinChatRoom    MessageType = "joinChatRoom"
	TypeLeaveChatRoom   MessageType = "leaveChatRoom"
	TypeSendMessage     MessageType = "sendMessage"
	TypeMarkMessageSeen MessageType = "markMessageSeen"

	// Сервер -> клиент
	TypeNewChatRoom      MessageType = "newChatRoom"
	TypeNewMember        MessageType = "newMember"
	TypeNewMessage       MessageType = "newMessage"
	TypeMessageSeen      MessageType = "messageSeen"
	TypeUserStatusChange MessageType = "userStatusChange"
	TypeDeadlineAlert    MessageType = "deadlineAlert"
)

type Message struct {
	Type      MessageType     `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// encodeMessage собирает кадр для отправки клиентам
func encodeMessage(msgType MessageType, roomID *uuid.UUID, userID uuid.UUID, data interface{}) ([]byte, error) {
	msg := Message{
		Type:      msgType,
		RoomID:    roomID,
		UserID:    userID,
		Timestamp: time.Now(),
	}

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = jsonData
	}

	return json.Marshal(msg)
}
