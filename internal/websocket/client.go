package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/teamdesk/internal/apperror"
	"go.uber.org/zap"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения (картинки приходят в base64)
	maxMessageSize = 8 * 1024 * 1024

	// Время на обработку одного события клиента
	handleTimeout = 15 * time.Second

	sendBufferSize = 256
)

type ClientMessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *Message) error
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	TeamID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Rooms  map[uuid.UUID]bool
	Hub    *Hub
	mu     sync.RWMutex
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, teamID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		TeamID: teamID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		Rooms:  make(map[uuid.UUID]bool),
		Hub:    hub,
	}
}

// ReadPump читает сообщения от клиента. Ошибка обработки события
// возвращается только этому клиенту и не закрывает соединение.
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Info("websocket closed unexpectedly", zap.Stringer("user_id", c.UserID), zap.Error(err))
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
			c.SendError(ErrInvalidMessage)
			continue
		}

		msg.UserID = c.UserID
		msg.Timestamp = time.Now()

		if msg.Type == TypePong {
			c.Conn.SetReadDeadline(time.Now().Add(pongWait))
			continue
		}

		if handler == nil {
			continue
		}

		if err := c.handle(handler, &msg); err != nil {
			c.Hub.log.Debug("client event failed",
				zap.Stringer("user_id", c.UserID),
				zap.String("type", string(msg.Type)),
				zap.Error(err),
			)
			c.SendError(err)
		}
	}
}

func (c *Client) handle(handler ClientMessageHandler, msg *Message) error {
	ctx, cancel := context.WithTimeout(c.Hub.ctx, handleTimeout)
	defer cancel()

	return handler.HandleMessage(ctx, c, msg)
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Отправляем все накопившиеся сообщения
			n := len(c.Send)
			for i := 0; i < n; i++ {
				queued, ok := <-c.Send
				if !ok {
					return
				}
				if err := c.Conn.WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage ставит событие в очередь только этого клиента
func (c *Client) SendMessage(msgType MessageType, data interface{}) error {
	frame, err := encodeMessage(msgType, nil, c.UserID, data)
	if err != nil {
		return err
	}
	return c.Hub.deliver(c, frame)
}

func (c *Client) SendError(err error) {
	if sendErr := c.SendMessage(TypeError, map[string]string{"error": publicMessage(err)}); sendErr != nil {
		c.Hub.log.Debug("error frame not delivered", zap.Stringer("client_id", c.ID), zap.Error(sendErr))
	}
}

// publicMessage скрывает внутренние причины ошибок от клиента
func publicMessage(err error) string {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Message
	}
	for _, known := range []error{ErrInvalidMessage, ErrUnknownType, ErrClientQueueFull} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal error"
}

func (c *Client) IsInRoom(roomID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Rooms[roomID]
}

func (c *Client) GetRooms() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]uuid.UUID, 0, len(c.Rooms))
	for roomID := range c.Rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}
