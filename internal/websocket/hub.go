package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	appPingPeriod   = 30 * time.Second
	observerTimeout = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// ConnectionObserver получает первое подключение и последнее отключение пользователя
type ConnectionObserver interface {
	UserConnected(ctx context.Context, userID, teamID uuid.UUID)
	UserDisconnected(ctx context.Context, userID, teamID uuid.UUID)
}

type Hub struct {
	clients map[uuid.UUID]*Client

	// Клиенты по UserID (один пользователь может иметь несколько соединений)
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// Клиенты в комнатах чата
	rooms map[uuid.UUID]map[uuid.UUID]*Client

	// Канал команды, в который клиент попадает при подключении
	teams map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	presence *presenceDispatcher
	log      *zap.Logger

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub(log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]*Client),
		teams:       make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		presence:    newPresenceDispatcher(observerTimeout, log.Named("presence")),
		log:         log.Named("hub"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetObserver задаёт получателя событий присутствия; вызывать до Run
func (h *Hub) SetObserver(observer ConnectionObserver) {
	h.presence.observer = observer
}

// Run запускает hub. Наблюдатель получает события в порядке регистрации,
// но вызывается вне цикла, чтобы медленная база не задерживала подключения.
func (h *Hub) Run() {
	ticker := time.NewTicker(appPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			if first := h.registerClient(client); first {
				h.notify(client, true)
			}

		case client := <-h.unregister:
			if last := h.unregisterClient(client); last {
				h.notify(client, false)
			}

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub, закрывает все соединения и отмечает
// всех подключённых пользователей offline
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	connected := make(map[uuid.UUID]uuid.UUID, len(h.userClients))
	for userID, clients := range h.userClients {
		for _, client := range clients {
			connected[userID] = client.TeamID
			break
		}
	}
	for id, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, id)
	}
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.rooms = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.teams = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	h.presence.shutdown(ctx, connected)
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) notify(client *Client, connected bool) {
	h.presence.dispatch(connectionEvent{userID: client.UserID, teamID: client.TeamID, connected: connected})
}

func (h *Hub) registerClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	first := false
	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
		first = true
	}
	h.userClients[client.UserID][client.ID] = client

	if _, ok := h.teams[client.TeamID]; !ok {
		h.teams[client.TeamID] = make(map[uuid.UUID]*Client)
	}
	h.teams[client.TeamID][client.ID] = client

	h.log.Debug("client registered",
		zap.Stringer("client_id", client.ID),
		zap.Stringer("user_id", client.UserID),
		zap.Stringer("team_id", client.TeamID),
	)

	return first
}

// unregisterClient возвращает true, если это было последнее соединение пользователя
func (h *Hub) unregisterClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return false
	}

	for _, roomID := range client.GetRooms() {
		h.removeFromRoomUnsafe(client, roomID)
	}

	if team, ok := h.teams[client.TeamID]; ok {
		delete(team, client.ID)
		if len(team) == 0 {
			delete(h.teams, client.TeamID)
		}
	}

	last := false
	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
			last = true
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	h.log.Debug("client unregistered",
		zap.Stringer("client_id", client.ID),
		zap.Stringer("user_id", client.UserID),
	)

	return last
}

// JoinRoom подписывает клиента на канал комнаты
func (h *Hub) JoinRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uuid.UUID]*Client)
	}
	h.rooms[roomID][client.ID] = client

	client.mu.Lock()
	client.Rooms[roomID] = true
	client.mu.Unlock()

	h.log.Debug("client joined room", zap.Stringer("client_id", client.ID), zap.Stringer("room_id", roomID))
}

// LeaveRoom удаляет клиента из комнаты
func (h *Hub) LeaveRoom(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomID)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID uuid.UUID) {
	if room, ok := h.rooms[roomID]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}

	client.mu.Lock()
	delete(client.Rooms, roomID)
	client.mu.Unlock()
}

// BroadcastToTeam отправляет событие всем соединениям команды
func (h *Hub) BroadcastToTeam(teamID uuid.UUID, msgType MessageType, data interface{}) error {
	frame, err := encodeMessage(msgType, nil, uuid.Nil, data)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendAll(h.teams[teamID], frame)
	return nil
}

// BroadcastToRoom отправляет событие всем подписчикам комнаты
func (h *Hub) BroadcastToRoom(roomID uuid.UUID, msgType MessageType, data interface{}) error {
	frame, err := encodeMessage(msgType, &roomID, uuid.Nil, data)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendAll(h.rooms[roomID], frame)
	return nil
}

func (h *Hub) sendAll(clients map[uuid.UUID]*Client, frame []byte) {
	for _, client := range clients {
		select {
		case client.Send <- frame:
		default:
			h.log.Warn("client send channel full, frame dropped", zap.Stringer("client_id", client.ID))
		}
	}
}

// deliver кладёт кадр в очередь одного клиента, если он ещё зарегистрирован
func (h *Hub) deliver(client *Client, frame []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[client.ID] != client {
		return ErrClientClosed
	}

	select {
	case client.Send <- frame:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (h *Hub) ping() {
	frame, err := encodeMessage(TypePing, nil, uuid.Nil, nil)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendAll(h.clients, frame)
}

// IsUserConnected сообщает, есть ли у пользователя живые соединения
func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.userClients[userID]
	return ok
}

// GetRoomUsers возвращает список пользователей, подписанных на комнату
func (h *Hub) GetRoomUsers(roomID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	if room, ok := h.rooms[roomID]; ok {
		for _, client := range room {
			userMap[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}
