package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
)

type ChatService struct {
	db          *database.Database
	broadcaster Broadcaster
	uploader    Uploader
	roomLocks   *keyedMutex
	log         *zap.Logger
}

// NewChatService создаёт сервис чатов; uploader может быть nil, тогда картинки отклоняются
func NewChatService(db *database.Database, broadcaster Broadcaster, uploader Uploader, log *zap.Logger) *ChatService {
	return &ChatService{
		db:          db,
		broadcaster: broadcaster,
		uploader:    uploader,
		roomLocks:   newKeyedMutex(),
		log:         log.Named("chat"),
	}
}

type SendMessageInput struct {
	ChatRoomID uuid.UUID
	SenderID   uuid.UUID
	Content    string
	ImageFile  string
}

// ChatRoomSummary - комната с последним сообщением
type ChatRoomSummary struct {
	models.ChatRoom
	LastMessage *models.Message `json:"lastMessage"`
}

type MessageSeenEvent struct {
	MessageID  uuid.UUID    `json:"messageId"`
	ChatRoomID uuid.UUID    `json:"chatRoomId"`
	UserID     uuid.UUID    `json:"userId"`
	SeenAt     time.Time    `json:"seenAt"`
	User       *models.User `json:"user,omitempty"`
}

// CreateChatRoom создаёт комнату и добавляет создателя с правом добавлять участников
func (s *ChatService) CreateChatRoom(ctx context.Context, name string, teamID, creatorID uuid.UUID) (*models.ChatRoom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.BadRequest("Chat room name is required")
	}

	var room models.ChatRoom
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		if _, err := tx.GetTeam(ctx, teamID); err != nil {
			return lookupError(err, "Team not found")
		}

		creator, err := tx.GetUser(ctx, creatorID)
		if err != nil {
			return lookupError(err, "User not found")
		}
		if creator.TeamID != teamID {
			return apperror.Forbidden("You are not a member of this team")
		}

		room = models.ChatRoom{Name: name, TeamID: teamID}
		if err := tx.CreateChatRoom(ctx, &room); err != nil {
			return internal(err)
		}

		_, err = tx.AddChatRoomMember(ctx, &models.ChatRoomMember{
			ChatRoomID:    room.ID,
			UserID:        creatorID,
			CanAddMembers: true,
		})
		return internal(err)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.db.GetChatRoom(ctx, room.ID)
	if err != nil {
		return nil, internal(err)
	}

	s.broadcastTeam(teamID, websocket.TypeNewChatRoom, created)

	return created, nil
}

// AddMember добавляет пользователя в комнату. Повторное добавление возвращает
// существующую запись и ничего не рассылает.
func (s *ChatService) AddMember(ctx context.Context, roomID, userID, addedByID uuid.UUID) (*models.ChatRoomMember, error) {
	room, err := s.db.GetChatRoom(ctx, roomID)
	if err != nil {
		return nil, lookupError(err, "Chat room not found")
	}

	adder, err := s.db.GetChatRoomMember(ctx, roomID, addedByID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !adder.CanAddMembers) {
		return nil, apperror.Forbidden("You don't have permission to add members to this chat room")
	}
	if err != nil {
		return nil, internal(err)
	}

	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User not found")
	}
	if user.TeamID != room.TeamID {
		return nil, apperror.Forbidden("User does not belong to this team")
	}
	if !user.IsApproved {
		return nil, apperror.BadRequest("User is pending approval")
	}

	created, err := s.db.AddChatRoomMember(ctx, &models.ChatRoomMember{
		ChatRoomID:    roomID,
		UserID:        userID,
		CanAddMembers: true,
	})
	if err != nil {
		return nil, internal(err)
	}

	member, err := s.db.GetChatRoomMember(ctx, roomID, userID)
	if err != nil {
		return nil, internal(err)
	}

	if created {
		s.broadcastRoom(roomID, websocket.TypeNewMember, member)
	}

	return member, nil
}

// SendMessage сохраняет сообщение и рассылает его в комнату. Вставка и рассылка
// для одной комнаты идут под общим замком, поэтому порядок рассылки совпадает с порядком вставки.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.ImageFile == "" {
		return nil, apperror.BadRequest("Message content or image is required")
	}

	if err := s.ensureMember(ctx, in.ChatRoomID, in.SenderID); err != nil {
		return nil, err
	}

	message := models.Message{
		ChatRoomID: in.ChatRoomID,
		SenderID:   in.SenderID,
	}
	if content != "" {
		message.Content = &content
	}

	if in.ImageFile != "" {
		if s.uploader == nil {
			return nil, apperror.BadRequest("Image uploads are not configured")
		}

		data, ext, err := DecodeImage(in.ImageFile)
		if err != nil {
			return nil, err
		}

		uploaded, err := s.uploader.Upload(ctx, data, imageFileName(ext), chatImageFolder)
		if err != nil {
			return nil, apperror.Internal("failed to upload image", err)
		}
		message.ImageURL = &uploaded.URL
		message.ImageKey = &uploaded.Key
	}

	unlock := s.roomLocks.Lock(in.ChatRoomID)
	defer unlock()

	if err := s.db.SaveMessage(ctx, &message); err != nil {
		s.discardImage(message.ImageKey)
		return nil, internal(err)
	}

	saved, err := s.db.GetMessage(ctx, message.ID)
	if err != nil {
		return nil, internal(err)
	}

	s.broadcastRoom(in.ChatRoomID, websocket.TypeNewMessage, saved)

	return saved, nil
}

// MarkSeen отмечает сообщение прочитанным; повторная отметка ничего не рассылает
func (s *ChatService) MarkSeen(ctx context.Context, messageID, userID uuid.UUID) (*MessageSeenEvent, error) {
	message, err := s.db.GetMessage(ctx, messageID)
	if err != nil {
		return nil, lookupError(err, "Message not found")
	}

	if err := s.ensureMember(ctx, message.ChatRoomID, userID); err != nil {
		return nil, err
	}

	created, err := s.db.MarkMessageSeen(ctx, &models.MessageSeen{
		MessageID: messageID,
		UserID:    userID,
	})
	if err != nil {
		return nil, internal(err)
	}

	seen, err := s.db.GetMessageSeen(ctx, messageID, userID)
	if err != nil {
		return nil, internal(err)
	}

	event := &MessageSeenEvent{
		MessageID:  messageID,
		ChatRoomID: message.ChatRoomID,
		UserID:     userID,
		SeenAt:     seen.SeenAt,
		User:       seen.User,
	}

	if created {
		s.broadcastRoom(message.ChatRoomID, websocket.TypeMessageSeen, event)
	}

	return event, nil
}

func (s *ChatService) GetOnlineUsers(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	users, err := s.db.GetOnlineUsers(ctx, teamID)
	if err != nil {
		return nil, internal(err)
	}
	return users, nil
}

// GetChatRooms возвращает комнаты команды с участниками и последним сообщением
func (s *ChatService) GetChatRooms(ctx context.Context, teamID uuid.UUID) ([]ChatRoomSummary, error) {
	rooms, err := s.db.GetTeamChatRooms(ctx, teamID)
	if err != nil {
		return nil, internal(err)
	}

	result := make([]ChatRoomSummary, len(rooms))
	for i, room := range rooms {
		last, err := s.db.GetLastMessage(ctx, room.ID)
		if err != nil {
			return nil, internal(err)
		}
		result[i] = ChatRoomSummary{ChatRoom: room, LastMessage: last}
	}
	return result, nil
}

// MessageLimit приводит размер страницы к [1, MaxMessageLimit]; 0 и меньше - значение по умолчанию
func MessageLimit(limit int) int {
	if limit <= 0 {
		return DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		return MaxMessageLimit
	}
	return limit
}

// GetMessages возвращает сообщения комнаты, новые первыми.
// before - id сообщения этой комнаты, после которого продолжается выдача.
func (s *ChatService) GetMessages(ctx context.Context, roomID uuid.UUID, limit int, before *uuid.UUID) ([]models.Message, error) {
	messages, err := s.db.GetRoomMessages(ctx, roomID, MessageLimit(limit), before)
	if err != nil {
		return nil, lookupError(err, "Cursor message not found in this chat room")
	}
	return messages, nil
}

// RoomInTeam проверяет, что комната существует и принадлежит команде
func (s *ChatService) RoomInTeam(ctx context.Context, roomID, teamID uuid.UUID) (*models.ChatRoom, error) {
	room, err := s.db.GetChatRoom(ctx, roomID)
	if err != nil {
		return nil, lookupError(err, "Chat room not found")
	}
	if room.TeamID != teamID {
		return nil, apperror.Forbidden("Chat room belongs to another team")
	}
	return room, nil
}

// CanJoin проверяет членство перед подпиской на канал комнаты
func (s *ChatService) CanJoin(ctx context.Context, roomID, userID uuid.UUID) error {
	return s.ensureMember(ctx, roomID, userID)
}

func (s *ChatService) ensureMember(ctx context.Context, roomID, userID uuid.UUID) error {
	ok, err := s.db.IsChatRoomMember(ctx, roomID, userID)
	if err != nil {
		return internal(err)
	}
	if ok {
		return nil
	}

	if _, err := s.db.GetChatRoom(ctx, roomID); err != nil {
		return lookupError(err, "Chat room not found")
	}
	return apperror.Forbidden("You are not a member of this chat room")
}

func (s *ChatService) discardImage(key *string) {
	if key == nil || s.uploader == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.uploader.Delete(ctx, *key); err != nil {
		s.log.Warn("failed to remove orphaned image", zap.String("key", *key), zap.Error(err))
	}
}

func (s *ChatService) broadcastTeam(teamID uuid.UUID, msgType websocket.MessageType, data interface{}) {
	if err := s.broadcaster.BroadcastToTeam(teamID, msgType, data); err != nil {
		s.log.Error("team broadcast failed", zap.String("type", string(msgType)), zap.Error(err))
	}
}

func (s *ChatService) broadcastRoom(roomID uuid.UUID, msgType websocket.MessageType, data interface{}) {
	if err := s.broadcaster.BroadcastToRoom(roomID, msgType, data); err != nil {
		s.log.Error("room broadcast failed", zap.String("type", string(msgType)), zap.Error(err))
	}
}
