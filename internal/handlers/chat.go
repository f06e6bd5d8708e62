package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/services"
)

// RoomPresence сообщает, кто сейчас подписан на комнату
type RoomPresence interface {
	GetRoomUsers(roomID uuid.UUID) []uuid.UUID
}

type ChatHandler struct {
	chat     *services.ChatService
	presence RoomPresence
}

func NewChatHandler(chat *services.ChatService, presence RoomPresence) *ChatHandler {
	return &ChatHandler{chat: chat, presence: presence}
}

type chatRoomResponse struct {
	services.ChatRoomSummary
	OnlineCount int `json:"onlineCount"`
}

// CreateChatRoom создает новую комнату; создатель становится её первым участником
func (h *ChatHandler) CreateChatRoom(c *gin.Context) {
	var req dto.CreateChatRoomRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	teamID, err := parseUUID(req.TeamID, "teamId")
	if err != nil {
		fail(c, err)
		return
	}

	room, err := h.chat.CreateChatRoom(c.Request.Context(), req.Name, teamID, middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Chat room created", room)
}

// GetChatRooms получает список комнат команды с последними сообщениями
func (h *ChatHandler) GetChatRooms(c *gin.Context) {
	teamID, err := h.ownTeam(c)
	if err != nil {
		fail(c, err)
		return
	}

	rooms, err := h.chat.GetChatRooms(c.Request.Context(), teamID)
	if err != nil {
		fail(c, err)
		return
	}

	result := make([]chatRoomResponse, len(rooms))
	for i, room := range rooms {
		result[i] = chatRoomResponse{
			ChatRoomSummary: room,
			OnlineCount:     len(h.presence.GetRoomUsers(room.ID)),
		}
	}

	respond(c, http.StatusOK, "Chat rooms fetched", result)
}

func (h *ChatHandler) AddMember(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	roomID, err := parseUUID(req.ChatRoomID, "chatRoomId")
	if err != nil {
		fail(c, err)
		return
	}
	userID, err := parseUUID(req.UserID, "userId")
	if err != nil {
		fail(c, err)
		return
	}

	member, err := h.chat.AddMember(c.Request.Context(), roomID, userID, middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Member added", member)
}

// GetMessages получает историю сообщений комнаты, новые первыми
func (h *ChatHandler) GetMessages(c *gin.Context) {
	roomID, err := uuidParam(c, "chatRoomId")
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := h.chat.RoomInTeam(c.Request.Context(), roomID, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return
	}

	// Параметры пагинации; слишком большой limit урезается до максимума
	var limit int
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			fail(c, apperror.BadRequest("limit must be a number"))
			return
		}
		limit = parsed
	}
	limit = services.MessageLimit(limit)

	var beforeID *uuid.UUID
	if before := c.Query("before"); before != "" {
		id, err := parseUUID(before, "before")
		if err != nil {
			fail(c, err)
			return
		}
		beforeID = &id
	}

	messages, err := h.chat.GetMessages(c.Request.Context(), roomID, limit, beforeID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessWithMeta(http.StatusOK, "Messages fetched", messages, dto.Page{
		Limit:   limit,
		HasMore: len(messages) == limit,
	}))
}

// SendMessage отправляет сообщение через HTTP (альтернатива WebSocket)
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	roomID, err := parseUUID(req.ChatRoomID, "chatRoomId")
	if err != nil {
		fail(c, err)
		return
	}

	message, err := h.chat.SendMessage(c.Request.Context(), services.SendMessageInput{
		ChatRoomID: roomID,
		SenderID:   middleware.CurrentUserID(c),
		Content:    req.Content,
		ImageFile:  req.ImageFile,
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Message sent", message)
}

func (h *ChatHandler) MarkSeen(c *gin.Context) {
	var req dto.MarkSeenRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	messageID, err := parseUUID(req.MessageID, "messageId")
	if err != nil {
		fail(c, err)
		return
	}

	seen, err := h.chat.MarkSeen(c.Request.Context(), messageID, middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Message marked as seen", seen)
}

func (h *ChatHandler) GetOnlineUsers(c *gin.Context) {
	teamID, err := h.ownTeam(c)
	if err != nil {
		fail(c, err)
		return
	}

	users, err := h.chat.GetOnlineUsers(c.Request.Context(), teamID)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Online users fetched", users)
}

// ownTeam читает :teamId и проверяет, что это команда текущего пользователя
func (h *ChatHandler) ownTeam(c *gin.Context) (uuid.UUID, error) {
	teamID, err := uuidParam(c, "teamId")
	if err != nil {
		return uuid.Nil, err
	}
	if teamID != middleware.CurrentTeamID(c) {
		return uuid.Nil, apperror.Forbidden("You are not a member of this team")
	}
	return teamID, nil
}
