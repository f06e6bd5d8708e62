package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/services"
)

type UserHandler struct {
	auth          *services.AuthService
	notifications *services.NotificationService
}

func NewUserHandler(auth *services.AuthService, notifications *services.NotificationService) *UserHandler {
	return &UserHandler{auth: auth, notifications: notifications}
}

// GetMe возвращает информацию о текущем пользователе
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User fetched", user)
}

func (h *UserHandler) GetNotifications(c *gin.Context) {
	notifications, err := h.notifications.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Notifications fetched", notifications)
}

func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Notification marked as read", nil)
}

func (h *UserHandler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": n})
}
