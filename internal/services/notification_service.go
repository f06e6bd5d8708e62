package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
)

const notificationsLimit = 100

type NotificationService struct {
	db *database.Database
}

func NewNotificationService(db *database.Database) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	notifications, err := s.db.GetUserNotifications(ctx, userID, notificationsLimit)
	if err != nil {
		return nil, internal(err)
	}
	return notifications, nil
}

// MarkRead отвечает NotFound и на чужое уведомление
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return lookupError(s.db.MarkNotificationRead(ctx, id, userID), "Notification not found")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.db.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}
