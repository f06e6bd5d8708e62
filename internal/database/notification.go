package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Create(&notifications).Error
}

func (d *Database) GetUserNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}

// MarkNotificationRead отмечает уведомление прочитанным, только если оно принадлежит userID
func (d *Database) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	res := d.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllNotificationsRead возвращает количество обновлённых уведомлений
func (d *Database) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := d.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (d *Database) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}
