package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationDeadline NotificationType = "DEADLINE"
	NotificationGeneral  NotificationType = "GENERAL"
	NotificationApproval NotificationType = "APPROVAL"
)

type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string           `gorm:"not null" json:"title"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	Type      NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	IsRead    bool             `gorm:"not null" json:"isRead"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
