package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content    *string   `gorm:"type:text" json:"content"`
	ImageURL   *string   `json:"imageUrl"`
	ImageKey   *string   `json:"imageKey"`
	ChatRoomID uuid.UUID `gorm:"type:uuid;not null;index:idx_message_room_created,priority:1" json:"chatRoomId"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"senderId"`
	CreatedAt  time.Time `gorm:"index:idx_message_room_created,priority:2" json:"createdAt"`

	Sender *User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	SeenBy []MessageSeen `gorm:"foreignKey:MessageID" json:"seenBy,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MessageSeen is unique per (message, user); marking twice is a no-op.
type MessageSeen struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_message_seen_user" json:"messageId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_message_seen_user" json:"userId"`
	SeenAt    time.Time `gorm:"not null" json:"seenAt"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Message *Message `gorm:"foreignKey:MessageID" json:"message,omitempty"`
}

func (s *MessageSeen) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SeenAt.IsZero() {
		s.SeenAt = time.Now()
	}
	return nil
}
