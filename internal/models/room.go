package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRoom is a named channel scoped to one team.
type ChatRoom struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;index" json:"teamId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Members  []ChatRoomMember `gorm:"foreignKey:ChatRoomID" json:"members,omitempty"`
	Messages []Message        `gorm:"foreignKey:ChatRoomID" json:"messages,omitempty"`
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ChatRoomMember is unique per (room, user).
type ChatRoomMember struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChatRoomID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_room_member" json:"chatRoomId"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_room_member;index" json:"userId"`
	CanAddMembers bool      `gorm:"not null" json:"canAddMembers"`
	CreatedAt     time.Time `json:"createdAt"`

	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ChatRoom *ChatRoom `gorm:"foreignKey:ChatRoomID" json:"chatRoom,omitempty"`
}

func (m *ChatRoomMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
