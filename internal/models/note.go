package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is edited in place; each edit archives the previous content as a NoteHistory row.
type Note struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Version     int        `gorm:"not null" json:"version"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"projectId"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"createdById"`
	// UpdatedByID - автор текущей версии, nil пока заметку не правили
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updatedById"`
	Comment     *string    `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	UpdatedBy *User `gorm:"foreignKey:UpdatedByID" json:"updatedBy,omitempty"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Version == 0 {
		n.Version = 1
	}
	return nil
}

// NoteHistory is an immutable snapshot of a note version.
type NoteHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Version     int        `gorm:"not null;uniqueIndex:idx_note_history_version" json:"version"`
	NoteID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_note_history_version" json:"noteId"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"createdById"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updatedById"`
	Comment     string     `gorm:"type:text" json:"comment"`
	CreatedAt   time.Time  `json:"createdAt"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	UpdatedBy *User `gorm:"foreignKey:UpdatedByID" json:"updatedBy,omitempty"`
}

func (h *NoteHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
