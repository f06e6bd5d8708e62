package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleLeader Role = "LEADER"
	RoleMember Role = "MEMBER"
)

type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Logo      string    `json:"logo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Photo        string     `json:"photo,omitempty"`
	Role         Role       `gorm:"type:varchar(16);not null" json:"role"`
	IsTeamLeader bool       `gorm:"not null" json:"isTeamLeader"`
	IsApproved   bool       `gorm:"not null;index" json:"isApproved"`
	IsOnline     bool       `gorm:"not null;index" json:"isOnline"`
	LastSeen     *time.Time `json:"lastSeen"`
	TeamID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"teamId"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index" json:"departmentId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// relations
	Team       *Team       `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	return nil
}
