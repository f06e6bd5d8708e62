package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultDepartments создаются вместе с командой и не удаляются
var DefaultDepartments = []string{"Frontend", "Backend", "UI"}

func IsDefaultDepartment(name string) bool {
	for _, d := range DefaultDepartments {
		if d == name {
			return true
		}
	}
	return false
}

type Department struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_department_team_name" json:"name"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_department_team_name" json:"teamId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	MemberCount int64  `gorm:"-" json:"memberCount"`
	Members     []User `gorm:"foreignKey:DepartmentID" json:"members,omitempty"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
