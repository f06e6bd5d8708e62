package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	StatusNotStarted       ProjectStatus = "NOT_STARTED"
	StatusWIP              ProjectStatus = "WIP"
	StatusCancelled        ProjectStatus = "CANCELLED"
	StatusDispute          ProjectStatus = "DISPUTE"
	StatusDelivered        ProjectStatus = "DELIVERED"
	StatusRevisionDelivery ProjectStatus = "REVISION_DELIVERY"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusWIP, StatusCancelled, StatusDispute, StatusDelivered, StatusRevisionDelivery:
		return true
	}
	return false
}

// Phase is a project sub-track with its own assignments and status.
type Phase string

const (
	PhaseFrontend Phase = "FRONTEND"
	PhaseBackend  Phase = "BACKEND"
	PhaseUI       Phase = "UI"
)

func (p Phase) Valid() bool {
	return p == PhaseFrontend || p == PhaseBackend || p == PhaseUI
}

type Project struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"not null" json:"name"`
	Description   string        `gorm:"type:text" json:"description"`
	TeamID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"teamId"`
	ProjectStatus ProjectStatus `gorm:"type:varchar(32);not null" json:"projectStatus"`
	Deadline      *time.Time    `gorm:"index" json:"deadline"`
	DeliveryDate  *time.Time    `json:"deliveryDate"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`

	Assignments   []ProjectAssignment    `gorm:"foreignKey:ProjectID" json:"assignments,omitempty"`
	PhaseStatuses []ProjectPhaseStatus   `gorm:"foreignKey:ProjectID" json:"phaseStatuses,omitempty"`
	StatusHistory []ProjectStatusHistory `gorm:"foreignKey:ProjectID" json:"statusHistory,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ProjectStatus == "" {
		p.ProjectStatus = StatusNotStarted
	}
	return nil
}

type ProjectAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_project_user_phase" json:"projectId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_project_user_phase;index" json:"userId"`
	Phase     Phase     `gorm:"type:varchar(16);not null;uniqueIndex:idx_assignment_project_user_phase" json:"phase"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (a *ProjectAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ProjectPhaseStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_phase_status_project_phase" json:"projectId"`
	Phase     Phase     `gorm:"type:varchar(16);not null;uniqueIndex:idx_phase_status_project_phase" json:"phase"`
	Status    string    `gorm:"not null" json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *ProjectPhaseStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ProjectStatusHistory is append-only: one row per status change.
type ProjectStatusHistory struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_status_history_project_created,priority:1" json:"projectId"`
	OldStatus   ProjectStatus `gorm:"type:varchar(32);not null" json:"oldStatus"`
	NewStatus   ProjectStatus `gorm:"type:varchar(32);not null" json:"newStatus"`
	Comment     *string       `gorm:"type:text" json:"comment"`
	UpdatedByID uuid.UUID     `gorm:"type:uuid;not null" json:"updatedById"`
	CreatedAt   time.Time     `gorm:"index:idx_status_history_project_created,priority:2" json:"createdAt"`

	UpdatedBy *User `gorm:"foreignKey:UpdatedByID" json:"updatedBy,omitempty"`
}

func (h *ProjectStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
