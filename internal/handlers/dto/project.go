package dto

import "time"

type AssignmentRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
	Phase  string `json:"phase" binding:"required,oneof=FRONTEND BACKEND UI"`
}

type CreateProjectRequest struct {
	Name        string              `json:"name" binding:"required,max=200"`
	Description string              `json:"description"`
	Deadline    *time.Time          `json:"deadline"`
	Assignments []AssignmentRequest `json:"assignments" binding:"dive"`
}

type PhaseStatusRequest struct {
	Phase  string `json:"phase" binding:"required,oneof=FRONTEND BACKEND UI"`
	Status string `json:"status" binding:"required,max=100"`
}

type UpdateStatusRequest struct {
	Status  string  `json:"status" binding:"required"`
	Comment *string `json:"comment"`
}

type CreateNoteRequest struct {
	ProjectID string  `json:"projectId" binding:"required,uuid"`
	Content   string  `json:"content" binding:"required"`
	Comment   *string `json:"comment"`
}

type UpdateNoteRequest struct {
	Content string  `json:"content" binding:"required"`
	Comment *string `json:"comment"`
}
