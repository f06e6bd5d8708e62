package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
)

// recentHistoryLimit - сколько записей истории возвращается вместе с проектом
const recentHistoryLimit = 5

type StatusService struct {
	db  *database.Database
	now func() time.Time
}

func NewStatusService(db *database.Database) *StatusService {
	return &StatusService{db: db, now: time.Now}
}

// UpdateStatus пишет запись в историю и меняет статус проекта в одной транзакции.
// Переход в DELIVERED проставляет deliveryDate; другие статусы его не трогают.
func (s *StatusService) UpdateStatus(ctx context.Context, projectID, actorID uuid.UUID, status models.ProjectStatus, comment *string) (*models.Project, error) {
	if projectID == uuid.Nil || actorID == uuid.Nil {
		return nil, apperror.BadRequest("Project ID and user ID are required")
	}
	if !status.Valid() {
		return nil, apperror.BadRequest("Invalid project status")
	}

	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		// блокировка строки: параллельные смены статуса не запишут один и тот же oldStatus
		project, err := tx.LockProject(ctx, projectID)
		if err != nil {
			return lookupError(err, "Project not found")
		}

		if err := tx.CreateStatusHistory(ctx, &models.ProjectStatusHistory{
			ProjectID:   projectID,
			OldStatus:   project.ProjectStatus,
			NewStatus:   status,
			Comment:     comment,
			UpdatedByID: actorID,
		}); err != nil {
			return internal(err)
		}

		var deliveryDate *time.Time
		if status == models.StatusDelivered {
			now := s.now()
			deliveryDate = &now
		}

		return internal(tx.UpdateProjectStatus(ctx, projectID, status, deliveryDate))
	})
	if err != nil {
		return nil, err
	}

	project, err := s.db.GetProjectDetails(ctx, projectID, recentHistoryLimit)
	if err != nil {
		return nil, internal(err)
	}
	return project, nil
}

// GetHistory возвращает весь журнал статусов, новые первыми
func (s *StatusService) GetHistory(ctx context.Context, projectID uuid.UUID) ([]models.ProjectStatusHistory, error) {
	if _, err := s.db.GetProject(ctx, projectID); err != nil {
		return nil, lookupError(err, "Project not found")
	}

	history, err := s.db.GetStatusHistory(ctx, projectID, 0)
	if err != nil {
		return nil, internal(err)
	}
	return history, nil
}
