package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateProject создаёт проект вместе с назначениями
func (d *Database) CreateProject(ctx context.Context, project *models.Project) error {
	return d.db.WithContext(ctx).Omit("PhaseStatuses", "StatusHistory").Create(project).Error
}

func (d *Database) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := d.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// LockProject читает проект с блокировкой строки до конца транзакции
func (d *Database) LockProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := d.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectDetails загружает проект с назначениями, фазами и последними записями истории
func (d *Database) GetProjectDetails(ctx context.Context, id uuid.UUID, historyLimit int) (*models.Project, error) {
	var project models.Project
	err := d.db.WithContext(ctx).
		Preload("Assignments").
		Preload("Assignments.User").
		Preload("PhaseStatuses").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	history, err := d.GetStatusHistory(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}
	project.StatusHistory = history

	return &project, nil
}

// UpdateProjectStatus меняет статус; deliveryDate пишется только если передан
func (d *Database) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus, deliveryDate *time.Time) error {
	updates := map[string]interface{}{
		"project_status": status,
		"updated_at":     time.Now(),
	}
	if deliveryDate != nil {
		updates["delivery_date"] = *deliveryDate
	}

	res := d.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *Database) CreateStatusHistory(ctx context.Context, entry *models.ProjectStatusHistory) error {
	return d.db.WithContext(ctx).Omit("UpdatedBy").Create(entry).Error
}

// GetStatusHistory возвращает историю статусов, новые первыми; limit <= 0 - без ограничения
func (d *Database) GetStatusHistory(ctx context.Context, projectID uuid.UUID, limit int) ([]models.ProjectStatusHistory, error) {
	var history []models.ProjectStatusHistory

	query := d.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Preload("UpdatedBy").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&history).Error
	return history, err
}

// AddAssignment назначает пользователя на фазу; false, если назначение уже есть
func (d *Database) AddAssignment(ctx context.Context, assignment *models.ProjectAssignment) (bool, error) {
	res := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit("User").
		Create(assignment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *Database) FindAssignment(ctx context.Context, projectID, userID uuid.UUID, phase models.Phase) (*models.ProjectAssignment, error) {
	var assignment models.ProjectAssignment
	err := d.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ? AND user_id = ? AND phase = ?", projectID, userID, phase).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (d *Database) GetAssignment(ctx context.Context, id uuid.UUID) (*models.ProjectAssignment, error) {
	var assignment models.ProjectAssignment
	if err := d.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (d *Database) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Delete(&models.ProjectAssignment{}, "id = ?", id).Error
}

// GetProjectAssignees возвращает id всех назначенных пользователей без повторов
func (d *Database) GetProjectAssignees(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.WithContext(ctx).
		Model(&models.ProjectAssignment{}).
		Where("project_id = ?", projectID).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}

// UpsertPhaseStatus создаёт или обновляет статус фазы (project, phase)
func (d *Database) UpsertPhaseStatus(ctx context.Context, status *models.ProjectPhaseStatus) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "phase"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(status).Error
}

func (d *Database) GetPhaseStatus(ctx context.Context, projectID uuid.UUID, phase models.Phase) (*models.ProjectPhaseStatus, error) {
	var status models.ProjectPhaseStatus
	err := d.db.WithContext(ctx).
		Where("project_id = ? AND phase = ?", projectID, phase).
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// GetProjectsWithDeadline возвращает активные проекты с заданным дедлайном
func (d *Database) GetProjectsWithDeadline(ctx context.Context, skip []models.ProjectStatus) ([]models.Project, error) {
	var projects []models.Project

	query := d.db.WithContext(ctx).Where("deadline IS NOT NULL")
	if len(skip) > 0 {
		query = query.Where("project_status NOT IN ?", skip)
	}

	err := query.Order("deadline ASC").Find(&projects).Error
	return projects, err
}

func (d *Database) CountTeamProjects(ctx context.Context, teamID uuid.UUID, skip []models.ProjectStatus) (int64, error) {
	var n int64
	query := d.db.WithContext(ctx).Model(&models.Project{}).Where("team_id = ?", teamID)
	if len(skip) > 0 {
		query = query.Where("project_status NOT IN ?", skip)
	}
	err := query.Count(&n).Error
	return n, err
}

// GetRecentProjects возвращает limit последних проектов команды с назначениями
func (d *Database) GetRecentProjects(ctx context.Context, teamID uuid.UUID, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := d.db.WithContext(ctx).
		Preload("Assignments").
		Preload("Assignments.User").
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// DeleteProject каскадно удаляет проект одной транзакцией
func (d *Database) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ProjectAssignment{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProjectPhaseStatus{}, "project_id = ?", id).Error; err != nil {
			return err
		}

		notes := tx.Model(&models.Note{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("note_id IN (?)", notes).Delete(&models.NoteHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Note{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProjectStatusHistory{}, "project_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Project{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
