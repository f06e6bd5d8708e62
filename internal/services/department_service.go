package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm"
)

type DepartmentService struct {
	db *database.Database
}

func NewDepartmentService(db *database.Database) *DepartmentService {
	return &DepartmentService{db: db}
}

func (s *DepartmentService) Create(ctx context.Context, teamID uuid.UUID, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.BadRequest("Department name is required")
	}
	if err := s.ensureNameFree(ctx, teamID, name, uuid.Nil); err != nil {
		return nil, err
	}

	department := models.Department{Name: name, TeamID: teamID}
	if err := s.db.CreateDepartment(ctx, &department); err != nil {
		return nil, internal(err)
	}
	return &department, nil
}

func (s *DepartmentService) List(ctx context.Context, teamID uuid.UUID) ([]models.Department, error) {
	departments, err := s.db.GetTeamDepartments(ctx, teamID)
	if err != nil {
		return nil, internal(err)
	}
	return departments, nil
}

// Get возвращает отдел с участниками; чужая команда получает Forbidden
func (s *DepartmentService) Get(ctx context.Context, id, teamID uuid.UUID) (*models.Department, error) {
	department, err := s.db.GetDepartment(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Department not found")
	}
	if department.TeamID != teamID {
		return nil, apperror.Forbidden("You don't have access to this department")
	}
	return department, nil
}

func (s *DepartmentService) Rename(ctx context.Context, id, teamID uuid.UUID, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.BadRequest("Department name is required")
	}

	department, err := s.Get(ctx, id, teamID)
	if err != nil {
		return nil, err
	}
	if department.Name == name {
		return department, nil
	}
	if models.IsDefaultDepartment(department.Name) {
		return nil, apperror.BadRequest("Default departments cannot be renamed")
	}
	if err := s.ensureNameFree(ctx, teamID, name, id); err != nil {
		return nil, err
	}

	if err := s.db.RenameDepartment(ctx, id, name); err != nil {
		return nil, internal(err)
	}
	return s.Get(ctx, id, teamID)
}

// Delete удаляет пустой отдел, кроме отделов по умолчанию
func (s *DepartmentService) Delete(ctx context.Context, id, teamID uuid.UUID) error {
	department, err := s.Get(ctx, id, teamID)
	if err != nil {
		return err
	}
	if models.IsDefaultDepartment(department.Name) {
		return apperror.BadRequest("Default departments cannot be deleted")
	}

	return s.db.Transaction(ctx, func(tx *database.Database) error {
		n, err := tx.CountDepartmentUsers(ctx, id)
		if err != nil {
			return internal(err)
		}
		if n > 0 {
			return apperror.BadRequest("Cannot delete department with members. Please reassign members first.")
		}
		return lookupError(tx.DeleteDepartment(ctx, id), "Department not found")
	})
}

// ensureDepartment проверяет, что отдел существует и принадлежит команде; nil допустим
func ensureDepartment(ctx context.Context, db *database.Database, id *uuid.UUID, teamID uuid.UUID) error {
	if id == nil {
		return nil
	}
	department, err := db.GetDepartment(ctx, *id)
	if err != nil {
		return lookupError(err, "Department not found")
	}
	if department.TeamID != teamID {
		return apperror.Forbidden("Department does not belong to this team")
	}
	return nil
}

func (s *DepartmentService) ensureNameFree(ctx context.Context, teamID uuid.UUID, name string, except uuid.UUID) error {
	existing, err := s.db.FindDepartmentByName(ctx, teamID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return internal(err)
	}
	if existing.ID != except {
		return apperror.Conflict("Department with this name already exists")
	}
	return nil
}
