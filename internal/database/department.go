package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateDepartment(ctx context.Context, department *models.Department) error {
	return d.db.WithContext(ctx).Omit("Members").Create(department).Error
}

func (d *Database) CreateDepartments(ctx context.Context, departments []models.Department) error {
	if len(departments) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Omit("Members").Create(&departments).Error
}

// GetDepartment возвращает отдел вместе с подтверждёнными участниками
func (d *Database) GetDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	var department models.Department
	err := d.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_approved = ?", true).Order("name ASC")
		}).
		First(&department, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	department.MemberCount = int64(len(department.Members))
	return &department, nil
}

func (d *Database) FindDepartmentByName(ctx context.Context, teamID uuid.UUID, name string) (*models.Department, error) {
	var department models.Department
	err := d.db.WithContext(ctx).
		Where("team_id = ? AND name = ?", teamID, name).
		First(&department).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

// GetTeamDepartments возвращает отделы команды с числом подтверждённых участников
func (d *Database) GetTeamDepartments(ctx context.Context, teamID uuid.UUID) ([]models.Department, error) {
	var departments []models.Department
	err := d.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("name ASC").
		Find(&departments).Error
	if err != nil {
		return nil, err
	}

	var counts []struct {
		DepartmentID uuid.UUID
		Members      int64
	}
	err = d.db.WithContext(ctx).
		Model(&models.User{}).
		Select("department_id, COUNT(*) AS members").
		Where("team_id = ? AND is_approved = ? AND department_id IS NOT NULL", teamID, true).
		Group("department_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byID[c.DepartmentID] = c.Members
	}
	for i := range departments {
		departments[i].MemberCount = byID[departments[i].ID]
	}
	return departments, nil
}

func (d *Database) RenameDepartment(ctx context.Context, id uuid.UUID, name string) error {
	return d.db.WithContext(ctx).
		Model(&models.Department{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// CountDepartmentUsers считает всех пользователей отдела, включая ожидающих подтверждения
func (d *Database) CountDepartmentUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("department_id = ?", id).
		Count(&n).Error
	return n, err
}

func (d *Database) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	res := d.db.WithContext(ctx).Delete(&models.Department{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
