package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateTeam(ctx context.Context, team *models.Team) error {
	return d.db.WithContext(ctx).Create(team).Error
}

func (d *Database) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := d.db.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (d *Database) FindTeamByEmail(ctx context.Context, email string) (*models.Team, error) {
	var team models.Team
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (d *Database) SaveUser(ctx context.Context, user *models.User) error {
	return d.db.WithContext(ctx).Create(user).Error
}

func (d *Database) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Preload("Team").Preload("Department").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUserPresence обновляет isOnline и lastSeen одним UPDATE
func (d *Database) SetUserPresence(ctx context.Context, userID uuid.UUID, online bool, lastSeen time.Time) error {
	return d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_online": online,
			"last_seen": lastSeen,
		}).Error
}

// ResetPresence снимает isOnline со всех пользователей; возвращает число изменённых строк
func (d *Database) ResetPresence(ctx context.Context, lastSeen time.Time) (int64, error) {
	res := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_online = ?", true).
		Updates(map[string]interface{}{
			"is_online": false,
			"last_seen": lastSeen,
		})
	return res.RowsAffected, res.Error
}

// GetOnlineUsers возвращает пользователей команды с isOnline = true
func (d *Database) GetOnlineUsers(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).
		Where("team_id = ? AND is_online = ?", teamID, true).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (d *Database) GetTeamLeaders(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).
		Where("team_id = ? AND is_team_leader = ?", teamID, true).
		Find(&users).Error
	return users, err
}

// GetTeamMembers возвращает подтверждённых участников команды по имени
func (d *Database) GetTeamMembers(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).
		Preload("Department").
		Where("team_id = ? AND is_approved = ?", teamID, true).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// GetPendingUsers возвращает заявки на вступление, новые первыми
func (d *Database) GetPendingUsers(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := d.db.WithContext(ctx).
		Preload("Department").
		Where("team_id = ? AND is_approved = ?", teamID, false).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (d *Database) CountTeamUsers(ctx context.Context, teamID uuid.UUID, approved bool) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("team_id = ? AND is_approved = ?", teamID, approved).
		Count(&n).Error
	return n, err
}

// ApproveUser возвращает false, если пользователь уже был подтверждён
func (d *Database) ApproveUser(ctx context.Context, id uuid.UUID) (bool, error) {
	res := d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_approved = ?", id, false).
		Update("is_approved", true)
	return res.RowsAffected > 0, res.Error
}

func (d *Database) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role, departmentID *uuid.UUID) error {
	return d.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"role":           role,
			"is_team_leader": role == models.RoleLeader,
			"department_id":  departmentID,
		}).Error
}

// DeleteUser удаляет пользователя и строки, которые на него ссылаются; вызывать внутри Transaction
func (d *Database) DeleteUser(ctx context.Context, id uuid.UUID) error {
	db := d.db.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&models.Notification{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.MessageSeen{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.ChatRoomMember{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.ProjectAssignment{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
