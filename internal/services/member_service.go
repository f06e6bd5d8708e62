package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
	"go.uber.org/zap"
)

// MemberService управляет составом команды: заявки, роли и отделы участников
type MemberService struct {
	db  *database.Database
	log *zap.Logger
}

func NewMemberService(db *database.Database, log *zap.Logger) *MemberService {
	return &MemberService{db: db, log: log.Named("members")}
}

type CreateMemberInput struct {
	TeamID       uuid.UUID
	DepartmentID *uuid.UUID
	Name         string
	Email        string
	Password     string
	Role         models.Role
}

func (s *MemberService) TeamMembers(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	users, err := s.db.GetTeamMembers(ctx, teamID)
	if err != nil {
		return nil, internal(err)
	}
	return users, nil
}

func (s *MemberService) Pending(ctx context.Context, teamID uuid.UUID) ([]models.User, error) {
	users, err := s.db.GetPendingUsers(ctx, teamID)
	if err != nil {
		return nil, internal(err)
	}
	return users, nil
}

// Approve подтверждает заявку и оставляет пользователю уведомление
func (s *MemberService) Approve(ctx context.Context, userID, teamID uuid.UUID) (*models.User, error) {
	if _, err := s.teammate(ctx, userID, teamID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		approved, err := tx.ApproveUser(ctx, userID)
		if err != nil {
			return internal(err)
		}
		if !approved {
			return apperror.BadRequest("User is already approved")
		}
		return internal(tx.CreateNotifications(ctx, []models.Notification{{
			Title:   "Account Approved",
			Content: "Your account has been approved by the team leader. You can now log in.",
			Type:    models.NotificationApproval,
			UserID:  userID,
		}}))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("member approved", zap.Stringer("user_id", userID), zap.Stringer("team_id", teamID))
	return s.reload(ctx, userID)
}

// Reject удаляет неподтверждённую заявку
func (s *MemberService) Reject(ctx context.Context, userID, teamID uuid.UUID) error {
	user, err := s.teammate(ctx, userID, teamID)
	if err != nil {
		return err
	}
	if user.IsApproved {
		return apperror.BadRequest("Only pending users can be rejected")
	}

	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		return lookupError(tx.DeleteUser(ctx, userID), "User not found")
	})
	if err != nil {
		return err
	}

	s.log.Info("member rejected", zap.Stringer("user_id", userID), zap.Stringer("team_id", teamID))
	return nil
}

// UpdateRole меняет роль и отдел; новая роль попадёт в токен при следующем входе
func (s *MemberService) UpdateRole(ctx context.Context, actorID, userID, teamID uuid.UUID, role models.Role, departmentID *uuid.UUID) (*models.User, error) {
	if role != models.RoleLeader && role != models.RoleMember {
		return nil, apperror.BadRequest("Invalid role: " + string(role))
	}
	if actorID == userID {
		return nil, apperror.BadRequest("You cannot change your own role")
	}
	if _, err := s.teammate(ctx, userID, teamID); err != nil {
		return nil, err
	}
	if err := ensureDepartment(ctx, s.db, departmentID, teamID); err != nil {
		return nil, err
	}

	if err := s.db.UpdateUserRole(ctx, userID, role, departmentID); err != nil {
		return nil, internal(err)
	}
	return s.reload(ctx, userID)
}

// Create добавляет участника от имени лидера сразу подтверждённым
func (s *MemberService) Create(ctx context.Context, in CreateMemberInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleLeader && role != models.RoleMember {
		return nil, apperror.BadRequest("Invalid role: " + string(role))
	}
	if err := ensureDepartment(ctx, s.db, in.DepartmentID, in.TeamID); err != nil {
		return nil, err
	}
	if err := ensureEmailFree(ctx, s.db, in.Email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         role,
		IsTeamLeader: role == models.RoleLeader,
		IsApproved:   true,
		TeamID:       in.TeamID,
		DepartmentID: in.DepartmentID,
	}
	if err := s.db.SaveUser(ctx, &user); err != nil {
		return nil, internal(err)
	}
	return s.reload(ctx, user.ID)
}

func (s *MemberService) teammate(ctx context.Context, userID, teamID uuid.UUID) (*models.User, error) {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User not found")
	}
	if user.TeamID != teamID {
		return nil, apperror.Forbidden("User does not belong to this team")
	}
	return user, nil
}

func (s *MemberService) reload(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	return user, nil
}
