package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/pkg/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BlacklistKey - ключ Redis, под которым лежит отозванный токен
func BlacklistKey(token string) string {
	return "blacklist:" + token
}

type AuthService struct {
	db         *database.Database
	jwtManager *auth.JWTManager
	redis      *redis.Client
}

func NewAuthService(db *database.Database, jwtManager *auth.JWTManager, rdb *redis.Client) *AuthService {
	return &AuthService{db: db, jwtManager: jwtManager, redis: rdb}
}

type RegisterTeamInput struct {
	TeamName  string
	TeamEmail string
	Name      string
	Email     string
	Password  string
}

type RegisterUserInput struct {
	TeamID       uuid.UUID
	DepartmentID *uuid.UUID
	Name         string
	Email        string
	Password     string
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// RegisterTeam создаёт команду, отделы по умолчанию и лидера одной транзакцией
func (s *AuthService) RegisterTeam(ctx context.Context, in RegisterTeamInput) (*AuthResult, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var leader models.User
	err = s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := ensureEmailFree(ctx, tx, in.Email); err != nil {
			return err
		}

		_, err := tx.FindTeamByEmail(ctx, normalizeEmail(in.TeamEmail))
		if err == nil {
			return apperror.Conflict("Team with this email already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internal(err)
		}

		team := models.Team{Name: strings.TrimSpace(in.TeamName), Email: normalizeEmail(in.TeamEmail)}
		if err := tx.CreateTeam(ctx, &team); err != nil {
			return internal(err)
		}

		departments := make([]models.Department, 0, len(models.DefaultDepartments))
		for _, name := range models.DefaultDepartments {
			departments = append(departments, models.Department{Name: name, TeamID: team.ID})
		}
		if err := tx.CreateDepartments(ctx, departments); err != nil {
			return internal(err)
		}

		leader = models.User{
			Name:         strings.TrimSpace(in.Name),
			Email:        normalizeEmail(in.Email),
			PasswordHash: hash,
			Role:         models.RoleLeader,
			IsTeamLeader: true,
			IsApproved:   true,
			TeamID:       team.ID,
			DepartmentID: &departments[0].ID,
		}
		return internal(tx.SaveUser(ctx, &leader))
	})
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, leader.ID)
}

// RegisterUser создаёт заявку на вступление; войти можно после подтверждения лидером
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterUserInput) (*models.User, error) {
	if _, err := s.db.GetTeam(ctx, in.TeamID); err != nil {
		return nil, lookupError(err, "Team not found")
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
		Role:         models.RoleMember,
		IsApproved:   false,
		TeamID:       in.TeamID,
		DepartmentID: in.DepartmentID,
	}
	if err := s.db.SaveUser(ctx, &user); err != nil {
		return nil, internal(err)
	}

	return &user, nil
}

// Login выдаёт JWT при верном пароле и подтверждённом аккаунте
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.db.FindUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if !user.IsApproved {
		return nil, apperror.Forbidden("Your account is pending approval from the team leader")
	}

	return s.issue(ctx, user.ID)
}

// Logout ставит токен в черный список в Redis до истечения
func (s *AuthService) Logout(ctx context.Context, token string) error {
	exp, err := s.jwtManager.Expiry(token)
	if err != nil {
		return apperror.Unauthorized("Invalid token")
	}

	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, BlacklistKey(token), 1, ttl).Err(); err != nil {
		return apperror.Internal("failed to revoke token", err)
	}
	return nil
}

// IsRevoked проверяет черный список
func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, BlacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User not found")
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, userID uuid.UUID) (*AuthResult, error) {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}

	token, exp, err := s.jwtManager.Generate(user.ID, user.TeamID, string(user.Role))
	if err != nil {
		return nil, apperror.Internal("could not generate token", err)
	}

	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func ensureEmailFree(ctx context.Context, db *database.Database, email string) error {
	_, err := db.FindUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return apperror.Conflict("User with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return internal(err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperror.BadRequest("Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Internal("cannot hash password", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
