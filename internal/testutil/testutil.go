// Package testutil provides an in-memory store and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/logger"
	"github.com/thereayou/teamdesk/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDatabase opens a fresh in-memory SQLite database with the full schema.
func NewDatabase(t testing.TB) *database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.NewGormLogger(zap.NewNop(), gormlogger.Silent, 0, true),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))

	return database.NewDatabase(db)
}

func CreateTeam(t testing.TB, db *database.Database, name string) *models.Team {
	t.Helper()
	team := &models.Team{
		Name:  name,
		Email: fmt.Sprintf("%s-%s@team.test", name, uuid.NewString()[:8]),
	}
	require.NoError(t, db.CreateTeam(context.Background(), team))
	return team
}

func CreateUser(t testing.TB, db *database.Database, teamID uuid.UUID, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@user.test", name, uuid.NewString()[:8]),
		PasswordHash: "x",
		Role:         role,
		IsTeamLeader: role == models.RoleLeader,
		IsApproved:   true,
		TeamID:       teamID,
	}
	require.NoError(t, db.SaveUser(context.Background(), user))
	return user
}

func CreateDepartment(t testing.TB, db *database.Database, teamID uuid.UUID, name string) *models.Department {
	t.Helper()
	department := &models.Department{Name: name, TeamID: teamID}
	require.NoError(t, db.CreateDepartment(context.Background(), department))
	return department
}

func CreateProject(t testing.TB, db *database.Database, teamID uuid.UUID, name string, deadline *time.Time) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:     name,
		TeamID:   teamID,
		Deadline: deadline,
	}
	require.NoError(t, db.CreateProject(context.Background(), project))
	return project
}

func CreateChatRoom(t testing.TB, db *database.Database, teamID uuid.UUID, name string, members ...uuid.UUID) *models.ChatRoom {
	t.Helper()
	ctx := context.Background()
	room := &models.ChatRoom{Name: name, TeamID: teamID}
	require.NoError(t, db.CreateChatRoom(ctx, room))
	for _, userID := range members {
		_, err := db.AddChatRoomMember(ctx, &models.ChatRoomMember{
			ChatRoomID:    room.ID,
			UserID:        userID,
			CanAddMembers: true,
		})
		require.NoError(t, err)
	}
	return room
}
