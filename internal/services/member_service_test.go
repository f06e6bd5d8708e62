package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/testutil"
	"github.com/thereayou/teamdesk/pkg/auth"
	"go.uber.org/zap"
)

func createPendingUser(t *testing.T, db *database.Database, teamID uuid.UUID, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@pending.test",
		PasswordHash: "x",
		Role:         models.RoleMember,
		TeamID:       teamID,
	}
	require.NoError(t, db.SaveUser(context.Background(), user))
	return user
}

func TestApproveMember(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	rival := testutil.CreateTeam(t, db, "rival")
	testutil.CreateUser(t, db, team.ID, "lead", models.RoleLeader)
	pending := createPendingUser(t, db, team.ID, "newbie")
	svc := NewMemberService(db, zap.NewNop())

	list, err := svc.Pending(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	members, err := svc.TeamMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1, "pending users are not team members yet")

	_, err = svc.Approve(ctx, pending.ID, rival.ID)
	assertStatus(t, err, http.StatusForbidden)
	_, err = svc.Approve(ctx, uuid.New(), team.ID)
	assertStatus(t, err, http.StatusNotFound)

	approved, err := svc.Approve(ctx, pending.ID, team.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	_, err = svc.Approve(ctx, pending.ID, team.ID)
	assertStatus(t, err, http.StatusBadRequest)

	notifications, err := db.GetUserNotifications(ctx, pending.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationApproval, notifications[0].Type)
	assert.Equal(t, "Account Approved", notifications[0].Title)

	list, err = svc.Pending(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	members, err = svc.TeamMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRejectMember(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	rival := testutil.CreateTeam(t, db, "rival")
	dev := testutil.CreateUser(t, db, team.ID, "dev", models.RoleMember)
	pending := createPendingUser(t, db, team.ID, "newbie")
	svc := NewMemberService(db, zap.NewNop())

	require.NoError(t, db.CreateNotifications(ctx, []models.Notification{{
		Title: "hello", Content: "x", Type: models.NotificationGeneral, UserID: pending.ID,
	}}))

	assertStatus(t, svc.Reject(ctx, dev.ID, team.ID), http.StatusBadRequest)
	assertStatus(t, svc.Reject(ctx, pending.ID, rival.ID), http.StatusForbidden)

	require.NoError(t, svc.Reject(ctx, pending.ID, team.ID))

	_, err := db.GetUser(ctx, pending.ID)
	assert.Error(t, err)
	notifications, err := db.GetUserNotifications(ctx, pending.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	assertStatus(t, svc.Reject(ctx, pending.ID, team.ID), http.StatusNotFound)
}

func TestUpdateMemberRole(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	rival := testutil.CreateTeam(t, db, "rival")
	lead := testutil.CreateUser(t, db, team.ID, "lead", models.RoleLeader)
	dev := testutil.CreateUser(t, db, team.ID, "dev", models.RoleMember)
	outsider := testutil.CreateUser(t, db, rival.ID, "spy", models.RoleMember)
	backend := testutil.CreateDepartment(t, db, team.ID, "Backend")
	foreign := testutil.CreateDepartment(t, db, rival.ID, "Backend")
	svc := NewMemberService(db, zap.NewNop())

	user, err := svc.UpdateRole(ctx, lead.ID, dev.ID, team.ID, models.RoleLeader, &backend.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeader, user.Role)
	assert.True(t, user.IsTeamLeader)
	require.NotNil(t, user.Department)
	assert.Equal(t, "Backend", user.Department.Name)

	user, err = svc.UpdateRole(ctx, lead.ID, dev.ID, team.ID, models.RoleMember, nil)
	require.NoError(t, err)
	assert.False(t, user.IsTeamLeader)
	assert.Nil(t, user.DepartmentID)

	tests := []struct {
		name string
		call func() error
		want int
	}{
		{"own role", func() error {
			_, err := svc.UpdateRole(ctx, lead.ID, lead.ID, team.ID, models.RoleMember, nil)
			return err
		}, http.StatusBadRequest},
		{"invalid role", func() error {
			_, err := svc.UpdateRole(ctx, lead.ID, dev.ID, team.ID, "OWNER", nil)
			return err
		}, http.StatusBadRequest},
		{"user of another team", func() error {
			_, err := svc.UpdateRole(ctx, lead.ID, outsider.ID, team.ID, models.RoleMember, nil)
			return err
		}, http.StatusForbidden},
		{"department of another team", func() error {
			_, err := svc.UpdateRole(ctx, lead.ID, dev.ID, team.ID, models.RoleMember, &foreign.ID)
			return err
		}, http.StatusForbidden},
		{"unknown user", func() error {
			_, err := svc.UpdateRole(ctx, lead.ID, uuid.New(), team.ID, models.RoleMember, nil)
			return err
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStatus(t, tt.call(), tt.want)
		})
	}
}

func TestCreateMemberIsApproved(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	rdb, _ := newRedis(t)
	team := testutil.CreateTeam(t, db, "acme")
	ui := testutil.CreateDepartment(t, db, team.ID, "UI")
	svc := NewMemberService(db, zap.NewNop())

	user, err := svc.Create(ctx, CreateMemberInput{
		TeamID:       team.ID,
		DepartmentID: &ui.ID,
		Name:         "Designer",
		Email:        "Designer@Acme.io",
		Password:     "correct-horse",
	})
	require.NoError(t, err)
	assert.True(t, user.IsApproved)
	assert.Equal(t, models.RoleMember, user.Role)
	assert.Equal(t, "designer@acme.io", user.Email)

	authSvc := NewAuthService(db, auth.NewJWTManager("test-secret", time.Hour), rdb)
	session, err := authSvc.Login(ctx, "designer@acme.io", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)

	_, err = svc.Create(ctx, CreateMemberInput{TeamID: team.ID, Name: "Dup", Email: "designer@acme.io", Password: "correct-horse"})
	assertStatus(t, err, http.StatusConflict)
	_, err = svc.Create(ctx, CreateMemberInput{TeamID: team.ID, Name: "Short", Email: "short@acme.io", Password: "short"})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestPendingUserCannotJoinWork(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	lead := testutil.CreateUser(t, db, team.ID, "lead", models.RoleLeader)
	pending := createPendingUser(t, db, team.ID, "newbie")
	project := testutil.CreateProject(t, db, team.ID, "Site", nil)
	room := testutil.CreateChatRoom(t, db, team.ID, "general", lead.ID)

	projects := NewProjectService(db, nil, zap.NewNop())
	_, err := projects.Assign(ctx, project.ID, pending.ID, models.PhaseUI)
	assertStatus(t, err, http.StatusBadRequest)

	chat := NewChatService(db, &fakeBroadcaster{}, nil, zap.NewNop())
	_, err = chat.AddMember(ctx, room.ID, pending.ID, lead.ID)
	assertStatus(t, err, http.StatusBadRequest)
}
