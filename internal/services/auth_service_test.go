package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/testutil"
	"github.com/thereayou/teamdesk/pkg/auth"
)

func newAuthService(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()
	db := testutil.NewDatabase(t)
	rdb, _ := newRedis(t)
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(db, jwtMgr, rdb), jwtMgr
}

func TestRegisterTeamAndUser(t *testing.T) {
	ctx := context.Background()
	svc, jwtMgr := newAuthService(t)

	leader, err := svc.RegisterTeam(ctx, RegisterTeamInput{
		TeamName:  "Acme",
		TeamEmail: "Team@Acme.io",
		Name:      "Lead",
		Email:     " Lead@Acme.io ",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLeader, leader.User.Role)
	assert.True(t, leader.User.IsTeamLeader)
	assert.Equal(t, "lead@acme.io", leader.User.Email)
	require.NotNil(t, leader.User.Team)
	assert.Equal(t, "team@acme.io", leader.User.Team.Email)
	assert.True(t, leader.User.IsApproved)
	require.NotNil(t, leader.User.Department)
	assert.Equal(t, "Frontend", leader.User.Department.Name)

	departments, err := svc.db.GetTeamDepartments(ctx, leader.User.TeamID)
	require.NoError(t, err)
	names := make([]string, 0, len(departments))
	for _, d := range departments {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, models.DefaultDepartments, names)

	claims, err := jwtMgr.Verify(leader.Token)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, leader.User.ID, userID)
	assert.Equal(t, string(models.RoleLeader), claims.Role)

	backend := departments[0].ID
	member, err := svc.RegisterUser(ctx, RegisterUserInput{
		Name:         "Dev",
		Email:        "dev@acme.io",
		Password:     "correct-horse",
		TeamID:       leader.User.TeamID,
		DepartmentID: &backend,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.False(t, member.IsTeamLeader)
	assert.False(t, member.IsApproved)
	assert.Equal(t, leader.User.TeamID, member.TeamID)
	assert.Equal(t, &backend, member.DepartmentID)

	rival, err := svc.RegisterTeam(ctx, RegisterTeamInput{TeamName: "Rival", TeamEmail: "team@rival.io", Name: "R", Email: "r@rival.io", Password: "correct-horse"})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want int
	}{
		{"duplicate team email", func() error {
			_, err := svc.RegisterTeam(ctx, RegisterTeamInput{TeamName: "B", TeamEmail: "team@acme.io", Name: "x", Email: "x@b.io", Password: "correct-horse"})
			return err
		}, http.StatusConflict},
		{"duplicate user email", func() error {
			_, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "x", Email: "DEV@acme.io", Password: "correct-horse", TeamID: leader.User.TeamID})
			return err
		}, http.StatusConflict},
		{"short password", func() error {
			_, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "x", Email: "short@acme.io", Password: "short", TeamID: leader.User.TeamID})
			return err
		}, http.StatusBadRequest},
		{"department of another team", func() error {
			_, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "x", Email: "z@acme.io", Password: "correct-horse", TeamID: rival.User.TeamID, DepartmentID: &backend})
			return err
		}, http.StatusForbidden},
		{"unknown department", func() error {
			_, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "x", Email: "z@acme.io", Password: "correct-horse", TeamID: leader.User.TeamID, DepartmentID: ptr(uuid.New())})
			return err
		}, http.StatusNotFound},
		{"unknown team", func() error {
			_, err := svc.RegisterUser(ctx, RegisterUserInput{Name: "x", Email: "y@acme.io", Password: "correct-horse", TeamID: uuid.New()})
			return err
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStatus(t, tt.call(), tt.want)
		})
	}
}

func TestRegisterTeamConflictCreatesNothing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	_, err := svc.RegisterTeam(ctx, RegisterTeamInput{TeamName: "A", TeamEmail: "a@team.io", Name: "A", Email: "taken@acme.io", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.RegisterTeam(ctx, RegisterTeamInput{TeamName: "B", TeamEmail: "b@team.io", Name: "B", Email: "taken@acme.io", Password: "correct-horse"})
	assertStatus(t, err, http.StatusConflict)

	_, err = svc.db.FindTeamByEmail(ctx, "b@team.io")
	assert.Error(t, err, "team must not be created when the leader cannot be")
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	registered, err := svc.RegisterTeam(ctx, RegisterTeamInput{TeamName: "Acme", TeamEmail: "team@acme.io", Name: "Lead", Email: "lead@acme.io", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "lead@acme.io", "wrong-password")
	assertStatus(t, err, http.StatusUnauthorized)
	_, err = svc.Login(ctx, "nobody@acme.io", "correct-horse")
	assertStatus(t, err, http.StatusUnauthorized)

	session, err := svc.Login(ctx, "LEAD@acme.io", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)

	revoked, err := svc.IsRevoked(ctx, session.Token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, session.Token))

	revoked, err = svc.IsRevoked(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := svc.redis.TTL(ctx, BlacklistKey(session.Token)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	assertStatus(t, svc.Logout(ctx, "garbage"), http.StatusUnauthorized)

	_, err = svc.RegisterUser(ctx, RegisterUserInput{Name: "Dev", Email: "dev@acme.io", Password: "correct-horse", TeamID: registered.User.TeamID})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "dev@acme.io", "wrong-password")
	assertStatus(t, err, http.StatusUnauthorized)
	_, err = svc.Login(ctx, "dev@acme.io", "correct-horse")
	assertStatus(t, err, http.StatusForbidden)

	me, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lead", me.Name)
	_, err = svc.Me(ctx, uuid.New())
	assertStatus(t, err, http.StatusNotFound)
}
