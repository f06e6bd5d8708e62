package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/testutil"
	"go.uber.org/zap"
)

func TestDepartmentLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	svc := NewDepartmentService(db)

	qa, err := svc.Create(ctx, team.ID, "  QA ")
	require.NoError(t, err)
	assert.Equal(t, "QA", qa.Name)

	_, err = svc.Create(ctx, team.ID, "QA")
	assertStatus(t, err, http.StatusConflict)
	_, err = svc.Create(ctx, team.ID, "   ")
	assertStatus(t, err, http.StatusBadRequest)

	renamed, err := svc.Rename(ctx, qa.ID, team.ID, "Quality")
	require.NoError(t, err)
	assert.Equal(t, "Quality", renamed.Name)

	same, err := svc.Rename(ctx, qa.ID, team.ID, "Quality")
	require.NoError(t, err)
	assert.Equal(t, qa.ID, same.ID)

	_, err = svc.Create(ctx, team.ID, "Ops")
	require.NoError(t, err)
	_, err = svc.Rename(ctx, qa.ID, team.ID, "Ops")
	assertStatus(t, err, http.StatusConflict)

	require.NoError(t, svc.Delete(ctx, qa.ID, team.ID))
	_, err = svc.Get(ctx, qa.ID, team.ID)
	assertStatus(t, err, http.StatusNotFound)
}

func TestDepartmentMembersAndCounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	backend := testutil.CreateDepartment(t, db, team.ID, "Backend")
	ops := testutil.CreateDepartment(t, db, team.ID, "Ops")
	svc := NewDepartmentService(db)
	members := NewMemberService(db, zap.NewNop())

	lead := testutil.CreateUser(t, db, team.ID, "lead", models.RoleLeader)
	for _, name := range []string{"zed", "amy"} {
		user := testutil.CreateUser(t, db, team.ID, name, models.RoleMember)
		_, err := members.UpdateRole(ctx, lead.ID, user.ID, team.ID, models.RoleMember, &backend.ID)
		require.NoError(t, err)
	}
	pending := createPendingUser(t, db, team.ID, "newbie")
	require.NoError(t, db.UpdateUserRole(ctx, pending.ID, models.RoleMember, &ops.ID))

	list, err := svc.List(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Backend", list[0].Name)
	assert.Equal(t, int64(2), list[0].MemberCount)
	assert.Equal(t, "Ops", list[1].Name)
	assert.Equal(t, int64(0), list[1].MemberCount, "pending users are not counted")

	department, err := svc.Get(ctx, backend.ID, team.ID)
	require.NoError(t, err)
	require.Len(t, department.Members, 2)
	assert.Equal(t, "amy", department.Members[0].Name)

	assertStatus(t, svc.Delete(ctx, backend.ID, team.ID), http.StatusBadRequest)
	assertStatus(t, svc.Delete(ctx, ops.ID, team.ID), http.StatusBadRequest)
}

func TestDepartmentRules(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	rival := testutil.CreateTeam(t, db, "rival")
	frontend := testutil.CreateDepartment(t, db, team.ID, "Frontend")
	svc := NewDepartmentService(db)

	assertStatus(t, svc.Delete(ctx, frontend.ID, team.ID), http.StatusBadRequest)
	_, err := svc.Rename(ctx, frontend.ID, team.ID, "Web")
	assertStatus(t, err, http.StatusBadRequest)

	_, err = svc.Get(ctx, frontend.ID, rival.ID)
	assertStatus(t, err, http.StatusForbidden)
	assertStatus(t, svc.Delete(ctx, frontend.ID, rival.ID), http.StatusForbidden)
	_, err = svc.Get(ctx, uuid.New(), team.ID)
	assertStatus(t, err, http.StatusNotFound)

	// одинаковые имена допустимы в разных командах
	_, err = svc.Create(ctx, rival.ID, "Frontend")
	require.NoError(t, err)
}
