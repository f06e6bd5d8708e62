package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/testutil"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	team := testutil.CreateTeam(t, db, "acme")
	rival := testutil.CreateTeam(t, db, "rival")
	lead := testutil.CreateUser(t, db, team.ID, "lead", models.RoleLeader)
	dev := testutil.CreateUser(t, db, team.ID, "dev", models.RoleMember)
	testutil.CreateUser(t, db, rival.ID, "spy", models.RoleMember)
	createPendingUser(t, db, team.ID, "newbie")

	var projects []*models.Project
	for i := 0; i < 7; i++ {
		projects = append(projects, testutil.CreateProject(t, db, team.ID, fmt.Sprintf("p%d", i), nil))
	}
	require.NoError(t, db.UpdateProjectStatus(ctx, projects[0].ID, models.StatusDelivered, nil))
	require.NoError(t, db.UpdateProjectStatus(ctx, projects[1].ID, models.StatusCancelled, nil))
	testutil.CreateProject(t, db, rival.ID, "theirs", nil)

	_, err := db.AddAssignment(ctx, &models.ProjectAssignment{ProjectID: projects[6].ID, UserID: dev.ID, Phase: models.PhaseBackend})
	require.NoError(t, err)

	require.NoError(t, db.CreateNotifications(ctx, []models.Notification{
		{Title: "a", Content: "a", Type: models.NotificationGeneral, UserID: dev.ID},
		{Title: "b", Content: "b", Type: models.NotificationGeneral, UserID: dev.ID},
		{Title: "c", Content: "c", Type: models.NotificationGeneral, UserID: lead.ID},
	}))

	svc := NewDashboardService(db)

	stats, err := svc.Stats(ctx, dev.ID, team.ID, models.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalMembers)
	assert.Equal(t, int64(5), stats.ActiveProjects)
	assert.Equal(t, int64(2), stats.PendingNotifications)
	assert.Nil(t, stats.PendingApprovals)
	require.Len(t, stats.RecentProjects, recentProjectsLimit)
	var assigned []string
	for _, p := range stats.RecentProjects {
		assert.Equal(t, team.ID, p.TeamID)
		for _, a := range p.Assignments {
			require.NotNil(t, a.User)
			assigned = append(assigned, a.User.Name)
		}
	}
	assert.Equal(t, []string{"dev"}, assigned)

	stats, err = svc.Stats(ctx, lead.ID, team.ID, models.RoleLeader)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PendingNotifications)
	require.NotNil(t, stats.PendingApprovals)
	assert.Equal(t, int64(1), *stats.PendingApprovals)
}
