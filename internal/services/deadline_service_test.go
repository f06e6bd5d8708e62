package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/testutil"
	"github.com/thereayou/teamdesk/internal/websocket"
	"go.uber.org/zap"
)

func TestDaysLeft(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		deadline time.Time
		want     int
	}{
		{"exactly four days", now.Add(96 * time.Hour), 4},
		{"partial day rounds up", now.Add(73 * time.Hour), 4},
		{"under a day", now.Add(2 * time.Hour), 1},
		{"already passed", now.Add(-25 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysLeft(tt.deadline, now))
		})
	}
}

func TestCheckDeadlines(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	rdb, mr := newRedis(t)
	bus := &fakeBroadcaster{}

	team := testutil.CreateTeam(t, db, "acme")
	leader := testutil.CreateUser(t, db, team.ID, "lead", models.RoleLeader)
	dev := testutil.CreateUser(t, db, team.ID, "dev", models.RoleMember)
	idle := testutil.CreateUser(t, db, team.ID, "idle", models.RoleMember)

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	soon := now.Add(4*24*time.Hour - time.Hour)
	tomorrow := now.Add(20 * time.Hour)
	later := now.Add(10 * 24 * time.Hour)

	warning := testutil.CreateProject(t, db, team.ID, "warning", &soon)
	urgent := testutil.CreateProject(t, db, team.ID, "urgent", &tomorrow)
	testutil.CreateProject(t, db, team.ID, "later", &later)
	delivered := testutil.CreateProject(t, db, team.ID, "delivered", &tomorrow)
	require.NoError(t, db.UpdateProjectStatus(ctx, delivered.ID, models.StatusDelivered, &now))

	_, err := db.AddAssignment(ctx, &models.ProjectAssignment{ProjectID: warning.ID, UserID: dev.ID, Phase: models.PhaseBackend})
	require.NoError(t, err)
	// лидер назначен сам, но уведомление получает один раз
	_, err = db.AddAssignment(ctx, &models.ProjectAssignment{ProjectID: warning.ID, UserID: leader.ID, Phase: models.PhaseUI})
	require.NoError(t, err)

	svc := NewDeadlineService(db, rdb, bus, zap.NewNop())
	svc.now = fixedClock(now)

	require.NoError(t, svc.CheckDeadlines(ctx))

	alerts := bus.ofType(websocket.TypeDeadlineAlert)
	require.Len(t, alerts, 2)
	levels := map[string]AlertLevel{}
	for _, a := range alerts {
		assert.True(t, a.team)
		assert.Equal(t, team.ID, a.target)
		event := a.data.(DeadlineAlert)
		levels[event.ProjectName] = event.Level
	}
	assert.Equal(t, map[string]AlertLevel{"warning": AlertWarning, "urgent": AlertUrgent}, levels)

	leaderInbox, err := db.GetUserNotifications(ctx, leader.ID, 10)
	require.NoError(t, err)
	assert.Len(t, leaderInbox, 2)

	devInbox, err := db.GetUserNotifications(ctx, dev.ID, 10)
	require.NoError(t, err)
	require.Len(t, devInbox, 1)
	assert.Equal(t, models.NotificationDeadline, devInbox[0].Type)
	assert.Contains(t, devInbox[0].Content, "warning")

	idleInbox, err := db.GetUserNotifications(ctx, idle.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, idleInbox)

	assert.True(t, mr.Exists("deadline-alert:"+urgent.ID.String()+":1"))

	t.Run("second run within a day is deduplicated", func(t *testing.T) {
		require.NoError(t, svc.CheckDeadlines(ctx))
		assert.Len(t, bus.ofType(websocket.TypeDeadlineAlert), 2)

		inbox, err := db.GetUserNotifications(ctx, leader.ID, 10)
		require.NoError(t, err)
		assert.Len(t, inbox, 2)
	})

	t.Run("alerts again after the key expires", func(t *testing.T) {
		mr.FastForward(deadlineAlertTTL + time.Minute)
		require.NoError(t, svc.CheckDeadlines(ctx))
		assert.Len(t, bus.ofType(websocket.TypeDeadlineAlert), 4)
	})
}

func TestCheckDeadlinesRedisDown(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDatabase(t)
	rdb, mr := newRedis(t)
	bus := &fakeBroadcaster{}

	team := testutil.CreateTeam(t, db, "acme")
	testutil.CreateUser(t, db, team.ID, "lead", models.RoleLeader)
	now := time.Now()
	tomorrow := now.Add(12 * time.Hour)
	testutil.CreateProject(t, db, team.ID, "urgent", &tomorrow)

	svc := NewDeadlineService(db, rdb, bus, zap.NewNop())
	svc.now = fixedClock(now)
	mr.Close()

	// ошибка одного проекта не останавливает проход
	require.NoError(t, svc.CheckDeadlines(ctx))
	assert.Empty(t, bus.ofType(websocket.TypeDeadlineAlert))
}
