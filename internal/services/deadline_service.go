package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/websocket"
	"go.uber.org/zap"
)

const deadlineAlertTTL = 24 * time.Hour

type AlertLevel string

const (
	AlertWarning AlertLevel = "WARNING"
	AlertUrgent  AlertLevel = "URGENT"
)

// alertLevels - за сколько дней до дедлайна предупреждать
var alertLevels = map[int]AlertLevel{
	4: AlertWarning,
	1: AlertUrgent,
}

type DeadlineAlert struct {
	ProjectID   uuid.UUID  `json:"projectId"`
	ProjectName string     `json:"projectName"`
	DaysLeft    int        `json:"daysLeft"`
	Deadline    time.Time  `json:"deadline"`
	Level       AlertLevel `json:"level"`
}

// DeadlineService рассылает уведомления о приближающихся дедлайнах.
// Ключ в Redis не даёт отправить одно и то же предупреждение дважды за сутки.
type DeadlineService struct {
	db          *database.Database
	redis       *redis.Client
	broadcaster Broadcaster
	log         *zap.Logger
	now         func() time.Time
}

func NewDeadlineService(db *database.Database, rdb *redis.Client, broadcaster Broadcaster, log *zap.Logger) *DeadlineService {
	return &DeadlineService{
		db:          db,
		redis:       rdb,
		broadcaster: broadcaster,
		log:         log.Named("deadlines"),
		now:         time.Now,
	}
}

// DaysLeft округляет оставшееся время вверх до целых суток
func DaysLeft(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}

// CheckDeadlines проходит по активным проектам и шлёт предупреждения за 4 дня и за 1 день
func (s *DeadlineService) CheckDeadlines(ctx context.Context) error {
	projects, err := s.db.GetProjectsWithDeadline(ctx, []models.ProjectStatus{
		models.StatusDelivered,
		models.StatusCancelled,
	})
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}

	now := s.now()
	sent := 0
	for i := range projects {
		project := &projects[i]

		daysLeft := DaysLeft(*project.Deadline, now)
		level, ok := alertLevels[daysLeft]
		if !ok {
			continue
		}

		alerted, err := s.alert(ctx, project, daysLeft, level)
		if err != nil {
			s.log.Error("deadline alert failed", zap.Stringer("project_id", project.ID), zap.Error(err))
			continue
		}
		if alerted {
			sent++
		}
	}

	s.log.Info("deadline check finished", zap.Int("projects", len(projects)), zap.Int("alerts", sent))
	return nil
}

func (s *DeadlineService) alert(ctx context.Context, project *models.Project, daysLeft int, level AlertLevel) (bool, error) {
	key := fmt.Sprintf("deadline-alert:%s:%d", project.ID, daysLeft)
	fresh, err := s.redis.SetNX(ctx, key, 1, deadlineAlertTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe key: %w", err)
	}
	if !fresh {
		return false, nil
	}

	recipients, err := s.recipients(ctx, project)
	if err != nil {
		s.redis.Del(ctx, key)
		return false, err
	}

	title, content := deadlineText(project.Name, daysLeft, level)
	notifications := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notifications = append(notifications, models.Notification{
			Title:   title,
			Content: content,
			Type:    models.NotificationDeadline,
			UserID:  userID,
		})
	}

	if err := s.db.CreateNotifications(ctx, notifications); err != nil {
		s.redis.Del(ctx, key)
		return false, fmt.Errorf("create notifications: %w", err)
	}

	event := DeadlineAlert{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		DaysLeft:    daysLeft,
		Deadline:    *project.Deadline,
		Level:       level,
	}
	if err := s.broadcaster.BroadcastToTeam(project.TeamID, websocket.TypeDeadlineAlert, event); err != nil {
		s.log.Error("deadline broadcast failed", zap.Stringer("project_id", project.ID), zap.Error(err))
	}

	return true, nil
}

// recipients - лидеры команды и все назначенные на проект, без повторов
func (s *DeadlineService) recipients(ctx context.Context, project *models.Project) ([]uuid.UUID, error) {
	leaders, err := s.db.GetTeamLeaders(ctx, project.TeamID)
	if err != nil {
		return nil, err
	}
	assignees, err := s.db.GetProjectAssignees(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, leader := range leaders {
		if !seen[leader.ID] {
			seen[leader.ID] = true
			ids = append(ids, leader.ID)
		}
	}
	for _, id := range assignees {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func deadlineText(projectName string, daysLeft int, level AlertLevel) (string, string) {
	if level == AlertUrgent {
		return "Project deadline is tomorrow",
			fmt.Sprintf("Project %q is due in 1 day", projectName)
	}
	return "Project deadline is approaching",
		fmt.Sprintf("Project %q is due in %d days", projectName, daysLeft)
}
