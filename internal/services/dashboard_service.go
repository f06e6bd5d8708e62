package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
)

const recentProjectsLimit = 5

type DashboardService struct {
	db *database.Database
}

func NewDashboardService(db *database.Database) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStats struct {
	TotalMembers         int64            `json:"totalMembers"`
	ActiveProjects       int64            `json:"activeProjects"`
	PendingNotifications int64            `json:"pendingNotifications"`
	PendingApprovals     *int64           `json:"pendingApprovals,omitempty"`
	RecentProjects       []models.Project `json:"recentProjects"`
}

// Stats собирает сводку команды; число заявок видят только лидеры
func (s *DashboardService) Stats(ctx context.Context, userID, teamID uuid.UUID, role models.Role) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalMembers, err = s.db.CountTeamUsers(ctx, teamID, true); err != nil {
		return nil, internal(err)
	}
	closed := []models.ProjectStatus{models.StatusDelivered, models.StatusCancelled}
	if stats.ActiveProjects, err = s.db.CountTeamProjects(ctx, teamID, closed); err != nil {
		return nil, internal(err)
	}
	if stats.PendingNotifications, err = s.db.CountUnreadNotifications(ctx, userID); err != nil {
		return nil, internal(err)
	}
	if role == models.RoleLeader {
		pending, err := s.db.CountTeamUsers(ctx, teamID, false)
		if err != nil {
			return nil, internal(err)
		}
		stats.PendingApprovals = &pending
	}
	if stats.RecentProjects, err = s.db.GetRecentProjects(ctx, teamID, recentProjectsLimit); err != nil {
		return nil, internal(err)
	}
	return &stats, nil
}
