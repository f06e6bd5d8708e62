package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/database"
	"github.com/thereayou/teamdesk/internal/models"
	"go.uber.org/zap"
)

// DeadlineChecker запускается после создания проекта с дедлайном
type DeadlineChecker interface {
	CheckDeadlines(ctx context.Context) error
}

type ProjectService struct {
	db        *database.Database
	deadlines DeadlineChecker
	log       *zap.Logger
}

func NewProjectService(db *database.Database, deadlines DeadlineChecker, log *zap.Logger) *ProjectService {
	return &ProjectService{db: db, deadlines: deadlines, log: log.Named("projects")}
}

type AssignmentInput struct {
	UserID uuid.UUID
	Phase  models.Phase
}

type CreateProjectInput struct {
	TeamID      uuid.UUID
	Name        string
	Description string
	Deadline    *time.Time
	Assignments []AssignmentInput
}

// Create создаёт проект со статусом NOT_STARTED и назначениями
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.BadRequest("Project name is required")
	}

	project := models.Project{
		Name:          name,
		Description:   in.Description,
		TeamID:        in.TeamID,
		ProjectStatus: models.StatusNotStarted,
		Deadline:      in.Deadline,
	}

	seen := make(map[AssignmentInput]bool)
	for _, a := range in.Assignments {
		if !a.Phase.Valid() {
			return nil, apperror.BadRequest("Invalid phase: " + string(a.Phase))
		}
		if seen[a] {
			continue
		}
		seen[a] = true

		if err := s.ensureTeammate(ctx, a.UserID, in.TeamID); err != nil {
			return nil, err
		}
		project.Assignments = append(project.Assignments, models.ProjectAssignment{
			UserID: a.UserID,
			Phase:  a.Phase,
		})
	}

	if err := s.db.CreateProject(ctx, &project); err != nil {
		return nil, internal(err)
	}

	if project.Deadline != nil && s.deadlines != nil {
		go s.checkDeadlines()
	}

	return s.Get(ctx, project.ID)
}

func (s *ProjectService) checkDeadlines() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.deadlines.CheckDeadlines(ctx); err != nil {
		s.log.Error("deadline check after project creation failed", zap.Error(err))
	}
}

// Get возвращает проект с назначениями, фазами и последними записями истории статусов
func (s *ProjectService) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.db.GetProjectDetails(ctx, projectID, recentHistoryLimit)
	if err != nil {
		return nil, lookupError(err, "Project not found")
	}
	return project, nil
}

// InTeam проверяет, что проект существует и принадлежит команде
func (s *ProjectService) InTeam(ctx context.Context, projectID, teamID uuid.UUID) (*models.Project, error) {
	project, err := s.db.GetProject(ctx, projectID)
	if err != nil {
		return nil, lookupError(err, "Project not found")
	}
	if project.TeamID != teamID {
		return nil, apperror.Forbidden("Project belongs to another team")
	}
	return project, nil
}

// NoteInTeam проверяет заметку через её проект
func (s *ProjectService) NoteInTeam(ctx context.Context, noteID, teamID uuid.UUID) (*models.Note, error) {
	note, err := s.db.GetNote(ctx, noteID)
	if err != nil {
		return nil, lookupError(err, "Note not found")
	}
	if _, err := s.InTeam(ctx, note.ProjectID, teamID); err != nil {
		return nil, err
	}
	return note, nil
}

// Assign назначает пользователя на фазу; повторное назначение возвращает существующее
func (s *ProjectService) Assign(ctx context.Context, projectID, userID uuid.UUID, phase models.Phase) (*models.ProjectAssignment, error) {
	if !phase.Valid() {
		return nil, apperror.BadRequest("Invalid phase: " + string(phase))
	}

	project, err := s.db.GetProject(ctx, projectID)
	if err != nil {
		return nil, lookupError(err, "Project not found")
	}
	if err := s.ensureTeammate(ctx, userID, project.TeamID); err != nil {
		return nil, err
	}

	if _, err := s.db.AddAssignment(ctx, &models.ProjectAssignment{
		ProjectID: projectID,
		UserID:    userID,
		Phase:     phase,
	}); err != nil {
		return nil, internal(err)
	}

	assignment, err := s.db.FindAssignment(ctx, projectID, userID, phase)
	if err != nil {
		return nil, internal(err)
	}
	return assignment, nil
}

// Unassign удаляет назначение, если его проект принадлежит команде
func (s *ProjectService) Unassign(ctx context.Context, assignmentID, teamID uuid.UUID) error {
	assignment, err := s.db.GetAssignment(ctx, assignmentID)
	if err != nil {
		return lookupError(err, "Assignment not found")
	}
	if _, err := s.InTeam(ctx, assignment.ProjectID, teamID); err != nil {
		return err
	}
	return internal(s.db.DeleteAssignment(ctx, assignmentID))
}

// UpdatePhaseStatus создаёт или обновляет статус фазы проекта
func (s *ProjectService) UpdatePhaseStatus(ctx context.Context, projectID uuid.UUID, phase models.Phase, status string) (*models.ProjectPhaseStatus, error) {
	if !phase.Valid() {
		return nil, apperror.BadRequest("Invalid phase: " + string(phase))
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperror.BadRequest("Phase status is required")
	}

	if _, err := s.db.GetProject(ctx, projectID); err != nil {
		return nil, lookupError(err, "Project not found")
	}

	if err := s.db.UpsertPhaseStatus(ctx, &models.ProjectPhaseStatus{
		ProjectID: projectID,
		Phase:     phase,
		Status:    status,
		UpdatedAt: time.Now(),
	}); err != nil {
		return nil, internal(err)
	}

	phaseStatus, err := s.db.GetPhaseStatus(ctx, projectID, phase)
	if err != nil {
		return nil, internal(err)
	}
	return phaseStatus, nil
}

// Delete каскадно удаляет проект со всеми зависимыми записями
func (s *ProjectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	return lookupError(s.db.DeleteProject(ctx, projectID), "Project not found")
}

func (s *ProjectService) ensureTeammate(ctx context.Context, userID, teamID uuid.UUID) error {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return lookupError(err, "User not found")
	}
	if user.TeamID != teamID {
		return apperror.Forbidden("User does not belong to this team")
	}
	if !user.IsApproved {
		return apperror.BadRequest("User is pending approval")
	}
	return nil
}
