package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/services"
)

type ProjectHandler struct {
	projects *services.ProjectService
	statuses *services.StatusService
}

func NewProjectHandler(projects *services.ProjectService, statuses *services.StatusService) *ProjectHandler {
	return &ProjectHandler{projects: projects, statuses: statuses}
}

// CreateProject создаёт проект в команде текущего пользователя
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	in := services.CreateProjectInput{
		TeamID:      middleware.CurrentTeamID(c),
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
	}
	for _, a := range req.Assignments {
		userID, err := parseUUID(a.UserID, "userId")
		if err != nil {
			fail(c, err)
			return
		}
		in.Assignments = append(in.Assignments, services.AssignmentInput{
			UserID: userID,
			Phase:  models.Phase(a.Phase),
		})
	}

	project, err := h.projects.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Project created", project)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := h.projectInTeam(c)
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Project fetched", project)
}

func (h *ProjectHandler) AssignUser(c *gin.Context) {
	projectID, ok := h.projectInTeam(c)
	if !ok {
		return
	}

	var req dto.AssignmentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	userID, err := parseUUID(req.UserID, "userId")
	if err != nil {
		fail(c, err)
		return
	}

	assignment, err := h.projects.Assign(c.Request.Context(), projectID, userID, models.Phase(req.Phase))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "User assigned", assignment)
}

func (h *ProjectHandler) RemoveAssignment(c *gin.Context) {
	assignmentID, err := uuidParam(c, "assignmentId")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.projects.Unassign(c.Request.Context(), assignmentID, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Assignment removed", nil)
}

func (h *ProjectHandler) UpdatePhaseStatus(c *gin.Context) {
	projectID, ok := h.projectInTeam(c)
	if !ok {
		return
	}

	var req dto.PhaseStatusRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	status, err := h.projects.UpdatePhaseStatus(c.Request.Context(), projectID, models.Phase(req.Phase), req.Status)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Phase status updated", status)
}

// DeleteProject удаляет проект вместе с назначениями, заметками и историей
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := h.projectInTeam(c)
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Project deleted", nil)
}

// UpdateStatus меняет статус проекта и пишет запись в журнал
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	projectID, ok := h.projectInTeam(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	project, err := h.statuses.UpdateStatus(
		c.Request.Context(),
		projectID,
		middleware.CurrentUserID(c),
		models.ProjectStatus(req.Status),
		req.Comment,
	)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Project status updated", project)
}

func (h *ProjectHandler) GetStatusHistory(c *gin.Context) {
	projectID, ok := h.projectInTeam(c)
	if !ok {
		return
	}

	history, err := h.statuses.GetHistory(c.Request.Context(), projectID)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Status history fetched", history)
}

// projectInTeam разбирает :projectId и проверяет команду; при ошибке ответ уже передан в ErrorHandler
func (h *ProjectHandler) projectInTeam(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuidParam(c, "projectId")
	if err != nil {
		fail(c, err)
		return uuid.Nil, false
	}

	if _, err := h.projects.InTeam(c.Request.Context(), projectID, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return uuid.Nil, false
	}
	return projectID, true
}
