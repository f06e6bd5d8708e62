package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/teamdesk/internal/apperror"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/services"
)

type DepartmentHandler struct {
	departments *services.DepartmentService
}

func NewDepartmentHandler(departments *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

func (h *DepartmentHandler) GetDepartments(c *gin.Context) {
	departments, err := h.departments.List(c.Request.Context(), middleware.CurrentTeamID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Departments fetched", departments)
}

func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id, err := uuidParam(c, "departmentId")
	if err != nil {
		fail(c, err)
		return
	}

	department, err := h.departments.Get(c.Request.Context(), id, middleware.CurrentTeamID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Department fetched", department)
}

func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req dto.DepartmentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	department, err := h.departments.Create(c.Request.Context(), middleware.CurrentTeamID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Department created", department)
}

// CreateTeamDepartment - вариант CreateDepartment с явным teamId в пути
func (h *DepartmentHandler) CreateTeamDepartment(c *gin.Context) {
	teamID, err := uuidParam(c, "teamId")
	if err != nil {
		fail(c, err)
		return
	}
	if teamID != middleware.CurrentTeamID(c) {
		fail(c, apperror.Forbidden("You don't have access to this team"))
		return
	}

	h.CreateDepartment(c)
}

func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, err := uuidParam(c, "departmentId")
	if err != nil {
		fail(c, err)
		return
	}

	var req dto.DepartmentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	department, err := h.departments.Rename(c.Request.Context(), id, middleware.CurrentTeamID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Department updated", department)
}

func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, err := uuidParam(c, "departmentId")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.departments.Delete(c.Request.Context(), id, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Department deleted", nil)
}
