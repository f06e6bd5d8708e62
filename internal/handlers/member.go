package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/models"
	"github.com/thereayou/teamdesk/internal/services"
)

type MemberHandler struct {
	members *services.MemberService
}

func NewMemberHandler(members *services.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// GetTeamMembers возвращает подтверждённых участников команды текущего пользователя
func (h *MemberHandler) GetTeamMembers(c *gin.Context) {
	users, err := h.members.TeamMembers(c.Request.Context(), middleware.CurrentTeamID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Team members fetched", users)
}

func (h *MemberHandler) GetPendingUsers(c *gin.Context) {
	users, err := h.members.Pending(c.Request.Context(), middleware.CurrentTeamID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Pending users fetched", users)
}

func (h *MemberHandler) ApproveUser(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.members.Approve(c.Request.Context(), id, middleware.CurrentTeamID(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User approved", user)
}

func (h *MemberHandler) RejectUser(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.members.Reject(c.Request.Context(), id, middleware.CurrentTeamID(c)); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User rejected", nil)
}

func (h *MemberHandler) UpdateRole(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var req dto.UpdateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	departmentID, err := parseOptionalUUID(req.DepartmentID, "departmentId")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.members.UpdateRole(c.Request.Context(),
		middleware.CurrentUserID(c), id, middleware.CurrentTeamID(c),
		models.Role(req.Role), departmentID)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User role updated", user)
}

// CreateMember добавляет участника без заявки
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	departmentID, err := parseOptionalUUID(req.DepartmentID, "departmentId")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.members.Create(c.Request.Context(), services.CreateMemberInput{
		TeamID:       middleware.CurrentTeamID(c),
		DepartmentID: departmentID,
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         models.Role(req.Role),
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "User created", user)
}
