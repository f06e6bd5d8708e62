package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/teamdesk/internal/handlers/dto"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterTeam создаёт команду вместе с её лидером
func (h *AuthHandler) RegisterTeam(c *gin.Context) {
	var req dto.RegisterTeamRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	result, err := h.auth.RegisterTeam(c.Request.Context(), services.RegisterTeamInput{
		TeamName:  req.TeamName,
		TeamEmail: req.TeamEmail,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Team registered", result)
}

// RegisterUser оставляет заявку на вступление в существующую команду
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	teamID, err := parseUUID(req.TeamID, "teamId")
	if err != nil {
		fail(c, err)
		return
	}
	departmentID, err := parseOptionalUUID(req.DepartmentID, "departmentId")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.auth.RegisterUser(c.Request.Context(), services.RegisterUserInput{
		TeamID:       teamID,
		DepartmentID: departmentID,
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Registration submitted, waiting for team leader approval", user)
}

// Login выдаёт JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Logged in", result)
}

// Logout ставит текущий токен в черный список
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Logged out", nil)
}
