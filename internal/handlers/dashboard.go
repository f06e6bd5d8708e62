package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/teamdesk/internal/middleware"
	"github.com/thereayou/teamdesk/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(),
		middleware.CurrentUserID(c), middleware.CurrentTeamID(c), middleware.CurrentRole(c))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Dashboard stats fetched", stats)
}
