package handler

import (
	"time"

	"member-finance/internal/adapter/http/dto"
	"member-finance/internal/core/ports"
	"member-finance/pkg/response"

	"github.com/gin-gonic/gin"
)

// currentYear is the default dashboard year.
var currentYear = func() int { return time.Now().Year() }

// DashboardHandler handles the reconciliation dashboard endpoint.
type DashboardHandler struct {
	dashboardSvc ports.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardSvc ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Get handles GET /api/v1/dashboard?year=.
func (h *DashboardHandler) Get(c *gin.Context) {
	var q dto.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindingError(err))
		return
	}

	view, err := h.dashboardSvc.Load(c.Request.Context(), q.YearOr(currentYear()))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewDashboardResponse(view))
}
