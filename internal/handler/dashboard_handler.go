package handler

import (
	"net/http"

	"github.com/edudash/edudash-backend/internal/response"
	"github.com/edudash/edudash-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the aggregate counters for the landing screen.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	notifService     *service.NotificationService
	quotaService     *service.QuotaService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	dashboardService *service.DashboardService,
	notifService *service.NotificationService,
	quotaService *service.QuotaService,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		notifService:     notifService,
		quotaService:     quotaService,
	}
}

// Stats godoc
// GET /api/v1/staff/dashboard
// Returns pending registrations, active campaigns, unread messages and
// notifications, homework due and today's AI quota in one payload.
func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	preschoolID, ok := staffPreschoolID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	stats, err := h.dashboardService.Stats(ctx, userID, preschoolID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	unreadNotifs, err := h.notifService.CountUnread(ctx, userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	tierCode, err := h.quotaService.TierCodeFor(ctx, userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	quota, err := h.quotaService.Status(ctx, userID, tierCode)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"stats":                stats,
		"unread_notifications": unreadNotifs,
		"quota":                quota,
	})
}
