package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ai-olympiad/qcm-service/internal/services"
)

type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
	exportService    services.ExportService
}

func NewDashboardHandler(dashboardService services.DashboardService, exportService services.ExportService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// GetAdminStats returns the admin dashboard aggregates.
func (h *DashboardHandler) GetAdminStats(c *gin.Context) {
	stats, err := h.dashboardService.GetAdminStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportResults streams the xlsx export of completed attempts, optionally
// filtered by session_id.
func (h *DashboardHandler) ExportResults(c *gin.Context) {
	var sessionID *string
	if v := c.Query("session_id"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid session_id parameter",
				Details: "must be a valid UUID",
			})
			return
		}
		sessionID = &v
	}

	h.LogRequest(c, "Exporting results", "session_id", sessionID)

	content, filename, err := h.exportService.ExportResults(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
