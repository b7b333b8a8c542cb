package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gestaopro/internal/domain/reports"
	"gestaopro/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
	now     func() time.Time
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard handles GET /dashboard?year=&month= (defaults to the current month).
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	var req dto.DashboardRequest
	if !h.BindQuery(c, &req) {
		return
	}
	now := h.now()
	if req.Year == 0 {
		req.Year = now.Year()
	}
	if req.Month == 0 {
		req.Month = int(now.Month())
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), req.Year, req.Month)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
