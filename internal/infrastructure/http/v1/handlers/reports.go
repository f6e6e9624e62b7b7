package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/apperror"
	"mdcars/internal/domain/reports"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves aggregated read-only reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Dashboard handles GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// BestSellers handles GET /reports/best-sellers.
func (h *ReportsHandler) BestSellers(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 10)

	sellers, err := h.service.BestSellers(c.Request.Context(), from, to, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      sellers,
		TotalCount: int64(len(sellers)),
		Limit:      limit,
	})
}

// DailySales handles GET /reports/daily-sales.
func (h *ReportsHandler) DailySales(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	points, err := h.service.DailySales(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      points,
		TotalCount: int64(len(points)),
	})
}

// MonthlySales handles GET /reports/monthly-sales.
func (h *ReportsHandler) MonthlySales(c *gin.Context) {
	year := h.ParseIntQuery(c, "year", time.Now().UTC().Year())

	points, err := h.service.MonthlySales(c.Request.Context(), year)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      points,
		TotalCount: int64(len(points)),
	})
}

// dateRange parses the from/to query pair; defaults to the last 30 days.
func (h *ReportsHandler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	parsedFrom, err := parseDateQuery(c, "from")
	if err != nil {
		h.Error(c, err)
		return from, to, false
	}
	if parsedFrom != nil {
		from = *parsedFrom
	}

	parsedTo, err := parseDateQuery(c, "to")
	if err != nil {
		h.Error(c, err)
		return from, to, false
	}
	if parsedTo != nil {
		to = *parsedTo
	}

	if to.Before(from) {
		h.Error(c, apperror.NewValidation("to must not precede from").
			WithDetail("from", from.Format(time.RFC3339)).
			WithDetail("to", to.Format(time.RFC3339)))
		return from, to, false
	}

	return from, to, true
}
