package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/infrastructure/http/v1/dto"
	"mdcars/internal/infrastructure/storage/postgres"
)

// AuditHandler exposes the change history of audited entities.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audit: audit}
}

// EntityHistory handles GET /audit/:entityType/:id.
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	entityType := c.Param("entityType")
	if entityType == "" {
		h.Error(c, apperror.NewValidation("entity type is required"))
		return
	}

	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)

	rows, err := h.audit.EntityHistory(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      rows,
		TotalCount: int64(len(rows)),
		Limit:      limit,
	})
}
