package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/stock"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// StockHandler serves the stock movement register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Record handles POST /stock/movements.
func (h *StockHandler) Record(c *gin.Context) {
	var req dto.StockMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	movement := stock.MovementRequest{
		ProductID:     productID,
		Type:          stock.MovementType(req.Type),
		Quantity:      req.Quantity,
		CostPerUnit:   req.CostPerUnit,
		Reason:        req.Reason,
		PurchaseType:  stock.PurchaseType(req.PurchaseType),
		Currency:      types.Currency(req.Currency),
		SupplierName:  req.SupplierName,
		InvoiceNumber: req.InvoiceNumber,
	}

	recorded, err := h.service.Record(c.Request.Context(), movement)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, recorded)
}

// Get handles GET /stock/movements/:id.
func (h *StockHandler) Get(c *gin.Context) {
	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	movement, err := h.service.Get(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, movement)
}

// History handles GET /stock/movements.
func (h *StockHandler) History(c *gin.Context) {
	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if productID := c.Query("productId"); productID != "" {
		parsed, err := id.Parse(productID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductID = &parsed
	}

	if movementType := c.Query("type"); movementType != "" {
		filter.Types = []stock.MovementType{stock.MovementType(movementType)}
	}

	var err error
	if filter.DateFrom, err = parseDateQuery(c, "dateFrom"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.DateTo, err = parseDateQuery(c, "dateTo"); err != nil {
		h.Error(c, err)
		return
	}

	movements, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      movements,
		TotalCount: int64(len(movements)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// ProductHistory handles GET /products/:id/movements.
func (h *StockHandler) ProductHistory(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	movements, err := h.service.ProductHistory(c.Request.Context(), productID, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      movements,
		TotalCount: int64(len(movements)),
		Limit:      limit,
		Offset:     offset,
	})
}
