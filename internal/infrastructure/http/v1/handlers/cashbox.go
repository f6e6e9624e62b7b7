package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// CashboxHandler serves the central cash register.
type CashboxHandler struct {
	*BaseHandler
	service *cashbox.Service
}

// NewCashboxHandler creates a cashbox handler.
func NewCashboxHandler(base *BaseHandler, service *cashbox.Service) *CashboxHandler {
	return &CashboxHandler{BaseHandler: base, service: service}
}

// Balance handles GET /cashbox.
func (h *CashboxHandler) Balance(c *gin.Context) {
	box, err := h.service.Balance(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, box)
}

// Deposit handles POST /cashbox/deposit.
func (h *CashboxHandler) Deposit(c *gin.Context) {
	var req dto.CashOperationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		h.Error(c, err)
		return
	}

	txn, err := h.service.Deposit(c.Request.Context(), currency, req.Amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// Withdraw handles POST /cashbox/withdraw.
func (h *CashboxHandler) Withdraw(c *gin.Context) {
	var req dto.CashOperationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		h.Error(c, err)
		return
	}

	txn, err := h.service.Withdraw(c.Request.Context(), currency, req.Amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// Transactions handles GET /cashbox/transactions.
func (h *CashboxHandler) Transactions(c *gin.Context) {
	filter := cashbox.TransactionFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if txType := c.Query("type"); txType != "" {
		filter.Types = []cashbox.TransactionType{cashbox.TransactionType(txType)}
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

	txns, err := h.service.Transactions(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      txns,
		TotalCount: int64(len(txns)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}
