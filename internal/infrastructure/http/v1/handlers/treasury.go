package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/treasury"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// TreasuryHandler serves safe and bank account sub-ledgers.
type TreasuryHandler struct {
	*BaseHandler
	service *treasury.Service
}

// NewTreasuryHandler creates a treasury handler.
func NewTreasuryHandler(base *BaseHandler, service *treasury.Service) *TreasuryHandler {
	return &TreasuryHandler{BaseHandler: base, service: service}
}

// CreateAccount handles POST /treasury/accounts.
func (h *TreasuryHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateTreasuryAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account := treasury.NewAccount(treasury.AccountKind(req.Kind), req.Name)
	if req.LinkedAccountID != nil {
		linkedID, err := id.Parse(*req.LinkedAccountID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid linkedAccountId format"))
			return
		}
		account.LinkedAccountID = &linkedID
	}

	if err := h.service.CreateAccount(c.Request.Context(), account); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// GetAccount handles GET /treasury/accounts/:id.
func (h *TreasuryHandler) GetAccount(c *gin.Context) {
	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// ListAccounts handles GET /treasury/accounts.
func (h *TreasuryHandler) ListAccounts(c *gin.Context) {
	activeOnly := c.Query("activeOnly") == "true"

	accounts, err := h.service.ListAccounts(c.Request.Context(), activeOnly)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      accounts,
		TotalCount: int64(len(accounts)),
		Limit:      len(accounts),
	})
}

// Deposit handles POST /treasury/accounts/:id/deposit.
func (h *TreasuryHandler) Deposit(c *gin.Context) {
	h.operation(c, h.service.Deposit)
}

// Withdraw handles POST /treasury/accounts/:id/withdraw.
func (h *TreasuryHandler) Withdraw(c *gin.Context) {
	h.operation(c, h.service.Withdraw)
}

// Transfer handles POST /treasury/accounts/:id/transfer.
func (h *TreasuryHandler) Transfer(c *gin.Context) {
	fromID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TreasuryTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	toID, err := id.Parse(req.ToAccountID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toAccountId format"))
		return
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Transfer(c.Request.Context(), fromID, toID, currency, req.Amount, req.Description); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "transfer completed")
}

// MoveFromCashbox handles POST /treasury/accounts/:id/move-from-cashbox.
func (h *TreasuryHandler) MoveFromCashbox(c *gin.Context) {
	h.cashboxMove(c, h.service.MoveFromCashbox, "moved from cashbox")
}

// MoveToCashbox handles POST /treasury/accounts/:id/move-to-cashbox.
func (h *TreasuryHandler) MoveToCashbox(c *gin.Context) {
	h.cashboxMove(c, h.service.MoveToCashbox, "moved to cashbox")
}

// Transactions handles GET /treasury/accounts/:id/transactions.
func (h *TreasuryHandler) Transactions(c *gin.Context) {
	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter := treasury.EntryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if entryType := c.Query("type"); entryType != "" {
		filter.Types = []treasury.EntryType{treasury.EntryType(entryType)}
	}

	if filter.DateFrom, err = parseDateQuery(c, "dateFrom"); err != nil {
		h.Error(c, err)
		return
	}
	if filter.DateTo, err = parseDateQuery(c, "dateTo"); err != nil {
		h.Error(c, err)
		return
	}

	txns, err := h.service.Transactions(c.Request.Context(), accountID, filter)
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

func (h *TreasuryHandler) operation(c *gin.Context, op func(ctx context.Context, accountID id.ID, currency types.Currency, amount types.Money, description string) (*treasury.TreasuryTransaction, error)) {
	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TreasuryOperationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		h.Error(c, err)
		return
	}

	txn, err := op(c.Request.Context(), accountID, currency, req.Amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

func (h *TreasuryHandler) cashboxMove(c *gin.Context, op func(ctx context.Context, accountID id.ID, currency types.Currency, amount types.Money, description string) error, message string) {
	accountID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TreasuryOperationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := op(c.Request.Context(), accountID, currency, req.Amount, req.Description); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, message)
}
