package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/finance"
	"mdcars/internal/infrastructure/http/v1/dto"
)

// FinanceHandler serves expenses, revenues, customer payments, partner
// transactions and supplier payables.
type FinanceHandler struct {
	*BaseHandler
	service *finance.Service
}

// NewFinanceHandler creates a finance handler.
func NewFinanceHandler(base *BaseHandler, service *finance.Service) *FinanceHandler {
	return &FinanceHandler{BaseHandler: base, service: service}
}

// --- Expenses ---

// CreateExpense handles POST /finance/expenses.
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var draft finance.ExpenseDraft
	if !h.BindJSON(c, &draft) {
		return
	}

	expense, err := h.service.CreateExpense(c.Request.Context(), draft)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// DeleteExpense handles DELETE /finance/expenses/:id.
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	expenseID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.DeleteExpense(c.Request.Context(), expenseID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListExpenses handles GET /finance/expenses.
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	filter, ok := h.recordFilter(c)
	if !ok {
		return
	}

	expenses, err := h.service.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.list(c, expenses, len(expenses), filter)
}

// --- Revenues ---

// CreateRevenue handles POST /finance/revenues.
func (h *FinanceHandler) CreateRevenue(c *gin.Context) {
	var draft finance.RevenueDraft
	if !h.BindJSON(c, &draft) {
		return
	}

	revenue, err := h.service.CreateRevenue(c.Request.Context(), draft)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, revenue)
}

// DeleteRevenue handles DELETE /finance/revenues/:id.
func (h *FinanceHandler) DeleteRevenue(c *gin.Context) {
	revenueID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.DeleteRevenue(c.Request.Context(), revenueID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRevenues handles GET /finance/revenues.
func (h *FinanceHandler) ListRevenues(c *gin.Context) {
	filter, ok := h.recordFilter(c)
	if !ok {
		return
	}

	revenues, err := h.service.ListRevenues(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.list(c, revenues, len(revenues), filter)
}

// --- Customer payments ---

// RecordCustomerPayment handles POST /customers/:id/payments.
func (h *FinanceHandler) RecordCustomerPayment(c *gin.Context) {
	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.CustomerPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		h.Error(c, err)
		return
	}

	payment, err := h.service.RecordCustomerPayment(c.Request.Context(), customerID, req.Amount, currency, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// ListCustomerPayments handles GET /finance/payments.
func (h *FinanceHandler) ListCustomerPayments(c *gin.Context) {
	filter, ok := h.recordFilter(c)
	if !ok {
		return
	}

	var customerID *id.ID
	if raw := c.Query("customerId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		customerID = &parsed
	}

	payments, err := h.service.ListCustomerPayments(c.Request.Context(), customerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.list(c, payments, len(payments), filter)
}

// --- Partner transactions ---

// RecordPartnerTransaction handles POST /partners/:id/transactions.
func (h *FinanceHandler) RecordPartnerTransaction(c *gin.Context) {
	partnerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.PartnerTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		h.Error(c, err)
		return
	}

	txn, err := h.service.RecordPartnerTransaction(c.Request.Context(), partnerID,
		finance.PartnerTransactionType(req.Type), req.Amount, currency, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}

// ListPartnerTransactions handles GET /finance/partner-transactions.
func (h *FinanceHandler) ListPartnerTransactions(c *gin.Context) {
	filter, ok := h.recordFilter(c)
	if !ok {
		return
	}

	var partnerID *id.ID
	if raw := c.Query("partnerId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid partnerId format"))
			return
		}
		partnerID = &parsed
	}

	txns, err := h.service.ListPartnerTransactions(c.Request.Context(), partnerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.list(c, txns, len(txns), filter)
}

// --- Supplier payables ---

// ListPayables handles GET /finance/payables.
func (h *FinanceHandler) ListPayables(c *gin.Context) {
	filter := finance.PayableFilter{
		SupplierName: c.Query("supplierName"),
		UnpaidOnly:   c.Query("unpaidOnly") == "true",
		Limit:        h.ParseIntQuery(c, "limit", 50),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}

	payables, err := h.service.ListPayables(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      payables,
		TotalCount: int64(len(payables)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// PayPayable handles POST /finance/payables/:id/pay.
func (h *FinanceHandler) PayPayable(c *gin.Context) {
	payableID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	paid, err := h.service.PayPayable(c.Request.Context(), payableID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, paid)
}

func (h *FinanceHandler) recordFilter(c *gin.Context) (finance.RecordFilter, bool) {
	filter := finance.RecordFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	var err error
	if filter.DateFrom, err = parseDateQuery(c, "dateFrom"); err != nil {
		h.Error(c, err)
		return filter, false
	}
	if filter.DateTo, err = parseDateQuery(c, "dateTo"); err != nil {
		h.Error(c, err)
		return filter, false
	}

	return filter, true
}

func (h *FinanceHandler) list(c *gin.Context, items any, count int, filter finance.RecordFilter) {
	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: int64(count),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}
