package dto

import (
	"mdcars/internal/core/types"
)

// --- Catalog requests ---

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Name              string      `json:"name" binding:"required"`
	Code              string      `json:"code"`
	CostPrice         types.Money `json:"costPrice"`
	SellingPrice      types.Money `json:"sellingPrice"`
	LowStockThreshold int64       `json:"lowStockThreshold"`
	CategoryID        *string     `json:"categoryId"`
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Name              *string      `json:"name"`
	CostPrice         *types.Money `json:"costPrice"`
	SellingPrice      *types.Money `json:"sellingPrice"`
	LowStockThreshold *int64       `json:"lowStockThreshold"`
	IsActive          *bool        `json:"isActive"`
	Version           int          `json:"version" binding:"required,min=1"`
}

// CreateCustomerRequest for creating customers.
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// UpdateCustomerRequest for updating customers.
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
	Version int     `json:"version" binding:"required,min=1"`
}

// CreatePartnerRequest for creating partners.
type CreatePartnerRequest struct {
	Name                string      `json:"name" binding:"required"`
	Phone               string      `json:"phone"`
	Email               string      `json:"email"`
	OwnershipPercentage types.Money `json:"ownershipPercentage"`
}

// UpdatePartnerRequest for updating partners.
type UpdatePartnerRequest struct {
	Name                *string      `json:"name"`
	Phone               *string      `json:"phone"`
	Email               *string      `json:"email"`
	OwnershipPercentage *types.Money `json:"ownershipPercentage"`
	IsActive            *bool        `json:"isActive"`
	Version             int          `json:"version" binding:"required,min=1"`
}

// --- Register requests ---

// StockMovementRequest for recording stock movements.
type StockMovementRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Quantity  int64  `json:"quantity"`

	CostPerUnit *types.Money `json:"costPerUnit"`
	Reason      string       `json:"reason"`

	PurchaseType  string `json:"purchaseType"`
	Currency      string `json:"currency"`
	SupplierName  string `json:"supplierName"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// CashOperationRequest for manual cashbox deposits and withdrawals.
type CashOperationRequest struct {
	Currency    string      `json:"currency" binding:"required"`
	Amount      types.Money `json:"amount"`
	Description string      `json:"description"`
}

// CreateTreasuryAccountRequest for creating safe/bank accounts.
type CreateTreasuryAccountRequest struct {
	Name            string  `json:"name" binding:"required"`
	Kind            string  `json:"kind" binding:"required"`
	LinkedAccountID *string `json:"linkedAccountId"`
}

// TreasuryOperationRequest for deposits and withdrawals on one account.
type TreasuryOperationRequest struct {
	Currency    string      `json:"currency" binding:"required"`
	Amount      types.Money `json:"amount"`
	Description string      `json:"description"`
}

// TreasuryTransferRequest for account-to-account transfers.
type TreasuryTransferRequest struct {
	ToAccountID string      `json:"toAccountId" binding:"required"`
	Currency    string      `json:"currency" binding:"required"`
	Amount      types.Money `json:"amount"`
	Description string      `json:"description"`
}

// --- Finance requests ---

// CustomerPaymentRequest for recording debt payments.
type CustomerPaymentRequest struct {
	Amount   types.Money `json:"amount"`
	Currency string      `json:"currency" binding:"required"`
	Notes    string      `json:"notes"`
}

// PartnerTransactionRequest for equity movements.
type PartnerTransactionRequest struct {
	Type     string      `json:"type" binding:"required"`
	Amount   types.Money `json:"amount"`
	Currency string      `json:"currency" binding:"required"`
	Notes    string      `json:"notes"`
}
