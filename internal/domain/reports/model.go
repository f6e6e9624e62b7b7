// Package reports provides read-only aggregates over the ledgers.
package reports

import (
	"time"

	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
)

// DashboardStats is the front-page summary.
type DashboardStats struct {
	TodaySalesCount int64       `json:"todaySalesCount"`
	TodayRevenueLYD types.Money `json:"todayRevenueLyd"`
	TodayRevenueUSD types.Money `json:"todayRevenueUsd"`

	ProductCount  int64 `json:"productCount"`
	LowStockCount int64 `json:"lowStockCount"`
	CustomerCount int64 `json:"customerCount"`

	CashboxLYD types.Money `json:"cashboxLyd"`
	CashboxUSD types.Money `json:"cashboxUsd"`
}

// BestSeller is one row of the best-sellers ranking: sale items grouped by
// product, ordered by quantity sold descending.
type BestSeller struct {
	ProductID    id.ID       `db:"product_id" json:"productId"`
	ProductName  string      `db:"product_name" json:"productName"`
	ProductSKU   string      `db:"product_sku" json:"productSku"`
	QuantitySold int64       `db:"quantity_sold" json:"quantitySold"`
	Revenue      types.Money `db:"revenue" json:"revenue"`
}

// SalesPoint is one bucket of a sales/profit series.
type SalesPoint struct {
	Period     time.Time   `db:"period" json:"period"`
	SalesCount int64       `db:"sales_count" json:"salesCount"`
	Revenue    types.Money `db:"revenue" json:"revenue"`
	Profit     types.Money `db:"profit" json:"profit"`
}
