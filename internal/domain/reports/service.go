package reports

import (
	"context"
	"time"

	"mdcars/internal/core/apperror"
	"mdcars/internal/domain/registers/cashbox"
)

const (
	defaultBestSellersLimit = 10
	maxWindowDays           = 366
)

// Service assembles report aggregates.
type Service struct {
	repo Repository
	cash *cashbox.Service
}

// NewService creates a reports service.
func NewService(repo Repository, cash *cashbox.Service) *Service {
	return &Service{repo: repo, cash: cash}
}

// Dashboard returns the front-page summary for the current business day.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	count, revLYD, revUSD, err := s.repo.SalesSummary(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	products, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}

	box, err := s.cash.Balance(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TodaySalesCount: count,
		TodayRevenueLYD: revLYD,
		TodayRevenueUSD: revUSD,
		ProductCount:    products,
		LowStockCount:   lowStock,
		CustomerCount:   customers,
		CashboxLYD:      box.BalanceLYD,
		CashboxUSD:      box.BalanceUSD,
	}, nil
}

// BestSellers returns the product ranking for a bounded window.
func (s *Service) BestSellers(ctx context.Context, from, to time.Time, limit int) ([]*BestSeller, error) {
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultBestSellersLimit
	}
	return s.repo.BestSellers(ctx, from, to, limit)
}

// DailySales returns the per-day sales/profit series for a bounded window.
func (s *Service) DailySales(ctx context.Context, from, to time.Time) ([]*SalesPoint, error) {
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}
	return s.repo.DailySales(ctx, from, to)
}

// MonthlySales returns the per-month series for one year.
func (s *Service) MonthlySales(ctx context.Context, year int) ([]*SalesPoint, error) {
	if year < 2000 || year > 2200 {
		return nil, apperror.NewValidation("year out of range").
			WithDetail("field", "year").
			WithDetail("value", year)
	}
	return s.repo.MonthlySales(ctx, year)
}

func validateWindow(from, to time.Time) error {
	if !to.After(from) {
		return apperror.NewValidation("date range is empty").
			WithDetail("field", "dateRange")
	}
	if to.Sub(from) > maxWindowDays*24*time.Hour {
		return apperror.NewValidation("date range exceeds one year").
			WithDetail("field", "dateRange")
	}
	return nil
}
