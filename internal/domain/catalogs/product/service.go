package product

import (
	"context"
	"time"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/numerator"
	"mdcars/internal/core/tx"
	"mdcars/internal/domain"
)

// Service provides product business logic on top of the shared catalog flow.
type Service struct {
	*domain.CatalogService[*Product]

	repo      Repository
	numerator numerator.Generator
}

// NewService creates a product service. SKU assignment and code uniqueness
// are registered as catalog hooks.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "product",
		}),
		repo:      repo,
		numerator: gen,
	}

	s.Hooks().OnBeforeCreate(s.assignSKU)
	s.Hooks().OnBeforeCreate(s.checkCodeUnique)

	return s
}

// assignSKU issues a sequential SKU for products created without an explicit
// code. The counter never resets.
func (s *Service) assignSKU(ctx context.Context, p *Product) error {
	if p.Code != "" {
		return nil
	}

	sku, err := s.numerator.NextNumber(ctx, numerator.SKUConfig(), time.Now().UTC())
	if err != nil {
		return apperror.NewInternal(err).WithDetail("operation", "assign sku")
	}
	p.Code = sku
	return nil
}

func (s *Service) checkCodeUnique(ctx context.Context, p *Product) error {
	exists, err := s.repo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("product", "code", p.Code)
	}
	return nil
}

// ListLowStock returns active products at or below their stock threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]*Product, error) {
	return s.repo.ListLowStock(ctx)
}

// Deactivate marks a product inactive without deleting its history.
func (s *Service) Deactivate(ctx context.Context, p *Product) error {
	p.IsActive = false
	return s.Update(ctx, p)
}
