package partner

import (
	"context"
	"time"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/numerator"
	"mdcars/internal/core/tx"
	"mdcars/internal/domain"
)

// Service provides partner business logic.
type Service struct {
	*domain.CatalogService[*Partner]

	repo      Repository
	numerator numerator.Generator
}

// NewService creates a partner service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Partner]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "partner",
		}),
		repo:      repo,
		numerator: gen,
	}

	s.Hooks().OnBeforeCreate(s.assignCode)

	return s
}

func (s *Service) assignCode(ctx context.Context, p *Partner) error {
	if p.Code != "" {
		return nil
	}

	code, err := s.numerator.NextNumber(ctx, numerator.PartnerConfig(), time.Now().UTC())
	if err != nil {
		return apperror.NewInternal(err).WithDetail("operation", "assign partner code")
	}
	p.Code = code
	return nil
}
