package customer

import (
	"context"
	"time"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/numerator"
	"mdcars/internal/core/tx"
	"mdcars/internal/domain"
)

// Service provides customer business logic.
type Service struct {
	*domain.CatalogService[*Customer]

	repo      Repository
	numerator numerator.Generator
}

// NewService creates a customer service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "customer",
		}),
		repo:      repo,
		numerator: gen,
	}

	s.Hooks().OnBeforeCreate(s.assignCode)
	s.Hooks().OnBeforeCreate(s.checkPhoneUnique)
	s.Hooks().OnBeforeDelete(s.checkNoDebt)

	return s
}

func (s *Service) assignCode(ctx context.Context, c *Customer) error {
	if c.Code != "" {
		return nil
	}

	code, err := s.numerator.NextNumber(ctx, numerator.CustomerConfig(), time.Now().UTC())
	if err != nil {
		return apperror.NewInternal(err).WithDetail("operation", "assign customer code")
	}
	c.Code = code
	return nil
}

func (s *Service) checkPhoneUnique(ctx context.Context, c *Customer) error {
	if c.Phone == "" {
		return nil
	}

	existing, err := s.repo.FindByPhone(ctx, c.Phone)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("customer", "phone", c.Phone)
	}
	return nil
}

// checkNoDebt blocks deleting a customer with outstanding debt. The debt
// record would otherwise become unreachable.
func (s *Service) checkNoDebt(ctx context.Context, c *Customer) error {
	if c.HasDebt() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"customer has outstanding debt and can not be deleted").
			WithDetail("customer_id", c.ID.String()).
			WithDetail("balance_owed", c.BalanceOwed.StringFixed(2))
	}
	return nil
}

// FindByPhone looks up a customer by phone number.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	if phone == "" {
		return nil, apperror.NewValidation("phone is required").
			WithDetail("field", "phone")
	}
	return s.repo.FindByPhone(ctx, phone)
}

// ListDebtors returns customers with outstanding credit debt.
func (s *Service) ListDebtors(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListDebtors(ctx)
}
