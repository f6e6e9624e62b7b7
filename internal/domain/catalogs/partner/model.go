// Package partner provides the business partner catalog with equity counters.
package partner

import (
	"context"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/types"
)

// Partner represents an equity holder in the business. The three totals are
// running counters maintained by partner transactions.
type Partner struct {
	entity.Catalog

	Phone string `db:"phone" json:"phone,omitempty"`
	Email string `db:"email" json:"email,omitempty"`

	// OwnershipPercentage in [0, 100].
	OwnershipPercentage types.Money `db:"ownership_percentage" json:"ownershipPercentage"`

	TotalInvested          types.Money `db:"total_invested" json:"totalInvested"`
	TotalWithdrawn         types.Money `db:"total_withdrawn" json:"totalWithdrawn"`
	TotalProfitDistributed types.Money `db:"total_profit_distributed" json:"totalProfitDistributed"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewPartner creates an active partner with zeroed counters.
func NewPartner(name string, ownershipPercentage types.Money) *Partner {
	return &Partner{
		Catalog:                entity.NewCatalog("", name),
		OwnershipPercentage:    ownershipPercentage,
		TotalInvested:          types.Zero(),
		TotalWithdrawn:         types.Zero(),
		TotalProfitDistributed: types.Zero(),
		IsActive:               true,
	}
}

// Validate implements entity.Validatable.
func (p *Partner) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.OwnershipPercentage.IsNegative() || p.OwnershipPercentage.GreaterThan(types.MustMoney("100")) {
		return apperror.NewValidation("ownership percentage must be between 0 and 100").
			WithDetail("field", "ownershipPercentage")
	}

	return nil
}

// NetPosition is invested minus withdrawn, before profit distributions.
func (p *Partner) NetPosition() types.Money {
	return p.TotalInvested.Sub(p.TotalWithdrawn)
}
