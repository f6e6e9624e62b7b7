package catalog_repo

import (
	"context"
	"fmt"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/catalogs/partner"
	"mdcars/internal/infrastructure/storage/postgres"
)

const partnerTable = "cat_partners"

// PartnerRepo implements partner.Repository.
type PartnerRepo struct {
	*BaseCatalogRepo[*partner.Partner]
}

// Compile-time check.
var _ partner.Repository = (*PartnerRepo)(nil)

// NewPartnerRepo creates a new partner repository.
func NewPartnerRepo(txManager *postgres.TxManager) *PartnerRepo {
	return &PartnerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*partner.Partner](
			txManager,
			partnerTable,
			postgres.ExtractDBColumns[partner.Partner](),
			[]string{"name", "code"},
			func() *partner.Partner { return &partner.Partner{} },
		),
	}
}

// counterColumns whitelists the running total columns AddCounter may touch.
var counterColumns = map[partner.CounterKind]string{
	partner.CounterInvested:          "total_invested",
	partner.CounterWithdrawn:         "total_withdrawn",
	partner.CounterProfitDistributed: "total_profit_distributed",
}

// AddCounter atomically adds amount to the named running total.
func (r *PartnerRepo) AddCounter(ctx context.Context, partnerID id.ID, counter partner.CounterKind, amount types.Money) error {
	col, ok := counterColumns[counter]
	if !ok {
		return apperror.NewValidation("unknown partner counter").
			WithDetail("counter", string(counter))
	}

	sql := fmt.Sprintf(`
		UPDATE cat_partners
		SET %s = %s + $1,
		    updated_at = now()
		WHERE id = $2
	`, col, col)

	result, err := r.Querier(ctx).Exec(ctx, sql, amount, partnerID)
	if err != nil {
		return fmt.Errorf("add partner counter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("partner", partnerID.String())
	}

	return nil
}
