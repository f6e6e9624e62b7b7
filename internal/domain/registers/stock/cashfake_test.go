package stock

import (
	"context"
	"sync"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/cashbox"
)

// fakeCashRepo is an in-memory cashbox.Repository for register tests.
type fakeCashRepo struct {
	mu  sync.Mutex
	box *cashbox.Cashbox
	log []*cashbox.CashboxTransaction
}

func newFakeCashRepo() *fakeCashRepo {
	return &fakeCashRepo{
		box: &cashbox.Cashbox{
			BaseEntity: entity.NewBaseEntity(),
			BalanceUSD: types.Zero(),
			BalanceLYD: types.Zero(),
		},
	}
}

func (r *fakeCashRepo) seed(currency types.Currency, amount types.Money) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if currency == types.CurrencyUSD {
		r.box.BalanceUSD = amount
	} else {
		r.box.BalanceLYD = amount
	}
}

func (r *fakeCashRepo) Get(ctx context.Context) (*cashbox.Cashbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.box
	return &cp, nil
}

func (r *fakeCashRepo) AddBalance(ctx context.Context, currency types.Currency, delta types.Money) (types.Money, types.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var next types.Money
	if currency == types.CurrencyUSD {
		next = r.box.BalanceUSD.Add(delta)
	} else {
		next = r.box.BalanceLYD.Add(delta)
	}
	if next.IsNegative() {
		return types.Zero(), types.Zero(), apperror.NewBusinessRule(
			apperror.CodeInsufficientBalance, "insufficient cashbox balance")
	}
	if currency == types.CurrencyUSD {
		r.box.BalanceUSD = next
	} else {
		r.box.BalanceLYD = next
	}
	return r.box.BalanceUSD, r.box.BalanceLYD, nil
}

func (r *fakeCashRepo) AppendTransaction(ctx context.Context, t *cashbox.CashboxTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, t)
	return nil
}

func (r *fakeCashRepo) ListTransactions(ctx context.Context, filter cashbox.TransactionFilter) ([]*cashbox.CashboxTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*cashbox.CashboxTransaction, len(r.log))
	copy(out, r.log)
	return out, nil
}

var _ cashbox.Repository = (*fakeCashRepo)(nil)
