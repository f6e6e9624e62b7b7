package cashbox

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
)

// fakeRepo is an in-memory cash ledger for unit tests. The mutex makes
// AddBalance atomic the way the SQL increment is.
type fakeRepo struct {
	mu  sync.Mutex
	box *Cashbox
	log []*CashboxTransaction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		box: &Cashbox{
			BaseEntity: entity.NewBaseEntity(),
			BalanceUSD: types.Zero(),
			BalanceLYD: types.Zero(),
		},
	}
}

func (r *fakeRepo) Get(ctx context.Context) (*Cashbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.box
	return &cp, nil
}

func (r *fakeRepo) AddBalance(ctx context.Context, currency types.Currency, delta types.Money) (types.Money, types.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if currency == types.CurrencyUSD {
		next := r.box.BalanceUSD.Add(delta)
		if next.IsNegative() {
			return types.Zero(), types.Zero(), apperror.NewBusinessRule(
				apperror.CodeInsufficientBalance, "insufficient cashbox balance")
		}
		r.box.BalanceUSD = next
	} else {
		next := r.box.BalanceLYD.Add(delta)
		if next.IsNegative() {
			return types.Zero(), types.Zero(), apperror.NewBusinessRule(
				apperror.CodeInsufficientBalance, "insufficient cashbox balance")
		}
		r.box.BalanceLYD = next
	}

	return r.box.BalanceUSD, r.box.BalanceLYD, nil
}

func (r *fakeRepo) AppendTransaction(ctx context.Context, t *CashboxTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = append(r.log, t)
	return nil
}

func (r *fakeRepo) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*CashboxTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*CashboxTransaction, len(r.log))
	copy(out, r.log)
	return out, nil
}

func TestService_CreditThenDebit_RoundTripsExactly(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &tx.MockManager{})
	ctx := context.Background()

	// Amounts chosen to break float arithmetic if it ever sneaks in.
	_, err := svc.Credit(ctx, types.CurrencyLYD, types.MustMoney("0.10"), Entry{Type: TxSale})
	require.NoError(t, err)
	_, err = svc.Credit(ctx, types.CurrencyLYD, types.MustMoney("0.20"), Entry{Type: TxSale})
	require.NoError(t, err)
	_, err = svc.Debit(ctx, types.CurrencyLYD, types.MustMoney("0.30"), Entry{Type: TxExpense})
	require.NoError(t, err)

	box, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.00", box.BalanceLYD.StringFixed(2))
	assert.Equal(t, "0.00", box.BalanceUSD.StringFixed(2))
}

func TestService_Debit_InsufficientBalance(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &tx.MockManager{})
	ctx := context.Background()

	_, err := svc.Credit(ctx, types.CurrencyUSD, types.MustMoney("50.00"), Entry{Type: TxDeposit})
	require.NoError(t, err)

	_, err = svc.Debit(ctx, types.CurrencyUSD, types.MustMoney("50.01"), Entry{Type: TxExpense})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientBalance))

	// Failed debits append nothing.
	log, err := svc.Transactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestService_CurrenciesAreIndependent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &tx.MockManager{})
	ctx := context.Background()

	_, err := svc.Credit(ctx, types.CurrencyUSD, types.MustMoney("100.00"), Entry{Type: TxDeposit})
	require.NoError(t, err)

	// LYD balance is zero, so a USD-funded LYD debit must fail.
	_, err = svc.Debit(ctx, types.CurrencyLYD, types.MustMoney("1.00"), Entry{Type: TxExpense})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientBalance))

	box, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "100.00", box.BalanceUSD.StringFixed(2))
	assert.Equal(t, "0.00", box.BalanceLYD.StringFixed(2))
}

func TestService_LedgerEntriesCarrySignedAmountsAndSnapshots(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &tx.MockManager{})
	ctx := context.Background()

	credit, err := svc.Credit(ctx, types.CurrencyLYD, types.MustMoney("120.00"), Entry{Type: TxSale, Description: "Sale MD-20250115-0001"})
	require.NoError(t, err)
	assert.Equal(t, "120.00", credit.AmountLYD.StringFixed(2))
	assert.Equal(t, "120.00", credit.BalanceLYDAfter.StringFixed(2))
	assert.True(t, credit.AmountUSD.IsZero())

	debit, err := svc.Debit(ctx, types.CurrencyLYD, types.MustMoney("20.00"), Entry{Type: TxRefund})
	require.NoError(t, err)
	assert.Equal(t, "-20.00", debit.AmountLYD.StringFixed(2))
	assert.Equal(t, "100.00", debit.BalanceLYDAfter.StringFixed(2))
}

func TestService_RejectsInvalidInput(t *testing.T) {
	svc := NewService(newFakeRepo(), &tx.MockManager{})
	ctx := context.Background()

	_, err := svc.Credit(ctx, types.Currency("EUR"), types.MustMoney("1.00"), Entry{Type: TxSale})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = svc.Credit(ctx, types.CurrencyLYD, types.Zero(), Entry{Type: TxSale})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = svc.Credit(ctx, types.CurrencyLYD, types.MustMoney("1.00"), Entry{Type: TransactionType("bogus")})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_ConcurrentCreditsAllLand(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &tx.MockManager{})
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Credit(ctx, types.CurrencyLYD, types.MustMoney("1.00"), Entry{Type: TxSale})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	box, err := svc.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20.00", box.BalanceLYD.StringFixed(2))
}
