package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/id"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/registers/cashbox"
)

// fakeRepo keeps product stock counts and the movement log in memory. The
// mutex gives ApplyDelta the same atomicity as the guarded SQL update.
type fakeRepo struct {
	mu        sync.Mutex
	stock     map[id.ID]int64
	movements []*StockMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stock: make(map[id.ID]int64)}
}

func (r *fakeRepo) Append(ctx context.Context, m *StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, movementID id.ID) (*StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.ID == movementID {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("stock movement", movementID.String())
}

func (r *fakeRepo) List(ctx context.Context, filter MovementFilter) ([]*StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeRepo) ApplyDelta(ctx context.Context, productID id.ID, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.stock[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	next := current + delta
	if next < 0 {
		return 0, apperror.NewInsufficientStock(productID.String(), -delta, current)
	}
	r.stock[productID] = next
	return next, nil
}

func (r *fakeRepo) SetStock(ctx context.Context, productID id.ID, quantity int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.stock[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	r.stock[productID] = quantity
	return current, nil
}

// fakePayables collects supplier debts created by credit purchases.
type fakePayables struct {
	mu      sync.Mutex
	created []PurchasePayable
}

func (f *fakePayables) CreateFromPurchase(ctx context.Context, p PurchasePayable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return nil
}

type fixture struct {
	repo     *fakeRepo
	cashRepo *fakeCashRepo
	payables *fakePayables
	svc      *Service
}

func newFixture() *fixture {
	repo := newFakeRepo()
	cashRepo := newFakeCashRepo()
	payables := &fakePayables{}
	cash := cashbox.NewService(cashRepo, &tx.MockManager{})
	return &fixture{
		repo:     repo,
		cashRepo: cashRepo,
		payables: payables,
		svc:      NewService(repo, cash, payables, &tx.MockManager{}),
	}
}

func (f *fixture) seedProduct(initialStock int64) id.ID {
	productID := id.New()
	f.repo.stock[productID] = initialStock
	return productID
}

func TestService_Record_OutDecrementsAndSnapshots(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(10)

	m, err := f.svc.Record(context.Background(), MovementRequest{
		ProductID: productID,
		Type:      MovementOut,
		Quantity:  3,
		Reason:    "Sale",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), m.PreviousStock)
	assert.Equal(t, int64(7), m.NewStock)
	assert.Equal(t, int64(7), f.repo.stock[productID])
}

func TestService_Record_InsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(2)

	_, err := f.svc.Record(context.Background(), MovementRequest{
		ProductID: productID,
		Type:      MovementOut,
		Quantity:  5,
		Reason:    "Sale",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(5), appErr.Details["requested"])
	assert.Equal(t, int64(2), appErr.Details["available"])

	assert.Equal(t, int64(2), f.repo.stock[productID])
	assert.Empty(t, f.repo.movements)
}

func TestService_Record_AdjustmentSetsAbsolute(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(17)

	m, err := f.svc.Record(context.Background(), MovementRequest{
		ProductID: productID,
		Type:      MovementAdjustment,
		Quantity:  20,
		Reason:    "Stocktake",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(17), m.PreviousStock)
	assert.Equal(t, int64(20), m.NewStock)
	assert.Equal(t, int64(20), f.repo.stock[productID])
}

func TestService_Record_CreditPurchaseOpensPayable(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(0)
	cost := types.MustMoney("25.50")

	m, err := f.svc.Record(context.Background(), MovementRequest{
		ProductID:     productID,
		Type:          MovementIn,
		Quantity:      4,
		CostPerUnit:   &cost,
		PurchaseType:  PurchaseCredit,
		Currency:      types.CurrencyUSD,
		SupplierName:  "Tripoli Auto Parts",
		InvoiceNumber: "INV-7781",
		Reason:        "Restock",
	})
	require.NoError(t, err)

	require.Len(t, f.payables.created, 1)
	p := f.payables.created[0]
	assert.Equal(t, "Tripoli Auto Parts", p.SupplierName)
	assert.Equal(t, "102.00", p.Amount.StringFixed(2))
	assert.Equal(t, types.CurrencyUSD, p.Currency)
	assert.Equal(t, m.ID, p.StockMovementID)

	// Credit purchases touch no cash.
	assert.Empty(t, f.cashRepo.log)
}

func TestService_Record_CashPurchaseDebitsCashbox(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(0)
	f.cashRepo.seed(types.CurrencyLYD, types.MustMoney("500.00"))
	cost := types.MustMoney("30.00")

	_, err := f.svc.Record(context.Background(), MovementRequest{
		ProductID:    productID,
		Type:         MovementIn,
		Quantity:     10,
		CostPerUnit:  &cost,
		PurchaseType: PurchaseCash,
		Currency:     types.CurrencyLYD,
		SupplierName: "Benghazi Supply",
		Reason:       "Restock",
	})
	require.NoError(t, err)

	require.Len(t, f.cashRepo.log, 1)
	entry := f.cashRepo.log[0]
	assert.Equal(t, cashbox.TxPurchase, entry.Type)
	assert.Equal(t, "-300.00", entry.AmountLYD.StringFixed(2))
	assert.Equal(t, "200.00", f.cashRepo.box.BalanceLYD.StringFixed(2))

	assert.Empty(t, f.payables.created)
}

func TestService_Record_RejectsCreditPurchaseWithoutSupplier(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(0)
	cost := types.MustMoney("10.00")

	_, err := f.svc.Record(context.Background(), MovementRequest{
		ProductID:    productID,
		Type:         MovementIn,
		Quantity:     1,
		CostPerUnit:  &cost,
		PurchaseType: PurchaseCredit,
		Currency:     types.CurrencyLYD,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_Record_ConcurrentOutsNeverOversell(t *testing.T) {
	f := newFixture()
	productID := f.seedProduct(10)

	const workers = 20
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.Record(context.Background(), MovementRequest{
				ProductID: productID,
				Type:      MovementOut,
				Quantity:  1,
				Reason:    "Sale",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
			failed++
		}
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, failed)
	assert.Equal(t, int64(0), f.repo.stock[productID])
	assert.Len(t, f.repo.movements, 10)
}
