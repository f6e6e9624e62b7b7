package sale

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdcars/internal/core/apperror"
	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/id"
	"mdcars/internal/core/numerator"
	"mdcars/internal/core/tx"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/audit"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/domain/catalogs/product"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/domain/registers/stock"
)

type fixture struct {
	saleRepo     *fakeSaleRepo
	productRepo  *fakeProductRepo
	customerRepo *fakeCustomerRepo
	stockRepo    *fakeStockRepo
	cashRepo     *fakeCashRepo
	svc          *Service
}

// newFixture wires the engine with rollback-capable fakes for
// single-goroutine tests.
func newFixture() *fixture {
	f := &fixture{
		saleRepo:     newFakeSaleRepo(),
		productRepo:  newFakeProductRepo(),
		customerRepo: newFakeCustomerRepo(),
		stockRepo:    newFakeStockRepo(),
		cashRepo:     newFakeCashRepo(),
	}

	manager := &rollbackManager{snapshot: f.snapshot}
	f.wire(manager)
	return f
}

// newConcurrentFixture wires the engine with a pass-through manager; suited
// to tests that only assert on the guarded stock and cash state.
func newConcurrentFixture() *fixture {
	f := &fixture{
		saleRepo:     newFakeSaleRepo(),
		productRepo:  newFakeProductRepo(),
		customerRepo: newFakeCustomerRepo(),
		stockRepo:    newFakeStockRepo(),
		cashRepo:     newFakeCashRepo(),
	}
	f.wire(&tx.MockManager{})
	return f
}

func (f *fixture) wire(manager tx.Manager) {
	cash := cashbox.NewService(f.cashRepo, manager)
	stockSvc := stock.NewService(f.stockRepo, cash, nopPayables{}, manager)
	f.svc = NewService(f.saleRepo, f.productRepo, f.customerRepo, stockSvc, cash,
		&numerator.MockGenerator{}, manager, audit.NopRecorder{})
}

type nopPayables struct{}

func (nopPayables) CreateFromPurchase(ctx context.Context, p stock.PurchasePayable) error {
	return nil
}

// snapshot deep-copies every fake and returns the restore function.
func (f *fixture) snapshot() func() {
	sales := make(map[id.ID]*Sale, len(f.saleRepo.sales))
	for k, v := range f.saleRepo.sales {
		cp := *v
		sales[k] = &cp
	}
	stockLevels := make(map[id.ID]int64, len(f.stockRepo.stock))
	for k, v := range f.stockRepo.stock {
		stockLevels[k] = v
	}
	movements := len(f.stockRepo.movements)
	customers := make(map[id.ID]*customer.Customer, len(f.customerRepo.customers))
	for k, v := range f.customerRepo.customers {
		cp := *v
		customers[k] = &cp
	}
	box := *f.cashRepo.box
	cashLog := len(f.cashRepo.log)

	return func() {
		f.saleRepo.sales = sales
		f.stockRepo.stock = stockLevels
		f.stockRepo.movements = f.stockRepo.movements[:movements]
		f.customerRepo.customers = customers
		cp := box
		f.cashRepo.box = &cp
		f.cashRepo.log = f.cashRepo.log[:cashLog]
	}
}

func (f *fixture) seedProduct(name, cost, price string, stockQty int64) *product.Product {
	p := product.NewProduct(name, types.MustMoney(cost), types.MustMoney(price))
	p.Code = fmt.Sprintf("SKU-%05d", len(f.productRepo.products)+1)
	p.CurrentStock = stockQty
	f.productRepo.products[p.ID] = p
	f.stockRepo.stock[p.ID] = stockQty
	return p
}

func (f *fixture) seedCustomer(name, phone string) *customer.Customer {
	c := customer.NewCustomer(name, phone)
	f.customerRepo.customers[c.ID] = c
	return c
}

func actorContext() context.Context {
	return appctx.WithActor(context.Background(), &appctx.Actor{
		UserID: "u-100",
		Name:   "Cashier One",
		Role:   appctx.RoleCashier,
	})
}

func TestCreate_WalkInCashSale_PostsAllEffects(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Oil filter", "10.00", "15.00", 8)
	ctx := actorContext()

	doc, err := f.svc.Create(ctx, Draft{
		Items:         []DraftItem{{ProductID: p.ID, Quantity: 3, UnitPrice: types.MustMoney("15.00")}},
		AmountPaid:    types.MustMoney("45.00"),
		PaymentMethod: PaymentCash,
		Currency:      types.CurrencyLYD,
	})
	require.NoError(t, err)

	// Arithmetic.
	assert.Equal(t, "45.00", doc.Subtotal.StringFixed(2))
	assert.Equal(t, "45.00", doc.TotalAmount.StringFixed(2))
	assert.Equal(t, "0.00", doc.AmountDue.StringFixed(2))
	assert.Equal(t, StatusCompleted, doc.Status)
	assert.Equal(t, "u-100", doc.CreatedBy)

	// Day-reset number format.
	today := time.Now().UTC().Format("20060102")
	assert.Equal(t, fmt.Sprintf("MD-%s-0001", today), doc.SaleNumber)

	// Item denormalization and profit.
	require.Len(t, doc.Items, 1)
	item := doc.Items[0]
	assert.Equal(t, "Oil filter", item.ProductName)
	assert.Equal(t, p.Code, item.ProductSKU)
	assert.Equal(t, "15.00", item.Profit.StringFixed(2))

	// Stock out with reference.
	assert.Equal(t, int64(5), f.stockRepo.stock[p.ID])
	require.Len(t, f.stockRepo.movements, 1)
	m := f.stockRepo.movements[0]
	assert.Equal(t, stock.MovementOut, m.Type)
	assert.Equal(t, "sale", m.ReferenceType)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, doc.ID, *m.ReferenceID)

	// Cashbox credited once.
	require.Len(t, f.cashRepo.log, 1)
	assert.Equal(t, cashbox.TxSale, f.cashRepo.log[0].Type)
	assert.Equal(t, "45.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
}

func TestCreate_PartialPayment_DebtGoesToCustomer(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Brake pads", "40.00", "65.00", 10)
	c := f.seedCustomer("Ali", "0912345678")
	custID := c.ID
	ctx := actorContext()

	doc, err := f.svc.Create(ctx, Draft{
		CustomerID:    &custID,
		Items:         []DraftItem{{ProductID: p.ID, Quantity: 2, UnitPrice: types.MustMoney("65.00")}},
		Discount:      types.MustMoney("10.00"),
		AmountPaid:    types.MustMoney("70.00"),
		PaymentMethod: PaymentPartial,
		Currency:      types.CurrencyLYD,
	})
	require.NoError(t, err)

	assert.Equal(t, "130.00", doc.Subtotal.StringFixed(2))
	assert.Equal(t, "120.00", doc.TotalAmount.StringFixed(2))
	assert.Equal(t, "50.00", doc.AmountDue.StringFixed(2))

	assert.Equal(t, "50.00", c.BalanceOwed.StringFixed(2))
	assert.Equal(t, "120.00", c.TotalPurchases.StringFixed(2))

	// Only the paid part reaches the cashbox.
	assert.Equal(t, "70.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
}

func TestCreate_InsufficientStock_RollsBackEverything(t *testing.T) {
	f := newFixture()
	ok := f.seedProduct("Oil filter", "10.00", "15.00", 10)
	short := f.seedProduct("Coolant", "6.00", "11.00", 1)
	c := f.seedCustomer("Omar", "0923456789")
	custID := c.ID
	ctx := actorContext()

	_, err := f.svc.Create(ctx, Draft{
		CustomerID: &custID,
		Items: []DraftItem{
			{ProductID: ok.ID, Quantity: 2, UnitPrice: types.MustMoney("15.00")},
			{ProductID: short.ID, Quantity: 5, UnitPrice: types.MustMoney("11.00")},
		},
		AmountPaid:    types.MustMoney("10.00"),
		PaymentMethod: PaymentPartial,
		Currency:      types.CurrencyLYD,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// Nothing survived the rollback.
	assert.Empty(t, f.saleRepo.sales)
	assert.Equal(t, int64(10), f.stockRepo.stock[ok.ID])
	assert.Equal(t, int64(1), f.stockRepo.stock[short.ID])
	assert.Empty(t, f.stockRepo.movements)
	assert.Equal(t, "0.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
	assert.True(t, c.BalanceOwed.IsZero())
	assert.True(t, c.TotalPurchases.IsZero())
}

func TestCreate_ValidationRules(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Wiper blade", "5.00", "9.00", 10)
	ctx := actorContext()

	item := DraftItem{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("9.00")}

	cases := []struct {
		name  string
		draft Draft
	}{
		{"no items", Draft{PaymentMethod: PaymentCash, Currency: types.CurrencyLYD}},
		{"discount exceeds subtotal", Draft{
			Items:         []DraftItem{item},
			Discount:      types.MustMoney("10.00"),
			PaymentMethod: PaymentCash,
			Currency:      types.CurrencyLYD,
		}},
		{"overpayment", Draft{
			Items:         []DraftItem{item},
			AmountPaid:    types.MustMoney("9.50"),
			PaymentMethod: PaymentCash,
			Currency:      types.CurrencyLYD,
		}},
		{"cash sale underpaid", Draft{
			Items:         []DraftItem{item},
			AmountPaid:    types.MustMoney("5.00"),
			PaymentMethod: PaymentCash,
			Currency:      types.CurrencyLYD,
		}},
		{"credit sale without customer", Draft{
			Items:         []DraftItem{item},
			AmountPaid:    types.MustMoney("5.00"),
			PaymentMethod: PaymentPartial,
			Currency:      types.CurrencyLYD,
		}},
		{"bad currency", Draft{
			Items:         []DraftItem{item},
			AmountPaid:    types.MustMoney("9.00"),
			PaymentMethod: PaymentCash,
			Currency:      types.Currency("EUR"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.draft)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}

	// Validation failures must not consume sale numbers or touch state.
	assert.Empty(t, f.saleRepo.sales)
	assert.Empty(t, f.stockRepo.movements)
}

func TestCreate_SequentialDayNumbers(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Spark plug", "2.00", "4.00", 100)
	ctx := actorContext()

	draft := Draft{
		Items:         []DraftItem{{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("4.00")}},
		AmountPaid:    types.MustMoney("4.00"),
		PaymentMethod: PaymentCash,
		Currency:      types.CurrencyLYD,
	}

	first, err := f.svc.Create(ctx, draft)
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, draft)
	require.NoError(t, err)

	today := time.Now().UTC().Format("20060102")
	assert.Equal(t, fmt.Sprintf("MD-%s-0001", today), first.SaleNumber)
	assert.Equal(t, fmt.Sprintf("MD-%s-0002", today), second.SaleNumber)
}

func TestReturn_FullInverse(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Brake pads", "40.00", "65.00", 10)
	c := f.seedCustomer("Ali", "0912345678")
	custID := c.ID
	ctx := actorContext()

	doc, err := f.svc.Create(ctx, Draft{
		CustomerID:    &custID,
		Items:         []DraftItem{{ProductID: p.ID, Quantity: 2, UnitPrice: types.MustMoney("65.00")}},
		AmountPaid:    types.MustMoney("80.00"),
		PaymentMethod: PaymentPartial,
		Currency:      types.CurrencyLYD,
	})
	require.NoError(t, err)

	returned, err := f.svc.Return(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, returned.Status)

	// Stock conservation: back to the initial level.
	assert.Equal(t, int64(10), f.stockRepo.stock[p.ID])

	// The in movement references the return.
	require.Len(t, f.stockRepo.movements, 2)
	in := f.stockRepo.movements[1]
	assert.Equal(t, stock.MovementIn, in.Type)
	assert.Equal(t, "sale_return", in.ReferenceType)
	assert.Equal(t, fmt.Sprintf("Return - Sale %s", doc.SaleNumber), in.Reason)

	// Cash refunded to the cent.
	assert.Equal(t, "0.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
	require.Len(t, f.cashRepo.log, 2)
	assert.Equal(t, cashbox.TxRefund, f.cashRepo.log[1].Type)

	// Customer totals unwound.
	assert.Equal(t, "0.00", c.BalanceOwed.StringFixed(2))
	assert.Equal(t, "0.00", c.TotalPurchases.StringFixed(2))
}

func TestReturn_SecondCallConflicts(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Oil filter", "10.00", "15.00", 5)
	ctx := actorContext()

	doc, err := f.svc.Create(ctx, Draft{
		Items:         []DraftItem{{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("15.00")}},
		AmountPaid:    types.MustMoney("15.00"),
		PaymentMethod: PaymentCash,
		Currency:      types.CurrencyLYD,
	})
	require.NoError(t, err)

	_, err = f.svc.Return(ctx, doc.ID)
	require.NoError(t, err)

	_, err = f.svc.Return(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeSaleNotReturnable))

	// The second return must not double anything.
	assert.Equal(t, int64(5), f.stockRepo.stock[p.ID])
	assert.Equal(t, "0.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
}

func TestCancel_CompletedSaleDirectsToReturn(t *testing.T) {
	f := newFixture()
	p := f.seedProduct("Oil filter", "10.00", "15.00", 5)
	ctx := actorContext()

	doc, err := f.svc.Create(ctx, Draft{
		Items:         []DraftItem{{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("15.00")}},
		AmountPaid:    types.MustMoney("15.00"),
		PaymentMethod: PaymentCash,
		Currency:      types.CurrencyLYD,
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConflict))

	// Sale untouched.
	stored, err := f.svc.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
}

func TestCreate_ConcurrentSalesOfLastUnit(t *testing.T) {
	f := newConcurrentFixture()
	p := f.seedProduct("Alternator", "150.00", "220.00", 1)
	ctx := actorContext()

	const workers = 10
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, Draft{
				Items:         []DraftItem{{ProductID: p.ID, Quantity: 1, UnitPrice: types.MustMoney("220.00")}},
				AmountPaid:    types.MustMoney("220.00"),
				PaymentMethod: PaymentCash,
				Currency:      types.CurrencyUSD,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(0), f.stockRepo.stock[p.ID])

	// Exactly one sale reached the cashbox.
	assert.Equal(t, "220.00", f.cashRepo.box.BalanceUSD.StringFixed(2))
	assert.Len(t, f.cashRepo.log, 1)
}
