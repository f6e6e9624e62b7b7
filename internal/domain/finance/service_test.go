package finance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdcars/internal/core/apperror"
	appctx "mdcars/internal/core/context"
	"mdcars/internal/core/id"
	"mdcars/internal/core/numerator"
	"mdcars/internal/core/types"
	"mdcars/internal/domain/audit"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/domain/catalogs/partner"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/domain/registers/stock"
)

type fixture struct {
	repo         *fakeRepo
	customerRepo *fakeCustomerRepo
	partnerRepo  *fakePartnerRepo
	cashRepo     *fakeCashRepo
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:         newFakeRepo(),
		customerRepo: newFakeCustomerRepo(),
		partnerRepo:  newFakePartnerRepo(),
		cashRepo:     newFakeCashRepo(),
	}

	manager := &rollbackManager{snapshot: f.snapshot}
	cash := cashbox.NewService(f.cashRepo, manager)
	f.svc = NewService(f.repo, f.customerRepo, f.partnerRepo, cash,
		&numerator.MockGenerator{}, manager, audit.NopRecorder{})
	return f
}

func (f *fixture) snapshot() func() {
	expenses := make(map[id.ID]*Expense, len(f.repo.expenses))
	for k, v := range f.repo.expenses {
		cp := *v
		expenses[k] = &cp
	}
	revenues := make(map[id.ID]*Revenue, len(f.repo.revenues))
	for k, v := range f.repo.revenues {
		cp := *v
		revenues[k] = &cp
	}
	payables := make(map[id.ID]*SupplierPayable, len(f.repo.payables))
	for k, v := range f.repo.payables {
		cp := *v
		payables[k] = &cp
	}
	payments := len(f.repo.payments)
	partnerTxs := len(f.repo.partnerTxs)
	customers := make(map[id.ID]*customer.Customer, len(f.customerRepo.customers))
	for k, v := range f.customerRepo.customers {
		cp := *v
		customers[k] = &cp
	}
	partners := make(map[id.ID]*partner.Partner, len(f.partnerRepo.partners))
	for k, v := range f.partnerRepo.partners {
		cp := *v
		partners[k] = &cp
	}
	box := *f.cashRepo.box
	cashLog := len(f.cashRepo.log)

	return func() {
		f.repo.expenses = expenses
		f.repo.revenues = revenues
		f.repo.payables = payables
		f.repo.payments = f.repo.payments[:payments]
		f.repo.partnerTxs = f.repo.partnerTxs[:partnerTxs]
		f.customerRepo.customers = customers
		f.partnerRepo.partners = partners
		cp := box
		f.cashRepo.box = &cp
		f.cashRepo.log = f.cashRepo.log[:cashLog]
	}
}

func (f *fixture) seedCash(currency types.Currency, amount string) {
	if currency == types.CurrencyUSD {
		f.cashRepo.box.BalanceUSD = types.MustMoney(amount)
	} else {
		f.cashRepo.box.BalanceLYD = types.MustMoney(amount)
	}
}

func actorContext() context.Context {
	return appctx.WithActor(context.Background(), &appctx.Actor{
		UserID: "u-1",
		Name:   "Owner",
		Role:   appctx.RoleOwner,
	})
}

func TestCreateExpense_DebitsCashbox(t *testing.T) {
	f := newFixture()
	f.seedCash(types.CurrencyLYD, "1000.00")
	ctx := actorContext()

	e, err := f.svc.CreateExpense(ctx, ExpenseDraft{
		Category:    "rent",
		Amount:      types.MustMoney("600.00"),
		Currency:    types.CurrencyLYD,
		Description: "Shop rent for August",
	})
	require.NoError(t, err)

	assert.Equal(t, "EXP-00001", e.Number)
	assert.Equal(t, "400.00", f.cashRepo.box.BalanceLYD.StringFixed(2))

	require.Len(t, f.cashRepo.log, 1)
	entry := f.cashRepo.log[0]
	assert.Equal(t, cashbox.TxExpense, entry.Type)
	assert.Equal(t, "-600.00", entry.AmountLYD.StringFixed(2))
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, e.ID, *entry.ReferenceID)
}

func TestCreateExpense_InsufficientCashLeavesNoRecord(t *testing.T) {
	f := newFixture()
	f.seedCash(types.CurrencyLYD, "100.00")
	ctx := actorContext()

	_, err := f.svc.CreateExpense(ctx, ExpenseDraft{
		Category: "rent",
		Amount:   types.MustMoney("600.00"),
		Currency: types.CurrencyLYD,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientBalance))

	assert.Empty(t, f.repo.expenses)
	assert.Equal(t, "100.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
}

func TestDeleteExpense_CompensatesTheLedger(t *testing.T) {
	f := newFixture()
	f.seedCash(types.CurrencyLYD, "1000.00")
	ctx := actorContext()

	e, err := f.svc.CreateExpense(ctx, ExpenseDraft{
		Category: "fuel",
		Amount:   types.MustMoney("75.50"),
		Currency: types.CurrencyLYD,
	})
	require.NoError(t, err)
	require.Equal(t, "924.50", f.cashRepo.box.BalanceLYD.StringFixed(2))

	require.NoError(t, f.svc.DeleteExpense(ctx, e.ID))

	// Balance restored to the cent; both ledger entries kept.
	assert.Equal(t, "1000.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
	assert.Empty(t, f.repo.expenses)
	require.Len(t, f.cashRepo.log, 2)
	assert.Equal(t, cashbox.TxAdjustment, f.cashRepo.log[1].Type)
	assert.Equal(t, "75.50", f.cashRepo.log[1].AmountLYD.StringFixed(2))
}

func TestCreateAndDeleteRevenue(t *testing.T) {
	f := newFixture()
	ctx := actorContext()

	r, err := f.svc.CreateRevenue(ctx, RevenueDraft{
		Source:   "car wash",
		Amount:   types.MustMoney("40.00"),
		Currency: types.CurrencyLYD,
	})
	require.NoError(t, err)
	assert.Equal(t, "REV-00001", r.Number)
	assert.Equal(t, "40.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
	assert.Equal(t, cashbox.TxRevenue, f.cashRepo.log[0].Type)

	require.NoError(t, f.svc.DeleteRevenue(ctx, r.ID))
	assert.Equal(t, "0.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
	assert.Empty(t, f.repo.revenues)
}

func TestRecordCustomerPayment_SettlesDebt(t *testing.T) {
	f := newFixture()
	ctx := actorContext()

	c := customer.NewCustomer("Ali", "0912345678")
	c.BalanceOwed = types.MustMoney("150.00")
	f.customerRepo.customers[c.ID] = c

	p, err := f.svc.RecordCustomerPayment(ctx, c.ID, types.MustMoney("90.00"), types.CurrencyLYD, "partial settle")
	require.NoError(t, err)

	assert.Equal(t, "90.00", p.Amount.StringFixed(2))
	assert.Equal(t, "60.00", c.BalanceOwed.StringFixed(2))
	assert.Equal(t, "90.00", f.cashRepo.box.BalanceLYD.StringFixed(2))
	assert.Equal(t, cashbox.TxPayment, f.cashRepo.log[0].Type)
}

func TestRecordCustomerPayment_RejectsOverpayment(t *testing.T) {
	f := newFixture()
	ctx := actorContext()

	c := customer.NewCustomer("Ali", "0912345678")
	c.BalanceOwed = types.MustMoney("50.00")
	f.customerRepo.customers[c.ID] = c

	_, err := f.svc.RecordCustomerPayment(ctx, c.ID, types.MustMoney("50.01"), types.CurrencyLYD, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))

	assert.Equal(t, "50.00", c.BalanceOwed.StringFixed(2))
	assert.Empty(t, f.repo.payments)
	assert.Empty(t, f.cashRepo.log)
}

func TestRecordPartnerTransaction_DirectionTable(t *testing.T) {
	f := newFixture()
	f.seedCash(types.CurrencyUSD, "1000.00")
	ctx := actorContext()

	p := partner.NewPartner("Mohamed", types.MustMoney("50"))
	f.partnerRepo.partners[p.ID] = p

	// Investment credits the cashbox.
	_, err := f.svc.RecordPartnerTransaction(ctx, p.ID, PartnerInvestment, types.MustMoney("500.00"), types.CurrencyUSD, "")
	require.NoError(t, err)
	assert.Equal(t, "1500.00", f.cashRepo.box.BalanceUSD.StringFixed(2))
	assert.Equal(t, "500.00", p.TotalInvested.StringFixed(2))

	// Withdrawal debits it.
	_, err = f.svc.RecordPartnerTransaction(ctx, p.ID, PartnerWithdrawal, types.MustMoney("200.00"), types.CurrencyUSD, "")
	require.NoError(t, err)
	assert.Equal(t, "1300.00", f.cashRepo.box.BalanceUSD.StringFixed(2))
	assert.Equal(t, "200.00", p.TotalWithdrawn.StringFixed(2))

	// Profit distribution debits it.
	_, err = f.svc.RecordPartnerTransaction(ctx, p.ID, PartnerProfitDistribution, types.MustMoney("300.00"), types.CurrencyUSD, "")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", f.cashRepo.box.BalanceUSD.StringFixed(2))
	assert.Equal(t, "300.00", p.TotalProfitDistributed.StringFixed(2))

	for _, entry := range f.cashRepo.log {
		assert.Equal(t, cashbox.TxPartner, entry.Type)
	}
}

func TestRecordPartnerTransaction_InsufficientCashRollsBack(t *testing.T) {
	f := newFixture()
	f.seedCash(types.CurrencyUSD, "100.00")
	ctx := actorContext()

	p := partner.NewPartner("Mohamed", types.MustMoney("50"))
	f.partnerRepo.partners[p.ID] = p

	_, err := f.svc.RecordPartnerTransaction(ctx, p.ID, PartnerWithdrawal, types.MustMoney("500.00"), types.CurrencyUSD, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientBalance))

	assert.Empty(t, f.repo.partnerTxs)
	assert.True(t, f.partnerRepo.partners[p.ID].TotalWithdrawn.IsZero())
	assert.Equal(t, "100.00", f.cashRepo.box.BalanceUSD.StringFixed(2))
}

func TestPayPayable_OneWayTransition(t *testing.T) {
	f := newFixture()
	f.seedCash(types.CurrencyUSD, "500.00")
	ctx := actorContext()

	movementID := id.New()
	require.NoError(t, f.svc.CreateFromPurchase(ctx, stock.PurchasePayable{
		SupplierName:    "Tripoli Auto Parts",
		Amount:          types.MustMoney("300.00"),
		Currency:        types.CurrencyUSD,
		InvoiceNumber:   "INV-9",
		StockMovementID: movementID,
		CreatedBy:       "u-1",
	}))

	unpaid, err := f.svc.ListPayables(ctx, PayableFilter{UnpaidOnly: true})
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	payableID := unpaid[0].ID

	paid, err := f.svc.PayPayable(ctx, payableID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "200.00", f.cashRepo.box.BalanceUSD.StringFixed(2))
	assert.Equal(t, cashbox.TxPayable, f.cashRepo.log[0].Type)

	// Second settlement conflicts and moves no money.
	_, err = f.svc.PayPayable(ctx, payableID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodePayableAlreadyPaid))
	assert.Equal(t, "200.00", f.cashRepo.box.BalanceUSD.StringFixed(2))
}

func TestCreateExpense_RejectsInvalidDraft(t *testing.T) {
	f := newFixture()
	ctx := actorContext()

	_, err := f.svc.CreateExpense(ctx, ExpenseDraft{
		Amount:   types.MustMoney("10.00"),
		Currency: types.CurrencyLYD,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = f.svc.CreateExpense(ctx, ExpenseDraft{
		Category: "misc",
		Amount:   types.MustMoney("-1.00"),
		Currency: types.CurrencyLYD,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
