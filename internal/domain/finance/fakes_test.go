package finance

import (
	"context"
	"sync"
	"time"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/domain/catalogs/partner"
	"mdcars/internal/domain/registers/cashbox"
)

// --- finance repository ---

type fakeRepo struct {
	mu         sync.Mutex
	expenses   map[id.ID]*Expense
	revenues   map[id.ID]*Revenue
	payments   []*CustomerPayment
	partnerTxs []*PartnerTransaction
	payables   map[id.ID]*SupplierPayable
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		expenses: make(map[id.ID]*Expense),
		revenues: make(map[id.ID]*Revenue),
		payables: make(map[id.ID]*SupplierPayable),
	}
}

func (r *fakeRepo) CreateExpense(ctx context.Context, e *Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expenses[e.ID] = e
	return nil
}

func (r *fakeRepo) GetExpense(ctx context.Context, expenseID id.ID) (*Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[expenseID]
	if !ok {
		return nil, apperror.NewNotFound("expense", expenseID.String())
	}
	return e, nil
}

func (r *fakeRepo) DeleteExpense(ctx context.Context, expenseID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.expenses, expenseID)
	return nil
}

func (r *fakeRepo) ListExpenses(ctx context.Context, filter RecordFilter) ([]*Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Expense
	for _, e := range r.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeRepo) CreateRevenue(ctx context.Context, rv *Revenue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revenues[rv.ID] = rv
	return nil
}

func (r *fakeRepo) GetRevenue(ctx context.Context, revenueID id.ID) (*Revenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.revenues[revenueID]
	if !ok {
		return nil, apperror.NewNotFound("revenue", revenueID.String())
	}
	return rv, nil
}

func (r *fakeRepo) DeleteRevenue(ctx context.Context, revenueID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.revenues, revenueID)
	return nil
}

func (r *fakeRepo) ListRevenues(ctx context.Context, filter RecordFilter) ([]*Revenue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Revenue
	for _, rv := range r.revenues {
		out = append(out, rv)
	}
	return out, nil
}

func (r *fakeRepo) CreatePayment(ctx context.Context, p *CustomerPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, p)
	return nil
}

func (r *fakeRepo) ListPayments(ctx context.Context, customerID *id.ID, filter RecordFilter) ([]*CustomerPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*CustomerPayment
	for _, p := range r.payments {
		if customerID != nil && p.CustomerID != *customerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) CreatePartnerTransaction(ctx context.Context, t *PartnerTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partnerTxs = append(r.partnerTxs, t)
	return nil
}

func (r *fakeRepo) ListPartnerTransactions(ctx context.Context, partnerID *id.ID, filter RecordFilter) ([]*PartnerTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*PartnerTransaction
	for _, t := range r.partnerTxs {
		if partnerID != nil && t.PartnerID != *partnerID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeRepo) CreatePayable(ctx context.Context, p *SupplierPayable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payables[p.ID] = p
	return nil
}

func (r *fakeRepo) GetPayableForUpdate(ctx context.Context, payableID id.ID) (*SupplierPayable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payables[payableID]
	if !ok {
		return nil, apperror.NewNotFound("supplier payable", payableID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) MarkPayablePaid(ctx context.Context, payableID id.ID, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payables[payableID]
	if !ok {
		return apperror.NewNotFound("supplier payable", payableID.String())
	}
	p.IsPaid = true
	p.PaidAt = &paidAt
	return nil
}

func (r *fakeRepo) ListPayables(ctx context.Context, filter PayableFilter) ([]*SupplierPayable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*SupplierPayable
	for _, p := range r.payables {
		if filter.UnpaidOnly && p.IsPaid {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

var _ Repository = (*fakeRepo)(nil)

// --- customer repository ---

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[id.ID]*customer.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[id.ID]*customer.Customer)}
}

func (r *fakeCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByCode(ctx context.Context, code string) (*customer.Customer, error) {
	return nil, apperror.NewNotFound("customer", code)
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *customer.Customer) error { return nil }
func (r *fakeCustomerRepo) Delete(ctx context.Context, customerID id.ID) error     { return nil }

func (r *fakeCustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return domain.ListResult[*customer.Customer]{}, nil
}

func (r *fakeCustomerRepo) Exists(ctx context.Context, customerID id.ID) (bool, error) {
	return false, nil
}

func (r *fakeCustomerRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (r *fakeCustomerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	return nil, apperror.NewNotFound("customer", phone)
}

func (r *fakeCustomerRepo) AddPurchases(ctx context.Context, customerID id.ID, delta types.Money) error {
	return nil
}

func (r *fakeCustomerRepo) AddBalanceOwed(ctx context.Context, customerID id.ID, delta types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	next := c.BalanceOwed.Add(delta)
	if next.IsNegative() {
		return apperror.NewBusinessRule(apperror.CodeInsufficientBalance,
			"customer balance can not go negative")
	}
	c.BalanceOwed = next
	return nil
}

func (r *fakeCustomerRepo) ReverseSaleTotals(ctx context.Context, customerID id.ID, amountDue, totalAmount types.Money) error {
	return nil
}

func (r *fakeCustomerRepo) ListDebtors(ctx context.Context) ([]*customer.Customer, error) {
	return nil, nil
}

var _ customer.Repository = (*fakeCustomerRepo)(nil)

// --- partner repository ---

type fakePartnerRepo struct {
	mu       sync.Mutex
	partners map[id.ID]*partner.Partner
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: make(map[id.ID]*partner.Partner)}
}

func (r *fakePartnerRepo) Create(ctx context.Context, p *partner.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partners[p.ID] = p
	return nil
}

func (r *fakePartnerRepo) GetByID(ctx context.Context, partnerID id.ID) (*partner.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[partnerID]
	if !ok {
		return nil, apperror.NewNotFound("partner", partnerID.String())
	}
	return p, nil
}

func (r *fakePartnerRepo) GetByCode(ctx context.Context, code string) (*partner.Partner, error) {
	return nil, apperror.NewNotFound("partner", code)
}

func (r *fakePartnerRepo) Update(ctx context.Context, p *partner.Partner) error { return nil }
func (r *fakePartnerRepo) Delete(ctx context.Context, partnerID id.ID) error    { return nil }

func (r *fakePartnerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*partner.Partner], error) {
	return domain.ListResult[*partner.Partner]{}, nil
}

func (r *fakePartnerRepo) Exists(ctx context.Context, partnerID id.ID) (bool, error) {
	return false, nil
}

func (r *fakePartnerRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (r *fakePartnerRepo) AddCounter(ctx context.Context, partnerID id.ID, counter partner.CounterKind, amount types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[partnerID]
	if !ok {
		return apperror.NewNotFound("partner", partnerID.String())
	}
	switch counter {
	case partner.CounterInvested:
		p.TotalInvested = p.TotalInvested.Add(amount)
	case partner.CounterWithdrawn:
		p.TotalWithdrawn = p.TotalWithdrawn.Add(amount)
	case partner.CounterProfitDistributed:
		p.TotalProfitDistributed = p.TotalProfitDistributed.Add(amount)
	}
	return nil
}

var _ partner.Repository = (*fakePartnerRepo)(nil)

// --- cashbox repository ---

type fakeCashRepo struct {
	mu  sync.Mutex
	box *cashbox.Cashbox
	log []*cashbox.CashboxTransaction
}

func newFakeCashRepo() *fakeCashRepo {
	return &fakeCashRepo{box: &cashbox.Cashbox{
		BaseEntity: entity.NewBaseEntity(),
		BalanceUSD: types.Zero(),
		BalanceLYD: types.Zero(),
	}}
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

// --- transaction manager with rollback semantics ---

type rollbackManager struct {
	mu    sync.Mutex
	depth int

	snapshot func() func()
	pending  func()
}

func (m *rollbackManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.depth++
	isRoot := m.depth == 1
	if isRoot && m.snapshot != nil {
		m.pending = m.snapshot()
	}
	m.mu.Unlock()

	err := fn(ctx)

	m.mu.Lock()
	m.depth--
	restore := m.pending
	if m.depth == 0 {
		m.pending = nil
	}
	m.mu.Unlock()

	if err != nil && isRoot && restore != nil {
		restore()
	}
	return err
}
