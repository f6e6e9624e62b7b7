package sale

import (
	"context"
	"sync"

	"mdcars/internal/core/apperror"
	"mdcars/internal/core/entity"
	"mdcars/internal/core/id"
	"mdcars/internal/core/types"
	"mdcars/internal/domain"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/domain/catalogs/product"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/domain/registers/stock"
)

// --- sale repository ---

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales map[id.ID]*Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[id.ID]*Sale)}
}

func (r *fakeSaleRepo) Create(ctx context.Context, s *Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return s, nil
}

func (r *fakeSaleRepo) GetByNumber(ctx context.Context, saleNumber string) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.SaleNumber == saleNumber {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("sale", saleNumber)
}

func (r *fakeSaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error) {
	return r.GetByID(ctx, saleID)
}

func (r *fakeSaleRepo) UpdateStatus(ctx context.Context, saleID id.ID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	s.Status = status
	return nil
}

func (r *fakeSaleRepo) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Sale
	for _, s := range r.sales {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.CustomerID != nil && (s.CustomerID == nil || *s.CustomerID != *filter.CustomerID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// --- product repository ---

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[id.ID]*product.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[id.ID]*product.Product)}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (r *fakeProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error { return nil }

func (r *fakeProductRepo) Delete(ctx context.Context, productID id.ID) error { return nil }

func (r *fakeProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return domain.ListResult[*product.Product]{}, nil
}

func (r *fakeProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.products[productID]
	return ok, nil
}

func (r *fakeProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (r *fakeProductRepo) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetByID(ctx, productID)
}

var _ product.Repository = (*fakeProductRepo)(nil)

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

func (r *fakeCustomerRepo) Delete(ctx context.Context, customerID id.ID) error { return nil }

func (r *fakeCustomerRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return domain.ListResult[*customer.Customer]{}, nil
}

func (r *fakeCustomerRepo) Exists(ctx context.Context, customerID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.customers[customerID]
	return ok, nil
}

func (r *fakeCustomerRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (r *fakeCustomerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("customer", phone)
}

func (r *fakeCustomerRepo) AddPurchases(ctx context.Context, customerID id.ID, delta types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	c.TotalPurchases = c.TotalPurchases.Add(delta)
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
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	c.BalanceOwed = types.MaxZero(c.BalanceOwed.Sub(amountDue))
	c.TotalPurchases = types.MaxZero(c.TotalPurchases.Sub(totalAmount))
	return nil
}

func (r *fakeCustomerRepo) ListDebtors(ctx context.Context) ([]*customer.Customer, error) {
	return nil, nil
}

var _ customer.Repository = (*fakeCustomerRepo)(nil)

// --- stock repository ---

type fakeStockRepo struct {
	mu        sync.Mutex
	stock     map[id.ID]int64
	movements []*stock.StockMovement
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stock: make(map[id.ID]int64)}
}

func (r *fakeStockRepo) Append(ctx context.Context, m *stock.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeStockRepo) GetByID(ctx context.Context, movementID id.ID) (*stock.StockMovement, error) {
	return nil, apperror.NewNotFound("stock movement", movementID.String())
}

func (r *fakeStockRepo) List(ctx context.Context, filter stock.MovementFilter) ([]*stock.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*stock.StockMovement, len(r.movements))
	copy(out, r.movements)
	return out, nil
}

func (r *fakeStockRepo) ApplyDelta(ctx context.Context, productID id.ID, delta int64) (int64, error) {
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

func (r *fakeStockRepo) SetStock(ctx context.Context, productID id.ID, quantity int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.stock[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	r.stock[productID] = quantity
	return current, nil
}

var _ stock.Repository = (*fakeStockRepo)(nil)

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

// rollbackManager snapshots all fakes at the root transaction and restores
// them when the function fails, mimicking a real database rollback. Nested
// transactions join the root one, like the production manager.
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
