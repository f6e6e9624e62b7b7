package tx

import "context"

// MockManager is a test implementation of Manager.
// By default it runs fn directly without a real transaction. Tests that
// assert rollback behavior set Before/OnError to snapshot and restore their
// in-memory stores.
type MockManager struct {
	// Before runs prior to fn (snapshot point).
	Before func()

	// OnError runs when fn fails (restore point).
	OnError func()

	// Calls counts RunInTransaction invocations.
	Calls int
}

// RunInTransaction implements Manager.
func (m *MockManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.Before != nil {
		m.Before()
	}
	if err := fn(ctx); err != nil {
		if m.OnError != nil {
			m.OnError()
		}
		return err
	}
	return nil
}

// ReadOnly implements ReadOnlyManager.
func (m *MockManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	_ Manager         = (*MockManager)(nil)
	_ ReadOnlyManager = (*MockManager)(nil)
)
