// Package security provides the capability policy gating store operations.
package security

import (
	"fmt"

	"github.com/google/cel-go/cel"

	appctx "mdcars/internal/core/context"
)

// Capability names. The same identifiers gate API routes and drive any
// client-side conditional rendering, so role logic lives in exactly one place.
const (
	CapSalesRead      = "sales:read"
	CapSalesWrite     = "sales:write"
	CapCustomersRead  = "customers:read"
	CapCustomersWrite = "customers:write"
	CapProductsRead   = "products:read"
	CapProductsWrite  = "products:write"
	CapInventoryRead  = "inventory:read"
	CapInventoryWrite = "inventory:write"
	CapFinanceRead    = "finance:read"
	CapFinanceWrite   = "finance:write"
	CapPartnersRead   = "partners:read"
	CapPartnersWrite  = "partners:write"
	CapReportsRead    = "reports:read"
)

// defaultRule is the capability rule as a CEL expression over the actor role
// and the requested capability. Owner passes everything; cashier covers sales
// and customers; stock_manager covers inventory and products.
const defaultRule = `
	role == "owner"
	|| (role == "cashier" && capability in [
		"sales:read", "sales:write",
		"customers:read", "customers:write",
		"products:read",
		"reports:read"])
	|| (role == "stock_manager" && capability in [
		"inventory:read", "inventory:write",
		"products:read", "products:write",
		"finance:read"])
`

// Policy evaluates capability checks against a compiled CEL rule.
type Policy struct {
	program cel.Program
}

// NewPolicy compiles a capability rule expression.
func NewPolicy(rule string) (*Policy, error) {
	env, err := cel.NewEnv(
		cel.Variable("role", cel.StringType),
		cel.Variable("capability", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile capability rule: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build cel program: %w", err)
	}

	return &Policy{program: program}, nil
}

// DefaultPolicy returns the built-in role/capability rule.
func DefaultPolicy() (*Policy, error) {
	return NewPolicy(defaultRule)
}

// MustDefaultPolicy returns the built-in rule, panicking on compile failure.
// The expression is a constant, so failure is a programming error.
func MustDefaultPolicy() *Policy {
	p, err := DefaultPolicy()
	if err != nil {
		panic(err)
	}
	return p
}

// Allowed reports whether the role grants the capability.
func (p *Policy) Allowed(role appctx.Role, capability string) bool {
	out, _, err := p.program.Eval(map[string]any{
		"role":       string(role),
		"capability": capability,
	})
	if err != nil {
		return false
	}
	allowed, ok := out.Value().(bool)
	return ok && allowed
}
