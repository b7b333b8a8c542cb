package product

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultLowStockRule flags products at or below their own minimum.
const DefaultLowStockRule = "stock <= minStock"

// LowStockRule is a compiled CEL predicate over stock, minStock and name.
type LowStockRule struct {
	expr    string
	program cel.Program
}

// CompileLowStockRule parses and type-checks expr. The expression must yield a bool.
func CompileLowStockRule(expr string) (*LowStockRule, error) {
	if expr == "" {
		expr = DefaultLowStockRule
	}

	env, err := cel.NewEnv(
		cel.Variable("stock", cel.DoubleType),
		cel.Variable("minStock", cel.DoubleType),
		cel.Variable("name", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile low stock rule %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("low stock rule %q must return bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("low stock program: %w", err)
	}
	return &LowStockRule{expr: expr, program: program}, nil
}

// MustCompileLowStockRule panics on invalid expressions. Use for constants and tests.
func MustCompileLowStockRule(expr string) *LowStockRule {
	r, err := CompileLowStockRule(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the source expression.
func (r *LowStockRule) String() string { return r.expr }

// Matches evaluates the rule for p.
func (r *LowStockRule) Matches(p *Product) (bool, error) {
	out, _, err := r.program.Eval(map[string]any{
		"stock":    p.StockQuantity.InexactFloat64(),
		"minStock": p.MinStock.InexactFloat64(),
		"name":     p.Name,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate low stock rule: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("low stock rule returned %T", out.Value())
	}
	return matched, nil
}
