package domain

import "context"

// Report cache invalidation tags.
const (
	TagSales    = "sales"
	TagExpenses = "expenses"
	TagProducts = "products"
)

// Invalidator drops cached read models derived from the given tags
// for the owner found in ctx.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// NoopInvalidator is used when no report cache is configured.
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(context.Context, ...string) error { return nil }

// InvalidateAfterWrite registers an after-write hook dropping tags.
func InvalidateAfterWrite[T any](hooks *HookRegistry[T], inv Invalidator, tags ...string) {
	if inv == nil {
		return
	}
	hooks.OnAfterWrite(func(ctx context.Context, _ T) error {
		return inv.Invalidate(ctx, tags...)
	})
}
