// Package memory provides an in-process implementation of every repository.
// It backs the server when no database is configured and the service tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/audit"
	"gestaopro/internal/domain/auth"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/customer"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/expense"
	"gestaopro/internal/domain/sales"
)

type state struct {
	categories map[id.ID]category.Category
	products   map[id.ID]product.Product
	customers  map[id.ID]customer.Customer
	expenses   map[id.ID]expense.Expense
	sales      map[id.ID]sales.Sale
	users      map[id.ID]auth.User
	tokens     map[id.ID]auth.RefreshToken
	audit      []audit.Entry
}

func newState() *state {
	return &state{
		categories: make(map[id.ID]category.Category),
		products:   make(map[id.ID]product.Product),
		customers:  make(map[id.ID]customer.Customer),
		expenses:   make(map[id.ID]expense.Expense),
		sales:      make(map[id.ID]sales.Sale),
		users:      make(map[id.ID]auth.User),
		tokens:     make(map[id.ID]auth.RefreshToken),
		audit:      make([]audit.Entry, 0, 64),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	c := &state{
		categories: cloneMap(s.categories),
		products:   cloneMap(s.products),
		customers:  cloneMap(s.customers),
		expenses:   cloneMap(s.expenses),
		sales:      make(map[id.ID]sales.Sale, len(s.sales)),
		users:      cloneMap(s.users),
		tokens:     cloneMap(s.tokens),
		audit:      slices.Clone(s.audit),
	}
	for k, v := range s.sales {
		v.Items = slices.Clone(v.Items)
		c.sales[k] = v
	}
	return c
}

// Store keeps all records in memory.
// Transactions are serialised and roll back by restoring a snapshot.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

type txKey struct{}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	rollback := func() {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		rollback()
	}
	return err
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Categories returns the category repository.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Products returns the product repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Customers returns the customer repository.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }

// Expenses returns the expense repository.
func (s *Store) Expenses() *ExpenseRepo { return &ExpenseRepo{s: s} }

// Sales returns the sale repository.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

// Users returns the user and token repository.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Audit returns the audit recorder.
func (s *Store) Audit() *AuditRecorder { return &AuditRecorder{s: s} }

// --- helpers ---

func owner(ctx context.Context) (id.ID, error) {
	return appctx.RequireOwnerID(ctx)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func inIDs(v id.ID, ids []id.ID) bool {
	return slices.Contains(ids, v)
}

func notFound(entity string, v id.ID) error {
	return apperror.NewNotFound(entity, v.String())
}

// page applies offset and limit to an already filtered and sorted slice.
func page[T any](items []T, f domain.ListFilter) domain.ListResult[T] {
	total := len(items)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return domain.ListResult[T]{
		Items:      items[start:end],
		TotalCount: int64(total),
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
}

// sortItems orders by creation time when orderBy is "createdAt" or "-createdAt",
// otherwise by byDefault.
func sortItems[T any](items []T, orderBy string, byDefault func(a, b T) int, created func(T) time.Time) {
	switch orderBy {
	case "createdAt", "created_at":
		slices.SortStableFunc(items, func(a, b T) int { return created(a).Compare(created(b)) })
	case "-createdAt", "-created_at":
		slices.SortStableFunc(items, func(a, b T) int { return created(b).Compare(created(a)) })
	default:
		slices.SortStableFunc(items, byDefault)
	}
}
