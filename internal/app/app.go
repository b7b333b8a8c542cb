// Package app wires repositories, services and infrastructure into a runnable application.
package app

import (
	"context"
	"fmt"
	"time"

	"gestaopro/internal/config"
	"gestaopro/internal/core/idempotency"
	corenumerator "gestaopro/internal/core/numerator"
	"gestaopro/internal/core/tx"
	"gestaopro/internal/domain/audit"
	"gestaopro/internal/domain/auth"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/customer"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/expense"
	"gestaopro/internal/domain/reports"
	"gestaopro/internal/domain/sales"
	"gestaopro/internal/infrastructure/cache"
	"gestaopro/internal/infrastructure/numerator"
	"gestaopro/internal/infrastructure/storage/memory"
	"gestaopro/internal/infrastructure/storage/postgres"
	"gestaopro/internal/infrastructure/storage/postgres/auth_repo"
	"gestaopro/internal/infrastructure/storage/postgres/catalog_repo"
	"gestaopro/internal/infrastructure/storage/postgres/document_repo"
	"gestaopro/internal/infrastructure/storage/postgres/report_repo"
)

// Pinger is implemented by backends with a reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend bundles the storage implementations the services run on.
type Backend struct {
	Name string

	TxManager tx.Manager
	Users     auth.UserStore
	Tokens    auth.SessionStore

	Categories category.Repository
	Products   product.Repository
	Customers  customer.Repository
	Expenses   expense.Repository
	Sales      sales.Repository
	Reports    reports.Repository

	Audit       audit.Recorder
	Numerator   corenumerator.Generator
	Idempotency idempotency.Store

	// Pool is set for the Postgres backend only
	Pool *postgres.Pool
}

// NewMemoryBackend keeps all data in process. Data is lost on restart.
func NewMemoryBackend(idempotencyTTL time.Duration) *Backend {
	store := memory.New()
	return &Backend{
		Name:        "memory",
		TxManager:   store,
		Users:       store.Users(),
		Tokens:      store.Users(),
		Categories:  store.Categories(),
		Products:    store.Products(),
		Customers:   store.Customers(),
		Expenses:    store.Expenses(),
		Sales:       store.Sales(),
		Reports:     store.Reports(),
		Audit:       store.Audit(),
		Numerator:   corenumerator.NewMemoryGenerator(),
		Idempotency: memory.NewIdempotencyStore(idempotencyTTL),
	}
}

// NewPostgresBackend builds the repositories on pool.
func NewPostgresBackend(pool *postgres.Pool, idempotencyTTL time.Duration) (*Backend, error) {
	txm := postgres.NewTxManager(pool)

	recorder, err := postgres.NewAuditRecorder(txm)
	if err != nil {
		return nil, fmt.Errorf("audit recorder: %w", err)
	}

	return &Backend{
		Name:       "postgres",
		TxManager:  txm,
		Users:      auth_repo.NewUserRepo(txm),
		Tokens:     auth_repo.NewTokenRepo(txm),
		Categories: catalog_repo.NewCategoryRepo(txm),
		Products:   catalog_repo.NewProductRepo(txm),
		Customers:  catalog_repo.NewCustomerRepo(txm),
		Expenses:   catalog_repo.NewExpenseRepo(txm),
		Sales:      document_repo.NewSaleRepo(txm),
		Reports:    report_repo.NewReportRepo(txm),
		Audit:      recorder,
		Numerator: numerator.New(numerator.QuerierFunc(func(ctx context.Context) numerator.Querier {
			return txm.GetQuerier(ctx)
		})),
		Idempotency: postgres.NewIdempotencyStore(txm, idempotencyTTL),
		Pool:        pool,
	}, nil
}

// Ping checks the storage.
func (b *Backend) Ping(ctx context.Context) error {
	if p, ok := b.TxManager.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Services are the domain services exposed over HTTP and used by the tools.
type Services struct {
	Auth       *auth.Service
	Categories *category.Service
	Products   *product.Service
	Customers  *customer.Service
	Expenses   *expense.Service
	Sales      *sales.Service
	Reports    *reports.Service

	Audit       audit.Recorder
	Idempotency idempotency.Store
	Cache       cache.ReportCache
}

// NewServices builds the domain services. A nil reportCache disables report caching.
func NewServices(cfg config.Config, b *Backend, reportCache cache.ReportCache) (*Services, error) {
	if reportCache == nil {
		reportCache = cache.Noop{}
	}

	rule, err := product.CompileLowStockRule(cfg.LowStockRule)
	if err != nil {
		return nil, err
	}

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	if cfg.AccessTokenTTL > 0 {
		jwtCfg.AccessTokenTTL = cfg.AccessTokenTTL
	}
	authCfg := auth.DefaultServiceConfig()
	if cfg.RefreshTokenTTL > 0 {
		authCfg.RefreshTokenExpiry = cfg.RefreshTokenTTL
	}

	s := &Services{
		Audit:       b.Audit,
		Idempotency: b.Idempotency,
		Cache:       reportCache,
	}
	s.Auth = auth.NewService(b.Users, b.Tokens, b.TxManager, auth.NewJWTService(jwtCfg), authCfg)
	s.Categories = category.NewService(b.Categories, b.TxManager, b.Products, reportCache)
	s.Products = product.NewService(b.Products, b.TxManager, b.Categories, rule, reportCache)
	s.Customers = customer.NewService(b.Customers, b.TxManager, reportCache)
	s.Expenses = expense.NewService(b.Expenses, b.TxManager, reportCache)
	s.Sales = sales.NewService(sales.Config{
		Repo:      b.Sales,
		Stock:     b.Products,
		Customers: b.Customers,
		TxManager: b.TxManager,
		Numerator: b.Numerator,
		Audit:     b.Audit,
		Invalid:   reportCache,
	})
	s.Reports = reports.NewService(b.Reports, s.Sales, s.Expenses, s.Products, reportCache)
	return s, nil
}
