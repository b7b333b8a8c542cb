// Package main provides a CLI tool for seeding a demo account with sample data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"gestaopro/internal/app"
	"gestaopro/internal/config"
	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain/auth"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/customer"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/expense"
	"gestaopro/internal/domain/sales"
	"gestaopro/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	backend, closeBackend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer closeBackend()

	services, err := app.NewServices(cfg, backend, nil)
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}

	log.Info("connected to database")

	user, err := seedOwner(ctx, services.Auth, log)
	if err != nil {
		log.Fatalw("failed to seed owner", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		ownerCtx := appctx.WithUser(ctx, &appctx.UserContext{
			UserID: user.ID.String(),
			Email:  user.Email,
			Name:   user.Name,
		})
		if err := seedDemoData(ownerCtx, services, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedOwner registers the demo owner, or logs in when the account already exists.
func seedOwner(ctx context.Context, svc *auth.Service, log *logger.Logger) (*auth.User, error) {
	email := getEnv("ADMIN_EMAIL", "owner@gestaopro.local")
	password := getEnv("ADMIN_PASSWORD", "Owner123!")

	user, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Demo Owner",
	})
	if err == nil {
		log.Infow("owner created", "email", user.Email)
		return user, nil
	}
	if !apperror.HasCode(err, apperror.CodeConflict) {
		return nil, err
	}

	_, user, err = svc.Login(ctx, auth.Credentials{Email: email, Password: password}, auth.ClientInfo{UserAgent: "seed"})
	if err != nil {
		return nil, fmt.Errorf("owner exists with another password: %w", err)
	}
	log.Infow("owner already exists", "email", user.Email)
	return user, nil
}

func seedDemoData(ctx context.Context, s *app.Services, log *logger.Logger) error {
	categories := map[string]id.ID{}
	for _, name := range []string{"Bebidas", "Mercearia", "Limpeza"} {
		c := category.NewCategory(name, nil)
		if err := s.Categories.Create(ctx, c); err != nil {
			if apperror.HasCode(err, apperror.CodeDuplicate) {
				log.Infow("demo data already present, skipping")
				return nil
			}
			return fmt.Errorf("create category %s: %w", name, err)
		}
		categories[name] = c.ID
	}

	type demoProduct struct {
		name, category  string
		cost, sale, qty string
	}
	products := make([]*product.Product, 0, 5)
	for _, d := range []demoProduct{
		{"Água mineral 500ml", "Bebidas", "0.80", "2.50", "120"},
		{"Refrigerante lata", "Bebidas", "2.10", "5.00", "48"},
		{"Arroz 5kg", "Mercearia", "18.90", "27.90", "20"},
		{"Café 500g", "Mercearia", "11.50", "18.00", "4"},
		{"Detergente 500ml", "Limpeza", "1.60", "3.20", "30"},
	} {
		p := product.NewProduct(d.name, dec(d.cost), dec(d.sale), dec(d.qty))
		catID := categories[d.category]
		p.CategoryID = &catID
		if err := s.Products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", d.name, err)
		}
		products = append(products, p)
	}

	c := customer.NewCustomer("Maria Souza")
	email := "maria@example.com"
	c.Email = &email
	if err := s.Customers.Create(ctx, c); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	rent := expense.NewExpense("Aluguel", dec("1500"), "Fixas", monthStart)
	rent.IsRecurring = true
	period := expense.PeriodMonthly
	rent.RecurrencePeriod = &period
	for _, e := range []*expense.Expense{
		rent,
		expense.NewExpense("Energia", dec("230.45"), "Fixas", monthStart.AddDate(0, 0, 4)),
		expense.NewExpense("Reposição de estoque", dec("640"), "Compras", monthStart.AddDate(0, 0, 9)),
	} {
		if err := s.Expenses.Create(ctx, e); err != nil {
			return fmt.Errorf("create expense %s: %w", e.Description, err)
		}
	}

	for i, in := range []sales.CreateInput{
		{
			CustomerID:    &c.ID,
			PaymentMethod: "pix",
			SaleDate:      monthStart.AddDate(0, 0, 2),
			Items: []sales.ItemInput{
				{ProductID: products[0].ID, Quantity: dec("6"), UnitPrice: products[0].SalePrice},
				{ProductID: products[2].ID, Quantity: dec("1"), UnitPrice: products[2].SalePrice},
			},
		},
		{
			PaymentMethod: "cash",
			SaleDate:      monthStart.AddDate(0, 0, 7),
			Items: []sales.ItemInput{
				{ProductID: products[1].ID, Quantity: dec("12"), UnitPrice: products[1].SalePrice},
				{ProductID: products[4].ID, Quantity: dec("2"), UnitPrice: products[4].SalePrice},
			},
		},
	} {
		if _, err := s.Sales.Create(ctx, in); err != nil {
			return fmt.Errorf("create sale %d: %w", i+1, err)
		}
	}

	log.Infow("demo data created",
		"categories", len(categories),
		"products", len(products),
		"sales", 2,
	)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
