// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"gestaopro/internal/app"
	"gestaopro/internal/infrastructure/http/v1/handlers"
	"gestaopro/internal/infrastructure/http/v1/middleware"
	"gestaopro/internal/infrastructure/storage/postgres"
	"gestaopro/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Services are the domain services behind the endpoints
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// Pool is nil when running on the in-memory store
	Pool *postgres.Pool

	// HealthChecks are pinged by /health/ready
	HealthChecks map[string]handlers.Pinger

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	Version string
	Debug   bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.Pool, cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	s := cfg.Services
	jwt := s.Auth.JWT()

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, s, jwt)

		protected := v1.Group("")
		protected.Use(middleware.Auth(jwt))
		if cfg.IdempotencyEnabled {
			protected.Use(middleware.Idempotency(s.Idempotency))
		}

		registerCatalogRoutes(protected, s)
		registerSalesRoutes(protected, s)
		registerReportRoutes(protected, s)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, s *app.Services, jwt middleware.JWTValidator) {
	h := handlers.NewAuthHandler(handlers.NewBaseHandler(), s.Auth)

	public := rg.Group("/auth")
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(jwt))
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
}

// registerCatalogRoutes registers categories, products, customers and expenses.
func registerCatalogRoutes(rg *gin.RouterGroup, s *app.Services) {
	base := handlers.NewBaseHandler()

	RegisterCatalogRoutes(rg.Group("/categories"), handlers.NewCategoryHandler(base, s.Categories))
	RegisterCatalogRoutes(rg.Group("/customers"), handlers.NewCustomerHandler(base, s.Customers))

	products := handlers.NewProductHandler(base, s.Products)
	productGroup := rg.Group("/products")
	productGroup.GET("/low-stock", products.LowStock)
	productGroup.PATCH("/:id/stock", products.UpdateStock)
	RegisterCatalogRoutes(productGroup, products)

	expenses := handlers.NewExpenseHandler(base, s.Expenses)
	expenseGroup := rg.Group("/expenses")
	expenseGroup.GET("/monthly-total", expenses.MonthlyTotal)
	RegisterCatalogRoutes(expenseGroup, expenses)
}

// registerSalesRoutes registers the sale workflow endpoints.
func registerSalesRoutes(rg *gin.RouterGroup, s *app.Services) {
	h := handlers.NewSalesHandler(handlers.NewBaseHandler(), s.Sales, s.Audit)

	group := rg.Group("/sales")
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/monthly-total", h.MonthlyTotal)
	group.GET("/top-products", h.TopProducts)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.GET("/:id/history", h.History)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, s *app.Services) {
	h := handlers.NewReportsHandler(handlers.NewBaseHandler(), s.Reports)
	rg.GET("/dashboard", h.Dashboard)
}
