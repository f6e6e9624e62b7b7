// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"mdcars/internal/core/numerator"
	"mdcars/internal/core/security"
	"mdcars/internal/domain/catalogs/customer"
	"mdcars/internal/domain/catalogs/partner"
	"mdcars/internal/domain/catalogs/product"
	"mdcars/internal/domain/documents/sale"
	"mdcars/internal/domain/finance"
	"mdcars/internal/domain/registers/cashbox"
	"mdcars/internal/domain/registers/stock"
	"mdcars/internal/domain/registers/treasury"
	"mdcars/internal/domain/reports"
	"mdcars/internal/infrastructure/http/v1/handlers"
	"mdcars/internal/infrastructure/http/v1/middleware"
	"mdcars/internal/infrastructure/storage/postgres"
	"mdcars/internal/infrastructure/storage/postgres/catalog_repo"
	"mdcars/internal/infrastructure/storage/postgres/document_repo"
	"mdcars/internal/infrastructure/storage/postgres/finance_repo"
	"mdcars/internal/infrastructure/storage/postgres/register_repo"
	"mdcars/internal/infrastructure/storage/postgres/report_repo"
	"mdcars/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (used by health checks).
	Pool *postgres.Pool

	// TxManager drives all repository transactions.
	TxManager *postgres.TxManager

	// Logger for request logging.
	Logger *logger.Logger

	// TokenValidator for JWT validation.
	TokenValidator middleware.TokenValidator

	// Numerator for document and catalog number generation.
	Numerator numerator.Generator

	// Policy gates routes by role capability.
	Policy *security.Policy

	// Audit records document mutations and serves change history.
	Audit *postgres.AuditService
}

// services bundles the wired domain layer.
type services struct {
	products  *product.Service
	customers *customer.Service
	partners  *partner.Service
	sales     *sale.Service
	stock     *stock.Service
	cashbox   *cashbox.Service
	treasury  *treasury.Service
	finance   *finance.Service
	reports   *reports.Service
}

// buildServices wires repositories and domain services. The cashbox service
// is shared by sales, stock funding, treasury moves and finance records.
func buildServices(cfg RouterConfig) *services {
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	customerRepo := catalog_repo.NewCustomerRepo(cfg.TxManager)
	partnerRepo := catalog_repo.NewPartnerRepo(cfg.TxManager)
	stockRepo := register_repo.NewStockRepo(cfg.TxManager)
	cashboxRepo := register_repo.NewCashboxRepo(cfg.TxManager)
	treasuryRepo := register_repo.NewTreasuryRepo(cfg.TxManager)
	saleRepo := document_repo.NewSaleRepo(cfg.TxManager)
	financeRepo := finance_repo.NewRepo(cfg.TxManager)
	reportRepo := report_repo.NewRepo(cfg.TxManager)

	cashboxSvc := cashbox.NewService(cashboxRepo, cfg.TxManager)
	financeSvc := finance.NewService(financeRepo, customerRepo, partnerRepo, cashboxSvc, cfg.Numerator, cfg.TxManager, cfg.Audit)
	stockSvc := stock.NewService(stockRepo, cashboxSvc, financeSvc, cfg.TxManager)
	treasurySvc := treasury.NewService(treasuryRepo, cashboxSvc, cfg.TxManager)
	saleSvc := sale.NewService(saleRepo, productRepo, customerRepo, stockSvc, cashboxSvc, cfg.Numerator, cfg.TxManager, cfg.Audit)

	return &services{
		products:  product.NewService(productRepo, cfg.TxManager, cfg.Numerator),
		customers: customer.NewService(customerRepo, cfg.TxManager, cfg.Numerator),
		partners:  partner.NewService(partnerRepo, cfg.TxManager, cfg.Numerator),
		sales:     saleSvc,
		stock:     stockSvc,
		cashbox:   cashboxSvc,
		treasury:  treasurySvc,
		finance:   financeSvc,
		reports:   reports.NewService(reportRepo, cashboxSvc),
	}
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	svcs := buildServices(cfg)
	base := handlers.NewBaseHandler()

	// API v1, JWT required
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.TokenValidator))

	registerCatalogRoutes(api, cfg, base, svcs)
	registerSaleRoutes(api, cfg, base, svcs)
	registerRegisterRoutes(api, cfg, base, svcs)
	registerFinanceRoutes(api, cfg, base, svcs)
	registerReportRoutes(api, cfg, base, svcs)
	registerAuditRoutes(api, cfg, base)

	return router
}

// can builds the capability middleware for one route.
func can(cfg RouterConfig, capability string) gin.HandlerFunc {
	return middleware.RequireCapability(cfg.Policy, capability)
}

func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler, svcs *services) {
	// --- PRODUCTS ---
	{
		h := handlers.NewProductHandler(base, svcs.products)
		stockHandler := handlers.NewStockHandler(base, svcs.stock)
		g := rg.Group("/products")

		g.GET("", can(cfg, security.CapProductsRead), h.List)
		g.GET("/low-stock", can(cfg, security.CapProductsRead), h.LowStock)
		g.GET("/by-code/:code", can(cfg, security.CapProductsRead), h.GetByCode)
		g.GET("/:id", can(cfg, security.CapProductsRead), h.Get)
		g.GET("/:id/movements", can(cfg, security.CapInventoryRead), stockHandler.ProductHistory)
		g.POST("", can(cfg, security.CapProductsWrite), h.Create)
		g.PUT("/:id", can(cfg, security.CapProductsWrite), h.Update)
		g.DELETE("/:id", can(cfg, security.CapProductsWrite), h.Delete)
	}

	// --- CUSTOMERS ---
	{
		h := handlers.NewCustomerHandler(base, svcs.customers)
		financeHandler := handlers.NewFinanceHandler(base, svcs.finance)
		g := rg.Group("/customers")

		g.GET("", can(cfg, security.CapCustomersRead), h.List)
		g.GET("/debtors", can(cfg, security.CapCustomersRead), h.Debtors)
		g.GET("/by-phone", can(cfg, security.CapCustomersRead), h.ByPhone)
		g.GET("/:id", can(cfg, security.CapCustomersRead), h.Get)
		g.POST("", can(cfg, security.CapCustomersWrite), h.Create)
		g.PUT("/:id", can(cfg, security.CapCustomersWrite), h.Update)
		g.DELETE("/:id", can(cfg, security.CapCustomersWrite), h.Delete)
		g.POST("/:id/payments", can(cfg, security.CapFinanceWrite), financeHandler.RecordCustomerPayment)
	}

	// --- PARTNERS ---
	{
		h := handlers.NewPartnerHandler(base, svcs.partners)
		financeHandler := handlers.NewFinanceHandler(base, svcs.finance)
		g := rg.Group("/partners")

		g.GET("", can(cfg, security.CapPartnersRead), h.List)
		g.GET("/:id", can(cfg, security.CapPartnersRead), h.Get)
		g.POST("", can(cfg, security.CapPartnersWrite), h.Create)
		g.PUT("/:id", can(cfg, security.CapPartnersWrite), h.Update)
		g.DELETE("/:id", can(cfg, security.CapPartnersWrite), h.Delete)
		g.POST("/:id/transactions", can(cfg, security.CapPartnersWrite), financeHandler.RecordPartnerTransaction)
	}
}

func registerSaleRoutes(rg *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler, svcs *services) {
	h := handlers.NewSaleHandler(base, svcs.sales)
	g := rg.Group("/sales")

	g.GET("", can(cfg, security.CapSalesRead), h.List)
	g.GET("/by-number/:number", can(cfg, security.CapSalesRead), h.GetByNumber)
	g.GET("/:id", can(cfg, security.CapSalesRead), h.Get)
	g.POST("", can(cfg, security.CapSalesWrite), h.Create)
	g.POST("/:id/return", can(cfg, security.CapSalesWrite), h.Return)
	g.POST("/:id/cancel", can(cfg, security.CapSalesWrite), h.Cancel)
}

func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler, svcs *services) {
	// --- STOCK ---
	{
		h := handlers.NewStockHandler(base, svcs.stock)
		g := rg.Group("/stock")

		g.GET("/movements", can(cfg, security.CapInventoryRead), h.History)
		g.GET("/movements/:id", can(cfg, security.CapInventoryRead), h.Get)
		g.POST("/movements", can(cfg, security.CapInventoryWrite), h.Record)
	}

	// --- CASHBOX ---
	{
		h := handlers.NewCashboxHandler(base, svcs.cashbox)
		g := rg.Group("/cashbox")

		g.GET("", can(cfg, security.CapFinanceRead), h.Balance)
		g.GET("/transactions", can(cfg, security.CapFinanceRead), h.Transactions)
		g.POST("/deposit", can(cfg, security.CapFinanceWrite), h.Deposit)
		g.POST("/withdraw", can(cfg, security.CapFinanceWrite), h.Withdraw)
	}

	// --- TREASURY ---
	{
		h := handlers.NewTreasuryHandler(base, svcs.treasury)
		g := rg.Group("/treasury/accounts")

		g.GET("", can(cfg, security.CapFinanceRead), h.ListAccounts)
		g.GET("/:id", can(cfg, security.CapFinanceRead), h.GetAccount)
		g.GET("/:id/transactions", can(cfg, security.CapFinanceRead), h.Transactions)
		g.POST("", can(cfg, security.CapFinanceWrite), h.CreateAccount)
		g.POST("/:id/deposit", can(cfg, security.CapFinanceWrite), h.Deposit)
		g.POST("/:id/withdraw", can(cfg, security.CapFinanceWrite), h.Withdraw)
		g.POST("/:id/transfer", can(cfg, security.CapFinanceWrite), h.Transfer)
		g.POST("/:id/move-from-cashbox", can(cfg, security.CapFinanceWrite), h.MoveFromCashbox)
		g.POST("/:id/move-to-cashbox", can(cfg, security.CapFinanceWrite), h.MoveToCashbox)
	}
}

func registerFinanceRoutes(rg *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler, svcs *services) {
	h := handlers.NewFinanceHandler(base, svcs.finance)
	g := rg.Group("/finance")

	g.GET("/expenses", can(cfg, security.CapFinanceRead), h.ListExpenses)
	g.POST("/expenses", can(cfg, security.CapFinanceWrite), h.CreateExpense)
	g.DELETE("/expenses/:id", can(cfg, security.CapFinanceWrite), h.DeleteExpense)

	g.GET("/revenues", can(cfg, security.CapFinanceRead), h.ListRevenues)
	g.POST("/revenues", can(cfg, security.CapFinanceWrite), h.CreateRevenue)
	g.DELETE("/revenues/:id", can(cfg, security.CapFinanceWrite), h.DeleteRevenue)

	g.GET("/payments", can(cfg, security.CapFinanceRead), h.ListCustomerPayments)
	g.GET("/partner-transactions", can(cfg, security.CapFinanceRead), h.ListPartnerTransactions)

	g.GET("/payables", can(cfg, security.CapFinanceRead), h.ListPayables)
	g.POST("/payables/:id/pay", can(cfg, security.CapFinanceWrite), h.PayPayable)
}

func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler, svcs *services) {
	h := handlers.NewReportsHandler(base, svcs.reports)
	g := rg.Group("/reports")

	g.GET("/dashboard", can(cfg, security.CapReportsRead), h.Dashboard)
	g.GET("/best-sellers", can(cfg, security.CapReportsRead), h.BestSellers)
	g.GET("/daily-sales", can(cfg, security.CapReportsRead), h.DailySales)
	g.GET("/monthly-sales", can(cfg, security.CapReportsRead), h.MonthlySales)
}

func registerAuditRoutes(rg *gin.RouterGroup, cfg RouterConfig, base *handlers.BaseHandler) {
	h := handlers.NewAuditHandler(base, cfg.Audit)

	rg.GET("/audit/:entityType/:id", can(cfg, security.CapReportsRead), h.EntityHistory)
}
