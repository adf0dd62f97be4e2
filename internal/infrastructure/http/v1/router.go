// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitebook/internal/app"
	appctx "sitebook/internal/core/context"
	"sitebook/internal/infrastructure/http/v1/handlers"
	"sitebook/internal/infrastructure/http/v1/middleware"
	"sitebook/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Services is the assembled application
	Services *app.Services

	// Idempotency stores responses of retried mutations; nil disables the middleware
	Idempotency middleware.IdempotencyStore

	// Metrics observes every request; nil disables it
	Metrics middleware.RequestObserver

	// MetricsHandler is served at /metrics when set
	MetricsHandler http.Handler

	// DB backs the readiness probe
	DB handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		base := handlers.NewBaseHandler()
		svc := cfg.Services

		authHandler := handlers.NewAuthHandler(base, svc.Auth)
		publicAuth := v1.Group("/auth")
		protectedAuth := v1.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.Idempotency != nil {
			protected.Use(middleware.Idempotency(cfg.Idempotency))
		}

		handlers.NewNotificationHandler(base, svc.Notifications).RegisterRoutes(protected)

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(appctx.RoleAdmin))

		site := protected.Group("/site")
		site.Use(middleware.RequireRole(appctx.RoleSiteManager))

		registerRoutes(admin, site, base, svc)
	}

	return router
}

// registerRoutes wires every domain handler onto the admin and site groups.
func registerRoutes(admin, site *gin.RouterGroup, base *handlers.BaseHandler, svc *app.Services) {
	handlers.NewUserHandler(base, svc.Users).RegisterRoutes(admin)

	projects := handlers.NewProjectHandler(base, svc.Projects)
	projects.RegisterRoutes(admin.Group("/projects"))
	site.GET("/projects", projects.List)
	site.GET("/projects/:id", projects.Get)

	vendors := handlers.NewVendorHandler(base, svc.Vendors)
	vendors.RegisterRoutes(admin.Group("/vendors"))
	site.GET("/vendors", vendors.List)

	contractors := handlers.NewContractorHandler(base, svc.Contractors)
	contractors.RegisterRoutes(admin.Group("/contractors"))
	site.GET("/contractors", contractors.ListScoped)

	handlers.NewBankHandler(base, svc.Banks).RegisterRoutes(admin)
	handlers.NewCreditorHandler(base, svc.Creditors).RegisterRoutes(admin)
	admin.POST("/reconcile", handlers.NewReconcileHandler(base, svc.Reconciler).Run)

	ledgerHandler := handlers.NewLedgerHandler(base, svc.Ledger)
	ledgerHandler.RegisterAdminRoutes(admin)
	ledgerHandler.RegisterSiteRoutes(site)

	inventoryHandler := handlers.NewInventoryHandler(base, svc.Inventory)
	inventoryHandler.RegisterAdminRoutes(admin)
	inventoryHandler.RegisterSiteRoutes(site)

	machineHandler := handlers.NewMachineHandler(base, svc.Machines)
	machineHandler.RegisterAdminRoutes(admin)
	machineHandler.RegisterSiteRoutes(site)

	labourHandler := handlers.NewLabourHandler(base, svc.Labour)
	labourHandler.RegisterAdminRoutes(admin)
	labourHandler.RegisterSiteRoutes(site)

	transferHandler := handlers.NewTransferHandler(base, svc.Transfers)
	transferHandler.RegisterRoutes(admin)
	transferHandler.RegisterRoutes(site)

	if svc.Reports != nil {
		reportsHandler := handlers.NewReportsHandler(base, svc.Reports)
		reportsHandler.RegisterAdminRoutes(admin)
		reportsHandler.RegisterSiteRoutes(site)
	}
}
