package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/cheeta-billing/internal/config"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/handler"
	"github.com/sangkips/cheeta-billing/internal/presentation/http/middleware"
	"github.com/sangkips/cheeta-billing/pkg/auth"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Settings  *handler.SettingsHandler
	Inventory *handler.InventoryHandler
	Bill      *handler.BillHandler
	Dashboard *handler.DashboardHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Verifier        *auth.TokenVerifier
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *zap.Logger
	// Limiter is created per router when nil. The caller owns its sweep loop.
	Limiter *middleware.BudgetLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewBudgetLimiter(LimiterIdleTTL)
	}

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Verifier))
		protected.Use(limiter.Limit(generalBudget(deps.Cfg.RateLimit)))

		registerProtectedRoutes(protected, h, deps, limiter)
	}

	return router
}

// LimiterIdleTTL is how long an unused rate limit bucket is kept.
const LimiterIdleTTL = 10 * time.Minute

func generalBudget(cfg config.RateLimitConfig) middleware.RequestBudget {
	return middleware.RequestBudget{
		Name:   "api",
		Limit:  cfg.Requests,
		Window: time.Duration(cfg.Duration) * time.Second,
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, limiter *middleware.BudgetLimiter) {
	// Settings
	protected.GET("/settings", h.Settings.GetSettings)
	protected.PUT("/settings", h.Settings.UpdateSettings)

	// Dashboard
	protected.GET("/dashboard", h.Dashboard.GetStats)

	registerInventoryRoutes(protected, h)
	registerBillRoutes(protected, h, deps, limiter)
	registerPrinterRoutes(protected, h)
}

func registerInventoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	items := protected.Group("/items")
	{
		items.GET("", h.Inventory.ListItems)
		items.POST("", h.Inventory.CreateItem)
		items.GET("/:id", h.Inventory.GetItem)
		items.PUT("/:id", h.Inventory.UpdateItem)
		items.DELETE("/:id", h.Inventory.DeleteItem)
	}
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, limiter *middleware.BudgetLimiter) {
	idempotency := middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: deps.Logger,
	}

	bills := protected.Group("/bills")
	{
		bills.GET("", h.Bill.ListBills)
		// A replayed create must not consume another bill number. Replays
		// are answered before the bill create budget is charged.
		bills.POST("",
			middleware.IdempotencyRequired(idempotency),
			limiter.Limit(middleware.BillCreateBudget(deps.Cfg.RateLimit.BillCreatesPerMinute)),
			h.Bill.CreateBill,
		)
		bills.POST("/import", middleware.Idempotency(idempotency), h.Bill.ImportBills)
		bills.GET("/:id", h.Bill.GetBill)
		bills.GET("/:id/invoice", h.Bill.GetInvoice)
		bills.POST("/:id/print", h.Printer.PrintBill)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
	}
}
