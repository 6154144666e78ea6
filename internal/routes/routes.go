// Package routes wires services, handlers and middleware onto the
// fiber app.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/chain"
	"github.com/oureum/oureum-backend/internal/config"
	"github.com/oureum/oureum-backend/internal/handlers"
	"github.com/oureum/oureum-backend/internal/middleware"
	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/oureum/oureum-backend/internal/services/audit"
	"github.com/oureum/oureum-backend/internal/services/auth"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/services/pricing"
	"github.com/oureum/oureum-backend/internal/services/purchase"
	"github.com/oureum/oureum-backend/internal/services/redemption"
	"github.com/oureum/oureum-backend/internal/services/tokenop"
	"gorm.io/gorm"
)

// SetupRoutes builds the dependency graph and registers all routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, chainClient chain.TokenClient) {
	// Repositories
	balanceRepo := repositories.NewBalanceRepository(db)
	priceRepo := repositories.NewPriceRepository(db)
	operationRepo := repositories.NewOperationRepository(db)
	redemptionRepo := repositories.NewRedemptionRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Services, leaves first
	auditService := audit.NewService(auditRepo)
	balanceService := balance.NewService(balanceRepo, repositories.CacheService)

	pricingCfg := config.PricingFromEnv()
	priceService := pricing.NewService(
		priceRepo,
		repositories.CacheService,
		auditService,
		pricing.NewHTTPFetcher(pricingCfg),
		pricingCfg,
	)

	tokenService := tokenop.NewService(db, balanceService, priceService, operationRepo, auditService, chainClient)
	redemptionService := redemption.NewService(db, redemptionRepo, balanceService, priceService, auditService, config.RedemptionFromEnv())

	var processor purchase.PaymentProcessor
	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		processor = purchase.NewStripeProcessor(key)
	}
	purchaseService := purchase.NewService(balanceService, auditService, processor, config.GetEnv("FIAT_CURRENCY", "usd"))

	authService := auth.NewService(
		balanceService,
		config.GetEnv("JWT_SECRET", "oureum"),
		config.GetDurationEnv("JWT_TTL", 0),
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	priceHandler := handlers.NewPriceHandler(priceService)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	redemptionHandler := handlers.NewRedemptionHandler(redemptionService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	auditHandler := handlers.NewAuditHandler(auditService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Public routes
	app.Get("/health", handlers.HealthCheck)
	api := app.Group("/api")
	api.Post("/login", authHandler.Login)
	api.Get("/price/quote", priceHandler.GetQuote)

	// Authenticated routes
	authed := api.Group("", authMiddleware.Handler)
	authed.Get("/balances", balanceHandler.GetBalances)
	authed.Post("/token/buy", tokenHandler.Buy)
	authed.Post("/token/sell", tokenHandler.Sell)
	authed.Get("/token/operations", tokenHandler.ListOperations)
	authed.Post("/redemptions", redemptionHandler.Create)
	authed.Post("/topup", purchaseHandler.TopUp)

	// Admin routes
	admin := authed.Group("/admin", authMiddleware.RequireAdmin)
	admin.Post("/price/manual", priceHandler.SetManualPrice)
	admin.Get("/price/history", priceHandler.GetHistory)
	admin.Post("/credit", purchaseHandler.AdminCredit)
	admin.Post("/purchases/offchain", tokenHandler.RecordOffchainPurchase)
	admin.Get("/redemptions", redemptionHandler.List)
	admin.Patch("/redemptions/:id", redemptionHandler.Transition)
	admin.Get("/audit", auditHandler.List)
}
