package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cardgate.io/app/internal/http/handlers"
	"cardgate.io/app/internal/http/middleware"
	"cardgate.io/app/internal/modules/auth"
	"cardgate.io/app/internal/modules/ledger"
	"cardgate.io/app/internal/modules/orders"
	"cardgate.io/app/internal/modules/payments"
)

type Config struct {
	BootstrapToken string
}

func NewRouter(logger *slog.Logger, db *gorm.DB, gw payments.Gateway, cfg Config) *gin.Engine {
	ordersSvc := orders.NewService(db)
	ledgerSvc := ledger.NewService(db)
	authSvc := auth.NewService(db)
	paySvc := payments.NewService(db, ordersSvc, ledgerSvc, gw, logger)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	authH := handlers.NewAuthHandler(authSvc, cfg.BootstrapToken)
	payH := handlers.NewPaymentsHandler(logger, paySvc)
	ordH := handlers.NewOrdersHandler(ordersSvc, ledgerSvc)
	txnH := handlers.NewTransactionsHandler(ledgerSvc)

	api := r.Group("/api/v1")
	api.POST("/auth/tokens", authH.IssueToken)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(authSvc))
	{
		protected.POST("/payments/purchase", payH.Purchase)
		protected.POST("/payments/authorize", payH.Authorize)
		protected.POST("/payments/capture", payH.Capture)
		protected.POST("/payments/void", payH.Void)
		protected.POST("/payments/refund", payH.Refund)

		protected.GET("/orders", ordH.List)
		protected.GET("/orders/:id", ordH.Detail)

		protected.GET("/transactions/:transactionId", txnH.Detail)
		protected.GET("/transactions/:transactionId/refund-eligibility", txnH.RefundEligibility)
	}

	return r
}
