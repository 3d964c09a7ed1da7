package api

import (
	"github.com/gin-gonic/gin"

	"github.com/gymledger/gymledger/internal/api/cron"
	v1 "github.com/gymledger/gymledger/internal/api/v1"
	"github.com/gymledger/gymledger/internal/config"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/rest/middleware"
	"github.com/gymledger/gymledger/internal/types"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Member     *v1.MemberHandler
	Membership *v1.MembershipHandler
	Payment    *v1.PaymentHandler
	Renewal    *v1.RenewalHandler
	Ledger     *v1.LedgerHandler

	CronMembership *cron.MembershipHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.GymContextMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	cronGroup := router.Group("/cron")
	registerCronRoutes(cronGroup, handlers)

	log.Infow("registered http routes", "mode", cfg.Deployment.Mode)
	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	members := router.Group("/members")
	{
		members.POST("", handlers.Member.CreateMember)
		members.GET("", handlers.Member.ListMembers)
		members.GET("/:id", handlers.Member.GetMember)
		members.GET("/:id/debt", handlers.Member.ReconcileDebt)
		members.GET("/:id/memberships/pending", handlers.Membership.ListPendingMemberships)
	}

	memberships := router.Group("/memberships")
	{
		memberships.POST("", handlers.Membership.AssignMembership)
		memberships.GET("/:id", handlers.Membership.GetMembership)
		memberships.POST("/:id/cancel", handlers.Membership.CancelMembership)
		memberships.POST("/:id/renew", handlers.Renewal.RenewMembership)
	}

	renewals := router.Group("/renewals")
	{
		renewals.GET("/upcoming", handlers.Renewal.ListUpcomingRenewals)
	}

	payments := router.Group("/payments")
	{
		payments.POST("", handlers.Payment.RegisterPayment)
	}

	ledger := router.Group("/ledger")
	{
		ledger.POST("/transactions", handlers.Ledger.RecordTransaction)
		ledger.GET("/transactions", handlers.Ledger.ListTransactions)
		ledger.GET("/transactions/:id", handlers.Ledger.GetTransaction)
		ledger.POST("/transactions/:id/refund", handlers.Ledger.MarkRefunded)
		ledger.GET("/daily/:date", handlers.Ledger.GetDailyCash)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	memberships := router.Group("/memberships")
	{
		memberships.POST("/expire", handlers.CronMembership.ExpireMemberships)
		memberships.POST("/renew", handlers.CronMembership.RenewMemberships)
	}
}
