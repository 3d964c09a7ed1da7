package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/gymledger/gymledger/internal/api"
	"github.com/gymledger/gymledger/internal/api/cron"
	v1 "github.com/gymledger/gymledger/internal/api/v1"
	"github.com/gymledger/gymledger/internal/cache"
	"github.com/gymledger/gymledger/internal/config"
	"github.com/gymledger/gymledger/internal/docstore"
	"github.com/gymledger/gymledger/internal/logger"
	"github.com/gymledger/gymledger/internal/repository"
	"github.com/gymledger/gymledger/internal/service"
	"github.com/gymledger/gymledger/internal/types"
	"github.com/gymledger/gymledger/internal/validator"
)

// @title GymLedger API
// @version 1.0
// @description Gym membership lifecycle and cash ledger service
// @BasePath /v1
// @schemes http https

func init() {
	// Civil dates are computed in the configured gym timezone; everything
	// else runs on UTC.
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			provideCache,

			// Document store
			provideDocStore,

			// Repositories
			repository.NewMemberRepository,
			repository.NewMembershipRepository,
			repository.NewRecurringChargeRepository,
			repository.NewLedgerRepository,
			repository.NewScanLockRepository,

			// Services
			service.NewServiceParams,
			service.NewMemberService,
			service.NewMembershipService,
			service.NewPaymentService,
			service.NewLedgerService,
			service.NewExpirationService,
			service.NewRenewalService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideCache(log *logger.Logger) cache.Cache {
	return cache.Initialize(log)
}

func provideDocStore(cfg *config.Configuration, log *logger.Logger) (docstore.IClient, error) {
	return docstore.NewClient(cfg, log)
}

func provideHandlers(
	logger *logger.Logger,
	memberService service.MemberService,
	membershipService service.MembershipService,
	paymentService service.PaymentService,
	ledgerService service.LedgerService,
	expirationService service.ExpirationService,
	renewalService service.RenewalService,
) api.Handlers {
	return api.Handlers{
		Health:         v1.NewHealthHandler(logger),
		Member:         v1.NewMemberHandler(memberService, logger),
		Membership:     v1.NewMembershipHandler(membershipService, logger),
		Payment:        v1.NewPaymentHandler(paymentService, logger),
		Renewal:        v1.NewRenewalHandler(renewalService, logger),
		Ledger:         v1.NewLedgerHandler(ledgerService, logger),
		CronMembership: cron.NewMembershipHandler(expirationService, renewalService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeServer:
		startAPIServer(lc, r, cfg, log)
	case types.ModeLambda:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
