package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/membermatters/memberportal/internal/api"
	v1 "github.com/membermatters/memberportal/internal/api/v1"
	"github.com/membermatters/memberportal/internal/cache"
	"github.com/membermatters/memberportal/internal/config"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/email"
	"github.com/membermatters/memberportal/internal/integration/stripe"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	"github.com/membermatters/memberportal/internal/repository"
	"github.com/membermatters/memberportal/internal/service"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			cache.NewInMemoryCache,
		),
	)

	// Postgres
	opts = append(opts, postgres.Module())

	// Repositories and integrations
	opts = append(opts,
		fx.Provide(
			repository.NewMemberRepository,
			repository.NewBillingGroupRepository,
			repository.NewAddonRepository,
			repository.NewPricingLockRepository,
			repository.NewPlanRepository,
			repository.NewSettingsRepository,

			provideGateway,

			email.NewClient,
			email.NewService,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewPricingLockService,
			service.NewItemSyncService,
			service.NewSubscriptionService,
			service.NewBillingGroupService,
			service.NewWebhookService,
			service.NewAddonService,
			service.NewPlanService,
			service.NewSettingsService,
			service.NewMemberService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideGateway(cfg *config.Configuration, log *logger.Logger) (provider.Gateway, error) {
	if !cfg.Stripe.Enabled {
		log.Warn("stripe integration disabled, provider calls will fail")
		return provider.NewDisabledGateway(), nil
	}
	return stripe.NewGateway(cfg, log)
}

func provideHandlers(
	logger *logger.Logger,
	memberService service.MemberService,
	billingGroupService service.BillingGroupService,
	addonService service.AddonService,
	planService service.PlanService,
	settingsService service.SettingsService,
	subscriptionService service.SubscriptionService,
	webhookService service.WebhookService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(logger),
		Member:       v1.NewMemberHandler(memberService, logger),
		BillingGroup: v1.NewBillingGroupHandler(billingGroupService, logger),
		Addon:        v1.NewAddonHandler(addonService, logger),
		Plan:         v1.NewPlanHandler(planService, logger),
		Settings:     v1.NewSettingsHandler(settingsService, logger),
		Portal:       v1.NewPortalHandler(billingGroupService, subscriptionService, memberService, logger),
		Webhook:      v1.NewWebhookHandler(webhookService, logger),
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
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("starting API server on %s", cfg.Server.Address)
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
