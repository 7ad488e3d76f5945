package service

import (
	"github.com/membermatters/memberportal/internal/cache"
	"github.com/membermatters/memberportal/internal/config"
	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/plan"
	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/domain/settings"
	"github.com/membermatters/memberportal/internal/email"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	MemberRepo       member.Repository
	BillingGroupRepo billinggroup.Repository
	AddonRepo        addon.Repository
	PricingLockRepo  pricinglock.Repository
	PlanRepo         plan.Repository
	SettingsRepo     settings.Repository

	// Integrations
	Provider provider.Gateway
	Notifier email.Notifier
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	memberRepo member.Repository,
	billingGroupRepo billinggroup.Repository,
	addonRepo addon.Repository,
	pricingLockRepo pricinglock.Repository,
	planRepo plan.Repository,
	settingsRepo settings.Repository,
	gateway provider.Gateway,
	notifier email.Notifier,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Cache:            cache,
		MemberRepo:       memberRepo,
		BillingGroupRepo: billingGroupRepo,
		AddonRepo:        addonRepo,
		PricingLockRepo:  pricingLockRepo,
		PlanRepo:         planRepo,
		SettingsRepo:     settingsRepo,
		Provider:         gateway,
		Notifier:         notifier,
	}
}
