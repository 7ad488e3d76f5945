package repository

import (
	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/plan"
	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	"github.com/membermatters/memberportal/internal/domain/settings"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/postgres"
	postgresRepo "github.com/membermatters/memberportal/internal/repository/postgres"
)

func NewMemberRepository(db postgres.IClient, logger *logger.Logger) member.Repository {
	return postgresRepo.NewMemberRepository(db, logger)
}

func NewBillingGroupRepository(db postgres.IClient, logger *logger.Logger) billinggroup.Repository {
	return postgresRepo.NewBillingGroupRepository(db, logger)
}

func NewAddonRepository(db postgres.IClient, logger *logger.Logger) addon.Repository {
	return postgresRepo.NewAddonRepository(db, logger)
}

func NewPricingLockRepository(db postgres.IClient, logger *logger.Logger) pricinglock.Repository {
	return postgresRepo.NewPricingLockRepository(db, logger)
}

func NewPlanRepository(db postgres.IClient, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewSettingsRepository(db postgres.IClient, logger *logger.Logger) settings.Repository {
	return postgresRepo.NewSettingsRepository(db, logger)
}
