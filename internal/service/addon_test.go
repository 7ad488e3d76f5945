package service

import (
	"testing"

	"github.com/membermatters/memberportal/internal/api/dto"
	"github.com/membermatters/memberportal/internal/cache"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/testutil"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AddonServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AddonService
}

func TestAddonService(t *testing.T) {
	suite.Run(t, new(AddonServiceSuite))
}

func (s *AddonServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewAddonService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            cache.NewInMemoryCache(),
		MemberRepo:       s.GetStores().MemberRepo,
		BillingGroupRepo: s.GetStores().BillingGroupRepo,
		AddonRepo:        s.GetStores().AddonRepo,
		PricingLockRepo:  s.GetStores().PricingLockRepo,
		PlanRepo:         s.GetStores().PlanRepo,
		SettingsRepo:     s.GetStores().SettingsRepo,
		Provider:         s.GetGateway(),
		Notifier:         s.GetNotifier(),
	})
}

func (s *AddonServiceSuite) createRequest() dto.CreateAddonRequest {
	return dto.CreateAddonRequest{
		Name:          "Locker Rental",
		AddonType:     types.AddonTypeLocker,
		Currency:      "aud",
		Cost:          decimal.NewFromInt(1500),
		Interval:      types.BillingPeriodMonth,
		IntervalCount: 1,
		Visible:       true,
	}
}

func (s *AddonServiceSuite) TestCreateAddonSyncsToProvider() {
	ctx := s.GetContext()

	a, err := s.service.CreateAddon(ctx, s.createRequest())
	s.NoError(err)
	s.NotEmpty(a.StripeProductID)
	s.NotEmpty(a.StripePriceID)
	s.True(a.StripeSynced)
	s.NotNil(a.LastSyncedAt)
	s.Equal(1, s.GetGateway().CallCount("CreateProduct"))
	s.Equal(1, s.GetGateway().CallCount("CreatePrice"))
}

func (s *AddonServiceSuite) TestCreateAddonSurvivesSyncFailure() {
	ctx := s.GetContext()
	s.GetGateway().FailWith("CreateProduct", ierr.NewError("provider unavailable").
		WithHint("Payment provider request failed").
		Mark(ierr.ErrProvider))

	a, err := s.service.CreateAddon(ctx, s.createRequest())
	s.NoError(err)
	s.False(a.StripeSynced)
	s.Empty(a.StripePriceID)

	// The catalog row exists and a later sync completes it.
	s.GetGateway().ClearFailures()
	synced, err := s.service.SyncAddon(ctx, a.ID)
	s.NoError(err)
	s.True(synced.StripeSynced)
	s.NotEmpty(synced.StripePriceID)
}

func (s *AddonServiceSuite) TestUpdateCostMintsNewPrice() {
	ctx := s.GetContext()

	a, err := s.service.CreateAddon(ctx, s.createRequest())
	s.NoError(err)
	oldPriceID := a.StripePriceID

	updated, err := s.service.UpdateAddon(ctx, a.ID, dto.UpdateAddonRequest{
		Cost: lo.ToPtr(decimal.NewFromInt(2000)),
	})
	s.NoError(err)
	s.True(updated.Cost.Equal(decimal.NewFromInt(2000)))
	s.NotEqual(oldPriceID, updated.StripePriceID)
	s.True(updated.StripeSynced)

	// The superseded price is archived, never mutated.
	s.Equal(1, s.GetGateway().CallCount("ArchivePrice"))
	s.Equal(2, s.GetGateway().CallCount("CreatePrice"))
}

func (s *AddonServiceSuite) TestUpdateNameKeepsPrice() {
	ctx := s.GetContext()

	a, err := s.service.CreateAddon(ctx, s.createRequest())
	s.NoError(err)
	oldPriceID := a.StripePriceID

	updated, err := s.service.UpdateAddon(ctx, a.ID, dto.UpdateAddonRequest{
		Name: lo.ToPtr("Large Locker Rental"),
	})
	s.NoError(err)
	s.Equal("Large Locker Rental", updated.Name)
	s.Equal(oldPriceID, updated.StripePriceID)
	s.Equal(1, s.GetGateway().CallCount("CreatePrice"))
	s.Equal(0, s.GetGateway().CallCount("ArchivePrice"))
}

func (s *AddonServiceSuite) TestArchiveAddon() {
	ctx := s.GetContext()

	a, err := s.service.CreateAddon(ctx, s.createRequest())
	s.NoError(err)

	s.NoError(s.service.ArchiveAddon(ctx, a.ID))
	s.Equal(1, s.GetGateway().CallCount("ArchivePrice"))
	s.Equal(1, s.GetGateway().CallCount("ArchiveProduct"))

	_, err = s.GetStores().AddonRepo.Get(ctx, a.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *AddonServiceSuite) TestCreateAddonInvalidRequest() {
	ctx := s.GetContext()

	req := s.createRequest()
	req.Currency = "australian dollars"
	_, err := s.service.CreateAddon(ctx, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
