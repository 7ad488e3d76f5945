package service

import (
	"testing"

	"github.com/membermatters/memberportal/internal/cache"
	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/settings"
	"github.com/membermatters/memberportal/internal/testutil"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PricingLockServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PricingLockService

	testData struct {
		addon  *addon.Addon
		group  *billinggroup.BillingGroup
		member *member.Member
	}
}

func TestPricingLockService(t *testing.T) {
	suite.Run(t, new(PricingLockServiceSuite))
}

func (s *PricingLockServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewPricingLockService(ServiceParams{
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

	ctx := s.GetContext()
	s.testData.addon = &addon.Addon{
		ID:            "addon_member",
		Name:          "Additional Member",
		AddonType:     types.AddonTypeAdditionalMember,
		Currency:      "aud",
		Cost:          decimal.NewFromInt(500),
		Interval:      types.BillingPeriodMonth,
		IntervalCount: 1,
		Visible:       true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().AddonRepo.Create(ctx, s.testData.addon))

	s.NoError(s.GetStores().SettingsRepo.Update(ctx, &settings.BillingSettings{
		ID:                      "billing_settings",
		AdditionalMemberAddonID: lo.ToPtr(s.testData.addon.ID),
		StripeEnabled:           true,
		BaseModel:               types.GetDefaultBaseModel(ctx),
	}))

	s.testData.group = &billinggroup.BillingGroup{
		ID:              "bg_lock",
		LookupKey:       "BG-LOCK",
		Name:            "Lock Group",
		PrimaryMemberID: "member_primary",
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BillingGroupRepo.Create(ctx, s.testData.group))

	s.testData.member = &member.Member{
		ID:                 "member_lockee",
		Email:              "lockee@example.com",
		FirstName:          "Lock",
		LastName:           "Ee",
		State:              types.MemberStateActive,
		SubscriptionStatus: types.SubscriptionStatusNone,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, s.testData.member))
}

func (s *PricingLockServiceSuite) TestLockCopiesCatalogPricing() {
	ctx := s.GetContext()

	lock, warnings, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)
	s.Empty(warnings)
	s.NotNil(lock)
	s.True(lock.LockedCost.Equal(decimal.NewFromInt(500)))
	s.Equal("aud", lock.LockedCurrency)
	s.Equal(types.BillingPeriodMonth, lock.LockedInterval)
	s.Equal(1, lock.LockedIntervalCount)
	// The lock gets its own provider price lazily, never the addon's.
	s.Nil(lock.StripePriceID)
}

func (s *PricingLockServiceSuite) TestLockIsIdempotentPerPair() {
	ctx := s.GetContext()

	first, _, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)

	s.testData.addon.Cost = decimal.NewFromInt(700)
	s.NoError(s.GetStores().AddonRepo.Update(ctx, s.testData.addon))

	second, warnings, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)
	s.Empty(warnings)
	s.Equal(first.ID, second.ID)
	s.True(second.LockedCost.Equal(decimal.NewFromInt(500)))

	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, s.testData.member.ID)
	s.NoError(err)
	s.Len(locks, 1)
}

func (s *PricingLockServiceSuite) TestLockWithoutSettings() {
	ctx := s.GetContext()
	s.GetStores().SettingsRepo.(*testutil.InMemorySettingsStore).Clear()

	lock, warnings, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)
	s.Nil(lock)
	s.Len(warnings, 1)
	s.Equal(WarnPricingNotLocked, warnings[0].Code)
}

func (s *PricingLockServiceSuite) TestLockWithMissingAddon() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().SettingsRepo.Update(ctx, &settings.BillingSettings{
		ID:                      "billing_settings",
		AdditionalMemberAddonID: lo.ToPtr("addon_deleted"),
		StripeEnabled:           true,
		BaseModel:               types.GetDefaultBaseModel(ctx),
	}))

	lock, warnings, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)
	s.Nil(lock)
	s.Len(warnings, 1)
	s.Equal(WarnAddonUnresolvable, warnings[0].Code)
}

func (s *PricingLockServiceSuite) TestLockWithHiddenAddon() {
	ctx := s.GetContext()
	s.testData.addon.Visible = false
	s.NoError(s.GetStores().AddonRepo.Update(ctx, s.testData.addon))

	lock, warnings, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)
	s.Nil(lock)
	s.Len(warnings, 1)
	s.Equal(WarnAddonUnresolvable, warnings[0].Code)
}

func (s *PricingLockServiceSuite) TestLockWithWrongAddonType() {
	ctx := s.GetContext()
	s.testData.addon.AddonType = types.AddonTypeStorage
	s.NoError(s.GetStores().AddonRepo.Update(ctx, s.testData.addon))

	lock, warnings, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)
	s.Nil(lock)
	s.Len(warnings, 1)
	s.Equal(WarnAddonUnresolvable, warnings[0].Code)
}

func (s *PricingLockServiceSuite) TestUnlock() {
	ctx := s.GetContext()

	_, _, err := s.service.Lock(ctx, s.testData.group, s.testData.member)
	s.NoError(err)

	s.NoError(s.service.Unlock(ctx, s.testData.group.ID, s.testData.member.ID))

	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, s.testData.member.ID)
	s.NoError(err)
	s.Empty(locks)

	// Unlocking again is a no-op.
	s.NoError(s.service.Unlock(ctx, s.testData.group.ID, s.testData.member.ID))
}
