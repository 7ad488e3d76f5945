package service

import (
	"testing"

	"github.com/membermatters/memberportal/internal/cache"
	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/testutil"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ItemSyncServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ItemSyncService

	testData struct {
		addon   *addon.Addon
		group   *billinggroup.BillingGroup
		primary *member.Member
		lock    *pricinglock.PricingLock
	}
}

func TestItemSyncService(t *testing.T) {
	suite.Run(t, new(ItemSyncServiceSuite))
}

func (s *ItemSyncServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewItemSyncService(ServiceParams{
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

	s.testData.primary = &member.Member{
		ID:                   "member_primary",
		Email:                "primary@example.com",
		FirstName:            "Prim",
		LastName:             "Ary",
		State:                types.MemberStateActive,
		SubscriptionStatus:   types.SubscriptionStatusActive,
		StripeCustomerID:     "cus_primary",
		StripeSubscriptionID: lo.ToPtr("sub_primary"),
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, s.testData.primary))

	s.testData.group = &billinggroup.BillingGroup{
		ID:              "bg_sync",
		LookupKey:       "BG-SYNC",
		Name:            "Sync Group",
		PrimaryMemberID: s.testData.primary.ID,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BillingGroupRepo.Create(ctx, s.testData.group))

	s.GetGateway().SeedSubscription(&provider.Subscription{
		ID:         "sub_primary",
		CustomerID: "cus_primary",
		Status:     "active",
	})

	s.testData.lock = &pricinglock.PricingLock{
		ID:                  "lock_1",
		BillingGroupID:      s.testData.group.ID,
		MemberID:            "member_secondary",
		AddonID:             s.testData.addon.ID,
		LockedCost:          decimal.NewFromInt(500),
		LockedCurrency:      "aud",
		LockedInterval:      types.BillingPeriodMonth,
		LockedIntervalCount: 1,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PricingLockRepo.Create(ctx, s.testData.lock))
}

func (s *ItemSyncServiceSuite) TestEnsureItemCreatesProviderObjects() {
	ctx := s.GetContext()

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Empty(warnings)

	s.Equal(1, s.GetGateway().CallCount("CreateProduct"))
	s.Equal(1, s.GetGateway().CallCount("CreatePrice"))
	s.Equal(1, s.GetGateway().CallCount("AddSubscriptionItem"))

	stored, err := s.GetStores().PricingLockRepo.Get(ctx, s.testData.lock.ID)
	s.NoError(err)
	s.NotNil(stored.StripePriceID)
	s.NotNil(stored.StripeSubscriptionItemID)

	// The addon keeps the new product so the next lock reuses it.
	a, err := s.GetStores().AddonRepo.Get(ctx, s.testData.addon.ID)
	s.NoError(err)
	s.NotEmpty(a.StripeProductID)

	sub, err := s.GetGateway().GetSubscription(ctx, "sub_primary")
	s.NoError(err)
	s.Len(sub.Items, 1)
	s.Equal(*stored.StripePriceID, sub.Items[0].PriceID)
}

func (s *ItemSyncServiceSuite) TestEnsureItemIsIdempotent() {
	ctx := s.GetContext()

	_, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Empty(warnings)

	s.Equal(1, s.GetGateway().CallCount("CreatePrice"))
	s.Equal(1, s.GetGateway().CallCount("AddSubscriptionItem"))
}

func (s *ItemSyncServiceSuite) TestEnsureItemReusesExistingProduct() {
	ctx := s.GetContext()
	s.testData.addon.StripeProductID = "prod_existing"
	s.NoError(s.GetStores().AddonRepo.Update(ctx, s.testData.addon))

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Empty(warnings)
	s.Equal(0, s.GetGateway().CallCount("CreateProduct"))
	s.Equal(1, s.GetGateway().CallCount("CreatePrice"))
}

func (s *ItemSyncServiceSuite) TestEnsureItemDefersWithoutPrimarySubscription() {
	ctx := s.GetContext()
	s.testData.primary.StripeSubscriptionID = nil
	s.testData.primary.SubscriptionStatus = types.SubscriptionStatusNone
	s.NoError(s.GetStores().MemberRepo.Update(ctx, s.testData.primary))

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Empty(warnings)

	stored, err := s.GetStores().PricingLockRepo.Get(ctx, s.testData.lock.ID)
	s.NoError(err)
	s.NotNil(stored.StripePriceID)
	s.Nil(stored.StripeSubscriptionItemID)
	s.Equal(0, s.GetGateway().CallCount("AddSubscriptionItem"))
}

func (s *ItemSyncServiceSuite) TestEnsureItemPriceFailureIsWarning() {
	ctx := s.GetContext()
	s.GetGateway().FailWith("CreatePrice", ierr.NewError("provider unavailable").
		WithHint("Payment provider request failed").
		Mark(ierr.ErrProvider))

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Len(warnings, 1)
	s.Equal(WarnItemSyncFailed, warnings[0].Code)

	stored, err := s.GetStores().PricingLockRepo.Get(ctx, s.testData.lock.ID)
	s.NoError(err)
	s.Nil(stored.StripePriceID)
	s.Equal(0, s.GetGateway().CallCount("AddSubscriptionItem"))
}

func (s *ItemSyncServiceSuite) TestEnsureItemAttachFailureIsWarning() {
	ctx := s.GetContext()
	s.GetGateway().FailWith("AddSubscriptionItem", ierr.NewError("provider unavailable").
		WithHint("Payment provider request failed").
		Mark(ierr.ErrProvider))

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Len(warnings, 1)
	s.Equal(WarnItemSyncFailed, warnings[0].Code)

	// The price half of the sync survives for a later retry.
	stored, err := s.GetStores().PricingLockRepo.Get(ctx, s.testData.lock.ID)
	s.NoError(err)
	s.NotNil(stored.StripePriceID)
	s.Nil(stored.StripeSubscriptionItemID)
}

func (s *ItemSyncServiceSuite) TestEnsureItemPricePersistFailureIsWarning() {
	ctx := s.GetContext()

	// The lock row vanished between the transition commit and the sync.
	s.NoError(s.GetStores().PricingLockRepo.Delete(ctx, s.testData.lock.ID))

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Len(warnings, 1)
	s.Equal(WarnItemSyncFailed, warnings[0].Code)

	// An unrecorded price is harmless, an unrecorded item would not be.
	s.Equal(1, s.GetGateway().CallCount("CreatePrice"))
	s.Equal(0, s.GetGateway().CallCount("AddSubscriptionItem"))
}

func (s *ItemSyncServiceSuite) TestEnsureItemItemPersistFailureCompensates() {
	ctx := s.GetContext()

	s.testData.addon.StripeProductID = "prod_existing"
	s.NoError(s.GetStores().AddonRepo.Update(ctx, s.testData.addon))
	s.testData.lock.StripePriceID = lo.ToPtr("price_locked")
	s.NoError(s.GetStores().PricingLockRepo.Update(ctx, s.testData.lock))

	// Row disappears after the price phase, so only the item write fails.
	s.NoError(s.GetStores().PricingLockRepo.Delete(ctx, s.testData.lock.ID))

	warnings, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Len(warnings, 1)
	s.Equal(WarnItemSyncFailed, warnings[0].Code)
	s.Nil(s.testData.lock.StripeSubscriptionItemID)

	// The item that could not be recorded was taken back off the
	// primary's subscription.
	s.Equal(1, s.GetGateway().CallCount("AddSubscriptionItem"))
	s.Equal(1, s.GetGateway().CallCount("RemoveSubscriptionItem"))
	sub, err := s.GetGateway().GetSubscription(ctx, "sub_primary")
	s.NoError(err)
	s.Empty(sub.Items)
}

func (s *ItemSyncServiceSuite) TestRemoveItem() {
	ctx := s.GetContext()

	_, err := s.service.EnsureItem(ctx, s.testData.lock)
	s.NoError(err)
	s.NotNil(s.testData.lock.StripeSubscriptionItemID)

	removal, err := s.service.RemoveItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Equal(provider.ItemRemoved, removal)
	s.Nil(s.testData.lock.StripeSubscriptionItemID)

	sub, err := s.GetGateway().GetSubscription(ctx, "sub_primary")
	s.NoError(err)
	s.Empty(sub.Items)

	// A second removal never reaches the provider.
	removal, err = s.service.RemoveItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Equal(provider.ItemAlreadyAbsent, removal)
	s.Equal(1, s.GetGateway().CallCount("RemoveSubscriptionItem"))
}

func (s *ItemSyncServiceSuite) TestRemoveItemNeverSynchronized() {
	ctx := s.GetContext()

	removal, err := s.service.RemoveItem(ctx, s.testData.lock)
	s.NoError(err)
	s.Equal(provider.ItemAlreadyAbsent, removal)
	s.Equal(0, s.GetGateway().CallCount("RemoveSubscriptionItem"))
}
