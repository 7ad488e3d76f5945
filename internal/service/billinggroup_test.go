package service

import (
	"context"
	"testing"

	"github.com/membermatters/memberportal/internal/cache"
	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/plan"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/domain/settings"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/testutil"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingGroupServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingGroupService
	subs    SubscriptionService

	testData struct {
		addon   *addon.Addon
		plan    *plan.Plan
		primary *member.Member
		group   *billinggroup.BillingGroup
	}
}

func TestBillingGroupService(t *testing.T) {
	suite.Run(t, new(BillingGroupServiceSuite))
}

func (s *BillingGroupServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *BillingGroupServiceSuite) serviceParams() ServiceParams {
	return ServiceParams{
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
	}
}

func (s *BillingGroupServiceSuite) setupService() {
	params := s.serviceParams()
	s.subs = NewSubscriptionService(params)
	s.service = NewBillingGroupService(
		params,
		NewPricingLockService(params),
		NewItemSyncService(params),
		s.subs,
	)
}

func (s *BillingGroupServiceSuite) setupTestData() {
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

	s.testData.plan = &plan.Plan{
		ID:            "plan_default",
		Name:          "Standard",
		Currency:      "aud",
		Cost:          decimal.NewFromInt(8000),
		Interval:      types.BillingPeriodMonth,
		IntervalCount: 1,
		Visible:       true,
		StripePriceID: "price_default",
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.testData.plan))

	s.NoError(s.GetStores().SettingsRepo.Update(ctx, &settings.BillingSettings{
		ID:                      "billing_settings",
		AdditionalMemberAddonID: lo.ToPtr(s.testData.addon.ID),
		DefaultPaymentPlanID:    lo.ToPtr(s.testData.plan.ID),
		StripeEnabled:           true,
		BaseModel:               types.GetDefaultBaseModel(ctx),
	}))

	s.testData.primary = s.createMember("member_primary", "primary@example.com")
	s.testData.primary.StripeCustomerID = "cus_primary"
	s.testData.primary.StripeSubscriptionID = lo.ToPtr("sub_primary")
	s.testData.primary.SubscriptionStatus = types.SubscriptionStatusActive
	s.testData.primary.State = types.MemberStateActive
	s.NoError(s.GetStores().MemberRepo.Update(ctx, s.testData.primary))
	s.GetGateway().SeedSubscription(&provider.Subscription{
		ID:         "sub_primary",
		CustomerID: "cus_primary",
		Status:     "active",
	})

	group, err := s.service.CreateGroup(ctx, "Test Group", s.testData.primary.ID)
	s.NoError(err)
	s.testData.group = group
}

func (s *BillingGroupServiceSuite) createMember(id, email string) *member.Member {
	m := &member.Member{
		ID:                 id,
		Email:              email,
		FirstName:          "Test",
		LastName:           "Member",
		State:              types.MemberStateActive,
		SubscriptionStatus: types.SubscriptionStatusNone,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().MemberRepo.Create(s.GetContext(), m))
	return m
}

func (s *BillingGroupServiceSuite) getMember(ctx context.Context, id string) *member.Member {
	m, err := s.GetStores().MemberRepo.Get(ctx, id)
	s.NoError(err)
	return m
}

func (s *BillingGroupServiceSuite) TestCreateGroup() {
	ctx := s.GetContext()

	s.Run("primary becomes a member of their own group", func() {
		primary := s.getMember(ctx, s.testData.primary.ID)
		s.True(primary.InGroup())
		s.Equal(s.testData.group.ID, *primary.BillingGroupID)
		// The primary's own subscription is the billing vehicle.
		s.Equal("sub_primary", *primary.StripeSubscriptionID)
	})

	s.Run("member already in a group cannot be primary of another", func() {
		_, err := s.service.CreateGroup(ctx, "Second Group", s.testData.primary.ID)
		s.Error(err)
		s.True(ierr.IsAlreadyExists(err))
	})

	s.Run("member with a pending invite cannot create a group", func() {
		m := s.createMember("member_invited_create", "invited-create@example.com")
		m.BillingGroupInviteID = lo.ToPtr(s.testData.group.ID)
		s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

		_, err := s.service.CreateGroup(ctx, "Invitee Group", m.ID)
		s.Error(err)
		s.True(ierr.IsAlreadyExists(err))
	})
}

func (s *BillingGroupServiceSuite) TestAddMemberCancelsIndividualSubscription() {
	ctx := s.GetContext()

	m := s.createMember("member_a", "a@example.com")
	m.StripeCustomerID = "cus_a"
	m.StripeSubscriptionID = lo.ToPtr("sub_123")
	m.SubscriptionStatus = types.SubscriptionStatusActive
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))
	s.GetGateway().SeedSubscription(&provider.Subscription{
		ID:         "sub_123",
		CustomerID: "cus_a",
		Status:     "active",
	})

	result, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(result.Warnings)

	got := s.getMember(ctx, m.ID)
	s.True(got.InGroup())
	s.Equal(s.testData.group.ID, *got.BillingGroupID)
	s.Nil(got.StripeSubscriptionID)
	s.Equal(1, s.GetGateway().CallCount("CancelSubscription"))

	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Len(locks, 1)
	s.True(locks[0].LockedCost.Equal(decimal.NewFromInt(500)))
	s.NotNil(locks[0].StripeSubscriptionItemID)

	s.Equal(1, s.GetNotifier().CountByKind("added_to_group"))
}

func (s *BillingGroupServiceSuite) TestAddMemberSubscriptionAlreadyGoneRemotely() {
	ctx := s.GetContext()

	// Local reference points at a subscription the provider no longer has.
	m := s.createMember("member_stale", "stale@example.com")
	m.StripeSubscriptionID = lo.ToPtr("sub_gone")
	m.SubscriptionStatus = types.SubscriptionStatusActive
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

	result, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(result.Warnings)

	got := s.getMember(ctx, m.ID)
	s.True(got.InGroup())
	s.Nil(got.StripeSubscriptionID)
	s.Equal(0, s.GetGateway().CallCount("CancelSubscription"))
}

func (s *BillingGroupServiceSuite) TestAddMemberAbortsWhenCancellationFails() {
	ctx := s.GetContext()

	m := s.createMember("member_fail", "fail@example.com")
	m.StripeCustomerID = "cus_fail"
	m.StripeSubscriptionID = lo.ToPtr("sub_fail")
	m.SubscriptionStatus = types.SubscriptionStatusActive
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))
	s.GetGateway().SeedSubscription(&provider.Subscription{
		ID:         "sub_fail",
		CustomerID: "cus_fail",
		Status:     "active",
	})

	providerErr := ierr.NewError("provider unavailable").Mark(ierr.ErrProvider)
	s.GetGateway().FailWith("CancelSubscription", providerErr)

	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.Error(err)
	s.True(ierr.IsProvider(err))

	// Nothing downstream was mutated.
	got := s.getMember(ctx, m.ID)
	s.False(got.InGroup())
	s.Equal("sub_fail", *got.StripeSubscriptionID)
	locks, lerr := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(lerr)
	s.Empty(locks)
}

func (s *BillingGroupServiceSuite) TestAddMemberMovesBetweenGroups() {
	ctx := s.GetContext()

	otherPrimary := s.createMember("member_primary_b", "primary-b@example.com")
	groupB, err := s.service.CreateGroup(ctx, "Group B", otherPrimary.ID)
	s.NoError(err)

	m := s.createMember("member_mover", "mover@example.com")
	_, err = s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	result, err := s.service.AddMember(ctx, groupB.ID, m.ID)
	s.NoError(err)
	s.NotNil(result)

	// Exactly one group membership, never both.
	got := s.getMember(ctx, m.ID)
	s.Equal(groupB.ID, *got.BillingGroupID)

	oldLocks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(oldLocks)
	newLocks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, groupB.ID, m.ID)
	s.NoError(err)
	s.Len(newLocks, 1)
}

func (s *BillingGroupServiceSuite) TestAddMemberAlreadyInThisGroup() {
	ctx := s.GetContext()

	m := s.createMember("member_dup", "dup@example.com")
	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	_, err = s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *BillingGroupServiceSuite) TestPricingLockImmutableAcrossCatalogChange() {
	ctx := s.GetContext()

	m := s.createMember("member_locked", "locked@example.com")
	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	// Catalog price rises after the member joined.
	s.testData.addon.Cost = decimal.NewFromInt(700)
	s.NoError(s.GetStores().AddonRepo.Update(ctx, s.testData.addon))

	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Len(locks, 1)
	s.True(locks[0].LockedCost.Equal(decimal.NewFromInt(500)))

	// A later joiner locks the new price.
	m2 := s.createMember("member_late", "late@example.com")
	_, err = s.service.AddMember(ctx, s.testData.group.ID, m2.ID)
	s.NoError(err)
	locks2, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m2.ID)
	s.NoError(err)
	s.Len(locks2, 1)
	s.True(locks2[0].LockedCost.Equal(decimal.NewFromInt(700)))
}

func (s *BillingGroupServiceSuite) TestAddMemberWithoutConfiguredAddon() {
	ctx := s.GetContext()

	s.NoError(s.GetStores().SettingsRepo.Update(ctx, &settings.BillingSettings{
		ID:            "billing_settings",
		StripeEnabled: true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}))

	m := s.createMember("member_nolock", "nolock@example.com")
	result, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Len(result.Warnings, 1)
	s.Equal(WarnPricingNotLocked, result.Warnings[0].Code)
	s.NotEmpty(result.Warnings[0].Remediation)

	s.True(s.getMember(ctx, m.ID).InGroup())
}

func (s *BillingGroupServiceSuite) TestAddMemberItemSyncFailureIsWarning() {
	ctx := s.GetContext()

	s.GetGateway().FailWith("CreatePrice", ierr.NewError("provider unavailable").Mark(ierr.ErrProvider))

	m := s.createMember("member_syncfail", "syncfail@example.com")
	result, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Len(result.Warnings, 1)
	s.Equal(WarnItemSyncFailed, result.Warnings[0].Code)

	// Membership and the lock row itself still landed.
	s.True(s.getMember(ctx, m.ID).InGroup())
	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Len(locks, 1)
	s.Nil(locks[0].StripePriceID)
}

func (s *BillingGroupServiceSuite) TestRemoveMember() {
	ctx := s.GetContext()

	m := s.createMember("member_leaver", "leaver@example.com")
	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	result, err := s.service.RemoveMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(result.Warnings)

	got := s.getMember(ctx, m.ID)
	s.False(got.InGroup())
	// Back on the default plan with their own subscription.
	s.NotNil(got.StripeSubscriptionID)
	s.Equal(s.testData.plan.ID, *got.MembershipPlanID)

	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(locks)
	s.Equal(1, s.GetGateway().CallCount("RemoveSubscriptionItem"))
	s.Equal(1, s.GetNotifier().CountByKind("removed_from_group"))
}

func (s *BillingGroupServiceSuite) TestRemoveMemberNoDefaultPlanIsWarning() {
	ctx := s.GetContext()

	m := s.createMember("member_nosub", "nosub@example.com")
	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	s.NoError(s.GetStores().SettingsRepo.Update(ctx, &settings.BillingSettings{
		ID:                      "billing_settings",
		AdditionalMemberAddonID: lo.ToPtr(s.testData.addon.ID),
		StripeEnabled:           true,
		BaseModel:               types.GetDefaultBaseModel(ctx),
	}))

	result, err := s.service.RemoveMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Len(result.Warnings, 1)
	s.Equal(WarnSubscriptionNotCreated, result.Warnings[0].Code)

	got := s.getMember(ctx, m.ID)
	s.False(got.InGroup())
	s.Nil(got.StripeSubscriptionID)
}

func (s *BillingGroupServiceSuite) TestRemoveMemberItemRemovalFailureIsWarning() {
	ctx := s.GetContext()

	m := s.createMember("member_badremove", "badremove@example.com")
	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	s.GetGateway().FailWith("RemoveSubscriptionItem", ierr.NewError("provider unavailable").Mark(ierr.ErrProvider))

	result, err := s.service.RemoveMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	var codes []WarningCode
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	s.Contains(codes, WarnItemRemoveFailed)

	// Local state is cleaned regardless.
	s.False(s.getMember(ctx, m.ID).InGroup())
	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(locks)
}

func (s *BillingGroupServiceSuite) TestRemoveMemberRejectsPrimary() {
	ctx := s.GetContext()

	_, err := s.service.RemoveMember(ctx, s.testData.group.ID, s.testData.primary.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.True(s.getMember(ctx, s.testData.primary.ID).InGroup())
}

func (s *BillingGroupServiceSuite) TestRemoveMemberNotInGroup() {
	ctx := s.GetContext()

	m := s.createMember("member_outside", "outside@example.com")
	_, err := s.service.RemoveMember(ctx, s.testData.group.ID, m.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingGroupServiceSuite) TestDeleteGroupWithMembersIsConflict() {
	ctx := s.GetContext()

	m := s.createMember("member_blocking", "blocking@example.com")
	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	err = s.service.DeleteGroup(ctx, s.testData.group.ID)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	// Nothing changed.
	_, err = s.GetStores().BillingGroupRepo.Get(ctx, s.testData.group.ID)
	s.NoError(err)
	s.True(s.getMember(ctx, m.ID).InGroup())
}

func (s *BillingGroupServiceSuite) TestDeleteGroupWithOnlyPrimary() {
	ctx := s.GetContext()

	invited := s.createMember("member_pending", "pending@example.com")
	_, err := s.service.InviteMember(ctx, s.testData.group.ID, invited.ID)
	s.NoError(err)

	err = s.service.DeleteGroup(ctx, s.testData.group.ID)
	s.NoError(err)

	_, err = s.GetStores().BillingGroupRepo.Get(ctx, s.testData.group.ID)
	s.True(ierr.IsNotFound(err))

	primary := s.getMember(ctx, s.testData.primary.ID)
	s.False(primary.InGroup())
	// The primary keeps their own subscription.
	s.Equal("sub_primary", *primary.StripeSubscriptionID)

	// Outstanding invites were cancelled with their locks.
	got := s.getMember(ctx, invited.ID)
	s.False(got.HasPendingInvite())
	locks, err := s.GetStores().PricingLockRepo.ListByGroup(ctx, s.testData.group.ID)
	s.NoError(err)
	s.Empty(locks)
}

func (s *BillingGroupServiceSuite) TestInviteFlow() {
	ctx := s.GetContext()

	m := s.createMember("member_invitee", "invitee@example.com")

	s.Run("invite locks pricing without provider items", func() {
		result, err := s.service.InviteMember(ctx, s.testData.group.ID, m.ID)
		s.NoError(err)
		s.Empty(result.Warnings)

		got := s.getMember(ctx, m.ID)
		s.True(got.HasPendingInvite())
		s.False(got.InGroup())

		locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
		s.NoError(err)
		s.Len(locks, 1)
		s.Nil(locks[0].StripeSubscriptionItemID)
		s.Equal(1, s.GetNotifier().CountByKind("group_invite"))
	})

	s.Run("double invite is rejected", func() {
		_, err := s.service.InviteMember(ctx, s.testData.group.ID, m.ID)
		s.Error(err)
		s.True(ierr.IsAlreadyExists(err))
	})

	s.Run("accept keeps the invite-time price", func() {
		// Catalog changed between invite and accept.
		s.testData.addon.Cost = decimal.NewFromInt(900)
		s.NoError(s.GetStores().AddonRepo.Update(ctx, s.testData.addon))

		result, err := s.service.AcceptInvite(ctx, m.ID)
		s.NoError(err)
		s.NotNil(result)

		got := s.getMember(ctx, m.ID)
		s.True(got.InGroup())
		s.False(got.HasPendingInvite())

		locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
		s.NoError(err)
		s.Len(locks, 1)
		s.True(locks[0].LockedCost.Equal(decimal.NewFromInt(500)))
		// Now synchronized onto the primary's subscription.
		s.NotNil(locks[0].StripeSubscriptionItemID)
	})
}

func (s *BillingGroupServiceSuite) TestCancelInvite() {
	ctx := s.GetContext()

	m := s.createMember("member_uninvited", "uninvited@example.com")
	_, err := s.service.InviteMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	_, err = s.service.CancelInvite(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	got := s.getMember(ctx, m.ID)
	s.False(got.HasPendingInvite())
	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(locks)
	s.Equal(1, s.GetNotifier().CountByKind("group_invite_cancelled"))
}

func (s *BillingGroupServiceSuite) TestDeclineInvite() {
	ctx := s.GetContext()

	m := s.createMember("member_decliner", "decliner@example.com")
	_, err := s.service.InviteMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	_, err = s.service.DeclineInvite(ctx, m.ID)
	s.NoError(err)

	got := s.getMember(ctx, m.ID)
	s.False(got.HasPendingInvite())
	s.False(got.InGroup())
	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(locks)

	// Nothing to decline twice.
	_, err = s.service.DeclineInvite(ctx, m.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingGroupServiceSuite) TestAcceptInviteRecordsActor() {
	ctx := s.GetContext()

	m := s.createMember("member_audited", "audited@example.com")
	_, err := s.service.InviteMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	_, err = s.service.AcceptInvite(types.SetUserID(ctx, "user_accepting"), m.ID)
	s.NoError(err)

	got := s.getMember(ctx, m.ID)
	s.True(got.InGroup())
	s.Equal("user_accepting", got.UpdatedBy)
}

func (s *BillingGroupServiceSuite) TestPortalAddMemberByEmail() {
	ctx := s.GetContext()

	s.Run("primary adds a member immediately", func() {
		m := s.createMember("member_direct", "direct@example.com")

		result, err := s.service.AddMemberByEmail(ctx, s.testData.primary.ID, m.Email)
		s.NoError(err)
		s.NotNil(result)

		// No invite step, the membership takes effect straight away.
		got := s.getMember(ctx, m.ID)
		s.True(got.InGroup())
		s.False(got.HasPendingInvite())
		s.Equal(s.testData.group.ID, *got.BillingGroupID)
	})

	s.Run("primary cannot add themselves", func() {
		_, err := s.service.AddMemberByEmail(ctx, s.testData.primary.ID, s.testData.primary.Email)
		s.Error(err)
		s.True(ierr.IsValidation(err))
	})

	s.Run("cannot add a member of another group", func() {
		other := s.createMember("member_other_primary", "other-primary@example.com")
		other.StripeCustomerID = "cus_other"
		other.StripeSubscriptionID = lo.ToPtr("sub_other")
		other.SubscriptionStatus = types.SubscriptionStatusActive
		s.NoError(s.GetStores().MemberRepo.Update(ctx, other))
		s.GetGateway().SeedSubscription(&provider.Subscription{
			ID:         "sub_other",
			CustomerID: "cus_other",
			Status:     "active",
		})
		otherGroup, err := s.service.CreateGroup(ctx, "Other Group", other.ID)
		s.NoError(err)

		_, err = s.service.AddMemberByEmail(ctx, s.testData.primary.ID, other.Email)
		s.Error(err)
		s.True(ierr.IsAlreadyExists(err))
		s.Equal(otherGroup.ID, *s.getMember(ctx, other.ID).BillingGroupID)
	})

	s.Run("non-primary cannot add", func() {
		m := s.getMember(ctx, "member_direct")
		_, err := s.service.AddMemberByEmail(ctx, m.ID, "whoever@example.com")
		s.Error(err)
		s.True(ierr.IsPermissionDenied(err))
	})
}

func (s *BillingGroupServiceSuite) TestReconcileOrphanedLocks() {
	ctx := s.GetContext()

	m := s.createMember("member_orphan", "orphan@example.com")
	_, err := s.service.AddMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)

	invited := s.createMember("member_legit_invite", "legit@example.com")
	_, err = s.service.InviteMember(ctx, s.testData.group.ID, invited.ID)
	s.NoError(err)

	// Corrupt the membership pointer directly, simulating a crash that
	// skipped lock cleanup.
	m.BillingGroupID = nil
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

	removed, warnings, err := s.service.ReconcileOrphanedLocks(ctx)
	s.NoError(err)
	s.Empty(warnings)
	s.Equal(1, removed)

	locks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, m.ID)
	s.NoError(err)
	s.Empty(locks)

	// Invite-time locks survive reconciliation.
	inviteLocks, err := s.GetStores().PricingLockRepo.ListByGroupAndMember(ctx, s.testData.group.ID, invited.ID)
	s.NoError(err)
	s.Len(inviteLocks, 1)
}
