package service

import (
	"testing"

	"github.com/membermatters/memberportal/internal/cache"
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

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService

	testData struct {
		plan   *plan.Plan
		member *member.Member
	}
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewSubscriptionService(ServiceParams{
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
	s.testData.plan = &plan.Plan{
		ID:            "plan_standard",
		Name:          "Standard",
		Currency:      "aud",
		Cost:          decimal.NewFromInt(8000),
		Interval:      types.BillingPeriodMonth,
		IntervalCount: 1,
		Visible:       true,
		StripePriceID: "price_standard",
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.testData.plan))

	s.NoError(s.GetStores().SettingsRepo.Update(ctx, &settings.BillingSettings{
		ID:                   "billing_settings",
		DefaultPaymentPlanID: lo.ToPtr(s.testData.plan.ID),
		StripeEnabled:        true,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}))

	s.testData.member = &member.Member{
		ID:                 "member_sub",
		Email:              "sub@example.com",
		FirstName:          "Sub",
		LastName:           "Scriber",
		State:              types.MemberStateActive,
		SubscriptionStatus: types.SubscriptionStatusNone,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, s.testData.member))
}

func (s *SubscriptionServiceSuite) TestSignup() {
	ctx := s.GetContext()

	resp, err := s.service.Signup(ctx, s.testData.member.ID, s.testData.plan.ID)
	s.NoError(err)
	s.NotNil(resp)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)

	m, err := s.GetStores().MemberRepo.Get(ctx, s.testData.member.ID)
	s.NoError(err)
	s.True(m.HasActiveSubscription())
	s.Equal(s.testData.plan.ID, *m.MembershipPlanID)
	s.NotEmpty(m.StripeCustomerID)
	s.Equal(1, s.GetGateway().CallCount("CreateCustomer"))
	s.Equal(1, s.GetGateway().CallCount("CreateSubscription"))
}

func (s *SubscriptionServiceSuite) TestSignupRejectsSecondSubscription() {
	ctx := s.GetContext()

	_, err := s.service.Signup(ctx, s.testData.member.ID, s.testData.plan.ID)
	s.NoError(err)

	_, err = s.service.Signup(ctx, s.testData.member.ID, s.testData.plan.ID)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *SubscriptionServiceSuite) TestSignupRejectsGroupMember() {
	ctx := s.GetContext()

	s.testData.member.BillingGroupID = lo.ToPtr("bg_1")
	s.NoError(s.GetStores().MemberRepo.Update(ctx, s.testData.member))

	_, err := s.service.Signup(ctx, s.testData.member.ID, s.testData.plan.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestSignupRejectsHiddenPlan() {
	ctx := s.GetContext()

	s.testData.plan.Visible = false
	s.NoError(s.GetStores().PlanRepo.Update(ctx, s.testData.plan))

	_, err := s.service.Signup(ctx, s.testData.member.ID, s.testData.plan.ID)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestCancelAtPeriodEndAndResume() {
	ctx := s.GetContext()

	_, err := s.service.Signup(ctx, s.testData.member.ID, s.testData.plan.ID)
	s.NoError(err)

	resp, err := s.service.CancelAtPeriodEnd(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelling, resp.SubscriptionStatus)
	s.NotNil(resp.Subscription)
	s.True(resp.Subscription.CancelAtPeriodEnd)

	resp, err = s.service.Resume(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, resp.SubscriptionStatus)
	s.False(resp.Subscription.CancelAtPeriodEnd)
}

func (s *SubscriptionServiceSuite) TestCancelWithoutSubscription() {
	ctx := s.GetContext()

	_, err := s.service.CancelAtPeriodEnd(ctx, s.testData.member.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestCancelWithProration() {
	ctx := s.GetContext()

	s.Run("active subscription is cancelled and cleared", func() {
		m := s.testData.member
		m.StripeCustomerID = "cus_x"
		m.StripeSubscriptionID = lo.ToPtr("sub_x")
		m.SubscriptionStatus = types.SubscriptionStatusActive
		s.NoError(s.GetStores().MemberRepo.Update(ctx, m))
		s.GetGateway().SeedSubscription(&provider.Subscription{
			ID:         "sub_x",
			CustomerID: "cus_x",
			Status:     "active",
		})

		s.NoError(s.service.CancelWithProration(ctx, m))
		s.Nil(m.StripeSubscriptionID)
		s.Equal(1, s.GetGateway().CallCount("CancelSubscription"))
	})

	s.Run("subscription already gone remotely reconciles locally", func() {
		m := s.testData.member
		m.StripeSubscriptionID = lo.ToPtr("sub_vanished")
		s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

		s.NoError(s.service.CancelWithProration(ctx, m))
		s.Nil(m.StripeSubscriptionID)
		// No second cancel call was made.
		s.Equal(1, s.GetGateway().CallCount("CancelSubscription"))
	})

	s.Run("no subscription reference is a no-op", func() {
		s.NoError(s.service.CancelWithProration(ctx, s.testData.member))
	})
}

func (s *SubscriptionServiceSuite) TestCreateIndividualSubscriptionRequiresDefaultPlan() {
	ctx := s.GetContext()

	s.NoError(s.GetStores().SettingsRepo.Update(ctx, &settings.BillingSettings{
		ID:            "billing_settings",
		StripeEnabled: true,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}))

	err := s.service.CreateIndividualSubscription(ctx, s.testData.member)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestSubscriptionInfoWithoutSubscription() {
	ctx := s.GetContext()

	resp, err := s.service.SubscriptionInfo(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Nil(resp.Subscription)
	s.Equal(types.SubscriptionStatusNone, resp.SubscriptionStatus)
}
