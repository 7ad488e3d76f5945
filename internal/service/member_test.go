package service

import (
	"testing"

	"github.com/membermatters/memberportal/internal/cache"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/testutil"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type MemberServiceSuite struct {
	testutil.BaseServiceTestSuite
	service MemberService

	testData struct {
		member *member.Member
	}
}

func TestMemberService(t *testing.T) {
	suite.Run(t, new(MemberServiceSuite))
}

func (s *MemberServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.service = NewMemberService(ServiceParams{
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
	s.testData.member = &member.Member{
		ID:                 "member_card",
		Email:              "card@example.com",
		FirstName:          "Card",
		LastName:           "Holder",
		State:              types.MemberStateActive,
		SubscriptionStatus: types.SubscriptionStatusNone,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, s.testData.member))
}

func (s *MemberServiceSuite) TestEnsureCustomerIsIdempotent() {
	ctx := s.GetContext()

	m, err := s.service.EnsureCustomer(ctx, s.testData.member.ID)
	s.NoError(err)
	s.NotEmpty(m.StripeCustomerID)

	again, err := s.service.EnsureCustomer(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Equal(m.StripeCustomerID, again.StripeCustomerID)
	s.Equal(1, s.GetGateway().CallCount("CreateCustomer"))
}

func (s *MemberServiceSuite) TestAttachCard() {
	ctx := s.GetContext()

	m, err := s.service.AttachCard(ctx, s.testData.member.ID, "pm_test")
	s.NoError(err)
	s.NotEmpty(m.StripeCustomerID)
	s.NotEmpty(m.StripePaymentMethodID)
	s.Equal("4242", m.StripeCardLastDigits)
	s.NotEmpty(m.StripeCardExpiry)
	s.Equal(1, s.GetGateway().CallCount("AttachPaymentMethod"))
}

func (s *MemberServiceSuite) TestDetachCardWithoutCard() {
	ctx := s.GetContext()

	_, err := s.service.DetachCard(ctx, s.testData.member.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *MemberServiceSuite) TestDetachCardWithActiveSubscription() {
	ctx := s.GetContext()

	_, err := s.service.AttachCard(ctx, s.testData.member.ID, "pm_test")
	s.NoError(err)

	s.testData.member.StripeSubscriptionID = lo.ToPtr("sub_active")
	s.testData.member.SubscriptionStatus = types.SubscriptionStatusActive
	s.NoError(s.GetStores().MemberRepo.Update(ctx, s.testData.member))

	_, err = s.service.DetachCard(ctx, s.testData.member.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(0, s.GetGateway().CallCount("DetachPaymentMethod"))
}

func (s *MemberServiceSuite) TestDetachCard() {
	ctx := s.GetContext()

	_, err := s.service.AttachCard(ctx, s.testData.member.ID, "pm_test")
	s.NoError(err)

	m, err := s.service.DetachCard(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Empty(m.StripePaymentMethodID)
	s.Empty(m.StripeCardLastDigits)
	s.Empty(m.StripeCardExpiry)
	s.Equal(1, s.GetGateway().CallCount("DetachPaymentMethod"))
}

func (s *MemberServiceSuite) TestBillingInfoExpandsSubscription() {
	ctx := s.GetContext()

	s.testData.member.StripeCustomerID = "cus_card"
	s.testData.member.StripeSubscriptionID = lo.ToPtr("sub_info")
	s.testData.member.SubscriptionStatus = types.SubscriptionStatusActive
	s.NoError(s.GetStores().MemberRepo.Update(ctx, s.testData.member))
	s.GetGateway().SeedSubscription(&provider.Subscription{
		ID:         "sub_info",
		CustomerID: "cus_card",
		Status:     "active",
	})

	resp, err := s.service.BillingInfo(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Equal("sub_info", resp.StripeSubscriptionID)
	s.NotNil(resp.Subscription)
	s.Equal("active", resp.Subscription.Status)
}

func (s *MemberServiceSuite) TestBillingInfoVanishedRemoteSubscription() {
	ctx := s.GetContext()

	s.testData.member.StripeSubscriptionID = lo.ToPtr("sub_gone")
	s.NoError(s.GetStores().MemberRepo.Update(ctx, s.testData.member))

	resp, err := s.service.BillingInfo(ctx, s.testData.member.ID)
	s.NoError(err)
	s.Nil(resp.Subscription)
}
