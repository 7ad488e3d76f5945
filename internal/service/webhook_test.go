package service

import (
	"testing"

	"github.com/membermatters/memberportal/internal/cache"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/testutil"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WebhookService

	testData struct {
		member *member.Member
	}
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	cfg := s.GetConfig()
	cfg.Email.OperatorAddress = "operator@example.com"

	s.service = NewWebhookService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           cfg,
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
		ID:                 "member_hook",
		Email:              "hook@example.com",
		FirstName:          "Hook",
		LastName:           "Handler",
		State:              types.MemberStateInactive,
		SubscriptionStatus: types.SubscriptionStatusNone,
		StripeCustomerID:   "cus_hook",
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().MemberRepo.Create(ctx, s.testData.member))
}

func (s *WebhookServiceSuite) deliver(eventType string) error {
	s.GetGateway().NextEvent = &provider.WebhookEvent{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		Type:       eventType,
		CustomerID: "cus_hook",
	}
	return s.service.ProcessEvent(s.GetContext(), []byte("{}"), "sig")
}

func (s *WebhookServiceSuite) getMember() *member.Member {
	m, err := s.GetStores().MemberRepo.Get(s.GetContext(), s.testData.member.ID)
	s.NoError(err)
	return m
}

func (s *WebhookServiceSuite) TestInvoicePaidActivatesLapsedMember() {
	s.NoError(s.deliver(types.WebhookEventInvoicePaid))

	m := s.getMember()
	s.Equal(types.MemberStateActive, m.State)
	s.Equal(types.SubscriptionStatusActive, m.SubscriptionStatus)
	s.NotNil(m.SubscriptionFirstCreated)
	s.Equal(1, s.GetNotifier().CountByKind("member_activated"))
	s.Equal(0, s.GetNotifier().CountByKind("manual_review_needed"))
}

func (s *WebhookServiceSuite) TestInvoicePaidSetsFirstCreatedOnce() {
	s.NoError(s.deliver(types.WebhookEventInvoicePaid))
	first := *s.getMember().SubscriptionFirstCreated

	// Redelivery of the same logical event.
	s.NoError(s.deliver(types.WebhookEventInvoicePaid))

	m := s.getMember()
	s.Equal(first, *m.SubscriptionFirstCreated)
	s.Equal(types.MemberStateActive, m.State)
}

func (s *WebhookServiceSuite) TestInvoicePaidNewMemberNeedsReview() {
	ctx := s.GetContext()
	m := s.getMember()
	m.State = types.MemberStateNoob
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

	s.NoError(s.deliver(types.WebhookEventInvoicePaid))

	m = s.getMember()
	// Billing state advances, access state waits for an operator.
	s.Equal(types.MemberStateNoob, m.State)
	s.Equal(types.SubscriptionStatusActive, m.SubscriptionStatus)
	s.Equal(1, s.GetNotifier().CountByKind("manual_review_needed"))
	s.Equal(0, s.GetNotifier().CountByKind("member_activated"))
}

func (s *WebhookServiceSuite) TestInvoicePaymentFailedNotifiesOnly() {
	ctx := s.GetContext()
	m := s.getMember()
	m.State = types.MemberStateActive
	m.SubscriptionStatus = types.SubscriptionStatusActive
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

	s.NoError(s.deliver(types.WebhookEventInvoicePaymentFailed))

	m = s.getMember()
	s.Equal(types.MemberStateActive, m.State)
	s.Equal(types.SubscriptionStatusActive, m.SubscriptionStatus)
	s.Equal(1, s.GetNotifier().CountByKind("payment_failed"))
}

func (s *WebhookServiceSuite) TestSubscriptionDeleted() {
	ctx := s.GetContext()
	m := s.getMember()
	m.State = types.MemberStateActive
	m.SubscriptionStatus = types.SubscriptionStatusActive
	m.StripeSubscriptionID = lo.ToPtr("sub_hook")
	m.MembershipPlanID = lo.ToPtr("plan_standard")
	s.NoError(s.GetStores().MemberRepo.Update(ctx, m))

	s.NoError(s.deliver(types.WebhookEventSubscriptionDeleted))

	m = s.getMember()
	s.Equal(types.MemberStateInactive, m.State)
	s.Equal(types.SubscriptionStatusInactive, m.SubscriptionStatus)
	s.Nil(m.StripeSubscriptionID)
	s.Nil(m.MembershipPlanID)
	s.Equal(1, s.GetNotifier().CountByKind("subscription_cancelled"))
	s.Equal(1, s.GetNotifier().CountByKind("manual_review_needed"))
}

func (s *WebhookServiceSuite) TestUnknownCustomerIsIgnored() {
	s.GetGateway().NextEvent = &provider.WebhookEvent{
		ID:         "evt_unknown",
		Type:       types.WebhookEventInvoicePaid,
		CustomerID: "cus_stranger",
	}
	s.NoError(s.service.ProcessEvent(s.GetContext(), []byte("{}"), "sig"))
	s.Empty(s.GetNotifier().Sent)
}

func (s *WebhookServiceSuite) TestUnhandledEventTypeIsIgnored() {
	s.NoError(s.deliver("customer.updated"))
	s.Empty(s.GetNotifier().Sent)
}

func (s *WebhookServiceSuite) TestEventWithoutCustomerIsIgnored() {
	s.GetGateway().NextEvent = &provider.WebhookEvent{
		ID:   "evt_nocust",
		Type: types.WebhookEventInvoicePaid,
	}
	s.NoError(s.service.ProcessEvent(s.GetContext(), []byte("{}"), "sig"))
	s.Empty(s.GetNotifier().Sent)
}
