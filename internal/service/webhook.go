package service

import (
	"context"
	"time"

	"github.com/membermatters/memberportal/internal/domain/member"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
)

// WebhookService reconciles provider payment lifecycle events against
// member state. Events arrive out of order and more than once,
// idempotence comes from branching on current persisted state, not from
// event id deduplication.
type WebhookService interface {
	ProcessEvent(ctx context.Context, payload []byte, signature string) error
}

type webhookService struct {
	ServiceParams
}

func NewWebhookService(params ServiceParams) WebhookService {
	return &webhookService{ServiceParams: params}
}

func (s *webhookService) ProcessEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.Provider.ParseWebhookEvent(payload, signature)
	if err != nil {
		return err
	}

	if event.CustomerID == "" {
		s.Logger.Debugw("webhook event without customer, ignoring",
			"event_id", event.ID,
			"event_type", event.Type,
		)
		return nil
	}

	m, err := s.MemberRepo.GetByStripeCustomerID(ctx, event.CustomerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// The provider account may serve unrelated customers.
			s.Logger.Debugw("webhook event for unknown customer, ignoring",
				"event_id", event.ID,
				"event_type", event.Type,
				"stripe_customer_id", event.CustomerID,
			)
			return nil
		}
		return err
	}

	s.Logger.Infow("processing webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
		"member_id", m.ID,
	)

	switch event.Type {
	case types.WebhookEventInvoicePaid:
		return s.handleInvoicePaid(ctx, m.ID)
	case types.WebhookEventInvoicePaymentFailed:
		return s.handleInvoicePaymentFailed(ctx, m)
	case types.WebhookEventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, m.ID)
	default:
		s.Logger.Debugw("unhandled webhook event type",
			"event_id", event.ID,
			"event_type", event.Type,
		)
		return nil
	}
}

func (s *webhookService) handleInvoicePaid(ctx context.Context, memberID string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(memberID)}); err != nil {
			return err
		}

		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}

		if m.SubscriptionFirstCreated == nil {
			m.SubscriptionFirstCreated = lo.ToPtr(time.Now().UTC())
		}

		// Billing succeeded regardless of access state.
		m.SubscriptionStatus = types.SubscriptionStatusActive

		if m.State != types.MemberStateActive {
			if s.canAutoActivate(m) {
				m.State = types.MemberStateActive
				s.Notifier.MemberActivated(ctx, m.Email, m.FullName())
			} else {
				// Payment landed but the member has never been through
				// onboarding, an operator needs to review them.
				s.Notifier.ManualReviewNeeded(ctx, s.operatorAddress(), m.FullName(),
					"payment received but the member does not meet activation requirements")
			}
		}

		m.UpdatedBy = types.GetUserID(ctx)
		return s.MemberRepo.Update(ctx, m)
	})
}

// canAutoActivate reports whether a paying member can be granted access
// without operator review. A lapsed member returning is safe, a brand
// new account is not.
func (s *webhookService) canAutoActivate(m *member.Member) bool {
	return m.State == types.MemberStateInactive
}

func (s *webhookService) handleInvoicePaymentFailed(ctx context.Context, m *member.Member) error {
	// Notification only, state is left for the subscription deleted
	// event that follows terminal failures.
	s.Notifier.PaymentFailed(ctx, m.Email, m.FullName())
	return nil
}

func (s *webhookService) handleSubscriptionDeleted(ctx context.Context, memberID string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(memberID)}); err != nil {
			return err
		}

		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}

		m.State = types.MemberStateInactive
		m.SubscriptionStatus = types.SubscriptionStatusInactive
		m.StripeSubscriptionID = nil
		m.MembershipPlanID = nil
		m.UpdatedBy = types.GetUserID(ctx)
		if err := s.MemberRepo.Update(ctx, m); err != nil {
			return err
		}

		// TODO: redelivery of this event repeats the operator
		// notification, dedup needs provider event ids persisted.
		s.Notifier.SubscriptionCancelled(ctx, m.Email, m.FullName())
		s.Notifier.ManualReviewNeeded(ctx, s.operatorAddress(), m.FullName(),
			"subscription was cancelled by the provider")
		return nil
	})
}

func (s *webhookService) operatorAddress() string {
	return s.Config.Email.OperatorAddress
}
