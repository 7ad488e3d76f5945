package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/api/dto"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
)

// SubscriptionService manages a member's standalone provider
// subscription lifecycle.
type SubscriptionService interface {
	// CancelWithProration cancels the member's individual subscription
	// before they join a billing group. A subscription already gone on
	// the provider side is reconciled locally and counts as success.
	CancelWithProration(ctx context.Context, m *member.Member) error

	// CreateIndividualSubscription puts a member leaving a group back on
	// the configured default plan.
	CreateIndividualSubscription(ctx context.Context, m *member.Member) error

	// Self service lifecycle.
	Signup(ctx context.Context, memberID, planID string) (*dto.SubscriptionInfoResponse, error)
	CancelAtPeriodEnd(ctx context.Context, memberID string) (*dto.SubscriptionInfoResponse, error)
	Resume(ctx context.Context, memberID string) (*dto.SubscriptionInfoResponse, error)
	SubscriptionInfo(ctx context.Context, memberID string) (*dto.SubscriptionInfoResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) CancelWithProration(ctx context.Context, m *member.Member) error {
	if m.StripeSubscriptionID == nil || *m.StripeSubscriptionID == "" {
		return nil
	}
	subscriptionID := *m.StripeSubscriptionID

	sub, err := s.Provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// Gone remotely, reconcile the local reference.
			return s.clearSubscriptionRefs(ctx, m)
		}
		return err
	}

	if sub.Status == "canceled" {
		return s.clearSubscriptionRefs(ctx, m)
	}

	if _, err := s.Provider.CancelSubscription(ctx, subscriptionID, true); err != nil {
		return err
	}

	s.Logger.Infow("cancelled individual subscription with proration",
		"member_id", m.ID,
		"stripe_subscription_id", subscriptionID,
	)
	return s.clearSubscriptionRefs(ctx, m)
}

func (s *subscriptionService) clearSubscriptionRefs(ctx context.Context, m *member.Member) error {
	m.StripeSubscriptionID = nil
	m.MembershipPlanID = nil
	m.UpdatedBy = types.GetUserID(ctx)
	return s.MemberRepo.Update(ctx, m)
}

func (s *subscriptionService) CreateIndividualSubscription(ctx context.Context, m *member.Member) error {
	cfg, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		if ierr.IsNotFound(err) {
			return ierr.NewError("no default plan configured").
				WithHint("Configure a default payment plan in billing settings").
				Mark(ierr.ErrValidation)
		}
		return err
	}
	if cfg.DefaultPaymentPlanID == nil || *cfg.DefaultPaymentPlanID == "" {
		return ierr.NewError("no default plan configured").
			WithHint("Configure a default payment plan in billing settings").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PlanRepo.Get(ctx, *cfg.DefaultPaymentPlanID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return ierr.NewError("configured default plan no longer exists").
				WithHint("Fix the default payment plan reference in billing settings").
				WithReportableDetails(map[string]any{"plan_id": *cfg.DefaultPaymentPlanID}).
				Mark(ierr.ErrValidation)
		}
		return err
	}
	if !p.Visible || p.StripePriceID == "" {
		return ierr.NewError("configured default plan is disabled").
			WithHint("The default payment plan is hidden or has no provider price").
			WithReportableDetails(map[string]any{"plan_id": p.ID}).
			Mark(ierr.ErrValidation)
	}

	return s.subscribe(ctx, m, p.ID, p.StripePriceID)
}

func (s *subscriptionService) subscribe(ctx context.Context, m *member.Member, planID, priceID string) error {
	if m.StripeCustomerID == "" {
		customerID, err := s.Provider.CreateCustomer(ctx, provider.CustomerParams{
			Email:    m.Email,
			Name:     m.FullName(),
			Phone:    m.Phone,
			MemberID: m.ID,
		})
		if err != nil {
			return err
		}
		m.StripeCustomerID = customerID
	}

	sub, err := s.Provider.CreateSubscription(ctx, provider.SubscriptionCreateParams{
		CustomerID: m.StripeCustomerID,
		PriceIDs:   []string{priceID},
	})
	if err != nil {
		return err
	}

	m.StripeSubscriptionID = lo.ToPtr(sub.ID)
	m.MembershipPlanID = lo.ToPtr(planID)
	m.SubscriptionStatus = types.SubscriptionStatusActive
	m.UpdatedBy = types.GetUserID(ctx)
	if err := s.MemberRepo.Update(ctx, m); err != nil {
		return err
	}

	s.Logger.Infow("created individual subscription",
		"member_id", m.ID,
		"plan_id", planID,
		"stripe_subscription_id", sub.ID,
	)
	return nil
}

func (s *subscriptionService) Signup(ctx context.Context, memberID, planID string) (*dto.SubscriptionInfoResponse, error) {
	var resp *dto.SubscriptionInfoResponse
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(memberID)}); err != nil {
			return err
		}

		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}
		if m.HasActiveSubscription() {
			return ierr.NewError("member already has a subscription").
				WithHint("Cancel the current subscription before signing up again").
				Mark(ierr.ErrAlreadyExists)
		}
		if m.InGroup() {
			return ierr.NewError("member is billed through a billing group").
				WithHint("Leave the billing group before signing up individually").
				Mark(ierr.ErrInvalidOperation)
		}

		p, err := s.PlanRepo.Get(ctx, planID)
		if err != nil {
			return err
		}
		if !p.Visible || p.StripePriceID == "" {
			return ierr.NewError("plan is not available for signup").
				WithHint("Choose one of the visible payment plans").
				WithReportableDetails(map[string]any{"plan_id": p.ID}).
				Mark(ierr.ErrValidation)
		}

		if err := s.subscribe(ctx, m, p.ID, p.StripePriceID); err != nil {
			return err
		}

		resp, err = s.subscriptionInfo(ctx, m)
		return err
	})
	return resp, err
}

func (s *subscriptionService) CancelAtPeriodEnd(ctx context.Context, memberID string) (*dto.SubscriptionInfoResponse, error) {
	return s.setCancelAtPeriodEnd(ctx, memberID, true, types.SubscriptionStatusCancelling)
}

func (s *subscriptionService) Resume(ctx context.Context, memberID string) (*dto.SubscriptionInfoResponse, error) {
	return s.setCancelAtPeriodEnd(ctx, memberID, false, types.SubscriptionStatusActive)
}

func (s *subscriptionService) setCancelAtPeriodEnd(ctx context.Context, memberID string, cancel bool, status types.SubscriptionStatus) (*dto.SubscriptionInfoResponse, error) {
	var resp *dto.SubscriptionInfoResponse
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(memberID)}); err != nil {
			return err
		}

		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}
		if m.StripeSubscriptionID == nil || *m.StripeSubscriptionID == "" {
			return ierr.NewError("member has no subscription").
				WithHint("There is no subscription to modify").
				Mark(ierr.ErrNotFound)
		}

		sub, err := s.Provider.SetCancelAtPeriodEnd(ctx, *m.StripeSubscriptionID, cancel)
		if err != nil {
			return err
		}

		m.SubscriptionStatus = status
		m.UpdatedBy = types.GetUserID(ctx)
		if err := s.MemberRepo.Update(ctx, m); err != nil {
			return err
		}

		resp = dto.NewSubscriptionInfoResponse(m, sub)
		return nil
	})
	return resp, err
}

func (s *subscriptionService) SubscriptionInfo(ctx context.Context, memberID string) (*dto.SubscriptionInfoResponse, error) {
	m, err := s.MemberRepo.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.subscriptionInfo(ctx, m)
}

func (s *subscriptionService) subscriptionInfo(ctx context.Context, m *member.Member) (*dto.SubscriptionInfoResponse, error) {
	if m.StripeSubscriptionID == nil || *m.StripeSubscriptionID == "" {
		return dto.NewSubscriptionInfoResponse(m, nil), nil
	}

	sub, err := s.Provider.GetSubscription(ctx, *m.StripeSubscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return dto.NewSubscriptionInfoResponse(m, nil), nil
		}
		return nil, err
	}
	return dto.NewSubscriptionInfoResponse(m, sub), nil
}
