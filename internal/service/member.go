package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/api/dto"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
)

// MemberService covers the member billing surface: provider customer
// provisioning, payment methods and billing info.
type MemberService interface {
	CreateMember(ctx context.Context, req dto.CreateMemberRequest) (*member.Member, error)
	GetMember(ctx context.Context, id string) (*member.Member, error)
	ListMembers(ctx context.Context) ([]*member.Member, error)

	// EnsureCustomer creates the provider customer for a member if one
	// does not exist yet.
	EnsureCustomer(ctx context.Context, memberID string) (*member.Member, error)

	AttachCard(ctx context.Context, memberID, paymentMethodID string) (*member.Member, error)
	DetachCard(ctx context.Context, memberID string) (*member.Member, error)

	// BillingInfo expands the member's subscription detail from the provider.
	BillingInfo(ctx context.Context, memberID string) (*dto.MemberBillingInfoResponse, error)
}

type memberService struct {
	ServiceParams
}

func NewMemberService(params ServiceParams) MemberService {
	return &memberService{ServiceParams: params}
}

func (s *memberService) CreateMember(ctx context.Context, req dto.CreateMemberRequest) (*member.Member, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m := req.ToMember(ctx)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.MemberRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) GetMember(ctx context.Context, id string) (*member.Member, error) {
	return s.MemberRepo.Get(ctx, id)
}

func (s *memberService) ListMembers(ctx context.Context) ([]*member.Member, error) {
	return s.MemberRepo.List(ctx)
}

func (s *memberService) EnsureCustomer(ctx context.Context, memberID string) (*member.Member, error) {
	m, err := s.MemberRepo.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.StripeCustomerID != "" {
		return m, nil
	}

	customerID, err := s.Provider.CreateCustomer(ctx, provider.CustomerParams{
		Email:    m.Email,
		Name:     m.FullName(),
		Phone:    m.Phone,
		MemberID: m.ID,
	})
	if err != nil {
		return nil, err
	}

	m.StripeCustomerID = customerID
	m.UpdatedBy = types.GetUserID(ctx)
	if err := s.MemberRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) AttachCard(ctx context.Context, memberID, paymentMethodID string) (*member.Member, error) {
	m, err := s.EnsureCustomer(ctx, memberID)
	if err != nil {
		return nil, err
	}

	pm, err := s.Provider.AttachPaymentMethod(ctx, m.StripeCustomerID, paymentMethodID)
	if err != nil {
		return nil, err
	}

	m.StripePaymentMethodID = pm.ID
	m.StripeCardLastDigits = pm.CardLast4
	m.StripeCardExpiry = pm.CardExpiry
	m.UpdatedBy = types.GetUserID(ctx)
	if err := s.MemberRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) DetachCard(ctx context.Context, memberID string) (*member.Member, error) {
	m, err := s.MemberRepo.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.StripePaymentMethodID == "" {
		return nil, ierr.NewError("member has no saved card").
			WithHint("There is no payment method to remove").
			Mark(ierr.ErrNotFound)
	}
	if m.HasActiveSubscription() {
		return nil, ierr.NewError("cannot remove the card backing an active subscription").
			WithHint("Cancel the subscription before removing the card").
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.Provider.DetachPaymentMethod(ctx, m.StripePaymentMethodID); err != nil {
		return nil, err
	}

	m.StripePaymentMethodID = ""
	m.StripeCardLastDigits = ""
	m.StripeCardExpiry = ""
	m.UpdatedBy = types.GetUserID(ctx)
	if err := s.MemberRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *memberService) BillingInfo(ctx context.Context, memberID string) (*dto.MemberBillingInfoResponse, error) {
	m, err := s.MemberRepo.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewMemberBillingInfoResponse(m)
	if m.StripeSubscriptionID != nil && *m.StripeSubscriptionID != "" {
		sub, err := s.Provider.GetSubscription(ctx, *m.StripeSubscriptionID)
		if err != nil {
			if !ierr.IsNotFound(err) {
				return nil, err
			}
		} else {
			resp.Subscription = dto.NewProviderSubscriptionDetail(sub)
		}
	}
	return resp, nil
}
