package dto

import (
	"context"
	"time"

	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/membermatters/memberportal/internal/validator"
)

type CreateMemberRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	ScreenName string `json:"screen_name"`
	Phone      string `json:"phone"`
}

func (r CreateMemberRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r CreateMemberRequest) ToMember(ctx context.Context) *member.Member {
	return &member.Member{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_MEMBER),
		Email:              r.Email,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		ScreenName:         r.ScreenName,
		Phone:              r.Phone,
		State:              types.MemberStateNoob,
		SubscriptionStatus: types.SubscriptionStatusNone,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}

type AttachCardRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

func (r AttachCardRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ProviderSubscriptionDetail is the provider side view of a
// subscription shown on billing info screens.
type ProviderSubscriptionDetail struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CancelAt           *time.Time `json:"cancel_at,omitempty"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	StartDate          time.Time  `json:"start_date"`
	BillingCycleAnchor time.Time  `json:"billing_cycle_anchor"`
}

func NewProviderSubscriptionDetail(sub *provider.Subscription) *ProviderSubscriptionDetail {
	if sub == nil {
		return nil
	}
	return &ProviderSubscriptionDetail{
		ID:                 sub.ID,
		Status:             sub.Status,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CancelAt:           sub.CancelAt,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		StartDate:          sub.StartDate,
		BillingCycleAnchor: sub.BillingCycleAnchor,
	}
}

type MemberBillingInfoResponse struct {
	MemberID                 string                      `json:"member_id"`
	Email                    string                      `json:"email"`
	State                    types.MemberState           `json:"state"`
	SubscriptionStatus       types.SubscriptionStatus    `json:"subscription_status"`
	StripeCustomerID         string                      `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID     string                      `json:"stripe_subscription_id,omitempty"`
	MembershipPlanID         string                      `json:"membership_plan_id,omitempty"`
	CardLastDigits           string                      `json:"card_last_digits,omitempty"`
	CardExpiry               string                      `json:"card_expiry,omitempty"`
	SubscriptionFirstCreated *time.Time                  `json:"subscription_first_created,omitempty"`
	BillingGroupID           string                      `json:"billing_group_id,omitempty"`
	Subscription             *ProviderSubscriptionDetail `json:"subscription,omitempty"`
}

func NewMemberBillingInfoResponse(m *member.Member) *MemberBillingInfoResponse {
	resp := &MemberBillingInfoResponse{
		MemberID:                 m.ID,
		Email:                    m.Email,
		State:                    m.State,
		SubscriptionStatus:       m.SubscriptionStatus,
		StripeCustomerID:         m.StripeCustomerID,
		CardLastDigits:           m.StripeCardLastDigits,
		CardExpiry:               m.StripeCardExpiry,
		SubscriptionFirstCreated: m.SubscriptionFirstCreated,
	}
	if m.StripeSubscriptionID != nil {
		resp.StripeSubscriptionID = *m.StripeSubscriptionID
	}
	if m.MembershipPlanID != nil {
		resp.MembershipPlanID = *m.MembershipPlanID
	}
	if m.BillingGroupID != nil {
		resp.BillingGroupID = *m.BillingGroupID
	}
	return resp
}
