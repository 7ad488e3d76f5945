package dto

import (
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/membermatters/memberportal/internal/validator"
)

type SignupRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

func (r SignupRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type SubscriptionInfoResponse struct {
	MemberID           string                      `json:"member_id"`
	SubscriptionStatus types.SubscriptionStatus    `json:"subscription_status"`
	MembershipPlanID   string                      `json:"membership_plan_id,omitempty"`
	Subscription       *ProviderSubscriptionDetail `json:"subscription,omitempty"`
}

func NewSubscriptionInfoResponse(m *member.Member, sub *provider.Subscription) *SubscriptionInfoResponse {
	resp := &SubscriptionInfoResponse{
		MemberID:           m.ID,
		SubscriptionStatus: m.SubscriptionStatus,
		Subscription:       NewProviderSubscriptionDetail(sub),
	}
	if m.MembershipPlanID != nil {
		resp.MembershipPlanID = *m.MembershipPlanID
	}
	return resp
}
