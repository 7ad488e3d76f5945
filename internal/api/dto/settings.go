package dto

import (
	"github.com/membermatters/memberportal/internal/domain/settings"
	"github.com/membermatters/memberportal/internal/validator"
)

type UpdateSettingsRequest struct {
	AdditionalMemberAddonID *string `json:"additional_member_addon_id,omitempty"`
	DefaultPaymentPlanID    *string `json:"default_payment_plan_id,omitempty"`
	StripeEnabled           *bool   `json:"stripe_enabled,omitempty"`
}

func (r UpdateSettingsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r UpdateSettingsRequest) ApplyTo(s *settings.BillingSettings) {
	if r.AdditionalMemberAddonID != nil {
		if *r.AdditionalMemberAddonID == "" {
			s.AdditionalMemberAddonID = nil
		} else {
			s.AdditionalMemberAddonID = r.AdditionalMemberAddonID
		}
	}
	if r.DefaultPaymentPlanID != nil {
		if *r.DefaultPaymentPlanID == "" {
			s.DefaultPaymentPlanID = nil
		} else {
			s.DefaultPaymentPlanID = r.DefaultPaymentPlanID
		}
	}
	if r.StripeEnabled != nil {
		s.StripeEnabled = *r.StripeEnabled
	}
}
