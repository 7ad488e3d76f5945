package settings

import (
	"github.com/membermatters/memberportal/internal/types"
)

// BillingSettings holds the operator configured billing defaults. The
// referenced catalog rows are resolved and validated at point of use, a
// stale reference surfaces as a warning rather than blocking transitions.
type BillingSettings struct {
	ID string `db:"id" json:"id"`

	// Addon applied per additional billing group member. Nil means group
	// membership carries no extra charge.
	AdditionalMemberAddonID *string `db:"additional_member_addon_id" json:"additional_member_addon_id,omitempty"`

	// Plan used when a member leaving a group is moved to an individual
	// subscription.
	DefaultPaymentPlanID *string `db:"default_payment_plan_id" json:"default_payment_plan_id,omitempty"`

	StripeEnabled bool `db:"stripe_enabled" json:"stripe_enabled"`

	types.BaseModel
}

func (s *BillingSettings) TableName() string {
	return "billing_settings"
}
