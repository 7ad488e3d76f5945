package member

import (
	"time"

	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
)

// Member represents a portal member and their billing state.
type Member struct {
	ID                 string                   `db:"id" json:"id"`
	Email              string                   `db:"email" json:"email"`
	FirstName          string                   `db:"first_name" json:"first_name"`
	LastName           string                   `db:"last_name" json:"last_name"`
	ScreenName         string                   `db:"screen_name" json:"screen_name,omitempty"`
	Phone              string                   `db:"phone" json:"phone,omitempty"`
	State              types.MemberState        `db:"state" json:"state"`
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	StripeCustomerID       string  `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID   *string `db:"stripe_subscription_id" json:"stripe_subscription_id,omitempty"`
	StripePaymentMethodID  string  `db:"stripe_payment_method_id" json:"stripe_payment_method_id,omitempty"`
	StripeCardLastDigits   string  `db:"stripe_card_last_digits" json:"stripe_card_last_digits,omitempty"`
	StripeCardExpiry       string  `db:"stripe_card_expiry" json:"stripe_card_expiry,omitempty"`
	MembershipPlanID       *string `db:"membership_plan_id" json:"membership_plan_id,omitempty"`
	SubscriptionFirstCreated *time.Time `db:"subscription_first_created" json:"subscription_first_created,omitempty"`

	// A member may belong to a billing group or hold a pending invite to
	// one, never both.
	BillingGroupID       *string `db:"billing_group_id" json:"billing_group_id,omitempty"`
	BillingGroupInviteID *string `db:"billing_group_invite_id" json:"billing_group_invite_id,omitempty"`

	types.BaseModel
}

func (m *Member) TableName() string {
	return "members"
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// InGroup reports whether the member currently belongs to a billing group.
func (m *Member) InGroup() bool {
	return m.BillingGroupID != nil && *m.BillingGroupID != ""
}

// HasPendingInvite reports whether the member has an outstanding invite.
func (m *Member) HasPendingInvite() bool {
	return m.BillingGroupInviteID != nil && *m.BillingGroupInviteID != ""
}

// HasActiveSubscription reports whether the member has an individual
// subscription with the provider that is still billing.
func (m *Member) HasActiveSubscription() bool {
	return m.StripeSubscriptionID != nil && *m.StripeSubscriptionID != "" &&
		(m.SubscriptionStatus == types.SubscriptionStatusActive ||
			m.SubscriptionStatus == types.SubscriptionStatusCancelling)
}

func (m *Member) Validate() error {
	if m.Email == "" {
		return ierr.NewError("member email is required").
			WithHint("Email is required").
			Mark(ierr.ErrValidation)
	}
	if err := m.State.Validate(); err != nil {
		return err
	}
	if err := m.SubscriptionStatus.Validate(); err != nil {
		return err
	}
	if m.InGroup() && m.HasPendingInvite() {
		return ierr.NewError("member cannot hold a group membership and a pending invite").
			WithHint("A member may belong to a billing group or be invited to one, not both").
			WithReportableDetails(map[string]interface{}{
				"billing_group_id": *m.BillingGroupID,
				"invite_group_id":  *m.BillingGroupInviteID,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
