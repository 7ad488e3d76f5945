package pricinglock

import (
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/shopspring/decimal"
)

// PricingLock freezes the price a billing group pays for one member's
// addon at the moment the member joined. Catalog changes after creation
// never alter the locked terms.
type PricingLock struct {
	ID             string `db:"id" json:"id"`
	BillingGroupID string `db:"billing_group_id" json:"billing_group_id"`
	MemberID       string `db:"member_id" json:"member_id"`
	AddonID        string `db:"addon_id" json:"addon_id"`

	LockedCost          decimal.Decimal     `db:"locked_cost" json:"locked_cost"`
	LockedCurrency      string              `db:"locked_currency" json:"locked_currency"`
	LockedInterval      types.BillingPeriod `db:"locked_interval" json:"locked_interval"`
	LockedIntervalCount int                 `db:"locked_interval_count" json:"locked_interval_count"`

	StripePriceID            *string `db:"stripe_price_id" json:"stripe_price_id,omitempty"`
	StripeSubscriptionItemID *string `db:"stripe_subscription_item_id" json:"stripe_subscription_item_id,omitempty"`

	types.BaseModel
}

func (l *PricingLock) TableName() string {
	return "addon_pricing_locks"
}

// HasItem reports whether the lock is attached to a provider
// subscription item.
func (l *PricingLock) HasItem() bool {
	return l.StripeSubscriptionItemID != nil && *l.StripeSubscriptionItemID != ""
}

func (l *PricingLock) Validate() error {
	if l.BillingGroupID == "" || l.MemberID == "" || l.AddonID == "" {
		return ierr.NewError("pricing lock requires group, member and addon").
			WithHint("Billing group, member and addon are required").
			Mark(ierr.ErrValidation)
	}
	if l.LockedCost.IsNegative() {
		return ierr.NewError("locked cost cannot be negative").
			WithHint("Locked cost must be zero or positive").
			WithReportableDetails(map[string]interface{}{
				"locked_cost": l.LockedCost,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := l.LockedInterval.Validate(); err != nil {
		return err
	}
	return nil
}
