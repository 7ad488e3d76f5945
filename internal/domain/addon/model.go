package addon

import (
	"time"

	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/shopspring/decimal"
)

// Addon is a catalog entry for a recurring charge that can be attached to
// a subscription, such as the per-member charge for billing groups.
type Addon struct {
	ID            string              `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Description   string              `db:"description" json:"description,omitempty"`
	AddonType     types.AddonType     `db:"addon_type" json:"addon_type"`
	Currency      string              `db:"currency" json:"currency"`
	Cost          decimal.Decimal     `db:"cost" json:"cost"`
	Interval      types.BillingPeriod `db:"interval" json:"interval"`
	IntervalCount int                 `db:"interval_count" json:"interval_count"`
	MinQuantity   int                 `db:"min_quantity" json:"min_quantity"`
	MaxQuantity   int                 `db:"max_quantity" json:"max_quantity"`
	Visible       bool                `db:"visible" json:"visible"`

	StripeProductID string     `db:"stripe_product_id" json:"stripe_product_id,omitempty"`
	StripePriceID   string     `db:"stripe_price_id" json:"stripe_price_id,omitempty"`
	StripeSynced    bool       `db:"stripe_synced" json:"stripe_synced"`
	LastSyncedAt    *time.Time `db:"last_synced_at" json:"last_synced_at,omitempty"`

	types.BaseModel
}

func (a *Addon) TableName() string {
	return "subscription_addons"
}

// Synced reports whether the addon has provider objects to bill against.
func (a *Addon) Synced() bool {
	return a.StripePriceID != ""
}

func (a *Addon) Validate() error {
	if a.Name == "" {
		return ierr.NewError("addon name is required").
			WithHint("Name is required").
			Mark(ierr.ErrValidation)
	}
	if err := a.AddonType.Validate(); err != nil {
		return err
	}
	if a.Cost.IsNegative() {
		return ierr.NewError("addon cost cannot be negative").
			WithHint("Cost must be zero or positive").
			WithReportableDetails(map[string]interface{}{
				"cost": a.Cost,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := a.Interval.Validate(); err != nil {
		return err
	}
	if a.IntervalCount < 1 {
		return ierr.NewError("addon interval count must be at least 1").
			WithHint("Interval count must be at least 1").
			Mark(ierr.ErrValidation)
	}
	if a.MaxQuantity > 0 && a.MinQuantity > a.MaxQuantity {
		return ierr.NewError("addon min quantity exceeds max quantity").
			WithHint("Min quantity must not exceed max quantity").
			WithReportableDetails(map[string]interface{}{
				"min_quantity": a.MinQuantity,
				"max_quantity": a.MaxQuantity,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
