package plan

import (
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a membership payment plan members subscribe to individually.
type Plan struct {
	ID            string              `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Currency      string              `db:"currency" json:"currency"`
	Cost          decimal.Decimal     `db:"cost" json:"cost"`
	Interval      types.BillingPeriod `db:"interval" json:"interval"`
	IntervalCount int                 `db:"interval_count" json:"interval_count"`
	Visible       bool                `db:"visible" json:"visible"`

	StripeProductID string `db:"stripe_product_id" json:"stripe_product_id,omitempty"`
	StripePriceID   string `db:"stripe_price_id" json:"stripe_price_id,omitempty"`

	types.BaseModel
}

func (p *Plan) TableName() string {
	return "payment_plans"
}

func (p *Plan) Validate() error {
	if p.Name == "" {
		return ierr.NewError("plan name is required").
			WithHint("Name is required").
			Mark(ierr.ErrValidation)
	}
	if p.Cost.IsNegative() {
		return ierr.NewError("plan cost cannot be negative").
			WithHint("Cost must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if err := p.Interval.Validate(); err != nil {
		return err
	}
	if p.IntervalCount < 1 {
		return ierr.NewError("plan interval count must be at least 1").
			WithHint("Interval count must be at least 1").
			Mark(ierr.ErrValidation)
	}
	return nil
}
