package dto

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/plan"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/membermatters/memberportal/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name          string              `json:"name" validate:"required"`
	Currency      string              `json:"currency" validate:"required,len=3"`
	Cost          decimal.Decimal     `json:"cost"`
	Interval      types.BillingPeriod `json:"interval" validate:"required"`
	IntervalCount int                 `json:"interval_count" validate:"min=1"`
	Visible       bool                `json:"visible"`
}

func (r CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Interval.Validate()
}

func (r CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_PLAN),
		Name:          r.Name,
		Currency:      r.Currency,
		Cost:          r.Cost,
		Interval:      r.Interval,
		IntervalCount: r.IntervalCount,
		Visible:       r.Visible,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type UpdatePlanRequest struct {
	Name     *string          `json:"name,omitempty"`
	Currency *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	Visible  *bool            `json:"visible,omitempty"`
}

func (r UpdatePlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ApplyTo mutates the plan in place and reports whether any provider
// priced field changed.
func (r UpdatePlanRequest) ApplyTo(p *plan.Plan) bool {
	pricingChanged := false
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Currency != nil && *r.Currency != p.Currency {
		p.Currency = *r.Currency
		pricingChanged = true
	}
	if r.Cost != nil && !r.Cost.Equal(p.Cost) {
		p.Cost = *r.Cost
		pricingChanged = true
	}
	if r.Visible != nil {
		p.Visible = *r.Visible
	}
	return pricingChanged
}
