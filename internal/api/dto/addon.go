package dto

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/membermatters/memberportal/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateAddonRequest struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	AddonType     types.AddonType     `json:"addon_type" validate:"required"`
	Currency      string              `json:"currency" validate:"required,len=3"`
	Cost          decimal.Decimal     `json:"cost"`
	Interval      types.BillingPeriod `json:"interval" validate:"required"`
	IntervalCount int                 `json:"interval_count" validate:"min=1"`
	MinQuantity   int                 `json:"min_quantity" validate:"min=0"`
	MaxQuantity   int                 `json:"max_quantity" validate:"min=0"`
	Visible       bool                `json:"visible"`
}

func (r CreateAddonRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.AddonType.Validate(); err != nil {
		return err
	}
	return r.Interval.Validate()
}

func (r CreateAddonRequest) ToAddon(ctx context.Context) *addon.Addon {
	return &addon.Addon{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ADDON),
		Name:          r.Name,
		Description:   r.Description,
		AddonType:     r.AddonType,
		Currency:      r.Currency,
		Cost:          r.Cost,
		Interval:      r.Interval,
		IntervalCount: r.IntervalCount,
		MinQuantity:   r.MinQuantity,
		MaxQuantity:   r.MaxQuantity,
		Visible:       r.Visible,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type UpdateAddonRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Currency    *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Visible     *bool            `json:"visible,omitempty"`
	MinQuantity *int             `json:"min_quantity,omitempty" validate:"omitempty,min=0"`
	MaxQuantity *int             `json:"max_quantity,omitempty" validate:"omitempty,min=0"`
}

func (r UpdateAddonRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ApplyTo mutates the addon in place and reports whether any provider
// priced field changed.
func (r UpdateAddonRequest) ApplyTo(a *addon.Addon) bool {
	pricingChanged := false
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Description != nil {
		a.Description = *r.Description
	}
	if r.Currency != nil && *r.Currency != a.Currency {
		a.Currency = *r.Currency
		pricingChanged = true
	}
	if r.Cost != nil && !r.Cost.Equal(a.Cost) {
		a.Cost = *r.Cost
		pricingChanged = true
	}
	if r.Visible != nil {
		a.Visible = *r.Visible
	}
	if r.MinQuantity != nil {
		a.MinQuantity = *r.MinQuantity
	}
	if r.MaxQuantity != nil {
		a.MaxQuantity = *r.MaxQuantity
	}
	return pricingChanged
}
