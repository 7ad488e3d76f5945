package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/api/dto"
	"github.com/membermatters/memberportal/internal/domain/plan"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/types"
)

// PlanService manages the membership payment plan catalog.
type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*plan.Plan, error)
	GetPlan(ctx context.Context, id string) (*plan.Plan, error)
	ListPlans(ctx context.Context) ([]*plan.Plan, error)
	ListVisiblePlans(ctx context.Context) ([]*plan.Plan, error)
	UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*plan.Plan, error)
	ArchivePlan(ctx context.Context, id string) error
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*plan.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPlan(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if s.Config.Stripe.Enabled {
		productID, err := s.Provider.CreateProduct(ctx, provider.ProductParams{
			Name: p.Name,
		})
		if err != nil {
			return nil, err
		}
		priceID, err := s.Provider.CreatePrice(ctx, provider.PriceParams{
			ProductID:     productID,
			Currency:      p.Currency,
			Amount:        p.Cost,
			Interval:      p.Interval,
			IntervalCount: p.IntervalCount,
			Nickname:      p.Name,
		})
		if err != nil {
			return nil, err
		}
		p.StripeProductID = productID
		p.StripePriceID = priceID
	}

	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	return s.PlanRepo.Get(ctx, id)
}

func (s *planService) ListPlans(ctx context.Context) ([]*plan.Plan, error) {
	return s.PlanRepo.List(ctx)
}

func (s *planService) ListVisiblePlans(ctx context.Context) ([]*plan.Plan, error) {
	return s.PlanRepo.ListVisible(ctx)
}

func (s *planService) UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*plan.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pricingChanged := req.ApplyTo(p)
	p.UpdatedBy = types.GetUserID(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Existing subscriptions stay on the old price, a pricing change
	// mints a new provider price for future signups.
	if pricingChanged && s.Config.Stripe.Enabled && p.StripeProductID != "" {
		oldPriceID := p.StripePriceID
		priceID, err := s.Provider.CreatePrice(ctx, provider.PriceParams{
			ProductID:     p.StripeProductID,
			Currency:      p.Currency,
			Amount:        p.Cost,
			Interval:      p.Interval,
			IntervalCount: p.IntervalCount,
			Nickname:      p.Name,
		})
		if err != nil {
			return nil, err
		}
		p.StripePriceID = priceID
		if oldPriceID != "" {
			if err := s.Provider.ArchivePrice(ctx, oldPriceID); err != nil {
				s.Logger.Warnw("failed to archive superseded plan price",
					"error", err,
					"plan_id", p.ID,
					"stripe_price_id", oldPriceID,
				)
			}
		}
	}

	if err := s.PlanRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *planService) ArchivePlan(ctx context.Context, id string) error {
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.Config.Stripe.Enabled {
		if p.StripePriceID != "" {
			if err := s.Provider.ArchivePrice(ctx, p.StripePriceID); err != nil {
				s.Logger.Warnw("failed to archive plan price",
					"error", err,
					"plan_id", p.ID,
				)
			}
		}
		if p.StripeProductID != "" {
			if err := s.Provider.ArchiveProduct(ctx, p.StripeProductID); err != nil {
				s.Logger.Warnw("failed to archive plan product",
					"error", err,
					"plan_id", p.ID,
				)
			}
		}
	}

	return s.PlanRepo.Delete(ctx, id)
}
