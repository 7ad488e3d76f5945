package service

import (
	"context"
	"time"

	"github.com/membermatters/memberportal/internal/api/dto"
	"github.com/membermatters/memberportal/internal/domain/addon"
	"github.com/membermatters/memberportal/internal/domain/provider"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
)

const addonCacheKey = "catalog:addons"

// AddonService manages the addon catalog and its provider side product
// and price objects. Catalog edits never touch existing pricing locks.
type AddonService interface {
	CreateAddon(ctx context.Context, req dto.CreateAddonRequest) (*addon.Addon, error)
	GetAddon(ctx context.Context, id string) (*addon.Addon, error)
	ListAddons(ctx context.Context) ([]*addon.Addon, error)
	UpdateAddon(ctx context.Context, id string, req dto.UpdateAddonRequest) (*addon.Addon, error)
	ArchiveAddon(ctx context.Context, id string) error
	SyncAddon(ctx context.Context, id string) (*addon.Addon, error)
}

type addonService struct {
	ServiceParams
}

func NewAddonService(params ServiceParams) AddonService {
	return &addonService{ServiceParams: params}
}

func (s *addonService) CreateAddon(ctx context.Context, req dto.CreateAddonRequest) (*addon.Addon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := req.ToAddon(ctx)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.AddonRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, addonCacheKey)

	if s.Config.Stripe.Enabled {
		if _, err := s.SyncAddon(ctx, a.ID); err != nil {
			// The catalog row exists, provider sync can be retried.
			s.Logger.Warnw("failed to sync new addon to provider",
				"error", err,
				"addon_id", a.ID,
			)
		}
		return s.AddonRepo.Get(ctx, a.ID)
	}
	return a, nil
}

func (s *addonService) GetAddon(ctx context.Context, id string) (*addon.Addon, error) {
	return s.AddonRepo.Get(ctx, id)
}

func (s *addonService) ListAddons(ctx context.Context) ([]*addon.Addon, error) {
	if cached, ok := s.Cache.Get(ctx, addonCacheKey); ok {
		if addons, ok := cached.([]*addon.Addon); ok {
			return addons, nil
		}
	}

	addons, err := s.AddonRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, addonCacheKey, addons, 5*time.Minute)
	return addons, nil
}

func (s *addonService) UpdateAddon(ctx context.Context, id string, req dto.UpdateAddonRequest) (*addon.Addon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.AddonRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pricingChanged := req.ApplyTo(a)
	a.UpdatedBy = types.GetUserID(ctx)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	// Existing locks keep the pricing frozen at their creation time.
	// Only the catalog row and its provider objects move.
	if pricingChanged && a.Synced() {
		a.StripeSynced = false
	}

	if err := s.AddonRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, addonCacheKey)

	if s.Config.Stripe.Enabled && !a.StripeSynced {
		if _, err := s.SyncAddon(ctx, a.ID); err != nil {
			s.Logger.Warnw("failed to sync updated addon to provider",
				"error", err,
				"addon_id", a.ID,
			)
		}
		return s.AddonRepo.Get(ctx, a.ID)
	}
	return a, nil
}

// SyncAddon pushes the catalog row to the provider: ensures a product
// exists and a price matching the current cost. A superseded price is
// archived, never mutated.
func (s *addonService) SyncAddon(ctx context.Context, id string) (*addon.Addon, error) {
	a, err := s.AddonRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.StripeProductID == "" {
		productID, err := s.Provider.CreateProduct(ctx, provider.ProductParams{
			Name:        a.Name,
			Description: a.Description,
		})
		if err != nil {
			return nil, err
		}
		a.StripeProductID = productID
	} else {
		if err := s.Provider.UpdateProduct(ctx, a.StripeProductID, provider.ProductParams{
			Name:        a.Name,
			Description: a.Description,
		}); err != nil {
			return nil, err
		}
	}

	oldPriceID := a.StripePriceID
	priceID, err := s.Provider.CreatePrice(ctx, provider.PriceParams{
		ProductID:     a.StripeProductID,
		Currency:      a.Currency,
		Amount:        a.Cost,
		Interval:      a.Interval,
		IntervalCount: a.IntervalCount,
		Nickname:      a.Name,
	})
	if err != nil {
		return nil, err
	}
	a.StripePriceID = priceID

	if oldPriceID != "" && oldPriceID != priceID {
		if err := s.Provider.ArchivePrice(ctx, oldPriceID); err != nil {
			s.Logger.Warnw("failed to archive superseded addon price",
				"error", err,
				"addon_id", a.ID,
				"stripe_price_id", oldPriceID,
			)
		}
	}

	a.StripeSynced = true
	a.LastSyncedAt = lo.ToPtr(time.Now().UTC())
	a.UpdatedBy = types.GetUserID(ctx)
	if err := s.AddonRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, addonCacheKey)
	return a, nil
}

func (s *addonService) ArchiveAddon(ctx context.Context, id string) error {
	a, err := s.AddonRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.Config.Stripe.Enabled {
		if a.StripePriceID != "" {
			if err := s.Provider.ArchivePrice(ctx, a.StripePriceID); err != nil {
				s.Logger.Warnw("failed to archive addon price",
					"error", err,
					"addon_id", a.ID,
				)
			}
		}
		if a.StripeProductID != "" {
			if err := s.Provider.ArchiveProduct(ctx, a.StripeProductID); err != nil {
				s.Logger.Warnw("failed to archive addon product",
					"error", err,
					"addon_id", a.ID,
				)
			}
		}
	}

	s.Cache.Delete(ctx, addonCacheKey)
	return s.AddonRepo.Delete(ctx, id)
}
