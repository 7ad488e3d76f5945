package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	"github.com/membermatters/memberportal/internal/domain/provider"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/samber/lo"
)

// ItemSyncService keeps provider price and subscription item objects in
// step with a pricing lock. Sync is lazy and best effort, a lock with no
// provider ids is a valid reconcilable state. Callers run sync outside
// the membership transaction, every persisted id is its own write.
type ItemSyncService interface {
	// EnsureItem creates the lock's price object and, when the group's
	// primary member has an active provider subscription, a line item on
	// it. Once a provider object has been created the call never errors,
	// any follow-up failure downgrades to a warning.
	EnsureItem(ctx context.Context, lock *pricinglock.PricingLock) ([]Warning, error)

	// RemoveItem requests deletion of the lock's line item if one was
	// ever synchronized. A provider side "not found" counts as success.
	RemoveItem(ctx context.Context, lock *pricinglock.PricingLock) (provider.ItemRemoval, error)
}

type itemSyncService struct {
	ServiceParams
}

func NewItemSyncService(params ServiceParams) ItemSyncService {
	return &itemSyncService{ServiceParams: params}
}

func (s *itemSyncService) EnsureItem(ctx context.Context, lock *pricinglock.PricingLock) ([]Warning, error) {
	var warnings []Warning

	if lock.StripePriceID == nil || *lock.StripePriceID == "" {
		priceID, err := s.createLockPrice(ctx, lock)
		if err != nil {
			s.Logger.Warnw("failed to create provider price for pricing lock",
				"error", err,
				"pricing_lock_id", lock.ID,
			)
			return append(warnings, newWarning(WarnItemSyncFailed,
				"could not create provider price for pricing lock %s", lock.ID)), nil
		}
		lock.StripePriceID = lo.ToPtr(priceID)
		if err := s.PricingLockRepo.Update(ctx, lock); err != nil {
			// The price object is not attached to anything yet, losing
			// track of it cannot bill anyone.
			s.Logger.Warnw("failed to persist provider price id on pricing lock",
				"error", err,
				"pricing_lock_id", lock.ID,
				"stripe_price_id", priceID,
			)
			return append(warnings, newWarning(WarnItemSyncFailed,
				"could not persist provider price for pricing lock %s", lock.ID)), nil
		}
	}

	if lock.HasItem() {
		return warnings, nil
	}

	group, err := s.BillingGroupRepo.Get(ctx, lock.BillingGroupID)
	if err != nil {
		return warnings, err
	}
	primary, err := s.MemberRepo.Get(ctx, group.PrimaryMemberID)
	if err != nil {
		return warnings, err
	}

	if !primary.HasActiveSubscription() {
		// Nothing to attach the item to yet. The lock stays
		// unsynchronized until the primary member has a subscription.
		s.Logger.Debugw("primary member has no active subscription, deferring item sync",
			"billing_group_id", group.ID,
			"pricing_lock_id", lock.ID,
		)
		return warnings, nil
	}

	itemID, err := s.Provider.AddSubscriptionItem(ctx, *primary.StripeSubscriptionID, *lock.StripePriceID, 1)
	if err != nil {
		s.Logger.Warnw("failed to create provider subscription item for pricing lock",
			"error", err,
			"pricing_lock_id", lock.ID,
			"stripe_subscription_id", *primary.StripeSubscriptionID,
		)
		return append(warnings, newWarning(WarnItemSyncFailed,
			"could not create provider subscription item for pricing lock %s", lock.ID)), nil
	}

	lock.StripeSubscriptionItemID = lo.ToPtr(itemID)
	if err := s.PricingLockRepo.Update(ctx, lock); err != nil {
		// An item no lock row records would bill the primary invisibly.
		// Take it back out before reporting the failure.
		s.Logger.Warnw("failed to persist provider item id, removing the item",
			"error", err,
			"pricing_lock_id", lock.ID,
			"stripe_subscription_item_id", itemID,
		)
		if _, removeErr := s.Provider.RemoveSubscriptionItem(ctx, itemID, true); removeErr != nil {
			s.Logger.Errorw("failed to remove unrecorded provider subscription item",
				"error", removeErr,
				"stripe_subscription_item_id", itemID,
			)
		}
		lock.StripeSubscriptionItemID = nil
		return append(warnings, newWarning(WarnItemSyncFailed,
			"could not persist provider subscription item for pricing lock %s", lock.ID)), nil
	}
	return warnings, nil
}

func (s *itemSyncService) RemoveItem(ctx context.Context, lock *pricinglock.PricingLock) (provider.ItemRemoval, error) {
	if !lock.HasItem() {
		return provider.ItemAlreadyAbsent, nil
	}

	removal, err := s.Provider.RemoveSubscriptionItem(ctx, *lock.StripeSubscriptionItemID, true)
	if err != nil {
		return "", err
	}

	lock.StripeSubscriptionItemID = nil
	if err := s.PricingLockRepo.Update(ctx, lock); err != nil {
		if ierr.IsNotFound(err) {
			return removal, nil
		}
		return removal, err
	}
	return removal, nil
}

// createLockPrice creates a dedicated provider price from the locked
// fields. Locks are 1:1 with their own price object so a shared price is
// never mutated out from under another lock.
func (s *itemSyncService) createLockPrice(ctx context.Context, lock *pricinglock.PricingLock) (string, error) {
	a, err := s.AddonRepo.Get(ctx, lock.AddonID)
	if err != nil {
		return "", err
	}

	productID := a.StripeProductID
	if productID == "" {
		productID, err = s.Provider.CreateProduct(ctx, provider.ProductParams{
			Name:        a.Name,
			Description: a.Description,
		})
		if err != nil {
			return "", err
		}
		a.StripeProductID = productID
		if err := s.AddonRepo.Update(ctx, a); err != nil {
			return "", err
		}
	}

	return s.Provider.CreatePrice(ctx, provider.PriceParams{
		ProductID:     productID,
		Currency:      lock.LockedCurrency,
		Amount:        lock.LockedCost,
		Interval:      lock.LockedInterval,
		IntervalCount: lock.LockedIntervalCount,
		Nickname:      a.Name + " (locked)",
	})
}
