package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
)

// PricingLockService freezes addon pricing per group member at the
// moment an invite or membership is created.
type PricingLockService interface {
	// Lock creates a pricing lock for the pair from the currently
	// configured additional member addon. Missing or unresolvable
	// configuration is a warning, never an error, membership proceeds
	// without a locked price. An existing lock for the pair is returned
	// untouched, accepted pricing is whatever was locked first.
	Lock(ctx context.Context, group *billinggroup.BillingGroup, m *member.Member) (*pricinglock.PricingLock, []Warning, error)

	// Unlock deletes every lock row for the pair, regardless of whether
	// provider objects were ever synchronized for them.
	Unlock(ctx context.Context, groupID, memberID string) error
}

type pricingLockService struct {
	ServiceParams
}

func NewPricingLockService(params ServiceParams) PricingLockService {
	return &pricingLockService{ServiceParams: params}
}

func (s *pricingLockService) Lock(ctx context.Context, group *billinggroup.BillingGroup, m *member.Member) (*pricinglock.PricingLock, []Warning, error) {
	// An existing lock for the pair wins over the current catalog state.
	existing, err := s.PricingLockRepo.ListByGroupAndMember(ctx, group.ID, m.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil, nil
	}

	cfg, err := s.SettingsRepo.Get(ctx)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, []Warning{newWarning(WarnPricingNotLocked,
				"billing settings are not configured, pricing was not locked for member %s", m.ID)}, nil
		}
		return nil, nil, err
	}

	if cfg.AdditionalMemberAddonID == nil || *cfg.AdditionalMemberAddonID == "" {
		return nil, []Warning{newWarning(WarnPricingNotLocked,
			"no additional member addon is configured, pricing was not locked for member %s", m.ID)}, nil
	}

	a, err := s.AddonRepo.Get(ctx, *cfg.AdditionalMemberAddonID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("configured additional member addon no longer exists",
				"addon_id", *cfg.AdditionalMemberAddonID,
				"member_id", m.ID,
			)
			return nil, []Warning{newWarning(WarnAddonUnresolvable,
				"configured addon %s no longer exists, pricing was not locked", *cfg.AdditionalMemberAddonID)}, nil
		}
		return nil, nil, err
	}

	if a.AddonType != types.AddonTypeAdditionalMember || !a.Visible {
		return nil, []Warning{newWarning(WarnAddonUnresolvable,
			"configured addon %s is not a visible additional member addon, pricing was not locked", a.ID)}, nil
	}

	lock := &pricinglock.PricingLock{
		ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRICING_LOCK),
		BillingGroupID:      group.ID,
		MemberID:            m.ID,
		AddonID:             a.ID,
		LockedCost:          a.Cost,
		LockedCurrency:      a.Currency,
		LockedInterval:      a.Interval,
		LockedIntervalCount: a.IntervalCount,
		BaseModel:           types.GetDefaultBaseModel(ctx),
	}
	if err := lock.Validate(); err != nil {
		return nil, nil, err
	}
	if err := s.PricingLockRepo.Create(ctx, lock); err != nil {
		return nil, nil, err
	}

	s.Logger.Infow("locked addon pricing for group member",
		"billing_group_id", group.ID,
		"member_id", m.ID,
		"addon_id", a.ID,
		"locked_cost", lock.LockedCost,
	)
	return lock, nil, nil
}

func (s *pricingLockService) Unlock(ctx context.Context, groupID, memberID string) error {
	locks, err := s.PricingLockRepo.ListByGroupAndMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}

	for _, l := range locks {
		if err := s.PricingLockRepo.Delete(ctx, l.ID); err != nil {
			if ierr.IsNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}
