package testutil

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	ierr "github.com/membermatters/memberportal/internal/errors"
)

// InMemoryPricingLockStore implements pricinglock.Repository
type InMemoryPricingLockStore struct {
	*InMemoryStore[*pricinglock.PricingLock]
}

func NewInMemoryPricingLockStore() *InMemoryPricingLockStore {
	return &InMemoryPricingLockStore{
		InMemoryStore: NewInMemoryStore[*pricinglock.PricingLock](),
	}
}

func pricingLockSortFn(i, j *pricinglock.PricingLock) bool {
	return i.CreatedAt.Before(j.CreatedAt)
}

func (s *InMemoryPricingLockStore) Create(ctx context.Context, l *pricinglock.PricingLock) error {
	return s.InMemoryStore.Create(ctx, l.ID, l)
}

func (s *InMemoryPricingLockStore) Get(ctx context.Context, id string) (*pricinglock.PricingLock, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPricingLockStore) GetByGroupAndMember(ctx context.Context, groupID, memberID string) (*pricinglock.PricingLock, error) {
	locks, err := s.ListByGroupAndMember(ctx, groupID, memberID)
	if err != nil {
		return nil, err
	}
	if len(locks) == 0 {
		return nil, ierr.NewError("pricing lock not found").
			WithHint("No pricing lock for this group and member").
			Mark(ierr.ErrNotFound)
	}
	return locks[0], nil
}

func (s *InMemoryPricingLockStore) ListByGroupAndMember(ctx context.Context, groupID, memberID string) ([]*pricinglock.PricingLock, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, l *pricinglock.PricingLock, _ interface{}) bool {
		return l.BillingGroupID == groupID && l.MemberID == memberID
	}, pricingLockSortFn)
}

func (s *InMemoryPricingLockStore) ListByGroup(ctx context.Context, groupID string) ([]*pricinglock.PricingLock, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, l *pricinglock.PricingLock, _ interface{}) bool {
		return l.BillingGroupID == groupID
	}, pricingLockSortFn)
}

func (s *InMemoryPricingLockStore) ListByMember(ctx context.Context, memberID string) ([]*pricinglock.PricingLock, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, l *pricinglock.PricingLock, _ interface{}) bool {
		return l.MemberID == memberID
	}, pricingLockSortFn)
}

func (s *InMemoryPricingLockStore) List(ctx context.Context) ([]*pricinglock.PricingLock, error) {
	return s.InMemoryStore.List(ctx, nil, nil, pricingLockSortFn)
}

func (s *InMemoryPricingLockStore) Update(ctx context.Context, l *pricinglock.PricingLock) error {
	return s.InMemoryStore.Update(ctx, l.ID, l)
}

func (s *InMemoryPricingLockStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
