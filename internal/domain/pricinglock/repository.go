package pricinglock

import (
	"context"
)

// Repository defines the interface for pricing lock persistence operations
type Repository interface {
	Create(ctx context.Context, l *PricingLock) error
	Get(ctx context.Context, id string) (*PricingLock, error)
	GetByGroupAndMember(ctx context.Context, groupID, memberID string) (*PricingLock, error)
	ListByGroupAndMember(ctx context.Context, groupID, memberID string) ([]*PricingLock, error)
	ListByGroup(ctx context.Context, groupID string) ([]*PricingLock, error)
	ListByMember(ctx context.Context, memberID string) ([]*PricingLock, error)
	List(ctx context.Context) ([]*PricingLock, error)
	Update(ctx context.Context, l *PricingLock) error
	Delete(ctx context.Context, id string) error
}
