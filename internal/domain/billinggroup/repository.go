package billinggroup

import (
	"context"
)

// Repository defines the interface for billing group persistence operations
type Repository interface {
	Create(ctx context.Context, g *BillingGroup) error
	Get(ctx context.Context, id string) (*BillingGroup, error)
	GetByName(ctx context.Context, name string) (*BillingGroup, error)
	GetByPrimaryMember(ctx context.Context, memberID string) (*BillingGroup, error)
	List(ctx context.Context) ([]*BillingGroup, error)
	Update(ctx context.Context, g *BillingGroup) error
	Delete(ctx context.Context, id string) error
}
