package member

import (
	"context"
)

// Repository defines the interface for member persistence operations
type Repository interface {
	Create(ctx context.Context, m *Member) error
	Get(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
	ListByGroup(ctx context.Context, groupID string) ([]*Member, error)
	ListInvitedToGroup(ctx context.Context, groupID string) ([]*Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id string) error
}
