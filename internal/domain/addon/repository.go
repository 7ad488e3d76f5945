package addon

import (
	"context"

	"github.com/membermatters/memberportal/internal/types"
)

// Repository defines the interface for addon catalog persistence operations
type Repository interface {
	Create(ctx context.Context, a *Addon) error
	Get(ctx context.Context, id string) (*Addon, error)
	GetByNameAndType(ctx context.Context, name string, addonType types.AddonType) (*Addon, error)
	List(ctx context.Context) ([]*Addon, error)
	ListVisible(ctx context.Context) ([]*Addon, error)
	Update(ctx context.Context, a *Addon) error
	Delete(ctx context.Context, id string) error
}
