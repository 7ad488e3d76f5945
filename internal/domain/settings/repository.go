package settings

import (
	"context"
)

// Repository defines the interface for billing settings persistence
type Repository interface {
	Get(ctx context.Context) (*BillingSettings, error)
	Update(ctx context.Context, s *BillingSettings) error
}
