package testutil

import (
	"context"
	"sync"

	"github.com/membermatters/memberportal/internal/domain/settings"
	ierr "github.com/membermatters/memberportal/internal/errors"
)

// InMemorySettingsStore implements settings.Repository
type InMemorySettingsStore struct {
	mu       sync.RWMutex
	settings *settings.BillingSettings
}

func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{}
}

func (s *InMemorySettingsStore) Get(ctx context.Context) (*settings.BillingSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, ierr.NewError("billing settings not found").
			WithHint("Billing settings have not been configured").
			Mark(ierr.ErrNotFound)
	}
	return s.settings, nil
}

func (s *InMemorySettingsStore) Update(ctx context.Context, bs *settings.BillingSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = bs
	return nil
}

func (s *InMemorySettingsStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = nil
}
