package testutil

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/addon"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
)

// InMemoryAddonStore implements addon.Repository
type InMemoryAddonStore struct {
	*InMemoryStore[*addon.Addon]
}

func NewInMemoryAddonStore() *InMemoryAddonStore {
	return &InMemoryAddonStore{
		InMemoryStore: NewInMemoryStore[*addon.Addon](),
	}
}

func (s *InMemoryAddonStore) Create(ctx context.Context, a *addon.Addon) error {
	return s.InMemoryStore.Create(ctx, a.ID, a)
}

func (s *InMemoryAddonStore) Get(ctx context.Context, id string) (*addon.Addon, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryAddonStore) GetByNameAndType(ctx context.Context, name string, addonType types.AddonType) (*addon.Addon, error) {
	addons, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, a *addon.Addon, _ interface{}) bool {
		return a.Name == name && a.AddonType == addonType
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(addons) == 0 {
		return nil, ierr.NewError("addon not found").
			WithHint("No addon with this name and type").
			Mark(ierr.ErrNotFound)
	}
	return addons[0], nil
}

func (s *InMemoryAddonStore) List(ctx context.Context) ([]*addon.Addon, error) {
	return s.InMemoryStore.List(ctx, nil, nil, addonSortFn)
}

func (s *InMemoryAddonStore) ListVisible(ctx context.Context) ([]*addon.Addon, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, a *addon.Addon, _ interface{}) bool {
		return a.Visible
	}, addonSortFn)
}

func addonSortFn(i, j *addon.Addon) bool {
	return i.Name < j.Name
}

func (s *InMemoryAddonStore) Update(ctx context.Context, a *addon.Addon) error {
	return s.InMemoryStore.Update(ctx, a.ID, a)
}

func (s *InMemoryAddonStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
