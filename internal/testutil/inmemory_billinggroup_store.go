package testutil

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	ierr "github.com/membermatters/memberportal/internal/errors"
)

// InMemoryBillingGroupStore implements billinggroup.Repository
type InMemoryBillingGroupStore struct {
	*InMemoryStore[*billinggroup.BillingGroup]
}

func NewInMemoryBillingGroupStore() *InMemoryBillingGroupStore {
	return &InMemoryBillingGroupStore{
		InMemoryStore: NewInMemoryStore[*billinggroup.BillingGroup](),
	}
}

func (s *InMemoryBillingGroupStore) Create(ctx context.Context, g *billinggroup.BillingGroup) error {
	return s.InMemoryStore.Create(ctx, g.ID, g)
}

func (s *InMemoryBillingGroupStore) Get(ctx context.Context, id string) (*billinggroup.BillingGroup, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryBillingGroupStore) GetByName(ctx context.Context, name string) (*billinggroup.BillingGroup, error) {
	groups, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, g *billinggroup.BillingGroup, _ interface{}) bool {
		return g.Name == name
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ierr.NewError("billing group not found").
			WithHint("No billing group with this name").
			Mark(ierr.ErrNotFound)
	}
	return groups[0], nil
}

func (s *InMemoryBillingGroupStore) GetByPrimaryMember(ctx context.Context, memberID string) (*billinggroup.BillingGroup, error) {
	groups, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, g *billinggroup.BillingGroup, _ interface{}) bool {
		return g.PrimaryMemberID == memberID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ierr.NewError("billing group not found").
			WithHint("The member is not the primary of any billing group").
			Mark(ierr.ErrNotFound)
	}
	return groups[0], nil
}

func (s *InMemoryBillingGroupStore) List(ctx context.Context) ([]*billinggroup.BillingGroup, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(i, j *billinggroup.BillingGroup) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemoryBillingGroupStore) Update(ctx context.Context, g *billinggroup.BillingGroup) error {
	return s.InMemoryStore.Update(ctx, g.ID, g)
}

func (s *InMemoryBillingGroupStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
