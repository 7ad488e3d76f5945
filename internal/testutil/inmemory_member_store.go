package testutil

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/member"
	ierr "github.com/membermatters/memberportal/internal/errors"
)

// InMemoryMemberStore implements member.Repository
type InMemoryMemberStore struct {
	*InMemoryStore[*member.Member]
}

func NewInMemoryMemberStore() *InMemoryMemberStore {
	return &InMemoryMemberStore{
		InMemoryStore: NewInMemoryStore[*member.Member](),
	}
}

func memberSortFn(i, j *member.Member) bool {
	return i.CreatedAt.Before(j.CreatedAt)
}

func (s *InMemoryMemberStore) Create(ctx context.Context, m *member.Member) error {
	return s.InMemoryStore.Create(ctx, m.ID, m)
}

func (s *InMemoryMemberStore) Get(ctx context.Context, id string) (*member.Member, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryMemberStore) GetByEmail(ctx context.Context, email string) (*member.Member, error) {
	members, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, m *member.Member, _ interface{}) bool {
		return m.Email == email
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ierr.NewError("member not found").
			WithHint("No member with this email").
			Mark(ierr.ErrNotFound)
	}
	return members[0], nil
}

func (s *InMemoryMemberStore) GetByStripeCustomerID(ctx context.Context, customerID string) (*member.Member, error) {
	members, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, m *member.Member, _ interface{}) bool {
		return m.StripeCustomerID == customerID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ierr.NewError("member not found").
			WithHint("No member with this customer ID").
			Mark(ierr.ErrNotFound)
	}
	return members[0], nil
}

func (s *InMemoryMemberStore) List(ctx context.Context) ([]*member.Member, error) {
	return s.InMemoryStore.List(ctx, nil, nil, memberSortFn)
}

func (s *InMemoryMemberStore) ListByGroup(ctx context.Context, groupID string) ([]*member.Member, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, m *member.Member, _ interface{}) bool {
		return m.BillingGroupID != nil && *m.BillingGroupID == groupID
	}, memberSortFn)
}

func (s *InMemoryMemberStore) ListInvitedToGroup(ctx context.Context, groupID string) ([]*member.Member, error) {
	return s.InMemoryStore.List(ctx, nil, func(ctx context.Context, m *member.Member, _ interface{}) bool {
		return m.BillingGroupInviteID != nil && *m.BillingGroupInviteID == groupID
	}, memberSortFn)
}

func (s *InMemoryMemberStore) Update(ctx context.Context, m *member.Member) error {
	return s.InMemoryStore.Update(ctx, m.ID, m)
}

func (s *InMemoryMemberStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
