package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	ierr "github.com/membermatters/memberportal/internal/errors"
)

// OwnGroup is what a member sees of their own billing arrangement:
// either the group they belong to or the group they are invited to.
type OwnGroup struct {
	Group         *billinggroup.BillingGroup
	InvitedTo     *billinggroup.BillingGroup
	IsPrimary     bool
	Members       []*member.Member
	InvitedEmails []string
}

func (s *billingGroupService) GetOwnGroup(ctx context.Context, memberID string) (*OwnGroup, error) {
	m, err := s.MemberRepo.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}

	out := &OwnGroup{}
	switch {
	case m.InGroup():
		group, err := s.BillingGroupRepo.Get(ctx, *m.BillingGroupID)
		if err != nil {
			return nil, err
		}
		out.Group = group
		out.IsPrimary = group.PrimaryMemberID == m.ID
		members, invited, err := s.GroupMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		out.Members = members
		for _, inv := range invited {
			out.InvitedEmails = append(out.InvitedEmails, inv.Email)
		}
	case m.HasPendingInvite():
		group, err := s.BillingGroupRepo.Get(ctx, *m.BillingGroupInviteID)
		if err != nil {
			return nil, err
		}
		out.InvitedTo = group
	}
	return out, nil
}

func (s *billingGroupService) CreateOwnGroup(ctx context.Context, memberID, name string) (*billinggroup.BillingGroup, error) {
	return s.CreateGroup(ctx, name, memberID)
}

func (s *billingGroupService) DeleteOwnGroup(ctx context.Context, memberID string) error {
	group, err := s.BillingGroupRepo.GetByPrimaryMember(ctx, memberID)
	if err != nil {
		return err
	}
	return s.DeleteGroup(ctx, group.ID)
}

// AddMemberByEmail lets a primary member add someone to their own group
// by email address. The add takes effect immediately, invites are a
// separate operator-driven flow.
func (s *billingGroupService) AddMemberByEmail(ctx context.Context, actorMemberID, email string) (*TransitionResult, error) {
	group, err := s.requirePrimary(ctx, actorMemberID)
	if err != nil {
		return nil, err
	}
	target, err := s.MemberRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if target.ID == actorMemberID {
		return nil, ierr.NewError("cannot add yourself").
			WithHint("You already belong to this billing group").
			Mark(ierr.ErrValidation)
	}
	// Unlike the admin surface, a primary never pulls a member out of
	// another group.
	if target.InGroup() {
		return nil, ierr.NewError("member already belongs to a billing group").
			WithHint("This member is already part of a billing group").
			Mark(ierr.ErrAlreadyExists)
	}
	return s.AddMember(ctx, group.ID, target.ID)
}

// RemoveMemberByEmail lets a primary member remove a member or
// outstanding invite from their own group.
func (s *billingGroupService) RemoveMemberByEmail(ctx context.Context, actorMemberID, email string) (*TransitionResult, error) {
	group, err := s.requirePrimary(ctx, actorMemberID)
	if err != nil {
		return nil, err
	}
	target, err := s.MemberRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if target.HasPendingInvite() && *target.BillingGroupInviteID == group.ID {
		return s.CancelInvite(ctx, group.ID, target.ID)
	}
	return s.RemoveMember(ctx, group.ID, target.ID)
}

func (s *billingGroupService) requirePrimary(ctx context.Context, memberID string) (*billinggroup.BillingGroup, error) {
	group, err := s.BillingGroupRepo.GetByPrimaryMember(ctx, memberID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("member is not a billing group primary").
				WithHint("Only the primary member can manage the billing group").
				Mark(ierr.ErrPermissionDenied)
		}
		return nil, err
	}
	return group, nil
}
