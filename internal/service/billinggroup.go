package service

import (
	"context"

	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/domain/pricinglock"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/samber/lo"
)

// TransitionResult is the outcome of a membership transition. Warnings
// enumerate partial failures, the transition itself succeeded.
type TransitionResult struct {
	Member   *member.Member
	Group    *billinggroup.BillingGroup
	Warnings []Warning

	// Lock created by the transition, synchronized to the provider only
	// after the membership transaction commits.
	pendingLock *pricinglock.PricingLock
}

// BillingGroupService orchestrates billing group membership
// transitions. Every transition is serialized per member and per group
// and sequences subscription cancellation, pricing locks and provider
// item sync in a fixed order so partial failures land in one of the
// enumerated warning states.
type BillingGroupService interface {
	// Group CRUD
	CreateGroup(ctx context.Context, name, primaryMemberID string) (*billinggroup.BillingGroup, error)
	GetGroup(ctx context.Context, id string) (*billinggroup.BillingGroup, error)
	ListGroups(ctx context.Context) ([]*billinggroup.BillingGroup, error)
	UpdateGroupName(ctx context.Context, id, name string) (*billinggroup.BillingGroup, error)
	DeleteGroup(ctx context.Context, id string) error

	// Membership transitions
	AddMember(ctx context.Context, groupID, memberID string) (*TransitionResult, error)
	RemoveMember(ctx context.Context, groupID, memberID string) (*TransitionResult, error)
	InviteMember(ctx context.Context, groupID, memberID string) (*TransitionResult, error)
	CancelInvite(ctx context.Context, groupID, memberID string) (*TransitionResult, error)
	AcceptInvite(ctx context.Context, memberID string) (*TransitionResult, error)
	DeclineInvite(ctx context.Context, memberID string) (*TransitionResult, error)

	// GroupMembers returns the member set and outstanding invites.
	GroupMembers(ctx context.Context, groupID string) ([]*member.Member, []*member.Member, error)

	// Self service surface, acting member scoped
	GetOwnGroup(ctx context.Context, memberID string) (*OwnGroup, error)
	CreateOwnGroup(ctx context.Context, memberID, name string) (*billinggroup.BillingGroup, error)
	DeleteOwnGroup(ctx context.Context, memberID string) error
	AddMemberByEmail(ctx context.Context, actorMemberID, email string) (*TransitionResult, error)
	RemoveMemberByEmail(ctx context.Context, actorMemberID, email string) (*TransitionResult, error)

	// ReconcileOrphanedLocks removes locks whose member no longer
	// belongs to the lock's group.
	ReconcileOrphanedLocks(ctx context.Context) (int, []Warning, error)
}

type billingGroupService struct {
	ServiceParams
	pricingLock PricingLockService
	itemSync    ItemSyncService
	subs        SubscriptionService
}

func NewBillingGroupService(
	params ServiceParams,
	pricingLock PricingLockService,
	itemSync ItemSyncService,
	subs SubscriptionService,
) BillingGroupService {
	return &billingGroupService{
		ServiceParams: params,
		pricingLock:   pricingLock,
		itemSync:      itemSync,
		subs:          subs,
	}
}

func (s *billingGroupService) CreateGroup(ctx context.Context, name, primaryMemberID string) (*billinggroup.BillingGroup, error) {
	var group *billinggroup.BillingGroup
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(primaryMemberID)}); err != nil {
			return err
		}

		primary, err := s.MemberRepo.Get(ctx, primaryMemberID)
		if err != nil {
			return err
		}
		if primary.InGroup() {
			return ierr.NewError("member already belongs to a billing group").
				WithHint("A member can only belong to one billing group").
				WithReportableDetails(map[string]any{"billing_group_id": *primary.BillingGroupID}).
				Mark(ierr.ErrAlreadyExists)
		}
		if primary.HasPendingInvite() {
			return ierr.NewError("member has a pending billing group invite").
				WithHint("Resolve the pending invite before creating a group").
				Mark(ierr.ErrAlreadyExists)
		}

		group = &billinggroup.BillingGroup{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_GROUP),
			LookupKey:       types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_BILLING_GROUP),
			Name:            name,
			PrimaryMemberID: primary.ID,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		}
		if err := group.Validate(); err != nil {
			return err
		}
		if err := s.BillingGroupRepo.Create(ctx, group); err != nil {
			return err
		}

		// The primary is a member of their own group. Their existing
		// subscription is the billing vehicle and stays untouched.
		primary.BillingGroupID = lo.ToPtr(group.ID)
		primary.UpdatedBy = types.GetUserID(ctx)
		if err := primary.Validate(); err != nil {
			return err
		}
		return s.MemberRepo.Update(ctx, primary)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created billing group",
		"billing_group_id", group.ID,
		"name", group.Name,
		"primary_member_id", group.PrimaryMemberID,
	)
	return group, nil
}

func (s *billingGroupService) GetGroup(ctx context.Context, id string) (*billinggroup.BillingGroup, error) {
	return s.BillingGroupRepo.Get(ctx, id)
}

func (s *billingGroupService) ListGroups(ctx context.Context) ([]*billinggroup.BillingGroup, error) {
	return s.BillingGroupRepo.List(ctx)
}

func (s *billingGroupService) UpdateGroupName(ctx context.Context, id, name string) (*billinggroup.BillingGroup, error) {
	group, err := s.BillingGroupRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Name = name
	group.UpdatedBy = types.GetUserID(ctx)
	if err := group.Validate(); err != nil {
		return nil, err
	}
	if err := s.BillingGroupRepo.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *billingGroupService) DeleteGroup(ctx context.Context, id string) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.BillingGroupLockKey(id)}); err != nil {
			return err
		}

		group, err := s.BillingGroupRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		members, err := s.MemberRepo.ListByGroup(ctx, id)
		if err != nil {
			return err
		}
		if len(members) > 1 {
			return ierr.NewError("billing group still has members").
				WithHint("Remove all members other than the primary before deleting the group").
				WithReportableDetails(map[string]any{
					"billing_group_id": id,
					"member_count":     len(members),
				}).
				Mark(ierr.ErrAlreadyExists)
		}

		// Cancel outstanding invites.
		invited, err := s.MemberRepo.ListInvitedToGroup(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range invited {
			if _, err := s.cancelInviteLocked(ctx, group, m); err != nil {
				return err
			}
		}

		// Detach the primary. Their own subscription stays, it was
		// never managed by the group.
		for _, m := range members {
			if err := s.cleanupLocks(ctx, group.ID, m.ID, nil); err != nil {
				return err
			}
			m.BillingGroupID = nil
			m.UpdatedBy = types.GetUserID(ctx)
			if err := s.MemberRepo.Update(ctx, m); err != nil {
				return err
			}
		}

		if err := s.BillingGroupRepo.Delete(ctx, id); err != nil {
			return err
		}

		s.Logger.Infow("deleted billing group",
			"billing_group_id", id,
			"name", group.Name,
		)
		return nil
	})
}

func (s *billingGroupService) AddMember(ctx context.Context, groupID, memberID string) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockTransition(ctx, groupID, memberID); err != nil {
			return err
		}

		group, err := s.BillingGroupRepo.Get(ctx, groupID)
		if err != nil {
			return err
		}
		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}

		result, err = s.addMemberLocked(ctx, group, m)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.syncPendingItem(ctx, result)
	return result, nil
}

// syncPendingItem pushes the transition's new lock to the provider once
// the membership transaction has committed. Each persisted id is its own
// write, failures append to the already successful result.
func (s *billingGroupService) syncPendingItem(ctx context.Context, result *TransitionResult) {
	if result == nil || result.pendingLock == nil {
		return
	}

	warnings, err := s.itemSync.EnsureItem(ctx, result.pendingLock)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		s.Logger.Warnw("provider item sync failed after membership commit",
			"error", err,
			"pricing_lock_id", result.pendingLock.ID,
		)
		result.Warnings = append(result.Warnings, newWarning(WarnItemSyncFailed,
			"could not synchronize provider item for pricing lock %s", result.pendingLock.ID))
	}
}

// addMemberLocked runs the add transition. Callers hold the member and
// group advisory locks.
func (s *billingGroupService) addMemberLocked(ctx context.Context, group *billinggroup.BillingGroup, m *member.Member) (*TransitionResult, error) {
	result := &TransitionResult{Group: group, Member: m}

	if m.InGroup() {
		if *m.BillingGroupID == group.ID {
			return nil, ierr.NewError("member already belongs to this billing group").
				WithHint("The member is already in this billing group").
				Mark(ierr.ErrAlreadyExists)
		}

		oldGroup, err := s.BillingGroupRepo.Get(ctx, *m.BillingGroupID)
		if err != nil {
			return nil, err
		}
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.BillingGroupLockKey(oldGroup.ID)}); err != nil {
			return nil, err
		}

		removed, err := s.removeMemberLocked(ctx, oldGroup, m)
		if err != nil {
			return nil, err
		}
		result.Warnings = append(result.Warnings, removed.Warnings...)
	}

	// The sole abort point: the member's individual subscription must be
	// gone before the group starts paying for them. Nothing downstream
	// has been mutated yet.
	if m.StripeSubscriptionID != nil && *m.StripeSubscriptionID != "" {
		if err := s.subs.CancelWithProration(ctx, m); err != nil {
			return nil, err
		}
	}

	m.BillingGroupID = lo.ToPtr(group.ID)
	m.BillingGroupInviteID = nil
	m.UpdatedBy = types.GetUserID(ctx)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.MemberRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	lock, warnings, err := s.pricingLock.Lock(ctx, group, m)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, warnings...)
	// Provider item sync waits for the commit, no provider object is
	// created under a transaction that could still roll back.
	result.pendingLock = lock

	s.Logger.Infow("added member to billing group",
		"billing_group_id", group.ID,
		"member_id", m.ID,
		"warnings", len(result.Warnings),
	)
	s.Notifier.AddedToGroup(ctx, m.Email, m.FullName(), group.Name)
	return result, nil
}

func (s *billingGroupService) RemoveMember(ctx context.Context, groupID, memberID string) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockTransition(ctx, groupID, memberID); err != nil {
			return err
		}

		group, err := s.BillingGroupRepo.Get(ctx, groupID)
		if err != nil {
			return err
		}
		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}

		result, err = s.removeMemberLocked(ctx, group, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *billingGroupService) removeMemberLocked(ctx context.Context, group *billinggroup.BillingGroup, m *member.Member) (*TransitionResult, error) {
	if !m.InGroup() || *m.BillingGroupID != group.ID {
		return nil, ierr.NewError("member does not belong to this billing group").
			WithHint("The member is not in this billing group").
			WithReportableDetails(map[string]any{
				"billing_group_id": group.ID,
				"member_id":        m.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	if group.PrimaryMemberID == m.ID {
		return nil, ierr.NewError("cannot remove the primary member").
			WithHint("Delete the billing group instead of removing its primary member").
			Mark(ierr.ErrInvalidOperation)
	}

	result := &TransitionResult{Group: group, Member: m}

	// Lock and item cleanup happens before the group pointer is
	// cleared, so a crash mid-operation never leaves a lock for a
	// membership the member's own pointer no longer reflects.
	if err := s.cleanupLocks(ctx, group.ID, m.ID, &result.Warnings); err != nil {
		return nil, err
	}

	m.BillingGroupID = nil
	m.UpdatedBy = types.GetUserID(ctx)
	if err := s.MemberRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	if err := s.subs.CreateIndividualSubscription(ctx, m); err != nil {
		// The member leaves the operation without billing. Warn, never
		// roll back the membership change already made.
		s.Logger.Warnw("failed to create replacement individual subscription",
			"error", err,
			"member_id", m.ID,
		)
		result.Warnings = append(result.Warnings, newWarning(WarnSubscriptionNotCreated,
			"member %s was removed from group %s without a replacement subscription", m.ID, group.ID))
	}

	s.Logger.Infow("removed member from billing group",
		"billing_group_id", group.ID,
		"member_id", m.ID,
		"warnings", len(result.Warnings),
	)
	s.Notifier.RemovedFromGroup(ctx, m.Email, m.FullName(), group.Name)
	return result, nil
}

// cleanupLocks removes every provider item and lock row for the pair.
// Provider failures are appended to warnings when given, local cleanup
// always proceeds.
func (s *billingGroupService) cleanupLocks(ctx context.Context, groupID, memberID string, warnings *[]Warning) error {
	locks, err := s.PricingLockRepo.ListByGroupAndMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}

	for _, l := range locks {
		if _, err := s.itemSync.RemoveItem(ctx, l); err != nil {
			s.Logger.Warnw("failed to remove provider subscription item",
				"error", err,
				"pricing_lock_id", l.ID,
			)
			if warnings != nil {
				*warnings = append(*warnings, newWarning(WarnItemRemoveFailed,
					"provider item removal failed for pricing lock %s", l.ID))
			}
		}
		if err := s.PricingLockRepo.Delete(ctx, l.ID); err != nil && !ierr.IsNotFound(err) {
			return err
		}
	}
	return nil
}

func (s *billingGroupService) InviteMember(ctx context.Context, groupID, memberID string) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockTransition(ctx, groupID, memberID); err != nil {
			return err
		}

		group, err := s.BillingGroupRepo.Get(ctx, groupID)
		if err != nil {
			return err
		}
		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}

		if m.InGroup() {
			return ierr.NewError("member already belongs to a billing group").
				WithHint("Remove the member from their current group before inviting them").
				Mark(ierr.ErrAlreadyExists)
		}
		if m.HasPendingInvite() {
			return ierr.NewError("member already has a pending invite").
				WithHint("Cancel the existing invite first").
				WithReportableDetails(map[string]any{"invited_group_id": *m.BillingGroupInviteID}).
				Mark(ierr.ErrAlreadyExists)
		}

		m.BillingGroupInviteID = lo.ToPtr(group.ID)
		m.UpdatedBy = types.GetUserID(ctx)
		if err := m.Validate(); err != nil {
			return err
		}
		if err := s.MemberRepo.Update(ctx, m); err != nil {
			return err
		}

		// Pricing is locked at invite time. No provider item exists
		// until the invite is accepted.
		_, warnings, err := s.pricingLock.Lock(ctx, group, m)
		if err != nil {
			return err
		}

		result = &TransitionResult{Group: group, Member: m, Warnings: warnings}
		s.Notifier.GroupInvite(ctx, m.Email, m.FullName(), group.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *billingGroupService) CancelInvite(ctx context.Context, groupID, memberID string) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.lockTransition(ctx, groupID, memberID); err != nil {
			return err
		}

		group, err := s.BillingGroupRepo.Get(ctx, groupID)
		if err != nil {
			return err
		}
		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}

		result, err = s.cancelInviteLocked(ctx, group, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *billingGroupService) cancelInviteLocked(ctx context.Context, group *billinggroup.BillingGroup, m *member.Member) (*TransitionResult, error) {
	if !m.HasPendingInvite() || *m.BillingGroupInviteID != group.ID {
		return nil, ierr.NewError("member has no pending invite to this group").
			WithHint("There is no invite to cancel").
			Mark(ierr.ErrNotFound)
	}

	m.BillingGroupInviteID = nil
	m.UpdatedBy = types.GetUserID(ctx)
	if err := s.MemberRepo.Update(ctx, m); err != nil {
		return nil, err
	}

	// Invite locks never had provider items, unconditional unlock.
	if err := s.pricingLock.Unlock(ctx, group.ID, m.ID); err != nil {
		return nil, err
	}

	s.Notifier.GroupInviteCancelled(ctx, m.Email, group.Name)
	return &TransitionResult{Group: group, Member: m}, nil
}

func (s *billingGroupService) AcceptInvite(ctx context.Context, memberID string) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(memberID)}); err != nil {
			return err
		}

		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}
		if !m.HasPendingInvite() {
			return ierr.NewError("member has no pending invite").
				WithHint("There is no invite to accept").
				Mark(ierr.ErrNotFound)
		}
		if m.InGroup() {
			return ierr.NewError("member already belongs to a billing group").
				WithHint("Leave the current group before accepting an invite").
				Mark(ierr.ErrAlreadyExists)
		}

		groupID := *m.BillingGroupInviteID
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.BillingGroupLockKey(groupID)}); err != nil {
			return err
		}
		group, err := s.BillingGroupRepo.Get(ctx, groupID)
		if err != nil {
			return err
		}

		// The invite-time lock survives and carries the accepted
		// pricing, addMemberLocked only creates a lock when the pair
		// has none.
		m.BillingGroupInviteID = nil
		m.UpdatedBy = types.GetUserID(ctx)
		if err := s.MemberRepo.Update(ctx, m); err != nil {
			return err
		}

		result, err = s.addMemberLocked(ctx, group, m)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.syncPendingItem(ctx, result)
	return result, nil
}

func (s *billingGroupService) DeclineInvite(ctx context.Context, memberID string) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(memberID)}); err != nil {
			return err
		}

		m, err := s.MemberRepo.Get(ctx, memberID)
		if err != nil {
			return err
		}
		if !m.HasPendingInvite() {
			return ierr.NewError("member has no pending invite").
				WithHint("There is no invite to decline").
				Mark(ierr.ErrNotFound)
		}

		groupID := *m.BillingGroupInviteID
		if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.BillingGroupLockKey(groupID)}); err != nil {
			return err
		}
		group, err := s.BillingGroupRepo.Get(ctx, groupID)
		if err != nil {
			return err
		}

		m.BillingGroupInviteID = nil
		m.UpdatedBy = types.GetUserID(ctx)
		if err := s.MemberRepo.Update(ctx, m); err != nil {
			return err
		}

		// No provider items exist pre membership, local unlock only.
		if err := s.pricingLock.Unlock(ctx, group.ID, m.ID); err != nil {
			return err
		}

		result = &TransitionResult{Group: group, Member: m}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *billingGroupService) GroupMembers(ctx context.Context, groupID string) ([]*member.Member, []*member.Member, error) {
	members, err := s.MemberRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	invited, err := s.MemberRepo.ListInvitedToGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return members, invited, nil
}

func (s *billingGroupService) ReconcileOrphanedLocks(ctx context.Context) (int, []Warning, error) {
	locks, err := s.PricingLockRepo.List(ctx)
	if err != nil {
		return 0, nil, err
	}

	removed := 0
	var warnings []Warning
	for _, l := range locks {
		m, err := s.MemberRepo.Get(ctx, l.MemberID)
		orphaned := false
		switch {
		case err != nil && ierr.IsNotFound(err):
			orphaned = true
		case err != nil:
			return removed, warnings, err
		default:
			orphaned = !m.InGroup() || *m.BillingGroupID != l.BillingGroupID
			// Invite-time locks are legitimate without membership.
			if orphaned && m.HasPendingInvite() && *m.BillingGroupInviteID == l.BillingGroupID {
				orphaned = false
			}
		}
		if !orphaned {
			continue
		}

		if _, err := s.itemSync.RemoveItem(ctx, l); err != nil {
			warnings = append(warnings, newWarning(WarnItemRemoveFailed,
				"provider item removal failed for orphaned pricing lock %s", l.ID))
		}
		if err := s.PricingLockRepo.Delete(ctx, l.ID); err != nil && !ierr.IsNotFound(err) {
			return removed, warnings, err
		}
		removed++
		s.Logger.Infow("removed orphaned pricing lock",
			"pricing_lock_id", l.ID,
			"billing_group_id", l.BillingGroupID,
			"member_id", l.MemberID,
		)
	}
	return removed, warnings, nil
}

func (s *billingGroupService) lockTransition(ctx context.Context, groupID, memberID string) error {
	if err := s.DB.LockKey(ctx, types.LockRequest{Key: types.MemberLockKey(memberID)}); err != nil {
		return err
	}
	return s.DB.LockKey(ctx, types.LockRequest{Key: types.BillingGroupLockKey(groupID)})
}
