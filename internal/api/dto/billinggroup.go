package dto

import (
	"github.com/membermatters/memberportal/internal/domain/billinggroup"
	"github.com/membermatters/memberportal/internal/domain/member"
	"github.com/membermatters/memberportal/internal/types"
	"github.com/membermatters/memberportal/internal/validator"
)

type CreateBillingGroupRequest struct {
	Name            string `json:"name" validate:"required"`
	PrimaryMemberID string `json:"primary_member_id" validate:"required"`
}

func (r CreateBillingGroupRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type UpdateBillingGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r UpdateBillingGroupRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// MemberActionRequest drives the admin membership endpoint.
type MemberActionRequest struct {
	Action   string `json:"action" validate:"required,oneof=add remove"`
	MemberID string `json:"member_id" validate:"required"`
}

func (r MemberActionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// InviteActionRequest drives the admin invite endpoint.
type InviteActionRequest struct {
	Action   string `json:"action" validate:"required,oneof=invite cancel"`
	MemberID string `json:"member_id" validate:"required"`
}

func (r InviteActionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// InviteDecisionRequest drives the portal invite endpoint.
type InviteDecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=accept decline"`
}

func (r InviteDecisionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CreateOwnGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r CreateOwnGroupRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type GroupMemberEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r GroupMemberEmailRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type GroupMemberResponse struct {
	ID                 string                   `json:"id"`
	Email              string                   `json:"email"`
	Name               string                   `json:"name"`
	State              types.MemberState        `json:"state"`
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	IsPrimary          bool                     `json:"is_primary"`
}

type BillingGroupResponse struct {
	ID              string                `json:"id"`
	LookupKey       string                `json:"lookup_key"`
	Name            string                `json:"name"`
	PrimaryMemberID string                `json:"primary_member_id"`
	Members         []GroupMemberResponse `json:"members,omitempty"`
	InvitedEmails   []string              `json:"invited_emails,omitempty"`
}

func NewBillingGroupResponse(g *billinggroup.BillingGroup) *BillingGroupResponse {
	return &BillingGroupResponse{
		ID:              g.ID,
		LookupKey:       g.LookupKey,
		Name:            g.Name,
		PrimaryMemberID: g.PrimaryMemberID,
	}
}

func (r *BillingGroupResponse) WithMembers(g *billinggroup.BillingGroup, members []*member.Member, invited []*member.Member) *BillingGroupResponse {
	for _, m := range members {
		r.Members = append(r.Members, GroupMemberResponse{
			ID:                 m.ID,
			Email:              m.Email,
			Name:               m.FullName(),
			State:              m.State,
			SubscriptionStatus: m.SubscriptionStatus,
			IsPrimary:          m.ID == g.PrimaryMemberID,
		})
	}
	for _, m := range invited {
		r.InvitedEmails = append(r.InvitedEmails, m.Email)
	}
	return r
}

// WarningResponse mirrors service warnings on API results.
type WarningResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

type TransitionResponse struct {
	MemberID       string            `json:"member_id"`
	BillingGroupID *string           `json:"billing_group_id"`
	Warnings       []WarningResponse `json:"warnings,omitempty"`
}

type OwnGroupResponse struct {
	Group     *BillingGroupResponse `json:"group,omitempty"`
	InvitedTo *BillingGroupResponse `json:"invited_to,omitempty"`
	IsPrimary bool                  `json:"is_primary"`
}
