package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membermatters/memberportal/internal/api/dto"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/service"
	"github.com/membermatters/memberportal/internal/types"
)

// PortalHandler serves the member self-service surface. Every route is
// scoped to the authenticated member resolved by the request context.
type PortalHandler struct {
	groups  service.BillingGroupService
	subs    service.SubscriptionService
	members service.MemberService
	log     *logger.Logger
}

func NewPortalHandler(
	groups service.BillingGroupService,
	subs service.SubscriptionService,
	members service.MemberService,
	log *logger.Logger,
) *PortalHandler {
	return &PortalHandler{groups: groups, subs: subs, members: members, log: log}
}

func actingMember(c *gin.Context) (string, error) {
	memberID := types.GetMemberID(c.Request.Context())
	if memberID == "" {
		return "", ierr.NewError("no authenticated member").
			WithHint("Authentication is required").
			Mark(ierr.ErrPermissionDenied)
	}
	return memberID, nil
}

func (h *PortalHandler) GetOwnGroup(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	own, err := h.groups.GetOwnGroup(c.Request.Context(), memberID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := dto.OwnGroupResponse{IsPrimary: own.IsPrimary}
	if own.Group != nil {
		resp.Group = dto.NewBillingGroupResponse(own.Group)
		resp.Group.WithMembers(own.Group, own.Members, nil)
		resp.Group.InvitedEmails = own.InvitedEmails
	}
	if own.InvitedTo != nil {
		resp.InvitedTo = dto.NewBillingGroupResponse(own.InvitedTo)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PortalHandler) CreateOwnGroup(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.CreateOwnGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	group, err := h.groups.CreateOwnGroup(c.Request.Context(), memberID, req.Name)
	if err != nil {
		h.log.Errorw("failed to create own billing group", "member_id", memberID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBillingGroupResponse(group))
}

func (h *PortalHandler) DeleteOwnGroup(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.groups.DeleteOwnGroup(c.Request.Context(), memberID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "billing group deleted"})
}

// AddGroupMember adds a member to the caller's group by email, caller
// must be the primary.
func (h *PortalHandler) AddGroupMember(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.GroupMemberEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	result, err := h.groups.AddMemberByEmail(c.Request.Context(), memberID, req.Email)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, transitionResponse(result))
}

func (h *PortalHandler) RemoveGroupMember(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.GroupMemberEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	result, err := h.groups.RemoveMemberByEmail(c.Request.Context(), memberID, req.Email)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, transitionResponse(result))
}

// InviteDecision accepts or declines the caller's pending invite.
func (h *PortalHandler) InviteDecision(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.InviteDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	var result *service.TransitionResult
	switch req.Action {
	case "accept":
		result, err = h.groups.AcceptInvite(c.Request.Context(), memberID)
	case "decline":
		result, err = h.groups.DeclineInvite(c.Request.Context(), memberID)
	}
	if err != nil {
		h.log.Errorw("invite decision failed", "member_id", memberID, "action", req.Action, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(result))
}

func (h *PortalHandler) Signup(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.subs.Signup(c.Request.Context(), memberID, req.PlanID)
	if err != nil {
		h.log.Errorw("subscription signup failed", "member_id", memberID, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PortalHandler) CancelSubscription(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.subs.CancelAtPeriodEnd(c.Request.Context(), memberID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PortalHandler) ResumeSubscription(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.subs.Resume(c.Request.Context(), memberID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PortalHandler) SubscriptionInfo(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.subs.SubscriptionInfo(c.Request.Context(), memberID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PortalHandler) AttachCard(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.AttachCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	m, err := h.members.AttachCard(c.Request.Context(), memberID, req.PaymentMethodID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *PortalHandler) DetachCard(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	m, err := h.members.DetachCard(c.Request.Context(), memberID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *PortalHandler) BillingInfo(c *gin.Context) {
	memberID, err := actingMember(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.members.BillingInfo(c.Request.Context(), memberID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
