package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membermatters/memberportal/internal/api/dto"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/service"
)

type BillingGroupHandler struct {
	service service.BillingGroupService
	log     *logger.Logger
}

func NewBillingGroupHandler(service service.BillingGroupService, log *logger.Logger) *BillingGroupHandler {
	return &BillingGroupHandler{service: service, log: log}
}

func transitionResponse(result *service.TransitionResult) dto.TransitionResponse {
	resp := dto.TransitionResponse{
		MemberID:       result.Member.ID,
		BillingGroupID: result.Member.BillingGroupID,
	}
	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, dto.WarningResponse{
			Code:        string(w.Code),
			Message:     w.Message,
			Remediation: w.Remediation,
		})
	}
	return resp
}

func (h *BillingGroupHandler) CreateBillingGroup(c *gin.Context) {
	var req dto.CreateBillingGroupRequest
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

	group, err := h.service.CreateGroup(c.Request.Context(), req.Name, req.PrimaryMemberID)
	if err != nil {
		h.log.Errorw("failed to create billing group", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBillingGroupResponse(group))
}

func (h *BillingGroupHandler) GetBillingGroup(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("billing group ID is required").
			WithHint("Please provide a valid billing group ID").
			Mark(ierr.ErrValidation))
		return
	}

	group, err := h.service.GetGroup(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	members, invited, err := h.service.GroupMembers(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBillingGroupResponse(group).WithMembers(group, members, invited))
}

func (h *BillingGroupHandler) ListBillingGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	resp := make([]*dto.BillingGroupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, dto.NewBillingGroupResponse(g))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BillingGroupHandler) UpdateBillingGroup(c *gin.Context) {
	id := c.Param("id")
	var req dto.UpdateBillingGroupRequest
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

	group, err := h.service.UpdateGroupName(c.Request.Context(), id, req.Name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBillingGroupResponse(group))
}

func (h *BillingGroupHandler) DeleteBillingGroup(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteGroup(c.Request.Context(), id); err != nil {
		h.log.Errorw("failed to delete billing group", "group_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "billing group deleted"})
}

// MemberAction adds or removes a group member. Responses carry the
// warnings accumulated during the transition so operators can follow
// up on provider-side partial failures.
func (h *BillingGroupHandler) MemberAction(c *gin.Context) {
	groupID := c.Param("id")
	var req dto.MemberActionRequest
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
	var err error
	switch req.Action {
	case "add":
		result, err = h.service.AddMember(c.Request.Context(), groupID, req.MemberID)
	case "remove":
		result, err = h.service.RemoveMember(c.Request.Context(), groupID, req.MemberID)
	}
	if err != nil {
		h.log.Errorw("billing group member action failed",
			"group_id", groupID, "member_id", req.MemberID, "action", req.Action, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(result))
}

// InviteAction creates or cancels a pending invite.
func (h *BillingGroupHandler) InviteAction(c *gin.Context) {
	groupID := c.Param("id")
	var req dto.InviteActionRequest
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
	var err error
	switch req.Action {
	case "invite":
		result, err = h.service.InviteMember(c.Request.Context(), groupID, req.MemberID)
	case "cancel":
		result, err = h.service.CancelInvite(c.Request.Context(), groupID, req.MemberID)
	}
	if err != nil {
		h.log.Errorw("billing group invite action failed",
			"group_id", groupID, "member_id", req.MemberID, "action", req.Action, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(result))
}

// ReconcileLocks sweeps pricing locks orphaned by missing members or
// stale group pointers.
func (h *BillingGroupHandler) ReconcileLocks(c *gin.Context) {
	removed, warnings, err := h.service.ReconcileOrphanedLocks(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	resp := gin.H{"removed": removed}
	if len(warnings) > 0 {
		ws := make([]dto.WarningResponse, 0, len(warnings))
		for _, w := range warnings {
			ws = append(ws, dto.WarningResponse{
				Code:        string(w.Code),
				Message:     w.Message,
				Remediation: w.Remediation,
			})
		}
		resp["warnings"] = ws
	}
	c.JSON(http.StatusOK, resp)
}
