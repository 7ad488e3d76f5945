package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membermatters/memberportal/internal/api/dto"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/service"
)

type MemberHandler struct {
	service service.MemberService
	log     *logger.Logger
}

func NewMemberHandler(service service.MemberService, log *logger.Logger) *MemberHandler {
	return &MemberHandler{service: service, log: log}
}

func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req dto.CreateMemberRequest
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

	m, err := h.service.CreateMember(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to create member", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("member ID is required").
			WithHint("Please provide a valid member ID").
			Mark(ierr.ErrValidation))
		return
	}

	m, err := h.service.GetMember(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) ListMembers(c *gin.Context) {
	members, err := h.service.ListMembers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// BillingInfo expands the member's provider-side subscription detail.
func (h *MemberHandler) BillingInfo(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.service.BillingInfo(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
