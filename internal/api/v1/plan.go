package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membermatters/memberportal/internal/api/dto"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/service"
)

type PlanHandler struct {
	service service.PlanService
	log     *logger.Logger
}

func NewPlanHandler(service service.PlanService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{service: service, log: log}
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
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

	p, err := h.service.CreatePlan(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to create plan", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	id := c.Param("id")
	p, err := h.service.GetPlan(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// ListVisiblePlans serves the self-service signup catalog.
func (h *PlanHandler) ListVisiblePlans(c *gin.Context) {
	plans, err := h.service.ListVisiblePlans(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id := c.Param("id")
	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	p, err := h.service.UpdatePlan(c.Request.Context(), id, req)
	if err != nil {
		h.log.Errorw("failed to update plan", "plan_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PlanHandler) ArchivePlan(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.ArchivePlan(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "plan archived"})
}
