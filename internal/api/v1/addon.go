package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/membermatters/memberportal/internal/api/dto"
	ierr "github.com/membermatters/memberportal/internal/errors"
	"github.com/membermatters/memberportal/internal/logger"
	"github.com/membermatters/memberportal/internal/service"
)

type AddonHandler struct {
	service service.AddonService
	log     *logger.Logger
}

func NewAddonHandler(service service.AddonService, log *logger.Logger) *AddonHandler {
	return &AddonHandler{service: service, log: log}
}

func (h *AddonHandler) CreateAddon(c *gin.Context) {
	var req dto.CreateAddonRequest
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

	a, err := h.service.CreateAddon(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to create addon", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AddonHandler) GetAddon(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("addon ID is required").
			WithHint("Please provide a valid addon ID").
			Mark(ierr.ErrValidation))
		return
	}

	a, err := h.service.GetAddon(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AddonHandler) ListAddons(c *gin.Context) {
	addons, err := h.service.ListAddons(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, addons)
}

func (h *AddonHandler) UpdateAddon(c *gin.Context) {
	id := c.Param("id")
	var req dto.UpdateAddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	a, err := h.service.UpdateAddon(c.Request.Context(), id, req)
	if err != nil {
		h.log.Errorw("failed to update addon", "addon_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AddonHandler) ArchiveAddon(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.ArchiveAddon(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "addon archived"})
}

// SyncAddon pushes the addon's catalog state to the payment provider.
func (h *AddonHandler) SyncAddon(c *gin.Context) {
	id := c.Param("id")
	a, err := h.service.SyncAddon(c.Request.Context(), id)
	if err != nil {
		h.log.Errorw("failed to sync addon", "addon_id", id, "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}
