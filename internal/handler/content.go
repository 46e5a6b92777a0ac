package handler

import (
	"Go_Site/internal/dto"
	"Go_Site/internal/service"
	"Go_Site/utils"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the content-side reference edits.
type ContentHandler struct {
	svc *service.AssetService
}

// NewContentHandler builds a ContentHandler.
func NewContentHandler(svc *service.AssetService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// Reassign points an entity role at another asset.
func (h *ContentHandler) Reassign(c *gin.Context) {
	var req dto.ReassignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entity, err := h.svc.ReassignRole(c.Request.Context(), req.EntityKind, req.EntityID, req.Role, req.AssetID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, entity)
}

// Detach clears an entity role or removes a gallery membership.
func (h *ContentHandler) Detach(c *gin.Context) {
	var req dto.DetachRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entity, err := h.svc.DetachRole(c.Request.Context(), req.EntityKind, req.EntityID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, entity)
}

// AddGalleryImage appends an asset to a gallery.
func (h *ContentHandler) AddGalleryImage(c *gin.Context) {
	var req dto.AddGalleryImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.svc.AddGalleryImage(c.Request.Context(), req.Position, req.AssetID, req.Alt)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, item)
}

// ListGallery returns one gallery in display order.
func (h *ContentHandler) ListGallery(c *gin.Context) {
	items, err := h.svc.ListGallery(c.Request.Context(), c.Param("position"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, items)
}

// SetAboutUsInUse switches the live about-us row.
func (h *ContentHandler) SetAboutUsInUse(c *gin.Context) {
	var req dto.SetAboutUsInUseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	about, err := h.svc.SetAboutUsInUse(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, about)
}
