package handler

import (
	"Go_Site/internal/dto"
	"Go_Site/internal/service"
	"Go_Site/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

// AssetHandler serves the asset pool routes.
type AssetHandler struct {
	svc *service.AssetService
}

// NewAssetHandler builds an AssetHandler.
func NewAssetHandler(svc *service.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// List returns every asset for the picker.
func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.svc.ListAssets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.AssetListResponse{Total: len(assets), Assets: assets})
}

// Get returns one asset.
func (h *AssetHandler) Get(c *gin.Context) {
	asset, err := h.svc.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, asset)
}

// Usage lists the entities referencing an asset.
func (h *AssetHandler) Usage(c *gin.Context) {
	id := c.Param("id")
	usage, err := h.svc.UsageFor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, dto.UsageResponse{
		AssetID: id,
		InUse:   usage.InUse(),
		Count:   usage.Count(),
		Usage:   usage,
	})
}

// Quota reports pool usage against the ceiling.
func (h *AssetHandler) Quota(c *gin.Context) {
	quota, err := h.svc.QuotaUsage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, quota)
}

// Upload stores a new image from a multipart form.
func (h *AssetHandler) Upload(c *gin.Context) {
	var req dto.UploadAssetRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.File.Filename
	}
	file, err := req.File.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	asset, err := h.svc.UploadAsset(c.Request.Context(), service.UploadInput{
		Name:   name,
		Reader: file,
		Size:   req.File.Size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, asset)
}

// Rename changes an asset's display name.
func (h *AssetHandler) Rename(c *gin.Context) {
	var req dto.RenameAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	asset, err := h.svc.RenameAsset(c.Request.Context(), req.AssetID, req.NewName)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, asset)
}

// Delete removes an unreferenced asset.
func (h *AssetHandler) Delete(c *gin.Context) {
	var req dto.DeleteAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.DeleteAsset(c.Request.Context(), req.AssetID); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, gin.H{"asset_id": req.AssetID})
}
