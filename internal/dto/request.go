package dto

import "mime/multipart"

type DeleteAssetRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
}

type RenameAssetRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

type UploadAssetRequest struct {
	Name string                `form:"name"`
	File *multipart.FileHeader `form:"file" binding:"required"`
}

type ReassignRoleRequest struct {
	EntityKind string `json:"entity_kind" binding:"required"`
	EntityID   uint64 `json:"entity_id" binding:"required"`
	Role       string `json:"role" binding:"required"`
	AssetID    string `json:"asset_id" binding:"required"`
}

type DetachRoleRequest struct {
	EntityKind string `json:"entity_kind" binding:"required"`
	EntityID   uint64 `json:"entity_id" binding:"required"`
	Role       string `json:"role" binding:"required"`
}

type AddGalleryImageRequest struct {
	Position string `json:"position" binding:"required"`
	AssetID  string `json:"asset_id" binding:"required"`
	Alt      string `json:"alt"`
}

type SetAboutUsInUseRequest struct {
	ID uint64 `json:"id" binding:"required"`
}

type ListReconcileTasksRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}
