package dto

import "Go_Site/model"

// AssetListResponse is the picker listing.
type AssetListResponse struct {
	Total  int           `json:"total"`
	Assets []model.Asset `json:"assets"`
}

// UsageResponse lists every entity referencing an asset.
type UsageResponse struct {
	AssetID string      `json:"asset_id"`
	InUse   bool        `json:"in_use"`
	Count   int         `json:"count"`
	Usage   interface{} `json:"usage"`
}

// ConflictResponse is returned with a blocked delete.
type ConflictResponse struct {
	AssetID string      `json:"asset_id"`
	Usage   interface{} `json:"usage"`
}

// PartialFailureResponse points at the reconcile task for a diverged operation.
type PartialFailureResponse struct {
	AssetID string `json:"asset_id"`
	Op      string `json:"op"`
	TaskID  uint64 `json:"task_id,omitempty"`
}
