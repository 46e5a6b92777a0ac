package service

import (
	"Go_Site/utils"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for display names that cannot be stored.
	ErrInvalidName = utils.ErrInvalidName
	// ErrInvalidRole is returned for an unknown entity kind or role.
	ErrInvalidRole = errors.New("invalid entity kind or role")
	// ErrAssetBusy is returned when another operation holds the asset lock.
	ErrAssetBusy = errors.New("asset is busy, try again")
	// ErrQuotaExceeded is returned when an upload would pass the pool ceiling.
	ErrQuotaExceeded = errors.New("media quota exceeded")
	// ErrIdentifierReused is returned when an upload carries the id of a deleted asset.
	ErrIdentifierReused = errors.New("asset identifier was used by a deleted asset")
	// ErrAlreadyInGallery is returned when a gallery already holds the asset.
	ErrAlreadyInGallery = errors.New("asset already in this gallery")
	// ErrUploadTooLarge is returned for uploads above the configured size.
	ErrUploadTooLarge = errors.New("upload too large")
	// ErrUnsupportedImage is returned for uploads that are not decodable images.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrReconcilePending is returned while a partially applied delete or
	// rename of the asset is still waiting for the reconcile worker.
	ErrReconcilePending = errors.New("asset has an unfinished reconcile task")
)

// NotFoundError reports a missing asset or content entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func assetNotFound(id string) error {
	return &NotFoundError{Kind: "asset", ID: id}
}

// ConflictError blocks a delete while the asset is still referenced.
type ConflictError struct {
	AssetID string
	Usage   Usage
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("asset %q is referenced by %d entities", e.AssetID, e.Usage.Count())
}

// DuplicateNameError reports a display name already taken by another asset.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("display name %q already exists", e.Name)
}

// RemoteStorageError wraps a failed object storage call. When returned, the
// registry was not modified.
type RemoteStorageError struct {
	Op      string
	AssetID string
	Err     error
}

func (e *RemoteStorageError) Error() string {
	return fmt.Sprintf("remote %s of asset %q failed: %v", e.Op, e.AssetID, e.Err)
}

func (e *RemoteStorageError) Unwrap() error {
	return e.Err
}

// PartialFailureError reports that the remote step succeeded but the registry
// could not be updated. TaskID points at the reconcile task, 0 if none was recorded.
type PartialFailureError struct {
	Op      string
	AssetID string
	TaskID  uint64
	Err     error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s of asset %q applied remotely but not locally: %v", e.Op, e.AssetID, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
