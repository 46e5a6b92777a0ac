package service

import (
	"Go_Site/internal/storage"
	"Go_Site/model"
	"Go_Site/utils"
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DeleteAsset removes an unreferenced asset from the object store and then
// from the registry. A referenced asset is refused with ConflictError.
func (s *AssetService) DeleteAsset(ctx context.Context, id string) error {
	release, err := s.lock(ctx, assetLockKey(id))
	if err != nil {
		return err
	}
	defer release()

	asset, err := s.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureSettled(ctx, id); err != nil {
		return err
	}
	usage, err := s.index.collect(ctx, id)
	if err != nil {
		return err
	}
	if usage.InUse() {
		return &ConflictError{AssetID: id, Usage: usage}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.RemoveObject(ctx, s.locator.Bucket, asset.ObjectKey); err != nil {
		return &RemoteStorageError{Op: model.ReconcileOpDelete, AssetID: id, Err: errors.Wrapf(err, "remove object %s", asset.ObjectKey)}
	}

	// the object is gone; finish the registry side even if the caller went away
	local := context.WithoutCancel(ctx)
	err = s.retryLocal(local, "delete", func(ctx context.Context) error {
		return s.registry.Delete(ctx, id)
	})
	s.cache.Invalidate(local, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return s.partialFailure(local, model.ReconcileOpDelete, asset, "", err)
	}
	utils.Log.Info("asset deleted", zap.String("asset_id", id), zap.String("name", asset.Name))
	return nil
}

// RenameAsset changes the display name and moves the remote object to the
// matching key. References hold the id and are not touched.
func (s *AssetService) RenameAsset(ctx context.Context, id, newName string) (*model.Asset, error) {
	name, err := utils.SanitizeDisplayName(newName)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, assetLockKey(id))
	if err != nil {
		return nil, err
	}
	defer release()
	releaseName, err := s.lock(ctx, nameLockKey(name))
	if err != nil {
		return nil, err
	}
	defer releaseName()

	asset, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.Name == name {
		return asset, nil
	}
	if err := s.ensureSettled(ctx, id); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, id, name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newKey := s.locator.ObjectKey(name)
	if err := storage.RenameObject(ctx, s.store, s.locator.Bucket, asset.ObjectKey, newKey); err != nil {
		return nil, &RemoteStorageError{Op: model.ReconcileOpRename, AssetID: id, Err: errors.Wrapf(err, "move object %s to %s", asset.ObjectKey, newKey)}
	}

	local := context.WithoutCancel(ctx)
	var renamed *model.Asset
	err = s.retryLocal(local, "rename", func(ctx context.Context) error {
		var err error
		renamed, err = s.registry.UpdateDisplayName(ctx, id, name)
		return err
	})
	s.cache.Invalidate(local, id)
	if err != nil {
		return nil, s.partialFailure(local, model.ReconcileOpRename, asset, name, err)
	}
	utils.Log.Info("asset renamed",
		zap.String("asset_id", id),
		zap.String("old_name", asset.Name),
		zap.String("new_name", name),
	)
	return renamed, nil
}
