package service

import (
	"Go_Site/internal/storage"
	"Go_Site/model"
	"Go_Site/utils"
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrUnknownReconcileOp is returned for tasks with an op this service cannot apply.
var ErrUnknownReconcileOp = errors.New("unknown reconcile op")

// openReconcileStatuses are the task states the worker has not settled yet.
var openReconcileStatuses = []string{model.ReconcilePending, model.ReconcileRetrying, model.ReconcileRunning}

// ApplyReconcile finishes the registry side of a partially applied operation.
// It is idempotent: a task whose registry state already matches is a no-op.
func (s *AssetService) ApplyReconcile(ctx context.Context, task *model.ReconcileTask) error {
	release, err := s.lock(ctx, assetLockKey(task.AssetID))
	if err != nil {
		return err
	}
	defer release()

	switch task.Op {
	case model.ReconcileOpDelete:
		// content may have been pointed at the row after the object was removed
		usage, err := s.index.collect(ctx, task.AssetID)
		if err != nil {
			return err
		}
		if usage.InUse() {
			return &ConflictError{AssetID: task.AssetID, Usage: usage}
		}
		err = s.registry.Delete(ctx, task.AssetID)
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		if err != nil {
			return err
		}
		s.cache.Invalidate(ctx, task.AssetID)
	case model.ReconcileOpRename:
		asset, err := s.registry.Get(ctx, task.AssetID)
		if err != nil {
			return err
		}
		if asset.Name != task.NewName {
			if _, err := s.registry.UpdateDisplayName(ctx, task.AssetID, task.NewName); err != nil {
				return err
			}
		}
		s.cache.Invalidate(ctx, task.AssetID)
	default:
		return errors.Wrapf(ErrUnknownReconcileOp, "%q", task.Op)
	}
	utils.Log.Info("reconcile applied",
		zap.Uint64("task_id", task.ID),
		zap.String("op", task.Op),
		zap.String("asset_id", task.AssetID),
	)
	return nil
}

// ensureSettled refuses to touch an asset whose remote and local state are
// still being brought back in line.
func (s *AssetService) ensureSettled(ctx context.Context, assetID string) error {
	var open int64
	if err := s.db.WithContext(ctx).Model(&model.ReconcileTask{}).
		Where("asset_id = ? AND status IN ?", assetID, openReconcileStatuses).
		Count(&open).Error; err != nil {
		return err
	}
	if open > 0 {
		return errors.Wrapf(ErrReconcilePending, "asset %q", assetID)
	}
	return nil
}

// ensureNameFree refuses name for asset id when another asset holds it in the
// registry, an unfinished rename already moved an object onto it, or its key
// is occupied in the store.
func (s *AssetService) ensureNameFree(ctx context.Context, id, name string) error {
	existing, err := s.registry.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != id:
		return &DuplicateNameError{Name: name}
	case err != nil && !errors.Is(err, ErrNotFound):
		return err
	}

	var reserved int64
	if err := s.db.WithContext(ctx).Model(&model.ReconcileTask{}).
		Where("op = ? AND new_name = ? AND asset_id <> ? AND status IN ?",
			model.ReconcileOpRename, name, id, openReconcileStatuses).
		Count(&reserved).Error; err != nil {
		return err
	}
	if reserved > 0 {
		return &DuplicateNameError{Name: name}
	}

	key := s.locator.ObjectKey(name)
	_, err = s.store.StatObject(ctx, s.locator.Bucket, key)
	switch {
	case err == nil:
		utils.Log.Warn("display name blocked by an unregistered object", zap.String("name", name), zap.String("key", key))
		return &DuplicateNameError{Name: name}
	case !errors.Is(err, storage.ErrObjectNotFound):
		return &RemoteStorageError{Op: "stat", AssetID: id, Err: errors.Wrapf(err, "stat object %s", key)}
	}
	return nil
}
