package service

import (
	"Go_Site/config"
	"Go_Site/internal/repo"
	"Go_Site/internal/storage"
	"Go_Site/model"
	"Go_Site/utils"
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileEnqueuer records a reconcile task for a partially applied operation.
type ReconcileEnqueuer interface {
	Enqueue(ctx context.Context, task *model.ReconcileTask) error
}

// Options wires an AssetService. DB, Store and Locator are required.
type Options struct {
	DB       *gorm.DB
	Registry AssetRegistry
	Store    storage.Store
	Locator  storage.Locator
	Locker   repo.Locker
	Cache    *utils.AssetCache
	Enqueuer ReconcileEnqueuer
	Media    config.MediaConfig
}

// AssetService implements the asset operations: the reference index lookups,
// the guarded delete and rename, reassignment, quota and upload.
type AssetService struct {
	db       *gorm.DB
	registry AssetRegistry
	index    *ReferenceIndex
	store    storage.Store
	locator  storage.Locator
	locker   repo.Locker
	cache    *utils.AssetCache
	enqueuer ReconcileEnqueuer
	media    config.MediaConfig
}

// NewAssetService validates opts and fills defaults for the optional parts.
func NewAssetService(opts Options) (*AssetService, error) {
	if opts.DB == nil {
		return nil, errors.New("asset service: db is required")
	}
	if opts.Store == nil {
		return nil, errors.New("asset service: store is required")
	}
	if opts.Registry == nil {
		opts.Registry = NewGormRegistry(opts.DB, opts.Locator)
	}
	if opts.Locker == nil {
		opts.Locker = repo.NewLocalLocker(opts.Media.LockWait)
	}
	index, err := NewReferenceIndex(opts.DB, opts.Registry, opts.Media.ReferenceParallel)
	if err != nil {
		return nil, err
	}
	return &AssetService{
		db:       opts.DB,
		registry: opts.Registry,
		index:    index,
		store:    opts.Store,
		locator:  opts.Locator,
		locker:   opts.Locker,
		cache:    opts.Cache,
		enqueuer: opts.Enqueuer,
		media:    opts.Media,
	}, nil
}

// Registry exposes the underlying registry.
func (s *AssetService) Registry() AssetRegistry {
	return s.registry
}

// Index exposes the reference index.
func (s *AssetService) Index() *ReferenceIndex {
	return s.index
}

func assetLockKey(id string) string {
	return "asset:" + id
}

func nameLockKey(name string) string {
	// lower-cased so collations that ignore case still serialize
	return "asset-name:" + strings.ToLower(name)
}

// lock acquires key and maps a busy lock to ErrAssetBusy.
func (s *AssetService) lock(ctx context.Context, key string) (func(), error) {
	release, err := s.locker.Acquire(ctx, key)
	if errors.Is(err, repo.ErrLockBusy) {
		return nil, ErrAssetBusy
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

// GetAsset loads one asset, served from the cache when possible.
func (s *AssetService) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}
	asset, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, asset)
	return asset, nil
}

// ListAssets returns the whole pool for the picker.
func (s *AssetService) ListAssets(ctx context.Context) ([]model.Asset, error) {
	return s.registry.ListAll(ctx)
}

// UsageFor returns every entity referencing the asset.
func (s *AssetService) UsageFor(ctx context.Context, id string) (Usage, error) {
	return s.index.UsageFor(ctx, id)
}

// retryLocal runs op, then retries it after each configured delay while it
// keeps failing. NotFound is final.
func (s *AssetService) retryLocal(ctx context.Context, name string, op func(context.Context) error) error {
	err := op(ctx)
	for attempt, delay := range s.media.LocalRetryDelays {
		if err == nil || errors.Is(err, ErrNotFound) {
			return err
		}
		utils.Log.Warn("local step failed, retrying",
			zap.String("op", name),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = op(ctx)
	}
	return err
}

// partialFailure records a reconcile task and builds the error returned to the caller.
func (s *AssetService) partialFailure(ctx context.Context, op string, asset *model.Asset, newName string, cause error) error {
	pf := &PartialFailureError{Op: op, AssetID: asset.ID, Err: cause}
	utils.Log.Error("remote and local asset state diverged",
		zap.String("op", op),
		zap.String("asset_id", asset.ID),
		zap.String("old_name", asset.Name),
		zap.String("new_name", newName),
		zap.Error(cause),
	)
	if s.enqueuer == nil {
		return pf
	}
	task := &model.ReconcileTask{
		Op:        op,
		AssetID:   asset.ID,
		OldName:   asset.Name,
		NewName:   newName,
		Bucket:    s.locator.Bucket,
		ObjectKey: asset.ObjectKey,
		Status:    model.ReconcilePending,
	}
	if err := s.enqueuer.Enqueue(ctx, task); err != nil {
		utils.Log.Error("enqueue reconcile task failed", zap.String("asset_id", asset.ID), zap.Error(err))
		return pf
	}
	pf.TaskID = task.ID
	return pf
}
