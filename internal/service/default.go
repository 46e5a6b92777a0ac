package service

import (
	"Go_Site/config"
	"Go_Site/internal/repo"
	"Go_Site/internal/storage"
	"Go_Site/utils"
)

// NewDefault builds an AssetService over the process-wide database, store
// and Redis client. Call it after the Init* functions have run.
func NewDefault(enqueuer ReconcileEnqueuer) (*AssetService, error) {
	media := config.Media()
	var cache *utils.AssetCache
	if repo.Redis != nil {
		cache = utils.NewAssetCache(utils.NewRedisCache(repo.Redis), media.AssetCacheTTL)
	}
	return NewAssetService(Options{
		DB:       repo.Db,
		Store:    storage.Default,
		Locator:  storage.DefaultLocator(),
		Locker:   repo.NewLocker(media.LockTTL, media.LockWait),
		Cache:    cache,
		Enqueuer: enqueuer,
		Media:    media,
	})
}
