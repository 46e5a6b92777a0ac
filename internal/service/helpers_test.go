package service

import (
	"Go_Site/config"
	"Go_Site/internal/repo"
	"Go_Site/internal/storage"
	"Go_Site/internal/task"
	"Go_Site/model"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// flakyStore wraps a MemoryStore and fails selected calls.
type flakyStore struct {
	*storage.MemoryStore
	mu            sync.Mutex
	putErr        error
	statErr       error
	copyErr       error
	removeErr     error
	removeErrKey  string // when set only removes of this key fail
	removedObject []string
}

func (f *flakyStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts storage.PutOptions) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryStore.PutObject(ctx, bucket, object, reader, size, opts)
}

func (f *flakyStore) StatObject(ctx context.Context, bucket, object string) (storage.ObjectInfo, error) {
	if f.statErr != nil {
		return storage.ObjectInfo{}, f.statErr
	}
	return f.MemoryStore.StatObject(ctx, bucket, object)
}

func (f *flakyStore) CopyObject(ctx context.Context, dest storage.CopyDest, src storage.CopySource) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	return f.MemoryStore.CopyObject(ctx, dest, src)
}

func (f *flakyStore) RemoveObject(ctx context.Context, bucket, object string) error {
	f.mu.Lock()
	f.removedObject = append(f.removedObject, object)
	f.mu.Unlock()
	if f.removeErr != nil && (f.removeErrKey == "" || f.removeErrKey == object) {
		return f.removeErr
	}
	return f.MemoryStore.RemoveObject(ctx, bucket, object)
}

// flakyRegistry fails the local mutation steps a set number of times.
// A negative count fails forever.
type flakyRegistry struct {
	AssetRegistry
	deleteErr      error
	deleteFailures int
	deleteCalls    int
	renameErr      error
	renameFailures int
	renameCalls    int
	createErr      error
}

func (r *flakyRegistry) Delete(ctx context.Context, id string) error {
	r.deleteCalls++
	if r.deleteErr != nil && (r.deleteFailures < 0 || r.deleteCalls <= r.deleteFailures) {
		return r.deleteErr
	}
	return r.AssetRegistry.Delete(ctx, id)
}

func (r *flakyRegistry) UpdateDisplayName(ctx context.Context, id, newName string) (*model.Asset, error) {
	r.renameCalls++
	if r.renameErr != nil && (r.renameFailures < 0 || r.renameCalls <= r.renameFailures) {
		return nil, r.renameErr
	}
	return r.AssetRegistry.UpdateDisplayName(ctx, id, newName)
}

func (r *flakyRegistry) Create(ctx context.Context, asset *model.Asset) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.AssetRegistry.Create(ctx, asset)
}

type fixture struct {
	db       *gorm.DB
	store    *flakyStore
	registry *flakyRegistry
	locator  storage.Locator
	svc      *AssetService
}

func testMediaConfig() config.MediaConfig {
	media := config.DefaultMediaConfig()
	media.QuotaBytes = 1 << 20
	media.LockWait = 50 * time.Millisecond
	media.LocalRetryDelays = []time.Duration{time.Millisecond, time.Millisecond}
	return media
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithMedia(t, testMediaConfig())
}

func newFixtureWithMedia(t *testing.T, media config.MediaConfig) *fixture {
	t.Helper()
	db, err := repo.OpenMemorySQLite(strings.ReplaceAll(uuid.NewString(), "-", ""))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	locator := storage.Locator{Bucket: "site-media", Prefix: media.ObjectPrefix, BaseURL: "https://cdn.example.com/site-media"}
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	registry := &flakyRegistry{AssetRegistry: NewGormRegistry(db, locator)}
	svc, err := NewAssetService(Options{
		DB:       db,
		Registry: registry,
		Store:    store,
		Locator:  locator,
		Locker:   repo.NewLocalLocker(media.LockWait),
		Enqueuer: task.NewQueue(db, nil),
		Media:    media,
	})
	require.NoError(t, err)
	return &fixture{db: db, store: store, registry: registry, locator: locator, svc: svc}
}

// seedAsset registers an asset and stores a matching remote object.
func (f *fixture) seedAsset(t *testing.T, name string, size int64) *model.Asset {
	t.Helper()
	asset := &model.Asset{
		ID:           uuid.NewString(),
		Name:         name,
		Width:        100,
		Height:       50,
		Bytes:        size,
		Format:       "jpg",
		ResourceType: "image",
	}
	require.NoError(t, f.registry.AssetRegistry.Create(context.Background(), asset))
	require.NoError(t, f.store.MemoryStore.PutObject(context.Background(), f.locator.Bucket, asset.ObjectKey,
		bytes.NewReader(make([]byte, size)), size, storage.PutOptions{ContentType: "image/jpeg"}))
	return asset
}

func (f *fixture) create(t *testing.T, value interface{}) {
	t.Helper()
	require.NoError(t, f.db.Omit(clause.Associations).Create(value).Error)
}

func strPtr(s string) *string {
	return &s
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func countRows(t *testing.T, db *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(value).Count(&n).Error)
	return n
}
