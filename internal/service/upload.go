package service

import (
	"Go_Site/internal/storage"
	"Go_Site/model"
	"Go_Site/utils"
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// UploadInput is one image upload.
type UploadInput struct {
	Name   string
	Reader io.Reader
	Size   int64
}

// UploadAsset stores a new image and registers it. The placeholder is built
// before anything is written.
func (s *AssetService) UploadAsset(ctx context.Context, in UploadInput) (*model.Asset, error) {
	name, err := utils.SanitizeDisplayName(in.Name)
	if err != nil {
		return nil, err
	}
	limit := s.media.MaxUploadBytes
	if limit > 0 && in.Size > limit {
		return nil, ErrUploadTooLarge
	}

	reader := in.Reader
	if limit > 0 {
		reader = io.LimitReader(in.Reader, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrUploadTooLarge
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrUnsupportedImage, err.Error())
	}
	placeholder, err := BuildPlaceholder(img, s.media.PlaceholderWidth)
	if err != nil {
		return nil, err
	}

	quota, err := s.QuotaUsage(ctx)
	if err != nil {
		return nil, err
	}
	if !quota.Allows(int64(len(data))) {
		return nil, ErrQuotaExceeded
	}

	release, err := s.lock(ctx, nameLockKey(name))
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.ensureNameFree(ctx, "", name); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	key := s.locator.ObjectKey(name)
	asset := &model.Asset{
		ID:           uuid.NewString(),
		Name:         name,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		Bytes:        int64(len(data)),
		Format:       format,
		ResourceType: s.media.ResourceType,
		ObjectKey:    key,
		SecureURL:    s.locator.PublicURL(key),
		Placeholder:  placeholder,
	}

	if err := s.store.PutObject(ctx, s.locator.Bucket, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
		ContentType: "image/" + format,
	}); err != nil {
		return nil, &RemoteStorageError{Op: "upload", AssetID: asset.ID, Err: errors.Wrapf(err, "put object %s", key)}
	}
	if err := s.registry.Create(ctx, asset); err != nil {
		if rmErr := s.store.RemoveObject(context.WithoutCancel(ctx), s.locator.Bucket, key); rmErr != nil {
			utils.Log.Error("remove orphaned upload failed", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, err
	}
	s.cache.Set(ctx, asset)
	utils.Log.Info("asset uploaded",
		zap.String("asset_id", asset.ID),
		zap.String("name", name),
		zap.Int64("bytes", asset.Bytes),
	)
	return asset, nil
}
