package service

import (
	"Go_Site/internal/repo"
	"Go_Site/model"
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidGallery is returned for a gallery position outside the configured list.
var ErrInvalidGallery = errors.New("unknown gallery position")

// AddGalleryImage appends an existing asset to a gallery.
func (s *AssetService) AddGalleryImage(ctx context.Context, position, assetID, alt string) (*model.GalleryImage, error) {
	position = strings.ToUpper(strings.TrimSpace(position))
	if !s.validGallery(position) {
		return nil, errors.Wrapf(ErrInvalidGallery, "%q", position)
	}

	release, err := s.lock(ctx, assetLockKey(assetID))
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.registry.Get(ctx, assetID); err != nil {
		return nil, err
	}
	if err := s.ensureSettled(ctx, assetID); err != nil {
		return nil, err
	}
	var last int
	if err := s.db.WithContext(ctx).Model(&model.GalleryImage{}).
		Where("position = ?", position).
		Select("COALESCE(MAX(display_index), -1)").
		Scan(&last).Error; err != nil {
		return nil, err
	}
	item := &model.GalleryImage{
		AssetID:  assetID,
		Position: position,
		Index:    last + 1,
		Alt:      strings.TrimSpace(alt),
	}
	if err := s.db.WithContext(ctx).Omit("Asset").Create(item).Error; err != nil {
		if repo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyInGallery
		}
		return nil, err
	}
	return item, nil
}

// ListGallery returns a gallery in display order.
func (s *AssetService) ListGallery(ctx context.Context, position string) ([]model.GalleryImage, error) {
	position = strings.ToUpper(strings.TrimSpace(position))
	if !s.validGallery(position) {
		return nil, errors.Wrapf(ErrInvalidGallery, "%q", position)
	}
	var items []model.GalleryImage
	err := s.db.WithContext(ctx).
		Preload("Asset").
		Where("position = ?", position).
		Order("display_index ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (s *AssetService) validGallery(position string) bool {
	for _, p := range s.media.GalleryPositions {
		if p == position {
			return true
		}
	}
	return false
}
