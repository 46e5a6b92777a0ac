package service

import (
	"Go_Site/internal/repo"
	"Go_Site/internal/storage"
	"Go_Site/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AssetRegistry is the read/write contract for the authoritative asset records.
type AssetRegistry interface {
	Get(ctx context.Context, id string) (*model.Asset, error)
	GetByName(ctx context.Context, name string) (*model.Asset, error)
	Create(ctx context.Context, asset *model.Asset) error
	UpdateDisplayName(ctx context.Context, id, newName string) (*model.Asset, error)
	Delete(ctx context.Context, id string) error
	SumBytes(ctx context.Context) (int64, error)
	ListAll(ctx context.Context) ([]model.Asset, error)
}

// GormRegistry stores assets in the relational database.
type GormRegistry struct {
	db      *gorm.DB
	locator storage.Locator
}

// NewGormRegistry builds a registry over db. locator derives object keys and
// URLs from display names.
func NewGormRegistry(db *gorm.DB, locator storage.Locator) *GormRegistry {
	return &GormRegistry{db: db, locator: locator}
}

// Get loads one asset by id.
func (r *GormRegistry) Get(ctx context.Context, id string) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, assetNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetByName loads one asset by display name. Case sensitivity follows the
// column collation.
func (r *GormRegistry) GetByName(ctx context.Context, name string) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, assetNotFound(name)
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// Create inserts a new asset. Ids of deleted assets are refused.
func (r *GormRegistry) Create(ctx context.Context, asset *model.Asset) error {
	if asset.ObjectKey == "" {
		asset.ObjectKey = r.locator.ObjectKey(asset.Name)
	}
	if asset.SecureURL == "" {
		asset.SecureURL = r.locator.PublicURL(asset.ObjectKey)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tombstones int64
		if err := tx.Model(&model.AssetTombstone{}).Where("id = ?", asset.ID).Count(&tombstones).Error; err != nil {
			return err
		}
		if tombstones > 0 {
			return ErrIdentifierReused
		}
		if err := tx.Create(asset).Error; err != nil {
			if repo.IsDuplicateKeyError(err) {
				var existing int64
				if err := tx.Model(&model.Asset{}).Where("id = ?", asset.ID).Count(&existing).Error; err != nil {
					return err
				}
				if existing > 0 {
					return ErrIdentifierReused
				}
				return &DuplicateNameError{Name: asset.Name}
			}
			return err
		}
		return nil
	})
}

// UpdateDisplayName renames the record and moves its key and URL with it.
func (r *GormRegistry) UpdateDisplayName(ctx context.Context, id, newName string) (*model.Asset, error) {
	key := r.locator.ObjectKey(newName)
	res := r.db.WithContext(ctx).Model(&model.Asset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       newName,
			"object_key": key,
			"secure_url": r.locator.PublicURL(key),
		})
	if res.Error != nil {
		if repo.IsDuplicateKeyError(res.Error) {
			return nil, &DuplicateNameError{Name: newName}
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, assetNotFound(id)
	}
	return r.Get(ctx, id)
}

// Delete removes the record and leaves a tombstone behind.
func (r *GormRegistry) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset model.Asset
		err := tx.Where("id = ?", id).First(&asset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return assetNotFound(id)
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&asset).Error; err != nil {
			return err
		}
		return tx.Save(&model.AssetTombstone{
			ID:        asset.ID,
			Name:      asset.Name,
			DeletedAt: time.Now(),
		}).Error
	})
}

// SumBytes totals the byte size of every asset.
func (r *GormRegistry) SumBytes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Asset{}).
		Select("COALESCE(SUM(bytes), 0)").
		Scan(&total).Error
	return total, err
}

// ListAll returns every asset ordered by display name.
func (r *GormRegistry) ListAll(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.db.WithContext(ctx).Order("name ASC").Find(&assets).Error
	return assets, err
}
