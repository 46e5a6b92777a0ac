package service

import (
	"Go_Site/internal/repo"
	"Go_Site/model"
	"Go_Site/utils"
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EntityAboutUs     = "about_us"
	EntityHero        = "hero"
	EntityService     = "service"
	EntityTestimonial = "testimonial"
	EntityUser        = "user"
	EntityBlogPost    = "blog_post"
	EntityGallery     = "gallery_image"

	RolePrimary   = "primary"
	RoleSecondary = "secondary"
	RoleAvatar    = "avatar"
	RoleGallery   = "gallery"
)

// roleBinding maps an (entity kind, role) pair onto a column.
type roleBinding struct {
	newEntity func() interface{}
	column    string
	// membership rows are removed on detach instead of nulled
	membership bool
}

var roleTable = map[string]map[string]roleBinding{
	EntityAboutUs: {
		RolePrimary:   {newEntity: func() interface{} { return &model.AboutUs{} }, column: "primary_image_id"},
		RoleSecondary: {newEntity: func() interface{} { return &model.AboutUs{} }, column: "secondary_image_id"},
	},
	EntityHero: {
		RolePrimary: {newEntity: func() interface{} { return &model.Hero{} }, column: "image_id"},
	},
	EntityService: {
		RolePrimary:   {newEntity: func() interface{} { return &model.Service{} }, column: "primary_image_id"},
		RoleSecondary: {newEntity: func() interface{} { return &model.Service{} }, column: "secondary_image_id"},
	},
	EntityTestimonial: {
		RoleAvatar: {newEntity: func() interface{} { return &model.Testimonial{} }, column: "avatar_id"},
	},
	EntityUser: {
		RoleAvatar: {newEntity: func() interface{} { return &model.User{} }, column: "avatar_id"},
	},
	EntityBlogPost: {
		RolePrimary: {newEntity: func() interface{} { return &model.BlogPost{} }, column: "primary_image_id"},
	},
	EntityGallery: {
		RoleGallery: {newEntity: func() interface{} { return &model.GalleryImage{} }, column: "asset_id", membership: true},
	},
}

func lookupRole(kind, role string) (roleBinding, error) {
	roles, ok := roleTable[kind]
	if !ok {
		return roleBinding{}, errors.Wrapf(ErrInvalidRole, "entity kind %q", kind)
	}
	binding, ok := roles[role]
	if !ok {
		return roleBinding{}, errors.Wrapf(ErrInvalidRole, "role %q of %s", role, kind)
	}
	return binding, nil
}

func (s *AssetService) loadEntity(ctx context.Context, db *gorm.DB, kind string, binding roleBinding, entityID uint64) (interface{}, error) {
	entity := binding.newEntity()
	err := db.WithContext(ctx).First(entity, entityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: kind, ID: strconv.FormatUint(entityID, 10)}
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// ReassignRole points an entity's role at another existing asset and returns
// the reloaded entity. The previously referenced asset is not consulted.
func (s *AssetService) ReassignRole(ctx context.Context, kind string, entityID uint64, role, newAssetID string) (interface{}, error) {
	binding, err := lookupRole(kind, role)
	if err != nil {
		return nil, err
	}

	// holding the target lock keeps a concurrent delete from removing it mid-swap
	release, err := s.lock(ctx, assetLockKey(newAssetID))
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.registry.Get(ctx, newAssetID); err != nil {
		return nil, err
	}
	if err := s.ensureSettled(ctx, newAssetID); err != nil {
		return nil, err
	}
	entity, err := s.loadEntity(ctx, s.db, kind, binding, entityID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(entity).Update(binding.column, newAssetID).Error; err != nil {
		if binding.membership && repo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyInGallery
		}
		return nil, err
	}
	utils.Log.Info("asset role reassigned",
		zap.String("kind", kind),
		zap.Uint64("entity_id", entityID),
		zap.String("role", role),
		zap.String("asset_id", newAssetID),
	)
	return s.loadEntity(ctx, s.db, kind, binding, entityID)
}

// DetachRole clears an entity's role. Gallery memberships are deleted and
// nil is returned for them.
func (s *AssetService) DetachRole(ctx context.Context, kind string, entityID uint64, role string) (interface{}, error) {
	binding, err := lookupRole(kind, role)
	if err != nil {
		return nil, err
	}
	entity, err := s.loadEntity(ctx, s.db, kind, binding, entityID)
	if err != nil {
		return nil, err
	}
	if binding.membership {
		if err := s.db.WithContext(ctx).Delete(entity).Error; err != nil {
			return nil, err
		}
		utils.Log.Info("gallery membership removed", zap.Uint64("entity_id", entityID))
		return nil, nil
	}
	if err := s.db.WithContext(ctx).Model(entity).Update(binding.column, gorm.Expr("NULL")).Error; err != nil {
		return nil, err
	}
	utils.Log.Info("asset role detached",
		zap.String("kind", kind),
		zap.Uint64("entity_id", entityID),
		zap.String("role", role),
	)
	return s.loadEntity(ctx, s.db, kind, binding, entityID)
}

// SetAboutUsInUse flags one about-us row as the live one and clears the rest.
func (s *AssetService) SetAboutUsInUse(ctx context.Context, id uint64) (*model.AboutUs, error) {
	var about model.AboutUs
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&about, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Kind: EntityAboutUs, ID: strconv.FormatUint(id, 10)}
			}
			return err
		}
		if err := tx.Model(&model.AboutUs{}).Where("id <> ?", id).Update("in_use", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&about).Update("in_use", true).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &about, nil
}
