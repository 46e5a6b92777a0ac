package service

import (
	"Go_Site/model"
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Category names one kind of reference to an asset.
type Category string

const (
	CategoryAboutUsPrimary     Category = "aboutUsPrimary"
	CategoryAboutUsSecondary   Category = "aboutUsSecondary"
	CategoryHeroPrimary        Category = "heroPrimary"
	CategoryServicePrimary     Category = "servicePrimary"
	CategoryServiceSecondary   Category = "serviceSecondary"
	CategoryTestimonialAvatars Category = "testimonialAvatars"
	CategoryUserAvatars        Category = "userAvatars"
	CategoryBlogPrimary        Category = "blogPrimary"
	CategoryGalleryMemberships Category = "galleryMemberships"
)

// Categories lists every category a Usage reports, in display order.
var Categories = []Category{
	CategoryAboutUsPrimary,
	CategoryAboutUsSecondary,
	CategoryHeroPrimary,
	CategoryServicePrimary,
	CategoryServiceSecondary,
	CategoryTestimonialAvatars,
	CategoryUserAvatars,
	CategoryBlogPrimary,
	CategoryGalleryMemberships,
}

// Descriptor identifies one referencing entity.
type Descriptor struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Position string `json:"position,omitempty"`
}

// Usage maps every category to the entities referencing an asset, ordered by id.
type Usage map[Category][]Descriptor

// NewUsage returns a Usage with every category present and empty.
func NewUsage() Usage {
	u := make(Usage, len(Categories))
	for _, c := range Categories {
		u[c] = []Descriptor{}
	}
	return u
}

// InUse reports whether any category holds a reference.
func (u Usage) InUse() bool {
	return u.Count() > 0
}

// Count returns the number of references across categories.
func (u Usage) Count() int {
	n := 0
	for _, refs := range u {
		n += len(refs)
	}
	return n
}

// ReferenceProbe finds the entities of one category that reference an asset.
type ReferenceProbe interface {
	FindReferencing(ctx context.Context, db *gorm.DB, assetID string) ([]Descriptor, error)
}

// ProbeFunc adapts a function to ReferenceProbe.
type ProbeFunc func(ctx context.Context, db *gorm.DB, assetID string) ([]Descriptor, error)

// FindReferencing calls f.
func (f ProbeFunc) FindReferencing(ctx context.Context, db *gorm.DB, assetID string) ([]Descriptor, error) {
	return f(ctx, db, assetID)
}

// columnProbe scans rows of T whose column equals the asset id.
func columnProbe[T any](column string, unscoped bool, describe func(*T) Descriptor) ReferenceProbe {
	return ProbeFunc(func(ctx context.Context, db *gorm.DB, assetID string) ([]Descriptor, error) {
		var rows []T
		q := db.WithContext(ctx)
		if unscoped {
			q = q.Unscoped()
		}
		if err := q.Where(column+" = ?", assetID).Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]Descriptor, 0, len(rows))
		for i := range rows {
			out = append(out, describe(&rows[i]))
		}
		return out, nil
	})
}

func idString(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func labelOr(label string, fallback string, id uint64) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("%s #%d", fallback, id)
}

func describeAboutUs(a *model.AboutUs) Descriptor {
	return Descriptor{ID: idString(a.ID), Label: labelOr(a.Title, "About us", a.ID)}
}

func describeService(s *model.Service) Descriptor {
	d := Descriptor{ID: idString(s.ID), Label: labelOr(s.Title, "Service", s.ID)}
	if s.Position != nil {
		d.Position = *s.Position
	}
	return d
}

// DefaultProbes returns one probe per category. Soft-deleted users still
// count, their rows keep the foreign key.
func DefaultProbes() map[Category]ReferenceProbe {
	return map[Category]ReferenceProbe{
		CategoryAboutUsPrimary:   columnProbe("primary_image_id", false, describeAboutUs),
		CategoryAboutUsSecondary: columnProbe("secondary_image_id", false, describeAboutUs),
		CategoryHeroPrimary: columnProbe("image_id", false, func(h *model.Hero) Descriptor {
			return Descriptor{ID: idString(h.ID), Label: labelOr(h.Title, "Hero "+h.Position, h.ID), Position: h.Position}
		}),
		CategoryServicePrimary:   columnProbe("primary_image_id", false, describeService),
		CategoryServiceSecondary: columnProbe("secondary_image_id", false, describeService),
		CategoryTestimonialAvatars: columnProbe("avatar_id", false, func(t *model.Testimonial) Descriptor {
			return Descriptor{ID: idString(t.ID), Label: labelOr(t.Name, "Testimonial", t.ID)}
		}),
		CategoryUserAvatars: columnProbe("avatar_id", true, func(u *model.User) Descriptor {
			label := u.Email
			if u.Name != "" {
				label = fmt.Sprintf("%s <%s>", u.Name, u.Email)
			}
			return Descriptor{ID: idString(u.ID), Label: label}
		}),
		CategoryBlogPrimary: columnProbe("primary_image_id", false, func(b *model.BlogPost) Descriptor {
			return Descriptor{ID: idString(b.ID), Label: labelOr(b.Title, "Blog post", b.ID)}
		}),
		CategoryGalleryMemberships: columnProbe("asset_id", false, func(g *model.GalleryImage) Descriptor {
			return Descriptor{ID: idString(g.ID), Label: labelOr(g.Alt, "Gallery image", g.ID), Position: g.Position}
		}),
	}
}

// ReferenceIndex enumerates every entity pointing at an asset.
type ReferenceIndex struct {
	db       *gorm.DB
	registry AssetRegistry
	probes   map[Category]ReferenceProbe
	parallel bool
}

// NewReferenceIndex builds an index over the default probes.
func NewReferenceIndex(db *gorm.DB, registry AssetRegistry, parallel bool) (*ReferenceIndex, error) {
	return NewReferenceIndexWithProbes(db, registry, DefaultProbes(), parallel)
}

// NewReferenceIndexWithProbes builds an index and fails if any category lacks a probe.
func NewReferenceIndexWithProbes(db *gorm.DB, registry AssetRegistry, probes map[Category]ReferenceProbe, parallel bool) (*ReferenceIndex, error) {
	for _, c := range Categories {
		if probes[c] == nil {
			return nil, errors.Errorf("reference index: no probe for category %s", c)
		}
	}
	for c := range probes {
		if !knownCategory(c) {
			return nil, errors.Errorf("reference index: unknown category %s", c)
		}
	}
	return &ReferenceIndex{db: db, registry: registry, probes: probes, parallel: parallel}, nil
}

func knownCategory(c Category) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// UsageFor returns the categorized references to an existing asset.
func (idx *ReferenceIndex) UsageFor(ctx context.Context, assetID string) (Usage, error) {
	if _, err := idx.registry.Get(ctx, assetID); err != nil {
		return nil, err
	}
	return idx.collect(ctx, assetID)
}

// collect runs every probe without checking that the asset exists.
func (idx *ReferenceIndex) collect(ctx context.Context, assetID string) (Usage, error) {
	results := make([][]Descriptor, len(Categories))
	run := func(ctx context.Context, i int) error {
		c := Categories[i]
		refs, err := idx.probes[c].FindReferencing(ctx, idx.db, assetID)
		if err != nil {
			return errors.Wrapf(err, "probe %s", c)
		}
		results[i] = refs
		return nil
	}

	if idx.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range Categories {
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range Categories {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	usage := NewUsage()
	for i, c := range Categories {
		if results[i] != nil {
			usage[c] = results[i]
		}
	}
	return usage, nil
}
