package model

import "time"

const (
	HeroFront   = "FRONT"
	HeroTop     = "TOP"
	HeroBottom  = "BOTTOM"
	HeroContact = "CONTACT"
)

// HeroPositions lists every fixed hero slot.
var HeroPositions = []string{HeroFront, HeroTop, HeroBottom, HeroContact}

// ServicePositions lists the fixed service slots. A service may also be unpositioned.
var ServicePositions = []string{"ONE", "TWO", "THREE", "FOUR", "FIVE"}

// AboutUs holds the about page copy. Exactly one row is flagged InUse.
type AboutUs struct {
	ID    uint64 `gorm:"primaryKey" json:"id"`
	Title string `gorm:"column:title;size:255;not null;default:''" json:"title"`
	Body  string `gorm:"column:body;type:text" json:"body"`
	InUse bool   `gorm:"column:in_use;not null;default:false;index" json:"in_use"`

	PrimaryImageID *string `gorm:"column:primary_image_id;size:64;index" json:"primary_image_id"`
	PrimaryImage   *Asset  `gorm:"foreignKey:PrimaryImageID;references:ID" json:"primary_image,omitempty"`

	SecondaryImageID *string `gorm:"column:secondary_image_id;size:64;index" json:"secondary_image_id"`
	SecondaryImage   *Asset  `gorm:"foreignKey:SecondaryImageID;references:ID" json:"secondary_image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (AboutUs) TableName() string {
	return "about_us"
}

// Hero is a banner pinned to one fixed page position.
type Hero struct {
	ID       uint64 `gorm:"primaryKey" json:"id"`
	Position string `gorm:"column:position;size:16;uniqueIndex;not null" json:"position"`
	Title    string `gorm:"column:title;size:255;not null;default:''" json:"title"`
	Subtitle string `gorm:"column:subtitle;size:512;not null;default:''" json:"subtitle"`

	ImageID *string `gorm:"column:image_id;size:64;index" json:"image_id"`
	Image   *Asset  `gorm:"foreignKey:ImageID;references:ID" json:"image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Hero) TableName() string {
	return "hero"
}

// Service is an offered service, optionally pinned to a home page slot.
type Service struct {
	ID       uint64  `gorm:"primaryKey" json:"id"`
	Position *string `gorm:"column:position;size:16;uniqueIndex" json:"position"`
	Title    string  `gorm:"column:title;size:255;not null" json:"title"`
	Body     string  `gorm:"column:body;type:text" json:"body"`

	PrimaryImageID *string `gorm:"column:primary_image_id;size:64;index" json:"primary_image_id"`
	PrimaryImage   *Asset  `gorm:"foreignKey:PrimaryImageID;references:ID" json:"primary_image,omitempty"`

	SecondaryImageID *string `gorm:"column:secondary_image_id;size:64;index" json:"secondary_image_id"`
	SecondaryImage   *Asset  `gorm:"foreignKey:SecondaryImageID;references:ID" json:"secondary_image,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Service) TableName() string {
	return "service"
}

// Testimonial is a customer quote.
type Testimonial struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"column:name;size:255;not null" json:"name"`
	Body        string `gorm:"column:body;type:text" json:"body"`
	Highlighted bool   `gorm:"column:highlighted;not null;default:false" json:"highlighted"`

	AvatarID *string `gorm:"column:avatar_id;size:64;index" json:"avatar_id"`
	Avatar   *Asset  `gorm:"foreignKey:AvatarID;references:ID" json:"avatar,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Testimonial) TableName() string {
	return "testimonial"
}

// BlogPost is an article written by a User.
type BlogPost struct {
	ID    uint64 `gorm:"primaryKey" json:"id"`
	Title string `gorm:"column:title;size:255;not null" json:"title"`
	Slug  string `gorm:"column:slug;size:255;uniqueIndex;not null" json:"slug"`
	Body  string `gorm:"column:body;type:text" json:"body"`

	AuthorID uint64 `gorm:"column:author_id;not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	PrimaryImageID *string `gorm:"column:primary_image_id;size:64;index" json:"primary_image_id"`
	PrimaryImage   *Asset  `gorm:"foreignKey:PrimaryImageID;references:ID" json:"primary_image,omitempty"`

	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name.
func (BlogPost) TableName() string {
	return "blog_post"
}

// GalleryImage places one asset in one gallery at a display index.
type GalleryImage struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	AssetID string `gorm:"column:asset_id;size:64;not null;index;uniqueIndex:uk_gallery_position_asset,priority:2" json:"asset_id"`
	Asset   Asset  `gorm:"foreignKey:AssetID;references:ID" json:"asset,omitempty"`

	Position string `gorm:"column:position;size:32;not null;uniqueIndex:uk_gallery_position_asset,priority:1" json:"position"`
	Index    int    `gorm:"column:display_index;not null;default:0" json:"index"`
	Alt      string `gorm:"column:alt;size:255;not null;default:''" json:"alt"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (GalleryImage) TableName() string {
	return "gallery_image"
}
