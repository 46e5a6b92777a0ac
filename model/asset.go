package model

import "time"

// Asset is one uploaded media object. ID is assigned by the storage
// provider at upload time and never changes; Name is the editable display
// name and is unique across the pool.
type Asset struct {
	ID string `gorm:"column:id;primaryKey;size:64" json:"id"`

	Name string `gorm:"column:name;size:255;uniqueIndex;not null" json:"name"`

	Width  int   `gorm:"column:width;not null;default:0" json:"width"`
	Height int   `gorm:"column:height;not null;default:0" json:"height"`
	Bytes  int64 `gorm:"column:bytes;not null;default:0" json:"bytes"`

	Format       string `gorm:"column:format;size:16;not null;default:''" json:"format"`
	ResourceType string `gorm:"column:resource_type;size:32;not null;default:'image'" json:"resource_type"`

	ObjectKey string `gorm:"column:object_key;size:512;not null" json:"object_key"`
	SecureURL string `gorm:"column:secure_url;size:1024;not null" json:"secure_url"`

	Placeholder string `gorm:"column:placeholder;type:text" json:"placeholder,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Asset) TableName() string {
	return "asset"
}

// AssetTombstone remembers provider ids of deleted assets so they are never reused.
type AssetTombstone struct {
	ID        string    `gorm:"column:id;primaryKey;size:64"`
	Name      string    `gorm:"column:name;size:255;not null"`
	DeletedAt time.Time `gorm:"column:deleted_at;not null"`
}

// TableName returns the database table name.
func (AssetTombstone) TableName() string {
	return "asset_tombstone"
}
