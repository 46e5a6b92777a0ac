package model

import (
	"gorm.io/gorm"
	"time"
)

type User struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Email string `gorm:"column:email;type:varchar(255);not null;unique" json:"email"`

	Name string `gorm:"column:name;type:varchar(80);not null;default:''" json:"name"`

	Admin      bool `gorm:"column:admin;not null;default:false" json:"admin"`
	SuperAdmin bool `gorm:"column:super_admin;not null;default:false" json:"super_admin"`

	AvatarID *string `gorm:"column:avatar_id;size:64;index" json:"avatar_id"`
	Avatar   *Asset  `gorm:"foreignKey:AvatarID;references:ID" json:"avatar,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "user_db"
}
