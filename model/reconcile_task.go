package model

import "time"

const (
	ReconcileOpRename = "rename"
	ReconcileOpDelete = "delete"

	ReconcilePending   = "pending"
	ReconcileRunning   = "running"
	ReconcileRetrying  = "retrying"
	ReconcileCompleted = "completed"
	ReconcileFailed    = "failed"
)

// ReconcileTask records a guard operation whose remote step succeeded but
// whose local step did not, so the registry can be brought back in line.
type ReconcileTask struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Op      string `gorm:"column:op;type:varchar(16);not null" json:"op"` // rename / delete
	AssetID string `gorm:"column:asset_id;type:varchar(64);index;not null" json:"asset_id"`

	OldName string `gorm:"column:old_name;type:varchar(255);not null;default:''" json:"old_name"`
	NewName string `gorm:"column:new_name;type:varchar(255);not null;default:''" json:"new_name"`

	Bucket    string `gorm:"column:bucket;type:varchar(64);not null" json:"bucket"`
	ObjectKey string `gorm:"column:object_key;type:varchar(512);not null" json:"object_key"`

	Status      string     `gorm:"column:status;type:varchar(32);index;not null" json:"status"`
	ErrorMsg    string     `gorm:"column:error_msg;type:text" json:"error_msg"`
	RetryCount  int        `gorm:"column:retry_count;default:0" json:"retry_count"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at" json:"next_retry_at"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt  *time.Time `gorm:"column:finished_at" json:"finished_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (ReconcileTask) TableName() string {
	return "reconcile_task"
}
