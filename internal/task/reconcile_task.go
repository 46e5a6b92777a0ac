package task

import (
	"Go_Site/internal/mq"
	"Go_Site/model"
	"Go_Site/utils"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileMessage is the payload sent to the worker.
type ReconcileMessage struct {
	TaskID  uint64 `json:"task_id"`
	Attempt int    `json:"attempt"`
}

// Publisher sends a task message to the broker.
type Publisher interface {
	PublishTask(ctx context.Context, body []byte) error
}

// Applier finishes a reconcile task against the registry.
type Applier interface {
	ApplyReconcile(ctx context.Context, task *model.ReconcileTask) error
}

// Queue persists reconcile tasks and publishes them for the worker.
type Queue struct {
	db        *gorm.DB
	publisher func() (Publisher, error)
}

// NewQueue builds a Queue. publisher may be nil, in which case tasks are
// only persisted and picked up by RequeuePending.
func NewQueue(db *gorm.DB, publisher func() (Publisher, error)) *Queue {
	return &Queue{db: db, publisher: publisher}
}

// NewRabbitQueue builds a Queue publishing through the shared RabbitMQ publisher.
func NewRabbitQueue(db *gorm.DB) *Queue {
	return NewQueue(db, func() (Publisher, error) {
		client, err := mq.GetPublisher()
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}

// Enqueue stores the task and publishes it. A publish failure leaves the
// row pending rather than failing the caller.
func (q *Queue) Enqueue(ctx context.Context, task *model.ReconcileTask) error {
	if task.Status == "" {
		task.Status = model.ReconcilePending
	}
	if err := q.db.WithContext(ctx).Create(task).Error; err != nil {
		return err
	}
	if err := q.publish(ctx, ReconcileMessage{TaskID: task.ID}); err != nil {
		utils.Log.Warn("publish reconcile task failed, left pending",
			zap.Uint64("task_id", task.ID),
			zap.Error(err),
		)
	}
	return nil
}

func (q *Queue) publish(ctx context.Context, msg ReconcileMessage) error {
	if q.publisher == nil {
		return nil
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	publisher, err := q.publisher()
	if err != nil {
		return err
	}
	return publisher.PublishTask(ctx, body)
}

// RequeuePending republishes every task the worker still owes: pending rows,
// retrying rows whose delay has passed, and running rows whose worker
// stopped more than staleAfter ago. A zero staleAfter leaves running rows alone.
func (q *Queue) RequeuePending(ctx context.Context, staleAfter time.Duration) (int, error) {
	now := time.Now().UTC()
	if staleAfter > 0 {
		if err := q.db.WithContext(ctx).Model(&model.ReconcileTask{}).
			Where("status = ? AND started_at <= ?", model.ReconcileRunning, now.Add(-staleAfter)).
			Updates(map[string]interface{}{
				"status":        model.ReconcileRetrying,
				"next_retry_at": &now,
			}).Error; err != nil {
			return 0, err
		}
	}

	var tasks []model.ReconcileTask
	if err := q.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND (next_retry_at IS NULL OR next_retry_at <= ?))",
			model.ReconcilePending, model.ReconcileRetrying, now).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return 0, err
	}
	for i, t := range tasks {
		if err := q.publish(ctx, ReconcileMessage{TaskID: t.ID, Attempt: t.RetryCount}); err != nil {
			return i, err
		}
	}
	return len(tasks), nil
}

// ListReconcileTasks lists tasks, newest first, optionally filtered by status.
func ListReconcileTasks(ctx context.Context, db *gorm.DB, status string, limit int) ([]model.ReconcileTask, error) {
	if limit <= 0 {
		limit = 20
	}
	q := db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tasks []model.ReconcileTask
	err := q.Find(&tasks).Error
	return tasks, err
}

// ProcessReconcileTask executes a reconcile task.
func ProcessReconcileTask(ctx context.Context, db *gorm.DB, applier Applier, taskID uint64) error {
	var task model.ReconcileTask
	if err := db.WithContext(ctx).Where("id = ?", taskID).First(&task).Error; err != nil {
		return err
	}
	if task.Status == model.ReconcileCompleted {
		return nil
	}
	startedAt := time.Now().UTC()
	res := db.WithContext(ctx).Model(&model.ReconcileTask{}).
		Where("id = ? AND status IN ?", taskID, []string{model.ReconcilePending, model.ReconcileRetrying}).
		Updates(map[string]interface{}{
			"status":     model.ReconcileRunning,
			"started_at": &startedAt,
			"error_msg":  "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	if err := applier.ApplyReconcile(ctx, &task); err != nil {
		// hand the row back so a redelivery or the startup requeue can claim it
		if resetErr := db.WithContext(context.WithoutCancel(ctx)).Model(&task).
			Where("status = ?", model.ReconcileRunning).
			Updates(map[string]interface{}{
				"status":    model.ReconcileRetrying,
				"error_msg": err.Error(),
			}).Error; resetErr != nil {
			utils.Log.Error("release reconcile task failed", zap.Uint64("task_id", taskID), zap.Error(resetErr))
		}
		return err
	}

	finishedAt := time.Now().UTC()
	return db.WithContext(context.WithoutCancel(ctx)).Model(&task).Updates(map[string]interface{}{
		"status":      model.ReconcileCompleted,
		"finished_at": &finishedAt,
	}).Error
}
