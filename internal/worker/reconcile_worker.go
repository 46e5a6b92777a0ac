package worker

import (
	"Go_Site/config"
	"Go_Site/internal/mq"
	"Go_Site/internal/service"
	"Go_Site/internal/task"
	"Go_Site/model"
	"Go_Site/utils"
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type dlqMessage struct {
	TaskID   uint64    `json:"task_id"`
	Attempt  int       `json:"attempt"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// retryPublisher is the part of mq.Client the failure paths need.
type retryPublisher interface {
	PublishRetry(ctx context.Context, body []byte, delay time.Duration) error
	PublishDLQ(ctx context.Context, body []byte) error
}

// ReconcileWorker applies reconcile tasks delivered over RabbitMQ.
type ReconcileWorker struct {
	db          *gorm.DB
	applier     task.Applier
	limiter     *rate.Limiter
	retryMax    int
	retryDelays []time.Duration
}

// NewReconcileWorker builds a worker from the reconcile settings in cfg.
func NewReconcileWorker(db *gorm.DB, applier task.Applier, cfg config.Config) *ReconcileWorker {
	burst := cfg.ReconcileBurst
	if burst <= 0 {
		burst = 1
	}
	var limiter *rate.Limiter
	if cfg.ReconcileRate <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(cfg.ReconcileRate), burst)
	}
	retryMax := cfg.ReconcileRetryMax
	if retryMax < 0 {
		retryMax = 0
	}
	return &ReconcileWorker{
		db:          db,
		applier:     applier,
		limiter:     limiter,
		retryMax:    retryMax,
		retryDelays: cfg.ReconcileRetryDelays,
	}
}

// Run consumes reconcile tasks until ctx is done.
func (w *ReconcileWorker) Run(ctx context.Context, client *mq.Client, prefetch, concurrency int) error {
	if err := client.DeclareTopology(); err != nil {
		return err
	}
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}
	deliveries, err := client.Channel.Consume(mq.QueueTasks, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("reconcile worker: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				w.handle(ctx, client, d)
			}(delivery)
		}
	}
}

func (w *ReconcileWorker) handle(ctx context.Context, pub retryPublisher, delivery amqp.Delivery) {
	var msg task.ReconcileMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		utils.Log.Warn("reconcile worker: invalid message", zap.Error(err))
		_ = delivery.Ack(false)
		return
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			_ = delivery.Nack(false, true)
			return
		}
	}

	if err := task.ProcessReconcileTask(ctx, w.db, w.applier, msg.TaskID); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = delivery.Nack(false, true)
			return
		}
		next := w.markFailed
		if shouldRetry(err) {
			next = w.scheduleRetry
		}
		if err := next(ctx, pub, msg, err); err != nil {
			utils.Log.Error("reconcile worker: failure handling failed", zap.Uint64("task_id", msg.TaskID), zap.Error(err))
			_ = delivery.Nack(false, true)
			return
		}
	}

	_ = delivery.Ack(false)
}

// shouldRetry reports whether a failed task may succeed later.
func shouldRetry(err error) bool {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUnknownReconcileOp):
		return false
	}
	var dup *service.DuplicateNameError
	var conflict *service.ConflictError
	return !errors.As(err, &dup) && !errors.As(err, &conflict)
}

func (w *ReconcileWorker) scheduleRetry(ctx context.Context, pub retryPublisher, msg task.ReconcileMessage, procErr error) error {
	nextAttempt := msg.Attempt + 1
	if w.retryMax == 0 || nextAttempt > w.retryMax {
		return w.markFailed(ctx, pub, msg, procErr)
	}

	delay := pickRetryDelay(nextAttempt, w.retryDelays)
	nextRetryAt := time.Now().UTC().Add(delay)
	if err := w.db.WithContext(ctx).Model(&model.ReconcileTask{}).
		Where("id = ?", msg.TaskID).
		Updates(map[string]interface{}{
			"status":        model.ReconcileRetrying,
			"error_msg":     procErr.Error(),
			"retry_count":   nextAttempt,
			"next_retry_at": &nextRetryAt,
		}).Error; err != nil {
		return err
	}

	msg.Attempt = nextAttempt
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	utils.Log.Warn("reconcile task retry scheduled",
		zap.Uint64("task_id", msg.TaskID),
		zap.Int("attempt", nextAttempt),
		zap.Duration("delay", delay),
		zap.Error(procErr),
	)
	return pub.PublishRetry(ctx, body, delay)
}

func (w *ReconcileWorker) markFailed(ctx context.Context, pub retryPublisher, msg task.ReconcileMessage, procErr error) error {
	finishedAt := time.Now()
	if err := w.db.WithContext(ctx).Model(&model.ReconcileTask{}).
		Where("id = ?", msg.TaskID).
		Updates(map[string]interface{}{
			"status":      model.ReconcileFailed,
			"error_msg":   procErr.Error(),
			"finished_at": &finishedAt,
		}).Error; err != nil {
		return err
	}

	body, err := json.Marshal(dlqMessage{
		TaskID:   msg.TaskID,
		Attempt:  msg.Attempt,
		Error:    procErr.Error(),
		FailedAt: finishedAt,
	})
	if err != nil {
		return err
	}
	utils.Log.Error("reconcile task failed, needs manual attention", zap.Uint64("task_id", msg.TaskID), zap.Error(procErr))
	if err := pub.PublishDLQ(ctx, body); err != nil {
		utils.Log.Warn("reconcile worker: dlq publish failed", zap.Error(err))
	}
	return nil
}

func pickRetryDelay(attempt int, delays []time.Duration) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	index := attempt - 1
	if index < 0 {
		index = 0
	}
	if index >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[index]
}
