package task

import (
	"Go_Site/internal/repo"
	"Go_Site/model"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePublisher struct {
	bodies [][]byte
	err    error
}

func (f *fakePublisher) PublishTask(ctx context.Context, body []byte) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeApplier struct {
	err   error
	calls []uint64
}

func (f *fakeApplier) ApplyReconcile(ctx context.Context, task *model.ReconcileTask) error {
	f.calls = append(f.calls, task.ID)
	return f.err
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenMemorySQLite(strings.ReplaceAll(uuid.NewString(), "-", ""))
	require.NoError(t, err)
	return db
}

func newTask() *model.ReconcileTask {
	return &model.ReconcileTask{
		Op:        model.ReconcileOpRename,
		AssetID:   "asset-1",
		OldName:   "a.jpg",
		NewName:   "b.jpg",
		Bucket:    "site-media",
		ObjectKey: "media/a.jpg",
	}
}

func TestEnqueuePersistsAndPublishes(t *testing.T) {
	db := openDB(t)
	pub := &fakePublisher{}
	q := NewQueue(db, func() (Publisher, error) { return pub, nil })

	task := newTask()
	require.NoError(t, q.Enqueue(context.Background(), task))
	assert.NotZero(t, task.ID)
	assert.Equal(t, model.ReconcilePending, task.Status)

	require.Len(t, pub.bodies, 1)
	var msg ReconcileMessage
	require.NoError(t, json.Unmarshal(pub.bodies[0], &msg))
	assert.Equal(t, task.ID, msg.TaskID)
	assert.Zero(t, msg.Attempt)
}

func TestEnqueuePublishFailureLeavesPending(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, func() (Publisher, error) { return nil, errors.New("broker down") })

	task := newTask()
	require.NoError(t, q.Enqueue(context.Background(), task))

	var stored model.ReconcileTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, model.ReconcilePending, stored.Status)
}

func TestRequeuePending(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, nil)
	first, second := newTask(), newTask()
	require.NoError(t, q.Enqueue(context.Background(), first))
	require.NoError(t, q.Enqueue(context.Background(), second))
	require.NoError(t, db.Model(second).Update("status", model.ReconcileCompleted).Error)

	pub := &fakePublisher{}
	q.publisher = func() (Publisher, error) { return pub, nil }
	n, err := q.RequeuePending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, pub.bodies, 1)
	assert.Contains(t, string(pub.bodies[0]), `"task_id":1`)
}

func TestProcessReconcileTask(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, nil)
	task := newTask()
	require.NoError(t, q.Enqueue(context.Background(), task))
	applier := &fakeApplier{}

	require.NoError(t, ProcessReconcileTask(context.Background(), db, applier, task.ID))
	var stored model.ReconcileTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, model.ReconcileCompleted, stored.Status)
	assert.NotNil(t, stored.FinishedAt)

	// completed tasks are skipped
	require.NoError(t, ProcessReconcileTask(context.Background(), db, applier, task.ID))
	assert.Len(t, applier.calls, 1)
}

func TestProcessReconcileTaskFailureReleasesRow(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, nil)
	task := newTask()
	require.NoError(t, q.Enqueue(context.Background(), task))
	applier := &fakeApplier{err: errors.New("still broken")}

	err := ProcessReconcileTask(context.Background(), db, applier, task.ID)
	assert.EqualError(t, err, "still broken")

	var stored model.ReconcileTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, model.ReconcileRetrying, stored.Status)
	assert.Equal(t, "still broken", stored.ErrorMsg)

	applier.err = nil
	require.NoError(t, ProcessReconcileTask(context.Background(), db, applier, task.ID))
	assert.Len(t, applier.calls, 2)
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, model.ReconcileCompleted, stored.Status)
}

func TestProcessReconcileTaskCanceledIsRedelivered(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, nil)
	task := newTask()
	require.NoError(t, q.Enqueue(context.Background(), task))
	ctx, cancel := context.WithCancel(context.Background())
	applier := &fakeApplier{err: context.Canceled}

	err := ProcessReconcileTask(ctx, db, applier, task.ID)
	cancel()
	assert.ErrorIs(t, err, context.Canceled)

	var stored model.ReconcileTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, model.ReconcileRetrying, stored.Status)

	applier.err = nil
	require.NoError(t, ProcessReconcileTask(context.Background(), db, applier, task.ID))
	assert.Len(t, applier.calls, 2)
}

func TestRequeuePendingRecoversUnfinishedTasks(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, nil)
	ctx := context.Background()
	now := time.Now().UTC()
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	stale := newTask()
	stale.Status = model.ReconcileRunning
	stale.StartedAt = &past
	fresh := newTask()
	fresh.Status = model.ReconcileRunning
	fresh.StartedAt = &now
	due := newTask()
	due.Status = model.ReconcileRetrying
	due.NextRetryAt = &past
	later := newTask()
	later.Status = model.ReconcileRetrying
	later.NextRetryAt = &future
	failed := newTask()
	failed.Status = model.ReconcileFailed
	for _, rt := range []*model.ReconcileTask{stale, fresh, due, later, failed} {
		require.NoError(t, q.Enqueue(ctx, rt))
	}

	pub := &fakePublisher{}
	q.publisher = func() (Publisher, error) { return pub, nil }
	n, err := q.RequeuePending(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var ids []uint64
	for _, body := range pub.bodies {
		var msg ReconcileMessage
		require.NoError(t, json.Unmarshal(body, &msg))
		ids = append(ids, msg.TaskID)
	}
	assert.ElementsMatch(t, []uint64{stale.ID, due.ID}, ids)

	var stored model.ReconcileTask
	require.NoError(t, db.First(&stored, stale.ID).Error)
	assert.Equal(t, model.ReconcileRetrying, stored.Status)
	stored = model.ReconcileTask{}
	require.NoError(t, db.First(&stored, fresh.ID).Error)
	assert.Equal(t, model.ReconcileRunning, stored.Status)

	// the released row can be claimed again
	applier := &fakeApplier{}
	require.NoError(t, ProcessReconcileTask(ctx, db, applier, stale.ID))
	assert.Equal(t, []uint64{stale.ID}, applier.calls)
}

func TestRequeuePendingWithoutStaleWindowSkipsRunning(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, nil)
	past := time.Now().UTC().Add(-time.Hour)
	running := newTask()
	running.Status = model.ReconcileRunning
	running.StartedAt = &past
	require.NoError(t, q.Enqueue(context.Background(), running))

	n, err := q.RequeuePending(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessReconcileTaskMissing(t *testing.T) {
	db := openDB(t)
	err := ProcessReconcileTask(context.Background(), db, &fakeApplier{}, 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListReconcileTasks(t *testing.T) {
	db := openDB(t)
	q := NewQueue(db, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), newTask()))
	}
	require.NoError(t, db.Model(&model.ReconcileTask{}).Where("id = ?", 2).Update("status", model.ReconcileFailed).Error)

	all, err := ListReconcileTasks(context.Background(), db, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.EqualValues(t, 3, all[0].ID)

	failed, err := ListReconcileTasks(context.Background(), db, model.ReconcileFailed, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.EqualValues(t, 2, failed[0].ID)

	limited, err := ListReconcileTasks(context.Background(), db, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
