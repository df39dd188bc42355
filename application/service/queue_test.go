package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/corvus-index/corvus/domain/repository"
	"github.com/corvus-index/corvus/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueueTaskStore is a minimal in-memory task.TaskStore that actually
// honors the repository.Option conditions Queue builds, unlike the
// pass-through fakes used elsewhere in this package's tests.
type fakeQueueTaskStore struct {
	tasks   []task.Task
	deleted []task.Task
}

func (f *fakeQueueTaskStore) Get(_ context.Context, id int64) (task.Task, error) {
	for _, t := range f.tasks {
		if t.ID() == id {
			return t, nil
		}
	}
	return task.Task{}, context.Canceled
}

func (f *fakeQueueTaskStore) FindAll(_ context.Context) ([]task.Task, error) { return f.tasks, nil }

func (f *fakeQueueTaskStore) FindPending(_ context.Context, opts ...repository.Option) ([]task.Task, error) {
	q := repository.Build(opts...)

	filtered := f.tasks
	for _, cond := range q.Conditions() {
		if cond.Field() != "type" {
			continue
		}
		opType, ok := cond.Value().(string)
		if !ok {
			continue
		}
		var matched []task.Task
		for _, t := range filtered {
			if t.Operation().String() == opType {
				matched = append(matched, t)
			}
		}
		filtered = matched
	}

	if limit := q.LimitValue(); limit > 0 {
		offset := q.OffsetValue()
		if offset >= len(filtered) {
			return []task.Task{}, nil
		}
		end := offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[offset:end]
	}

	return filtered, nil
}

func (f *fakeQueueTaskStore) Save(_ context.Context, t task.Task) (task.Task, error) {
	for i, existing := range f.tasks {
		if existing.DedupKey() == t.DedupKey() {
			f.tasks[i] = t
			return t, nil
		}
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeQueueTaskStore) SaveBulk(ctx context.Context, ts []task.Task) ([]task.Task, error) {
	for _, t := range ts {
		if _, err := f.Save(ctx, t); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func (f *fakeQueueTaskStore) Delete(_ context.Context, t task.Task) error {
	f.deleted = append(f.deleted, t)
	for i, existing := range f.tasks {
		if existing.ID() == t.ID() {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeQueueTaskStore) DeleteAll(_ context.Context) error {
	f.tasks = nil
	return nil
}

func (f *fakeQueueTaskStore) CountPending(_ context.Context, _ ...repository.Option) (int64, error) {
	return int64(len(f.tasks)), nil
}

func (f *fakeQueueTaskStore) Exists(_ context.Context, id int64) (bool, error) {
	for _, t := range f.tasks {
		if t.ID() == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeQueueTaskStore) Dequeue(_ context.Context) (task.Task, bool, error) {
	if len(f.tasks) == 0 {
		return task.Task{}, false, nil
	}
	t := f.tasks[0]
	f.tasks = f.tasks[1:]
	return t, true, nil
}

func (f *fakeQueueTaskStore) DequeueByOperation(_ context.Context, operation task.Operation) (task.Task, bool, error) {
	for i, t := range f.tasks {
		if t.Operation() == operation {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return t, true, nil
		}
	}
	return task.Task{}, false, nil
}

func queueLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueue_EnqueueOperations_DecreasingPriority(t *testing.T) {
	store := &fakeQueueTaskStore{}
	q := NewQueue(store, queueLogger())

	ops := []task.Operation{task.OperationScanCommit, task.OperationExtractSnippetsForCommit}
	require.NoError(t, q.EnqueueOperations(context.Background(), ops, task.PriorityNormal, map[string]any{"repository_id": int64(1)}))

	require.Len(t, store.tasks, 2)
	assert.Greater(t, store.tasks[0].Priority(), store.tasks[1].Priority())
}

func TestQueue_List_FiltersByOperationBeforePagination(t *testing.T) {
	store := &fakeQueueTaskStore{tasks: []task.Task{
		task.NewTask(task.OperationScanCommit, 1, map[string]any{}),
		task.NewTask(task.OperationExtractSnippetsForCommit, 1, map[string]any{}),
		task.NewTask(task.OperationScanCommit, 1, map[string]any{}),
		task.NewTask(task.OperationScanCommit, 1, map[string]any{}),
	}}
	q := NewQueue(store, queueLogger())

	op := task.OperationScanCommit
	tasks, err := q.List(context.Background(), &TaskListParams{Operation: &op, Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.Len(t, tasks, 2, "pagination should apply to the filtered set, not the whole queue")
	for _, tsk := range tasks {
		assert.Equal(t, task.OperationScanCommit, tsk.Operation())
	}

	tasks, err = q.List(context.Background(), &TaskListParams{Operation: &op, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, tasks, 1, "only one ScanCommit task remains on the second page")
}

func TestQueue_DrainForRepository(t *testing.T) {
	store := &fakeQueueTaskStore{tasks: []task.Task{
		task.NewTask(task.OperationScanCommit, 1, map[string]any{"repository_id": int64(1)}),
		task.NewTask(task.OperationScanCommit, 1, map[string]any{"repository_id": int64(2)}),
	}}
	q := NewQueue(store, queueLogger())

	removed, err := q.DrainForRepository(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	require.Len(t, store.tasks, 1)
	assert.Equal(t, int64(2), store.tasks[0].Payload()["repository_id"])
}

func TestQueue_Count(t *testing.T) {
	store := &fakeQueueTaskStore{tasks: []task.Task{
		task.NewTask(task.OperationScanCommit, 1, map[string]any{}),
	}}
	q := NewQueue(store, queueLogger())

	count, err := q.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
