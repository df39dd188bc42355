// Package task provides task queue domain types for async work processing.
package task

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"
)

// Priority represents task queue priority levels.
// Values are spaced far apart so batch offsets (up to ~150 for 15 tasks
// enqueued together via EnqueueOperations) never cause a lower priority
// level to exceed a higher one.
type Priority int

const (
	PriorityBackground    Priority = 1000
	PriorityNormal        Priority = 2000
	PriorityUserInitiated Priority = 5000
	PriorityCritical      Priority = 10000
)

// String renders a Priority for logging.
func (p Priority) String() string {
	switch {
	case p >= PriorityCritical:
		return "critical"
	case p >= PriorityUserInitiated:
		return "user-initiated"
	case p >= PriorityNormal:
		return "normal"
	default:
		return "background"
	}
}

// Task is a queued unit of work. Its mere presence in the store means
// "pending" — there is no separate status field; once claimed a row is
// deleted (see TaskStore), so a Task value never represents "in progress".
type Task struct {
	id        int64
	dedupKey  string
	operation Operation
	priority  int
	payload   map[string]any
	createdAt time.Time
	updatedAt time.Time
}

// NewTask builds a Task, deriving its dedup key deterministically from the
// operation and payload so that two calls with equal (operation, payload)
// always collide on the same key regardless of Go's randomized map
// iteration order.
func NewTask(operation Operation, priority int, payload map[string]any) Task {
	p := clonePayload(payload)
	return Task{
		dedupKey:  dedupKeyFor(operation, p),
		operation: operation,
		priority:  priority,
		payload:   p,
	}
}

// NewTaskWithID reconstructs a Task with every field, including its
// storage id and timestamps — used by repository implementations when
// hydrating rows, never by application code enqueuing new work.
func NewTaskWithID(
	id int64,
	dedupKey string,
	operation Operation,
	priority int,
	payload map[string]any,
	createdAt, updatedAt time.Time,
) Task {
	return Task{
		id:        id,
		dedupKey:  dedupKey,
		operation: operation,
		priority:  priority,
		payload:   clonePayload(payload),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (t Task) ID() int64            { return t.id }
func (t Task) DedupKey() string     { return t.dedupKey }
func (t Task) Operation() Operation { return t.operation }
func (t Task) Priority() int        { return t.priority }
func (t Task) CreatedAt() time.Time { return t.createdAt }
func (t Task) UpdatedAt() time.Time { return t.updatedAt }

// Payload returns a defensive copy so callers can't mutate the task's
// internal state through the map they're handed.
func (t Task) Payload() map[string]any {
	return clonePayload(t.payload)
}

// WithID returns a copy of the task bound to a storage id.
func (t Task) WithID(id int64) Task {
	t.id = id
	return t
}

// WithTimestamps returns a copy of the task with created/updated set.
func (t Task) WithTimestamps(createdAt, updatedAt time.Time) Task {
	t.createdAt = createdAt
	t.updatedAt = updatedAt
	return t
}

// PayloadJSON serializes the payload for storage columns that hold it as
// opaque JSON.
func (t Task) PayloadJSON() ([]byte, error) {
	return json.Marshal(t.payload)
}

// dedupKeyFor builds "{operation}:{k1=v1,k2=v2,...}" from the payload's
// keys in sorted order. Sorting makes the key independent of Go's map
// iteration order — without it, two tasks built from an
// identical-but-differently-ordered-at-runtime payload could land on
// different dedup keys and violate the "at most one pending row per key"
// invariant.
func dedupKeyFor(operation Operation, payload map[string]any) string {
	if len(payload) == 0 {
		return operation.String()
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, payload[k])
	}
	return operation.String() + ":" + strings.Join(parts, ",")
}

// clonePayload returns a non-nil shallow copy of payload.
func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(payload))
	maps.Copy(result, payload)
	return result
}
