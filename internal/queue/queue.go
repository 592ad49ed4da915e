// Package queue implements a progress-reporting work queue. It drives
// batched operations over many nodes, such as hashsum captures and
// verifications, with live accounting for progress displays.
package queue

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Decisions a process function reports for a dequeued item.
const (
	DecisionRequeue = -1
	DecisionSkipped = 0
	DecisionSuccess = 1
)

// Queue hands out items of any comparable type in insertion order and
// accounts for their processing outcomes. All methods are safe for
// concurrent use.
type Queue[T comparable] struct {
	mu         sync.RWMutex
	pending    []T
	consumed   int
	success    []T
	skipped    []T
	inProgress map[T]struct{}
	startTime  time.Time
	finishTime time.Time
}

// New returns a pointer to a new, empty [Queue].
func New[T comparable]() *Queue[T] {
	return &Queue[T]{
		inProgress: make(map[T]struct{}),
	}
}

// Enqueue adds items to the back of the queue. Enqueueing into an
// already drained queue reopens it.
func (q *Queue[T]) Enqueue(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.finishTime = time.Time{}

	for _, item := range items {
		delete(q.inProgress, item)
		q.pending = append(q.pending, item)
	}
}

// Dequeue hands out the next pending item. The first hand-out starts the
// batch clock, the last one stops it.
func (q *Queue[T]) Dequeue() (T, bool) { //nolint:ireturn
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		var zero T

		return zero, false
	}

	if q.startTime.IsZero() {
		q.startTime = time.Now()
	}

	item := q.pending[0]
	q.pending = q.pending[1:]
	q.consumed++

	if len(q.pending) == 0 {
		q.finishTime = time.Now()
	}

	return item, true
}

// HasRemainingItems reports whether any pending items are left.
func (q *Queue[T]) HasRemainingItems() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return len(q.pending) > 0
}

// SetProcessing marks items as being worked on.
func (q *Queue[T]) SetProcessing(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range items {
		q.inProgress[item] = struct{}{}
	}
}

// SetSuccess accounts items as successfully processed, clearing their
// in-progress mark.
func (q *Queue[T]) SetSuccess(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.success = append(q.success, item)
	}
}

// SetSkipped accounts items as skipped, clearing their in-progress mark.
func (q *Queue[T]) SetSkipped(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range items {
		delete(q.inProgress, item)
		q.skipped = append(q.skipped, item)
	}
}

// GetSuccessful returns a copy of the successfully processed items.
func (q *Queue[T]) GetSuccessful() []T {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return slices.Clone(q.success)
}

// GetSkipped returns a copy of the skipped items.
func (q *Queue[T]) GetSkipped() []T {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return slices.Clone(q.skipped)
}

// Progress returns a [Progress] snapshot of the queue. The estimations
// are derived from the processing rate since the batch clock started.
func (q *Queue[T]) Progress() Progress {
	q.mu.RLock()
	defer q.mu.RUnlock()

	total := q.consumed + len(q.pending)
	processed := min(len(q.success)+len(q.skipped), total)

	var pct float64
	if total > 0 {
		pct = min(float64(processed)/float64(total)*100, 100) //nolint:mnd
	}

	p := Progress{
		HasStarted:          !q.startTime.IsZero(),
		HasFinished:         !q.finishTime.IsZero(),
		StartTime:           q.startTime,
		FinishTime:          q.finishTime,
		ProgressPct:         pct,
		TotalItems:          total,
		ProcessedItems:      processed,
		InProgressItems:     len(q.inProgress),
		SuccessItems:        len(q.success),
		SkippedItems:        len(q.skipped),
		ProcessingSpeedUnit: "items/sec",
	}

	if p.HasStarted && processed > 0 && processed < total {
		rate := float64(processed) / max(time.Since(q.startTime).Seconds(), 1)

		p.ProcessingSpeed = rate
		p.TimeLeft = time.Duration(float64(total-processed) / rate * float64(time.Second))
		p.ETA = time.Now().Add(p.TimeLeft)
	}

	return p
}

// DequeueAndProcess drains the queue sequentially through processFunc,
// accounting every item by the returned decision. Requeued items come
// around again at the back of the queue. An error is only returned when
// the context ends before the queue runs dry.
func (q *Queue[T]) DequeueAndProcess(ctx context.Context, processFunc func(T) int) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("(queue-proc) %w", err)
		}

		item, ok := q.Dequeue()
		if !ok {
			return nil
		}

		q.SetProcessing(item)

		switch processFunc(item) {
		case DecisionRequeue:
			q.Enqueue(item)

		case DecisionSkipped:
			q.SetSkipped(item)

		case DecisionSuccess:
			q.SetSuccess(item)
		}
	}
}
