package queue

import "time"

// Progress is a point-in-time snapshot of a queue's processing state, as
// consumed by progress displays. ETA and speed figures are estimations
// derived from the processing rate so far and are only populated while a
// batch is actually in flight.
type Progress struct {
	// HasStarted reports whether any item was dequeued yet.
	HasStarted bool

	// HasFinished reports whether the last enqueued item was dequeued.
	HasFinished bool

	// StartTime is the time of the first dequeue operation.
	StartTime time.Time

	// FinishTime is the time the last enqueued item was dequeued.
	FinishTime time.Time

	// ProgressPct is the processed share of all enqueued items (0-100).
	ProgressPct float64

	// TotalItems is the count of all items ever enqueued.
	TotalItems int

	// ProcessedItems is the count of items already decided on.
	ProcessedItems int

	// InProgressItems is the count of items currently processing.
	InProgressItems int

	// SuccessItems is the count of successfully processed items.
	SuccessItems int

	// SkippedItems is the count of skipped items.
	SkippedItems int

	// ETA is the estimated completion time.
	ETA time.Time

	// TimeLeft is the estimated remaining processing time.
	TimeLeft time.Duration

	// ProcessingSpeed is the estimated processing rate.
	ProcessingSpeed float64

	// ProcessingSpeedUnit names the unit of ProcessingSpeed.
	ProcessingSpeedUnit string
}
