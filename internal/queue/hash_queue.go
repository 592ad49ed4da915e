package queue

import (
	"sync/atomic"
	"time"

	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// HashQueue is a queue of file nodes whose contents are run through a
// digest algorithm as a batch, for capturing or verifying hashsums.
//
// HashQueue embeds a [Queue] and additionally accounts the bytes already
// digested, so that its [Progress] can report a byte-based speed instead
// of a plain item rate.
type HashQueue struct {
	*Queue[*tree.Node]

	bytesHashed atomic.Uint64
}

// NewHashQueue returns a pointer to a new [HashQueue].
func NewHashQueue() *HashQueue {
	return &HashQueue{
		Queue: New[*tree.Node](),
	}
}

// AddBytesHashed adds digested bytes to the batch total.
func (q *HashQueue) AddBytesHashed(bytes uint64) {
	q.bytesHashed.Add(bytes)
}

// Progress returns the [Progress] of the [HashQueue], with the speed
// restated in digested bytes per second while the batch is in flight.
func (q *HashQueue) Progress() Progress {
	p := q.Queue.Progress()

	if p.HasStarted && p.ProcessedItems > 0 && p.ProcessedItems < p.TotalItems {
		elapsed := max(time.Since(p.StartTime).Seconds(), 1)
		if rate := float64(q.bytesHashed.Load()) / elapsed; rate > 0 {
			p.ProcessingSpeed = rate
		}
	}

	p.ProcessingSpeedUnit = "bytes/sec"

	return p
}
