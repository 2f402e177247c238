package drive

import (
	"math/rand"
)

// Experience is a single stored transition. The state always reflects the
// tick before the action was applied, nextState the tick after.
type Experience struct {
	State     []float64 `json:"state"`
	Action    int       `json:"action"`
	Reward    float64   `json:"reward"`
	NextState []float64 `json:"nextState"`
	Done      bool      `json:"done"`
}

// ReplayBuffer is a bounded FIFO of experiences. When an append pushes the
// length past capacity the buffer is trimmed to the most recent trimTo
// entries (batch eviction rather than a hard per-append cap; the lineage's
// single-oldest-eviction variant is deliberately not used).
type ReplayBuffer struct {
	capacity int
	trimTo   int
	items    []Experience
}

// NewReplayBuffer creates a buffer with the given capacity and post-overflow
// trim size. A trimTo outside (0, capacity] is corrected to capacity.
func NewReplayBuffer(capacity, trimTo int) *ReplayBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	if trimTo <= 0 || trimTo > capacity {
		trimTo = capacity
	}
	return &ReplayBuffer{
		capacity: capacity,
		trimTo:   trimTo,
		items:    make([]Experience, 0, capacity+1),
	}
}

// Add appends an experience, evicting the oldest entries when the buffer
// overflows. The most recently inserted experience is always retained.
func (b *ReplayBuffer) Add(exp Experience) {
	b.items = append(b.items, exp)
	if len(b.items) > b.capacity {
		keep := b.items[len(b.items)-b.trimTo:]
		// Copy down rather than re-slice so the evicted prefix can be
		// collected.
		trimmed := make([]Experience, len(keep), b.capacity+1)
		copy(trimmed, keep)
		b.items = trimmed
	}
}

// Len returns the number of stored experiences.
func (b *ReplayBuffer) Len() int {
	return len(b.items)
}

// Sample draws n experiences uniformly at random with replacement.
// Returns nil for an empty buffer.
func (b *ReplayBuffer) Sample(n int, rng *rand.Rand) []Experience {
	if len(b.items) == 0 || n <= 0 {
		return nil
	}
	out := make([]Experience, n)
	for i := range out {
		out[i] = b.items[rng.Intn(len(b.items))]
	}
	return out
}

// Last returns the most recently inserted experience.
func (b *ReplayBuffer) Last() (Experience, bool) {
	if len(b.items) == 0 {
		return Experience{}, false
	}
	return b.items[len(b.items)-1], true
}
