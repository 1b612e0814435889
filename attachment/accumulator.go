package attachment

import (
	"sync"

	"github.com/pkg/errors"
)

// MaxTotalSize is the cumulative attachment ceiling: 25 MiB.
const MaxTotalSize int64 = 25 * 1024 * 1024

// ErrLocked is returned by mutating calls while a batch is sending.
var ErrLocked = errors.New("attachments are locked while a batch is sending")

// AddResult reports what Add did with its candidates.
type AddResult struct {
	Accepted   []Attachment
	Skipped    []Attachment
	AnySkipped bool
}

// Accumulator is an ordered attachment set under a cumulative size ceiling.
// The running total always equals the sum of the current entries' sizes.
type Accumulator struct {
	mx      sync.RWMutex
	items   []Attachment
	total   int64
	ceiling int64
	locked  bool
}

// NewAccumulator returns an empty accumulator with the MaxTotalSize ceiling.
func NewAccumulator() *Accumulator {
	return NewAccumulatorWithCeiling(MaxTotalSize)
}

func NewAccumulatorWithCeiling(ceiling int64) *Accumulator {
	return &Accumulator{ceiling: ceiling}
}

// Add evaluates candidates in order and appends each one that still fits
// under the ceiling. Candidates that do not fit are dropped, later smaller
// ones may still be accepted.
func (a *Accumulator) Add(candidates ...Attachment) (AddResult, error) {
	a.mx.Lock()
	defer a.mx.Unlock()

	if a.locked {
		return AddResult{}, ErrLocked
	}

	var res AddResult
	for _, c := range candidates {
		if c.Size < 0 || a.total+c.Size > a.ceiling {
			res.Skipped = append(res.Skipped, c)
			res.AnySkipped = true
			continue
		}
		a.total += c.Size
		a.items = append(a.items, c)
		res.Accepted = append(res.Accepted, c)
	}
	return res, nil
}

// RemoveAt removes the attachment at index. Out of range indices are ignored.
func (a *Accumulator) RemoveAt(index int) error {
	a.mx.Lock()
	defer a.mx.Unlock()

	if a.locked {
		return ErrLocked
	}
	if index < 0 || index >= len(a.items) {
		return nil
	}
	a.total -= a.items[index].Size
	a.items = append(a.items[:index:index], a.items[index+1:]...)
	return nil
}

// Clear empties the set.
func (a *Accumulator) Clear() error {
	a.mx.Lock()
	defer a.mx.Unlock()

	if a.locked {
		return ErrLocked
	}
	a.items = nil
	a.total = 0
	return nil
}

// Items returns a copy of the current entries.
func (a *Accumulator) Items() []Attachment {
	a.mx.RLock()
	defer a.mx.RUnlock()
	out := make([]Attachment, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Accumulator) Len() int {
	a.mx.RLock()
	defer a.mx.RUnlock()
	return len(a.items)
}

// TotalSize returns the cumulative size in bytes.
func (a *Accumulator) TotalSize() int64 {
	a.mx.RLock()
	defer a.mx.RUnlock()
	return a.total
}

// Ceiling returns the configured limit in bytes.
func (a *Accumulator) Ceiling() int64 {
	return a.ceiling
}

// IsOverLimit is informational, Add never lets the total pass the ceiling.
func (a *Accumulator) IsOverLimit() bool {
	a.mx.RLock()
	defer a.mx.RUnlock()
	return a.total > a.ceiling
}

// Lock freezes the set for the duration of a batch and returns a snapshot
// of its entries. It fails if the set is already locked.
func (a *Accumulator) Lock() ([]Attachment, error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.locked {
		return nil, ErrLocked
	}
	a.locked = true
	out := make([]Attachment, len(a.items))
	copy(out, a.items)
	return out, nil
}

// Unlock re-enables editing.
func (a *Accumulator) Unlock() {
	a.mx.Lock()
	defer a.mx.Unlock()
	a.locked = false
}

func (a *Accumulator) Locked() bool {
	a.mx.RLock()
	defer a.mx.RUnlock()
	return a.locked
}
