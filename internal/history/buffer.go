// Package history keeps the bounded, append-only quote history that backs
// indicator computation.
package history

import (
	"errors"
	"sync"

	"index-pulse/internal/domain"

	"go.uber.org/atomic"
)

// DefaultCapacity is the number of quotes retained when no capacity is configured.
const DefaultCapacity = 100

// Buffer is a fixed-capacity ring of quotes. The oldest entry is evicted
// when a new quote is appended to a full buffer. Entries are stored by
// value and never modified after insertion.
type Buffer struct {
	data    []domain.Quote
	dataMtx sync.RWMutex
	start   atomic.Int32
	count   atomic.Int32
	size    atomic.Int32
}

// New initializes a buffer holding at most capacity quotes.
func New(capacity int) (*Buffer, error) {
	if capacity < 0 {
		return nil, errors.New("history capacity cannot be negative")
	}
	if capacity == 0 {
		return nil, errors.New("history capacity cannot be zero")
	}

	b := &Buffer{data: make([]domain.Quote, capacity)}
	b.size.Store(int32(capacity))
	return b, nil
}

// Append adds q as the newest entry.
func (b *Buffer) Append(q domain.Quote) {
	b.dataMtx.Lock()
	defer b.dataMtx.Unlock()

	start := b.start.Load()
	count := b.count.Load()
	size := b.size.Load()
	b.data[(start+count)%size] = q

	if count == size {
		b.start.Store((start + 1) % size)
	} else {
		b.count.Add(1)
	}
}

// Snapshot returns a copy of every entry, oldest first.
func (b *Buffer) Snapshot() []domain.Quote {
	return b.LastN(b.size.Load())
}

// LastN returns a copy of the newest n entries, oldest first.
func (b *Buffer) LastN(n int32) []domain.Quote {
	b.dataMtx.RLock()
	defer b.dataMtx.RUnlock()

	if n <= 0 {
		return nil
	}

	start := b.start.Load()
	count := b.count.Load()
	size := b.size.Load()
	if n > count {
		n = count
	}

	out := make([]domain.Quote, n)
	start = (start + count - n + size) % size
	for i := range n {
		out[i] = b.data[(start+i)%size]
	}
	return out
}

// Last returns the newest entry, or false when the buffer is empty.
func (b *Buffer) Last() (domain.Quote, bool) {
	b.dataMtx.RLock()
	defer b.dataMtx.RUnlock()

	count := b.count.Load()
	if count == 0 {
		return domain.Quote{}, false
	}
	idx := (b.start.Load() + count - 1) % b.size.Load()
	return b.data[idx], true
}

func (b *Buffer) Len() int {
	return int(b.count.Load())
}

func (b *Buffer) Cap() int {
	return int(b.size.Load())
}
