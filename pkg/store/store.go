// Package store keeps the most recent temperature records in a fixed-size
// circular buffer.
package store

import "iter"

// DefaultCapacity is the number of slots used when none is configured.
const DefaultCapacity = 10

// Record is a single stored temperature reading.
type Record struct {
	Celsius         float64
	Fahrenheit      float64
	TimestampMillis uint64 // Monotonic milliseconds at capture time
}

// Store is a fixed-capacity ring of records. All slots are allocated up front;
// once full, each Append overwrites the oldest record.
//
// Store is not safe for concurrent use.
type Store struct {
	slots  []Record
	next   int // Slot written by the next Append
	filled int // Number of slots holding a real record
}

// New creates a store with the given capacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		slots: make([]Record, capacity),
	}
}

// Append writes a record at the cursor and advances it, wrapping at capacity.
func (s *Store) Append(celsius, fahrenheit float64, timestampMillis uint64) {
	s.slots[s.next] = Record{
		Celsius:         celsius,
		Fahrenheit:      fahrenheit,
		TimestampMillis: timestampMillis,
	}
	s.next = (s.next + 1) % len(s.slots)
	if s.filled < len(s.slots) {
		s.filled++
	}
}

// OverwriteCandidate returns the slot at the cursor: the one the next Append
// will overwrite. After the buffer has wrapped this is the record written
// Cap() appends ago, not the newest one; before that it is a zero Record.
func (s *Store) OverwriteCandidate() Record {
	return s.slots[s.next]
}

// Latest returns the most recently appended record.
func (s *Store) Latest() (Record, bool) {
	if s.filled == 0 {
		return Record{}, false
	}
	return s.slots[(s.next-1+len(s.slots))%len(s.slots)], true
}

// Scan yields every slot with its index in storage order, filled or not.
func (s *Store) Scan() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, r := range s.slots {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Filled reports whether slot i has been written at least once.
func (s *Store) Filled(i int) bool {
	if i < 0 || i >= len(s.slots) {
		return false
	}
	// Slots fill in index order until the first wrap.
	return i < s.filled
}

// Len returns the number of filled slots.
func (s *Store) Len() int { return s.filled }

// Cap returns the number of slots.
func (s *Store) Cap() int { return len(s.slots) }

// Next returns the index of the slot the next Append writes.
func (s *Store) Next() int { return s.next }
