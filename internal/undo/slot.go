// Package undo provides the single-level undo used by feature screens.
package undo

import "sync"

// Slot holds at most one snapshot. Capture overwrites; Take consumes.
type Slot[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
	clone   func(T) T
}

// NewSlot returns an empty slot. clone deep-copies values on the way in
// and out; nil means values are copied by assignment.
func NewSlot[T any](clone func(T) T) *Slot[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Slot[T]{clone: clone}
}

// Capture stores a copy of v, discarding any earlier snapshot.
func (s *Slot[T]) Capture(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = s.clone(v)
	s.present = true
}

// Take returns the snapshot and empties the slot. ok is false when the
// slot was already empty.
func (s *Slot[T]) Take() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return v, false
	}
	v = s.value
	var zero T
	s.value, s.present = zero, false
	return v, true
}

// Pending reports whether a snapshot is held.
func (s *Slot[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.present
}

// Reset empties the slot.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value, s.present = zero, false
}
