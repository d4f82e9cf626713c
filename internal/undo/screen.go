package undo

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/yiblet/proboost/internal/zlog"
)

// ErrBusy is returned by Generate while a request for the same screen is
// still outstanding.
var ErrBusy = errors.New("generation already in progress")

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

// State is everything Undo restores: the editable fields and the last
// result. Result is nil before the first successful generation.
type State[F, R any] struct {
	Fields F
	Result *R
}

// GenerateFunc produces a result from the screen's fields.
type GenerateFunc[F, R any] func(ctx context.Context, fields F) (R, error)

// Screen is one feature screen session. Each Screen has its own slot and
// lock; screens never share state. A new Screen starts with an empty slot.
type Screen[F, R any] struct {
	name     string
	generate GenerateFunc[F, R]
	clone    func(F) F

	mu       sync.Mutex
	state    State[F, R]
	inFlight bool
	slot     *Slot[State[F, R]]
}

// NewScreen creates a screen with initial fields. clone deep-copies fields
// (nil for value types with no shared references).
func NewScreen[F, R any](name string, initial F, gen GenerateFunc[F, R], clone func(F) F) *Screen[F, R] {
	if clone == nil {
		clone = func(f F) F { return f }
	}
	s := &Screen[F, R]{
		name:     name,
		generate: gen,
		clone:    clone,
		state:    State[F, R]{Fields: clone(initial)},
	}
	s.slot = NewSlot(s.cloneState)
	return s
}

func (s *Screen[F, R]) cloneState(st State[F, R]) State[F, R] {
	out := State[F, R]{Fields: s.clone(st.Fields)}
	if st.Result != nil {
		r := *st.Result
		out.Result = &r
	}
	return out
}

// Name identifies the screen.
func (s *Screen[F, R]) Name() string {
	return s.name
}

// Fields returns a copy of the current fields.
func (s *Screen[F, R]) Fields() F {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone(s.state.Fields)
}

// SetFields replaces the editable fields. It does not touch the undo slot.
func (s *Screen[F, R]) SetFields(f F) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Fields = s.clone(f)
}

// Result returns the current result, if any.
func (s *Screen[F, R]) Result() (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Result == nil {
		var zero R
		return zero, false
	}
	return *s.state.Result, true
}

// Snapshot returns a copy of the full current state.
func (s *Screen[F, R]) Snapshot() State[F, R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneState(s.state)
}

// Busy reports whether a generation is outstanding.
func (s *Screen[F, R]) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// CanUndo reports whether Undo would restore anything.
func (s *Screen[F, R]) CanUndo() bool {
	return s.slot.Pending()
}

// Generate captures the current state into the undo slot, then runs the
// generator. On success the result replaces the current one. On failure
// the state is left as it was and the error is returned. The slot is kept
// either way.
func (s *Screen[F, R]) Generate(ctx context.Context) (R, error) {
	var zero R

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return zero, ErrBusy
	}
	s.inFlight = true
	s.slot.Capture(s.state)
	fields := s.clone(s.state.Fields)
	s.mu.Unlock()

	// Cleared even if the generator panics.
	defer s.finish()

	result, err := s.generate(ctx, fields)
	if err != nil {
		logger().Infow("generate fail", "screen", s.name, "err", err)
		return zero, err
	}

	s.mu.Lock()
	s.state.Result = &result
	s.mu.Unlock()
	return result, nil
}

func (s *Screen[F, R]) finish() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Undo restores the captured fields and result together and empties the
// slot. It reports false, changing nothing, when the slot is empty or a
// generation is outstanding.
func (s *Screen[F, R]) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	prev, ok := s.slot.Take()
	if !ok {
		return false
	}
	s.state = prev
	return true
}
