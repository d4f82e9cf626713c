package undo

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot(t *testing.T) {
	s := NewSlot[int](nil)
	assert.False(t, s.Pending())

	_, ok := s.Take()
	assert.False(t, ok)

	s.Capture(1)
	s.Capture(2)
	assert.True(t, s.Pending())

	v, ok := s.Take()
	assert.True(t, ok)
	assert.Equal(t, 2, v, "last capture wins")

	_, ok = s.Take()
	assert.False(t, ok, "second take is a no-op")
}

func TestSlot_Reset(t *testing.T) {
	s := NewSlot[string](nil)
	s.Capture("x")
	s.Reset()
	assert.False(t, s.Pending())
}

func TestSlot_DeepCopies(t *testing.T) {
	s := NewSlot(slices.Clone[[]string])
	fields := []string{"a", "b"}
	s.Capture(fields)
	fields[0] = "mutated"

	v, ok := s.Take()
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, v)
}
