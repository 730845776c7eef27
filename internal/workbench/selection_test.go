package workbench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionSet_ToggleRoundTrip(t *testing.T) {
	s := NewSelectionSet()
	s.AddMany([]int64{1, 2})
	before := s.IDs()

	assert.True(t, s.Toggle(3, true))
	assert.True(t, s.Has(3))
	assert.True(t, s.Toggle(3, false))
	assert.Equal(t, before, s.IDs())

	assert.False(t, s.Toggle(1, true), "already a member")
	assert.False(t, s.Toggle(9, false), "not a member")
}

func TestSelectionSet_InsertionOrder(t *testing.T) {
	s := NewSelectionSet()
	s.AddMany([]int64{5, 3, 9, 3})
	assert.Equal(t, []int64{5, 3, 9}, s.IDs())

	s.Toggle(3, false)
	s.Toggle(3, true)
	assert.Equal(t, []int64{5, 9, 3}, s.IDs())
}

func TestSelectionSet_ClearAndReplace(t *testing.T) {
	s := NewSelectionSet()
	s.AddMany([]int64{1, 2, 3})

	s.Replace([]int64{7, 8})
	assert.Equal(t, []int64{7, 8}, s.IDs())
	assert.False(t, s.Has(1))

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.IDs())
}

func TestSelectionSet_IDsIsACopy(t *testing.T) {
	s := NewSelectionSet()
	s.AddMany([]int64{1, 2})
	got := s.IDs()
	got[0] = 99
	assert.Equal(t, []int64{1, 2}, s.IDs())
}
