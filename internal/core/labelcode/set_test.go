package labelcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeSet(t *testing.T) {
	s := NewCodeSet(1, 2, 3, 5, 0, -4)

	assert.True(t, s.Has(1))
	assert.True(t, s.Has(5))
	assert.False(t, s.Has(4))
	assert.False(t, s.Has(0))
	assert.Equal(t, 4, s.Len())
}

func TestCodeSet_OutOfRangeCodesAreKept(t *testing.T) {
	s := NewCodeSet(9999)

	assert.True(t, s.Has(9999))
	assert.Equal(t, MaxCode, s.FreeIn(MaxCode))
}

func TestCodeSet_FreeIn(t *testing.T) {
	s := NewCodeSet(1, 2, 3, 5)
	assert.Equal(t, 1, s.FreeIn(5))
	assert.Equal(t, 6, s.FreeIn(10))
}

func TestCodeSet_Clone(t *testing.T) {
	s := NewCodeSet(1)
	c := s.Clone()
	c.Add(2)

	assert.False(t, s.Has(2))
	assert.True(t, c.Has(2))
}
