package labelcode

import (
	"github.com/bits-and-blooms/bitset"
)

// CodeSet is the set of codes already in use. Backed by a bitset sized to MaxCode;
// codes outside the range are still recorded (the bitset grows) so a snapshot never
// loses information, but the allocator only ever proposes codes in [1, MaxCode].
type CodeSet struct {
	bits *bitset.BitSet
}

// NewCodeSet creates a set holding the given codes.
func NewCodeSet(codes ...int) *CodeSet {
	s := &CodeSet{bits: bitset.New(MaxCode + 1)}
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

// Add marks code as used. Non-positive codes are ignored.
func (s *CodeSet) Add(code int) {
	if code < 1 {
		return
	}
	s.bits.Set(uint(code))
}

// Has reports whether code is used.
func (s *CodeSet) Has(code int) bool {
	if code < 1 {
		return false
	}
	return s.bits.Test(uint(code))
}

// Len returns the number of used codes.
func (s *CodeSet) Len() int {
	return int(s.bits.Count())
}

// FreeIn counts the codes in [1, max] not in the set.
func (s *CodeSet) FreeIn(max int) int {
	used := 0
	for i, ok := s.bits.NextSet(1); ok && i <= uint(max); i, ok = s.bits.NextSet(i + 1) {
		used++
	}
	return max - used
}

// Clone returns an independent copy of the set.
func (s *CodeSet) Clone() *CodeSet {
	return &CodeSet{bits: s.bits.Clone()}
}
