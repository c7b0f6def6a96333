package labels

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linksoc/internal/core/labelcode"
)

// scriptedRand replays fixed draws, then repeats the last one.
type scriptedRand struct {
	draws []int
	calls int
}

func (r *scriptedRand) IntN(n int) int {
	i := r.calls
	r.calls++
	if i >= len(r.draws) {
		i = len(r.draws) - 1
	}
	return r.draws[i] % n
}

func codesOf(allocs []Allocation) []int {
	out := make([]int, len(allocs))
	for i, a := range allocs {
		out[i] = a.Code
	}
	return out
}

func seriesOf(allocs []Allocation) []int {
	out := make([]int, len(allocs))
	for i, a := range allocs {
		out[i] = a.Serie
	}
	return out
}

func TestAllocate_SequentialFillsGaps(t *testing.T) {
	a := &Allocator{MaxCode: 5}

	got := a.Allocate(3, ModeSequential, labelcode.NewCodeSet(1, 2, 3, 5), 7)

	require.Len(t, got, 1)
	assert.Equal(t, Allocation{Code: 4, Serie: 8}, got[0])
}

func TestAllocate_SequentialFromEmpty(t *testing.T) {
	a := NewAllocator(labelcode.MaxCode)

	got := a.Allocate(5, ModeSequential, labelcode.NewCodeSet(), 10)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, codesOf(got))
	assert.Equal(t, []int{11, 12, 13, 14, 15}, seriesOf(got))

	f := labelcode.DefaultFormat()
	assert.Equal(t, "CG1", f.Code(got[0].Code))
	assert.Equal(t, "CG5", f.Code(got[4].Code))
	assert.Equal(t, "0011", f.Serie(got[0].Serie))
	assert.Equal(t, "0015", f.Serie(got[4].Serie))
}

func TestAllocate_SequentialExactlyFillsRange(t *testing.T) {
	a := &Allocator{MaxCode: 10}
	existing := labelcode.NewCodeSet(2, 4, 6, 8)

	got := a.Allocate(existing.FreeIn(10), ModeSequential, existing, 0)

	assert.Equal(t, []int{1, 3, 5, 7, 9, 10}, codesOf(got))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, seriesOf(got))
}

func TestAllocate_SequentialStaysInRange(t *testing.T) {
	a := &Allocator{MaxCode: 20}

	got := a.Allocate(50, ModeSequential, labelcode.NewCodeSet(20, 21, 9999), 0)

	require.Len(t, got, 19)
	for i, alloc := range got {
		assert.GreaterOrEqual(t, alloc.Code, 1)
		assert.LessOrEqual(t, alloc.Code, 20)
		if i > 0 {
			assert.Greater(t, alloc.Code, got[i-1].Code)
		}
	}
}

func TestAllocate_DoesNotMutateExisting(t *testing.T) {
	a := &Allocator{MaxCode: 10}
	existing := labelcode.NewCodeSet(1)

	a.Allocate(3, ModeSequential, existing, 0)

	assert.Equal(t, 1, existing.Len())
	assert.False(t, existing.Has(2))
}

func TestAllocate_NonPositiveQuantity(t *testing.T) {
	a := NewAllocator(0)
	assert.Empty(t, a.Allocate(0, ModeSequential, nil, 0))
	assert.Empty(t, a.Allocate(-3, ModeRandom, nil, 0))
}

// Series are assigned in draw order; the final sort by code reorders them.
func TestAllocate_RandomSeriesFollowDrawOrder(t *testing.T) {
	a := &Allocator{MaxCode: labelcode.MaxCode, Rand: &scriptedRand{draws: []int{9, 2, 4}}}

	got := a.Allocate(3, ModeRandom, labelcode.NewCodeSet(), 0)

	assert.Equal(t, []int{3, 5, 10}, codesOf(got))
	assert.Equal(t, []int{2, 3, 1}, seriesOf(got))
}

func TestAllocate_RandomSkipsUsedAndRepeatedDraws(t *testing.T) {
	a := &Allocator{MaxCode: 10, Rand: &scriptedRand{draws: []int{2, 2, 0, 0, 4}}}

	got := a.Allocate(2, ModeRandom, labelcode.NewCodeSet(3), 100)

	assert.Equal(t, []Allocation{{Code: 1, Serie: 101}, {Code: 5, Serie: 102}}, got)
}

func TestAllocate_RandomAttemptBudget(t *testing.T) {
	src := &scriptedRand{draws: []int{0}}
	a := &Allocator{MaxCode: 5, Rand: src}

	got := a.Allocate(2, ModeRandom, labelcode.NewCodeSet(1, 2, 3, 4, 5), 0)

	assert.Empty(t, got)
	assert.Equal(t, 2*RandomAttemptsPerCode, src.calls)
}

func TestAllocate_RandomProperties(t *testing.T) {
	rnd := rand.New(rand.NewPCG(42, 7))
	a := &Allocator{MaxCode: labelcode.MaxCode, Rand: rnd}

	existing := labelcode.NewCodeSet()
	for i := 0; i < 2000; i++ {
		existing.Add(rnd.IntN(labelcode.MaxCode) + 1)
	}

	got := a.Allocate(100, ModeRandom, existing, 0)

	require.Len(t, got, 100)
	seen := make(map[int]bool)
	for i, alloc := range got {
		assert.False(t, existing.Has(alloc.Code), "code %d already used", alloc.Code)
		assert.False(t, seen[alloc.Code], "code %d emitted twice", alloc.Code)
		assert.GreaterOrEqual(t, alloc.Code, 1)
		assert.LessOrEqual(t, alloc.Code, labelcode.MaxCode)
		if i > 0 {
			assert.Greater(t, alloc.Code, got[i-1].Code)
		}
		seen[alloc.Code] = true
	}

	want := make([]int, 100)
	for i := range want {
		want[i] = i + 1
	}
	assert.ElementsMatch(t, want, seriesOf(got))
}

func TestAllocate_ZeroValueAllocatorUsesDefaultRange(t *testing.T) {
	var a Allocator

	seq := a.Allocate(3, ModeSequential, labelcode.NewCodeSet(), 0)
	assert.Equal(t, []int{1, 2, 3}, codesOf(seq))

	var rnd []Allocation
	require.NotPanics(t, func() {
		rnd = a.Allocate(3, ModeRandom, labelcode.NewCodeSet(), 0)
	})
	require.Len(t, rnd, 3)
	for _, r := range rnd {
		assert.GreaterOrEqual(t, r.Code, 1)
		assert.LessOrEqual(t, r.Code, labelcode.MaxCode)
	}
}
