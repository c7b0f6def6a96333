package labels

import (
	"math/rand/v2"
	"sort"

	"linksoc/internal/core/labelcode"
)

// RandomAttemptsPerCode bounds random draws to quantity*RandomAttemptsPerCode.
const RandomAttemptsPerCode = 200

// RandomSource yields integers in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Allocator picks free codes in [1, MaxCode] and assigns series.
// A non-positive MaxCode means labelcode.MaxCode.
// It is pure: it never touches the store and never mutates its inputs.
type Allocator struct {
	MaxCode int
	Rand    RandomSource
}

// NewAllocator creates an allocator over [1, maxCode] using the process-wide random source.
func NewAllocator(maxCode int) *Allocator {
	if maxCode <= 0 {
		maxCode = labelcode.MaxCode
	}
	return &Allocator{MaxCode: maxCode, Rand: globalRand{}}
}

// Allocate returns up to quantity new (code, serie) pairs.
//
// Series continue from currentMaxSerie in emission order. In random mode the
// result is sorted by code after series are assigned, so series are not
// ascending in the returned order. Returning fewer than quantity pairs is a
// shortfall, not an error.
func (a *Allocator) Allocate(quantity int, mode Mode, existing *labelcode.CodeSet, currentMaxSerie int) []Allocation {
	if quantity < 1 {
		return nil
	}

	var used *labelcode.CodeSet
	if existing != nil {
		used = existing.Clone()
	} else {
		used = labelcode.NewCodeSet()
	}

	maxCode := a.MaxCode
	if maxCode <= 0 {
		maxCode = labelcode.MaxCode
	}

	if mode == ModeRandom {
		return a.random(quantity, maxCode, used, currentMaxSerie)
	}
	return a.sequential(quantity, maxCode, used, currentMaxSerie)
}

func (a *Allocator) sequential(quantity, maxCode int, used *labelcode.CodeSet, serie int) []Allocation {
	out := make([]Allocation, 0, quantity)
	for code := 1; code <= maxCode && len(out) < quantity; code++ {
		if used.Has(code) {
			continue
		}
		serie++
		out = append(out, Allocation{Code: code, Serie: serie})
		used.Add(code)
	}
	return out
}

func (a *Allocator) random(quantity, maxCode int, used *labelcode.CodeSet, serie int) []Allocation {
	rnd := a.Rand
	if rnd == nil {
		rnd = globalRand{}
	}

	out := make([]Allocation, 0, quantity)
	for attempts := quantity * RandomAttemptsPerCode; attempts > 0 && len(out) < quantity; attempts-- {
		code := rnd.IntN(maxCode) + 1
		if used.Has(code) {
			continue
		}
		serie++
		out = append(out, Allocation{Code: code, Serie: serie})
		used.Add(code)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
