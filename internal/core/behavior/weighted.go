package behavior

import (
	"math/rand/v2"
	"sort"
)

// DefaultWeight is the weight of a child that declares none when its parent
// Random picks by weight.
const DefaultWeight = 1.0

// weightedPicker draws an index with probability proportional to its weight
// using cumulative sums and a single uniform draw.
type weightedPicker struct {
	cumulative []float64
	total      float64
}

func newWeightedPicker(weights []float64) weightedPicker {
	p := weightedPicker{cumulative: make([]float64, len(weights))}
	for i, w := range weights {
		if w <= 0 {
			w = DefaultWeight
		}
		p.total += w
		p.cumulative[i] = p.total
	}
	return p
}

func (p weightedPicker) pick(rng *rand.Rand) int {
	u := rng.Float64() * p.total
	i := sort.Search(len(p.cumulative), func(i int) bool { return p.cumulative[i] > u })
	if i == len(p.cumulative) {
		// u can only reach total through rounding
		i--
	}
	return i
}
