package ga

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/chewxy/math32"
	"github.com/sw965/omw/mathx/randx"
	"github.com/sw965/omw/slicesx"
	"github.com/sw965/rockets/mathx"
	"gonum.org/v1/gonum/floats"
)

// Selector draws n indices into fitnesses, with replacement, biased toward higher fitness.
type Selector func(fitnesses []float32, n int, rng *rand.Rand) ([]int, error)

// sanitizeFitness maps NaN, ±Inf and negative scores to 0 so that they never reach
// the weighting step.
func sanitizeFitness(fitnesses []float32) []float32 {
	ys := make([]float32, len(fitnesses))
	for i, f := range fitnesses {
		if math32.IsNaN(f) || math32.IsInf(f, 0) || f < 0 {
			continue
		}
		ys[i] = f
	}
	return ys
}

// WeightedPool returns the index multiset used by WeightedPoolSelector: each index
// appears round(f/max*resolution) times. When no member has a positive fitness, or
// every count rounds to zero, each index appears exactly once.
func WeightedPool(fitnesses []float32, resolution int) []int {
	ys := sanitizeFitness(fitnesses)
	var max float32
	for _, y := range ys {
		if y > max {
			max = y
		}
	}

	pool := make([]int, 0, len(ys)*resolution/2+1)
	if max > 0 {
		for i, y := range ys {
			norm := mathx.ConvertScale(y, 0, max, 0, 1)
			c := int(math32.Round(norm * float32(resolution)))
			for j := 0; j < c; j++ {
				pool = append(pool, i)
			}
		}
	}

	if len(pool) == 0 {
		for i := range ys {
			pool = append(pool, i)
		}
	}
	return pool
}

// WeightedPoolSelector normalizes every fitness by the population maximum and samples
// uniformly from WeightedPool. A non-positive resolution falls back to
// DefaultPoolResolution.
func WeightedPoolSelector(resolution int) Selector {
	if resolution < 1 {
		resolution = DefaultPoolResolution
	}
	return func(fitnesses []float32, n int, rng *rand.Rand) ([]int, error) {
		if len(fitnesses) == 0 {
			return nil, ErrPopulationTooSmall
		}

		pool := WeightedPool(fitnesses, resolution)
		idxs := make([]int, n)
		for i := range idxs {
			idx, err := randx.Choice(pool, rng)
			if err != nil {
				return nil, err
			}
			idxs[i] = idx
		}
		return idxs, nil
	}
}

// LinearRankingSelector ranks members by fitness and draws them with the linear
// ranking probabilities of LinearRankingProb. pressure must be in [1, 2].
// 確率 0 の個体 (pressure=2 の最下位) は選ばれない。
func LinearRankingSelector(pressure float64) Selector {
	return func(fitnesses []float32, n int, rng *rand.Rand) ([]int, error) {
		if pressure < 1 || pressure > 2 {
			return nil, fmt.Errorf("%w: ranking pressure=%v, want [1, 2]", ErrInvalidConfig, pressure)
		}

		size := len(fitnesses)
		if size == 0 {
			return nil, ErrPopulationTooSmall
		}

		ascIdxs := slicesx.Argsort(sanitizeFitness(fitnesses))
		ws := make([]float64, size)
		for rank := 0; rank < size; rank++ {
			ws[ascIdxs[size-1-rank]] = LinearRankingProb(size, rank, pressure)
		}

		cum := floats.CumSum(make([]float64, size), ws)
		total := cum[size-1]
		idxs := make([]int, n)
		for i := range idxs {
			r := rng.Float64() * total
			idx := sort.Search(size, func(j int) bool { return cum[j] > r })
			if idx == size {
				idx = size - 1
			}
			idxs[i] = idx
		}
		return idxs, nil
	}
}
