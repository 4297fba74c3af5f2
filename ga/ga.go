// Package ga provides a generational genetic-algorithm engine that is generic over
// any phenotype satisfying Phenotype.
//
// Package ga は Phenotype を満たす任意の個体に対する世代交代型の遺伝的アルゴリズムを提供します。
// 世代の終了は全個体の寿命が同時に尽きる事で判定されます。
package ga

import (
	"errors"
	"math"
	"math/rand/v2"
)

var (
	ErrPopulationTooSmall   = errors.New("Populationエラー: 親のペアを作れる個体数に達していません")
	ErrMixedLifetimes       = errors.New("Populationエラー: 寿命を終えた個体と終えていない個体が混在しています")
	ErrGenerationComplete   = errors.New("Populationエラー: 世代は終了済みです。Restartを呼び出してください")
	ErrGenerationInProgress = errors.New("Populationエラー: 世代が終了していません")

	ErrInvalidConfig  = errors.New("Configエラー: 値が不正です")
	ErrNilSelector    = errors.New("Configエラー: Selectorがnilです")
	ErrSelectorResult = errors.New("Selectorエラー: 戻り値が不正です")
)

// Phenotype is the capability the engine evolves. P is the implementing type itself,
// usually a pointer, so that Crossover and FromPrototype return the concrete type.
type Phenotype[P any] interface {
	// Update advances one step and reports whether the lifetime has ended.
	Update() bool

	// Fitness is higher for better phenotypes. Only the order matters.
	Fitness() float32

	// Mutate perturbs each gene with probability intensity.
	Mutate(intensity float32, rng *rand.Rand)

	// Crossover returns a child whose genes come from the receiver or other with
	// equal probability. The child's lifecycle state is fresh.
	Crossover(other P, rng *rand.Rand) (P, error)

	// FromPrototype returns a fresh phenotype carrying the receiver's genome verbatim.
	FromPrototype() P
}

// MinPopulation is the smallest population from which ParentCount yields a pair.
const MinPopulation = 1

// ParentCount returns m = round((1 + sqrt(1 + 8p)) / 2), the number of parents whose
// pairwise children approximately reproduce a population of size p.
func ParentCount(p int) int {
	if p < 0 {
		return 0
	}
	return int(math.Round((1.0 + math.Sqrt(1.0+8.0*float64(p))) / 2.0))
}

// ChildCount returns m(m-1)/2, the number of unordered pairs among m parents.
func ChildCount(m int) int {
	if m < 2 {
		return 0
	}
	return m * (m - 1) / 2
}

// LinearRankingProb は n 個体中 rank 位 (0 が最良) の選択確率を返す。s は選択圧で [1, 2]。
func LinearRankingProb(n, rank int, s float64) float64 {
	if n == 1 {
		return 1.0
	}
	m := 2.0 - s
	return 1.0 / float64(n) * (m + (s-m)*(float64(n-1-rank)/float64(n-1)))
}
