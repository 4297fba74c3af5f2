package ga

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"

	"github.com/sw965/omw/mathx/randx"
	"github.com/sw965/omw/parallel"
	"github.com/sw965/omw/slicesx"
)

type State int

const (
	// Evolving は Step を受け付ける状態。
	Evolving State = iota
	// GenerationComplete は全個体が寿命を終え、Restart を待つ状態。
	GenerationComplete
)

func (s State) String() string {
	switch s {
	case Evolving:
		return "evolving"
	case GenerationComplete:
		return "generation complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Population owns its members exclusively. Callers may read members through At and
// All but must not mutate them.
type Population[P Phenotype[P]] struct {
	members    []P
	config     Config
	rng        *rand.Rand
	state      State
	generation int
}

// New builds a population from members. A nil rng is replaced by one seeded from the
// global source.
func New[P Phenotype[P]](members []P, config Config, rng *rand.Rand) (*Population[P], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if len(members) < MinPopulation {
		return nil, fmt.Errorf("%w: size=%d, want >= %d", ErrPopulationTooSmall, len(members), MinPopulation)
	}

	if rng == nil {
		rng = randx.NewPCGFromGlobalSeed()
	}

	return &Population[P]{
		members: slices.Clone(members),
		config:  config,
		rng:     rng,
		state:   Evolving,
	}, nil
}

func (p *Population[P]) Len() int {
	return len(p.members)
}

func (p *Population[P]) At(i int) P {
	return p.members[i]
}

func (p *Population[P]) All() iter.Seq2[int, P] {
	return slices.All(p.members)
}

func (p *Population[P]) State() State {
	return p.state
}

// Generation は Restart が成功した回数を返す。
func (p *Population[P]) Generation() int {
	return p.generation
}

func (p *Population[P]) Config() Config {
	return p.config
}

// Step updates every member once. It returns true when every member reached the end
// of its lifetime and false when none did. A mix of both violates the uniform
// lifetime contract and is reported as ErrMixedLifetimes; the population must not
// be used afterwards.
func (p *Population[P]) Step() (bool, error) {
	if p.state == GenerationComplete {
		return false, ErrGenerationComplete
	}

	n := len(p.members)
	dones := make([]bool, n)
	if p.config.Parallelism > 1 {
		err := parallel.For(n, p.config.Parallelism, func(workerId, idx int) error {
			dones[idx] = p.members[idx].Update()
			return nil
		})
		if err != nil {
			return false, err
		}
	} else {
		for i, member := range p.members {
			dones[i] = member.Update()
		}
	}

	finished := 0
	for _, done := range dones {
		if done {
			finished++
		}
	}

	switch finished {
	case 0:
		return false, nil
	case n:
		p.state = GenerationComplete
		return true, nil
	}
	return false, fmt.Errorf("%w: finished=%d/%d generation=%d", ErrMixedLifetimes, finished, n, p.generation)
}

func (p *Population[P]) Fitnesses() []float32 {
	ys := make([]float32, len(p.members))
	for i, member := range p.members {
		ys[i] = member.Fitness()
	}
	return ys
}

// Best returns the fittest member and its fitness. Non-finite scores rank lowest.
func (p *Population[P]) Best() (P, float32) {
	ys := p.Fitnesses()
	ascIdxs := slicesx.Argsort(sanitizeFitness(ys))
	idx := ascIdxs[len(ascIdxs)-1]
	return p.members[idx], ys[idx]
}

func (p *Population[P]) Stats() Stats {
	return NewStats(p.generation, p.Fitnesses())
}

// Select draws ParentCount(Len()) parents with the configured selector. The same
// member may be drawn more than once.
func (p *Population[P]) Select() ([]P, error) {
	n := len(p.members)
	m := ParentCount(n)
	if m < 2 {
		return nil, fmt.Errorf("%w: size=%d parents=%d", ErrPopulationTooSmall, n, m)
	}

	idxs, err := p.config.Selector(p.Fitnesses(), m, p.rng)
	if err != nil {
		return nil, err
	}

	if len(idxs) != m {
		return nil, fmt.Errorf("%w: got %d indices, want %d", ErrSelectorResult, len(idxs), m)
	}

	parents := make([]P, m)
	for i, idx := range idxs {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrSelectorResult, idx, n)
		}
		parents[i] = p.members[idx]
	}
	return parents, nil
}

// Crossover breeds one child for every unordered pair (i, j), i < j, of parents,
// enumerated as (0,1), (0,2), ..., (1,2), ... .
func (p *Population[P]) Crossover(parents []P) ([]P, error) {
	m := len(parents)
	children := make([]P, 0, ChildCount(m))
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			child, err := parents[i].Crossover(parents[j], p.rng)
			if err != nil {
				return nil, fmt.Errorf("crossover of parents %d and %d: %w", i, j, err)
			}
			children = append(children, child)
		}
	}
	return children, nil
}

// MutateGeneration mutates children in place with the configured intensity. The last
// child is handled by the carry-over policy.
func (p *Population[P]) MutateGeneration(children []P) {
	n := len(children)
	if n == 0 {
		return
	}

	intensity := p.config.MutationIntensity
	switch p.config.CarryOver {
	case CarryOverNone:
		for _, child := range children {
			child.Mutate(intensity, p.rng)
		}
	case CarryOverElite:
		for _, child := range children[:n-1] {
			child.Mutate(intensity, p.rng)
		}
		best, _ := p.Best()
		children[n-1] = best.FromPrototype()
	default:
		for _, child := range children[:n-1] {
			child.Mutate(intensity, p.rng)
		}
	}
}

// Restart replaces the finished generation with the next one:
// Select, Crossover, MutateGeneration.
func (p *Population[P]) Restart() error {
	if p.state != GenerationComplete {
		return ErrGenerationInProgress
	}

	parents, err := p.Select()
	if err != nil {
		return err
	}

	children, err := p.Crossover(parents)
	if err != nil {
		return err
	}

	p.MutateGeneration(children)
	p.members = children
	p.state = Evolving
	p.generation++
	return nil
}
