package ga

import (
	"fmt"
	"math"
)

// CarryOverPolicy decides which child of a new generation skips mutation.
type CarryOverPolicy int

const (
	// CarryOverLast leaves the last child unmutated.
	CarryOverLast CarryOverPolicy = iota
	// CarryOverElite replaces the last child with a fresh copy of the fittest parent.
	CarryOverElite
	// CarryOverNone mutates every child.
	CarryOverNone
)

func (p CarryOverPolicy) String() string {
	switch p {
	case CarryOverLast:
		return "last"
	case CarryOverElite:
		return "elite"
	case CarryOverNone:
		return "none"
	default:
		return fmt.Sprintf("CarryOverPolicy(%d)", int(p))
	}
}

func ParseCarryOverPolicy(s string) (CarryOverPolicy, error) {
	switch s {
	case "", "last":
		return CarryOverLast, nil
	case "elite":
		return CarryOverElite, nil
	case "none":
		return CarryOverNone, nil
	}
	return 0, fmt.Errorf("%w: carry over policy %q", ErrInvalidConfig, s)
}

const (
	DefaultMutationIntensity = 0.05
	DefaultPoolResolution    = 100
)

type Config struct {
	MutationIntensity float32
	Selector          Selector
	CarryOver         CarryOverPolicy
	// Parallelism が 2 以上の場合、Step は個体の Update を並列に呼び出す。
	Parallelism int
}

func DefaultConfig() Config {
	return Config{
		MutationIntensity: DefaultMutationIntensity,
		Selector:          WeightedPoolSelector(DefaultPoolResolution),
		CarryOver:         CarryOverLast,
		Parallelism:       1,
	}
}

func (c Config) Validate() error {
	i := float64(c.MutationIntensity)
	if math.IsNaN(i) || i < 0 || i > 1 {
		return fmt.Errorf("%w: MutationIntensity=%v, want [0, 1]", ErrInvalidConfig, c.MutationIntensity)
	}
	if c.Selector == nil {
		return ErrNilSelector
	}
	switch c.CarryOver {
	case CarryOverLast, CarryOverElite, CarryOverNone:
	default:
		return fmt.Errorf("%w: CarryOver=%v", ErrInvalidConfig, c.CarryOver)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: Parallelism=%d, want >= 1", ErrInvalidConfig, c.Parallelism)
	}
	return nil
}
