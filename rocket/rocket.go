// Package rocket implements a ga.Phenotype that flies a fixed sequence of movement
// vectors from a start point toward a shared goal inside a rectangular field.
package rocket

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/chewxy/math32"
	"github.com/sw965/omw/mathx/randx"
	"github.com/sw965/rockets/mathx"
)

var (
	ErrInvalidConfig = errors.New("Configエラー: 値が不正です")
	ErrGenomeLength  = errors.New("Genomeエラー: 長さが一致しません")
	ErrNilGoal       = errors.New("Goalエラー: nilです")
)

type Vec2 struct {
	X, Y int
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

type State int

const (
	Running State = iota
	HitWall
	HitTarget
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case HitWall:
		return "hit wall"
	case HitTarget:
		return "hit target"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Field is the playing area [0, Width) x [0, Height).
type Field struct {
	Width, Height int
}

func (f Field) Contains(p Vec2) bool {
	return p.X >= 0 && p.X < f.Width && p.Y >= 0 && p.Y < f.Height
}

// Goal is shared read-only by every rocket of a run.
type Goal struct {
	pos Vec2
}

func NewGoal(pos Vec2) *Goal {
	return &Goal{pos: pos}
}

func (g *Goal) Pos() Vec2 {
	return g.pos
}

// GeneRange is the half-open interval [Min, Max) each vector component is drawn from.
type GeneRange struct {
	Min, Max int
}

func (r GeneRange) Rand(rng *rand.Rand) Vec2 {
	span := r.Max - r.Min
	return Vec2{X: r.Min + rng.IntN(span), Y: r.Min + rng.IntN(span)}
}

type Config struct {
	Field         Field
	Start         Vec2
	GenomeLen     int
	SpawnRange    GeneRange
	MutationRange GeneRange
	// TargetRadius はゴールとの当たり判定の半径 (チェビシェフ距離)。
	TargetRadius int
	WallPenalty  float32
	TargetBonus  float32
}

func DefaultConfig() Config {
	return Config{
		Field:         Field{Width: 500, Height: 500},
		Start:         Vec2{X: 250, Y: 480},
		GenomeLen:     200,
		SpawnRange:    GeneRange{Min: -15, Max: 15},
		MutationRange: GeneRange{Min: -30, Max: 30},
		TargetRadius:  5,
		WallPenalty:   1000,
		TargetBonus:   1000,
	}
}

func (c Config) Validate() error {
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		return fmt.Errorf("%w: Field=%+v", ErrInvalidConfig, c.Field)
	}
	if !c.Field.Contains(c.Start) {
		return fmt.Errorf("%w: Start=%+v is outside the field", ErrInvalidConfig, c.Start)
	}
	if c.GenomeLen < 1 {
		return fmt.Errorf("%w: GenomeLen=%d", ErrInvalidConfig, c.GenomeLen)
	}
	if c.SpawnRange.Max <= c.SpawnRange.Min {
		return fmt.Errorf("%w: SpawnRange=%+v", ErrInvalidConfig, c.SpawnRange)
	}
	if c.MutationRange.Max <= c.MutationRange.Min {
		return fmt.Errorf("%w: MutationRange=%+v", ErrInvalidConfig, c.MutationRange)
	}
	if c.TargetRadius < 0 {
		return fmt.Errorf("%w: TargetRadius=%d", ErrInvalidConfig, c.TargetRadius)
	}
	// HitTarget が常に最も高い適応度となる為には TargetBonus > 1 が必要。
	if c.WallPenalty < 1 || c.TargetBonus <= 1 {
		return fmt.Errorf("%w: WallPenalty=%v TargetBonus=%v", ErrInvalidConfig, c.WallPenalty, c.TargetBonus)
	}
	return nil
}

type Rocket struct {
	config *Config
	goal   *Goal
	genome []Vec2
	cursor int
	pos    Vec2
	state  State
}

func newRocket(config *Config, goal *Goal, genome []Vec2) *Rocket {
	return &Rocket{
		config: config,
		goal:   goal,
		genome: genome,
		pos:    config.Start,
		state:  Running,
	}
}

// New returns a rocket at config.Start with a genome drawn from config.SpawnRange.
// config is shared by reference and must not be modified afterwards.
func New(config *Config, goal *Goal, rng *rand.Rand) (*Rocket, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrNilGoal
	}

	genome := make([]Vec2, config.GenomeLen)
	for i := range genome {
		genome[i] = config.SpawnRange.Rand(rng)
	}
	return newRocket(config, goal, genome), nil
}

// NewWithGenome returns a rocket flying genome. The genome is copied and need not
// be config.GenomeLen long.
func NewWithGenome(config *Config, goal *Goal, genome []Vec2) (*Rocket, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrNilGoal
	}
	return newRocket(config, goal, slices.Clone(genome)), nil
}

// Spawn returns n rockets with independent random genomes sharing config and goal.
func Spawn(n int, config *Config, goal *Goal, rng *rand.Rand) ([]*Rocket, error) {
	rockets := make([]*Rocket, n)
	for i := range rockets {
		r, err := New(config, goal, rng)
		if err != nil {
			return nil, err
		}
		rockets[i] = r
	}
	return rockets, nil
}

func (r *Rocket) Pos() Vec2 {
	return r.pos
}

func (r *Rocket) State() State {
	return r.state
}

func (r *Rocket) Cursor() int {
	return r.cursor
}

func (r *Rocket) Goal() *Goal {
	return r.goal
}

// Genome returns a copy of the movement vectors.
func (r *Rocket) Genome() []Vec2 {
	return slices.Clone(r.genome)
}

func (r *Rocket) Done() bool {
	return r.cursor >= len(r.genome)
}

// Update applies the next movement vector while the rocket is running and reports
// whether the genome is exhausted. The cursor advances even after a wall or target
// hit, so every rocket of a generation ends its lifetime on the same step.
func (r *Rocket) Update() bool {
	if r.Done() {
		return true
	}

	if r.state == Running {
		r.pos = r.pos.Add(r.genome[r.cursor])
		switch {
		case r.nearGoal():
			r.state = HitTarget
		case !r.config.Field.Contains(r.pos):
			r.state = HitWall
		}
	}
	r.cursor++
	return r.Done()
}

func (r *Rocket) nearGoal() bool {
	d := r.pos.Sub(r.goal.Pos())
	radius := r.config.TargetRadius
	return mathx.Abs(d.X) <= radius && mathx.Abs(d.Y) <= radius
}

// Distance は現在位置からゴールまでのユークリッド距離。
func (r *Rocket) Distance() float32 {
	d := r.pos.Sub(r.goal.Pos())
	return mathx.Norm2(float32(d.X), float32(d.Y))
}

// Fitness is the inverse distance to the goal while running, the same divided by
// WallPenalty after hitting a wall, and TargetBonus after hitting the target. The
// distance is clamped to at least 1 so the score never exceeds 1 short of the target.
func (r *Rocket) Fitness() float32 {
	if r.state == HitTarget {
		return r.config.TargetBonus
	}

	d := r.Distance()
	if math32.IsNaN(d) || d < 1 {
		d = 1
	}
	y := 1.0 / d
	if r.state == HitWall {
		y /= r.config.WallPenalty
	}
	return y
}

// Mutate replaces each gene, with probability intensity, by a vector drawn from
// MutationRange. intensity is clamped to [0, 1].
func (r *Rocket) Mutate(intensity float32, rng *rand.Rand) {
	intensity = mathx.Clamp(intensity, 0, 1)
	for i := range r.genome {
		if rng.Float32() < intensity {
			r.genome[i] = r.config.MutationRange.Rand(rng)
		}
	}
}

func (r *Rocket) Crossover(other *Rocket, rng *rand.Rand) (*Rocket, error) {
	n := len(r.genome)
	if n != len(other.genome) {
		return nil, fmt.Errorf("%w: %d != %d", ErrGenomeLength, n, len(other.genome))
	}

	genome := make([]Vec2, n)
	for i := range genome {
		if randx.Bool(rng) {
			genome[i] = r.genome[i]
		} else {
			genome[i] = other.genome[i]
		}
	}
	return newRocket(r.config, r.goal, genome), nil
}

func (r *Rocket) FromPrototype() *Rocket {
	return newRocket(r.config, r.goal, slices.Clone(r.genome))
}
