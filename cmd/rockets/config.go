package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sw965/rockets/ga"
	"github.com/sw965/rockets/rocket"
)

type Config struct {
	Population        int     `json:"population"`
	Generations       int     `json:"generations"`
	Seed              uint64  `json:"seed"`
	MutationIntensity float64 `json:"mutation_intensity"`
	Selector          string  `json:"selector"`
	PoolResolution    int     `json:"pool_resolution"`
	RankingPressure   float64 `json:"ranking_pressure"`
	CarryOver         string  `json:"carry_over"`
	Parallelism       int     `json:"parallelism"`

	GenomeLen int `json:"genome_len"`
	Width     int `json:"width"`
	Height    int `json:"height"`
	StartX    int `json:"start_x"`
	StartY    int `json:"start_y"`
	GoalX     int `json:"goal_x"`
	GoalY     int `json:"goal_y"`

	HistoryDB string `json:"history_db"`
}

func defaultConfig() Config {
	rc := rocket.DefaultConfig()
	return Config{
		Population:        100,
		Generations:       50,
		MutationIntensity: ga.DefaultMutationIntensity,
		Selector:          "pool",
		PoolResolution:    ga.DefaultPoolResolution,
		RankingPressure:   1.5,
		CarryOver:         ga.CarryOverLast.String(),
		Parallelism:       1,
		GenomeLen:         rc.GenomeLen,
		Width:             rc.Field.Width,
		Height:            rc.Field.Height,
		StartX:            rc.Start.X,
		StartY:            rc.Start.Y,
		GoalX:             rc.Field.Width / 2,
		GoalY:             20,
	}
}

func loadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) *string {
	configPath := fs.String("config", "", "JSON config file; flags given explicitly override it")
	fs.IntVar(&cfg.Population, "population", cfg.Population, "initial number of rockets")
	fs.IntVar(&cfg.Generations, "generations", cfg.Generations, "number of generations to run")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 seeds from the global source)")
	fs.Float64Var(&cfg.MutationIntensity, "mutation", cfg.MutationIntensity, "per-gene mutation probability")
	fs.StringVar(&cfg.Selector, "selector", cfg.Selector, "parent selector: pool or ranking")
	fs.IntVar(&cfg.PoolResolution, "pool-resolution", cfg.PoolResolution, "entries of the fittest member in the weighted pool")
	fs.Float64Var(&cfg.RankingPressure, "ranking-pressure", cfg.RankingPressure, "linear ranking selection pressure in [1, 2]")
	fs.StringVar(&cfg.CarryOver, "carry-over", cfg.CarryOver, "unmutated child policy: last, elite or none")
	fs.IntVar(&cfg.Parallelism, "parallelism", cfg.Parallelism, "workers updating rockets each step")
	fs.IntVar(&cfg.GenomeLen, "genome", cfg.GenomeLen, "movement vectors per rocket")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "field width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "field height")
	fs.IntVar(&cfg.StartX, "start-x", cfg.StartX, "start x")
	fs.IntVar(&cfg.StartY, "start-y", cfg.StartY, "start y")
	fs.IntVar(&cfg.GoalX, "goal-x", cfg.GoalX, "goal x")
	fs.IntVar(&cfg.GoalY, "goal-y", cfg.GoalY, "goal y")
	fs.StringVar(&cfg.HistoryDB, "history", cfg.HistoryDB, "sqlite file recording per-generation statistics")
	return configPath
}

// parseConfig resolves defaults, then the -config file, then explicit flags.
func parseConfig(args []string, output io.Writer) (Config, error) {
	// 1回目は -config の取得のみ
	probe := defaultConfig()
	fs := flag.NewFlagSet("rockets", flag.ContinueOnError)
	fs.SetOutput(output)
	configPath := bindFlags(fs, &probe)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfigFile(*configPath, cfg)
		if err != nil {
			return Config{}, err
		}
	}

	fs = flag.NewFlagSet("rockets", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bindFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Population < ga.MinPopulation {
		return fmt.Errorf("%w: population=%d", ga.ErrPopulationTooSmall, c.Population)
	}
	if c.Generations < 0 {
		return fmt.Errorf("%w: generations=%d", ga.ErrInvalidConfig, c.Generations)
	}
	gc, err := c.GAConfig()
	if err != nil {
		return err
	}
	if err := gc.Validate(); err != nil {
		return err
	}
	return c.RocketConfig().Validate()
}

func (c Config) GAConfig() (ga.Config, error) {
	gc := ga.DefaultConfig()
	gc.MutationIntensity = float32(c.MutationIntensity)
	gc.Parallelism = c.Parallelism

	switch c.Selector {
	case "", "pool":
		gc.Selector = ga.WeightedPoolSelector(c.PoolResolution)
	case "ranking":
		if c.RankingPressure < 1 || c.RankingPressure > 2 {
			return ga.Config{}, fmt.Errorf("%w: ranking_pressure=%v, want [1, 2]", ga.ErrInvalidConfig, c.RankingPressure)
		}
		gc.Selector = ga.LinearRankingSelector(c.RankingPressure)
	default:
		return ga.Config{}, fmt.Errorf("%w: selector %q", ga.ErrInvalidConfig, c.Selector)
	}

	policy, err := ga.ParseCarryOverPolicy(c.CarryOver)
	if err != nil {
		return ga.Config{}, err
	}
	gc.CarryOver = policy
	return gc, nil
}

func (c Config) RocketConfig() rocket.Config {
	rc := rocket.DefaultConfig()
	rc.Field = rocket.Field{Width: c.Width, Height: c.Height}
	rc.Start = rocket.Vec2{X: c.StartX, Y: c.StartY}
	rc.GenomeLen = c.GenomeLen
	return rc
}

func (c Config) Goal() rocket.Vec2 {
	return rocket.Vec2{X: c.GoalX, Y: c.GoalY}
}

// Params は履歴に保存する実行パラメーター。
func (c Config) Params() map[string]any {
	return map[string]any{
		"population":         c.Population,
		"generations":        c.Generations,
		"seed":               c.Seed,
		"mutation_intensity": c.MutationIntensity,
		"selector":           c.Selector,
		"carry_over":         c.CarryOver,
		"genome_len":         c.GenomeLen,
		"field":              []int{c.Width, c.Height},
		"start":              []int{c.StartX, c.StartY},
		"goal":               []int{c.GoalX, c.GoalY},
	}
}
