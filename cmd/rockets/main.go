// Command rockets evolves rockets toward a goal without a display and logs the
// fitness of every generation.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/sw965/omw/mathx/randx"
	"github.com/sw965/rockets/ga"
	"github.com/sw965/rockets/history"
	"github.com/sw965/rockets/rocket"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("設定の読み込み失敗: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log.Default()); err != nil {
		log.Fatalf("実行失敗: %v", err)
	}
}

func newRng(seed uint64) *rand.Rand {
	if seed == 0 {
		return randx.NewPCGFromGlobalSeed()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func run(ctx context.Context, cfg Config, logger *log.Logger) error {
	rng := newRng(cfg.Seed)

	rc := cfg.RocketConfig()
	goal := rocket.NewGoal(cfg.Goal())
	rockets, err := rocket.Spawn(cfg.Population, &rc, goal, rng)
	if err != nil {
		return err
	}

	gc, err := cfg.GAConfig()
	if err != nil {
		return err
	}
	pop, err := ga.New(rockets, gc, rng)
	if err != nil {
		return err
	}

	var store *history.Store
	runID := uuid.Nil
	if cfg.HistoryDB != "" {
		store, err = history.Open(ctx, cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err = store.BeginRun(ctx, cfg.Params())
		if err != nil {
			return err
		}
		logger.Printf("run %s を %s に記録します", runID, cfg.HistoryDB)
	}

	logger.Printf("population=%d genome=%d selector=%s carry_over=%s", pop.Len(), rc.GenomeLen, cfg.Selector, gc.CarryOver)
	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := runGeneration(pop); err != nil {
			return err
		}

		g := summarize(pop)
		logger.Printf("generation %d: size=%d best=%.5f mean=%.5f stddev=%.5f hit_target=%d hit_wall=%d",
			g.Generation, g.Size, g.Best, g.Mean, g.StdDev, g.HitTarget, g.HitWall)

		if store != nil {
			if err := store.RecordGeneration(ctx, runID, g); err != nil {
				return err
			}
		}

		if err := pop.Restart(); err != nil {
			return err
		}
	}
	return nil
}

// runGeneration steps pop until every rocket has flown its whole genome.
func runGeneration(pop *ga.Population[*rocket.Rocket]) error {
	for {
		done, err := pop.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func summarize(pop *ga.Population[*rocket.Rocket]) history.Generation {
	g := history.Generation{Stats: pop.Stats()}
	for _, r := range pop.All() {
		switch r.State() {
		case rocket.HitTarget:
			g.HitTarget++
		case rocket.HitWall:
			g.HitWall++
		}
	}
	return g
}
