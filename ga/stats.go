package ga

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the fitness distribution of one generation.
type Stats struct {
	Generation int
	Size       int
	Best       float64
	Worst      float64
	Mean       float64
	StdDev     float64
}

func NewStats(generation int, fitnesses []float32) Stats {
	s := Stats{Generation: generation, Size: len(fitnesses)}
	if len(fitnesses) == 0 {
		return s
	}

	xs := make([]float64, len(fitnesses))
	for i, f := range sanitizeFitness(fitnesses) {
		xs[i] = float64(f)
	}

	s.Best = floats.Max(xs)
	s.Worst = floats.Min(xs)
	if len(xs) == 1 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	return s
}
