// Package spea2 implements the strength-Pareto driver of spec §4.6.3,
// grounded on original_source/spea2.py's run() loop: each generation,
// sample OffspringSize parents by binary tournament over the (rank-sorted)
// population — two uniformly random indices, keep the smaller one, biasing
// toward the better-ranked half — breed and mutate them, shuffle the
// surviving population to avoid the same rank always winning ties, then
// select the next generation from parents+offsprings by strength-Pareto
// selection (tools.selSPEA2). Shares every mate/mutate/evaluate step with
// nsga2 and ncga via pkg/search/ga.
package spea2

import (
	"context"
	"math/rand"
	"time"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/search/ga"
)

// Config parameterizes a run. Zero values fall back to spea2.py's
// defaults: ArchiveSize 40, OffspringSize = ArchiveSize rounded down to
// even, MatePb 1, MutationPb 0.3.
type Config struct {
	Budget        time.Duration
	Workers       int
	Seed          int64
	ArchiveSize   int
	OffspringSize int
	MatePb        float64
	MutationPb    float64
}

// Result is the driver's report.
type Result struct {
	ParetoFront []ga.Individual
	Generations int
}

func withDefaults(cfg Config) Config {
	if cfg.ArchiveSize <= 0 {
		cfg.ArchiveSize = 40
	}
	if cfg.OffspringSize <= 0 {
		cfg.OffspringSize = cfg.ArchiveSize - (cfg.ArchiveSize % 2)
	}
	if cfg.MatePb == 0 {
		cfg.MatePb = 1
	}
	if cfg.MutationPb == 0 {
		cfg.MutationPb = 0.3
	}
	return cfg
}

// Run seeds a population of cfg.ArchiveSize individuals and evolves it for
// cfg.Budget.
func Run(ctx context.Context, u *allocator.AllocatorUnit, cfg Config) (Result, error) {
	cfg = withDefaults(cfg)
	rng := rand.New(rand.NewSource(cfg.Seed))

	rawPop, err := ga.SeedPopulation(ctx, cfg.Workers, rng, u, cfg.ArchiveSize)
	if err != nil {
		return Result{}, err
	}
	pop, err := ga.EvaluatePopulation(ctx, cfg.Workers, rawPop)
	if err != nil {
		return Result{}, err
	}

	idx := ga.SelectSPEA2(ga.Objectives(pop), len(pop))
	pop = ga.Select(pop, idx)

	front := ga.NewParetoFront()
	front.Update(pop)

	res := Result{}
	deadline := time.Now().Add(cfg.Budget)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			res.ParetoFront = front.Items()
			return res, ctx.Err()
		default:
		}
		res.Generations++

		length := len(pop)
		parentUnits := make([]*allocator.AllocatorUnit, cfg.OffspringSize)
		for i := range parentUnits {
			a, b := rng.Intn(length), rng.Intn(length)
			if b < a {
				a = b
			}
			parentUnits[i] = pop[a].Unit
		}

		offspringUnits, err := ga.Breed(ctx, cfg.Workers, rng, parentUnits, cfg.MatePb, cfg.MutationPb)
		if err != nil {
			res.ParetoFront = front.Items()
			return res, err
		}
		offspring, err := ga.EvaluatePopulation(ctx, cfg.Workers, offspringUnits)
		if err != nil {
			res.ParetoFront = front.Items()
			return res, err
		}

		rng.Shuffle(len(pop), func(i, j int) { pop[i], pop[j] = pop[j], pop[i] })
		combined := append(append([]ga.Individual{}, pop...), offspring...)
		idx = ga.SelectSPEA2(ga.Objectives(combined), cfg.ArchiveSize)
		pop = ga.Select(combined, idx)

		front.Update(pop)
	}

	res.ParetoFront = front.Items()
	return res, nil
}
