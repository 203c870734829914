// Package nsga2 implements the NSGA-II population driver of spec §4.6.2,
// grounded on original_source/nsga2.py's run() loop: seed a population,
// then repeatedly breed offsprings from randomly sampled parents and
// select the next generation from parents+offsprings by non-dominated
// sort and crowding distance (tools.selNSGA2), until the time budget runs
// out. Every individual that ever enters a population is offered to a
// Pareto-front archive.
package nsga2

import (
	"context"
	"math/rand"
	"time"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/search/ga"
)

// Config parameterizes a run. Zero values fall back to nsga2.py's
// defaults: PopSize 40, OffspringSize = PopSize, MatePb 1, MutationPb 0.5.
type Config struct {
	Budget        time.Duration
	Workers       int
	Seed          int64
	PopSize       int
	OffspringSize int
	MatePb        float64
	MutationPb    float64
}

// Result is the driver's report: the Pareto-front archive and how many
// generations were completed.
type Result struct {
	ParetoFront []ga.Individual
	Generations int
}

func withDefaults(cfg Config) Config {
	if cfg.PopSize <= 0 {
		cfg.PopSize = 40
	}
	if cfg.OffspringSize <= 0 {
		cfg.OffspringSize = cfg.PopSize
	}
	if cfg.OffspringSize%2 != 0 {
		cfg.OffspringSize--
	}
	if cfg.MatePb == 0 {
		cfg.MatePb = 1
	}
	if cfg.MutationPb == 0 {
		cfg.MutationPb = 0.5
	}
	return cfg
}

// Run seeds a population of cfg.PopSize individuals and evolves it for
// cfg.Budget, returning the Pareto-front archive accumulated along the way.
func Run(ctx context.Context, u *allocator.AllocatorUnit, cfg Config) (Result, error) {
	cfg = withDefaults(cfg)
	rng := rand.New(rand.NewSource(cfg.Seed))

	rawPop, err := ga.SeedPopulation(ctx, cfg.Workers, rng, u, cfg.PopSize)
	if err != nil {
		return Result{}, err
	}
	pop, err := ga.EvaluatePopulation(ctx, cfg.Workers, rawPop)
	if err != nil {
		return Result{}, err
	}

	front := ga.NewParetoFront()
	front.Update(pop)

	idx := ga.SelectNSGA2(ga.Objectives(pop), len(pop))
	pop = ga.Select(pop, idx)

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

		parents := make([]*allocator.AllocatorUnit, cfg.OffspringSize)
		for i := range parents {
			parents[i] = pop[rng.Intn(len(pop))].Unit
		}

		offspringUnits, err := ga.Breed(ctx, cfg.Workers, rng, parents, cfg.MatePb, cfg.MutationPb)
		if err != nil {
			res.ParetoFront = front.Items()
			return res, err
		}
		offspring, err := ga.EvaluatePopulation(ctx, cfg.Workers, offspringUnits)
		if err != nil {
			res.ParetoFront = front.Items()
			return res, err
		}
		front.Update(offspring)

		combined := append(append([]ga.Individual{}, pop...), offspring...)
		idx = ga.SelectNSGA2(ga.Objectives(combined), cfg.PopSize)
		pop = ga.Select(combined, idx)
	}

	res.ParetoFront = front.Items()
	return res, nil
}
