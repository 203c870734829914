package ga

import (
	"context"
	"math/rand"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/search/common"
)

type matePair struct {
	a, b *allocator.AllocatorUnit
	seed int64
}

// Breed runs parents (already paired up by the caller's own selection
// policy — random sampling for nsga2, sort-then-slice for ncga, tournament
// sampling for spea2) through crossover and mutation in parallel, and
// returns one offspring per parent. Parents are mated in consecutive
// pairs; with an odd count the last parent is mated with the first.
func Breed(ctx context.Context, workers int, rng *rand.Rand, parents []*allocator.AllocatorUnit, matePb, mutationPb float64) ([]*allocator.AllocatorUnit, error) {
	n := len(parents)
	if n == 0 {
		return nil, nil
	}
	pairs := make([]matePair, (n+1)/2)
	for i := range pairs {
		a := parents[2*i]
		b := parents[(2*i+1)%n]
		pairs[i] = matePair{a: a, b: b, seed: rng.Int63()}
	}

	mated, err := common.Map(ctx, workers, pairs, func(_ context.Context, mp matePair) ([2]*allocator.AllocatorUnit, error) {
		r := rand.New(rand.NewSource(mp.seed))
		if r.Float64() >= matePb {
			return [2]*allocator.AllocatorUnit{mp.a.Clone(), mp.b.Clone()}, nil
		}
		c1, c2, err := Mate(r, mp.a, mp.b)
		if err != nil {
			return [2]*allocator.AllocatorUnit{}, err
		}
		return [2]*allocator.AllocatorUnit{c1, c2}, nil
	})
	if err != nil {
		return nil, err
	}

	offspring := make([]*allocator.AllocatorUnit, 0, n)
	for _, mp := range mated {
		offspring = append(offspring, mp[0], mp[1])
	}
	if len(offspring) > n {
		offspring = offspring[:n]
	}

	mutSeeds := make([]int64, len(offspring))
	for i := range mutSeeds {
		mutSeeds[i] = rng.Int63()
	}
	type mutJob struct {
		u    *allocator.AllocatorUnit
		seed int64
	}
	jobs := make([]mutJob, len(offspring))
	for i, u := range offspring {
		jobs[i] = mutJob{u: u, seed: mutSeeds[i]}
	}
	return common.Map(ctx, workers, jobs, func(_ context.Context, j mutJob) (*allocator.AllocatorUnit, error) {
		return Mutate(rand.New(rand.NewSource(j.seed)), j.u, mutationPb)
	})
}
