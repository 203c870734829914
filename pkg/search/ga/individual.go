// Package ga holds the machinery shared by every population-based search
// driver (nsga2, ncga, spea2) per spec §4.6.3's "share 100% of the
// mate/mutate/evaluate machinery": an Individual wrapper, population
// seeding, crossover and mutation operators, a Pareto-front archive, and
// the non-dominated-sort/crowding-distance and strength-Pareto selection
// routines each driver's own selection scheme is built from. Only the
// parent-selection policy and survivor-selection call differ between
// drivers; everything here is shared verbatim.
package ga

import (
	"math/rand"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/evaluator"
	"github.com/hungalab/board-allocator/pkg/oplib"
)

// Individual pairs a candidate solution with its evaluated objective.
type Individual struct {
	Unit      *allocator.AllocatorUnit
	Objective evaluator.Objective
}

// Evaluate wraps evaluator.Evaluate as an Individual.
func Evaluate(u *allocator.AllocatorUnit) Individual {
	return Individual{Unit: u, Objective: evaluator.Evaluate(u)}
}

// SeedOne builds one individual via the constructive assist heuristic
// (initialize_by_assist), matching every DEAP driver's population seeding.
func SeedOne(rng *rand.Rand, u *allocator.AllocatorUnit) (*allocator.AllocatorUnit, error) {
	return oplib.InitializeByAssist(rng, u)
}

// Objectives extracts the objective vector of every individual, in order.
func Objectives(pop []Individual) []evaluator.Objective {
	out := make([]evaluator.Objective, len(pop))
	for i, ind := range pop {
		out[i] = ind.Objective
	}
	return out
}

// Select picks the individuals named by idx, in that order.
func Select(pop []Individual, idx []int) []Individual {
	out := make([]Individual, len(idx))
	for i, j := range idx {
		out[i] = pop[j]
	}
	return out
}
