package shell

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/config"
	"github.com/hungalab/board-allocator/pkg/evaluator"
	"github.com/hungalab/board-allocator/pkg/ingest"
	"github.com/hungalab/board-allocator/pkg/metrics"
	"github.com/hungalab/board-allocator/pkg/model"
	"github.com/hungalab/board-allocator/pkg/persistence"
	"github.com/hungalab/board-allocator/pkg/search/alns"
	"github.com/hungalab/board-allocator/pkg/search/ga"
	"github.com/hungalab/board-allocator/pkg/search/ncga"
	"github.com/hungalab/board-allocator/pkg/search/nsga2"
	"github.com/hungalab/board-allocator/pkg/search/spea2"
	"github.com/hungalab/board-allocator/pkg/topology"
)

func (p *Prompt) cmdInit(args []string) CommandStatus {
	force := p.f.Bool("f", false, "recreate even if an allocator already exists")
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	remainder := p.f.Args()
	if len(remainder) != 1 {
		p.output("usage: init topo_file [-f]\n")
		return csError
	}
	if p.unit != nil && !*force {
		p.output("allocator already exists, use -f to recreate\n")
		return csOk
	}

	file, err := os.Open(remainder[0])
	if err != nil {
		p.output("init: %v\n", err)
		return csError
	}
	defer file.Close()

	links, err := ingest.ParseTopologyFile(file)
	if err != nil {
		p.output("init: %v\n", err)
		return csError
	}
	topo, err := topology.New(links, false)
	if err != nil {
		p.output("init: %v\n", err)
		return csError
	}

	p.topoPath = remainder[0]
	p.unit = allocator.New(topo)
	log.Debug("initialized allocator from %s: %d cores", remainder[0], topo.NumCores())
	p.output("initialized: %d cores\n", topo.NumCores())
	return csOk
}

func (p *Prompt) cmdAddApp(args []string) CommandStatus {
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	files := p.f.Args()
	if len(files) == 0 {
		p.output("usage: add_app comm_file [comm_file...]\n")
		return csError
	}
	for _, path := range files {
		file, err := os.Open(path)
		if err != nil {
			p.output("add_app: %v\n", err)
			continue
		}
		spec, err := ingest.ParseCommunicationFile(file)
		file.Close()
		if err != nil {
			p.output("add_app: %v\n", err)
			continue
		}
		ok, err := p.unit.AddApp(spec)
		if err != nil {
			p.output("add_app: %v\n", err)
			continue
		}
		if !ok {
			p.output("add_app: %s: warning: exceeds core capacity, not added\n", path)
			continue
		}
		p.output("added app from %s: %d vNodes, %d flows\n", path, spec.NumVNodes, len(spec.Flows))
	}
	return csOk
}

func (p *Prompt) cmdRmApp(args []string) CommandStatus {
	all := p.f.Bool("all", false, "remove every application")
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	ids := p.f.Args()
	if *all {
		ids = nil
		for _, id := range p.unit.AppIDs() {
			ids = append(ids, strconv.Itoa(int(id)))
		}
	}
	if len(ids) == 0 {
		p.output("usage: rm_app app_id [app_id...] | --all\n")
		return csError
	}
	for _, s := range ids {
		n, err := strconv.Atoi(s)
		if err != nil {
			p.output("rm_app: invalid app id %q\n", s)
			continue
		}
		if err := p.unit.RemoveApp(model.AppID(n)); err != nil {
			p.output("rm_app: %v\n", err)
			continue
		}
		p.output("removed app %d\n", n)
	}
	return csOk
}

func (p *Prompt) nextSeed() int64 { return p.rng.Int63() }

func (p *Prompt) cmdAlns(args []string) CommandStatus {
	b := registerBudgetFlags(p.f)
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	opts := b.driverOptions(p.nextSeed())
	if err := opts.Validate(); err != nil {
		p.output("alns: %v\n", err)
		return csError
	}
	result, err := alns.Run(context.Background(), p.unit, alns.Config{
		Budget:  opts.Budget,
		Workers: opts.Workers,
		Seed:    opts.Seed,
	})
	if err != nil {
		p.output("alns: %v\n", err)
		return csError
	}
	p.unit = result.Best
	metrics.Default.IncIterations("alns", result.Loops)
	metrics.Default.IncAcceptances("alns", result.SlotImprovements+result.EdgeImprovements)
	metrics.Default.Observe(p.unit)
	p.output("alns: %d loops, %d slot improvements, %d edge improvements, objective %+v\n",
		result.Loops, result.SlotImprovements, result.EdgeImprovements, result.BestObjective)
	return csOk
}

func (p *Prompt) cmdTwoopt(args []string) CommandStatus {
	b := registerBudgetFlags(p.f)
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	opts := b.driverOptions(p.nextSeed())
	if err := opts.Validate(); err != nil {
		p.output("twoopt: %v\n", err)
		return csError
	}
	result, err := alns.RunNodeSwapOnly(context.Background(), p.unit, alns.Config{
		Budget:  opts.Budget,
		Workers: opts.Workers,
		Seed:    opts.Seed,
	})
	if err != nil {
		p.output("twoopt: %v\n", err)
		return csError
	}
	p.unit = result.Best
	metrics.Default.IncIterations("twoopt", result.Loops)
	metrics.Default.Observe(p.unit)
	p.output("twoopt: %d loops, objective %+v\n", result.Loops, result.BestObjective)
	return csOk
}

// bestOf picks the lexicographically-best member of a Pareto front
// (evaluator.Objective.Less order), so a multi-objective driver still
// leaves the shell's single current allocator (spec §9's "global search
// state") pointed at one concrete result.
func bestOf(front []ga.Individual) *allocator.AllocatorUnit {
	if len(front) == 0 {
		return nil
	}
	best := front[0]
	for _, ind := range front[1:] {
		if ind.Objective.Less(best.Objective) {
			best = ind
		}
	}
	return best.Unit
}

func (p *Prompt) cmdNsga2(args []string) CommandStatus {
	b := registerBudgetFlags(p.f)
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	opts := b.driverOptions(p.nextSeed())
	if err := opts.Validate(); err != nil {
		p.output("nsga2: %v\n", err)
		return csError
	}
	result, err := nsga2.Run(context.Background(), p.unit, nsga2.Config{
		Budget:  opts.Budget,
		Workers: opts.Workers,
		Seed:    opts.Seed,
	})
	if err != nil {
		p.output("nsga2: %v\n", err)
		return csError
	}
	if best := bestOf(result.ParetoFront); best != nil {
		p.unit = best
		metrics.Default.Observe(p.unit)
	}
	metrics.Default.IncIterations("nsga2", result.Generations)
	p.output("nsga2: %d generations, pareto front of %d\n", result.Generations, len(result.ParetoFront))
	return csOk
}

func (p *Prompt) cmdNcga(args []string) CommandStatus {
	b := registerBudgetFlags(p.f)
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	opts := b.driverOptions(p.nextSeed())
	if err := opts.Validate(); err != nil {
		p.output("ncga: %v\n", err)
		return csError
	}
	result, err := ncga.Run(context.Background(), p.unit, ncga.Config{
		Budget:  opts.Budget,
		Workers: opts.Workers,
		Seed:    opts.Seed,
	})
	if err != nil {
		p.output("ncga: %v\n", err)
		return csError
	}
	if best := bestOf(result.ParetoFront); best != nil {
		p.unit = best
		metrics.Default.Observe(p.unit)
	}
	metrics.Default.IncIterations("ncga", result.Generations)
	p.output("ncga: %d generations, pareto front of %d\n", result.Generations, len(result.ParetoFront))
	return csOk
}

func (p *Prompt) cmdSpea2(args []string) CommandStatus {
	b := registerBudgetFlags(p.f)
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	opts := b.driverOptions(p.nextSeed())
	if err := opts.Validate(); err != nil {
		p.output("spea2: %v\n", err)
		return csError
	}
	result, err := spea2.Run(context.Background(), p.unit, spea2.Config{
		Budget:  opts.Budget,
		Workers: opts.Workers,
		Seed:    opts.Seed,
	})
	if err != nil {
		p.output("spea2: %v\n", err)
		return csError
	}
	if best := bestOf(result.ParetoFront); best != nil {
		p.unit = best
		metrics.Default.Observe(p.unit)
	}
	metrics.Default.IncIterations("spea2", result.Generations)
	p.output("spea2: %d generations, pareto front of %d\n", result.Generations, len(result.ParetoFront))
	return csOk
}

func (p *Prompt) cmdStatus(args []string) CommandStatus {
	full := p.f.Bool("f", false, "print a full dump instead of a summary")
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if p.unit == nil {
		p.output("no allocator\n")
		return csOk
	}
	obj := evaluator.Evaluate(p.unit)
	metrics.Default.Observe(p.unit)
	err := p.unit.ConsistencyCheck()
	consistent := "ok"
	if err != nil {
		consistent = err.Error()
	}
	p.output("topology: %d cores (%s)\n", p.unit.Topology().NumCores(), p.topoPath)
	p.output("apps: %d, vNodes: %d (%d allocating), pairs: %d (%d allocating), flows: %d\n",
		len(p.unit.AppIDs()), p.unit.VNodeCount(), p.unit.AllocatingVNodeCount(),
		len(p.unit.PairIDs()), len(p.unit.AllocatingPairList()), len(p.unit.FlowIDs()))
	p.output("objective: max_slot_num=%d total_edges=%d routed_switches=%d avg_slot_num=%.3f\n",
		obj.MaxSlotNum, obj.TotalEdges, obj.RoutedSwitches, p.unit.AverageSlotNum())
	if hash, err := persistence.Hash(p.unit); err == nil {
		p.output("hash: %x\n", hash)
	}
	p.output("consistency: %s\n", consistent)
	if !*full {
		return csOk
	}
	p.showApps(whereFilter{})
	p.showNodes(whereFilter{})
	p.showFlows(whereFilter{})
	return csOk
}

// whereFilter parses a `field=value` equality filter from --where; an
// empty expr matches everything. This is a deliberately small subset of
// what "expr" could mean — spec §6 names the flag without defining a
// grammar, and no filter expression language appears anywhere in the
// example pack to ground a richer one on.
type whereFilter struct {
	field, value string
}

func parseWhere(expr string) whereFilter {
	field, value, ok := strings.Cut(expr, "=")
	if !ok {
		return whereFilter{}
	}
	return whereFilter{field: strings.TrimSpace(field), value: strings.TrimSpace(value)}
}

func (w whereFilter) matches(field string, value string) bool {
	if w.field == "" {
		return true
	}
	return w.field == field && w.value == value
}

func (p *Prompt) cmdShowApps(args []string) CommandStatus {
	where := p.f.String("where", "", "filter expression, field=value")
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	return p.showApps(parseWhere(*where))
}

func (p *Prompt) showApps(w whereFilter) CommandStatus {
	if !p.requireUnit() {
		return csError
	}
	p.output("%-6s %-8s %-8s %-8s\n", "app", "vnodes", "flows", "pairs")
	for _, id := range p.unit.AppIDs() {
		app, err := p.unit.App(id)
		if err != nil {
			continue
		}
		if !w.matches("app", strconv.Itoa(int(id))) {
			continue
		}
		p.output("%-6d %-8d %-8d %-8d\n", id, len(app.VNodes), len(app.Flows), len(app.Pairs))
	}
	return csOk
}

func (p *Prompt) cmdShowNodes(args []string) CommandStatus {
	where := p.f.String("where", "", "filter expression, field=value")
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	return p.showNodes(parseWhere(*where))
}

func (p *Prompt) showNodes(w whereFilter) CommandStatus {
	if !p.requireUnit() {
		return csError
	}
	p.output("%-6s %-6s %-8s %-10s\n", "vnode", "app", "rnode", "allocating")
	for _, id := range p.unit.VNodeIDs() {
		v, err := p.unit.VNode(id)
		if err != nil {
			continue
		}
		if !w.matches("app", strconv.Itoa(int(v.App))) {
			continue
		}
		rnode := "-"
		if r, ok := v.RNode.Get(); ok {
			rnode = strconv.Itoa(int(r))
		}
		p.output("%-6d %-6d %-8s %-10t\n", id, v.App, rnode, v.Allocating)
	}
	return csOk
}

func (p *Prompt) cmdShowFlows(args []string) CommandStatus {
	where := p.f.String("where", "", "filter expression, field=value")
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	return p.showFlows(parseWhere(*where))
}

func (p *Prompt) showFlows(w whereFilter) CommandStatus {
	if !p.requireUnit() {
		return csError
	}
	p.output("%-6s %-6s %-8s %-10s\n", "flow", "app", "slot", "allocating")
	for _, id := range p.unit.FlowIDs() {
		f, err := p.unit.Flow(id)
		if err != nil {
			continue
		}
		if !w.matches("app", strconv.Itoa(int(f.App))) {
			continue
		}
		slot := "-"
		if s, ok := f.SlotID.Get(); ok {
			slot = strconv.Itoa(s)
		}
		p.output("%-6d %-6d %-8s %-10t\n", id, f.App, slot, f.Allocating)
	}
	return csOk
}

func (p *Prompt) cmdSave(args []string) CommandStatus {
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	if !p.requireUnit() {
		return csError
	}
	remainder := p.f.Args()
	if len(remainder) != 1 {
		p.output("usage: save filename\n")
		return csError
	}
	if err := persistence.Save(remainder[0], p.unit); err != nil {
		p.output("save: %v\n", err)
		return csError
	}
	p.output("saved %s\n", remainder[0])
	return csOk
}

func (p *Prompt) cmdLoad(args []string) CommandStatus {
	if err := p.f.Parse(args); err != nil {
		return csOk
	}
	remainder := p.f.Args()
	if len(remainder) != 1 {
		p.output("usage: load filename\n")
		return csError
	}
	unit, err := persistence.Load(remainder[0])
	if err != nil {
		p.output("load: %v\n", err)
		return csError
	}
	p.unit = unit
	p.output("loaded %s\n", remainder[0])
	return csOk
}
