package shell

import (
	"flag"

	"github.com/hungalab/board-allocator/pkg/config"
)

// budgetFlags registers the `-s`/`-m`/`-ho`/`-p` flags spec §6's CLI table
// assigns to every driver command: a wall-clock budget expressed as a sum
// of seconds/minutes/hours, plus a worker-pool size.
type budgetFlags struct {
	seconds *int
	minutes *int
	hours   *int
	workers *int
}

func registerBudgetFlags(f *flag.FlagSet) *budgetFlags {
	return &budgetFlags{
		seconds: f.Int("s", 0, "budget, in seconds"),
		minutes: f.Int("m", 0, "budget, in minutes"),
		hours:   f.Int("ho", 0, "budget, in hours"),
		workers: f.Int("p", 1, "worker count"),
	}
}

// driverOptions builds the config.DriverOptions a driver command runs
// with, seeded from seed. Validation (budget <= 0, per spec §7's "driver
// time budget <= 0: reject at the CLI") is the caller's responsibility via
// DriverOptions.Validate.
func (b *budgetFlags) driverOptions(seed int64) config.DriverOptions {
	return config.DriverOptions{
		Budget:  config.Seconds(*b.seconds, *b.minutes, *b.hours),
		Workers: *b.workers,
		Seed:    seed,
	}
}
