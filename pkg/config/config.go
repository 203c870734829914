// Copyright 2019 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config collects the tunable parameters shared by the search
// drivers (ALNS, NSGA-II and its siblings) and validates them the way the
// CLI is expected to: reject before a driver ever starts, never silently
// clamp.
package config

import (
	"fmt"
	"time"
)

// DriverOptions are the parameters a search driver needs to run, parsed
// from the `-s`/`-m`/`-ho`/`-p` flags of the management shell.
type DriverOptions struct {
	// Budget is the wall-clock time the driver is allowed to run.
	Budget time.Duration
	// Workers is the size of the worker pool used for fitness evaluation
	// and batch operator invocation. 1 means no extra parallelism; 0 gives
	// the ALNS drivers a batch of one and leaves the population drivers'
	// worker pool unbounded.
	Workers int
	// Seed seeds the driver's process-local random number generator.
	Seed int64
}

// Default driver tuning constants, named after the quantities they bound in
// the evolutionary driver (§4.6.2 of the allocator design).
const (
	DefaultPopulationSize = 40
	DefaultArchiveSize    = 40
	DefaultMutationPb     = 0.5
	// MaxRandomInjection bounds how many random individuals the
	// evolutionary driver injects per generation.
	MaxRandomInjection = 20
)

// Validate rejects a budget of zero or less, per the "driver time budget <= 0"
// error case: the CLI must refuse before any driver starts, not clamp it up.
func (o DriverOptions) Validate() error {
	if o.Budget <= 0 {
		return fmt.Errorf("config: time budget must be greater than 0 (got %s)", o.Budget)
	}
	if o.Workers < 0 {
		return fmt.Errorf("config: worker count must not be negative (got %d)", o.Workers)
	}
	return nil
}

// Seconds is a convenience parser for the sec/min/hour triplet the shell
// accepts for `-s`, `-m`, `-ho`.
func Seconds(sec, min, hour int) time.Duration {
	return time.Duration(sec)*time.Second +
		time.Duration(min)*time.Minute +
		time.Duration(hour)*time.Hour
}
