package main

import "flag"

// options captures the command's top-level flags. pkg/config's
// DriverOptions covers the shell's per-command tuning; there is no
// cluster-sourced reconfiguration surface here for a generic module
// registry to serve, so these are plain flag.FlagSet variables rather
// than a config.Module registration.
type options struct {
	metricsAddr string
	seed        int64
	debug       bool
}

var opt = options{}

func init() {
	flag.StringVar(&opt.metricsAddr, "metrics-addr", "",
		"address to serve Prometheus metrics on, e.g. :9090 (empty disables the metrics server)")
	flag.Int64Var(&opt.seed, "seed", 0,
		"seed for the session's random number generator (0 picks one from the current time)")
	flag.BoolVar(&opt.debug, "debug", false, "enable debug logging")
}
