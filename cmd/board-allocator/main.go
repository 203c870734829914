package main

import (
	"bufio"
	"flag"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	logger "github.com/hungalab/board-allocator/pkg/log"
	"github.com/hungalab/board-allocator/pkg/metrics"
	"github.com/hungalab/board-allocator/pkg/shell"
)

var log = logger.NewLogger("main")

// serveMetrics starts an HTTP server exposing pkg/metrics's registered
// collectors at /metrics on addr, returning once the listener is up; the
// server itself runs in the background.
func serveMetrics(addr string) error {
	gatherer, err := metrics.NewMetricGatherer()
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	go func() {
		if err := http.Serve(ln, mux); err != nil {
			log.Error("metrics server on %s stopped: %v", addr, err)
		}
	}()
	log.Info("serving metrics on %s/metrics", addr)
	return nil
}

func main() {
	flag.Parse()
	if opt.debug {
		logger.SetLevel(logger.LevelDebug)
	}
	logger.Flush()

	if opt.metricsAddr != "" {
		if err := serveMetrics(opt.metricsAddr); err != nil {
			log.Fatal("failed to start metrics server: %v", err)
		}
	}

	seed := opt.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	prompt := shell.NewPrompt("board-allocator> ", bufio.NewReader(os.Stdin), bufio.NewWriter(os.Stdout), seed)
	if info, err := os.Stdin.Stat(); err == nil && (info.Mode()&os.ModeCharDevice) == 0 {
		// input comes from a pipe: echo commands so piped-in sessions are
		// readable from captured output, matching cmd/memtierd/main.go.
		prompt.SetEcho(true)
	}
	prompt.Interact()
}
