// Command stackgraphctl is a thin CLI over the stack-graphs path engine
// (SPEC_FULL.md §14): it loads a graph description from JSON, computes and
// persists partial paths, and resolves a source position to its
// definitions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/github/stack-graphs/config"
	"github.com/github/stack-graphs/logging"
	"github.com/github/stack-graphs/telemetry"
)

var (
	cfg             config.EngineConfig
	logger          *logging.Logger
	cfgPath         string
	tracingShutdown func(context.Context) error
)

func main() {
	err := rootCmd.Execute()
	if tracingShutdown != nil {
		_ = tracingShutdown(context.Background())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger() {
	level := logging.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	logger = logging.New(logging.Config{Level: level, Service: "stackgraphctl"})
}

// initTelemetry installs a real SDK TracerProvider when the config asks for
// it, so that telemetry.StartRun's spans are actually exported rather than
// silently discarded by the default no-op provider. Spans go to stderr to
// avoid interleaving with a command's own stdout payload.
func initTelemetry() error {
	if !cfg.Telemetry.Enabled {
		return nil
	}
	shutdown, err := telemetry.InitProvider("stackgraphctl", os.Stderr)
	if err != nil {
		return err
	}
	tracingShutdown = shutdown
	return nil
}
