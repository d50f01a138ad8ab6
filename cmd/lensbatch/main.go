// Command lensbatch is the entrypoint for the LensBatch image description
// CLI. It takes no flags: configuration is read from the environment, the
// images directory is processed in concurrency windows, and one result
// artifact is written at the end of the run.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/lensbatch/internal/artifact"
	"github.com/backmassage/lensbatch/internal/config"
	"github.com/backmassage/lensbatch/internal/display"
	"github.com/backmassage/lensbatch/internal/logging"
	"github.com/backmassage/lensbatch/internal/pipeline"
	"github.com/backmassage/lensbatch/internal/vision"
)

// version is set at build time via -ldflags (e.g. Makefile).
var version = "1.0.0-dev"

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Load and validate config; a missing API key or malformed value is
	// fatal before any image is touched.
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "lensbatch: %v\n", err)
		return 1
	}
	cfg.ImagesDir = config.NormalizeDirArg(cfg.ImagesDir)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "lensbatch: %v\n", err)
		return 1
	}

	log, closeLog, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lensbatch: %v\n", err)
		return 1
	}
	defer closeLog()

	display.PrintBanner(logging.ColorEnabled(cfg.ColorMode))
	log.Info().Msgf("=== LensBatch v%s ===", version)
	log.Info().Msgf("In:  %s", cfg.ImagesDir)
	log.Info().Msgf("Out: %s", cfg.OutputFile)

	// 2. SIGINT/SIGTERM cancel the run between suspension points; whatever
	// has settled is still persisted below.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := vision.NewClient(cfg.APIKey, cfg.BaseURL, log)

	report, err := pipeline.Run(ctx, cfg, log, client)
	if err != nil {
		log.Error().Msgf("Fatal: %v", err)
		return 1
	}

	// 3. Persist. A failed write is the run's terminal error even though the
	// analysis work is already done.
	a := artifact.Build(cfg.Model, cfg.Prompt, report.Results, report.Failures)
	if err := artifact.Write(cfg.OutputFile, a); err != nil {
		log.Error().Msgf("Fatal: %v", err)
		return 1
	}
	log.Info().Msgf("Results saved to %s", cfg.OutputFile)

	if report.Interrupted {
		return 1
	}
	return 0
}
