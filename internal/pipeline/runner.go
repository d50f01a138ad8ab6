package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/lensbatch/internal/artifact"
	"github.com/backmassage/lensbatch/internal/config"
	"github.com/backmassage/lensbatch/internal/display"
	"github.com/backmassage/lensbatch/internal/tokens"
	"github.com/backmassage/lensbatch/internal/vision"
)

// Run is the top-level batch entry point. It discovers images, dispatches
// them in windows of cfg.Concurrency, folds settled outcomes into the
// report, and logs the summary. The returned error is non-nil only when the
// images directory cannot be listed; per-item failures are contained in the
// report.
func Run(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	analyzer vision.Analyzer,
) (*RunReport, error) {
	items, err := Discover(cfg.ImagesDir)
	if err != nil {
		return nil, err
	}

	report := newRunReport(len(items))
	if len(items) == 0 {
		log.Warn().Msgf("No images found in %s", cfg.ImagesDir)
		return report, nil
	}

	start := time.Now()
	logBatchHeader(cfg, log, report)

	for lo := 0; lo < len(items); lo += cfg.Concurrency {
		if ctx.Err() != nil {
			log.Warn().Msg("Interrupted")
			report.Interrupted = true
			break
		}

		hi := min(lo+cfg.Concurrency, len(items))
		window := items[lo:hi]
		log.Debug().Msgf("Dispatching window %d-%d of %d", lo+1, hi, len(items))

		// All items of the window in flight at once; the buffered channel
		// lets every worker finish even if draining lags.
		outcomes := make(chan outcome, len(window))
		for _, it := range window {
			go func(it Item) {
				outcomes <- processItem(ctx, cfg, log, analyzer, it)
			}(it)
		}

		// Joint settle: drain exactly one outcome per dispatched item, in
		// whatever order they resolve, before the window closes.
		for range window {
			o := <-outcomes
			report.record(o)
			logProgress(log, report, o)
		}

		if cfg.FlushEveryBatch {
			a := artifact.Build(cfg.Model, cfg.Prompt, report.Results, report.Failures)
			if err := artifact.Write(cfg.OutputFile, a); err != nil {
				log.Warn().Err(err).Msg("Interim flush failed, continuing")
			}
		}

		if hi < len(items) {
			if !sleepCtx(ctx, cfg.BatchDelay) {
				log.Warn().Msg("Interrupted")
				report.Interrupted = true
				break
			}
		}
	}

	logSummary(log, report, time.Since(start))
	return report, nil
}

func logBatchHeader(cfg *config.Config, log zerolog.Logger, report *RunReport) {
	log.Info().Msgf("Found %d images in %s", report.Total, cfg.ImagesDir)
	log.Info().Msgf("Model: %s, max %d response tokens", cfg.Model, cfg.MaxTokens)
	log.Info().Msgf("Concurrency: %d per window, %s between windows",
		cfg.Concurrency, cfg.BatchDelay)
	log.Info().Msgf("Retry policy: %d retries, fixed %s delay", cfg.MaxRetries, cfg.RetryDelay)
	if cfg.FlushEveryBatch {
		log.Info().Msgf("Persistence: rewrite %s after every window", cfg.OutputFile)
	}

	if est, err := tokens.Estimate(cfg.Prompt, cfg.Model); err == nil {
		log.Info().Msgf("Prompt: ~%d tokens", est)
	} else {
		log.Debug().Err(err).Msg("Prompt token estimate unavailable")
	}
}

func logProgress(log zerolog.Logger, report *RunReport, o outcome) {
	pct := display.Percent(report.Processed, report.Total)

	if o.result != nil {
		detail := ""
		if o.width > 0 {
			detail = fmt.Sprintf(", %dx%d", o.width, o.height)
		}
		if o.size > 0 {
			detail += ", " + display.FormatBytes(o.size)
		}
		if u := o.result.Usage; u != nil {
			detail += fmt.Sprintf(", %d tokens", u.TotalTokens)
		}
		log.Info().Msgf("[%d/%d] %s ok (%s%s)",
			report.Processed, report.Total, o.result.Image, pct, detail)
		return
	}

	log.Error().Msgf("[%d/%d] %s failed (%s): %s",
		report.Processed, report.Total, o.failure.Image, pct, o.failure.ErrorMessage)
}

func logSummary(log zerolog.Logger, report *RunReport, elapsed time.Duration) {
	log.Info().Msg("==============================")
	log.Info().Msgf("Done: %d described, %d failed (of %d) in %s",
		report.Succeeded(), report.Failed(), report.Total, display.FormatDuration(elapsed))
	if report.TotalTokens > 0 {
		log.Info().Msgf("Tokens: %d prompt + %d completion = %d total",
			report.PromptTokens, report.CompletionTokens, report.TotalTokens)
	}
}
