package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/lensbatch/internal/artifact"
	"github.com/backmassage/lensbatch/internal/config"
	"github.com/backmassage/lensbatch/internal/media"
	"github.com/backmassage/lensbatch/internal/vision"
)

// outcome is the settled result of one item: exactly one of result/failure
// is set. The extra fields are display-only detail for the progress line.
type outcome struct {
	result  *artifact.Result
	failure *artifact.Failure

	width  int
	height int
	size   int64
}

// processItem runs the bounded retry loop for one item: encode → analyze, up
// to MaxRetries+1 attempts with a fixed delay between them. The first
// success wins; when every attempt fails, the failure carries the last
// attempt's error only. It never returns an error — every item settles into
// exactly one outcome.
func processItem(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	analyzer vision.Analyzer,
	item Item,
) outcome {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Msgf("Retry %d/%d: %s (%v)", attempt, cfg.MaxRetries, item.Name, lastErr)
			if !sleepCtx(ctx, cfg.RetryDelay) {
				break
			}
		}

		res, o, err := attemptOnce(ctx, cfg, analyzer, item)
		if err == nil {
			o.result = res
			return o
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return outcome{failure: &artifact.Failure{
		Image:        item.Name,
		Path:         item.Path,
		ErrorMessage: lastErr.Error(),
		CompletedAt:  time.Now().UTC(),
	}}
}

// attemptOnce performs a single encode→analyze pass. Encoding failures are
// returned the same way as remote failures so the retry loop treats them
// identically.
func attemptOnce(
	ctx context.Context,
	cfg *config.Config,
	analyzer vision.Analyzer,
	item Item,
) (*artifact.Result, outcome, error) {
	payload, err := media.EncodeFile(item.Path)
	if err != nil {
		return nil, outcome{}, err
	}

	res, err := analyzer.Analyze(ctx, vision.Request{
		Model:     cfg.Model,
		Prompt:    cfg.Prompt,
		Payload:   payload,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return nil, outcome{}, err
	}

	result := &artifact.Result{
		Image:       item.Name,
		Path:        item.Path,
		Description: res.Description,
		ModelUsed:   res.Model,
		CompletedAt: time.Now().UTC(),
	}
	if res.Usage != nil {
		result.Usage = &artifact.Usage{
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
		}
	}

	o := outcome{size: payload.Size}
	// Dimension probe failures just leave the progress line without a size.
	if w, h, err := payload.Dimensions(); err == nil {
		o.width, o.height = w, h
	}
	return result, o, nil
}

// sleepCtx waits for d unless the context is cancelled first. Returns false
// on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
