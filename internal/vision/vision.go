// Package vision defines the boundary to the remote vision-analysis service
// and its OpenAI-compatible implementation. The pipeline depends only on the
// [Analyzer] interface; every remote failure surfaces as a plain error with a
// human-readable message and is treated uniformly for retry purposes.
package vision

import (
	"context"

	"github.com/backmassage/lensbatch/internal/media"
)

// Request describes one analysis call for one image.
type Request struct {
	Model     string
	Prompt    string
	Payload   *media.Payload
	MaxTokens int
}

// Usage is the token accounting reported by the service for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Result is the successful outcome of one analysis call. Usage is nil when
// the service reported no token accounting.
type Result struct {
	Description string
	Model       string
	Usage       *Usage
}

// Analyzer issues one analysis request per image.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}
