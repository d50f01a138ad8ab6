// Package artifact defines the persisted result document and its disk
// round-trip. The JSON field names are a compatibility surface: the result
// viewer and the description-extraction tool read these exact keys, so they
// must never change shape.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Usage is the per-image token accounting as persisted.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Result is one successfully described image.
type Result struct {
	Image       string    `json:"image"`
	Path        string    `json:"path"`
	Description string    `json:"description"`
	ModelUsed   string    `json:"modelUsed"`
	Usage       *Usage    `json:"usage"`
	CompletedAt time.Time `json:"completedAt"`
}

// Failure is one image whose retry budget was exhausted. ErrorMessage holds
// the last attempt's error only.
type Failure struct {
	Image        string    `json:"image"`
	Path         string    `json:"path"`
	ErrorMessage string    `json:"errorMessage"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Metadata summarizes one run.
type Metadata struct {
	ProcessedAt     time.Time `json:"processedAt"`
	TotalImages     int       `json:"totalImages"`
	SuccessfulCount int       `json:"successfulCount"`
	ErrorCount      int       `json:"errorCount"`
	Model           string    `json:"model"`
	Prompt          string    `json:"prompt"`
}

// Artifact is the durable output of one run, written once (or rewritten per
// window when interim flushing is on).
type Artifact struct {
	Metadata Metadata  `json:"metadata"`
	Results  []Result  `json:"results"`
	Errors   []Failure `json:"errors"`
}

// Build assembles an Artifact from settled outcomes. Collections are never
// nil so empty runs marshal as [] rather than null.
func Build(model, prompt string, results []Result, failures []Failure) *Artifact {
	if results == nil {
		results = []Result{}
	}
	if failures == nil {
		failures = []Failure{}
	}
	return &Artifact{
		Metadata: Metadata{
			ProcessedAt:     time.Now().UTC(),
			TotalImages:     len(results) + len(failures),
			SuccessfulCount: len(results),
			ErrorCount:      len(failures),
			Model:           model,
			Prompt:          prompt,
		},
		Results: results,
		Errors:  failures,
	}
}

// Write serializes the artifact as indented JSON to path, creating parent
// directories and fully overwriting prior content.
func Write(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Read parses an artifact file written by [Write].
func Read(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", filepath.Base(path), err)
	}
	return &a, nil
}
