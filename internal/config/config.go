// Package config holds runtime configuration: defaults, environment loading,
// and validation. The tool takes no CLI flags; every setting comes from the
// environment so it can be driven from CI and cron jobs unchanged.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultPrompt is the analysis instruction used when PROMPT is unset.
const DefaultPrompt = "Describe this image in detail. Include the main subject, " +
	"setting, colors, and any notable elements."

// Config holds all runtime settings. It is populated by [FromEnv] and then
// passed (by pointer) to packages that need it. Fields are grouped by concern
// with inline documentation of defaults.
type Config struct {
	// Remote service.
	APIKey  string // Required. From OPENAI_API_KEY.
	BaseURL string // Optional endpoint override. From OPENAI_BASE_URL.
	Model   string // Default: "gpt-4o".
	Prompt  string // Default: [DefaultPrompt].

	// Paths.
	ImagesDir  string // Default: "./images".
	OutputFile string // Default: "./results.json".

	// Batch scheduling.
	MaxTokens   int           // Default: 500. Response token cap per request.
	Concurrency int           // Default: 5. Requests in flight per window.
	BatchDelay  time.Duration // Default: 1s. Pause between windows.
	MaxRetries  int           // Default: 3. Retries after the initial attempt.
	RetryDelay  time.Duration // Default: 2s. Fixed pause between attempts.

	// Persistence.
	FlushEveryBatch bool // Default: false. Rewrite the artifact after each window.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional plain-text log sink.
}

// FromEnv builds a Config from environment variables, applying defaults for
// everything that is unset. Malformed numeric values are reported as errors
// rather than silently replaced, so a typo in a deployment does not change
// batch behavior unnoticed.
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		BaseURL:    os.Getenv("OPENAI_BASE_URL"),
		Model:      getEnv("MODEL", "gpt-4o"),
		Prompt:     getEnv("PROMPT", DefaultPrompt),
		ImagesDir:  getEnv("IMAGES_DIR", "./images"),
		OutputFile: getEnv("OUTPUT_FILE", "./results.json"),
		LogFile:    os.Getenv("LOG_FILE"),
		ColorMode:  ColorMode(getEnv("COLOR", string(ColorAuto))),
	}

	var err error
	if cfg.MaxTokens, err = getEnvInt("MAX_TOKENS", 500); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = getEnvInt("CONCURRENCY", 5); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getEnvInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.BatchDelay, err = getEnvMillis("BATCH_DELAY", 1000*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getEnvMillis("RETRY_DELAY", 2000*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FlushEveryBatch, err = getEnvBool("FLUSH_EVERY_BATCH", false); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = getEnvBool("VERBOSE", false); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the API key is present, numeric fields are in range,
// and enum fields hold valid values. It must pass before any image is
// processed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if c.ImagesDir == "" {
		return errors.New("IMAGES_DIR must not be empty")
	}
	if c.OutputFile == "" {
		return errors.New("OUTPUT_FILE must not be empty")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("CONCURRENCY must be positive, got %d", c.Concurrency)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	if c.BatchDelay < 0 {
		return fmt.Errorf("BATCH_DELAY must not be negative, got %s", c.BatchDelay)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("RETRY_DELAY must not be negative, got %s", c.RetryDelay)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid COLOR (use 'auto', 'always' or 'never')")
	}
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// --- env helpers ---

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q (want an integer)", key, raw)
	}
	return n, nil
}

// getEnvMillis reads an integer millisecond value, matching the documented
// unit of BATCH_DELAY and RETRY_DELAY.
func getEnvMillis(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	ms, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q (want milliseconds as an integer)", key, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid %s %q (want true or false)", key, raw)
	}
	return b, nil
}
