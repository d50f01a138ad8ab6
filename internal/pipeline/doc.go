// Package pipeline orchestrates image discovery, window-based concurrent
// dispatch to the vision service, per-item retry, and batch summary
// reporting.
//
// The scheduler slices the discovered item list into windows of Concurrency
// items. Every item in a window is dispatched in parallel; the next window
// only opens after the current one has fully settled and the inter-window
// delay has elapsed. That joint wait is the rate-limiting mechanism: at most
// Concurrency requests are ever in flight, and a slow or retrying item holds
// back its whole window on purpose.
//
// Outcomes are drained by the single control goroutine, which alone mutates
// the run report, so no locking is needed around the counters and
// collections.
package pipeline
