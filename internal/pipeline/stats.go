package pipeline

import "github.com/backmassage/lensbatch/internal/artifact"

// RunReport is the single-writer aggregation state for one run. Only the
// control goroutine in [Run] mutates it, once per settled outcome, so
// Processed always equals len(Results)+len(Failures).
type RunReport struct {
	Total     int
	Processed int

	Results  []artifact.Result
	Failures []artifact.Failure

	// Aggregate token usage across successful results that reported any.
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	Interrupted bool
}

func newRunReport(total int) *RunReport {
	return &RunReport{
		Total:    total,
		Results:  []artifact.Result{},
		Failures: []artifact.Failure{},
	}
}

// Succeeded returns the number of settled successes.
func (r *RunReport) Succeeded() int { return len(r.Results) }

// Failed returns the number of settled failures.
func (r *RunReport) Failed() int { return len(r.Failures) }

// record folds one settled outcome into the report.
func (r *RunReport) record(o outcome) {
	r.Processed++
	if o.result != nil {
		r.Results = append(r.Results, *o.result)
		if u := o.result.Usage; u != nil {
			r.PromptTokens += u.PromptTokens
			r.CompletionTokens += u.CompletionTokens
			r.TotalTokens += u.TotalTokens
		}
		return
	}
	r.Failures = append(r.Failures, *o.failure)
}
