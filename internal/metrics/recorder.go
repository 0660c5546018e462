// Package metrics records sitemap generation metrics. Components depend on
// the Recorder interface; NoopRecorder is the default so callers never need
// nil checks, and PrometheusRecorder is swapped in when metrics are enabled.
package metrics

import "time"

// Outcome labels the result of one generation pass.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Entry sources used as the "source" label.
const (
	SourceNavigation = "navigation"
	SourceContent    = "content"
	SourceTotal      = "total"
)

// Recorder receives generation metrics.
type Recorder interface {
	ObserveGenerationDuration(d time.Duration)
	IncGenerationOutcome(outcome Outcome)
	SetEntryCount(source string, n int)
	IncExcluded(source, reason string)
	IncSnapshotSync(outcome Outcome)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveGenerationDuration(time.Duration) {}
func (NoopRecorder) IncGenerationOutcome(Outcome)            {}
func (NoopRecorder) SetEntryCount(string, int)               {}
func (NoopRecorder) IncExcluded(string, string)              {}
func (NoopRecorder) IncSnapshotSync(Outcome)                 {}

var _ Recorder = NoopRecorder{}
