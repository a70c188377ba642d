package schema

// Outcome is the tri-state result of extracting one run. "No data" and
// "measured zero" are never conflated: absence is always an explicit outcome,
// never a zero metric value.
type Outcome string

const (
	// OutcomeOK: the run completed and at least one metric was extracted.
	OutcomeOK Outcome = "ok"
	// OutcomeMissing: the result file was absent, unreadable, or lacked the
	// category's required primary field.
	OutcomeMissing Outcome = "missing"
	// OutcomeKilled: the run was terminated abnormally. Partial numbers from
	// a killed run are not trustworthy and are discarded.
	OutcomeKilled Outcome = "killed"
)

// MetricRecord is the reconciled result of one run: named numeric metrics
// plus the extraction outcome. Records are immutable after creation.
type MetricRecord struct {
	Outcome Outcome
	Metrics map[string]float64
	// Source is the result file the record was extracted from, kept so every
	// failure stays attributable to a concrete input.
	Source string
}

// Metric returns the named metric and whether it was extracted.
func (r MetricRecord) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

func (r MetricRecord) OK() bool {
	return r.Outcome == OutcomeOK
}

// CounterSnapshot is a point-in-time capture of named kernel counters.
type CounterSnapshot map[string]int64

// CounterDelta holds per-counter after-minus-before differences. Deltas are
// signed; negative values are preserved.
type CounterDelta map[string]int64
