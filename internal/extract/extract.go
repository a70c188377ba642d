// Package extract scans free-form result bodies for labeled numeric fields
// and classifies each run as ok, missing, or killed.
package extract

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"numa-report/internal/logging"
	"numa-report/internal/schema"

	"github.com/sirupsen/logrus"
)

// FieldSpec describes one extractable field: a regexp whose first capture
// group is the numeric text, and whether that text uses thousands grouping.
type FieldSpec struct {
	Name    string
	re      *regexp.Regexp
	grouped bool
}

// Field compiles a field spec for a plain float following its label.
func Field(name, pattern string) FieldSpec {
	return FieldSpec{Name: name, re: regexp.MustCompile(pattern)}
}

// GroupedField compiles a field spec whose value is an integer written with
// thousands separators, as perf stat prints counters.
func GroupedField(name, pattern string) FieldSpec {
	return FieldSpec{Name: name, re: regexp.MustCompile(pattern), grouped: true}
}

// ResultFields are the labeled fields of a benchmark result body.
var ResultFields = []FieldSpec{
	Field("throughput", `Throughput:\s+([\d.]+)\s+MB/s`),
	Field("latency", `Average latency:\s+([\d.]+)\s+ns`),
	Field("elapsed_seconds", `([\d.]+)\s+seconds time elapsed`),
}

// PerfFields are the counters read from a perf stat companion file, where the
// count precedes the counter name.
var PerfFields = []FieldSpec{
	GroupedField("perf_cache_misses", `([\d,]+)\s+cache-misses`),
	GroupedField("perf_cache_references", `([\d,]+)\s+cache-references`),
	GroupedField("perf_dtlb_load_misses", `([\d,]+)\s+dTLB-load-misses`),
	GroupedField("perf_dtlb_store_misses", `([\d,]+)\s+dTLB-store-misses`),
	GroupedField("perf_page_faults", `([\d,]+)\s+page-faults`),
}

// killMarkers are the termination marker substrings. The OOM killer message
// wording varies across kernels, so both capitalizations are recognized.
var killMarkers = []string{"Killed", "killed"}

// Killed reports whether the body contains a termination marker.
func Killed(content string) bool {
	for _, marker := range killMarkers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// Fields extracts every field of the table that is present in content.
// A field whose captured text fails numeric parsing is dropped on its own;
// the other fields are unaffected.
func Fields(content string, fields []FieldSpec) map[string]float64 {
	logger := logging.GetLogger()
	out := make(map[string]float64)
	for _, f := range fields {
		groups := f.re.FindStringSubmatch(content)
		if groups == nil {
			continue
		}
		text := groups[1]
		if f.grouped {
			text = strings.ReplaceAll(text, ",", "")
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"field": f.Name,
				"text":  groups[1],
			}).Debug("Field present but unparsable, dropping field")
			continue
		}
		out[f.Name] = v
	}
	return out
}

// Body classifies a result body and extracts its metrics. A kill marker wins
// over any numeric fields also present; requiredField, when non-empty, names
// the category's primary signal, without which the run counts as missing.
func Body(content string, fields []FieldSpec, requiredField string) (map[string]float64, schema.Outcome) {
	if Killed(content) {
		return nil, schema.OutcomeKilled
	}
	metrics := Fields(content, fields)
	if requiredField != "" {
		if _, ok := metrics[requiredField]; !ok {
			return nil, schema.OutcomeMissing
		}
	}
	if len(metrics) == 0 {
		return nil, schema.OutcomeMissing
	}
	return metrics, schema.OutcomeOK
}

// File reads and classifies a result file. An unreadable file is a missing
// run, not an error: one bad file never aborts a pass.
func File(path string, fields []FieldSpec, requiredField string) (map[string]float64, schema.Outcome) {
	content, err := os.ReadFile(path)
	if err != nil {
		logging.GetLogger().WithField("path", path).WithError(err).Debug("Result file unreadable")
		return nil, schema.OutcomeMissing
	}
	return Body(string(content), fields, requiredField)
}

// PerfFile extracts counters from a perf stat companion file. A missing
// companion file yields no counters; perf output is optional per run.
func PerfFile(path string) map[string]float64 {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return Fields(string(content), PerfFields)
}
