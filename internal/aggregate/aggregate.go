// Package aggregate runs one aggregation pass: it scans a results directory,
// decodes filenames, extracts metrics and counter deltas, and fills an
// aggregation store. The pass is single-threaded; the store it returns is
// read-only afterwards.
package aggregate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"numa-report/internal/counters"
	"numa-report/internal/decode"
	"numa-report/internal/extract"
	"numa-report/internal/logging"
	"numa-report/internal/schema"
	"numa-report/internal/store"

	"github.com/sirupsen/logrus"
)

// Options configures one pass. Thresholds and paths always arrive here from
// configuration or flags; nothing in the pass is hardcoded.
type Options struct {
	// SourceDir is the category's results directory.
	SourceDir string
	// MinSizeMB drops allocations below this bound (inclusive; 0 disables),
	// where cache effects dominate the measurement.
	MinSizeMB int
	// MaxSizeMB drops allocations above this bound (inclusive; 0 disables),
	// capacities that were never actually tested.
	MaxSizeMB int
}

// Result is the outcome of a pass: the filled store plus per-outcome counts
// for reporting which inputs were problematic.
type Result struct {
	Store   *store.Store
	OK      int
	Missing int
	Killed  int
	// Skipped counts directory entries matching no pattern of the category.
	Skipped int
}

// Run aggregates every result file of the category under opts.SourceDir.
// Per-file problems become record outcomes; only a duplicate key or an
// unreadable source directory aborts the pass.
func Run(cat *decode.Category, opts Options) (*Result, error) {
	logger := logging.GetLogger()

	entries, err := os.ReadDir(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate results directory %s: %w", opts.SourceDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	res := &Result{Store: store.New()}

	for _, name := range names {
		m, ok := cat.Decode(name)
		if !ok {
			res.Skipped++
			continue
		}
		if outOfBounds(m.Key.SizeMB(), opts) {
			res.Skipped++
			continue
		}

		path := filepath.Join(opts.SourceDir, name)
		rec := buildRecord(path, name, cat)

		if err := res.Store.Insert(m.Key, rec); err != nil {
			return nil, err
		}

		switch rec.Outcome {
		case schema.OutcomeOK:
			res.OK++
		case schema.OutcomeMissing:
			res.Missing++
		case schema.OutcomeKilled:
			res.Killed++
		}
	}

	logger.WithFields(logrus.Fields{
		"category": cat.Name,
		"dir":      opts.SourceDir,
		"ok":       res.OK,
		"missing":  res.Missing,
		"killed":   res.Killed,
		"skipped":  res.Skipped,
	}).Info("Aggregation pass finished")

	return res, nil
}

// buildRecord extracts the result body and merges in the optional vmstat
// delta and perf counter companions. Companions only enrich ok records;
// a killed or missing run carries no metric values at all.
func buildRecord(path, name string, cat *decode.Category) schema.MetricRecord {
	metrics, outcome := extract.File(path, extract.ResultFields, cat.PrimaryField)
	if outcome != schema.OutcomeOK {
		return schema.MetricRecord{Outcome: outcome, Source: name}
	}

	for counter, d := range counters.LoadDelta(path) {
		metrics["vmstat_"+counter] = float64(d)
	}
	for counter, v := range extract.PerfFile(path + ".perf") {
		metrics[counter] = v
	}

	return schema.MetricRecord{Outcome: schema.OutcomeOK, Metrics: metrics, Source: name}
}

func outOfBounds(sizeMB int64, opts Options) bool {
	if opts.MinSizeMB > 0 && sizeMB < int64(opts.MinSizeMB) {
		return true
	}
	if opts.MaxSizeMB > 0 && sizeMB > int64(opts.MaxSizeMB) {
		return true
	}
	return false
}
