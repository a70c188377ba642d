// Package counters parses kernel counter snapshots taken before and after a
// run and computes per-counter deltas between them.
package counters

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"numa-report/internal/schema"
)

// ParseSnapshot reads "name value" lines into a snapshot. Blank lines, lines
// that are not exactly two whitespace-separated tokens, and lines whose value
// is not an integer are skipped; a stray line never invalidates the rest of
// the snapshot.
func ParseSnapshot(r io.Reader) (schema.CounterSnapshot, error) {
	snap := make(schema.CounterSnapshot)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) != 2 {
			continue
		}
		v, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		snap[parts[0]] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// LoadSnapshot reads a snapshot file from disk.
func LoadSnapshot(path string) (schema.CounterSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSnapshot(f)
}

// Delta computes after-minus-before for every counter present in both
// snapshots. Counters present in only one side are excluded rather than
// zero-filled: a zero fill would be indistinguishable from a genuine zero
// delta. Negative deltas are kept signed.
func Delta(before, after schema.CounterSnapshot) schema.CounterDelta {
	delta := make(schema.CounterDelta)
	for name, afterValue := range after {
		if beforeValue, ok := before[name]; ok {
			delta[name] = afterValue - beforeValue
		}
	}
	return delta
}

// LoadDelta reads the before/after snapshot pair of a result file
// ("<run>.vmstat_before", "<run>.vmstat_after") and returns their delta.
// Either file being absent or unreadable yields no delta; snapshot pairs are
// optional per run.
func LoadDelta(resultPath string) schema.CounterDelta {
	before, err := LoadSnapshot(resultPath + ".vmstat_before")
	if err != nil {
		return nil
	}
	after, err := LoadSnapshot(resultPath + ".vmstat_after")
	if err != nil {
		return nil
	}
	return Delta(before, after)
}
