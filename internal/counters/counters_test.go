package counters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"numa-report/internal/schema"
)

func TestParseSnapshotSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"numa_hit 1000",
		"",
		"numa_miss 50",
		"this line has three tokens",
		"numa_foreign notanumber",
		"single",
		"numa_pages_migrated 7",
	}, "\n")

	snap, err := ParseSnapshot(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	want := schema.CounterSnapshot{
		"numa_hit":            1000,
		"numa_miss":           50,
		"numa_pages_migrated": 7,
	}
	if len(snap) != len(want) {
		t.Fatalf("snapshot = %v, want %v", snap, want)
	}
	for name, v := range want {
		if snap[name] != v {
			t.Errorf("%s = %d, want %d", name, snap[name], v)
		}
	}
}

func TestDeltaIntersectionOnly(t *testing.T) {
	before := schema.CounterSnapshot{"numa_hit": 1000, "numa_miss": 50, "only_before": 3}
	after := schema.CounterSnapshot{"numa_hit": 1800, "numa_miss": 40, "only_after": 9}

	delta := Delta(before, after)

	if got := delta["numa_hit"]; got != 800 {
		t.Errorf("numa_hit delta = %d, want 800", got)
	}
	// Counters can wrap or be reset mid-run; negative deltas stay signed.
	if got := delta["numa_miss"]; got != -10 {
		t.Errorf("numa_miss delta = %d, want -10", got)
	}
	if _, ok := delta["only_before"]; ok {
		t.Errorf("counter absent from after snapshot appeared in delta")
	}
	if _, ok := delta["only_after"]; ok {
		t.Errorf("counter absent from before snapshot appeared in delta")
	}
}

func TestDeltaMatchesDifferencePerKey(t *testing.T) {
	before := schema.CounterSnapshot{"a": 1, "b": 2, "c": 3}
	after := schema.CounterSnapshot{"a": 10, "b": 2, "c": 30}

	delta := Delta(before, after)
	for name := range delta {
		if delta[name] != after[name]-before[name] {
			t.Errorf("%s delta = %d, want %d", name, delta[name], after[name]-before[name])
		}
	}
	if len(delta) != 3 {
		t.Errorf("delta has %d entries, want 3", len(delta))
	}
}

func TestLoadDeltaPair(t *testing.T) {
	dir := t.TempDir()
	result := filepath.Join(dir, "preferred_node0_4096MB_random.txt")

	writeFile(t, result+".vmstat_before", "numa_miss 100\nnuma_pages_migrated 10\n")
	writeFile(t, result+".vmstat_after", "numa_miss 400\nnuma_pages_migrated 25\n")

	delta := LoadDelta(result)
	if delta["numa_miss"] != 300 || delta["numa_pages_migrated"] != 15 {
		t.Errorf("delta = %v", delta)
	}
}

func TestLoadDeltaMissingPairFile(t *testing.T) {
	dir := t.TempDir()
	result := filepath.Join(dir, "run.txt")
	writeFile(t, result+".vmstat_before", "numa_miss 100\n")

	if delta := LoadDelta(result); delta != nil {
		t.Errorf("incomplete snapshot pair produced a delta: %v", delta)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
