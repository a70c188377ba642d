package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
report:
  name: numa-advanced
  log_level: debug
results:
  root: /data/numa_results_advanced
  min_size_mb: 512
  max_size_mb: 65536
output:
  dir: charts
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Report.Name != "numa-advanced" {
		t.Errorf("name = %q", cfg.Report.Name)
	}
	if cfg.Results.MinSizeMB != 512 || cfg.Results.MaxSizeMB != 65536 {
		t.Errorf("bounds = %d, %d", cfg.Results.MinSizeMB, cfg.Results.MaxSizeMB)
	}

	// Categories default when omitted.
	dir, ok := cfg.CategoryDir("penalty")
	if !ok {
		t.Fatalf("penalty category missing")
	}
	if dir != filepath.Join("/data/numa_results_advanced", "Test2") {
		t.Errorf("penalty dir = %q", dir)
	}
	if _, ok := cfg.CategoryDir("bogus"); ok {
		t.Errorf("unknown category resolved")
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("NUMA_RESULTS_ROOT", "/mnt/results")

	cfg, err := LoadConfig(writeConfig(t, `
results:
  root: ${NUMA_RESULTS_ROOT}
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Results.Root != "/mnt/results" {
		t.Errorf("root = %q, want /mnt/results", cfg.Results.Root)
	}
}

func TestLoadConfigRejectsInvertedBounds(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
results:
  root: r
  min_size_mb: 4096
  max_size_mb: 512
`))
	if err == nil {
		t.Fatalf("inverted bounds accepted")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
