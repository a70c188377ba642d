package config

import "path/filepath"

// ReportConfig is the root configuration of one aggregation and reporting
// run. All paths and thresholds live here; packages take them as arguments
// instead of reading module-level constants.
type ReportConfig struct {
	Report  ReportInfo     `yaml:"report"`
	Results ResultsConfig  `yaml:"results"`
	Output  OutputConfig   `yaml:"output"`
	DB      DatabaseConfig `yaml:"db"`
}

type ReportInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	LogLevel    string `yaml:"log_level"`
}

// ResultsConfig locates the result files and states the size filter bounds.
type ResultsConfig struct {
	// Root is the results directory tree, one subdirectory per category.
	Root string `yaml:"root"`
	// Categories maps category names to their subdirectories under Root.
	Categories map[string]string `yaml:"categories"`
	// MinSizeMB filters out small allocations where cache effects dominate
	// (inclusive lower bound; 0 disables).
	MinSizeMB int `yaml:"min_size_mb"`
	// MaxSizeMB filters out capacities that were never actually tested
	// (inclusive upper bound; 0 disables).
	MaxSizeMB int `yaml:"max_size_mb"`
}

type OutputConfig struct {
	// Dir receives generated chart and report files.
	Dir string `yaml:"dir"`
}

type DatabaseConfig struct {
	Host   string `yaml:"host"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
	Token  string `yaml:"token"`
}

// CategoryDir resolves the directory of a named category.
func (c *ReportConfig) CategoryDir(category string) (string, bool) {
	sub, ok := c.Results.Categories[category]
	if !ok {
		return "", false
	}
	return filepath.Join(c.Results.Root, sub), true
}
