package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"numa-report/internal/logging"

	"gopkg.in/yaml.v3"
)

// DefaultCategories maps the built-in category names to the subdirectories
// the benchmark runner writes them to.
var DefaultCategories = map[string]string{
	"pressure":  "Test1",
	"penalty":   "Test2",
	"policy":    "Test3",
	"migration": "Test4",
}

func LoadConfig(path string) (*ReportConfig, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WithField("path", path).WithError(err).Error("Failed to read config file")
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	var cfg ReportConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		logger.WithField("path", path).WithError(err).Error("Failed to parse config file")
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ReportConfig) {
	if cfg.Results.Root == "" {
		cfg.Results.Root = "numa_results_advanced"
	}
	if len(cfg.Results.Categories) == 0 {
		cfg.Results.Categories = DefaultCategories
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "reports"
	}
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func validateConfig(cfg *ReportConfig) error {
	if cfg.Results.MinSizeMB < 0 || cfg.Results.MaxSizeMB < 0 {
		return fmt.Errorf("size bounds must not be negative")
	}
	if cfg.Results.MinSizeMB > 0 && cfg.Results.MaxSizeMB > 0 &&
		cfg.Results.MinSizeMB > cfg.Results.MaxSizeMB {
		return fmt.Errorf("min_size_mb %d exceeds max_size_mb %d",
			cfg.Results.MinSizeMB, cfg.Results.MaxSizeMB)
	}
	for name, sub := range cfg.Results.Categories {
		if sub == "" {
			return fmt.Errorf("category %s has an empty directory", name)
		}
	}
	return nil
}
