// Package cmd wires the aggregation engine, reports, charts, and export into
// the numa-report command line tool.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"numa-report/internal/aggregate"
	"numa-report/internal/config"
	"numa-report/internal/database"
	"numa-report/internal/decode"
	"numa-report/internal/hardware"
	"numa-report/internal/logging"
	"numa-report/internal/plot"
	"numa-report/internal/report"
	"numa-report/internal/schema"
	"numa-report/internal/store"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		}
	}
}

func validateExportEnvironment(cfg *config.ReportConfig) error {
	// Credentials come from the config file, usually via ${ENV} expansion.
	if cfg.DB.Host == "" {
		cfg.DB.Host = os.Getenv("INFLUXDB_HOST")
	}
	if cfg.DB.Token == "" {
		cfg.DB.Token = os.Getenv("INFLUXDB_TOKEN")
	}
	if cfg.DB.Org == "" {
		cfg.DB.Org = os.Getenv("INFLUXDB_ORG")
	}
	if cfg.DB.Bucket == "" {
		cfg.DB.Bucket = os.Getenv("INFLUXDB_BUCKET")
	}
	for name, v := range map[string]string{
		"host": cfg.DB.Host, "token": cfg.DB.Token, "org": cfg.DB.Org, "bucket": cfg.DB.Bucket,
	} {
		if v == "" {
			return fmt.Errorf("influxdb %s is not configured (config db section or INFLUXDB_* environment)", name)
		}
	}
	return nil
}

// runPass aggregates one category under the configured bounds.
func runPass(cfg *config.ReportConfig, category string) (*aggregate.Result, *decode.Category, error) {
	cat, ok := decode.ByName(category)
	if !ok {
		return nil, nil, fmt.Errorf("unknown category %q", category)
	}
	dir, ok := cfg.CategoryDir(category)
	if !ok {
		return nil, nil, fmt.Errorf("category %q has no directory configured", category)
	}
	res, err := aggregate.Run(cat, aggregate.Options{
		SourceDir: dir,
		MinSizeMB: cfg.Results.MinSizeMB,
		MaxSizeMB: cfg.Results.MaxSizeMB,
	})
	if err != nil {
		return nil, nil, err
	}
	return res, cat, nil
}

func configuredCategories(cfg *config.ReportConfig) []string {
	names := make([]string, 0, len(cfg.Results.Categories))
	for name := range cfg.Results.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeChart(cfg *config.ReportConfig, name, content string) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(cfg.Output.Dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	logging.GetLogger().WithField("path", path).Info("Chart written")
	return nil
}

func Execute() error {
	logger := logging.GetLogger()
	loadEnvironment()

	var configFile string
	var category string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "numa-report",
		Short:   "NUMA benchmark result aggregation and reporting",
		Long:    "Aggregates NUMA memory benchmark result files into a multi-dimensional dataset and renders reports, TikZ charts, and database exports from it",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "report.yml", "Path to report configuration file")

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate result files and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			names := configuredCategories(cfg)
			if category != "" {
				names = []string{category}
			}
			for _, name := range names {
				res, _, err := runPass(cfg, name)
				if err != nil {
					return err
				}
				report.Summary(cmd.OutOrStdout(), name, res.Store, res.OK, res.Missing, res.Killed, res.Skipped)
			}
			return nil
		},
	}
	aggregateCmd.Flags().StringVar(&category, "category", "", "Aggregate a single category (default: all configured)")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print analysis reports over aggregated results",
	}

	reportCmd.AddCommand(&cobra.Command{
		Use:   "penalty",
		Short: "Local versus remote access penalty per pattern and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			res, _, err := runPass(cfg, "penalty")
			if err != nil {
				return err
			}
			report.Penalty(cmd.OutOrStdout(), res.Store)
			return nil
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "latency",
		Short: "Local versus remote access latency increase per pattern and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			res, _, err := runPass(cfg, "penalty")
			if err != nil {
				return err
			}
			report.LatencyPenalty(cmd.OutOrStdout(), res.Store)
			return nil
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "counters",
		Short: "Cache miss rate and TLB miss evidence per relation and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			res, _, err := runPass(cfg, "penalty")
			if err != nil {
				return err
			}
			report.Counters(cmd.OutOrStdout(), res.Store)
			return nil
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "pressure",
		Short: "Degradation under memory pressure per policy and pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			res, _, err := runPass(cfg, "pressure")
			if err != nil {
				return err
			}
			report.Pressure(cmd.OutOrStdout(), res.Store)
			return nil
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "correlation",
		Short: "Migration activity versus performance over the migration runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			res, _, err := runPass(cfg, "migration")
			if err != nil {
				return err
			}
			report.Correlation(cmd.OutOrStdout(), res.Store)
			return nil
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "migration",
		Short: "Migration cost: statically bound references versus auto-migrated runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			res, _, err := runPass(cfg, "migration")
			if err != nil {
				return err
			}
			report.MigrationCost(cmd.OutOrStdout(), res.Store)
			return nil
		},
	})

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Generate TikZ charts from aggregated results",
	}

	plotChart := func(name, categoryName string, render func(*plot.Generator, *store.Store, schema.AccessPattern, int) (string, error)) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("Generate the %s charts, one per access pattern", name),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig(configFile)
				if err != nil {
					return err
				}
				res, _, err := runPass(cfg, categoryName)
				if err != nil {
					return err
				}

				capacityMB, ok := hardware.NodeCapacityMB(0)
				if !ok {
					logger.Debug("Node capacity unknown, annotations omitted")
				}

				gen := plot.NewGenerator()
				for _, pattern := range res.Store.Patterns(store.Filter{}) {
					chart, err := render(gen, res.Store, pattern, capacityMB)
					if err != nil {
						return err
					}
					filename := fmt.Sprintf("%s_%s.tex", name, pattern)
					if err := writeChart(cfg, filename, chart); err != nil {
						return err
					}
				}
				return nil
			},
		}
	}

	plotCmd.AddCommand(plotChart("penalty", "penalty", (*plot.Generator).Penalty))
	plotCmd.AddCommand(plotChart("latency", "penalty", (*plot.Generator).Latency))
	plotCmd.AddCommand(plotChart("tlb", "penalty", (*plot.Generator).TLBMisses))
	plotCmd.AddCommand(plotChart("pressure", "pressure", (*plot.Generator).Pressure))
	plotCmd.AddCommand(plotChart("policy", "policy", (*plot.Generator).Policies))

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export aggregated records to InfluxDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			if err := validateExportEnvironment(cfg); err != nil {
				return err
			}

			client, err := database.NewInfluxDBClient(cfg.DB)
			if err != nil {
				return err
			}
			defer client.Close()

			names := configuredCategories(cfg)
			if category != "" {
				names = []string{category}
			}
			exportedAt := time.Now()
			for _, name := range names {
				res, _, err := runPass(cfg, name)
				if err != nil {
					return err
				}
				n, err := client.WriteStore(context.Background(), name, res.Store, exportedAt)
				if err != nil {
					return err
				}
				logger.WithFields(logrus.Fields{
					"category": name,
					"points":   n,
				}).Info("Category exported")
			}
			return nil
		},
	}
	exportCmd.Flags().StringVar(&category, "category", "", "Export a single category (default: all configured)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a report configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"root":       cfg.Results.Root,
				"categories": len(cfg.Results.Categories),
			}).Info("Configuration is valid")
			return nil
		},
	}

	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(plotCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)

	return rootCmd.Execute()
}
