// Package cli implements the salesdw command line interface.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"salesdw/internal/config"
	"salesdw/internal/logging"
	"salesdw/internal/metrics"
	"salesdw/internal/metrics/datadog"
)

var (
	cfgFile  string
	logLevel string

	rawDir      string
	preparedDir string
	storageKind string
	storageDSN  string

	metricsBackendFlag string

	cfg *config.Config
)

// NewRootCmd builds the salesdw command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salesdw",
		Short: "Smart sales data warehouse pipeline",
		Long: `salesdw cleans raw sales CSV files and loads them into a star-schema
warehouse (customers, products, stores and campaigns around a sales fact
table), then verifies row counts and referential integrity.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./salesdw.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&rawDir, "raw-dir", "", "raw CSV directory")
	cmd.PersistentFlags().StringVar(&preparedDir, "prepared-dir", "", "prepared CSV directory")
	cmd.PersistentFlags().StringVar(&storageKind, "storage", "", "warehouse backend (sqlite, postgres, mssql)")
	cmd.PersistentFlags().StringVar(&storageDSN, "dsn", "", "warehouse connection string")
	cmd.PersistentFlags().StringVar(&metricsBackendFlag, "metrics-backend", "", "metrics backend (datadog, none)")

	cmd.AddCommand(
		newSeedCmd(),
		newPrepareCmd(),
		newLoadCmd(),
		newVerifyCmd(),
		newRunCmd(),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration and initializes logging and metrics. Flags that
// were explicitly set take precedence over config file values.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("raw-dir") {
		c.Data.RawDir = rawDir
	}
	if flags.Changed("prepared-dir") {
		c.Data.PreparedDir = preparedDir
	}
	if flags.Changed("storage") {
		c.Storage.Kind = storageKind
	}
	if flags.Changed("dsn") {
		c.Storage.DSN = storageDSN
	}
	if flags.Changed("metrics-backend") {
		c.Metrics.Backend = metricsBackendFlag
	}

	logging.Init(logging.Config{Level: c.LogLevel, Pretty: true})

	switch c.Metrics.Backend {
	case "", "none":
	case "datadog":
		b, err := datadog.NewBackend(cmd.Context(), datadog.Options{
			JobName:    "salesdw",
			Tags:       c.Metrics.Tags,
			FlushEvery: time.Duration(c.Metrics.FlushSeconds) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("init datadog metrics: %w", err)
		}
		metrics.SetBackend(b)
	default:
		return fmt.Errorf("unsupported metrics.backend=%q (expected datadog or none)", c.Metrics.Backend)
	}

	cfg = c
	return nil
}

func teardown(*cobra.Command, []string) {
	if err := metrics.Close(); err != nil {
		logging.Warn().Err(err).Msg("metrics close failed")
	}
}
