// Command studyctl administers the study record store: schema migrations,
// bulk import of JSON lines exports and unit conversion.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"exposure-platform/internal/config"
	"exposure-platform/pkg/database"
	"exposure-platform/pkg/logging"
	"exposure-platform/pkg/metrics"
)

const version = "1.0.0"

// app holds what every store command needs
type app struct {
	cfg     *config.Config
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	db      *database.DB
}

func (a *app) Close() error { return a.db.Close() }

// openApp loads configuration and connects to the store. configPath, when
// set, overrides STUDY_CONFIG.
func openApp(ctx context.Context, configPath string, verbose bool) (*app, error) {
	if configPath != "" {
		os.Setenv(config.EnvConfigFile, configPath)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = logging.DebugLevel
	}
	logger := logging.NewStructuredLogger("studyctl", version, level)
	logger.SetOutput(os.Stderr)

	// one-shot commands have no scrape endpoint
	collector := metrics.NewCollector(cfg.Metrics.Namespace, prometheus.NewRegistry())

	db, err := database.Open(ctx, cfg.DatabaseConfig(), logger, collector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &app{cfg: cfg, logger: logger, metrics: collector, db: db}, nil
}

type rootFlags struct {
	config  string
	verbose bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "studyctl",
		Short:         "Administer the exposure study record store",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&flags.config, "config", "", "YAML configuration file (default $STUDY_CONFIG)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newMigrateCmd(&flags),
		newImportCmd(&flags),
		newConvertCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
