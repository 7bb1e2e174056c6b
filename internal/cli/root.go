package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pattonwebz/mvtees/internal/config"
	"github.com/pattonwebz/mvtees/internal/logging"
	"github.com/pattonwebz/mvtees/internal/store"
)

var (
	namespace       string
	backendKind     string
	dbPath          string
	badgerDir       string
	experimentsPath string
	debug           bool

	configErr error
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "mvtees",
	Short: "MVTees - sticky client-side split testing",
	Long: `MVTees assigns this visitor to one variant of each experiment and
remembers the choice across runs.

Experiments are read from a YAML file (see --experiments). Assignments and
the visitor id live in a local store (SQLite by default).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		if err := store.ValidateNamespace(namespace); err != nil {
			return fmt.Errorf("invalid --namespace: %w", err)
		}

		var err error
		logger, err = logging.New(debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		configErr = err
		cfg = &config.Config{
			Namespace:   "mvtees",
			Backend:     "sqlite",
			DBPath:      "./mvtees.db",
			BadgerDir:   "./mvtees-badger",
			Experiments: "./experiments.yaml",
		}
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", cfg.Namespace, "storage key namespace and analytics category")
	rootCmd.PersistentFlags().StringVar(&backendKind, "backend", cfg.Backend, "storage backend (sqlite, badger, memory or disabled)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", cfg.DBPath, "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&badgerDir, "badger-dir", cfg.BadgerDir, "Badger data directory")
	rootCmd.PersistentFlags().StringVarP(&experimentsPath, "experiments", "e", cfg.Experiments, "experiment definitions file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", cfg.Debug, "enable debug logging")
}
