package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/stepcheck/internal/logging"
	"github.com/abhisek/stepcheck/internal/store"
)

// logger is built once flags are parsed.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "stepcheck",
	Short: "Grade step-by-step algebra work",
	Long: "stepcheck checks each step of a worked algebra problem against the one before it " +
		"and names the mistake when a step is wrong.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; a malformed one is worth a warning.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
		}

		cfg := logging.ConfigFromEnv()
		if f, _ := cmd.Flags().GetString("log-file"); f != "" {
			cfg.File = f
		}
		if d, _ := cmd.Flags().GetBool("debug"); d {
			cfg.Debug = true
		}
		logger = logging.New(cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database path or postgres:// DSN (overrides STEPCHECK_DB env var)")
	rootCmd.PersistentFlags().String("log-file", "", "Write JSON logs to this file (overrides STEPCHECK_LOG_FILE)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(attemptCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore opens the database selected by --db, then STEPCHECK_DB, then
// the default XDG path.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	flag, _ := cmd.Flags().GetString("db")
	dsn, err := store.ResolveDBPath(flag)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("database opened", zap.String("dsn", dsn))
	return s, nil
}
