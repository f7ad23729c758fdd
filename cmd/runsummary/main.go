package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/runsummary/internal/logging"
)

// #region globals
var (
	verbose bool
	logJSON bool

	logger *zap.Logger
)
// #endregion globals

// #region root
var rootCmd = &cobra.Command{
	Use:   "runsummary",
	Short: "Summarize batches of agent-based simulation runs",
	Long: `runsummary turns raw simulator exports from a compute cluster into
per-run and per-year intermediate files, then reduces every run to one
summary row describing whether and how the simulated system collapsed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(logging.Options{Verbose: verbose, JSON: logJSON})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log one JSON object per line")
	rootCmd.AddCommand(newRunCmd(), newInspectCmd())
}
// #endregion root

// #region main
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
