package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// defaultFolder is scanned when no folder argument is given
const defaultFolder = "images"

var (
	workers  int
	excludes []string
	verbose  bool

	logger = log.New()
)

var rootCmd = &cobra.Command{
	Use:   "dupfinder",
	Short: "Find duplicate files in a directory tree",
	Long: `dupfinder is a CLI tool for finding files with identical content.

Files are compared byte by byte; names and locations do not matter. The report
shows the file with the most copies and the file whose copies take the most
disk space.

Example usage:
  dupfinder scan ./photos               # Report duplicates under ./photos
  dupfinder scan --strategy pruned      # Skip files with a unique size
  dupfinder clean ./photos --dry-run    # Preview removal of copies`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
		logger.SetLevel(log.WarnLevel)
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 1, "Concurrent content comparisons per file (1 = sequential)")
	rootCmd.PersistentFlags().StringArrayVar(&excludes, "exclude", nil, "Skip paths matching a gitignore-style pattern (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
}
