package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dupfinder/internal/fileutil"
	"dupfinder/internal/match"
	"dupfinder/internal/models"
	"dupfinder/internal/report"
	"dupfinder/internal/scan"
)

var (
	scanStrategy string
	scanJSON     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [folder...]",
	Short: "Report duplicate files under one or more folders",
	Long: `Scan folders recursively and report duplicate files.

The scan will:
1. Collect every regular file under the folders (symlinks are skipped)
2. Group files with byte-identical content
3. Report the file with the most copies
4. Report the file whose copies waste the most disk space

Strategies:
  naive    Compare every file with every other file
  pruned   Skip files whose size no other file has
  both     Run naive, then pruned, and time each (default)

Files that cannot be read are listed on stderr and left out of the groups.

Example:
  dupfinder scan                       # Scans ./images
  dupfinder scan ./photos --strategy pruned
  dupfinder scan ./photos ./backup      # Duplicates across both folders
  dupfinder scan ./photos --json`,
	Args: cobra.ArbitraryArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanStrategy, "strategy", "s", "both", "Grouping strategy: naive, pruned or both")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(scanCmd)
}

// scanRun is the outcome of one strategy
type scanRun struct {
	Strategy    match.Strategy      `json:"strategy"`
	Runtime     float64             `json:"runtime_seconds"`
	Comparisons int                 `json:"comparisons"`
	Pruned      int                 `json:"pruned"`
	Summary     *report.Summary     `json:"summary"`
	Errors      []*models.FileError `json:"errors,omitempty"`
}

func parseStrategies(name string) ([]match.Strategy, error) {
	switch name {
	case "both":
		return []match.Strategy{match.StrategyNaive, match.StrategyPruned}, nil
	case string(match.StrategyNaive), string(match.StrategyPruned):
		return []match.Strategy{match.Strategy(name)}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want naive, pruned or both)", name)
	}
}

func folderArgs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return []string{defaultFolder}
}

// collect scans roots, reporting progress on w unless w is nil
func collect(roots []string, w io.Writer) (*models.ScanResult, error) {
	opts := []scan.Option{
		scan.WithExclude(excludes...),
		scan.WithLogger(logger),
	}

	lastLine := ""
	clearLine := func() {
		if lastLine != "" {
			fmt.Fprint(w, "\r"+strings.Repeat(" ", len(lastLine))+"\r")
		}
	}
	if w != nil {
		opts = append(opts, scan.WithProgress(func(found int, current string) {
			clearLine()
			lastLine = fmt.Sprintf("Found: %d  %s", found, shortenPath(current, 50))
			fmt.Fprint(w, lastLine)
		}))
	}

	candidates, err := scan.NewScanner(opts...).ScanFolders(roots)
	clearLine()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return candidates, nil
}

func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-(maxLen-3):]
}

func runScan(cmd *cobra.Command, args []string) error {
	strategies, err := parseStrategies(scanStrategy)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	var progress io.Writer
	if !scanJSON {
		progress = stderr
	}
	candidates, err := collect(folderArgs(args), progress)
	if err != nil {
		return err
	}
	report.RenderErrors(stderr, candidates.Errors)

	var fs fileutil.OS
	var runs []*scanRun
	for i, strategy := range strategies {
		m, err := match.New(strategy, fs,
			match.WithWorkers(workers),
			match.WithLogger(logger.WithField("strategy", strategy)),
		)
		if err != nil {
			return err
		}

		if !scanJSON && i > 0 {
			fmt.Fprintf(out, "\n .. and now with the %s strategy:\n\n", strategy)
		}

		start := time.Now()
		result := m.FindGroups(candidates.Files)
		summary := report.Summarize(result.Groups, fs)
		if !scanJSON {
			report.Render(out, summary)
		}
		elapsed := time.Since(start)

		run := &scanRun{
			Strategy:    strategy,
			Runtime:     elapsed.Seconds(),
			Comparisons: result.Comparisons,
			Pruned:      result.Pruned,
			Summary:     summary,
			Errors:      append(result.Errors, summary.Errors...),
		}
		runs = append(runs, run)

		if !scanJSON {
			printRunStats(out, run)
			report.RenderErrors(stderr, run.Errors)
		}
	}

	if scanJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	return nil
}

func printRunStats(w io.Writer, run *scanRun) {
	if run.Strategy == match.StrategyPruned {
		fmt.Fprintf(w, "Comparisons: %d (%d files pruned by size)\n", run.Comparisons, run.Pruned)
	} else {
		fmt.Fprintf(w, "Comparisons: %d\n", run.Comparisons)
	}
	fmt.Fprintf(w, "Runtime: %.2f seconds\n", run.Runtime)
}
