package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dupfinder/internal/fileutil"
	"dupfinder/internal/match"
	"dupfinder/internal/models"
	"dupfinder/internal/report"
)

var (
	dryRun    bool
	moveTo    string
	permanent bool
	noConfirm bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [folder...]",
	Short: "Remove or move duplicate copies",
	Long: `Remove duplicate files, keeping one original of each group.

The clean command will:
1. Group files with identical content (size-pruned strategy)
2. Keep the first file of each group in path order
3. Move the other copies to trash (default) or delete them permanently

Options:
  --dry-run     Preview what would be removed without actually removing
  --permanent   Delete files permanently instead of moving to trash
  --move-to     Move duplicates to a specific folder
  --yes         Skip confirmation prompt

Example:
  dupfinder clean ./photos                     # Move copies to trash
  dupfinder clean ./photos --permanent         # Delete permanently
  dupfinder clean ./photos --move-to=./backup  # Move to specific folder
  dupfinder clean ./photos --dry-run           # Preview only
  dupfinder clean ./photos ./backup            # Copies across both folders`,
	Args: cobra.ArbitraryArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview without removing")
	cleanCmd.Flags().BoolVar(&permanent, "permanent", false, "Delete permanently instead of moving to trash")
	cleanCmd.Flags().StringVar(&moveTo, "move-to", "", "Move duplicates to this folder")
	cleanCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func disposer() fileutil.Disposer {
	switch {
	case moveTo != "":
		return fileutil.Disposer{Action: fileutil.ActionMove, MoveTo: moveTo}
	case permanent:
		return fileutil.Disposer{Action: fileutil.ActionDelete}
	default:
		return fileutil.Disposer{Action: fileutil.ActionTrash}
	}
}

func runClean(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	candidates, err := collect(folderArgs(args), stderr)
	if err != nil {
		return err
	}

	var fs fileutil.OS
	m := match.NewSizeMatcher(fs,
		match.WithWorkers(workers),
		match.WithLogger(logger),
	)
	result := m.FindGroups(candidates.Files)
	report.RenderErrors(stderr, append(candidates.Errors, result.Errors...))

	if len(result.Groups) == 0 {
		fmt.Fprintln(out, "No duplicates found")
		return nil
	}

	var toRemove []models.FileID
	var totalSize int64
	copySize := make(map[models.FileID]int64)
	for _, group := range result.Groups {
		sorted := group.Sorted()
		size, err := fs.Size(sorted.Original())
		if err != nil {
			var fe *models.FileError
			if !errors.As(err, &fe) {
				fe = &models.FileError{File: sorted.Original(), Op: "size", Err: err}
			}
			report.RenderErrors(stderr, []*models.FileError{fe})
			continue
		}
		for _, c := range sorted.Copies() {
			toRemove = append(toRemove, c)
			copySize[c] = size
		}
		totalSize += size * int64(len(sorted.Copies()))
	}

	if len(toRemove) == 0 {
		fmt.Fprintln(out, "No files to remove.")
		return nil
	}

	d := disposer()
	action := d.Action.String()
	if d.Action == fileutil.ActionMove {
		action = fmt.Sprintf("move to %s", moveTo)
	}

	fmt.Fprintf(out, "Will %s %d files (%s) from %d groups\n\n",
		action, len(toRemove), humanize.Bytes(uint64(totalSize)), len(result.Groups))

	if dryRun {
		fmt.Fprintln(out, "Files to be removed:")
		for _, path := range toRemove {
			fmt.Fprintf(out, "  %s\n", path)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "(Dry run - no files were modified)")
		return nil
	}

	if !noConfirm {
		fmt.Fprintf(out, "Are you sure you want to %s %d files? [y/N]: ", action, len(toRemove))
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	var processed, failed int
	var reclaimed int64
	for _, path := range toRemove {
		if err := d.Dispose(string(path)); err != nil {
			color.New(color.FgRed).Fprintf(stderr, "Failed to process %s: %v\n", path, err)
			failed++
			continue
		}
		logger.WithField("file", path).Debug(action)
		processed++
		reclaimed += copySize[path]
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Processed %d files (%s)\n", processed, action)
	fmt.Fprintf(out, "Space reclaimed: %s\n", humanize.Bytes(uint64(reclaimed)))
	if failed > 0 {
		fmt.Fprintf(out, "Failed: %d files\n", failed)
	}

	return nil
}
