package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"dupfinder/internal/models"
)

const header = "== == Duplicate File Finder Report == =="

var (
	bold   = color.New(color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

// Render writes a human readable report of s to w
func Render(w io.Writer, s *Summary) {
	cyan.Fprintln(w, header)

	if s.Empty {
		fmt.Fprintln(w, "No duplicates found")
		return
	}

	group := s.MostDuplicated
	fmt.Fprintln(w, "The file with the most duplicates is:")
	bold.Fprintf(w, " %s\n", group.Original())
	printCopies(w, group)

	fmt.Fprintln(w)
	if s.MostRecoverable == nil {
		yellow.Fprintln(w, "Recoverable disk space is unknown: no duplicate group could be sized.")
		return
	}

	group = s.MostRecoverable
	fmt.Fprintf(w, "The most disk space (%d bytes, %s) could be recovered by deleting copies of this file:\n",
		s.RecoverableBytes, humanize.Bytes(uint64(s.RecoverableBytes)))
	bold.Fprintf(w, " %s\n", group.Original())
	printCopies(w, group)

	fmt.Fprintln(w)
	green.Fprintf(w, "%d duplicate groups, %s recoverable in total\n",
		s.Groups, humanize.Bytes(uint64(s.TotalRecoverable)))
}

func printCopies(w io.Writer, group *models.DuplicateGroup) {
	copies := group.Copies()
	fmt.Fprintf(w, "Here are its %d copies:\n", len(copies))
	for _, c := range copies {
		fmt.Fprintln(w, c)
	}
}

// RenderErrors lists files that could not be read during the run
func RenderErrors(w io.Writer, errs []*models.FileError) {
	if len(errs) == 0 {
		return
	}

	yellow.Fprintf(w, "Could not read %d file(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
