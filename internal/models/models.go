package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// FileID identifies a candidate file. In practice it is the file's path.
type FileID string

// DuplicateGroup is a set of files with byte-identical content
type DuplicateGroup struct {
	Files []FileID `json:"files"`
}

// Len returns the number of members in the group
func (g *DuplicateGroup) Len() int {
	return len(g.Files)
}

// Sorted returns a copy of the group with members in lexicographic order.
// The receiver is left untouched.
func (g *DuplicateGroup) Sorted() *DuplicateGroup {
	files := slices.Clone(g.Files)
	slices.Sort(files)
	return &DuplicateGroup{Files: files}
}

// Original returns the first member. Call on a sorted group.
func (g *DuplicateGroup) Original() FileID {
	if len(g.Files) == 0 {
		return ""
	}
	return g.Files[0]
}

// Copies returns every member except the original
func (g *DuplicateGroup) Copies() []FileID {
	if len(g.Files) < 2 {
		return nil
	}
	return g.Files[1:]
}

// GroupResult holds the outcome of a grouping run
type GroupResult struct {
	Groups      []*DuplicateGroup `json:"groups"`
	Errors      []*FileError      `json:"errors,omitempty"`
	Comparisons int               `json:"comparisons"`
	Pruned      int               `json:"pruned"` // files dropped for having a unique size
}

// ScanResult holds the candidate files found under a root directory
type ScanResult struct {
	Root   string       `json:"root"`
	Files  []FileID     `json:"files"`
	Errors []*FileError `json:"errors,omitempty"`
}

// FileError reports a failure to size, open or read a single file.
// The file is excluded from the run; other files are unaffected.
// When Other is set the failure belongs to the pair (Other, File) and
// neither file is excluded.
type FileError struct {
	File  FileID `json:"file"`
	Other FileID `json:"other,omitempty"`
	Op    string `json:"op"`
	Err   error  `json:"-"`
}

func (e *FileError) Error() string {
	if e.Other != "" {
		return fmt.Sprintf("%s %s with %s: %v", e.Op, e.Other, e.File, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func (e *FileError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		File  FileID `json:"file"`
		Other FileID `json:"other,omitempty"`
		Op    string `json:"op"`
		Error string `json:"error"`
	}{e.File, e.Other, e.Op, msg})
}

// TraversalError reports that the root directory could not be walked
type TraversalError struct {
	Root string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("cannot traverse %s: %v", e.Root, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}
