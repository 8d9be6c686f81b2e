package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	log "github.com/sirupsen/logrus"

	"dupfinder/internal/models"
)

// Scanner collects candidate files under a root directory
type Scanner struct {
	exclude    []string
	progressFn func(found int, current string)
	logger     log.FieldLogger
}

// Option configures a Scanner
type Option func(*Scanner)

// WithExclude skips paths matching any of the given gitignore-style patterns
func WithExclude(patterns ...string) Option {
	return func(s *Scanner) {
		s.exclude = append(s.exclude, patterns...)
	}
}

// WithProgress sets a callback invoked for every candidate found
func WithProgress(fn func(found int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// WithLogger sets the logger used for skipped entries
func WithLogger(l log.FieldLogger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScanner creates a new Scanner
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFolder walks root and returns every regular file below it in lexical
// order. A missing or unreadable root is a *models.TraversalError. Entries
// that cannot be read further down are recorded in the result and skipped.
func (s *Scanner) ScanFolder(root string) (*models.ScanResult, error) {
	return s.ScanFolders([]string{root})
}

// ScanFolders scans each root in turn and concatenates their candidates.
// A file reached through overlapping roots is listed once, at its first
// position.
func (s *Scanner) ScanFolders(roots []string) (*models.ScanResult, error) {
	result := &models.ScanResult{Root: strings.Join(roots, string(os.PathListSeparator))}
	seen := make(map[models.FileID]bool)
	for _, root := range roots {
		if err := s.walk(root, result, seen); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Scanner) walk(root string, result *models.ScanResult, seen map[models.FileID]bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return &models.TraversalError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return &models.TraversalError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	var ignore gitignore.IgnoreMatcher
	if len(s.exclude) > 0 {
		ignore = gitignore.NewGitIgnoreFromReader(root, strings.NewReader(strings.Join(s.exclude, "\n")))
	}

	found := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.WithField("path", path).Warnf("skipping unreadable entry: %v", err)
			result.Errors = append(result.Errors, &models.FileError{File: models.FileID(path), Op: "walk", Err: err})
			return nil
		}
		if path == root {
			return nil
		}

		if ignore != nil && ignore.Match(path, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// Symlinks, devices and sockets are not candidates
		if !d.Type().IsRegular() {
			return nil
		}

		id := models.FileID(path)
		if seen[id] {
			return nil
		}
		seen[id] = true
		found++

		result.Files = append(result.Files, id)
		if s.progressFn != nil {
			s.progressFn(len(result.Files), path)
		}
		return nil
	})
	if err != nil {
		return &models.TraversalError{Root: root, Err: err}
	}

	s.logger.WithField("root", root).Debugf("found %d candidate files", found)
	return nil
}
