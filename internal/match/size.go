package match

import (
	"errors"
	"slices"

	log "github.com/sirupsen/logrus"

	"dupfinder/internal/models"
)

// SizeMatcher drops files whose size is unique before comparing contents.
// Content equality implies size equality, so a file with a unique size cannot
// have a duplicate. It finds the same groups as NaiveMatcher with fewer
// comparisons.
type SizeMatcher struct {
	fs   FileSystem
	opts options
}

// NewSizeMatcher creates a new SizeMatcher
func NewSizeMatcher(fs FileSystem, opts ...Option) *SizeMatcher {
	return &SizeMatcher{fs: fs, opts: newOptions(opts)}
}

// FindGroups finds groups of files with identical content
func (m *SizeMatcher) FindGroups(files []models.FileID) *models.GroupResult {
	result := &models.GroupResult{}
	g := newGrouper(m.fs, m.opts, result)

	sizes := make(map[models.FileID]int64, len(files))
	counts := make(map[int64]int)
	sized := make([]models.FileID, 0, len(files))
	for _, f := range files {
		size, err := m.fs.Size(f)
		if err != nil {
			g.fail(sizeError(err, f))
			continue
		}
		sizes[f] = size
		counts[size]++
		sized = append(sized, f)
	}

	candidates := slices.DeleteFunc(sized, func(f models.FileID) bool {
		return counts[sizes[f]] < 2
	})
	result.Pruned = len(files) - len(result.Errors) - len(candidates)

	m.opts.logger.WithFields(log.Fields{
		"candidates": len(candidates),
		"pruned":     result.Pruned,
	}).Debug("pruned files with unique sizes")

	// Files that survived pruning may still differ in size from each other
	g.canMatch = func(a, b models.FileID) bool {
		return sizes[a] == sizes[b]
	}
	g.run(candidates)
	return result
}

func sizeError(err error, f models.FileID) *models.FileError {
	var fe *models.FileError
	if errors.As(err, &fe) && fe.File == f {
		return fe
	}
	return &models.FileError{File: f, Op: "size", Err: err}
}
