package match

import "dupfinder/internal/models"

// NaiveMatcher compares every file against every other remaining file
type NaiveMatcher struct {
	fs   FileSystem
	opts options
}

// NewNaiveMatcher creates a new NaiveMatcher
func NewNaiveMatcher(fs FileSystem, opts ...Option) *NaiveMatcher {
	return &NaiveMatcher{fs: fs, opts: newOptions(opts)}
}

// FindGroups finds groups of files with identical content.
// Groups appear in the order they were discovered.
func (m *NaiveMatcher) FindGroups(files []models.FileID) *models.GroupResult {
	result := &models.GroupResult{}
	newGrouper(m.fs, m.opts, result).run(files)
	return result
}
