package report

import (
	"errors"

	"dupfinder/internal/models"
)

// Sizer returns the size of a file in bytes
type Sizer interface {
	Size(file models.FileID) (int64, error)
}

// Summary is the structured outcome of a report.
// Selected groups are sorted copies: the first member is the original, the
// rest are its copies.
type Summary struct {
	Empty            bool                   `json:"empty"`
	Groups           int                    `json:"groups"`
	MostDuplicated   *models.DuplicateGroup `json:"most_duplicated,omitempty"`
	MostRecoverable  *models.DuplicateGroup `json:"most_recoverable,omitempty"`
	FileSize         int64                  `json:"file_size"`         // size of one member of MostRecoverable
	RecoverableBytes int64                  `json:"recoverable_bytes"` // (members-1) * FileSize
	TotalRecoverable int64                  `json:"total_recoverable"` // over every group that could be sized
	Errors           []*models.FileError    `json:"errors,omitempty"`
}

// Summarize selects the group with the most members and the group whose
// redundant copies take the most space. Ties go to the group that comes
// first in groups, which is the order the matcher discovered them in.
//
// A group whose representative cannot be sized is left out of the space
// selection and its error is recorded in the summary.
func Summarize(groups []*models.DuplicateGroup, sizer Sizer) *Summary {
	s := &Summary{Groups: len(groups)}
	if len(groups) == 0 {
		s.Empty = true
		return s
	}

	var mostDuplicated *models.DuplicateGroup
	for _, g := range groups {
		if mostDuplicated == nil || g.Len() > mostDuplicated.Len() {
			mostDuplicated = g
		}
	}
	s.MostDuplicated = mostDuplicated.Sorted()

	var best *models.DuplicateGroup
	for _, g := range groups {
		sorted := g.Sorted()
		size, err := sizer.Size(sorted.Original())
		if err != nil {
			s.Errors = append(s.Errors, asFileError(err, sorted.Original()))
			continue
		}

		recoverable := int64(sorted.Len()-1) * size
		s.TotalRecoverable += recoverable
		if best == nil || recoverable > s.RecoverableBytes {
			best = sorted
			s.FileSize = size
			s.RecoverableBytes = recoverable
		}
	}
	s.MostRecoverable = best

	return s
}

func asFileError(err error, file models.FileID) *models.FileError {
	var fe *models.FileError
	if errors.As(err, &fe) {
		return fe
	}
	return &models.FileError{File: file, Op: "size", Err: err}
}
