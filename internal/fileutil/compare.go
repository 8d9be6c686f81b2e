package fileutil

import (
	"bytes"
	"errors"
	"io"
	"os"

	"dupfinder/internal/models"
)

const chunkSize = 64 * 1024

var openFile = func(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// SizeOf returns the size in bytes of a regular file
func SizeOf(file models.FileID) (int64, error) {
	info, err := os.Stat(string(file))
	if err != nil {
		return 0, &models.FileError{File: file, Op: "size", Err: err}
	}
	if !info.Mode().IsRegular() {
		return 0, &models.FileError{File: file, Op: "size", Err: errors.New("not a regular file")}
	}
	return info.Size(), nil
}

// ContentEquals reports whether two files hold byte-identical content.
// Reading stops at the first chunk that differs. Failures are returned as
// *models.FileError naming the file that could not be read. Both files are
// only read, so a failed Close cannot change the answer and is ignored.
func ContentEquals(a, b models.FileID) (bool, error) {
	fa, err := openFile(string(a))
	if err != nil {
		return false, &models.FileError{File: a, Op: "open", Err: err}
	}
	defer fa.Close()

	fb, err := openFile(string(b))
	if err != nil {
		return false, &models.FileError{File: b, Op: "open", Err: err}
	}
	defer fb.Close()

	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)
	for {
		na, errA := io.ReadFull(fa, bufA)
		if errA != nil && !isEOF(errA) {
			return false, &models.FileError{File: a, Op: "read", Err: errA}
		}
		nb, errB := io.ReadFull(fb, bufB)
		if errB != nil && !isEOF(errB) {
			return false, &models.FileError{File: b, Op: "read", Err: errB}
		}

		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		// A short read means both files ended at the same offset
		if errA != nil || errB != nil {
			return errA != nil && errB != nil, nil
		}
	}
}

func isEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}

// OS reads sizes and contents from the local filesystem
type OS struct{}

func (OS) Size(file models.FileID) (int64, error) {
	return SizeOf(file)
}

func (OS) Equal(a, b models.FileID) (bool, error) {
	return ContentEquals(a, b)
}
