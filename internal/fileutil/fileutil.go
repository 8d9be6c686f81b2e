package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// Action selects what happens to a redundant copy
type Action int

const (
	ActionTrash Action = iota
	ActionMove
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionDelete:
		return "permanently delete"
	default:
		return "move to trash"
	}
}

// Disposer removes redundant copies from their original location
type Disposer struct {
	Action Action
	MoveTo string // destination directory for ActionMove
}

// Dispose applies the configured action to path
func (d Disposer) Dispose(path string) error {
	switch d.Action {
	case ActionMove:
		_, err := MoveFile(path, d.MoveTo)
		return err
	case ActionDelete:
		return os.Remove(path)
	default:
		return MoveToTrash(path)
	}
}

// MoveFile moves a file into destDir and returns its new path.
// Name clashes get a numeric suffix (report.txt -> report_1.txt).
func MoveFile(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	name := uniqueName(filepath.Base(src), func(candidate string) bool {
		return !exists(filepath.Join(destDir, candidate))
	})
	dest := filepath.Join(destDir, name)
	return dest, rename(src, dest)
}

func uniqueName(filename string, free func(string) bool) string {
	if free(filename) {
		return filename
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if free(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !os.IsNotExist(err)
}

// rename falls back to copy and delete when src and dest are on different filesystems
func rename(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, in.Close()) }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}

// MoveToTrash moves a file to the user's trash.
// - Linux: ~/.local/share/Trash with a .trashinfo record (freedesktop.org)
// - macOS: ~/.Trash
// - others: ~/dupfinder_trash
func MoveToTrash(path string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	switch runtime.GOOS {
	case "linux":
		return trashFreedesktop(path, filepath.Join(home, ".local", "share", "Trash"))
	case "darwin":
		_, err := MoveFile(path, filepath.Join(home, ".Trash"))
		return err
	default:
		_, err := MoveFile(path, filepath.Join(home, "dupfinder_trash"))
		return err
	}
}

func trashFreedesktop(path, trashRoot string) error {
	filesDir := filepath.Join(trashRoot, "files")
	infoDir := filepath.Join(trashRoot, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// The name must be free in both files/ and info/
	name := uniqueName(filepath.Base(path), func(candidate string) bool {
		return !exists(filepath.Join(filesDir, candidate)) &&
			!exists(filepath.Join(infoDir, candidate+".trashinfo"))
	})

	infoPath := filepath.Join(infoDir, name+".trashinfo")
	record := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		absPath, time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(record), 0644); err != nil {
		return err
	}

	if err := rename(path, filepath.Join(filesDir, name)); err != nil {
		os.Remove(infoPath)
		return err
	}
	return nil
}
