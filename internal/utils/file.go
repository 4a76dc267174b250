package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrIsDirectory = errors.New("path is a directory")
)

// InputKind classifies an input file by extension
type InputKind int

const (
	KindUnknown InputKind = iota
	KindJSON
	KindPDF
	KindText
)

func (k InputKind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindPDF:
		return "pdf"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// KindOf returns the input kind for filename
func KindOf(filename string) InputKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return KindJSON
	case ".pdf":
		return KindPDF
	case ".txt", ".text", ".md", ".markdown":
		return KindText
	default:
		return KindUnknown
	}
}

// StatInput returns the file info of a readable regular file. Missing
// files wrap fs.ErrNotExist.
func StatInput(filename string) (os.FileInfo, error) {
	if filename == "" {
		return nil, ErrEmptyPath
	}

	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", filename, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", filename, ErrIsDirectory)
	}
	return info, nil
}

// EnsureParentDir creates the directory holding filename
func EnsureParentDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to filename and
// renames it into place, so readers never see a partial file
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if err := EnsureParentDir(filename); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cannot write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cannot set permissions on %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close %s: %w", tmpName, err)
	}
	return os.Rename(tmpName, filename)
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
