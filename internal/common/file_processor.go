package common

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"resumeats/internal/errors"
	"resumeats/internal/utils"
)

// FileProcessor reads command inputs and writes command outputs
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a new file processor instance. A maxSize of
// zero disables the size check.
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxSize: maxSize}
}

// ReadFile reads an input file, rejecting missing paths, directories and
// files above the size limit
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	info, err := utils.StatInput(filename)
	if err != nil {
		code := errors.ErrCodeFileNotReadable
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.ErrCodeFileNotFound
		}
		return nil, errors.NewValidationError(code, fmt.Sprintf("Invalid input file: %s", filename), err)
	}
	if fp.maxSize > 0 && info.Size() > fp.maxSize {
		return nil, fp.tooLarge(filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	var reader io.Reader = file
	if fp.maxSize > 0 {
		reader = io.LimitReader(file, fp.maxSize+1)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	// the file may have grown since Stat
	if fp.maxSize > 0 && int64(len(content)) > fp.maxSize {
		return nil, fp.tooLarge(filename)
	}

	return content, nil
}

func (fp *FileProcessor) tooLarge(filename string) error {
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("File %s exceeds the %s limit", filename, utils.FormatFileSize(fp.maxSize)), nil)
}

// ReadInputs reads every input file in order. Files whose extension is not
// one of the expected kinds are read anyway with a warning.
func (fp *FileProcessor) ReadInputs(filenames []string, expected ...utils.InputKind) ([][]byte, error) {
	contents := make([][]byte, len(filenames))

	for i, filename := range filenames {
		if len(expected) > 0 && !slices.Contains(expected, utils.KindOf(filename)) {
			fp.logger.Warn("Unexpected file extension", "filename", filename, "kind", utils.KindOf(filename).String())
		}

		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = content
	}

	return contents, nil
}

// WriteFile atomically replaces filename with content, creating parent
// directories as needed
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.WriteFileAtomic(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}
