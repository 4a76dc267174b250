package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"resumeats/internal/errors"
	"resumeats/internal/formatters"
	"resumeats/internal/utils"
)

// StdoutPath names standard output as an explicit --output target
const StdoutPath = "-"

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MaxFileSize  int64
	InputKinds   []utils.InputKind // Expected input kinds, others only warn
}

// OutputHandler renders command results through the formatter registry
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
	stdout        io.Writer
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
		stdout:        os.Stdout,
	}
}

// HandleOutput renders data in the configured format and sends it to the
// output file, or to stdout when none (or "-") is set
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	rendered, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Cannot render %T as %s", data, config.OutputFormat), err)
	}
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}

	if config.OutputFile == "" || config.OutputFile == StdoutPath {
		if _, err := io.WriteString(oh.stdout, rendered); err != nil {
			return errors.NewIOError(errors.ErrCodeFileWriteFailed, "Failed to write to stdout", err)
		}
		return nil
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, rendered); err != nil {
		return err
	}
	oh.logger.Info("Output written",
		"file", config.OutputFile,
		"format", config.OutputFormat,
		"size", utils.FormatFileSize(int64(len(rendered))))
	return nil
}
