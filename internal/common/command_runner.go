package common

import (
	"context"

	"resumeats/internal/errors"
)

// OperationFunc turns the contents of the input files into a printable result
type OperationFunc[Output any] func(ctx context.Context, contents [][]byte) (Output, error)

// RunFileCommand encapsulates the common logic of file-based CLI commands:
// read and validate the inputs, run the operation, format the result.
func RunFileCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	operation OperationFunc[Output],
) error {
	fileProcessor := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ReadInputs(args, cmdConfig.InputKinds...)
	if err != nil {
		return err
	}

	result, err := operation(ctx, contents)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
