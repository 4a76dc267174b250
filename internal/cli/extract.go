package cli

import (
	"encoding/json"
	"fmt"

	"resumeats/internal/ai"
	"resumeats/internal/common"
	"resumeats/internal/errors"
	"resumeats/internal/resume"
	"resumeats/internal/utils"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

const (
	promptYes = "Yes, overwrite"
	promptNo  = "No, keep the file"
)

var errAborted = fmt.Errorf("merge aborted by user")

var extractCmd = &cobra.Command{
	Use:   "extract [resume.pdf|resume.txt]",
	Short: "Import a PDF or text résumé into a structured record",
	Long: `Extract a partial résumé record from a PDF or plain text document.

Heuristic rules find the name, contact data, summary, experience, education,
skills, languages, certifications and projects. With --ai the Gemini model
is asked first and the heuristics are used as a fallback.

With --merge-into the imported data is merged into an existing record:
imported non-empty values win and imported lists replace stored ones.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if extractConfig.OutputFormat == "" {
			extractConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if extractMergeInto != "" && extractConfig.OutputFormat != "json" && extractConfig.OutputFile == "" {
			// A merged record is written back as JSON
			extractConfig.OutputFormat = "json"
		}
		return common.ValidateOutputFormat(extractConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runExtract,
}

var (
	extractConfig    common.CommandConfig
	extractMergeInto string
	extractConfirm   bool
	extractAI        bool

	// confirmOverwrite asks before a file is replaced
	confirmOverwrite = func(path string) (bool, error) {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Overwrite %s with the merged record?", path),
			Items: []string{promptYes, promptNo},
		}
		_, selected, err := prompt.Run()
		if err != nil {
			return false, err
		}
		return selected == promptYes, nil
	}
)

func init() {
	extractCmd.Flags().StringVarP(&extractConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().StringVar(&extractConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	extractCmd.Flags().StringVar(&extractMergeInto, "merge-into", "", "Merge the import into this record file and write it back")
	extractCmd.Flags().BoolVar(&extractConfirm, "confirm", false, "Ask before overwriting the merge target")
	extractCmd.Flags().BoolVar(&extractAI, "ai", false, "Use the configured AI model before the heuristics")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	importer, reader, err := newImporter(ctx, cfg, extractAI, logger)
	if err != nil {
		return err
	}
	if extractAI && !importer.AIEnabled() {
		logger.Warn("AI import requested but not available, using heuristics")
	}

	fileProcessor := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	contents, err := fileProcessor.ReadInputs(args[:1], utils.KindPDF, utils.KindText)
	if err != nil {
		return err
	}

	text, err := reader.Text(contents[0])
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeTextExtraction,
			fmt.Sprintf("Failed to read text from %s", args[0]), err)
	}

	result := importer.Import(ctx, text)
	logger.Info("Resume imported",
		"file", args[0],
		"method", result.Method,
		"text_chars", len(text))

	if extractMergeInto == "" {
		return common.NewOutputHandler(logger).HandleOutput(result.Record, extractConfig)
	}
	return mergeInto(logger, fileProcessor, result)
}

// mergeInto folds the import into the --merge-into record and writes the
// merged record back, or to --output when given
func mergeInto(logger *errors.Logger, fileProcessor *common.FileProcessor, result ai.Result) error {
	contents, err := fileProcessor.ReadInputs([]string{extractMergeInto}, utils.KindJSON)
	if err != nil {
		return err
	}
	base, err := resume.Decode(contents[0])
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRecord,
			fmt.Sprintf("Invalid resume record in %s", extractMergeInto), err)
	}

	merged := resume.Merge(base, result.Record)

	target := extractConfig
	if target.OutputFile == "" {
		target.OutputFile = extractMergeInto
		if extractConfirm {
			ok, err := confirmOverwrite(extractMergeInto)
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !ok {
				return errAborted
			}
		}
	}

	if target.OutputFormat == "json" {
		data, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return errors.NewInternalError(errors.ErrCodeInvalidFormat, "Failed to encode merged record", err)
		}
		if err := fileProcessor.WriteFile(target.OutputFile, string(data)+"\n"); err != nil {
			return err
		}
		logger.Info("Merged record written", "file", target.OutputFile, "method", result.Method)
		return nil
	}

	return common.NewOutputHandler(logger).HandleOutput(merged, target)
}
