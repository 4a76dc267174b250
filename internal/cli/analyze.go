package cli

import (
	"context"
	"fmt"

	"resumeats/internal/ats"
	"resumeats/internal/common"
	"resumeats/internal/errors"
	"resumeats/internal/resume"
	"resumeats/internal/utils"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume.json]",
	Short: "Score a résumé record against ATS heuristics",
	Long: `Analyze a structured résumé record (JSON) and print its ATS report.

The report includes:
- Total and maximum score with the percentage
- Per-criterion feedback (personal data, summary, experience, education,
  skills and keyword density)
- Up to five prioritized recommendations

Feedback text is available in Portuguese (pt), English (en) and Spanish (es).`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if analyzeLocale != "" {
			if _, ok := ats.ParseLocale(analyzeLocale); !ok {
				return errors.NewValidationError(errors.ErrCodeInvalidLocale,
					fmt.Sprintf("Unsupported locale %q, expected one of pt, en, es", analyzeLocale), nil)
			}
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeLocale string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeLocale, "locale", "l", "", "Feedback language: pt, en or es (default from config)")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.SupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
	_ = analyzeCmd.RegisterFlagCompletionFunc("locale", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		locales := make([]string, len(ats.SupportedLocales))
		for i, l := range ats.SupportedLocales {
			locales[i] = string(l)
		}
		return locales, cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	engine, stop, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer stop()

	locale, _ := ats.ParseLocale(analyzeLocale)
	analyzeConfig.MaxFileSize = cfg.App.MaxFileSize
	analyzeConfig.InputKinds = []utils.InputKind{utils.KindJSON}

	err = common.RunFileCommand(cmd.Context(), logger, analyzeConfig, args,
		func(ctx context.Context, contents [][]byte) (ats.Report, error) {
			record, err := resume.Decode(contents[0])
			if err != nil {
				return ats.Report{}, errors.NewValidationError(errors.ErrCodeInvalidRecord,
					fmt.Sprintf("Invalid resume record in %s", args[0]), err)
			}

			logger.Info("Starting ATS analysis",
				"file", args[0],
				"locale", locale,
				"output_format", analyzeConfig.OutputFormat)

			return engine.Analyze(record, locale), nil
		})
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	logger.Info("ATS analysis completed successfully")
	return nil
}
