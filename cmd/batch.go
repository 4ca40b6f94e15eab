package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/processors"
	"github.com/username/flatorders/src/validation"
)

var batchFlags struct {
	parserFlags
	output    string
	pretty    bool
	groupSort bool
	force     bool
}

var batchCmd = &cobra.Command{
	Use:   "batch <statement.csv> [more.csv ...]",
	Short: "Convert several statement exports into one merged output",
	Long: `Batch converts multiple statement CSVs in the order given, tags every
record with its source file, and writes one merged output. A file that
fails to parse is reported and skipped; the rest of the batch continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := batchFlags.options()
		if err != nil {
			return err
		}
		opts.GroupSort = batchFlags.groupSort

		if batchFlags.output != "" {
			if msgs := validation.ValidateFilePaths(args, batchFlags.output, batchFlags.force); len(msgs) > 0 {
				return fmt.Errorf("path validation failed:\n  %s", strings.Join(msgs, "\n  "))
			}
			warnCSVExtension(batchFlags.output)
		}

		result, err := processors.ProcessFiles(args, opts, func(p processors.FileProgress) {
			switch p.Status {
			case processors.StatusProcessing:
				logger.L.Info("Processing file", "file", p.FilePath, "index", p.FileIndex+1, "total", p.TotalFiles)
			case processors.StatusCompleted:
				logger.L.Info("File completed", "file", p.FilePath, "records", p.RecordsParsed)
			case processors.StatusFailed:
				logger.L.Warn("File failed", "file", p.FilePath, "error", p.Error)
			}
		})
		if err != nil {
			return err
		}

		logger.L.Info("Batch finished",
			"runID", result.RunID,
			"files", result.TotalFiles,
			"succeeded", result.SuccessfulFiles,
			"failed", result.FailedFiles,
			"records", result.TotalRecords,
			"skippedSections", result.SkippedSections)
		printValidationIssues(result.ValidationIssues)

		if err := writeRecords(cmd.OutOrStdout(), result.Records, batchFlags.output, batchFlags.pretty); err != nil {
			return err
		}

		if result.FailedFiles > 0 {
			return fmt.Errorf("%d of %d files failed", result.FailedFiles, result.TotalFiles)
		}
		return nil
	},
}

func init() {
	batchFlags.register(batchCmd)
	batchCmd.Flags().StringVarP(&batchFlags.output, "output", "o", "", "output path (default stdout NDJSON)")
	batchCmd.Flags().BoolVar(&batchFlags.pretty, "pretty", false, "indent JSON output")
	batchCmd.Flags().BoolVar(&batchFlags.groupSort, "group-sort", false, "group records by section and sort by timestamp")
	batchCmd.Flags().BoolVar(&batchFlags.force, "force", false, "skip the output-overwrites-input check")
	rootCmd.AddCommand(batchCmd)
}

func printValidationIssues(issues map[string]int) {
	if len(issues) == 0 {
		return
	}
	categories := make([]string, 0, len(issues))
	for c := range issues {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		logger.L.Warn("Validation issue", "category", c, "count", issues[c])
	}
}
