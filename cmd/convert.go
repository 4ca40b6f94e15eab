package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/parsers"
	"github.com/username/flatorders/src/validation"
	"github.com/username/flatorders/src/writers"
)

var convertFlags struct {
	parserFlags
	output  string
	pretty  bool
	preview int
	force   bool
}

var convertCmd = &cobra.Command{
	Use:   "convert <statement.csv>",
	Short: "Convert one statement export to flat records",
	Long: `Convert parses a single statement CSV and writes the flattened records
as NDJSON to stdout, or to a file chosen with --output. A .json output path
gets a JSON array, a .xlsx path gets a workbook, anything else gets NDJSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		opts, err := convertFlags.options()
		if err != nil {
			return err
		}

		if convertFlags.output != "" {
			if msgs := validation.ValidateFilePaths([]string{input}, convertFlags.output, convertFlags.force); len(msgs) > 0 {
				return fmt.Errorf("path validation failed:\n  %s", strings.Join(msgs, "\n  "))
			}
			warnCSVExtension(convertFlags.output)
		}

		res, err := parsers.ParseFile(input, opts)
		if err != nil {
			return err
		}

		logger.L.Info("Conversion finished",
			"file", input,
			"records", len(res.Records),
			"rowsScanned", res.RowsScanned,
			"skippedSections", res.SkippedSections)
		printSectionCounts(res.Records)

		if err := writeRecords(cmd.OutOrStdout(), res.Records, convertFlags.output, convertFlags.pretty); err != nil {
			return err
		}

		// The preview is an echo after the full output has been written;
		// it never shortens what lands in the output file.
		if convertFlags.preview > 0 && convertFlags.output != "" {
			n := convertFlags.preview
			if n > len(res.Records) {
				n = len(res.Records)
			}
			return writers.WriteNDJSON(cmd.OutOrStdout(), res.Records[:n])
		}
		return nil
	},
}

func init() {
	convertFlags.register(convertCmd)
	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "output path (default stdout NDJSON)")
	convertCmd.Flags().BoolVar(&convertFlags.pretty, "pretty", false, "indent JSON output")
	convertCmd.Flags().IntVar(&convertFlags.preview, "preview", 0, "echo the first N records to stdout after writing the output")
	convertCmd.Flags().BoolVar(&convertFlags.force, "force", false, "skip the output-overwrites-input check")
	rootCmd.AddCommand(convertCmd)
}

// printSectionCounts logs the per-section data record counts in
// first-seen order.
func printSectionCounts(records []*models.Record) {
	counts := map[string]int{}
	var order []string
	for _, rec := range records {
		if _, ok := counts[rec.Section]; !ok {
			order = append(order, rec.Section)
		}
		if !rec.IsMarker() {
			counts[rec.Section]++
		}
	}
	for _, name := range order {
		logger.L.Info("Section summary", "section", name, "records", counts[name])
	}
}

// warnCSVExtension logs the advisory .csv-extension check; a confusing
// output name is never a reason to abort the run.
func warnCSVExtension(output string) {
	if msg := validation.ValidateCSVExtensionWarning(output); msg != "" {
		logger.L.Warn(msg)
	}
}

// writeRecords routes records to the given writer or a file, picking the
// format from the file extension.
func writeRecords(stdout io.Writer, records []*models.Record, output string, pretty bool) error {
	if output == "" {
		return writers.WriteNDJSON(stdout, records)
	}

	switch strings.ToLower(filepath.Ext(output)) {
	case ".xlsx":
		return writers.WriteXLSX(output, records)
	case ".json":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		return writers.WriteJSONArray(f, records, pretty)
	default:
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		return writers.WriteNDJSON(f, records)
	}
}
