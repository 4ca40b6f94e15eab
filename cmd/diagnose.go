package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/username/flatorders/src/models"
	"github.com/username/flatorders/src/processors"
	"github.com/username/flatorders/src/writers"
)

var diagnoseFlags struct {
	issueTypes    []string
	showAllFields bool
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <records.ndjson>",
	Short: "Report structural-completeness issues in converted records",
	Long: `Diagnose reads a previously converted NDJSON file (use "-" for stdin)
and prints a count per issue category. With --type (repeatable) it
additionally lists each record carrying that issue; --show-all-fields
dumps the listed records in full.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var records []*models.Record
		var err error
		if args[0] == "-" {
			records, err = writers.ReadNDJSON(os.Stdin)
		} else {
			f, openErr := os.Open(args[0])
			if openErr != nil {
				return fmt.Errorf("opening records file: %w", openErr)
			}
			defer f.Close()
			records, err = writers.ReadNDJSON(f)
		}
		if err != nil {
			return err
		}

		counts := processors.Validate(records)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "records: %d\n", len(records))
		if len(counts) == 0 {
			fmt.Fprintln(out, "no issues found")
		} else {
			categories := make([]string, 0, len(counts))
			for c := range counts {
				categories = append(categories, c)
			}
			sort.Strings(categories)
			for _, c := range categories {
				fmt.Fprintf(out, "%-28s %d\n", c, counts[c])
			}
		}

		for _, category := range diagnoseFlags.issueTypes {
			listIssueRecords(cmd, records, category, diagnoseFlags.showAllFields)
		}
		return nil
	},
}

func init() {
	diagnoseCmd.Flags().StringSliceVarP(&diagnoseFlags.issueTypes, "type", "t", nil, "list records carrying this issue category (repeatable)")
	diagnoseCmd.Flags().BoolVarP(&diagnoseFlags.showAllFields, "show-all-fields", "a", false, "dump the full record for each listed hit")
	rootCmd.AddCommand(diagnoseCmd)
}

// listIssueRecords re-runs validation record by record so the per-record
// hits for one category can be printed with their provenance.
func listIssueRecords(cmd *cobra.Command, records []*models.Record, category string, showAll bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nrecords with %s:\n", category)
	found := 0
	for _, rec := range records {
		single := processors.Validate([]*models.Record{rec})
		if single[category] == 0 {
			continue
		}
		found++
		if showAll {
			if data, err := json.Marshal(rec); err == nil {
				fmt.Fprintf(out, "  %s\n", data)
			}
			continue
		}
		symbol := ""
		if rec.Order != nil && rec.Order.Symbol != nil {
			symbol = *rec.Order.Symbol
		}
		source := ""
		if rec.SourceFile != nil {
			source = *rec.SourceFile + " "
		}
		fmt.Fprintf(out, "  %srow %d section=%s symbol=%s\n", source, rec.RowIndex, rec.Section, symbol)
	}
	if found == 0 {
		fmt.Fprintln(out, "  none")
	}
}
