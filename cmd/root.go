package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/username/flatorders/src/config"
	"github.com/username/flatorders/src/logger"
	"github.com/username/flatorders/src/parsers"
	"github.com/username/flatorders/src/sections"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "flatorders",
	Short: "Convert brokerage statement CSV exports into flat order records",
	Long: `flatorders reads the sectioned CSV exports a brokerage statement page
produces (Filled Orders, Canceled Orders, Working Orders and friends) and
flattens them into one uniform stream of JSON records, one object per order
row, with section markers and order amendments carried along.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
		level := config.Cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger.InitLogger(level)
	},
	SilenceUsage: true,
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// parserFlags are the conversion options shared by convert and batch.
type parserFlags struct {
	maxRows           int
	qtyUnsigned       bool
	includeRolling    bool
	keepEmptySections bool
	noStatusFilter    bool
	patternsFile      string
}

func (f *parserFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "stop scanning after this many rows (0 = no limit)")
	cmd.Flags().BoolVar(&f.qtyUnsigned, "qty-unsigned", false, "emit quantities as absolute values")
	cmd.Flags().BoolVar(&f.includeRolling, "include-rolling", false, "recognize Rolling Strategies sections")
	cmd.Flags().BoolVar(&f.keepEmptySections, "keep-empty-sections", false, "emit markers for sections with no data rows")
	cmd.Flags().BoolVar(&f.noStatusFilter, "no-status-filter", false, "keep TRIGGERED and REJECTED rows")
	cmd.Flags().StringVar(&f.patternsFile, "section-patterns-file", "", "JSON or YAML file replacing the built-in section patterns")
}

func (f *parserFlags) options() (parsers.Options, error) {
	opts := parsers.DefaultOptions()
	opts.MaxRows = f.maxRows
	opts.QtyUnsigned = f.qtyUnsigned
	opts.IncludeRolling = f.includeRolling
	opts.SkipEmptySections = !f.keepEmptySections
	opts.StatusFilter = !f.noStatusFilter

	patternsFile := f.patternsFile
	if patternsFile == "" {
		patternsFile = config.Cfg.SectionPatternsFile
	}
	if patternsFile != "" {
		table, err := sections.LoadPatternFile(patternsFile)
		if err != nil {
			return opts, fmt.Errorf("loading section patterns: %w", err)
		}
		opts.Patterns = table
	}
	return opts, nil
}
