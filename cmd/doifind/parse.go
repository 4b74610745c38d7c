package main

import (
	"fmt"

	"github.com/matsen/doifind/internal/citation"
	"github.com/matsen/doifind/internal/input"
	"github.com/spf13/cobra"
)

var (
	parseEntries  bool
	parseMaxPages int
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a publication list without searching",
	Long: `Parse a publication list and print the recovered fields for each entry.

Input may be plain text (one citation per line), a PDF or an HTML page.
Use "-" to read text from standard input.

Examples:
  doifind parse publications.txt
  doifind parse cv.pdf --human
  pbpaste | doifind parse - --entries`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseEntries, "entries", false, "Join wrapped lines into one citation per \"YYYY -\" entry")
	parseCmd.Flags().IntVar(&parseMaxPages, "max-pages", 0, "Maximum PDF pages to read (0 = all)")
}

func runParse(cmd *cobra.Command, args []string) error {
	lines, err := input.ReadFile(args[0], input.Options{Entries: parseEntries, MaxPages: parseMaxPages})
	if err != nil {
		return withExitCode(ExitDataError, err)
	}
	if len(lines) == 0 {
		return withExitCode(ExitDataError, fmt.Errorf("no citations found in %s", args[0]))
	}

	records := citation.ParseAll(lines)
	logger.Debug("parsed input", "path", args[0], "records", len(records))

	w := cmd.OutOrStdout()
	if !humanOutput {
		return outputJSON(w, records)
	}
	for i, rec := range records {
		printRecordHuman(w, i, rec)
	}
	return nil
}
