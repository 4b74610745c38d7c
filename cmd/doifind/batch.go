package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/doifind/internal/batch"
	"github.com/matsen/doifind/internal/citation"
	"github.com/matsen/doifind/internal/export"
	"github.com/matsen/doifind/internal/input"
	"github.com/matsen/doifind/internal/reference"
	"github.com/spf13/cobra"
)

var (
	batchOutput      string
	batchFormat      string
	batchEntries     bool
	batchNoCache     bool
	batchAppend      bool
	batchConcurrency int
	batchMaxPages    int
	batchCheckpoint  string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Find DOIs for every publication in a list",
	Long: `Parse a publication list, search for each entry and export the results.

Each entry ends up matched (with a DOI), without a confident match, or with a
failed search. Failed searches never abort the run. On interrupt, entries not
yet started are reported as cancelled and the partial results are still
written.

Without --output, results are written to standard output (JSONL by default).
The output format is taken from --format, else from the output extension.

Examples:
  doifind batch publications.txt -o results.csv
  doifind batch cv.pdf -o refs.bib --append
  doifind batch publications.html --format parquet -o results.parquet --human
  doifind batch publications.txt --checkpoint run.jsonl -o results.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Output file (default stdout)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "Output format: csv, jsonl, bibtex, parquet")
	batchCmd.Flags().BoolVar(&batchEntries, "entries", false, "Join wrapped lines into one citation per \"YYYY -\" entry")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "Bypass the lookup cache")
	batchCmd.Flags().BoolVar(&batchAppend, "append", false, "Append new entries to an existing .bib file (bibtex only)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "j", 0, "Concurrent lookups (overrides config)")
	batchCmd.Flags().IntVar(&batchMaxPages, "max-pages", 0, "Maximum PDF pages to read (0 = all)")
	batchCmd.Flags().StringVar(&batchCheckpoint, "checkpoint", "", "JSONL file recording results; entries already resolved there are not looked up again")
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := batchOutputFormat(batchFormat, batchOutput)
	if err != nil {
		return err
	}
	if batchAppend && (format != export.FormatBibTeX || batchOutput == "") {
		return fmt.Errorf("--append requires --output with the bibtex format")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = batchConcurrency
	}

	lines, err := input.ReadFile(path, input.Options{Entries: batchEntries, MaxPages: batchMaxPages})
	if err != nil {
		return withExitCode(ExitDataError, err)
	}
	if len(lines) == 0 {
		return withExitCode(ExitDataError, fmt.Errorf("no citations found in %s", path))
	}
	records := citation.ParseAll(lines)

	var cp *checkpoint
	if batchCheckpoint != "" {
		cp, err = openCheckpoint(batchCheckpoint)
		if err != nil {
			return withExitCode(ExitDataError, err)
		}
	}

	searcher, cleanup, err := newSearcher(!batchNoCache)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []batch.Option{batch.WithLogger(logger)}
	if humanOutput {
		opts = append(opts, batch.WithProgress(progressPrinter(cmd.ErrOrStderr())))
	}
	if cp != nil {
		opts = append(opts, batch.WithResult(cp.record(logger)))
	}
	coord, err := batch.New(cfg.Batch(), searcher, opts...)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	logger.Debug("parsed input", "path", path, "records", len(records), "source", cfg.Source)
	var results []reference.Result
	if cp == nil {
		results = coord.Process(cmd.Context(), records)
	} else {
		var pending []int
		results, pending = cp.split(records)
		logger.Info("resuming from checkpoint", "path", batchCheckpoint, "resolved", len(records)-len(pending))
		todo := make([]reference.Record, len(pending))
		for j, i := range pending {
			todo[j] = records[i]
		}
		for j, res := range coord.Process(cmd.Context(), todo) {
			results[pending[j]] = res
		}
		if err := cp.finish(results); err != nil {
			return withExitCode(ExitDataError, err)
		}
	}
	summary := batch.Summarize(results)

	resp := BatchResponse{
		Input:   path,
		Output:  batchOutput,
		Format:  string(format),
		Summary: summary,
		HitRate: summary.HitRate(),
	}

	if batchOutput == "" {
		if err := writeResultsStdout(cmd.OutOrStdout(), format, results); err != nil {
			return err
		}
		if humanOutput {
			printSummaryHuman(cmd.ErrOrStderr(), summary)
		}
	} else {
		n, err := writeResultsFile(batchOutput, format, batchAppend, results)
		if err != nil {
			return withExitCode(ExitDataError, err)
		}
		resp.Appended = n
		if humanOutput {
			printSummaryHuman(cmd.OutOrStdout(), summary)
			if batchAppend {
				outputHuman(cmd.OutOrStdout(), "Appended %d entries to %s\n", n, batchOutput)
			} else {
				outputHuman(cmd.OutOrStdout(), "Wrote %s\n", batchOutput)
			}
		} else if err := outputJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
	}

	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("interrupted with %d of %d publications cancelled: %w", summary.Cancelled, summary.Total, err)
	}
	return nil
}

// batchOutputFormat resolves the export format from --format and the
// output path. Parquet needs a file.
func batchOutputFormat(flag, output string) (export.Format, error) {
	format := export.FormatJSONL
	switch {
	case flag != "":
		f, err := export.ParseFormat(flag)
		if err != nil {
			return "", err
		}
		format = f
	case output != "":
		format = export.FormatForPath(output)
	}
	if format == export.FormatParquet && output == "" {
		return "", errors.New("parquet output requires --output")
	}
	return format, nil
}

// writeResultsStdout writes results to w. In human mode without an explicit
// format the results are listed instead of exported.
func writeResultsStdout(w io.Writer, format export.Format, results []reference.Result) error {
	if humanOutput && batchFormat == "" {
		for i, res := range results {
			printResultHuman(w, i, res)
		}
		return nil
	}
	return export.Write(w, format, results)
}

// writeResultsFile exports results to path and returns the number of
// entries appended in append mode.
func writeResultsFile(path string, format export.Format, appendBib bool, results []reference.Result) (int, error) {
	if appendBib {
		return export.AppendBibTeX(path, results)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating output: %w", err)
	}
	if err := export.Write(f, format, results); err != nil {
		f.Close()
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}
	return 0, nil
}

// progressPrinter reports progress on a single terminal line.
func progressPrinter(w io.Writer) func(done, total int) {
	return func(done, total int) {
		fmt.Fprintf(w, "\rLooked up %d/%d", done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}
