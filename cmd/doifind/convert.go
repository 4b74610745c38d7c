package main

import (
	"github.com/matsen/doifind/internal/export"
	"github.com/spf13/cobra"
)

var (
	convertOutput string
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert <results.jsonl|results.parquet>",
	Short: "Re-export saved batch results in another format",
	Long: `Read results written by batch as JSONL or Parquet and write them in
another format. No lookups are made.

Examples:
  doifind convert results.parquet -o results.csv
  doifind convert run.jsonl --format bibtex`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default stdout)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format: csv, jsonl, bibtex, parquet")
}

// ConvertResponse is the JSON output of convert.
type ConvertResponse struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Format  string `json:"format"`
	Results int    `json:"results"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	format, err := batchOutputFormat(convertFormat, convertOutput)
	if err != nil {
		return err
	}

	results, err := export.ReadResults(args[0])
	if err != nil {
		return withExitCode(ExitDataError, err)
	}
	logger.Debug("read results", "path", args[0], "results", len(results))

	if convertOutput == "" {
		return export.Write(cmd.OutOrStdout(), format, results)
	}
	if _, err := writeResultsFile(convertOutput, format, false, results); err != nil {
		return withExitCode(ExitDataError, err)
	}

	if humanOutput {
		outputHuman(cmd.OutOrStdout(), "Converted %d results to %s\n", len(results), convertOutput)
		return nil
	}
	return outputJSON(cmd.OutOrStdout(), ConvertResponse{
		Input:   args[0],
		Output:  convertOutput,
		Format:  string(format),
		Results: len(results),
	})
}
