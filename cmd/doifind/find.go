package main

import (
	"fmt"
	"strings"

	"github.com/matsen/doifind/internal/batch"
	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/reference"
	"github.com/spf13/cobra"
)

var (
	findTitle   string
	findAuthors []string
	findYear    int
	findNoCache bool
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Look up the DOI of a single publication",
	Long: `Look up the DOI of a single publication by title, authors and year.

The same strict matching as the batch command applies: a DOI is returned only
when the title, authors and year of a candidate all agree.

Examples:
  doifind find --title "Deep learning for X" --author "Smith J" --year 2019
  doifind find --title "Deep learning for X" --human`,
	Args: cobra.NoArgs,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringVarP(&findTitle, "title", "t", "", "Publication title (required)")
	findCmd.Flags().StringArrayVarP(&findAuthors, "author", "a", nil, "Author name; repeat for several authors")
	findCmd.Flags().IntVarP(&findYear, "year", "y", 0, "Publication year")
	findCmd.Flags().BoolVar(&findNoCache, "no-cache", false, "Bypass the lookup cache")
	_ = findCmd.MarkFlagRequired("title")
}

func runFind(cmd *cobra.Command, args []string) error {
	rec, err := findRecord(findTitle, findAuthors, findYear)
	if err != nil {
		return withExitCode(ExitDataError, err)
	}

	searcher, cleanup, err := newSearcher(!findNoCache)
	if err != nil {
		return err
	}
	defer cleanup()

	coord, err := batch.New(cfg.Batch(), searcher, batch.WithLogger(logger))
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	res := coord.Lookup(cmd.Context(), rec)
	logger.Debug("lookup finished", "status", res.Match.Status, "score", res.Match.Score, "attempts", res.Match.Attempts)

	w := cmd.OutOrStdout()
	if humanOutput {
		printResultHuman(w, 0, res)
	} else {
		resp := FindResponse{Record: res.Record, Match: res.Match}
		if res.Match.DOI != "" {
			resp.DOIURL = doi.URL(res.Match.DOI)
		}
		if err := outputJSON(w, resp); err != nil {
			return err
		}
	}

	if res.Match.Status == reference.SearchFailed {
		return fmt.Errorf("search failed: %s", res.Match.Reason)
	}
	return nil
}

// findRecord builds a record from command-line fields. The fields go through
// the same query derivation as parsed citations, so the title is
// whitespace-normalized and must not be empty.
func findRecord(title string, authors []string, year int) (reference.Record, error) {
	params, err := query.BuildFields(title, authors, year)
	if err != nil {
		return reference.Record{}, fmt.Errorf("title must not be empty: %w", err)
	}
	title = params.Title
	if year != 0 && (year < 1000 || year > 9999) {
		return reference.Record{}, fmt.Errorf("year must have four digits, got %d", year)
	}

	var names []string
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}

	status := reference.ParsePartial
	if year != 0 && len(names) > 0 {
		status = reference.ParseComplete
	}

	raw := fmt.Sprintf("%q", title)
	if len(names) > 0 {
		raw = strings.Join(names, ", ") + ". " + raw
	}
	if year != 0 {
		raw = fmt.Sprintf("%d - %s", year, raw)
	}

	return reference.Record{
		Raw:     raw,
		Year:    year,
		Authors: names,
		Title:   title,
		Status:  status,
	}, nil
}
