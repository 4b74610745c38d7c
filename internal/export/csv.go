package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/matsen/doifind/internal/reference"
)

// CSVHeader is the header row of CSV exports.
var CSVHeader = []string{
	"Year", "Authors", "Title", "DOI", "DOI URL", "Venue", "Additional Info",
	"Status", "Score", "Parse Status", "Reason", "Raw",
}

// WriteCSV writes results as CSV with a header row.
func WriteCSV(w io.Writer, results []reference.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range Rows(results) {
		year := ""
		if row.Year > 0 {
			year = strconv.FormatInt(row.Year, 10)
		}
		record := []string{
			year, row.Authors, row.Title, row.DOI, row.DOIURL, row.Venue, row.Extra,
			row.Status, strconv.FormatFloat(row.Score, 'f', 3, 64), row.ParseStatus, row.Reason, row.Raw,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
