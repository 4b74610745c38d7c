package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/matsen/doifind/internal/reference"
)

// WriteParquet writes results as a Parquet file with one row per result.
func WriteParquet(w io.Writer, results []reference.Result) error {
	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(Rows(results)); err != nil {
		pw.Close()
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads rows written by WriteParquet.
func ReadParquet(r io.ReaderAt) ([]Row, error) {
	reader := parquet.NewGenericReader[Row](r)
	defer reader.Close()

	var out []Row
	rows := make([]Row, 128) // Read in batches
	for {
		n, err := reader.Read(rows)
		out = append(out, rows[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading parquet rows: %w", err)
		}
	}
}
