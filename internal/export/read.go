package export

import (
	"fmt"
	"os"

	"github.com/matsen/doifind/internal/reference"
	"github.com/matsen/doifind/internal/storage"
)

// ReadResults reads results saved as JSONL or Parquet, chosen by the file
// extension. Other extensions are read as JSONL.
func ReadResults(path string) ([]reference.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results: %w", err)
	}
	defer f.Close()

	if FormatForPath(path) != FormatParquet {
		return storage.DecodeResults(f)
	}

	rows, err := ReadParquet(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	results := make([]reference.Result, len(rows))
	for i, row := range rows {
		results[i] = row.Result()
	}
	return results, nil
}
