// Package storage handles persistence: the SQLite lookup cache and JSONL
// result files.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matsen/doifind/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadResults reads all results from a JSONL file.
func ReadResults(path string) ([]reference.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file returns empty slice
		}
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	return DecodeResults(f)
}

// DecodeResults reads JSONL results from r.
func DecodeResults(r io.Reader) ([]reference.Result, error) {
	var results []reference.Result
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var res reference.Result
		if err := json.Unmarshal(line, &res); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		results = append(results, res)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}

	return results, nil
}

// AppendResult adds a result to the end of a JSONL file.
func AppendResult(path string, res reference.Result) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening results file for append: %w", err)
	}
	defer f.Close()

	return EncodeResults(f, []reference.Result{res})
}

// WriteResults writes all results to a JSONL file, replacing existing content.
func WriteResults(path string, results []reference.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}

	if err := EncodeResults(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeResults writes results to w, one JSON object per line.
func EncodeResults(w io.Writer, results []reference.Result) error {
	for i, res := range results {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encoding result %d: %w", i, err)
		}

		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing result %d: %w", i, err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	return nil
}
