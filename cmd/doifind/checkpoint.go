package main

import (
	"log/slog"

	"github.com/matsen/doifind/internal/reference"
	"github.com/matsen/doifind/internal/storage"
)

// checkpoint persists batch results as they finish so an interrupted run
// can resume. Failed searches are not carried over and are looked up again.
type checkpoint struct {
	path  string
	prior map[string]reference.Result // keyed by raw citation
}

func openCheckpoint(path string) (*checkpoint, error) {
	results, err := storage.ReadResults(path)
	if err != nil {
		return nil, err
	}
	cp := &checkpoint{path: path, prior: make(map[string]reference.Result, len(results))}
	for _, res := range results {
		if res.Match.Status == reference.SearchFailed {
			continue
		}
		cp.prior[res.Record.Raw] = res
	}
	return cp, nil
}

// split separates records already resolved by the checkpoint from those
// still pending. resolved has one slot per record; pending holds the input
// indices of the records to look up.
func (cp *checkpoint) split(records []reference.Record) (resolved []reference.Result, pending []int) {
	resolved = make([]reference.Result, len(records))
	for i, rec := range records {
		if res, ok := cp.prior[rec.Raw]; ok {
			resolved[i] = res
			continue
		}
		pending = append(pending, i)
	}
	return resolved, pending
}

// record appends one finished result. Failures are logged; the final
// rewrite still captures every result.
func (cp *checkpoint) record(logger *slog.Logger) func(int, reference.Result) {
	return func(_ int, res reference.Result) {
		if err := storage.AppendResult(cp.path, res); err != nil {
			logger.Warn("checkpoint append failed", "path", cp.path, "error", err)
		}
	}
}

// finish rewrites the checkpoint with the merged results of the run.
func (cp *checkpoint) finish(results []reference.Result) error {
	return storage.WriteResults(cp.path, results)
}
