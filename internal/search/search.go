// Package search defines the contract between the batch coordinator and the
// bibliographic search backends, including the transient/permanent error
// taxonomy that drives retries.
package search

import (
	"context"

	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/reference"
)

// Searcher looks up candidate works for a query.
//
// Implementations return errors that classify as ErrTransient or
// ErrPermanent; unclassified errors are treated as permanent.
type Searcher interface {
	Search(ctx context.Context, p query.Params) ([]reference.Candidate, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, p query.Params) ([]reference.Candidate, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, p query.Params) ([]reference.Candidate, error) {
	return f(ctx, p)
}
