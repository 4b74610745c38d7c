// Package input reads citation lines from text, PDF and HTML sources.
package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/doifind/internal/citation"
)

// Kind is an input document type.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindHTML Kind = "html"
)

// Options controls how a document is split into citations.
type Options struct {
	// Entries joins wrapped lines into one citation per "YYYY -" entry.
	// PDF input is always split this way.
	Entries bool
	// MaxPages limits PDF extraction; 0 reads every page.
	MaxPages int
}

var pdfHeader = []byte("%PDF-")

// KindForPath infers the document type from a file extension.
func KindForPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindPDF
	case ".html", ".htm", ".xhtml":
		return KindHTML
	default:
		return KindText
	}
}

// ReadFile reads citation lines from a file. The path "-" reads standard
// input, which may hold text or a PDF.
func ReadFile(path string, opts Options) ([]string, error) {
	if path == "-" {
		return Read(os.Stdin, KindText, opts)
	}

	kind := KindForPath(path)
	if kind == KindPDF {
		text, err := ExtractPDFText(path, opts.MaxPages)
		if err != nil {
			return nil, fmt.Errorf("reading PDF %s: %w", path, err)
		}
		return citation.SplitEntries(text), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	return Read(f, kind, opts)
}

// Read reads citation lines from r. Data starting with the PDF header is
// read as a PDF whatever kind says.
func Read(r io.Reader, kind Kind, opts Options) ([]string, error) {
	if kind == KindHTML {
		return ReadHTML(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if kind == KindPDF || bytes.HasPrefix(data, pdfHeader) {
		text, err := ExtractPDFTextReader(bytes.NewReader(data), int64(len(data)), opts.MaxPages)
		if err != nil {
			return nil, fmt.Errorf("reading PDF: %w", err)
		}
		return citation.SplitEntries(text), nil
	}
	if opts.Entries {
		return citation.SplitEntries(string(data)), nil
	}
	return citation.SplitLines(string(data)), nil
}
