package export

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/matsen/doifind/internal/doi"
	"github.com/matsen/doifind/internal/reference"
)

// BibTeXIndex indexes existing BibTeX entries for deduplication.
type BibTeXIndex struct {
	// Keys maps citation keys to true for existence check
	Keys map[string]bool
	// DOIs maps DOI values to citation keys
	DOIs map[string]string
}

// NewBibTeXIndex creates an empty BibTeX index.
func NewBibTeXIndex() *BibTeXIndex {
	return &BibTeXIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// HasEntry returns true if the entry already exists (by DOI or key).
// DOI is the primary match; citation key is the fallback if no DOI.
func (idx *BibTeXIndex) HasEntry(key, id string) bool {
	// Primary: match by DOI if available
	if id != "" {
		_, exists := idx.DOIs[doi.Normalize(id)]
		return exists
	}

	// Fallback: match by citation key
	return idx.Keys[key]
}

var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	// Match DOI field: doi = {value} or doi = "value"
	doiFieldRegex = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// ParseBibTeXFile builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist or is empty.
func ParseBibTeXFile(path string) (*BibTeXIndex, error) {
	idx := NewBibTeXIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		// Check for entry start
		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		// Check for DOI field
		if matches := doiFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			d := doi.Normalize(matches[1])
			if d != "" && currentKey != "" {
				idx.DOIs[d] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// AppendBibTeX appends entries for results not already present in the .bib
// file at path, and returns how many were added. Existing entries are
// recognized by DOI, or by citation key for results without a DOI.
func AppendBibTeX(path string, results []reference.Result) (int, error) {
	idx, err := ParseBibTeXFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	keys := newKeySet(idx.Keys)
	var b strings.Builder
	added := 0
	for _, res := range results {
		if res.Record.Title == "" {
			continue
		}
		base := CiteKey(res.Record)
		if idx.HasEntry(base, res.Match.DOI) {
			continue
		}
		key := keys.unique(base)
		if res.Match.DOI != "" {
			idx.DOIs[res.Match.DOI] = key
		}
		b.WriteString("\n")
		b.WriteString(ToBibTeX(res, key))
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := appendToBibFile(path, b.String()); err != nil {
		return 0, err
	}
	return added, nil
}

// appendToBibFile appends BibTeX content to a file.
func appendToBibFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(content)
	return err
}
