// Package doi provides helpers for Digital Object Identifiers.
package doi

import (
	"regexp"
	"strings"
)

// ResolverURL is the base URL of the DOI resolver.
const ResolverURL = "https://doi.org/"

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Normalize normalizes a DOI to a consistent format for comparison.
// It removes common URL prefixes (https://doi.org/, doi:) and converts to lowercase.
func Normalize(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			lower = strings.TrimSpace(lower[len(prefix):])
			break
		}
	}
	return lower
}

// IsValid performs basic validation on a DOI: it must start with "10." and
// have a non-empty suffix after the first slash.
func IsValid(doi string) bool {
	doi = strings.TrimSpace(doi)
	if len(doi) < 6 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	if slashIdx == -1 || slashIdx >= len(doi)-1 {
		return false
	}
	return true
}

// URL returns the resolver URL for a DOI, or "" if the DOI is not valid.
func URL(doi string) string {
	if !IsValid(doi) {
		return ""
	}
	return ResolverURL + doi
}

// Find returns the first valid DOI embedded in text, or "".
func Find(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Remove trailing punctuation
		match = strings.TrimRight(match, ".,;:)")
		if IsValid(match) {
			return match
		}
	}
	return ""
}
