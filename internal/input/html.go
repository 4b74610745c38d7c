package input

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadHTML extracts citation lines from an HTML publication list. List items
// are used when present, otherwise paragraphs.
func ReadHTML(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	for _, selector := range []string{"li", "p"} {
		var lines []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			// Nested lists are visited on their own.
			own := s.Clone()
			own.Find("ul, ol").Remove()
			if text := strings.Join(strings.Fields(own.Text()), " "); text != "" {
				lines = append(lines, text)
			}
		})
		if len(lines) > 0 {
			return lines, nil
		}
	}
	return nil, nil
}
