package input

import (
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDFText extracts text from the first maxPages pages of a PDF.
// maxPages <= 0 reads every page.
func ExtractPDFText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return extractPages(r, maxPages), nil
}

// ExtractPDFTextReader extracts text from a PDF reader.
func ExtractPDFTextReader(r io.ReaderAt, size int64, maxPages int) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", err
	}
	return extractPages(pdfReader, maxPages), nil
}

func extractPages(r *pdf.Reader, maxPages int) string {
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String()
}
