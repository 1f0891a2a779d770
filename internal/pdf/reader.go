package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageBreak separates pages in extracted text
const PageBreak = "\n\n--- Page Break ---\n\n"

// Reader extracts plain text from PDF files
type Reader struct {
	maxTextSize int
}

// NewReader creates a new PDF reader
func NewReader() *Reader {
	return &Reader{
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// ReadText extracts the text of every page of the PDF at path
func (r *Reader) ReadText(path string) (string, int, error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return r.extractTextContent(pdfReader), pdfReader.NumPage(), nil
}

// extractTextContent extracts text content from a PDF reader, skipping
// pages that fail to decode
func (r *Reader) extractTextContent(pdfReader *pdf.Reader) string {
	var builder strings.Builder
	totalLength := 0

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if totalLength+len(content) > r.maxTextSize {
			remaining := r.maxTextSize - totalLength
			if remaining > 0 {
				builder.WriteString(content[:remaining])
			}
			break
		}

		builder.WriteString(content)
		totalLength += len(content)

		if pageNum < pdfReader.NumPage() {
			builder.WriteString(PageBreak)
		}
	}

	return builder.String()
}
