package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	maxPDFRunes     = 15000
	truncatedNotice = "\n\n(...texto truncado...)"
)

// extractPDFText returns the text of every page joined by blank lines.
// Scanned documents without a text layer are rejected.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		// the parser panics on some malformed inputs
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadablePDF, i, err)
		}
		pages = append(pages, content)
	}

	text = strings.TrimSpace(strings.Join(pages, "\n\n"))
	if text == "" {
		if r.NumPage() == 0 {
			return "", ErrEmptyPDF
		}
		return "", ErrScannedPDF
	}
	if utf8.RuneCountInString(text) > maxPDFRunes {
		text = string([]rune(text)[:maxPDFRunes]) + truncatedNotice
	}
	return text, nil
}
