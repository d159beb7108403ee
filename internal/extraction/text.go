package extraction

import (
	"fmt"
	"strings"
)

// TextOutcome classifies the result of native text extraction.
type TextOutcome int

const (
	// Extracted means the embedded text is usable as-is.
	Extracted TextOutcome = iota
	// Scanned means the document needs OCR.
	Scanned
)

func (o TextOutcome) String() string {
	if o == Scanned {
		return "scanned"
	}
	return "extracted"
}

// NativeText is the embedded text of a document and its classification.
type NativeText struct {
	Text      string
	PageCount int
	Outcome   TextOutcome
}

// TextExtractor reads embedded text and decides whether OCR is required.
type TextExtractor struct {
	reader    PDFReader
	threshold int
	maxPages  int
}

// NewTextExtractor creates a TextExtractor. Documents whose collapsed text is
// shorter than threshold characters are classified Scanned.
func NewTextExtractor(reader PDFReader, threshold, maxPages int) *TextExtractor {
	return &TextExtractor{reader: reader, threshold: threshold, maxPages: maxPages}
}

// Extract reads path. Images are always Scanned. A PDF over the page limit
// returns ErrTooManyPages.
func (e *TextExtractor) Extract(path string, isPDF bool) (NativeText, error) {
	if !isPDF {
		return NativeText{PageCount: 1, Outcome: Scanned}, nil
	}

	pages, err := e.reader.PageCount(path)
	if err != nil {
		return NativeText{}, err
	}
	if pages > e.maxPages {
		return NativeText{PageCount: pages}, fmt.Errorf(
			"%w: document has %d pages, the limit is %d", ErrTooManyPages, pages, e.maxPages,
		)
	}

	text, err := e.reader.Text(path)
	if err != nil {
		return NativeText{}, err
	}

	outcome := Extracted
	if e.IsScanned(text) {
		outcome = Scanned
	}
	return NativeText{Text: text, PageCount: pages, Outcome: outcome}, nil
}

// IsScanned reports whether text is too sparse to skip OCR.
func (e *TextExtractor) IsScanned(text string) bool {
	return len([]rune(collapse(text))) < e.threshold
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
