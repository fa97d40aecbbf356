package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"flowdocs/pkg/logger"
)

// Extractor pulls text out of PDF files. Direct text extraction is tried
// first; when a document yields no text at all (scanned pages), the OCR
// fallback takes over. Extraction never fails outward: every error degrades
// to an empty string and is logged.
type Extractor struct {
	log *logger.Logger
	ocr *OCR // nil disables the fallback
}

// NewExtractor creates an Extractor. ocr may be nil.
func NewExtractor(log *logger.Logger, ocr *OCR) *Extractor {
	return &Extractor{log: log, ocr: ocr}
}

// Text returns the trimmed, concatenated page text of the PDF at path, or an
// empty string when nothing could be extracted.
func (e *Extractor) Text(ctx context.Context, path string) string {
	text, err := e.direct(path)
	if err != nil {
		e.log.WithError(err).Warn(fmt.Sprintf("direct extraction failed for %s", path))
		text = ""
	}
	if strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}

	if e.ocr == nil {
		return ""
	}

	e.log.Info(fmt.Sprintf("no text found in %s, falling back to OCR", path))
	text, err = e.ocr.TextFromPDF(ctx, path)
	if err != nil {
		e.log.WithError(err).Warn(fmt.Sprintf("OCR failed for %s", path))
		return ""
	}
	return strings.TrimSpace(text)
}

// direct extracts embedded text page by page. Pages that fail are skipped.
func (e *Extractor) direct(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.log.WithError(err).Warn(fmt.Sprintf("no text on page %d of %s", i, path))
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	return b.String(), nil
}
