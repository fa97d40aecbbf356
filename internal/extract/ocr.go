package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"

	"flowdocs/internal/config"
	"flowdocs/pkg/logger"
)

// OCR recognizes text in scanned PDFs by rendering each page to an image and
// running it through tesseract with a dual-language model.
type OCR struct {
	log       *logger.Logger
	languages []string
	dpi       float64
}

// NewOCR creates an OCR engine from configuration. Returns nil when OCR is
// disabled, which the Extractor treats as "no fallback available".
func NewOCR(log *logger.Logger, cfg config.OCRConfig) *OCR {
	if !cfg.Enabled {
		return nil
	}
	return &OCR{log: log, languages: cfg.Languages, dpi: cfg.DPI}
}

// TextFromPDF renders every page of the PDF at path and concatenates the OCR
// output. Pages that fail to render or recognize are skipped.
func (o *OCR) TextFromPDF(ctx context.Context, path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf for ocr: %w", err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(o.languages...); err != nil {
		return "", fmt.Errorf("set ocr languages: %w", err)
	}

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		png, err := doc.ImagePNG(i, o.dpi)
		if err != nil {
			o.log.WithError(err).Warn(fmt.Sprintf("failed to render page %d", i+1))
			continue
		}
		if err := client.SetImageFromBytes(png); err != nil {
			o.log.WithError(err).Warn(fmt.Sprintf("failed to load page %d image", i+1))
			continue
		}
		pageText, err := client.Text()
		if err != nil {
			o.log.WithError(err).Warn(fmt.Sprintf("ocr failed on page %d", i+1))
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	return b.String(), nil
}
