package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

const pdfMimeType = "application/pdf"

// OCR recognizes text in a scanned document.
type OCR interface {
	RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// PDFExtractor reads the PDF text layer and, when the layer is empty and an
// OCR backend is configured, recognizes the page images instead.
type PDFExtractor struct {
	log       *logger.Logger
	ocr       OCR
	textLayer func([]byte) (string, error)
}

// NewPDFExtractor accepts a nil ocr; the extractor then reads the text layer only.
func NewPDFExtractor(log *logger.Logger, ocr OCR) *PDFExtractor {
	return &PDFExtractor{log: log.With("service", "PDFExtractor"), ocr: ocr, textLayer: ExtractPDFText}
}

func (e *PDFExtractor) Text(ctx context.Context, data []byte) (string, error) {
	if e == nil {
		return ExtractPDFText(data)
	}
	text, err := e.textLayer(data)
	if e.ocr == nil || !errors.Is(err, ErrEmptyPDF) {
		return text, err
	}

	e.log.Info("PDF has no text layer; running OCR", "bytes", len(data))
	out, oerr := e.ocr.RecognizeText(ctx, data, pdfMimeType)
	if oerr != nil {
		e.log.Warn("OCR failed", "error", oerr)
		return "", fmt.Errorf("%w: ocr: %v", ErrEmptyPDF, oerr)
	}
	out = strings.TrimSpace(strings.ReplaceAll(out, "\r\n", "\n"))
	if out == "" {
		return "", ErrEmptyPDF
	}
	return out, nil
}
