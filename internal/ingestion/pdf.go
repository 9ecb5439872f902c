package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF   = errors.New("input is not a PDF document")
	ErrEmptyPDF = errors.New("no extractable text in PDF")
)

// ExtractPDFText returns the document text one visual row per line, pages separated by a blank line.
func ExtractPDFText(data []byte) (text string, err error) {
	if !isPDF(data) {
		return "", ErrNotPDF
	}
	// The reader panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			if line := strings.TrimRight(sb.String(), " \t"); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	out := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if out == "" {
		return "", ErrEmptyPDF
	}
	return out, nil
}

// ExtractDocumentText accepts a PDF or a plain-text/markdown upload.
func ExtractDocumentText(data []byte) (string, error) {
	if isPDF(data) {
		return ExtractPDFText(data)
	}
	if !isProbablyText(data) {
		return "", fmt.Errorf("unsupported document type (first bytes=%s)", firstBytesHex(data, 8))
	}
	out := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if out == "" {
		return "", fmt.Errorf("document is empty")
	}
	return out, nil
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

// isProbablyText: no NULs and mostly printable bytes.
func isProbablyText(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	sample := b[:min(len(b), 4096)]
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func firstBytesHex(b []byte, n int) string {
	n = min(len(b), n)
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, hexdigits[b[i]>>4], hexdigits[b[i]&0x0f])
	}
	return string(out)
}
