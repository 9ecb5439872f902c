package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/yungbote/gradebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/gradebridge-backend/internal/platform/envutil"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

const (
	defaultLocation   = "us"
	defaultOCRTimeout = 60 * time.Second
)

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
	Timeout          time.Duration
}

func DocumentConfigFromEnv() DocumentConfig {
	return DocumentConfig{
		ProjectID:        strings.TrimSpace(envutil.String("DOCUMENTAI_PROJECT_ID", "")),
		Location:         strings.TrimSpace(envutil.String("DOCUMENTAI_LOCATION", defaultLocation)),
		ProcessorID:      strings.TrimSpace(envutil.String("DOCUMENTAI_PROCESSOR_ID", "")),
		ProcessorVersion: strings.TrimSpace(envutil.String("DOCUMENTAI_PROCESSOR_VERSION", "")),
		Timeout:          envutil.Seconds("DOCUMENTAI_TIMEOUT_SECONDS", defaultOCRTimeout),
	}
}

// Enabled reports whether a processor is configured.
func (c DocumentConfig) Enabled() bool {
	return c.ProjectID != "" && c.ProcessorID != ""
}

func (c DocumentConfig) processorName() string {
	loc := c.Location
	if loc == "" {
		loc = defaultLocation
	}
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, loc, c.ProcessorID)
	if c.ProcessorVersion != "" {
		name += "/processorVersions/" + c.ProcessorVersion
	}
	return name
}

type processClient interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// Document recognizes text in scanned submissions through a Document AI OCR processor.
type Document struct {
	log     *logger.Logger
	client  processClient
	name    string
	timeout time.Duration
}

func NewDocument(ctx context.Context, log *logger.Logger, cfg DocumentConfig) (*Document, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("documentai: DOCUMENTAI_PROJECT_ID and DOCUMENTAI_PROCESSOR_ID are required")
	}
	loc := cfg.Location
	if loc == "" {
		loc = defaultLocation
	}
	// Processors are regional; the default global endpoint rejects them.
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", loc)
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	d := newDocument(log, c, cfg)
	d.log.Info("Document AI initialized", "endpoint", endpoint, "processor", d.name)
	return d, nil
}

func newDocument(log *logger.Logger, c processClient, cfg DocumentConfig) *Document {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultOCRTimeout
	}
	return &Document{
		log:     log.With("service", "gcp.Document"),
		client:  c,
		name:    cfg.processorName(),
		timeout: cfg.Timeout,
	}
}

func (d *Document) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

// RecognizeText returns the recognized text, one paragraph per line and pages separated by a blank line.
func (d *Document) RecognizeText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), d.timeout)
	defer cancel()

	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: data, MimeType: mimeType},
		},
	})
	if err != nil {
		return "", fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return "", nil
	}
	return documentText(resp.Document), nil
}

func documentText(doc *documentaipb.Document) string {
	pages := make([]string, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		if p == nil {
			continue
		}
		var lines []string
		for _, para := range p.Paragraphs {
			if para == nil || para.Layout == nil {
				continue
			}
			if t := strings.TrimSpace(textFromAnchor(doc.Text, para.Layout.TextAnchor)); t != "" {
				lines = append(lines, t)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	if len(pages) == 0 {
		// Some processors fill Text without page paragraphs.
		return strings.TrimSpace(doc.Text)
	}
	return strings.Join(pages, "\n\n")
}

func textFromAnchor(full string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil || full == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.TextSegments {
		if seg == nil {
			continue
		}
		start, end := int(seg.StartIndex), min(int(seg.EndIndex), len(full))
		if start < 0 {
			start = 0
		}
		if start >= end {
			continue
		}
		b.WriteString(full[start:end])
	}
	return b.String()
}
