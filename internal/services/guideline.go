package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/ingestion"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/platform/qdrant"
	"github.com/yungbote/gradebridge-backend/internal/realtime"
)

const DefaultGuidelineTitle = "Uploaded Guideline"

var ErrEmptyGuideline = errors.New("guideline question and solution are required")

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// GuidelineMirror copies a stored guideline into a secondary vector index.
type GuidelineMirror interface {
	Mirror(ctx context.Context, g *types.Guideline, vec []float32) error
}

type Publisher interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
}

type GuidelineService interface {
	StoreGuideline(ctx context.Context, question, solution string) (*types.Guideline, error)
	StoreGuidelineWithMetadata(ctx context.Context, text, title string) (*types.Guideline, error)
	StoreGuidelineFromPDF(ctx context.Context, data []byte) (*types.Guideline, error)
	ImportYAML(ctx context.Context, r io.Reader) (int, error)
	// WarmMirror replays stored guidelines into the mirror; used by the memory index at boot.
	WarmMirror(ctx context.Context, limit int) (int, error)
}

type guidelineService struct {
	log       *logger.Logger
	repo      repos.GuidelineRepo
	embedder  Embedder
	mirror    GuidelineMirror
	publisher Publisher
	pdf       *ingestion.PDFExtractor
}

// NewGuidelineService accepts a nil ocr; scanned PDFs then fail as empty.
func NewGuidelineService(baseLog *logger.Logger, repo repos.GuidelineRepo, embedder Embedder, mirror GuidelineMirror, publisher Publisher, ocr ingestion.OCR) GuidelineService {
	return &guidelineService{
		log:       baseLog.With("service", "GuidelineService"),
		repo:      repo,
		embedder:  embedder,
		mirror:    mirror,
		publisher: publisher,
		pdf:       ingestion.NewPDFExtractor(baseLog, ocr),
	}
}

func (s *guidelineService) StoreGuideline(ctx context.Context, question, solution string) (*types.Guideline, error) {
	question = strings.TrimSpace(question)
	solution = strings.TrimSpace(solution)
	if question == "" || solution == "" {
		return nil, ErrEmptyGuideline
	}
	return s.store(ctx, question, map[string]any{"solution": solution})
}

func (s *guidelineService) StoreGuidelineWithMetadata(ctx context.Context, text, title string) (*types.Guideline, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyGuideline
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultGuidelineTitle
	}
	return s.store(ctx, text, map[string]any{"question": title, "solution": text})
}

func (s *guidelineService) StoreGuidelineFromPDF(ctx context.Context, data []byte) (*types.Guideline, error) {
	text, err := s.pdf.Text(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract guideline pdf: %w", err)
	}
	parsed := ingestion.ParseGuidelineText(text)
	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = DefaultGuidelineTitle
	}
	solution := strings.TrimSpace(parsed.Solution)
	if solution == "" {
		solution = strings.TrimSpace(parsed.FullText)
	}
	return s.StoreGuideline(ctx, title, solution)
}

type guidelineImport struct {
	Question string `yaml:"question"`
	Solution string `yaml:"solution"`
}

// ImportYAML stores every {question, solution} entry of a YAML list and stops at the first failure.
func (s *guidelineService) ImportYAML(ctx context.Context, r io.Reader) (int, error) {
	var items []guidelineImport
	if err := yaml.NewDecoder(r).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("decode guideline yaml: %w", err)
	}
	stored := 0
	for i, it := range items {
		if _, err := s.StoreGuideline(ctx, it.Question, it.Solution); err != nil {
			return stored, fmt.Errorf("guideline %d: %w", i, err)
		}
		stored++
	}
	return stored, nil
}

func (s *guidelineService) WarmMirror(ctx context.Context, limit int) (int, error) {
	if s.mirror == nil {
		return 0, nil
	}
	rows, err := s.repo.ListEmbedded(dbctx.Context{Ctx: ctx}, limit)
	if err != nil {
		return 0, fmt.Errorf("list guidelines: %w", err)
	}
	n := 0
	for _, g := range rows {
		vec := g.Embedding.Slice()
		if len(vec) == 0 {
			continue
		}
		if err := s.mirror.Mirror(ctx, g, vec); err != nil {
			return n, err
		}
		n++
	}
	s.log.Info("Guideline mirror warmed", "count", n)
	return n, nil
}

func (s *guidelineService) store(ctx context.Context, content string, meta map[string]any) (*types.Guideline, error) {
	vecs, err := s.embedder.Embed(ctx, []string{content})
	if err != nil {
		return nil, fmt.Errorf("embed guideline: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed guideline: empty embedding")
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	row := &types.Guideline{
		ID:        uuid.New(),
		Content:   content,
		Metadata:  datatypes.JSON(raw),
		Embedding: pgvector.NewVector(vecs[0]),
	}
	if err := s.repo.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, fmt.Errorf("store guideline: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Mirror(ctx, row, vecs[0]); err != nil {
			// The row is the source of truth; the mirror can be rebuilt from it.
			s.log.Warn("Guideline stored but mirror upsert failed", "error", err, "id", row.ID, "transient", qdrant.IsTransportFault(err))
		}
	}
	if s.publisher != nil {
		msg := realtime.SSEMessage{
			Channel: realtime.ChannelGuidelines,
			Event:   realtime.SSEEventGuidelineStored,
			Data:    map[string]any{"id": row.ID.String(), "content": row.Content},
		}
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.log.Warn("Failed to publish guideline event", "error", err, "id", row.ID)
		}
	}
	s.log.Debug("Guideline stored", "id", row.ID)
	return row, nil
}
