package resolver

import (
	"context"

	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
)

// PostgresIndex serves Match from match_assignments and Scan from the raw table.
type PostgresIndex struct {
	repo repos.GuidelineRepo
}

func NewPostgresIndex(repo repos.GuidelineRepo) *PostgresIndex {
	return &PostgresIndex{repo: repo}
}

func (p *PostgresIndex) Match(ctx context.Context, vec []float32, threshold float64, k int) ([]Row, error) {
	matches, err := p.repo.Match(dbctx.Context{Ctx: ctx}, vec, threshold, k)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(matches))
	for _, m := range matches {
		out = append(out, Row{
			"id":         m.ID.String(),
			"content":    m.Content,
			"metadata":   []byte(m.Metadata),
			"similarity": m.Similarity,
		})
	}
	return out, nil
}

func (p *PostgresIndex) Scan(ctx context.Context, limit int) ([]Row, error) {
	rows, err := p.repo.Scan(dbctx.Context{Ctx: ctx}, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, Row(row))
	}
	return out, nil
}
