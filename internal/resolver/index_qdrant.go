package resolver

import (
	"context"
	"fmt"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/qdrant"
)

// QdrantIndex reads guideline points. Payloads carry "content" and "metadata".
type QdrantIndex struct {
	store qdrant.Store
}

func NewQdrantIndex(store qdrant.Store) *QdrantIndex {
	return &QdrantIndex{store: store}
}

func (q *QdrantIndex) Match(ctx context.Context, vec []float32, threshold float64, k int) ([]Row, error) {
	points, err := q.store.Search(ctx, vec, threshold, k)
	if err != nil {
		if qdrant.IsCollectionMissing(err) {
			return nil, fmt.Errorf("%w: %v", types.ErrMatchUnavailable, err)
		}
		return nil, err
	}
	out := make([]Row, 0, len(points))
	for _, p := range points {
		out = append(out, pointRow(p))
	}
	return out, nil
}

func (q *QdrantIndex) Scan(ctx context.Context, limit int) ([]Row, error) {
	points, err := q.store.Scroll(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(points))
	for _, p := range points {
		out = append(out, pointRow(p))
	}
	return out, nil
}

func pointRow(p qdrant.ScoredPoint) Row {
	row := make(Row, len(p.Payload)+2)
	for k, v := range p.Payload {
		row[k] = v
	}
	row["id"] = p.ID
	row["similarity"] = p.Score
	return row
}
