package services

import (
	"context"
	"encoding/json"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/qdrant"
	"github.com/yungbote/gradebridge-backend/internal/resolver"
)

func guidelinePayload(g *types.Guideline) map[string]any {
	var meta map[string]any
	if len(g.Metadata) > 0 {
		if err := json.Unmarshal(g.Metadata, &meta); err != nil {
			meta = nil
		}
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return map[string]any{
		"id":       g.ID.String(),
		"content":  g.Content,
		"metadata": meta,
	}
}

type qdrantMirror struct {
	store qdrant.Store
}

func NewQdrantMirror(store qdrant.Store) GuidelineMirror {
	return &qdrantMirror{store: store}
}

func (m *qdrantMirror) Mirror(ctx context.Context, g *types.Guideline, vec []float32) error {
	return m.store.Upsert(ctx, []qdrant.Point{{
		ID:      g.ID.String(),
		Vector:  vec,
		Payload: guidelinePayload(g),
	}})
}

type memoryMirror struct {
	index *resolver.MemoryIndex
}

func NewMemoryMirror(index *resolver.MemoryIndex) GuidelineMirror {
	return &memoryMirror{index: index}
}

func (m *memoryMirror) Mirror(ctx context.Context, g *types.Guideline, vec []float32) error {
	m.index.Add(vec, guidelinePayload(g))
	return nil
}
