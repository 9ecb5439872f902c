package app

import (
	"context"
	"fmt"

	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/platform/qdrant"
	"github.com/yungbote/gradebridge-backend/internal/resolver"
	"github.com/yungbote/gradebridge-backend/internal/services"
)

var newQdrantStore = qdrant.NewStore

// vectorBackend is what the resolver searches plus where stored guidelines are copied.
// Mirror is nil when the relational store is also the search index.
type vectorBackend struct {
	Provider VectorProvider
	Index    resolver.Index
	Mirror   services.GuidelineMirror
	// Warm means the index starts empty and must be replayed from the relational store.
	Warm bool
}

func buildVectorBackend(ctx context.Context, log *logger.Logger, cfg VectorProviderConfig, guidelines repos.GuidelineRepo) (vectorBackend, error) {
	log.Info("Selecting vector provider", "provider", cfg.Provider)

	switch cfg.Provider {
	case VectorProviderQdrant:
		log.Info(
			"Qdrant vector provider",
			"qdrant_url", cfg.Qdrant.URL,
			"qdrant_collection", cfg.Qdrant.Collection,
			"qdrant_namespace_prefix", cfg.Qdrant.NamespacePrefix,
			"qdrant_vector_dim", cfg.Qdrant.VectorDim,
		)
		store, err := newQdrantStore(ctx, log, cfg.Qdrant)
		if err != nil {
			return vectorBackend{}, fmt.Errorf("init qdrant store: %w", err)
		}
		return vectorBackend{
			Provider: cfg.Provider,
			Index:    resolver.Instrument(string(cfg.Provider), resolver.NewQdrantIndex(store)),
			Mirror:   services.NewQdrantMirror(store),
		}, nil
	case VectorProviderMemory:
		idx := resolver.NewMemoryIndex()
		return vectorBackend{
			Provider: cfg.Provider,
			Index:    resolver.Instrument(string(cfg.Provider), idx),
			Mirror:   services.NewMemoryMirror(idx),
			Warm:     true,
		}, nil
	default:
		return vectorBackend{
			Provider: VectorProviderPostgres,
			Index:    resolver.Instrument(string(VectorProviderPostgres), resolver.NewPostgresIndex(guidelines)),
		}, nil
	}
}
