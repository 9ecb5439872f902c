package app

import (
	"errors"
	"testing"

	"github.com/yungbote/gradebridge-backend/internal/platform/qdrant"
)

func TestResolveVectorProviderConfigDefaultsToPostgres(t *testing.T) {
	cfg, err := resolveVectorProviderConfig("", "postgres")
	if err != nil {
		t.Fatalf("resolveVectorProviderConfig: %v", err)
	}
	if cfg.Provider != VectorProviderPostgres {
		t.Fatalf("provider: want=%q got=%q", VectorProviderPostgres, cfg.Provider)
	}
}

func TestResolveVectorProviderConfigPostgresNeedsPostgresDriver(t *testing.T) {
	_, err := resolveVectorProviderConfig("postgres", "sqlite")
	var got *VectorProviderConfigError
	if !errors.As(err, &got) {
		t.Fatalf("expected VectorProviderConfigError, got=%T", err)
	}
	if got.Code != VectorProviderConfigErrorNeedsPostgres {
		t.Fatalf("code: want=%q got=%q", VectorProviderConfigErrorNeedsPostgres, got.Code)
	}
}

func TestResolveVectorProviderConfigMemoryOnSQLite(t *testing.T) {
	cfg, err := resolveVectorProviderConfig(" Memory ", "sqlite")
	if err != nil {
		t.Fatalf("resolveVectorProviderConfig: %v", err)
	}
	if cfg.Provider != VectorProviderMemory {
		t.Fatalf("provider: want=%q got=%q", VectorProviderMemory, cfg.Provider)
	}
}

func TestResolveVectorProviderConfigForQdrant(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://qdrant:6333")
	t.Setenv("QDRANT_COLLECTION", "assignments")
	t.Setenv("QDRANT_NAMESPACE_PREFIX", "gb")
	t.Setenv("QDRANT_VECTOR_DIM", "384")

	cfg, err := resolveVectorProviderConfig("qdrant", "sqlite")
	if err != nil {
		t.Fatalf("resolveVectorProviderConfig: %v", err)
	}
	if cfg.Provider != VectorProviderQdrant {
		t.Fatalf("provider: want=%q got=%q", VectorProviderQdrant, cfg.Provider)
	}
	if cfg.Qdrant.URL != "http://qdrant:6333" {
		t.Fatalf("qdrant.URL: want=%q got=%q", "http://qdrant:6333", cfg.Qdrant.URL)
	}
	if cfg.Qdrant.VectorDim != 384 {
		t.Fatalf("qdrant.VectorDim: want=%d got=%d", 384, cfg.Qdrant.VectorDim)
	}
}

func TestResolveVectorProviderConfigForQdrantMissingURL(t *testing.T) {
	t.Setenv("QDRANT_URL", "")
	t.Setenv("QDRANT_COLLECTION", "assignments")
	t.Setenv("QDRANT_VECTOR_DIM", "384")

	_, err := resolveVectorProviderConfig("qdrant", "postgres")
	var got *VectorProviderConfigError
	if !errors.As(err, &got) {
		t.Fatalf("expected VectorProviderConfigError, got=%T", err)
	}
	if got.Code != VectorProviderConfigErrorMissingQdrantURL {
		t.Fatalf("code: want=%q got=%q", VectorProviderConfigErrorMissingQdrantURL, got.Code)
	}
}

func TestResolveVectorProviderConfigUnknown(t *testing.T) {
	_, err := resolveVectorProviderConfig("pinecone", "postgres")
	var got *VectorProviderConfigError
	if !errors.As(err, &got) {
		t.Fatalf("expected VectorProviderConfigError, got=%T", err)
	}
	if got.Code != VectorProviderConfigErrorInvalidProvider {
		t.Fatalf("code: want=%q got=%q", VectorProviderConfigErrorInvalidProvider, got.Code)
	}
}

func TestMapVectorProviderConfigError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want VectorProviderConfigErrorCode
	}{
		{name: "collection", in: &qdrant.ConfigError{Code: qdrant.ConfigErrorMissingCollection}, want: VectorProviderConfigErrorMissingQdrantColl},
		{name: "dim", in: &qdrant.ConfigError{Code: qdrant.ConfigErrorInvalidVectorDim}, want: VectorProviderConfigErrorInvalidQdrantVector},
		{name: "unknown", in: errors.New("boom"), want: VectorProviderConfigErrorUnknownQdrantFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got *VectorProviderConfigError
			if !errors.As(mapVectorProviderConfigError("postgres", tc.in), &got) {
				t.Fatalf("expected VectorProviderConfigError")
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if got.Provider != VectorProviderQdrant {
				t.Fatalf("provider: want=%q got=%q", VectorProviderQdrant, got.Provider)
			}
		})
	}
}
