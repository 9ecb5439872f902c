package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/observability"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

// Embedder turns text into vectors. The OpenAI client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Index is the guideline store as seen by the resolver.
// Match returns types.ErrMatchUnavailable (wrapped) when similarity search is not installed.
type Index interface {
	Match(ctx context.Context, vec []float32, threshold float64, k int) ([]Row, error)
	Scan(ctx context.Context, limit int) ([]Row, error)
}

const (
	DefaultMatchThreshold = 0.0
	DefaultScanLimit      = 50
)

type Config struct {
	MatchThreshold float64
	ScanLimit      int
}

type Resolver struct {
	log      *logger.Logger
	embedder Embedder
	index    Index
	cfg      Config
}

func New(log *logger.Logger, embedder Embedder, index Index, cfg Config) *Resolver {
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = DefaultScanLimit
	}
	return &Resolver{
		log:      log.With("service", "GuidelineResolver"),
		embedder: embedder,
		index:    index,
		cfg:      cfg,
	}
}

// Resolve finds the reference solution for query. It never returns an error:
// store failures are folded into the Outcome.
func (r *Resolver) Resolve(ctx context.Context, query string) Outcome {
	ctx, span := observability.StartSpan(ctx, "resolver.Resolve")
	defer span.End()

	out := r.resolve(ctx, query)

	span.SetAttributes(
		attribute.String("resolver.outcome", out.Kind.String()),
		attribute.String("resolver.path", out.Path),
	)
	if out.Err != nil {
		span.SetStatus(codes.Error, out.Err.Error())
	}
	observability.Current().ObserveResolution(out.Kind.String(), out.Path)
	return out
}

func (r *Resolver) resolve(ctx context.Context, query string) Outcome {
	var faults []error
	attempted := 0

	attempted++
	text, err := r.primary(ctx, query)
	switch {
	case err == nil && text != "":
		return found(text, PathPrimary)
	case errors.Is(err, types.ErrMatchUnavailable):
		r.log.Warn("Similarity search unavailable; using scan fallback", "error", err)
	case err != nil:
		r.log.Warn("Similarity search failed; using scan fallback", "error", err)
		faults = append(faults, err)
	}

	attempted++
	text, err = r.scan(ctx)
	switch {
	case err == nil && text != "":
		return found(text, PathScan)
	case err != nil:
		r.log.Warn("Guideline scan failed", "error", err)
		faults = append(faults, err)
	}

	if len(faults) == attempted {
		return Outcome{Kind: OutcomeTransportFault, Path: PathNone, Err: errors.Join(faults...)}
	}
	return Outcome{Kind: OutcomeNotFound, Path: PathNone}
}

func (r *Resolver) primary(ctx context.Context, query string) (string, error) {
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return "", fmt.Errorf("embed query: empty embedding")
	}
	rows, err := r.index.Match(ctx, vecs[0], r.cfg.MatchThreshold, 1)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	text, _ := ExtractSolution(rows[0])
	return text, nil
}

func (r *Resolver) scan(ctx context.Context) (string, error) {
	rows, err := r.index.Scan(ctx, r.cfg.ScanLimit)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		if text, ok := ExtractSolution(row); ok {
			return text, nil
		}
	}
	return "", nil
}
