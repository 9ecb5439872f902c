package resolver

import (
	"context"
	"errors"
	"time"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/observability"
)

type instrumentedIndex struct {
	provider string
	inner    Index
	metrics  *observability.Metrics
}

// Instrument records latency and status for every index call.
func Instrument(provider string, inner Index) Index {
	if inner == nil {
		return nil
	}
	return &instrumentedIndex{
		provider: provider,
		inner:    inner,
		metrics:  observability.Current(),
	}
}

func (s *instrumentedIndex) Match(ctx context.Context, vec []float32, threshold float64, k int) ([]Row, error) {
	start := time.Now()
	out, err := s.inner.Match(ctx, vec, threshold, k)
	s.observe("match", err, time.Since(start))
	return out, err
}

func (s *instrumentedIndex) Scan(ctx context.Context, limit int) ([]Row, error) {
	start := time.Now()
	out, err := s.inner.Scan(ctx, limit)
	s.observe("scan", err, time.Since(start))
	return out, err
}

func (s *instrumentedIndex) observe(operation string, err error, dur time.Duration) {
	if s == nil || s.metrics == nil {
		return
	}
	status := "success"
	switch {
	case errors.Is(err, types.ErrMatchUnavailable):
		status = "unavailable"
	case err != nil:
		status = "error"
	}
	s.metrics.ObserveVectorIndexOperation(s.provider, operation, status, dur)
}
