package resolver

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine index for tests and local runs.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	vec []float32
	row Row
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Add(vec []float32, row Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]float32, len(vec))
	copy(cp, vec)
	m.entries = append(m.entries, memoryEntry{vec: cp, row: row})
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryIndex) Match(ctx context.Context, vec []float32, threshold float64, k int) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 1
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i, e := range m.entries {
		s := cosine(vec, e.vec)
		if threshold > 0 && s <= threshold {
			continue
		}
		hits = append(hits, scored{idx: i, score: s})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]Row, 0, len(hits))
	for _, h := range hits {
		row := make(Row, len(m.entries[h.idx].row)+1)
		for key, v := range m.entries[h.idx].row {
			row[key] = v
		}
		row["similarity"] = h.score
		out = append(out, row)
	}
	return out, nil
}

func (m *MemoryIndex) Scan(ctx context.Context, limit int) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.entries)
	if limit < n {
		n = limit
	}
	if n < 0 {
		n = 0
	}
	out := make([]Row, 0, n)
	for _, e := range m.entries[:n] {
		out = append(out, e.row)
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
