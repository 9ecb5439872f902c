package guideline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"github.com/yungbote/gradebridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
)

func TestGuidelineRepoSQLite(t *testing.T) {
	gdb := testutil.SQLite(t, true)
	repo := NewGuidelineRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	for _, q := range []string{"What is photosynthesis?", "What is photosynthesis?"} {
		row := &types.Guideline{
			Content:   q,
			Metadata:  datatypes.JSON([]byte(`{"solution":"Light to chemical energy"}`)),
			Embedding: pgvector.NewVector([]float32{1, 0, 0}),
		}
		if err := repo.Create(dbc, row); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if row.ID == uuid.Nil || row.CreatedAt.IsZero() {
			t.Fatalf("Create: id/created_at not assigned: %+v", row)
		}
	}

	n, err := repo.Count(dbc)
	if err != nil || n != 2 {
		t.Fatalf("Count: want=2 got=%d err=%v", n, err)
	}

	rows, err := repo.Scan(dbc, 50)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Scan rows: want=2 got=%d", len(rows))
	}
	if _, ok := rows[0]["embedding"]; ok {
		t.Fatalf("Scan: embedding column should be dropped")
	}
	if _, ok := rows[0]["metadata"]; !ok {
		t.Fatalf("Scan: metadata column missing: %v", rows[0])
	}

	embedded, err := repo.ListEmbedded(dbc, 0)
	if err != nil || len(embedded) != 2 {
		t.Fatalf("ListEmbedded: want=2 got=%d err=%v", len(embedded), err)
	}
	if got := embedded[0].Embedding.Slice(); len(got) != 3 || got[0] != 1 {
		t.Fatalf("ListEmbedded vector: got=%v", got)
	}

	limited, err := repo.Scan(dbc, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("Scan limit: want=1 got=%d err=%v", len(limited), err)
	}
}

func TestGuidelineRepoMatchUnavailableOnSQLite(t *testing.T) {
	gdb := testutil.SQLite(t, true)
	repo := NewGuidelineRepo(gdb, testutil.Logger(t))

	_, err := repo.Match(dbctx.Context{Ctx: context.Background()}, []float32{1, 0, 0}, 0, 1)
	if !errors.Is(err, types.ErrMatchUnavailable) {
		t.Fatalf("Match: want ErrMatchUnavailable got=%v", err)
	}
}

func TestGuidelineRepoMatchPostgres(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewGuidelineRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	for content, vec := range map[string][]float32{
		"photosynthesis": {1, 0, 0},
		"mitochondria":   {0, 1, 0},
	} {
		if err := repo.Create(dbc, &types.Guideline{
			Content:   content,
			Metadata:  datatypes.JSON([]byte(`{"solution":"` + content + ` answer"}`)),
			Embedding: pgvector.NewVector(vec),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := repo.Match(dbc, []float32{0.9, 0.1, 0}, 0, 1)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 1 || got[0].Content != "photosynthesis" {
		t.Fatalf("Match: want photosynthesis got=%+v", got)
	}
	if got[0].Similarity <= 0 {
		t.Fatalf("Match similarity: got=%v", got[0].Similarity)
	}
}
