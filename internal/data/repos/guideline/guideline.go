package guideline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/gradebridge-backend/internal/data/db"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

type GuidelineRepo interface {
	Create(dbc dbctx.Context, row *types.Guideline) error
	Match(dbc dbctx.Context, embedding []float32, threshold float64, k int) ([]types.GuidelineMatch, error)
	Scan(dbc dbctx.Context, limit int) ([]map[string]any, error)
	Count(dbc dbctx.Context) (int64, error)
	// ListEmbedded returns up to limit guidelines with their vectors, oldest first.
	ListEmbedded(dbc dbctx.Context, limit int) ([]*types.Guideline, error)
}

type guidelineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuidelineRepo(db *gorm.DB, baseLog *logger.Logger) GuidelineRepo {
	return &guidelineRepo{db: db, log: baseLog.With("repo", "GuidelineRepo")}
}

func (r *guidelineRepo) Create(dbc dbctx.Context, row *types.Guideline) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if len(row.Metadata) == 0 {
		row.Metadata = datatypes.JSON([]byte("{}"))
	}
	return dbc.DB(r.db).Create(row).Error
}

type matchRow struct {
	ID         uuid.UUID
	Content    string
	Metadata   datatypes.JSON
	Similarity float64
}

// Match wraps a missing similarity function as types.ErrMatchUnavailable.
func (r *guidelineRepo) Match(dbc dbctx.Context, embedding []float32, threshold float64, k int) ([]types.GuidelineMatch, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding required")
	}
	if k <= 0 {
		k = 1
	}
	var rows []matchRow
	err := dbc.DB(r.db).
		Raw(
			`SELECT id, content, metadata, similarity FROM match_assignments(CAST(? AS vector), ?, ?)`,
			pgvector.NewVector(embedding), threshold, k,
		).
		Scan(&rows).Error
	if err != nil {
		if db.IsMissingRoutine(err) {
			return nil, fmt.Errorf("%w: %v", types.ErrMatchUnavailable, err)
		}
		return nil, err
	}
	out := make([]types.GuidelineMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.GuidelineMatch{
			ID:         row.ID,
			Content:    row.Content,
			Metadata:   row.Metadata,
			Similarity: row.Similarity,
		})
	}
	return out, nil
}

// Scan returns raw rows so columns outside the current model stay visible.
func (r *guidelineRepo) Scan(dbc dbctx.Context, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		return []map[string]any{}, nil
	}
	var rows []map[string]any
	if err := dbc.DB(r.db).Table(types.Guideline{}.TableName()).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		delete(row, "embedding")
	}
	return rows, nil
}

func (r *guidelineRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Guideline{}).Count(&n).Error
	return n, err
}

func (r *guidelineRepo) ListEmbedded(dbc dbctx.Context, limit int) ([]*types.Guideline, error) {
	var out []*types.Guideline
	q := dbc.DB(r.db).Where("embedding IS NOT NULL").Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
