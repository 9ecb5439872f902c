package evaluation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/gradebridge-backend/internal/data/db"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

const (
	ShapeFull = "full"
	ShapeCore = "core"
)

type EvaluationRepo interface {
	// Append reports which row shape was written (ShapeFull or ShapeCore).
	// A core-shape write leaves the key to the legacy table and resets row.ID to uuid.Nil.
	Append(dbc dbctx.Context, row *types.EvaluationRecord) (string, error)
	InsertMany(dbc dbctx.Context, rows []*types.EvaluationRecord) (int, error)
	FetchAll(dbc dbctx.Context) []types.EvaluationRecord
	FetchRecent(dbc dbctx.Context, limit int) ([]types.EvaluationRecord, error)
	Count(dbc dbctx.Context) (int64, error)

	DeleteAll(dbc dbctx.Context) (int64, error)
	DeleteBefore(dbc dbctx.Context, cutoff time.Time) (int64, error)
	DeleteAfter(dbc dbctx.Context, cutoff time.Time) (int64, error)
	DeleteMatching(dbc dbctx.Context, topics, students []string) (int64, error)
}

type evaluationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRepo {
	return &evaluationRepo{db: db, log: baseLog.With("repo", "EvaluationRepo")}
}

func (r *evaluationRepo) Append(dbc dbctx.Context, row *types.EvaluationRecord) (string, error) {
	if row == nil {
		return "", nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	err := r.createFull(dbc, row)
	if err == nil {
		return ShapeFull, nil
	}
	if !db.IsMissingColumn(err) {
		return "", err
	}

	r.log.Warn("Evaluations table lacks extended columns; retrying with core fields", "error", err)
	core := map[string]any{
		"topic":        row.Topic,
		"student_name": row.StudentName,
		"score":        row.Score,
		"grade":        row.Grade,
		"feedback":     row.Feedback,
		"created_at":   row.CreatedAt,
	}
	if err := dbc.DB(r.db).Table(row.TableName()).Create(core).Error; err != nil {
		return "", err
	}
	row.ID = uuid.Nil
	return ShapeCore, nil
}

// createFull guards the insert with a savepoint inside a caller transaction so a
// failed statement does not abort the core-field retry.
func (r *evaluationRepo) createFull(dbc dbctx.Context, row *types.EvaluationRecord) error {
	if dbc.Tx == nil {
		return dbc.DB(r.db).Create(row).Error
	}
	const sp = "evaluation_append"
	tx := dbc.DB(r.db)
	if err := tx.SavePoint(sp).Error; err != nil {
		return err
	}
	if err := tx.Create(row).Error; err != nil {
		_ = tx.RollbackTo(sp).Error
		return err
	}
	return nil
}

func (r *evaluationRepo) InsertMany(dbc dbctx.Context, rows []*types.EvaluationRecord) (int, error) {
	inserted := 0
	for _, row := range rows {
		if _, err := r.Append(dbc, row); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// FetchAll returns every record newest first. Read faults are logged and yield an empty slice.
func (r *evaluationRepo) FetchAll(dbc dbctx.Context) []types.EvaluationRecord {
	var out []types.EvaluationRecord
	if err := dbc.DB(r.db).Order("created_at DESC").Find(&out).Error; err != nil {
		r.log.Error("Fetch evaluations failed", "error", err)
		return []types.EvaluationRecord{}
	}
	return out
}

func (r *evaluationRepo) FetchRecent(dbc dbctx.Context, limit int) ([]types.EvaluationRecord, error) {
	if limit <= 0 {
		return []types.EvaluationRecord{}, nil
	}
	var out []types.EvaluationRecord
	err := dbc.DB(r.db).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *evaluationRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.EvaluationRecord{}).Count(&n).Error
	return n, err
}

func (r *evaluationRepo) DeleteAll(dbc dbctx.Context) (int64, error) {
	res := dbc.DB(r.db).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.EvaluationRecord{})
	return res.RowsAffected, res.Error
}

func (r *evaluationRepo) DeleteBefore(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	res := dbc.DB(r.db).Where("created_at < ?", cutoff).Delete(&types.EvaluationRecord{})
	return res.RowsAffected, res.Error
}

func (r *evaluationRepo) DeleteAfter(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	res := dbc.DB(r.db).Where("created_at > ?", cutoff).Delete(&types.EvaluationRecord{})
	return res.RowsAffected, res.Error
}

func (r *evaluationRepo) DeleteMatching(dbc dbctx.Context, topics, students []string) (int64, error) {
	if len(topics) == 0 && len(students) == 0 {
		return 0, nil
	}
	q := dbc.DB(r.db)
	switch {
	case len(topics) > 0 && len(students) > 0:
		q = q.Where("topic IN ? OR student_name IN ?", topics, students)
	case len(topics) > 0:
		q = q.Where("topic IN ?", topics)
	default:
		q = q.Where("student_name IN ?", students)
	}
	res := q.Delete(&types.EvaluationRecord{})
	return res.RowsAffected, res.Error
}
