package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/gradebridge-backend/internal/data/repos/evaluation"
	"github.com/yungbote/gradebridge-backend/internal/data/repos/guideline"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

type GuidelineRepo = guideline.GuidelineRepo
type EvaluationRepo = evaluation.EvaluationRepo

const (
	EvaluationShapeFull = evaluation.ShapeFull
	EvaluationShapeCore = evaluation.ShapeCore
)

func NewGuidelineRepo(db *gorm.DB, baseLog *logger.Logger) GuidelineRepo {
	return guideline.NewGuidelineRepo(db, baseLog)
}

func NewEvaluationRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRepo {
	return evaluation.NewEvaluationRepo(db, baseLog)
}
