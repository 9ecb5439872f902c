package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

type Repos struct {
	Guideline  repos.GuidelineRepo
	Evaluation repos.EvaluationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Guideline:  repos.NewGuidelineRepo(db, log),
		Evaluation: repos.NewEvaluationRepo(db, log),
	}
}
