package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/gradebridge-backend/internal/grading"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/resolver"
	"github.com/yungbote/gradebridge-backend/internal/services"
)

type Services struct {
	Resolver    *resolver.Resolver
	Grading     *grading.Orchestrator
	Guidelines  services.GuidelineService
	Analytics   services.AnalyticsService
	Maintenance services.MaintenanceService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, vb vectorBackend) Services {
	log.Info("Wiring services...")

	res := resolver.New(log, clients.OpenAI, vb.Index, resolver.Config{
		MatchThreshold: cfg.ResolverMatchThreshold,
		ScanLimit:      cfg.ResolverScanLimit,
	})

	return Services{
		Resolver: res,
		Grading: grading.NewOrchestrator(log, clients.OpenAI, res, reposet.Evaluation, clients.Bus, grading.Config{
			Timeout: time.Duration(cfg.GradingTimeoutSeconds) * time.Second,
			OCR:     clients.OCR,
		}),
		Guidelines:  services.NewGuidelineService(log, reposet.Guideline, clients.OpenAI, vb.Mirror, clients.Bus, clients.OCR),
		Analytics:   services.NewAnalyticsService(log, reposet.Evaluation),
		Maintenance: services.NewMaintenanceService(db, log, reposet.Evaluation, reposet.Guideline),
	}
}
