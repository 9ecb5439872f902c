package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/gradebridge-backend/internal/http"
	httpH "github.com/yungbote/gradebridge-backend/internal/http/handlers"
	"github.com/yungbote/gradebridge-backend/internal/observability"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/realtime"
	"github.com/yungbote/gradebridge-backend/internal/realtime/bus"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Guideline  *httpH.GuidelineHandler
	Resolve    *httpH.ResolveHandler
	Evaluation *httpH.EvaluationHandler
	Analytics  *httpH.AnalyticsHandler
	Realtime   *httpH.RealtimeHandler
}

func readinessChecks(db *gorm.DB, b bus.Bus) []httpH.ReadinessCheck {
	checks := []httpH.ReadinessCheck{{
		Name: "db",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if p, ok := bus.Remote(b); ok {
		checks = append(checks, httpH.ReadinessCheck{Name: "redis", Check: p.Ping})
	}
	return checks
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, clients Clients, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(readinessChecks(db, clients.Bus)...),
		Guideline:  httpH.NewGuidelineHandler(log, services.Guidelines),
		Resolve:    httpH.NewResolveHandler(services.Resolver),
		Evaluation: httpH.NewEvaluationHandler(log, services.Grading, services.Analytics),
		Analytics:  httpH.NewAnalyticsHandler(services.Analytics),
		Realtime:   httpH.NewRealtimeHandler(log, hub),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		CORSOrigins:       cfg.corsOrigins(),
		HealthHandler:     handlers.Health,
		GuidelineHandler:  handlers.Guideline,
		ResolveHandler:    handlers.Resolve,
		EvaluationHandler: handlers.Evaluation,
		AnalyticsHandler:  handlers.Analytics,
		RealtimeHandler:   handlers.Realtime,
	})
}
