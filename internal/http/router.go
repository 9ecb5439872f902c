package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/gradebridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/gradebridge-backend/internal/http/middleware"
	"github.com/yungbote/gradebridge-backend/internal/observability"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	ServiceName string

	HealthHandler     *httpH.HealthHandler
	GuidelineHandler  *httpH.GuidelineHandler
	ResolveHandler    *httpH.ResolveHandler
	EvaluationHandler *httpH.EvaluationHandler
	AnalyticsHandler  *httpH.AnalyticsHandler
	RealtimeHandler   *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "gradebridge"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Guidelines
		if cfg.GuidelineHandler != nil {
			api.POST("/guidelines", cfg.GuidelineHandler.Create)
			api.POST("/guidelines/document", cfg.GuidelineHandler.CreateDocument)
			api.POST("/guidelines/pdf", cfg.GuidelineHandler.UploadPDF)
		}
		if cfg.ResolveHandler != nil {
			api.POST("/resolve", cfg.ResolveHandler.Resolve)
		}

		// Evaluations
		if cfg.EvaluationHandler != nil {
			api.POST("/evaluations", cfg.EvaluationHandler.Evaluate)
			api.POST("/evaluations/pdf", cfg.EvaluationHandler.EvaluatePDF)
			api.GET("/evaluations", cfg.EvaluationHandler.ListRecent)
		}

		// Analytics
		if cfg.AnalyticsHandler != nil {
			a := api.Group("/analytics")
			a.GET("/summary", cfg.AnalyticsHandler.Summary)
			a.GET("/grades", cfg.AnalyticsHandler.Grades)
			a.GET("/topics", cfg.AnalyticsHandler.Topics)
			a.GET("/students", cfg.AnalyticsHandler.Students)
			a.GET("/scores", cfg.AnalyticsHandler.Scores)
			a.GET("/class", cfg.AnalyticsHandler.Class)
			a.GET("/timeline", cfg.AnalyticsHandler.Timeline)
			a.GET("/segments", cfg.AnalyticsHandler.Segments)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/events/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
