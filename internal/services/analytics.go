package services

import (
	"context"

	"github.com/yungbote/gradebridge-backend/internal/analytics"
	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

type GradesView struct {
	Distribution map[string]int                `json:"distribution"`
	ByGrade      map[string]analytics.CountAvg `json:"by_grade"`
}

type TopicsView struct {
	Performance map[string]float64            `json:"performance"`
	Difficulty  []analytics.Ranked[float64]   `json:"difficulty"`
	Counts      []analytics.Ranked[int]       `json:"counts"`
	Details     map[string]analytics.CountAvg `json:"details"`
}

type StudentsView struct {
	Performance           []analytics.Ranked[float64] `json:"performance"`
	Top                   []analytics.Ranked[float64] `json:"top"`
	EvaluationCount       []analytics.Ranked[int]     `json:"evaluation_count"`
	AssignmentsPerStudent []analytics.Ranked[int]     `json:"assignments_per_student"`
}

type ScoresView struct {
	Average      float64        `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

type TimelineView struct {
	OverTime []analytics.Ranked[int] `json:"over_time"`
	ByDate   []analytics.DateStats   `json:"by_date"`
}

// AnalyticsService recomputes every view from one fresh snapshot per call.
type AnalyticsService interface {
	Summary(ctx context.Context) analytics.Summary
	Grades(ctx context.Context) GradesView
	Topics(ctx context.Context) TopicsView
	Students(ctx context.Context, topLimit int) StudentsView
	Scores(ctx context.Context) ScoresView
	Class(ctx context.Context) *analytics.ClassStats
	Timeline(ctx context.Context) TimelineView
	Segments(ctx context.Context, weak, strong float64) analytics.Segments
	Recent(ctx context.Context, limit int) []types.EvaluationRecord
}

type analyticsService struct {
	log   *logger.Logger
	evals repos.EvaluationRepo
}

func NewAnalyticsService(baseLog *logger.Logger, evals repos.EvaluationRepo) AnalyticsService {
	return &analyticsService{
		log:   baseLog.With("service", "AnalyticsService"),
		evals: evals,
	}
}

func (s *analyticsService) snapshot(ctx context.Context) []types.EvaluationRecord {
	return s.evals.FetchAll(dbctx.Context{Ctx: ctx})
}

func (s *analyticsService) Summary(ctx context.Context) analytics.Summary {
	return analytics.SummaryOf(s.snapshot(ctx))
}

func (s *analyticsService) Grades(ctx context.Context) GradesView {
	rows := s.snapshot(ctx)
	return GradesView{
		Distribution: analytics.GradeDistribution(rows),
		ByGrade:      analytics.PerformanceByGrade(rows),
	}
}

func (s *analyticsService) Topics(ctx context.Context) TopicsView {
	rows := s.snapshot(ctx)
	return TopicsView{
		Performance: analytics.TopicPerformance(rows),
		Difficulty:  analytics.TopicDifficulty(rows),
		Counts:      analytics.EvaluationsByTopic(rows),
		Details:     analytics.TopicEvaluationCount(rows),
	}
}

func (s *analyticsService) Students(ctx context.Context, topLimit int) StudentsView {
	rows := s.snapshot(ctx)
	return StudentsView{
		Performance:           analytics.StudentPerformance(rows),
		Top:                   analytics.TopStudents(rows, topLimit),
		EvaluationCount:       analytics.StudentEvaluationCount(rows),
		AssignmentsPerStudent: analytics.AssignmentsPerStudent(rows),
	}
}

func (s *analyticsService) Scores(ctx context.Context) ScoresView {
	rows := s.snapshot(ctx)
	return ScoresView{
		Average:      analytics.AverageScore(rows),
		Distribution: analytics.ScoreDistribution(rows),
	}
}

func (s *analyticsService) Class(ctx context.Context) *analytics.ClassStats {
	return analytics.ClassStatsOf(s.snapshot(ctx))
}

func (s *analyticsService) Timeline(ctx context.Context) TimelineView {
	rows := s.snapshot(ctx)
	return TimelineView{
		OverTime: analytics.EvaluationsOverTime(rows),
		ByDate:   analytics.EvaluationStatsByDate(rows),
	}
}

func (s *analyticsService) Segments(ctx context.Context, weak, strong float64) analytics.Segments {
	return analytics.SegmentsOf(s.snapshot(ctx), weak, strong)
}

func (s *analyticsService) Recent(ctx context.Context, limit int) []types.EvaluationRecord {
	return analytics.RecentEvaluations(s.snapshot(ctx), limit)
}
