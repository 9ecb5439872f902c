package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/gradebridge-backend/internal/data/db"
	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
)

// TestTopics and TestStudents identify the canned records Seed inserts.
var (
	TestTopics = []string{
		"Photosynthesis",
		"Mitochondria Function",
		"DNA Replication",
		"Cell Division",
		"Genetics",
		"Analytics Test Topic",
	}
	TestStudents = []string{
		"Alice Johnson",
		"Bob Smith",
		"Charlie Brown",
		"Diana Prince",
		"Eve Wilson",
		"Frank Miller",
		"Grace Lee",
		"Henry Davis",
		"Test Student",
	}
	// DiagnosedTables are the tables older deployments wrote evaluations into.
	DiagnosedTables = []string{
		"evaluations",
		"assignments",
		"student_submissions",
		"submissions",
		"results",
		"grades",
		"evaluation_results",
	}
)

type seedRow struct{ topic, student, score, grade, feedback string }

var seedRows = []seedRow{
	{"Photosynthesis", "Alice Johnson", "8.5", "A", "Great understanding of the process"},
	{"Photosynthesis", "Bob Smith", "7.2", "B", "Good but missing some details"},
	{"Photosynthesis", "Charlie Brown", "6.1", "C", "Basic understanding shown"},
	{"Photosynthesis", "Diana Prince", "9.0", "A", "Excellent work!"},
	{"Photosynthesis", "Eve Wilson", "5.5", "C", "Needs improvement"},
	{"Photosynthesis", "Frank Miller", "7.8", "B", "Well explained"},
	{"Photosynthesis", "Grace Lee", "8.9", "A", "Outstanding!"},
	{"Photosynthesis", "Henry Davis", "4.2", "D", "Incomplete understanding"},
	{"Mitochondria Function", "Alice Johnson", "7.5", "B", "Good explanation"},
	{"Mitochondria Function", "Bob Smith", "8.1", "A", "Excellent knowledge"},
	{"Mitochondria Function", "Charlie Brown", "6.5", "C", "Average work"},
	{"Mitochondria Function", "Diana Prince", "8.8", "A", "Perfect!"},
	{"DNA Replication", "Alice Johnson", "9.2", "A", "Perfect understanding"},
	{"DNA Replication", "Eve Wilson", "7.3", "B", "Good work"},
	{"DNA Replication", "Frank Miller", "8.4", "A", "Very good"},
	{"Cell Division", "Charlie Brown", "5.8", "C", "Needs practice"},
	{"Cell Division", "Diana Prince", "9.1", "A", "Excellent"},
	{"Cell Division", "Grace Lee", "8.7", "A", "Great job"},
	{"Genetics", "Henry Davis", "4.9", "D", "Needs improvement"},
	{"Genetics", "Bob Smith", "7.6", "B", "Good understanding"},
}

type TableReport struct {
	Name    string   `json:"name"`
	Exists  bool     `json:"exists"`
	Rows    int64    `json:"rows"`
	Columns []string `json:"columns,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type DiagnoseReport struct {
	Driver        string        `json:"driver"`
	Tables        []TableReport `json:"tables"`
	MatchFunction bool          `json:"match_function"`
	MatchError    string        `json:"match_error,omitempty"`
}

type StatsReport struct {
	Total          int64 `json:"total"`
	UniqueStudents int   `json:"unique_students"`
	UniqueTopics   int   `json:"unique_topics"`
	Guidelines     int64 `json:"guidelines"`
}

type MaintenanceService interface {
	Seed(ctx context.Context) (int, error)
	ClearTestData(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	ClearBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ClearAfter(ctx context.Context, cutoff time.Time) (int64, error)
	Diagnose(ctx context.Context) DiagnoseReport
	Stats(ctx context.Context) (StatsReport, error)
	View(ctx context.Context) []types.EvaluationRecord
}

type maintenanceService struct {
	db         *gorm.DB
	log        *logger.Logger
	evals      repos.EvaluationRepo
	guidelines repos.GuidelineRepo
}

func NewMaintenanceService(gdb *gorm.DB, baseLog *logger.Logger, evals repos.EvaluationRepo, guidelines repos.GuidelineRepo) MaintenanceService {
	return &maintenanceService{
		db:         gdb,
		log:        baseLog.With("service", "MaintenanceService"),
		evals:      evals,
		guidelines: guidelines,
	}
}

// Seed inserts the canned records in one transaction, all stamped with the same time.
func (s *maintenanceService) Seed(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	rows := make([]*types.EvaluationRecord, 0, len(seedRows))
	for _, r := range seedRows {
		rows = append(rows, &types.EvaluationRecord{
			ID:          uuid.New(),
			Topic:       r.topic,
			StudentName: r.student,
			Score:       r.score,
			Grade:       r.grade,
			Feedback:    r.feedback,
			CreatedAt:   now,
		})
	}
	var n int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.evals.InsertMany(dbctx.Context{Ctx: ctx, Tx: tx}, rows)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("seed evaluations: %w", err)
	}
	s.log.Info("Seeded test evaluations", "count", n)
	return n, nil
}

func (s *maintenanceService) ClearTestData(ctx context.Context) (int64, error) {
	n, err := s.evals.DeleteMatching(dbctx.Context{Ctx: ctx}, TestTopics, TestStudents)
	if err != nil {
		return 0, fmt.Errorf("clear test data: %w", err)
	}
	s.log.Info("Cleared test evaluations", "deleted", n)
	return n, nil
}

func (s *maintenanceService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.evals.DeleteAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		return 0, fmt.Errorf("clear evaluations: %w", err)
	}
	s.log.Warn("Cleared all evaluations", "deleted", n)
	return n, nil
}

func (s *maintenanceService) ClearBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.evals.DeleteBefore(dbctx.Context{Ctx: ctx}, cutoff)
}

func (s *maintenanceService) ClearAfter(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.evals.DeleteAfter(dbctx.Context{Ctx: ctx}, cutoff)
}

func (s *maintenanceService) Diagnose(ctx context.Context) DiagnoseReport {
	gdb := s.db.WithContext(ctx)
	report := DiagnoseReport{Driver: gdb.Dialector.Name()}
	migrator := gdb.Migrator()

	for _, name := range DiagnosedTables {
		tr := TableReport{Name: name}
		if !migrator.HasTable(name) {
			report.Tables = append(report.Tables, tr)
			continue
		}
		tr.Exists = true
		if err := gdb.Table(name).Count(&tr.Rows).Error; err != nil {
			tr.Error = err.Error()
		}
		if cols, err := migrator.ColumnTypes(name); err == nil {
			for _, c := range cols {
				tr.Columns = append(tr.Columns, c.Name())
			}
		} else if tr.Error == "" {
			tr.Error = err.Error()
		}
		report.Tables = append(report.Tables, tr)
	}

	if report.Driver == db.DriverPostgres {
		ok, err := db.HasMatchFunction(gdb)
		report.MatchFunction = ok
		if err != nil {
			report.MatchError = err.Error()
		}
	} else {
		report.MatchError = "similarity function requires postgres"
	}
	return report
}

func (s *maintenanceService) Stats(ctx context.Context) (StatsReport, error) {
	dbc := dbctx.Context{Ctx: ctx}
	total, err := s.evals.Count(dbc)
	if err != nil {
		return StatsReport{}, fmt.Errorf("count evaluations: %w", err)
	}
	students := map[string]struct{}{}
	topics := map[string]struct{}{}
	for _, r := range s.evals.FetchAll(dbc) {
		students[r.StudentName] = struct{}{}
		topics[r.Topic] = struct{}{}
	}
	out := StatsReport{Total: total, UniqueStudents: len(students), UniqueTopics: len(topics)}
	if s.guidelines != nil {
		if n, err := s.guidelines.Count(dbc); err == nil {
			out.Guidelines = n
		} else {
			s.log.Warn("Guideline count failed", "error", err)
		}
	}
	return out, nil
}

func (s *maintenanceService) View(ctx context.Context) []types.EvaluationRecord {
	return s.evals.FetchAll(dbctx.Context{Ctx: ctx})
}
