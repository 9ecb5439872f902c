package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	types "github.com/yungbote/gradebridge-backend/internal/domain"
	"github.com/yungbote/gradebridge-backend/internal/ingestion"
	"github.com/yungbote/gradebridge-backend/internal/observability"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/realtime"
	"github.com/yungbote/gradebridge-backend/internal/resolver"
)

const (
	DefaultTimeout = 90 * time.Second
	persistTimeout = 10 * time.Second
)

type LLM interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

type GuidelineResolver interface {
	Resolve(ctx context.Context, query string) resolver.Outcome
}

type Publisher interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
}

type Config struct {
	Timeout time.Duration
	// OCR recognizes scanned PDFs whose text layer is empty; nil disables it.
	OCR     ingestion.OCR
}

type Submission struct {
	Question    string
	Answer      string
	Rubric      string
	StudentName string
	StudentRoll string
	Persist     bool
}

type Evaluation struct {
	Result         types.EvaluationResult `json:"result"`
	Persisted      bool                   `json:"persisted"`
	GuidelineFound bool                   `json:"guideline_found"`
	Degraded       bool                   `json:"degraded"`
}

type Orchestrator struct {
	log       *logger.Logger
	llm       LLM
	resolver  GuidelineResolver
	evals     repos.EvaluationRepo
	publisher Publisher
	pdf       *ingestion.PDFExtractor
	timeout   time.Duration
}

// NewOrchestrator wires the grading flow. evals and publisher may be nil.
func NewOrchestrator(log *logger.Logger, llm LLM, res GuidelineResolver, evals repos.EvaluationRepo, publisher Publisher, cfg Config) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Orchestrator{
		log:       log.With("service", "GradingOrchestrator"),
		llm:       llm,
		resolver:  res,
		evals:     evals,
		publisher: publisher,
		pdf:       ingestion.NewPDFExtractor(log, cfg.OCR),
		timeout:   cfg.Timeout,
	}
}

// Evaluate grades one submission. Failures never escape: they produce a degraded result.
func (o *Orchestrator) Evaluate(ctx context.Context, sub Submission) Evaluation {
	ctx, span := observability.StartSpan(ctx, "grading.Evaluate",
		attribute.Bool("grading.persist", sub.Persist),
		attribute.Int("grading.answer_len", len(sub.Answer)),
	)
	defer span.End()

	evalCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out := Evaluation{}
	guideline := ""
	if o.resolver != nil {
		outcome := o.resolver.Resolve(evalCtx, sub.Question)
		if outcome.Found() && strings.TrimSpace(outcome.Text) != "" {
			guideline = outcome.Text
			out.GuidelineFound = true
		}
	}

	result, err := o.grade(evalCtx, sub, guideline)
	if err != nil {
		o.log.Warn("Evaluation degraded", "error", err, "student_roll", sub.StudentRoll)
		span.SetStatus(codes.Error, err.Error())
		result = DegradedResult(err)
		out.Degraded = true
	}
	out.Result = result
	observability.Current().ObserveEvaluation(result.Grade, out.Degraded)
	span.SetAttributes(
		attribute.String("grading.grade", result.Grade),
		attribute.Bool("grading.degraded", out.Degraded),
		attribute.Bool("grading.guideline_found", out.GuidelineFound),
	)

	// Degraded results reach the caller but never the record store.
	switch {
	case !sub.Persist || strings.TrimSpace(sub.StudentName) == "":
	case out.Degraded:
		observability.Current().ObservePersist("skipped", "")
		o.log.Info("Degraded evaluation not persisted", "student_roll", sub.StudentRoll)
	default:
		out.Persisted = o.persist(ctx, sub, result)
	}
	return out
}

// EvaluatePDF grades the text extracted from a submitted PDF.
func (o *Orchestrator) EvaluatePDF(ctx context.Context, question string, pdfBytes []byte, rubric, studentName, studentRoll string, persist bool) Evaluation {
	text, err := o.pdf.Text(ctx, pdfBytes)
	if err != nil || strings.TrimSpace(text) == "" {
		if err == nil {
			err = ingestion.ErrEmptyPDF
		}
		cause := fmt.Errorf("failed to extract student text from PDF or PDF is empty: %w", err)
		o.log.Warn("PDF evaluation degraded", "error", cause)
		res := DegradedResult(cause)
		res.Feedback = "PDF Evaluation error: " + cause.Error()
		res.BridgeGuidance = "An error occurred: " + cause.Error()
		observability.Current().ObserveEvaluation(res.Grade, true)
		return Evaluation{Result: res, Degraded: true}
	}
	return o.Evaluate(ctx, Submission{
		Question:    question,
		Answer:      text,
		Rubric:      rubric,
		StudentName: studentName,
		StudentRoll: studentRoll,
		Persist:     persist,
	})
}

func (o *Orchestrator) grade(ctx context.Context, sub Submission, guideline string) (types.EvaluationResult, error) {
	if o.llm == nil {
		return types.EvaluationResult{}, errors.New("grading model not configured")
	}
	system, user := buildPrompt(sub.Question, guideline, sub.Rubric, sub.Answer)
	obj, err := o.llm.GenerateJSON(ctx, system, user, resultSchemaName, ResultSchema())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return types.EvaluationResult{}, fmt.Errorf("evaluation timed out after %s: %w", o.timeout, err)
		}
		return types.EvaluationResult{}, err
	}
	return decodeResult(obj)
}

// persist runs detached from the request context so a client disconnect after grading still records the result.
func (o *Orchestrator) persist(ctx context.Context, sub Submission, result types.EvaluationResult) bool {
	if o.evals == nil {
		observability.Current().ObservePersist("skipped", "")
		return false
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	row := newRecord(sub, result)
	shape, err := o.evals.Append(dbctx.Context{Ctx: pctx}, row)
	if err != nil {
		o.log.Error("Failed to persist evaluation", "error", err, "topic", sub.Question)
		observability.Current().ObservePersist("error", "")
		return false
	}
	observability.Current().ObservePersist("success", shape)
	if shape == repos.EvaluationShapeCore {
		o.log.Warn("Evaluation persisted with core fields only", "topic", row.Topic)
	}
	o.publishCreated(pctx, row, shape)
	return true
}

func (o *Orchestrator) publishCreated(ctx context.Context, row *types.EvaluationRecord, shape string) {
	if o.publisher == nil {
		return
	}
	data := map[string]any{
		"topic":        row.Topic,
		"student_name": row.StudentName,
		"score":        row.Score,
		"grade":        row.Grade,
		"shape":        shape,
		"created_at":   row.CreatedAt,
	}
	// Core-shape rows are keyed by the legacy table, not by row.ID.
	if row.ID != uuid.Nil {
		data["id"] = row.ID.String()
	}
	msg := realtime.SSEMessage{
		Channel: realtime.ChannelEvaluations,
		Event:   realtime.SSEEventEvaluationCreated,
		Data:    data,
	}
	if err := o.publisher.Publish(ctx, msg); err != nil {
		o.log.Warn("Failed to publish evaluation event", "error", err, "topic", row.Topic)
	}
}

func newRecord(sub Submission, result types.EvaluationResult) *types.EvaluationRecord {
	return &types.EvaluationRecord{
		ID:                 uuid.New(),
		Topic:              sub.Question,
		StudentName:        strings.TrimSpace(sub.StudentName),
		StudentRoll:        strings.TrimSpace(sub.StudentRoll),
		StudentAnswer:      sub.Answer,
		Score:              result.Score,
		Grade:              result.Grade,
		Feedback:           result.Feedback,
		TopicDiagnostic:    result.TopicDiagnostic,
		RubricBreakdown:    mustJSON(result.RubricBreakdown),
		MissingConcepts:    mustJSON(result.MissingConcepts),
		BridgeGuidance:     result.BridgeGuidance,
		SuggestedResources: mustJSON(result.SuggestedResources),
		Metadata:           mustJSON(result.Metadata),
		CreatedAt:          time.Now().UTC(),
	}
}

// DegradedResult is the fixed failing result returned when grading cannot complete.
func DegradedResult(cause error) types.EvaluationResult {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return types.EvaluationResult{
		Score:              "0",
		Grade:              "F",
		Feedback:           "Evaluation error: " + msg,
		TopicDiagnostic:    "",
		RubricBreakdown:    []types.RubricCriterion{},
		MissingConcepts:    []types.MissingConcept{},
		BridgeGuidance:     "An error occurred during evaluation: " + msg,
		SuggestedResources: []types.SuggestedResource{},
		Metadata: types.EvaluationMetadata{
			ComplexityLevel:      "Unknown",
			AIConfidence:         "0",
			PlagiarismSimilarity: "0",
		},
	}
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}
