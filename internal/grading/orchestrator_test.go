package grading

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/gradebridge-backend/internal/data/repos"
	"github.com/yungbote/gradebridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/gradebridge-backend/internal/platform/dbctx"
	"github.com/yungbote/gradebridge-backend/internal/realtime"
	"github.com/yungbote/gradebridge-backend/internal/resolver"
)

type fakeLLM struct {
	mu     sync.Mutex
	calls  int
	system string
	user   string
	schema map[string]any
	out    map[string]any
	err    error
	block  bool
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.calls++
	f.system, f.user, f.schema = system, user, schema
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.out, f.err
}

type fakeResolver struct {
	outcome resolver.Outcome
	query   string
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) resolver.Outcome {
	f.query = query
	return f.outcome
}

type recordingPublisher struct {
	msgs []realtime.SSEMessage
}

func (p *recordingPublisher) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func validOutput() map[string]any {
	return map[string]any{
		"score":            "8",
		"grade":            "b",
		"feedback":         "Solid answer.",
		"topic_diagnostic": "",
		"rubric_breakdown": []any{
			map[string]any{"criteria": "Accuracy", "score": "4", "max_score": "5", "feedback": "Mostly right."},
		},
		"missing_concepts": []any{
			map[string]any{"concept": "Calvin cycle", "importance": "medium", "explanation": "Not mentioned."},
		},
		"bridge_guidance": "Describe the light-independent reactions.",
		"suggested_resources": []any{
			map[string]any{"title": "Khan Academy", "description": "Photosynthesis unit", "action_item": "Watch part 2"},
		},
		"metadata": map[string]any{
			"complexity_level":      "Intermediate",
			"ai_confidence":         "85",
			"plagiarism_similarity": "5",
		},
	}
}

func newTestOrchestrator(t *testing.T, llm LLM, res GuidelineResolver, withRepo bool, cfg Config) (*Orchestrator, repos.EvaluationRepo, *recordingPublisher) {
	t.Helper()
	var evals repos.EvaluationRepo
	if withRepo {
		evals = repos.NewEvaluationRepo(testutil.SQLite(t, true), testutil.Logger(t))
	}
	pub := &recordingPublisher{}
	return NewOrchestrator(testutil.Logger(t), llm, res, evals, pub, cfg), evals, pub
}

func TestEvaluateWithGuidelinePersistsAndPublishes(t *testing.T) {
	llm := &fakeLLM{out: validOutput()}
	res := &fakeResolver{outcome: resolver.Outcome{Kind: resolver.OutcomeFound, Text: "Light energy becomes chemical energy.", Path: resolver.PathPrimary}}
	o, evals, pub := newTestOrchestrator(t, llm, res, true, Config{})

	got := o.Evaluate(context.Background(), Submission{
		Question:    "Explain photosynthesis",
		Answer:      "Plants make food from sunlight.",
		Rubric:      "Accuracy 5, Clarity 5",
		StudentName: "Alice Johnson",
		StudentRoll: "R-1",
		Persist:     true,
	})

	if got.Degraded {
		t.Fatalf("unexpected degraded result: %+v", got.Result)
	}
	if !got.GuidelineFound || !got.Persisted {
		t.Fatalf("flags: want found+persisted got=%+v", got)
	}
	if got.Result.Grade != "B" {
		t.Fatalf("grade: want=B got=%q", got.Result.Grade)
	}
	if got.Result.MissingConcepts[0].Importance != "MEDIUM" {
		t.Fatalf("importance: want=MEDIUM got=%q", got.Result.MissingConcepts[0].Importance)
	}
	if res.query != "Explain photosynthesis" {
		t.Fatalf("resolver query: got=%q", res.query)
	}
	if !strings.Contains(llm.user, "Light energy becomes chemical energy.") {
		t.Fatalf("prompt missing guideline")
	}
	if strings.Contains(llm.user, NoGuidelineText) {
		t.Fatalf("prompt should not carry the substitute text")
	}

	rows := evals.FetchAll(dbctx.Context{Ctx: context.Background()})
	if len(rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(rows))
	}
	if rows[0].Topic != "Explain photosynthesis" || rows[0].StudentName != "Alice Johnson" || rows[0].Score != "8" {
		t.Fatalf("row: got=%+v", rows[0])
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Event != realtime.SSEEventEvaluationCreated {
		t.Fatalf("events: got=%+v", pub.msgs)
	}
	data, _ := pub.msgs[0].Data.(map[string]any)
	if data["id"] != rows[0].ID.String() || data["shape"] != repos.EvaluationShapeFull {
		t.Fatalf("event data: want id=%s shape=full got=%v", rows[0].ID, data)
	}
}

func TestEvaluateCoreShapeEventOmitsID(t *testing.T) {
	gdb := testutil.SQLite(t, false)
	if err := gdb.Exec(`CREATE TABLE evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic TEXT,
		student_name TEXT,
		score TEXT,
		grade TEXT,
		feedback TEXT,
		created_at DATETIME
	)`).Error; err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	pub := &recordingPublisher{}
	evals := repos.NewEvaluationRepo(gdb, testutil.Logger(t))
	o := NewOrchestrator(testutil.Logger(t), &fakeLLM{out: validOutput()}, &fakeResolver{}, evals, pub, Config{})

	got := o.Evaluate(context.Background(), Submission{Question: "Genetics", Answer: "A", StudentName: "Bob Smith", Persist: true})
	if !got.Persisted {
		t.Fatalf("persisted: want=true got=false")
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("events: want=1 got=%d", len(pub.msgs))
	}
	data, _ := pub.msgs[0].Data.(map[string]any)
	if _, ok := data["id"]; ok {
		t.Fatalf("core-shape event carries id: %v", data)
	}
	if data["shape"] != repos.EvaluationShapeCore {
		t.Fatalf("shape: want=%q got=%v", repos.EvaluationShapeCore, data["shape"])
	}
}

func TestEvaluateWithoutGuidelineUsesSubstitute(t *testing.T) {
	llm := &fakeLLM{out: validOutput()}
	res := &fakeResolver{outcome: resolver.Outcome{Kind: resolver.OutcomeTransportFault, Path: resolver.PathNone, Err: errors.New("down")}}
	o, _, pub := newTestOrchestrator(t, llm, res, true, Config{})

	got := o.Evaluate(context.Background(), Submission{Question: "Q", Answer: "A", Rubric: "R", StudentName: "Bob Smith", Persist: false})
	if got.GuidelineFound {
		t.Fatalf("guideline found: want=false")
	}
	if got.Persisted {
		t.Fatalf("persisted without persist flag")
	}
	if !strings.Contains(llm.user, NoGuidelineText) {
		t.Fatalf("prompt missing substitute guideline: %q", llm.user)
	}
	for i := 1; i <= 9; i++ {
		if !strings.Contains(llm.user, "\n"+string(rune('0'+i))+". ") {
			t.Fatalf("instruction %d missing from prompt", i)
		}
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("events without persist: got=%d", len(pub.msgs))
	}
	if llm.schema["additionalProperties"] != false {
		t.Fatalf("schema not strict")
	}
}

func TestEvaluateLLMFailureIsDegradedAndNotPersisted(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream 500")}
	o, evals, pub := newTestOrchestrator(t, llm, &fakeResolver{}, true, Config{})

	got := o.Evaluate(context.Background(), Submission{Question: "Genetics", Answer: "x", Rubric: "r", StudentName: "Eve Wilson", Persist: true})

	if !got.Degraded {
		t.Fatalf("want degraded")
	}
	r := got.Result
	if r.Score != "0" || r.Grade != "F" {
		t.Fatalf("score/grade: got=%q/%q", r.Score, r.Grade)
	}
	if r.Feedback != "Evaluation error: upstream 500" {
		t.Fatalf("feedback: got=%q", r.Feedback)
	}
	if r.BridgeGuidance != "An error occurred during evaluation: upstream 500" {
		t.Fatalf("bridge: got=%q", r.BridgeGuidance)
	}
	if len(r.RubricBreakdown) != 0 || len(r.MissingConcepts) != 0 || len(r.SuggestedResources) != 0 {
		t.Fatalf("lists should be empty: %+v", r)
	}
	if r.Metadata.ComplexityLevel != "Unknown" || r.Metadata.AIConfidence != "0" || r.Metadata.PlagiarismSimilarity != "0" {
		t.Fatalf("metadata: got=%+v", r.Metadata)
	}
	if llm.calls != 1 {
		t.Fatalf("llm calls: want=1 got=%d", llm.calls)
	}
	if got.Persisted {
		t.Fatalf("degraded result must not be persisted")
	}
	if n, _ := evals.Count(dbctx.Context{Ctx: context.Background()}); n != 0 {
		t.Fatalf("count: want=0 got=%d", n)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("events: want none got=%+v", pub.msgs)
	}
}

func TestEvaluateTimeoutDegrades(t *testing.T) {
	llm := &fakeLLM{block: true}
	o, _, _ := newTestOrchestrator(t, llm, &fakeResolver{}, true, Config{Timeout: 20 * time.Millisecond})

	got := o.Evaluate(context.Background(), Submission{Question: "Q", Answer: "A", StudentName: "Grace Lee", Persist: true})
	if !got.Degraded || !strings.Contains(got.Result.Feedback, "timed out") {
		t.Fatalf("want timeout degraded, got=%+v", got.Result)
	}
	if got.Persisted {
		t.Fatalf("timed-out evaluation must not be persisted")
	}
}

func TestEvaluateSkipsPersistWithoutStudentName(t *testing.T) {
	o, evals, _ := newTestOrchestrator(t, &fakeLLM{out: validOutput()}, &fakeResolver{}, true, Config{})
	got := o.Evaluate(context.Background(), Submission{Question: "Q", Answer: "A", StudentName: "  ", Persist: true})
	if got.Persisted {
		t.Fatalf("persisted without student name")
	}
	if n, _ := evals.Count(dbctx.Context{Ctx: context.Background()}); n != 0 {
		t.Fatalf("count: want=0 got=%d", n)
	}
}

func TestEvaluateInvalidOutputDegrades(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m map[string]any)
		want   string
	}{
		{name: "missing grade", mutate: func(m map[string]any) { delete(m, "grade") }, want: "grade is required"},
		{name: "blank grade", mutate: func(m map[string]any) { m["grade"] = "  " }, want: "grade is blank"},
		{name: "array score", mutate: func(m map[string]any) { m["score"] = []any{"7"} }, want: "score must be a string"},
		{name: "missing rubric", mutate: func(m map[string]any) { delete(m, "rubric_breakdown") }, want: "rubric_breakdown is required"},
		{name: "bad importance", mutate: func(m map[string]any) {
			m["missing_concepts"] = []any{map[string]any{"concept": "c", "importance": "urgent", "explanation": "e"}}
		}, want: "missing_concepts[0].importance"},
		{name: "metadata not object", mutate: func(m map[string]any) { m["metadata"] = "x" }, want: "metadata must be an object"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := validOutput()
			tc.mutate(out)
			o, _, _ := newTestOrchestrator(t, &fakeLLM{out: out}, &fakeResolver{}, false, Config{})
			got := o.Evaluate(context.Background(), Submission{Question: "Q", Answer: "A"})
			if !got.Degraded {
				t.Fatalf("want degraded")
			}
			if !strings.Contains(got.Result.Feedback, tc.want) {
				t.Fatalf("feedback: want contains %q got=%q", tc.want, got.Result.Feedback)
			}
		})
	}
}

func TestEvaluatePDFRejectsNonPDF(t *testing.T) {
	llm := &fakeLLM{out: validOutput()}
	o, _, _ := newTestOrchestrator(t, llm, &fakeResolver{}, false, Config{})

	got := o.EvaluatePDF(context.Background(), "Q", []byte("not a pdf"), "R", "Henry Davis", "", true)
	if !got.Degraded || got.Persisted {
		t.Fatalf("flags: got=%+v", got)
	}
	if !strings.HasPrefix(got.Result.Feedback, "PDF Evaluation error: ") {
		t.Fatalf("feedback: got=%q", got.Result.Feedback)
	}
	if !strings.HasPrefix(got.Result.BridgeGuidance, "An error occurred: ") {
		t.Fatalf("bridge: got=%q", got.Result.BridgeGuidance)
	}
	if llm.calls != 0 {
		t.Fatalf("llm should not be called: calls=%d", llm.calls)
	}
}
