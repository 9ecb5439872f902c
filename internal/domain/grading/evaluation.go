package grading

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EvaluationRecord is one persisted grading outcome.
// Older deployments only carry the core columns (topic, student_name, score, grade, feedback, created_at).
type EvaluationRecord struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Topic       string `gorm:"type:text;not null;default:'';index" json:"topic"`
	StudentName string `gorm:"type:text;not null;default:'';index" json:"student_name"`
	Score       string `gorm:"type:text;not null;default:''" json:"score"`
	Grade       string `gorm:"type:text;not null;default:''" json:"grade"`
	Feedback    string `gorm:"type:text;not null;default:''" json:"feedback"`

	StudentRoll        string         `gorm:"type:text" json:"student_roll,omitempty"`
	StudentAnswer      string         `gorm:"type:text" json:"student_answer,omitempty"`
	TopicDiagnostic    string         `gorm:"type:text" json:"topic_diagnostic,omitempty"`
	RubricBreakdown    datatypes.JSON `gorm:"type:jsonb" json:"rubric_breakdown,omitempty"`
	MissingConcepts    datatypes.JSON `gorm:"type:jsonb" json:"missing_concepts,omitempty"`
	BridgeGuidance     string         `gorm:"type:text" json:"bridge_guidance,omitempty"`
	SuggestedResources datatypes.JSON `gorm:"type:jsonb" json:"suggested_resources,omitempty"`
	Metadata           datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (EvaluationRecord) TableName() string { return "evaluations" }

// NumericScore parses Score. Blank, non-numeric, NaN and infinite scores report ok=false.
func (r EvaluationRecord) NumericScore() (float64, bool) {
	return ParseScore(r.Score)
}

func (r EvaluationRecord) NormalizedGrade() string {
	return strings.ToUpper(strings.TrimSpace(r.Grade))
}

func ParseScore(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
