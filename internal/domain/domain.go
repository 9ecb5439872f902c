package domain

import "github.com/yungbote/gradebridge-backend/internal/domain/grading"

type Guideline = grading.Guideline
type GuidelineMatch = grading.GuidelineMatch
type EvaluationRecord = grading.EvaluationRecord
type EvaluationResult = grading.EvaluationResult
type RubricCriterion = grading.RubricCriterion
type MissingConcept = grading.MissingConcept
type SuggestedResource = grading.SuggestedResource
type EvaluationMetadata = grading.EvaluationMetadata

const (
	ImportanceHigh   = grading.ImportanceHigh
	ImportanceMedium = grading.ImportanceMedium
	ImportanceLow    = grading.ImportanceLow
)

func ParseScore(raw string) (float64, bool) { return grading.ParseScore(raw) }

var ErrMatchUnavailable = grading.ErrMatchUnavailable
