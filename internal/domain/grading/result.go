package grading

// EvaluationResult is the structured grading output. Every scalar is a string,
// including numeric-looking ones like Score.
type EvaluationResult struct {
	Score              string              `json:"score"`
	Grade              string              `json:"grade"`
	Feedback           string              `json:"feedback"`
	TopicDiagnostic    string              `json:"topic_diagnostic"`
	RubricBreakdown    []RubricCriterion   `json:"rubric_breakdown"`
	MissingConcepts    []MissingConcept    `json:"missing_concepts"`
	BridgeGuidance     string              `json:"bridge_guidance"`
	SuggestedResources []SuggestedResource `json:"suggested_resources"`
	Metadata           EvaluationMetadata  `json:"metadata"`
}

type RubricCriterion struct {
	Criteria string `json:"criteria"`
	Score    string `json:"score"`
	MaxScore string `json:"max_score"`
	Feedback string `json:"feedback"`
}

const (
	ImportanceHigh   = "HIGH"
	ImportanceMedium = "MEDIUM"
	ImportanceLow    = "LOW"
)

type MissingConcept struct {
	Concept     string `json:"concept"`
	Importance  string `json:"importance"`
	Explanation string `json:"explanation"`
}

type SuggestedResource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionItem  string `json:"action_item"`
}

type EvaluationMetadata struct {
	ComplexityLevel      string `json:"complexity_level"`
	AIConfidence         string `json:"ai_confidence"`
	PlagiarismSimilarity string `json:"plagiarism_similarity"`
}
