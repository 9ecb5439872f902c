package grading

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	types "github.com/yungbote/gradebridge-backend/internal/domain"
)

type validationError struct {
	field  string
	reason string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("invalid model output: %s %s", e.field, e.reason)
}

func invalid(field, reason string) error { return &validationError{field: field, reason: reason} }

// decodeResult checks obj against ResultSchema and builds the typed result.
// Grades and importance levels are upper-cased; numeric scalars become strings.
func decodeResult(obj map[string]any) (types.EvaluationResult, error) {
	var out types.EvaluationResult
	if obj == nil {
		return out, invalid("result", "is empty")
	}
	var err error
	if out.Score, err = reqString(obj, "score", "score"); err != nil {
		return out, err
	}
	if out.Grade, err = reqString(obj, "grade", "grade"); err != nil {
		return out, err
	}
	out.Grade = strings.ToUpper(strings.TrimSpace(out.Grade))
	if out.Grade == "" {
		return out, invalid("grade", "is blank")
	}
	if out.Feedback, err = reqString(obj, "feedback", "feedback"); err != nil {
		return out, err
	}
	if out.TopicDiagnostic, err = reqString(obj, "topic_diagnostic", "topic_diagnostic"); err != nil {
		return out, err
	}
	if out.BridgeGuidance, err = reqString(obj, "bridge_guidance", "bridge_guidance"); err != nil {
		return out, err
	}

	rubric, err := reqObjects(obj, "rubric_breakdown")
	if err != nil {
		return out, err
	}
	out.RubricBreakdown = make([]types.RubricCriterion, 0, len(rubric))
	for i, m := range rubric {
		path := fmt.Sprintf("rubric_breakdown[%d]", i)
		var c types.RubricCriterion
		if c.Criteria, err = reqString(m, "criteria", path+".criteria"); err != nil {
			return out, err
		}
		if c.Score, err = reqString(m, "score", path+".score"); err != nil {
			return out, err
		}
		if c.MaxScore, err = reqString(m, "max_score", path+".max_score"); err != nil {
			return out, err
		}
		if c.Feedback, err = reqString(m, "feedback", path+".feedback"); err != nil {
			return out, err
		}
		out.RubricBreakdown = append(out.RubricBreakdown, c)
	}

	concepts, err := reqObjects(obj, "missing_concepts")
	if err != nil {
		return out, err
	}
	out.MissingConcepts = make([]types.MissingConcept, 0, len(concepts))
	for i, m := range concepts {
		path := fmt.Sprintf("missing_concepts[%d]", i)
		var c types.MissingConcept
		if c.Concept, err = reqString(m, "concept", path+".concept"); err != nil {
			return out, err
		}
		imp, err := reqString(m, "importance", path+".importance")
		if err != nil {
			return out, err
		}
		if c.Importance, err = normalizeImportance(imp); err != nil {
			return out, invalid(path+".importance", err.Error())
		}
		if c.Explanation, err = reqString(m, "explanation", path+".explanation"); err != nil {
			return out, err
		}
		out.MissingConcepts = append(out.MissingConcepts, c)
	}

	resources, err := reqObjects(obj, "suggested_resources")
	if err != nil {
		return out, err
	}
	out.SuggestedResources = make([]types.SuggestedResource, 0, len(resources))
	for i, m := range resources {
		path := fmt.Sprintf("suggested_resources[%d]", i)
		var r types.SuggestedResource
		if r.Title, err = reqString(m, "title", path+".title"); err != nil {
			return out, err
		}
		if r.Description, err = reqString(m, "description", path+".description"); err != nil {
			return out, err
		}
		if r.ActionItem, err = reqString(m, "action_item", path+".action_item"); err != nil {
			return out, err
		}
		out.SuggestedResources = append(out.SuggestedResources, r)
	}

	meta, ok := obj["metadata"].(map[string]any)
	if !ok {
		return out, invalid("metadata", "must be an object")
	}
	if out.Metadata.ComplexityLevel, err = reqString(meta, "complexity_level", "metadata.complexity_level"); err != nil {
		return out, err
	}
	if out.Metadata.AIConfidence, err = reqString(meta, "ai_confidence", "metadata.ai_confidence"); err != nil {
		return out, err
	}
	if out.Metadata.PlagiarismSimilarity, err = reqString(meta, "plagiarism_similarity", "metadata.plagiarism_similarity"); err != nil {
		return out, err
	}
	return out, nil
}

func reqString(m map[string]any, key, path string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", invalid(path, "is required")
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		// Models occasionally emit bare numbers for scores and percentages.
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	default:
		return "", invalid(path, fmt.Sprintf("must be a string (got %T)", v))
	}
}

func reqObjects(m map[string]any, key string) ([]map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, invalid(key, "is required")
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, invalid(key, "must be an array")
	}
	out := make([]map[string]any, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(fmt.Sprintf("%s[%d]", key, i), "must be an object")
		}
		out = append(out, obj)
	}
	return out, nil
}

func normalizeImportance(raw string) (string, error) {
	switch v := strings.ToUpper(strings.TrimSpace(raw)); v {
	case types.ImportanceHigh, types.ImportanceMedium, types.ImportanceLow:
		return v, nil
	default:
		return "", fmt.Errorf("must be HIGH, MEDIUM or LOW (got %q)", raw)
	}
}

func sortedStrings(in []string) []string {
	sort.Strings(in)
	return in
}
