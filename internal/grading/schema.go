package grading

const resultSchemaName = "evaluation_result"

func str(desc string) map[string]any {
	m := map[string]any{"type": "string"}
	if desc != "" {
		m["description"] = desc
	}
	return m
}

func object(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             sortedStrings(required),
		"additionalProperties": false,
	}
}

func arrayOf(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}

// ResultSchema is the strict JSON schema the model must satisfy.
func ResultSchema() map[string]any {
	return object(map[string]any{
		"score":            str("Score out of 10"),
		"grade":            str("Letter grade: A, B, C, D, F"),
		"feedback":         str("Executive summary and general feedback"),
		"topic_diagnostic": str("Diagnostic note when the submission addresses the wrong topic (for low scores)"),
		"rubric_breakdown": arrayOf(object(map[string]any{
			"criteria":  str(""),
			"score":     str(""),
			"max_score": str(""),
			"feedback":  str(""),
		})),
		"missing_concepts": arrayOf(object(map[string]any{
			"concept": str(""),
			"importance": map[string]any{
				"type":        "string",
				"enum":        []string{"HIGH", "MEDIUM", "LOW"},
				"description": "HIGH/MEDIUM/LOW",
			},
			"explanation": str(""),
		})),
		"bridge_guidance": str("How the student moves from their answer to the ideal answer"),
		"suggested_resources": arrayOf(object(map[string]any{
			"title":       str(""),
			"description": str(""),
			"action_item": str(""),
		})),
		"metadata": object(map[string]any{
			"complexity_level":      str("Beginner/Intermediate/Advanced"),
			"ai_confidence":         str("Confidence percentage (0-100)"),
			"plagiarism_similarity": str("Similarity percentage to standard solutions"),
		}),
	})
}
