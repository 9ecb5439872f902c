package grading

import (
	"fmt"
	"strings"

	"github.com/yungbote/gradebridge-backend/internal/platform/promptstyle"
)

// NoGuidelineText stands in for the reference guideline when none resolves.
const NoGuidelineText = "No specific guideline found. Evaluate based on general academic standards and expert knowledge of the topic."

const evaluatorSystem = "You are an expert academic evaluator. Your task is to evaluate a student's answer based on a specific question, a set of rubric criteria, and a reference guideline."

const gradingInstructions = `Instructions:
1. Compare the student answer against the reference guideline.
2. Strictly follow the provided rubric criteria for scoring.
3. Provide a score from 0 to 10 (as a string).
4. Assign a letter grade (A, B, C, D, or F).
5. If the student's answer is completely off-topic or addresses the wrong question, provide a diagnostic note in 'topic_diagnostic' and give a low score.
6. Identify specific missing concepts or inaccuracies.
7. Provide 'bridge guidance' that explains exactly how the student can transition from their current answer to the ideal answer.
8. Suggest actionable resources or next steps for improvement.
9. Ensure the response is in valid JSON format matching the schema.`

func buildPrompt(question, guideline, rubric, answer string) (system, user string) {
	if strings.TrimSpace(guideline) == "" {
		guideline = NoGuidelineText
	}
	var b strings.Builder
	b.WriteString(evaluatorSystem)
	fmt.Fprintf(&b, "\n\nQUESTION/TOPIC: %s", question)
	fmt.Fprintf(&b, "\n\nREFERENCE GUIDELINE (Use this as the standard for accuracy):\n%s", guideline)
	fmt.Fprintf(&b, "\n\nRUBRIC CRITERIA:\n%s", rubric)
	fmt.Fprintf(&b, "\n\nSTUDENT ANSWER TO EVALUATE:\n%s", answer)
	b.WriteString("\n\n")
	b.WriteString(gradingInstructions)
	return promptstyle.ApplySystem(evaluatorSystem, "json"), b.String()
}
