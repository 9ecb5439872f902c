package promptstyle

import "strings"

const marker = "GRADEBRIDGE_PROMPT_STYLE_V1"

var common = []string{
	"Follow the system and user instructions precisely.",
	"Judge only the material provided; do not invent rubric criteria or sources.",
}

var byMode = map[string][]string{
	"json": {
		"Return a single JSON object that conforms to the schema and contains no extra keys.",
		"Every value the schema types as a string must be a string, including scores and percentages.",
	},
	"text": {"Be concise."},
}

// ApplySystem prepends the output-discipline block for mode ("json" or "text") to a system prompt.
// Unknown modes get the text lines. Prompts that already carry the marker are returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}
	lines, ok := byMode[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		lines = byMode["text"]
	}

	parts := make([]string, 0, len(common)+len(lines)+3)
	parts = append(parts, marker)
	parts = append(parts, common...)
	parts = append(parts, lines...)
	parts = append(parts, "---", base)
	return strings.Join(parts, "\n")
}
