package ingestion

import (
	"regexp"
	"strings"
)

const maxDerivedTitleLen = 200

var (
	solutionMarker = regexp.MustCompile(`(?mi)^(solution[:\-\s].*$|answer[:\-\s].*$|official solution[:\-\s].*$)`)
	solutionPrefix = regexp.MustCompile(`(?mi)^(solution[:\-\s]*|answer[:\-\s]*|official solution[:\-\s]*)`)
	questionMarker = regexp.MustCompile(`(?mi)^(question[:\-\s].*$|q[:\-\s].*$|problem[:\-\s].*$)`)
)

// ParsedGuideline is a reference document split into its question title and solution body.
// Title or Solution may be empty when no structure is recognized.
type ParsedGuideline struct {
	Title    string
	Solution string
	FullText string
}

func ParseGuidelineText(text string) ParsedGuideline {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	out := ParsedGuideline{FullText: text}
	if strings.TrimSpace(text) == "" {
		return out
	}

	if loc := solutionMarker.FindStringIndex(text); loc != nil {
		before := text[:loc[0]]
		out.Title = firstNonEmptyLine(before)
		if out.Title == "" {
			out.Title = truncateRunes(strings.TrimSpace(before), maxDerivedTitleLen)
		}
		out.Solution = strings.TrimSpace(solutionPrefix.ReplaceAllString(text[loc[0]:], ""))
		return out
	}

	if loc := questionMarker.FindStringIndex(text); loc != nil {
		rest := text[loc[0]:]
		lines := strings.Split(rest, "\n")
		if len(lines) > 1 {
			out.Title = strings.TrimSpace(lines[0])
			out.Solution = strings.TrimSpace(strings.Join(lines[1:], "\n"))
			return out
		}
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	out.Title = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		out.Solution = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return out
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
