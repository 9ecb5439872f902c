package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	out := ApplySystem("You grade answers.", "json")
	if !strings.HasPrefix(out, marker) {
		t.Fatalf("missing marker: %q", out)
	}
	if !strings.HasSuffix(out, "You grade answers.") {
		t.Fatalf("base prompt not preserved: %q", out)
	}
	if !strings.Contains(out, "single JSON object") {
		t.Fatalf("json guidance missing: %q", out)
	}
	if again := ApplySystem(out, "json"); again != out {
		t.Fatalf("not idempotent")
	}
	if got := ApplySystem("   ", "json"); got != "" {
		t.Fatalf("blank: want empty got=%q", got)
	}
}

func TestApplySystemUnknownModeUsesText(t *testing.T) {
	out := ApplySystem("Summarize.", "markdown")
	if !strings.Contains(out, "Be concise.") || strings.Contains(out, "JSON") {
		t.Fatalf("text guidance: got=%q", out)
	}
}
