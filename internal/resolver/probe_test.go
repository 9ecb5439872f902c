package resolver

import (
	"encoding/json"
	"testing"
)

func TestExtractSolution(t *testing.T) {
	cases := []struct {
		name   string
		row    Row
		want   string
		wantOK bool
	}{
		{name: "metadata solution", row: Row{"metadata": map[string]any{"solution": "S1"}}, want: "S1", wantOK: true},
		{name: "metadata answer", row: Row{"metadata": map[string]any{"answer": "A1"}}, want: "A1", wantOK: true},
		{name: "metadata solution_text", row: Row{"metadata": map[string]any{"solution_text": "T1"}}, want: "T1", wantOK: true},
		{name: "metadata sol", row: Row{"metadata": map[string]any{"sol": "X1"}}, want: "X1", wantOK: true},
		{name: "solution preferred over answer", row: Row{"metadata": map[string]any{"answer": "A", "solution": "S"}}, want: "S", wantOK: true},
		{name: "metadatas container", row: Row{"metadatas": map[string]any{"solution": "SQL fallback solution text."}}, want: "SQL fallback solution text.", wantOK: true},
		{name: "meta container", row: Row{"meta": map[string]any{"answer": "M"}}, want: "M", wantOK: true},
		{name: "metadatas list", row: Row{"metadatas": []any{"junk", map[string]any{"solution": "L"}}}, want: "L", wantOK: true},
		{name: "json string metadata", row: Row{"metadata": `{"solution":"J"}`}, want: "J", wantOK: true},
		{name: "json bytes metadata", row: Row{"metadata": []byte(`{"answer":"B"}`)}, want: "B", wantOK: true},
		{name: "double encoded metadata", row: Row{"metadata": mustJSONString(t, `{"sol":"D"}`)}, want: "D", wantOK: true},
		{name: "top level solution", row: Row{"content": "q", "solution": "Top"}, want: "Top", wantOK: true},
		{name: "top level sol", row: Row{"sol": "TopSol"}, want: "TopSol", wantOK: true},
		{name: "container beats top level", row: Row{"solution": "Top", "meta": map[string]any{"solution": "Inner"}}, want: "Inner", wantOK: true},
		{name: "blank value skipped", row: Row{"metadata": map[string]any{"solution": "  ", "answer": "Next"}}, want: "Next", wantOK: true},
		{name: "non string value skipped", row: Row{"metadata": map[string]any{"solution": 42}}, wantOK: false},
		{name: "unparseable metadata", row: Row{"metadata": "not json"}, wantOK: false},
		{name: "only question", row: Row{"content": "What is DNA?", "metadata": map[string]any{"question": "What is DNA?"}}, wantOK: false},
		{name: "empty row", row: Row{}, wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractSolution(tc.row)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("ExtractSolution: want=%q,%v got=%q,%v", tc.want, tc.wantOK, got, ok)
			}
		})
	}
}

func TestBuildProbesOrder(t *testing.T) {
	probes := buildProbes([]string{"metadata"}, []string{"solution", "answer"})
	if len(probes) != 4 {
		t.Fatalf("probes: want=4 got=%d", len(probes))
	}
	if probes[0].container != "metadata" || probes[0].key != "solution" {
		t.Fatalf("first probe: got=%+v", probes[0])
	}
	if probes[3].loc != atTopLevel || probes[3].key != "answer" {
		t.Fatalf("last probe: got=%+v", probes[3])
	}
}

func mustJSONString(t *testing.T, s string) string {
	t.Helper()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}
