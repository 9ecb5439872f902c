package resolver

import (
	"encoding/json"
	"strings"
)

// Row is an opaque record returned by an Index. Its shape depends on how the
// guideline was written, so extraction goes through the probe chain.
type Row = map[string]any

type probeLocation int

const (
	inContainer probeLocation = iota
	atTopLevel
)

type probe struct {
	loc       probeLocation
	container string
	key       string
}

var (
	solutionKeys       = []string{"solution", "answer", "solution_text", "sol"}
	metadataContainers = []string{"metadata", "metadatas", "meta"}
)

// defaultProbes tries every metadata container before any top-level column.
var defaultProbes = buildProbes(metadataContainers, solutionKeys)

func buildProbes(containers, keys []string) []probe {
	out := make([]probe, 0, (len(containers)+1)*len(keys))
	for _, c := range containers {
		for _, k := range keys {
			out = append(out, probe{loc: inContainer, container: c, key: k})
		}
	}
	for _, k := range keys {
		out = append(out, probe{loc: atTopLevel, key: k})
	}
	return out
}

// ExtractSolution returns the first non-empty solution text found in row.
func ExtractSolution(row Row) (string, bool) {
	return extractWith(defaultProbes, row)
}

func extractWith(probes []probe, row Row) (string, bool) {
	if len(row) == 0 {
		return "", false
	}
	decoded := map[string]map[string]any{}
	for _, p := range probes {
		var v any
		switch p.loc {
		case inContainer:
			md, ok := decoded[p.container]
			if !ok {
				md = asObject(row[p.container])
				decoded[p.container] = md
			}
			v = md[p.key]
		case atTopLevel:
			v = row[p.key]
		}
		if s, ok := asText(v); ok {
			return s, true
		}
	}
	return "", false
}

// asObject accepts a map, a JSON document (string or bytes, possibly encoded twice),
// or a list whose first object element is used.
func asObject(v any) map[string]any {
	for depth := 0; depth < 3; depth++ {
		switch t := v.(type) {
		case nil:
			return nil
		case map[string]any:
			return t
		case []any:
			for _, item := range t {
				if m, ok := item.(map[string]any); ok {
					return m
				}
			}
			return nil
		case []map[string]any:
			if len(t) == 0 {
				return nil
			}
			return t[0]
		case json.RawMessage:
			v = decodeJSON([]byte(t))
		case []byte:
			v = decodeJSON(t)
		case string:
			v = decodeJSON([]byte(t))
		default:
			return nil
		}
	}
	return nil
}

func decodeJSON(raw []byte) any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}
	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil
	}
	return out
}

func asText(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
