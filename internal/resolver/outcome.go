package resolver

type OutcomeKind int

const (
	OutcomeNotFound OutcomeKind = iota
	OutcomeFound
	// OutcomeTransportFault means every attempted path failed to reach its store.
	// Callers treat it like OutcomeNotFound.
	OutcomeTransportFault
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeTransportFault:
		return "transport_fault"
	default:
		return "not_found"
	}
}

const (
	PathPrimary = "primary"
	PathScan    = "scan"
	PathNone    = "none"
)

type Outcome struct {
	Kind OutcomeKind
	Text string
	// Path names the lookup that produced Text.
	Path string
	Err  error
}

func (o Outcome) Found() bool { return o.Kind == OutcomeFound }

func found(text, path string) Outcome {
	return Outcome{Kind: OutcomeFound, Text: text, Path: path}
}
