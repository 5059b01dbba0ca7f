package types

import "go/token"

// Severity ranks how seriously an issue should be taken.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityOff:
		return "off"
	default:
		return "unknown"
	}
}

// TraceNote is one step of the causal chain behind an issue, tagged
// with the program point that introduced it.
type TraceNote struct {
	Msg string
	Pos token.Position
}

// Issue represents an argument-constraint finding in the code base.
type Issue struct {
	Rule     string
	Category string
	Filename string
	Message  string
	Note     string
	Severity Severity
	Start    token.Position
	End      token.Position
	// Trace is the ordered causal chain from the function entry to
	// the violation. Rendered only in full-path output mode.
	Trace []TraceNote
}
