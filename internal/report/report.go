// Package report turns terminal violating states into immutable bug
// reports. A report carries the violated constraint's description and
// the ordered causal note chain from the analysis root to the
// violation point; how much of that chain is shown is a presentation
// concern that belongs to the formatter, not here.
package report

import (
	"go/token"

	"github.com/gnolang/targ/internal/state"
)

// Report is a proven precondition violation. It is created once per
// violation and never mutated.
type Report struct {
	// Desc is the violated constraint's description.
	Desc string
	// Func is the callee whose precondition failed.
	Func string
	// Arg is the zero-based offending argument position.
	Arg int
	// Pos is the call site.
	Pos token.Position
	// Notes is the causal chain, root first, violation last.
	Notes []state.Note
}

// FromState builds a report by walking the violating state's
// predecessor links back to the analysis root.
func FromState(desc, fn string, arg int, pos token.Position, violating *state.State) Report {
	return Report{
		Desc:  desc,
		Func:  fn,
		Arg:   arg,
		Pos:   pos,
		Notes: violating.NoteChain(),
	}
}
