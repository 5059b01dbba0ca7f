// Package engine applies a function summary's argument constraints to
// one call site. Constraints are applied strictly in summary order.
// Each constraint splits the incoming state into a valid continuation
// (the precondition holds) and a violating continuation (it does not);
// the worklist driver decides, per the feasibility of each side, to
// narrow without branching, to cut the path with a provable report,
// or to continue on the valid side while parking the violation on a
// terminal side-path. Infeasible states are pruned silently: an
// impossible path is not an error.
package engine

import (
	"fmt"
	"go/token"
	"strconv"

	"github.com/gnolang/targ/internal/interval"
	"github.com/gnolang/targ/internal/report"
	"github.com/gnolang/targ/internal/state"
	"github.com/gnolang/targ/internal/summary"
)

// Value is one already-resolved call argument: either a symbolic
// value or a known scalar literal. Null pointers arrive as the
// concrete literal zero.
type Value struct {
	sym *state.SymValue
	lit int64
}

// Symbolic wraps a symbolic argument.
func Symbolic(sym *state.SymValue) Value {
	return Value{sym: sym}
}

// Concrete wraps a known literal argument.
func Concrete(lit int64) Value {
	return Value{lit: lit}
}

// IsSymbolic reports whether the argument is a symbolic value.
func (v Value) IsSymbolic() bool {
	return v.sym != nil
}

func (v Value) label() string {
	if v.sym != nil {
		return "'" + v.sym.Name() + "'"
	}
	return strconv.FormatInt(v.lit, 10)
}

// Call is one resolved call site: callee name, ordered arguments, and
// the program point reports are attached to.
type Call struct {
	Func string
	Args []Value
	Pos  token.Position
}

// Result is the outcome of applying a summary. State is the valid
// continuation feeding any code after the call; it is nil when a
// provable violation cut the path, in which case later statements are
// unreachable.
type Result struct {
	State   *state.State
	Reports []report.Report
}

// item is one pending unit of exploration work. A nil violated field
// marks the main path; otherwise the item is a terminal side-path.
type item struct {
	st       *state.State
	rest     []summary.Constraint
	violated summary.Constraint
	provable bool
}

// ApplySummary narrows st with each of sum's constraints in declared
// order, per the split rules above. The branching factor is bounded
// by two and side-paths are never explored further, so the worklist
// always drains.
func ApplySummary(st *state.State, call Call, sum summary.Summary) Result {
	// pin literal arguments so every constraint narrows a symbol
	syms := make([]*state.SymValue, len(call.Args))
	labels := make([]string, len(call.Args))
	for i, arg := range call.Args {
		labels[i] = arg.label()
		if arg.sym != nil {
			syms[i] = arg.sym
			continue
		}
		syms[i] = state.NewSym(labels[i])
		st = st.Assume([]state.Fact{{Sym: syms[i], Allowed: interval.Point(arg.lit)}})
	}

	var res Result
	work := []item{{st: st, rest: sum.Constraints}}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		if it.violated != nil {
			// terminal side-path: report only when the violation is
			// provable, then drop the state
			if it.provable {
				res.Reports = append(res.Reports, report.FromState(
					it.violated.Describe(), call.Func, it.violated.ArgNo(), call.Pos, it.st,
				))
			}
			continue
		}

		if it.st.Infeasible() {
			// impossible path: prune, no report
			continue
		}

		if len(it.rest) == 0 {
			res.State = it.st
			continue
		}

		c := it.rest[0]
		valid, violating, ok := split(it.st, call, syms, labels, c)
		if !ok {
			// constraint names an argument the call does not have;
			// skip it and keep going
			work = append(work, item{st: it.st, rest: it.rest[1:]})
			continue
		}

		switch {
		case violating.Infeasible():
			// already guaranteed by prior facts: no split, no report
			work = append(work, item{st: valid, rest: it.rest[1:]})
		case valid.Infeasible():
			// the argument can never satisfy the constraint: the
			// violation is provable and the main path ends here
			work = append(work, item{st: violating, violated: c, provable: true})
		default:
			// assume the documented precondition holds; park the
			// violating side for the terminal side-path
			work = append(work, item{st: violating, violated: c})
			work = append(work, item{st: valid, rest: it.rest[1:]})
		}
	}
	return res
}

// split builds the valid and violating continuations for one
// constraint. ok is false when the constraint names an argument the
// call does not have.
func split(st *state.State, call Call, syms []*state.SymValue, labels []string, c summary.Constraint) (valid, violating *state.State, ok bool) {
	violationNote := state.Note{Kind: state.NoteViolation, Msg: c.Describe(), Pos: call.Pos}

	switch c := c.(type) {
	case summary.RangeConstraint:
		if c.Arg >= len(syms) {
			return nil, nil, false
		}
		sym := syms[c.Arg]
		valid = st.Assume(
			[]state.Fact{{Sym: sym, Allowed: c.Allowed}},
			state.Note{
				Kind: state.NoteAssume,
				Msg:  fmt.Sprintf("assuming %s is in %s", labels[c.Arg], c.Allowed),
				Pos:  call.Pos,
			},
		)
		violating = st.Assume(
			[]state.Fact{{Sym: sym, Allowed: c.Allowed.Complement(interval.Full)}},
			violationNote,
		)
		return valid, violating, true

	case summary.NotNullConstraint:
		if c.Arg >= len(syms) {
			return nil, nil, false
		}
		sym := syms[c.Arg]
		valid = st.Assume(
			[]state.Fact{{Sym: sym, Allowed: summary.NotNullSet()}},
			state.Note{
				Kind: state.NoteAssume,
				Msg:  fmt.Sprintf("assuming %s is not equal to nil", labels[c.Arg]),
				Pos:  call.Pos,
			},
		)
		violating = st.Assume(
			[]state.Fact{{Sym: sym, Allowed: interval.Point(0)}},
			violationNote,
		)
		return valid, violating, true

	case summary.RelationalConstraint:
		if c.Arg >= len(syms) || c.Other >= len(syms) {
			return nil, nil, false
		}
		valid = assumeRelation(st, syms, c.Arg, c.Other, c.Op, state.Note{
			Kind: state.NoteAssume,
			Msg:  fmt.Sprintf("assuming %s %s %s", labels[c.Arg], c.Op, labels[c.Other]),
			Pos:  call.Pos,
		})
		violating = assumeRelation(st, syms, c.Arg, c.Other, c.Op.Negate(), violationNote)
		return valid, violating, true

	default:
		// the variant set is closed; the registry rejects anything else
		return nil, nil, false
	}
}

// assumeRelation narrows both operands of (a op b) against each
// other's current bounds.
func assumeRelation(st *state.State, syms []*state.SymValue, a, b int, op summary.Op, note state.Note) *state.State {
	ra := st.RangeOf(syms[a])
	rb := st.RangeOf(syms[b])

	facts := make([]state.Fact, 0, 2)
	if lo, ok := rb.Min(); ok {
		hi, _ := rb.Max()
		facts = append(facts, state.Fact{Sym: syms[a], Allowed: summary.AllowedAgainst(op, lo, hi)})
	}
	if lo, ok := ra.Min(); ok {
		hi, _ := ra.Max()
		facts = append(facts, state.Fact{Sym: syms[b], Allowed: summary.AllowedAgainst(op.Reverse(), lo, hi)})
	}
	return st.Assume(facts, note)
}
