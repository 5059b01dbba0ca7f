// Package summary models the documented preconditions of library
// functions as ordered per-argument constraints, and the immutable
// registry the checker resolves callee names against. The registry is
// built once, validated, and passed by reference into the engine; the
// engine never mutates it.
package summary

import (
	"math"

	"github.com/gnolang/targ/internal/interval"
)

// DefaultViolation is the description attached to a constraint that
// does not carry its own wording.
const DefaultViolation = "function argument constraint is not satisfied"

// Op is a relational comparison operator.
type Op int

const (
	OpLT Op = iota
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
)

func (op Op) String() string {
	switch op {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	default:
		return "?"
	}
}

// Negate returns the operator of the complementary relation.
func (op Op) Negate() Op {
	switch op {
	case OpLT:
		return OpGE
	case OpLE:
		return OpGT
	case OpGT:
		return OpLE
	case OpGE:
		return OpLT
	case OpEQ:
		return OpNE
	default:
		return OpEQ
	}
}

// Reverse returns the operator seen from the right operand's side,
// so that (a op b) == (b op.Reverse() a).
func (op Op) Reverse() Op {
	switch op {
	case OpLT:
		return OpGT
	case OpLE:
		return OpGE
	case OpGT:
		return OpLT
	case OpGE:
		return OpLE
	default:
		return op
	}
}

// Allowed returns the set of left operands satisfying (x op bound).
func Allowed(op Op, bound int64) interval.RangeSet {
	switch op {
	case OpLT:
		if bound == math.MinInt64 {
			return interval.Empty()
		}
		return interval.AtMost(bound - 1)
	case OpLE:
		return interval.AtMost(bound)
	case OpGT:
		if bound == math.MaxInt64 {
			return interval.Empty()
		}
		return interval.AtLeast(bound + 1)
	case OpGE:
		return interval.AtLeast(bound)
	case OpEQ:
		return interval.Point(bound)
	case OpNE:
		return interval.Point(bound).Complement(interval.Full)
	default:
		return interval.Empty()
	}
}

// AllowedAgainst returns the set of left operands x for which
// (x op y) can hold for at least one y in [lo, hi].
func AllowedAgainst(op Op, lo, hi int64) interval.RangeSet {
	switch op {
	case OpLT, OpLE:
		return Allowed(op, hi)
	case OpGT, OpGE:
		return Allowed(op, lo)
	case OpEQ:
		return interval.Single(lo, hi)
	case OpNE:
		if lo == hi {
			return Allowed(OpNE, lo)
		}
		return interval.Single(interval.Full.Lo, interval.Full.Hi)
	default:
		return interval.Empty()
	}
}

// NotNullSet is the value set of a pointer known to be non-null.
// Pointers are modeled on the scalar domain with null at zero.
func NotNullSet() interval.RangeSet {
	return interval.Point(0).Complement(interval.Full)
}

// Constraint describes one documented precondition on a call's
// argument list. The variant set is closed: the engine matches it
// exhaustively.
type Constraint interface {
	constraint()
	// ArgNo is the zero-based argument position the constraint
	// primarily applies to.
	ArgNo() int
	// Describe returns the human-readable violation description.
	Describe() string
}

// RangeConstraint requires an argument to stay within an allowed set
// of scalar values.
type RangeConstraint struct {
	Arg     int
	Allowed interval.RangeSet
	Desc    string
}

func (RangeConstraint) constraint() {}

func (c RangeConstraint) ArgNo() int { return c.Arg }

func (c RangeConstraint) Describe() string {
	if c.Desc == "" {
		return DefaultViolation
	}
	return c.Desc
}

// NotNullConstraint requires a pointer argument to be non-null.
type NotNullConstraint struct {
	Arg  int
	Desc string
}

func (NotNullConstraint) constraint() {}

func (c NotNullConstraint) ArgNo() int { return c.Arg }

func (c NotNullConstraint) Describe() string {
	if c.Desc == "" {
		return DefaultViolation
	}
	return c.Desc
}

// RelationalConstraint requires two arguments of the same call to
// satisfy a comparison.
type RelationalConstraint struct {
	Arg   int
	Other int
	Op    Op
	Desc  string
}

func (RelationalConstraint) constraint() {}

func (c RelationalConstraint) ArgNo() int { return c.Arg }

func (c RelationalConstraint) Describe() string {
	if c.Desc == "" {
		return DefaultViolation
	}
	return c.Desc
}
