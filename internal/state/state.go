// Package state provides the persistent program-state snapshots the
// constraint engine narrows as it reasons about a call site. States
// are never mutated after construction: Assume returns a fresh
// successor linked to its predecessor, so any number of exploration
// branches can share one ancestor. Unreferenced states are reclaimed
// by the garbage collector once no live branch points at them.
package state

import (
	"go/token"

	"github.com/gnolang/targ/internal/interval"
)

// SymValue is an identity token for an unknown runtime value: a
// function parameter, a global, or a derived expression. Two tokens
// are equal only when they are the same pointer.
type SymValue struct {
	name string
}

// NewSym mints a fresh symbolic value with a display name.
func NewSym(name string) *SymValue {
	return &SymValue{name: name}
}

// Name returns the display name used in notes.
func (v *SymValue) Name() string {
	if v == nil {
		return "?"
	}
	return v.name
}

// NoteKind classifies a causal annotation.
type NoteKind int

const (
	// NoteAssume records that a fact was assumed to hold.
	NoteAssume NoteKind = iota
	// NoteBranch records that a branch direction was taken.
	NoteBranch
	// NoteViolation records a proven constraint violation.
	NoteViolation
)

// Note is one step of the causal chain explaining how a state was
// reached.
type Note struct {
	Kind NoteKind
	Msg  string
	Pos  token.Position
}

// Fact pairs a symbolic value with the set of values it is allowed to
// take under an assumption.
type Fact struct {
	Sym     *SymValue
	Allowed interval.RangeSet
}

// State is an immutable snapshot of accumulated facts. Each state
// stores only the bindings it changed; lookups walk the predecessor
// chain. Multiple successors may share one predecessor, forming a
// DAG rooted at the analysis entry state.
type State struct {
	parent     *State
	facts      map[*SymValue]interval.RangeSet
	notes      []Note
	infeasible bool
}

// New returns the root state: no facts, no history.
func New() *State {
	return &State{}
}

// Infeasible reports whether some assumption narrowed a value to the
// empty set. Infeasible states represent impossible paths and are
// pruned by callers, never reported.
func (s *State) Infeasible() bool {
	return s != nil && s.infeasible
}

// RangeOf returns the set of values sym may still take. Unknown
// symbols may take any value.
func (s *State) RangeOf(sym *SymValue) interval.RangeSet {
	for cur := s; cur != nil; cur = cur.parent {
		if rs, ok := cur.facts[sym]; ok {
			return rs
		}
	}
	return interval.Single(interval.Full.Lo, interval.Full.Hi)
}

// Assume intersects each fact's allowed set into the current one and
// returns the narrowed successor state carrying the given notes. When
// an intersection comes out empty the successor is infeasible.
func (s *State) Assume(facts []Fact, notes ...Note) *State {
	next := &State{parent: s, notes: notes}
	if len(facts) > 0 {
		next.facts = make(map[*SymValue]interval.RangeSet, len(facts))
	}
	for _, f := range facts {
		cur := s.RangeOf(f.Sym)
		narrowed := cur.Intersect(f.Allowed)
		next.facts[f.Sym] = narrowed
		if narrowed.IsEmpty() {
			next.infeasible = true
		}
	}
	return next
}

// Truth is a three-valued evaluation result.
type Truth int

const (
	Unknown Truth = iota
	True
	False
)

func (t Truth) String() string {
	switch t {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// Eval checks sym's current range against a predicate range: True
// when the range is a subset, False when disjoint, Unknown otherwise.
func (s *State) Eval(sym *SymValue, predicate interval.RangeSet) Truth {
	cur := s.RangeOf(sym)
	if cur.Subset(predicate) {
		return True
	}
	if cur.Disjoint(predicate) {
		return False
	}
	return Unknown
}

// Notes returns the annotations introduced by this state alone.
func (s *State) Notes() []Note {
	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// NoteChain returns every note from the analysis root to this state,
// in the order the assumptions were introduced.
func (s *State) NoteChain() []Note {
	var count int
	for cur := s; cur != nil; cur = cur.parent {
		count += len(cur.notes)
	}
	out := make([]Note, count)
	idx := count
	for cur := s; cur != nil; cur = cur.parent {
		idx -= len(cur.notes)
		copy(out[idx:], cur.notes)
	}
	return out
}

// FactsEqual reports whether two states agree on every symbol either
// of them constrains. Note history is not compared.
func (s *State) FactsEqual(other *State) bool {
	syms := make(map[*SymValue]struct{})
	for cur := s; cur != nil; cur = cur.parent {
		for sym := range cur.facts {
			syms[sym] = struct{}{}
		}
	}
	for cur := other; cur != nil; cur = cur.parent {
		for sym := range cur.facts {
			syms[sym] = struct{}{}
		}
	}
	for sym := range syms {
		if !s.RangeOf(sym).Equal(other.RangeOf(sym)) {
			return false
		}
	}
	return true
}
