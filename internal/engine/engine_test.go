package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/targ/internal/interval"
	"github.com/gnolang/targ/internal/state"
	"github.com/gnolang/targ/internal/summary"
)

func ctypeSummary() summary.Summary {
	return summary.Summary{
		Name: "isalnum",
		Constraints: []summary.Constraint{
			summary.RangeConstraint{Arg: 0, Allowed: interval.Single(-1, 255)},
		},
	}
}

func TestConcreteOutOfRange(t *testing.T) {
	t.Parallel()

	call := Call{Func: "isalnum", Args: []Value{Concrete(256)}}
	res := ApplySummary(state.New(), call, ctypeSummary())

	require.Len(t, res.Reports, 1)
	rep := res.Reports[0]
	assert.Equal(t, summary.DefaultViolation, rep.Desc)
	assert.Equal(t, "isalnum", rep.Func)
	assert.Equal(t, 0, rep.Arg)

	// the valid continuation is infeasible: nothing after the call is
	// reachable on this path
	assert.Nil(t, res.State)
}

func TestConcreteInRange(t *testing.T) {
	t.Parallel()

	call := Call{Func: "isalnum", Args: []Value{Concrete(255)}}
	res := ApplySummary(state.New(), call, ctypeSummary())

	assert.Empty(t, res.Reports)
	require.NotNil(t, res.State)
}

func TestContextNarrowedSymbolic(t *testing.T) {
	t.Parallel()

	x := state.NewSym("x")
	st := state.New().Assume(
		[]state.Fact{{Sym: x, Allowed: interval.AtLeast(256)}},
		state.Note{Kind: state.NoteAssume, Msg: "assuming 'x' is > 255"},
		state.Note{Kind: state.NoteBranch, Msg: "taking true branch"},
	)

	call := Call{Func: "isalnum", Args: []Value{Symbolic(x)}}
	res := ApplySummary(st, call, ctypeSummary())

	require.Len(t, res.Reports, 1)
	assert.Nil(t, res.State)

	notes := res.Reports[0].Notes
	require.Len(t, notes, 3)
	assert.Equal(t, "assuming 'x' is > 255", notes[0].Msg)
	assert.Equal(t, "taking true branch", notes[1].Msg)
	assert.Equal(t, state.NoteViolation, notes[2].Kind)
	assert.Equal(t, summary.DefaultViolation, notes[2].Msg)
}

func TestUnconstrainedSymbolicNarrows(t *testing.T) {
	t.Parallel()

	x := state.NewSym("x")
	call := Call{Func: "isalnum", Args: []Value{Symbolic(x)}}
	res := ApplySummary(state.New(), call, ctypeSummary())

	// the precondition is documented, not enforced: assume it holds
	// and keep going without a report
	assert.Empty(t, res.Reports)
	require.NotNil(t, res.State)
	assert.Equal(t, state.True, res.State.Eval(x, interval.Single(-1, 255)))

	chain := res.State.NoteChain()
	require.Len(t, chain, 1)
	assert.Equal(t, state.NoteAssume, chain[0].Kind)
	assert.Contains(t, chain[0].Msg, "'x'")
}

func TestConstraintAlreadyImplied(t *testing.T) {
	t.Parallel()

	x := state.NewSym("x")
	st := state.New().Assume([]state.Fact{{Sym: x, Allowed: interval.Point(5)}})

	call := Call{Func: "isalnum", Args: []Value{Symbolic(x)}}
	res := ApplySummary(st, call, ctypeSummary())

	// the violating continuation is infeasible: no split, no report
	assert.Empty(t, res.Reports)
	require.NotNil(t, res.State)
	assert.True(t, res.State.RangeOf(x).Equal(interval.Point(5)))
}

func TestMultipleArgumentsNoMainPathSplit(t *testing.T) {
	t.Parallel()

	sum := summary.Summary{
		Name: "__two_constrained_args",
		Constraints: []summary.Constraint{
			summary.RangeConstraint{Arg: 0, Allowed: interval.Point(1)},
			summary.RangeConstraint{Arg: 1, Allowed: interval.Point(1)},
		},
	}

	x := state.NewSym("x")
	y := state.NewSym("y")
	call := Call{Func: sum.Name, Args: []Value{Symbolic(x), Symbolic(y)}}
	res := ApplySummary(state.New(), call, sum)

	// constraints on distinct values compose by intersection on the
	// single continuing path
	assert.Empty(t, res.Reports)
	require.NotNil(t, res.State)
	assert.Equal(t, state.True, res.State.Eval(x, interval.Point(1)))
	assert.Equal(t, state.True, res.State.Eval(y, interval.Point(1)))
}

func TestRepeatedConstraintOnSameArgument(t *testing.T) {
	t.Parallel()

	sum := summary.Summary{
		Name: "__arg_constrained_twice",
		Constraints: []summary.Constraint{
			summary.RangeConstraint{Arg: 0, Allowed: summary.Allowed(summary.OpNE, 1)},
			summary.RangeConstraint{Arg: 0, Allowed: summary.Allowed(summary.OpNE, 2)},
		},
	}

	x := state.NewSym("x")
	call := Call{Func: sum.Name, Args: []Value{Symbolic(x)}}
	res := ApplySummary(state.New(), call, sum)

	// both constraints applied, single continuing branch
	assert.Empty(t, res.Reports)
	require.NotNil(t, res.State)
	outside := interval.AtMost(0).Union(interval.AtLeast(3))
	assert.Equal(t, state.True, res.State.Eval(x, outside))
}

func TestRepeatedConstraintConcreteReportsOnce(t *testing.T) {
	t.Parallel()

	sum := summary.Summary{
		Name: "__arg_constrained_twice",
		Constraints: []summary.Constraint{
			summary.RangeConstraint{Arg: 0, Allowed: summary.Allowed(summary.OpNE, 1)},
			summary.RangeConstraint{Arg: 0, Allowed: summary.Allowed(summary.OpNE, 2)},
		},
	}

	call := Call{Func: sum.Name, Args: []Value{Concrete(1)}}
	res := ApplySummary(state.New(), call, sum)

	// the first provable violation cuts the path: one report for the
	// call site, not one per constraint
	require.Len(t, res.Reports, 1)
	assert.Nil(t, res.State)
}

func TestNotNullConstraint(t *testing.T) {
	t.Parallel()

	sum := summary.Summary{
		Name: "fread",
		Constraints: []summary.Constraint{
			summary.NotNullConstraint{Arg: 0},
			summary.NotNullConstraint{Arg: 3},
		},
	}

	fp := state.NewSym("fp")

	// concrete null buffer: provable violation
	call := Call{Func: "fread", Args: []Value{Concrete(0), Concrete(4), Concrete(10), Symbolic(fp)}}
	res := ApplySummary(state.New(), call, sum)
	require.Len(t, res.Reports, 1)
	assert.Equal(t, 0, res.Reports[0].Arg)
	assert.Nil(t, res.State)

	// symbolic buffer: assumed non-null afterwards
	buf := state.NewSym("buf")
	call = Call{Func: "fread", Args: []Value{Symbolic(buf), Concrete(4), Concrete(10), Symbolic(fp)}}
	res = ApplySummary(state.New(), call, sum)
	assert.Empty(t, res.Reports)
	require.NotNil(t, res.State)
	assert.Equal(t, state.False, res.State.Eval(buf, interval.Point(0)))
	assert.Equal(t, state.False, res.State.Eval(fp, interval.Point(0)))
}

func TestRelationalConstraint(t *testing.T) {
	t.Parallel()

	sum := summary.Summary{
		Name: "my_copy",
		Constraints: []summary.Constraint{
			summary.RelationalConstraint{Arg: 0, Other: 1, Op: summary.OpLE},
		},
	}

	// concrete violation: 5 <= 3 can never hold
	call := Call{Func: "my_copy", Args: []Value{Concrete(5), Concrete(3)}}
	res := ApplySummary(state.New(), call, sum)
	require.Len(t, res.Reports, 1)
	assert.Nil(t, res.State)

	// symbolic against concrete: narrowed on the continuing path
	n := state.NewSym("n")
	call = Call{Func: "my_copy", Args: []Value{Symbolic(n), Concrete(10)}}
	res = ApplySummary(state.New(), call, sum)
	assert.Empty(t, res.Reports)
	require.NotNil(t, res.State)
	assert.Equal(t, state.True, res.State.Eval(n, interval.AtMost(10)))
}

func TestApplyIdempotent(t *testing.T) {
	t.Parallel()

	x := state.NewSym("x")
	call := Call{Func: "isalnum", Args: []Value{Symbolic(x)}}

	once := ApplySummary(state.New(), call, ctypeSummary())
	require.NotNil(t, once.State)
	twice := ApplySummary(once.State, call, ctypeSummary())

	// re-checking an already-collapsed constraint neither reports nor
	// changes the facts
	assert.Empty(t, twice.Reports)
	require.NotNil(t, twice.State)
	assert.True(t, once.State.FactsEqual(twice.State))
}
