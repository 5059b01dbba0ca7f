package checker

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/targ/internal/interval"
	"github.com/gnolang/targ/internal/summary"
	tt "github.com/gnolang/targ/internal/types"
)

func testRegistry(t *testing.T) *summary.Registry {
	t.Helper()
	sums := append(summary.Builtins(),
		summary.Summary{
			Name: "__two_constrained_args",
			Constraints: []summary.Constraint{
				summary.RangeConstraint{Arg: 0, Allowed: interval.Point(1)},
				summary.RangeConstraint{Arg: 1, Allowed: interval.Point(1)},
			},
		},
		summary.Summary{
			Name: "__arg_constrained_twice",
			Constraints: []summary.Constraint{
				summary.RangeConstraint{Arg: 0, Allowed: summary.Allowed(summary.OpNE, 1)},
				summary.RangeConstraint{Arg: 0, Allowed: summary.Allowed(summary.OpNE, 2)},
			},
		},
	)
	reg, err := summary.NewRegistry(sums...)
	require.NoError(t, err)
	return reg
}

func checkSource(t *testing.T, code string) []tt.Issue {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", code, 0)
	require.NoError(t, err)

	issues, err := New(testRegistry(t)).CheckFile("test.go", file, fset)
	require.NoError(t, err)
	return issues
}

func byRule(issues []tt.Issue, rule string) []tt.Issue {
	var out []tt.Issue
	for _, issue := range issues {
		if issue.Rule == rule {
			out = append(out, issue)
		}
	}
	return out
}

func TestConcreteViolation(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test() {
	isalnum(256)
}`)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, RuleArgConstraint, issue.Rule)
	assert.Equal(t, summary.DefaultViolation, issue.Message)
	assert.Equal(t, "argument 1 of 'isalnum'", issue.Note)
	assert.Equal(t, tt.SeverityError, issue.Severity)
	assert.Equal(t, 5, issue.Start.Line)
}

func TestConcreteInRangeIsQuiet(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test() {
	isalnum(255)
	isalnum(-1)
}`)
	assert.Empty(t, issues)
}

func TestPathCutAfterProvableViolation(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test() {
	isalnum(256)
	isalnum(256)
}`)
	// the second call is unreachable on the violating path
	require.Len(t, issues, 1)
}

func TestBranchNarrowedViolation(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int) {
	if x > 255 {
		ret := isalnum(x)
		_ = ret
	}
}`)
	require.Len(t, issues, 1)

	trace := issues[0].Trace
	require.Len(t, trace, 3)
	assert.Equal(t, "assuming 'x' is > 255", trace[0].Msg)
	assert.Equal(t, "taking true branch", trace[1].Msg)
	assert.Equal(t, summary.DefaultViolation, trace[2].Msg)
	assert.Equal(t, 5, trace[0].Pos.Line)
	assert.Equal(t, 6, trace[2].Pos.Line)
}

func TestGuardedCallIsQuiet(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int) {
	if x > 255 {
		return
	}
	isalnum(x)
}`)
	assert.Empty(t, byRule(issues, RuleArgConstraint))
}

func TestUnconstrainedSymbolicNarrowed(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int) {
	isalnum(x)
	targ_eval(-1 <= x && x <= 255)
}`)
	assert.Empty(t, byRule(issues, RuleArgConstraint))

	probes := byRule(issues, RuleEvalProbe)
	require.Len(t, probes, 1)
	assert.Equal(t, "TRUE", probes[0].Message)
	assert.Equal(t, tt.SeverityInfo, probes[0].Severity)
}

func TestNilBufferViolation(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(buf *byte, fp *File) {
	if buf == nil {
		fread(buf, 4, 10, fp)
	}
}`)
	require.Len(t, issues, 1)
	assert.Equal(t, "argument 1 of 'fread'", issues[0].Note)

	trace := issues[0].Trace
	require.Len(t, trace, 3)
	assert.Equal(t, "assuming 'buf' is nil", trace[0].Msg)
	assert.Equal(t, "taking true branch", trace[1].Msg)
}

func TestNonNilAssumedAfterCall(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(buf *byte, fp *File) {
	fread(buf, 4, 10, fp)
	targ_eval(buf != nil)
}`)
	assert.Empty(t, byRule(issues, RuleArgConstraint))

	probes := byRule(issues, RuleEvalProbe)
	require.Len(t, probes, 1)
	assert.Equal(t, "TRUE", probes[0].Message)
}

func TestLiteralNilArgument(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(fp *File) {
	fread(nil, 4, 10, fp)
}`)
	require.Len(t, issues, 1)
	assert.Equal(t, "argument 1 of 'fread'", issues[0].Note)
}

func TestMultipleArgumentsNoSplit(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x, y int) {
	__two_constrained_args(x, y)
	targ_eval(x == 1)
	targ_eval(y == 1)
}`)
	assert.Empty(t, byRule(issues, RuleArgConstraint))

	probes := byRule(issues, RuleEvalProbe)
	require.Len(t, probes, 2)
	assert.Equal(t, "TRUE", probes[0].Message)
	assert.Equal(t, "TRUE", probes[1].Message)
}

func TestRepeatedConstraintsOnSameArgument(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int) {
	__arg_constrained_twice(x)
	targ_eval(x < 1 || x > 2)
}`)
	assert.Empty(t, byRule(issues, RuleArgConstraint))

	probes := byRule(issues, RuleEvalProbe)
	require.Len(t, probes, 1)
	assert.Equal(t, "TRUE", probes[0].Message)
}

func TestAssignedLiteralTracked(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test() {
	x := 256
	isalnum(x)
}`)
	require.Len(t, byRule(issues, RuleArgConstraint), 1)
}

func TestReassignmentForgetsFacts(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int) {
	isalnum(x)
	x = unknown()
	targ_eval(x <= 255)
}`)
	probes := byRule(issues, RuleEvalProbe)
	require.Len(t, probes, 1)
	assert.Equal(t, "UNKNOWN", probes[0].Message)
}

func TestElseBranchKeepsComplement(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int) {
	if x > 255 {
		return
	} else {
		targ_eval(x <= 255)
	}
}`)
	probes := byRule(issues, RuleEvalProbe)
	require.Len(t, probes, 1)
	assert.Equal(t, "TRUE", probes[0].Message)
}

func TestOpaqueConditionStaysQuiet(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int, ok bool) {
	if ok {
		isalnum(x)
	}
	targ_eval(x == 0)
}`)
	assert.Empty(t, byRule(issues, RuleArgConstraint))
}

func TestUnknownFunctionIgnored(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(x int) {
	totally_unmodeled(x, 256)
}`)
	assert.Empty(t, issues)
}

func TestViolationAfterUnrelatedBranchReportedOnce(t *testing.T) {
	t.Parallel()

	// both branch continuations reach the call; one call site still
	// yields one issue
	issues := checkSource(t, `
package main

func test(y int) {
	if y > 0 {
		_ = y
	}
	isalnum(256)
}`)
	violations := byRule(issues, RuleArgConstraint)
	require.Len(t, violations, 1)
	assert.Equal(t, 8, violations[0].Start.Line)
}

func TestViolationAfterBranchChainReportedOnce(t *testing.T) {
	t.Parallel()

	issues := checkSource(t, `
package main

func test(y, z int) {
	if y > 0 {
		_ = y
	}
	if z > 0 {
		_ = z
	}
	isalnum(256)
}`)
	require.Len(t, byRule(issues, RuleArgConstraint), 1)
}

func TestStatementsAfterNestedBlockAnalyzed(t *testing.T) {
	t.Parallel()

	// a block ending in an if must not cut the walk of the code
	// after the block
	issues := checkSource(t, `
package main

func test(y int) {
	{
		if y > 0 {
			_ = y
		}
	}
	isalnum(256)
}`)
	violations := byRule(issues, RuleArgConstraint)
	require.Len(t, violations, 1)
	assert.Equal(t, 10, violations[0].Start.Line)
}

func TestNestedBlockNarrowingReachesLaterCalls(t *testing.T) {
	t.Parallel()

	// facts established inside the block still hold afterwards
	issues := checkSource(t, `
package main

func test(x int) {
	{
		if x > 255 {
			return
		}
	}
	targ_eval(x <= 255)
}`)
	probes := byRule(issues, RuleEvalProbe)
	require.Len(t, probes, 1)
	assert.Equal(t, "TRUE", probes[0].Message)
}
