package formatter

import (
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	targ "github.com/gnolang/targ"
	tt "github.com/gnolang/targ/internal/types"
)

func testIssue() tt.Issue {
	return tt.Issue{
		Rule:     ArgConstraint,
		Filename: "test.go",
		Message:  "function argument constraint is not satisfied",
		Note:     "argument 1 of 'isalnum'",
		Severity: tt.SeverityError,
		Start:    token.Position{Filename: "test.go", Line: 3, Column: 2},
		End:      token.Position{Filename: "test.go", Line: 3, Column: 14},
		Trace: []tt.TraceNote{
			{Msg: "assuming 'x' is > 255", Pos: token.Position{Filename: "test.go", Line: 2, Column: 5}},
			{Msg: "taking true branch", Pos: token.Position{Filename: "test.go", Line: 2, Column: 5}},
			{Msg: "function argument constraint is not satisfied", Pos: token.Position{Filename: "test.go", Line: 3, Column: 2}},
		},
	}
}

func testSnippet() *targ.SourceCode {
	return &targ.SourceCode{Lines: []string{
		"func test(x int) {",
		"\tif x > 255 {",
		"\t\tisalnum(x)",
		"\t}",
		"}",
	}}
}

func TestSingleLineForm(t *testing.T) {
	t.Parallel()

	out := GenerateFormattedIssue([]tt.Issue{testIssue()}, testSnippet())

	assert.Contains(t, out, "error: ")
	assert.Contains(t, out, ArgConstraint)
	assert.Contains(t, out, "test.go:3:2")
	assert.Contains(t, out, "function argument constraint is not satisfied")
	assert.Contains(t, out, "argument 1 of 'isalnum'")

	// single-line form never shows the causal chain
	assert.NotContains(t, out, "assuming 'x' is > 255")
}

func TestFullPathForm(t *testing.T) {
	t.Parallel()

	out := Generate([]tt.Issue{testIssue()}, testSnippet(), Options{Trace: true})

	idxAssume := strings.Index(out, "assuming 'x' is > 255")
	idxBranch := strings.Index(out, "taking true branch")
	idxViolation := strings.LastIndex(out, "function argument constraint is not satisfied")
	require.GreaterOrEqual(t, idxAssume, 0)
	require.GreaterOrEqual(t, idxBranch, 0)

	// causal order is preserved: assumption, branch, violation
	assert.Less(t, idxAssume, idxBranch)
	assert.Less(t, idxBranch, idxViolation)

	// notes are tagged with their program points
	assert.Contains(t, out, "test.go:2:5")
}

func TestProbeForm(t *testing.T) {
	t.Parallel()

	issue := tt.Issue{
		Rule:     EvalProbe,
		Filename: "test.go",
		Message:  "TRUE",
		Severity: tt.SeverityInfo,
		Start:    token.Position{Filename: "test.go", Line: 4, Column: 2},
		End:      token.Position{Filename: "test.go", Line: 4, Column: 20},
	}
	out := GenerateFormattedIssue([]tt.Issue{issue}, testSnippet())

	assert.Contains(t, out, "info: ")
	assert.Contains(t, out, "TRUE")
	assert.Contains(t, out, "test.go:4:2")
}

func TestMissingSnippet(t *testing.T) {
	t.Parallel()

	out := GenerateFormattedIssue([]tt.Issue{testIssue()}, nil)
	assert.Contains(t, out, "function argument constraint is not satisfied")
}
