// Package checker walks parsed source files, follows simple branch
// conditions path-sensitively, and verifies every call to a modeled
// function against its registered argument summary. It is the bridge
// between go/ast and the constraint engine: conditions and arguments
// it cannot understand leave the symbolic state untouched.
package checker

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/gnolang/targ/internal/engine"
	"github.com/gnolang/targ/internal/interval"
	"github.com/gnolang/targ/internal/report"
	"github.com/gnolang/targ/internal/state"
	"github.com/gnolang/targ/internal/summary"
	tt "github.com/gnolang/targ/internal/types"
)

const (
	// RuleArgConstraint tags precondition violation issues.
	RuleArgConstraint = "arg-constraint"
	// RuleEvalProbe tags targ_eval probe results.
	RuleEvalProbe = "targ-eval"

	// EvalProbe is the debugging pseudo-function: targ_eval(expr)
	// reports whether the analyzer can prove expr at that point.
	EvalProbe = "targ_eval"

	defaultMaxPaths = 64
)

// Checker verifies argument constraints in one or more files against
// an immutable summary registry.
type Checker struct {
	registry *summary.Registry
	maxPaths int
}

// Option configures a Checker.
type Option func(*Checker)

// WithMaxPaths bounds how many forked paths one function body may
// produce before the walker stops splitting on branches.
func WithMaxPaths(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.maxPaths = n
		}
	}
}

// New creates a checker against the given registry. The registry is
// never mutated or cached beyond this reference.
func New(registry *summary.Registry, opts ...Option) *Checker {
	c := &Checker{registry: registry, maxPaths: defaultMaxPaths}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckFile analyzes every function in the file and returns the
// issues found.
func (c *Checker) CheckFile(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error) {
	if node == nil {
		return nil, fmt.Errorf("checker: nil file for %s", filename)
	}

	var issues []tt.Issue
	for _, decl := range node.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		w := &walker{
			checker:  c,
			filename: filename,
			fset:     fset,
			syms:     paramSyms(fn),
		}
		w.walkStmts(state.New(), fn.Body.List)
		issues = append(issues, w.issues...)
	}
	return dedupe(issues), nil
}

// dedupe collapses issues a call site produced on more than one
// explored path. Every path reaching the site proves the same
// violation; the first report, with its note chain, stands for all of
// them. Probe results with different truth values stay distinct.
func dedupe(issues []tt.Issue) []tt.Issue {
	if len(issues) < 2 {
		return issues
	}
	seen := make(map[string]bool, len(issues))
	kept := issues[:0]
	for _, issue := range issues {
		key := fmt.Sprintf("%s|%d:%d|%s", issue.Rule, issue.Start.Line, issue.Start.Column, issue.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, issue)
	}
	return kept
}

// paramSyms mints one symbolic value per named parameter. Every
// parameter starts fully unconstrained.
func paramSyms(fn *ast.FuncDecl) map[string]*state.SymValue {
	syms := make(map[string]*state.SymValue)
	if fn.Type.Params == nil {
		return syms
	}
	for _, field := range fn.Type.Params.List {
		for _, name := range field.Names {
			if name.Name == "_" {
				continue
			}
			syms[name.Name] = state.NewSym(name.Name)
		}
	}
	return syms
}

type walker struct {
	checker  *Checker
	filename string
	fset     *token.FileSet
	syms     map[string]*state.SymValue
	issues   []tt.Issue
	paths    int
}

// walkStmts follows one path through stmts. Recognized if-conditions
// fork the walk: each branch continues through the remainder of the
// statement list with its own narrowed state, so branches are real
// paths, never merged. A nil return means the path was cut by a
// provable violation or a return statement.
func (w *walker) walkStmts(st *state.State, stmts []ast.Stmt) *state.State {
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ExprStmt:
			st = w.walkExpr(st, s.X)
		case *ast.AssignStmt:
			st = w.walkAssign(st, s)
		case *ast.ReturnStmt:
			for _, res := range s.Results {
				if st = w.walkExpr(st, res); st == nil {
					break
				}
			}
			return nil
		case *ast.IfStmt:
			rest := stmts[i+1:]
			w.walkIf(st, s, rest)
			return nil
		case *ast.BlockStmt:
			// splice the block into the remaining statements so an
			// if at its end forks through the code after the block
			rest := stmts[i+1:]
			return w.walkStmts(st, append(append([]ast.Stmt{}, s.List...), rest...))
		case *ast.ForStmt:
			// loop bodies are walked once, without iteration facts
			if s.Body != nil {
				w.walkStmts(st, s.Body.List)
			}
		case *ast.RangeStmt:
			if s.Body != nil {
				w.walkStmts(st, s.Body.List)
			}
		}
		if st == nil {
			return nil
		}
	}
	return st
}

// walkIf forks the walk at a recognized condition. Both directions
// carry their assumption and branch notes; infeasible directions are
// pruned. Unrecognized conditions are treated as opaque: both sides
// are walked with the unnarrowed state.
func (w *walker) walkIf(st *state.State, s *ast.IfStmt, rest []ast.Stmt) {
	cond, ok := w.parseCond(s.Cond)
	if !ok || w.paths >= w.checker.maxPaths {
		// opaque condition: scan both bodies for calls, then carry on
		// with the unnarrowed state
		w.walkStmts(st, s.Body.List)
		if s.Else != nil {
			w.walkElse(st, s.Else, nil)
		}
		w.walkStmts(st, rest)
		return
	}
	w.paths++

	pos := w.fset.Position(s.Cond.Pos())
	trueSt := st.Assume(
		[]state.Fact{{Sym: cond.sym, Allowed: cond.onTrue}},
		state.Note{Kind: state.NoteAssume, Msg: "assuming " + cond.describeTrue, Pos: pos},
		state.Note{Kind: state.NoteBranch, Msg: "taking true branch", Pos: pos},
	)
	if !trueSt.Infeasible() {
		w.walkStmts(trueSt, append(append([]ast.Stmt{}, s.Body.List...), rest...))
	}

	falseSt := st.Assume(
		[]state.Fact{{Sym: cond.sym, Allowed: cond.onFalse}},
		state.Note{Kind: state.NoteAssume, Msg: "assuming " + cond.describeFalse, Pos: pos},
		state.Note{Kind: state.NoteBranch, Msg: "taking false branch", Pos: pos},
	)
	if falseSt.Infeasible() {
		return
	}
	if s.Else != nil {
		w.walkElse(falseSt, s.Else, rest)
	} else {
		w.walkStmts(falseSt, rest)
	}
}

func (w *walker) walkElse(st *state.State, els ast.Stmt, rest []ast.Stmt) {
	switch e := els.(type) {
	case *ast.BlockStmt:
		w.walkStmts(st, append(append([]ast.Stmt{}, e.List...), rest...))
	case *ast.IfStmt:
		w.walkIf(st, e, rest)
	}
}

// walkAssign tracks `x := <literal>` bindings and scans right-hand
// sides for modeled calls. Reassignment rebinds the name to a fresh
// symbol, old facts stay with the old symbol.
func (w *walker) walkAssign(st *state.State, s *ast.AssignStmt) *state.State {
	for _, rhs := range s.Rhs {
		if st = w.walkExpr(st, rhs); st == nil {
			return nil
		}
	}
	if len(s.Lhs) != len(s.Rhs) {
		return st
	}
	for i, lhs := range s.Lhs {
		ident, ok := lhs.(*ast.Ident)
		if !ok || ident.Name == "_" {
			continue
		}
		lit, ok := intLiteral(s.Rhs[i])
		if !ok {
			// unknown value: forget anything known under this name
			w.syms[ident.Name] = state.NewSym(ident.Name)
			continue
		}
		sym := state.NewSym(ident.Name)
		w.syms[ident.Name] = sym
		st = st.Assume([]state.Fact{{Sym: sym, Allowed: interval.Point(lit)}})
	}
	return st
}

// walkExpr scans an expression for calls to modeled functions and
// eval probes. It returns the state after the calls, or nil when a
// provable violation makes the rest of the path unreachable.
func (w *walker) walkExpr(st *state.State, expr ast.Expr) *state.State {
	switch e := expr.(type) {
	case *ast.CallExpr:
		return w.walkCall(st, e)
	case *ast.BinaryExpr:
		if st = w.walkExpr(st, e.X); st == nil {
			return nil
		}
		return w.walkExpr(st, e.Y)
	case *ast.UnaryExpr:
		return w.walkExpr(st, e.X)
	case *ast.ParenExpr:
		return w.walkExpr(st, e.X)
	}
	return st
}

func (w *walker) walkCall(st *state.State, call *ast.CallExpr) *state.State {
	ident, ok := call.Fun.(*ast.Ident)
	if !ok {
		return st
	}

	if ident.Name == EvalProbe {
		w.reportProbe(st, call)
		return st
	}

	sum, ok := w.checker.registry.Lookup(ident.Name)
	if !ok {
		return st
	}

	args := make([]engine.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = w.resolveArg(arg)
	}

	pos := w.fset.Position(call.Pos())
	res := engine.ApplySummary(st, engine.Call{Func: ident.Name, Args: args, Pos: pos}, sum)
	for _, rep := range res.Reports {
		w.issues = append(w.issues, violationIssue(w.filename, rep, w.fset.Position(call.End())))
	}
	return res.State
}

// resolveArg maps an argument expression to an engine value: integer
// literals and nil become concrete scalars, known identifiers keep
// their symbol, anything else becomes a fresh opaque symbol.
func (w *walker) resolveArg(arg ast.Expr) engine.Value {
	if lit, ok := intLiteral(arg); ok {
		return engine.Concrete(lit)
	}
	if ident, ok := unparen(arg).(*ast.Ident); ok {
		if ident.Name == "nil" {
			return engine.Concrete(0)
		}
		if sym, ok := w.syms[ident.Name]; ok {
			return engine.Symbolic(sym)
		}
	}
	return engine.Symbolic(state.NewSym(exprString(arg)))
}

func violationIssue(filename string, rep report.Report, end token.Position) tt.Issue {
	trace := make([]tt.TraceNote, len(rep.Notes))
	for i, n := range rep.Notes {
		trace[i] = tt.TraceNote{Msg: n.Msg, Pos: n.Pos}
	}
	return tt.Issue{
		Rule:     RuleArgConstraint,
		Category: "precondition",
		Filename: filename,
		Message:  rep.Desc,
		Note:     fmt.Sprintf("argument %d of '%s'", rep.Arg+1, rep.Func),
		Severity: tt.SeverityError,
		Start:    rep.Pos,
		End:      end,
		Trace:    trace,
	}
}

func (w *walker) reportProbe(st *state.State, call *ast.CallExpr) {
	if len(call.Args) != 1 {
		return
	}
	truth := w.evalProbe(st, call.Args[0])
	pos := w.fset.Position(call.Pos())
	w.issues = append(w.issues, tt.Issue{
		Rule:     RuleEvalProbe,
		Category: "debug",
		Filename: w.filename,
		Message:  truth.String(),
		Severity: tt.SeverityInfo,
		Start:    pos,
		End:      w.fset.Position(call.End()),
	})
}

// evalProbe resolves a probe expression to three-valued truth under
// the current state. Conjunction and disjunction combine per Kleene
// logic; unsupported shapes are Unknown.
func (w *walker) evalProbe(st *state.State, expr ast.Expr) state.Truth {
	switch e := unparen(expr).(type) {
	case *ast.BinaryExpr:
		switch e.Op {
		case token.LAND:
			return truthAnd(w.evalProbe(st, e.X), w.evalProbe(st, e.Y))
		case token.LOR:
			return truthOr(w.evalProbe(st, e.X), w.evalProbe(st, e.Y))
		}
		if cond, ok := w.parseCondExpr(e); ok {
			return st.Eval(cond.sym, cond.onTrue)
		}
	case *ast.UnaryExpr:
		if e.Op == token.NOT {
			return truthNot(w.evalProbe(st, e.X))
		}
	}
	return state.Unknown
}

func truthAnd(a, b state.Truth) state.Truth {
	if a == state.False || b == state.False {
		return state.False
	}
	if a == state.True && b == state.True {
		return state.True
	}
	return state.Unknown
}

func truthOr(a, b state.Truth) state.Truth {
	if a == state.True || b == state.True {
		return state.True
	}
	if a == state.False && b == state.False {
		return state.False
	}
	return state.Unknown
}

func truthNot(a state.Truth) state.Truth {
	switch a {
	case state.True:
		return state.False
	case state.False:
		return state.True
	default:
		return state.Unknown
	}
}
