package checker

import (
	"fmt"
	"go/ast"
	"go/token"
	gotypes "go/types"
	"strconv"

	"github.com/gnolang/targ/internal/interval"
	"github.com/gnolang/targ/internal/state"
	"github.com/gnolang/targ/internal/summary"
)

// parsedCond is a recognized branch condition on a single tracked
// symbol, with the allowed sets and wording for both directions.
type parsedCond struct {
	sym           *state.SymValue
	onTrue        interval.RangeSet
	onFalse       interval.RangeSet
	describeTrue  string
	describeFalse string
}

// parseCond recognizes comparisons between a tracked identifier and
// an integer literal or nil. Everything else is opaque.
func (w *walker) parseCond(expr ast.Expr) (parsedCond, bool) {
	bin, ok := unparen(expr).(*ast.BinaryExpr)
	if !ok {
		return parsedCond{}, false
	}
	return w.parseCondExpr(bin)
}

func (w *walker) parseCondExpr(bin *ast.BinaryExpr) (parsedCond, bool) {
	op, ok := compareOp(bin.Op)
	if !ok {
		return parsedCond{}, false
	}

	left, right := unparen(bin.X), unparen(bin.Y)

	// normalize to <ident> <op> <operand>
	if _, isIdent := left.(*ast.Ident); !isIdent {
		left, right = right, left
		op = op.Reverse()
	}
	ident, ok := left.(*ast.Ident)
	if !ok {
		return parsedCond{}, false
	}
	sym, ok := w.syms[ident.Name]
	if !ok {
		return parsedCond{}, false
	}

	if isNil(right) {
		return nilCond(sym, ident.Name, op)
	}
	lit, ok := intLiteral(right)
	if !ok {
		return parsedCond{}, false
	}
	neg := op.Negate()
	return parsedCond{
		sym:           sym,
		onTrue:        summary.Allowed(op, lit),
		onFalse:       summary.Allowed(neg, lit),
		describeTrue:  fmt.Sprintf("'%s' is %s %d", ident.Name, op, lit),
		describeFalse: fmt.Sprintf("'%s' is %s %d", ident.Name, neg, lit),
	}, true
}

func nilCond(sym *state.SymValue, name string, op summary.Op) (parsedCond, bool) {
	isNull := interval.Point(0)
	nonNull := summary.NotNullSet()
	switch op {
	case summary.OpEQ:
		return parsedCond{
			sym:           sym,
			onTrue:        isNull,
			onFalse:       nonNull,
			describeTrue:  fmt.Sprintf("'%s' is nil", name),
			describeFalse: fmt.Sprintf("'%s' is not equal to nil", name),
		}, true
	case summary.OpNE:
		return parsedCond{
			sym:           sym,
			onTrue:        nonNull,
			onFalse:       isNull,
			describeTrue:  fmt.Sprintf("'%s' is not equal to nil", name),
			describeFalse: fmt.Sprintf("'%s' is nil", name),
		}, true
	default:
		return parsedCond{}, false
	}
}

func compareOp(tok token.Token) (summary.Op, bool) {
	switch tok {
	case token.LSS:
		return summary.OpLT, true
	case token.LEQ:
		return summary.OpLE, true
	case token.GTR:
		return summary.OpGT, true
	case token.GEQ:
		return summary.OpGE, true
	case token.EQL:
		return summary.OpEQ, true
	case token.NEQ:
		return summary.OpNE, true
	default:
		return 0, false
	}
}

// intLiteral resolves integer literals, including a leading unary
// minus.
func intLiteral(expr ast.Expr) (int64, bool) {
	switch e := unparen(expr).(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT {
			return 0, false
		}
		v, err := strconv.ParseInt(e.Value, 0, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	case *ast.UnaryExpr:
		if e.Op != token.SUB {
			return 0, false
		}
		v, ok := intLiteral(e.X)
		if !ok {
			return 0, false
		}
		return -v, true
	default:
		return 0, false
	}
}

func isNil(expr ast.Expr) bool {
	ident, ok := unparen(expr).(*ast.Ident)
	return ok && ident.Name == "nil"
}

func unparen(expr ast.Expr) ast.Expr {
	for {
		paren, ok := expr.(*ast.ParenExpr)
		if !ok {
			return expr
		}
		expr = paren.X
	}
}

func exprString(expr ast.Expr) string {
	return gotypes.ExprString(expr)
}
