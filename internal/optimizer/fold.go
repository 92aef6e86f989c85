package optimizer

import (
	"math"

	"olive/internal/ast"
	"olive/internal/token"
	"olive/internal/types"
)

func (o *Optimizer) binary(ex *ast.BinaryExpression) ast.Expr {
	if folded := foldBinary(ex); folded != nil {
		o.stats.Folded++
		return folded
	}
	if simpler := simplify(ex); simpler != nil {
		o.stats.Simplified++
		return simpler
	}
	return ex
}

func (o *Optimizer) unary(ex *ast.UnaryExpression) ast.Expr {
	switch ex.Op {
	case token.Not:
		if b, ok := ex.Operand.(*ast.BooleanLiteral); ok {
			o.stats.Folded++
			return boolLit(ex, !b.Value)
		}
	case token.Minus:
		if n, ok := ex.Operand.(*ast.NumberLiteral); ok {
			o.stats.Folded++
			return numberLit(ex, -n.Value)
		}
	}
	return ex
}

// foldBinary evaluates an operator applied to two literals, or returns nil
// when the operands are not both literals or the result would change what
// the program does at run time (division by zero, overflow).
func foldBinary(ex *ast.BinaryExpression) ast.Expr {
	switch l := ex.Left.(type) {
	case *ast.NumberLiteral:
		r, ok := ex.Right.(*ast.NumberLiteral)
		if !ok {
			return nil
		}
		return foldNumbers(ex, l.Value, r.Value)

	case *ast.BooleanLiteral:
		r, ok := ex.Right.(*ast.BooleanLiteral)
		if !ok {
			return nil
		}
		switch ex.Op {
		case token.And:
			return boolLit(ex, l.Value && r.Value)
		case token.Or:
			return boolLit(ex, l.Value || r.Value)
		case token.Eq:
			return boolLit(ex, l.Value == r.Value)
		case token.NotEq:
			return boolLit(ex, l.Value != r.Value)
		}

	case *ast.StringLiteral:
		r, ok := ex.Right.(*ast.StringLiteral)
		if !ok {
			return nil
		}
		switch ex.Op {
		case token.Eq:
			return boolLit(ex, l.Value == r.Value)
		case token.NotEq:
			return boolLit(ex, l.Value != r.Value)
		}

	case *ast.NoneLiteral:
		if _, ok := ex.Right.(*ast.NoneLiteral); !ok {
			return nil
		}
		switch ex.Op {
		case token.Eq:
			return boolLit(ex, true)
		case token.NotEq:
			return boolLit(ex, false)
		}
	}
	return nil
}

func foldNumbers(ex *ast.BinaryExpression, a, b float64) ast.Expr {
	var v float64
	switch ex.Op {
	case token.Plus:
		v = a + b
	case token.Minus:
		v = a - b
	case token.Star:
		v = a * b
	case token.Slash:
		if b == 0 {
			return nil
		}
		v = a / b
	case token.Percent:
		if b == 0 {
			return nil
		}
		v = math.Mod(a, b)

	case token.Lt:
		return boolLit(ex, a < b)
	case token.LtEq:
		return boolLit(ex, a <= b)
	case token.Gt:
		return boolLit(ex, a > b)
	case token.GtEq:
		return boolLit(ex, a >= b)
	case token.Eq:
		return boolLit(ex, a == b)
	case token.NotEq:
		return boolLit(ex, a != b)

	default:
		// divmod yields a tuple, which has no literal form
		return nil
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return numberLit(ex, v)
}

// simplify applies the algebraic identities with one literal operand.
func simplify(ex *ast.BinaryExpression) ast.Expr {
	l, r := ex.Left, ex.Right
	switch ex.Op {
	case token.Plus:
		if isNumber(r, 0) {
			return l
		}
		if isNumber(l, 0) {
			return r
		}
	case token.Minus:
		if isNumber(r, 0) {
			return l
		}
	case token.Star:
		if isNumber(r, 1) {
			return l
		}
		if isNumber(l, 1) {
			return r
		}
		if isNumber(r, 0) && pure(l) {
			return numberLit(ex, 0)
		}
		if isNumber(l, 0) && pure(r) {
			return numberLit(ex, 0)
		}
	case token.Slash:
		if isNumber(r, 1) {
			return l
		}
	case token.And:
		if isTrue(r) {
			return l
		}
		if isTrue(l) {
			return r
		}
	case token.Or:
		if isFalse(r) {
			return l
		}
		if isFalse(l) {
			return r
		}
	}
	return nil
}

// pure reports whether evaluating e cannot call a function.
func pure(e ast.Expr) bool {
	calls := false
	ast.Inspect(e, func(n ast.Node) bool {
		if _, ok := n.(*ast.FunctionCallExpression); ok {
			calls = true
		}
		return !calls
	})
	return !calls
}

func isNumber(e ast.Expr, v float64) bool {
	n, ok := e.(*ast.NumberLiteral)
	return ok && n.Value == v
}

func isTrue(e ast.Expr) bool {
	b, ok := e.(*ast.BooleanLiteral)
	return ok && b.Value
}

func isFalse(e ast.Expr) bool {
	b, ok := e.(*ast.BooleanLiteral)
	return ok && !b.Value
}

// numberLit and boolLit build a literal standing in for e. It keeps e's
// position and decorated type.
func numberLit(e ast.Expr, v float64) *ast.NumberLiteral {
	lit := &ast.NumberLiteral{Value: v, Raw: ast.FormatNumber(v), LitPos: e.Pos()}
	lit.SetType(typeOf(e, types.Number))
	return lit
}

func boolLit(e ast.Expr, v bool) *ast.BooleanLiteral {
	lit := &ast.BooleanLiteral{Value: v, LitPos: e.Pos()}
	lit.SetType(typeOf(e, types.Bool))
	return lit
}

func typeOf(e ast.Expr, fallback types.Type) types.Type {
	if t := e.Type(); t != nil {
		return t
	}
	return fallback
}
