// Package optimizer rewrites a decorated Olive tree: it folds constant
// expressions, applies algebraic identities and removes dead statements.
//
// The pass is post-order. Each visit returns the node that should take the
// visited one's place; a nil statement tells the enclosing block to drop it.
package optimizer

import (
	"olive/internal/ast"
)

// Stats counts what one run changed.
type Stats struct {
	Folded     int // expressions replaced by a literal
	Simplified int // identities such as x + 0
	Removed    int // statements and if cases dropped
}

func (s Stats) Changed() bool {
	return s.Folded+s.Simplified+s.Removed > 0
}

type Optimizer struct {
	stats Stats
}

func New() *Optimizer {
	return &Optimizer{}
}

func (o *Optimizer) Stats() Stats {
	return o.stats
}

// Optimize rewrites prog in place and returns it.
func Optimize(prog *ast.Program) *ast.Program {
	return New().Program(prog)
}

func (o *Optimizer) Program(prog *ast.Program) *ast.Program {
	o.block(prog.Body)
	return prog
}

func (o *Optimizer) block(b *ast.Block) {
	out := b.Stmts[:0]
	for _, st := range b.Stmts {
		if st = o.stmt(st); st == nil {
			o.stats.Removed++
			continue
		}
		out = append(out, st)
	}
	// Clear the tail so dropped statements are not retained.
	for i := len(out); i < len(b.Stmts); i++ {
		b.Stmts[i] = nil
	}
	b.Stmts = out
}

func (o *Optimizer) stmt(s ast.Stmt) ast.Stmt {
	switch st := s.(type) {
	case *ast.MutableBinding:
		o.exprs(st.Sources)
		for i, t := range st.Targets {
			if sub, ok := t.(*ast.SubscriptExpression); ok {
				st.Targets[i] = o.expr(sub)
			}
		}

	case *ast.ImmutableBinding:
		o.exprs(st.Sources)

	case *ast.WhileStatement:
		st.Test = o.expr(st.Test)
		if isFalse(st.Test) {
			return nil
		}
		o.block(st.Body)

	case *ast.ForStatement:
		st.Source = o.expr(st.Source)
		o.block(st.Body)

	case *ast.IfStatement:
		return o.ifStmt(st)

	case *ast.ReturnStatement:
		if st.Value != nil {
			st.Value = o.expr(st.Value)
		}

	case *ast.FunctionDeclaration:
		o.block(st.Body)

	case *ast.ExpressionStatement:
		st.Expr = o.expr(st.Expr)

	case *ast.BreakStatement, *ast.PassStatement:
	}
	return s
}

// ifStmt drops cases whose test folds to false. A case whose test folds to
// true becomes the else block: the cases after it and the old else block are
// unreachable. An if left with neither cases nor else is removed.
func (o *Optimizer) ifStmt(st *ast.IfStatement) ast.Stmt {
	var cases []*ast.Case
	for i, c := range st.Cases {
		c.Test = o.expr(c.Test)
		if isFalse(c.Test) {
			o.stats.Removed++
			continue
		}
		o.block(c.Body)
		if isTrue(c.Test) {
			o.stats.Removed += len(st.Cases) - i - 1
			if st.Alternate != nil {
				o.stats.Removed++
			}
			st.Cases, st.Alternate = cases, c.Body
			return st
		}
		cases = append(cases, c)
	}
	st.Cases = cases
	if st.Alternate != nil {
		o.block(st.Alternate)
	}
	if len(st.Cases) == 0 && st.Alternate == nil {
		return nil
	}
	return st
}

func (o *Optimizer) exprs(list []ast.Expr) {
	for i, e := range list {
		list[i] = o.expr(e)
	}
}

func (o *Optimizer) expr(e ast.Expr) ast.Expr {
	switch ex := e.(type) {
	case *ast.NumberLiteral, *ast.BooleanLiteral, *ast.StringLiteral,
		*ast.NoneLiteral, *ast.IdExpression:
		return e

	case *ast.SubscriptExpression:
		ex.Index = o.expr(ex.Index)
		ex.Base = o.expr(ex.Base)
		return ex

	case *ast.BinaryExpression:
		ex.Left = o.expr(ex.Left)
		ex.Right = o.expr(ex.Right)
		return o.binary(ex)

	case *ast.UnaryExpression:
		ex.Operand = o.expr(ex.Operand)
		return o.unary(ex)

	case *ast.MatrixExpression:
		o.exprs(ex.Elems)
		return ex
	case *ast.TupleExpression:
		o.exprs(ex.Elems)
		return ex
	case *ast.SetExpression:
		o.exprs(ex.Elems)
		return ex
	case *ast.DictionaryExpression:
		for _, kv := range ex.Entries {
			kv.Key = o.expr(kv.Key)
			kv.Value = o.expr(kv.Value)
		}
		return ex

	case *ast.RangeExpression:
		ex.Start = o.expr(ex.Start)
		ex.Step = o.expr(ex.Step)
		ex.End = o.expr(ex.End)
		return ex

	case *ast.StringInterpolation:
		for _, p := range ex.Parts {
			if in, ok := p.(*ast.Interpolation); ok {
				in.Expr = o.expr(in.Expr)
			}
		}
		return ex

	case *ast.FunctionCallExpression:
		o.exprs(ex.Args)
		return ex
	}
	return e
}
