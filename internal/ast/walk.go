package ast

import (
	"math"
	"strconv"
)

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for every node. If f returns false the children of that node are skipped.
// Parameters and type annotations are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		Inspect(n.Body, f)
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}

	case *MutableBinding:
		inspectExprs(n.Targets, f)
		inspectExprs(n.Sources, f)
	case *ImmutableBinding:
		for _, t := range n.Targets {
			Inspect(t, f)
		}
		inspectExprs(n.Sources, f)
	case *WhileStatement:
		Inspect(n.Test, f)
		Inspect(n.Body, f)
	case *ForStatement:
		Inspect(n.Var, f)
		Inspect(n.Source, f)
		Inspect(n.Body, f)
	case *IfStatement:
		for _, c := range n.Cases {
			Inspect(c.Test, f)
			Inspect(c.Body, f)
		}
		if n.Alternate != nil {
			Inspect(n.Alternate, f)
		}
	case *ReturnStatement:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *FunctionDeclaration:
		Inspect(n.Body, f)
	case *ExpressionStatement:
		Inspect(n.Expr, f)

	case *SubscriptExpression:
		Inspect(n.Base, f)
		Inspect(n.Index, f)
	case *BinaryExpression:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *UnaryExpression:
		Inspect(n.Operand, f)
	case *MatrixExpression:
		inspectExprs(n.Elems, f)
	case *TupleExpression:
		inspectExprs(n.Elems, f)
	case *SetExpression:
		inspectExprs(n.Elems, f)
	case *DictionaryExpression:
		for _, kv := range n.Entries {
			Inspect(kv.Key, f)
			Inspect(kv.Value, f)
		}
	case *RangeExpression:
		Inspect(n.Start, f)
		Inspect(n.Step, f)
		Inspect(n.End, f)
	case *StringInterpolation:
		for _, p := range n.Parts {
			if in, ok := p.(*Interpolation); ok {
				Inspect(in.Expr, f)
			}
		}
	case *FunctionCallExpression:
		Inspect(n.Callee, f)
		inspectExprs(n.Args, f)
	}
}

func inspectExprs(exprs []Expr, f func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, f)
	}
}

// FormatNumber renders v as a JavaScript number literal.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
