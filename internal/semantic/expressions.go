package semantic

import (
	"math"

	"olive/internal/ast"
	"olive/internal/diag"
	"olive/internal/token"
	"olive/internal/types"
)

// analyzeExpr resolves e and records its type on the node.
func (a *Analyzer) analyzeExpr(ctx Context, e ast.Expr) error {
	switch ex := e.(type) {
	case *ast.NumberLiteral:
		ex.SetType(types.Number)
	case *ast.BooleanLiteral:
		ex.SetType(types.Bool)
	case *ast.StringLiteral:
		ex.SetType(types.String)
	case *ast.NoneLiteral:
		ex.SetType(types.None)

	case *ast.IdExpression:
		ent, ok := ctx.Lookup(ex.Name)
		if !ok {
			return failf(diag.DeclarationError, ex, "%s has not been declared", ex.Name)
		}
		ex.Referent = ent
		ex.SetType(ent.EntityType())

	case *ast.SubscriptExpression:
		return a.analyzeSubscript(ctx, ex)
	case *ast.BinaryExpression:
		return a.analyzeBinary(ctx, ex)
	case *ast.UnaryExpression:
		return a.analyzeUnary(ctx, ex)

	case *ast.MatrixExpression:
		elem, err := a.homogeneous(ctx, ex, ex.Elems, "matrix")
		if err != nil {
			return err
		}
		ex.SetType(a.types.Matrix(elem))

	case *ast.SetExpression:
		elem, err := a.homogeneous(ctx, ex, ex.Elems, "set")
		if err != nil {
			return err
		}
		ex.SetType(a.types.Set(elem))

	case *ast.TupleExpression:
		elems := make([]types.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			if err := a.analyzeExpr(ctx, el); err != nil {
				return err
			}
			elems[i] = el.Type()
		}
		ex.SetType(a.types.Tuple(elems...))

	case *ast.DictionaryExpression:
		return a.analyzeDictionary(ctx, ex)

	case *ast.RangeExpression:
		for _, part := range []struct {
			expr ast.Expr
			what string
		}{{ex.Start, "range start"}, {ex.Step, "range step"}, {ex.End, "range end"}} {
			if err := a.analyzeExpr(ctx, part.expr); err != nil {
				return err
			}
			if err := types.MustBeNumber(part.expr.Type(), part.what); err != nil {
				return at(err, part.expr)
			}
		}
		ex.SetType(types.Range)

	case *ast.StringInterpolation:
		for _, part := range ex.Parts {
			if in, ok := part.(*ast.Interpolation); ok {
				if err := a.analyzeExpr(ctx, in.Expr); err != nil {
					return err
				}
			}
		}
		ex.SetType(types.String)

	case *ast.FunctionCallExpression:
		return a.analyzeCall(ctx, ex)

	default:
		return failf(diag.SyntaxError, e, "unsupported expression %T", e)
	}
	return nil
}

// analyzeSubscript analyzes the subscript before the base. A tuple indexed
// by an integer literal yields that element's type; any other tuple access
// requires all elements to share one type.
func (a *Analyzer) analyzeSubscript(ctx Context, ex *ast.SubscriptExpression) error {
	if err := a.analyzeExpr(ctx, ex.Index); err != nil {
		return err
	}
	if err := a.analyzeExpr(ctx, ex.Base); err != nil {
		return err
	}

	if tuple, ok := ex.Base.Type().(*types.Tuple); ok {
		if lit, ok := ex.Index.(*ast.NumberLiteral); ok && lit.Value == math.Trunc(lit.Value) {
			elem, err := types.TupleElement(tuple, int(lit.Value))
			if err != nil {
				return at(err, ex.Index)
			}
			ex.SetType(elem)
			return nil
		}
	}

	elem, err := types.Subscript(ex.Base.Type(), ex.Index.Type())
	if err != nil {
		return at(err, ex)
	}
	ex.SetType(elem)
	return nil
}

func (a *Analyzer) analyzeBinary(ctx Context, ex *ast.BinaryExpression) error {
	if err := a.analyzeExpr(ctx, ex.Left); err != nil {
		return err
	}
	if err := a.analyzeExpr(ctx, ex.Right); err != nil {
		return err
	}
	left, right := ex.Left.Type(), ex.Right.Type()
	op := opName(ex.Op)

	both := func(check func(types.Type, string) error) error {
		if err := check(left, "left operand of "+op); err != nil {
			return at(err, ex.Left)
		}
		return at(check(right, "right operand of "+op), ex.Right)
	}

	switch ex.Op {
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		if err := both(types.MustBeNumber); err != nil {
			return err
		}
		ex.SetType(types.Bool)

	case token.Eq, token.NotEq:
		if err := types.MustBeMutuallyCompatible(left, right, "operands of "+op); err != nil {
			return at(err, ex)
		}
		ex.SetType(types.Bool)

	case token.And, token.Or:
		if err := both(types.MustBeBoolean); err != nil {
			return err
		}
		ex.SetType(types.Bool)

	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent:
		if err := both(types.MustBeNumber); err != nil {
			return err
		}
		ex.SetType(types.Number)

	case token.DivMod:
		if err := both(types.MustBeNumber); err != nil {
			return err
		}
		ex.SetType(a.types.Tuple(types.Number, types.Number))

	default:
		return failf(diag.SyntaxError, ex, "unknown binary operator %s", ex.Op)
	}
	return nil
}

func (a *Analyzer) analyzeUnary(ctx Context, ex *ast.UnaryExpression) error {
	if err := a.analyzeExpr(ctx, ex.Operand); err != nil {
		return err
	}
	operand := ex.Operand.Type()

	var err error
	switch ex.Op {
	case token.Not:
		err = types.MustBeBoolean(operand, "operand of not")
	case token.Minus:
		err = types.MustBeNumber(operand, "operand of -")
	default:
		return failf(diag.SyntaxError, ex, "unknown unary operator %s", ex.Op)
	}
	if err != nil {
		return at(err, ex.Operand)
	}
	ex.SetType(operand)
	return nil
}

// homogeneous analyzes elems and returns the type they all share.
func (a *Analyzer) homogeneous(ctx Context, n ast.Node, elems []ast.Expr, what string) (types.Type, error) {
	if len(elems) == 0 {
		return nil, failf(diag.TypeError, n, "cannot infer the element type of an empty %s", what)
	}
	for _, el := range elems {
		if err := a.analyzeExpr(ctx, el); err != nil {
			return nil, err
		}
	}
	first := elems[0].Type()
	for _, el := range elems[1:] {
		if !types.Equal(first, el.Type()) {
			return nil, failf(diag.TypeError, el, "%s elements must share one type, got %s and %s", what, first, el.Type())
		}
	}
	return first, nil
}

func (a *Analyzer) analyzeDictionary(ctx Context, ex *ast.DictionaryExpression) error {
	if len(ex.Entries) == 0 {
		return failf(diag.TypeError, ex, "cannot infer the key and value types of an empty dictionary")
	}
	var key, value types.Type
	for i, kv := range ex.Entries {
		if err := a.analyzeExpr(ctx, kv.Key); err != nil {
			return err
		}
		if err := a.analyzeExpr(ctx, kv.Value); err != nil {
			return err
		}
		if i == 0 {
			key, value = kv.Key.Type(), kv.Value.Type()
			if !types.ValidKey(key) {
				return failf(diag.TypeError, kv.Key, "dictionary keys must be number or string, got %s", key)
			}
			continue
		}
		if !types.Equal(key, kv.Key.Type()) {
			return failf(diag.TypeError, kv.Key, "dictionary keys must share one type, got %s and %s", key, kv.Key.Type())
		}
		if !types.Equal(value, kv.Value.Type()) {
			return failf(diag.TypeError, kv.Value, "dictionary values must share one type, got %s and %s", value, kv.Value.Type())
		}
	}
	ex.SetType(a.types.Dictionary(key, value))
	return nil
}

func (a *Analyzer) analyzeCall(ctx Context, ex *ast.FunctionCallExpression) error {
	ent, ok := ctx.Lookup(ex.Callee.Name)
	if !ok {
		return failf(diag.DeclarationError, ex.Callee, "%s has not been declared", ex.Callee.Name)
	}
	fn, ok := ent.(*ast.FunctionVariable)
	if !ok {
		return failf(diag.TypeError, ex.Callee, "%s is not a function", ex.Callee.Name)
	}
	ex.Callee.Referent = fn
	ex.Callee.SetType(fn.Signature)

	params := fn.Signature.Params
	if len(ex.Args) != len(params) {
		return failf(diag.ArityError, ex, "%s expects %d arguments, got %d", fn.Name, len(params), len(ex.Args))
	}
	for i, arg := range ex.Args {
		if err := a.analyzeExpr(ctx, arg); err != nil {
			return err
		}
		if !types.Compatible(params[i], arg.Type()) {
			return failf(diag.TypeError, arg, "argument %d of %s must be %s, got %s", i+1, fn.Name, params[i], arg.Type())
		}
	}
	ex.SetType(fn.Signature.ReturnType())
	return nil
}

func opName(k token.Kind) string {
	switch k {
	case token.Lt:
		return "<"
	case token.LtEq:
		return "<="
	case token.Gt:
		return ">"
	case token.GtEq:
		return ">="
	case token.Eq:
		return "=="
	case token.NotEq:
		return "!="
	case token.And:
		return "and"
	case token.Or:
		return "or"
	case token.Plus:
		return "+"
	case token.Minus:
		return "-"
	case token.Star:
		return "*"
	case token.Slash:
		return "/"
	case token.Percent:
		return "%"
	case token.DivMod:
		return "/%"
	case token.Not:
		return "not"
	default:
		return k.String()
	}
}
