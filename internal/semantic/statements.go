package semantic

import (
	"olive/internal/ast"
	"olive/internal/diag"
	"olive/internal/types"
)

func (a *Analyzer) analyzeBlock(ctx Context, b *ast.Block) error {
	for _, st := range b.Stmts {
		if err := a.analyzeStmt(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeStmt(ctx Context, s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.MutableBinding:
		return a.analyzeMutableBinding(ctx, st)
	case *ast.ImmutableBinding:
		return a.analyzeImmutableBinding(ctx, st)
	case *ast.WhileStatement:
		return a.analyzeWhile(ctx, st)
	case *ast.ForStatement:
		return a.analyzeFor(ctx, st)
	case *ast.IfStatement:
		return a.analyzeIf(ctx, st)
	case *ast.BreakStatement:
		return at(ctx.AssertInsideLoop("break outside of a loop"), st)
	case *ast.PassStatement:
		return at(ctx.AssertInsideLoop("pass outside of a loop"), st)
	case *ast.ReturnStatement:
		return a.analyzeReturn(ctx, st)
	case *ast.FunctionDeclaration:
		return a.analyzeFunction(ctx, st)
	case *ast.ExpressionStatement:
		return a.analyzeExpr(ctx, st.Expr)
	default:
		return failf(diag.SyntaxError, s, "unsupported statement %T", s)
	}
}

func (a *Analyzer) analyzeSources(ctx Context, sources []ast.Expr) error {
	for _, src := range sources {
		if err := a.analyzeExpr(ctx, src); err != nil {
			return err
		}
	}
	return nil
}

// analyzeMutableBinding analyzes every source before any target, so
// `a, b = b, a` reads the old values.
func (a *Analyzer) analyzeMutableBinding(ctx Context, s *ast.MutableBinding) error {
	if len(s.Targets) != len(s.Sources) {
		return failf(diag.ArityError, s, "%d targets but %d values", len(s.Targets), len(s.Sources))
	}
	if err := a.analyzeSources(ctx, s.Sources); err != nil {
		return err
	}

	s.Fresh = make([]bool, len(s.Targets))
	declared := make(map[string]bool)
	for i, target := range s.Targets {
		src := s.Sources[i].Type()

		switch t := target.(type) {
		case *ast.IdExpression:
			if declared[t.Name] {
				return failf(diag.DeclarationError, t, "%s declared twice in one binding", t.Name)
			}
			existing, found := ctx.Lookup(t.Name)
			if !found {
				v := &ast.Variable{Name: t.Name, Typ: src, Mutable: true, DeclPos: t.NamePos}
				ctx.Add(v)
				t.Referent = v
				t.SetType(src)
				s.Fresh[i] = true
				declared[t.Name] = true
				continue
			}
			if err := ctx.MustNotRebindImmutable(t.Name); err != nil {
				return at(err, t)
			}
			if !types.Equal(existing.EntityType(), src) {
				return failf(diag.TypeError, t, "cannot assign %s to %s of type %s", src, t.Name, existing.EntityType())
			}
			t.Referent = existing
			t.SetType(existing.EntityType())

		case *ast.SubscriptExpression:
			if err := a.analyzeExpr(ctx, t); err != nil {
				return err
			}
			if t.Base.Type() == types.String {
				return failf(diag.TypeError, t, "strings cannot be modified by subscript")
			}
			if !types.Equal(t.Type(), src) {
				return failf(diag.TypeError, t, "cannot assign %s to an element of type %s", src, t.Type())
			}

		default:
			return failf(diag.SyntaxError, target, "cannot assign to %T", target)
		}
	}
	return nil
}

func (a *Analyzer) analyzeImmutableBinding(ctx Context, s *ast.ImmutableBinding) error {
	if len(s.Targets) != len(s.Sources) {
		return failf(diag.ArityError, s, "%d targets but %d values", len(s.Targets), len(s.Sources))
	}
	if err := a.analyzeSources(ctx, s.Sources); err != nil {
		return err
	}

	for i, t := range s.Targets {
		if err := ctx.MustNotAlreadyBeDeclared(t.Name); err != nil {
			return at(err, t)
		}
		src := s.Sources[i].Type()
		v := &ast.Variable{Name: t.Name, Typ: src, DeclPos: t.NamePos}
		ctx.Add(v)
		t.Referent = v
		t.SetType(src)
	}
	return nil
}

func (a *Analyzer) analyzeWhile(ctx Context, s *ast.WhileStatement) error {
	if err := a.analyzeExpr(ctx, s.Test); err != nil {
		return err
	}
	if err := types.MustBeBoolean(s.Test.Type(), "while condition"); err != nil {
		return at(err, s.Test)
	}
	return a.analyzeBlock(ctx.ChildForLoop(), s.Body)
}

func (a *Analyzer) analyzeFor(ctx Context, s *ast.ForStatement) error {
	if err := a.analyzeExpr(ctx, s.Source); err != nil {
		return err
	}
	elem, err := types.IterationType(s.Source.Type())
	if err != nil {
		return at(err, s.Source)
	}

	loop := ctx.ChildForLoop()
	v := &ast.Variable{Name: s.Var.Name, Typ: elem, DeclPos: s.Var.NamePos}
	loop.Add(v)
	s.Var.Referent = v
	s.Var.SetType(elem)

	return a.analyzeBlock(loop, s.Body)
}

func (a *Analyzer) analyzeIf(ctx Context, s *ast.IfStatement) error {
	for _, c := range s.Cases {
		if err := a.analyzeExpr(ctx, c.Test); err != nil {
			return err
		}
		if err := types.MustBeBoolean(c.Test.Type(), "if condition"); err != nil {
			return at(err, c.Test)
		}
		if err := a.analyzeBlock(ctx.ChildForBlock(), c.Body); err != nil {
			return err
		}
	}
	if s.Alternate != nil {
		return a.analyzeBlock(ctx.ChildForBlock(), s.Alternate)
	}
	return nil
}

func (a *Analyzer) analyzeReturn(ctx Context, s *ast.ReturnStatement) error {
	if s.Value != nil {
		if err := a.analyzeExpr(ctx, s.Value); err != nil {
			return err
		}
	}
	if err := ctx.AssertInsideFunction("return outside of a function"); err != nil {
		return at(err, s)
	}

	fn := ctx.Function()
	want := fn.Signature.Result
	switch {
	case want == nil && s.Value != nil:
		return failf(diag.TypeError, s, "%s does not return a value", fn.Name)
	case want != nil && s.Value == nil:
		return failf(diag.TypeError, s, "%s must return %s", fn.Name, want)
	case want != nil:
		if err := types.MustBeCompatible(want, s.Value.Type(), "return value of "+fn.Name); err != nil {
			return at(err, s.Value)
		}
	}
	return nil
}

// analyzeFunction declares the function in the enclosing scope before its
// body is analyzed, so the body may call it recursively.
func (a *Analyzer) analyzeFunction(ctx Context, s *ast.FunctionDeclaration) error {
	ann := s.Annotation
	params := make([]types.Type, 0, len(ann.Params))
	if !ann.NoParams {
		for _, tn := range ann.Params {
			typ, err := a.resolveType(tn)
			if err != nil {
				return err
			}
			params = append(params, typ)
		}
	}
	if len(s.Params) != len(params) {
		return failf(diag.ArityError, s, "%s has %d parameters but its annotation lists %d",
			s.Name, len(s.Params), len(params))
	}

	var result types.Type
	if !ann.NoResult {
		typ, err := a.resolveType(ann.Result)
		if err != nil {
			return err
		}
		result = typ
	}

	if err := ctx.MustNotAlreadyBeDeclared(s.Name); err != nil {
		return at(err, s)
	}
	fn := &ast.FunctionVariable{
		Name:      s.Name,
		Signature: a.types.Function(params, result),
		Decl:      s,
	}
	ctx.Add(fn)
	s.Entity = fn

	body := ctx.ChildForFunctionBody(fn)
	for i, p := range s.Params {
		if err := body.MustNotAlreadyBeDeclared(p.Name); err != nil {
			return at(err, p)
		}
		v := &ast.Variable{Name: p.Name, Typ: params[i], DeclPos: p.NamePos}
		body.Add(v)
		p.Entity = v
	}

	return a.analyzeBlock(body, s.Body)
}
