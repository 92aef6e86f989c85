package parser_test

import (
	"testing"

	"olive/internal/ast"
	"olive/internal/diag"
	"olive/internal/lexer"
	"olive/internal/parser"
	"olive/internal/token"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)

	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			t.Logf("parser error: %s", e)
		}
		t.Fatalf("expected no parser errors, got %d", len(errs))
	}
	return prog
}

func TestParseSimpleProgram(t *testing.T) {
	input := `function helloOrBye(a) :: number -> string
    if a > 10
        return "Hello"
    else if a > 0
        return "Bye"
    else
        return "..."

let result = helloOrBye(10)
print(result)
`

	prog := parseProgram(t, input)
	if len(prog.Body.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Body.Stmts))
	}

	fn, ok := prog.Body.Stmts[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("expected FunctionDeclaration, got %T", prog.Body.Stmts[0])
	}
	if fn.Name != "helloOrBye" || len(fn.Params) != 1 || fn.Params[0].Name != "a" {
		t.Fatalf("unexpected function header: %s", ast.Dump(fn))
	}
	if len(fn.Annotation.Params) != 1 || fn.Annotation.NoParams || fn.Annotation.NoResult {
		t.Fatalf("unexpected annotation: %s", ast.Dump(fn.Annotation))
	}

	ifStmt, ok := fn.Body.Stmts[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", fn.Body.Stmts[0])
	}
	if len(ifStmt.Cases) != 2 || ifStmt.Alternate == nil {
		t.Fatalf("expected 2 cases and an else, got %d cases, else=%v", len(ifStmt.Cases), ifStmt.Alternate != nil)
	}

	let, ok := prog.Body.Stmts[1].(*ast.ImmutableBinding)
	if !ok {
		t.Fatalf("expected ImmutableBinding, got %T", prog.Body.Stmts[1])
	}
	if _, ok := let.Sources[0].(*ast.FunctionCallExpression); !ok {
		t.Fatalf("expected call source, got %T", let.Sources[0])
	}

	if _, ok := prog.Body.Stmts[2].(*ast.ExpressionStatement); !ok {
		t.Fatalf("expected ExpressionStatement, got %T", prog.Body.Stmts[2])
	}
}

func TestParseWildcardAnnotation(t *testing.T) {
	prog := parseProgram(t, "function hello() :: _ -> _\n    print(\"hi\")\n")
	fn := prog.Body.Stmts[0].(*ast.FunctionDeclaration)
	if !fn.Annotation.NoParams || !fn.Annotation.NoResult {
		t.Fatalf("expected wildcard annotation, got %s", ast.Dump(fn.Annotation))
	}
}

func TestParseCompositeAnnotation(t *testing.T) {
	prog := parseProgram(t, "function f(m, d, s, t) :: [number], {string: bool}, {number}, (number, string) -> [[number]]\n    pass\n")
	fn := prog.Body.Stmts[0].(*ast.FunctionDeclaration)

	wants := []any{&ast.MatrixType{}, &ast.DictionaryType{}, &ast.SetType{}, &ast.TupleType{}}
	for i, param := range fn.Annotation.Params {
		switch wants[i].(type) {
		case *ast.MatrixType:
			_, ok := param.(*ast.MatrixType)
			if !ok {
				t.Errorf("param %d: expected MatrixType, got %T", i, param)
			}
		case *ast.DictionaryType:
			_, ok := param.(*ast.DictionaryType)
			if !ok {
				t.Errorf("param %d: expected DictionaryType, got %T", i, param)
			}
		case *ast.SetType:
			_, ok := param.(*ast.SetType)
			if !ok {
				t.Errorf("param %d: expected SetType, got %T", i, param)
			}
		case *ast.TupleType:
			tt, ok := param.(*ast.TupleType)
			if !ok || len(tt.Elems) != 2 {
				t.Errorf("param %d: expected 2-element TupleType, got %T", i, param)
			}
		}
	}
	result, ok := fn.Annotation.Result.(*ast.MatrixType)
	if !ok {
		t.Fatalf("expected matrix result, got %T", fn.Annotation.Result)
	}
	if _, ok := result.Elem.(*ast.MatrixType); !ok {
		t.Fatalf("expected nested matrix, got %T", result.Elem)
	}
}

func TestParseBindings(t *testing.T) {
	input := `a, b = 1, 2
m[0][1] = 5
let x, y = a, b
`
	prog := parseProgram(t, input)

	mb := prog.Body.Stmts[0].(*ast.MutableBinding)
	if len(mb.Targets) != 2 || len(mb.Sources) != 2 {
		t.Fatalf("expected 2 targets and 2 sources, got %d/%d", len(mb.Targets), len(mb.Sources))
	}

	sub := prog.Body.Stmts[1].(*ast.MutableBinding)
	outer, ok := sub.Targets[0].(*ast.SubscriptExpression)
	if !ok {
		t.Fatalf("expected subscript target, got %T", sub.Targets[0])
	}
	if _, ok := outer.Base.(*ast.SubscriptExpression); !ok {
		t.Fatalf("expected chained subscript, got %T", outer.Base)
	}

	ib := prog.Body.Stmts[2].(*ast.ImmutableBinding)
	if len(ib.Targets) != 2 || ib.Targets[1].Name != "y" {
		t.Fatalf("unexpected let targets: %s", ast.Dump(ib))
	}
}

func TestParseLoops(t *testing.T) {
	input := `while true
    break
for x in [1 ... 10 by 2)
    pass
`
	prog := parseProgram(t, input)

	w := prog.Body.Stmts[0].(*ast.WhileStatement)
	if _, ok := w.Body.Stmts[0].(*ast.BreakStatement); !ok {
		t.Fatalf("expected break, got %T", w.Body.Stmts[0])
	}

	f := prog.Body.Stmts[1].(*ast.ForStatement)
	if f.Var.Name != "x" {
		t.Fatalf("expected loop variable x, got %s", f.Var.Name)
	}
	r, ok := f.Source.(*ast.RangeExpression)
	if !ok {
		t.Fatalf("expected range source, got %T", f.Source)
	}
	if !r.InclusiveStart || r.InclusiveEnd {
		t.Fatalf("expected [start, end) range, got inclusiveStart=%v inclusiveEnd=%v", r.InclusiveStart, r.InclusiveEnd)
	}
	if step := r.Step.(*ast.NumberLiteral); step.Value != 2 {
		t.Fatalf("expected step 2, got %v", step.Value)
	}
	if _, ok := f.Body.Stmts[0].(*ast.PassStatement); !ok {
		t.Fatalf("expected pass, got %T", f.Body.Stmts[0])
	}
}

func TestParseRangeDefaults(t *testing.T) {
	prog := parseProgram(t, "let r = (0 ... 5]\n")
	r := prog.Body.Stmts[0].(*ast.ImmutableBinding).Sources[0].(*ast.RangeExpression)
	if r.InclusiveStart || !r.InclusiveEnd {
		t.Fatalf("expected (start, end] range")
	}
	if step := r.Step.(*ast.NumberLiteral); step.Value != 1 {
		t.Fatalf("expected implicit step 1, got %v", step.Value)
	}
}

func TestParseLiterals(t *testing.T) {
	input := `let m = [1, 2, 3]
let t = (1, "a")
let s = {1, 2}
let d = {"a": 1, "b": 2}
let g = (1 + 2) * 3
let i = "sum: ${a + b}!"
`
	prog := parseProgram(t, input)
	src := func(i int) ast.Expr {
		return prog.Body.Stmts[i].(*ast.ImmutableBinding).Sources[0]
	}

	if m := src(0).(*ast.MatrixExpression); len(m.Elems) != 3 {
		t.Errorf("expected 3 matrix elements, got %d", len(m.Elems))
	}
	if tu := src(1).(*ast.TupleExpression); len(tu.Elems) != 2 {
		t.Errorf("expected 2 tuple elements, got %d", len(tu.Elems))
	}
	if s := src(2).(*ast.SetExpression); len(s.Elems) != 2 {
		t.Errorf("expected 2 set elements, got %d", len(s.Elems))
	}
	if d := src(3).(*ast.DictionaryExpression); len(d.Entries) != 2 {
		t.Errorf("expected 2 dictionary entries, got %d", len(d.Entries))
	}
	g := src(4).(*ast.BinaryExpression)
	if g.Op != token.Star {
		t.Errorf("expected grouping to bind tighter, got op %s", g.Op)
	}
	if _, ok := g.Left.(*ast.BinaryExpression); !ok {
		t.Errorf("expected parenthesized left operand, got %T", g.Left)
	}
	interp := src(5).(*ast.StringInterpolation)
	if len(interp.Parts) != 3 {
		t.Fatalf("expected 3 interpolation parts, got %d", len(interp.Parts))
	}
	if _, ok := interp.Parts[1].(*ast.Interpolation); !ok {
		t.Errorf("expected embedded expression, got %T", interp.Parts[1])
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := parseProgram(t, "x = not a and b or c == 1 + 2 * 3 /% 4\n")
	expr := prog.Body.Stmts[0].(*ast.MutableBinding).Sources[0]

	or, ok := expr.(*ast.BinaryExpression)
	if !ok || or.Op != token.Or {
		t.Fatalf("expected 'or' at the root, got %s", ast.Dump(expr))
	}
	and := or.Left.(*ast.BinaryExpression)
	if and.Op != token.And {
		t.Fatalf("expected 'and' on the left, got %s", and.Op)
	}
	if u := and.Left.(*ast.UnaryExpression); u.Op != token.Not {
		t.Fatalf("expected 'not' operand, got %s", u.Op)
	}
	eq := or.Right.(*ast.BinaryExpression)
	if eq.Op != token.Eq {
		t.Fatalf("expected '==' on the right, got %s", eq.Op)
	}
	add := eq.Right.(*ast.BinaryExpression)
	if add.Op != token.Plus {
		t.Fatalf("expected '+', got %s", add.Op)
	}
	divmod := add.Right.(*ast.BinaryExpression)
	if divmod.Op != token.DivMod {
		t.Fatalf("expected '/%%' to associate left over '*', got %s", divmod.Op)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing block", "while true\nx = 1\n"},
		{"unexpected indent", "x = 1\n    y = 2\n"},
		{"bad target", "f(1) = 2\n"},
		{"missing arrow", "function f() :: _\n    pass\n"},
		{"unclosed range", "let r = [1 ... 2\n"},
		{"illegal character", "x = 1 ! 2\n"},
		{"let without identifier", "let 1 = 2\n"},
		{"list without assign", "a, b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.input)
			if err == nil {
				t.Fatalf("expected a syntax error for %q", tt.input)
			}
			if !diag.Is(err, diag.SyntaxError) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
		})
	}
}
