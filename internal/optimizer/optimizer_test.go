package optimizer_test

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"olive/internal/ast"
	"olive/internal/optimizer"
	"olive/internal/parser"
	"olive/internal/semantic"
	"olive/internal/types"
)

func analyzed(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := semantic.Analyze(prog); err != nil {
		t.Fatalf("analysis error: %v", err)
	}
	return prog
}

// lastSource optimizes src and returns the source expression of its last
// statement, which must be a let binding.
func lastSource(t *testing.T, src string) ast.Expr {
	t.Helper()
	prog := optimizer.Optimize(analyzed(t, src))
	stmts := prog.Body.Stmts
	let, ok := stmts[len(stmts)-1].(*ast.ImmutableBinding)
	if !ok {
		t.Fatalf("last statement is %T", stmts[len(stmts)-1])
	}
	return let.Sources[0]
}

func TestFoldLiterals(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"3 + 4", "7"},
		{"3 + 4 * 2", "11"},
		{"10 - 2 - 3", "5"},
		{"7 / 2", "3.5"},
		{"7 % 3", "1"},
		{"-7 % 3", "-1"},
		{"-(2 + 3)", "-5"},
		{"1 < 2", "true"},
		{"2 <= 1", "false"},
		{"3 == 3", "true"},
		{"3 != 3", "false"},
		{"true and false", "false"},
		{"false or true", "true"},
		{"not false", "true"},
		{"not (1 > 2)", "true"},
		{"\"a\" == \"a\"", "true"},
		{"\"a\" != \"a\"", "false"},
		{"none == none", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := lastSource(t, "let x = "+tt.expr+"\n")
			switch lit := got.(type) {
			case *ast.NumberLiteral:
				be.Equal(t, lit.Raw, tt.want)
				be.Equal(t, lit.Type(), types.Type(types.Number))
			case *ast.BooleanLiteral:
				be.Equal(t, lit.Type(), types.Type(types.Bool))
				if tt.want == "true" {
					be.True(t, lit.Value)
				} else {
					be.True(t, !lit.Value)
				}
			default:
				t.Fatalf("expected a literal, got %T", got)
			}
		})
	}
}

func TestNotFolded(t *testing.T) {
	tests := []string{
		"1 / 0",
		"1 % 0",
		"7 /% 2",
		"1e308 * 10",
		"a + 1",
		"\"a\" == s",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			got := lastSource(t, "a = 1\ns = \"s\"\nlet x = "+expr+"\n")
			_, ok := got.(*ast.BinaryExpression)
			be.True(t, ok)
		})
	}
}

func TestIdentities(t *testing.T) {
	tests := []string{
		"a + 0",
		"0 + a",
		"a - 0",
		"a * 1",
		"1 * a",
		"a / 1",
		"(a * 1) + (0 * 1)",
	}
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			got := lastSource(t, "a = 5\nlet x = "+expr+"\n")
			id, ok := got.(*ast.IdExpression)
			be.True(t, ok)
			be.Equal(t, id.Name, "a")
			be.Equal(t, id.Type(), types.Type(types.Number))
		})
	}

	bools := []string{"b and true", "true and b", "b or false", "false or b"}
	for _, expr := range bools {
		t.Run(expr, func(t *testing.T) {
			got := lastSource(t, "b = 1 < 2\nb = 2 < 1\nlet x = "+expr+"\n")
			id, ok := got.(*ast.IdExpression)
			be.True(t, ok)
			be.Equal(t, id.Name, "b")
		})
	}
}

func TestMultiplyByZero(t *testing.T) {
	got := lastSource(t, "a = 5\nlet x = a * 0\n")
	lit, ok := got.(*ast.NumberLiteral)
	be.True(t, ok)
	be.Equal(t, lit.Value, 0.0)

	got = lastSource(t, "a = 5\nlet x = 0 * a\n")
	_, ok = got.(*ast.NumberLiteral)
	be.True(t, ok)

	src := "function f() :: _ -> number\n    print(\"called\")\n    return 1\nlet x = f() * 0\n"
	got = lastSource(t, src)
	_, ok = got.(*ast.BinaryExpression)
	be.True(t, ok)
}

func TestDeadWhile(t *testing.T) {
	src := `
while false
    print(1)
while 1 > 2
    print(2)
i = 0
while i < 3
    while false
        print(3)
    i = i + 1
`
	o := optimizer.New()
	prog := o.Program(analyzed(t, src))
	be.Equal(t, len(prog.Body.Stmts), 2)

	loop := prog.Body.Stmts[1].(*ast.WhileStatement)
	be.Equal(t, len(loop.Body.Stmts), 1)
	be.Equal(t, o.Stats().Removed, 3)
	be.True(t, o.Stats().Changed())
}

func TestDeadIfCases(t *testing.T) {
	t.Run("false case dropped", func(t *testing.T) {
		src := "a = 1\nif false\n    print(1)\nelse if a > 1\n    print(2)\nelse\n    print(3)\n"
		prog := optimizer.Optimize(analyzed(t, src))
		st := prog.Body.Stmts[1].(*ast.IfStatement)
		be.Equal(t, len(st.Cases), 1)
		be.True(t, st.Alternate != nil)
	})
	t.Run("true case becomes else", func(t *testing.T) {
		src := "a = 1\nif a > 1\n    print(1)\nelse if 1 < 2\n    print(2)\nelse if a < 0\n    print(3)\nelse\n    print(4)\n"
		prog := optimizer.Optimize(analyzed(t, src))
		st := prog.Body.Stmts[1].(*ast.IfStatement)
		be.Equal(t, len(st.Cases), 1)
		be.True(t, strings.Contains(ast.Dump(st.Alternate), "NumberLiteral 2"))
	})
	t.Run("leading true case", func(t *testing.T) {
		prog := optimizer.Optimize(analyzed(t, "if true\n    print(1)\nelse\n    print(2)\n"))
		st := prog.Body.Stmts[0].(*ast.IfStatement)
		be.Equal(t, len(st.Cases), 0)
		be.True(t, strings.Contains(ast.Dump(st.Alternate), "NumberLiteral 1"))
	})
	t.Run("all cases false", func(t *testing.T) {
		prog := optimizer.Optimize(analyzed(t, "if false\n    print(1)\nelse if 2 < 1\n    print(2)\n"))
		be.Equal(t, len(prog.Body.Stmts), 0)
	})
}

func TestFoldingReachesEveryExpression(t *testing.T) {
	src := `
m = [1 + 1, 2 * 3]
m[0 + 1] = 4 - 1
let d = {"k": 1 + 2}
for i in [0 ... 2 + 2 by 1 * 1]
    print("${i * 1} ${1 + 1}")
function f(n) :: number -> number
    return n + 0
print(f(2 + 2))
let t = (1 + 1, true and true)
`
	prog := optimizer.Optimize(analyzed(t, src))
	ast.Inspect(prog, func(n ast.Node) bool {
		if b, ok := n.(*ast.BinaryExpression); ok {
			t.Errorf("binary expression left at %s: %s", b.Pos(), strings.TrimSpace(ast.Dump(b)))
		}
		return true
	})
}

func TestIdempotent(t *testing.T) {
	src := `
let base = 2 * 3 + 1
total = 0
for i in [1 ... 10]
    if i > 5 and true
        break
    else if false
        print("never")
    total = total + i * 1 + base * 0
while false or 1 > 2
    print("dead")
if 1 < 2
    print("yes ${total + 0}")
else
    print("no")
function sq(x) :: number -> number
    return x * x / 1
print(sq(-(3)))
`
	o1 := optimizer.New()
	prog := o1.Program(analyzed(t, src))
	once := ast.Dump(prog)
	be.True(t, o1.Stats().Changed())

	o2 := optimizer.New()
	twice := ast.Dump(o2.Program(prog))
	be.Equal(t, twice, once)
	be.True(t, !o2.Stats().Changed())
}

func TestTypesPreserved(t *testing.T) {
	src := "a = 5\nlet x = (a + 0) * (2 + 3)\nlet y = not (a > 3 and false)\n"
	prog := analyzed(t, src)
	before := map[int]types.Type{}
	for i, st := range prog.Body.Stmts[1:] {
		before[i] = st.(*ast.ImmutableBinding).Sources[0].Type()
	}
	optimizer.Optimize(prog)
	for i, st := range prog.Body.Stmts[1:] {
		be.Equal(t, st.(*ast.ImmutableBinding).Sources[0].Type(), before[i])
	}
}
