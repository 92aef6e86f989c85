package codegen_test

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/nalgeon/be"

	"olive/internal/ast"
	"olive/internal/codegen"
	"olive/internal/optimizer"
	"olive/internal/parser"
	"olive/internal/semantic"
)

func generate(t *testing.T, src string, optimize bool) string {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := semantic.Analyze(prog); err != nil {
		t.Fatalf("analysis error: %v", err)
	}
	if optimize {
		prog = optimizer.Optimize(prog)
	}
	js, err := codegen.Generate(prog)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return js
}

// execute runs js and returns what it printed, one entry per console.log.
func execute(js string) ([]string, error) {
	vm := goja.New()
	var out []string
	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		out = append(out, call.Argument(0).String())
		return goja.Undefined()
	})
	_ = vm.Set("console", console)
	_, err := vm.RunString(js)
	return out, err
}

func run(t *testing.T, src string) []string {
	t.Helper()
	js := generate(t, src, false)
	out, err := execute(js)
	if err != nil {
		t.Logf("generated:\n%s", js)
		t.Fatalf("run error: %v", err)
	}
	return out
}

func TestLibraryComesFirst(t *testing.T) {
	js := generate(t, "print(1)\n", false)
	be.True(t, strings.HasPrefix(js, "function print_1(_) {\n  console.log(_);\n}\n"))
	be.True(t, strings.Contains(js, "function sqrt_2(_) {"))
	be.True(t, strings.Contains(js, "function generateMatrixFromRange_3(inclusiveStart, start, step, end, inclusiveEnd) {"))
	be.True(t, strings.Contains(js, "function generateDivmod_4(a, b) {"))
	be.True(t, strings.HasSuffix(js, "print_1(1);\n"))
}

func TestBindingArithmetic(t *testing.T) {
	js := generate(t, "let x = 3 + 4\nprint(x)\n", false)
	be.True(t, strings.Contains(js, "const x_5 = (3 + 4);\n"))

	out, err := execute(js)
	be.Err(t, err, nil)
	be.Equal(t, out, []string{"7"})
}

func TestSwap(t *testing.T) {
	src := "a, b = 1, 2\na, b = b, a\nprint(a)\nprint(b)\n"
	js := generate(t, src, false)
	be.True(t, strings.Contains(js, "let [a_5, b_6] = [1, 2];\n"))
	be.True(t, strings.Contains(js, "[a_5, b_6] = [b_6, a_5];\n"))

	out, err := execute(js)
	be.Err(t, err, nil)
	be.Equal(t, out, []string{"2", "1"})
}

func TestMixedFreshTargets(t *testing.T) {
	js := generate(t, "a = 1\na, c = 2, 3\nprint(a + c)\n", false)
	be.True(t, strings.Contains(js, "let c_6;\n[a_5, c_6] = [2, 3];\n"))

	out, err := execute(js)
	be.Err(t, err, nil)
	be.Equal(t, out, []string{"5"})
}

func TestShadowingKeepsNamesApart(t *testing.T) {
	src := `
let x = 1
function f() :: _ -> string
    let x = "inner"
    return x
print(f())
print(x)
`
	js := generate(t, src, false)
	be.True(t, strings.Contains(js, "const x_5 = 1;"))
	be.True(t, strings.Contains(js, "const x_7 = \"inner\";"))
	be.Equal(t, run(t, src), []string{"inner", "1"})
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			"break inside if",
			"for x in [1, 2, 3]\n    if x == 2\n        break\n    print(x)\n",
			[]string{"1"},
		},
		{
			"pass continues",
			"for x in [1 ... 4]\n    if x % 2 == 0\n        pass\n    print(x)\n",
			[]string{"1", "3"},
		},
		{
			"while",
			"i = 0\nwhile i < 3\n    i = i + 1\nprint(i)\n",
			[]string{"3"},
		},
		{
			"if chain",
			"for n in [1, 5, 10]\n    if n < 3\n        print(\"small\")\n    else if n < 7\n        print(\"medium\")\n    else\n        print(\"large\")\n",
			[]string{"small", "medium", "large"},
		},
		{
			"recursion",
			"function fib(n) :: number -> number\n    if n < 2\n        return n\n    return fib(n - 1) + fib(n - 2)\nprint(fib(10))\n",
			[]string{"55"},
		},
		{
			"void function",
			"function hello(name) :: string -> _\n    print(\"hello ${name}\")\n    return\nhello(\"olive\")\n",
			[]string{"hello olive"},
		},
		{
			"sqrt",
			"print(sqrt(16))\n",
			[]string{"4"},
		},
		{
			"divmod",
			"let q = 7 /% 2\nprint(q[0])\nprint(q[1])\n",
			[]string{"3", "1"},
		},
		{
			"logic",
			"let a = 3\nprint(not (a > 1 and a < 2) or a == 4)\nprint(a != 3)\n",
			[]string{"true", "false"},
		},
		{
			"negation",
			"let a = -3\nprint(-a)\nprint(- -a)\n",
			[]string{"3", "-3"},
		},
		{
			"subscript assignment",
			"m = [[1, 2], [3, 4]]\nm[1][0] = 9\nprint(m[1][0])\n",
			[]string{"9"},
		},
		{
			"tuple",
			"let t = (1, \"a\", true)\nprint(t[1])\n",
			[]string{"a"},
		},
		{
			"number keys",
			"let d = {1: \"one\", 2: \"two\"}\nfor k in d\n    print(k + 1)\n",
			[]string{"2", "3"},
		},
		{
			"string keys",
			"let d = {\"a\": 1, \"b\": 2}\nfor k in d\n    print(d[k])\n",
			[]string{"1", "2"},
		},
		{
			"set",
			"let s = {1, 2, 2}\nfor v in s\n    print(v)\n",
			[]string{"1", "2"},
		},
		{
			"string characters",
			"for c in \"ab\"\n    print(c)\n",
			[]string{"a", "b"},
		},
		{
			"interpolation",
			"let name = \"Olive\"\nprint(\"Hi ${name}, ${1 + 2} `ok` \\${x}\")\n",
			[]string{"Hi Olive, 3 `ok` ${x}"},
		},
		{
			"string escapes",
			"print(\"a\\\"b\\\\c\\td\")\n",
			[]string{"a\"b\\c\td"},
		},
		{
			"none",
			"print(none)\n",
			[]string{"null"},
		},
		{
			"dictionary statement",
			"{\"a\": 1}\nprint(1)\n",
			[]string{"1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, run(t, tt.src), tt.want)
		})
	}
}

func TestRanges(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"[1 ... 5]", "1,2,3,4,5"},
		{"(1 ... 5]", "2,3,4,5"},
		{"[1 ... 5)", "1,2,3,4"},
		{"(1 ... 5)", "2,3,4"},
		{"[0 ... 10 by 3]", "0,3,6,9"},
		{"[5 ... 1 by -1]", "5,4,3,2,1"},
		{"(5 ... 1 by -2)", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			be.Equal(t, run(t, "print("+tt.expr+")\n"), []string{tt.want})
		})
	}
}

func TestInvalidRangeThrows(t *testing.T) {
	for _, expr := range []string{"[1 ... 5 by -1]", "[5 ... 1]", "[1 ... 5 by 0]"} {
		t.Run(expr, func(t *testing.T) {
			js := generate(t, "for i in "+expr+"\n    print(i)\n", false)
			_, err := execute(js)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), "Range expression generator values are invalid"))
		})
	}
}

func TestOptimizedProgramBehavesTheSame(t *testing.T) {
	src := `
let base = 2 * 3 + 1
total = 0
for i in [1 ... 10]
    if i > 5 and true
        break
    else if false
        print("never")
    total = total + i * 1 + base * 0
while false
    print("dead")
if 1 < 2
    print("yes ${total + 0}")
else
    print("no")
function sq(x) :: number -> number
    return x * x / 1
print(sq(-(3)))
`
	plain, err := execute(generate(t, src, false))
	be.Err(t, err, nil)

	js := generate(t, src, true)
	optimized, err := execute(js)
	be.Err(t, err, nil)

	be.Equal(t, optimized, plain)
	be.Equal(t, plain, []string{"yes 15", "9"})
	be.True(t, !strings.Contains(js, `"dead"`))
	be.True(t, strings.Contains(js, "const base_5 = 7;"))
}

func TestUndecoratedTree(t *testing.T) {
	prog, err := parser.Parse("let x = 1\nprint(x)\n")
	be.Err(t, err, nil)
	_, err = codegen.Generate(prog)
	be.True(t, err != nil)
}

func TestStreamingWriter(t *testing.T) {
	prog, err := parser.Parse("print(\"streamed\")\n")
	be.Err(t, err, nil)
	_, err = semantic.Analyze(prog)
	be.Err(t, err, nil)

	var sb strings.Builder
	be.Err(t, codegen.New(&sb).Program(prog), nil)
	be.True(t, strings.HasSuffix(sb.String(), "print_1(\"streamed\");\n"))
	be.True(t, strings.Contains(ast.Dump(prog), "ref=builtin print"))
}
