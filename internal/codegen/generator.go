// Package codegen lowers a decorated Olive tree to JavaScript.
//
// The generator trusts its input: the tree must have passed semantic
// analysis. An undecorated node is reported as an internal error.
package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"olive/internal/ast"
	"olive/internal/builtins"
	"olive/internal/types"
)

const indentUnit = "  "

// Generator writes JavaScript for one program. Statements are emitted in
// source order, one line at a time, as they are visited.
type Generator struct {
	w      io.Writer
	names  *namer
	indent int
	err    error
}

func New(w io.Writer) *Generator {
	return &Generator{w: w, names: newNamer()}
}

// Generate returns the JavaScript for prog.
func Generate(prog *ast.Program) (string, error) {
	var sb strings.Builder
	if err := New(&sb).Program(prog); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Program emits the runtime library followed by the program body.
func (g *Generator) Program(prog *ast.Program) error {
	g.library()
	g.block(prog.Body)
	return g.err
}

func (g *Generator) library() {
	for _, b := range builtins.All() {
		g.line("function %s(%s) {", g.names.builtin(b.Meta.Name), strings.Join(b.Meta.ParamNames, ", "))
		g.indent++
		for _, l := range b.Body {
			g.line("%s", l)
		}
		g.indent--
		g.line("}")
	}
}

// line writes one indented line. The first write error sticks and
// suppresses further output.
func (g *Generator) line(format string, args ...any) {
	if g.err != nil {
		return
	}
	text := fmt.Sprintf(format, args...)
	_, err := io.WriteString(g.w, strings.Repeat(indentUnit, g.indent)+text+"\n")
	if err != nil {
		g.err = errors.Wrap(err, "write output")
	}
}

func (g *Generator) fail(n ast.Node, format string, args ...any) string {
	if g.err == nil {
		g.err = errors.Errorf("codegen %s: %s", n.Pos(), fmt.Sprintf(format, args...))
	}
	return "undefined"
}

func (g *Generator) block(b *ast.Block) {
	for _, st := range b.Stmts {
		g.stmt(st)
	}
}

func (g *Generator) nested(b *ast.Block) {
	g.indent++
	g.block(b)
	g.indent--
}

func (g *Generator) stmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.MutableBinding:
		g.mutableBinding(st)

	case *ast.ImmutableBinding:
		sources := g.exprs(st.Sources)
		targets := make([]string, len(st.Targets))
		for i, t := range st.Targets {
			targets[i] = g.expr(t)
		}
		g.line("const %s = %s;", bracket(targets), bracket(sources))

	case *ast.WhileStatement:
		g.line("while (%s) {", g.expr(st.Test))
		g.nested(st.Body)
		g.line("}")

	case *ast.ForStatement:
		src := g.iterable(st.Source)
		g.line("for (const %s of %s) {", g.expr(st.Var), src)
		g.nested(st.Body)
		g.line("}")

	case *ast.IfStatement:
		g.ifStmt(st)

	case *ast.BreakStatement:
		g.line("break;")
	case *ast.PassStatement:
		g.line("continue;")

	case *ast.ReturnStatement:
		if st.Value == nil {
			g.line("return;")
			return
		}
		g.line("return %s;", g.expr(st.Value))

	case *ast.FunctionDeclaration:
		if st.Entity == nil {
			g.fail(st, "function %s was not analyzed", st.Name)
			return
		}
		params := make([]string, len(st.Params))
		for i, p := range st.Params {
			if p.Entity == nil {
				g.fail(p, "parameter %s was not analyzed", p.Name)
				return
			}
			params[i] = g.names.entity(p.Entity)
		}
		g.line("function %s(%s) {", g.names.entity(st.Entity), strings.Join(params, ", "))
		g.nested(st.Body)
		g.line("}")

	case *ast.ExpressionStatement:
		code := g.expr(st.Expr)
		if strings.HasPrefix(code, "{") {
			// a statement starting with a brace would open a block
			code = "(" + code + ")"
		}
		g.line("%s;", code)

	default:
		g.fail(s, "unsupported statement %T", s)
	}
}

// mutableBinding declares fresh targets with let. When fresh and existing
// targets are mixed, the fresh ones are declared first and the whole
// binding becomes a destructuring assignment.
func (g *Generator) mutableBinding(st *ast.MutableBinding) {
	sources := g.exprs(st.Sources)
	targets := g.exprs(st.Targets)

	fresh, old := 0, 0
	for i := range st.Targets {
		if i < len(st.Fresh) && st.Fresh[i] {
			fresh++
		} else {
			old++
		}
	}

	switch {
	case old == 0:
		g.line("let %s = %s;", bracket(targets), bracket(sources))
	case fresh == 0:
		g.line("%s = %s;", bracket(targets), bracket(sources))
	default:
		var decl []string
		for i, t := range targets {
			if st.Fresh[i] {
				decl = append(decl, t)
			}
		}
		g.line("let %s;", strings.Join(decl, ", "))
		g.line("%s = %s;", bracket(targets), bracket(sources))
	}
}

func (g *Generator) ifStmt(st *ast.IfStatement) {
	if len(st.Cases) == 0 {
		// Every test folded away and only the else block is left.
		g.line("{")
		g.nested(st.Alternate)
		g.line("}")
		return
	}
	for i, c := range st.Cases {
		if i == 0 {
			g.line("if (%s) {", g.expr(c.Test))
		} else {
			g.line("} else if (%s) {", g.expr(c.Test))
		}
		g.nested(c.Body)
	}
	if st.Alternate != nil {
		g.line("} else {")
		g.nested(st.Alternate)
	}
	g.line("}")
}

// iterable renders a for source. Dictionaries iterate their keys; number
// keys come back from JavaScript objects as strings and are converted.
func (g *Generator) iterable(e ast.Expr) string {
	src := g.expr(e)
	dict, ok := e.Type().(*types.Dictionary)
	if !ok {
		return src
	}
	if dict.Key == types.Number {
		return "Object.keys(" + src + ").map(Number)"
	}
	return "Object.keys(" + src + ")"
}

// bracket renders a single item as is and several as an array literal.
func bracket(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return "[" + strings.Join(items, ", ") + "]"
}
