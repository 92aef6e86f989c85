package codegen

import (
	"fmt"
	"strings"

	"olive/internal/ast"
	"olive/internal/token"
)

var operators = map[token.Kind]string{
	token.Not:     "!",
	token.And:     "&&",
	token.Or:      "||",
	token.Eq:      "===",
	token.NotEq:   "!==",
	token.Lt:      "<",
	token.LtEq:    "<=",
	token.Gt:      ">",
	token.GtEq:    ">=",
	token.Plus:    "+",
	token.Minus:   "-",
	token.Star:    "*",
	token.Slash:   "/",
	token.Percent: "%",
}

func (g *Generator) exprs(list []ast.Expr) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = g.expr(e)
	}
	return out
}

func (g *Generator) expr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.NumberLiteral:
		if ex.Value < 0 {
			return "(" + ast.FormatNumber(ex.Value) + ")"
		}
		return ast.FormatNumber(ex.Value)
	case *ast.BooleanLiteral:
		if ex.Value {
			return "true"
		}
		return "false"
	case *ast.StringLiteral:
		return quote(ex.Value)
	case *ast.NoneLiteral:
		return "null"

	case *ast.IdExpression:
		if ex.Referent == nil {
			return g.fail(ex, "%s was not resolved", ex.Name)
		}
		return g.names.entity(ex.Referent)

	case *ast.SubscriptExpression:
		return g.expr(ex.Base) + "[" + g.expr(ex.Index) + "]"

	case *ast.BinaryExpression:
		left, right := g.expr(ex.Left), g.expr(ex.Right)
		if ex.Op == token.DivMod {
			return fmt.Sprintf("%s(%s, %s)", g.names.builtin("generateDivmod"), left, right)
		}
		op, ok := operators[ex.Op]
		if !ok {
			return g.fail(ex, "no operator for %s", ex.Op)
		}
		return "(" + left + " " + op + " " + right + ")"

	case *ast.UnaryExpression:
		op, ok := operators[ex.Op]
		if !ok {
			return g.fail(ex, "no operator for %s", ex.Op)
		}
		return "(" + op + g.expr(ex.Operand) + ")"

	case *ast.MatrixExpression:
		return "[" + strings.Join(g.exprs(ex.Elems), ", ") + "]"
	case *ast.TupleExpression:
		return "[" + strings.Join(g.exprs(ex.Elems), ", ") + "]"
	case *ast.SetExpression:
		return "new Set([" + strings.Join(g.exprs(ex.Elems), ", ") + "])"
	case *ast.DictionaryExpression:
		entries := make([]string, len(ex.Entries))
		for i, kv := range ex.Entries {
			entries[i] = "[" + g.expr(kv.Key) + "]: " + g.expr(kv.Value)
		}
		return "{" + strings.Join(entries, ", ") + "}"

	case *ast.RangeExpression:
		return fmt.Sprintf("%s(%t, %s, %s, %s, %t)",
			g.names.builtin("generateMatrixFromRange"),
			ex.InclusiveStart, g.expr(ex.Start), g.expr(ex.Step), g.expr(ex.End), ex.InclusiveEnd)

	case *ast.StringInterpolation:
		var sb strings.Builder
		sb.WriteByte('`')
		for _, p := range ex.Parts {
			switch part := p.(type) {
			case *ast.TextPart:
				sb.WriteString(escapeTemplate(part.Value))
			case *ast.Interpolation:
				sb.WriteString("${" + g.expr(part.Expr) + "}")
			}
		}
		sb.WriteByte('`')
		return sb.String()

	case *ast.FunctionCallExpression:
		callee := g.expr(ex.Callee)
		return callee + "(" + strings.Join(g.exprs(ex.Args), ", ") + ")"
	}
	return g.fail(e, "unsupported expression %T", e)
}

// quote renders s as a double-quoted JavaScript string literal.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			writeRune(&sb, r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// escapeTemplate escapes text placed between the backquotes of a template
// literal.
func escapeTemplate(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '`':
			sb.WriteString("\\`")
		case '\\':
			sb.WriteString(`\\`)
		case '$':
			sb.WriteString(`\$`)
		default:
			writeRune(&sb, r)
		}
	}
	return sb.String()
}

func writeRune(sb *strings.Builder, r rune) {
	switch {
	case r == '\n':
		sb.WriteString(`\n`)
	case r == '\r':
		sb.WriteString(`\r`)
	case r == '\t':
		sb.WriteString(`\t`)
	case r < 0x20 || r == 0x7f || r == '\u2028' || r == '\u2029':
		fmt.Fprintf(sb, `\u%04x`, r)
	default:
		sb.WriteRune(r)
	}
}
