package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump returns a human-readable representation of the tree. Decorations
// added by the analyzer (types, referents, fresh targets) are printed when
// present, so the same function shows both the raw and the decorated tree.
func Dump(node Node) string {
	var sb strings.Builder
	fprintNode(&sb, node, 0)
	return sb.String()
}

func typeSuffix(e Expr) string {
	if e.Type() == nil {
		return ""
	}
	return " : " + e.Type().String()
}

func referentSuffix(e Entity) string {
	switch e := e.(type) {
	case *Variable:
		if e.Mutable {
			return " ref=var " + e.Name
		}
		return " ref=let " + e.Name
	case *FunctionVariable:
		if e.Builtin {
			return " ref=builtin " + e.Name
		}
		return " ref=function " + e.Name
	}
	return ""
}

func fprintNode(w io.Writer, n Node, indent int) {
	if n == nil {
		return
	}

	ind := strings.Repeat("  ", indent)

	switch n := n.(type) {
	case *Program:
		fmt.Fprintf(w, "%sProgram\n", ind)
		fprintNode(w, n.Body, indent+1)

	case *Block:
		fmt.Fprintf(w, "%sBlock\n", ind)
		for _, s := range n.Stmts {
			fprintNode(w, s, indent+1)
		}

	case *MutableBinding:
		fresh := ""
		if n.Fresh != nil {
			fresh = fmt.Sprintf(" fresh=%v", n.Fresh)
		}
		fmt.Fprintf(w, "%sMutableBinding%s\n", ind, fresh)
		fmt.Fprintf(w, "%s  Targets:\n", ind)
		for _, t := range n.Targets {
			fprintNode(w, t, indent+2)
		}
		fmt.Fprintf(w, "%s  Sources:\n", ind)
		for _, s := range n.Sources {
			fprintNode(w, s, indent+2)
		}

	case *ImmutableBinding:
		fmt.Fprintf(w, "%sImmutableBinding\n", ind)
		fmt.Fprintf(w, "%s  Targets:\n", ind)
		for _, t := range n.Targets {
			fprintNode(w, t, indent+2)
		}
		fmt.Fprintf(w, "%s  Sources:\n", ind)
		for _, s := range n.Sources {
			fprintNode(w, s, indent+2)
		}

	case *WhileStatement:
		fmt.Fprintf(w, "%sWhileStatement\n", ind)
		fmt.Fprintf(w, "%s  Test:\n", ind)
		fprintNode(w, n.Test, indent+2)
		fmt.Fprintf(w, "%s  Body:\n", ind)
		fprintNode(w, n.Body, indent+2)

	case *ForStatement:
		fmt.Fprintf(w, "%sForStatement\n", ind)
		fmt.Fprintf(w, "%s  Var:\n", ind)
		fprintNode(w, n.Var, indent+2)
		fmt.Fprintf(w, "%s  Source:\n", ind)
		fprintNode(w, n.Source, indent+2)
		fmt.Fprintf(w, "%s  Body:\n", ind)
		fprintNode(w, n.Body, indent+2)

	case *IfStatement:
		fmt.Fprintf(w, "%sIfStatement\n", ind)
		for _, c := range n.Cases {
			fmt.Fprintf(w, "%s  Case:\n", ind)
			fprintNode(w, c.Test, indent+2)
			fprintNode(w, c.Body, indent+2)
		}
		if n.Alternate != nil {
			fmt.Fprintf(w, "%s  Else:\n", ind)
			fprintNode(w, n.Alternate, indent+2)
		}

	case *BreakStatement:
		fmt.Fprintf(w, "%sBreakStatement\n", ind)

	case *PassStatement:
		fmt.Fprintf(w, "%sPassStatement\n", ind)

	case *ReturnStatement:
		fmt.Fprintf(w, "%sReturnStatement\n", ind)
		if n.Value != nil {
			fprintNode(w, n.Value, indent+1)
		}

	case *FunctionDeclaration:
		fmt.Fprintf(w, "%sFunctionDeclaration name=%s\n", ind, n.Name)
		if len(n.Params) > 0 {
			fmt.Fprintf(w, "%s  Params:\n", ind)
			for _, p := range n.Params {
				fprintNode(w, p, indent+2)
			}
		}
		if n.Annotation != nil {
			fprintNode(w, n.Annotation, indent+1)
		}
		fmt.Fprintf(w, "%s  Body:\n", ind)
		fprintNode(w, n.Body, indent+2)

	case *Parameter:
		typ := ""
		if n.Entity != nil && n.Entity.Typ != nil {
			typ = " : " + n.Entity.Typ.String()
		}
		fmt.Fprintf(w, "%sParameter name=%s%s\n", ind, n.Name, typ)

	case *Annotation:
		fmt.Fprintf(w, "%sAnnotation\n", ind)
		if n.NoParams {
			fmt.Fprintf(w, "%s  Params: _\n", ind)
		}
		for _, p := range n.Params {
			fprintNode(w, p, indent+1)
		}
		if n.NoResult {
			fmt.Fprintf(w, "%s  Result: _\n", ind)
		} else {
			fmt.Fprintf(w, "%s  Result:\n", ind)
			fprintNode(w, n.Result, indent+2)
		}

	case *ExpressionStatement:
		fmt.Fprintf(w, "%sExpressionStatement\n", ind)
		fprintNode(w, n.Expr, indent+1)

	case *NumberLiteral:
		fmt.Fprintf(w, "%sNumberLiteral %s%s\n", ind, n.Raw, typeSuffix(n))

	case *BooleanLiteral:
		fmt.Fprintf(w, "%sBooleanLiteral %v%s\n", ind, n.Value, typeSuffix(n))

	case *StringLiteral:
		fmt.Fprintf(w, "%sStringLiteral %q%s\n", ind, n.Value, typeSuffix(n))

	case *NoneLiteral:
		fmt.Fprintf(w, "%sNoneLiteral%s\n", ind, typeSuffix(n))

	case *IdExpression:
		fmt.Fprintf(w, "%sIdExpression %s%s%s\n", ind, n.Name, typeSuffix(n), referentSuffix(n.Referent))

	case *SubscriptExpression:
		fmt.Fprintf(w, "%sSubscriptExpression%s\n", ind, typeSuffix(n))
		fprintNode(w, n.Base, indent+1)
		fprintNode(w, n.Index, indent+1)

	case *BinaryExpression:
		fmt.Fprintf(w, "%sBinaryExpression op=%v%s\n", ind, n.Op, typeSuffix(n))
		fprintNode(w, n.Left, indent+1)
		fprintNode(w, n.Right, indent+1)

	case *UnaryExpression:
		fmt.Fprintf(w, "%sUnaryExpression op=%v%s\n", ind, n.Op, typeSuffix(n))
		fprintNode(w, n.Operand, indent+1)

	case *MatrixExpression:
		fmt.Fprintf(w, "%sMatrixExpression%s\n", ind, typeSuffix(n))
		for _, e := range n.Elems {
			fprintNode(w, e, indent+1)
		}

	case *TupleExpression:
		fmt.Fprintf(w, "%sTupleExpression%s\n", ind, typeSuffix(n))
		for _, e := range n.Elems {
			fprintNode(w, e, indent+1)
		}

	case *SetExpression:
		fmt.Fprintf(w, "%sSetExpression%s\n", ind, typeSuffix(n))
		for _, e := range n.Elems {
			fprintNode(w, e, indent+1)
		}

	case *DictionaryExpression:
		fmt.Fprintf(w, "%sDictionaryExpression%s\n", ind, typeSuffix(n))
		for _, kv := range n.Entries {
			fmt.Fprintf(w, "%s  Entry:\n", ind)
			fprintNode(w, kv.Key, indent+2)
			fprintNode(w, kv.Value, indent+2)
		}

	case *RangeExpression:
		fmt.Fprintf(w, "%sRangeExpression inclusiveStart=%v inclusiveEnd=%v%s\n",
			ind, n.InclusiveStart, n.InclusiveEnd, typeSuffix(n))
		fprintNode(w, n.Start, indent+1)
		fprintNode(w, n.End, indent+1)
		fmt.Fprintf(w, "%s  By:\n", ind)
		fprintNode(w, n.Step, indent+2)

	case *StringInterpolation:
		fmt.Fprintf(w, "%sStringInterpolation%s\n", ind, typeSuffix(n))
		for _, part := range n.Parts {
			switch p := part.(type) {
			case *TextPart:
				fmt.Fprintf(w, "%s  Text %q\n", ind, p.Value)
			case *Interpolation:
				fprintNode(w, p.Expr, indent+1)
			}
		}

	case *FunctionCallExpression:
		fmt.Fprintf(w, "%sFunctionCallExpression%s\n", ind, typeSuffix(n))
		fprintNode(w, n.Callee, indent+1)
		for _, a := range n.Args {
			fprintNode(w, a, indent+1)
		}

	case *NamedType:
		fmt.Fprintf(w, "%sNamedType %s\n", ind, n.Name)

	case *MatrixType:
		fmt.Fprintf(w, "%sMatrixType\n", ind)
		fprintNode(w, n.Elem, indent+1)

	case *TupleType:
		fmt.Fprintf(w, "%sTupleType\n", ind)
		for _, e := range n.Elems {
			fprintNode(w, e, indent+1)
		}

	case *SetType:
		fmt.Fprintf(w, "%sSetType\n", ind)
		fprintNode(w, n.Elem, indent+1)

	case *DictionaryType:
		fmt.Fprintf(w, "%sDictionaryType\n", ind)
		fprintNode(w, n.Key, indent+1)
		fprintNode(w, n.Value, indent+1)

	default:
		fmt.Fprintf(w, "%s<unknown node %T>\n", ind, n)
	}
}
