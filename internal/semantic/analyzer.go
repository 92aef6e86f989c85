// Package semantic resolves identifiers and checks the static types of an
// Olive program, decorating the tree in place.
package semantic

import (
	"olive/internal/ast"
	"olive/internal/builtins"
	"olive/internal/diag"
	"olive/internal/types"
)

// Session holds what one analysis produced besides the decorated tree.
type Session struct {
	Types  *types.Registry
	Scopes *Arena
}

type Analyzer struct {
	types *types.Registry
	arena *Arena
}

type Option func(*Analyzer)

// WithRegistry makes the analyzer mint types in r instead of a fresh table.
func WithRegistry(r *types.Registry) Option {
	return func(a *Analyzer) { a.types = r }
}

// Analyze checks prog and decorates it. Analysis stops at the first error.
func Analyze(prog *ast.Program, opts ...Option) (*Session, error) {
	a := &Analyzer{
		types: types.NewRegistry(),
		arena: NewArena(),
	}
	for _, opt := range opts {
		opt(a)
	}

	root := a.arena.Root()
	a.declareBuiltins(root)

	if err := a.analyzeBlock(root.ChildForBlock(), prog.Body); err != nil {
		return nil, err
	}
	return &Session{Types: a.types, Scopes: a.arena}, nil
}

func (a *Analyzer) declareBuiltins(ctx Context) {
	for _, b := range builtins.Callable() {
		ctx.Add(&ast.FunctionVariable{
			Name:      b.Meta.Name,
			Signature: b.Signature(),
			Builtin:   true,
		})
	}
}

// failf builds a diagnostic anchored at n.
func failf(kind diag.Kind, n ast.Node, format string, args ...any) error {
	err := diag.New(kind, n.Pos(), format, args...)
	err.Node = n
	return err
}

// at anchors an error produced without position information at n.
func at(err error, n ast.Node) error {
	if err == nil {
		return nil
	}
	return diag.At(err, n.Pos(), n)
}

// ----- Types written in annotations -----

func (a *Analyzer) resolveType(tn ast.TypeNode) (types.Type, error) {
	switch t := tn.(type) {
	case *ast.NamedType:
		typ, ok := a.types.Lookup(t.Name)
		if !ok {
			return nil, failf(diag.TypeError, t, "unknown type %s", t.Name)
		}
		return typ, nil

	case *ast.MatrixType:
		elem, err := a.resolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		return a.types.Matrix(elem), nil

	case *ast.TupleType:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elem, err := a.resolveType(e)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return a.types.Tuple(elems...), nil

	case *ast.SetType:
		elem, err := a.resolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		return a.types.Set(elem), nil

	case *ast.DictionaryType:
		key, err := a.resolveType(t.Key)
		if err != nil {
			return nil, err
		}
		if !types.ValidKey(key) {
			return nil, failf(diag.TypeError, t, "dictionary keys must be number or string, got %s", key)
		}
		value, err := a.resolveType(t.Value)
		if err != nil {
			return nil, err
		}
		return a.types.Dictionary(key, value), nil

	default:
		return nil, failf(diag.TypeError, tn, "unsupported type annotation %T", tn)
	}
}
