package ast

import (
	"olive/internal/token"
	"olive/internal/types"
)

// Entity is what an identifier resolves to. Entities are created by the
// analyzer and compared by identity: two entities with the same name in
// different scopes are different entities.
type Entity interface {
	EntityName() string
	EntityType() types.Type
	entity()
}

type Variable struct {
	Name    string
	Typ     types.Type
	Mutable bool
	DeclPos token.Position
}

// FunctionVariable is a declared or builtin function. Decl is nil for
// builtins.
type FunctionVariable struct {
	Name      string
	Signature *types.Function
	Decl      *FunctionDeclaration
	Builtin   bool
}

func (v *Variable) EntityName() string     { return v.Name }
func (v *Variable) EntityType() types.Type { return v.Typ }
func (*Variable) entity()                  {}

func (f *FunctionVariable) EntityName() string     { return f.Name }
func (f *FunctionVariable) EntityType() types.Type { return f.Signature }
func (*FunctionVariable) entity()                  {}
