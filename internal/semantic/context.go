package semantic

import (
	"olive/internal/ast"
	"olive/internal/diag"
	"olive/internal/token"
)

// ScopeID addresses a scope record inside an Arena.
type ScopeID int

const NoScope ScopeID = -1

type scope struct {
	parent   ScopeID
	function *ast.FunctionVariable
	inLoop   bool
	locals   map[string]ast.Entity
}

// Arena owns every scope record created while analyzing one program.
// Records are never removed; a finished subtree's scopes are simply not
// looked up again.
type Arena struct {
	scopes []scope
}

func NewArena() *Arena {
	return &Arena{}
}

// Root creates a parentless scope outside any function or loop.
func (a *Arena) Root() Context {
	return a.push(NoScope, nil, false)
}

// Len is the number of scope records created so far.
func (a *Arena) Len() int {
	return len(a.scopes)
}

func (a *Arena) push(parent ScopeID, fn *ast.FunctionVariable, inLoop bool) Context {
	a.scopes = append(a.scopes, scope{
		parent:   parent,
		function: fn,
		inLoop:   inLoop,
		locals:   make(map[string]ast.Entity),
	})
	return Context{arena: a, id: ScopeID(len(a.scopes) - 1)}
}

// Context is a handle to one scope record.
type Context struct {
	arena *Arena
	id    ScopeID
}

func (c Context) rec() *scope {
	return &c.arena.scopes[c.id]
}

func (c Context) ID() ScopeID { return c.id }

// ChildForFunctionBody opens the scope of a function body. Loops enclosing
// the declaration do not extend into the body.
func (c Context) ChildForFunctionBody(fn *ast.FunctionVariable) Context {
	return c.arena.push(c.id, fn, false)
}

func (c Context) ChildForLoop() Context {
	return c.arena.push(c.id, c.rec().function, true)
}

func (c Context) ChildForBlock() Context {
	r := c.rec()
	return c.arena.push(c.id, r.function, r.inLoop)
}

// Add declares entity in this scope only.
func (c Context) Add(e ast.Entity) {
	c.rec().locals[e.EntityName()] = e
}

// Lookup searches this scope and then its ancestors.
func (c Context) Lookup(name string) (ast.Entity, bool) {
	for id := c.id; id != NoScope; id = c.arena.scopes[id].parent {
		if e, ok := c.arena.scopes[id].locals[name]; ok {
			return e, true
		}
	}
	return nil, false
}

func (c Context) MustNotAlreadyBeDeclared(name string) error {
	if _, ok := c.rec().locals[name]; ok {
		return diag.Declaration(token.Position{}, "%s already declared in this scope", name)
	}
	return nil
}

// MustNotRebindImmutable fails when name resolves to a let binding, a
// parameter, a loop variable or a function.
func (c Context) MustNotRebindImmutable(name string) error {
	e, ok := c.Lookup(name)
	if !ok {
		return nil
	}
	switch e := e.(type) {
	case *ast.Variable:
		if e.Mutable {
			return nil
		}
		return diag.Declaration(token.Position{}, "cannot assign to immutable %s", name)
	case *ast.FunctionVariable:
		return diag.Declaration(token.Position{}, "cannot assign to function %s", name)
	}
	return nil
}

func (c Context) AssertInsideFunction(msg string) error {
	if c.rec().function == nil {
		return diag.ControlFlow(token.Position{}, "%s", msg)
	}
	return nil
}

func (c Context) AssertInsideLoop(msg string) error {
	if !c.rec().inLoop {
		return diag.ControlFlow(token.Position{}, "%s", msg)
	}
	return nil
}

func (c Context) InLoop() bool { return c.rec().inLoop }

// Function is the innermost enclosing function, or nil at top level.
func (c Context) Function() *ast.FunctionVariable { return c.rec().function }

// Depth counts the scopes between c and the root.
func (c Context) Depth() int {
	d := 0
	for id := c.rec().parent; id != NoScope; id = c.arena.scopes[id].parent {
		d++
	}
	return d
}
