package codegen

import (
	"strconv"

	"olive/internal/ast"
)

// namer hands out JavaScript names of the form <id>_<n>. A name is fixed the
// first time an entity is seen. Distinct entities never share a name even
// when they share a source identifier, so shadowing survives lowering.
type namer struct {
	last     int
	entities map[ast.Entity]string
	builtins map[string]string
}

func newNamer() *namer {
	return &namer{
		entities: make(map[ast.Entity]string),
		builtins: make(map[string]string),
	}
}

func (n *namer) entity(e ast.Entity) string {
	if fn, ok := e.(*ast.FunctionVariable); ok && fn.Builtin {
		return n.builtin(fn.Name)
	}
	if name, ok := n.entities[e]; ok {
		return name
	}
	name := n.next(e.EntityName())
	n.entities[e] = name
	return name
}

// builtin names the library stub for a builtin. Every analysis session
// declares its own builtin entities, so stubs are keyed by name instead.
func (n *namer) builtin(id string) string {
	if name, ok := n.builtins[id]; ok {
		return name
	}
	name := n.next(id)
	n.builtins[id] = name
	return name
}

func (n *namer) next(id string) string {
	n.last++
	return id + "_" + strconv.Itoa(n.last)
}
