// Package builtins describes the functions every Olive program can use and
// the JavaScript runtime helpers the generator relies on.
package builtins

import (
	"fmt"
	"sort"
	"sync"

	"olive/internal/types"
)

// ID is a builtin function identifier.
type ID int

const (
	Print ID = iota
	Sqrt
	MatrixFromRange
	Divmod
	// future builtins go here
)

// Meta contains metadata about a builtin function.
// Callable builtins are declared in the root scope of every program;
// the others are runtime helpers only reachable from generated code.
// A nil Result means the builtin returns nothing.
type Meta struct {
	ID         ID
	Name       string
	Arity      int
	ParamNames []string // Parameter names in order (must match Arity)
	Params     []types.Type
	Result     types.Type
	Callable   bool
}

// Builtin is a builtin's metadata together with the JavaScript body emitted
// for it, one statement per line.
type Builtin struct {
	Meta Meta
	Body []string
}

// Signature returns the function type of a callable builtin.
func (b *Builtin) Signature() *types.Function {
	return &types.Function{Params: b.Meta.Params, Result: b.Meta.Result}
}

// registry holds all registered builtins with fast lookup indexes.
type registry struct {
	mu sync.RWMutex

	byID   map[ID]*Builtin
	byName map[string]*Builtin
}

var globalRegistry = &registry{
	byID:   make(map[ID]*Builtin),
	byName: make(map[string]*Builtin),
}

// Register registers a builtin. This is called automatically by each builtin's init() function.
// Panics if the builtin ID is already registered or if metadata is invalid.
func Register(b Builtin) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if len(b.Meta.ParamNames) != b.Meta.Arity {
		panic(fmt.Sprintf("builtin %s (ID %d): ParamNames length (%d) != Arity (%d)",
			b.Meta.Name, b.Meta.ID, len(b.Meta.ParamNames), b.Meta.Arity))
	}
	if b.Meta.Callable && len(b.Meta.Params) != b.Meta.Arity {
		panic(fmt.Sprintf("builtin %s (ID %d): Params length (%d) != Arity (%d)",
			b.Meta.Name, b.Meta.ID, len(b.Meta.Params), b.Meta.Arity))
	}
	if _, exists := globalRegistry.byID[b.Meta.ID]; exists {
		panic(fmt.Sprintf("builtin ID %d (%s) is already registered", b.Meta.ID, b.Meta.Name))
	}
	if _, exists := globalRegistry.byName[b.Meta.Name]; exists {
		panic(fmt.Sprintf("builtin name %q is already registered", b.Meta.Name))
	}

	globalRegistry.byID[b.Meta.ID] = &b
	globalRegistry.byName[b.Meta.Name] = &b
}

// LookupByID finds a builtin by ID. Returns nil if not found.
func LookupByID(id ID) *Builtin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.byID[id]
}

// LookupByName finds a builtin by name. Returns nil if not found.
func LookupByName(name string) *Builtin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.byName[name]
}

// All returns every registered builtin ordered by ID.
func All() []*Builtin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	result := make([]*Builtin, 0, len(globalRegistry.byID))
	for _, b := range globalRegistry.byID {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Meta.ID < result[j].Meta.ID })
	return result
}

// Callable returns the builtins user code may call, ordered by ID.
func Callable() []*Builtin {
	var result []*Builtin
	for _, b := range All() {
		if b.Meta.Callable {
			result = append(result, b)
		}
	}
	return result
}
