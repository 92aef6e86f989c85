package types

// Registry is the type table of one compilation session. Primitives are
// interned under their source names. Composite types are minted fresh on
// every request, so two literals never share an instance even when their
// types are equal.
type Registry struct {
	named  map[string]Type
	minted int
}

func NewRegistry() *Registry {
	r := &Registry{named: make(map[string]Type)}
	for _, p := range []*Primitive{Bool, Number, String, None, Range} {
		r.named[p.name] = p
	}
	return r
}

// Lookup resolves a primitive type name as written in an annotation.
func (r *Registry) Lookup(name string) (Type, bool) {
	t, ok := r.named[name]
	return t, ok
}

func (r *Registry) Matrix(elem Type) *Matrix {
	r.minted++
	return &Matrix{Elem: elem}
}

func (r *Registry) Tuple(elems ...Type) *Tuple {
	r.minted++
	return &Tuple{Elems: elems}
}

func (r *Registry) Set(elem Type) *Set {
	r.minted++
	return &Set{Elem: elem}
}

func (r *Registry) Dictionary(key, value Type) *Dictionary {
	r.minted++
	return &Dictionary{Key: key, Value: value}
}

func (r *Registry) Function(params []Type, result Type) *Function {
	r.minted++
	return &Function{Params: params, Result: result}
}

// Minted is the number of composite types created in this session.
func (r *Registry) Minted() int {
	return r.minted
}
