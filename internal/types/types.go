package types

import "strings"

type Type interface {
	String() string
	equal(Type) bool
}

// Primitive types are singletons compared by identity.

type Primitive struct {
	name string
}

func (p *Primitive) String() string { return p.name }

func (p *Primitive) equal(other Type) bool {
	return Type(p) == other
}

var (
	Bool   = &Primitive{name: "bool"}
	Number = &Primitive{name: "number"}
	String = &Primitive{name: "string"}
	None   = &Primitive{name: "none"}
	Range  = &Primitive{name: "range"}

	// Anything only appears in builtin signatures. An argument of any type
	// may be passed where it is expected.
	Anything = &Primitive{name: "anything"}
)

// Matrix is [T].
type Matrix struct {
	Elem Type
}

func (m *Matrix) String() string { return "[" + m.Elem.String() + "]" }

func (m *Matrix) equal(other Type) bool {
	o, ok := other.(*Matrix)
	return ok && Equal(m.Elem, o.Elem)
}

// Tuple is (T1, T2, ...).
type Tuple struct {
	Elems []Type
}

func (t *Tuple) String() string { return "(" + join(t.Elems) + ")" }

func (t *Tuple) equal(other Type) bool {
	o, ok := other.(*Tuple)
	return ok && equalAll(t.Elems, o.Elems)
}

// Homogeneous returns the type shared by every element, or nil.
func (t *Tuple) Homogeneous() Type {
	if len(t.Elems) == 0 {
		return nil
	}
	for _, e := range t.Elems[1:] {
		if !Equal(e, t.Elems[0]) {
			return nil
		}
	}
	return t.Elems[0]
}

// Set is {T}.
type Set struct {
	Elem Type
}

func (s *Set) String() string { return "{" + s.Elem.String() + "}" }

func (s *Set) equal(other Type) bool {
	o, ok := other.(*Set)
	return ok && Equal(s.Elem, o.Elem)
}

// Dictionary is {K: V}.
type Dictionary struct {
	Key   Type
	Value Type
}

func (d *Dictionary) String() string {
	return "{" + d.Key.String() + ": " + d.Value.String() + "}"
}

func (d *Dictionary) equal(other Type) bool {
	o, ok := other.(*Dictionary)
	return ok && Equal(d.Key, o.Key) && Equal(d.Value, o.Value)
}

// Function is the signature written after "::". A nil Result means the
// function returns nothing ("-> _").
type Function struct {
	Params []Type
	Result Type
}

func (f *Function) String() string {
	params := "_"
	if len(f.Params) > 0 {
		params = join(f.Params)
	}
	result := "_"
	if f.Result != nil {
		result = f.Result.String()
	}
	return params + " -> " + result
}

func (f *Function) equal(other Type) bool {
	o, ok := other.(*Function)
	if !ok || !equalAll(f.Params, o.Params) {
		return false
	}
	if f.Result == nil || o.Result == nil {
		return f.Result == nil && o.Result == nil
	}
	return Equal(f.Result, o.Result)
}

// ReturnType is the type a call expression evaluates to.
func (f *Function) ReturnType() Type {
	if f.Result == nil {
		return None
	}
	return f.Result
}

// Equal reports structural equality. Primitives compare by identity.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equal(b)
}

func equalAll(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func join(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
