package types

import (
	"olive/internal/diag"
	"olive/internal/token"
)

// Compatible reports whether a value of type got may be used where want is
// expected.
func Compatible(want, got Type) bool {
	if want == Anything {
		return got != nil
	}
	return Equal(want, got)
}

// MutuallyCompatible holds when either side accepts the other.
func MutuallyCompatible(a, b Type) bool {
	return Compatible(a, b) || Compatible(b, a)
}

// The Must helpers return a TypeError without a position; callers attach
// one with diag.At.

func MustBeCompatible(want, got Type, what string) error {
	if Compatible(want, got) {
		return nil
	}
	return diag.Type(token.Position{}, "%s must be %s, got %s", what, want, got)
}

func MustBeMutuallyCompatible(a, b Type, what string) error {
	if MutuallyCompatible(a, b) {
		return nil
	}
	return diag.Type(token.Position{}, "%s: %s and %s are not compatible", what, a, b)
}

func MustBeNumber(t Type, what string) error {
	return MustBeCompatible(Number, t, what)
}

func MustBeBoolean(t Type, what string) error {
	return MustBeCompatible(Bool, t, what)
}

func IsIterable(t Type) bool {
	switch t.(type) {
	case *Matrix, *Tuple, *Set, *Dictionary:
		return true
	}
	return t == String || t == Range
}

// IterationType is the type bound by `for x in e` when e has type t:
// elements of matrices, sets and homogeneous tuples, keys of dictionaries,
// characters of strings and numbers of ranges.
func IterationType(t Type) (Type, error) {
	switch t := t.(type) {
	case *Matrix:
		return t.Elem, nil
	case *Set:
		return t.Elem, nil
	case *Dictionary:
		return t.Key, nil
	case *Tuple:
		if elem := t.Homogeneous(); elem != nil {
			return elem, nil
		}
		return nil, diag.Type(token.Position{}, "cannot iterate over heterogeneous tuple %s", t)
	}
	switch t {
	case String:
		return String, nil
	case Range:
		return Number, nil
	}
	return nil, diag.Type(token.Position{}, "%s is not iterable", t)
}

// Subscript checks base[sub] and returns the type of the access. Tuples
// accessed with a non-literal index must be homogeneous; see TupleElement
// for literal indexes.
func Subscript(base, sub Type) (Type, error) {
	switch b := base.(type) {
	case *Matrix:
		if err := MustBeCompatible(Number, sub, "matrix subscript"); err != nil {
			return nil, err
		}
		return b.Elem, nil
	case *Tuple:
		if err := MustBeCompatible(Number, sub, "tuple subscript"); err != nil {
			return nil, err
		}
		if elem := b.Homogeneous(); elem != nil {
			return elem, nil
		}
		return nil, diag.Type(token.Position{}, "heterogeneous tuple %s needs a literal subscript", b)
	case *Dictionary:
		if err := MustBeCompatible(b.Key, sub, "dictionary key"); err != nil {
			return nil, err
		}
		return b.Value, nil
	case *Set:
		return nil, diag.Type(token.Position{}, "set %s cannot be subscripted", b)
	}
	if base == String {
		if err := MustBeCompatible(Number, sub, "string subscript"); err != nil {
			return nil, err
		}
		return String, nil
	}
	return nil, diag.Type(token.Position{}, "%s cannot be subscripted", base)
}

// TupleElement returns the type at a constant index.
func TupleElement(t *Tuple, index int) (Type, error) {
	if index < 0 || index >= len(t.Elems) {
		return nil, diag.Type(token.Position{}, "index %d out of range for %s", index, t)
	}
	return t.Elems[index], nil
}

// ValidKey reports whether t may be used as a dictionary key.
func ValidKey(t Type) bool {
	return t == Number || t == String
}
