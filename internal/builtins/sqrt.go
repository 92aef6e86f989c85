package builtins

import "olive/internal/types"

func init() {
	Register(Builtin{
		Meta: Meta{
			ID:         Sqrt,
			Name:       "sqrt",
			Arity:      1,
			ParamNames: []string{"_"},
			Params:     []types.Type{types.Number},
			Result:     types.Number,
			Callable:   true,
		},
		Body: []string{
			"return Math.sqrt(_);",
		},
	})
}
