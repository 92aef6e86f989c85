package builtins

import "olive/internal/types"

func init() {
	Register(Builtin{
		Meta: Meta{
			ID:         Print,
			Name:       "print",
			Arity:      1,
			ParamNames: []string{"_"},
			Params:     []types.Type{types.Anything},
			Callable:   true,
		},
		Body: []string{
			"console.log(_);",
		},
	})
}
