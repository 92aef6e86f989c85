package builtins

func init() {
	Register(Builtin{
		Meta: Meta{
			ID:         Divmod,
			Name:       "generateDivmod",
			Arity:      2,
			ParamNames: []string{"a", "b"},
		},
		Body: []string{
			"const quotient = Math.floor(a / b);",
			"const remainder = a % b;",
			"return [quotient, remainder];",
		},
	})
}
