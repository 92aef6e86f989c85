package builtins

func init() {
	// Materializes a range expression into an array. Throws when the step
	// cannot reach the end from the start.
	Register(Builtin{
		Meta: Meta{
			ID:         MatrixFromRange,
			Name:       "generateMatrixFromRange",
			Arity:      5,
			ParamNames: []string{"inclusiveStart", "start", "step", "end", "inclusiveEnd"},
		},
		Body: []string{
			"const positiveStep = step > 0;",
			"if (step === 0 || (positiveStep ? end - start < 0 : end - start > 0)) {",
			"  throw new Error('Range expression generator values are invalid');",
			"}",
			"const result = [];",
			"let currentVal = inclusiveStart ? start : start + step;",
			"const test = (pos) => {",
			"  if (inclusiveEnd) {",
			"    return pos ? currentVal <= end : currentVal >= end;",
			"  }",
			"  return pos ? currentVal < end : currentVal > end;",
			"};",
			"while (test(positiveStep)) {",
			"  result.push(currentVal);",
			"  currentVal += step;",
			"}",
			"return result;",
		},
	})
}
