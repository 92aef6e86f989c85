package token

import "fmt"

type Kind int

const (
	Illegal Kind = iota
	EOF

	Newline // end of a logical line
	Indent  // block opens
	Dedent  // block closes

	Ident       // Identifier
	Number      // Numeric literal
	String      // String literal
	StringPart  // String literal segment (for interpolation)
	InterpStart // ${
	InterpEnd   // }
	StringEnd   // end of interpolated string

	// Keywords
	Let
	Function
	If
	Else
	Return
	While
	For
	In
	By
	Break
	Pass
	True
	False
	None
	And
	Or
	Not
	Underscore // _

	// Type keywords
	NumberType // number
	BoolType   // bool
	StringType // string

	// Operators
	Assign // =

	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	DivMod  // /%

	Eq    // ==
	NotEq // !=
	Lt    // <
	LtEq  // <=
	Gt    // >
	GtEq  // >=

	// Symbols
	Comma      // ,
	Colon      // :
	ColonColon // ::
	Arrow      // ->
	Ellipsis   // ...

	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Position
}

var kindNames = [...]string{
	Illegal:     "Illegal",
	EOF:         "EOF",
	Newline:     "Newline",
	Indent:      "Indent",
	Dedent:      "Dedent",
	Ident:       "Ident",
	Number:      "Number",
	String:      "String",
	StringPart:  "StringPart",
	InterpStart: "InterpStart",
	InterpEnd:   "InterpEnd",
	StringEnd:   "StringEnd",
	Let:         "Let",
	Function:    "Function",
	If:          "If",
	Else:        "Else",
	Return:      "Return",
	While:       "While",
	For:         "For",
	In:          "In",
	By:          "By",
	Break:       "Break",
	Pass:        "Pass",
	True:        "True",
	False:       "False",
	None:        "None",
	And:         "And",
	Or:          "Or",
	Not:         "Not",
	Underscore:  "Underscore",
	NumberType:  "NumberType",
	BoolType:    "BoolType",
	StringType:  "StringType",
	Assign:      "Assign",
	Plus:        "Plus",
	Minus:       "Minus",
	Star:        "Star",
	Slash:       "Slash",
	Percent:     "Percent",
	DivMod:      "DivMod",
	Eq:          "Eq",
	NotEq:       "NotEq",
	Lt:          "Lt",
	LtEq:        "LtEq",
	Gt:          "Gt",
	GtEq:        "GtEq",
	Comma:       "Comma",
	Colon:       "Colon",
	ColonColon:  "ColonColon",
	Arrow:       "Arrow",
	Ellipsis:    "Ellipsis",
	LParen:      "LParen",
	RParen:      "RParen",
	LBrace:      "LBrace",
	RBrace:      "RBrace",
	LBracket:    "LBracket",
	RBracket:    "RBracket",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var keywords = map[string]Kind{
	"let":      Let,
	"function": Function,
	"if":       If,
	"else":     Else,
	"return":   Return,
	"while":    While,
	"for":      For,
	"in":       In,
	"by":       By,
	"break":    Break,
	"pass":     Pass,
	"true":     True,
	"false":    False,
	"none":     None,
	"and":      And,
	"or":       Or,
	"not":      Not,
	"_":        Underscore,

	"number": NumberType,
	"bool":   BoolType,
	"string": StringType,
}

func LookupIdent(lit string) Kind {
	if kind, ok := keywords[lit]; ok {
		return kind
	}
	return Ident
}
