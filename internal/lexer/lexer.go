package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"olive/internal/diag"
	"olive/internal/token"
)

// Lexer turns Olive source into tokens. Blocks are delimited by indentation:
// the lexer emits Newline at the end of each logical line and Indent/Dedent
// when the leading width of a line grows or shrinks. Newlines inside
// brackets are insignificant.
type Lexer struct {
	input []rune

	pos int
	cur int

	ch   rune
	line int
	col  int

	pending     []token.Token
	indents     []int
	depth       int
	atLineStart bool
	lastKind    token.Kind

	inString        bool
	stringDelimiter rune
	inInterp        bool
	interpDepth     int
	stringHasInterp bool
	stringStartPos  token.Position
	errors          []*diag.Error
}

// New prepares a lexer over input. The source is normalized to NFC first so
// identifiers written with different but canonically equal code point
// sequences name the same entity.
func New(input string) *Lexer {
	l := &Lexer{
		input:       []rune(norm.NFC.String(input)),
		line:        1,
		col:         0,
		indents:     []int{0},
		atLineStart: true,
		lastKind:    token.Newline,
	}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	tok := l.next()
	l.lastKind = tok.Kind
	return tok
}

func (l *Lexer) next() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	if l.inInterp {
		return l.nextInterpToken()
	}

	if l.inString {
		return l.nextStringToken()
	}

	if l.atLineStart && l.depth == 0 {
		if tok, ok := l.readIndentation(); ok {
			return tok
		}
	}

	l.skipWhitespaceAndComments()

	pos := token.Position{
		Line:   l.line,
		Column: l.col,
	}

	if l.ch == '\n' {
		l.readChar()
		l.atLineStart = true
		return token.Token{Kind: token.Newline, Lexeme: "\n", Pos: pos}
	}

	if l.ch == 0 {
		return l.finish(pos)
	}

	// Strings
	if l.ch == '"' || l.ch == '\'' {
		l.inString = true
		l.stringDelimiter = l.ch
		l.stringHasInterp = false
		l.stringStartPos = pos
		l.readChar() // consume opening quote
		return l.nextStringToken()
	}

	return l.scan(pos)
}

// readIndentation measures the leading width of the next non-blank line and
// reports the Indent or Dedent it causes. Blank and comment-only lines are
// skipped entirely.
func (l *Lexer) readIndentation() (token.Token, bool) {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			if l.ch == '\t' {
				l.errorf(token.Position{Line: l.line, Column: l.col}, "tabs are not allowed in indentation")
			}
			width++
			l.readChar()
		}
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			if l.ch == '\n' {
				l.readChar()
			}
			continue
		}

		l.atLineStart = false
		if l.ch == 0 {
			return token.Token{}, false
		}

		pos := token.Position{Line: l.line, Column: l.col}
		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			return token.Token{Kind: token.Indent, Pos: pos}, true
		case width < top:
			for width < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, token.Token{Kind: token.Dedent, Pos: pos})
			}
			if width != l.indents[len(l.indents)-1] {
				l.errorf(pos, "unindent does not match any outer indentation level")
			}
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		default:
			return token.Token{}, false
		}
	}
}

// finish closes the last line and every open block before EOF.
func (l *Lexer) finish(pos token.Position) token.Token {
	if l.lastKind != token.Newline && l.lastKind != token.Dedent {
		return token.Token{Kind: token.Newline, Pos: pos}
	}
	if len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		return token.Token{Kind: token.Dedent, Pos: pos}
	}
	return token.Token{Kind: token.EOF, Lexeme: "", Pos: pos}
}

func (l *Lexer) scan(pos token.Position) token.Token {
	ch := l.ch

	if isDigit(ch) {
		return token.Token{Kind: token.Number, Lexeme: l.readNumber(), Pos: pos}
	}

	// Identifiers / keywords
	if isLetter(ch) {
		lit := l.readIdentifier()
		return token.Token{Kind: token.LookupIdent(lit), Lexeme: lit, Pos: pos}
	}

	var kind token.Kind
	var lexeme string

	switch ch {
	case ',':
		kind, lexeme = token.Comma, ","
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			kind, lexeme = token.ColonColon, "::"
		} else {
			kind, lexeme = token.Colon, ":"
		}
	case '.':
		if l.peekChar() == '.' && l.peekCharAt(1) == '.' {
			l.readChar()
			l.readChar()
			kind, lexeme = token.Ellipsis, "..."
		} else {
			kind, lexeme = token.Illegal, "."
		}
	case '(':
		l.depth++
		kind, lexeme = token.LParen, "("
	case ')':
		l.closeBracket()
		kind, lexeme = token.RParen, ")"
	case '{':
		l.depth++
		kind, lexeme = token.LBrace, "{"
	case '}':
		l.closeBracket()
		kind, lexeme = token.RBrace, "}"
	case '[':
		l.depth++
		kind, lexeme = token.LBracket, "["
	case ']':
		l.closeBracket()
		kind, lexeme = token.RBracket, "]"
	case '+':
		kind, lexeme = token.Plus, "+"
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			kind, lexeme = token.Arrow, "->"
		} else {
			kind, lexeme = token.Minus, "-"
		}
	case '*':
		kind, lexeme = token.Star, "*"
	case '/':
		if l.peekChar() == '%' {
			l.readChar()
			kind, lexeme = token.DivMod, "/%"
		} else {
			kind, lexeme = token.Slash, "/"
		}
	case '%':
		kind, lexeme = token.Percent, "%"
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			kind, lexeme = token.NotEq, "!="
		} else {
			kind, lexeme = token.Illegal, "!"
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			kind, lexeme = token.Eq, "=="
		} else {
			kind, lexeme = token.Assign, "="
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			kind, lexeme = token.LtEq, "<="
		} else {
			kind, lexeme = token.Lt, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			kind, lexeme = token.GtEq, ">="
		} else {
			kind, lexeme = token.Gt, ">"
		}
	default:
		kind, lexeme = token.Illegal, string(ch)
	}

	l.readChar()

	return token.Token{Kind: kind, Lexeme: lexeme, Pos: pos}
}

func (l *Lexer) closeBracket() {
	if l.depth > 0 {
		l.depth--
	}
}

// Helpers

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
		l.cur = len(l.input)
		return
	}

	l.cur = l.pos
	l.ch = l.input[l.pos]
	l.pos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peekChar() rune {
	return l.peekCharAt(0)
}

func (l *Lexer) peekCharAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

// skipWhitespaceAndComments stops at a newline unless the lexer is inside
// brackets, where line breaks are plain whitespace.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch != 0 && unicode.IsSpace(l.ch) && (l.ch != '\n' || l.depth > 0) {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		return
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.cur
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return string(l.input[start:l.cur])
}

// readNumber leaves a trailing "..." alone so "1...10" lexes as a range.
func (l *Lexer) readNumber() string {
	start := l.cur
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // consume 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar() // consume sign
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return string(l.input[start:l.cur])
}

func (l *Lexer) nextStringToken() token.Token {
	startPos := l.stringStartPos
	var sb []rune

	for {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf(startPos, "unterminated string literal")
			l.inString = false
			return token.Token{Kind: token.Illegal, Lexeme: "", Pos: startPos}
		}
		if l.ch == l.stringDelimiter {
			l.readChar() // consume closing quote
			l.inString = false
			if !l.stringHasInterp {
				return token.Token{Kind: token.String, Lexeme: string(sb), Pos: startPos}
			}
			end := token.Token{Kind: token.StringEnd, Lexeme: "", Pos: startPos}
			if len(sb) == 0 {
				return end
			}
			l.pending = append(l.pending, end)
			return token.Token{Kind: token.StringPart, Lexeme: string(sb), Pos: startPos}
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.stringHasInterp = true
			l.readChar() // consume '$'
			l.readChar() // consume '{'
			l.inInterp = true
			l.interpDepth = 1
			start := token.Token{Kind: token.InterpStart, Lexeme: "${", Pos: startPos}
			if len(sb) == 0 {
				return start
			}
			l.pending = append(l.pending, start)
			return token.Token{Kind: token.StringPart, Lexeme: string(sb), Pos: startPos}
		}
		if l.ch == '\\' {
			escPos := token.Position{Line: l.line, Column: l.col}
			l.readChar()
			r, ok := l.readEscape(escPos)
			if !ok {
				l.inString = false
				return token.Token{Kind: token.Illegal, Lexeme: "", Pos: escPos}
			}
			sb = append(sb, r)
			l.readChar()
			continue
		}
		sb = append(sb, l.ch)
		l.readChar()
	}
}

func (l *Lexer) nextInterpToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := token.Position{
		Line:   l.line,
		Column: l.col,
	}
	ch := l.ch
	if ch == 0 || ch == '\n' {
		l.errorf(pos, "unterminated interpolation")
		l.inInterp = false
		l.inString = false
		return token.Token{Kind: token.Illegal, Lexeme: "", Pos: pos}
	}
	if ch == '{' {
		l.interpDepth++
		l.readChar()
		return token.Token{Kind: token.LBrace, Lexeme: "{", Pos: pos}
	}
	if ch == '}' {
		l.readChar()
		if l.interpDepth == 1 {
			l.inInterp = false
			return token.Token{Kind: token.InterpEnd, Lexeme: "}", Pos: pos}
		}
		l.interpDepth--
		return token.Token{Kind: token.RBrace, Lexeme: "}", Pos: pos}
	}

	// Strings inside interpolation (no nested interpolation)
	if ch == '"' || ch == '\'' {
		delimiter := ch
		l.readChar() // consume opening quote
		lit, ok := l.readSimpleString(delimiter)
		if !ok {
			return token.Token{Kind: token.Illegal, Lexeme: "", Pos: pos}
		}
		return token.Token{Kind: token.String, Lexeme: lit, Pos: pos}
	}

	return l.scan(pos)
}

func (l *Lexer) readSimpleString(delimiter rune) (string, bool) {
	startPos := token.Position{Line: l.line, Column: l.col}
	var sb []rune
	for {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf(startPos, "unterminated string literal")
			return "", false
		}
		if l.ch == delimiter {
			l.readChar()
			return string(sb), true
		}
		if l.ch == '\\' {
			escPos := token.Position{Line: l.line, Column: l.col}
			l.readChar()
			r, ok := l.readEscape(escPos)
			if !ok {
				return "", false
			}
			sb = append(sb, r)
			l.readChar()
			continue
		}
		sb = append(sb, l.ch)
		l.readChar()
	}
}

func (l *Lexer) readEscape(pos token.Position) (rune, bool) {
	switch l.ch {
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case '$':
		return '$', true
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'u':
		return l.readHexEscape(pos, 4)
	case 'x':
		return l.readHexEscape(pos, 2)
	default:
		l.errorf(pos, "invalid escape sequence")
		return 0, false
	}
}

func (l *Lexer) readHexEscape(pos token.Position, count int) (rune, bool) {
	var val rune
	for i := 0; i < count; i++ {
		l.readChar()
		v, ok := hexValue(l.ch)
		if !ok {
			l.errorf(pos, "invalid hex escape")
			return 0, false
		}
		val = val*16 + v
	}
	return val, true
}

func hexValue(ch rune) (rune, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0', true
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10, true
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10, true
	default:
		return 0, false
	}
}

func (l *Lexer) errorf(pos token.Position, msg string) {
	l.errors = append(l.errors, diag.Syntax(pos, "%s", msg))
}

func (l *Lexer) Errors() []*diag.Error {
	return l.errors
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	if ch > utf8.RuneSelf {
		return false
	}
	return ch >= '0' && ch <= '9'
}
