package ast

import (
	"olive/internal/token"
	"olive/internal/types"
)

// Basic interfaces

type Node interface {
	Pos() token.Position
}

type Stmt interface {
	Node
	stmtNode()
}

// Expr is decorated in place by the analyzer with its static type.
type Expr interface {
	Node
	exprNode()
	Type() types.Type
	SetType(types.Type)
}

type TypeNode interface {
	Node
	typeNode()
}

type typed struct {
	typ types.Type
}

func (t *typed) Type() types.Type     { return t.typ }
func (t *typed) SetType(x types.Type) { t.typ = x }

// ---------- Program / Block ----------

type Program struct {
	Body *Block
}

func (p *Program) Pos() token.Position { return p.Body.Pos() }

type Block struct {
	Stmts    []Stmt
	BlockPos token.Position
}

func (b *Block) Pos() token.Position { return b.BlockPos }

// ---------- Statements ----------

// MutableBinding is `a, b[0] = x, y`. Fresh is filled by the analyzer:
// Fresh[i] is true when Targets[i] declares a new variable.
type MutableBinding struct {
	Targets   []Expr // *IdExpression or *SubscriptExpression
	Sources   []Expr
	Fresh     []bool
	AssignPos token.Position
}

// ImmutableBinding is `let a, b = x, y`.
type ImmutableBinding struct {
	Targets []*IdExpression
	Sources []Expr
	LetPos  token.Position
}

type WhileStatement struct {
	Test     Expr
	Body     *Block
	WhilePos token.Position
}

type ForStatement struct {
	Var    *IdExpression
	Source Expr
	Body   *Block
	ForPos token.Position
}

type IfStatement struct {
	Cases     []*Case
	Alternate *Block // nil when there is no else
	IfPos     token.Position
}

type Case struct {
	Test Expr
	Body *Block
}

type BreakStatement struct {
	BreakPos token.Position
}

// PassStatement skips to the next loop iteration.
type PassStatement struct {
	PassPos token.Position
}

type ReturnStatement struct {
	Value     Expr // nil for a bare return
	ReturnPos token.Position
}

type FunctionDeclaration struct {
	Name       string
	NamePos    token.Position
	Params     []*Parameter
	Annotation *Annotation
	Body       *Block

	Entity *FunctionVariable
}

type Parameter struct {
	Name    string
	NamePos token.Position

	Entity *Variable
}

func (p *Parameter) Pos() token.Position { return p.NamePos }

// Annotation is the signature after "::". NoParams and NoResult record the
// "_" wildcard on either side of the arrow.
type Annotation struct {
	Params   []TypeNode
	Result   TypeNode
	NoParams bool
	NoResult bool
	ColonPos token.Position
}

func (a *Annotation) Pos() token.Position { return a.ColonPos }

type ExpressionStatement struct {
	Expr Expr
}

func (s *MutableBinding) Pos() token.Position      { return s.AssignPos }
func (s *ImmutableBinding) Pos() token.Position    { return s.LetPos }
func (s *WhileStatement) Pos() token.Position      { return s.WhilePos }
func (s *ForStatement) Pos() token.Position        { return s.ForPos }
func (s *IfStatement) Pos() token.Position         { return s.IfPos }
func (s *BreakStatement) Pos() token.Position      { return s.BreakPos }
func (s *PassStatement) Pos() token.Position       { return s.PassPos }
func (s *ReturnStatement) Pos() token.Position     { return s.ReturnPos }
func (s *FunctionDeclaration) Pos() token.Position { return s.NamePos }
func (s *ExpressionStatement) Pos() token.Position { return s.Expr.Pos() }

func (*MutableBinding) stmtNode()      {}
func (*ImmutableBinding) stmtNode()    {}
func (*WhileStatement) stmtNode()      {}
func (*ForStatement) stmtNode()        {}
func (*IfStatement) stmtNode()         {}
func (*BreakStatement) stmtNode()      {}
func (*PassStatement) stmtNode()       {}
func (*ReturnStatement) stmtNode()     {}
func (*FunctionDeclaration) stmtNode() {}
func (*ExpressionStatement) stmtNode() {}

// ---------- Expressions ----------

type NumberLiteral struct {
	typed
	Value  float64
	Raw    string
	LitPos token.Position
}

type BooleanLiteral struct {
	typed
	Value  bool
	LitPos token.Position
}

type StringLiteral struct {
	typed
	Value  string
	LitPos token.Position
}

type NoneLiteral struct {
	typed
	LitPos token.Position
}

// IdExpression names a variable or function. Referent is set by the
// analyzer to the entity the name resolves to.
type IdExpression struct {
	typed
	Name    string
	NamePos token.Position

	Referent Entity
}

type SubscriptExpression struct {
	typed
	Base      Expr
	Index     Expr
	LBrackPos token.Position
}

type BinaryExpression struct {
	typed
	Op    token.Kind
	OpPos token.Position
	Left  Expr
	Right Expr
}

type UnaryExpression struct {
	typed
	Op      token.Kind
	OpPos   token.Position
	Operand Expr
}

type MatrixExpression struct {
	typed
	Elems     []Expr
	LBrackPos token.Position
}

type TupleExpression struct {
	typed
	Elems     []Expr
	LParenPos token.Position
}

type SetExpression struct {
	typed
	Elems     []Expr
	LBracePos token.Position
}

type DictionaryExpression struct {
	typed
	Entries   []*KeyValue
	LBracePos token.Position
}

type KeyValue struct {
	Key   Expr
	Value Expr
}

// RangeExpression is `[start ... end by step)`. The bracket on each side
// selects whether that bound is included.
type RangeExpression struct {
	typed
	Start          Expr
	Step           Expr
	End            Expr
	InclusiveStart bool
	InclusiveEnd   bool
	OpenPos        token.Position
}

type StringInterpolation struct {
	typed
	Parts  []InterpolationPart
	LitPos token.Position
}

type InterpolationPart interface {
	interpolationPart()
}

type TextPart struct {
	Value string
}

type Interpolation struct {
	Expr Expr
}

func (*TextPart) interpolationPart()      {}
func (*Interpolation) interpolationPart() {}

type FunctionCallExpression struct {
	typed
	Callee    *IdExpression
	Args      []Expr
	LParenPos token.Position
}

func (e *NumberLiteral) Pos() token.Position          { return e.LitPos }
func (e *BooleanLiteral) Pos() token.Position         { return e.LitPos }
func (e *StringLiteral) Pos() token.Position          { return e.LitPos }
func (e *NoneLiteral) Pos() token.Position            { return e.LitPos }
func (e *IdExpression) Pos() token.Position           { return e.NamePos }
func (e *SubscriptExpression) Pos() token.Position    { return e.Base.Pos() }
func (e *BinaryExpression) Pos() token.Position       { return e.OpPos }
func (e *UnaryExpression) Pos() token.Position        { return e.OpPos }
func (e *MatrixExpression) Pos() token.Position       { return e.LBrackPos }
func (e *TupleExpression) Pos() token.Position        { return e.LParenPos }
func (e *SetExpression) Pos() token.Position          { return e.LBracePos }
func (e *DictionaryExpression) Pos() token.Position   { return e.LBracePos }
func (e *RangeExpression) Pos() token.Position        { return e.OpenPos }
func (e *StringInterpolation) Pos() token.Position    { return e.LitPos }
func (e *FunctionCallExpression) Pos() token.Position { return e.Callee.Pos() }

func (*NumberLiteral) exprNode()          {}
func (*BooleanLiteral) exprNode()         {}
func (*StringLiteral) exprNode()          {}
func (*NoneLiteral) exprNode()            {}
func (*IdExpression) exprNode()           {}
func (*SubscriptExpression) exprNode()    {}
func (*BinaryExpression) exprNode()       {}
func (*UnaryExpression) exprNode()        {}
func (*MatrixExpression) exprNode()       {}
func (*TupleExpression) exprNode()        {}
func (*SetExpression) exprNode()          {}
func (*DictionaryExpression) exprNode()   {}
func (*RangeExpression) exprNode()        {}
func (*StringInterpolation) exprNode()    {}
func (*FunctionCallExpression) exprNode() {}

// ---------- Type annotations ----------

// NamedType is a primitive type name such as number.
type NamedType struct {
	Name    string
	NamePos token.Position
}

type MatrixType struct {
	Elem      TypeNode
	LBrackPos token.Position
}

type TupleType struct {
	Elems     []TypeNode
	LParenPos token.Position
}

type SetType struct {
	Elem      TypeNode
	LBracePos token.Position
}

type DictionaryType struct {
	Key       TypeNode
	Value     TypeNode
	LBracePos token.Position
}

func (t *NamedType) Pos() token.Position      { return t.NamePos }
func (t *MatrixType) Pos() token.Position     { return t.LBrackPos }
func (t *TupleType) Pos() token.Position      { return t.LParenPos }
func (t *SetType) Pos() token.Position        { return t.LBracePos }
func (t *DictionaryType) Pos() token.Position { return t.LBracePos }

func (*NamedType) typeNode()      {}
func (*MatrixType) typeNode()     {}
func (*TupleType) typeNode()      {}
func (*SetType) typeNode()        {}
func (*DictionaryType) typeNode() {}
