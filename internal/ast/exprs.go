package ast

import (
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
)

// BinOp and UnOp enumerate the operator tokens the semantic analyzer has
// already disambiguated (overload resolution, promotion target) by the
// time codegen sees them.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpShl
	OpShr
	OpUshr
	OpAnd
	OpOr
	OpXor
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpLogicalAnd // &&, short-circuit
	OpLogicalOr  // ||, short-circuit
)

type UnOp uint8

const (
	OpPlus UnOp = iota
	OpNeg
	OpBitNot
	OpNot
)

// Literal is a compile-time constant of a primitive or String type, or
// the null literal (Type == nil, Value == nil).
type Literal struct {
	Start, End token.Pos
	Type       *symbols.Type
	Value      interface{} // bool, value.I4, value.I8, value.F32, value.F64, string, or nil
}

func (n *Literal) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *Literal) Walk(Visitor)                 {}
func (*Literal) exprNode()                      {}

// Name is a reference to a resolved local variable, static field (no
// qualifier) or instance field accessed implicitly through "this".
type Name struct {
	Start, End token.Pos
	Binding    *symbols.Variable
}

func (n *Name) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *Name) Walk(Visitor)                 {}
func (*Name) exprNode()                      {}

// This is an explicit "this" reference.
type This struct {
	Start, End token.Pos
	Type       *symbols.Type
}

func (n *This) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *This) Walk(Visitor)                 {}
func (*This) exprNode()                      {}

// FieldAccess is base.Field, an explicitly qualified field read.
type FieldAccess struct {
	Start, End token.Pos
	Base       Expr // nil iff Field is static
	Field      *symbols.Variable
}

func (n *FieldAccess) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *FieldAccess) Walk(v Visitor)               { Walk(v, n.Base) }
func (*FieldAccess) exprNode()                      {}

// ArrayAccess is array[index].
type ArrayAccess struct {
	Start, End     token.Pos
	Array, Index   Expr
	ElementType    *symbols.Type
}

func (n *ArrayAccess) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *ArrayAccess) Walk(v Visitor)               { Walk(v, n.Array); Walk(v, n.Index) }
func (*ArrayAccess) exprNode()                      {}

// CompoundOp is the binary operator of a compound assignment (+=, etc),
// or OpAdd..OpXor's zero value meaning "no compound operator" is
// represented separately via Assign.Compound == false.
type Assign struct {
	Start, End token.Pos
	LHS        Expr
	RHS        Expr
	Compound   bool // true for op=, IINC-eligible when LHS is an int local
	Op         BinOp
	NeedValue  bool // whether the assignment's own value is consumed
}

func (n *Assign) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *Assign) Walk(v Visitor)               { Walk(v, n.LHS); Walk(v, n.RHS) }
func (*Assign) exprNode()                      {}

// Binary is a binary arithmetic, comparison or boolean operator. Type is
// the promoted operand type computed by the semantic analyzer
// (C10: binary_numeric_promotion).
type Binary struct {
	Start, End token.Pos
	Op         BinOp
	L, R       Expr
	Type       *symbols.Type
}

func (n *Binary) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *Binary) Walk(v Visitor)               { Walk(v, n.L); Walk(v, n.R) }
func (*Binary) exprNode()                      {}

// Unary is a unary arithmetic or logical-not operator.
type Unary struct {
	Start, End token.Pos
	Op         UnOp
	X          Expr
	Type       *symbols.Type
}

func (n *Unary) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *Unary) Walk(v Visitor)               { Walk(v, n.X) }
func (*Unary) exprNode()                      {}

// Conditional is cond ? then : else.
type Conditional struct {
	Start, End        token.Pos
	Cond, Then, Else  Expr
	Type              *symbols.Type
}

func (n *Conditional) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *Conditional) Walk(v Visitor)               { Walk(v, n.Cond); Walk(v, n.Then); Walk(v, n.Else) }
func (*Conditional) exprNode()                      {}

// InstanceOf is x instanceof Type.
type InstanceOf struct {
	Start, End token.Pos
	X          Expr
	Type       *symbols.Type
}

func (n *InstanceOf) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *InstanceOf) Walk(v Visitor)               { Walk(v, n.X) }
func (*InstanceOf) exprNode()                      {}

// Cast is (Type) X.
type Cast struct {
	Start, End token.Pos
	Type       *symbols.Type
	X          Expr
}

func (n *Cast) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *Cast) Walk(v Visitor)               { Walk(v, n.X) }
func (*Cast) exprNode()                      {}

// New is `new C(args)`, optionally qualified by an enclosing-instance
// expression for inner-class construction.
type New struct {
	Start, End  token.Pos
	Ctor        *symbols.Method
	Args        []Expr
	Enclosing   Expr // non-nil for inner-class construction
}

func (n *New) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *New) Walk(v Visitor)               { Walk(v, n.Enclosing); walkExprs(v, n.Args) }
func (*New) exprNode()                      {}

// NewArray is `new T[d1][d2]...` with explicit dimension expressions
// and/or a trailing array initializer.
type NewArray struct {
	Start, End  token.Pos
	ElementType *symbols.Type
	Dims        []Expr // explicit dimension sizes, outermost first
	Init        *ArrayInit
}

func (n *NewArray) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *NewArray) Walk(v Visitor)               { walkExprs(v, n.Dims); Walk(v, n.Init) }
func (*NewArray) exprNode()                      {}

// ArrayInit is a `{a, b, c}` array initializer.
type ArrayInit struct {
	Start, End token.Pos
	Type       *symbols.Type
	Elems      []Expr
}

func (n *ArrayInit) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *ArrayInit) Walk(v Visitor)               { walkExprs(v, n.Elems) }
func (*ArrayInit) exprNode()                      {}

// MethodInvocation is target.Method(args) (Target nil for a static call
// or an implicit-this instance call).
type MethodInvocation struct {
	Start, End token.Pos
	Target     Expr
	Method     *symbols.Method
	Args       []Expr
	// Kind distinguishes virtual/special/static/interface dispatch;
	// resolved by the semantic analyzer (override resolution, private
	// vs. virtual binding), not re-derived here.
	Kind InvokeKind
}

type InvokeKind uint8

const (
	InvokeVirtual InvokeKind = iota
	InvokeSpecial
	InvokeStatic
	InvokeInterface
)

func (n *MethodInvocation) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *MethodInvocation) Walk(v Visitor)               { Walk(v, n.Target); walkExprs(v, n.Args) }
func (*MethodInvocation) exprNode()                      {}

// StringConcat is a left-associative chain `a + b + ... + z` whose
// overall type is String, pre-identified by the semantic analyzer so
// codegen can lower it to a single StringBuilder chain (spec.md §4.4, §4.9).
type StringConcat struct {
	Start, End token.Pos
	Parts      []Expr
}

func (n *StringConcat) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (n *StringConcat) Walk(v Visitor)               { walkExprs(v, n.Parts) }
func (*StringConcat) exprNode()                      {}
