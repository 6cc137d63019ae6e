// Copyright © 2024 The ELPS authors

package ast

// UnaryOp is a prefix unary operator.
type UnaryOp string

const (
	UnaryPlus   UnaryOp = "+"
	UnaryMinus  UnaryOp = "-"
	UnaryNot    UnaryOp = "!"
	UnaryBitNot UnaryOp = "~"
	UnaryTypeof UnaryOp = "typeof"
	UnaryVoid   UnaryOp = "void"
	UnaryDelete UnaryOp = "delete"
)

// UpdateOp is `++` or `--`.
type UpdateOp string

const (
	Increment UpdateOp = "++"
	Decrement UpdateOp = "--"
)

// BinaryOp is a non-short-circuiting binary operator.
type BinaryOp string

const (
	Add          BinaryOp = "+"
	Sub          BinaryOp = "-"
	Mul          BinaryOp = "*"
	Div          BinaryOp = "/"
	Rem          BinaryOp = "%"
	Exp          BinaryOp = "**"
	ShiftLeft    BinaryOp = "<<"
	ShiftRight   BinaryOp = ">>"
	ShiftRightU  BinaryOp = ">>>"
	BitOr        BinaryOp = "|"
	BitAnd       BinaryOp = "&"
	BitXor       BinaryOp = "^"
	Equal        BinaryOp = "=="
	NotEqual     BinaryOp = "!="
	StrictEqual  BinaryOp = "==="
	StrictNotEq  BinaryOp = "!=="
	Less         BinaryOp = "<"
	LessEqual    BinaryOp = "<="
	Greater      BinaryOp = ">"
	GreaterEqual BinaryOp = ">="
	In           BinaryOp = "in"
	Instanceof   BinaryOp = "instanceof"
)

// LogicalOp is a short-circuiting operator.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "&&"
	LogicalOr  LogicalOp = "||"
	Coalesce   LogicalOp = "??"
)

// AssignOp is `=` or a compound assignment operator.
type AssignOp string

const (
	Assign           AssignOp = "="
	AssignAdd        AssignOp = "+="
	AssignSub        AssignOp = "-="
	AssignMul        AssignOp = "*="
	AssignDiv        AssignOp = "/="
	AssignRem        AssignOp = "%="
	AssignExp        AssignOp = "**="
	AssignShiftLeft  AssignOp = "<<="
	AssignShiftRight AssignOp = ">>="
	AssignShiftRU    AssignOp = ">>>="
	AssignBitOr      AssignOp = "|="
	AssignBitAnd     AssignOp = "&="
	AssignBitXor     AssignOp = "^="
	AssignAnd        AssignOp = "&&="
	AssignOr         AssignOp = "||="
	AssignCoalesce   AssignOp = "??="
)

// IsCompound reports whether the assignment also reads its target.
func (op AssignOp) IsCompound() bool { return op != Assign }

// IsLogical reports whether the assignment short-circuits.
func (op AssignOp) IsLogical() bool {
	return op == AssignAnd || op == AssignOr || op == AssignCoalesce
}
