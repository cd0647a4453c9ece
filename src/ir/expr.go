package ir

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ExprKind differentiates the forms an Expression can take.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprFncCall
	ExprFncPtrCall
	ExprReference
	ExprDereference
	ExprIndex
	ExprFieldAccess
	ExprCast
	ExprFncPtrRef
	ExprSizeOf
	ExprUnary
	ExprBinary
	ExprAssignment
)

// Expression is every typed node of the language's expression grammar. return_type always equals
// the compatibility target used to type-check the expression (see invariant in the data model).
type Expression struct {
	Kind       ExprKind
	ReturnType Type

	Literal Literal // ExprLiteral
	VarId   uint64  // ExprVariable, ExprFncPtrRef

	CalleeId uint64        // ExprFncCall
	Args     []*Expression // ExprFncCall, ExprFncPtrCall

	Callee *Expression // ExprFncPtrCall

	Base *Expression // ExprReference, ExprDereference, ExprIndex, ExprFieldAccess, ExprCast, ExprSizeOf(as expr), ExprUnary

	Index *Expression // ExprIndex

	Field *Variable // ExprFieldAccess

	Into *Type // ExprCast

	SizeOfType *Type // ExprSizeOf(type form); nil means "sizeof an expression", use Base instead

	Op    string // ExprUnary, ExprBinary
	Left  *Expression
	Right *Expression // ExprBinary, ExprAssignment(as Right)
}

// Literal is the closed set of compile-time literal values.
type LiteralKind int

const (
	LitInteger LiteralKind = iota
	LitFloat
	LitChar
	LitString
)

// Literal holds a scanned literal value together with its kind tag.
type Literal struct {
	Kind LiteralKind
	Int  uint64
	Flt  float64
	Chr  byte
	Str  string
}

func (l Literal) String() string {
	switch l.Kind {
	case LitInteger:
		return fmt.Sprintf("%d", l.Int)
	case LitFloat:
		return fmt.Sprintf("%v", l.Flt)
	case LitChar:
		return fmt.Sprintf("'%c'", l.Chr)
	case LitString:
		return fmt.Sprintf("%q", l.Str)
	default:
		return "<invalid literal>"
	}
}

// Operator is a user-defined unary or binary operator overload. Right == nil marks a unary
// operator (the "$" right-operand placeholder in the grammar). Operands carries the "left" and,
// for binary operators, "right" pseudo-arguments the body refers to, in that order, so the
// generator can bind them the same way it binds a function's arguments.
type Operator struct {
	Symbols    string
	Left       Type
	Right      *Type
	ReturnType Type
	Precedence int
	Body       *Node
	Operands   []Variable
}

// ---------------------
// ----- functions -----
// ---------------------

// IsEvaluable reports whether e can be folded to a Literal at compile time: spec restricts this to
// literals, sizeof, casts of evaluables, and references to global variables (the generator looks
// the global's bound initializer expression up through its own vars map).
func (e *Expression) IsEvaluable(globals []Variable) bool {
	switch e.Kind {
	case ExprLiteral, ExprSizeOf:
		return true
	case ExprCast:
		return e.Base.IsEvaluable(globals)
	case ExprVariable:
		for _, g := range globals {
			if g.Id == e.VarId {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (e *Expression) String() string {
	var kind string
	switch e.Kind {
	case ExprLiteral:
		kind = e.Literal.String()
	case ExprVariable:
		kind = fmt.Sprintf("(%d)", e.VarId)
	case ExprFncCall:
		args := make([]string, len(e.Args))
		for i1, a := range e.Args {
			args[i1] = a.String()
		}
		kind = fmt.Sprintf("fnc<%d>(%s)", e.CalleeId, strings.Join(args, ", "))
	case ExprFncPtrCall:
		args := make([]string, len(e.Args))
		for i1, a := range e.Args {
			args[i1] = a.String()
		}
		kind = fmt.Sprintf("%s(%s)", e.Callee, strings.Join(args, ", "))
	case ExprReference:
		kind = "&" + e.Base.String()
	case ExprDereference:
		kind = "*" + e.Base.String()
	case ExprIndex:
		kind = fmt.Sprintf("%s[%s]", e.Base, e.Index)
	case ExprFieldAccess:
		kind = fmt.Sprintf("%s.%s", e.Base, e.Field.Name)
	case ExprCast:
		kind = fmt.Sprintf("%s to %s", e.Base, e.Into)
	case ExprFncPtrRef:
		kind = fmt.Sprintf("(&fnc<%d>)", e.VarId)
	case ExprSizeOf:
		if e.SizeOfType != nil {
			kind = fmt.Sprintf("sizeof %s", e.SizeOfType)
		} else {
			kind = fmt.Sprintf("sizeof %s", e.Base)
		}
	case ExprUnary:
		kind = fmt.Sprintf("%s%s", e.Op, e.Base)
	case ExprBinary:
		kind = fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
	case ExprAssignment:
		kind = fmt.Sprintf("%s = %s", e.Left, e.Right)
	default:
		kind = "<invalid expr>"
	}
	return fmt.Sprintf("%s -> %s", kind, e.ReturnType.String())
}
