package ir

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Linkage distinguishes a function with a body from an external declaration.
type Linkage int

const (
	LinkageInternal Linkage = iota
	LinkageExternal
)

// Fnc is a function declaration or definition. Body == nil means an external declaration (the
// `;`-terminated form).
type Fnc struct {
	ReturnType Type
	Name       string
	Arguments  []Variable
	Body       *Node
	Id         uint64
	Variadic   bool
	Linkage    Linkage
	Inline     bool // supplemented feature: recorded, never consulted by the generator.
}

func (f *Fnc) String() string {
	args := make([]string, len(f.Arguments))
	for i1, a := range f.Arguments {
		args[i1] = a.String()
	}
	return fmt.Sprintf("fnc %s<%d>(%s) %s", f.Name, f.Id, strings.Join(args, ", "), f.ReturnType.String())
}

// NodeKind differentiates the statement/declaration forms of the syntax tree.
type NodeKind int

const (
	NodeScope NodeKind = iota
	NodePacket
	NodeFncDecl
	NodeOperatorDecl
	NodeVariableDecl
	NodeVariableSet
	NodeReturn
	NodeAssembly
	NodeIf
	NodeWhile
	NodeDoWhile
	NodeFor
	NodeContinue
	NodeBreak
	NodeExpr
	NodeIgnored
	NodeInvalid
)

// Node is the tagged variant produced by the parser and consumed by the generator.
type Node struct {
	Kind NodeKind

	// NodeScope / NodePacket
	Children []*Node
	Packet   string // namespace path, only set for NodePacket

	// NodeFncDecl
	Fnc *Fnc

	// NodeOperatorDecl
	Operator *Operator

	// NodeVariableDecl
	Var  *Variable
	Init *Expression // optional initializer

	// NodeVariableSet
	SetVar  *Variable
	SetExpr *Expression

	// NodeReturn / NodeExpr
	Expr *Expression

	// NodeAssembly
	Assembly []AssemblyChunk

	// NodeIf / NodeWhile / NodeDoWhile
	Cond *Expression
	Then *Node
	Else *Node // NodeIf only

	// NodeFor
	ForInit *Node
	ForCond *Expression
	ForIncr *Node
	ForBody *Node
}

func (n *Node) String() string {
	switch n.Kind {
	case NodeScope:
		parts := make([]string, len(n.Children))
		for i1, c := range n.Children {
			parts[i1] = c.String()
		}
		return "{\n\t" + strings.Join(parts, "\n\t") + "}"
	case NodePacket:
		parts := make([]string, len(n.Children))
		for i1, c := range n.Children {
			parts[i1] = c.String()
		}
		return fmt.Sprintf("namespace %s {\n\t%s}", n.Packet, strings.Join(parts, "\n\t"))
	case NodeFncDecl:
		body := ";"
		if n.Fnc.Body != nil {
			body = n.Fnc.Body.String()
		}
		return fmt.Sprintf("%s %s", n.Fnc, body)
	case NodeOperatorDecl:
		right := ""
		if n.Operator.Right != nil {
			right = n.Operator.Right.String()
		}
		return fmt.Sprintf("%s %s %s - %d -> %s", n.Operator.Left.String(), n.Operator.Symbols, right, n.Operator.Precedence, n.Operator.ReturnType.String())
	case NodeExpr:
		return n.Expr.String()
	case NodeInvalid:
		return "NULL"
	default:
		return fmt.Sprintf("<node kind %d>", n.Kind)
	}
}

// AssemblyChunk is one piece of an inline assembly body: either a raw run of text, or a reference
// to a variable id whose current MemoryLocation rendering should be substituted.
type AssemblyChunk struct {
	IsVar bool
	Text  string
	VarId uint64
}
