// Package backend implements the code generator: it walks the parser's node sequence and lowers
// each declaration and statement to x86-64 textual assembly, grounded on
// original_source/src/generator/generator.rs.
package backend

import (
	"fmt"

	"ltc/src/config"
	"ltc/src/ir"
	"ltc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// stackFrame tracks the next free base-pointer-relative offset and the id→offset map of one
// function or operator body currently being lowered.
type stackFrame struct {
	next   int64
	locals map[uint64]int64
}

// Generator walks a compiled node tree, accumulating the four output sections. It holds no
// concurrency primitives: the compiler is single-threaded cooperative (see design §5), so unlike
// the teacher's parallel register allocator this is plain sequential state.
type Generator struct {
	cfg *config.Configs

	sections sections
	indent   int

	labels util.Labeler

	usedBasic []bool // in-use flag per basic-bank index, mirrors used_registers
	usedSimd  []bool // in-use flag per SIMD-bank index
	freeCache []regHandle

	globals []ir.Variable
	vars    map[uint64]*ir.Expression // id -> bound initializer; present with a nil value means "no initializer"

	frames []*stackFrame
	loops  []loopLabels
}

// regHandle names a reserved register by bank index, so free_cache can release it later without
// re-deriving the width.
type regHandle struct {
	simd  bool
	bank  int
	width int
}

// ---------------------
// ----- functions -----
// ---------------------

// NewGenerator constructs a Generator over cfg; call Compile with the parsed node list.
func NewGenerator(cfg *config.Configs) *Generator {
	g := &Generator{
		cfg:  cfg,
		vars: map[uint64]*ir.Expression{},
	}
	g.usedBasic = make([]bool, len(cfg.Registers.Basic))
	g.usedSimd = make([]bool, len(cfg.Registers.Simds))
	return g
}

// Compile lowers every top-level node and composes the final assembly listing.
func (g *Generator) Compile(nodes []*ir.Node, globals []ir.Variable) string {
	g.globals = globals
	for _, n := range nodes {
		g.compileOne(n)
	}
	return compose(g.cfg, g.sections)
}

func (g *Generator) errorf(format string, args ...any) {
	util.Fatalf("", 0, "%s", fmt.Sprintf(format, args...))
}

// compileOne dispatches one top-level or nested node.
func (g *Generator) compileOne(n *ir.Node) {
	switch n.Kind {
	case ir.NodeScope, ir.NodePacket:
		for _, c := range n.Children {
			g.compileOne(c)
		}

	case ir.NodeFncDecl:
		if n.Fnc.Body != nil {
			g.createFunction(n.Fnc.Name, n.Fnc.Arguments, func() {
				g.compileOne(n.Fnc.Body)
			})
		}

	case ir.NodeOperatorDecl:
		if n.Operator.Body != nil {
			g.createFunction(operatorLabel(n.Operator), n.Operator.Operands, func() {
				g.compileOne(n.Operator.Body)
			})
		}

	case ir.NodeVariableDecl:
		g.compileVariableDecl(n)

	case ir.NodeReturn:
		g.compileReturn(n)

	case ir.NodeAssembly:
		g.compileAssembly(n)

	case ir.NodeIf:
		g.compileIf(n)

	case ir.NodeWhile:
		g.compileWhile(n)

	case ir.NodeDoWhile:
		g.compileDoWhile(n)

	case ir.NodeFor:
		g.compileFor(n)

	case ir.NodeBreak:
		g.jmp(g.loopEndLabel())

	case ir.NodeContinue:
		g.jmp(g.loopStepLabel())

	case ir.NodeExpr:
		loc := g.compileExpr(n.Expr)
		_ = loc
		g.drainFreeCache()

	case ir.NodeIgnored:
		// typedefs leave no code behind.

	default:
		g.errorf("cannot lower node of kind %d", n.Kind)
	}
}

// operatorLabel derives a unique internal label for an operator body, since operators have no
// user-chosen name the way functions do.
func operatorLabel(op *ir.Operator) string {
	return fmt.Sprintf("op_%p", op)
}
