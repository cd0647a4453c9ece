// control.go lowers return, inline assembly and the control-flow statements (if/else, while,
// do-while, for), plus the loop-label stack break/continue jump to.

package backend

import (
	"ltc/src/ir"
)

// loopLabels is one loop's jump targets: step is where continue jumps (the increment/condition
// re-check), end is where break jumps.
type loopLabels struct {
	step string
	end  string
}

func (g *Generator) loopStepLabel() string {
	return g.loops[len(g.loops)-1].step
}

func (g *Generator) loopEndLabel() string {
	return g.loops[len(g.loops)-1].end
}

// compileReturn lowers a return statement: evaluate the expression (if any) into the
// width-appropriate return register, then emit the epilogue inline (restore the stack pointer,
// pop the base pointer, ret).
func (g *Generator) compileReturn(n *ir.Node) {
	if n.Expr != nil {
		loc := g.compileExpr(n.Expr)
		size := n.Expr.ReturnType.Size(g.cfg)
		g.mov(g.getRetReg(size), loc.Get(g.cfg))
	}
	g.drainFreeCache()
	base := g.cfg.Registers.BasePointer[0]
	stackPtr := g.cfg.Registers.StackPointer[0]
	g.mov(stackPtr, base)
	g.pop(base)
	g.ret()
}

// compileAssembly lowers an inline assembly body, substituting each variable placeholder with its
// current MemoryLocation rendering.
func (g *Generator) compileAssembly(n *ir.Node) {
	for _, chunk := range n.Assembly {
		if !chunk.IsVar {
			g.sections.text += chunk.Text
			continue
		}
		g.sections.text += g.locationOf(chunk.VarId).Get(g.cfg)
	}
	g.sections.text += "\n"
}

// locationOf renders the current MemoryLocation of a variable id: a stack slot if it is a local in
// the active frame, otherwise its own name as a data-section label.
func (g *Generator) locationOf(id uint64) MemoryLocation {
	if len(g.frames) > 0 {
		if ofs, ok := g.currentFrame().locals[id]; ok {
			return Stack(ofs)
		}
	}
	for _, v := range g.globals {
		if v.Id == id {
			return Data(v.Name)
		}
	}
	g.errorf("no storage location bound for variable id %d", id)
	panic("unreachable")
}

func (g *Generator) compileIf(n *ir.Node) {
	cond := g.compileExpr(n.Cond)
	g.drainFreeCache()
	elseLbl := g.labels.New()
	endLbl := elseLbl
	g.cmp(cond.Get(g.cfg), "0")
	g.jz(elseLbl)
	g.compileOne(n.Then)
	if n.Else != nil {
		endLbl = g.labels.New()
		g.jmp(endLbl)
		g.sections.text += elseLbl + ":\n"
		g.compileOne(n.Else)
	}
	g.sections.text += endLbl + ":\n"
}

func (g *Generator) compileWhile(n *ir.Node) {
	top := g.labels.New()
	end := g.labels.New()
	g.loops = append(g.loops, loopLabels{step: top, end: end})

	g.sections.text += top + ":\n"
	cond := g.compileExpr(n.Cond)
	g.drainFreeCache()
	g.cmp(cond.Get(g.cfg), "0")
	g.jz(end)
	g.compileOne(n.Then)
	g.jmp(top)
	g.sections.text += end + ":\n"

	g.loops = g.loops[:len(g.loops)-1]
}

func (g *Generator) compileDoWhile(n *ir.Node) {
	top := g.labels.New()
	step := g.labels.New()
	end := g.labels.New()
	g.loops = append(g.loops, loopLabels{step: step, end: end})

	g.sections.text += top + ":\n"
	g.compileOne(n.Then)
	g.sections.text += step + ":\n"
	cond := g.compileExpr(n.Cond)
	g.drainFreeCache()
	g.cmp(cond.Get(g.cfg), "0")
	g.jnz(top)
	g.sections.text += end + ":\n"

	g.loops = g.loops[:len(g.loops)-1]
}

func (g *Generator) compileFor(n *ir.Node) {
	g.compileOne(n.ForInit)
	top := g.labels.New()
	step := g.labels.New()
	end := g.labels.New()
	g.loops = append(g.loops, loopLabels{step: step, end: end})

	g.sections.text += top + ":\n"
	if n.ForCond != nil {
		cond := g.compileExpr(n.ForCond)
		g.drainFreeCache()
		g.cmp(cond.Get(g.cfg), "0")
		g.jz(end)
	}
	g.compileOne(n.ForBody)
	g.sections.text += step + ":\n"
	g.compileOne(n.ForIncr)
	g.jmp(top)
	g.sections.text += end + ":\n"

	g.loops = g.loops[:len(g.loops)-1]
}
