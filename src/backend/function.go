// function.go implements function/operator-body lowering and the per-body stack frame, grounded
// on original_source/src/generator/{generator,helpers}.rs (StackFrame, create_function).

package backend

import "ltc/src/ir"

// currentFrame returns the stack frame of the body currently being lowered.
func (g *Generator) currentFrame() *stackFrame {
	return g.frames[len(g.frames)-1]
}

// createFunction emits name's label, pushes a fresh stack frame bound to args' incoming calling-
// convention locations, runs body (which lowers the function/operator's statements), then
// restores the stack and returns.
//
// compileCall pushes each argument left to right before the call instruction, so once the callee's
// own prologue has pushed the base pointer, argument j of n sits at [rbp+(n-j+1)*pointerSize]: one
// pointer-size slot past the return address for the last-pushed (rightmost) argument, and one more
// slot per argument moving left.
func (g *Generator) createFunction(name string, args []ir.Variable, body func()) {
	g.sections.text += name + ":\n"
	g.indent++
	base := g.cfg.Registers.BasePointer[0]
	stackPtr := g.cfg.Registers.StackPointer[0]
	g.push(base)
	g.mov(base, stackPtr)

	frame := &stackFrame{locals: map[uint64]int64{}}
	n := int64(len(args))
	for j, a := range args {
		frame.locals[a.Id] = (n - int64(j) + 1) * int64(g.cfg.Sizes.Pointer)
	}
	g.frames = append(g.frames, frame)
	body()
	g.frames = g.frames[:len(g.frames)-1]

	g.mov(stackPtr, base)
	g.pop(base)
	g.ret()
	g.indent--
}
