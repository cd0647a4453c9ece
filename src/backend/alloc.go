// alloc.go implements the allocation helpers that place named storage into the data/read-only/bss
// sections, grounded on original_source/src/generator/helpers.rs (init_alloc, const_alloc,
// uninit_alloc, alloc_str, alloc_str_const).

package backend

import (
	"fmt"
	"strings"
)

// allocInstruction picks the nasm-style directive for an exact-size initialized slot; anything
// other than 8/4/2/1 bytes is a generator error, matching the original's get_allocation_instruction.
func (g *Generator) allocInstruction(size uint64) string {
	switch size {
	case 8:
		return "dq"
	case 4:
		return "dd"
	case 2:
		return "dw"
	case 1:
		return "db"
	default:
		g.errorf("invalid .data alloc size %d", size)
		panic("unreachable")
	}
}

// uninitInstruction picks the resX directive and element count for size bytes of uninitialized
// storage, choosing the largest unit that divides size evenly.
func uninitInstruction(size uint64) (string, uint64) {
	switch {
	case size%8 == 0:
		return "resq", size / 8
	case size%4 == 0:
		return "resd", size / 4
	case size%2 == 0:
		return "resw", size / 2
	default:
		return "resb", size
	}
}

func (g *Generator) initAlloc(name string, size uint64, value string) string {
	g.sections.data += fmt.Sprintf("%s%s: %s %s\n", strings.Repeat("\t", g.indent), name, g.allocInstruction(size), value)
	return name
}

func (g *Generator) constAlloc(name string, size uint64, value string) string {
	g.sections.readOnly += fmt.Sprintf("%s%s: %s %s\n", strings.Repeat("\t", g.indent), name, g.allocInstruction(size), value)
	return name
}

func (g *Generator) uninitAlloc(name string, size uint64) string {
	ins, count := uninitInstruction(size)
	g.sections.bss += fmt.Sprintf("%s%s: %s %d\n", strings.Repeat("\t", g.indent), name, ins, count)
	return name
}

func (g *Generator) allocStr(name, s string) string {
	g.sections.data += fmt.Sprintf("%s%s: db \"%s\"\n", strings.Repeat("\t", g.indent), name, s)
	return name
}

func (g *Generator) allocStrConst(name, s string) string {
	g.sections.readOnly += fmt.Sprintf("%s%s: db \"%s\"\n", strings.Repeat("\t", g.indent), name, s)
	return name
}

// allocVar places a local at a base-pointer-relative offset (aligned to align), records the
// mapping in the active stack frame, and emits the initializing store.
func (g *Generator) allocVar(id uint64, size, align uint64, initial string) {
	frame := g.currentFrame()
	frame.next -= int64(size)
	if rem := frame.next % int64(align); rem != 0 {
		if rem < 0 {
			rem += int64(align)
		}
		frame.next -= rem
	}
	frame.locals[id] = frame.next
	g.mov(Stack(frame.next).Get(g.cfg), initial)
}
