// regpool.go implements the first-fit register allocator: a flat bank scan replacing the
// teacher's graph-coloring allocator (src/backend/lir/regalloc.go in the teacher tree), per the
// spec's Non-goals, grounded on original_source/src/generator/helpers.rs
// (get_unused_register/free_register/get_ret_reg).

package backend

import "ltc/src/config"

// getUnusedRegister reserves and returns the name of an unused register wide enough for size
// bytes, from the basic bank (simd == false) or the SIMD bank (simd == true).
func (g *Generator) getUnusedRegister(size uint64, simd bool) (string, regHandle) {
	biggest := g.cfg.Registers.BiggestSize
	names := g.cfg.Registers.Basic
	used := g.usedBasic
	if simd {
		biggest = g.cfg.Registers.BiggestSimd
		names = g.cfg.Registers.Simds
		used = g.usedSimd
	}
	width := config.WidthIndex(biggest, int(size))
	for bank := range names {
		if used[bank] {
			continue
		}
		used[bank] = true
		return names[bank][width], regHandle{simd: simd, bank: bank, width: width}
	}
	g.errorf("cannot find unused register of size %d", size)
	panic("unreachable")
}

// freeRegister releases h back to the pool so a later getUnusedRegister call may reuse its bank.
func (g *Generator) freeRegister(h regHandle) {
	if h.simd {
		g.usedSimd[h.bank] = false
	} else {
		g.usedBasic[h.bank] = false
	}
}

// deferRelease queues h to be released at the next statement boundary, matching free_cache's
// deferred-release contract for composite expressions.
func (g *Generator) deferRelease(h regHandle) {
	g.freeCache = append(g.freeCache, h)
}

// drainFreeCache releases every deferred register reservation, called after each statement.
func (g *Generator) drainFreeCache() {
	for _, h := range g.freeCache {
		g.freeRegister(h)
	}
	g.freeCache = g.freeCache[:0]
}

// getRetReg returns the width-appropriate return register for a value of size bytes.
func (g *Generator) getRetReg(size uint64) string {
	width := config.WidthIndex(g.cfg.Registers.BiggestSize, int(size))
	if width >= len(g.cfg.Registers.ReturnRegister) {
		g.errorf("cannot get return register for size %d", size)
	}
	return g.cfg.Registers.ReturnRegister[width]
}
