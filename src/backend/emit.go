// emit.go provides the single-line instruction formatters every lowering routine calls through,
// grounded on original_source/src/generator/helpers.rs. Each appends one indented line to the text
// section.

package backend

import (
	"fmt"
	"strings"
)

func (g *Generator) line(format string, args ...any) {
	g.sections.text += strings.Repeat("\t", g.indent) + fmt.Sprintf(format, args...) + "\n"
}

func (g *Generator) mov(dst, src string)   { g.line("mov %s, %s", dst, src) }
func (g *Generator) add(dst, src string)   { g.line("add %s, %s", dst, src) }
func (g *Generator) sub(dst, src string)   { g.line("sub %s, %s", dst, src) }
func (g *Generator) cmp(a, b string)       { g.line("cmp %s, %s", a, b) }
func (g *Generator) jmp(lbl string)        { g.line("jmp %s", lbl) }
func (g *Generator) jz(lbl string)         { g.line("jz %s", lbl) }
func (g *Generator) jnz(lbl string)        { g.line("jnz %s", lbl) }
func (g *Generator) jg(lbl string)         { g.line("jg %s", lbl) }
func (g *Generator) jl(lbl string)         { g.line("jl %s", lbl) }
func (g *Generator) jle(lbl string)        { g.line("jle %s", lbl) }
func (g *Generator) jge(lbl string)        { g.line("jge %s", lbl) }
func (g *Generator) call(lbl string)       { g.line("call %s", lbl) }
func (g *Generator) ret()                  { g.line("ret") }
func (g *Generator) push(item string)      { g.line("push %s", item) }
func (g *Generator) pop(loc string)        { g.line("pop %s", loc) }
func (g *Generator) lea(dst, src string)   { g.line("lea %s, %s", dst, src) }
func (g *Generator) movss(dst, src string) { g.line("movss %s, %s", dst, src) }
