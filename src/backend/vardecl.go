// vardecl.go lowers variable declarations, grounded on
// original_source/src/generator/generator.rs's Node::VariableDecl arm.

package backend

import (
	"fmt"
	"math"

	"ltc/src/ir"
)

func (g *Generator) compileVariableDecl(n *ir.Node) {
	v := n.Var
	if v.Global {
		g.compileGlobalDecl(v, n.Init)
		return
	}
	g.compileLocalDecl(v, n.Init)
}

func (g *Generator) compileGlobalDecl(v *ir.Variable, init *ir.Expression) {
	if init == nil {
		g.uninitAlloc(v.Name, v.Type.Size(g.cfg))
		g.vars[v.Id] = nil
		return
	}
	if !init.IsEvaluable(g.globals) {
		g.errorf("initializer of %s is not constant", v.Name)
	}
	lit := g.evaluate(init)
	size := v.Type.Size(g.cfg)
	if v.Mutable {
		g.allocLiteral(g.initAlloc, g.allocStr, v.Name, size, lit)
	} else {
		g.allocLiteral(g.constAlloc, g.allocStrConst, v.Name, size, lit)
	}
	g.vars[v.Id] = init
}

// allocLiteral dispatches a Literal to the size-taking allocator alloc for numeric/char kinds, or
// to the string-taking allocator str for string kinds.
func (g *Generator) allocLiteral(alloc func(string, uint64, string) string, str func(string, string) string, name string, size uint64, lit ir.Literal) {
	switch lit.Kind {
	case ir.LitChar:
		alloc(name, size, fmt.Sprintf("%d", lit.Chr))
	case ir.LitInteger:
		alloc(name, size, fmt.Sprintf("%d", lit.Int))
	case ir.LitFloat:
		alloc(name, size, fmt.Sprintf("%d", math.Float64bits(lit.Flt)))
	case ir.LitString:
		str(name, lit.Str)
	}
}

func (g *Generator) compileLocalDecl(v *ir.Variable, init *ir.Expression) {
	val := "0"
	if init != nil {
		loc := g.compileExpr(init)
		val = loc.Get(g.cfg)
	}
	g.allocVar(v.Id, v.Type.Size(g.cfg), v.Type.Align(g.cfg), val)
	g.drainFreeCache()
}
