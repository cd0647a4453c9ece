// eval.go implements compile-time constant evaluation for global initializers and sizeof,
// grounded on original_source/src/generator/generator.rs's Generator::evaluate.

package backend

import "ltc/src/ir"

// evaluate folds expr to a Literal at compile time: literals directly, casts transparently,
// variable reads via the bound initializer recorded for that id, sizeof to the static size of its
// operand's type. Anything else is a generator error.
func (g *Generator) evaluate(expr *ir.Expression) ir.Literal {
	switch expr.Kind {
	case ir.ExprLiteral:
		return expr.Literal

	case ir.ExprCast:
		return g.evaluate(expr.Base)

	case ir.ExprVariable:
		bound, ok := g.vars[expr.VarId]
		if !ok {
			g.errorf("variable of id %d has not been lowered yet", expr.VarId)
		}
		if bound == nil {
			g.errorf("variable of id %d has no value", expr.VarId)
		}
		return g.evaluate(bound)

	case ir.ExprSizeOf:
		var t ir.Type
		if expr.SizeOfType != nil {
			t = *expr.SizeOfType
		} else {
			t = expr.Base.ReturnType
		}
		return ir.Literal{Kind: ir.LitInteger, Int: t.Size(g.cfg)}

	default:
		g.errorf("expression %s is not evaluable at compile time", expr.String())
		panic("unreachable")
	}
}
