package ir

import "testing"

func TestFncString(t *testing.T) {
	i32 := Memory(4, Integer)
	f := &Fnc{Name: "add", ReturnType: i32, Arguments: []Variable{{Name: "a", Type: i32, Id: 1}}, Id: 7}
	got := f.String()
	want := "fnc add<7>([4:i]  a<1(local)>) [4:i]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNodeStringScope(t *testing.T) {
	lit := Literal{Kind: LitInteger, Int: 3}
	expr := &Expression{Kind: ExprLiteral, Literal: lit, ReturnType: Memory(4, Integer)}
	n := &Node{Kind: NodeScope, Children: []*Node{{Kind: NodeExpr, Expr: expr}}}
	got := n.String()
	if got != "{\n\t3 -> [4:i]}" {
		t.Errorf("unexpected scope rendering: %q", got)
	}
}

func TestExpressionIsEvaluable(t *testing.T) {
	lit := &Expression{Kind: ExprLiteral, Literal: Literal{Kind: LitInteger, Int: 1}}
	if !lit.IsEvaluable(nil) {
		t.Errorf("expected a literal to be evaluable")
	}

	global := Variable{Id: 5, Name: "g", Global: true}
	ref := &Expression{Kind: ExprVariable, VarId: 5}
	if !ref.IsEvaluable([]Variable{global}) {
		t.Errorf("expected a reference to a global to be evaluable")
	}

	local := &Expression{Kind: ExprVariable, VarId: 9}
	if local.IsEvaluable([]Variable{global}) {
		t.Errorf("expected a reference to an unlisted (local) variable to not be evaluable")
	}
}
