package frontend

import (
	"testing"

	"ltc/src/ir"
)

func parseSource(t *testing.T, src string) ([]*ir.Node, []ir.Variable) {
	t.Helper()
	cfg := testConfig()
	tokens := Preprocess(Tokenize(src, "test.ltc"), cfg)
	return Parse(tokens, cfg)
}

func TestParseFunctionWithBinaryReturn(t *testing.T) {
	nodes, _ := parseSource(t, `operator + <i32, i32, i32, 1> { return left; } fnc add(i32 a, i32 b) i32 { return a + b; }`)
	if len(nodes) != 2 || nodes[1].Kind != ir.NodeFncDecl {
		t.Fatalf("expected an operator declaration followed by a function declaration node, got %v", nodes)
	}
	fn := nodes[1].Fnc
	if fn.Name != "add" || len(fn.Arguments) != 2 {
		t.Fatalf("expected fnc add/2, got %s", fn)
	}
	if fn.Body == nil || len(fn.Body.Children) != 1 {
		t.Fatalf("expected a one-statement body, got %v", fn.Body)
	}
	ret := fn.Body.Children[0]
	if ret.Kind != ir.NodeReturn || ret.Expr.Kind != ir.ExprBinary {
		t.Fatalf("expected a binary return expression, got %v", ret)
	}
}

func TestParseGlobalVariableDecl(t *testing.T) {
	_, globals := parseSource(t, `i32 x = 5;`)
	if len(globals) != 1 {
		t.Fatalf("expected one global, got %d", len(globals))
	}
	if globals[0].Name != "x" || !globals[0].Global {
		t.Errorf("expected global x, got %v", globals[0])
	}
}

func TestParseAllowsDistinctOverloads(t *testing.T) {
	nodes, _ := parseSource(t, `fnc f(i32 a) i32 { return a; } fnc f(f32 a) f32 { return a; }`)
	if len(nodes) != 2 {
		t.Fatalf("expected two distinct overloads of f to parse, got %d nodes", len(nodes))
	}
}

func TestParseNamespaceQualifiesNames(t *testing.T) {
	nodes, _ := parseSource(t, `operator * <i32, i32, i32, 2> { return left; } namespace math { fnc square(i32 a) i32 { return a * a; } }`)
	if len(nodes) != 2 || nodes[1].Kind != ir.NodePacket {
		t.Fatalf("expected an operator declaration followed by a namespace packet node, got %v", nodes)
	}
	inner := nodes[1].Children[0]
	if inner.Fnc.Name != "math::square" {
		t.Errorf("expected a namespace-qualified name, got %q", inner.Fnc.Name)
	}
}

func TestParseIfAndWhile(t *testing.T) {
	src := `operator < <i32, i32, i32, 1> { return left; }
	operator == <i32, i32, i32, 1> { return left; }
	operator + <i32, i32, i32, 2> { return left; }
	fnc f() i32 {
		i32 i = 0;
		while (i < 10) { i = i + 1; }
		if (i == 10) { return i; }
		return 0;
	}`
	nodes, _ := parseSource(t, src)
	fn := nodes[len(nodes)-1].Fnc
	if len(fn.Body.Children) != 4 {
		t.Fatalf("expected 4 statements in body, got %d: %v", len(fn.Body.Children), fn.Body.Children)
	}
	if fn.Body.Children[1].Kind != ir.NodeWhile {
		t.Errorf("expected a while node in position 1, got kind %d", fn.Body.Children[1].Kind)
	}
	if fn.Body.Children[2].Kind != ir.NodeIf {
		t.Errorf("expected an if node in position 2, got kind %d", fn.Body.Children[2].Kind)
	}
}
