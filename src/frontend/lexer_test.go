package frontend

import "testing"

// TestTokenizeSimpleDecl verifies that a small function declaration tokenizes into the expected
// flat sequence with one nested TokParen block for the argument list.
func TestTokenizeSimpleDecl(t *testing.T) {
	src := `fnc add(a:int, b:int) int { return a + b; }`
	toks := Tokenize(src, "test.ltc")

	want := []TokenKind{TokFnc, TokIdentifier, TokParen, TokIdentifier, TokCurly}
	if len(toks) != len(want) {
		t.Fatalf("expected %d top-level tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i1, k := range want {
		if toks[i1].Kind != k {
			t.Errorf("token %d: expected kind %d, got %d (%s)", i1, k, toks[i1].Kind, toks[i1])
		}
	}

	args := toks[2].Block
	if len(args) != 7 {
		t.Fatalf("expected 7 tokens inside arg list, got %d: %v", len(args), args)
	}
	if args[0].Kind != TokIdentifier || args[0].Text != "a" {
		t.Errorf("expected first arg name %q, got %v", "a", args[0])
	}
}

func TestTokenizeStringAndEscape(t *testing.T) {
	toks := Tokenize(`"hi\n"`, "test.ltc")
	if len(toks) != 1 || toks[0].Kind != TokLiteral {
		t.Fatalf("expected a single literal token, got %v", toks)
	}
	if toks[0].Text != `"hi\n"` {
		t.Errorf("expected escape preserved in lexeme, got %q", toks[0].Text)
	}
}

func TestTokenizeAngleBlockVsLessThan(t *testing.T) {
	toks := Tokenize(`operator < <int, int|$, int, 5> { return 0; }`, "test.ltc")
	found := false
	for _, tok := range toks {
		if tok.Kind == TokAngle {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an angle-bracket block token, got %v", toks)
	}
}

func TestTokenizeLineComment(t *testing.T) {
	toks := Tokenize("fnc f() int { // comment\nreturn 0; }", "test.ltc")
	if len(toks) != 5 {
		t.Fatalf("expected comment to be skipped, got %d tokens: %v", len(toks), toks)
	}
	body := toks[4].Block
	if len(body) != 3 || body[0].Kind != TokReturn {
		t.Errorf("expected body to start with return after the comment, got %v", body)
	}
}
