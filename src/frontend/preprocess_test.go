package frontend

import (
	"testing"

	"ltc/src/config"
)

func testConfig() *config.Configs {
	return &config.Configs{
		Sizes: config.Sizes{Pointer: 8, IntLit: 4, FloatLit: 4, CharLit: 1},
	}
}

// TestPreprocessDefine verifies that a #define substitutes its bound token sequence at every
// later use of the identifier.
func TestPreprocessDefine(t *testing.T) {
	src := `#define FOUR { 4 } FOUR + FOUR`
	out := Preprocess(Tokenize(src, "test.ltc"), testConfig())

	want := []TokenKind{TokLiteral, TokSymbols, TokLiteral}
	if len(out) != len(want) {
		t.Fatalf("expected %d tokens after expansion, got %d: %v", len(want), len(out), out)
	}
	if out[0].Text != "4" || out[2].Text != "4" {
		t.Errorf("expected both operands to expand to 4, got %q and %q", out[0].Text, out[2].Text)
	}
}

// TestPreprocessMacroWithArgs verifies argument binding: the macro's formal parameter is replaced
// by the call site's argument tokens in the expanded body.
func TestPreprocessMacroWithArgs(t *testing.T) {
	src := `#macro double(x) { x + x } double(3)`
	out := Preprocess(Tokenize(src, "test.ltc"), testConfig())

	want := []TokenKind{TokLiteral, TokSymbols, TokLiteral}
	if len(out) != len(want) {
		t.Fatalf("expected %d tokens after expansion, got %d: %v", len(want), len(out), out)
	}
	if out[0].Text != "3" || out[2].Text != "3" {
		t.Errorf("expected macro argument substituted as 3, got %q and %q", out[0].Text, out[2].Text)
	}
}

func TestPreprocessIfdef(t *testing.T) {
	src := `#define X { 1 } #ifdef X { 2 }`
	out := Preprocess(Tokenize(src, "test.ltc"), testConfig())
	if len(out) != 1 || out[0].Text != "2" {
		t.Fatalf("expected ifdef block to expand since X is defined, got %v", out)
	}

	src2 := `#ifdef X { 2 }`
	out2 := Preprocess(Tokenize(src2, "test.ltc"), testConfig())
	if len(out2) != 0 {
		t.Fatalf("expected ifdef block to be skipped since X is undefined, got %v", out2)
	}
}

func TestPreprocessGetConfig(t *testing.T) {
	src := `getconfig("ptr_size", 2)`
	out := Preprocess(Tokenize(src, "test.ltc"), testConfig())
	if len(out) != 1 || out[0].Text != "16" {
		t.Fatalf("expected getconfig to fold to 16, got %v", out)
	}
}

func TestPreprocessPassthrough(t *testing.T) {
	src := `a + b`
	out := Preprocess(Tokenize(src, "test.ltc"), testConfig())
	if len(out) != 3 || out[0].Text != "a" || out[2].Text != "b" {
		t.Fatalf("expected unbound identifiers to pass through untouched, got %v", out)
	}
}
