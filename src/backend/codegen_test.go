package backend

import (
	"strings"
	"testing"

	"ltc/src/config"
	"ltc/src/frontend"
)

func testConfig() *config.Configs {
	return &config.Configs{
		Entry: "main",
		Sizes: config.Sizes{Pointer: 8, IntLit: 4, FloatLit: 4, CharLit: 1},
		Sections: config.Sections{
			Text: ".text", Data: ".data", ReadOnly: ".rodata", Bss: ".bss",
		},
		Registers: config.Registers{
			Basic: [][]string{
				{"rax", "eax", "ax", "al"},
				{"rbx", "ebx", "bx", "bl"},
				{"rcx", "ecx", "cx", "cl"},
			},
			Simds:          [][]string{{"xmm0"}, {"xmm1"}},
			StackPointer:   []string{"rsp", "esp", "sp", "spl"},
			BasePointer:    []string{"rbp", "ebp", "bp", "bpl"},
			ReturnRegister: []string{"rax", "eax", "ax", "al"},
			BiggestSize:    8,
			BiggestSimd:    4,
		},
	}
}

func compileSource(t *testing.T, src string) string {
	t.Helper()
	cfg := testConfig()
	tokens := frontend.Preprocess(frontend.Tokenize(src, "test.ltc"), cfg)
	nodes, globals := frontend.Parse(tokens, cfg)
	return NewGenerator(cfg).Compile(nodes, globals)
}

func TestComposeSectionOrderAndEntry(t *testing.T) {
	asm := compileSource(t, `fnc main() i32 { return 0; }`)
	if !strings.HasPrefix(asm, "global main\nsection .text\n") {
		t.Fatalf("expected the listing to open with the entry directive and the text section, got:\n%s", asm)
	}
	for _, want := range []string{"section .data", "section .rodata", "section .bss"} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected listing to contain %q", want)
		}
	}
}

func TestCompileFunctionEmitsLabelAndReturn(t *testing.T) {
	asm := compileSource(t, `fnc main() i32 { return 0; }`)
	if !strings.Contains(asm, "main:") {
		t.Errorf("expected a label for function main, got:\n%s", asm)
	}
	if !strings.Contains(asm, "ret") {
		t.Errorf("expected a ret instruction, got:\n%s", asm)
	}
}

func TestCompileInlineAssemblyFunctionEmitsLabel(t *testing.T) {
	asm := compileSource(t, `fnc main() i32 { i32 unused = 0; asm { "lea rax, {unused}" } return 0; }`)
	if !strings.Contains(asm, "main:") {
		t.Errorf("expected function label, got:\n%s", asm)
	}
}

func TestGetUnusedRegisterFirstFit(t *testing.T) {
	g := NewGenerator(testConfig())
	name1, h1 := g.getUnusedRegister(8, false)
	if name1 != "rax" {
		t.Errorf("expected first-fit to return rax, got %s", name1)
	}
	name2, _ := g.getUnusedRegister(8, false)
	if name2 != "rbx" {
		t.Errorf("expected next first-fit call to skip the used bank and return rbx, got %s", name2)
	}
	g.freeRegister(h1)
	name3, _ := g.getUnusedRegister(8, false)
	if name3 != "rax" {
		t.Errorf("expected freeing rax's bank to make it available again, got %s", name3)
	}
}

func TestCompileMutableGlobalGoesInDataImmutableInRodata(t *testing.T) {
	asm := compileSource(t, "i32 mut counter = 0;\ni32 limit = sizeof i32;\nfnc main() i32 { return 0; }")

	dataIdx := strings.Index(asm, "section .data")
	rodataIdx := strings.Index(asm, "section .rodata")
	counterIdx := strings.Index(asm, "counter:")
	limitIdx := strings.Index(asm, "limit:")

	if counterIdx < dataIdx || counterIdx > rodataIdx {
		t.Errorf("expected mutable global counter to be allocated in .data, got asm:\n%s", asm)
	}
	if limitIdx < rodataIdx {
		t.Errorf("expected immutable global limit to be allocated in .rodata, got asm:\n%s", asm)
	}
	if !strings.Contains(asm, "limit: dd 4") {
		t.Errorf("expected limit's sizeof initializer to fold to 4, got asm:\n%s", asm)
	}
}

func TestWidthSelection(t *testing.T) {
	g := NewGenerator(testConfig())
	name, _ := g.getUnusedRegister(4, false)
	if name != "eax" {
		t.Errorf("expected a 4-byte request to select the eax width, got %s", name)
	}
}
