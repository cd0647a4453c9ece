package backend

import (
	"strings"
	"testing"
)

func TestMemoryLocationGet(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		loc  MemoryLocation
		want string
	}{
		{Register("rax"), "rax"},
		{Value("42"), "42"},
		{Data("foo"), "[foo]"},
		{Stack(0), "[rbp]"},
		{Stack(8), "[rbp+8]"},
		{Stack(-8), "[rbp-8]"},
	}
	for _, c := range cases {
		if got := c.loc.Get(cfg); got != c.want {
			t.Errorf("Get(): expected %q, got %q", c.want, got)
		}
	}
}

func TestComposeSectionLayout(t *testing.T) {
	cfg := testConfig()
	s := sections{text: "\tret\n", data: "x: dd 1\n", readOnly: "", bss: ""}
	out := compose(cfg, s)

	if !strings.HasPrefix(out, "global main\n") {
		t.Fatalf("expected listing to start with the global directive, got:\n%s", out)
	}
	wantOrder := []string{"section .text", "section .data", "section .rodata", "section .bss"}
	last := -1
	for _, w := range wantOrder {
		idx := strings.Index(out, w)
		if idx < 0 {
			t.Fatalf("expected section %q to be present, got:\n%s", w, out)
		}
		if idx < last {
			t.Fatalf("expected section %q to appear in text/data/rodata/bss order", w)
		}
		last = idx
	}
}

func TestAllocInstructionBySize(t *testing.T) {
	g := NewGenerator(testConfig())
	cases := map[uint64]string{8: "dq", 4: "dd", 2: "dw", 1: "db"}
	for size, want := range cases {
		if got := g.allocInstruction(size); got != want {
			t.Errorf("allocInstruction(%d): expected %q, got %q", size, want, got)
		}
	}
}

func TestUninitInstructionPicksWidestDivisor(t *testing.T) {
	cases := []struct {
		size      uint64
		wantIns   string
		wantCount uint64
	}{
		{16, "resq", 2},
		{4, "resd", 1},
		{2, "resw", 1},
		{3, "resb", 3},
	}
	for _, c := range cases {
		ins, count := uninitInstruction(c.size)
		if ins != c.wantIns || count != c.wantCount {
			t.Errorf("uninitInstruction(%d): expected (%q, %d), got (%q, %d)", c.size, c.wantIns, c.wantCount, ins, count)
		}
	}
}

func TestAllocVarAlignsStackOffset(t *testing.T) {
	g := NewGenerator(testConfig())
	frame := &stackFrame{locals: map[uint64]int64{}}
	g.frames = append(g.frames, frame)

	g.allocVar(1, 1, 1, "0")
	g.allocVar(2, 4, 4, "0")

	if frame.locals[1] != -1 {
		t.Errorf("expected first local at offset -1, got %d", frame.locals[1])
	}
	if frame.locals[2]%4 != 0 {
		t.Errorf("expected second local aligned to 4, got offset %d", frame.locals[2])
	}
}
