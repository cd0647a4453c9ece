package main

import "testing"

func TestResolveOptionsDefaultsOutputExtension(t *testing.T) {
	flagOutput = ""
	flagConfig = "./config.toml"
	opts := resolveOptions("prog.ltc")
	if opts.Out != "prog.asm" {
		t.Errorf("expected default output prog.asm, got %q", opts.Out)
	}
	if opts.Src != "prog.ltc" {
		t.Errorf("expected source to be carried through unchanged, got %q", opts.Src)
	}
}

func TestResolveOptionsRespectsExplicitOutput(t *testing.T) {
	flagOutput = "out.s"
	defer func() { flagOutput = "" }()
	opts := resolveOptions("prog.ltc")
	if opts.Out != "out.s" {
		t.Errorf("expected explicit output to win, got %q", opts.Out)
	}
}
