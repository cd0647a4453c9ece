// Command ltc drives the whole-program compiler pipeline: load config, tokenize, preprocess,
// parse, generate. The flag surface mirrors the original CLI (-o/-cfg), generalized onto cobra +
// pflag, the CLI stack this corpus reaches for, with an env-var override layer (LTC_CONFIG,
// LTC_ARCH) on top through xyproto/env.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"ltc/src/backend"
	"ltc/src/config"
	"ltc/src/frontend"
	"ltc/src/util"
)

var (
	flagOutput  string
	flagConfig  string
	flagArch    string
	flagOS      string
	flagVendor  string
	flagTokens  bool
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "ltc <source>",
		Short: "ltc compiles a single source file to x86-64 NASM assembly",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	root.Flags().StringVarP(&flagOutput, "output", "o", "", "output assembly path (default: <source> with .asm extension)")
	root.Flags().StringVar(&flagConfig, "cfg", env.Str("LTC_CONFIG", "./config.toml"), "target configuration document")
	root.Flags().StringVar(&flagArch, "arch", env.Str("LTC_ARCH", "x86_64"), "target architecture triple component")
	root.Flags().StringVar(&flagOS, "os", "linux", "target OS triple component")
	root.Flags().StringVar(&flagVendor, "vendor", "unknown", "target vendor triple component")
	root.Flags().BoolVar(&flagTokens, "ts", false, "print the token stream instead of compiling")
	root.Flags().BoolVar(&flagVerbose, "vb", false, "enable verbose logging of pipeline stages")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	opts := resolveOptions(args[0])

	logf(opts, "target: %s-%s-%s", flagArch, flagVendor, flagOS)
	logf(opts, "loading configuration from %s", opts.ConfigPath)
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("ltc: %w", err)
	}

	src, err := os.ReadFile(opts.Src)
	if err != nil {
		return fmt.Errorf("ltc: %w", err)
	}

	logf(opts, "tokenizing %s", opts.Src)
	tokens := frontend.Tokenize(string(src), opts.Src)

	if opts.TokenStream {
		printTokens(tokens, 0)
		return nil
	}

	logf(opts, "preprocessing")
	tokens = frontend.Preprocess(tokens, cfg)

	logf(opts, "parsing")
	nodes, globals := frontend.Parse(tokens, cfg)

	logf(opts, "generating assembly")
	gen := backend.NewGenerator(cfg)
	asm := gen.Compile(nodes, globals)

	logf(opts, "writing %s", opts.Out)
	return os.WriteFile(opts.Out, []byte(asm), 0644)
}

func resolveOptions(src string) util.Options {
	out := flagOutput
	if out == "" {
		out = strings.TrimSuffix(src, filepath.Ext(src)) + ".asm"
	}
	return util.Options{
		Src:         src,
		Out:         out,
		ConfigPath:  strings.TrimSuffix(flagConfig, filepath.Ext(flagConfig)) + config.Extension,
		TokenStream: flagTokens,
		Verbose:     flagVerbose,
	}
}

func logf(opts util.Options, format string, args ...any) {
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "ltc: "+format+"\n", args...)
	}
}

func printTokens(tokens []frontend.Token, depth int) {
	for _, t := range tokens {
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), t)
		if t.Block != nil {
			printTokens(t.Block, depth+1)
		}
	}
}
