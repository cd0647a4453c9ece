// preprocess.go implements the macro/include/conditional preprocessor, grounded on
// original_source/src/tokens/preprocessor.rs. Every include gets a copy of the enclosing
// definitions and macros (so a nested include can use what came before it, but nothing it defines
// leaks back out), matching the original's Preprocessor::from.

package frontend

import (
	"fmt"
	"os"

	"ltc/src/config"
	"ltc/src/ir"
	"ltc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// macro is a #macro definition: a parameter list and an unexpanded token body.
type macro struct {
	args    []string
	content []Token
}

// preprocessor walks one file's token stream, expanding directives and identifiers bound by
// #define/#macro into a flat output stream.
type preprocessor struct {
	cur         util.Cursor[Token]
	definitions map[string][]Token
	macros      map[string]macro
	cfg         *config.Configs
}

// ---------------------
// ----- functions -----
// ---------------------

// Preprocess runs the preprocessor over tokens (as scanned from a single file) and returns the
// expanded, flat token stream. cfg backs getconfig(...) directives.
func Preprocess(tokens []Token, cfg *config.Configs) []Token {
	p := &preprocessor{
		cur:         newTokenCursor(tokens),
		definitions: map[string][]Token{},
		macros:      map[string]macro{},
		cfg:         cfg,
	}
	return p.run()
}

// preprocessFrom runs the preprocessor over tokens, inheriting other's definitions and macros by
// value: changes made while processing tokens never propagate back to other.
func preprocessFrom(tokens []Token, other *preprocessor) []Token {
	p := &preprocessor{
		cur:         newTokenCursor(tokens),
		definitions: cloneTokenMap(other.definitions),
		macros:      cloneMacroMap(other.macros),
		cfg:         other.cfg,
	}
	return p.run()
}

func newTokenCursor(tokens []Token) util.Cursor[Token] {
	return util.NewCursor(tokens, TokenEqual, TokenLine, TokenFile)
}

func cloneTokenMap(m map[string][]Token) map[string][]Token {
	out := make(map[string][]Token, len(m))
	for k, v := range m {
		out[k] = append([]Token(nil), v...)
	}
	return out
}

func cloneMacroMap(m map[string]macro) map[string]macro {
	out := make(map[string]macro, len(m))
	for k, v := range m {
		out[k] = macro{args: append([]string(nil), v.args...), content: append([]Token(nil), v.content...)}
	}
	return out
}

// run drives the top-level loop: getconfig(...) substitution, then a single token's worth of
// directive/identifier/passthrough handling.
func (p *preprocessor) run() []Token {
	var out []Token
	for p.cur.HasPeek() {
		line, file := p.cur.Peek().Line, p.cur.Peek().File
		if p.cur.TryConsume(Token{Kind: TokGetConfig}) {
			out = append(out, p.expandGetConfig(line, file))
			continue
		}
		p.preprocessOne(line, file, &out)
	}
	return out
}

// preprocessOne handles exactly one unit of input: a '#' directive, an identifier that might be a
// definition or macro invocation, or an unrelated token passed through untouched.
func (p *preprocessor) preprocessOne(line int, file string, out *[]Token) {
	switch p.cur.Peek().Kind {
	case TokHash, TokIdentifier:
	default:
		*out = append(*out, p.cur.Consume())
		return
	}

	if p.cur.TryConsume(Token{Kind: TokHash}) {
		p.preprocessDirective(out)
		return
	}
	id := p.cur.Consume().Text
	p.preprocessIdentifier(id, line, file, out)
}

// preprocessIdentifier substitutes id for its bound definition, expands it as a macro invocation,
// or (if unbound) passes it through as a plain identifier token.
func (p *preprocessor) preprocessIdentifier(id string, line int, file string, out *[]Token) {
	if def, ok := p.definitions[id]; ok {
		*out = append(*out, def...)
		return
	}
	if m, ok := p.macros[id]; ok {
		block := p.cur.Consume()
		if block.Kind != TokParen {
			p.cur.Errorf("expected ( ... ) block")
		}
		var args [][]Token
		p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
			var arg []Token
			for c.HasPeek() {
				if c.TryConsume(Token{Kind: TokComma}) {
					args = append(args, arg)
					arg = nil
					continue
				}
				arg = append(arg, c.Consume())
			}
			if len(arg) > 0 {
				args = append(args, arg)
			}
		})
		if len(m.args) != len(args) {
			p.cur.Errorf("invalid arguments for macro %s", id)
		}
		restore := p.definitions
		p.definitions = cloneTokenMap(p.definitions)
		for i1, name := range m.args {
			p.definitions[name] = args[i1]
		}
		var expanded []Token
		p.cur.Switch(m.content, func(c *util.Cursor[Token]) {
			sub := &preprocessor{cur: *c, definitions: p.definitions, macros: p.macros, cfg: p.cfg}
			expanded = sub.run()
		})
		p.definitions = restore
		*out = append(*out, expanded...)
		return
	}
	*out = append(*out, Token{Kind: TokIdentifier, Text: id, Line: line, File: file})
}

// preprocessDirective dispatches a '#'-introduced directive: include, define, macro, ifdef, ifndef.
func (p *preprocessor) preprocessDirective(out *[]Token) {
	switch {
	case p.cur.TryConsume(Token{Kind: TokInclude}):
		p.directiveInclude(out)
	case p.cur.TryConsume(Token{Kind: TokDefine}):
		p.directiveDefine()
	case p.cur.TryConsume(Token{Kind: TokMacro}):
		p.directiveMacro()
	case p.cur.TryConsume(Token{Kind: TokIfdef}):
		p.directiveIf(out, true)
	case p.cur.TryConsume(Token{Kind: TokIfndef}):
		p.directiveIf(out, false)
	default:
		p.cur.Errorf("invalid preprocessor directive")
	}
}

func (p *preprocessor) directiveInclude(out *[]Token) {
	lit := p.cur.Consume()
	if lit.Kind != TokLiteral {
		p.cur.Errorf("expected string literal")
	}
	path := unquoteString(lit.Text)
	content, err := os.ReadFile(path)
	if err != nil {
		p.cur.Errorf("%s", err)
	}
	tokens := Tokenize(string(content), path)
	*out = append(*out, preprocessFrom(tokens, p)...)
}

func (p *preprocessor) directiveDefine() {
	id := p.cur.Consume()
	if id.Kind != TokIdentifier {
		p.cur.Errorf("expected identifier")
	}
	if p.isBound(id.Text) {
		p.cur.Errorf("definition %s already exists", id.Text)
	}
	block := p.cur.Consume()
	if block.Kind != TokCurly {
		p.cur.Errorf("expected { ... } block")
	}
	p.definitions[id.Text] = block.Block
}

func (p *preprocessor) directiveMacro() {
	id := p.cur.Consume()
	if id.Kind != TokIdentifier {
		p.cur.Errorf("expected identifier")
	}
	if p.isBound(id.Text) {
		p.cur.Errorf("macro %s already exists", id.Text)
	}
	argBlock := p.cur.Consume()
	if argBlock.Kind != TokParen {
		p.cur.Errorf("expected macro arguments")
	}
	var args []string
	p.cur.Switch(argBlock.Block, func(c *util.Cursor[Token]) {
		for c.HasPeek() {
			if len(args) > 0 {
				c.Require(Token{Kind: TokComma})
			}
			a := c.Consume()
			if a.Kind != TokIdentifier {
				c.Errorf("expected identifier")
			}
			args = append(args, a.Text)
		}
	})
	body := p.cur.Consume()
	if body.Kind != TokCurly {
		p.cur.Errorf("expected { ... } block")
	}
	p.macros[id.Text] = macro{args: args, content: body.Block}
}

// directiveIf handles ifdef (wantBound == true) and ifndef (wantBound == false); the block only
// gets preprocessed, and its expansion appended, when the condition holds.
func (p *preprocessor) directiveIf(out *[]Token, wantBound bool) {
	id := p.cur.Consume()
	if id.Kind != TokIdentifier {
		p.cur.Errorf("expected identifier")
	}
	block := p.cur.Consume()
	if block.Kind != TokCurly {
		p.cur.Errorf("expected { ... } block")
	}
	if p.isBound(id.Text) != wantBound {
		return
	}
	var expanded []Token
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		sub := &preprocessor{cur: *c, definitions: p.definitions, macros: p.macros, cfg: p.cfg}
		expanded = sub.run()
	})
	*out = append(*out, expanded...)
}

func (p *preprocessor) isBound(id string) bool {
	_, def := p.definitions[id]
	_, mcr := p.macros[id]
	return def || mcr
}

// expandGetConfig evaluates a getconfig("name", factor) call against cfg and returns the
// substitute integer-literal token.
func (p *preprocessor) expandGetConfig(line int, file string) Token {
	block := p.cur.Consume()
	if block.Kind != TokParen {
		p.cur.Errorf("expected ( ... ) block")
	}
	var size uint64
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		name := c.Consume()
		if name.Kind != TokLiteral {
			c.Errorf("expected string literal")
		}
		c.Require(Token{Kind: TokComma})
		factor := c.Consume()
		if factor.Kind != TokLiteral {
			c.Errorf("expected float literal")
		}
		lit, err := ParseLiteral(factor.Text)
		if err != nil {
			c.Errorf("%s", err)
		}
		var f float64
		switch lit.Kind {
		case ir.LitFloat:
			f = lit.Flt
		default:
			f = float64(lit.Int)
		}
		base, err := p.cfg.Sizes.ByName(unquoteString(name.Text))
		if err != nil {
			c.Errorf("%s", err)
		}
		size = uint64(float64(base) * f)
	})
	return Token{Kind: TokLiteral, Text: fmt.Sprintf("%d", size), Line: line, File: file}
}

// unquoteString strips the surrounding double quotes a %q-formatted literal lexeme carries.
func unquoteString(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
