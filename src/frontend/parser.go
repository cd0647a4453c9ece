// parser.go implements the recursive-descent parser: declarations, types, expressions (with the
// postfix/rebalance tail) and statements, grounded on original_source/src/parser/*.rs and on the
// ir package's tagged-union shapes. The parser is the only stage that builds ir.Type/ir.Expression/
// ir.Node values; the generator only ever reads them.

package frontend

import (
	"fmt"

	"ltc/src/config"
	"ltc/src/ir"
	"ltc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// typeBinding is the type environment's value: nil Type marks a typedef currently being defined,
// which prevents a typedef from referring to itself.
type typeBinding struct {
	typ *ir.Type
}

// parser holds every piece of state the grammar threads through: the type environment, the
// scope-stacked local list, the global list, the overload lists, the namespace stack and the
// current function's return type.
type parser struct {
	cur util.Cursor[Token]
	cfg *config.Configs

	types   map[string]typeBinding
	locals  []ir.Variable
	globals []ir.Variable

	scopeDepth int
	loopDepth  int

	functions []*ir.Fnc
	operators []*ir.Operator

	namespace []string

	returnType *ir.Type // non-nil only while parsing inside a function body

	// nextId is a pointer so every sub-parser spawned to parse an argument list, a field list
	// or a for-loop header allocates from the same sequence as the parser that spawned it.
	nextId *uint64
}

// ---------------------
// ----- functions -----
// ---------------------

// Parse runs the parser over a preprocessed token stream and returns the top-level declaration
// nodes together with the final global-variable list.
func Parse(tokens []Token, cfg *config.Configs) ([]*ir.Node, []ir.Variable) {
	var counter uint64
	p := &parser{
		cur:    newTokenCursor(tokens),
		cfg:    cfg,
		types:  builtinTypes(),
		nextId: &counter,
	}
	var nodes []*ir.Node
	for p.cur.HasPeek() {
		nodes = append(nodes, p.parseDeclaration())
	}
	return nodes, p.globals
}

// builtinTypes seeds the type environment with the primitive memory types named in the grammar.
func builtinTypes() map[string]typeBinding {
	mk := func(size uint64, kind ir.MemoryKind) typeBinding {
		t := ir.Memory(size, kind)
		return typeBinding{typ: &t}
	}
	return map[string]typeBinding{
		"u8": mk(1, ir.Unsigned), "u16": mk(2, ir.Unsigned), "u32": mk(4, ir.Unsigned), "u64": mk(8, ir.Unsigned),
		"i8": mk(1, ir.Integer), "i16": mk(2, ir.Integer), "i32": mk(4, ir.Integer), "i64": mk(8, ir.Integer),
		"f32": mk(4, ir.Float), "f64": mk(8, ir.Float),
	}
}

func (p *parser) newId() uint64 {
	*p.nextId++
	return *p.nextId
}

// qualify joins name with the current namespace stack, matching how the grammar prefixes every
// declaration inside a `namespace` block.
func (p *parser) qualify(name string) string {
	if len(p.namespace) == 0 {
		return name
	}
	full := ""
	for _, n := range p.namespace {
		full += n + "::"
	}
	return full + name
}

// ------------------------
// ----- declarations -----
// ------------------------

// parseDeclaration dispatches one top-level or scope-level declaration.
func (p *parser) parseDeclaration() *ir.Node {
	switch {
	case p.cur.TryConsume(Token{Kind: TokFnc}):
		return p.parseFunction()
	case p.cur.TryConsume(Token{Kind: TokOperator}):
		return p.parseOperator()
	case p.cur.TryConsume(Token{Kind: TokTypedef}):
		return p.parseTypedef()
	case p.cur.TryConsume(Token{Kind: TokNamespace}):
		return p.parseNamespace()
	case p.cur.TryConsume(Token{Kind: TokEnum}):
		p.cur.Errorf("enum is reserved")
		panic("unreachable")
	default:
		return p.parseVariableDeclStatement()
	}
}

// parseFunction parses `fnc name(args) ret_type { body }` or the `;`-terminated external form.
func (p *parser) parseFunction() *ir.Node {
	inline := p.cur.TryConsume(Token{Kind: TokInline})
	name := p.requireIdentifier()
	argBlock := p.cur.Consume()
	if argBlock.Kind != TokParen {
		p.cur.Errorf("expected ( ... ) argument list")
	}
	var args []ir.Variable
	var variadic bool
	p.cur.Switch(argBlock.Block, func(c *util.Cursor[Token]) {
		for c.HasPeek() {
			if len(args) > 0 || variadic {
				c.Require(Token{Kind: TokComma})
			}
			if c.TryConsume(Token{Kind: TokEllipsis}) {
				variadic = true
				continue
			}
			sub := &parser{cur: *c, cfg: p.cfg, types: p.types, nextId: p.nextId}
			v := sub.parseVariable()
			v.Mutable = false
			args = append(args, v)
			*c = sub.cur
		}
	})
	retType := p.parseType()

	f := &ir.Fnc{ReturnType: retType, Name: p.qualify(name), Arguments: args, Id: p.newId(), Variadic: variadic, Inline: inline}

	if p.cur.TryConsume(Token{Kind: TokSemicolon}) {
		f.Linkage = ir.LinkageExternal
		p.checkDuplicateFnc(f)
		p.functions = append(p.functions, f)
		return &ir.Node{Kind: ir.NodeFncDecl, Fnc: f}
	}

	f.Linkage = ir.LinkageInternal
	p.checkDuplicateFnc(f)
	p.functions = append(p.functions, f)

	savedLocals, savedReturn := p.locals, p.returnType
	p.locals = append([]ir.Variable(nil), args...)
	p.returnType = &f.ReturnType
	f.Body = p.parseScope()
	p.locals, p.returnType = savedLocals, savedReturn

	return &ir.Node{Kind: ir.NodeFncDecl, Fnc: f}
}

// checkDuplicateFnc enforces the overload-uniqueness rule: same name, pairwise-compatible
// argument types, same return type.
func (p *parser) checkDuplicateFnc(f *ir.Fnc) {
	for _, other := range p.functions {
		if other.Name != f.Name || len(other.Arguments) != len(f.Arguments) {
			continue
		}
		same := other.ReturnType.CompatibleWith(&f.ReturnType)
		for i1 := range other.Arguments {
			if !other.Arguments[i1].Type.CompatibleWith(&f.Arguments[i1].Type) {
				same = false
			}
		}
		if same {
			p.cur.Errorf("duplicate overload of function %s", f.Name)
		}
	}
}

// parseOperator parses `operator <symbols> <left, right|$, return_type, precedence> { body }`.
func (p *parser) parseOperator() *ir.Node {
	symbols := p.requireSymbols()
	angle := p.cur.Consume()
	if angle.Kind != TokAngle {
		p.cur.Errorf("expected < ... > operator signature")
	}

	op := &ir.Operator{Symbols: symbols}
	p.cur.Switch(angle.Block, func(c *util.Cursor[Token]) {
		sub := &parser{cur: *c, cfg: p.cfg, types: p.types, nextId: p.nextId}
		op.Left = sub.parseType()
		sub.cur.Require(Token{Kind: TokComma})
		if sub.cur.TryConsume(Token{Kind: TokDollar}) {
			op.Right = nil
		} else {
			r := sub.parseType()
			op.Right = &r
		}
		sub.cur.Require(Token{Kind: TokComma})
		op.ReturnType = sub.parseType()
		sub.cur.Require(Token{Kind: TokComma})
		lit := sub.cur.Consume()
		if lit.Kind != TokLiteral {
			sub.cur.Errorf("expected integer precedence literal")
		}
		fmt.Sscanf(lit.Text, "%d", &op.Precedence)
		*c = sub.cur
	})

	p.checkDuplicateOperator(op)
	p.operators = append(p.operators, op)

	savedLocals, savedReturn := p.locals, p.returnType
	p.locals = nil
	leftVar := ir.Variable{Type: op.Left, Name: "left", Id: p.newId()}
	p.locals = append(p.locals, leftVar)
	op.Operands = append(op.Operands, leftVar)
	if op.Right != nil {
		rightVar := ir.Variable{Type: *op.Right, Name: "right", Id: p.newId()}
		p.locals = append(p.locals, rightVar)
		op.Operands = append(op.Operands, rightVar)
	}
	p.returnType = &op.ReturnType
	op.Body = p.parseScope()
	p.locals, p.returnType = savedLocals, savedReturn

	return &ir.Node{Kind: ir.NodeOperatorDecl, Operator: op}
}

func (p *parser) checkDuplicateOperator(op *ir.Operator) {
	for _, other := range p.operators {
		if other.Symbols != op.Symbols {
			continue
		}
		if !other.Left.Root().CompatibleWith(op.Left.Root()) {
			continue
		}
		if (other.Right == nil) != (op.Right == nil) {
			continue
		}
		if other.Right != nil && !other.Right.Root().CompatibleWith(op.Right.Root()) {
			continue
		}
		p.cur.Errorf("duplicate overload of operator %s", op.Symbols)
	}
}

// parseTypedef parses `typedef name type;` with the two-phase placeholder-then-commit protocol.
func (p *parser) parseTypedef() *ir.Node {
	name := p.requireIdentifier()
	if _, exists := p.types[name]; exists {
		p.cur.Errorf("type %s already defined", name)
	}
	p.types[name] = typeBinding{typ: nil}
	inner := p.parseType()
	p.cur.Require(Token{Kind: TokSemicolon})
	aliased := ir.Alias(name, &inner)
	p.types[name] = typeBinding{typ: &aliased}
	return &ir.Node{Kind: ir.NodeIgnored}
}

// parseNamespace parses `namespace ident { ... }`, pushing ident for the duration of the block.
func (p *parser) parseNamespace() *ir.Node {
	name := p.requireIdentifier()
	block := p.cur.Consume()
	if block.Kind != TokCurly {
		p.cur.Errorf("expected { ... } block")
	}
	p.namespace = append(p.namespace, name)
	var children []*ir.Node
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		for c.HasPeek() {
			children = append(children, p.parseDeclaration())
		}
	})
	p.namespace = p.namespace[:len(p.namespace)-1]
	return &ir.Node{Kind: ir.NodePacket, Packet: name, Children: children}
}

// ------------------
// ----- types  -----
// ------------------

// parseType parses one type form: `&T`, `[N]`/`[N $]`/`[N signed]`, `[size;type]`, struct/union,
// `fnc(...) ret`, or a plain identifier alias.
func (p *parser) parseType() ir.Type {
	switch {
	case p.cur.TryConsume(Token{Kind: TokAmpersand}):
		inner := p.parseType()
		return ir.Pointer(&inner)

	case p.cur.Peek().Kind == TokSquare:
		block := p.cur.Consume()
		return p.parseSquareType(block)

	case p.cur.TryConsume(Token{Kind: TokStruct}):
		return ir.Struct(p.parseFieldList())

	case p.cur.TryConsume(Token{Kind: TokUnion}):
		return ir.Union(p.parseFieldList())

	case p.cur.TryConsume(Token{Kind: TokFnc}):
		argBlock := p.cur.Consume()
		if argBlock.Kind != TokParen {
			p.cur.Errorf("expected ( ... ) argument type list")
		}
		var args []ir.Type
		p.cur.Switch(argBlock.Block, func(c *util.Cursor[Token]) {
			for c.HasPeek() {
				if len(args) > 0 {
					c.Require(Token{Kind: TokComma})
				}
				sub := &parser{cur: *c, cfg: p.cfg, types: p.types, nextId: p.nextId}
				args = append(args, sub.parseType())
				*c = sub.cur
			}
		})
		ret := p.parseType()
		return ir.FunctionPointer(&ret, args)

	default:
		name := p.requireIdentifier()
		binding, ok := p.types[name]
		if !ok {
			p.cur.Errorf("unknown type %s", name)
		}
		if binding.typ == nil {
			p.cur.Errorf("type %s cannot be used within its own definition", name)
		}
		return *binding.typ
	}
}

// parseSquareType disambiguates `[N]`/`[N $]`/`[N signed]` memory types from `[size;type]` arrays
// using the contents of an already-consumed `[...]` block.
func (p *parser) parseSquareType(block Token) ir.Type {
	var result ir.Type
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		sizeLit := c.Consume()
		if sizeLit.Kind != TokLiteral {
			c.Errorf("expected integer literal")
		}
		var size uint64
		fmt.Sscanf(sizeLit.Text, "%d", &size)

		if c.TryConsume(Token{Kind: TokSemicolon}) {
			sub := &parser{cur: *c, cfg: p.cfg, types: p.types, nextId: p.nextId}
			elem := sub.parseType()
			*c = sub.cur
			sizeExpr := &ir.Expression{Kind: ir.ExprLiteral, Literal: ir.Literal{Kind: ir.LitInteger, Int: size}, ReturnType: ir.Memory(p.cfg.Sizes.IntLit, ir.Unsigned)}
			result = ir.Array(sizeExpr, &elem)
			return
		}

		kind := ir.Unsigned
		if c.TryConsume(Token{Kind: TokDollar}) {
			kind = ir.Float
		} else if c.TryConsume(Token{Kind: TokSigned}) {
			kind = ir.Integer
		}
		result = ir.Memory(size, kind)
	})
	return result
}

// parseFieldList parses a `{ field; field; ... }` block shared by struct and union.
func (p *parser) parseFieldList() []ir.Variable {
	block := p.cur.Consume()
	if block.Kind != TokCurly {
		p.cur.Errorf("expected { ... } field list")
	}
	var fields []ir.Variable
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		for c.HasPeek() {
			sub := &parser{cur: *c, cfg: p.cfg, types: p.types, nextId: p.nextId}
			v := sub.parseVariable()
			sub.cur.Require(Token{Kind: TokSemicolon})
			fields = append(fields, v)
			*c = sub.cur
		}
	})
	return fields
}

// parseVariable parses `type [mut] name`, the shared shape used by arguments, fields and variable
// declarations, without consuming a trailing terminator or initializer.
func (p *parser) parseVariable() ir.Variable {
	typ := p.parseType()
	mutable := p.cur.TryConsume(Token{Kind: TokMut})
	name := p.requireIdentifier()
	return ir.Variable{Type: typ, Name: name, Id: p.newId(), Mutable: mutable}
}

// requireIdentifier consumes and returns an identifier's text, or reports a fatal diagnostic.
func (p *parser) requireIdentifier() string {
	t := p.cur.Consume()
	if t.Kind != TokIdentifier {
		p.cur.Errorf("expected identifier")
	}
	return t.Text
}

// requireSymbols consumes and returns a symbol-run's text.
func (p *parser) requireSymbols() string {
	t := p.cur.Consume()
	if t.Kind != TokSymbols {
		p.cur.Errorf("expected operator symbols")
	}
	return t.Text
}

// -----------------------
// ----- statements  -----
// -----------------------

// parseVariableDeclStatement parses `type [mut] name [= expr];` at declaration or statement level.
func (p *parser) parseVariableDeclStatement() *ir.Node {
	v := p.parseVariable()
	var init *ir.Expression
	if p.cur.TryConsume(Token{Kind: TokSymbols, Text: "="}) {
		e := p.parseExpr()
		if !e.ReturnType.CompatibleWith(&v.Type) {
			p.cur.Errorf("initializer of %s is not compatible with declared type", v.Name)
		}
		init = e
	}
	p.cur.Require(Token{Kind: TokSemicolon})

	v.Name = p.qualify(v.Name)
	v.Global = p.scopeDepth == 0
	if v.Global {
		p.globals = append(p.globals, v)
	} else {
		p.locals = append(p.locals, v)
	}
	return &ir.Node{Kind: ir.NodeVariableDecl, Var: &v, Init: init}
}

// parseScope parses a `{ ... }` block, enter/exit the local-scope stack.
func (p *parser) parseScope() *ir.Node {
	block := p.cur.Consume()
	if block.Kind != TokCurly {
		p.cur.Errorf("expected { ... } scope")
	}
	p.scopeDepth++
	localMark := len(p.locals)
	var children []*ir.Node
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		for c.HasPeek() {
			children = append(children, p.parseStatement())
		}
	})
	p.locals = p.locals[:localMark]
	p.scopeDepth--
	return &ir.Node{Kind: ir.NodeScope, Children: children}
}

// parseStatement dispatches one statement form.
func (p *parser) parseStatement() *ir.Node {
	switch {
	case p.cur.Peek().Kind == TokCurly:
		return p.parseScope()
	case p.cur.TryConsume(Token{Kind: TokReturn}):
		return p.parseReturn()
	case p.cur.TryConsume(Token{Kind: TokAsm}):
		return p.parseAsm()
	case p.cur.TryConsume(Token{Kind: TokIf}):
		return p.parseIf()
	case p.cur.TryConsume(Token{Kind: TokWhile}):
		return p.parseWhile()
	case p.cur.TryConsume(Token{Kind: TokDo}):
		return p.parseDoWhile()
	case p.cur.TryConsume(Token{Kind: TokFor}):
		return p.parseFor()
	case p.cur.TryConsume(Token{Kind: TokBreak}):
		p.requireLoop("break")
		p.cur.Require(Token{Kind: TokSemicolon})
		return &ir.Node{Kind: ir.NodeBreak}
	case p.cur.TryConsume(Token{Kind: TokContinue}):
		p.requireLoop("continue")
		p.cur.Require(Token{Kind: TokSemicolon})
		return &ir.Node{Kind: ir.NodeContinue}
	case p.isVariableDeclAhead():
		return p.parseVariableDeclStatement()
	default:
		e := p.parseExpr()
		p.cur.Require(Token{Kind: TokSemicolon})
		return &ir.Node{Kind: ir.NodeExpr, Expr: e}
	}
}

func (p *parser) requireLoop(kw string) {
	if p.loopDepth == 0 {
		p.cur.Errorf("%s outside of a loop", kw)
	}
}

// isVariableDeclAhead reports whether the next token introduces a type name (as opposed to an
// expression-statement), so the parser can choose the right production without backtracking.
func (p *parser) isVariableDeclAhead() bool {
	switch p.cur.Peek().Kind {
	case TokAmpersand, TokSquare, TokStruct, TokUnion, TokFnc:
		return true
	case TokIdentifier:
		_, ok := p.types[p.cur.Peek().Text]
		return ok
	default:
		return false
	}
}

func (p *parser) parseReturn() *ir.Node {
	if p.returnType == nil {
		p.cur.Errorf("return outside of a function or operator body")
	}
	var e *ir.Expression
	if !p.cur.PeekEqual(Token{Kind: TokSemicolon}) {
		e = p.parseExpr()
		if !e.ReturnType.CompatibleWith(p.returnType) {
			p.cur.Errorf("return expression is not compatible with the declared return type")
		}
	}
	p.cur.Require(Token{Kind: TokSemicolon})
	return &ir.Node{Kind: ir.NodeReturn, Expr: e}
}

// parseAsm parses `asm { "..." "..." }`, concatenating the string literals with newlines and
// splitting out `{name}` placeholders against the current locals and globals.
func (p *parser) parseAsm() *ir.Node {
	block := p.cur.Consume()
	if block.Kind != TokCurly {
		p.cur.Errorf("expected { ... } assembly body")
	}
	var raw string
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		first := true
		for c.HasPeek() {
			lit := c.Consume()
			if lit.Kind != TokLiteral {
				c.Errorf("expected string literal")
			}
			if !first {
				raw += "\n"
			}
			first = false
			raw += unquoteString(lit.Text)
		}
	})
	return &ir.Node{Kind: ir.NodeAssembly, Assembly: p.splitAsmPlaceholders(raw)}
}

// splitAsmPlaceholders scans raw for `{name}` runs, resolving each name against locals then
// globals and emitting an AssemblyChunk referencing the bound variable id.
func (p *parser) splitAsmPlaceholders(raw string) []ir.AssemblyChunk {
	var chunks []ir.AssemblyChunk
	var plain []byte
	flush := func() {
		if len(plain) > 0 {
			chunks = append(chunks, ir.AssemblyChunk{Text: string(plain)})
			plain = nil
		}
	}
	for i1 := 0; i1 < len(raw); i1++ {
		if raw[i1] == '{' {
			end := i1 + 1
			for end < len(raw) && raw[end] != '}' {
				end++
			}
			if end < len(raw) {
				name := raw[i1+1 : end]
				if v := p.lookupVariable(name); v != nil {
					flush()
					chunks = append(chunks, ir.AssemblyChunk{IsVar: true, VarId: v.Id})
					i1 = end
					continue
				}
			}
		}
		plain = append(plain, raw[i1])
	}
	flush()
	return chunks
}

func (p *parser) lookupVariable(name string) *ir.Variable {
	for i1 := len(p.locals) - 1; i1 >= 0; i1-- {
		if p.locals[i1].Name == name {
			return &p.locals[i1]
		}
	}
	for i1 := range p.globals {
		if p.globals[i1].Name == name {
			return &p.globals[i1]
		}
	}
	return nil
}

func (p *parser) parseIf() *ir.Node {
	cond := p.parseParenExpr()
	then := p.parseScope()
	var els *ir.Node
	if p.cur.TryConsume(Token{Kind: TokElse}) {
		if p.cur.TryConsume(Token{Kind: TokIf}) {
			els = p.parseIf()
		} else {
			els = p.parseScope()
		}
	}
	return &ir.Node{Kind: ir.NodeIf, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseWhile() *ir.Node {
	cond := p.parseParenExpr()
	p.loopDepth++
	body := p.parseScope()
	p.loopDepth--
	return &ir.Node{Kind: ir.NodeWhile, Cond: cond, Then: body}
}

func (p *parser) parseDoWhile() *ir.Node {
	p.loopDepth++
	body := p.parseScope()
	p.loopDepth--
	p.cur.Require(Token{Kind: TokWhile})
	cond := p.parseParenExpr()
	p.cur.Require(Token{Kind: TokSemicolon})
	return &ir.Node{Kind: ir.NodeDoWhile, Cond: cond, Then: body}
}

// parseFor parses `for(var = init; cond; incr) body`; the scope of the loop variable is the loop.
func (p *parser) parseFor() *ir.Node {
	block := p.cur.Consume()
	if block.Kind != TokParen {
		p.cur.Errorf("expected ( ... ) for-loop header")
	}
	var init *ir.Node
	var cond *ir.Expression
	var incr *ir.Node
	localMark := len(p.locals)
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		sub := &parser{cur: *c, cfg: p.cfg, types: p.types, locals: p.locals, globals: p.globals, functions: p.functions, operators: p.operators, scopeDepth: p.scopeDepth + 1, returnType: p.returnType, nextId: p.nextId}
		init = sub.parseVariableDeclStatement()
		cond = sub.parseExpr()
		sub.cur.Require(Token{Kind: TokSemicolon})
		incrExpr := sub.parseExpr()
		incr = &ir.Node{Kind: ir.NodeExpr, Expr: incrExpr}
		p.locals = sub.locals
		*c = sub.cur
	})
	p.loopDepth++
	body := p.parseScope()
	p.loopDepth--
	p.locals = p.locals[:localMark]
	return &ir.Node{Kind: ir.NodeFor, ForInit: init, ForCond: cond, ForIncr: incr, ForBody: body}
}

func (p *parser) parseParenExpr() *ir.Expression {
	block := p.cur.Consume()
	if block.Kind != TokParen {
		p.cur.Errorf("expected ( ... ) condition")
	}
	var e *ir.Expression
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		sub := &parser{cur: *c, cfg: p.cfg, types: p.types, locals: p.locals, globals: p.globals, functions: p.functions, operators: p.operators, nextId: p.nextId}
		e = sub.parseExpr()
		*c = sub.cur
	})
	return e
}
