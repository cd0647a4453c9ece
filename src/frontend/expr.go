// expr.go implements expression parsing: prefix forms, identifier dispatch (call, function-pointer
// reference, variable reference), the postfix/rebalance tail, and literal typing. Grounded on
// original_source/src/parser/{expressions,literals}.rs.

package frontend

import (
	"github.com/samber/lo"

	"ltc/src/ir"
	"ltc/src/util"
)

// literalType returns the type a scanned Literal carries, per original_source's Literal::get_type.
func (p *parser) literalType(lit ir.Literal) ir.Type {
	switch lit.Kind {
	case ir.LitInteger:
		return ir.Memory(p.cfg.Sizes.IntLit, ir.Unsigned)
	case ir.LitFloat:
		return ir.Memory(p.cfg.Sizes.FloatLit, ir.Float)
	case ir.LitChar:
		return ir.Memory(p.cfg.Sizes.CharLit, ir.Unsigned)
	case ir.LitString:
		charT := ir.Memory(p.cfg.Sizes.CharLit, ir.Unsigned)
		sizeExpr := &ir.Expression{
			Kind:       ir.ExprLiteral,
			Literal:    ir.Literal{Kind: ir.LitInteger, Int: uint64(len(lit.Str))},
			ReturnType: ir.Memory(p.cfg.Sizes.IntLit, ir.Unsigned),
		}
		// TODO: the original compiler never rewrote this array-of-char typing to a pointer
		// even where a string literal decays in expression position; preserved verbatim.
		return ir.Array(sizeExpr, &charT)
	default:
		p.cur.Errorf("invalid literal kind")
		panic("unreachable")
	}
}

// parseExpr parses one expression: a prefix form followed by zero or more postfix applications.
func (p *parser) parseExpr() *ir.Expression {
	left := p.parsePrefix()
	return p.parsePostfixChain(left)
}

// parsePrefix parses a prefix expression form.
func (p *parser) parsePrefix() *ir.Expression {
	switch {
	case p.cur.TryConsume(Token{Kind: TokSizeOf}):
		return p.parseSizeOf()

	case p.cur.TryConsume(Token{Kind: TokAmpersand}):
		base := p.parsePrefix()
		ret := ir.Pointer(&base.ReturnType)
		return &ir.Expression{Kind: ir.ExprReference, Base: base, ReturnType: ret}

	case p.cur.TryConsume(Token{Kind: TokSymbols, Text: "*"}):
		base := p.parsePrefix()
		root := base.ReturnType.Root()
		if root.Kind != ir.KindPointer {
			p.cur.Errorf("cannot dereference a non-pointer expression")
		}
		return &ir.Expression{Kind: ir.ExprDereference, Base: base, ReturnType: *root.Inner}

	case p.cur.Peek().Kind == TokParen:
		block := p.cur.Consume()
		return p.parseParenSub(block)

	case p.cur.Peek().Kind == TokLiteral:
		tok := p.cur.Consume()
		lit, err := ParseLiteral(tok.Text)
		if err != nil {
			p.cur.Errorf("%s", err)
		}
		return &ir.Expression{Kind: ir.ExprLiteral, Literal: lit, ReturnType: p.literalType(lit)}

	case p.cur.Peek().Kind == TokIdentifier:
		return p.parseIdentifierExpr()

	case p.cur.Peek().Kind == TokSymbols:
		op := p.requireSymbols()
		base := p.parsePrefix()
		return p.resolveUnaryOperator(op, base)

	default:
		p.cur.Errorf("expected an expression")
		panic("unreachable")
	}
}

func (p *parser) parseSizeOf() *ir.Expression {
	sizeT := ir.Memory(p.cfg.Sizes.IntLit, ir.Unsigned)
	if p.isVariableDeclAhead() {
		t := p.parseType()
		return &ir.Expression{Kind: ir.ExprSizeOf, SizeOfType: &t, ReturnType: sizeT}
	}
	base := p.parsePrefix()
	return &ir.Expression{Kind: ir.ExprSizeOf, Base: base, ReturnType: sizeT}
}

// parseParenSub parses the contents of an already-consumed `(...)` block as a single
// parenthesized sub-expression.
func (p *parser) parseParenSub(block Token) *ir.Expression {
	var e *ir.Expression
	p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
		sub := &parser{cur: *c, cfg: p.cfg, types: p.types, locals: p.locals, globals: p.globals, functions: p.functions, operators: p.operators, nextId: p.nextId}
		e = sub.parseExpr()
		*c = sub.cur
	})
	return e
}

// parseIdentifierExpr resolves a bare identifier: a call if followed by `(...)`, a function-
// pointer reference if it names a function without a call, otherwise a variable reference.
func (p *parser) parseIdentifierExpr() *ir.Expression {
	name := p.requireIdentifier()
	qualified := p.qualify(name)

	if p.cur.Peek().Kind == TokParen {
		return p.parseCall(name, qualified)
	}

	if candidates := p.findFunctions(qualified); len(candidates) > 0 {
		return p.resolveFncPtrRef(candidates)
	}

	v := p.lookupVariable(qualified)
	if v == nil {
		v = p.lookupVariable(name)
	}
	if v == nil {
		p.cur.Errorf("undeclared identifier %s", name)
	}
	return &ir.Expression{Kind: ir.ExprVariable, VarId: v.Id, ReturnType: v.Type}
}

// findFunctions returns every overload of name currently visible.
func (p *parser) findFunctions(name string) []*ir.Fnc {
	var out []*ir.Fnc
	for _, f := range p.functions {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

// resolveFncPtrRef disambiguates a bare function name into a function-pointer reference,
// consuming an optional `<arg types...>` and `$<return type>` disambiguator when more than one
// overload shares the name.
func (p *parser) resolveFncPtrRef(candidates []*ir.Fnc) *ir.Expression {
	f := candidates[0]
	if len(candidates) > 1 {
		f = p.disambiguateFncRef(candidates)
	}
	argTypes := make([]ir.Type, len(f.Arguments))
	for i1, a := range f.Arguments {
		argTypes[i1] = a.Type
	}
	ret := f.ReturnType
	return &ir.Expression{Kind: ir.ExprFncPtrRef, VarId: f.Id, ReturnType: ir.FunctionPointer(&ret, argTypes)}
}

func (p *parser) disambiguateFncRef(candidates []*ir.Fnc) *ir.Fnc {
	var argTypes []ir.Type
	if p.cur.Peek().Kind == TokAngle {
		block := p.cur.Consume()
		p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
			for c.HasPeek() {
				if len(argTypes) > 0 {
					c.Require(Token{Kind: TokComma})
				}
				sub := &parser{cur: *c, cfg: p.cfg, types: p.types, nextId: p.nextId}
				argTypes = append(argTypes, sub.parseType())
				*c = sub.cur
			}
		})
	}
	var wantReturn *ir.Type
	if p.cur.TryConsume(Token{Kind: TokDollar}) {
		t := p.parseType()
		wantReturn = &t
	}
	for _, f := range candidates {
		if argTypes != nil {
			if len(argTypes) != len(f.Arguments) {
				continue
			}
			ok := true
			for i1 := range argTypes {
				if !argTypes[i1].CompatibleWith(&f.Arguments[i1].Type) {
					ok = false
				}
			}
			if !ok {
				continue
			}
		}
		if wantReturn != nil && !wantReturn.CompatibleWith(&f.ReturnType) {
			continue
		}
		return f
	}
	p.cur.Errorf("ambiguous function reference could not be disambiguated")
	panic("unreachable")
}

// parseCall parses a `name(args)` call, selecting among overloads of qualified by arity and
// pairwise-compatible argument types; a trailing `$<type>` disambiguates a still-ambiguous call.
func (p *parser) parseCall(name, qualified string) *ir.Expression {
	argBlock := p.cur.Consume()
	var args []*ir.Expression
	p.cur.Switch(argBlock.Block, func(c *util.Cursor[Token]) {
		for c.HasPeek() {
			if len(args) > 0 {
				c.Require(Token{Kind: TokComma})
			}
			sub := &parser{cur: *c, cfg: p.cfg, types: p.types, locals: p.locals, globals: p.globals, functions: p.functions, operators: p.operators, nextId: p.nextId}
			args = append(args, sub.parseExpr())
			*c = sub.cur
		}
	})

	candidates := lo.Filter(p.findFunctions(qualified), func(f *ir.Fnc, _ int) bool {
		if len(args) != len(f.Arguments) && !(f.Variadic && len(args) >= len(f.Arguments)) {
			return false
		}
		for i1, a := range f.Arguments {
			if !args[i1].ReturnType.CompatibleWith(&a.Type) {
				return false
			}
		}
		return true
	})
	if len(candidates) == 0 {
		p.cur.Errorf("no matching overload of %s for the given arguments", name)
	}
	f := candidates[0]
	if len(candidates) > 1 {
		p.cur.Require(Token{Kind: TokDollar})
		want := p.parseType()
		f = nil
		for _, c := range candidates {
			if want.CompatibleWith(&c.ReturnType) {
				f = c
				break
			}
		}
		if f == nil {
			p.cur.Errorf("no overload of %s returns the requested type", name)
		}
	}
	return &ir.Expression{Kind: ir.ExprFncCall, CalleeId: f.Id, Args: args, ReturnType: f.ReturnType}
}

// parsePostfixChain repeatedly applies postfix forms (index, call, field access, cast,
// assignment, binary operator) to left, left-to-right as written, rebalancing a trailing binary
// operator against whatever it reads next.
func (p *parser) parsePostfixChain(left *ir.Expression) *ir.Expression {
	for {
		switch {
		case !p.cur.HasPeek():
			return left

		case p.cur.Peek().Kind == TokSquare:
			block := p.cur.Consume()
			root := left.ReturnType.Root()
			if root.Kind != ir.KindPointer && root.Kind != ir.KindArray {
				p.cur.Errorf("cannot index a non-pointer, non-array expression")
			}
			var index *ir.Expression
			p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
				sub := &parser{cur: *c, cfg: p.cfg, types: p.types, locals: p.locals, globals: p.globals, functions: p.functions, operators: p.operators, nextId: p.nextId}
				index = sub.parseExpr()
				*c = sub.cur
			})
			left = &ir.Expression{Kind: ir.ExprIndex, Base: left, Index: index, ReturnType: *root.Inner}

		case p.cur.Peek().Kind == TokParen && left.ReturnType.Root().Kind == ir.KindFunctionPointer:
			block := p.cur.Consume()
			var args []*ir.Expression
			p.cur.Switch(block.Block, func(c *util.Cursor[Token]) {
				for c.HasPeek() {
					if len(args) > 0 {
						c.Require(Token{Kind: TokComma})
					}
					sub := &parser{cur: *c, cfg: p.cfg, types: p.types, locals: p.locals, globals: p.globals, functions: p.functions, operators: p.operators, nextId: p.nextId}
					args = append(args, sub.parseExpr())
					*c = sub.cur
				}
			})
			fp := left.ReturnType.Root()
			if len(args) != len(fp.Arguments) {
				p.cur.Errorf("function pointer call expects %d arguments, got %d", len(fp.Arguments), len(args))
			}
			for i1 := range fp.Arguments {
				if !args[i1].ReturnType.CompatibleWith(&fp.Arguments[i1]) {
					p.cur.Errorf("argument %d of the function pointer call is not compatible with its parameter type", i1+1)
				}
			}
			ret := *fp.ReturnType
			left = &ir.Expression{Kind: ir.ExprFncPtrCall, Callee: left, Args: args, ReturnType: ret}

		case p.cur.TryConsume(Token{Kind: TokDot}):
			root := left.ReturnType.Root()
			if root.Kind != ir.KindStruct && root.Kind != ir.KindUnion {
				p.cur.Errorf("field access on a non-struct, non-union expression")
			}
			fieldName := p.requireIdentifier()
			var field *ir.Variable
			for i1 := range root.Fields {
				if root.Fields[i1].Name == fieldName {
					field = &root.Fields[i1]
					break
				}
			}
			if field == nil {
				p.cur.Errorf("no field named %s", fieldName)
			}
			left = &ir.Expression{Kind: ir.ExprFieldAccess, Base: left, Field: field, ReturnType: field.Type}

		case p.cur.TryConsume(Token{Kind: TokTo}):
			into := p.parseType()
			if !left.ReturnType.CompatibleWith(&into) && !into.CompatibleWith(&left.ReturnType) {
				p.cur.Errorf("cast is not compatible with source type")
			}
			left = &ir.Expression{Kind: ir.ExprCast, Base: left, Into: &into, ReturnType: into}

		case p.cur.TryConsume(Token{Kind: TokSymbols, Text: "="}):
			if !isAssignablePlace(left) {
				p.cur.Errorf("left-hand side of assignment is not a place")
			}
			right := p.parseExpr()
			if !right.ReturnType.CompatibleWith(&left.ReturnType) {
				p.cur.Errorf("right-hand side of assignment is not compatible with the target type")
			}
			left = p.rebalance(&ir.Expression{Kind: ir.ExprAssignment, Left: left, Right: right, ReturnType: left.ReturnType}, right)

		case p.cur.Peek().Kind == TokSymbols:
			op := p.requireSymbols()
			right := p.parseExpr()
			combined := p.resolveBinaryOperator(op, left, right)
			left = p.rebalance(combined, right)

		default:
			return left
		}
	}
}

// isAssignablePlace reports whether e denotes storage an assignment may target: a variable,
// dereference, index or field access.
func isAssignablePlace(e *ir.Expression) bool {
	switch e.Kind {
	case ir.ExprVariable, ir.ExprDereference, ir.ExprIndex, ir.ExprFieldAccess:
		return true
	default:
		return false
	}
}

// rebalance applies the single local precedence rotation described in the grammar: when combined
// was just built as `left op right` and right is itself a freshly-parsed Binary{left', right',
// op'}, a higher-precedence combined operator re-associates one level down instead of nesting
// outside the whole right-hand subtree.
func (p *parser) rebalance(combined, right *ir.Expression) *ir.Expression {
	if right.Kind != ir.ExprBinary {
		return combined
	}
	var opPrec, subPrec int
	var opSym, subSym string
	switch combined.Kind {
	case ir.ExprBinary:
		opSym = combined.Op
	case ir.ExprAssignment:
		return combined // assignment has no precedence of its own to rebalance against
	default:
		return combined
	}
	subSym = right.Op
	opPrec = p.operatorPrecedence(opSym, combined.Left.ReturnType, right.Left.ReturnType)
	subPrec = p.operatorPrecedence(subSym, right.Left.ReturnType, right.Right.ReturnType)
	if opPrec <= subPrec {
		return combined
	}
	newLeft := p.resolveBinaryOperator(opSym, combined.Left, right.Left)
	return p.resolveBinaryOperator(subSym, newLeft, right.Right)
}

// operatorPrecedence looks an operator's declared precedence up by symbol and operand types.
func (p *parser) operatorPrecedence(symbols string, left, right ir.Type) int {
	for _, op := range p.operators {
		if op.Symbols == symbols && op.Right != nil &&
			op.Left.Root().CompatibleWith(left.Root()) && op.Right.Root().CompatibleWith(right.Root()) {
			return op.Precedence
		}
	}
	return 0
}

// resolveUnaryOperator looks a unary operator overload up by symbol and operand type.
func (p *parser) resolveUnaryOperator(symbols string, base *ir.Expression) *ir.Expression {
	for _, op := range p.operators {
		if op.Symbols == symbols && op.Right == nil && op.Left.Root().CompatibleWith(base.ReturnType.Root()) {
			return &ir.Expression{Kind: ir.ExprUnary, Op: symbols, Base: base, ReturnType: op.ReturnType}
		}
	}
	p.cur.Errorf("no matching unary operator %s for operand type %s", symbols, base.ReturnType.String())
	panic("unreachable")
}

// resolveBinaryOperator looks a binary operator overload up by symbol and both operand types.
func (p *parser) resolveBinaryOperator(symbols string, left, right *ir.Expression) *ir.Expression {
	for _, op := range p.operators {
		if op.Symbols != symbols || op.Right == nil {
			continue
		}
		if op.Left.Root().CompatibleWith(left.ReturnType.Root()) && op.Right.Root().CompatibleWith(right.ReturnType.Root()) {
			return &ir.Expression{Kind: ir.ExprBinary, Op: symbols, Left: left, Right: right, ReturnType: op.ReturnType}
		}
	}
	p.cur.Errorf("no matching binary operator %s for operand types %s, %s", symbols, left.ReturnType.String(), right.ReturnType.String())
	panic("unreachable")
}
