package syntax

import (
	"strconv"
	"strings"

	"lowc/generate"

	"github.com/llir/llvm/ir/types"
)

// expr = cast_expr '=' expr | binop_expr ;
func (p *Parser) parseExpr() generate.Value {
	lhs := p.parseBinOpExpr()

	// assignment is right associative
	if p.got(TOK_ASSIGN) {
		p.next()
		rhs := p.parseExpr()

		result, err := p.gen.Assign(lhs, rhs)
		p.check(err)
		return result
	}

	return lhs
}

// -----------------------------------------------------------------------------

// lor_expr = land_expr {'||' land_expr}
// land_expr = bwor_expr {'&&' bwor_expr}
// bwor_expr = bwxor_expr {'|' bwxor_expr}
// bwxor_expr = bwand_expr {'^' bwand_expr}
// bwand_expr = eq_expr {'&' eq_expr}
// eq_expr = comp_expr {('==' | '!=') comp_expr}
// comp_expr = shift_expr {('<' | '>' | '<=' | '>=') shift_expr}
// shift_expr = arith_expr {('>>' | '<<') arith_expr}
// arith_expr = term {('+' | '-') term}
// term = cast_expr {('*' | '/' | '%') cast_expr}
func (p *Parser) parseBinOpExpr() generate.Value {
	return p.precedenceParse(p.parseCastExpr(), len(precTable))
}

// precTable is the operator precedence table for binary operators. The table is
// ordered highest to lowest precedence.
var precTable = [][]int{
	{TOK_STAR, TOK_DIV, TOK_MOD},
	{TOK_PLUS, TOK_MINUS},
	{TOK_LSHIFT, TOK_RSHIFT},
	{TOK_GT, TOK_LT, TOK_GTEQ, TOK_LTEQ},
	{TOK_EQ, TOK_NEQ},
	{TOK_BWAND},
	{TOK_BWXOR},
	{TOK_BWOR},
	{TOK_LAND},
	{TOK_LOR},
}

// binaryOps maps binary operator tokens to the operators they denote.
var binaryOps = map[int]generate.BinaryOp{
	TOK_STAR:   generate.OpMul,
	TOK_DIV:    generate.OpDiv,
	TOK_MOD:    generate.OpMod,
	TOK_PLUS:   generate.OpAdd,
	TOK_MINUS:  generate.OpSub,
	TOK_LSHIFT: generate.OpShl,
	TOK_RSHIFT: generate.OpShr,
	TOK_GT:     generate.OpGreater,
	TOK_LT:     generate.OpLess,
	TOK_GTEQ:   generate.OpGreaterEq,
	TOK_LTEQ:   generate.OpLessEq,
	TOK_EQ:     generate.OpEq,
	TOK_NEQ:    generate.OpNotEq,
	TOK_BWAND:  generate.OpBitAnd,
	TOK_BWXOR:  generate.OpBitXor,
	TOK_BWOR:   generate.OpBitOr,
	TOK_LAND:   generate.OpBoolAnd,
	TOK_LOR:    generate.OpBoolOr,
}

// precedenceParse performs operator precedence parsing for binary operators:
// it is essentially an augmented implementation of a Pratt parser.  Both
// operands are generated before the operator so neither `&&` nor `||` short
// circuits.
func (p *Parser) precedenceParse(lhs generate.Value, maxPrec int) generate.Value {
	for {
		// check to see if the lookahead matches any of the operators at or
		// above our precedence level.
		var op *Token
		var opPrec int
		for prec, precLevel := range precTable[:maxPrec] {
			if p.gotOneOf(precLevel...) {
				op = p.tok
				opPrec = prec
				break
			}
		}

		// no matching operator
		if op == nil {
			return lhs
		}

		p.next()

		rhs := p.parseCastExpr()

	nextOpLoop:
		for {
			for _, precLevel := range precTable[:opPrec] {
				if p.gotOneOf(precLevel...) {
					rhs = p.precedenceParse(rhs, opPrec)
					continue nextOpLoop
				}
			}

			break nextOpLoop
		}

		result, err := p.gen.Binary(binaryOps[op.Kind], lhs, rhs)
		p.check(err)
		lhs = result
	}
}

// -----------------------------------------------------------------------------

// cast_expr = unary_expr {'as' type} ;
func (p *Parser) parseCastExpr() generate.Value {
	v := p.parseUnaryExpr()

	for p.got(TOK_AS) {
		p.next()

		result, err := p.gen.Cast(v, p.parseType(), true)
		p.check(err)
		v = result
	}

	return v
}

// unaryOps maps the arithmetic and logical unary operator tokens to the
// operators they denote.
var unaryOps = map[int]generate.UnaryOp{
	TOK_MINUS: generate.OpNeg,
	TOK_COMPL: generate.OpBitNot,
	TOK_NOT:   generate.OpBoolNot,
}

// unary_expr = ('-' | '!' | '~' | '&' | '*') unary_expr | postfix_expr ;
func (p *Parser) parseUnaryExpr() generate.Value {
	switch p.tok.Kind {
	case TOK_MINUS:
		// negative literals are folded into the constant
		if kind := p.peek().Kind; kind == TOK_INTLIT || kind == TOK_FLOATLIT {
			p.next()
			return p.parsePostfix(p.parseNumber(true))
		}

		fallthrough
	case TOK_COMPL, TOK_NOT:
		op := unaryOps[p.tok.Kind]
		p.next()

		result, err := p.gen.Unary(op, p.parseUnaryExpr())
		p.check(err)
		return result
	case TOK_BWAND:
		p.next()

		result, err := p.gen.Ref(p.parseUnaryExpr())
		p.check(err)
		return result
	case TOK_STAR:
		p.next()

		result, err := p.gen.Deref(p.parseUnaryExpr())
		p.check(err)
		return result
	default:
		return p.parsePostfix(p.parseAtom())
	}
}

// postfix_expr = atom {'(' [expr {',' expr}] ')' | '[' expr ']' | '.' 'IDENT'} ;
func (p *Parser) parsePostfix(v generate.Value) generate.Value {
	for {
		var err error

		switch p.tok.Kind {
		case TOK_LPAREN:
			p.next()

			var args []generate.Value
			for !p.got(TOK_RPAREN) {
				args = append(args, p.parseExpr())

				if !p.got(TOK_COMMA) {
					break
				}

				p.next()
			}

			p.assertAndNext(TOK_RPAREN)
			v, err = p.gen.Call(v, args)
		case TOK_LBRACKET:
			p.next()
			idx := p.parseExpr()
			p.assertAndNext(TOK_RBRACKET)

			v, err = p.gen.Index(v, idx)
		case TOK_DOT:
			p.next()
			field := p.assertAndNext(TOK_IDENT).Value

			v, err = p.gen.Dot(v, field)
		default:
			return v
		}

		p.check(err)
	}
}

// -----------------------------------------------------------------------------

// atom = 'INTLIT' | 'FLOATLIT' | 'CHARLIT' | 'STRINGLIT' | 'true' | 'false'
//      | 'IDENT' | '(' expr ')' | 'sizeof' '(' type ')' ;
func (p *Parser) parseAtom() generate.Value {
	switch p.tok.Kind {
	case TOK_INTLIT, TOK_FLOATLIT:
		return p.parseNumber(false)
	case TOK_CHARLIT:
		c := []rune(p.tok.Value)[0]
		p.next()

		// characters are always `char` regardless of their value
		result, err := p.gen.Cast(p.gen.IntConst(int64(c)), types.I8, true)
		p.check(err)
		return result
	case TOK_STRINGLIT:
		s := p.tok.Value
		p.next()

		return p.gen.StringConst(s)
	case TOK_TRUE, TOK_FALSE:
		isTrue := p.got(TOK_TRUE)
		p.next()

		if isTrue {
			return p.gen.IntConst(1)
		}

		return p.gen.IntConst(0)
	case TOK_IDENT:
		name := p.tok.Value
		result, err := p.gen.Identifier(name)
		p.check(err)

		p.next()
		return result
	case TOK_LPAREN:
		p.next()
		v := p.parseExpr()
		p.assertAndNext(TOK_RPAREN)

		return v
	case TOK_SIZEOF:
		p.next()
		p.assertAndNext(TOK_LPAREN)
		typ := p.parseType()
		p.assertAndNext(TOK_RPAREN)

		result, err := p.gen.SizeOf(typ)
		p.check(err)
		return result
	default:
		p.reject()
		return generate.Value{}
	}
}

// parseNumber parses an integer or floating point literal, negating it if
// negate is set.
func (p *Parser) parseNumber(negate bool) generate.Value {
	tok := p.tok
	p.next()

	if tok.Kind == TOK_FLOATLIT {
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.rejectWithMsg("invalid floating point literal `%s`", tok.Value)
		}

		if negate {
			f = -f
		}

		return p.gen.FloatConst(f)
	}

	// leading zeros do not make a literal octal
	base := 10
	if len(tok.Value) > 1 && strings.ContainsAny(tok.Value[1:2], "xXoObB") {
		base = 0
	}

	n, err := strconv.ParseUint(tok.Value, base, 64)
	if err != nil {
		p.rejectWithMsg("integer literal `%s` is too large", tok.Value)
	}

	if negate {
		return p.gen.IntConst(-int64(n))
	}

	return p.gen.IntConst(int64(n))
}
