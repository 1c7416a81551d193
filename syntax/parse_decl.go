package syntax

import (
	"strconv"

	"lowc/generate"
	"lowc/typing"

	"github.com/llir/llvm/ir/types"
)

// file = {definition} ;
func (p *Parser) parseFile() {
	for !p.got(TOK_EOF) {
		p.parseDefinition()
	}
}

// definition = func_def | struct_def | type_def | var_decl ;
func (p *Parser) parseDefinition() {
	switch p.tok.Kind {
	case TOK_FN:
		p.parseFuncDef()
	case TOK_STRUCT:
		p.parseStructDef()
	case TOK_TYPE:
		p.parseTypeDef()
	case TOK_LET:
		p.parseVarDecl()
	default:
		p.reject()
	}
}

// -----------------------------------------------------------------------------

// func_def = 'fn' 'IDENT' '(' [params] ')' ['->' type] (';' | func_body) ;
// params = param {',' param} [',' '...'] | '...' ;
// param = 'IDENT' ':' type ;
func (p *Parser) parseFuncDef() {
	p.next()
	name := p.assertAndNext(TOK_IDENT).Value

	p.assertAndNext(TOK_LPAREN)

	var params []generate.Param
	variadic := false
	for !p.got(TOK_RPAREN) {
		if p.got(TOK_ELLIPSIS) {
			p.next()
			variadic = true
			break
		}

		pname := p.assertAndNext(TOK_IDENT).Value
		p.assertAndNext(TOK_COLON)
		params = append(params, generate.Param{Name: pname, Type: p.parseType()})

		if !p.got(TOK_COMMA) {
			break
		}

		p.next()
	}

	p.assertAndNext(TOK_RPAREN)

	var ret types.Type = types.Void
	if p.got(TOK_ARROW) {
		p.next()
		ret = p.parseType()
	}

	if p.got(TOK_SEMI) {
		p.next()
		p.check(p.gen.DeclareFunc(name, ret, params, variadic, false))
		return
	}

	p.assert(TOK_LBRACE)
	p.check(p.gen.DeclareFunc(name, ret, params, variadic, true))
	p.parseFuncBody()
}

// func_body = '{' {stmt} '}' ;
func (p *Parser) parseFuncBody() {
	p.inFunc = true
	p.deadWarned = false
	defer func() { p.inFunc = false }()

	// the parameter scope is also the scope of the body
	p.next()
	p.parseStmts()

	p.next()
	p.gen.FinishFunc()
}

// -----------------------------------------------------------------------------

// struct_def = 'struct' 'IDENT' (';' | '{' {field} '}') ;
// field = 'IDENT' ':' type ';' ;
func (p *Parser) parseStructDef() {
	p.next()
	name := p.assertAndNext(TOK_IDENT).Value

	// declare the struct first so its fields can point to it
	_, err := p.gen.DeclareStruct(name, nil)
	p.check(err)

	if p.got(TOK_SEMI) {
		p.next()
		return
	}

	p.assertAndNext(TOK_LBRACE)

	fields := []typing.Field{}
	for !p.got(TOK_RBRACE) {
		fname := p.assertAndNext(TOK_IDENT).Value
		p.assertAndNext(TOK_COLON)
		fields = append(fields, typing.Field{Name: fname, Type: p.parseType()})
		p.assertAndNext(TOK_SEMI)
	}

	p.next()

	_, err = p.gen.DeclareStruct(name, fields)
	p.check(err)
}

// type_def = 'type' 'IDENT' '=' type ';' ;
func (p *Parser) parseTypeDef() {
	p.next()
	name := p.assertAndNext(TOK_IDENT).Value
	p.assertAndNext(TOK_ASSIGN)

	typ := p.parseType()
	p.assertAndNext(TOK_SEMI)

	p.check(p.gen.DefineType(name, typ))
}

// var_decl = 'let' var_init ':' type ['=' expr] {',' var_init} ';' ;
// var_init = 'IDENT' ['=' expr] ;
func (p *Parser) parseVarDecl() {
	p.next()

	first := p.assertAndNext(TOK_IDENT).Value
	p.assertAndNext(TOK_COLON)
	typ := p.parseType()

	vars := []generate.VarInit{p.parseVarInit(first)}
	for p.got(TOK_COMMA) {
		p.next()
		vars = append(vars, p.parseVarInit(p.assertAndNext(TOK_IDENT).Value))
	}

	p.assertAndNext(TOK_SEMI)

	p.check(p.gen.DeclareVars(typ, vars, p.inFunc))
}

// parseVarInit parses the optional initializer of the variable name.
func (p *Parser) parseVarInit(name string) generate.VarInit {
	vi := generate.VarInit{Name: name}
	if p.got(TOK_ASSIGN) {
		p.next()
		vi.Init = p.parseExpr()
	}

	return vi
}

// -----------------------------------------------------------------------------

// type = '*' type | '[' 'INTLIT' ']' type | 'IDENT' ;
func (p *Parser) parseType() types.Type {
	switch p.tok.Kind {
	case TOK_STAR:
		p.next()

		elem := p.parseType()

		// `*void` is a byte pointer
		if elem.Equal(types.Void) {
			elem = types.I8
		}

		return types.NewPointer(elem)
	case TOK_LBRACKET:
		p.next()

		lenTok := p.tok
		p.assertAndNext(TOK_INTLIT)
		n, err := strconv.ParseUint(lenTok.Value, 0, 64)
		if err != nil {
			p.rejectWithMsg("invalid array length `%s`", lenTok.Value)
		}

		p.assertAndNext(TOK_RBRACKET)
		return types.NewArray(n, p.parseType())
	case TOK_IDENT:
		typ, err := p.gen.ResolveType(p.tok.Value)
		p.check(err)

		p.next()
		return typ
	default:
		p.reject()
		return nil
	}
}
