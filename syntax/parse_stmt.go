package syntax

import "lowc/report"

// stmt = block | if_stmt | while_stmt | var_decl | break_stmt | continue_stmt
//      | return_stmt | expr ';' | ';' ;
func (p *Parser) parseStmt() {
	switch p.tok.Kind {
	case TOK_LBRACE:
		p.parseBlock()
	case TOK_IF:
		p.parseIfStmt()
	case TOK_WHILE:
		p.parseWhileStmt("")
	case TOK_LET:
		p.parseVarDecl()
	case TOK_BREAK, TOK_CONTINUE:
		p.parseBreakContinue()
	case TOK_RETURN:
		p.parseReturnStmt()
	case TOK_SEMI:
		p.next()
	case TOK_IDENT:
		// labeled loop
		if p.peek().Kind == TOK_COLON {
			label := p.tok.Value
			p.next()
			p.next()

			p.assert(TOK_WHILE)
			p.parseWhileStmt(label)
			return
		}

		fallthrough
	default:
		p.parseExpr()
		p.assertAndNext(TOK_SEMI)
	}
}

// block = '{' {stmt} '}' ;
func (p *Parser) parseBlock() {
	p.assertAndNext(TOK_LBRACE)

	p.gen.PushScope()
	p.parseStmts()
	p.gen.PopScope()

	p.next()
}

// if_stmt = 'if' expr block ['else' (if_stmt | block)] ;
func (p *Parser) parseIfStmt() {
	p.next()

	p.check(p.gen.BeginIf(p.parseExpr()))
	p.parseBlock()

	if p.got(TOK_ELSE) {
		p.next()
		p.gen.BeginElse()

		if p.got(TOK_IF) {
			p.parseIfStmt()
		} else {
			p.parseBlock()
		}
	}

	p.gen.EndIf()
}

// while_stmt = ['IDENT' ':'] 'while' expr block ;
func (p *Parser) parseWhileStmt(label string) {
	p.next()

	p.gen.BeginLoop(label)
	p.check(p.gen.LoopCondition(p.parseExpr()))
	p.parseBlock()
	p.gen.EndLoop()
}

// break_stmt = 'break' ['IDENT'] ';' ;
// continue_stmt = 'continue' ['IDENT'] ';' ;
func (p *Parser) parseBreakContinue() {
	isBreak := p.got(TOK_BREAK)
	p.next()

	label := ""
	if p.got(TOK_IDENT) {
		label = p.tok.Value
		p.next()
	}

	p.check(p.gen.BreakContinue(label, isBreak))
	p.assertAndNext(TOK_SEMI)
}

// return_stmt = 'return' [expr] ';' ;
func (p *Parser) parseReturnStmt() {
	p.next()

	if p.got(TOK_SEMI) {
		p.next()
		p.check(p.gen.ReturnVoid())
		return
	}

	v := p.parseExpr()
	p.assertAndNext(TOK_SEMI)
	p.check(p.gen.Return(v))
}

// parseStmts parses statements up to the closing brace of a block.  The first
// statement of a run of unreachable statements is warned about.
func (p *Parser) parseStmts() {
	for !p.got(TOK_RBRACE) {
		if !p.gen.Unreachable() {
			p.deadWarned = false
		} else if !p.deadWarned {
			report.ReportWarning("line %d: unreachable code", p.tok.Line)
			p.deadWarned = true
		}

		p.parseStmt()
	}
}
