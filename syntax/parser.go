package syntax

import (
	"bufio"
	"fmt"

	"lowc/generate"
	"lowc/report"
)

// NOTE: All parsing functions (that are not utility/API functions) are
// commented with the EBNF notation of the grammar they parse.

// Parser is the parser for a source file.  It does not build a tree: as each
// construct is recognized, the parser notifies the generator which lowers it
// immediately.  The parser itself acts as a state machine that moves over the
// file token by token and decides what to parse based on the token it is
// currently positioned over and its context (implicit from the callstack of
// parsing functions): it is a recursive descent parser.  All parsing functions
// assume that they begin with the parser centered on the first token of their
// production and must consume all tokens (including the last) of their
// production, leaving the parser on the next token.
type Parser struct {
	// lexer is the Lexer this parser is using to lex the source file.
	lexer *Lexer

	// gen is the generator notified of each parsed construct.
	gen *generate.Generator

	// tok is the current token the parser is positioned on.
	tok *Token

	// ahead is the token after tok if it has already been lexed.
	ahead *Token

	// inFunc indicates whether the parser is inside a function body.
	inFunc bool

	// deadWarned is set once the current run of unreachable statements has
	// been warned about.
	deadWarned bool
}

// NewParser creates a new parser reading from r which drives gen.
func NewParser(r *bufio.Reader, gen *generate.Generator) *Parser {
	return &Parser{
		lexer: NewLexer(r),
		gen:   gen,
	}
}

// Parse parses the whole file.  The first syntax or generation error stops
// parsing and is returned.
func (p *Parser) Parse() (err error) {
	defer report.Catch(&err)

	// move the parser onto the first token
	p.next()

	p.parseFile()
	return nil
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() {
	if p.ahead != nil {
		p.tok = p.ahead
		p.ahead = nil
		return
	}

	p.tok = p.lex()
}

// peek returns the token after the current token without moving the parser.
func (p *Parser) peek() *Token {
	if p.ahead == nil {
		p.ahead = p.lex()
	}

	return p.ahead
}

// lex reads the next token from the lexer.
func (p *Parser) lex() *Token {
	tok, err := p.lexer.NextToken()
	if err != nil {
		if _, ok := report.KindOf(err); ok {
			panic(err)
		}

		panic(report.Raise(report.SourceUnreadable, "failed to read source: %s", err))
	}

	return tok
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotOneOf returns if the parser's current token kind is one of given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.tok.Kind == kind {
			return true
		}
	}

	return false
}

// assert checks if the parser is on a token of a given kind and rejects the
// token if not.
func (p *Parser) assert(kind int) {
	if !p.got(kind) {
		p.reject()
	}
}

// assertAndNext performs an assert operation and moves the parser forward.
// It returns the asserted token.
func (p *Parser) assertAndNext(kind int) *Token {
	p.assert(kind)

	tok := p.tok
	p.next()
	return tok
}

// -----------------------------------------------------------------------------

// reject raises an unexpected token error on the current token.
func (p *Parser) reject() {
	var msg string
	switch p.tok.Kind {
	case TOK_EOF:
		msg = "unexpected end of file"
	case TOK_STRINGLIT:
		msg = fmt.Sprintf("unexpected string literal: %q", p.tok.Value)
	default:
		msg = fmt.Sprintf("unexpected token: `%s`", p.tok.Value)
	}

	p.rejectWithMsg(msg)
}

// rejectWithMsg raises a syntax error on the current token.
func (p *Parser) rejectWithMsg(msg string, a ...interface{}) {
	panic(report.Raise(report.SyntaxError, "line %d: %s", p.tok.Line, fmt.Sprintf(msg, a...)))
}

// check propagates a generator error.  Generator errors carry no position so
// the line of the current token is prepended.
func (p *Parser) check(err error) {
	if err == nil {
		return
	}

	if kind, ok := report.KindOf(err); ok {
		panic(report.Raise(kind, "line %d: %s", p.tok.Line, err.Error()))
	}

	panic(err)
}
