package syntax

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"lowc/report"
)

// Lexer is responsible for tokenizing a source file.
type Lexer struct {
	file    *bufio.Reader
	tokBuff *strings.Builder

	line, startLine int
}

// NewLexer creates a new lexer for the given source file.
func NewLexer(file *bufio.Reader) *Lexer {
	return &Lexer{
		file:    file,
		tokBuff: &strings.Builder{},
		line:    1,
	}
}

// NextToken retrieves the next token from the input file. If the file has
// ended, this will be an EOF token.
func (l *Lexer) NextToken() (*Token, error) {
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		}

		switch c {
		case '\n', '\t', ' ', '\r', '\v', '\f':
			l.skip()
		case '/':
			if tok, err := l.lexCommentOrDiv(); tok != nil || err != nil {
				return tok, err
			}
		case '\'':
			return l.lexCharLit()
		case '"':
			return l.lexStringLit()
		case '.':
			return l.lexDotOrEllipsis()
		default:
			if isDecimalDigit(c) {
				return l.lexNumericLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			} else {
				return l.lexPunctOrOper()
			}
		}
	}

	l.mark()
	return l.makeToken(TOK_EOF), nil
}

// -----------------------------------------------------------------------------

// symbolPatterns maps symbol strings (patterns) to their punctuation/operator
// token kind.
var symbolPatterns = map[string]int{
	"+": TOK_PLUS,
	"-": TOK_MINUS,
	"*": TOK_STAR,
	// Division operator is handled with comment logic.
	"%": TOK_MOD,

	"&":  TOK_BWAND,
	"|":  TOK_BWOR,
	"^":  TOK_BWXOR,
	"~":  TOK_COMPL,
	"<<": TOK_LSHIFT,
	">>": TOK_RSHIFT,

	"==": TOK_EQ,
	"!=": TOK_NEQ,
	"<":  TOK_LT,
	"<=": TOK_LTEQ,
	">":  TOK_GT,
	">=": TOK_GTEQ,

	"&&": TOK_LAND,
	"||": TOK_LOR,
	"!":  TOK_NOT,

	"=":  TOK_ASSIGN,
	"->": TOK_ARROW,

	"(": TOK_LPAREN,
	")": TOK_RPAREN,
	"{": TOK_LBRACE,
	"}": TOK_RBRACE,
	"[": TOK_LBRACKET,
	"]": TOK_RBRACKET,
	",": TOK_COMMA,
	";": TOK_SEMI,
	":": TOK_COLON,
}

// lexPunctOrOper lexes a punctuation or operator symbol.
func (l *Lexer) lexPunctOrOper() (*Token, error) {
	l.mark()
	c, _ := l.eat()

	kind, ok := symbolPatterns[l.tokBuff.String()]
	if !ok {
		return nil, l.errorf("unknown character `%c`", c)
	}

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 {
			break
		}

		if _kind, ok := symbolPatterns[l.tokBuff.String()+string(c)]; ok {
			l.eat()
			kind = _kind
		} else {
			break
		}
	}

	return l.makeToken(kind), nil
}

// lexDotOrEllipsis lexes a `.` or a `...`.
func (l *Lexer) lexDotOrEllipsis() (*Token, error) {
	l.mark()
	l.eat()

	c, err := l.peek()
	if err != nil {
		return nil, err
	} else if c != '.' {
		return l.makeToken(TOK_DOT), nil
	}

	l.eat()
	if c, err = l.eat(); err != nil {
		return nil, err
	} else if c != '.' {
		return nil, l.errorf("unknown symbol `..`")
	}

	return l.makeToken(TOK_ELLIPSIS), nil
}

// -----------------------------------------------------------------------------

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
var keywordPatterns = map[string]int{
	"fn":     TOK_FN,
	"struct": TOK_STRUCT,
	"type":   TOK_TYPE,
	"let":    TOK_LET,

	"if":       TOK_IF,
	"else":     TOK_ELSE,
	"while":    TOK_WHILE,
	"break":    TOK_BREAK,
	"continue": TOK_CONTINUE,
	"return":   TOK_RETURN,

	"as":     TOK_AS,
	"sizeof": TOK_SIZEOF,
	"true":   TOK_TRUE,
	"false":  TOK_FALSE,
}

// lexIdentOrKeyword lexes an identifier or a keyword.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	var kind int
	if _kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		kind = _kind
	} else {
		kind = TOK_IDENT
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// lexNumericLit lexes an integer or floating point literal.  Integers may be
// written in hexadecimal (`0x`), octal (`0o`) or binary (`0b`); floating
// point literals are always decimal.
func (l *Lexer) lexNumericLit() (*Token, error) {
	l.mark()
	c, _ := l.eat()

	// Determine the base of the literal.
	base := 10
	mustHaveDigit := false
	if c == '0' {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}

		if base != 10 {
			l.eat()
			mustHaveDigit = true
		}
	}

	// Floating-point data.
	var isFloat, hasExp, expectSign bool

numLexLoop:
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		} else if c == '_' {
			// Skip all _ that occur in the literal.
			l.skip()
			continue
		}

		switch {
		case base == 10 && c == '.':
			if mustHaveDigit || isFloat {
				break numLexLoop
			}

			l.eat()

			isFloat = true
			mustHaveDigit = true
			continue
		case base == 10 && (c == 'e' || c == 'E'):
			if mustHaveDigit || hasExp {
				break numLexLoop
			}

			l.eat()

			isFloat = true
			hasExp = true
			expectSign = true
			mustHaveDigit = true
			continue
		case base == 10 && (c == '-' || c == '+'):
			if !expectSign {
				break numLexLoop
			}

			l.eat()

			expectSign = false
			continue
		case isDigitOfBase(c, base):
			l.eat()
			expectSign = false
		default:
			break numLexLoop
		}

		// Indicate that a value was received.
		mustHaveDigit = false
	}

	// Ensure that the literal is not malformed.
	if mustHaveDigit {
		return nil, l.errorf("incomplete numeric literal")
	}

	if isFloat {
		return l.makeToken(TOK_FLOATLIT), nil
	}

	return l.makeToken(TOK_INTLIT), nil
}

// -----------------------------------------------------------------------------

// lexStringLit lexes a string literal.
func (l *Lexer) lexStringLit() (*Token, error) {
	l.mark()
	l.skip()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case -1:
			return nil, l.errorf("unclosed string literal")
		case '"':
			l.skip()
			return l.makeToken(TOK_STRINGLIT), nil
		case '\\':
			l.skip()
			if err = l.eatEscapeSequence(); err != nil {
				return nil, err
			}
		case '\n':
			return nil, l.errorf("string literal cannot contain a newline")
		default:
			l.eat()
		}
	}
}

// lexCharLit lexes a character literal.
func (l *Lexer) lexCharLit() (*Token, error) {
	l.mark()
	l.skip()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	switch c {
	case -1:
		return nil, l.errorf("unclosed character literal")
	case '\'':
		return nil, l.errorf("empty character literal")
	case '\n':
		return nil, l.errorf("character literal cannot contain a newline")
	case '\\':
		l.skip()
		if err = l.eatEscapeSequence(); err != nil {
			return nil, err
		}
	default:
		l.eat()
	}

	c, err = l.skip()
	if err != nil {
		return nil, err
	} else if c == -1 {
		return nil, l.errorf("unclosed character literal")
	} else if c != '\'' {
		return nil, l.errorf("character literal cannot contain multiple characters")
	}

	return l.makeToken(TOK_CHARLIT), nil
}

// escapeSequences maps the character following a `\` to the character it
// stands for.
var escapeSequences = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'0':  0,
}

// eatEscapeSequence consumes an escape sequence and writes the character it
// denotes to the token buffer.  This assumes the leading `\` has already been
// skipped.
func (l *Lexer) eatEscapeSequence() error {
	c, err := l.skip()
	if err != nil {
		return err
	} else if c == -1 {
		return l.errorf("expected escape sequence not end of file")
	}

	if esc, ok := escapeSequences[c]; ok {
		l.tokBuff.WriteRune(esc)
		return nil
	}

	return l.errorf("unknown escape sequence: `\\%c`", c)
}

// -----------------------------------------------------------------------------

// lexCommentOrDiv lexes a comment or a division token.
func (l *Lexer) lexCommentOrDiv() (*Token, error) {
	l.mark()
	l.skip()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	switch c {
	case '/':
		for ; err == nil && c != '\n' && c != -1; c, err = l.skip() {
		}
	case '*':
		l.skip()
		for {
			c, err = l.skip()
			if err != nil {
				break
			} else if c == -1 {
				return nil, l.errorf("unclosed block comment")
			}

			if c == '*' {
				if c, err = l.peek(); err == nil && c == '/' {
					l.skip()
					break
				}
			}
		}
	default:
		tok := l.makeToken(TOK_DIV)
		tok.Value = "/"
		return tok, nil
	}

	return nil, err
}

// -----------------------------------------------------------------------------

// mark sets the lexer's stored start line to its current position.
func (l *Lexer) mark() {
	l.startLine = l.line
}

// makeToken produces a new token of the given kind from the lexer's state and
// resets the lexer to begin building the next token.
func (l *Lexer) makeToken(kind int) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()

	return &Token{
		Kind:  kind,
		Value: value,
		Line:  l.startLine,
	}
}

// errorf creates a syntax error at the start of the current token.
func (l *Lexer) errorf(msg string, args ...interface{}) error {
	l.tokBuff.Reset()
	return report.Raise(report.SyntaxError, "line %d: "+msg, append([]interface{}{l.startLine}, args...)...)
}

// -----------------------------------------------------------------------------

// eat moves the lexer forward one rune and writes the rune to the token buffer.
// If the lexer encounters an EOF, -1 is returned as the rune value.
func (l *Lexer) eat() (rune, error) {
	c, err := l.skip()
	if err == nil && c != -1 {
		l.tokBuff.WriteRune(c)
	}

	return c, err
}

// skip moves the lexer forward one rune but does not write the rune to the
// token buffer.  If the lexer encounters an EOF, -1 is returned as the rune
// value.
func (l *Lexer) skip() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	if c == '\n' {
		l.line++
	}

	return c, nil
}

// peek returns the next rune in the file without moving the lexer forward or
// writing the rune to the token buffer.  If the lexer encounters an EOF, -1 is
// returned as rune value.
func (l *Lexer) peek() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	if err = l.file.UnreadRune(); err != nil {
		return 0, err
	}

	return c, nil
}

// -----------------------------------------------------------------------------

// isDecimalDigit returns whether c is a decimal digit.
func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// isDigitOfBase returns whether c is a digit in the given base.
func isDigitOfBase(c rune, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 8:
		return '0' <= c && c <= '7'
	case 16:
		return isDecimalDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
	default:
		return isDecimalDigit(c)
	}
}

// isFirstIdentChar returns whether c could be the first rune of an identifier.
func isFirstIdentChar(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}
