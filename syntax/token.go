package syntax

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.  The value of a string or character
	// literal has its quotes removed and its escape sequences translated.
	Value string

	// The line the token begins on, starting from 1.
	Line int
}

// Enumeration of token kinds.
const (
	TOK_FN = iota
	TOK_STRUCT
	TOK_TYPE
	TOK_LET

	TOK_IF
	TOK_ELSE
	TOK_WHILE
	TOK_BREAK
	TOK_CONTINUE
	TOK_RETURN

	TOK_AS
	TOK_SIZEOF
	TOK_TRUE
	TOK_FALSE

	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_DIV
	TOK_MOD

	TOK_EQ
	TOK_NEQ
	TOK_LT
	TOK_GT
	TOK_LTEQ
	TOK_GTEQ

	TOK_BWAND
	TOK_BWOR
	TOK_BWXOR
	TOK_LSHIFT
	TOK_RSHIFT
	TOK_COMPL

	TOK_NOT
	TOK_LAND
	TOK_LOR

	TOK_ASSIGN
	TOK_ARROW

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_LBRACKET
	TOK_RBRACKET
	TOK_COMMA
	TOK_DOT
	TOK_ELLIPSIS
	TOK_SEMI
	TOK_COLON

	TOK_IDENT
	TOK_INTLIT
	TOK_FLOATLIT
	TOK_CHARLIT
	TOK_STRINGLIT

	TOK_EOF
)
