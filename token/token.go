// Package token defines language keywords and tokens used when scanning
// source code.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Token represents one token scanned from the input source code. Non-error
// tokens reference the span [Start, End) of the shared source buffer rather
// than holding a copy of their text.
type Token struct {
	Type  Type
	Start int
	End   int
	Line  int
	// Message is set on ERROR tokens only and describes the lexical problem.
	Message string

	source string
}

// New returns a token spanning source[start:end].
func New(typ Type, source string, start, end, line int) Token {
	return Token{
		Type:   typ,
		Start:  start,
		End:    end,
		Line:   line,
		source: source,
	}
}

// NewError returns an ERROR token carrying the given message.
func NewError(message string, line int) Token {
	return Token{
		Type:    ERROR,
		Line:    line,
		Message: message,
	}
}

// Lexeme returns the matched source text. For ERROR tokens it returns the
// diagnostic message.
func (t Token) Lexeme() string {
	if t.Type == ERROR {
		return t.Message
	}
	return t.source[t.Start:t.End]
}

// String returns a debug representation such as `NUMBER "1.5" (line 1)`.
func (t Token) String() string {
	return fmt.Sprintf("%s %q (line %d)", t.Type, t.Lexeme(), t.Line)
}

// Token types
const (
	// Single-character tokens
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	COMMA     = ","
	PERIOD    = "."
	MINUS     = "-"
	PLUS      = "+"
	SEMICOLON = ";"
	SLASH     = "/"
	ASTERISK  = "*"

	// One or two character tokens
	BANG      = "!"
	NOT_EQ    = "!="
	ASSIGN    = "="
	EQ        = "=="
	GT        = ">"
	GT_EQUALS = ">="
	LT        = "<"
	LT_EQUALS = "<="

	// Literals
	IDENT  = "IDENT"
	STRING = "STRING"
	NUMBER = "NUMBER"

	// Keywords
	AND    = "AND"
	CLASS  = "CLASS"
	ELSE   = "ELSE"
	FALSE  = "FALSE"
	FOR    = "FOR"
	FUN    = "FUN"
	IF     = "IF"
	NIL    = "NIL"
	OR     = "OR"
	PRINT  = "PRINT"
	RETURN = "RETURN"
	SUPER  = "SUPER"
	THIS   = "THIS"
	TRUE   = "TRUE"
	VAR    = "VAR"
	WHILE  = "WHILE"

	ERROR = "ERROR"
	EOF   = "EOF"
)

// Reserved keywords
var keywords = map[string]Type{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdentifier used to determine whether identifier is keyword or not
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}
