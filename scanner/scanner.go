// Package scanner converts source text into a lazy stream of tokens.
package scanner

import (
	"fmt"
	"unicode/utf8"

	"github.com/deepnoodle-ai/bytelox/token"
)

// Scanner produces tokens one at a time from an immutable source buffer.
// Lexical errors do not stop the scan: they are returned as ERROR tokens and
// scanning resumes after the offending input.
type Scanner struct {
	source  string
	start   int // start of the token being built
	current int // lookahead cursor
	line    int
}

// New returns a Scanner positioned at the beginning of source.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Line returns the line the scanner is currently on.
func (s *Scanner) Line() int {
	return s.line
}

// ScanToken returns the next token. Once the end of input is reached, every
// call returns an EOF token.
func (s *Scanner) ScanToken() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.isAtEnd() {
		return s.makeToken(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.makeToken(token.LPAREN)
	case ')':
		return s.makeToken(token.RPAREN)
	case '{':
		return s.makeToken(token.LBRACE)
	case '}':
		return s.makeToken(token.RBRACE)
	case ',':
		return s.makeToken(token.COMMA)
	case '.':
		return s.makeToken(token.PERIOD)
	case '-':
		return s.makeToken(token.MINUS)
	case '+':
		return s.makeToken(token.PLUS)
	case ';':
		return s.makeToken(token.SEMICOLON)
	case '/':
		return s.makeToken(token.SLASH)
	case '*':
		return s.makeToken(token.ASTERISK)
	case '!':
		return s.twoCharToken('=', token.NOT_EQ, token.BANG)
	case '=':
		return s.twoCharToken('=', token.EQ, token.ASSIGN)
	case '<':
		return s.twoCharToken('=', token.LT_EQUALS, token.LT)
	case '>':
		return s.twoCharToken('=', token.GT_EQUALS, token.GT)
	case '"':
		return s.string()
	}

	// Report the whole rune rather than a single byte of it.
	s.current = s.start
	r, size := utf8.DecodeRuneInString(s.source[s.current:])
	s.current += size
	return s.errorToken(fmt.Sprintf("unexpected character %q", r))
}

// ScanAll returns every token up to and including the first EOF.
func (s *Scanner) ScanAll() []token.Token {
	var tokens []token.Token
	for {
		tok := s.ScanToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) twoCharToken(second byte, matched, single token.Type) token.Token {
	if s.match(second) {
		return s.makeToken(matched)
	}
	return s.makeToken(single)
}

// skipWhitespace consumes whitespace, newlines and line comments.
func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) makeToken(typ token.Type) token.Token {
	return token.New(typ, s.source, s.start, s.current, s.line)
}

func (s *Scanner) errorToken(message string) token.Token {
	return token.NewError(message, s.line)
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return s.errorToken("unterminated string")
	}
	// The closing quote
	s.advance()
	return s.makeToken(token.STRING)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	// A fractional part needs at least one digit after the dot
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(token.NUMBER)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.makeToken(token.LookupIdentifier(s.source[s.start:s.current]))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
