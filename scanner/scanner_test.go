package scanner

import (
	"strings"
	"testing"

	"github.com/deepnoodle-ai/bytelox/token"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	typ     token.Type
	literal string
	line    int
}

func requireTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	s := New(input)
	for i, tt := range tests {
		tok := s.ScanToken()
		if tok.Type != tt.typ {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.typ, tok.Type)
		}
		if tok.Lexeme() != tt.literal {
			t.Fatalf("tests[%d] - literal wrong, expected=%q, got=%q", i, tt.literal, tok.Lexeme())
		}
		if tt.line != 0 && tok.Line != tt.line {
			t.Fatalf("tests[%d] - line wrong, expected=%d, got=%d", i, tt.line, tok.Line)
		}
	}
}

func TestPunctuation(t *testing.T) {
	requireTokens(t, "(){},.-+;/*", []expectedToken{
		{token.LPAREN, "(", 1},
		{token.RPAREN, ")", 1},
		{token.LBRACE, "{", 1},
		{token.RBRACE, "}", 1},
		{token.COMMA, ",", 1},
		{token.PERIOD, ".", 1},
		{token.MINUS, "-", 1},
		{token.PLUS, "+", 1},
		{token.SEMICOLON, ";", 1},
		{token.SLASH, "/", 1},
		{token.ASTERISK, "*", 1},
		{token.EOF, "", 1},
	})
}

func TestOneOrTwoCharOperators(t *testing.T) {
	requireTokens(t, "! != = == < <= > >= !!=", []expectedToken{
		{token.BANG, "!", 1},
		{token.NOT_EQ, "!=", 1},
		{token.ASSIGN, "=", 1},
		{token.EQ, "==", 1},
		{token.LT, "<", 1},
		{token.LT_EQUALS, "<=", 1},
		{token.GT, ">", 1},
		{token.GT_EQUALS, ">=", 1},
		{token.BANG, "!", 1},
		{token.NOT_EQ, "!=", 1},
		{token.EOF, "", 1},
	})
}

func TestCommentThenToken(t *testing.T) {
	s := New("// a comment\n+")
	tok := s.ScanToken()
	require.Equal(t, token.Type(token.PLUS), tok.Type)
	require.Equal(t, "+", tok.Lexeme())
	require.Equal(t, 2, tok.Line)
	require.Equal(t, token.Type(token.EOF), s.ScanToken().Type)
}

func TestCommentOnly(t *testing.T) {
	tokens := New("// nothing here").ScanAll()
	require.Len(t, tokens, 1)
	require.Equal(t, token.Type(token.EOF), tokens[0].Type)
}

func TestUnterminatedString(t *testing.T) {
	s := New(`"abc`)
	tok := s.ScanToken()
	require.Equal(t, token.Type(token.ERROR), tok.Type)
	require.Contains(t, tok.Message, "unterminated")
	require.Equal(t, token.Type(token.EOF), s.ScanToken().Type)
	require.Equal(t, token.Type(token.EOF), s.ScanToken().Type)
}

func TestStringSpansLines(t *testing.T) {
	s := New("\"one\ntwo\" +")
	str := s.ScanToken()
	require.Equal(t, token.Type(token.STRING), str.Type)
	require.Equal(t, "\"one\ntwo\"", str.Lexeme())
	require.Equal(t, 2, str.Line)
	plus := s.ScanToken()
	require.Equal(t, 2, plus.Line)
}

func TestNumbersAndIdentifiers(t *testing.T) {
	requireTokens(t, "var x_1 = 12.5 + 3.;\nprint classy", []expectedToken{
		{token.VAR, "var", 1},
		{token.IDENT, "x_1", 1},
		{token.ASSIGN, "=", 1},
		{token.NUMBER, "12.5", 1},
		{token.PLUS, "+", 1},
		{token.NUMBER, "3", 1},
		{token.PERIOD, ".", 1},
		{token.SEMICOLON, ";", 1},
		{token.PRINT, "print", 2},
		{token.IDENT, "classy", 2},
		{token.EOF, "", 2},
	})
}

func TestKeywords(t *testing.T) {
	input := "and class else false for fun if nil or print return super this true var while"
	want := []token.Type{
		token.AND, token.CLASS, token.ELSE, token.FALSE, token.FOR, token.FUN,
		token.IF, token.NIL, token.OR, token.PRINT, token.RETURN, token.SUPER,
		token.THIS, token.TRUE, token.VAR, token.WHILE, token.EOF,
	}
	tokens := New(input).ScanAll()
	require.Len(t, tokens, len(want))
	for i, tok := range tokens {
		require.Equal(t, want[i], tok.Type)
	}
}

func TestUnexpectedCharacterRecovers(t *testing.T) {
	s := New("1 @ 2 世")
	require.Equal(t, token.Type(token.NUMBER), s.ScanToken().Type)

	bad := s.ScanToken()
	require.Equal(t, token.Type(token.ERROR), bad.Type)
	require.Equal(t, `unexpected character '@'`, bad.Message)

	two := s.ScanToken()
	require.Equal(t, token.Type(token.NUMBER), two.Type)
	require.Equal(t, "2", two.Lexeme())

	wide := s.ScanToken()
	require.Equal(t, token.Type(token.ERROR), wide.Type)
	require.Equal(t, `unexpected character '世'`, wide.Message)
	require.Equal(t, token.Type(token.EOF), s.ScanToken().Type)
}

func TestEOFIsIdempotent(t *testing.T) {
	s := New("  \t\r")
	for i := 0; i < 5; i++ {
		tok := s.ScanToken()
		require.Equal(t, token.Type(token.EOF), tok.Type)
		require.Equal(t, 1, tok.Line)
	}
}

func TestLineCounting(t *testing.T) {
	s := New("1\n\n2\r\n3")
	require.Equal(t, 1, s.ScanToken().Line)
	require.Equal(t, 3, s.ScanToken().Line)
	require.Equal(t, 4, s.ScanToken().Line)
	require.Equal(t, 4, s.Line())
}

func TestScanAllTerminatesOnArbitraryInput(t *testing.T) {
	inputs := []string{
		"",
		"\"",
		"/",
		"//",
		strings.Repeat("#", 100),
		"\x00\xff\xfe",
		"1.2.3..4",
	}
	for _, input := range inputs {
		tokens := New(input).ScanAll()
		require.NotEmpty(t, tokens)
		require.Equal(t, token.Type(token.EOF), tokens[len(tokens)-1].Type)
	}
}

func TestDump(t *testing.T) {
	var sb strings.Builder
	require.Nil(t, Dump(&sb, "1 +\n2"))
	expected := strings.Join([]string{
		"   1 NUMBER       '1'",
		"   | +            '+'",
		"   2 NUMBER       '2'",
		"   | EOF          ''",
		"",
	}, "\n")
	require.Equal(t, expected, sb.String())
}

func TestDumpShowsErrors(t *testing.T) {
	var sb strings.Builder
	require.Nil(t, Dump(&sb, "@"))
	require.Equal(t, "   1 ERROR        'unexpected character '@''\n   | EOF          ''\n", sb.String())
}
