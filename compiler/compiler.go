// Package compiler translates source text directly into a bytecode chunk.
//
// The compiler is a single-pass Pratt parser: it pulls tokens from the
// scanner on demand and emits instructions as each expression is recognized,
// without building a syntax tree.
//
// # Grammar
//
//	program    := statement (';' statement)* ';'? EOF
//	statement  := expression
//	expression := term
//	term       := factor (('+' | '-') factor)*
//	factor     := unary (('*' | '/') unary)*
//	unary      := '-' unary | primary
//	primary    := NUMBER | '(' expression ')'
//
// The value of every statement but the last is discarded with Pop. The last
// value is returned with Return.
//
// # Error Recovery
//
// After the first error in a statement the compiler enters panic mode and
// suppresses further diagnostics until it reaches a ';', then resumes with
// the next statement. All diagnostics of one compilation are returned
// together as a *multierror.Error and no chunk is produced.
package compiler

import (
	"strconv"

	"github.com/deepnoodle-ai/bytelox/bytecode"
	"github.com/deepnoodle-ai/bytelox/errz"
	"github.com/deepnoodle-ai/bytelox/op"
	"github.com/deepnoodle-ai/bytelox/scanner"
	"github.com/deepnoodle-ai/bytelox/token"
	"github.com/deepnoodle-ai/bytelox/value"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

type parseFn func()

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	SUM     // + or -
	PRODUCT // * or /
	PREFIX  // -X
)

// Precedences for each infix token type
var precedences = map[token.Type]int{
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
}

const (
	// DefaultMaxErrors is the number of diagnostics collected before the
	// compiler gives up.
	DefaultMaxErrors = 10

	// DefaultMaxDepth is the deepest expression nesting accepted.
	DefaultMaxDepth = 500
)

// Compiler turns one source string into one chunk. A Compiler is used once.
type Compiler struct {
	scanner *scanner.Scanner

	// prevToken is the token most recently consumed.
	prevToken token.Token

	// curToken is the lookahead token.
	curToken token.Token

	chunk *bytecode.Chunk

	// diagnostics collected so far
	errors *multierror.Error

	// panicMode is set after an error and cleared at the next statement
	// boundary. Errors reported in panic mode are dropped.
	panicMode bool

	prefixParseFns map[token.Type]parseFn
	infixParseFns  map[token.Type]parseFn

	logger    zerolog.Logger
	maxErrors int
	depth     int
	maxDepth  int
}

// Compile compiles source into a chunk ready to run. If any diagnostic was
// reported the chunk is nil and the error is a *multierror.Error holding
// *errz.LexError and *errz.CompileError values in source order.
func Compile(source string, options ...Option) (*bytecode.Chunk, error) {
	return New(source, options...).Compile()
}

// New returns a Compiler for the given source.
func New(source string, options ...Option) *Compiler {
	c := &Compiler{
		scanner:        scanner.New(source),
		chunk:          bytecode.New(),
		prefixParseFns: map[token.Type]parseFn{},
		infixParseFns:  map[token.Type]parseFn{},
		logger:         zerolog.Nop(),
		maxErrors:      DefaultMaxErrors,
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(c)
	}

	c.registerPrefix(token.NUMBER, c.parseNumber)
	c.registerPrefix(token.LPAREN, c.parseGrouping)
	c.registerPrefix(token.MINUS, c.parseUnary)

	c.registerInfix(token.PLUS, c.parseBinary)
	c.registerInfix(token.MINUS, c.parseBinary)
	c.registerInfix(token.ASTERISK, c.parseBinary)
	c.registerInfix(token.SLASH, c.parseBinary)
	return c
}

// Compile runs the compilation. It must be called at most once.
func (c *Compiler) Compile() (*bytecode.Chunk, error) {
	c.advance()
	for {
		c.parseStatement()
		if c.panicMode {
			c.synchronize()
		}
		if c.curTokenIs(token.EOF) || c.tooManyErrors() {
			c.emitOp(op.Return)
			break
		}
		c.emitOp(op.Pop)
	}

	if err := c.errors.ErrorOrNil(); err != nil {
		c.logger.Debug().
			Str("chunk", c.chunk.ID()).
			Int("errors", len(c.errors.Errors)).
			Msg("compile failed")
		return nil, err
	}
	stats := c.chunk.Stats()
	c.logger.Debug().
		Str("chunk", c.chunk.ID()).
		Int("bytes", stats.CodeBytes).
		Int("instructions", stats.InstructionCount).
		Int("constants", stats.ConstantCount).
		Msg("compiled chunk")
	return c.chunk, nil
}

func (c *Compiler) registerPrefix(tokenType token.Type, fn parseFn) {
	c.prefixParseFns[tokenType] = fn
}

func (c *Compiler) registerInfix(tokenType token.Type, fn parseFn) {
	c.infixParseFns[tokenType] = fn
}

// advance consumes the lookahead token. Error tokens from the scanner are
// reported and skipped so the parser only ever sees valid tokens.
func (c *Compiler) advance() {
	c.prevToken = c.curToken
	for {
		c.curToken = c.scanner.ScanToken()
		if c.curToken.Type != token.ERROR {
			return
		}
		c.errorAt(c.curToken, c.curToken.Message, nil)
	}
}

func (c *Compiler) curTokenIs(t token.Type) bool {
	return c.curToken.Type == t
}

// match consumes the lookahead token if it has the given type.
func (c *Compiler) match(t token.Type) bool {
	if !c.curTokenIs(t) {
		return false
	}
	c.advance()
	return true
}

// consume requires the lookahead token to have the given type.
func (c *Compiler) consume(t token.Type, msg string) {
	if c.curTokenIs(t) {
		c.advance()
		return
	}
	c.errorAt(c.curToken, msg, nil)
}

func (c *Compiler) currentPrecedence() int {
	if p, ok := precedences[c.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// synchronize skips tokens until just past a ';' or to the end of input.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for !c.curTokenIs(token.EOF) {
		if c.prevToken.Type == token.SEMICOLON {
			return
		}
		c.advance()
	}
}

func (c *Compiler) parseStatement() {
	c.parseExpression(LOWEST)
	if c.panicMode {
		return
	}
	if !c.match(token.SEMICOLON) && !c.curTokenIs(token.EOF) {
		c.errorAt(c.curToken, "expect ';' after expression", nil)
	}
}

func (c *Compiler) parseExpression(precedence int) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.maxDepth {
		c.errorAt(c.curToken, "maximum nesting depth exceeded", nil)
		return
	}

	c.advance()
	prefix := c.prefixParseFns[c.prevToken.Type]
	if prefix == nil {
		c.errorAt(c.prevToken, "expect expression", nil)
		return
	}
	prefix()
	for precedence < c.currentPrecedence() {
		c.advance()
		c.infixParseFns[c.prevToken.Type]()
	}
}

func (c *Compiler) parseNumber() {
	f, err := strconv.ParseFloat(c.prevToken.Lexeme(), 64)
	if err != nil {
		c.errorAt(c.prevToken, "invalid number literal", err)
		return
	}
	c.emitConstant(value.Number(f))
}

func (c *Compiler) parseGrouping() {
	c.parseExpression(LOWEST)
	c.consume(token.RPAREN, "expect ')' after expression")
}

func (c *Compiler) parseUnary() {
	// Remember the operator's line; the operand may span several lines
	line := c.prevToken.Line
	c.parseExpression(PREFIX)
	c.chunk.WriteOpcode(op.Negate, line)
}

func (c *Compiler) parseBinary() {
	operator := c.prevToken
	// Operands of equal precedence bind to the left
	c.parseExpression(precedences[operator.Type])
	var code op.Code
	switch operator.Type {
	case token.PLUS:
		code = op.Add
	case token.MINUS:
		code = op.Subtract
	case token.ASTERISK:
		code = op.Multiply
	case token.SLASH:
		code = op.Divide
	default:
		c.errorAt(operator, "unknown operator", nil)
		return
	}
	c.chunk.WriteOpcode(code, operator.Line)
}

func (c *Compiler) emitOp(code op.Code) {
	c.chunk.WriteOpcode(code, c.prevToken.Line)
}

func (c *Compiler) emitConstant(v value.Value) {
	if _, err := c.chunk.EmitConstant(v, c.prevToken.Line); err != nil {
		c.errorAt(c.prevToken, "too many constants in one chunk", err)
	}
}

func (c *Compiler) tooManyErrors() bool {
	return c.errors != nil && len(c.errors.Errors) >= c.maxErrors
}

// errorAt records a diagnostic at tok unless the compiler is already in
// panic mode. Error tokens become lex errors.
func (c *Compiler) errorAt(tok token.Token, msg string, cause error) {
	if c.panicMode || c.tooManyErrors() {
		return
	}
	c.panicMode = true

	var err error
	switch tok.Type {
	case token.ERROR:
		err = &errz.LexError{Line: tok.Line, Message: msg}
	case token.EOF:
		err = &errz.CompileError{Line: tok.Line, Where: "end", Message: msg, Cause: cause}
	default:
		err = &errz.CompileError{Line: tok.Line, Where: tok.Lexeme(), Message: msg, Cause: cause}
	}
	if c.errors == nil {
		c.errors = &multierror.Error{ErrorFormat: listFormat}
	}
	c.errors = multierror.Append(c.errors, err)
}
