// Package parser implements a recursive-descent parser translating the
// lambda-calculus surface grammar (spec.md §4.2) directly into de Bruijn
// form, mirroring original_source/LambdaParser/Parser.cpp's single-pass
// binder translation rather than building a name-based AST and resolving
// indices in a later pass.
package parser

import (
	"fmt"

	"github.com/kvance/lambdacalc/pkgs/ast"
	"github.com/kvance/lambdacalc/pkgs/diagnostics"
	"github.com/kvance/lambdacalc/pkgs/lexer"
)

// Parser holds the state of a single parse. It is never reused across
// calls — Parse constructs a fresh one per input line, so there is no
// reentrancy concern to guard against.
type Parser struct {
	input string
	lex   *lexer.Lexer
	tok   lexer.Token // current lookahead token

	// bindLevels maps a surface name to the bind_count level of its
	// innermost currently-open Abstraction, letting Variable occurrences
	// be translated to de Bruijn indices on the fly
	// (original_source/src/AST.cpp, create_binding/create_variable).
	bindLevels map[string]int
	bindCount  int

	trace diagnostics.Trace
}

// Parse parses a single line of surface syntax into a closed ast.Term.
// Per spec.md §7, no diagnostics.Error ever escapes Parse as a panic —
// lexical/grammar failures are returned as an ordinary error value.
func Parse(input string) (result ast.Term, err error) {
	p := &Parser{
		input:      input,
		lex:        lexer.New(input),
		bindLevels: make(map[string]int),
	}
	defer func() {
		if r := recover(); r != nil {
			if de, ok := r.(*diagnostics.Error); ok {
				err = de
				return
			}
			panic(r)
		}
	}()

	p.advance()
	term := p.parseExpr()
	p.expectEOF()
	return term, nil
}

func (p *Parser) advance() {
	p.tok = p.lex.Next()
}

func (p *Parser) at(t lexer.TokenType) bool {
	return p.tok.Type == t
}

// fail raises a ParseError at the current token, with the accumulated
// call-stack trace attached.
func (p *Parser) fail(message string) {
	panic(diagnostics.NewParseError(message, p.tok.Pos, tokSpanLen(p.tok), p.input, p.trace.Snapshot()))
}

func (p *Parser) failToken(message string) {
	panic(diagnostics.NewTokenError(message, p.tok.Pos, tokSpanLen(p.tok), p.input, p.trace.Snapshot()))
}

func tokSpanLen(t lexer.Token) int {
	if t.Len > 0 {
		return t.Len
	}
	return 1
}

func (p *Parser) expect(t lexer.TokenType, what string) lexer.Token {
	if !p.at(t) {
		p.fail(fmt.Sprintf("expected %s, got %s", what, p.tok.Type))
	}
	tok := p.tok
	p.advance()
	return tok
}

func (p *Parser) expectEOF() {
	if !p.at(lexer.EOF) {
		p.fail(fmt.Sprintf("unexpected %s after expression", p.tok.Type))
	}
}

// parseName consumes an IDENT token as a Name. A NUMBER token (a
// digits-only run) can never be a Name — per
// original_source/LambdaParser/Parser.cpp's parse_name_token, this is a
// TokenError raised immediately at the point a Name was required, not a
// soft/lazy failure.
func (p *Parser) parseName() lexer.Token {
	if p.at(lexer.NUMBER) {
		p.failToken(fmt.Sprintf("invalid name %q", p.tok.Value))
	}
	return p.expect(lexer.IDENT, "a name")
}

// parseExpr = Assignment | AppChain
// The two productions share an identifier prefix (`Name "=" ...` vs a
// bare AppChain starting with that same Name), so Expr first attempts
// Assignment and backtracks to AppChain on failure — mirroring
// original_source/LambdaParser/Parser.cpp's parse_expression, which saves
// and restores lexer position around the speculative Name/"=" lookahead.
func (p *Parser) parseExpr() ast.Term {
	pop := p.trace.Push("expr", p.tok.Pos)
	defer pop()

	if p.at(lexer.IDENT) {
		savedLex := *p.lex
		savedTok := p.tok
		start := p.tok.Pos

		name := p.tok.Value
		p.advance()
		if p.at(lexer.EQUALS) {
			p.advance()
			body := p.parseAppChain()
			return ast.Assignment{
				Span: ast.Span{Pos: start, Len: p.tok.Pos - start},
				Name: name,
				Body: body,
			}
		}

		// Not an assignment: rewind and fall through to AppChain.
		*p.lex = savedLex
		p.tok = savedTok
	}

	return p.parseAppChain()
}

// AppChain = Term { Term }
// Left-associative application: `a b c` parses as `(a b) c`.
func (p *Parser) parseAppChain() ast.Term {
	pop := p.trace.Push("app_chain", p.tok.Pos)
	defer pop()

	start := p.tok.Pos
	term := p.parseTerm()
	for p.startsTerm() {
		next := p.parseTerm()
		term = ast.Application{
			Span:  ast.Span{Pos: start, Len: p.tok.Pos - start},
			Term1: term,
			Term2: next,
		}
	}
	return term
}

// startsTerm reports whether the current token can begin a Term, used to
// decide whether AppChain should keep consuming operands.
func (p *Parser) startsTerm() bool {
	switch p.tok.Type {
	case lexer.IDENT, lexer.BACKSLASH, lexer.LPAREN:
		return true
	default:
		return false
	}
}

// Term = Abstraction | Parenthesised | Variable
func (p *Parser) parseTerm() ast.Term {
	pop := p.trace.Push("term", p.tok.Pos)
	defer pop()

	switch p.tok.Type {
	case lexer.BACKSLASH:
		return p.parseAbstraction()
	case lexer.LPAREN:
		return p.parseParenthesised()
	case lexer.IDENT:
		return p.parseVariable()
	case lexer.NUMBER:
		p.failToken(fmt.Sprintf("invalid name %q", p.tok.Value))
		panic("unreachable")
	default:
		p.fail(fmt.Sprintf("expected a term, got %s", p.tok.Type))
		panic("unreachable")
	}
}

// Abstraction = "\" Name AbsTail
// AbsTail     = "." AppChain | Name AbsTail
// A curried binder list `\x y. body` desugars to `\x. \y. body` during
// the same descent that performs the de Bruijn translation
// (original_source/src/AST.cpp, create_binding).
func (p *Parser) parseAbstraction() ast.Term {
	pop := p.trace.Push("abstraction", p.tok.Pos)
	defer pop()

	start := p.tok.Pos
	p.advance() // consume '\'
	return p.parseAbsTail(start)
}

func (p *Parser) parseAbsTail(start int) ast.Term {
	nameTok := p.parseName()
	name := nameTok.Value

	previousBind := -1
	hadPrevious := false
	var previousLevel int
	if lvl, ok := p.bindLevels[name]; ok {
		previousLevel = lvl
		hadPrevious = true
	}

	p.bindLevels[name] = p.bindCount
	p.bindCount++

	var body ast.Term
	if p.at(lexer.DOT) {
		p.advance()
		body = p.parseAppChain()
	} else {
		body = p.parseAbsTail(p.tok.Pos)
	}

	p.bindCount--
	if hadPrevious {
		p.bindLevels[name] = previousLevel
		previousBind = previousLevel
	} else {
		delete(p.bindLevels, name)
	}

	return ast.Abstraction{
		Span:         ast.Span{Pos: start, Len: p.tok.Pos - start},
		Name:         name,
		Body:         body,
		PreviousBind: previousBind,
	}
}

// Parenthesised = "(" AppChain ")"
func (p *Parser) parseParenthesised() ast.Term {
	pop := p.trace.Push("parenthesised", p.tok.Pos)
	defer pop()

	start := p.tok.Pos
	p.advance() // consume '('
	inner := p.parseAppChain()
	p.expect(lexer.RPAREN, ")")
	return reposition(inner, ast.Span{Pos: start, Len: p.tok.Pos - start})
}

// reposition rewrites a term's outermost Span, used when parentheses
// widen the span of the term they enclose.
func reposition(t ast.Term, span ast.Span) ast.Term {
	switch n := t.(type) {
	case ast.Variable:
		n.Span = span
		return n
	case ast.Constant:
		n.Span = span
		return n
	case ast.Abstraction:
		n.Span = span
		return n
	case ast.Application:
		n.Span = span
		return n
	case ast.Assignment:
		n.Span = span
		return n
	default:
		return t
	}
}

// Variable = Name
// Translates a surface occurrence to a bound Variable (de Bruijn index
// bindCount - level - 1) if Name is currently bound, else to a free
// Constant (original_source/src/AST.cpp, create_variable).
func (p *Parser) parseVariable() ast.Term {
	pop := p.trace.Push("variable", p.tok.Pos)
	defer pop()

	tok := p.parseName()
	if level, ok := p.bindLevels[tok.Value]; ok {
		return ast.Variable{
			Span:  ast.Span{Pos: tok.Pos, Len: tok.Len},
			Index: p.bindCount - level - 1,
		}
	}
	return ast.Constant{
		Span: ast.Span{Pos: tok.Pos, Len: tok.Len},
		Name: tok.Value,
	}
}
