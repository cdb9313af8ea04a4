// Package diagnostics implements the three error kinds the lambda
// evaluator can raise (TokenError, ParseError, RuntimeError), a
// caret-highlighted snippet renderer, and the recursive-descent call-stack
// trace the parser maintains for error reporting.
package diagnostics

import (
	"fmt"
	"strings"
)

// Kind distinguishes the three error categories spec.md §7 requires.
type Kind int

const (
	TokenErrorKind Kind = iota
	ParseErrorKind
	RuntimeErrorKind
)

func (k Kind) String() string {
	switch k {
	case TokenErrorKind:
		return "token error"
	case ParseErrorKind:
		return "parse error"
	case RuntimeErrorKind:
		return "runtime error"
	default:
		return "error"
	}
}

// Error is the single error type carried across pkgs/lexer, pkgs/parser
// and pkgs/reducer. Pos/Len locate the offending span in Input; Trace is
// the unwound call-stack snapshot captured at the point the error was
// raised (nil for RuntimeError, which is raised outside the recursive
// descent).
type Error struct {
	Kind    Kind
	Message string
	Pos     int
	Len     int
	Input   string
	Trace   []Frame
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", e.Kind, e.Message)
	b.WriteString(e.Snippet())
	if len(e.Trace) > 0 {
		b.WriteString("\n")
		b.WriteString(e.TraceString())
	}
	return b.String()
}

// Snippet renders a single-line caret-highlighted excerpt of Input
// pointing at [Pos, Pos+Len), in the teacher's "line | source" style
// (pkgs/parser/errors.go, createCodeSnippet), adapted to a byte-offset
// single-line input instead of a multi-line Line/Column token.
func (e *Error) Snippet() string {
	if e.Input == "" {
		return ""
	}
	pos := e.Pos
	if pos < 0 {
		pos = 0
	}
	if pos > len(e.Input) {
		pos = len(e.Input)
	}
	length := e.Len
	if length < 1 {
		length = 1
	}

	var b strings.Builder
	b.WriteString("  |\n")
	fmt.Fprintf(&b, "1 | %s\n", e.Input)
	b.WriteString("  | ")
	b.WriteString(strings.Repeat(" ", pos))
	b.WriteString(strings.Repeat("^", length))
	return b.String()
}

// TraceString renders the captured call-stack trace, innermost frame
// first, matching the original's diagnostic stack dump
// (original_source/src/ParserExceptions.cpp).
func (e *Error) TraceString() string {
	var b strings.Builder
	b.WriteString("stack trace:\n")
	for i := len(e.Trace) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "  at %s (pos %d)\n", e.Trace[i].Func, e.Trace[i].Pos)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewTokenError reports a lexical failure: per
// original_source/LambdaParser/Parser.cpp's parse_name_token, a
// digits-only run consumed where a Name was required. A byte that cannot
// start any token is not reported here; the parser raises a ParseError
// for it.
func NewTokenError(message string, pos, length int, input string, trace []Frame) *Error {
	return &Error{Kind: TokenErrorKind, Message: message, Pos: pos, Len: length, Input: input, Trace: trace}
}

// NewParseError reports a grammar violation: a well-formed token stream
// that does not match any production at the current parser state.
func NewParseError(message string, pos, length int, input string, trace []Frame) *Error {
	return &Error{Kind: ParseErrorKind, Message: message, Pos: pos, Len: length, Input: input, Trace: trace}
}

// NewRuntimeError reports a failure during reduction: the step cap
// exceeded, or an internal invariant violated while offsetting indexes.
func NewRuntimeError(message string, pos, length int, input string) *Error {
	return &Error{Kind: RuntimeErrorKind, Message: message, Pos: pos, Len: length, Input: input}
}
