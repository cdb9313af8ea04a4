// Package reducer implements the step loop that drives a parsed term to
// normal form (or reports non-termination): beta-reduction, eta-reduction,
// dictionary constant resolution, and the name-freshening rules that keep
// the displayed result free of accidental-looking name collisions.
package reducer

import (
	"fmt"

	"github.com/kvance/lambdacalc/pkgs/ast"
	"github.com/kvance/lambdacalc/pkgs/diagnostics"
)

// DefaultMaxSteps is the reduction step cap spec.md §9 suggests and this
// repo exposes as a setting rather than a hidden constant.
const DefaultMaxSteps = 100

// Session holds the process-scoped Dictionary and the per-reduction step
// cap. A Session is reused across REPL lines; Solve is otherwise stateless
// between calls.
type Session struct {
	Dict     *ast.Dictionary
	MaxSteps int
}

// NewSession returns a Session backed by dict, with MaxSteps defaulted to
// DefaultMaxSteps.
func NewSession(dict *ast.Dictionary) *Session {
	return &Session{Dict: dict, MaxSteps: DefaultMaxSteps}
}

func (s *Session) maxSteps() int {
	if s.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return s.MaxSteps
}

// Solve reduces term to normal form, or until MaxSteps simplify()
// iterations have run without reaching one. Termination is witnessed by
// ToCanonicalString equality between successive steps (P5/P6): since
// ToCanonicalString is name-invariant, a step that only freshens names
// (Rule S1/S2) without changing structure still counts as reaching the
// fixed point. source is carried through purely so a RuntimeError raised
// mid-reduction can render a snippet. On success, an Assignment term
// updates (or, for the self-assignment idiom `x = x`, removes) the
// Dictionary entry as a side effect; any other term leaves the
// Dictionary untouched.
func (s *Session) Solve(term ast.Term, source string) (result string, steps []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if de, ok := r.(*diagnostics.Error); ok {
				err = de
				return
			}
			msg := fmt.Sprintf("%v", r)
			err = diagnostics.NewRuntimeError(msg, term.Position().Pos, max1(term.Position().Len), source)
		}
	}()

	current := term
	canonical := ast.ToCanonicalString(current)
	limit := s.maxSteps()

	for i := 0; i < limit; i++ {
		next := simplifyStep(current, nil, s.Dict)
		nextCanonical := ast.ToCanonicalString(next)
		current = next
		if nextCanonical == canonical {
			final, _, ferr := s.finish(current)
			return final, steps, ferr
		}
		canonical = nextCanonical
		steps = append(steps, ast.ToDisplayString(current))
	}

	return "", steps, diagnostics.NewRuntimeError(
		fmt.Sprintf("exceeded maximum of %d reduction steps without reaching a normal form", limit),
		term.Position().Pos, max1(term.Position().Len), source,
	)
}

func max1(n int) int {
	if n > 0 {
		return n
	}
	return 1
}

// finish applies the top-level Assignment/dictionary contract (spec.md
// §3) to a fully-reduced term and renders the user-facing result.
func (s *Session) finish(term ast.Term) (string, []string, error) {
	assign, ok := term.(ast.Assignment)
	if !ok {
		return ast.ToDisplayString(term), nil, nil
	}

	if c, ok := assign.Body.(ast.Constant); ok && c.Name == assign.Name {
		s.Dict.Remove(assign.Name)
		return fmt.Sprintf("Deleted constant %s", assign.Name), nil, nil
	}

	s.Dict.Set(assign.Name, assign.Body)
	return fmt.Sprintf("Set constant %s to %s", assign.Name, ast.ToDisplayString(assign.Body)), nil, nil
}

// simplifyStep performs exactly one rewrite, returning t unchanged
// (structurally) if no rule applies anywhere in it. stack is the chain of
// Abstractions currently enclosing t, outermost first — threaded
// explicitly rather than held in a package global (spec.md §9's design
// guidance), and consulted only by the name-freshening rules.
func simplifyStep(t ast.Term, stack []*ast.Abstraction, dict *ast.Dictionary) ast.Term {
	switch n := t.(type) {
	case ast.Variable:
		return n
	case ast.Constant:
		return n

	case ast.Abstraction:
		innerStack := append(append([]*ast.Abstraction(nil), stack...), &n)
		newBody := simplifyStep(n.Body, innerStack, dict)
		if ast.ToCanonicalString(newBody) != ast.ToCanonicalString(n.Body) {
			n.Body = newBody
			return n
		}
		if reduced, ok := tryEta(n); ok {
			return reduced
		}
		return n

	case ast.Application:
		newTerm1 := simplifyStep(n.Term1, stack, dict)
		if ast.ToCanonicalString(newTerm1) != ast.ToCanonicalString(n.Term1) {
			n.Term1 = newTerm1
			return n
		}
		newTerm2 := simplifyStep(n.Term2, stack, dict)
		if ast.ToCanonicalString(newTerm2) != ast.ToCanonicalString(n.Term2) {
			n.Term2 = newTerm2
			return n
		}
		if abs, ok := n.Term1.(ast.Abstraction); ok {
			return betaReduce(abs, n.Term2, stack)
		}
		if c, ok := n.Term1.(ast.Constant); ok {
			if def, found := dict.Get(c.Name); found {
				n.Term1 = updateNameShadowing(ast.Copy(def), stack)
				return n
			}
		}
		return n

	case ast.Assignment:
		newBody := simplifyStep(n.Body, stack, dict)
		if ast.ToCanonicalString(newBody) != ast.ToCanonicalString(n.Body) {
			n.Body = newBody
			return n
		}
		return n

	default:
		panic(fmt.Sprintf("reducer: unhandled term type %T", t))
	}
}

// betaReduce reduces Application{Abstraction(body), arg} to body with arg
// substituted for the abstraction's own variable and the outer binder
// removed, per original_source/src/AST.cpp's beta_reduce. substitute
// already performs the index adjustment for the removed binder inline
// (each Variable above depth is decremented as it's visited), so the
// result needs only a defensive Copy, not a second blanket shift.
func betaReduce(abs ast.Abstraction, arg ast.Term, stack []*ast.Abstraction) ast.Term {
	substituted := substitute(abs.Body, arg, 0, stack)
	return ast.Copy(substituted)
}

// substitute replaces every Variable at exactly depth (the abstraction's
// own bound occurrences, seen from the current recursion point) with a
// copy of arg shifted up by depth, decrements every Variable above depth
// (since the enclosing binder is about to be removed), and leaves
// anything below depth (some other, more local binder) untouched.
func substitute(body ast.Term, arg ast.Term, depth int, stack []*ast.Abstraction) ast.Term {
	switch n := body.(type) {
	case ast.Variable:
		switch {
		case n.Index == depth:
			return ast.Copy(ast.OffsetIndexes(arg, depth, 0))
		case n.Index > depth:
			return ast.Variable{Span: n.Span, Index: n.Index - 1}
		default:
			return n
		}
	case ast.Constant:
		return n
	case ast.Abstraction:
		n = freshenForCapture(n, arg, stack)
		n.Body = substitute(n.Body, arg, depth+1, stack)
		return n
	case ast.Application:
		n.Term1 = substitute(n.Term1, arg, depth, stack)
		n.Term2 = substitute(n.Term2, arg, depth, stack)
		return n
	case ast.Assignment:
		n.Body = substitute(n.Body, arg, depth, stack)
		return n
	default:
		panic(fmt.Sprintf("reducer: unhandled term type %T", body))
	}
}

// tryEta reduces \x. fn x to fn when x does not occur free in fn
// (original_source/src/AST.cpp's eta check inside Abstraction::simplify).
func tryEta(abs ast.Abstraction) (ast.Term, bool) {
	app, ok := abs.Body.(ast.Application)
	if !ok {
		return nil, false
	}
	v, ok := app.Term2.(ast.Variable)
	if !ok || v.Index != 0 {
		return nil, false
	}
	if _, captured := ast.FreeVariables(app.Term1, 0)[0]; captured {
		return nil, false
	}
	return ast.Copy(ast.OffsetIndexes(app.Term1, -1, 0)), true
}
