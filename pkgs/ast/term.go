// Package ast defines the closed term model for the lambda calculus:
// five variants (Variable, Constant, Abstraction, Application, Assignment)
// and the structural operations the reducer and parser share.
package ast

import (
	"fmt"
	"strings"
)

// Span is the byte range a term came from in its source line. It is
// carried purely for diagnostics — it plays no role in reduction or
// equality.
type Span struct {
	Pos int
	Len int
}

// Term is the closed sum of the five term variants. It is implemented
// by exactly Variable, Constant, Abstraction, Application and Assignment;
// callers switch on the concrete type rather than calling methods, which
// keeps per-variant behavior (Copy, OffsetIndexes, ...) in one place per
// operation instead of scattered across five receivers.
type Term interface {
	term()
	Position() Span
}

// Variable is a bound occurrence, referring to its binder by de Bruijn
// index: the number of Abstraction boundaries between the occurrence and
// its binder (0 = the nearest enclosing binder).
type Variable struct {
	Span  Span
	Index int
}

// Constant is a free name: either an unresolved variable occurrence or a
// reference into the process Dictionary, resolved at reduction time.
type Constant struct {
	Span Span
	Name string
}

// Abstraction is `\Name. Body`. PreviousBind is the de Bruijn level of an
// outer binder with the same Name that this one shadows at parse time, or
// -1 if none. It exists solely to drive name freshening during reduction
// (see pkgs/reducer/shadow.go) — it has no bearing on reduction
// correctness, which relies entirely on de Bruijn indices.
type Abstraction struct {
	Span         Span
	Name         string
	Body         Term
	PreviousBind int
}

// Application is `Term1 Term2`, left term applied to right term.
type Application struct {
	Span  Span
	Term1 Term
	Term2 Term
}

// Assignment is `Name = Body`, a top-level definition. Simplification
// reduces Body in place and keeps the assignment form; the Dictionary is
// updated only once Body has reached normal form.
type Assignment struct {
	Span Span
	Name string
	Body Term
}

func (Variable) term()    {}
func (Constant) term()    {}
func (Abstraction) term() {}
func (Application) term() {}
func (Assignment) term()  {}

func (v Variable) Position() Span    { return v.Span }
func (c Constant) Position() Span    { return c.Span }
func (a Abstraction) Position() Span { return a.Span }
func (a Application) Position() Span { return a.Span }
func (a Assignment) Position() Span  { return a.Span }

// Copy performs a deep clone of t. Every substitution and every
// reduction step that inserts a subterm into a new position calls Copy
// first, so that no two live positions in the tree ever alias the same
// node (original_source/src/AST.cpp, Term::copy).
func Copy(t Term) Term {
	switch n := t.(type) {
	case Variable:
		return Variable{Span: n.Span, Index: n.Index}
	case Constant:
		return Constant{Span: n.Span, Name: n.Name}
	case Abstraction:
		return Abstraction{
			Span:         n.Span,
			Name:         n.Name,
			Body:         Copy(n.Body),
			PreviousBind: n.PreviousBind,
		}
	case Application:
		return Application{
			Span:  n.Span,
			Term1: Copy(n.Term1),
			Term2: Copy(n.Term2),
		}
	case Assignment:
		return Assignment{
			Span: n.Span,
			Name: n.Name,
			Body: Copy(n.Body),
		}
	default:
		panic(fmt.Sprintf("ast.Copy: unhandled term type %T", t))
	}
}

// OffsetIndexes adds delta to the index of every Variable in t whose
// index is at least cutoff (i.e. whose binder lies outside the subtree
// rooted cutoff levels up). cutoff increases by one on descending into
// an Abstraction, since it pushes every enclosing index one level
// farther away. It panics if the result would be a negative index — the
// source's "unbound after shift" runtime error
// (original_source/src/AST.cpp, Term::offset_indexes).
func OffsetIndexes(t Term, delta, cutoff int) Term {
	switch n := t.(type) {
	case Variable:
		if n.Index < cutoff {
			return n
		}
		newIndex := n.Index + delta
		if newIndex < 0 {
			panic(fmt.Sprintf("ast.OffsetIndexes: variable at %v would become unbound (index %d, delta %d)", n.Span, n.Index, delta))
		}
		return Variable{Span: n.Span, Index: newIndex}
	case Constant:
		return n
	case Abstraction:
		n.Body = OffsetIndexes(n.Body, delta, cutoff+1)
		return n
	case Application:
		n.Term1 = OffsetIndexes(n.Term1, delta, cutoff)
		n.Term2 = OffsetIndexes(n.Term2, delta, cutoff)
		return n
	case Assignment:
		n.Body = OffsetIndexes(n.Body, delta, cutoff)
		return n
	default:
		panic(fmt.Sprintf("ast.OffsetIndexes: unhandled term type %T", t))
	}
}

// FreeVariables returns the set of de Bruijn indices, each measured
// relative to depth, of every Variable in t that is free with respect to
// depth enclosing binders. A Variable at absolute index i is free at
// depth d iff i >= d, and its distance past depth is recorded as i - d.
func FreeVariables(t Term, depth int) map[int]struct{} {
	out := make(map[int]struct{})
	collectFreeVariables(t, depth, out)
	return out
}

func collectFreeVariables(t Term, depth int, out map[int]struct{}) {
	switch n := t.(type) {
	case Variable:
		if n.Index >= depth {
			out[n.Index-depth] = struct{}{}
		}
	case Constant:
		// free names are not tracked as indices
	case Abstraction:
		collectFreeVariables(n.Body, depth+1, out)
	case Application:
		collectFreeVariables(n.Term1, depth, out)
		collectFreeVariables(n.Term2, depth, out)
	case Assignment:
		collectFreeVariables(n.Body, depth, out)
	default:
		panic(fmt.Sprintf("ast.FreeVariables: unhandled term type %T", t))
	}
}

// ToCanonicalString renders t using only de Bruijn indices, never binder
// names. It is used purely as a structural fingerprint to detect a
// reduction fixed point (pkgs/reducer), and is deliberately blind to the
// cosmetic renaming that name freshening performs — two terms that differ
// only by freshened binder names produce the identical canonical string.
func ToCanonicalString(t Term) string {
	var b strings.Builder
	writeCanonical(&b, t)
	return b.String()
}

func writeCanonical(b *strings.Builder, t Term) {
	switch n := t.(type) {
	case Variable:
		fmt.Fprintf(b, "%d", n.Index)
	case Constant:
		b.WriteString(n.Name)
	case Abstraction:
		b.WriteString(`\.`)
		writeCanonical(b, n.Body)
	case Application:
		b.WriteByte('(')
		writeCanonical(b, n.Term1)
		b.WriteByte(' ')
		writeCanonical(b, n.Term2)
		b.WriteByte(')')
	case Assignment:
		writeCanonical(b, n.Body)
	default:
		panic(fmt.Sprintf("ast.ToCanonicalString: unhandled term type %T", t))
	}
}

// ToDisplayString renders t for the user, resolving each Variable back to
// the name of its binder by walking a name stack built during descent
// (innermost binder at the end of the stack, matching de Bruijn index 0).
func ToDisplayString(t Term) string {
	var b strings.Builder
	writeDisplay(&b, t, nil)
	return b.String()
}

func writeDisplay(b *strings.Builder, t Term, names []string) {
	switch n := t.(type) {
	case Variable:
		if n.Index < len(names) {
			b.WriteString(names[len(names)-1-n.Index])
		} else {
			fmt.Fprintf(b, "#%d", n.Index)
		}
	case Constant:
		b.WriteString(n.Name)
	case Abstraction:
		fmt.Fprintf(b, `\%s.`, n.Name)
		writeDisplay(b, n.Body, append(names, n.Name))
	case Application:
		writeApplicationOperand(b, n.Term1, names, false)
		b.WriteByte(' ')
		writeApplicationOperand(b, n.Term2, names, true)
	case Assignment:
		fmt.Fprintf(b, "%s = ", n.Name)
		writeDisplay(b, n.Body, names)
	default:
		panic(fmt.Sprintf("ast.ToDisplayString: unhandled term type %T", t))
	}
}

// writeApplicationOperand parenthesizes an Abstraction or Application
// operand when it appears where juxtaposition would otherwise misparse it:
// as the right side of an application (rightOperand), or — for
// Abstraction only — anywhere (since \x.x y must always be reparsed as
// \x.(x y), never (\x.x) y).
func writeApplicationOperand(b *strings.Builder, t Term, names []string, rightOperand bool) {
	switch t.(type) {
	case Abstraction:
		b.WriteByte('(')
		writeDisplay(b, t, names)
		b.WriteByte(')')
	case Application:
		if rightOperand {
			b.WriteByte('(')
			writeDisplay(b, t, names)
			b.WriteByte(')')
		} else {
			writeDisplay(b, t, names)
		}
	default:
		writeDisplay(b, t, names)
	}
}
