package reducer

import (
	"fmt"

	"github.com/kvance/lambdacalc/pkgs/ast"
)

// Name freshening is purely cosmetic: reduction correctness never depends
// on it, since substitution and beta/eta-reduction operate entirely on de
// Bruijn indices. Its only job is to keep ToDisplayString from rendering
// two different binders under the same surface name when a substitution
// or dictionary-constant insertion brings one into a scope that already
// uses that name (original_source/src/AST.cpp, update_name_shadowing and
// the rename check inside beta-reduction).

// freshenForCapture implements Rule S1: when substitution is about to
// descend into a nested Abstraction `inner` while inserting `arg` at the
// current position, check whether any of arg's free variables resolve
// (against the ambient binder stack, outermost first) to a binder sharing
// inner's name. If so, inner is renamed to "name(k)" so that, after
// substitution, the newly-visible binder does not read as the same name
// as the one arg's free variable actually refers to.
func freshenForCapture(inner ast.Abstraction, arg ast.Term, stack []*ast.Abstraction) ast.Abstraction {
	if inner.PreviousBind < 0 && len(stack) == 0 {
		return inner
	}
	for d := range ast.FreeVariables(arg, 0) {
		idx := len(stack) - 1 - d
		if idx < 0 || idx >= len(stack) {
			continue
		}
		if stack[idx].Name == inner.Name {
			k := 1 + chainLength(inner.PreviousBind, stackLevelIndex(stack))
			inner.Name = fmt.Sprintf("%s(%d)", inner.Name, k)
			return inner
		}
	}
	return inner
}

// stackLevelIndex exposes the ambient stack as a level->*Abstraction
// lookup, matching the level numbering the parser assigned (stack
// position == bind level, since both parser and reducer push/pop in
// lockstep with entering/leaving an Abstraction).
func stackLevelIndex(stack []*ast.Abstraction) func(level int) (ast.Abstraction, bool) {
	return func(level int) (ast.Abstraction, bool) {
		if level < 0 || level >= len(stack) {
			return ast.Abstraction{}, false
		}
		return *stack[level], true
	}
}

// chainLength walks a previous_bind chain (each link resolved through
// lookup) counting its length, stopping at -1 or an unresolvable level.
func chainLength(level int, lookup func(int) (ast.Abstraction, bool)) int {
	length := 0
	for level >= 0 {
		abs, ok := lookup(level)
		if !ok {
			break
		}
		length++
		level = abs.PreviousBind
	}
	return length
}

// updateNameShadowing implements Rule S2: when a dictionary Constant is
// resolved and its definition is spliced into the tree, walk the
// inserted subtree and rename any of its binders that would otherwise
// read as the same name as a binder already in scope at the insertion
// point (either ambient, or introduced earlier within this same
// insertion). Renamed binders use "name(k)" with k = 2 + the shadow
// chain length (Rule S1 uses k = 1 + its chain length instead).
//
// A free Constant inside the inserted subtree whose name collides with an
// in-scope binder is renamed the same way (spec.md §4.5 Rule S2;
// original_source/src/AST.cpp's Constant::update_name_shadowing), with
// k = 2 + the stored binder's shadow chain length. This is purely a
// display-string rename: Dictionary lookups are keyed on the Constant's
// original name at parse/resolution time, before this rename ever runs,
// so it does not affect resolution.
func updateNameShadowing(t ast.Term, stack []*ast.Abstraction) ast.Term {
	binds := make(map[string]int, len(stack))
	levels := make(map[int]ast.Abstraction, len(stack))
	for i, a := range stack {
		binds[a.Name] = i
		levels[i] = *a
	}
	result, _ := walkShadow(t, len(stack), binds, levels)
	return result
}

func walkShadow(t ast.Term, nextLevel int, binds map[string]int, levels map[int]ast.Abstraction) (ast.Term, int) {
	switch n := t.(type) {
	case ast.Variable:
		return n, nextLevel
	case ast.Constant:
		if level, ok := binds[n.Name]; ok {
			lookup := func(lv int) (ast.Abstraction, bool) {
				a, ok := levels[lv]
				return a, ok
			}
			k := 2 + chainLength(level, lookup)
			n.Name = fmt.Sprintf("%s(%d)", n.Name, k)
		}
		return n, nextLevel
	case ast.Application:
		n.Term1, nextLevel = walkShadow(n.Term1, nextLevel, binds, levels)
		n.Term2, nextLevel = walkShadow(n.Term2, nextLevel, binds, levels)
		return n, nextLevel
	case ast.Assignment:
		n.Body, nextLevel = walkShadow(n.Body, nextLevel, binds, levels)
		return n, nextLevel
	case ast.Abstraction:
		origName := n.Name
		level := nextLevel
		nextLevel++

		prevLevel, shadowed := binds[origName]
		lookup := func(lv int) (ast.Abstraction, bool) {
			a, ok := levels[lv]
			return a, ok
		}
		if shadowed {
			k := 2 + chainLength(prevLevel, lookup)
			n.Name = fmt.Sprintf("%s(%d)", origName, k)
			n.PreviousBind = prevLevel
		} else {
			n.PreviousBind = -1
		}
		levels[level] = n
		binds[origName] = level

		n.Body, nextLevel = walkShadow(n.Body, nextLevel, binds, levels)

		if shadowed {
			binds[origName] = prevLevel
		} else {
			delete(binds, origName)
		}
		return n, nextLevel
	default:
		return t, nextLevel
	}
}
