package ast

import "sync"

// Dictionary is the process-scoped store of named top-level definitions
// (spec.md §3, §5). It is the one piece of state in this repo that is
// genuinely global to a running process rather than threaded explicitly
// through call arguments — every other stateful concern (the binder
// stack, the parser's bindLevels) is passed explicitly instead.
//
// Today exactly one goroutine drives the REPL loop and touches a
// Dictionary, so the mutex is uncontended; it is kept anyway to document
// the single-writer contract in the type itself, not as a comment that
// can silently go stale.
type Dictionary struct {
	mu      sync.RWMutex
	entries map[string]Term
}

// NewDictionary returns an empty Dictionary ready for use.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string]Term)}
}

// Get looks up name, reporting whether it is currently defined.
func (d *Dictionary) Get(name string) (Term, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.entries[name]
	return t, ok
}

// Set stores body under name, replacing any previous definition.
func (d *Dictionary) Set(name string, body Term) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[name] = body
}

// Remove deletes name from the dictionary if present. An Assignment whose
// Name equals its own unresolved Constant body (`x = x`) is the source
// language's idiom for deleting a definition (spec.md §3) — the reducer
// calls Remove rather than Set when it detects that shape.
func (d *Dictionary) Remove(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, name)
}

// Shutdown clears every entry, releasing the Dictionary's terms. It is
// called once when the REPL exits; a Dictionary is not reusable after
// Shutdown.
func (d *Dictionary) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = nil
}
