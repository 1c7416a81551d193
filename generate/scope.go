package generate

import (
	"lowc/report"
)

// binding is a single named value of a scope.
type binding struct {
	name string
	val  Value
}

// Scope is a single lexical scope.  Bindings are kept in insertion order.
type Scope struct {
	parent   *Scope
	bindings []binding
	index    map[string]int
}

// ScopeChain is the chain of lexical scopes active during generation.  The
// outermost scope is the global scope.
type ScopeChain struct {
	top   *Scope
	depth int
}

// PushScope pushes a new scope whose parent is the current innermost scope.
func (sc *ScopeChain) PushScope() {
	sc.top = &Scope{parent: sc.top, index: make(map[string]int)}
	sc.depth++
}

// PopScope discards the innermost scope.  Popping with no scope pushed is a
// bug in the caller.
func (sc *ScopeChain) PopScope() {
	if sc.top == nil {
		report.ReportICE("scope popped without a matching push")
	}

	sc.top = sc.top.parent
	sc.depth--
}

// Depth returns the number of scopes in the chain.
func (sc *ScopeChain) Depth() int {
	return sc.depth
}

// Bind binds name to val in the innermost scope.  Shadowing a binding of an
// enclosing scope is allowed.
func (sc *ScopeChain) Bind(name string, val Value) error {
	if _, ok := sc.top.index[name]; ok {
		return report.Raise(report.DuplicateBinding, "multiple symbols named `%s` defined in the same scope", name)
	}

	sc.top.index[name] = len(sc.top.bindings)
	sc.top.bindings = append(sc.top.bindings, binding{name: name, val: val})
	return nil
}

// Lookup finds the innermost binding of name.
func (sc *ScopeChain) Lookup(name string) (Value, error) {
	for s := sc.top; s != nil; s = s.parent {
		if i, ok := s.index[name]; ok {
			return s.bindings[i].val, nil
		}
	}

	return Value{}, report.Raise(report.UnknownIdentifier, "undefined symbol: `%s`", name)
}

// Names returns the names bound in the innermost scope in binding order.
func (sc *ScopeChain) Names() []string {
	if sc.top == nil {
		return nil
	}

	names := make([]string, len(sc.top.bindings))
	for i, b := range sc.top.bindings {
		names[i] = b.name
	}

	return names
}
