// macro.go defines the macro data structures and the registry protocol.
package creole

import (
	"errors"
	"fmt"
)

// MacroNode represents a parsed macro invocation.
type MacroNode struct {
	Name    string // as written in the tag
	RawArgs string // undecoded attribute text
	Body    string // raw content between open and close tags
	HasBody bool   // false for <<name>> and <<name />>
	Block   bool   // true when the macro forms its own block
	Line    int    // 1-based source line of the opening tag
}

// MacroCall is what a macro implementation receives.
type MacroCall struct {
	Name    string
	Args    Args
	Text    string // body text, empty when HasText is false
	HasText bool
	Block   bool
}

// MacroFunc renders one macro invocation to HTML.
// The returned markup is inserted without escaping.
type MacroFunc func(call *MacroCall) (string, error)

// Registry resolves macro names to implementations.
// A registry must not be mutated while a conversion using it is in flight.
type Registry interface {
	Lookup(name string) (MacroFunc, bool)
}

// MacroMap is the mapping form of a registry.
type MacroMap map[string]MacroFunc

// Lookup returns the macro registered under name.
func (m MacroMap) Lookup(name string) (MacroFunc, bool) {
	fn, ok := m[name]
	return fn, ok && fn != nil
}

// DispatchFunc is the single-callable form of a registry: it receives the
// macro name first. Returning ErrMacroNotFound marks the name as unknown.
type DispatchFunc func(name string, call *MacroCall) (string, error)

// Lookup binds name to the dispatcher.
func (d DispatchFunc) Lookup(name string) (MacroFunc, bool) {
	if d == nil {
		return nil, false
	}
	return func(call *MacroCall) (string, error) {
		return d(name, call)
	}, true
}

// AsRegistry turns any supported registry shape into a Registry:
// a Registry, a map of macro functions, or a dispatch function.
// nil yields an empty registry. Anything else fails with
// *InvalidMacroRegistryError.
func AsRegistry(v any) (Registry, error) {
	switch r := v.(type) {
	case nil:
		return MacroMap{}, nil
	case Registry:
		return r, nil
	case map[string]MacroFunc:
		return MacroMap(r), nil
	case map[string]func(*MacroCall) (string, error):
		m := make(MacroMap, len(r))
		for name, fn := range r {
			m[name] = fn
		}
		return m, nil
	case func(string, *MacroCall) (string, error):
		return DispatchFunc(r), nil
	default:
		return nil, &InvalidMacroRegistryError{Type: fmt.Sprintf("%T", v)}
	}
}

// isNotFound reports whether err means "no such macro".
func isNotFound(err error) bool {
	return errors.Is(err, ErrMacroNotFound)
}
