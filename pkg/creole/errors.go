package creole

import (
	"errors"
	"fmt"
)

// ErrMacroNotFound reports that no macro is registered under a name.
// A DispatchFunc returns it to signal that it does not handle a name.
var ErrMacroNotFound = errors.New("macro not found")

// MalformedArgumentError reports macro attribute text that could not be decoded.
type MalformedArgumentError struct {
	Raw string
	Err error
}

func (e *MalformedArgumentError) Error() string {
	return fmt.Sprintf("malformed macro arguments %q: %v", e.Raw, e.Err)
}

func (e *MalformedArgumentError) Unwrap() error {
	return e.Err
}

// MacroExecutionError wraps a failure raised by a resolved macro.
type MacroExecutionError struct {
	Name  string
	Err   error
	Stack []byte // set when the macro panicked
}

func (e *MacroExecutionError) Error() string {
	return fmt.Sprintf("macro %q failed: %v", e.Name, e.Err)
}

func (e *MacroExecutionError) Unwrap() error {
	return e.Err
}

// InvalidMacroRegistryError reports a value that cannot act as a macro registry.
type InvalidMacroRegistryError struct {
	Type string
}

func (e *InvalidMacroRegistryError) Error() string {
	return fmt.Sprintf("invalid macro registry of type %s: need a macro map or a dispatch function", e.Type)
}
