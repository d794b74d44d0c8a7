// resolver.go looks up macros and applies the verbosity and debug policy.
package creole

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
)

// ResolveStatus is the outcome of resolving one macro invocation.
type ResolveStatus int

const (
	MacroFound      ResolveStatus = iota // the macro ran; Output holds its markup
	MacroNotFound                        // no macro under that name
	MacroFailed                          // the macro returned an error or panicked
	MacroBadArgs                         // the attribute text could not be decoded
)

// Resolution is the explicit result of a macro lookup and call.
type Resolution struct {
	Status ResolveStatus
	Output string
	Err    error
}

// resolver runs macros for one conversion.
type resolver struct {
	registry Registry
	opts     ConvertOptions
	sink     io.Writer
	diag     *log.Logger
}

func newResolver(opts ConvertOptions) *resolver {
	registry := opts.Macros
	if registry == nil {
		registry = MacroMap{}
	}
	return &resolver{registry: registry, opts: opts}
}

// Resolve decodes the arguments of node, looks it up and calls it.
// Panics are recovered into MacroFailed unless debug is enabled.
func (r *resolver) Resolve(node *MacroNode) Resolution {
	args, err := DecodeArgs(node.RawArgs)
	if err != nil {
		return Resolution{Status: MacroBadArgs, Err: err}
	}

	fn, ok := r.registry.Lookup(node.Name)
	if !ok {
		return Resolution{Status: MacroNotFound, Err: fmt.Errorf("%q: %w", node.Name, ErrMacroNotFound)}
	}

	call := &MacroCall{
		Name:    node.Name,
		Args:    args,
		Text:    node.Body,
		HasText: node.HasBody,
		Block:   node.Block,
	}
	out, err := r.call(fn, call)
	switch {
	case err == nil:
		return Resolution{Status: MacroFound, Output: out}
	case isNotFound(err):
		return Resolution{Status: MacroNotFound, Err: err}
	default:
		if _, ok := err.(*MacroExecutionError); !ok {
			err = &MacroExecutionError{Name: node.Name, Err: err}
		}
		return Resolution{Status: MacroFailed, Err: err}
	}
}

func (r *resolver) call(fn MacroFunc, call *MacroCall) (out string, err error) {
	if !r.opts.Debug {
		defer func() {
			if p := recover(); p != nil {
				out = ""
				err = &MacroExecutionError{Name: call.Name, Err: fmt.Errorf("panic: %v", p), Stack: debug.Stack()}
			}
		}()
	}
	return fn(call)
}

// Emit resolves node and turns the resolution into output markup.
//
// Failures become an "[Error: ...]" marker at verbose >= 1 and nothing at
// verbose 0; verbose 2 also writes a diagnostic to the sink. With debug
// enabled, execution and argument errors are returned instead; an unknown
// macro is never an error.
func (r *resolver) Emit(node *MacroNode) (string, error) {
	res := r.Resolve(node)

	var msg string
	switch res.Status {
	case MacroFound:
		return res.Output, nil
	case MacroNotFound:
		msg = fmt.Sprintf("Macro '%s' doesn't exist", node.Name)
	case MacroBadArgs:
		msg = fmt.Sprintf("Wrong macro arguments: %s for macro '%s' (maybe wrong macro tag syntax?)", quoteJSON(node.RawArgs), node.Name)
	case MacroFailed:
		msg = fmt.Sprintf("Macro '%s' error: %v", node.Name, errors.Unwrap(res.Err))
	}

	if r.opts.Verbose >= VerboseTrace {
		r.diagnose(node, res)
	}
	if r.opts.Debug {
		switch res.Status {
		case MacroFailed:
			return "", errors.Unwrap(res.Err)
		case MacroBadArgs:
			return "", res.Err
		}
	}
	if r.opts.Verbose >= VerboseErrors {
		return "[Error: " + msg + "]\n", nil
	}
	return "", nil
}

// diagnose writes a structured diagnostic followed by a stack trace to the
// sink: the panic stack when the macro panicked, otherwise the current one.
func (r *resolver) diagnose(node *MacroNode, res Resolution) {
	if r.diag == nil {
		r.sink = r.opts.Stderr
		if r.sink == nil {
			r.sink = os.Stderr
		}
		r.diag = log.NewWithOptions(r.sink, log.Options{Prefix: "creole"})
	}

	r.diag.Error("macro failed",
		"macro", node.Name,
		"line", node.Line,
		"block", node.Block,
		"error", res.Err)

	stack := debug.Stack()
	var exec *MacroExecutionError
	if errors.As(res.Err, &exec) && len(exec.Stack) > 0 {
		stack = exec.Stack
	}
	_, _ = r.sink.Write(stack)
}
