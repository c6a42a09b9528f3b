// Package program defines the compiled-program representation the worker
// caches and invokes: typed entry-function signatures, the kernel registry
// that binds function bodies to host implementations, and the compiler and
// loader for the compiled wire format.
package program

import (
	"fmt"
	"sort"
)

// Type is the declared type of a function argument or result.
type Type uint8

const (
	TypeInvalid Type = iota

	// TypeTensor is a dense host tensor. It is the only type whose
	// metadata can be serialized into an execute response.
	TypeTensor

	// TypeI64 is a 64-bit integer value.
	TypeI64

	// TypeDistContext is the distributed-context capability type. A
	// function whose first declared argument is TypeDistContext receives
	// the worker's own context injected as argument 0; callers never
	// supply it.
	TypeDistContext
)

func (t Type) String() string {
	switch t {
	case TypeTensor:
		return "tensor"
	case TypeI64:
		return "i64"
	case TypeDistContext:
		return "ctx"
	default:
		return "invalid"
	}
}

// ParseType parses the textual form used in program source.
func ParseType(s string) (Type, error) {
	switch s {
	case "tensor":
		return TypeTensor, nil
	case "i64":
		return TypeI64, nil
	case "ctx":
		return TypeDistContext, nil
	default:
		return TypeInvalid, fmt.Errorf("unknown type %q", s)
	}
}

// Kernel is the host-callable implementation an entry function binds to.
// It receives resolved argument values and returns one value per declared
// result.
type Kernel func(args []any) ([]any, error)

// ContextInfo is the view of the distributed context available to kernels
// that declare a ctx argument.
type ContextInfo interface {
	WorkerName() string
	DeviceNames() []string
}

// Function is a named, independently invocable unit within a compiled
// program, with a fixed argument/result type signature.
type Function struct {
	Name    string
	Kernel  string
	Args    []Type
	Results []Type

	impl Kernel
}

// Call runs the function's kernel and checks that it produced exactly the
// declared number of results.
func (f *Function) Call(args []any) ([]any, error) {
	out, err := f.impl(args)
	if err != nil {
		return nil, fmt.Errorf("kernel %s: %w", f.Kernel, err)
	}
	if len(out) != len(f.Results) {
		return nil, fmt.Errorf("kernel %s returned %d values, declared %d results",
			f.Kernel, len(out), len(f.Results))
	}
	return out, nil
}

// Program is the parsed, invocable representation of compiled bytes.
// Immutable once loaded.
type Program struct {
	Name string

	functions map[string]*Function
}

// Function returns the entry function with the given name, or nil when
// the program declares no such function.
func (p *Program) Function(name string) *Function {
	return p.functions[name]
}

// Functions returns the program's entry functions sorted by name.
func (p *Program) Functions() []*Function {
	fns := make([]*Function, 0, len(p.functions))
	for _, f := range p.functions {
		fns = append(fns, f)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
	return fns
}
