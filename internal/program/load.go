package program

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// compiledMagic identifies the compiled program wire format.
const compiledMagic = "TPB1"

// maxDecodedLen bounds every length prefix in the compiled format so a
// corrupt buffer cannot trigger a huge allocation.
const maxDecodedLen = 1 << 20

// Load parses compiled bytes into an invocable Program, binding each
// function body to its kernel in the registry. The returned program does
// not retain buf; callers that need the raw bytes (the program cache
// keeps them alongside the parsed form) hold them separately.
func Load(name string, buf []byte, registry *Registry) (*Program, error) {
	r := bytes.NewReader(buf)

	magic := make([]byte, len(compiledMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != compiledMagic {
		return nil, fmt.Errorf("not a compiled program: bad magic")
	}

	count, err := readLen(r)
	if err != nil {
		return nil, fmt.Errorf("read function count: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("compiled program declares no functions")
	}

	p := &Program{Name: name, functions: make(map[string]*Function, count)}
	for i := 0; i < count; i++ {
		fn, err := readFunction(r)
		if err != nil {
			return nil, fmt.Errorf("read function %d: %w", i, err)
		}
		impl, ok := registry.Lookup(fn.Kernel)
		if !ok {
			return nil, fmt.Errorf("function %q uses unknown kernel %q", fn.Name, fn.Kernel)
		}
		fn.impl = impl
		p.functions[fn.Name] = fn
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after last function", r.Len())
	}
	return p, nil
}

func readFunction(r *bytes.Reader) (*Function, error) {
	name, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	kernel, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	args, err := readTypes(r)
	if err != nil {
		return nil, fmt.Errorf("argument types: %w", err)
	}
	results, err := readTypes(r)
	if err != nil {
		return nil, fmt.Errorf("result types: %w", err)
	}
	return &Function{Name: name, Kernel: kernel, Args: args, Results: results}, nil
}

func readLen(r *bytes.Reader) (int, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	if n > maxDecodedLen {
		return 0, fmt.Errorf("length %d exceeds limit", n)
	}
	return int(n), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readLen(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readTypes(r *bytes.Reader) ([]Type, error) {
	n, err := readLen(r)
	if err != nil {
		return nil, err
	}
	types := make([]Type, 0, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		t := Type(b)
		if t != TypeTensor && t != TypeI64 && t != TypeDistContext {
			return nil, fmt.Errorf("invalid type byte %d", b)
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, nil
	}
	return types, nil
}
