package program

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Compile translates textual program source into compiled bytes suitable
// for Load. The source is line oriented, one entry function per line:
//
//	fn double(tensor, tensor) -> (tensor) = tensor.add
//
// Blank lines and lines starting with '#' are ignored. Compile does not
// resolve kernel names; that happens at load time against the worker's
// registry, since peers may compile for workers with different kernels.
func Compile(source string) ([]byte, error) {
	var fns []*Function
	for ln, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn, err := parseFunctionLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln+1, err)
		}
		fns = append(fns, fn)
	}
	if len(fns) == 0 {
		return nil, fmt.Errorf("source declares no functions")
	}

	seen := make(map[string]bool, len(fns))
	for _, fn := range fns {
		if seen[fn.Name] {
			return nil, fmt.Errorf("duplicate function %q", fn.Name)
		}
		seen[fn.Name] = true
	}

	return encode(fns), nil
}

// parseFunctionLine parses one "fn NAME(args) -> (results) = KERNEL" line.
func parseFunctionLine(line string) (*Function, error) {
	rest, ok := strings.CutPrefix(line, "fn ")
	if !ok {
		return nil, fmt.Errorf("expected 'fn', got %q", line)
	}

	sig, kernel, ok := cutLast(rest, "=")
	if !ok {
		return nil, fmt.Errorf("missing '= kernel' in %q", line)
	}
	kernel = strings.TrimSpace(kernel)
	if kernel == "" {
		return nil, fmt.Errorf("empty kernel name in %q", line)
	}

	argPart, resPart, ok := strings.Cut(sig, "->")
	if !ok {
		return nil, fmt.Errorf("missing '->' in %q", line)
	}

	name, argList, err := splitCall(strings.TrimSpace(argPart))
	if err != nil {
		return nil, err
	}
	args, err := parseTypeList(argList)
	if err != nil {
		return nil, err
	}

	results, err := parseTypeList(strings.TrimSpace(resPart))
	if err != nil {
		return nil, err
	}

	// The distributed context may only appear as the implicit first
	// argument, never later and never as a result.
	for i, t := range args[min(1, len(args)):] {
		if t == TypeDistContext {
			return nil, fmt.Errorf("ctx must be argument 0, found at %d", i+1)
		}
	}
	for _, t := range results {
		if t == TypeDistContext {
			return nil, fmt.Errorf("ctx is not a valid result type")
		}
	}

	return &Function{Name: name, Kernel: kernel, Args: args, Results: results}, nil
}

// splitCall breaks "name(a, b)" into its name and argument list body.
func splitCall(s string) (name, body string, err error) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", "", fmt.Errorf("malformed function signature %q", s)
	}
	name = strings.TrimSpace(s[:open])
	if name == "" {
		return "", "", fmt.Errorf("missing function name in %q", s)
	}
	return name, s[open+1 : len(s)-1], nil
}

// parseTypeList parses "(tensor, i64)" or "tensor, i64" into types.
func parseTypeList(s string) ([]Type, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	types := make([]Type, 0, len(parts))
	for _, part := range parts {
		t, err := ParseType(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// cutLast splits s around the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// encode serializes functions into the compiled wire format. The layout
// is the magic followed by a uvarint function count, then per function:
// name, kernel name, argument types, result types, each length-prefixed.
func encode(fns []*Function) []byte {
	buf := []byte(compiledMagic)
	buf = binary.AppendUvarint(buf, uint64(len(fns)))
	for _, fn := range fns {
		buf = appendString(buf, fn.Name)
		buf = appendString(buf, fn.Kernel)
		buf = appendTypes(buf, fn.Args)
		buf = appendTypes(buf, fn.Results)
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendTypes(buf []byte, types []Type) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(types)))
	for _, t := range types {
		buf = append(buf, byte(t))
	}
	return buf
}
