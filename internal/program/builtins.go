package program

import (
	"fmt"

	"github.com/tessera-run/tessera/internal/tensor"
)

// Builtin kernel names.
const (
	KernelIdentity       = "identity"
	KernelTensorAdd      = "tensor.add"
	KernelTensorScale    = "tensor.scale"
	KernelCtxDeviceCount = "ctx.device_count"
)

func registerBuiltins(r *Registry) {
	r.Register(KernelIdentity, identityKernel)
	r.Register(KernelTensorAdd, tensorAddKernel)
	r.Register(KernelTensorScale, tensorScaleKernel)
	r.Register(KernelCtxDeviceCount, ctxDeviceCountKernel)
}

// identityKernel passes every argument through as a result.
func identityKernel(args []any) ([]any, error) {
	out := make([]any, len(args))
	copy(out, args)
	return out, nil
}

func argTensor(args []any, i int) (*tensor.Tensor, error) {
	t, ok := args[i].(*tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("argument %d is %T, want tensor", i, args[i])
	}
	return t, nil
}

// tensorAddKernel adds two tensors of identical shape elementwise.
func tensorAddKernel(args []any) ([]any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("tensor.add takes 2 arguments, got %d", len(args))
	}
	a, err := argTensor(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := argTensor(args, 1)
	if err != nil {
		return nil, err
	}
	if a.Meta.String() != b.Meta.String() {
		return nil, fmt.Errorf("shape mismatch: %s vs %s", a.Meta, b.Meta)
	}

	data := make([]float64, len(a.Data))
	for i := range a.Data {
		data[i] = a.Data[i] + b.Data[i]
	}
	sum, err := tensor.New(a.Meta.Shape, data)
	if err != nil {
		return nil, err
	}
	return []any{sum}, nil
}

// tensorScaleKernel multiplies a tensor by a scalar tensor.
func tensorScaleKernel(args []any) ([]any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("tensor.scale takes 2 arguments, got %d", len(args))
	}
	a, err := argTensor(args, 0)
	if err != nil {
		return nil, err
	}
	factor, err := argTensor(args, 1)
	if err != nil {
		return nil, err
	}
	if len(factor.Data) != 1 {
		return nil, fmt.Errorf("scale factor must be a scalar, got %s", factor.Meta)
	}

	data := make([]float64, len(a.Data))
	for i := range a.Data {
		data[i] = a.Data[i] * factor.Data[0]
	}
	scaled, err := tensor.New(a.Meta.Shape, data)
	if err != nil {
		return nil, err
	}
	return []any{scaled}, nil
}

// ctxDeviceCountKernel reports the number of devices visible through the
// injected distributed context as a scalar tensor.
func ctxDeviceCountKernel(args []any) ([]any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("ctx.device_count needs the distributed context")
	}
	info, ok := args[0].(ContextInfo)
	if !ok {
		return nil, fmt.Errorf("argument 0 is %T, want distributed context", args[0])
	}
	return []any{tensor.Scalar(float64(len(info.DeviceNames())))}, nil
}
