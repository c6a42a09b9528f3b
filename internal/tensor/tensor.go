// Package tensor provides the minimal dense host tensor value that flows
// through program execution, along with the serialized metadata form used
// in execute responses.
package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// DTypeF64 is the element type of all builtin kernels. The metadata wire
// form carries the dtype as a string so other element types can be added
// without changing the encoding.
const DTypeF64 = "f64"

// Metadata describes a tensor's element type and shape without its data.
type Metadata struct {
	DType string  `json:"dtype"`
	Shape []int64 `json:"shape"`
}

// String serializes the metadata into its wire form, e.g. "f64[2,3]".
// A scalar serializes as "f64[]".
func (m Metadata) String() string {
	dims := make([]string, len(m.Shape))
	for i, d := range m.Shape {
		dims[i] = strconv.FormatInt(d, 10)
	}
	return m.DType + "[" + strings.Join(dims, ",") + "]"
}

// NumElements returns the product of the shape dimensions; 1 for scalars.
func (m Metadata) NumElements() int64 {
	n := int64(1)
	for _, d := range m.Shape {
		n *= d
	}
	return n
}

// ParseMetadata parses the wire form produced by Metadata.String.
func ParseMetadata(s string) (Metadata, error) {
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return Metadata{}, fmt.Errorf("malformed tensor metadata %q", s)
	}

	m := Metadata{DType: s[:open]}
	body := s[open+1 : len(s)-1]
	if body == "" {
		return m, nil
	}
	for _, part := range strings.Split(body, ",") {
		d, err := strconv.ParseInt(part, 10, 64)
		if err != nil || d < 0 {
			return Metadata{}, fmt.Errorf("malformed tensor dimension %q in %q", part, s)
		}
		m.Shape = append(m.Shape, d)
	}
	return m, nil
}

// Tensor is a dense host tensor with a flat row-major buffer.
type Tensor struct {
	Meta Metadata  `json:"meta"`
	Data []float64 `json:"data"`
}

// New builds a tensor after checking that the buffer length matches the
// shape's element count.
func New(shape []int64, data []float64) (*Tensor, error) {
	m := Metadata{DType: DTypeF64, Shape: shape}
	if int64(len(data)) != m.NumElements() {
		return nil, fmt.Errorf("tensor shape %v needs %d elements, got %d",
			shape, m.NumElements(), len(data))
	}
	return &Tensor{Meta: m, Data: data}, nil
}

// Scalar builds a rank-0 tensor holding a single value.
func Scalar(v float64) *Tensor {
	return &Tensor{
		Meta: Metadata{DType: DTypeF64},
		Data: []float64{v},
	}
}
