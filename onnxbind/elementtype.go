package onnxbind

import (
	"fmt"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// ElementType identifies the scalar data kind of a tensor's entries.
// Its numeric value is the engine's native type tag.
type ElementType api.ONNXTensorElementDataType

// Tensor element data types supported by ONNX Runtime.
const (
	ElementTypeUndefined  ElementType = 0
	ElementTypeFloat32    ElementType = 1
	ElementTypeUint8      ElementType = 2
	ElementTypeInt8       ElementType = 3
	ElementTypeUint16     ElementType = 4
	ElementTypeInt16      ElementType = 5
	ElementTypeInt32      ElementType = 6
	ElementTypeInt64      ElementType = 7
	ElementTypeString     ElementType = 8
	ElementTypeBool       ElementType = 9
	ElementTypeFloat16    ElementType = 10
	ElementTypeFloat64    ElementType = 11
	ElementTypeUint32     ElementType = 12
	ElementTypeUint64     ElementType = 13
	ElementTypeComplex64  ElementType = 14
	ElementTypeComplex128 ElementType = 15
	ElementTypeBFloat16   ElementType = 16
)

// elementWidths maps each defined element type to its byte width.
// The string type is absent: it has no fixed width.
var elementWidths = map[ElementType]int{
	ElementTypeFloat32:    4,
	ElementTypeUint8:      1,
	ElementTypeInt8:       1,
	ElementTypeUint16:     2,
	ElementTypeInt16:      2,
	ElementTypeInt32:      4,
	ElementTypeInt64:      8,
	ElementTypeBool:       1,
	ElementTypeFloat16:    2,
	ElementTypeFloat64:    8,
	ElementTypeUint32:     4,
	ElementTypeUint64:     8,
	ElementTypeComplex64:  8,
	ElementTypeComplex128: 16,
	ElementTypeBFloat16:   2,
}

// ElementTypeFromTag converts a raw integer tag into an ElementType.
// Tags outside the defined enumeration produce an UnknownTypeTagError rather
// than a panic: tags routinely arrive from untrusted model metadata.
func ElementTypeFromTag(tag int32) (ElementType, error) {
	t := ElementType(tag)
	if t == ElementTypeUndefined || t == ElementTypeString {
		return t, nil
	}
	if _, ok := elementWidths[t]; !ok {
		return ElementTypeUndefined, &UnknownTypeTagError{Tag: tag}
	}
	return t, nil
}

// Tag returns the element type's native tag value.
func (t ElementType) Tag() int32 {
	return int32(t)
}

// Width returns the byte width of a single element. It fails with
// ErrUnsupportedElementType for the string type, which has no fixed width,
// and with UnknownTypeTagError for tags outside the enumeration.
func (t ElementType) Width() (int, error) {
	if t == ElementTypeString {
		return 0, ErrUnsupportedElementType
	}
	if t == ElementTypeUndefined {
		return 0, ErrUnsupportedElementType
	}
	w, ok := elementWidths[t]
	if !ok {
		return 0, &UnknownTypeTagError{Tag: int32(t)}
	}
	return w, nil
}

func (t ElementType) String() string {
	switch t {
	case ElementTypeUndefined:
		return "undefined"
	case ElementTypeFloat32:
		return "float32"
	case ElementTypeUint8:
		return "uint8"
	case ElementTypeInt8:
		return "int8"
	case ElementTypeUint16:
		return "uint16"
	case ElementTypeInt16:
		return "int16"
	case ElementTypeInt32:
		return "int32"
	case ElementTypeInt64:
		return "int64"
	case ElementTypeString:
		return "string"
	case ElementTypeBool:
		return "bool"
	case ElementTypeFloat16:
		return "float16"
	case ElementTypeFloat64:
		return "float64"
	case ElementTypeUint32:
		return "uint32"
	case ElementTypeUint64:
		return "uint64"
	case ElementTypeComplex64:
		return "complex64"
	case ElementTypeComplex128:
		return "complex128"
	case ElementTypeBFloat16:
		return "bfloat16"
	default:
		return fmt.Sprintf("ElementType(%d)", int32(t))
	}
}

// TensorData is a type constraint for supported tensor data types.
// Float16 and BFloat16 are covered by ~uint16 since their underlying type is
// uint16; complex64/complex128 are covered directly.
type TensorData interface {
	~float32 | ~float64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~complex64 | ~complex128 |
		~bool
}

// elementTypeOf maps a Go element type onto the engine's type tag and byte
// width. ok is false for named types the switch cannot identify (the
// constraint admits any ~uint16, but only Float16 and BFloat16 carry a
// distinct tag).
func elementTypeOf[T TensorData]() (elemType ElementType, width uintptr, ok bool) {
	var zero T
	switch any(zero).(type) {
	case float32:
		return ElementTypeFloat32, 4, true
	case float64:
		return ElementTypeFloat64, 8, true
	case int8:
		return ElementTypeInt8, 1, true
	case int16:
		return ElementTypeInt16, 2, true
	case int32:
		return ElementTypeInt32, 4, true
	case int64:
		return ElementTypeInt64, 8, true
	case uint8:
		return ElementTypeUint8, 1, true
	case Float16:
		return ElementTypeFloat16, 2, true
	case BFloat16:
		return ElementTypeBFloat16, 2, true
	case uint16:
		return ElementTypeUint16, 2, true
	case uint32:
		return ElementTypeUint32, 4, true
	case uint64:
		return ElementTypeUint64, 8, true
	case complex64:
		return ElementTypeComplex64, 8, true
	case complex128:
		return ElementTypeComplex128, 16, true
	case bool:
		return ElementTypeBool, 1, true
	default:
		return ElementTypeUndefined, 0, false
	}
}
