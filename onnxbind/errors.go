package onnxbind

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrNilBuffer is returned when a nil buffer is bound to a shape with a
	// nonzero element count. Zero-element shapes accept an empty buffer.
	ErrNilBuffer = errors.New("buffer is nil")

	// ErrTensorReleased is returned when a tensor handle is used after its
	// native reference has been released or its buffer taken back.
	ErrTensorReleased = errors.New("tensor has been released")

	// ErrImmutableBuffer is returned when a mutable view is requested from a
	// tensor bound over a read-only buffer.
	ErrImmutableBuffer = errors.New("tensor buffer is immutable")

	// ErrUnsupportedElementType is returned when an element type with no
	// fixed byte width (the string type) is used where a width is required.
	ErrUnsupportedElementType = errors.New("element type has no fixed byte width")

	// ErrNotATensor is returned when the engine reports a freshly created
	// value is not a tensor.
	ErrNotATensor = errors.New("native value is not a tensor")

	// ErrRunOptionsClosed is returned when a closed RunOptions is used.
	ErrRunOptionsClosed = errors.New("run options are closed")
)

// RuntimeError represents an error returned from the ONNX Runtime C API.
// The engine's diagnostic message is preserved verbatim.
type RuntimeError struct {
	Code    ErrorCode
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("onnxruntime error (%s): %s", errorCodeName(e.Code), e.Message)
}

// ShapeMismatchError reports a disagreement between a declared shape and the
// length of the buffer meant to back it.
type ShapeMismatchError struct {
	Shape []int64
	// Want is the length the shape requires: the element count for typed
	// binds, or the byte count for raw binds.
	Want int64
	// Got is the actual buffer length.
	Got int64
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape %v requires buffer length %d, got %d", e.Shape, e.Want, e.Got)
}

// UnknownTypeTagError reports an integer tag outside the defined element type
// enumeration, typically from untrusted model metadata.
type UnknownTypeTagError struct {
	Tag int32
}

func (e *UnknownTypeTagError) Error() string {
	return fmt.Sprintf("unknown element type tag %d", e.Tag)
}

// InvalidNameError reports a tensor name that cannot be represented as a
// C string.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("name %q contains an embedded NUL byte", e.Name)
}

// OutputCountMismatchError reports an output handle count that disagrees with
// the session's declared output count.
type OutputCountMismatchError struct {
	Declared int
	Got      int
}

func (e *OutputCountMismatchError) Error() string {
	return fmt.Sprintf("session declares %d outputs, got %d output handles", e.Declared, e.Got)
}

// IndexOutOfRangeError reports an index outside [0, Length) on a batch.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}

// errorCodeName returns a human-readable name for an error code.
func errorCodeName(code ErrorCode) string {
	switch code {
	case ErrorCodeOK:
		return "OK"
	case ErrorCodeFail:
		return "Fail"
	case ErrorCodeInvalidArgument:
		return "InvalidArgument"
	case ErrorCodeNoSuchFile:
		return "NoSuchFile"
	case ErrorCodeNoModel:
		return "NoModel"
	case ErrorCodeEngineError:
		return "EngineError"
	case ErrorCodeRuntimeException:
		return "RuntimeException"
	case ErrorCodeInvalidProtobuf:
		return "InvalidProtobuf"
	case ErrorCodeModelLoaded:
		return "ModelLoaded"
	case ErrorCodeNotImplemented:
		return "NotImplemented"
	case ErrorCodeInvalidGraph:
		return "InvalidGraph"
	case ErrorCodeEPFail:
		return "EPFail"
	default:
		return fmt.Sprintf("ErrorCode(%d)", code)
	}
}
