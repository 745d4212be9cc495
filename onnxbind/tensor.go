package onnxbind

import (
	"fmt"
	"math"
	goruntime "runtime"
	"slices"
	"unsafe"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// Handle is the capability a TensorBatch needs from an owned tensor: access
// to its native reference while the handle is alive. Only tensors created by
// this package implement it.
type Handle interface {
	nativeRef() api.OrtValue

	// Close releases the native tensor reference. It is safe to call Close
	// multiple times. The backing buffer is never freed or mutated.
	Close()
}

// Tensor is a native tensor value bound zero-copy to a caller-supplied
// buffer. The Tensor owns the native reference and the memory-info
// descriptor it created; it holds, but never owns, the buffer. The buffer
// must not be grown, shrunk, or otherwise reallocated while the Tensor is
// alive, since the engine keeps the raw address.
//
// A Tensor is NOT safe for concurrent use, and a single Tensor must not be
// an input to one in-flight run and an output of another: the engine would
// read and write the same buffer without coordination.
//
// While a GC cleanup is registered as a safety net, always call Close
// (typically via defer) to release native memory promptly.
type Tensor[T TensorData] struct {
	ptr      api.OrtValue
	memInfo  *memoryInfo
	shape    []int64
	elemType ElementType
	data     []T
	mutable  bool
	runtime  *Runtime
	cleanup  goruntime.Cleanup
}

// BindTensor binds a read-only buffer to a new native tensor without copying.
// The declared shape's element count must equal len(data) exactly. The
// returned Tensor treats the buffer as immutable: ViewMut fails, and the
// engine must only use the tensor as a run input.
func BindTensor[T TensorData](r *Runtime, shape []int64, data []T) (*Tensor[T], error) {
	return bindTensor(r, shape, data, false)
}

// BindTensorMut binds a uniquely-owned mutable buffer to a new native tensor
// without copying. The tensor may be used as a run output; the engine writes
// results directly into the buffer.
func BindTensorMut[T TensorData](r *Runtime, shape []int64, data []T) (*Tensor[T], error) {
	return bindTensor(r, shape, data, true)
}

func bindTensor[T TensorData](r *Runtime, shape []int64, data []T, mutable bool) (*Tensor[T], error) {
	elemType, width, ok := elementTypeOf[T]()
	if !ok {
		var zero T
		return nil, fmt.Errorf("unsupported tensor data type %T", zero)
	}

	count, err := elementCount(shape)
	if err != nil {
		return nil, err
	}
	if data == nil && count > 0 {
		return nil, ErrNilBuffer
	}
	if int64(len(data)) != count {
		return nil, &ShapeMismatchError{Shape: slices.Clone(shape), Want: count, Got: int64(len(data))}
	}

	var dataPtr unsafe.Pointer
	if len(data) > 0 {
		dataPtr = unsafe.Pointer(&data[0])
	}

	ownedShape := slices.Clone(shape)
	valuePtr, memInfo, err := createTensorValue(r, ownedShape, dataPtr, uintptr(len(data))*width, elemType)
	if err != nil {
		return nil, err
	}

	t := &Tensor[T]{
		ptr:      valuePtr,
		memInfo:  memInfo,
		shape:    ownedShape,
		elemType: elemType,
		data:     data,
		mutable:  mutable,
		runtime:  r,
	}
	t.cleanup = goruntime.AddCleanup(t, releaseNative, nativeRefs{
		funcs:   r.apiFuncs,
		value:   valuePtr,
		memInfo: memInfo.ptr,
	})
	return t, nil
}

// View returns the backing buffer as a read-only slice. The slice must not
// be retained past the Tensor's lifetime.
func (t *Tensor[T]) View() ([]T, error) {
	if t.ptr == 0 {
		return nil, ErrTensorReleased
	}
	return t.data, nil
}

// ViewMut returns the backing buffer as a writable slice. It fails with
// ErrImmutableBuffer for tensors bound with BindTensor. The slice must not
// be retained past the Tensor's lifetime, and must not be written while a
// run using this tensor is in flight.
func (t *Tensor[T]) ViewMut() ([]T, error) {
	if t.ptr == 0 {
		return nil, ErrTensorReleased
	}
	if !t.mutable {
		return nil, ErrImmutableBuffer
	}
	return t.data, nil
}

// TakeBuffer releases the native tensor reference immediately and hands the
// backing buffer back to the caller, transferring ownership. The Tensor is
// unusable afterwards. This is the no-copy way to keep run results.
func (t *Tensor[T]) TakeBuffer() ([]T, error) {
	if t.ptr == 0 {
		return nil, ErrTensorReleased
	}
	buf := t.data
	t.data = nil
	t.Close()
	return buf, nil
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor[T]) Shape() []int64 {
	return slices.Clone(t.shape)
}

// ElementType returns the tensor's declared element type.
func (t *Tensor[T]) ElementType() ElementType {
	return t.elemType
}

// ElementCount returns the logical number of elements (the shape product).
func (t *Tensor[T]) ElementCount() int {
	return len(t.data)
}

func (t *Tensor[T]) nativeRef() api.OrtValue {
	return t.ptr
}

// Close releases the native tensor reference and then the memory-info
// descriptor, in that order, before the buffer itself can be collected.
// It is safe to call Close multiple times. The caller's buffer is untouched.
func (t *Tensor[T]) Close() {
	if t.ptr == 0 {
		return
	}
	t.cleanup.Stop()
	t.runtime.apiFuncs.ReleaseValue(t.ptr)
	t.ptr = 0
	t.memInfo.release()
}

// nativeRefs carries the raw native handles into a GC cleanup without
// keeping the owning tensor reachable.
type nativeRefs struct {
	funcs   api.APIFuncs
	value   api.OrtValue
	memInfo api.OrtMemoryInfo
}

func releaseNative(refs nativeRefs) {
	if refs.value != 0 {
		refs.funcs.ReleaseValue(refs.value)
	}
	if refs.memInfo != 0 {
		refs.funcs.ReleaseMemoryInfo(refs.memInfo)
	}
}

// createTensorValue asks the engine to wrap an external buffer as a tensor
// value. On any failure after creation the fresh native reference is
// released before returning, so error paths never leak engine state.
func createTensorValue(r *Runtime, shape []int64, dataPtr unsafe.Pointer, byteLen uintptr, elemType ElementType) (api.OrtValue, *memoryInfo, error) {
	memInfo, err := r.newCPUMemoryInfo()
	if err != nil {
		return 0, nil, err
	}

	var shapePtr *int64
	if len(shape) > 0 {
		shapePtr = &shape[0]
	}

	var valuePtr api.OrtValue
	status := r.apiFuncs.CreateTensorWithDataAsOrtValue(memInfo.ptr, dataPtr, byteLen, shapePtr, uintptr(len(shape)), api.ONNXTensorElementDataType(elemType), &valuePtr)
	if err := r.statusError(status); err != nil {
		memInfo.release()
		return 0, nil, fmt.Errorf("failed to create tensor: %w", err)
	}
	if valuePtr == 0 {
		memInfo.release()
		return 0, nil, fmt.Errorf("failed to create tensor: engine returned nil value")
	}

	// Defensive check: the engine must report the new value as a tensor.
	var isTensor int32
	status = r.apiFuncs.IsTensor(valuePtr, &isTensor)
	if err := r.statusError(status); err != nil {
		r.apiFuncs.ReleaseValue(valuePtr)
		memInfo.release()
		return 0, nil, fmt.Errorf("failed tensor check: %w", err)
	}
	if isTensor == 0 {
		r.apiFuncs.ReleaseValue(valuePtr)
		memInfo.release()
		return 0, nil, ErrNotATensor
	}

	return valuePtr, memInfo, nil
}

// elementCount returns the product of the shape's dimensions. A negative
// dimension is a recoverable validation error; a product that overflows
// int64 is a programming-contract breach and panics, since any byte-length
// computed from it would be meaningless.
func elementCount(shape []int64) (int64, error) {
	count := int64(1)
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("shape %v contains a negative dimension", shape)
		}
		if d != 0 && count > math.MaxInt64/d {
			panic(fmt.Sprintf("onnxbind: shape %v element count overflows int64", shape))
		}
		count *= d
	}
	return count, nil
}
