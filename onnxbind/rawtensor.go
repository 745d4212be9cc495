package onnxbind

import (
	"fmt"
	goruntime "runtime"
	"slices"
	"unsafe"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// RawTensor is a native tensor bound zero-copy to a caller-supplied byte
// buffer with an explicitly declared element type. It is the escape hatch
// for element types with no natural Go representation, such as half
// precision floats produced by another library. String tensors cannot be
// bound this way: their engine representation is not a flat byte buffer.
//
// The same aliasing and lifetime rules as Tensor apply.
type RawTensor struct {
	ptr      api.OrtValue
	memInfo  *memoryInfo
	shape    []int64
	elemType ElementType
	data     []byte
	mutable  bool
	runtime  *Runtime
	cleanup  goruntime.Cleanup
}

// BindRawTensor binds a read-only byte buffer to a new native tensor of the
// declared element type. len(data) must equal the shape's element count
// times the element width exactly.
func BindRawTensor(r *Runtime, shape []int64, data []byte, elemType ElementType) (*RawTensor, error) {
	return bindRawTensor(r, shape, data, elemType, false)
}

// BindRawTensorMut binds a uniquely-owned mutable byte buffer, allowing the
// tensor to be used as a run output.
func BindRawTensorMut(r *Runtime, shape []int64, data []byte, elemType ElementType) (*RawTensor, error) {
	return bindRawTensor(r, shape, data, elemType, true)
}

func bindRawTensor(r *Runtime, shape []int64, data []byte, elemType ElementType, mutable bool) (*RawTensor, error) {
	width, err := elemType.Width()
	if err != nil {
		return nil, fmt.Errorf("cannot bind raw %s tensor: %w", elemType, err)
	}

	count, err := elementCount(shape)
	if err != nil {
		return nil, err
	}
	wantBytes := count * int64(width)
	if data == nil && wantBytes > 0 {
		return nil, ErrNilBuffer
	}
	if int64(len(data)) != wantBytes {
		return nil, &ShapeMismatchError{Shape: slices.Clone(shape), Want: wantBytes, Got: int64(len(data))}
	}

	var dataPtr unsafe.Pointer
	if len(data) > 0 {
		dataPtr = unsafe.Pointer(&data[0])
	}

	ownedShape := slices.Clone(shape)
	valuePtr, memInfo, err := createTensorValue(r, ownedShape, dataPtr, uintptr(len(data)), elemType)
	if err != nil {
		return nil, err
	}

	t := &RawTensor{
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

// Bytes returns the backing buffer as a read-only slice.
func (t *RawTensor) Bytes() ([]byte, error) {
	if t.ptr == 0 {
		return nil, ErrTensorReleased
	}
	return t.data, nil
}

// BytesMut returns the backing buffer as a writable slice. It fails with
// ErrImmutableBuffer for tensors bound with BindRawTensor.
func (t *RawTensor) BytesMut() ([]byte, error) {
	if t.ptr == 0 {
		return nil, ErrTensorReleased
	}
	if !t.mutable {
		return nil, ErrImmutableBuffer
	}
	return t.data, nil
}

// TakeBuffer releases the native tensor reference and hands the backing
// buffer back to the caller, transferring ownership.
func (t *RawTensor) TakeBuffer() ([]byte, error) {
	if t.ptr == 0 {
		return nil, ErrTensorReleased
	}
	buf := t.data
	t.data = nil
	t.Close()
	return buf, nil
}

// Shape returns a copy of the tensor's shape.
func (t *RawTensor) Shape() []int64 {
	return slices.Clone(t.shape)
}

// ElementType returns the declared element type.
func (t *RawTensor) ElementType() ElementType {
	return t.elemType
}

func (t *RawTensor) nativeRef() api.OrtValue {
	return t.ptr
}

// Close releases the native tensor reference and the memory-info descriptor.
// Safe to call multiple times.
func (t *RawTensor) Close() {
	if t.ptr == 0 {
		return
	}
	t.cleanup.Stop()
	t.runtime.apiFuncs.ReleaseValue(t.ptr)
	t.ptr = 0
	t.memInfo.release()
}
