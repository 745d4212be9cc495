package onnxbind

import (
	"fmt"
	goruntime "runtime"
	"unsafe"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// Value is an engine-allocated value, typically a tensor produced as a run
// output. Unlike Tensor and RawTensor, the data lives in engine memory, so
// it must be copied out (GetTensorData) or used in place (GetTensorDataUnsafe)
// before the Value is closed.
//
// A Value is NOT safe for concurrent use. Do not share across goroutines.
//
// While a GC cleanup is registered as a safety net, always call Close
// explicitly (typically via defer) to release native memory promptly.
type Value struct {
	ptr     api.OrtValue
	infoPtr api.OrtTensorTypeAndShapeInfo
	runtime *Runtime
	cleanup goruntime.Cleanup
}

func (r *Runtime) newValueFromPtr(ptr api.OrtValue) *Value {
	v := &Value{
		ptr:     ptr,
		runtime: r,
	}
	v.cleanup = goruntime.AddCleanup(v, releaseNative, nativeRefs{
		funcs: r.apiFuncs,
		value: ptr,
	})
	return v
}

func (v *Value) initTensorTypeAndShapeInfo() error {
	if v.infoPtr != 0 {
		// already initialized
		return nil
	}
	if v.ptr == 0 {
		return ErrTensorReleased
	}

	var infoPtr api.OrtTensorTypeAndShapeInfo
	status := v.runtime.apiFuncs.GetTensorTypeAndShape(v.ptr, &infoPtr)
	if err := v.runtime.statusError(status); err != nil {
		return fmt.Errorf("failed to get tensor type and shape: %w", err)
	}
	v.infoPtr = infoPtr
	return nil
}

// getTensorMutableData returns a pointer to the tensor's underlying data buffer.
func (v *Value) getTensorMutableData() (unsafe.Pointer, error) {
	var dataPtr unsafe.Pointer
	status := v.runtime.apiFuncs.GetTensorMutableData(v.ptr, &dataPtr)
	if err := v.runtime.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to get tensor data: %w", err)
	}

	return dataPtr, nil
}

// GetValueType returns the type of the value (tensor, sequence, map, etc.).
func (v *Value) GetValueType() (ONNXType, error) {
	if v.ptr == 0 {
		return ONNXTypeUnknown, ErrTensorReleased
	}

	var valueType ONNXType
	status := v.runtime.apiFuncs.GetValueType(v.ptr, &valueType)
	if err := v.runtime.statusError(status); err != nil {
		return ONNXTypeUnknown, fmt.Errorf("failed to get value type: %w", err)
	}

	return valueType, nil
}

// GetTensorShape returns the shape (dimensions) of the tensor.
// For example, a 2x3 matrix returns [2, 3].
func (v *Value) GetTensorShape() ([]int64, error) {
	if err := v.initTensorTypeAndShapeInfo(); err != nil {
		return nil, err
	}

	var dimCount uintptr
	status := v.runtime.apiFuncs.GetDimensionsCount(v.infoPtr, &dimCount)
	if err := v.runtime.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to get dimensions count: %w", err)
	}

	dims := make([]int64, dimCount)
	if dimCount > 0 {
		status = v.runtime.apiFuncs.GetDimensions(v.infoPtr, &dims[0], dimCount)
		if err := v.runtime.statusError(status); err != nil {
			return nil, fmt.Errorf("failed to get dimensions: %w", err)
		}
	}

	return dims, nil
}

// GetTensorElementType returns the element type the engine reports for the
// tensor. An out-of-range tag from the engine is rejected rather than passed
// through.
func (v *Value) GetTensorElementType() (ElementType, error) {
	if err := v.initTensorTypeAndShapeInfo(); err != nil {
		return ElementTypeUndefined, err
	}

	var elemType api.ONNXTensorElementDataType
	status := v.runtime.apiFuncs.GetTensorElementType(v.infoPtr, &elemType)
	if err := v.runtime.statusError(status); err != nil {
		return ElementTypeUndefined, fmt.Errorf("failed to get element type: %w", err)
	}

	return ElementTypeFromTag(int32(elemType))
}

// GetTensorElementCount returns the total number of elements in the tensor.
// For example, a 2x3 matrix has 6 elements.
func (v *Value) GetTensorElementCount() (int, error) {
	if err := v.initTensorTypeAndShapeInfo(); err != nil {
		return 0, err
	}

	var count uintptr
	status := v.runtime.apiFuncs.GetTensorShapeElementCount(v.infoPtr, &count)
	if err := v.runtime.statusError(status); err != nil {
		return 0, fmt.Errorf("failed to get element count: %w", err)
	}

	return int(count), nil
}

// Close releases the value and associated resources.
// It is safe to call Close multiple times.
func (v *Value) Close() {
	if v.ptr != 0 {
		v.cleanup.Stop()
	}
	v.releaseValue()
	v.releaseInfo()
}

func (v *Value) releaseValue() {
	if v.ptr != 0 && v.runtime != nil && v.runtime.apiFuncs != nil {
		v.runtime.apiFuncs.ReleaseValue(v.ptr)
		v.ptr = 0
	}
}

func (v *Value) releaseInfo() {
	if v.infoPtr != 0 && v.runtime != nil && v.runtime.apiFuncs != nil {
		v.runtime.apiFuncs.ReleaseTensorTypeAndShapeInfo(v.infoPtr)
		v.infoPtr = 0
	}
}

// GetTensorDataUnsafe returns the tensor's data and shape without copying.
// The returned slice is backed directly by engine memory.
//
// WARNING: The returned slice is only valid while the Value is alive.
// Closing the Value invalidates the slice and any access after that is
// undefined behavior. Use [GetTensorData] for data that outlives the Value.
func GetTensorDataUnsafe[T TensorData](v *Value) ([]T, []int64, error) {
	shape, count, err := checkedTensorInfo[T](v)
	if err != nil {
		return nil, nil, err
	}

	dataPtr, err := v.getTensorMutableData()
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*T)(dataPtr), count)
	return data, shape, nil
}

// GetTensorData returns a copy of the tensor's data together with its shape.
// The copy is valid after the Value is closed.
func GetTensorData[T TensorData](v *Value) ([]T, []int64, error) {
	shape, count, err := checkedTensorInfo[T](v)
	if err != nil {
		return nil, nil, err
	}

	dataPtr, err := v.getTensorMutableData()
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*T)(dataPtr), count)
	result := make([]T, count)
	copy(result, data)

	return result, shape, nil
}

// checkedTensorInfo verifies the tensor's element type matches T and returns
// its shape and element count.
func checkedTensorInfo[T TensorData](v *Value) ([]int64, int, error) {
	shape, err := v.GetTensorShape()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get shape: %w", err)
	}

	elemType, err := v.GetTensorElementType()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get element type: %w", err)
	}

	wantType, _, ok := elementTypeOf[T]()
	if !ok {
		var zero T
		return nil, 0, fmt.Errorf("unsupported tensor data type %T", zero)
	}
	if elemType != wantType {
		return nil, 0, fmt.Errorf("element type mismatch: expected %s, got %s", wantType, elemType)
	}

	count, err := v.GetTensorElementCount()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get element count: %w", err)
	}

	return shape, count, nil
}
