package onnxbind

import (
	"fmt"
	"unsafe"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// allocator represents an ONNX Runtime allocator (internal use only)
type allocator struct {
	ptr     api.OrtAllocator
	runtime *Runtime
}

// free frees memory allocated by the allocator (internal use)
func (a *allocator) free(ptr unsafe.Pointer) {
	if a.runtime == nil || a.runtime.apiFuncs == nil || ptr == nil {
		return
	}

	a.runtime.apiFuncs.AllocatorFree(a.ptr, ptr)
}

// memoryInfo represents an ONNX Runtime memory-info descriptor. Every owned
// tensor creates one and releases it after the tensor value it describes.
type memoryInfo struct {
	ptr     api.OrtMemoryInfo
	runtime *Runtime
}

// newCPUMemoryInfo creates a CPU memory-info descriptor with an arena
// allocator and the default memory type, matching what the engine expects
// when wrapping external CPU buffers.
func (r *Runtime) newCPUMemoryInfo() (*memoryInfo, error) {
	var ptr api.OrtMemoryInfo
	status := r.apiFuncs.CreateCpuMemoryInfo(allocatorTypeArena, memTypeDefault, &ptr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create memory info: %w", err)
	}
	return &memoryInfo{ptr: ptr, runtime: r}, nil
}

// release releases the memory info. Safe to call more than once.
func (mi *memoryInfo) release() {
	if mi.ptr != 0 && mi.runtime != nil && mi.runtime.apiFuncs != nil {
		mi.runtime.apiFuncs.ReleaseMemoryInfo(mi.ptr)
		mi.ptr = 0
	}
}
