package onnxbind

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
	v23 "github.com/substrate-ml/onnxbind/onnxbind/internal/api/v23"
)

// Runtime holds the ONNX Runtime C API function table and the default
// allocator. Every other type in this package reaches the native engine
// through a Runtime; nothing touches ambient global state.
//
// A Runtime is safe for concurrent use once created.
type Runtime struct {
	apiFuncs  api.APIFuncs
	allocator *allocator
}

// NewRuntime loads the ONNX Runtime shared library and resolves its function
// table. An empty libraryPath searches the standard system locations.
func NewRuntime(libraryPath string) (*Runtime, error) {
	handle, err := v23.LoadLibrary(libraryPath)
	if err != nil {
		return nil, err
	}

	funcs, err := v23.InitializeFuncs(handle)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API functions: %w", err)
	}

	return NewRuntimeWithAPI(funcs)
}

// NewRuntimeWithAPI creates a Runtime over an already-resolved function
// table. This is the injection point for substituting a fake native backend
// in tests.
func NewRuntimeWithAPI(funcs api.APIFuncs) (*Runtime, error) {
	if funcs == nil {
		return nil, errors.New("api funcs cannot be nil")
	}

	r := &Runtime{apiFuncs: funcs}

	var allocPtr api.OrtAllocator
	status := funcs.GetAllocatorWithDefaultOptions(&allocPtr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to get default allocator: %w", err)
	}
	r.allocator = &allocator{ptr: allocPtr, runtime: r}

	return r, nil
}

// statusError converts a native status into a RuntimeError, releasing the
// status object. A zero status means success and yields nil.
func (r *Runtime) statusError(status api.OrtStatus) error {
	if status == 0 {
		return nil
	}

	code := r.apiFuncs.GetErrorCode(status)
	msgPtr := r.apiFuncs.GetErrorMessage(status)
	msg := cStringToString((*byte)(msgPtr))
	r.apiFuncs.ReleaseStatus(status)

	return &RuntimeError{Code: code, Message: msg}
}

// GetAvailableProviders returns the names of the execution providers compiled
// into the loaded library.
func (r *Runtime) GetAvailableProviders() ([]string, error) {
	var providersPtr **byte
	var count int32
	status := r.apiFuncs.GetAvailableProviders(&providersPtr, &count)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to get available providers: %w", err)
	}

	providers := make([]string, 0, count)
	if providersPtr != nil && count > 0 {
		for _, p := range unsafe.Slice(providersPtr, count) {
			providers = append(providers, cStringToString(p))
		}
		status = r.apiFuncs.ReleaseAvailableProviders(providersPtr, count)
		if err := r.statusError(status); err != nil {
			return nil, fmt.Errorf("failed to release providers list: %w", err)
		}
	}

	return providers, nil
}

// Close releases runtime-scoped resources. The function table itself stays
// loaded for the life of the process.
func (r *Runtime) Close() {
	r.allocator = nil
}
