package onnxbind

import (
	"fmt"
	"sync"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// RunOptions configures individual inference runs. A single RunOptions may
// be shared by several concurrent runs on the same or different sessions;
// SetTerminate then cancels all of them at once.
//
// Passing a nil *RunOptions to a run means engine defaults.
type RunOptions struct {
	mu      sync.Mutex
	ptr     api.OrtRunOptions
	runtime *Runtime
}

// NewRunOptions creates an empty run options object.
func (r *Runtime) NewRunOptions() (*RunOptions, error) {
	var ptr api.OrtRunOptions
	status := r.apiFuncs.CreateRunOptions(&ptr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create run options: %w", err)
	}
	return &RunOptions{ptr: ptr, runtime: r}, nil
}

// SetTag sets a tag that the engine includes in log output for runs using
// these options.
func (o *RunOptions) SetTag(tag string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ptr == 0 {
		return ErrRunOptionsClosed
	}
	tagBytes := append([]byte(tag), 0)
	status := o.runtime.apiFuncs.RunOptionsSetRunTag(o.ptr, &tagBytes[0])
	if err := o.runtime.statusError(status); err != nil {
		return fmt.Errorf("failed to set run tag: %w", err)
	}
	return nil
}

// SetTerminate asks the engine to stop every in-flight run using these
// options as soon as possible. Terminated runs fail with a cancellation
// error from the engine.
func (o *RunOptions) SetTerminate() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ptr == 0 {
		return ErrRunOptionsClosed
	}
	status := o.runtime.apiFuncs.RunOptionsSetTerminate(o.ptr)
	if err := o.runtime.statusError(status); err != nil {
		return fmt.Errorf("failed to set terminate: %w", err)
	}
	return nil
}

// UnsetTerminate clears a previous SetTerminate so the options can be
// reused for new runs.
func (o *RunOptions) UnsetTerminate() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ptr == 0 {
		return ErrRunOptionsClosed
	}
	status := o.runtime.apiFuncs.RunOptionsUnsetTerminate(o.ptr)
	if err := o.runtime.statusError(status); err != nil {
		return fmt.Errorf("failed to unset terminate: %w", err)
	}
	return nil
}

// AddConfigEntry sets an engine-defined key-value configuration entry on
// these options.
func (o *RunOptions) AddConfigEntry(key, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ptr == 0 {
		return ErrRunOptionsClosed
	}
	keyBytes := append([]byte(key), 0)
	valBytes := append([]byte(value), 0)
	status := o.runtime.apiFuncs.AddRunConfigEntry(o.ptr, &keyBytes[0], &valBytes[0])
	if err := o.runtime.statusError(status); err != nil {
		return fmt.Errorf("failed to add run config entry %q: %w", key, err)
	}
	return nil
}

// nativeHandle returns the native handle, or 0 when closed. Callers must
// keep the RunOptions alive for the duration of the run.
func (o *RunOptions) nativeHandle() api.OrtRunOptions {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ptr
}

// Close releases the run options. It must not be called while a run using
// these options is in flight. Safe to call multiple times.
func (o *RunOptions) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ptr != 0 && o.runtime != nil && o.runtime.apiFuncs != nil {
		o.runtime.apiFuncs.ReleaseRunOptions(o.ptr)
		o.ptr = 0
	}
}
