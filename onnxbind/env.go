package onnxbind

import (
	"fmt"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// Env is the engine environment holding global state shared by all sessions:
// logging configuration and default thread pools.
type Env struct {
	ptr     api.OrtEnv
	runtime *Runtime
}

// NewEnv creates a new engine environment. logLevel controls log verbosity
// and logID tags log messages emitted by the engine.
func (r *Runtime) NewEnv(logID string, logLevel LoggingLevel) (*Env, error) {
	logIDBytes := append([]byte(logID), 0)
	var envPtr api.OrtEnv

	status := r.apiFuncs.CreateEnv(logLevel, &logIDBytes[0], &envPtr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}

	return &Env{
		ptr:     envPtr,
		runtime: r,
	}, nil
}

// Close releases the environment. Sessions created from it must be closed
// first.
func (e *Env) Close() {
	if e.ptr != 0 && e.runtime != nil && e.runtime.apiFuncs != nil {
		e.runtime.apiFuncs.ReleaseEnv(e.ptr)
		e.ptr = 0
	}
}
