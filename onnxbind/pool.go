package onnxbind

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// SessionPool manages a pool of inference sessions for safe concurrent use.
// Each goroutine borrows a session, runs inference, and returns it
// automatically.
//
// Example:
//
//	pool, err := onnxbind.NewSessionPool(runtime, env, modelBytes, 8, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	// Safe to call from many goroutines:
//	err = pool.Invoke(ctx, inputs, outputs, nil)
type SessionPool struct {
	sessions chan *Session
	runtime  *Runtime
	closed   atomic.Bool
	hooks    []Hook

	// metrics
	totalRuns    atomic.Int64
	totalErrors  atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// PoolConfig configures session pool behavior.
type PoolConfig struct {
	// SessionOptions applied to every session in the pool.
	SessionOptions *SessionOptions

	// Hooks are called around every run borrowed through the pool, in
	// addition to any hooks configured on the sessions themselves.
	Hooks []Hook
}

// NewSessionPool creates a pool of n sessions from the given model data.
// All sessions share the same Runtime and Env but are independent for
// concurrent use.
func NewSessionPool(runtime *Runtime, env *Env, modelData []byte, n int, config *PoolConfig) (*SessionPool, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", n)
	}
	if len(modelData) == 0 {
		return nil, fmt.Errorf("model data cannot be empty")
	}

	var opts *SessionOptions
	var hooks []Hook
	if config != nil {
		opts = config.SessionOptions
		hooks = config.Hooks
	}

	pool := &SessionPool{
		sessions: make(chan *Session, n),
		runtime:  runtime,
		hooks:    hooks,
	}

	for i := 0; i < n; i++ {
		session, err := runtime.NewSessionFromReader(env, bytes.NewReader(modelData), opts)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create session %d: %w", i, err)
		}
		pool.sessions <- session
	}

	return pool, nil
}

// NewSessionPoolFromFile creates a pool of n sessions from a model file path.
func NewSessionPoolFromFile(runtime *Runtime, env *Env, modelPath string, n int, config *PoolConfig) (*SessionPool, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", n)
	}

	var opts *SessionOptions
	var hooks []Hook
	if config != nil {
		opts = config.SessionOptions
		hooks = config.Hooks
	}

	pool := &SessionPool{
		sessions: make(chan *Session, n),
		runtime:  runtime,
		hooks:    hooks,
	}

	for i := 0; i < n; i++ {
		session, err := runtime.NewSession(env, modelPath, opts)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create session %d: %w", i, err)
		}
		pool.sessions <- session
	}

	return pool, nil
}

// borrow takes a session from the pool, blocking until one is available or
// ctx is cancelled.
func (p *SessionPool) borrow(ctx context.Context) (*Session, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("session pool is closed")
	}
	select {
	case session := <-p.sessions:
		return session, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *SessionPool) giveBack(session *Session) {
	if !p.closed.Load() {
		p.sessions <- session
	}
}

// Invoke borrows a session, executes the model against pre-bound input and
// output tensors, and returns the session. Results land in the output
// tensors' buffers. Safe to call from multiple goroutines concurrently; the
// tensors themselves must not be shared between concurrent calls.
func (p *SessionPool) Invoke(ctx context.Context, inputs, outputs *TensorBatch, opts *RunOptions) error {
	session, err := p.borrow(ctx)
	if err != nil {
		return err
	}
	defer p.giveBack(session)

	info := &RunInfo{
		InputNames:  session.InputNames(),
		OutputNames: session.OutputNames(),
	}
	for _, h := range p.hooks {
		h.BeforeRun(info)
	}

	start := time.Now()
	err = session.Invoke(ctx, inputs, outputs, opts)
	elapsed := time.Since(start)

	info.Duration = elapsed
	info.Error = err
	p.recordRun(elapsed, err)

	for _, h := range p.hooks {
		h.AfterRun(info)
	}
	return err
}

// Run borrows a session, executes inference with engine-allocated outputs,
// and returns the session. Safe to call from multiple goroutines
// concurrently.
func (p *SessionPool) Run(ctx context.Context, inputs map[string]Handle, opts ...RunOption) (map[string]*Value, error) {
	session, err := p.borrow(ctx)
	if err != nil {
		return nil, err
	}
	defer p.giveBack(session)

	info := &RunInfo{
		InputNames: keys(inputs),
	}
	for _, h := range p.hooks {
		h.BeforeRun(info)
	}

	start := time.Now()
	outputs, err := session.Run(ctx, inputs, opts...)
	elapsed := time.Since(start)

	info.Duration = elapsed
	info.Error = err
	if outputs != nil {
		info.OutputNames = keys(outputs)
	}
	p.recordRun(elapsed, err)

	for _, h := range p.hooks {
		h.AfterRun(info)
	}

	return outputs, err
}

func (p *SessionPool) recordRun(elapsed time.Duration, err error) {
	p.totalRuns.Add(1)
	p.totalLatency.Add(int64(elapsed))
	if err != nil {
		p.totalErrors.Add(1)
	}
}

// Size returns the total number of sessions in the pool.
func (p *SessionPool) Size() int {
	return cap(p.sessions)
}

// Available returns the number of idle sessions currently available.
func (p *SessionPool) Available() int {
	return len(p.sessions)
}

// Stats returns pool usage statistics.
func (p *SessionPool) Stats() PoolStats {
	return PoolStats{
		TotalRuns:         p.totalRuns.Load(),
		TotalErrors:       p.totalErrors.Load(),
		TotalLatency:      time.Duration(p.totalLatency.Load()),
		PoolSize:          cap(p.sessions),
		AvailableSessions: len(p.sessions),
	}
}

// PoolStats contains pool usage statistics.
type PoolStats struct {
	TotalRuns         int64
	TotalErrors       int64
	TotalLatency      time.Duration
	PoolSize          int
	AvailableSessions int
}

// AvgLatency returns the average inference latency, or 0 if no runs have completed.
func (s PoolStats) AvgLatency() time.Duration {
	if s.TotalRuns == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.TotalRuns)
}

// Close drains the pool and closes all sessions.
func (p *SessionPool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}

	close(p.sessions)
	for session := range p.sessions {
		session.Close()
	}
}

// InputNames returns the model's input names (from the first session).
// Returns nil if the pool is closed.
func (p *SessionPool) InputNames() []string {
	if p.closed.Load() {
		return nil
	}

	session := <-p.sessions
	names := session.InputNames()
	p.sessions <- session
	return names
}

// OutputNames returns the model's output names (from the first session).
// Returns nil if the pool is closed.
func (p *SessionPool) OutputNames() []string {
	if p.closed.Load() {
		return nil
	}

	session := <-p.sessions
	names := session.OutputNames()
	p.sessions <- session
	return names
}

func keys[V any](m map[string]V) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}
