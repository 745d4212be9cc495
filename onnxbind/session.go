package onnxbind

import (
	"context"
	"errors"
	"fmt"
	"io"
	goruntime "runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// ExecutionProvider specifies an execution provider and its configuration options.
type ExecutionProvider struct {
	// Name is the execution provider name (e.g., "CPUExecutionProvider", "CUDAExecutionProvider").
	Name string

	// Options is an optional map of key-value configuration options for this
	// provider. If nil, the provider is configured with default settings.
	Options map[string]string
}

// SessionOptions configures options for creating an inference session.
type SessionOptions struct {
	// IntraOpNumThreads sets the number of threads used for parallelizing
	// execution within nodes. A value of 0 uses the default number of threads.
	IntraOpNumThreads int

	// InterOpNumThreads sets the number of threads used for parallelizing
	// execution of the graph (across nodes). A value of 0 uses the default.
	InterOpNumThreads int

	// ExecutionProviders specifies the execution providers to use, in order
	// of preference. If empty, the default provider(s) will be used.
	ExecutionProviders []ExecutionProvider

	// GraphOptimization sets the graph optimization level.
	// Zero value (GraphOptimizationDisabled) means no optimization.
	GraphOptimization GraphOptimizationLevel

	// ExecutionMode controls sequential vs parallel operator execution.
	// Zero value (ExecutionModeSequential) means sequential.
	ExecutionMode ExecutionMode

	// CpuMemArena controls whether the CPU memory arena is enabled.
	// nil means use the engine default (enabled). Explicit true/false overrides.
	CpuMemArena *bool

	// MemPattern controls whether memory pattern optimization is enabled.
	// nil means use the engine default (enabled). Explicit true/false overrides.
	MemPattern *bool

	// LogSeverityLevel overrides the session's log severity level.
	// nil means use the environment default.
	LogSeverityLevel *LoggingLevel

	// FreeDimensionOverrides fixes symbolic dimensions by name at session
	// creation time. Keys are symbolic dimension names (e.g., "batch_size"),
	// values are the fixed sizes.
	FreeDimensionOverrides map[string]int64

	// ConfigEntries provides arbitrary key-value configuration entries.
	ConfigEntries map[string]string

	// Hooks are called around every run on the session, in order.
	Hooks []Hook
}

// Session is an inference session over a loaded model. It executes the model
// against caller-bound input tensors, writing either into pre-bound output
// tensors or into engine-allocated values.
//
// A Session is NOT safe for concurrent use from multiple goroutines. For
// concurrent inference, create separate Sessions (see SessionPool) or
// synchronize access externally.
type Session struct {
	ptr     api.OrtSession
	runtime *Runtime
	hooks   []Hook
	cleanup goruntime.Cleanup

	// declared model interface, cached at creation
	inputNames  []string
	outputNames []string
	inputTable  *NameTable
	outputTable *NameTable
}

// NewSession creates a new inference session from a model file.
func (r *Runtime) NewSession(env *Env, modelPath string, options *SessionOptions) (*Session, error) {
	var optsPtr api.OrtSessionOptions
	if options != nil {
		status := r.apiFuncs.CreateSessionOptions(&optsPtr)
		if err := r.statusError(status); err != nil {
			return nil, fmt.Errorf("failed to create session options: %w", err)
		}
		defer func() {
			if optsPtr != 0 {
				r.apiFuncs.ReleaseSessionOptions(optsPtr)
			}
		}()

		if err := r.configureSessionOptions(optsPtr, options); err != nil {
			return nil, err
		}
	}

	modelPathBytes := append([]byte(modelPath), 0)
	var sessionPtr api.OrtSession

	status := r.apiFuncs.CreateSession(env.ptr, &modelPathBytes[0], optsPtr, &sessionPtr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return r.finishSession(sessionPtr, options)
}

// NewSessionFromReader creates a new inference session from a model loaded
// from modelReader. options configures session-specific settings and may be
// nil for defaults.
func (r *Runtime) NewSessionFromReader(env *Env, modelReader io.Reader, options *SessionOptions) (*Session, error) {
	modelData, err := io.ReadAll(modelReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read model data: %w", err)
	}
	if len(modelData) == 0 {
		return nil, fmt.Errorf("model data cannot be empty")
	}

	var optsPtr api.OrtSessionOptions
	if options != nil {
		status := r.apiFuncs.CreateSessionOptions(&optsPtr)
		if err := r.statusError(status); err != nil {
			return nil, fmt.Errorf("failed to create session options: %w", err)
		}
		defer func() {
			if optsPtr != 0 {
				r.apiFuncs.ReleaseSessionOptions(optsPtr)
			}
		}()

		if err := r.configureSessionOptions(optsPtr, options); err != nil {
			return nil, err
		}
	}

	var sessionPtr api.OrtSession
	status := r.apiFuncs.CreateSessionFromArray(env.ptr, unsafe.Pointer(&modelData[0]), uintptr(len(modelData)), optsPtr, &sessionPtr)
	if err := r.statusError(status); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	goruntime.KeepAlive(modelData)

	return r.finishSession(sessionPtr, options)
}

func (r *Runtime) finishSession(sessionPtr api.OrtSession, options *SessionOptions) (*Session, error) {
	session := &Session{
		ptr:     sessionPtr,
		runtime: r,
	}
	if options != nil {
		session.hooks = options.Hooks
	}
	session.cleanup = goruntime.AddCleanup(session, func(refs sessionRefs) {
		refs.funcs.ReleaseSession(refs.session)
	}, sessionRefs{funcs: r.apiFuncs, session: sessionPtr})

	if err := session.initializeMetadata(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to initialize session metadata: %w", err)
	}
	return session, nil
}

type sessionRefs struct {
	funcs   api.APIFuncs
	session api.OrtSession
}

// initializeMetadata caches the declared input and output names and builds
// the name tables used for runs addressed by declared order.
func (s *Session) initializeMetadata() error {
	inputCount, err := s.getInputCount()
	if err != nil {
		return fmt.Errorf("failed to get input count: %w", err)
	}

	s.inputNames = make([]string, inputCount)
	for i := range inputCount {
		name, err := s.getInputName(i)
		if err != nil {
			return fmt.Errorf("failed to get input name at index %d: %w", i, err)
		}
		s.inputNames[i] = name
	}

	outputCount, err := s.getOutputCount()
	if err != nil {
		return fmt.Errorf("failed to get output count: %w", err)
	}

	s.outputNames = make([]string, outputCount)
	for i := range outputCount {
		name, err := s.getOutputName(i)
		if err != nil {
			return fmt.Errorf("failed to get output name at index %d: %w", i, err)
		}
		s.outputNames[i] = name
	}

	if s.inputTable, err = BuildNameTable(s.inputNames); err != nil {
		return fmt.Errorf("failed to build input name table: %w", err)
	}
	if s.outputTable, err = BuildNameTable(s.outputNames); err != nil {
		return fmt.Errorf("failed to build output name table: %w", err)
	}
	return nil
}

// InputNames returns all input names declared by the model, in order.
func (s *Session) InputNames() []string {
	return s.inputNames
}

// OutputNames returns all output names declared by the model, in order.
func (s *Session) OutputNames() []string {
	return s.outputNames
}

func (s *Session) getInputCount() (int, error) {
	if s.ptr == 0 {
		return 0, ErrSessionClosed
	}

	var count uintptr
	status := s.runtime.apiFuncs.SessionGetInputCount(s.ptr, &count)
	if err := s.runtime.statusError(status); err != nil {
		return 0, fmt.Errorf("failed to get input count: %w", err)
	}

	return int(count), nil
}

func (s *Session) getOutputCount() (int, error) {
	if s.ptr == 0 {
		return 0, ErrSessionClosed
	}

	var count uintptr
	status := s.runtime.apiFuncs.SessionGetOutputCount(s.ptr, &count)
	if err := s.runtime.statusError(status); err != nil {
		return 0, fmt.Errorf("failed to get output count: %w", err)
	}

	return int(count), nil
}

func (s *Session) getInputName(index int) (string, error) {
	if s.ptr == 0 {
		return "", ErrSessionClosed
	}
	if s.runtime.allocator == nil {
		return "", errors.New("allocator not initialized")
	}

	var namePtr *byte
	status := s.runtime.apiFuncs.SessionGetInputName(s.ptr, uintptr(index), s.runtime.allocator.ptr, &namePtr)
	if err := s.runtime.statusError(status); err != nil {
		return "", fmt.Errorf("failed to get input name: %w", err)
	}

	name := cStringToString(namePtr)
	s.runtime.allocator.free(unsafe.Pointer(namePtr))
	return name, nil
}

func (s *Session) getOutputName(index int) (string, error) {
	if s.ptr == 0 {
		return "", ErrSessionClosed
	}
	if s.runtime.allocator == nil {
		return "", errors.New("allocator not initialized")
	}

	var namePtr *byte
	status := s.runtime.apiFuncs.SessionGetOutputName(s.ptr, uintptr(index), s.runtime.allocator.ptr, &namePtr)
	if err := s.runtime.statusError(status); err != nil {
		return "", fmt.Errorf("failed to get output name: %w", err)
	}

	name := cStringToString(namePtr)
	s.runtime.allocator.free(unsafe.Pointer(namePtr))
	return name, nil
}

// Invoke executes the model with inputs and outputs addressed by declared
// order: inputs[i] backs the model's i-th declared input, outputs[i] the
// i-th declared output. The engine writes results directly into the output
// tensors' buffers; nothing is copied and nothing is allocated by the
// engine.
//
// The output batch length must equal the session's declared output count;
// the check happens before any native call. A nil opts means engine
// defaults. If ctx is cancellable, cancellation terminates the run.
func (s *Session) Invoke(ctx context.Context, inputs, outputs *TensorBatch, opts *RunOptions) error {
	if s.ptr == 0 {
		return ErrSessionClosed
	}
	if outputs.Len() != len(s.outputNames) {
		return &OutputCountMismatchError{Declared: len(s.outputNames), Got: outputs.Len()}
	}
	if inputs.Len() != len(s.inputNames) {
		return fmt.Errorf("session declares %d inputs, got %d input handles", len(s.inputNames), inputs.Len())
	}
	return s.invoke(ctx, s.inputTable, inputs, s.outputTable, outputs, opts)
}

// InvokeNamed executes the model with explicitly named inputs and outputs:
// inputNames[i] names the tensor backing inputs[i], and likewise for
// outputs. This allows feeding a subset of inputs or computing a subset of
// outputs. Each name table length must match its batch length.
func (s *Session) InvokeNamed(ctx context.Context, inputNames *NameTable, inputs *TensorBatch, outputNames *NameTable, outputs *TensorBatch, opts *RunOptions) error {
	if s.ptr == 0 {
		return ErrSessionClosed
	}
	if inputNames.Len() != inputs.Len() {
		return fmt.Errorf("input name count (%d) must match input handle count (%d)", inputNames.Len(), inputs.Len())
	}
	if outputNames.Len() != outputs.Len() {
		return &OutputCountMismatchError{Declared: outputNames.Len(), Got: outputs.Len()}
	}
	return s.invoke(ctx, inputNames, inputs, outputNames, outputs, opts)
}

// invoke drives the single run entry point with pre-bound outputs. The
// parallel name and value arrays were validated by the caller.
func (s *Session) invoke(ctx context.Context, inputNames *NameTable, inputs *TensorBatch, outputNames *NameTable, outputs *TensorBatch, opts *RunOptions) error {
	runOpts, cleanup, err := s.prepareRunOptions(ctx, opts, "")
	if err != nil {
		return err
	}
	defer cleanup()

	info := &RunInfo{
		InputNames:  inputNames.Names(),
		OutputNames: outputNames.Names(),
	}
	for _, h := range s.hooks {
		h.BeforeRun(info)
	}
	start := time.Now()

	outputValues := outputs.nativeArray()
	status := s.runtime.apiFuncs.Run(
		s.ptr,
		runOpts,
		bytePtrArray(inputNames.pointerArray()),
		valuePtrArray(inputs.nativeArray()),
		uintptr(inputs.Len()),
		bytePtrArray(outputNames.pointerArray()),
		uintptr(outputs.Len()),
		valuePtrArray(outputValues),
	)
	err = s.runtime.statusError(status)
	goruntime.KeepAlive(inputNames)
	goruntime.KeepAlive(outputNames)
	goruntime.KeepAlive(inputs)
	goruntime.KeepAlive(outputs)

	info.Duration = time.Since(start)
	if err != nil {
		info.Error = fmt.Errorf("failed to run inference: %w", err)
	}
	for _, h := range s.hooks {
		h.AfterRun(info)
	}
	return info.Error
}

// RunOption is a functional option for configuring a Run call.
type RunOption func(*runConfig)

type runConfig struct {
	outputNames []string
	runTag      string
}

// WithOutputNames specifies which outputs to compute during inference.
// If not specified, all model outputs are computed.
func WithOutputNames(names ...string) RunOption {
	return func(c *runConfig) {
		c.outputNames = names
	}
}

// WithRunTag sets a tag on the run for log correlation and debugging.
// The tag appears in engine log output to identify specific inference runs.
func WithRunTag(tag string) RunOption {
	return func(c *runConfig) {
		c.runTag = tag
	}
}

// Run executes the model with the provided inputs and returns
// engine-allocated outputs. The inputs parameter maps input names to bound
// tensors; declared inputs missing from the map are passed as absent.
// This is the convenience path: each output Value owns engine memory and
// must be closed by the caller. Use Invoke with pre-bound output tensors to
// avoid the engine allocation.
func (s *Session) Run(ctx context.Context, inputs map[string]Handle, opts ...RunOption) (map[string]*Value, error) {
	if s.ptr == 0 {
		return nil, ErrSessionClosed
	}

	config := &runConfig{
		outputNames: s.outputNames, // default: all outputs
	}
	for _, opt := range opts {
		opt(config)
	}

	inputNames := make([]string, 0, len(inputs))
	handles := make([]Handle, 0, len(inputs))
	for _, name := range s.inputNames {
		if h, ok := inputs[name]; ok {
			inputNames = append(inputNames, name)
			handles = append(handles, h)
		}
	}
	for name := range inputs {
		if s.cachedName(name, s.inputNames) == "" {
			inputNames = append(inputNames, name)
			handles = append(handles, inputs[name])
		}
	}

	inputTable, err := BuildNameTable(inputNames)
	if err != nil {
		return nil, err
	}
	outputTable := s.outputTable
	if !stringSlicesEqual(config.outputNames, s.outputNames) {
		if outputTable, err = BuildNameTable(config.outputNames); err != nil {
			return nil, err
		}
	}

	runOpts, cleanup, err := s.prepareRunOptions(ctx, nil, config.runTag)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	info := &RunInfo{
		InputNames:  inputTable.Names(),
		OutputNames: outputTable.Names(),
	}
	for _, h := range s.hooks {
		h.BeforeRun(info)
	}
	start := time.Now()

	inputValues := make([]api.OrtValue, len(handles))
	for i, h := range handles {
		inputValues[i] = h.nativeRef()
	}
	outputValues := make([]api.OrtValue, outputTable.Len())

	status := s.runtime.apiFuncs.Run(
		s.ptr,
		runOpts,
		bytePtrArray(inputTable.pointerArray()),
		valuePtrArray(inputValues),
		uintptr(len(inputValues)),
		bytePtrArray(outputTable.pointerArray()),
		uintptr(outputTable.Len()),
		valuePtrArray(outputValues),
	)
	err = s.runtime.statusError(status)
	goruntime.KeepAlive(inputTable)
	goruntime.KeepAlive(outputTable)
	goruntime.KeepAlive(handles)

	info.Duration = time.Since(start)
	if err != nil {
		info.Error = fmt.Errorf("failed to run inference: %w", err)
	}
	for _, h := range s.hooks {
		h.AfterRun(info)
	}
	if info.Error != nil {
		return nil, info.Error
	}

	outputs := make(map[string]*Value, len(outputValues))
	for i, ptr := range outputValues {
		outputs[config.outputNames[i]] = s.runtime.newValueFromPtr(ptr)
	}
	return outputs, nil
}

// prepareRunOptions resolves the effective native run options for one run.
// When the caller supplied options, their handle is used and never released
// here; otherwise an ephemeral one is created if the run needs it. If ctx is
// cancellable, a watcher goroutine terminates the run on cancellation. The
// returned cleanup stops the watcher before any release, so terminate is
// never signalled on freed memory.
func (s *Session) prepareRunOptions(ctx context.Context, opts *RunOptions, runTag string) (api.OrtRunOptions, func(), error) {
	cancellable := ctx != nil && ctx.Done() != nil

	var runOpts api.OrtRunOptions
	ephemeral := false
	if opts != nil {
		runOpts = opts.nativeHandle()
		if runOpts == 0 {
			return 0, nil, ErrRunOptionsClosed
		}
	} else if cancellable || runTag != "" {
		status := s.runtime.apiFuncs.CreateRunOptions(&runOpts)
		if err := s.runtime.statusError(status); err != nil {
			return 0, nil, fmt.Errorf("failed to create run options: %w", err)
		}
		ephemeral = true
	} else {
		return 0, func() {}, nil
	}

	if runTag != "" {
		tagBytes := append([]byte(runTag), 0)
		status := s.runtime.apiFuncs.RunOptionsSetRunTag(runOpts, &tagBytes[0])
		if err := s.runtime.statusError(status); err != nil {
			if ephemeral {
				s.runtime.apiFuncs.ReleaseRunOptions(runOpts)
			}
			return 0, nil, fmt.Errorf("failed to set run tag: %w", err)
		}
	}

	// Watch for context cancellation in a goroutine. The WaitGroup ensures
	// the goroutine has fully exited before the options can be released,
	// preventing a race where terminate is signalled on freed memory.
	var wg sync.WaitGroup
	done := make(chan struct{})
	if cancellable {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
				s.runtime.apiFuncs.RunOptionsSetTerminate(runOpts)
			case <-done:
			}
		}()
	}

	cleanup := func() {
		close(done)
		wg.Wait()
		if ephemeral {
			s.runtime.apiFuncs.ReleaseRunOptions(runOpts)
		}
	}
	return runOpts, cleanup, nil
}

// configureSessionOptions applies all session options to the native session
// options handle.
func (r *Runtime) configureSessionOptions(optsPtr api.OrtSessionOptions, options *SessionOptions) error {
	if options.IntraOpNumThreads > 0 {
		status := r.apiFuncs.SetIntraOpNumThreads(optsPtr, int32(options.IntraOpNumThreads))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set intra-op num threads: %w", err)
		}
	}

	if options.InterOpNumThreads > 0 {
		status := r.apiFuncs.SetInterOpNumThreads(optsPtr, int32(options.InterOpNumThreads))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set inter-op num threads: %w", err)
		}
	}

	if options.GraphOptimization != 0 {
		status := r.apiFuncs.SetSessionGraphOptimizationLevel(optsPtr, int32(options.GraphOptimization))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set graph optimization level: %w", err)
		}
	}

	if options.ExecutionMode != 0 {
		status := r.apiFuncs.SetSessionExecutionMode(optsPtr, int32(options.ExecutionMode))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set execution mode: %w", err)
		}
	}

	if options.CpuMemArena != nil {
		var status api.OrtStatus
		if *options.CpuMemArena {
			status = r.apiFuncs.EnableCpuMemArena(optsPtr)
		} else {
			status = r.apiFuncs.DisableCpuMemArena(optsPtr)
		}
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to configure CPU memory arena: %w", err)
		}
	}

	if options.MemPattern != nil {
		var status api.OrtStatus
		if *options.MemPattern {
			status = r.apiFuncs.EnableMemPattern(optsPtr)
		} else {
			status = r.apiFuncs.DisableMemPattern(optsPtr)
		}
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to configure memory pattern: %w", err)
		}
	}

	if options.LogSeverityLevel != nil {
		status := r.apiFuncs.SetSessionLogSeverityLevel(optsPtr, int32(*options.LogSeverityLevel))
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to set log severity level: %w", err)
		}
	}

	for name, size := range options.FreeDimensionOverrides {
		nameBytes := append([]byte(name), 0)
		status := r.apiFuncs.AddFreeDimensionOverrideByName(optsPtr, &nameBytes[0], size)
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to add free dimension override %q: %w", name, err)
		}
	}

	for k, v := range options.ConfigEntries {
		keyBytes := append([]byte(k), 0)
		valBytes := append([]byte(v), 0)
		status := r.apiFuncs.AddSessionConfigEntry(optsPtr, &keyBytes[0], &valBytes[0])
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to add session config entry %q: %w", k, err)
		}
	}

	return r.configureExecutionProviders(optsPtr, options)
}

// configureExecutionProviders configures execution providers for the session options.
func (r *Runtime) configureExecutionProviders(optsPtr api.OrtSessionOptions, options *SessionOptions) error {
	for _, provider := range options.ExecutionProviders {
		providerNameBytes := append([]byte(provider.Name), 0)

		var keyPtrs **byte
		var valuePtrs **byte
		numOpts := uintptr(len(provider.Options))

		if numOpts > 0 {
			keys := make([]*byte, 0, numOpts)
			values := make([]*byte, 0, numOpts)
			for k, v := range provider.Options {
				kBytes := append([]byte(k), 0)
				vBytes := append([]byte(v), 0)
				keys = append(keys, &kBytes[0])
				values = append(values, &vBytes[0])
			}
			keyPtrs = &keys[0]
			valuePtrs = &values[0]
		}

		status := r.apiFuncs.SessionOptionsAppendExecutionProvider(
			optsPtr,
			&providerNameBytes[0],
			keyPtrs,
			valuePtrs,
			numOpts,
		)
		if err := r.statusError(status); err != nil {
			return fmt.Errorf("failed to append execution provider %q: %w", provider.Name, err)
		}
	}

	return nil
}

func (s *Session) cachedName(name string, names []string) string {
	for _, n := range names {
		if n == name {
			return n
		}
	}
	return ""
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// bytePtrArray returns the base address of a C-string pointer array, or nil
// for an empty array.
func bytePtrArray(ptrs []*byte) **byte {
	if len(ptrs) == 0 {
		return nil
	}
	return &ptrs[0]
}

// valuePtrArray returns the base address of a native value array, or nil for
// an empty array.
func valuePtrArray(values []api.OrtValue) *api.OrtValue {
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

// Close releases the session. Tensors bound for use with the session are
// unaffected; engine-allocated output Values must be closed separately.
// It is safe to call Close multiple times.
func (s *Session) Close() {
	if s.ptr != 0 && s.runtime != nil && s.runtime.apiFuncs != nil {
		s.cleanup.Stop()
		s.runtime.apiFuncs.ReleaseSession(s.ptr)
		s.ptr = 0
	}
}
