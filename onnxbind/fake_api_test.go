package onnxbind

import (
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// fakeAPI is an in-process implementation of api.APIFuncs. It models just
// enough engine behavior to drive the safety layer: handle bookkeeping with
// live counts for leak checks, tensor metadata, name allocation, run-option
// terminate flags, and a configurable run body.
type fakeAPI struct {
	mu         sync.Mutex
	nextHandle uintptr

	statuses map[api.OrtStatus]fakeStatus
	tensors  map[api.OrtValue]*fakeTensor
	infos    map[api.OrtTensorTypeAndShapeInfo]api.OrtValue
	allocs   map[unsafe.Pointer][]byte
	runTags  map[api.OrtRunOptions]string
	term     map[api.OrtRunOptions]bool

	liveStatuses    int
	liveEnvs        int
	liveSessions    int
	liveSessionOpts int
	liveRunOpts     int
	liveValues      int
	liveMemInfos    int
	liveInfos       int

	// model interface reported to sessions
	inputNames  []string
	outputNames []string

	// knobs
	failCreateTensor bool
	isTensorResult   int32
	runDelay         time.Duration
	runErrMsg        string

	// recorded per run
	runCount      int
	lastRunTag    string
	lastInputs    []api.OrtValue
	lastOutputs   []api.OrtValue
	lastInputCnt  int
	lastOutputCnt int

	providerStrs [][]byte
	providerPtrs []*byte
}

type fakeStatus struct {
	code api.OrtErrorCode
	msg  []byte // NUL-terminated
}

type fakeTensor struct {
	data     unsafe.Pointer
	byteLen  uintptr
	shape    []int64
	elemType api.ONNXTensorElementDataType
	owned    []byte // backing storage for engine-allocated outputs
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nextHandle:     0x1000,
		statuses:       make(map[api.OrtStatus]fakeStatus),
		tensors:        make(map[api.OrtValue]*fakeTensor),
		infos:          make(map[api.OrtTensorTypeAndShapeInfo]api.OrtValue),
		allocs:         make(map[unsafe.Pointer][]byte),
		runTags:        make(map[api.OrtRunOptions]string),
		term:           make(map[api.OrtRunOptions]bool),
		inputNames:     []string{"input"},
		outputNames:    []string{"output"},
		isTensorResult: 1,
	}
}

func (f *fakeAPI) handle() uintptr {
	f.nextHandle += 0x10
	return f.nextHandle
}

func (f *fakeAPI) newStatus(code api.OrtErrorCode, msg string) api.OrtStatus {
	s := api.OrtStatus(f.handle())
	f.statuses[s] = fakeStatus{code: code, msg: append([]byte(msg), 0)}
	f.liveStatuses++
	return s
}

// assertNoLeaks fails the test if any native handle created through the fake
// is still live.
func (f *fakeAPI) assertNoLeaks(t *testing.T) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.liveValues != 0 {
		t.Errorf("leaked %d tensor values", f.liveValues)
	}
	if f.liveMemInfos != 0 {
		t.Errorf("leaked %d memory infos", f.liveMemInfos)
	}
	if f.liveStatuses != 0 {
		t.Errorf("leaked %d status objects", f.liveStatuses)
	}
	if f.liveInfos != 0 {
		t.Errorf("leaked %d type-and-shape infos", f.liveInfos)
	}
	if f.liveRunOpts != 0 {
		t.Errorf("leaked %d run options", f.liveRunOpts)
	}
}

// Status and error handling

func (f *fakeAPI) CreateStatus(code api.OrtErrorCode, msg *byte) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newStatus(code, cStringToString(msg))
}

func (f *fakeAPI) GetErrorCode(s api.OrtStatus) api.OrtErrorCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[s].code
}

func (f *fakeAPI) GetErrorMessage(s api.OrtStatus) unsafe.Pointer {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.statuses[s]
	if !ok {
		return nil
	}
	return unsafe.Pointer(&st.msg[0])
}

func (f *fakeAPI) ReleaseStatus(s api.OrtStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.statuses[s]; ok {
		delete(f.statuses, s)
		f.liveStatuses--
	}
}

// Environment

func (f *fakeAPI) CreateEnv(_ api.OrtLoggingLevel, _ *byte, out *api.OrtEnv) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = api.OrtEnv(f.handle())
	f.liveEnvs++
	return 0
}

func (f *fakeAPI) ReleaseEnv(api.OrtEnv) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveEnvs--
}

// Allocator

func (f *fakeAPI) GetAllocatorWithDefaultOptions(out *api.OrtAllocator) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = api.OrtAllocator(f.handle())
	return 0
}

func (f *fakeAPI) AllocatorFree(_ api.OrtAllocator, ptr unsafe.Pointer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.allocs, ptr)
}

// cAlloc hands out a NUL-terminated copy owned by the fake, mimicking an
// engine allocation that the caller must free through the allocator.
func (f *fakeAPI) cAlloc(s string) *byte {
	buf := append([]byte(s), 0)
	ptr := unsafe.Pointer(&buf[0])
	f.allocs[ptr] = buf
	return &buf[0]
}

// Memory info

func (f *fakeAPI) CreateCpuMemoryInfo(_ api.OrtAllocatorType, _ api.OrtMemType, out *api.OrtMemoryInfo) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = api.OrtMemoryInfo(f.handle())
	f.liveMemInfos++
	return 0
}

func (f *fakeAPI) ReleaseMemoryInfo(api.OrtMemoryInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveMemInfos--
}

// Session options

func (f *fakeAPI) CreateSessionOptions(out *api.OrtSessionOptions) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = api.OrtSessionOptions(f.handle())
	f.liveSessionOpts++
	return 0
}

func (f *fakeAPI) SetIntraOpNumThreads(api.OrtSessionOptions, int32) api.OrtStatus    { return 0 }
func (f *fakeAPI) SetInterOpNumThreads(api.OrtSessionOptions, int32) api.OrtStatus    { return 0 }
func (f *fakeAPI) SetSessionExecutionMode(api.OrtSessionOptions, int32) api.OrtStatus { return 0 }
func (f *fakeAPI) SetSessionGraphOptimizationLevel(api.OrtSessionOptions, int32) api.OrtStatus {
	return 0
}
func (f *fakeAPI) EnableCpuMemArena(api.OrtSessionOptions) api.OrtStatus                  { return 0 }
func (f *fakeAPI) DisableCpuMemArena(api.OrtSessionOptions) api.OrtStatus                 { return 0 }
func (f *fakeAPI) EnableMemPattern(api.OrtSessionOptions) api.OrtStatus                   { return 0 }
func (f *fakeAPI) DisableMemPattern(api.OrtSessionOptions) api.OrtStatus                  { return 0 }
func (f *fakeAPI) SetSessionLogSeverityLevel(api.OrtSessionOptions, int32) api.OrtStatus  { return 0 }
func (f *fakeAPI) AddSessionConfigEntry(api.OrtSessionOptions, *byte, *byte) api.OrtStatus {
	return 0
}
func (f *fakeAPI) AddFreeDimensionOverrideByName(api.OrtSessionOptions, *byte, int64) api.OrtStatus {
	return 0
}
func (f *fakeAPI) SessionOptionsAppendExecutionProvider(api.OrtSessionOptions, *byte, **byte, **byte, uintptr) api.OrtStatus {
	return 0
}

func (f *fakeAPI) ReleaseSessionOptions(api.OrtSessionOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveSessionOpts--
}

// Run options

func (f *fakeAPI) CreateRunOptions(out *api.OrtRunOptions) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = api.OrtRunOptions(f.handle())
	f.liveRunOpts++
	return 0
}

func (f *fakeAPI) ReleaseRunOptions(o api.OrtRunOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.runTags, o)
	delete(f.term, o)
	f.liveRunOpts--
}

func (f *fakeAPI) RunOptionsSetTerminate(o api.OrtRunOptions) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.term[o] = true
	return 0
}

func (f *fakeAPI) RunOptionsUnsetTerminate(o api.OrtRunOptions) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.term, o)
	return 0
}

func (f *fakeAPI) RunOptionsSetRunTag(o api.OrtRunOptions, tag *byte) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runTags[o] = cStringToString(tag)
	return 0
}

func (f *fakeAPI) AddRunConfigEntry(api.OrtRunOptions, *byte, *byte) api.OrtStatus { return 0 }

// Sessions

func (f *fakeAPI) CreateSession(_ api.OrtEnv, _ *byte, _ api.OrtSessionOptions, out *api.OrtSession) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = api.OrtSession(f.handle())
	f.liveSessions++
	return 0
}

func (f *fakeAPI) CreateSessionFromArray(_ api.OrtEnv, _ unsafe.Pointer, _ uintptr, _ api.OrtSessionOptions, out *api.OrtSession) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = api.OrtSession(f.handle())
	f.liveSessions++
	return 0
}

func (f *fakeAPI) SessionGetInputCount(_ api.OrtSession, out *uintptr) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = uintptr(len(f.inputNames))
	return 0
}

func (f *fakeAPI) SessionGetOutputCount(_ api.OrtSession, out *uintptr) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = uintptr(len(f.outputNames))
	return 0
}

func (f *fakeAPI) SessionGetInputName(_ api.OrtSession, index uintptr, _ api.OrtAllocator, out **byte) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(index) >= len(f.inputNames) {
		return f.newStatus(2, "input index out of range")
	}
	*out = f.cAlloc(f.inputNames[index])
	return 0
}

func (f *fakeAPI) SessionGetOutputName(_ api.OrtSession, index uintptr, _ api.OrtAllocator, out **byte) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(index) >= len(f.outputNames) {
		return f.newStatus(2, "output index out of range")
	}
	*out = f.cAlloc(f.outputNames[index])
	return 0
}

func (f *fakeAPI) ReleaseSession(api.OrtSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveSessions--
}

// Run copies the first input's bytes into every output. Pre-bound outputs
// are written in place through their external buffer; empty output slots get
// an engine-allocated tensor carrying a copy.
func (f *fakeAPI) Run(_ api.OrtSession, runOpts api.OrtRunOptions, _ **byte, inputValues *api.OrtValue, inputCount uintptr, _ **byte, outputCount uintptr, outputValues *api.OrtValue) api.OrtStatus {
	if f.runDelay > 0 {
		deadline := time.Now().Add(f.runDelay)
		for time.Now().Before(deadline) {
			f.mu.Lock()
			terminated := runOpts != 0 && f.term[runOpts]
			f.mu.Unlock()
			if terminated {
				f.mu.Lock()
				defer f.mu.Unlock()
				return f.newStatus(1, "run terminated")
			}
			time.Sleep(time.Millisecond)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if runOpts != 0 && f.term[runOpts] {
		return f.newStatus(1, "run terminated")
	}
	if f.runErrMsg != "" {
		return f.newStatus(1, f.runErrMsg)
	}

	f.runCount++
	f.lastRunTag = f.runTags[runOpts]
	f.lastInputCnt = int(inputCount)
	f.lastOutputCnt = int(outputCount)

	var inputs []api.OrtValue
	if inputValues != nil && inputCount > 0 {
		inputs = unsafe.Slice(inputValues, inputCount)
	}
	f.lastInputs = append([]api.OrtValue(nil), inputs...)

	if len(inputs) == 0 {
		return f.newStatus(2, "no inputs provided")
	}
	src, ok := f.tensors[inputs[0]]
	if !ok {
		return f.newStatus(2, "unknown input tensor")
	}
	var srcBytes []byte
	if src.data != nil {
		srcBytes = unsafe.Slice((*byte)(src.data), src.byteLen)
	}

	var outputs []api.OrtValue
	if outputValues != nil && outputCount > 0 {
		outputs = unsafe.Slice(outputValues, outputCount)
	}
	for i := range outputs {
		if outputs[i] != 0 {
			dst, ok := f.tensors[outputs[i]]
			if !ok {
				return f.newStatus(2, "unknown output tensor")
			}
			if dst.data != nil {
				dstBytes := unsafe.Slice((*byte)(dst.data), dst.byteLen)
				copy(dstBytes, srcBytes)
			}
			continue
		}

		owned := append([]byte(nil), srcBytes...)
		t := &fakeTensor{
			byteLen:  uintptr(len(owned)),
			shape:    append([]int64(nil), src.shape...),
			elemType: src.elemType,
			owned:    owned,
		}
		if len(owned) > 0 {
			t.data = unsafe.Pointer(&owned[0])
		}
		v := api.OrtValue(f.handle())
		f.tensors[v] = t
		f.liveValues++
		outputs[i] = v
	}
	f.lastOutputs = append([]api.OrtValue(nil), outputs...)
	return 0
}

// Tensor and value operations

func (f *fakeAPI) CreateTensorWithDataAsOrtValue(_ api.OrtMemoryInfo, data unsafe.Pointer, byteLen uintptr, shapePtr *int64, shapeLen uintptr, elemType api.ONNXTensorElementDataType, out *api.OrtValue) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateTensor {
		return f.newStatus(2, "tensor creation rejected")
	}
	var shape []int64
	if shapePtr != nil && shapeLen > 0 {
		shape = append([]int64(nil), unsafe.Slice(shapePtr, shapeLen)...)
	}
	v := api.OrtValue(f.handle())
	f.tensors[v] = &fakeTensor{
		data:     data,
		byteLen:  byteLen,
		shape:    shape,
		elemType: elemType,
	}
	f.liveValues++
	*out = v
	return 0
}

func (f *fakeAPI) IsTensor(_ api.OrtValue, out *int32) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = f.isTensorResult
	return 0
}

func (f *fakeAPI) GetValueType(_ api.OrtValue, out *api.ONNXType) api.OrtStatus {
	*out = api.ONNXType(1) // tensor
	return 0
}

func (f *fakeAPI) GetTensorMutableData(v api.OrtValue, out *unsafe.Pointer) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tensors[v]
	if !ok {
		return f.newStatus(2, "unknown tensor")
	}
	*out = t.data
	return 0
}

func (f *fakeAPI) GetTensorTypeAndShape(v api.OrtValue, out *api.OrtTensorTypeAndShapeInfo) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tensors[v]; !ok {
		return f.newStatus(2, "unknown tensor")
	}
	info := api.OrtTensorTypeAndShapeInfo(f.handle())
	f.infos[info] = v
	f.liveInfos++
	*out = info
	return 0
}

func (f *fakeAPI) GetTensorElementType(info api.OrtTensorTypeAndShapeInfo, out *api.ONNXTensorElementDataType) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tensors[f.infos[info]]
	if !ok {
		return f.newStatus(2, "unknown info")
	}
	*out = t.elemType
	return 0
}

func (f *fakeAPI) GetDimensionsCount(info api.OrtTensorTypeAndShapeInfo, out *uintptr) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tensors[f.infos[info]]
	if !ok {
		return f.newStatus(2, "unknown info")
	}
	*out = uintptr(len(t.shape))
	return 0
}

func (f *fakeAPI) GetDimensions(info api.OrtTensorTypeAndShapeInfo, out *int64, count uintptr) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tensors[f.infos[info]]
	if !ok {
		return f.newStatus(2, "unknown info")
	}
	copy(unsafe.Slice(out, count), t.shape)
	return 0
}

func (f *fakeAPI) GetTensorShapeElementCount(info api.OrtTensorTypeAndShapeInfo, out *uintptr) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tensors[f.infos[info]]
	if !ok {
		return f.newStatus(2, "unknown info")
	}
	count := int64(1)
	for _, d := range t.shape {
		count *= d
	}
	*out = uintptr(count)
	return 0
}

func (f *fakeAPI) ReleaseValue(v api.OrtValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tensors[v]; ok {
		delete(f.tensors, v)
		f.liveValues--
	}
}

func (f *fakeAPI) ReleaseTensorTypeAndShapeInfo(info api.OrtTensorTypeAndShapeInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.infos[info]; ok {
		delete(f.infos, info)
		f.liveInfos--
	}
}

// Execution provider information

func (f *fakeAPI) GetAvailableProviders(out ***byte, count *int32) api.OrtStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := []string{"CPUExecutionProvider"}
	f.providerStrs = f.providerStrs[:0]
	f.providerPtrs = f.providerPtrs[:0]
	for _, n := range names {
		buf := append([]byte(n), 0)
		f.providerStrs = append(f.providerStrs, buf)
		f.providerPtrs = append(f.providerPtrs, &buf[0])
	}
	*out = &f.providerPtrs[0]
	*count = int32(len(names))
	return 0
}

func (f *fakeAPI) ReleaseAvailableProviders(**byte, int32) api.OrtStatus { return 0 }

// Each test gets a runtime over a fresh fake backend.

func newTestRuntime(t *testing.T) (*Runtime, *fakeAPI) {
	t.Helper()
	fake := newFakeAPI()
	rt, err := NewRuntimeWithAPI(fake)
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	return rt, fake
}

func newTestSession(t *testing.T, rt *Runtime, opts *SessionOptions) *Session {
	t.Helper()
	env, err := rt.NewEnv("test", LoggingLevelWarning)
	if err != nil {
		t.Fatalf("Failed to create env: %v", err)
	}
	t.Cleanup(env.Close)

	session, err := rt.NewSession(env, "model.onnx", opts)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	t.Cleanup(session.Close)
	return session
}
