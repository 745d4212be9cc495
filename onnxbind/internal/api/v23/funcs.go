package v23

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// Funcs contains cached function pointers to ONNX Runtime C API functions.
type Funcs struct {
	// Status and error handling
	createStatus    func(api.OrtErrorCode, *byte) api.OrtStatus
	getErrorCode    func(api.OrtStatus) api.OrtErrorCode
	getErrorMessage func(api.OrtStatus) unsafe.Pointer
	releaseStatus   func(api.OrtStatus)

	// Environment
	createEnv  func(api.OrtLoggingLevel, *byte, *api.OrtEnv) api.OrtStatus
	releaseEnv func(api.OrtEnv)

	// Allocator
	getAllocatorWithDefaultOptions func(*api.OrtAllocator) api.OrtStatus
	allocatorFree                  func(api.OrtAllocator, unsafe.Pointer)

	// Memory info
	createCpuMemoryInfo func(api.OrtAllocatorType, api.OrtMemType, *api.OrtMemoryInfo) api.OrtStatus
	releaseMemoryInfo   func(api.OrtMemoryInfo)

	// Session options
	createSessionOptions                  func(*api.OrtSessionOptions) api.OrtStatus
	setIntraOpNumThreads                  func(api.OrtSessionOptions, int32) api.OrtStatus
	setInterOpNumThreads                  func(api.OrtSessionOptions, int32) api.OrtStatus
	setSessionExecutionMode               func(api.OrtSessionOptions, int32) api.OrtStatus
	setSessionGraphOptimizationLevel      func(api.OrtSessionOptions, int32) api.OrtStatus
	enableCpuMemArena                     func(api.OrtSessionOptions) api.OrtStatus
	disableCpuMemArena                    func(api.OrtSessionOptions) api.OrtStatus
	enableMemPattern                      func(api.OrtSessionOptions) api.OrtStatus
	disableMemPattern                     func(api.OrtSessionOptions) api.OrtStatus
	setSessionLogSeverityLevel            func(api.OrtSessionOptions, int32) api.OrtStatus
	addSessionConfigEntry                 func(api.OrtSessionOptions, *byte, *byte) api.OrtStatus
	addFreeDimensionOverrideByName        func(api.OrtSessionOptions, *byte, int64) api.OrtStatus
	sessionOptionsAppendExecutionProvider func(api.OrtSessionOptions, *byte, **byte, **byte, uintptr) api.OrtStatus
	releaseSessionOptions                 func(api.OrtSessionOptions)

	// Run options
	createRunOptions         func(*api.OrtRunOptions) api.OrtStatus
	releaseRunOptions        func(api.OrtRunOptions)
	runOptionsSetTerminate   func(api.OrtRunOptions) api.OrtStatus
	runOptionsUnsetTerminate func(api.OrtRunOptions) api.OrtStatus
	runOptionsSetRunTag      func(api.OrtRunOptions, *byte) api.OrtStatus
	addRunConfigEntry        func(api.OrtRunOptions, *byte, *byte) api.OrtStatus

	// Session
	createSession          func(api.OrtEnv, *byte, api.OrtSessionOptions, *api.OrtSession) api.OrtStatus
	createSessionFromArray func(api.OrtEnv, unsafe.Pointer, uintptr, api.OrtSessionOptions, *api.OrtSession) api.OrtStatus
	sessionGetInputCount   func(api.OrtSession, *uintptr) api.OrtStatus
	sessionGetOutputCount  func(api.OrtSession, *uintptr) api.OrtStatus
	sessionGetInputName    func(api.OrtSession, uintptr, api.OrtAllocator, **byte) api.OrtStatus
	sessionGetOutputName   func(api.OrtSession, uintptr, api.OrtAllocator, **byte) api.OrtStatus
	run                    func(api.OrtSession, api.OrtRunOptions, **byte, *api.OrtValue, uintptr, **byte, uintptr, *api.OrtValue) api.OrtStatus
	releaseSession         func(api.OrtSession)

	// Tensor/Value operations
	createTensorWithDataAsOrtValue func(api.OrtMemoryInfo, unsafe.Pointer, uintptr, *int64, uintptr, api.ONNXTensorElementDataType, *api.OrtValue) api.OrtStatus
	isTensor                       func(api.OrtValue, *int32) api.OrtStatus
	getValueType                   func(api.OrtValue, *api.ONNXType) api.OrtStatus
	getTensorMutableData           func(api.OrtValue, *unsafe.Pointer) api.OrtStatus
	getTensorTypeAndShape          func(api.OrtValue, *api.OrtTensorTypeAndShapeInfo) api.OrtStatus
	getTensorElementType           func(api.OrtTensorTypeAndShapeInfo, *api.ONNXTensorElementDataType) api.OrtStatus
	getDimensionsCount             func(api.OrtTensorTypeAndShapeInfo, *uintptr) api.OrtStatus
	getDimensions                  func(api.OrtTensorTypeAndShapeInfo, *int64, uintptr) api.OrtStatus
	getTensorShapeElementCount     func(api.OrtTensorTypeAndShapeInfo, *uintptr) api.OrtStatus
	releaseValue                   func(api.OrtValue)
	releaseTensorTypeAndShapeInfo  func(api.OrtTensorTypeAndShapeInfo)

	// Execution provider information
	getAvailableProviders     func(***byte, *int32) api.OrtStatus
	releaseAvailableProviders func(**byte, int32) api.OrtStatus
}

// InitializeFuncs initializes the API function pointers from the library handle.
// This is called once during initialization to avoid repeated RegisterFunc calls.
func InitializeFuncs(libraryHandle uintptr) (*Funcs, error) {
	var ortGetAPIBase func() *APIBase
	purego.RegisterLibFunc(&ortGetAPIBase, libraryHandle, "OrtGetApiBase")

	apiBase := ortGetAPIBase()
	if apiBase == nil {
		return nil, fmt.Errorf("OrtGetApiBase returned nil")
	}

	var getAPIFunc func(uint32) unsafe.Pointer
	purego.RegisterFunc(&getAPIFunc, apiBase.GetAPI)

	apiPtr := getAPIFunc(APIVersion)
	if apiPtr == nil {
		return nil, fmt.Errorf("failed to get OrtAPI for version %d", APIVersion)
	}

	table := (*API)(apiPtr)

	funcs := &Funcs{}

	purego.RegisterFunc(&funcs.createStatus, table.CreateStatus)
	purego.RegisterFunc(&funcs.getErrorCode, table.GetErrorCode)
	purego.RegisterFunc(&funcs.getErrorMessage, table.GetErrorMessage)
	purego.RegisterFunc(&funcs.releaseStatus, table.ReleaseStatus)

	purego.RegisterFunc(&funcs.createEnv, table.CreateEnv)
	purego.RegisterFunc(&funcs.releaseEnv, table.ReleaseEnv)

	purego.RegisterFunc(&funcs.getAllocatorWithDefaultOptions, table.GetAllocatorWithDefaultOptions)
	purego.RegisterFunc(&funcs.allocatorFree, table.AllocatorFree)

	purego.RegisterFunc(&funcs.createCpuMemoryInfo, table.CreateCpuMemoryInfo)
	purego.RegisterFunc(&funcs.releaseMemoryInfo, table.ReleaseMemoryInfo)

	purego.RegisterFunc(&funcs.createSessionOptions, table.CreateSessionOptions)
	purego.RegisterFunc(&funcs.setIntraOpNumThreads, table.SetIntraOpNumThreads)
	purego.RegisterFunc(&funcs.setInterOpNumThreads, table.SetInterOpNumThreads)
	purego.RegisterFunc(&funcs.setSessionExecutionMode, table.SetSessionExecutionMode)
	purego.RegisterFunc(&funcs.setSessionGraphOptimizationLevel, table.SetSessionGraphOptimizationLevel)
	purego.RegisterFunc(&funcs.enableCpuMemArena, table.EnableCpuMemArena)
	purego.RegisterFunc(&funcs.disableCpuMemArena, table.DisableCpuMemArena)
	purego.RegisterFunc(&funcs.enableMemPattern, table.EnableMemPattern)
	purego.RegisterFunc(&funcs.disableMemPattern, table.DisableMemPattern)
	purego.RegisterFunc(&funcs.setSessionLogSeverityLevel, table.SetSessionLogSeverityLevel)
	purego.RegisterFunc(&funcs.addSessionConfigEntry, table.AddSessionConfigEntry)
	purego.RegisterFunc(&funcs.addFreeDimensionOverrideByName, table.AddFreeDimensionOverrideByName)
	purego.RegisterFunc(&funcs.sessionOptionsAppendExecutionProvider, table.SessionOptionsAppendExecutionProvider)
	purego.RegisterFunc(&funcs.releaseSessionOptions, table.ReleaseSessionOptions)

	purego.RegisterFunc(&funcs.createRunOptions, table.CreateRunOptions)
	purego.RegisterFunc(&funcs.releaseRunOptions, table.ReleaseRunOptions)
	purego.RegisterFunc(&funcs.runOptionsSetTerminate, table.RunOptionsSetTerminate)
	purego.RegisterFunc(&funcs.runOptionsUnsetTerminate, table.RunOptionsUnsetTerminate)
	purego.RegisterFunc(&funcs.runOptionsSetRunTag, table.RunOptionsSetRunTag)
	purego.RegisterFunc(&funcs.addRunConfigEntry, table.AddRunConfigEntry)

	purego.RegisterFunc(&funcs.createSession, table.CreateSession)
	purego.RegisterFunc(&funcs.createSessionFromArray, table.CreateSessionFromArray)
	purego.RegisterFunc(&funcs.sessionGetInputCount, table.SessionGetInputCount)
	purego.RegisterFunc(&funcs.sessionGetOutputCount, table.SessionGetOutputCount)
	purego.RegisterFunc(&funcs.sessionGetInputName, table.SessionGetInputName)
	purego.RegisterFunc(&funcs.sessionGetOutputName, table.SessionGetOutputName)
	purego.RegisterFunc(&funcs.run, table.Run)
	purego.RegisterFunc(&funcs.releaseSession, table.ReleaseSession)

	purego.RegisterFunc(&funcs.createTensorWithDataAsOrtValue, table.CreateTensorWithDataAsOrtValue)
	purego.RegisterFunc(&funcs.isTensor, table.IsTensor)
	purego.RegisterFunc(&funcs.getValueType, table.GetValueType)
	purego.RegisterFunc(&funcs.getTensorMutableData, table.GetTensorMutableData)
	purego.RegisterFunc(&funcs.getTensorTypeAndShape, table.GetTensorTypeAndShape)
	purego.RegisterFunc(&funcs.getTensorElementType, table.GetTensorElementType)
	purego.RegisterFunc(&funcs.getDimensionsCount, table.GetDimensionsCount)
	purego.RegisterFunc(&funcs.getDimensions, table.GetDimensions)
	purego.RegisterFunc(&funcs.getTensorShapeElementCount, table.GetTensorShapeElementCount)
	purego.RegisterFunc(&funcs.releaseValue, table.ReleaseValue)
	purego.RegisterFunc(&funcs.releaseTensorTypeAndShapeInfo, table.ReleaseTensorTypeAndShapeInfo)

	purego.RegisterFunc(&funcs.getAvailableProviders, table.GetAvailableProviders)
	purego.RegisterFunc(&funcs.releaseAvailableProviders, table.ReleaseAvailableProviders)

	return funcs, nil
}

// Status and error handling methods

func (f *Funcs) CreateStatus(code api.OrtErrorCode, msg *byte) api.OrtStatus {
	return f.createStatus(code, msg)
}

func (f *Funcs) GetErrorCode(status api.OrtStatus) api.OrtErrorCode {
	return f.getErrorCode(status)
}

func (f *Funcs) GetErrorMessage(status api.OrtStatus) unsafe.Pointer {
	return f.getErrorMessage(status)
}

func (f *Funcs) ReleaseStatus(status api.OrtStatus) {
	f.releaseStatus(status)
}

// Environment methods

func (f *Funcs) CreateEnv(level api.OrtLoggingLevel, logID *byte, env *api.OrtEnv) api.OrtStatus {
	return f.createEnv(level, logID, env)
}

func (f *Funcs) ReleaseEnv(env api.OrtEnv) {
	f.releaseEnv(env)
}

// Allocator methods

func (f *Funcs) GetAllocatorWithDefaultOptions(allocator *api.OrtAllocator) api.OrtStatus {
	return f.getAllocatorWithDefaultOptions(allocator)
}

func (f *Funcs) AllocatorFree(allocator api.OrtAllocator, ptr unsafe.Pointer) {
	f.allocatorFree(allocator, ptr)
}

// Memory info methods

func (f *Funcs) CreateCpuMemoryInfo(allocatorType api.OrtAllocatorType, memType api.OrtMemType, memInfo *api.OrtMemoryInfo) api.OrtStatus {
	return f.createCpuMemoryInfo(allocatorType, memType, memInfo)
}

func (f *Funcs) ReleaseMemoryInfo(memInfo api.OrtMemoryInfo) {
	f.releaseMemoryInfo(memInfo)
}

// Session options methods

func (f *Funcs) CreateSessionOptions(options *api.OrtSessionOptions) api.OrtStatus {
	return f.createSessionOptions(options)
}

func (f *Funcs) SetIntraOpNumThreads(options api.OrtSessionOptions, n int32) api.OrtStatus {
	return f.setIntraOpNumThreads(options, n)
}

func (f *Funcs) SetInterOpNumThreads(options api.OrtSessionOptions, n int32) api.OrtStatus {
	return f.setInterOpNumThreads(options, n)
}

func (f *Funcs) SetSessionExecutionMode(options api.OrtSessionOptions, mode int32) api.OrtStatus {
	return f.setSessionExecutionMode(options, mode)
}

func (f *Funcs) SetSessionGraphOptimizationLevel(options api.OrtSessionOptions, level int32) api.OrtStatus {
	return f.setSessionGraphOptimizationLevel(options, level)
}

func (f *Funcs) EnableCpuMemArena(options api.OrtSessionOptions) api.OrtStatus {
	return f.enableCpuMemArena(options)
}

func (f *Funcs) DisableCpuMemArena(options api.OrtSessionOptions) api.OrtStatus {
	return f.disableCpuMemArena(options)
}

func (f *Funcs) EnableMemPattern(options api.OrtSessionOptions) api.OrtStatus {
	return f.enableMemPattern(options)
}

func (f *Funcs) DisableMemPattern(options api.OrtSessionOptions) api.OrtStatus {
	return f.disableMemPattern(options)
}

func (f *Funcs) SetSessionLogSeverityLevel(options api.OrtSessionOptions, level int32) api.OrtStatus {
	return f.setSessionLogSeverityLevel(options, level)
}

func (f *Funcs) AddSessionConfigEntry(options api.OrtSessionOptions, key *byte, value *byte) api.OrtStatus {
	return f.addSessionConfigEntry(options, key, value)
}

func (f *Funcs) AddFreeDimensionOverrideByName(options api.OrtSessionOptions, name *byte, value int64) api.OrtStatus {
	return f.addFreeDimensionOverrideByName(options, name, value)
}

func (f *Funcs) SessionOptionsAppendExecutionProvider(options api.OrtSessionOptions, providerName *byte, keys **byte, values **byte, numKeys uintptr) api.OrtStatus {
	return f.sessionOptionsAppendExecutionProvider(options, providerName, keys, values, numKeys)
}

func (f *Funcs) ReleaseSessionOptions(options api.OrtSessionOptions) {
	f.releaseSessionOptions(options)
}

// Run options methods

func (f *Funcs) CreateRunOptions(options *api.OrtRunOptions) api.OrtStatus {
	return f.createRunOptions(options)
}

func (f *Funcs) ReleaseRunOptions(options api.OrtRunOptions) {
	f.releaseRunOptions(options)
}

func (f *Funcs) RunOptionsSetTerminate(options api.OrtRunOptions) api.OrtStatus {
	return f.runOptionsSetTerminate(options)
}

func (f *Funcs) RunOptionsUnsetTerminate(options api.OrtRunOptions) api.OrtStatus {
	return f.runOptionsUnsetTerminate(options)
}

func (f *Funcs) RunOptionsSetRunTag(options api.OrtRunOptions, tag *byte) api.OrtStatus {
	return f.runOptionsSetRunTag(options, tag)
}

func (f *Funcs) AddRunConfigEntry(options api.OrtRunOptions, key *byte, value *byte) api.OrtStatus {
	return f.addRunConfigEntry(options, key, value)
}

// Session methods

func (f *Funcs) CreateSession(env api.OrtEnv, modelPath *byte, options api.OrtSessionOptions, session *api.OrtSession) api.OrtStatus {
	return f.createSession(env, modelPath, options, session)
}

func (f *Funcs) CreateSessionFromArray(env api.OrtEnv, modelData unsafe.Pointer, modelDataLength uintptr, options api.OrtSessionOptions, session *api.OrtSession) api.OrtStatus {
	return f.createSessionFromArray(env, modelData, modelDataLength, options, session)
}

func (f *Funcs) SessionGetInputCount(session api.OrtSession, count *uintptr) api.OrtStatus {
	return f.sessionGetInputCount(session, count)
}

func (f *Funcs) SessionGetOutputCount(session api.OrtSession, count *uintptr) api.OrtStatus {
	return f.sessionGetOutputCount(session, count)
}

func (f *Funcs) SessionGetInputName(session api.OrtSession, index uintptr, allocator api.OrtAllocator, name **byte) api.OrtStatus {
	return f.sessionGetInputName(session, index, allocator, name)
}

func (f *Funcs) SessionGetOutputName(session api.OrtSession, index uintptr, allocator api.OrtAllocator, name **byte) api.OrtStatus {
	return f.sessionGetOutputName(session, index, allocator, name)
}

func (f *Funcs) Run(session api.OrtSession, runOptions api.OrtRunOptions, inputNames **byte, inputs *api.OrtValue, inputCount uintptr, outputNames **byte, outputCount uintptr, outputs *api.OrtValue) api.OrtStatus {
	return f.run(session, runOptions, inputNames, inputs, inputCount, outputNames, outputCount, outputs)
}

func (f *Funcs) ReleaseSession(session api.OrtSession) {
	f.releaseSession(session)
}

// Tensor/Value operations methods

func (f *Funcs) CreateTensorWithDataAsOrtValue(memInfo api.OrtMemoryInfo, data unsafe.Pointer, dataSize uintptr, shape *int64, shapeLen uintptr, dataType api.ONNXTensorElementDataType, value *api.OrtValue) api.OrtStatus {
	return f.createTensorWithDataAsOrtValue(memInfo, data, dataSize, shape, shapeLen, dataType, value)
}

func (f *Funcs) IsTensor(value api.OrtValue, out *int32) api.OrtStatus {
	return f.isTensor(value, out)
}

func (f *Funcs) GetValueType(value api.OrtValue, valueType *api.ONNXType) api.OrtStatus {
	return f.getValueType(value, valueType)
}

func (f *Funcs) GetTensorMutableData(value api.OrtValue, data *unsafe.Pointer) api.OrtStatus {
	return f.getTensorMutableData(value, data)
}

func (f *Funcs) GetTensorTypeAndShape(value api.OrtValue, typeAndShape *api.OrtTensorTypeAndShapeInfo) api.OrtStatus {
	return f.getTensorTypeAndShape(value, typeAndShape)
}

func (f *Funcs) GetTensorElementType(typeAndShape api.OrtTensorTypeAndShapeInfo, dataType *api.ONNXTensorElementDataType) api.OrtStatus {
	return f.getTensorElementType(typeAndShape, dataType)
}

func (f *Funcs) GetDimensionsCount(typeAndShape api.OrtTensorTypeAndShapeInfo, count *uintptr) api.OrtStatus {
	return f.getDimensionsCount(typeAndShape, count)
}

func (f *Funcs) GetDimensions(typeAndShape api.OrtTensorTypeAndShapeInfo, dims *int64, dimsLen uintptr) api.OrtStatus {
	return f.getDimensions(typeAndShape, dims, dimsLen)
}

func (f *Funcs) GetTensorShapeElementCount(typeAndShape api.OrtTensorTypeAndShapeInfo, count *uintptr) api.OrtStatus {
	return f.getTensorShapeElementCount(typeAndShape, count)
}

func (f *Funcs) ReleaseValue(value api.OrtValue) {
	f.releaseValue(value)
}

func (f *Funcs) ReleaseTensorTypeAndShapeInfo(typeAndShape api.OrtTensorTypeAndShapeInfo) {
	f.releaseTensorTypeAndShapeInfo(typeAndShape)
}

// Execution provider information methods

func (f *Funcs) GetAvailableProviders(providers ***byte, length *int32) api.OrtStatus {
	return f.getAvailableProviders(providers, length)
}

func (f *Funcs) ReleaseAvailableProviders(providers **byte, length int32) api.OrtStatus {
	return f.releaseAvailableProviders(providers, length)
}
