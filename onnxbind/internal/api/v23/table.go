package v23

// APIVersion is the ONNX Runtime C API version this table targets.
const APIVersion = 23

// APIBase mirrors OrtApiBase from onnxruntime_c_api.h.
type APIBase struct {
	GetAPI           uintptr
	GetVersionString uintptr
}

// API mirrors the OrtApi function pointer table from onnxruntime_c_api.h.
// Field order must match the header exactly; entries this package never
// calls are collapsed into anonymous padding blocks so that the entries it
// does call land on the right offsets.
type API struct {
	CreateStatus    uintptr
	GetErrorCode    uintptr
	GetErrorMessage uintptr

	CreateEnv                 uintptr
	CreateEnvWithCustomLogger uintptr
	EnableTelemetryEvents     uintptr
	DisableTelemetryEvents    uintptr

	CreateSession          uintptr
	CreateSessionFromArray uintptr
	Run                    uintptr

	CreateSessionOptions             uintptr
	SetOptimizedModelFilePath        uintptr
	CloneSessionOptions              uintptr
	SetSessionExecutionMode          uintptr
	EnableProfiling                  uintptr
	DisableProfiling                 uintptr
	EnableMemPattern                 uintptr
	DisableMemPattern                uintptr
	EnableCpuMemArena                uintptr
	DisableCpuMemArena               uintptr
	SetSessionLogId                  uintptr
	SetSessionLogVerbosityLevel      uintptr
	SetSessionLogSeverityLevel       uintptr
	SetSessionGraphOptimizationLevel uintptr
	SetIntraOpNumThreads             uintptr
	SetInterOpNumThreads             uintptr

	CreateCustomOpDomain     uintptr
	CustomOpDomainAdd        uintptr
	AddCustomOpDomain        uintptr
	RegisterCustomOpsLibrary uintptr

	SessionGetInputCount                     uintptr
	SessionGetOutputCount                    uintptr
	SessionGetOverridableInitializerCount    uintptr
	SessionGetInputTypeInfo                  uintptr
	SessionGetOutputTypeInfo                 uintptr
	SessionGetOverridableInitializerTypeInfo uintptr
	SessionGetInputName                      uintptr
	SessionGetOutputName                     uintptr
	SessionGetOverridableInitializerName     uintptr

	CreateRunOptions                  uintptr
	RunOptionsSetRunLogVerbosityLevel uintptr
	RunOptionsSetRunLogSeverityLevel  uintptr
	RunOptionsSetRunTag               uintptr
	RunOptionsGetRunLogVerbosityLevel uintptr
	RunOptionsGetRunLogSeverityLevel  uintptr
	RunOptionsGetRunTag               uintptr
	RunOptionsSetTerminate            uintptr
	RunOptionsUnsetTerminate          uintptr

	CreateTensorAsOrtValue         uintptr
	CreateTensorWithDataAsOrtValue uintptr
	IsTensor                       uintptr
	GetTensorMutableData           uintptr
	FillStringTensor               uintptr
	GetStringTensorDataLength      uintptr
	GetStringTensorContent         uintptr

	CastTypeInfoToTensorInfo uintptr
	GetOnnxTypeFromTypeInfo  uintptr

	CreateTensorTypeAndShapeInfo uintptr
	SetTensorElementType         uintptr
	SetDimensions                uintptr
	GetTensorElementType         uintptr
	GetDimensionsCount           uintptr
	GetDimensions                uintptr
	GetSymbolicDimensions        uintptr
	GetTensorShapeElementCount   uintptr
	GetTensorTypeAndShape        uintptr
	GetTypeInfo                  uintptr
	GetValueType                 uintptr

	CreateMemoryInfo     uintptr
	CreateCpuMemoryInfo  uintptr
	CompareMemoryInfo    uintptr
	MemoryInfoGetName    uintptr
	MemoryInfoGetId      uintptr
	MemoryInfoGetMemType uintptr
	MemoryInfoGetType    uintptr

	AllocatorAlloc                 uintptr
	AllocatorFree                  uintptr
	AllocatorGetInfo               uintptr
	GetAllocatorWithDefaultOptions uintptr

	AddFreeDimensionOverride uintptr

	GetValue          uintptr
	GetValueCount     uintptr
	CreateValue       uintptr
	CreateOpaqueValue uintptr
	GetOpaqueValue    uintptr

	KernelInfoGetAttributeFloat  uintptr
	KernelInfoGetAttributeInt64  uintptr
	KernelInfoGetAttributeString uintptr
	KernelContextGetInputCount   uintptr
	KernelContextGetOutputCount  uintptr
	KernelContextGetInput        uintptr
	KernelContextGetOutput       uintptr

	ReleaseEnv                    uintptr
	ReleaseStatus                 uintptr
	ReleaseMemoryInfo             uintptr
	ReleaseSession                uintptr
	ReleaseValue                  uintptr
	ReleaseRunOptions             uintptr
	ReleaseTypeInfo               uintptr
	ReleaseTensorTypeAndShapeInfo uintptr
	ReleaseSessionOptions         uintptr
	ReleaseCustomOpDomain         uintptr

	// Slots 102-122: GetDenotationFromTypeInfo through ReleaseThreadingOptions
	// (type-info casts, model metadata, global thread pools). Not called here.
	_ [21]uintptr

	ModelMetadataGetCustomMetadataMapKeys uintptr
	AddFreeDimensionOverrideByName        uintptr
	GetAvailableProviders                 uintptr
	ReleaseAvailableProviders             uintptr
	GetStringTensorElementLength          uintptr
	GetStringTensorElement                uintptr
	FillStringTensorElement               uintptr
	AddSessionConfigEntry                 uintptr

	// Slots 131-164: CreateAllocator through CreateArenaCfgV2 (IO binding,
	// shared allocators, env thread pools, CUDA/ROCm/OpenVINO/TensorRT
	// appenders, arena configs, kernel attribute arrays). Not called here.
	_ [34]uintptr

	AddRunConfigEntry uintptr // slot 165

	// Slots 166-215: CreatePrepackedWeightsContainer through ReleaseOp
	// (prepacked weights, TensorRT/CUDA provider options, sparse tensors,
	// custom thread hooks, external initializers, standalone ops). Not
	// called here.
	_ [50]uintptr

	SessionOptionsAppendExecutionProvider uintptr // slot 216
}
