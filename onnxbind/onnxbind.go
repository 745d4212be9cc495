package onnxbind

import (
	"github.com/substrate-ml/onnxbind/onnxbind/internal/api"
)

// ErrorCode represents error codes returned by the ONNX Runtime C API.
type ErrorCode = api.OrtErrorCode

// Error codes returned by the ONNX Runtime C API.
const (
	// ErrorCodeOK indicates success (no error).
	ErrorCodeOK ErrorCode = 0
	// ErrorCodeFail indicates a generic failure.
	ErrorCodeFail ErrorCode = 1
	// ErrorCodeInvalidArgument indicates an invalid argument was provided.
	ErrorCodeInvalidArgument ErrorCode = 2
	// ErrorCodeNoSuchFile indicates the specified file was not found.
	ErrorCodeNoSuchFile ErrorCode = 3
	// ErrorCodeNoModel indicates no model was loaded.
	ErrorCodeNoModel ErrorCode = 4
	// ErrorCodeEngineError indicates an error in the execution engine.
	ErrorCodeEngineError ErrorCode = 5
	// ErrorCodeRuntimeException indicates a runtime exception occurred.
	ErrorCodeRuntimeException ErrorCode = 6
	// ErrorCodeInvalidProtobuf indicates the protobuf format is invalid.
	ErrorCodeInvalidProtobuf ErrorCode = 7
	// ErrorCodeModelLoaded indicates the model is already loaded.
	ErrorCodeModelLoaded ErrorCode = 8
	// ErrorCodeNotImplemented indicates the feature is not implemented.
	ErrorCodeNotImplemented ErrorCode = 9
	// ErrorCodeInvalidGraph indicates the model graph is invalid.
	ErrorCodeInvalidGraph ErrorCode = 10
	// ErrorCodeEPFail indicates an execution provider failure.
	ErrorCodeEPFail ErrorCode = 11
)

// LoggingLevel represents logging verbosity levels for ONNX Runtime.
type LoggingLevel = api.OrtLoggingLevel

// Logging levels for ONNX Runtime.
const (
	// LoggingLevelVerbose enables verbose logging.
	LoggingLevelVerbose LoggingLevel = 0
	// LoggingLevelInfo enables informational logging.
	LoggingLevelInfo LoggingLevel = 1
	// LoggingLevelWarning enables warning logging.
	LoggingLevelWarning LoggingLevel = 2
	// LoggingLevelError enables error logging.
	LoggingLevelError LoggingLevel = 3
	// LoggingLevelFatal enables fatal error logging only.
	LoggingLevelFatal LoggingLevel = 4
)

// ONNXType represents the type of an ONNX value.
type ONNXType = api.ONNXType

// ONNX value types.
const (
	// ONNXTypeUnknown indicates an unknown type.
	ONNXTypeUnknown ONNXType = 0
	// ONNXTypeTensor indicates a tensor value.
	ONNXTypeTensor ONNXType = 1
	// ONNXTypeSequence indicates a sequence value.
	ONNXTypeSequence ONNXType = 2
	// ONNXTypeMap indicates a map value.
	ONNXTypeMap ONNXType = 3
	// ONNXTypeOpaque indicates an opaque value.
	ONNXTypeOpaque ONNXType = 4
	// ONNXTypeSparsetensor indicates a sparse tensor value.
	ONNXTypeSparsetensor ONNXType = 5
	// ONNXTypeOptional indicates an optional value.
	ONNXTypeOptional ONNXType = 6
)

// GraphOptimizationLevel controls how aggressively ORT optimizes the graph.
type GraphOptimizationLevel int32

// Graph optimization levels.
const (
	GraphOptimizationDisabled GraphOptimizationLevel = 0
	GraphOptimizationBasic    GraphOptimizationLevel = 1
	GraphOptimizationExtended GraphOptimizationLevel = 2
	GraphOptimizationAll      GraphOptimizationLevel = 99
)

// ExecutionMode controls sequential vs parallel operator execution.
type ExecutionMode int32

// Execution modes.
const (
	ExecutionModeSequential ExecutionMode = 0
	ExecutionModeParallel   ExecutionMode = 1
)

// allocatorType represents memory allocator types.
type allocatorType = api.OrtAllocatorType

// Memory allocator types.
const (
	// allocatorTypeDevice indicates a device-specific allocator.
	allocatorTypeDevice allocatorType = 0
	// allocatorTypeArena indicates an arena allocator.
	allocatorTypeArena allocatorType = 1
)

// memType represents memory types for allocations.
type memType = api.OrtMemType

// Memory types for allocations.
const (
	// memTypeDefault indicates the default memory type for the device.
	memTypeDefault memType = 0
)
