// Package onnxbind is a safety layer for running ONNX Runtime inference over
// caller-owned memory, without cgo. It binds Go buffers to native tensor
// values zero-copy, tracks the lifetime of every native reference it creates,
// and assembles the parallel name/handle arrays the C API's Run entry point
// expects, so callers never touch a raw native pointer directly.
//
// The native engine is reached only through an injected function table loaded
// with purego, which keeps the whole package testable against an in-process
// fake backend.
package onnxbind
