package onnxbind

import "github.com/substrate-ml/onnxbind/onnxbind/internal/api"

// TensorBatch is an ordered collection of owned tensor handles, typically
// the inputs or outputs of a single run. It keeps a snapshot of the native
// references in the contiguous layout the engine's run entry point expects,
// so a run makes no per-tensor native calls.
//
// The batch borrows its handles: closing the batch's tensors is the
// caller's job, and a tensor must outlive any run that uses a batch
// containing it. Handles of different element types can share a batch.
type TensorBatch struct {
	handles []Handle
	refs    []api.OrtValue
}

// NewTensorBatch builds a batch over the given handles. The slice is copied;
// later changes to it do not affect the batch.
func NewTensorBatch(handles ...Handle) *TensorBatch {
	b := &TensorBatch{
		handles: make([]Handle, len(handles)),
		refs:    make([]api.OrtValue, len(handles)),
	}
	copy(b.handles, handles)
	for i, h := range handles {
		b.refs[i] = h.nativeRef()
	}
	return b
}

// Len returns the number of handles in the batch.
func (b *TensorBatch) Len() int {
	return len(b.handles)
}

// At returns the handle at position i.
func (b *TensorBatch) At(i int) (Handle, error) {
	if i < 0 || i >= len(b.handles) {
		return nil, &IndexOutOfRangeError{Index: i, Length: len(b.handles)}
	}
	return b.handles[i], nil
}

// Set replaces the handle at position i and refreshes the native reference
// snapshot for that slot.
func (b *TensorBatch) Set(i int, h Handle) error {
	if i < 0 || i >= len(b.handles) {
		return &IndexOutOfRangeError{Index: i, Length: len(b.handles)}
	}
	b.handles[i] = h
	b.refs[i] = h.nativeRef()
	return nil
}

// nativeArray returns the snapshot of native references in batch order.
func (b *TensorBatch) nativeArray() []api.OrtValue {
	return b.refs
}
