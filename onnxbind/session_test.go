package onnxbind

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSessionMetadata(t *testing.T) {
	rt, fake := newTestRuntime(t)
	fake.inputNames = []string{"input_ids", "attention_mask"}
	fake.outputNames = []string{"logits"}

	session := newTestSession(t, rt, nil)

	if diff := cmp.Diff([]string{"input_ids", "attention_mask"}, session.InputNames()); diff != "" {
		t.Errorf("InputNames mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"logits"}, session.OutputNames()); diff != "" {
		t.Errorf("OutputNames mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoke(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{3}, []float32{1, 2, 3})
	require.NoError(t, err)
	defer input.Close()

	outBuf := make([]float32, 3)
	output, err := BindTensorMut(rt, []int64{3}, outBuf)
	require.NoError(t, err)
	defer output.Close()

	err = session.Invoke(context.Background(), NewTensorBatch(input), NewTensorBatch(output), nil)
	require.NoError(t, err)

	// The fake engine copies the first input into every output.
	require.Equal(t, []float32{1, 2, 3}, outBuf)
	require.Equal(t, 1, fake.runCount)
}

func TestInvokeOutputCountMismatch(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil) // declares one output

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	require.NoError(t, err)
	defer input.Close()

	a, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	require.NoError(t, err)
	defer a.Close()
	b, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	require.NoError(t, err)
	defer b.Close()

	err = session.Invoke(context.Background(), NewTensorBatch(input), NewTensorBatch(a, b), nil)

	var countErr *OutputCountMismatchError
	require.ErrorAs(t, err, &countErr)
	require.Equal(t, 1, countErr.Declared)
	require.Equal(t, 2, countErr.Got)

	// The mismatch is caught before any native call.
	require.Equal(t, 0, fake.runCount)
}

func TestInvokeInputCountMismatch(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil) // declares one input

	a, err := BindTensor(rt, []int64{1}, []float32{1})
	require.NoError(t, err)
	defer a.Close()
	b, err := BindTensor(rt, []int64{1}, []float32{2})
	require.NoError(t, err)
	defer b.Close()

	output, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	require.NoError(t, err)
	defer output.Close()

	err = session.Invoke(context.Background(), NewTensorBatch(a, b), NewTensorBatch(output), nil)
	require.Error(t, err)
	require.Equal(t, 0, fake.runCount)
}

func TestInvokeNamed(t *testing.T) {
	rt, fake := newTestRuntime(t)
	fake.inputNames = []string{"a", "b"}
	fake.outputNames = []string{"out1", "out2"}
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{2}, []float32{5, 6})
	require.NoError(t, err)
	defer input.Close()

	outBuf := make([]float32, 2)
	output, err := BindTensorMut(rt, []int64{2}, outBuf)
	require.NoError(t, err)
	defer output.Close()

	// Feed only input "a" and request only output "out2".
	inNames, err := BuildNameTable([]string{"a"})
	require.NoError(t, err)
	outNames, err := BuildNameTable([]string{"out2"})
	require.NoError(t, err)

	err = session.InvokeNamed(context.Background(), inNames, NewTensorBatch(input), outNames, NewTensorBatch(output), nil)
	require.NoError(t, err)
	require.Equal(t, []float32{5, 6}, outBuf)
	require.Equal(t, 1, fake.lastInputCnt)
	require.Equal(t, 1, fake.lastOutputCnt)
}

func TestInvokeNamedCountMismatch(t *testing.T) {
	rt, _ := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	require.NoError(t, err)
	defer input.Close()

	names, err := BuildNameTable([]string{"x", "y"})
	require.NoError(t, err)

	err = session.InvokeNamed(context.Background(), names, NewTensorBatch(input), names, NewTensorBatch(input, input), nil)
	require.Error(t, err)
}

func TestInvokeAfterClose(t *testing.T) {
	rt, _ := newTestRuntime(t)
	session := newTestSession(t, rt, nil)
	session.Close()

	err := session.Invoke(context.Background(), NewTensorBatch(), NewTensorBatch(), nil)
	require.ErrorIs(t, err, ErrSessionClosed)

	_, err = session.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionDoubleClose(t *testing.T) {
	rt, _ := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	session.Close()
	session.Close() // should not panic
}

func TestRunAllocatedOutputs(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	defer input.Close()

	outputs, err := session.Run(context.Background(), map[string]Handle{"input": input})
	require.NoError(t, err)
	require.Len(t, outputs, 1)

	value := outputs["output"]
	require.NotNil(t, value)

	data, shape, err := GetTensorData[float32](value)
	require.NoError(t, err)
	if diff := cmp.Diff([]float32{1, 2, 3, 4}, data); diff != "" {
		t.Errorf("output data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{2, 2}, shape); diff != "" {
		t.Errorf("output shape mismatch (-want +got):\n%s", diff)
	}

	value.Close()
	input.Close()
	fake.assertNoLeaks(t)
}

func TestRunWithRunTag(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	require.NoError(t, err)
	defer input.Close()

	outputs, err := session.Run(context.Background(), map[string]Handle{"input": input}, WithRunTag("req-42"))
	require.NoError(t, err)
	for _, v := range outputs {
		v.Close()
	}

	require.Equal(t, "req-42", fake.lastRunTag)
}

func TestInvokeWithSharedRunOptions(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	opts, err := rt.NewRunOptions()
	require.NoError(t, err)
	require.NoError(t, opts.SetTag("batch-7"))

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	require.NoError(t, err)
	defer input.Close()
	output, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	require.NoError(t, err)
	defer output.Close()

	err = session.Invoke(context.Background(), NewTensorBatch(input), NewTensorBatch(output), opts)
	require.NoError(t, err)
	require.Equal(t, "batch-7", fake.lastRunTag)

	// Caller-owned options survive the run and are released exactly once.
	opts.Close()
	opts.Close()
	input.Close()
	output.Close()
	fake.assertNoLeaks(t)
}

func TestInvokeEngineFailure(t *testing.T) {
	rt, fake := newTestRuntime(t)
	fake.runErrMsg = "type mismatch for input"
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	require.NoError(t, err)
	output, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	require.NoError(t, err)

	err = session.Invoke(context.Background(), NewTensorBatch(input), NewTensorBatch(output), nil)

	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	require.Contains(t, runtimeErr.Message, "type mismatch")

	input.Close()
	output.Close()
	fake.assertNoLeaks(t)
}

func TestSessionHooks(t *testing.T) {
	rt, _ := newTestRuntime(t)

	var before, after int
	var lastInfo *RunInfo
	hooks := []Hook{
		AfterRunHook(func(info *RunInfo) {
			after++
			lastInfo = info
		}),
		&countingHook{before: &before},
	}
	session := newTestSession(t, rt, &SessionOptions{Hooks: hooks})

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	require.NoError(t, err)
	defer input.Close()
	output, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	require.NoError(t, err)
	defer output.Close()

	err = session.Invoke(context.Background(), NewTensorBatch(input), NewTensorBatch(output), nil)
	require.NoError(t, err)

	require.Equal(t, 1, before)
	require.Equal(t, 1, after)
	require.NotNil(t, lastInfo)
	require.NoError(t, lastInfo.Error)
	require.Equal(t, []string{"input"}, lastInfo.InputNames)
	require.Equal(t, []string{"output"}, lastInfo.OutputNames)
}

type countingHook struct {
	before *int
}

func (h *countingHook) BeforeRun(_ *RunInfo) { *h.before++ }
func (h *countingHook) AfterRun(_ *RunInfo)  {}

func TestRunOptionsClosedErrors(t *testing.T) {
	rt, _ := newTestRuntime(t)

	opts, err := rt.NewRunOptions()
	require.NoError(t, err)
	opts.Close()

	require.ErrorIs(t, opts.SetTag("x"), ErrRunOptionsClosed)
	require.ErrorIs(t, opts.SetTerminate(), ErrRunOptionsClosed)
	require.ErrorIs(t, opts.UnsetTerminate(), ErrRunOptionsClosed)
	require.ErrorIs(t, opts.AddConfigEntry("k", "v"), ErrRunOptionsClosed)

	opts.Close() // should not panic
}
