package onnxbind

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInvokeContextCancellation(t *testing.T) {
	rt, fake := newTestRuntime(t)
	fake.runDelay = 500 * time.Millisecond
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	if err != nil {
		t.Fatalf("BindTensor failed: %v", err)
	}
	output, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	if err != nil {
		t.Fatalf("BindTensorMut failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = session.Invoke(ctx, NewTensorBatch(input), NewTensorBatch(output), nil)

	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("Expected RuntimeError from terminated run, got %v", err)
	}

	input.Close()
	output.Close()
	// The ephemeral run options created for the cancellable context were
	// released after the watcher goroutine exited.
	fake.assertNoLeaks(t)
}

func TestInvokeCancellableContextCompletes(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	if err != nil {
		t.Fatalf("BindTensor failed: %v", err)
	}
	output, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	if err != nil {
		t.Fatalf("BindTensorMut failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := session.Invoke(ctx, NewTensorBatch(input), NewTensorBatch(output), nil); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	input.Close()
	output.Close()
	fake.assertNoLeaks(t)
}

func TestSetTerminateStopsRun(t *testing.T) {
	rt, fake := newTestRuntime(t)
	session := newTestSession(t, rt, nil)

	opts, err := rt.NewRunOptions()
	if err != nil {
		t.Fatalf("NewRunOptions failed: %v", err)
	}
	defer opts.Close()

	input, err := BindTensor(rt, []int64{1}, []float32{1})
	if err != nil {
		t.Fatalf("BindTensor failed: %v", err)
	}
	defer input.Close()
	output, err := BindTensorMut(rt, []int64{1}, make([]float32, 1))
	if err != nil {
		t.Fatalf("BindTensorMut failed: %v", err)
	}
	defer output.Close()

	if err := opts.SetTerminate(); err != nil {
		t.Fatalf("SetTerminate failed: %v", err)
	}

	err = session.Invoke(context.Background(), NewTensorBatch(input), NewTensorBatch(output), opts)
	if err == nil {
		t.Fatal("Expected terminated run to fail")
	}

	// Clearing the flag makes the options reusable.
	if err := opts.UnsetTerminate(); err != nil {
		t.Fatalf("UnsetTerminate failed: %v", err)
	}
	if err := session.Invoke(context.Background(), NewTensorBatch(input), NewTensorBatch(output), opts); err != nil {
		t.Fatalf("Invoke after UnsetTerminate failed: %v", err)
	}

	if fake.runCount != 1 {
		t.Errorf("runCount = %d, want 1 successful run", fake.runCount)
	}
}
