package onnxbind

import (
	"math"
	"testing"
)

func TestFloat16RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input float32
		want  float32
	}{
		{"zero", 0, 0},
		{"one", 1.0, 1.0},
		{"negative one", -1.0, -1.0},
		{"half", 0.5, 0.5},
		{"two", 2.0, 2.0},
		{"small normal", 0.00006103515625, 0.00006103515625}, // smallest normal fp16
		{"max fp16", 65504, 65504},
		{"negative max", -65504, -65504},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f16 := NewFloat16(tt.input)
			got := f16.Float32()
			if got != tt.want {
				t.Errorf("Float16 roundtrip(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFloat16Overflow(t *testing.T) {
	// Values beyond fp16 max should become infinity
	f16 := NewFloat16(100000)
	if got := f16.Float32(); !math.IsInf(float64(got), 1) {
		t.Errorf("Float16 overflow: expected +Inf, got %v", got)
	}

	f16neg := NewFloat16(-100000)
	if got := f16neg.Float32(); !math.IsInf(float64(got), -1) {
		t.Errorf("Float16 negative overflow: expected -Inf, got %v", got)
	}
}

func TestFloat16Underflow(t *testing.T) {
	// Very tiny values should become zero
	f16 := NewFloat16(1e-20)
	if got := f16.Float32(); got != 0 {
		t.Errorf("Float16 underflow: expected 0, got %v", got)
	}
}

func TestBFloat16RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input float32
		want  float32
	}{
		{"zero", 0, 0},
		{"one", 1.0, 1.0},
		{"negative one", -1.0, -1.0},
		{"two", 2.0, 2.0},
		{"one and a half", 1.5, 1.5},
		{"large power of two", 1 << 30, 1 << 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bf := NewBFloat16(tt.input)
			got := bf.Float32()
			if got != tt.want {
				t.Errorf("BFloat16 roundtrip(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBFloat16Precision(t *testing.T) {
	// bfloat16 has only 8 significand bits; 1.001 is not representable
	// exactly but must come back close.
	bf := NewBFloat16(1.001)
	got := bf.Float32()
	if diff := math.Abs(float64(got) - 1.001); diff > 0.01 {
		t.Errorf("BFloat16(1.001) = %v, too far off", got)
	}
}
