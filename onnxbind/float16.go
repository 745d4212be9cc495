package onnxbind

import (
	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Float16 represents an IEEE 754 half-precision (16-bit) floating-point number
// in its raw bit layout, as stored in tensor buffers.
type Float16 uint16

// NewFloat16 converts a float32 to Float16, rounding to nearest-even.
func NewFloat16(f float32) Float16 {
	return Float16(float16.Fromfloat32(f).Bits())
}

// Float32 converts a Float16 to float32.
func (f Float16) Float32() float32 {
	return float16.Frombits(uint16(f)).Float32()
}

// BFloat16 represents a Brain Floating Point (16-bit) number in its raw bit
// layout. BFloat16 has the same exponent range as float32 with reduced
// precision.
type BFloat16 uint16

// NewBFloat16 converts a float32 to BFloat16.
func NewBFloat16(f float32) BFloat16 {
	return BFloat16(bfloat16.FromFloat32(f))
}

// Float32 converts a BFloat16 to float32.
func (f BFloat16) Float32() float32 {
	return bfloat16.ToFloat32(bfloat16.BF16(f))
}
