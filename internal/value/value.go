// Package value implements the exact-width primitive arithmetic of
// spec.md §3/C1: signed 32-bit and 64-bit two's-complement integers and
// IEEE-754 float/double values whose bit patterns (NaN payloads, signed
// zero) must round-trip verbatim through the constant pool. Go's native
// int32/int64/float32/float64 already give two's-complement wraparound
// and IEEE-754 semantics, so this package is a thin, named layer over
// them — the point is to make overflow-checked operations explicit call
// sites rather than scattering raw arithmetic through the code generator
// (mirrors the original implementation's dedicated long/double helper
// types, see DESIGN.md).
package value

import "math"

// I4 is an exact 32-bit signed integer (Java int).
type I4 int32

// U4 is an exact 32-bit unsigned integer, used for class-file offsets
// and counts that do not carry arithmetic overflow semantics.
type U4 uint32

// I8 is an exact 64-bit signed integer (Java long).
type I8 int64

// F32 is an IEEE-754 single-precision value (Java float) carried as its
// raw bits so that NaN payloads and signed zero survive untouched.
type F32 struct{ Bits uint32 }

// F64 is an IEEE-754 double-precision value (Java double), same
// bit-exact treatment as F32.
type F64 struct{ Bits uint64 }

// NewF32 wraps a float32, preserving its bit pattern exactly.
func NewF32(f float32) F32 { return F32{Bits: math.Float32bits(f)} }

// NewF64 wraps a float64, preserving its bit pattern exactly.
func NewF64(f float64) F64 { return F64{Bits: math.Float64bits(f)} }

// Float returns the float32 view of f.
func (f F32) Float() float32 { return math.Float32frombits(f.Bits) }

// Float returns the float64 view of f.
func (f F64) Float() float64 { return math.Float64frombits(f.Bits) }

// IsNaN reports whether f holds any NaN bit pattern (payload-insensitive).
func (f F32) IsNaN() bool { v := f.Float(); return v != v }

// IsNaN reports whether f holds any NaN bit pattern (payload-insensitive).
func (f F64) IsNaN() bool { v := f.Float(); return v != v }

const (
	MaxI4 = I4(math.MaxInt32)
	MinI4 = I4(math.MinInt32)
	MaxI8 = I8(math.MaxInt64)
	MinI8 = I8(math.MinInt64)
)

// AddOverflows reports whether x+y overflows 32-bit signed arithmetic,
// per spec.md §4.6's "safe iff operands have opposite sign, or result
// stays within same-sign range" rule.
func AddOverflows(x, y I4) bool {
	sum := x + y
	if (x >= 0) == (y >= 0) {
		return (sum >= 0) != (x >= 0)
	}
	return false
}

// SubOverflows reports whether x-y overflows 32-bit signed arithmetic.
func SubOverflows(x, y I4) bool {
	if y == MinI4 {
		return x >= 0
	}
	return AddOverflows(x, -y)
}

// MulOverflows reports whether x*y overflows 32-bit signed arithmetic,
// per spec.md §4.6: safe when either operand has absolute value <= 1, or
// the mathematical product stays within [MinI4, MaxI4].
func MulOverflows(x, y I4) bool {
	if x == 0 || y == 0 {
		return false
	}
	ax, ay := int64(x), int64(y)
	if (ax == 1 || ax == -1) || (ay == 1 || ay == -1) {
		return false
	}
	p := ax * ay
	return p < int64(MinI4) || p > int64(MaxI4)
}

// NegOverflows reports whether -x overflows 32-bit signed arithmetic
// (only true for MinI4, since +MaxI4 has no positive counterpart).
func NegOverflows(x I4) bool {
	return x == MinI4
}

// DivUnsafe reports whether x/y is unsafe to fold at compile time:
// division by zero, or the MinI4/-1 overflow case (spec.md §4.6).
func DivUnsafe(x, y I4) bool {
	return y == 0 || (x == MinI4 && y == -1)
}

// AddOverflowsI8 is the 64-bit analogue of AddOverflows.
func AddOverflowsI8(x, y I8) bool {
	sum := x + y
	if (x >= 0) == (y >= 0) {
		return (sum >= 0) != (x >= 0)
	}
	return false
}

// MulOverflowsI8 is the 64-bit analogue of MulOverflows.
func MulOverflowsI8(x, y I8) bool {
	if x == 0 || y == 0 {
		return false
	}
	if x == 1 || x == -1 || y == 1 || y == -1 {
		p := x * y
		return p/y != x
	}
	p := x * y
	return p/y != x
}

// DivUnsafeI8 is the 64-bit analogue of DivUnsafe.
func DivUnsafeI8(x, y I8) bool {
	return y == 0 || (x == MinI8 && y == -1)
}

// Words returns the JVM operand-stack word count of a value of the named
// primitive descriptor character ('J' long, 'D' double, 'V' void, else 1
// word), per spec.md §4.4.
func Words(descriptor byte) int {
	switch descriptor {
	case 'J', 'D':
		return 2
	case 'V':
		return 0
	default:
		return 1
	}
}
