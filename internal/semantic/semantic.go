// Package semantic implements the pure, stateless conversion and
// promotion rules spec.md §6.1/C10 asks the code generator to consult:
// assignment/method-invocation/cast convertibility, unary/binary numeric
// promotion, and constant folding with overflow-checked arithmetic. None
// of this walks or mutates an AST; it is consulted by internal/codegen
// exactly the way the teacher's lang/types package (value.go, int.go,
// float.go) is consulted by its compiler rather than being a pass of its
// own.
package semantic

import (
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/value"
)

// primitiveRank orders primitives for numeric promotion and narrowing
// decisions, per JLS §5.6.
var primitiveRank = map[byte]int{
	'B': 1, 'S': 2, 'C': 2, 'I': 3, 'J': 4, 'F': 5, 'D': 6,
}

func isNumeric(t *symbols.Type) bool {
	return t.IsPrimitive() && t.PrimitiveDescriptor != 'V' && t.PrimitiveDescriptor != 'Z'
}

// UnaryNumericPromotion applies JLS §5.6.1: byte/short/char promote to
// int; everything else numeric is unchanged.
func UnaryNumericPromotion(t *symbols.Type) *symbols.Type {
	if !t.IsPrimitive() {
		return t
	}
	switch t.PrimitiveDescriptor {
	case 'B', 'S', 'C':
		return symbols.Int
	default:
		return t
	}
}

// BinaryNumericPromotion applies JLS §5.6.2: both operands promote to
// the wider of {double > float > long > int}, with byte/short/char first
// widening to int.
func BinaryNumericPromotion(a, b *symbols.Type) *symbols.Type {
	pa, pb := UnaryNumericPromotion(a), UnaryNumericPromotion(b)
	if pa.PrimitiveDescriptor == 'D' || pb.PrimitiveDescriptor == 'D' {
		return symbols.Double
	}
	if pa.PrimitiveDescriptor == 'F' || pb.PrimitiveDescriptor == 'F' {
		return symbols.Float
	}
	if pa.PrimitiveDescriptor == 'J' || pb.PrimitiveDescriptor == 'J' {
		return symbols.Long
	}
	return symbols.Int
}

// CanAssignmentConvert reports whether a value of type from may be
// assigned to a variable of type to without an explicit cast (JLS
// §5.2): identity, primitive widening, or reference widening
// (IsSubtype). Boxing/unboxing assignment conversions are deliberately
// NOT modeled here; callers that need them consult IsBoxing/IsUnboxing
// directly (internal/codegen's emitCast is the only current caller),
// keeping this predicate a pure reflection of the non-boxing half of the
// JLS table.
func CanAssignmentConvert(from, to *symbols.Type) bool {
	if from == to {
		return true
	}
	if from.IsPrimitive() && to.IsPrimitive() {
		return widens(from.PrimitiveDescriptor, to.PrimitiveDescriptor)
	}
	if from.IsPrimitive() != to.IsPrimitive() {
		return false
	}
	return from.IsSubtype(to)
}

// widens reports whether the primitive conversion from->to is a JLS
// §5.1.2 widening conversion.
func widens(from, to byte) bool {
	if from == to {
		return true
	}
	order := "BSIJFD"
	fi, ti := indexOf(order, from), indexOf(order, to)
	if from == 'C' {
		// char widens to int/long/float/double but not short, and short
		// does not widen to char; handle as a special case outside the
		// byte/short/int/long/float/double chain.
		return ti >= indexOf(order, 'I')
	}
	if fi < 0 || ti < 0 {
		return false
	}
	return ti >= fi
}

func indexOf(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// CanMethodInvocationConvert reports whether an argument of type from
// may be passed to a parameter of type to without an explicit cast
// (JLS §5.3): identical to assignment conversion for this generator's
// purposes since it never sees a raw/unchecked varargs call before
// erasure.
func CanMethodInvocationConvert(from, to *symbols.Type) bool {
	return CanAssignmentConvert(from, to)
}

// CanCastConvert reports whether an explicit cast from `from` to `to`
// is permitted by JLS §5.5: any numeric-to-numeric cast, or a reference
// cast along either direction of the subtype relation (downcasts are
// legal at compile time and checked at runtime via CHECKCAST).
func CanCastConvert(from, to *symbols.Type) bool {
	if from.IsPrimitive() && to.IsPrimitive() {
		return isNumeric(from) && isNumeric(to)
	}
	if from.IsPrimitive() != to.IsPrimitive() {
		return false
	}
	return from.IsSubtype(to) || to.IsSubtype(from)
}

// CastValue performs a compile-time constant cast between primitive
// types, applying Java's narrowing truncation rules (JLS §5.1.3): a
// narrowing numeric conversion to an integral type discards all but the
// low-order n bits of the two's-complement representation.
func CastValue(v interface{}, to *symbols.Type) interface{} {
	if !to.IsPrimitive() {
		return v
	}
	var asDouble float64
	var asLong int64
	isFloatSrc := false

	switch x := v.(type) {
	case value.I4:
		asLong = int64(x)
	case value.I8:
		asLong = int64(x)
	case value.F32:
		asDouble = float64(x.Float())
		isFloatSrc = true
	case value.F64:
		asDouble = x.Float()
		isFloatSrc = true
	default:
		return v
	}

	switch to.PrimitiveDescriptor {
	case 'B':
		if isFloatSrc {
			asLong = int64(asDouble)
		}
		return value.I4(int8(asLong))
	case 'S':
		if isFloatSrc {
			asLong = int64(asDouble)
		}
		return value.I4(int16(asLong))
	case 'C':
		if isFloatSrc {
			asLong = int64(asDouble)
		}
		return value.I4(uint16(asLong))
	case 'I':
		if isFloatSrc {
			return value.I4(int32(asDouble))
		}
		return value.I4(int32(asLong))
	case 'J':
		if isFloatSrc {
			return value.I8(int64(asDouble))
		}
		return value.I8(asLong)
	case 'F':
		if isFloatSrc {
			return value.NewF32(float32(asDouble))
		}
		return value.NewF32(float32(asLong))
	case 'D':
		if isFloatSrc {
			return value.NewF64(asDouble)
		}
		return value.NewF64(float64(asLong))
	}
	return v
}

// WrapperOf returns the boxed wrapper class's internal name for a
// primitive type, per JLS §5.1.7's boxing table.
func WrapperOf(t *symbols.Type) string {
	if !t.IsPrimitive() {
		return ""
	}
	switch t.PrimitiveDescriptor {
	case 'Z':
		return "java/lang/Boolean"
	case 'B':
		return "java/lang/Byte"
	case 'C':
		return "java/lang/Character"
	case 'S':
		return "java/lang/Short"
	case 'I':
		return "java/lang/Integer"
	case 'J':
		return "java/lang/Long"
	case 'F':
		return "java/lang/Float"
	case 'D':
		return "java/lang/Double"
	}
	return ""
}

// PrimitiveOf returns the primitive type a wrapper class unboxes to, or
// nil if fqn is not a recognized wrapper.
func PrimitiveOf(fqn string) *symbols.Type {
	switch fqn {
	case "java/lang/Boolean":
		return symbols.Boolean
	case "java/lang/Byte":
		return symbols.Byte
	case "java/lang/Character":
		return symbols.Char
	case "java/lang/Short":
		return symbols.Short
	case "java/lang/Integer":
		return symbols.Int
	case "java/lang/Long":
		return symbols.Long
	case "java/lang/Float":
		return symbols.Float
	case "java/lang/Double":
		return symbols.Double
	}
	return nil
}

// IsBoxing reports whether converting from->to is a boxing conversion.
func IsBoxing(from, to *symbols.Type) bool {
	return from.IsPrimitive() && to.IsClass() && WrapperOf(from) == to.FullyQualifiedName
}

// IsUnboxing reports whether converting from->to is an unboxing
// conversion.
func IsUnboxing(from, to *symbols.Type) bool {
	return from.IsClass() && to.IsPrimitive() && PrimitiveOf(from.FullyQualifiedName) == to
}

// FoldBinaryAdd attempts constant folding of int addition, reporting
// overflow via the value package's overflow predicates (spec.md §4.6);
// callers are responsible for turning a false ok result into a
// diagnostic rather than silently wrapping.
func FoldBinaryAdd(a, b value.I4) (sum value.I4, ok bool) {
	return a + b, !value.AddOverflows(a, b)
}

// FoldBinarySub mirrors FoldBinaryAdd for subtraction.
func FoldBinarySub(a, b value.I4) (diff value.I4, ok bool) {
	return a - b, !value.SubOverflows(a, b)
}

// FoldBinaryMul mirrors FoldBinaryAdd for multiplication.
func FoldBinaryMul(a, b value.I4) (prod value.I4, ok bool) {
	return a * b, !value.MulOverflows(a, b)
}
