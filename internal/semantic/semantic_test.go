package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/7mind/jbcgen/internal/semantic"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/value"
)

func TestUnaryNumericPromotion(t *testing.T) {
	cases := []struct {
		in, want *symbols.Type
	}{
		{symbols.Byte, symbols.Int},
		{symbols.Short, symbols.Int},
		{symbols.Char, symbols.Int},
		{symbols.Int, symbols.Int},
		{symbols.Long, symbols.Long},
		{symbols.Double, symbols.Double},
	}
	for _, c := range cases {
		assert.Same(t, c.want, semantic.UnaryNumericPromotion(c.in))
	}
}

func TestBinaryNumericPromotionWidensToWidestOperand(t *testing.T) {
	cases := []struct {
		a, b, want *symbols.Type
	}{
		{symbols.Int, symbols.Int, symbols.Int},
		{symbols.Byte, symbols.Short, symbols.Int},
		{symbols.Int, symbols.Long, symbols.Long},
		{symbols.Long, symbols.Float, symbols.Float},
		{symbols.Float, symbols.Double, symbols.Double},
		{symbols.Int, symbols.Double, symbols.Double},
	}
	for _, c := range cases {
		assert.Same(t, c.want, semantic.BinaryNumericPromotion(c.a, c.b))
	}
}

func TestCanAssignmentConvertWidening(t *testing.T) {
	assert.True(t, semantic.CanAssignmentConvert(symbols.Byte, symbols.Int))
	assert.True(t, semantic.CanAssignmentConvert(symbols.Int, symbols.Long))
	assert.True(t, semantic.CanAssignmentConvert(symbols.Char, symbols.Int))
	assert.False(t, semantic.CanAssignmentConvert(symbols.Int, symbols.Byte), "narrowing requires an explicit cast")
	assert.False(t, semantic.CanAssignmentConvert(symbols.Short, symbols.Char), "short does not widen to char")
	assert.False(t, semantic.CanAssignmentConvert(symbols.Int, symbols.Object))
}

func TestCanAssignmentConvertReferenceSubtyping(t *testing.T) {
	base := symbols.ClassType("Base")
	derived := symbols.ClassType("Derived")
	derived.Super = base

	assert.True(t, semantic.CanAssignmentConvert(derived, base))
	assert.False(t, semantic.CanAssignmentConvert(base, derived))
}

func TestCanCastConvertNumericAlwaysAllowed(t *testing.T) {
	assert.True(t, semantic.CanCastConvert(symbols.Double, symbols.Byte))
	assert.True(t, semantic.CanCastConvert(symbols.Int, symbols.Float))
	assert.False(t, semantic.CanCastConvert(symbols.Int, symbols.Object), "mixing primitive and reference is never castable")
}

func TestCanCastConvertReferenceEitherDirection(t *testing.T) {
	base := symbols.ClassType("Base")
	derived := symbols.ClassType("Derived")
	derived.Super = base

	assert.True(t, semantic.CanCastConvert(derived, base))
	assert.True(t, semantic.CanCastConvert(base, derived), "downcasts are legal at compile time, checked at runtime")
}

func TestCastValueNarrowsToLowOrderBits(t *testing.T) {
	got := semantic.CastValue(value.I4(300), symbols.Byte)
	assert.Equal(t, value.I4(44), got, "300 truncated to a signed byte is 300-256=44")
}

func TestCastValueFloatToIntTruncatesTowardZero(t *testing.T) {
	got := semantic.CastValue(value.NewF64(3.99), symbols.Int)
	assert.Equal(t, value.I4(3), got)

	got = semantic.CastValue(value.NewF64(-3.99), symbols.Int)
	assert.Equal(t, value.I4(-3), got)
}

func TestCastValueIntToDouble(t *testing.T) {
	got := semantic.CastValue(value.I4(7), symbols.Double)
	f, ok := got.(value.F64)
	if !ok {
		t.Fatalf("want value.F64, got %T", got)
	}
	assert.Equal(t, 7.0, f.Float())
}

func TestWrapperOfAndPrimitiveOfRoundTrip(t *testing.T) {
	prims := []*symbols.Type{symbols.Boolean, symbols.Byte, symbols.Char, symbols.Short,
		symbols.Int, symbols.Long, symbols.Float, symbols.Double}
	for _, p := range prims {
		wrapper := semantic.WrapperOf(p)
		assert.NotEmpty(t, wrapper)
		assert.Same(t, p, semantic.PrimitiveOf(wrapper))
	}
}

func TestIsBoxingAndIsUnboxing(t *testing.T) {
	integer := symbols.ClassType("java/lang/Integer")
	assert.True(t, semantic.IsBoxing(symbols.Int, integer))
	assert.False(t, semantic.IsBoxing(symbols.Long, integer))

	assert.True(t, semantic.IsUnboxing(integer, symbols.Int))
	assert.False(t, semantic.IsUnboxing(integer, symbols.Long))
}

func TestFoldBinaryArithmeticReportsOverflow(t *testing.T) {
	sum, ok := semantic.FoldBinaryAdd(value.I4(1), value.I4(2))
	assert.True(t, ok)
	assert.Equal(t, value.I4(3), sum)

	_, ok = semantic.FoldBinaryAdd(value.I4(2147483647), value.I4(1))
	assert.False(t, ok, "INT_MAX + 1 overflows")

	diff, ok := semantic.FoldBinarySub(value.I4(5), value.I4(3))
	assert.True(t, ok)
	assert.Equal(t, value.I4(2), diff)

	prod, ok := semantic.FoldBinaryMul(value.I4(6), value.I4(7))
	assert.True(t, ok)
	assert.Equal(t, value.I4(42), prod)
}
