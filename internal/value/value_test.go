package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/7mind/jbcgen/internal/value"
)

func TestAddOverflows(t *testing.T) {
	assert.False(t, value.AddOverflows(1, 2))
	assert.False(t, value.AddOverflows(value.MaxI4, -1))
	assert.True(t, value.AddOverflows(value.MaxI4, 1))
	assert.True(t, value.AddOverflows(value.MinI4, -1))
	assert.False(t, value.AddOverflows(value.MaxI4, value.MinI4), "opposite signs never overflow")
}

func TestSubOverflows(t *testing.T) {
	assert.False(t, value.SubOverflows(5, 3))
	assert.True(t, value.SubOverflows(value.MinI4, 1))
	assert.True(t, value.SubOverflows(value.MaxI4, value.MinI4), "MaxI4 - MinI4 exceeds MaxI4")
}

func TestMulOverflows(t *testing.T) {
	assert.False(t, value.MulOverflows(0, value.MaxI4))
	assert.False(t, value.MulOverflows(1, value.MaxI4))
	assert.False(t, value.MulOverflows(-1, value.MinI4+1))
	assert.True(t, value.MulOverflows(value.MaxI4, 2))
	assert.False(t, value.MulOverflows(1000, 1000))
}

func TestNegOverflows(t *testing.T) {
	assert.True(t, value.NegOverflows(value.MinI4))
	assert.False(t, value.NegOverflows(value.MaxI4))
	assert.False(t, value.NegOverflows(0))
}

func TestDivUnsafe(t *testing.T) {
	assert.True(t, value.DivUnsafe(5, 0))
	assert.True(t, value.DivUnsafe(value.MinI4, -1))
	assert.False(t, value.DivUnsafe(value.MinI4, 1))
	assert.False(t, value.DivUnsafe(10, 3))
}

func TestAddOverflowsI8(t *testing.T) {
	assert.False(t, value.AddOverflowsI8(1, 2))
	assert.True(t, value.AddOverflowsI8(value.MaxI8, 1))
	assert.True(t, value.AddOverflowsI8(value.MinI8, -1))
}

func TestMulOverflowsI8(t *testing.T) {
	assert.False(t, value.MulOverflowsI8(0, value.MaxI8))
	assert.False(t, value.MulOverflowsI8(1, value.MaxI8))
	assert.True(t, value.MulOverflowsI8(value.MaxI8, 2))
	assert.False(t, value.MulOverflowsI8(1000, 1000))
}

func TestDivUnsafeI8(t *testing.T) {
	assert.True(t, value.DivUnsafeI8(5, 0))
	assert.True(t, value.DivUnsafeI8(value.MinI8, -1))
	assert.False(t, value.DivUnsafeI8(10, 3))
}

func TestWords(t *testing.T) {
	assert.Equal(t, 2, value.Words('J'))
	assert.Equal(t, 2, value.Words('D'))
	assert.Equal(t, 0, value.Words('V'))
	assert.Equal(t, 1, value.Words('I'))
	assert.Equal(t, 1, value.Words('L'))
}
