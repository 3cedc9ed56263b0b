package label_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/label"
)

func TestCompletePatchesShortForwardBranch(t *testing.T) {
	code := make([]byte, 10)
	lbl := label.New()
	lbl.Use(0, 1, 2) // branch opcode at pc 0, 2-byte operand at pc 1

	lbl.Define(6)
	lbl.Complete(code, diag.NewCollector(), 0)

	assert.Equal(t, []byte{0, 6}, code[1:3], "offset 6-0=6 big-endian in the 2-byte operand")
}

func TestCompletePatchesWideBackwardBranch(t *testing.T) {
	code := make([]byte, 20)
	lbl := label.New()
	lbl.Define(2)
	lbl.Use(10, 11, 4)

	lbl.Complete(code, diag.NewCollector(), 0)

	// offset = 2 - 10 = -8
	want := []byte{0xff, 0xff, 0xff, 0xf8}
	assert.Equal(t, want, code[11:15])
}

func TestCompleteReportsOverflowForShortBranchOutOfRange(t *testing.T) {
	code := make([]byte, 10)
	lbl := label.New()
	lbl.Use(0, 1, 2)
	lbl.Define(100000)

	diags := diag.NewCollector()
	lbl.Complete(code, diags, 0)

	require.True(t, diags.Failed())
}

func TestCompleteUndefinedLabelWithUsesFails(t *testing.T) {
	lbl := label.New()
	lbl.Use(0, 1, 2)

	diags := diag.NewCollector()
	lbl.Complete(make([]byte, 4), diags, 0)

	assert.True(t, diags.Failed())
}

func TestCompleteUndefinedLabelWithNoUsesIsFine(t *testing.T) {
	lbl := label.New()
	diags := diag.NewCollector()
	lbl.Complete(nil, diags, 0)
	assert.False(t, diags.Failed())
}

func TestFitsShort(t *testing.T) {
	assert.True(t, label.FitsShort(0))
	assert.True(t, label.FitsShort(63))
	assert.False(t, label.FitsShort(64))
	assert.False(t, label.FitsShort(1000))
}
