package disasm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/disasm"
	"github.com/7mind/jbcgen/internal/method"
)

func TestDecodeFixedWidthFamilies(t *testing.T) {
	// aload_0(1); bipush 5(2); sipush 1000(3); invokespecial #7(3); return(1)
	code := []byte{
		0x2a,
		0x10, 0x05,
		0x11, 0x03, 0xe8,
		0xb7, 0x00, 0x07,
		0xb1,
	}
	insns, err := disasm.Decode(code)
	require.NoError(t, err)
	require.Len(t, insns, 5)

	assert.Equal(t, method.ALOAD_0, insns[0].Op)
	assert.Equal(t, 1, insns[0].Size)

	assert.Equal(t, method.BIPUSH, insns[1].Op)
	assert.Equal(t, uint8(5), insns[1].U1)
	assert.Equal(t, 1, insns[1].PC)

	assert.Equal(t, method.SIPUSH, insns[2].Op)
	assert.Equal(t, uint16(1000), insns[2].U2)
	assert.Equal(t, 3, insns[2].PC)

	assert.Equal(t, method.INVOKESPECIAL, insns[3].Op)
	assert.Equal(t, uint16(7), insns[3].U2)
	assert.Equal(t, 6, insns[3].PC)

	assert.Equal(t, method.RETURN, insns[4].Op)
	assert.Equal(t, 9, insns[4].PC)
}

func TestDecodeTruncatedOperandErrors(t *testing.T) {
	_, err := disasm.Decode([]byte{0x10}) // bipush with no operand byte
	assert.Error(t, err)
}

func TestDecodeBranchResolvesAbsoluteTarget(t *testing.T) {
	// at pc 0: ifeq +5 -> target pc 5, followed by three single-byte nops
	code := []byte{0x99, 0x00, 0x05, 0x00, 0x00, 0x00}
	insns, err := disasm.Decode(code)
	require.NoError(t, err)
	require.Len(t, insns, 4)
	assert.Equal(t, int32(5), insns[0].Branch)
}

func TestDecodeIinc(t *testing.T) {
	code := []byte{0x84, 0x01, 0xff} // iinc slot 1 by -1
	insns, err := disasm.Decode(code)
	require.NoError(t, err)
	require.Len(t, insns, 1)
	assert.Equal(t, uint8(1), insns[0].IincVar)
	assert.Equal(t, int16(-1), insns[0].IincVal)
}

func TestFormatInsnDistinguishesPoolFromPlainOperand(t *testing.T) {
	ldc := disasm.Insn{Op: method.LDC, Size: 2, U1: 3}
	assert.Contains(t, disasm.FormatInsn(ldc), "#3")

	iload := disasm.Insn{Op: method.ILOAD, Size: 2, U1: 3}
	assert.NotContains(t, disasm.FormatInsn(iload), "#3")
	assert.Contains(t, disasm.FormatInsn(iload), "3")
}

func TestRawRoundTripThroughClassfileWriter(t *testing.T) {
	pool := constpool.New(diag.NewCollector())
	this := pool.InternClass("RoundTrip")
	super := pool.InternClass("java/lang/Object")
	ctorIdx := pool.InternMethodref("java/lang/Object", "<init>", "()V")

	cf := &classfile.ClassFile{
		Target:      classfile.Target8,
		Pool:        pool,
		AccessFlags: 0x0021,
		ThisClass:   this,
		SuperClass:  super,
		Methods: []classfile.Method{{
			AccessFlags:   0x0001,
			NameIdx:       pool.InternUtf8("<init>"),
			DescriptorIdx: pool.InternUtf8("()V"),
			Code: &classfile.Code{
				MaxStack:  1,
				MaxLocals: 1,
				Bytes: []byte{
					0x2a,                               // aload_0
					0xb7, byte(ctorIdx >> 8), byte(ctorIdx), // invokespecial
					0xb1, // return
				},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, cf.Write(&buf))

	raw, err := disasm.ReadRaw(&buf)
	require.NoError(t, err)
	require.Equal(t, uint16(this), raw.ThisClass)
	require.Equal(t, uint16(super), raw.SuperClass)
	require.Len(t, raw.Methods, 1)
	require.NotNil(t, raw.Methods[0].Code)

	out, err := disasm.DisassembleRaw(raw)
	require.NoError(t, err)
	assert.Contains(t, out, "aload_0")
	assert.Contains(t, out, "invokespecial")
	assert.Contains(t, out, "return")
}
