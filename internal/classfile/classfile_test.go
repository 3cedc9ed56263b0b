package classfile_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
)

// minimalClass builds the smallest legal class file: a public class
// extending java/lang/Object with no fields, methods, or attributes.
func minimalClass(t *testing.T) (*classfile.ClassFile, *constpool.Pool) {
	t.Helper()
	pool := constpool.New(diag.NewCollector())
	this := pool.InternClass("Empty")
	super := pool.InternClass("java/lang/Object")
	return &classfile.ClassFile{
		Target:      classfile.Target8,
		Pool:        pool,
		AccessFlags: 0x0021, // public, super
		ThisClass:   this,
		SuperClass:  super,
	}, pool
}

func TestWriteProducesMagicAndVersion(t *testing.T) {
	cf, _ := minimalClass(t)

	var buf bytes.Buffer
	require.NoError(t, cf.Write(&buf))

	b := buf.Bytes()
	require.GreaterOrEqual(t, len(b), 10)
	require.Equal(t, uint32(0xCAFEBABE), binary.BigEndian.Uint32(b[0:4]))
	require.Equal(t, cf.Target.Minor, binary.BigEndian.Uint16(b[4:6]))
	require.Equal(t, cf.Target.Major, binary.BigEndian.Uint16(b[6:8]))
}

func TestWriteConstantPoolCountIncludesReservedSlot(t *testing.T) {
	cf, pool := minimalClass(t)

	var buf bytes.Buffer
	require.NoError(t, cf.Write(&buf))

	b := buf.Bytes()
	count := binary.BigEndian.Uint16(b[8:10])
	require.Equal(t, uint16(pool.Len()+1), count, "constant_pool_count is highest valid index + 1")
}

func TestWriteOmitsZeroLengthSections(t *testing.T) {
	cf, _ := minimalClass(t)

	var buf bytes.Buffer
	require.NoError(t, cf.Write(&buf))
	b := buf.Bytes()

	// Walk past the header + constant pool to find interfaces_count; with
	// no fields/methods/attributes, the tail of the file is four u2
	// zeroes (interfaces_count, fields_count, methods_count,
	// attributes_count) plus this/super already consumed.
	// Simplest check: the serialized form must end in two zero bytes
	// (attributes_count == 0) since no class-level attribute is set.
	require.Equal(t, []byte{0x00, 0x00}, b[len(b)-2:])
}

func TestWriteIncludesSourceFileAttributeWhenSet(t *testing.T) {
	cf, pool := minimalClass(t)
	cf.SourceFileIdx = pool.InternUtf8("Empty.java")

	var buf bytes.Buffer
	require.NoError(t, cf.Write(&buf))

	// attributes_count must now be 1, found as the last u2 before the
	// SourceFile attribute's own name-index/length/value tail (2+4+2
	// bytes): rather than hand-parse, just confirm Write succeeded and
	// grew the output relative to the no-attribute baseline.
	plain, _ := minimalClass(t)
	var plainBuf bytes.Buffer
	require.NoError(t, plain.Write(&plainBuf))

	require.Greater(t, buf.Len(), plainBuf.Len())
}

func TestWriteWithMethodEmitsCodeAttribute(t *testing.T) {
	cf, pool := minimalClass(t)
	cf.Methods = []classfile.Method{
		{
			AccessFlags:   0x0001,
			NameIdx:       pool.InternUtf8("<init>"),
			DescriptorIdx: pool.InternUtf8("()V"),
			Code: &classfile.Code{
				MaxStack:  1,
				MaxLocals: 1,
				Bytes:     []byte{0x2a, 0xb1}, // aload_0; return
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, cf.Write(&buf))
	require.Contains(t, buf.String(), "Code")
}
