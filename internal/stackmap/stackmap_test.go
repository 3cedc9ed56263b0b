package stackmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7mind/jbcgen/internal/stackmap"
	"github.com/7mind/jbcgen/internal/symbols"
)

func TestFromSymbolPrimitives(t *testing.T) {
	cases := []struct {
		t    *symbols.Type
		want stackmap.VType
	}{
		{symbols.Int, stackmap.Integer},
		{symbols.Boolean, stackmap.Integer},
		{symbols.Byte, stackmap.Integer},
		{symbols.Char, stackmap.Integer},
		{symbols.Short, stackmap.Integer},
		{symbols.Long, stackmap.Long},
		{symbols.Float, stackmap.Float},
		{symbols.Double, stackmap.Double},
		{symbols.Void, stackmap.Top},
		{nil, stackmap.Top},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, stackmap.FromSymbol(c.t))
	}
}

func TestFromSymbolClassProducesObjectVType(t *testing.T) {
	got := stackmap.FromSymbol(symbols.ClassType("java/lang/String"))
	require.Equal(t, stackmap.VObject, got.Kind)
	assert.Equal(t, "java/lang/String", got.ClassName)
}

func TestMergeTrimsLocalsToCommonPrefix(t *testing.T) {
	a := stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer, stackmap.Long}}
	b := stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer, stackmap.Float}}

	merged := stackmap.Merge(a, b)
	assert.Equal(t, []stackmap.VType{stackmap.Integer}, merged.Locals)
}

func TestMergeIdenticalLocalsKeepsAll(t *testing.T) {
	a := stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer, stackmap.Long}}
	b := stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer, stackmap.Long}}

	merged := stackmap.Merge(a, b)
	assert.Equal(t, a.Locals, merged.Locals)
}

func TestBuilderRecordMergesRepeatedEntries(t *testing.T) {
	b := stackmap.NewBuilder()
	b.Record(10, stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer, stackmap.Long}}, false)
	b.Record(10, stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer, stackmap.Float}}, true)

	entries := b.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, []stackmap.VType{stackmap.Integer}, entries[0].Frame.Locals)
	assert.True(t, entries[0].NoFrame, "NoFrame must AND across merged records")
}

func TestBuilderEntriesSortedByPC(t *testing.T) {
	b := stackmap.NewBuilder()
	b.Record(30, stackmap.Frame{}, false)
	b.Record(5, stackmap.Frame{}, false)
	b.Record(17, stackmap.Frame{}, false)

	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []uint32{5, 17, 30}, []uint32{entries[0].PC, entries[1].PC, entries[2].PC})
}

func classIndex(name string) uint16 { return 42 }

func TestEncodeSameFrame(t *testing.T) {
	entries := []stackmap.Entry{
		{PC: 5, Frame: stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer}}},
	}
	out := stackmap.Encode(entries, []stackmap.VType{stackmap.Integer}, classIndex)
	require.Len(t, out, 1)
	// offset_delta = 5 - (-1) - 1 = 5, same locals, empty stack -> same_frame tag == offset_delta.
	assert.Equal(t, []byte{5}, out[0])
}

func TestEncodeSame1StackFrame(t *testing.T) {
	entries := []stackmap.Entry{
		{PC: 2, Frame: stackmap.Frame{
			Locals: []stackmap.VType{stackmap.Integer},
			Stack:  []stackmap.VType{stackmap.Integer},
		}},
	}
	out := stackmap.Encode(entries, []stackmap.VType{stackmap.Integer}, classIndex)
	require.Len(t, out, 1)
	// offset_delta = 2, tag = 64 + 2 = 66, followed by the one stack item's verification_type_info (1 = Integer).
	assert.Equal(t, []byte{66, 1}, out[0])
}

func TestEncodeChopFrame(t *testing.T) {
	entries := []stackmap.Entry{
		{PC: 1, Frame: stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer}}},
	}
	out := stackmap.Encode(entries, []stackmap.VType{stackmap.Integer, stackmap.Long}, classIndex)
	require.Len(t, out, 1)
	assert.Equal(t, byte(251-1), out[0][0], "chopping one local uses tag 250")
}

func TestEncodeAppendFrame(t *testing.T) {
	entries := []stackmap.Entry{
		{PC: 1, Frame: stackmap.Frame{Locals: []stackmap.VType{stackmap.Integer, stackmap.Long}}},
	}
	out := stackmap.Encode(entries, []stackmap.VType{stackmap.Integer}, classIndex)
	require.Len(t, out, 1)
	assert.Equal(t, byte(251+1), out[0][0], "appending one local uses tag 252")
}

func TestEncodeFullFrameForObjectType(t *testing.T) {
	entries := []stackmap.Entry{
		{PC: 1, Frame: stackmap.Frame{
			Locals: []stackmap.VType{stackmap.Object("java/lang/String"), stackmap.Integer},
			Stack:  []stackmap.VType{stackmap.Integer},
		}},
	}
	out := stackmap.Encode(entries, nil, classIndex)
	require.Len(t, out, 1)
	assert.Equal(t, byte(255), out[0][0], "a non-empty stack always falls back to full_frame")
}

func TestEncodeSkipsSuppressedFrames(t *testing.T) {
	entries := []stackmap.Entry{
		{PC: 1, Frame: stackmap.Frame{}, NoFrame: true},
	}
	out := stackmap.Encode(entries, nil, classIndex)
	assert.Empty(t, out)
}
