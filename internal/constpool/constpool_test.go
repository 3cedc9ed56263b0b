package constpool_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/value"
)

func TestInternUtf8Idempotent(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	a := p.InternUtf8("java/lang/Object")
	b := p.InternUtf8("java/lang/Object")
	assert.Equal(t, a, b, "interning the same string twice must return the same index")
	assert.Equal(t, 1, p.Len())
}

func TestInternDistinctEntriesGetDistinctIndices(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	a := p.InternUtf8("Foo")
	b := p.InternUtf8("Bar")
	assert.NotEqual(t, a, b)
}

func TestInternClassSharesUtf8(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	utf8 := p.InternUtf8("Foo")
	cls := p.InternClass("Foo")

	entries := p.Entries()
	require.Equal(t, constpool.TagClass, entries[cls].Tag)
	assert.Equal(t, utf8, entries[cls].Utf8Idx)
}

func TestInternLongDoubleConsumeTwoSlots(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	first := p.InternLong(value.I8(42))
	next := p.InternUtf8("after-long")

	require.Less(t, int(first), int(next))
	assert.Equal(t, int(first)+2, int(next), "a Long entry must consume its slot plus the following unaddressable one")
	assert.Equal(t, constpool.Tag(0), p.Entries()[first+1].Tag, "the slot after a Long entry is unused")
}

func TestInternFloatDistinguishesSignedZero(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	negZero := float32(math.Copysign(0, -1))
	pos := p.InternFloat(value.NewF32(0.0))
	neg := p.InternFloat(value.NewF32(negZero))
	assert.NotEqual(t, pos, neg, "+0.0 and -0.0 have distinct bit patterns and must not collide")
}

func TestInternMethodrefSharesNameAndType(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	a := p.InternMethodref("java/lang/Object", "<init>", "()V")
	b := p.InternMethodref("java/lang/Object", "<init>", "()V")
	assert.Equal(t, a, b)

	entries := p.Entries()
	require.Equal(t, constpool.TagMethodref, entries[a].Tag)
	assert.Equal(t, p.InternNameAndType("<init>", "()V"), entries[a].NatIdx)
}

func TestNestedTypeNamesRecordsClassReferences(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	p.InternClass("com/example/Outer")
	p.InternMethodref("com/example/Inner", "m", "()V")

	names := p.NestedTypeNames()
	assert.Contains(t, names, "com/example/Outer")
	assert.Contains(t, names, "com/example/Inner")
}

func TestEntryStringFormatsEachTag(t *testing.T) {
	p := constpool.New(diag.NewCollector())
	utf8 := p.InternUtf8("hi")
	cls := p.InternClass("hi")
	str := p.InternString("hi")
	i := p.InternInt(value.I4(7))

	entries := p.Entries()
	assert.Equal(t, `Utf8 "hi"`, entries[utf8].String())
	assert.Contains(t, entries[cls].String(), "Class #")
	assert.Contains(t, entries[str].String(), "String #")
	assert.Equal(t, "Integer 7", entries[i].String())
}
