// Package constpool implements the class-file constant pool (spec.md §3,
// §4.1, C2): an ordered, 1-based table of tagged constants in which
// every structurally-equal entry shares one index. The interning maps
// are modeled on the teacher's compiler package, which already keeps a
// `names map[string]uint32` and `constants map[interface{}]uint32` on
// its pcomp compiler state (lang/compiler/compiler.go) to dedupe names
// and literals during compilation; here that same idea is promoted to a
// full JVMS §4.4 constant pool with all eleven entry kinds it defines. The
// large lookup table is backed by dolthub/swiss (as the teacher's own
// lang/machine/map.go backs its runtime Map type), since a compiled
// class can reference many thousands of distinct UTF-8/literal entries.
package constpool

import (
	"fmt"

	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/token"
	"github.com/7mind/jbcgen/internal/value"
	"github.com/dolthub/swiss"
)

// Tag identifies a constant-pool entry's kind, per JVMS §4.4.
type Tag uint8

const (
	TagUtf8 Tag = 1
	TagInteger Tag = 3
	TagFloat Tag = 4
	TagLong Tag = 5
	TagDouble Tag = 6
	TagClass Tag = 7
	TagString Tag = 8
	TagFieldref Tag = 9
	TagMethodref Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType Tag = 12
)

// Entry is one constant-pool slot. Only the fields relevant to Tag are
// meaningful; Long and Double entries occupy this slot plus the
// following (unused) one, per JVMS §4.4.5.
type Entry struct {
	Tag Tag

	Utf8 string // TagUtf8

	Int    value.I4 // TagInteger
	Long   value.I8 // TagLong
	Float  value.F32 // TagFloat
	Double value.F64 // TagDouble

	NameIdx, DescIdx uint16 // TagNameAndType
	ClassIdx, NatIdx uint16 // TagFieldref/Methodref/InterfaceMethodref
	Utf8Idx          uint16 // TagClass, TagString
}

// key is the structural-equality key used for interning: same Tag plus
// same payload compares equal.
type key struct {
	tag Tag
	a   uint64
	s   string
}

// Pool is a class's constant pool under construction.
type Pool struct {
	entries []Entry // 1-based; entries[0] is the unused reserved slot
	index   *swiss.Map[key, uint16]

	// nestedTypes records every distinct class name referenced from any
	// Class/Fieldref/Methodref/InterfaceMethodref entry, so an
	// InnerClasses attribute can be emitted for any of them that turn out
	// to be nested types (spec.md §4.1).
	nestedTypes map[string]bool

	overflowed bool
	diags      *diag.Collector
}

// New returns an empty Pool. Index 0 is reserved per JVMS §4.4.
func New(diags *diag.Collector) *Pool {
	p := &Pool{
		entries:     make([]Entry, 1),
		index:       swiss.NewMap[key, uint16](64),
		nestedTypes: make(map[string]bool),
		diags:       diags,
	}
	return p
}

// Len returns the number of 1-based slots consumed so far (the value
// that would be serialized as constant_pool_count - 1... actually the
// count of addressable indices, i.e. the highest valid index).
func (p *Pool) Len() int { return len(p.entries) - 1 }

// Entries returns the pool contents, 1-indexed (Entries()[0] is unused).
func (p *Pool) Entries() []Entry { return p.entries }

func (p *Pool) intern(k key, mk func() Entry) uint16 {
	if idx, ok := p.index.Get(k); ok {
		return idx
	}
	idx := len(p.entries)
	p.entries = append(p.entries, mk())
	p.checkOverflow(idx)
	p.index.Put(k, uint16(idx))
	return uint16(idx)
}

// internWide is intern's analogue for Long/Double entries, which consume
// two consecutive slots (the second left zero-valued and unaddressable).
func (p *Pool) internWide(k key, mk func() Entry) uint16 {
	if idx, ok := p.index.Get(k); ok {
		return idx
	}
	idx := len(p.entries)
	p.entries = append(p.entries, mk(), Entry{})
	p.checkOverflow(idx + 1)
	p.index.Put(k, uint16(idx))
	return uint16(idx)
}

func (p *Pool) checkOverflow(highestIndex int) {
	if highestIndex > 65535 && !p.overflowed {
		p.overflowed = true
		if p.diags != nil {
			p.diags.Errorf(diag.ConstantPoolOverflow, token.Pos(0),
				"constant pool exceeds 65535 entries")
		}
	}
}

// Overflowed reports whether the pool ever exceeded the 65535-entry
// limit (spec.md §4.1).
func (p *Pool) Overflowed() bool { return p.overflowed }

// InternUtf8 interns a raw UTF-8 byte string, reporting an error if it exceeds the
// 65535-byte length a CONSTANT_Utf8_info can encode (spec.md §4.11).
func (p *Pool) InternUtf8(s string) uint16 {
	if len(s) > 65535 {
		if p.diags != nil {
			p.diags.Errorf(diag.StringLiteralTooLong, token.Pos(0),
				"UTF-8 constant %q is %d bytes, exceeds 65535", s, len(s))
		}
	}
	return p.intern(key{tag: TagUtf8, s: s}, func() Entry {
		return Entry{Tag: TagUtf8, Utf8: s}
	})
}

// InternClass interns a CONSTANT_Class_info for the given internal
// (slash-separated) binary name, recording it as a nested-type candidate.
func (p *Pool) InternClass(internalName string) uint16 {
	p.nestedTypes[internalName] = true
	utf8 := p.InternUtf8(internalName)
	return p.intern(key{tag: TagClass, a: uint64(utf8)}, func() Entry {
		return Entry{Tag: TagClass, Utf8Idx: utf8}
	})
}

// InternString interns a CONSTANT_String_info referencing s.
func (p *Pool) InternString(s string) uint16 {
	utf8 := p.InternUtf8(s)
	return p.intern(key{tag: TagString, a: uint64(utf8)}, func() Entry {
		return Entry{Tag: TagString, Utf8Idx: utf8}
	})
}

// InternInt interns a CONSTANT_Integer_info.
func (p *Pool) InternInt(v value.I4) uint16 {
	return p.intern(key{tag: TagInteger, a: uint64(uint32(v))}, func() Entry {
		return Entry{Tag: TagInteger, Int: v}
	})
}

// InternFloat interns a CONSTANT_Float_info, keyed by exact bit pattern
// so that +0.0/-0.0 and distinct NaN payloads do not collide.
func (p *Pool) InternFloat(v value.F32) uint16 {
	return p.intern(key{tag: TagFloat, a: uint64(v.Bits)}, func() Entry {
		return Entry{Tag: TagFloat, Float: v}
	})
}

// InternLong interns a CONSTANT_Long_info (two-slot entry).
func (p *Pool) InternLong(v value.I8) uint16 {
	return p.internWide(key{tag: TagLong, a: uint64(v)}, func() Entry {
		return Entry{Tag: TagLong, Long: v}
	})
}

// InternDouble interns a CONSTANT_Double_info (two-slot entry), keyed by
// exact bit pattern.
func (p *Pool) InternDouble(v value.F64) uint16 {
	return p.internWide(key{tag: TagDouble, a: v.Bits}, func() Entry {
		return Entry{Tag: TagDouble, Double: v}
	})
}

// InternNameAndType interns a CONSTANT_NameAndType_info.
func (p *Pool) InternNameAndType(name, descriptor string) uint16 {
	nameIdx := p.InternUtf8(name)
	descIdx := p.InternUtf8(descriptor)
	return p.intern(key{tag: TagNameAndType, a: uint64(nameIdx)<<16 | uint64(descIdx)}, func() Entry {
		return Entry{Tag: TagNameAndType, NameIdx: nameIdx, DescIdx: descIdx}
	})
}

func (p *Pool) internRef(tag Tag, owner, name, descriptor string) uint16 {
	classIdx := p.InternClass(owner)
	natIdx := p.InternNameAndType(name, descriptor)
	return p.intern(key{tag: tag, a: uint64(classIdx)<<16 | uint64(natIdx)}, func() Entry {
		return Entry{Tag: tag, ClassIdx: classIdx, NatIdx: natIdx}
	})
}

// InternFieldref interns a CONSTANT_Fieldref_info.
func (p *Pool) InternFieldref(owner, name, descriptor string) uint16 {
	return p.internRef(TagFieldref, owner, name, descriptor)
}

// InternMethodref interns a CONSTANT_Methodref_info.
func (p *Pool) InternMethodref(owner, name, descriptor string) uint16 {
	return p.internRef(TagMethodref, owner, name, descriptor)
}

// InternInterfaceMethodref interns a CONSTANT_InterfaceMethodref_info.
func (p *Pool) InternInterfaceMethodref(owner, name, descriptor string) uint16 {
	return p.internRef(TagInterfaceMethodref, owner, name, descriptor)
}

// NestedTypeNames returns every distinct class internal name referenced
// by any Class/ref entry, sorted is not guaranteed; callers
// needing a stable InnerClasses attribute order should sort by name.
func (p *Pool) NestedTypeNames() []string {
	names := make([]string, 0, len(p.nestedTypes))
	for n := range p.nestedTypes {
		names = append(names, n)
	}
	return names
}

func (e Entry) String() string {
	switch e.Tag {
	case TagUtf8:
		return fmt.Sprintf("Utf8 %q", e.Utf8)
	case TagInteger:
		return fmt.Sprintf("Integer %d", e.Int)
	case TagFloat:
		return fmt.Sprintf("Float %v", e.Float.Float())
	case TagLong:
		return fmt.Sprintf("Long %d", e.Long)
	case TagDouble:
		return fmt.Sprintf("Double %v", e.Double.Float())
	case TagClass:
		return fmt.Sprintf("Class #%d", e.Utf8Idx)
	case TagString:
		return fmt.Sprintf("String #%d", e.Utf8Idx)
	case TagNameAndType:
		return fmt.Sprintf("NameAndType #%d:#%d", e.NameIdx, e.DescIdx)
	case TagFieldref:
		return fmt.Sprintf("Fieldref #%d.#%d", e.ClassIdx, e.NatIdx)
	case TagMethodref:
		return fmt.Sprintf("Methodref #%d.#%d", e.ClassIdx, e.NatIdx)
	case TagInterfaceMethodref:
		return fmt.Sprintf("InterfaceMethodref #%d.#%d", e.ClassIdx, e.NatIdx)
	default:
		return "?"
	}
}
