package disasm

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// RawClass is a parsed .class file, read back from bytes rather than
// built programmatically. It exists solely for the `disasm` CLI command,
// which is handed an already-serialized file on disk and has no access
// to the constpool.Pool/classfile.ClassFile the rest of jbcgen builds in
// memory; DisassembleRaw prints it with the same instruction formatting
// (FormatInsn) that Disassemble uses. Its listing is not identical to
// Disassemble's: it leaves out the throws list, the line-number and
// local-variable tables, and the StackMapTable frame count.
//
// This is a strictly read-only, best-effort structural parse for display
// purposes (it does not validate the file the way a JVM verifier would)
// and only interprets the Code, ConstantValue, Synthetic, and Deprecated
// attributes; any other attribute is skipped by its declared length.
type RawClass struct {
	MinorVersion, MajorVersion uint16
	Pool                       []RawConstant // 1-based; Pool[0] is unused
	AccessFlags                uint16
	ThisClass, SuperClass      uint16
	Interfaces                 []uint16
	Fields                     []RawMember
	Methods                    []RawMember
}

// RawConstant is one constant-pool entry in whatever shape its tag
// requires; unused fields for a given tag are zero.
type RawConstant struct {
	Tag              uint8
	Utf8             string
	Int              int32
	Long             int64
	Float            float32
	Double           float64
	NameIdx, DescIdx uint16
	ClassIdx, NatIdx uint16
	Utf8Idx          uint16
}

// RawMember is a field_info or method_info, whichever attributes this
// reader understands already decoded, and the Code attribute's raw
// bytes left for Decode/FormatInsn to render.
type RawMember struct {
	AccessFlags          uint16
	NameIdx, DescIdx     uint16
	ConstantValueIdx     uint16 // fields only, 0 if absent
	Synthetic, Deprecated bool
	Code                 *RawCode // methods only, nil if absent
}

// RawCode is a parsed Code attribute.
type RawCode struct {
	MaxStack, MaxLocals uint16
	Bytes               []byte
	Exceptions          []RawException
}

// RawException is one exception_table row of a Code attribute.
type RawException struct {
	StartPC, EndPC, HandlerPC, CatchType uint16
}

const classMagic = 0xCAFEBABE

// ReadRaw parses a .class file from r.
func ReadRaw(r io.Reader) (*RawClass, error) {
	br := &byteReader{r: r}

	magic := br.u4()
	if br.err == nil && magic != classMagic {
		return nil, fmt.Errorf("disasm: not a class file (bad magic 0x%08x)", magic)
	}

	rc := &RawClass{}
	rc.MinorVersion = br.u2()
	rc.MajorVersion = br.u2()

	poolCount := br.u2()
	rc.Pool = make([]RawConstant, poolCount)
	for i := 1; i < int(poolCount); i++ {
		entry, wide := readConstant(br)
		rc.Pool[i] = entry
		if wide {
			i++ // Long/Double occupy two slots, JVMS §4.4.5
		}
	}

	rc.AccessFlags = br.u2()
	rc.ThisClass = br.u2()
	rc.SuperClass = br.u2()

	ifaceCount := br.u2()
	for i := 0; i < int(ifaceCount); i++ {
		rc.Interfaces = append(rc.Interfaces, br.u2())
	}

	fieldCount := br.u2()
	for i := 0; i < int(fieldCount); i++ {
		rc.Fields = append(rc.Fields, readMember(br, rc.Pool, false))
	}

	methodCount := br.u2()
	for i := 0; i < int(methodCount); i++ {
		rc.Methods = append(rc.Methods, readMember(br, rc.Pool, true))
	}

	// class-level attributes (SourceFile, InnerClasses, Deprecated, ...):
	// not needed for disassembly, skipped by declared length.
	attrCount := br.u2()
	for i := 0; i < int(attrCount); i++ {
		skipAttr(br)
	}

	if br.err != nil {
		return nil, br.err
	}
	return rc, nil
}

func readConstant(br *byteReader) (RawConstant, bool) {
	tag := br.u1()
	var e RawConstant
	e.Tag = tag
	wide := false
	switch tag {
	case 1: // Utf8
		n := br.u2()
		e.Utf8 = string(br.raw(int(n)))
	case 3: // Integer
		e.Int = int32(br.u4())
	case 4: // Float
		e.Float = math.Float32frombits(br.u4())
	case 5: // Long
		e.Long = int64(br.u8())
		wide = true
	case 6: // Double
		e.Double = math.Float64frombits(br.u8())
		wide = true
	case 7: // Class
		e.Utf8Idx = br.u2()
	case 8: // String
		e.Utf8Idx = br.u2()
	case 9, 10, 11: // Fieldref, Methodref, InterfaceMethodref
		e.ClassIdx = br.u2()
		e.NatIdx = br.u2()
	case 12: // NameAndType
		e.NameIdx = br.u2()
		e.DescIdx = br.u2()
	case 15: // MethodHandle
		br.u1()
		br.u2()
	case 16: // MethodType
		br.u2()
	case 18: // InvokeDynamic
		br.u2()
		br.u2()
	default:
		if br.err == nil {
			br.err = fmt.Errorf("disasm: unsupported constant-pool tag %d", tag)
		}
	}
	return e, wide
}

func readMember(br *byteReader, pool []RawConstant, isMethod bool) RawMember {
	m := RawMember{}
	m.AccessFlags = br.u2()
	m.NameIdx = br.u2()
	m.DescIdx = br.u2()

	attrCount := br.u2()
	for i := 0; i < int(attrCount); i++ {
		name := attrName(br, pool)
		length := br.u4()
		switch name {
		case "Code":
			if isMethod {
				m.Code = readCodeAttr(br)
				continue
			}
		case "ConstantValue":
			if !isMethod {
				m.ConstantValueIdx = br.u2()
				continue
			}
		case "Synthetic":
			m.Synthetic = true
			continue
		case "Deprecated":
			m.Deprecated = true
			continue
		}
		br.raw(int(length))
	}
	return m
}

func readCodeAttr(br *byteReader) *RawCode {
	c := &RawCode{}
	c.MaxStack = br.u2()
	c.MaxLocals = br.u2()
	codeLen := br.u4()
	c.Bytes = br.raw(int(codeLen))

	excCount := br.u2()
	for i := 0; i < int(excCount); i++ {
		c.Exceptions = append(c.Exceptions, RawException{
			StartPC: br.u2(), EndPC: br.u2(), HandlerPC: br.u2(), CatchType: br.u2(),
		})
	}

	// the Code attribute's own nested attributes (LineNumberTable,
	// LocalVariableTable, StackMapTable): skipped, not needed to print
	// the instruction listing this reader exists for.
	attrCount := br.u2()
	for i := 0; i < int(attrCount); i++ {
		skipAttr(br)
	}
	return c
}

func attrName(br *byteReader, pool []RawConstant) string {
	idx := br.u2()
	if int(idx) < len(pool) {
		return pool[idx].Utf8
	}
	return ""
}

func skipAttr(br *byteReader) {
	br.u2() // name index, not needed to skip the attribute
	length := br.u4()
	br.raw(int(length))
}

type byteReader struct {
	r   io.Reader
	err error
}

func (b *byteReader) raw(n int) []byte {
	if b.err != nil || n == 0 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		b.err = err
		return nil
	}
	return buf
}

func (b *byteReader) u1() uint8 {
	p := b.raw(1)
	if len(p) == 0 {
		return 0
	}
	return p[0]
}

func (b *byteReader) u2() uint16 {
	p := b.raw(2)
	if len(p) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(p)
}

func (b *byteReader) u4() uint32 {
	p := b.raw(4)
	if len(p) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(p)
}

func (b *byteReader) u8() uint64 {
	p := b.raw(8)
	if len(p) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(p)
}
