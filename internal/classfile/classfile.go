// Package classfile implements the fixed-order binary .class writer
// (spec.md §3, §4.1, C3). A ClassFile is assembled entirely in memory as
// plain structs — the constant pool is supplied pre-built by the
// constpool package — and Write serializes it in the exact big-endian
// field order JVMS §4.1 specifies. This mirrors the teacher's
// lang/compiler/asm.go, which also separates "build an in-memory
// representation" (Asm) from "serialize it to bytes" (the io.Writer
// side of that same file); here the two are split into this package
// (serialization) and the codegen/synth packages (construction).
package classfile

import (
	"encoding/binary"
	"io"

	"github.com/7mind/jbcgen/internal/constpool"
)

// Target names the class-file major/minor version pair for a JDK release
// (JVMS §4.1 table 4.1-A). javac's own -target flag maps 1-to-1 onto
// these.
type Target struct {
	Major, Minor uint16
}

var (
	Target1_1 = Target{Major: 45, Minor: 3}
	Target1_2 = Target{Major: 46, Minor: 0}
	Target1_3 = Target{Major: 47, Minor: 0}
	Target1_4 = Target{Major: 48, Minor: 0}
	Target5   = Target{Major: 49, Minor: 0}
	Target6   = Target{Major: 50, Minor: 0}
	Target7   = Target{Major: 51, Minor: 0}
	Target8   = Target{Major: 52, Minor: 0}
)

// ExceptionTableEntry is one row of a Code attribute's exception table
// (JVMS §4.7.3).
type ExceptionTableEntry struct {
	StartPC, EndPC, HandlerPC uint16
	CatchType                 uint16 // 0 means catch-all (finally)
}

// LineNumberEntry mirrors method.LineEntry for serialization, decoupling
// this package from method's internal bookkeeping types.
type LineNumberEntry struct {
	StartPC uint16
	Line    uint16
}

// LocalVariableEntry mirrors method.LocalVarEntry for serialization.
type LocalVariableEntry struct {
	StartPC, Length          uint16
	NameIdx, DescriptorIdx   uint16
	Index                    uint16
}

// StackMapFrame is an opaque, already-encoded stack_map_frame entry; the
// stackmap package owns frame construction and hands this writer raw
// bytes so classfile need not know about verification types.
type StackMapFrame struct {
	Bytes []byte
}

// Code is a method's Code attribute payload.
type Code struct {
	MaxStack, MaxLocals uint16
	Bytes               []byte
	Exceptions          []ExceptionTableEntry
	LineNumbers         []LineNumberEntry // nil if line numbers are disabled
	LocalVariables      []LocalVariableEntry // nil unless -g:vars
	StackMapTable       []StackMapFrame       // nil if the method never branches
}

// Field is one field_info entry.
type Field struct {
	AccessFlags     uint16
	NameIdx         uint16
	DescriptorIdx   uint16
	ConstantValueIdx uint16 // 0 if absent
}

// Method is one method_info entry.
type Method struct {
	AccessFlags   uint16
	NameIdx       uint16
	DescriptorIdx uint16
	Code          *Code    // nil for abstract/native methods
	Exceptions    []uint16 // constant-pool Class indices for a throws clause, may be nil
	Synthetic     bool
	Deprecated    bool
}

// InnerClassEntry is one row of an InnerClasses attribute (JVMS §4.7.6).
type InnerClassEntry struct {
	InnerClassIdx      uint16
	OuterClassIdx       uint16 // 0 if not a member class
	InnerNameIdx        uint16 // 0 if anonymous
	InnerAccessFlags    uint16
}

// ClassFile is a complete, ready-to-serialize .class file (JVMS §4.1).
type ClassFile struct {
	Target     Target
	Pool       *constpool.Pool
	AccessFlags uint16
	ThisClass   uint16
	SuperClass  uint16 // 0 only for java/lang/Object
	Interfaces  []uint16
	Fields      []Field
	Methods     []Method

	SourceFileIdx uint16 // 0 to omit the SourceFile attribute
	InnerClasses  []InnerClassEntry
	Deprecated    bool
}

const magic = 0xCAFEBABE

// Write serializes cf in class-file binary form. Before the constant
// pool is written, Write interns into cf.Pool every attribute name the
// class uses ("Code", "LineNumberTable", "LocalVariableTable",
// "StackMapTable", "Exceptions", "InnerClasses", "SourceFile",
// "ConstantValue", "Synthetic", "Deprecated") by serializing the fields
// and methods once into io.Discard, so callers need not intern them and
// every attribute header's name index is already in the written pool.
func (cf *ClassFile) Write(w io.Writer) error {
	bw := &byteWriter{w: w}

	dry := &byteWriter{w: io.Discard}
	for _, f := range cf.Fields {
		writeField(dry, cf.Pool, f)
	}
	for _, m := range cf.Methods {
		writeMethod(dry, cf.Pool, m)
	}
	if cf.SourceFileIdx != 0 {
		cf.Pool.InternUtf8("SourceFile")
	}
	if len(cf.InnerClasses) > 0 {
		cf.Pool.InternUtf8("InnerClasses")
	}
	if cf.Deprecated {
		cf.Pool.InternUtf8("Deprecated")
	}

	bw.u4(magic)
	bw.u2(cf.Target.Minor)
	bw.u2(cf.Target.Major)

	entries := cf.Pool.Entries()
	bw.u2(uint16(len(entries)))
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		if e.Tag == 0 {
			// Second slot of a preceding Long/Double entry; emit nothing,
			// matching JVMS §4.4.5's "in retrospect, a poor choice" rule.
			continue
		}
		writeConstant(bw, e)
	}

	bw.u2(cf.AccessFlags)
	bw.u2(cf.ThisClass)
	bw.u2(cf.SuperClass)

	bw.u2(uint16(len(cf.Interfaces)))
	for _, iface := range cf.Interfaces {
		bw.u2(iface)
	}

	bw.u2(uint16(len(cf.Fields)))
	for _, f := range cf.Fields {
		writeField(bw, cf.Pool, f)
	}

	bw.u2(uint16(len(cf.Methods)))
	for _, m := range cf.Methods {
		writeMethod(bw, cf.Pool, m)
	}

	classAttrCount := 0
	if cf.SourceFileIdx != 0 {
		classAttrCount++
	}
	if len(cf.InnerClasses) > 0 {
		classAttrCount++
	}
	if cf.Deprecated {
		classAttrCount++
	}
	bw.u2(uint16(classAttrCount))
	if cf.SourceFileIdx != 0 {
		writeAttrHeader(bw, cf.Pool, "SourceFile", 2)
		bw.u2(cf.SourceFileIdx)
	}
	if len(cf.InnerClasses) > 0 {
		writeAttrHeader(bw, cf.Pool, "InnerClasses", 2+8*len(cf.InnerClasses))
		bw.u2(uint16(len(cf.InnerClasses)))
		for _, ic := range cf.InnerClasses {
			bw.u2(ic.InnerClassIdx)
			bw.u2(ic.OuterClassIdx)
			bw.u2(ic.InnerNameIdx)
			bw.u2(ic.InnerAccessFlags)
		}
	}
	if cf.Deprecated {
		writeAttrHeader(bw, cf.Pool, "Deprecated", 0)
	}

	return bw.err
}

func writeConstant(bw *byteWriter, e constpool.Entry) {
	bw.u1(uint8(e.Tag))
	switch e.Tag {
	case constpool.TagUtf8:
		b := []byte(e.Utf8)
		bw.u2(uint16(len(b)))
		bw.raw(b)
	case constpool.TagInteger:
		bw.u4(uint32(e.Int))
	case constpool.TagFloat:
		bw.u4(e.Float.Bits)
	case constpool.TagLong:
		bw.u8(uint64(e.Long))
	case constpool.TagDouble:
		bw.u8(e.Double.Bits)
	case constpool.TagClass, constpool.TagString:
		bw.u2(e.Utf8Idx)
	case constpool.TagFieldref, constpool.TagMethodref, constpool.TagInterfaceMethodref:
		bw.u2(e.ClassIdx)
		bw.u2(e.NatIdx)
	case constpool.TagNameAndType:
		bw.u2(e.NameIdx)
		bw.u2(e.DescIdx)
	}
}

func writeField(bw *byteWriter, pool *constpool.Pool, f Field) {
	bw.u2(f.AccessFlags)
	bw.u2(f.NameIdx)
	bw.u2(f.DescriptorIdx)
	attrCount := 0
	if f.ConstantValueIdx != 0 {
		attrCount++
	}
	bw.u2(uint16(attrCount))
	if f.ConstantValueIdx != 0 {
		writeAttrHeader(bw, pool, "ConstantValue", 2)
		bw.u2(f.ConstantValueIdx)
	}
}

func writeMethod(bw *byteWriter, pool *constpool.Pool, m Method) {
	bw.u2(m.AccessFlags)
	bw.u2(m.NameIdx)
	bw.u2(m.DescriptorIdx)

	attrCount := 0
	if m.Code != nil {
		attrCount++
	}
	if len(m.Exceptions) > 0 {
		attrCount++
	}
	if m.Synthetic {
		attrCount++
	}
	if m.Deprecated {
		attrCount++
	}
	bw.u2(uint16(attrCount))

	if m.Code != nil {
		writeCodeAttr(bw, pool, m.Code)
	}
	if len(m.Exceptions) > 0 {
		writeAttrHeader(bw, pool, "Exceptions", 2+2*len(m.Exceptions))
		bw.u2(uint16(len(m.Exceptions)))
		for _, idx := range m.Exceptions {
			bw.u2(idx)
		}
	}
	if m.Synthetic {
		writeAttrHeader(bw, pool, "Synthetic", 0)
	}
	if m.Deprecated {
		writeAttrHeader(bw, pool, "Deprecated", 0)
	}
}

func writeCodeAttr(bw *byteWriter, pool *constpool.Pool, c *Code) {
	// Two-pass: measure the Code body length first since the outer
	// attribute carries a u4 byte length prefix.
	var body bodyCounter
	writeCodeBody(&body, pool, c)

	writeAttrHeader(bw, pool, "Code", body.n)
	writeCodeBody(bw, pool, c)
}

func writeCodeBody(w attrSink, pool *constpool.Pool, c *Code) {
	w.u2(c.MaxStack)
	w.u2(c.MaxLocals)
	w.u4(uint32(len(c.Bytes)))
	w.raw(c.Bytes)

	w.u2(uint16(len(c.Exceptions)))
	for _, ex := range c.Exceptions {
		w.u2(ex.StartPC)
		w.u2(ex.EndPC)
		w.u2(ex.HandlerPC)
		w.u2(ex.CatchType)
	}

	attrCount := 0
	if len(c.LineNumbers) > 0 {
		attrCount++
	}
	if len(c.LocalVariables) > 0 {
		attrCount++
	}
	if len(c.StackMapTable) > 0 {
		attrCount++
	}
	w.u2(uint16(attrCount))

	if len(c.LineNumbers) > 0 {
		writeAttrHeaderTo(w, pool, "LineNumberTable", 2+4*len(c.LineNumbers))
		w.u2(uint16(len(c.LineNumbers)))
		for _, ln := range c.LineNumbers {
			w.u2(ln.StartPC)
			w.u2(ln.Line)
		}
	}
	if len(c.LocalVariables) > 0 {
		writeAttrHeaderTo(w, pool, "LocalVariableTable", 2+10*len(c.LocalVariables))
		w.u2(uint16(len(c.LocalVariables)))
		for _, lv := range c.LocalVariables {
			w.u2(lv.StartPC)
			w.u2(lv.Length)
			w.u2(lv.NameIdx)
			w.u2(lv.DescriptorIdx)
			w.u2(lv.Index)
		}
	}
	if len(c.StackMapTable) > 0 {
		n := 2
		for _, f := range c.StackMapTable {
			n += len(f.Bytes)
		}
		writeAttrHeaderTo(w, pool, "StackMapTable", n)
		w.u2(uint16(len(c.StackMapTable)))
		for _, f := range c.StackMapTable {
			w.raw(f.Bytes)
		}
	}
}

// attrSink abstracts over byteWriter (real serialization) and
// bodyCounter (length measurement) for the two-pass Code-attribute
// writer.
type attrSink interface {
	u1(uint8)
	u2(uint16)
	u4(uint32)
	u8(uint64)
	raw([]byte)
}

func writeAttrHeader(bw *byteWriter, pool *constpool.Pool, name string, length int) {
	writeAttrHeaderTo(bw, pool, name, length)
}

func writeAttrHeaderTo(w attrSink, pool *constpool.Pool, name string, length int) {
	idx := pool.InternUtf8(name)
	w.u2(idx)
	w.u4(uint32(length))
}

// byteWriter is a minimal big-endian sink over an io.Writer, recording
// the first error and ignoring subsequent writes (matching the
// teacher's asm.go error-sticky encoder pattern).
type byteWriter struct {
	w   io.Writer
	err error
}

func (b *byteWriter) write(p []byte) {
	if b.err != nil {
		return
	}
	_, b.err = b.w.Write(p)
}

func (b *byteWriter) u1(v uint8)  { b.write([]byte{v}) }
func (b *byteWriter) u2(v uint16) { var p [2]byte; binary.BigEndian.PutUint16(p[:], v); b.write(p[:]) }
func (b *byteWriter) u4(v uint32) { var p [4]byte; binary.BigEndian.PutUint32(p[:], v); b.write(p[:]) }
func (b *byteWriter) u8(v uint64) { var p [8]byte; binary.BigEndian.PutUint64(p[:], v); b.write(p[:]) }
func (b *byteWriter) raw(p []byte) { b.write(p) }

// bodyCounter accumulates a byte count without producing output, used to
// compute a Code attribute's length prefix in a first pass.
type bodyCounter struct{ n int }

func (c *bodyCounter) u1(uint8)    { c.n++ }
func (c *bodyCounter) u2(uint16)   { c.n += 2 }
func (c *bodyCounter) u4(uint32)   { c.n += 4 }
func (c *bodyCounter) u8(uint64)   { c.n += 8 }
func (c *bodyCounter) raw(p []byte) { c.n += len(p) }
