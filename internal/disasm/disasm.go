// Package disasm implements a downstream, human-readable listing of an
// assembled class file (spec.md §8's "disassembly listings" testable
// property): one line per instruction with its resolved constant-pool
// operand, plus the constant pool, field, and method tables. It walks
// the in-memory classfile.ClassFile/constpool.Pool representation jbcgen
// itself builds, the same way the teacher's lang/compiler/asm.go Dasm
// walks its own in-memory *Program rather than re-parsing serialized
// bytes — the write side and the read-back side share one
// representation, so neither needs a round trip through bytes.
//
// The instruction decoder (operand widths per opcode, TABLESWITCH/
// LOOKUPSWITCH/WIDE layout) is the mirror image of
// internal/method/switchinsn.go's encoder and follows the same JVMS
// §4.10.1/§6.5 tables; the overall "incremental buffer, writef with a
// trailing index comment" shape is adapted from Dasm's own dasm struct.
package disasm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/method"
)

// Disassemble renders cf as text, resolving operands through the
// constant pool cf.Pool carries.
func Disassemble(cf *classfile.ClassFile) (string, error) {
	d := &dis{cf: cf, pool: cf.Pool, buf: new(bytes.Buffer)}
	d.classHeader()
	d.constantPool()
	for i := range cf.Fields {
		d.field(&cf.Fields[i])
	}
	for i := range cf.Methods {
		d.write("\n")
		if err := d.method(&cf.Methods[i]); err != nil {
			return "", err
		}
	}
	return d.buf.String(), d.err
}

type dis struct {
	cf   *classfile.ClassFile
	pool *constpool.Pool
	buf  *bytes.Buffer
	err  error
}

func (d *dis) classHeader() {
	d.writef("class #%d extends #%d\n", d.cf.ThisClass, d.cf.SuperClass)
	d.writef("  version: %d.%d\n", d.cf.Target.Major, d.cf.Target.Minor)
	d.writef("  access: 0x%04x\n", d.cf.AccessFlags)
	if len(d.cf.Interfaces) > 0 {
		d.write("  interfaces:\n")
		for _, idx := range d.cf.Interfaces {
			d.writef("    #%d\n", idx)
		}
	}
}

func (d *dis) constantPool() {
	entries := d.pool.Entries()
	if len(entries) <= 1 {
		return
	}
	d.write("constant pool:\n")
	for i := 1; i < len(entries); i++ {
		d.writef("  #%-4d = %s\n", i, entries[i].String())
	}
}

func (d *dis) field(f *classfile.Field) {
	d.writef("field #%d:#%d access=0x%04x\n", f.NameIdx, f.DescriptorIdx, f.AccessFlags)
	if f.ConstantValueIdx != 0 {
		d.writef("  ConstantValue: #%d\n", f.ConstantValueIdx)
	}
}

func (d *dis) method(m *classfile.Method) error {
	flags := ""
	if m.Synthetic {
		flags += " synthetic"
	}
	if m.Deprecated {
		flags += " deprecated"
	}
	d.writef("method #%d:#%d access=0x%04x%s\n", m.NameIdx, m.DescriptorIdx, m.AccessFlags, flags)
	if len(m.Exceptions) > 0 {
		d.write("  throws:\n")
		for _, idx := range m.Exceptions {
			d.writef("    #%d\n", idx)
		}
	}
	if m.Code == nil {
		return nil
	}
	return d.code(m.Code)
}

func (d *dis) code(c *classfile.Code) error {
	d.writef("  stack=%d locals=%d\n", c.MaxStack, c.MaxLocals)

	insns, err := Decode(c.Bytes)
	if err != nil {
		return err
	}
	d.write("  code:\n")
	for _, in := range insns {
		d.writef("    %4d: %s\n", in.PC, FormatInsn(in))
	}

	if len(c.Exceptions) > 0 {
		d.write("  exception table:\n")
		for _, e := range c.Exceptions {
			catch := "any"
			if e.CatchType != 0 {
				catch = fmt.Sprintf("#%d", e.CatchType)
			}
			d.writef("    from=%d to=%d target=%d type=%s\n", e.StartPC, e.EndPC, e.HandlerPC, catch)
		}
	}
	if len(c.LineNumbers) > 0 {
		d.write("  line numbers:\n")
		for _, ln := range c.LineNumbers {
			d.writef("    pc=%d line=%d\n", ln.StartPC, ln.Line)
		}
	}
	if len(c.LocalVariables) > 0 {
		d.write("  local variables:\n")
		for _, v := range c.LocalVariables {
			d.writef("    slot=%d start=%d len=%d name=#%d desc=#%d\n",
				v.Index, v.StartPC, v.Length, v.NameIdx, v.DescriptorIdx)
		}
	}
	if len(c.StackMapTable) > 0 {
		d.writef("  StackMapTable: %d frame(s)\n", len(c.StackMapTable))
	}
	return nil
}

func (d *dis) writef(s string, args ...any) { d.write(fmt.Sprintf(s, args...)) }

func (d *dis) write(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.buf.WriteString(s)
}

// Insn is one decoded instruction, PC-addressed within its method's code
// array.
type Insn struct {
	PC   int
	Op   method.Opcode
	Size int // total encoded length in bytes, including the opcode itself

	// Operand payloads; at most one of these is meaningful, selected by
	// Op's family.
	U1      uint8  // BIPUSH, NEWARRAY, RET, LDC, ALOAD/ASTORE &c. narrow-index forms
	U2      uint16 // SIPUSH, *_W forms, field/method/class refs, IINC's var part folded into Iinc
	Branch  int32  // IFxx/GOTO/JSR family: absolute target PC (already offset-resolved)
	IincVar uint8
	IincVal int16
	Table   *SwitchTable // TABLESWITCH/LOOKUPSWITCH
	Dims    uint8        // MULTIANEWARRAY
}

// SwitchTable is a decoded TABLESWITCH or LOOKUPSWITCH payload.
type SwitchTable struct {
	IsLookup bool
	Default  int32 // absolute target PC
	Low, High int32 // TABLESWITCH only
	Targets  []int32 // TABLESWITCH: indexed 0..High-Low; absolute target PCs
	Pairs    map[int32]int32 // LOOKUPSWITCH: match -> absolute target PC
}

// Decode walks a method's raw Code.Bytes into a sequence of Insn, one
// entry per instruction at its original PC, inverting exactly the
// encodings internal/method/emitter.go and internal/method/switchinsn.go
// produce.
func Decode(code []byte) ([]Insn, error) {
	var out []Insn
	pc := 0
	for pc < len(code) {
		op := method.Opcode(code[pc])
		in := Insn{PC: pc, Op: op}

		switch op {
		case method.BIPUSH, method.LDC, method.NEWARRAY,
			method.ILOAD, method.LLOAD, method.FLOAD, method.DLOAD, method.ALOAD,
			method.ISTORE, method.LSTORE, method.FSTORE, method.DSTORE, method.ASTORE,
			method.RET:
			if pc+2 > len(code) {
				return nil, fmt.Errorf("disasm: truncated u1 operand at pc %d (%s)", pc, op)
			}
			in.U1 = code[pc+1]
			in.Size = 2

		case method.SIPUSH, method.LDC_W, method.LDC2_W,
			method.GETSTATIC, method.PUTSTATIC, method.GETFIELD, method.PUTFIELD,
			method.INVOKEVIRTUAL, method.INVOKESPECIAL, method.INVOKESTATIC,
			method.NEW, method.ANEWARRAY, method.CHECKCAST, method.INSTANCEOF:
			if pc+3 > len(code) {
				return nil, fmt.Errorf("disasm: truncated u2 operand at pc %d (%s)", pc, op)
			}
			in.U2 = binary.BigEndian.Uint16(code[pc+1:])
			in.Size = 3

		case method.INVOKEINTERFACE:
			if pc+5 > len(code) {
				return nil, fmt.Errorf("disasm: truncated invokeinterface at pc %d", pc)
			}
			in.U2 = binary.BigEndian.Uint16(code[pc+1:])
			in.Size = 5 // methodref(2) + count(1) + zero(1)

		case method.INVOKEDYNAMIC:
			if pc+5 > len(code) {
				return nil, fmt.Errorf("disasm: truncated invokedynamic at pc %d", pc)
			}
			in.U2 = binary.BigEndian.Uint16(code[pc+1:])
			in.Size = 5

		case method.MULTIANEWARRAY:
			if pc+4 > len(code) {
				return nil, fmt.Errorf("disasm: truncated multianewarray at pc %d", pc)
			}
			in.U2 = binary.BigEndian.Uint16(code[pc+1:])
			in.Dims = code[pc+3]
			in.Size = 4

		case method.IINC:
			if pc+3 > len(code) {
				return nil, fmt.Errorf("disasm: truncated iinc at pc %d", pc)
			}
			in.IincVar = code[pc+1]
			in.IincVal = int16(int8(code[pc+2]))
			in.Size = 3

		case method.IFEQ, method.IFNE, method.IFLT, method.IFGE, method.IFGT, method.IFLE,
			method.IF_ICMPEQ, method.IF_ICMPNE, method.IF_ICMPLT, method.IF_ICMPGE,
			method.IF_ICMPGT, method.IF_ICMPLE, method.IF_ACMPEQ, method.IF_ACMPNE,
			method.GOTO, method.JSR, method.IFNULL, method.IFNONNULL:
			if pc+3 > len(code) {
				return nil, fmt.Errorf("disasm: truncated branch at pc %d (%s)", pc, op)
			}
			off := int16(binary.BigEndian.Uint16(code[pc+1:]))
			in.Branch = int32(pc) + int32(off)
			in.Size = 3

		case method.GOTO_W, method.JSR_W:
			if pc+5 > len(code) {
				return nil, fmt.Errorf("disasm: truncated wide branch at pc %d (%s)", pc, op)
			}
			off := int32(binary.BigEndian.Uint32(code[pc+1:]))
			in.Branch = int32(pc) + off
			in.Size = 5

		case method.TABLESWITCH:
			tbl, size, err := decodeTableSwitch(code, pc)
			if err != nil {
				return nil, err
			}
			in.Table = tbl
			in.Size = size

		case method.LOOKUPSWITCH:
			tbl, size, err := decodeLookupSwitch(code, pc)
			if err != nil {
				return nil, err
			}
			in.Table = tbl
			in.Size = size

		case method.WIDE:
			size, err := wideSize(code, pc)
			if err != nil {
				return nil, err
			}
			in.Size = size

		default:
			in.Size = 1
		}

		out = append(out, in)
		pc += in.Size
	}
	return out, nil
}

func pad4(pc int) int {
	// instruction byte + padding, per JVMS §4.10.1: padding brings the
	// first operand byte to a 4-byte-aligned address.
	rem := (pc + 1) % 4
	if rem == 0 {
		return 0
	}
	return 4 - rem
}

func decodeTableSwitch(code []byte, pc int) (*SwitchTable, int, error) {
	p := pc + 1 + pad4(pc)
	if p+12 > len(code) {
		return nil, 0, fmt.Errorf("disasm: truncated tableswitch at pc %d", pc)
	}
	def := int32(binary.BigEndian.Uint32(code[p:]))
	low := int32(binary.BigEndian.Uint32(code[p+4:]))
	high := int32(binary.BigEndian.Uint32(code[p+8:]))
	p += 12
	n := int(high - low + 1)
	targets := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		if p+4 > len(code) {
			return nil, 0, fmt.Errorf("disasm: truncated tableswitch targets at pc %d", pc)
		}
		off := int32(binary.BigEndian.Uint32(code[p:]))
		targets = append(targets, int32(pc)+off)
		p += 4
	}
	return &SwitchTable{
		Default: int32(pc) + def,
		Low:     low, High: high,
		Targets: targets,
	}, p - pc, nil
}

func decodeLookupSwitch(code []byte, pc int) (*SwitchTable, int, error) {
	p := pc + 1 + pad4(pc)
	if p+8 > len(code) {
		return nil, 0, fmt.Errorf("disasm: truncated lookupswitch at pc %d", pc)
	}
	def := int32(binary.BigEndian.Uint32(code[p:]))
	npairs := int32(binary.BigEndian.Uint32(code[p+4:]))
	p += 8
	pairs := make(map[int32]int32, npairs)
	for i := int32(0); i < npairs; i++ {
		if p+8 > len(code) {
			return nil, 0, fmt.Errorf("disasm: truncated lookupswitch pairs at pc %d", pc)
		}
		match := int32(binary.BigEndian.Uint32(code[p:]))
		off := int32(binary.BigEndian.Uint32(code[p+4:]))
		pairs[match] = int32(pc) + off
		p += 8
	}
	return &SwitchTable{
		IsLookup: true,
		Default:  int32(pc) + def,
		Pairs:    pairs,
	}, p - pc, nil
}

func wideSize(code []byte, pc int) (int, error) {
	if pc+2 > len(code) {
		return 0, fmt.Errorf("disasm: truncated wide at pc %d", pc)
	}
	inner := method.Opcode(code[pc+1])
	if inner == method.IINC {
		return 6, nil // wide + opcode + u2 index + i2 const
	}
	return 4, nil // wide + opcode + u2 index
}

// FormatInsn renders in as one line of mnemonic + resolved operand,
// pool-reference indices left as `#n` (the caller is expected to cross
// reference the constant-pool listing printed alongside, the same
// convention javap itself uses).
func FormatInsn(in Insn) string {
	switch {
	case in.Table != nil:
		return formatSwitch(in)
	case isBranchOp(in.Op):
		return fmt.Sprintf("%-15s %d", in.Op, in.Branch)
	case in.Op == method.IINC:
		return fmt.Sprintf("%-15s %d, %d", in.Op, in.IincVar, in.IincVal)
	case in.Op == method.MULTIANEWARRAY:
		return fmt.Sprintf("%-15s #%d, %d", in.Op, in.U2, in.Dims)
	case in.Op == method.INVOKEINTERFACE:
		return fmt.Sprintf("%-15s #%d", in.Op, in.U2)
	}

	switch in.Size {
	case 2:
		if hasPoolOperand(in.Op) {
			return fmt.Sprintf("%-15s #%d", in.Op, in.U1)
		}
		return fmt.Sprintf("%-15s %d", in.Op, in.U1)
	case 3:
		if hasPoolOperand(in.Op) {
			return fmt.Sprintf("%-15s #%d", in.Op, in.U2)
		}
		return fmt.Sprintf("%-15s %d", in.Op, int16(in.U2))
	case 5:
		return fmt.Sprintf("%-15s #%d", in.Op, in.U2)
	default:
		return in.Op.String()
	}
}

func isBranchOp(op method.Opcode) bool {
	switch op {
	case method.IFEQ, method.IFNE, method.IFLT, method.IFGE, method.IFGT, method.IFLE,
		method.IF_ICMPEQ, method.IF_ICMPNE, method.IF_ICMPLT, method.IF_ICMPGE,
		method.IF_ICMPGT, method.IF_ICMPLE, method.IF_ACMPEQ, method.IF_ACMPNE,
		method.GOTO, method.JSR, method.IFNULL, method.IFNONNULL,
		method.GOTO_W, method.JSR_W:
		return true
	}
	return false
}

func hasPoolOperand(op method.Opcode) bool {
	switch op {
	case method.LDC, method.LDC_W, method.LDC2_W,
		method.GETSTATIC, method.PUTSTATIC, method.GETFIELD, method.PUTFIELD,
		method.INVOKEVIRTUAL, method.INVOKESPECIAL, method.INVOKESTATIC, method.INVOKEDYNAMIC,
		method.NEW, method.ANEWARRAY, method.CHECKCAST, method.INSTANCEOF:
		return true
	}
	return false
}

func formatSwitch(in Insn) string {
	t := in.Table
	if !t.IsLookup {
		var b bytes.Buffer
		fmt.Fprintf(&b, "%-15s default=%d, range=[%d,%d]", in.Op, t.Default, t.Low, t.High)
		for i, target := range t.Targets {
			fmt.Fprintf(&b, ", %d:%d", t.Low+int32(i), target)
		}
		return b.String()
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%-15s default=%d, npairs=%d", in.Op, t.Default, len(t.Pairs))
	for _, m := range sortedMatches(t.Pairs) {
		fmt.Fprintf(&b, ", %d:%d", m, t.Pairs[m])
	}
	return b.String()
}

func sortedMatches(pairs map[int32]int32) []int32 {
	out := make([]int32, 0, len(pairs))
	for m := range pairs {
		out = append(out, m)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
