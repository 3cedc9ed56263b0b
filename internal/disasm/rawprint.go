package disasm

import (
	"bytes"
	"fmt"
)

// DisassembleRaw renders rc the same way Disassemble renders a freshly
// built classfile.ClassFile, for the `disasm` CLI command reading an
// arbitrary .class file back off disk.
func DisassembleRaw(rc *RawClass) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "class #%d extends #%d\n", rc.ThisClass, rc.SuperClass)
	fmt.Fprintf(&buf, "  version: %d.%d\n", rc.MajorVersion, rc.MinorVersion)
	fmt.Fprintf(&buf, "  access: 0x%04x\n", rc.AccessFlags)
	if len(rc.Interfaces) > 0 {
		buf.WriteString("  interfaces:\n")
		for _, idx := range rc.Interfaces {
			fmt.Fprintf(&buf, "    #%d\n", idx)
		}
	}

	if len(rc.Pool) > 1 {
		buf.WriteString("constant pool:\n")
		for i := 1; i < len(rc.Pool); i++ {
			e := rc.Pool[i]
			if e.Tag == 0 {
				continue // second slot of a Long/Double entry
			}
			fmt.Fprintf(&buf, "  #%-4d = %s\n", i, rawConstantString(e))
		}
	}

	for _, f := range rc.Fields {
		fmt.Fprintf(&buf, "field #%d:#%d access=0x%04x\n", f.NameIdx, f.DescIdx, f.AccessFlags)
		if f.ConstantValueIdx != 0 {
			fmt.Fprintf(&buf, "  ConstantValue: #%d\n", f.ConstantValueIdx)
		}
	}

	for _, m := range rc.Methods {
		buf.WriteString("\n")
		flags := ""
		if m.Synthetic {
			flags += " synthetic"
		}
		if m.Deprecated {
			flags += " deprecated"
		}
		fmt.Fprintf(&buf, "method #%d:#%d access=0x%04x%s\n", m.NameIdx, m.DescIdx, m.AccessFlags, flags)
		if m.Code == nil {
			continue
		}
		fmt.Fprintf(&buf, "  stack=%d locals=%d\n", m.Code.MaxStack, m.Code.MaxLocals)

		insns, err := Decode(m.Code.Bytes)
		if err != nil {
			return "", err
		}
		buf.WriteString("  code:\n")
		for _, in := range insns {
			fmt.Fprintf(&buf, "    %4d: %s\n", in.PC, FormatInsn(in))
		}

		if len(m.Code.Exceptions) > 0 {
			buf.WriteString("  exception table:\n")
			for _, e := range m.Code.Exceptions {
				catch := "any"
				if e.CatchType != 0 {
					catch = fmt.Sprintf("#%d", e.CatchType)
				}
				fmt.Fprintf(&buf, "    from=%d to=%d target=%d type=%s\n", e.StartPC, e.EndPC, e.HandlerPC, catch)
			}
		}
	}

	return buf.String(), nil
}

func rawConstantString(e RawConstant) string {
	switch e.Tag {
	case 1:
		return fmt.Sprintf("Utf8 %q", e.Utf8)
	case 3:
		return fmt.Sprintf("Integer %d", e.Int)
	case 4:
		return fmt.Sprintf("Float %v", e.Float)
	case 5:
		return fmt.Sprintf("Long %d", e.Long)
	case 6:
		return fmt.Sprintf("Double %v", e.Double)
	case 7:
		return fmt.Sprintf("Class #%d", e.Utf8Idx)
	case 8:
		return fmt.Sprintf("String #%d", e.Utf8Idx)
	case 9:
		return fmt.Sprintf("Fieldref #%d.#%d", e.ClassIdx, e.NatIdx)
	case 10:
		return fmt.Sprintf("Methodref #%d.#%d", e.ClassIdx, e.NatIdx)
	case 11:
		return fmt.Sprintf("InterfaceMethodref #%d.#%d", e.ClassIdx, e.NatIdx)
	case 12:
		return fmt.Sprintf("NameAndType #%d:#%d", e.NameIdx, e.DescIdx)
	default:
		return fmt.Sprintf("tag%d", e.Tag)
	}
}
