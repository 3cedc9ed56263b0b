package method

// localVariants returns the four _0.._3 shorthand opcodes for a load or
// store family, if base has them (JVMS §6.5's *load_<n>/*store_<n>
// instructions exist only for I/L/F/D/A).
func localVariants(base Opcode) (n0, n1, n2, n3 Opcode, ok bool) {
	switch base {
	case ILOAD:
		return ILOAD_0, ILOAD_1, ILOAD_2, ILOAD_3, true
	case LLOAD:
		return LLOAD_0, LLOAD_1, LLOAD_2, LLOAD_3, true
	case FLOAD:
		return FLOAD_0, FLOAD_1, FLOAD_2, FLOAD_3, true
	case DLOAD:
		return DLOAD_0, DLOAD_1, DLOAD_2, DLOAD_3, true
	case ALOAD:
		return ALOAD_0, ALOAD_1, ALOAD_2, ALOAD_3, true
	case ISTORE:
		return ISTORE_0, ISTORE_1, ISTORE_2, ISTORE_3, true
	case LSTORE:
		return LSTORE_0, LSTORE_1, LSTORE_2, LSTORE_3, true
	case FSTORE:
		return FSTORE_0, FSTORE_1, FSTORE_2, FSTORE_3, true
	case DSTORE:
		return DSTORE_0, DSTORE_1, DSTORE_2, DSTORE_3, true
	case ASTORE:
		return ASTORE_0, ASTORE_1, ASTORE_2, ASTORE_3, true
	default:
		return 0, 0, 0, 0, false
	}
}

// EmitVarInsn emits a load or store of local slot index, choosing among
// the _<n> shorthand (index 0-3), the single-byte-index form (index <
// 256), or a WIDE-prefixed two-byte-index form, per JVMS §6.5's wide
// instruction.
func (e *Emitter) EmitVarInsn(base Opcode, index int) {
	if n0, n1, n2, n3, ok := localVariants(base); ok {
		switch index {
		case 0:
			e.EmitOp(n0)
			return
		case 1:
			e.EmitOp(n1)
			return
		case 2:
			e.EmitOp(n2)
			return
		case 3:
			e.EmitOp(n3)
			return
		}
	}
	if index >= 0 && index < 256 {
		e.EmitOpU1(base, uint8(index))
		return
	}
	e.Code = append(e.Code, byte(WIDE), byte(base), byte(uint16(index)>>8), byte(uint16(index)))
	e.bumpStack(base)
	e.resetGotoTracking()
}

// EmitIinc emits an IINC of local slot index by delta, widening to the
// WIDE-prefixed form when either the index or the delta falls outside
// the narrow instruction's signed/unsigned byte range.
func (e *Emitter) EmitIinc(index int, delta int) {
	if index >= 0 && index < 256 && delta >= -128 && delta <= 127 {
		e.Code = append(e.Code, byte(IINC), uint8(index), uint8(int8(delta)))
		e.resetGotoTracking()
		return
	}
	e.Code = append(e.Code, byte(WIDE), byte(IINC),
		byte(uint16(index)>>8), byte(uint16(index)),
		byte(uint16(int16(delta))>>8), byte(uint16(int16(delta))))
	e.resetGotoTracking()
}

// EmitRet emits RET, widening to the WIDE-prefixed form for index >= 256.
// No lowering in this module calls it: finally blocks are always
// inlined, never lowered to JSR/RET.
func (e *Emitter) EmitRet(index int) {
	if index >= 0 && index < 256 {
		e.EmitOpU1(RET, uint8(index))
		return
	}
	e.Code = append(e.Code, byte(WIDE), byte(RET), byte(uint16(index)>>8), byte(uint16(index)))
	e.resetGotoTracking()
}
