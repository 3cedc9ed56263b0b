package synth

import (
	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
	"github.com/7mind/jbcgen/internal/value"
)

// BridgeMethod synthesizes a covariant-return/generic-erasure bridge
// (spec.md §9): "load this, load each param, CHECKCAST where the target
// signature is more specific, invoke the specific method, return its
// result." m carries the bridge's own (erased) descriptor; m.BridgeTarget
// is the sharper override it forwards to.
func BridgeMethod(pool *constpool.Pool, diags *diag.Collector, m *symbols.Method) classfile.Method {
	target := m.BridgeTarget
	emit := method.New(diags, token.Pos(0))
	emit.EmitOp(method.ALOAD_0)
	emit.NoteLocalSlot(0, 1)

	slot := 1
	for i, p := range m.Params {
		emit.EmitVarInsn(loadOp(p), slot)
		emit.NoteLocalSlot(slot, wordsOf(p))
		if i < len(target.Params) {
			tp := target.Params[i]
			if !p.IsPrimitive() && !tp.IsPrimitive() && tp != p {
				idx := pool.InternClass(internalName(tp))
				emit.EmitOpU2(method.CHECKCAST, idx)
			}
		}
		slot += wordsOf(p)
	}

	owner := internalName(target.Owner)
	midx := pool.InternMethodref(owner, target.Name, target.Descriptor())
	argWords := 0
	for _, p := range target.Params {
		argWords += wordsOf(p)
	}
	pushWords := 0
	if target.Return != nil {
		pushWords = wordsOf(target.Return)
	}
	emit.EmitInvoke(method.INVOKEVIRTUAL, midx, argWords, false, pushWords)

	if target.Return != nil && m.Return != nil && target.Return != m.Return && !m.Return.IsPrimitive() {
		ridx := pool.InternClass(internalName(m.Return))
		emit.EmitOpU2(method.CHECKCAST, ridx)
	}
	emit.EmitOp(returnOp(m.Return))

	code := AssembleCode(pool, emit, nil, nil, initialLocalsFor(m.Owner, false, m.Params), false)
	access := (m.Access | symbols.AccBridge | symbols.AccSynthetic) &^ symbols.AccAbstract
	return AssembleMethod(pool, m.Name, m.Descriptor(), access, code, nil, true)
}

func wordsOf(t *symbols.Type) int { return value.Words(descriptorOf(t)) }

func loadOp(t *symbols.Type) method.Opcode {
	if t.IsPrimitive() {
		switch t.PrimitiveDescriptor {
		case 'J':
			return method.LLOAD
		case 'F':
			return method.FLOAD
		case 'D':
			return method.DLOAD
		default:
			return method.ILOAD
		}
	}
	return method.ALOAD
}

func returnOp(t *symbols.Type) method.Opcode {
	if t == nil || t == symbols.Void {
		return method.RETURN
	}
	if !t.IsPrimitive() {
		return method.ARETURN
	}
	switch t.PrimitiveDescriptor {
	case 'J':
		return method.LRETURN
	case 'F':
		return method.FRETURN
	case 'D':
		return method.DRETURN
	default:
		return method.IRETURN
	}
}
