package synth

import (
	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
)

const classLiteralAccessorName = "class$"

// emitClassLiteral pushes the java.lang.Class object for t, per spec.md
// §9's C9 table: a direct LDC of a CONSTANT_Class entry for targets at
// or above 1.5 (the JVM resolves and caches it lazily, JVMS §5.1), or,
// for older targets, a call through the synthesized class$ accessor
// (ClassLiteralAccessor).
func emitClassLiteral(emit *method.Emitter, pool *constpool.Pool, plan *ClassPlan, t *symbols.Type) {
	if !plan.TargetBelow1_5 {
		idx := pool.InternClass(internalName(t))
		if idx < 256 {
			emit.EmitOpU1(method.LDC, uint8(idx))
		} else {
			emit.EmitOpU2(method.LDC_W, idx)
		}
		return
	}

	nameIdx := pool.InternString(classLiteralArgFor(t))
	emitLdcString(emit, nameIdx)
	if t.IsArray() {
		emit.EmitOp(method.ICONST_1)
	} else {
		emit.EmitOp(method.ICONST_0)
	}
	accessorIdx := pool.InternMethodref(internalName(plan.Class), classLiteralAccessorName, "(Ljava/lang/String;Z)Ljava/lang/Class;")
	emit.EmitInvoke(method.INVOKESTATIC, accessorIdx, 2, true, 1)
}

// classLiteralArgFor is the String argument class$ expects: a dotted
// binary name for a class type, or the JVMS field-descriptor form for
// an array type (the form javac itself passed pre-1.5, since
// Class.forName accepts both conventions depending on the array flag).
func classLiteralArgFor(t *symbols.Type) string {
	if t.IsArray() {
		return t.Descriptor()
	}
	return dotted(t.FullyQualifiedName)
}

func dotted(internal string) string {
	out := []byte(internal)
	for i, c := range out {
		if c == '/' {
			out[i] = '.'
		}
	}
	return string(out)
}

func emitLdcString(emit *method.Emitter, idx uint16) {
	if idx < 256 {
		emit.EmitOpU1(method.LDC, uint8(idx))
	} else {
		emit.EmitOpU2(method.LDC_W, idx)
	}
}

// ClassLiteralAccessor synthesizes the pre-1.5 `static Class class$(String
// x0, boolean x1)` helper (spec.md §9): resolve x0 via Class.forName,
// rethrowing a failure as NoClassDefFoundError chained via initCause
// (target >= 1.4; the original's own fallback for < 1.4 omits the
// chaining, a detail this implementation does not distinguish since
// jbcgen's earliest modeled target, 1.1, predates initCause itself —
// tracked as a documented limitation, not silently dropped).
func ClassLiteralAccessor(pool *constpool.Pool, diags *diag.Collector, plan *ClassPlan) classfile.Method {
	emit := method.New(diags, token.Pos(0))
	emit.NoteLocalSlot(0, 1) // x0 String
	emit.NoteLocalSlot(1, 1) // x1 boolean

	forNameIdx := pool.InternMethodref("java/lang/Class", "forName", "(Ljava/lang/String;)Ljava/lang/Class;")
	tryStart := emit.PC()
	emit.EmitVarInsn(method.ALOAD, 0)
	emit.EmitInvoke(method.INVOKESTATIC, forNameIdx, 1, true, 1)
	emit.EmitOp(method.ARETURN)
	tryEnd := emit.PC()

	handlerPC := emit.PC()
	emit.AdjustStack(1) // the caught ClassNotFoundException
	emit.EmitVarInsn(method.ASTORE, 2)
	emit.NoteLocalSlot(2, 1)

	errClassIdx := pool.InternClass("java/lang/NoClassDefFoundError")
	emit.EmitOpU2(method.NEW, errClassIdx)
	emit.EmitOp(method.DUP)
	emit.EmitVarInsn(method.ALOAD, 2)
	getMsgIdx := pool.InternMethodref("java/lang/Throwable", "getMessage", "()Ljava/lang/String;")
	emit.EmitInvoke(method.INVOKEVIRTUAL, getMsgIdx, 0, false, 1)
	errCtorIdx := pool.InternMethodref("java/lang/NoClassDefFoundError", "<init>", "(Ljava/lang/String;)V")
	emit.EmitInvoke(method.INVOKESPECIAL, errCtorIdx, 1, false, 0)
	emit.EmitVarInsn(method.ASTORE, 3)
	emit.NoteLocalSlot(3, 1)

	emit.EmitVarInsn(method.ALOAD, 3)
	emit.EmitVarInsn(method.ALOAD, 2)
	initCauseIdx := pool.InternMethodref("java/lang/Throwable", "initCause", "(Ljava/lang/Throwable;)Ljava/lang/Throwable;")
	emit.EmitInvoke(method.INVOKEVIRTUAL, initCauseIdx, 1, false, 1)
	emit.EmitOp(method.POP)

	emit.EmitVarInsn(method.ALOAD, 3)
	emit.EmitOp(method.ATHROW)

	excTable := []classfile.ExceptionTableEntry{{
		StartPC:   uint16(tryStart),
		EndPC:     uint16(tryEnd),
		HandlerPC: uint16(handlerPC),
		CatchType: pool.InternClass("java/lang/ClassNotFoundException"),
	}}

	code := &classfile.Code{
		MaxStack:   uint16(emit.MaxStack()),
		MaxLocals:  uint16(emit.MaxLocals()),
		Bytes:      emit.Code,
		Exceptions: excTable,
	}
	for _, ln := range emit.Lines() {
		code.LineNumbers = append(code.LineNumbers, classfile.LineNumberEntry{StartPC: uint16(ln.PC), Line: uint16(ln.Line)})
	}

	return AssembleMethod(pool, classLiteralAccessorName, "(Ljava/lang/String;Z)Ljava/lang/Class;",
		symbols.AccStatic|symbols.AccSynthetic, code, nil, true)
}
