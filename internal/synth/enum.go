package synth

import (
	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
)

// EnumValues synthesizes `public static T[] values()` (spec.md §9):
// "allocate a T[N], store each constant, return" happens once, in
// <clinit>, building the canonical `$VALUES` array (folded into the
// plan's StaticFieldInits); values() itself only needs to clone that
// array so callers can't mutate the canonical one javac itself shares
// across every call.
func EnumValues(pool *constpool.Pool, diags *diag.Collector, plan *ClassPlan) classfile.Method {
	emit := method.New(diags, token.Pos(0))
	arrType := symbols.ArrayType(plan.Class, 1)

	fieldIdx := pool.InternFieldref(internalName(plan.Class), plan.EnumValuesField.Name, arrType.Descriptor())
	emit.EmitFieldOp(method.GETSTATIC, fieldIdx, 1)
	cloneIdx := pool.InternMethodref("java/lang/Object", "clone", "()Ljava/lang/Object;")
	emit.EmitInvoke(method.INVOKEVIRTUAL, cloneIdx, 0, false, 1)
	castIdx := pool.InternClass(internalName(arrType))
	emit.EmitOpU2(method.CHECKCAST, castIdx)
	emit.EmitOp(method.ARETURN)

	code := AssembleCode(pool, emit, nil, nil, nil, false)
	return AssembleMethod(pool, "values", "()"+arrType.Descriptor(), symbols.AccPublic|symbols.AccStatic, code, nil, false)
}

// EnumValueOf synthesizes `public static T valueOf(String name)`
// (spec.md §9's exact recipe): "ldc T.class; aload_0; invokestatic
// Enum.valueOf(Class,String)Enum; checkcast T; areturn".
func EnumValueOf(pool *constpool.Pool, diags *diag.Collector, plan *ClassPlan) classfile.Method {
	emit := method.New(diags, token.Pos(0))
	emit.NoteLocalSlot(0, 1) // name

	emitClassLiteral(emit, pool, plan, plan.Class)
	emit.EmitVarInsn(method.ALOAD, 0)
	valueOfIdx := pool.InternMethodref("java/lang/Enum", "valueOf", "(Ljava/lang/Class;Ljava/lang/String;)Ljava/lang/Enum;")
	emit.EmitInvoke(method.INVOKESTATIC, valueOfIdx, 2, true, 1)
	castIdx := pool.InternClass(internalName(plan.Class))
	emit.EmitOpU2(method.CHECKCAST, castIdx)
	emit.EmitOp(method.ARETURN)

	code := AssembleCode(pool, emit, nil, nil, nil, false)
	return AssembleMethod(pool, "valueOf", "(Ljava/lang/String;)"+plan.Class.Descriptor(), symbols.AccPublic|symbols.AccStatic, code, nil, false)
}
