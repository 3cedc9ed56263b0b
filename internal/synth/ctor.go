package synth

import (
	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
)

// DefaultConstructor synthesizes the implicit no-arg `<init>` a class
// receives when it declares no constructor of its own (JLS §8.8.9),
// grounded on original_source/bytecode_init.cpp's default_constructor:
// `aload_0; invokespecial Super.<init>()V; return`. The synthesized
// constructor's access flags match the class's own, per JLS §8.8.9.
func DefaultConstructor(pool *constpool.Pool, diags *diag.Collector, plan *ClassPlan) classfile.Method {
	super := plan.Class.Super
	if super == nil {
		super = symbols.Object
	}

	emit := method.New(diags, token.Pos(0))
	emit.NoteLocalSlot(0, 1) // `this`
	emit.EmitOp(method.ALOAD_0)

	ctorIdx := pool.InternMethodref(internalName(super), "<init>", "()V")
	emit.EmitInvoke(method.INVOKESPECIAL, ctorIdx, 0, false, 0)
	emit.EmitOp(method.RETURN)

	code := AssembleCode(pool, emit, nil, nil, nil, false)
	access := plan.Access &^ symbols.AccStatic &^ symbols.AccAbstract
	return AssembleMethod(pool, "<init>", "()V", access, code, nil, false)
}

// NeedsDefaultConstructor reports whether plan requires
// DefaultConstructor to run, per JLS §8.8.9.
func (plan *ClassPlan) NeedsDefaultConstructor() bool { return !plan.HasExplicitCtor }
