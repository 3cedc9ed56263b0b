package synth

import (
	"github.com/7mind/jbcgen/internal/ast"
	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/codegen"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
)

// NeedsClinit reports whether plan requires a <clinit>, grounded on
// original_source/bytecode_init.cpp: a class gets one iff it has a
// static field with an explicit initializer, the assert-enabled flag,
// or (for an enum) constants to construct — callers fold enum-constant
// construction and the $VALUES array build into StaticFieldInits in
// their natural declaration position, so this package has only one
// aggregation path to maintain.
func (plan *ClassPlan) NeedsClinit() bool {
	if plan.NeedsAssertionsDisabledField {
		return true
	}
	for _, fi := range plan.StaticFieldInits {
		if fi.Init != nil {
			return true
		}
	}
	return false
}

// ClassInit synthesizes <clinit>, aggregating in declaration order
// (JLS §12.4.2): first the `$assertionsDisabled` initializer (matching
// javac's own placement ahead of user static initializers), then every
// static field's initializer expression lowered through the same
// internal/codegen machinery ordinary method bodies use, grounded on
// original_source/bytecode_init.cpp's clinit aggregation pass.
func ClassInit(pool *constpool.Pool, diags *diag.Collector, plan *ClassPlan) classfile.Method {
	emit := method.New(diags, token.Pos(0))
	ctx := codegen.NewContext(emit, pool, diags, plan.Class)

	if plan.NeedsAssertionsDisabledField {
		emitAssertionsDisabledInit(ctx, plan)
	}
	for _, fi := range plan.StaticFieldInits {
		if fi.Init == nil {
			continue
		}
		assign := &ast.Assign{
			LHS: &ast.FieldAccess{Field: fi.Field},
			RHS: fi.Init,
		}
		ctx.EmitStmt(&ast.ExprStmt{X: assign})
	}
	emit.EmitOp(method.RETURN)

	code := AssembleCode(pool, emit, ctx.Frames, ctx.ExceptionTable(), nil, false)
	return AssembleMethod(pool, "<clinit>", "()V", symbols.AccStatic, code, nil, false)
}

// emitAssertionsDisabledInit lowers `$assertionsDisabled =
// !ClassName.class.desiredAssertionStatus();`, javac's standard
// translation of a class containing at least one `assert` (JLS §14.10).
// There is no ast.Expr node for a class literal (internal/ast only
// models expressions reachable from a resolved method body, and a class
// literal is synthesis-only machinery), so this is emitted directly
// against the emitter rather than built as an ast.Assign.
func emitAssertionsDisabledInit(ctx *codegen.Context, plan *ClassPlan) {
	emitClassLiteral(ctx.Emit, ctx.Pool, plan, plan.Class)
	desiredIdx := ctx.Pool.InternMethodref("java/lang/Class", "desiredAssertionStatus", "()Z")
	ctx.Emit.EmitInvoke(method.INVOKEVIRTUAL, desiredIdx, 0, false, 1)
	ctx.Emit.EmitOp(method.ICONST_1)
	ctx.Emit.EmitOp(method.IXOR) // boolean negation, the same idiom codegen's OpNot lowering uses

	fieldIdx := ctx.Pool.InternFieldref(internalName(plan.Class), plan.AssertionsDisabledField.Name, "Z")
	ctx.Emit.EmitFieldOp(method.PUTSTATIC, fieldIdx, 1)
}
