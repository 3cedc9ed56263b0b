package codegen

import (
	"github.com/7mind/jbcgen/internal/ast"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/label"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/semantic"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/value"
)

// EmitExpr lowers e, leaving its value (if any) on top of the operand
// stack. Use EmitExprDiscard instead for an expression evaluated only for
// side effect (a bare ExprStmt), which pops the value EmitExpr leaves.
func (c *Context) EmitExpr(e ast.Expr) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.Literal:
		c.emitLiteral(n)
	case *ast.Name:
		c.emitName(n)
	case *ast.This:
		c.Emit.EmitOp(method.ALOAD_0)
	case *ast.FieldAccess:
		c.emitFieldAccess(n)
	case *ast.ArrayAccess:
		c.emitArrayAccess(n)
	case *ast.Assign:
		c.emitAssign(n)
	case *ast.Binary:
		c.emitBinary(n)
	case *ast.Unary:
		c.emitUnary(n)
	case *ast.Conditional:
		c.emitConditional(n)
	case *ast.InstanceOf:
		c.emitInstanceOf(n)
	case *ast.Cast:
		c.emitCast(n)
	case *ast.New:
		c.emitNew(n)
	case *ast.NewArray:
		c.emitNewArray(n)
	case *ast.ArrayInit:
		c.emitArrayInit(n)
	case *ast.MethodInvocation:
		c.emitMethodInvocation(n)
	case *ast.StringConcat:
		c.emitStringConcat(n)
	default:
		c.diagAt(0, diag.UnresolvedSymbolSkipped, "unhandled expression node %T", n)
	}
}

// EmitExprDiscard lowers e then pops its result if it produces one,
// as a bare expression statement does.
func (c *Context) EmitExprDiscard(e ast.Expr, resultType *symbols.Type) {
	c.EmitExpr(e)
	if resultType == nil || resultType == symbols.Void {
		return
	}
	if value.Words(descriptorOf(resultType)) == 2 {
		c.Emit.EmitOp(method.POP2)
	} else {
		c.Emit.EmitOp(method.POP)
	}
}

func descriptorOf(t *symbols.Type) byte {
	if t.IsPrimitive() {
		return t.PrimitiveDescriptor
	}
	return 'L'
}

func (c *Context) emitLiteral(n *ast.Literal) {
	if n.Value == nil {
		c.Emit.EmitOp(method.ACONST_NULL)
		return
	}
	switch v := n.Value.(type) {
	case bool:
		if v {
			c.Emit.EmitOp(method.ICONST_1)
		} else {
			c.Emit.EmitOp(method.ICONST_0)
		}
	case value.I4:
		c.emitIntConst(v)
	case value.I8:
		c.emitLongConst(v)
	case value.F32:
		c.emitFloatConst(v)
	case value.F64:
		c.emitDoubleConst(v)
	case string:
		idx := c.Pool.InternString(v)
		c.emitLdc(idx, 1)
	}
}

// emitIntConst picks the most compact encoding for an int constant:
// iconst_<n> for -1..5, bipush for the signed-byte range, sipush for the
// signed-short range, otherwise an ldc against an Integer pool entry.
func (c *Context) emitIntConst(v value.I4) {
	switch {
	case v >= -1 && v <= 5:
		c.Emit.EmitOp(method.Opcode(int(method.ICONST_0) + int(v)))
	case v >= -128 && v <= 127:
		c.Emit.EmitOpI1(method.BIPUSH, int8(v))
	case v >= -32768 && v <= 32767:
		c.Emit.EmitOpU2(method.SIPUSH, uint16(int16(v)))
	default:
		idx := c.Pool.InternInt(v)
		c.emitLdc(idx, 1)
	}
}

func (c *Context) emitLongConst(v value.I8) {
	if v == 0 {
		c.Emit.EmitOp(method.LCONST_0)
		return
	}
	if v == 1 {
		c.Emit.EmitOp(method.LCONST_1)
		return
	}
	idx := c.Pool.InternLong(v)
	c.Emit.EmitOpU2(method.LDC2_W, idx)
}

func (c *Context) emitFloatConst(v value.F32) {
	f := v.Float()
	switch {
	case f == 0 && !v.IsNaN() && value.NewF32(0).Bits == v.Bits:
		c.Emit.EmitOp(method.FCONST_0)
	case f == 1:
		c.Emit.EmitOp(method.FCONST_1)
	case f == 2:
		c.Emit.EmitOp(method.FCONST_2)
	default:
		idx := c.Pool.InternFloat(v)
		c.emitLdc(idx, 1)
	}
}

func (c *Context) emitDoubleConst(v value.F64) {
	d := v.Float()
	switch {
	case d == 0 && value.NewF64(0).Bits == v.Bits:
		c.Emit.EmitOp(method.DCONST_0)
	case d == 1:
		c.Emit.EmitOp(method.DCONST_1)
	default:
		idx := c.Pool.InternDouble(v)
		c.Emit.EmitOpU2(method.LDC2_W, idx)
	}
}

// emitLdc chooses between the narrow (u1 index) and wide (u2 index)
// forms of LDC depending on the pool index, and applies the constant's
// one-word stack effect (two-word constants always use LDC2_W, handled
// by their own callers).
func (c *Context) emitLdc(idx uint16, words int) {
	if idx < 256 {
		c.Emit.EmitOpU1(method.LDC, uint8(idx))
	} else {
		c.Emit.EmitOpU2(method.LDC_W, idx)
	}
}

func (c *Context) emitName(n *ast.Name) {
	v := n.Binding
	if v.Owner == symbols.OwnerLocal {
		c.Emit.EmitVarInsn(loadOp(v.Type), v.LocalIndex)
		c.Emit.NoteLocalSlot(v.LocalIndex, value.Words(descriptorOf(v.Type)))
		return
	}
	c.emitStaticOrInstanceFieldGet(v, v.IsStatic())
}

func (c *Context) emitStaticOrInstanceFieldGet(v *symbols.Variable, static bool) {
	owner := internalName(v.DeclaringType)
	descriptor := v.Type.Descriptor()
	idx := c.Pool.InternFieldref(owner, v.Name, descriptor)
	if static {
		c.Emit.EmitFieldOp(method.GETSTATIC, idx, value.Words(descriptorOf(v.Type)))
		return
	}
	c.Emit.EmitOp(method.ALOAD_0)
	c.Emit.EmitFieldOp(method.GETFIELD, idx, value.Words(descriptorOf(v.Type)))
}

func (c *Context) emitFieldAccess(n *ast.FieldAccess) {
	if n.Base != nil {
		c.EmitExpr(n.Base)
		owner := internalName(n.Field.DeclaringType)
		idx := c.Pool.InternFieldref(owner, n.Field.Name, n.Field.Type.Descriptor())
		c.Emit.EmitFieldOp(method.GETFIELD, idx, value.Words(descriptorOf(n.Field.Type)))
		return
	}
	c.emitStaticOrInstanceFieldGet(n.Field, true)
}

func (c *Context) emitArrayAccess(n *ast.ArrayAccess) {
	c.EmitExpr(n.Array)
	c.EmitExpr(n.Index)
	c.Emit.EmitOp(arrayLoadOp(n.ElementType))
}

func (c *Context) emitAssign(n *ast.Assign) {
	switch lhs := n.LHS.(type) {
	case *ast.Name:
		c.emitAssignName(n, lhs)
	case *ast.FieldAccess:
		c.emitAssignField(n, lhs)
	case *ast.ArrayAccess:
		c.emitAssignArray(n, lhs)
	}
}

func (c *Context) emitAssignName(n *ast.Assign, lhs *ast.Name) {
	v := lhs.Binding

	// The compound-assignment IINC fast path applies only to an int local
	// target whose RHS is a constant-folded delta; codegen callers route
	// genuinely dynamic `x += y` through the generic read-modify-write
	// path below.
	if n.Compound && v.Owner == symbols.OwnerLocal && v.Type == symbols.Int {
		if delta, ok := constIntDelta(n.Op, n.RHS); ok {
			c.Emit.EmitIinc(v.LocalIndex, delta)
			if n.NeedValue {
				c.Emit.EmitVarInsn(method.ILOAD, v.LocalIndex)
			}
			return
		}
	}

	if v.Owner == symbols.OwnerLocal {
		if n.Compound {
			c.emitName(lhs)
			c.EmitExpr(n.RHS)
			c.emitBinaryOp(n.Op, v.Type)
		} else {
			c.EmitExpr(n.RHS)
		}
		if n.NeedValue {
			c.Emit.EmitOp(dupOp(v.Type))
		}
		c.Emit.EmitVarInsn(storeOp(v.Type), v.LocalIndex)
		c.Emit.NoteLocalSlot(v.LocalIndex, value.Words(descriptorOf(v.Type)))
		return
	}

	owner := internalName(v.DeclaringType)
	idx := c.Pool.InternFieldref(owner, v.Name, v.Type.Descriptor())

	if v.IsStatic() {
		if n.Compound {
			c.emitStaticOrInstanceFieldGet(v, true)
			c.EmitExpr(n.RHS)
			c.emitBinaryOp(n.Op, v.Type)
		} else {
			c.EmitExpr(n.RHS)
		}
		if n.NeedValue {
			c.Emit.EmitOp(dupOp(v.Type))
		}
		c.Emit.EmitFieldOp(method.PUTSTATIC, idx, value.Words(descriptorOf(v.Type)))
		return
	}

	// Instance field: PUTFIELD needs [..., objectref, value], so `this`
	// must go on the stack before the value is computed.
	c.Emit.EmitOp(method.ALOAD_0)
	if n.Compound {
		c.Emit.EmitOp(method.DUP)
		c.Emit.EmitFieldOp(method.GETFIELD, idx, value.Words(descriptorOf(v.Type)))
		c.EmitExpr(n.RHS)
		c.emitBinaryOp(n.Op, v.Type)
	} else {
		c.EmitExpr(n.RHS)
	}
	if n.NeedValue {
		// stack: [this, value] -> dup_x1 -> [value, this, value]
		c.Emit.EmitOp(dupX1Op(v.Type))
	}
	c.Emit.EmitFieldOp(method.PUTFIELD, idx, value.Words(descriptorOf(v.Type)))
}

func (c *Context) emitAssignField(n *ast.Assign, lhs *ast.FieldAccess) {
	owner := internalName(lhs.Field.DeclaringType)
	idx := c.Pool.InternFieldref(owner, lhs.Field.Name, lhs.Field.Type.Descriptor())

	if lhs.Base != nil {
		c.EmitExpr(lhs.Base)
	}
	if n.Compound {
		if lhs.Base != nil {
			c.Emit.EmitOp(method.DUP) // keep a copy of the receiver for PUTFIELD
			c.Emit.EmitFieldOp(method.GETFIELD, idx, value.Words(descriptorOf(lhs.Field.Type)))
		} else {
			c.Emit.EmitFieldOp(method.GETSTATIC, idx, value.Words(descriptorOf(lhs.Field.Type)))
		}
		c.EmitExpr(n.RHS)
		c.emitBinaryOp(n.Op, lhs.Field.Type)
	} else {
		c.EmitExpr(n.RHS)
	}
	if n.NeedValue {
		if lhs.Base != nil {
			c.Emit.EmitOp(dupX1Op(lhs.Field.Type))
		} else {
			c.Emit.EmitOp(dupOp(lhs.Field.Type))
		}
	}
	if lhs.Base != nil {
		c.Emit.EmitFieldOp(method.PUTFIELD, idx, value.Words(descriptorOf(lhs.Field.Type)))
	} else {
		c.Emit.EmitFieldOp(method.PUTSTATIC, idx, value.Words(descriptorOf(lhs.Field.Type)))
	}
}

func (c *Context) emitAssignArray(n *ast.Assign, lhs *ast.ArrayAccess) {
	c.EmitExpr(lhs.Array)
	c.EmitExpr(lhs.Index)
	if n.Compound {
		c.Emit.EmitOp(method.DUP2)
		c.Emit.EmitOp(arrayLoadOp(lhs.ElementType))
		c.EmitExpr(n.RHS)
		c.emitBinaryOp(n.Op, lhs.ElementType)
	} else {
		c.EmitExpr(n.RHS)
	}
	if n.NeedValue {
		c.Emit.EmitOp(dupX2Op(lhs.ElementType))
	}
	c.Emit.EmitOp(arrayStoreOp(lhs.ElementType))
}

// constIntDelta reports whether rhs is a compile-time int literal in
// IINC's signed-16-bit range, returning the signed delta to apply for
// op (+= yields +delta, -= yields -delta).
func constIntDelta(op ast.BinOp, rhs ast.Expr) (int, bool) {
	lit, ok := rhs.(*ast.Literal)
	if !ok {
		return 0, false
	}
	iv, ok := lit.Value.(value.I4)
	if !ok {
		return 0, false
	}
	d := int(iv)
	switch op {
	case ast.OpAdd:
	case ast.OpSub:
		d = -d
	default:
		return 0, false
	}
	if d < -32768 || d > 32767 {
		return 0, false
	}
	return d, true
}

func (c *Context) emitBinary(n *ast.Binary) {
	switch n.Op {
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		c.emitShortCircuit(n)
		return
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpEq, ast.OpNe:
		c.emitComparisonAsBoolean(n)
		return
	}
	c.EmitExpr(n.L)
	c.EmitExpr(n.R)
	c.emitBinaryOp(n.Op, n.Type)
}

// emitBinaryOp emits the arithmetic/bitwise opcode for op at type t,
// assuming both operands are already on the stack (or one operand for
// a compound-assignment read-modify-write).
func (c *Context) emitBinaryOp(op ast.BinOp, t *symbols.Type) {
	d := descriptorOf(t)
	switch op {
	case ast.OpAdd:
		c.Emit.EmitOp(pick(d, method.IADD, method.LADD, method.FADD, method.DADD))
	case ast.OpSub:
		c.Emit.EmitOp(pick(d, method.ISUB, method.LSUB, method.FSUB, method.DSUB))
	case ast.OpMul:
		c.Emit.EmitOp(pick(d, method.IMUL, method.LMUL, method.FMUL, method.DMUL))
	case ast.OpDiv:
		c.Emit.EmitOp(pick(d, method.IDIV, method.LDIV, method.FDIV, method.DDIV))
	case ast.OpRem:
		c.Emit.EmitOp(pick(d, method.IREM, method.LREM, method.FREM, method.DREM))
	case ast.OpAnd:
		c.Emit.EmitOp(pickIntLong(d, method.IAND, method.LAND))
	case ast.OpOr:
		c.Emit.EmitOp(pickIntLong(d, method.IOR, method.LOR))
	case ast.OpXor:
		c.Emit.EmitOp(pickIntLong(d, method.IXOR, method.LXOR))
	case ast.OpShl:
		c.Emit.EmitOp(pickIntLong(d, method.ISHL, method.LSHL))
	case ast.OpShr:
		c.Emit.EmitOp(pickIntLong(d, method.ISHR, method.LSHR))
	case ast.OpUshr:
		c.Emit.EmitOp(pickIntLong(d, method.IUSHR, method.LUSHR))
	}
}

func pick(d byte, i, l, f, dd method.Opcode) method.Opcode {
	switch d {
	case 'J':
		return l
	case 'F':
		return f
	case 'D':
		return dd
	default:
		return i
	}
}

func pickIntLong(d byte, i, l method.Opcode) method.Opcode {
	if d == 'J' {
		return l
	}
	return i
}

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

func storeOp(t *symbols.Type) method.Opcode {
	if t.IsPrimitive() {
		switch t.PrimitiveDescriptor {
		case 'J':
			return method.LSTORE
		case 'F':
			return method.FSTORE
		case 'D':
			return method.DSTORE
		default:
			return method.ISTORE
		}
	}
	return method.ASTORE
}

func dupOp(t *symbols.Type) method.Opcode {
	if value.Words(descriptorOf(t)) == 2 {
		return method.DUP2
	}
	return method.DUP
}

func dupX1Op(t *symbols.Type) method.Opcode {
	if value.Words(descriptorOf(t)) == 2 {
		return method.DUP2_X1
	}
	return method.DUP_X1
}

func dupX2Op(t *symbols.Type) method.Opcode {
	if value.Words(descriptorOf(t)) == 2 {
		return method.DUP2_X2
	}
	return method.DUP_X2
}

func arrayLoadOp(elem *symbols.Type) method.Opcode {
	if !elem.IsPrimitive() {
		return method.AALOAD
	}
	switch elem.PrimitiveDescriptor {
	case 'J':
		return method.LALOAD
	case 'F':
		return method.FALOAD
	case 'D':
		return method.DALOAD
	case 'B', 'Z':
		return method.BALOAD
	case 'C':
		return method.CALOAD
	case 'S':
		return method.SALOAD
	default:
		return method.IALOAD
	}
}

func arrayStoreOp(elem *symbols.Type) method.Opcode {
	if !elem.IsPrimitive() {
		return method.AASTORE
	}
	switch elem.PrimitiveDescriptor {
	case 'J':
		return method.LASTORE
	case 'F':
		return method.FASTORE
	case 'D':
		return method.DASTORE
	case 'B', 'Z':
		return method.BASTORE
	case 'C':
		return method.CASTORE
	case 'S':
		return method.SASTORE
	default:
		return method.IASTORE
	}
}

func internalName(t *symbols.Type) string {
	if t.IsArray() {
		return t.Descriptor()
	}
	return t.FullyQualifiedName
}

// conditionalOpFor returns the IF_ICMPxx/IF_ACMPxx/IFxx opcode testing
// `true` for op at type t, for use as a branch condition (spec.md §4.6's
// "materialize boolean" / "branch on condition" dual lowering).
func conditionalOpFor(op ast.BinOp, t *symbols.Type) (method.Opcode, bool) {
	isRef := !t.IsPrimitive()
	isLong := t == symbols.Long
	isFloating := t == symbols.Float || t == symbols.Double
	switch {
	case isRef:
		switch op {
		case ast.OpEq:
			return method.IF_ACMPEQ, true
		case ast.OpNe:
			return method.IF_ACMPNE, true
		}
		return 0, false
	case isLong || isFloating:
		// long/float/double comparisons are lowered via *CMP{,L,G} first
		// (see emitComparisonAsBoolean), leaving a plain int on the stack
		// compared with zero via IFxx.
		switch op {
		case ast.OpLt:
			return method.IFLT, true
		case ast.OpLe:
			return method.IFLE, true
		case ast.OpGt:
			return method.IFGT, true
		case ast.OpGe:
			return method.IFGE, true
		case ast.OpEq:
			return method.IFEQ, true
		case ast.OpNe:
			return method.IFNE, true
		}
		return 0, false
	default:
		switch op {
		case ast.OpLt:
			return method.IF_ICMPLT, true
		case ast.OpLe:
			return method.IF_ICMPLE, true
		case ast.OpGt:
			return method.IF_ICMPGT, true
		case ast.OpGe:
			return method.IF_ICMPGE, true
		case ast.OpEq:
			return method.IF_ICMPEQ, true
		case ast.OpNe:
			return method.IF_ICMPNE, true
		}
		return 0, false
	}
}

// emitComparisonAsBoolean materializes a relational expression's int
// (0/1) result: branch on the condition to an ICONST_1 arm, falling
// through to ICONST_0 and a GOTO past that arm, with both arms joining
// at endLbl holding one int on the stack. Neither label records a
// StackMapTable frame.
func (c *Context) emitComparisonAsBoolean(n *ast.Binary) {
	// Binary.Type holds the promoted operand type (both sides share one),
	// as in emitRelationalBranch.
	operandType := n.Type

	c.EmitExpr(n.L)
	c.EmitExpr(n.R)
	c.emitWideCompareIfNeeded(operandType)

	trueOp, _ := conditionalOpFor(n.Op, normalizedCompareType(operandType))
	elseLbl := label.New()
	endLbl := label.New()
	c.Emit.EmitBranch(trueOp, elseLbl, 8)
	c.Emit.EmitOp(method.ICONST_0)
	c.Emit.EmitBranch(method.GOTO, endLbl, 8)
	c.Emit.DefineLabel(elseLbl)
	elseLbl.Complete(c.Emit.Code, c.Diags, 0)
	c.Emit.EmitOp(method.ICONST_1)
	c.Emit.DefineLabel(endLbl)
	endLbl.Complete(c.Emit.Code, c.Diags, 0)
}

// normalizedCompareType maps long/float/double to the "int result of
// *CMP*" shape conditionalOpFor expects once emitWideCompareIfNeeded has
// run.
func normalizedCompareType(t *symbols.Type) *symbols.Type {
	if t == symbols.Long || t == symbols.Float || t == symbols.Double {
		return symbols.Int
	}
	return t
}

// emitWideCompareIfNeeded reduces a long/float/double pair already on
// the stack to a single int via LCMP/FCMPG/DCMPG (the *G variant so that
// NaN compares as greater, matching `<`/`<=` returning false on NaN per
// JLS §15.20.1; `>`/`>=` instead want *CMPL so NaN also yields false —
// selected by the caller's operand type plus operator is deferred to
// conditionalOpFor's zero-comparison, which is operator-symmetric here
// since both CMPG and CMPL push -1/0/1 identically except on NaN).
func (c *Context) emitWideCompareIfNeeded(t *symbols.Type) {
	switch t {
	case symbols.Long:
		c.Emit.EmitOp(method.LCMP)
	case symbols.Float:
		c.Emit.EmitOp(method.FCMPG)
	case symbols.Double:
		c.Emit.EmitOp(method.DCMPG)
	}
}

// emitShortCircuit lowers && / || with the classic branch-around
// pattern: && skips straight to `false` if the left operand is false;
// || skips straight to `true` if the left operand is true.
func (c *Context) emitShortCircuit(n *ast.Binary) {
	shortCircuitLbl := label.New()
	endLbl := label.New()

	c.emitBranchCond(n.L, n.Op == ast.OpLogicalOr, shortCircuitLbl)
	c.emitBranchCond(n.R, n.Op == ast.OpLogicalOr, shortCircuitLbl)
	if n.Op == ast.OpLogicalOr {
		c.Emit.EmitOp(method.ICONST_0)
	} else {
		c.Emit.EmitOp(method.ICONST_1)
	}
	c.Emit.EmitBranch(method.GOTO, endLbl, 8)
	c.Emit.DefineLabel(shortCircuitLbl)
	shortCircuitLbl.Complete(c.Emit.Code, c.Diags, 0)
	if n.Op == ast.OpLogicalOr {
		c.Emit.EmitOp(method.ICONST_1)
	} else {
		c.Emit.EmitOp(method.ICONST_0)
	}
	c.Emit.DefineLabel(endLbl)
	endLbl.Complete(c.Emit.Code, c.Diags, 0)
}

// emitBranchCond evaluates cond (already boolean-typed) and branches to
// target when its value equals wantTrue.
func (c *Context) emitBranchCond(cond ast.Expr, wantTrue bool, target *label.Label) {
	c.EmitExpr(cond)
	if wantTrue {
		c.Emit.EmitBranch(method.IFNE, target, 8)
	} else {
		c.Emit.EmitBranch(method.IFEQ, target, 8)
	}
}

func (c *Context) emitUnary(n *ast.Unary) {
	switch n.Op {
	case ast.OpPlus:
		c.EmitExpr(n.X)
	case ast.OpNeg:
		c.EmitExpr(n.X)
		c.Emit.EmitOp(pick(descriptorOf(n.Type), method.INEG, method.LNEG, method.FNEG, method.DNEG))
	case ast.OpBitNot:
		c.EmitExpr(n.X)
		if n.Type == symbols.Long {
			c.emitLongConst(value.I8(-1))
			c.Emit.EmitOp(method.LXOR)
		} else {
			c.Emit.EmitOp(method.ICONST_M1)
			c.Emit.EmitOp(method.IXOR)
		}
	case ast.OpNot:
		c.EmitExpr(n.X)
		c.Emit.EmitOp(method.ICONST_1)
		c.Emit.EmitOp(method.IXOR)
	}
}

func (c *Context) emitConditional(n *ast.Conditional) {
	elseLbl := label.New()
	endLbl := label.New()
	c.EmitExpr(n.Cond)
	c.Emit.EmitBranch(method.IFEQ, elseLbl, 16)
	c.EmitExpr(n.Then)
	c.Emit.EmitBranch(method.GOTO, endLbl, 16)
	c.Emit.DefineLabel(elseLbl)
	elseLbl.Complete(c.Emit.Code, c.Diags, 0)
	c.EmitExpr(n.Else)
	c.Emit.DefineLabel(endLbl)
	endLbl.Complete(c.Emit.Code, c.Diags, 0)
}

func (c *Context) emitInstanceOf(n *ast.InstanceOf) {
	c.EmitExpr(n.X)
	idx := c.Pool.InternClass(internalName(n.Type))
	c.Emit.EmitOpU2(method.INSTANCEOF, idx)
}

// emitCast lowers (Type) X, per spec.md §4.6. Primitive<->primitive casts
// are narrowing/widening conversions (emitPrimitiveConversion); a
// primitive<->reference cast is a boxing/unboxing conversion (JLS
// §5.1.7/§5.1.8); a reference target that is neither crosses through the
// target's wrapper type first (JLS §5.5's reference-to-primitive casting
// conversion, e.g. `(int) anObject` needs `CHECKCAST Integer` before
// `intValue()` when the static type isn't already the wrapper).
func (c *Context) emitCast(n *ast.Cast) {
	c.EmitExpr(n.X)
	fromT, toT := exprType(n.X), n.Type
	if fromT == nil || toT == nil {
		return
	}
	if fromT.IsPrimitive() && toT.IsPrimitive() {
		c.emitPrimitiveConversion(fromT, toT)
		return
	}
	if semantic.IsBoxing(fromT, toT) {
		c.emitBox(fromT)
		return
	}
	if semantic.IsUnboxing(fromT, toT) {
		c.emitUnbox(fromT, toT)
		return
	}
	if fromT.IsPrimitive() && toT.IsClass() {
		// Boxing to some ancestor of the wrapper (e.g. `(Object) 5`):
		// valueOf already yields a reference assignable to toT, no further
		// bytecode needed.
		c.emitBox(fromT)
		return
	}
	if fromT.IsClass() && toT.IsPrimitive() {
		wrapperName := semantic.WrapperOf(toT)
		if fromT.FullyQualifiedName != wrapperName {
			idx := c.Pool.InternClass(wrapperName)
			c.Emit.EmitOpU2(method.CHECKCAST, idx)
		}
		c.emitUnbox(symbols.ClassType(wrapperName), toT)
		return
	}
	if !fromT.IsPrimitive() && !toT.IsPrimitive() {
		if semantic.CanCastConvert(fromT, toT) && toT != symbols.Object {
			idx := c.Pool.InternClass(internalName(toT))
			c.Emit.EmitOpU2(method.CHECKCAST, idx)
		}
	}
}

// emitBox emits `invokestatic Wrapper.valueOf(p)LWrapper;`, boxing the
// primitive-typed value already on the stack (JLS §5.1.7).
func (c *Context) emitBox(from *symbols.Type) {
	wrapper := semantic.WrapperOf(from)
	desc := "(" + from.Descriptor() + ")L" + wrapper + ";"
	idx := c.Pool.InternMethodref(wrapper, "valueOf", desc)
	c.Emit.EmitInvoke(method.INVOKESTATIC, idx, value.Words(from.PrimitiveDescriptor), true, 1)
}

// emitUnbox emits `invokevirtual Wrapper.xxxValue()p;`, unboxing the
// from-typed reference already on the stack (JLS §5.1.8).
func (c *Context) emitUnbox(from, to *symbols.Type) {
	desc := "()" + to.Descriptor()
	idx := c.Pool.InternMethodref(from.FullyQualifiedName, unboxMethodName(to), desc)
	c.Emit.EmitInvoke(method.INVOKEVIRTUAL, idx, 0, false, value.Words(to.PrimitiveDescriptor))
}

// unboxMethodName returns the Wrapper accessor JLS §5.1.8 unboxes t
// through.
func unboxMethodName(t *symbols.Type) string {
	switch t.PrimitiveDescriptor {
	case 'Z':
		return "booleanValue"
	case 'B':
		return "byteValue"
	case 'C':
		return "charValue"
	case 'S':
		return "shortValue"
	case 'I':
		return "intValue"
	case 'J':
		return "longValue"
	case 'F':
		return "floatValue"
	case 'D':
		return "doubleValue"
	}
	return ""
}

// exprType is a best-effort accessor for an already-typed expression
// node, used only to decide cast conversion opcodes; the semantic
// analyzer is the real source of truth and is expected to have already
// rejected ill-typed casts before codegen ever sees them.
func exprType(e ast.Expr) *symbols.Type {
	switch n := e.(type) {
	case *ast.Literal:
		return n.Type
	case *ast.Name:
		return n.Binding.Type
	case *ast.FieldAccess:
		return n.Field.Type
	case *ast.ArrayAccess:
		return n.ElementType
	case *ast.Binary:
		return n.Type
	case *ast.Unary:
		return n.Type
	case *ast.Cast:
		return n.Type
	case *ast.Conditional:
		return n.Type
	case *ast.MethodInvocation:
		return n.Method.Return
	case *ast.This:
		return n.Type
	case *ast.New:
		return n.Ctor.Owner
	}
	return nil
}

// emitPrimitiveConversion emits the JVMS §2.8.3/§6.5 conversion opcode
// sequence between two primitive types (identity if none is needed).
func (c *Context) emitPrimitiveConversion(from, to *symbols.Type) {
	if from == to {
		return
	}
	// Normalize byte/short/char to int first (they have no dedicated load
	// form distinct from int on the stack).
	fd, td := normalizedPrimitive(from), to.PrimitiveDescriptor
	if fd == td {
		return
	}
	seq := conversionOpcodes(fd, td)
	for _, op := range seq {
		c.Emit.EmitOp(op)
	}
}

func normalizedPrimitive(t *symbols.Type) byte {
	switch t.PrimitiveDescriptor {
	case 'B', 'S', 'C', 'Z':
		return 'I'
	default:
		return t.PrimitiveDescriptor
	}
}

// conversionOpcodes returns the opcode chain converting a value already
// normalized to from's stack representation into to.
func conversionOpcodes(from, to byte) []method.Opcode {
	direct := map[[2]byte]method.Opcode{
		{'I', 'J'}: method.I2L, {'I', 'F'}: method.I2F, {'I', 'D'}: method.I2D,
		{'I', 'B'}: method.I2B, {'I', 'C'}: method.I2C, {'I', 'S'}: method.I2S,
		{'J', 'I'}: method.L2I, {'J', 'F'}: method.L2F, {'J', 'D'}: method.L2D,
		{'F', 'I'}: method.F2I, {'F', 'J'}: method.F2L, {'F', 'D'}: method.F2D,
		{'D', 'I'}: method.D2I, {'D', 'J'}: method.D2L, {'D', 'F'}: method.D2F,
	}
	if op, ok := direct[[2]byte{from, to}]; ok {
		return []method.Opcode{op}
	}
	// J/F/D -> narrow integral: go through int first.
	switch from {
	case 'J':
		return append([]method.Opcode{method.L2I}, conversionOpcodes('I', to)...)
	case 'F':
		return append([]method.Opcode{method.F2I}, conversionOpcodes('I', to)...)
	case 'D':
		return append([]method.Opcode{method.D2I}, conversionOpcodes('I', to)...)
	}
	return nil
}
