package codegen

import (
	"github.com/7mind/jbcgen/internal/ast"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/value"
)

// emitNew lowers `new C(args)` (or `enclosing.new C(args)` for an inner
// class) following JVMS §3.8's "new; dup; <push args>; invokespecial
// <init>" idiom, since NEW alone only allocates and a constructor must
// run against a reference already duplicated on the stack.
func (c *Context) emitNew(n *ast.New) {
	owner := internalName(n.Ctor.Owner)
	classIdx := c.Pool.InternClass(owner)
	c.Emit.EmitOpU2(method.NEW, classIdx)
	c.Emit.EmitOp(method.DUP)

	if n.Enclosing != nil {
		c.EmitExpr(n.Enclosing)
	}
	for _, a := range n.Args {
		c.EmitExpr(a)
	}

	argWords := 0
	if n.Enclosing != nil {
		argWords++
	}
	for _, p := range n.Ctor.Params {
		argWords += value.Words(descriptorOf(p))
	}
	methodIdx := c.Pool.InternMethodref(owner, "<init>", n.Ctor.Descriptor())
	c.Emit.EmitInvoke(method.INVOKESPECIAL, methodIdx, argWords, false, 0)
}

// emitNewArray lowers `new T[d1][d2]...`, per JVMS §3.8: NEWARRAY for a
// single-dimension primitive array, ANEWARRAY for a single-dimension
// reference array, and MULTIANEWARRAY when more than one dimension size
// is given explicitly. An array initializer (`new T[]{...}`) is lowered
// via emitArrayInit instead and never reaches here with Dims set.
func (c *Context) emitNewArray(n *ast.NewArray) {
	if n.Init != nil {
		c.emitArrayInit(n.Init)
		return
	}
	for _, d := range n.Dims {
		c.EmitExpr(d)
	}
	switch {
	case len(n.Dims) == 1 && n.ElementType.IsPrimitive():
		c.Emit.EmitOpU1(method.NEWARRAY, primitiveArrayType(n.ElementType))
		c.Emit.AdjustStack(0)
	case len(n.Dims) == 1:
		idx := c.Pool.InternClass(internalName(n.ElementType))
		c.Emit.EmitOpU2(method.ANEWARRAY, idx)
		c.Emit.AdjustStack(0)
	default:
		arrType := symbols.ArrayType(n.ElementType, len(n.Dims))
		idx := c.Pool.InternClass(arrType.Descriptor())
		c.Emit.EmitMultiANewArray(idx, uint8(len(n.Dims)))
	}
}

// primitiveArrayType maps a primitive element type to the NEWARRAY atype
// operand, per JVMS §6.5's newarray table.
func primitiveArrayType(t *symbols.Type) uint8 {
	switch t.PrimitiveDescriptor {
	case 'Z':
		return 4
	case 'C':
		return 5
	case 'F':
		return 6
	case 'D':
		return 7
	case 'B':
		return 8
	case 'S':
		return 9
	case 'I':
		return 10
	case 'J':
		return 11
	}
	return 10
}

// emitArrayInit lowers a `{a, b, c}` array literal: allocate the array
// at its known length, then DUP/push-index/push-element/*ASTORE for
// every element (javac's own strategy, avoiding a separate local to
// hold the array reference).
func (c *Context) emitArrayInit(n *ast.ArrayInit) {
	c.emitIntConst(value.I4(len(n.Elems)))
	elem := n.Type.ArraySubtype
	if elem == nil {
		elem = n.Type
	}
	if elem.IsPrimitive() {
		c.Emit.EmitOpU1(method.NEWARRAY, primitiveArrayType(elem))
	} else {
		idx := c.Pool.InternClass(internalName(elem))
		c.Emit.EmitOpU2(method.ANEWARRAY, idx)
	}

	for i, e := range n.Elems {
		c.Emit.EmitOp(method.DUP)
		c.emitIntConst(value.I4(i))
		c.EmitExpr(e)
		c.Emit.EmitOp(arrayStoreOp(elem))
	}
}

// emitMethodInvocation lowers target.Method(args), selecting the dispatch
// opcode the semantic analyzer already chose (n.Kind) and computing the
// descriptor-driven stack correction spec.md §4.4 requires for every
// invoke family member.
func (c *Context) emitMethodInvocation(n *ast.MethodInvocation) {
	m := n.Method
	isStatic := n.Kind == ast.InvokeStatic

	if !isStatic {
		if n.Target != nil {
			c.EmitExpr(n.Target)
		} else {
			c.Emit.EmitOp(method.ALOAD_0)
		}
	}
	for _, a := range n.Args {
		c.EmitExpr(a)
	}

	owner := internalName(m.Owner)
	descriptor := m.Descriptor()
	argWords := 0
	for _, p := range m.Params {
		argWords += value.Words(descriptorOf(p))
	}
	pushWords := 0
	if m.Return != nil {
		pushWords = value.Words(descriptorOf(m.Return))
	}

	switch n.Kind {
	case ast.InvokeStatic:
		idx := c.Pool.InternMethodref(owner, m.Name, descriptor)
		c.Emit.EmitInvoke(method.INVOKESTATIC, idx, argWords, true, pushWords)
	case ast.InvokeSpecial:
		idx := c.Pool.InternMethodref(owner, m.Name, descriptor)
		c.Emit.EmitInvoke(method.INVOKESPECIAL, idx, argWords, false, pushWords)
	case ast.InvokeInterface:
		idx := c.Pool.InternInterfaceMethodref(owner, m.Name, descriptor)
		c.Emit.EmitInvoke(method.INVOKEINTERFACE, idx, argWords, false, pushWords)
	default: // InvokeVirtual
		idx := c.Pool.InternMethodref(owner, m.Name, descriptor)
		c.Emit.EmitInvoke(method.INVOKEVIRTUAL, idx, argWords, false, pushWords)
	}
}

// emitStringConcat lowers a `+`-chain of String-typed parts into a
// StringBuilder (or, pre-1.5 target, StringBuffer) chain, the same
// desugaring javac itself performs (spec.md §4.9): `new
// StringBuilder().append(a).append(b)...append(z).toString()`.
// UseStringBuffer selects the legacy synchronized type for targets that
// predate StringBuilder's introduction in 1.5.
func (c *Context) emitStringConcat(n *ast.StringConcat) {
	builder := "java/lang/StringBuilder"
	if c.UseStringBuffer {
		builder = "java/lang/StringBuffer"
	}
	classIdx := c.Pool.InternClass(builder)
	c.Emit.EmitOpU2(method.NEW, classIdx)
	c.Emit.EmitOp(method.DUP)
	ctorIdx := c.Pool.InternMethodref(builder, "<init>", "()V")
	c.Emit.EmitInvoke(method.INVOKESPECIAL, ctorIdx, 0, false, 0)

	for _, part := range n.Parts {
		c.EmitExpr(part)
		t := exprType(part)
		appendDesc := appendDescriptorFor(t, builder)
		idx := c.Pool.InternMethodref(builder, "append", appendDesc)
		argWords := 1
		if t != nil && (t == symbols.Long || t == symbols.Double) {
			argWords = 2
		}
		c.Emit.EmitInvoke(method.INVOKEVIRTUAL, idx, argWords, false, 1)
	}

	toStringIdx := c.Pool.InternMethodref(builder, "toString", "()Ljava/lang/String;")
	c.Emit.EmitInvoke(method.INVOKEVIRTUAL, toStringIdx, 0, false, 1)
}

// appendDescriptorFor picks the StringBuilder/StringBuffer append
// overload for t, per java.lang.StringBuilder's append table; any
// reference type other than String widens to Object. builder is the
// internal name of the concatenation helper class in use
// ("java/lang/StringBuilder" or, pre-1.5, "java/lang/StringBuffer"),
// since each append overload returns its
// own declaring type.
func appendDescriptorFor(t *symbols.Type, builder string) string {
	ret := "L" + builder + ";"
	if t == nil {
		return "(Ljava/lang/Object;)" + ret
	}
	if t.IsPrimitive() {
		switch t.PrimitiveDescriptor {
		case 'Z':
			return "(Z)" + ret
		case 'C':
			return "(C)" + ret
		case 'I', 'B', 'S':
			return "(I)" + ret
		case 'J':
			return "(J)" + ret
		case 'F':
			return "(F)" + ret
		case 'D':
			return "(D)" + ret
		}
	}
	if t.IsClass() && t.FullyQualifiedName == "java/lang/String" {
		return "(Ljava/lang/String;)" + ret
	}
	return "(Ljava/lang/Object;)" + ret
}
