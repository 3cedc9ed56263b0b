package codegen

import (
	"github.com/7mind/jbcgen/internal/ast"
	"github.com/7mind/jbcgen/internal/label"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/symbols"
)

// throwableType and addSuppressedMethod are the fixed java/lang/Throwable
// symbols try-with-resources lowering references regardless of what the
// resolved AST's own type table knows about exceptions.
var throwableType = symbols.ClassType("java/lang/Throwable")

var addSuppressedMethod = &symbols.Method{
	Owner:  throwableType,
	Name:   "addSuppressed",
	Params: []*symbols.Type{throwableType},
	Return: symbols.Void,
}

// emitTry lowers try/catch/finally, desugaring try-with-resources into
// nested plain try-finally blocks first (spec.md §4.8).
func (c *Context) emitTry(n *ast.Try) {
	if len(n.Resources) > 0 {
		c.emitTryWithResources(n)
		return
	}
	c.emitTryCatchFinally(n)
}

// emitTryWithResources desugars `try (r1; r2) Body catch... finally...`
// per JLS §14.20.3: each resource gets its own primary-exception local
// and its own nested try/catch/finally layer, innermost resource
// closest to Body, closed in reverse declaration order. A Body (or
// inner close) failure is stashed in that resource's primary-exception
// local and rethrown; if closing the resource itself then fails too,
// the close failure is chained onto the primary one via
// Throwable.addSuppressed instead of replacing it (spec.md §4.8,
// testable property #8, scenario E5). NoSuppressed targets (pre-1.7,
// lacking Throwable.addSuppressed) skip that chaining: a close()
// failure while a primary exception is in flight is discarded, and the
// primary exception propagates.
func (c *Context) emitTryWithResources(n *ast.Try) {
	for _, r := range n.Resources {
		c.EmitExpr(r.Init)
		c.Emit.EmitVarInsn(method.ASTORE, r.Var.LocalIndex)
		c.Emit.NoteLocalSlot(r.Var.LocalIndex, 1)
		c.declareLocal(r.Var)
	}

	body := n.Body
	for i := len(n.Resources) - 1; i >= 0; i-- {
		body = c.wrapResourceClose(n.Resources[i], body, n.NoSuppressed)
	}

	outer := &ast.Try{Body: body, Catches: n.Catches, Finally: n.Finally}
	c.emitTryCatchFinally(outer)

	for _, r := range n.Resources {
		c.undeclareLocal(r.Var)
	}
}

// wrapResourceClose wraps inner in the one-resource desugaring JLS
// §14.20.3 specifies:
//
//	Throwable primary = null;
//	try {
//	    inner
//	} catch (Throwable t) {
//	    primary = t; // stored directly: the catch variable IS primary
//	    throw t;
//	} finally {
//	    <close r, chaining a close failure onto primary>
//	}
func (c *Context) wrapResourceClose(r ast.Resource, inner ast.Stmt, noSuppressed bool) ast.Stmt {
	primary := &symbols.Variable{Type: throwableType, LocalIndex: c.scratchLocalFor(throwableType)}

	return &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{X: &ast.Assign{LHS: &ast.Name{Binding: primary}, RHS: &ast.Literal{}}},
		&ast.Try{
			Body: inner,
			Catches: []ast.Catch{{
				Type: throwableType,
				Var:  primary,
				Body: &ast.Throw{X: &ast.Name{Binding: primary}},
			}},
			Finally: c.buildResourceClose(r, primary, noSuppressed),
		},
	}}
}

// buildResourceClose returns the finally body that closes r:
//
//	if (r != null) {
//	    if (primary != null) {
//	        try { r.close(); } catch (Throwable s) { primary.addSuppressed(s); }
//	    } else {
//	        r.close();
//	    }
//	}
//
// NoSuppressed targets use the same shape with an empty catch body: a
// close() failure while primary is set is discarded and primary
// propagates; with no primary, a close() failure propagates as usual.
func (c *Context) buildResourceClose(r ast.Resource, primary *symbols.Variable, noSuppressed bool) ast.Stmt {
	var closeStmt ast.Stmt = makeCloseCall(r)
	if !noSuppressed {
		suppressed := &symbols.Variable{Type: throwableType, LocalIndex: c.scratchLocalFor(throwableType)}
		guarded := &ast.Try{
			Body: makeCloseCall(r),
			Catches: []ast.Catch{{
				Type: throwableType,
				Var:  suppressed,
				Body: &ast.ExprStmt{X: &ast.MethodInvocation{
					Target: &ast.Name{Binding: primary},
					Method: addSuppressedMethod,
					Args:   []ast.Expr{&ast.Name{Binding: suppressed}},
					Kind:   ast.InvokeVirtual,
				}},
			}},
		}
		closeStmt = &ast.If{
			Cond: &ast.Binary{Op: ast.OpNe, L: &ast.Name{Binding: primary}, R: &ast.Literal{}, Type: throwableType},
			Then: guarded,
			Else: makeCloseCall(r),
		}
	} else {
		guarded := &ast.Try{
			Body:    makeCloseCall(r),
			Catches: []ast.Catch{{Type: throwableType, Body: &ast.Block{}}},
		}
		closeStmt = &ast.If{
			Cond: &ast.Binary{Op: ast.OpNe, L: &ast.Name{Binding: primary}, R: &ast.Literal{}, Type: throwableType},
			Then: guarded,
			Else: makeCloseCall(r),
		}
	}

	return &ast.Block{Stmts: []ast.Stmt{
		&ast.If{
			Cond: &ast.Binary{Op: ast.OpNe, L: &ast.Name{Binding: r.Var}, R: &ast.Literal{}, Type: r.Var.Type},
			Then: closeStmt,
		},
	}}
}

func makeCloseCall(r ast.Resource) *ast.ExprStmt {
	return &ast.ExprStmt{X: &ast.MethodInvocation{
		Target: &ast.Name{Binding: r.Var},
		Method: closeMethodFor(r.Var.Type),
		Kind:   ast.InvokeInterface,
	}}
}

func closeMethodFor(t *symbols.Type) *symbols.Method {
	return &symbols.Method{Owner: t, Name: "close", Params: nil, Return: nil}
}

// emitTryCatchFinally lowers a resource-free try statement. The finally
// body (if present) is inlined three times, per spec.md §4.8's >=1.7
// strategy: once on the body's normal fallthrough, once at the end of
// every catch arm, and once more inside a synthetic catch-all handler
// that reraises whatever propagated past every explicit catch. Every
// abrupt exit (return/break/continue) already unwinds through the
// TagTryWithFinally frame pushed around Body/each catch body, via
// Context.findTarget's accumulation in emitBreak/emitContinue and
// currentUnwindToMethodExit in emitReturn.
func (c *Context) emitTryCatchFinally(n *ast.Try) {
	hasFinally := n.Finally != nil
	endLbl := label.New()

	if hasFinally {
		c.push(frame{Tag: TagTryWithFinally, FinallyBody: n.Finally})
	}
	bodyStart := c.Emit.PC()
	c.EmitStmt(n.Body)
	bodyEnd := c.Emit.PC()
	if hasFinally {
		c.pop()
		c.EmitStmt(n.Finally)
	}
	if len(n.Catches) > 0 || hasFinally {
		c.Emit.EmitBranch(method.GOTO, endLbl, 64)
	}

	type handlerRange struct {
		pc   uint32
		kind string
	}
	var handlers []handlerRange

	for _, cs := range n.Catches {
		handlerPC := c.Emit.PC()
		c.Emit.AdjustStack(1) // the caught exception
		c.recordHandlerFrame(handlerPC, cs.Type)
		if hasFinally {
			c.push(frame{Tag: TagTryWithFinally, FinallyBody: n.Finally})
		}
		if cs.Var != nil {
			c.Emit.EmitVarInsn(method.ASTORE, cs.Var.LocalIndex)
			c.Emit.NoteLocalSlot(cs.Var.LocalIndex, 1)
			c.declareLocal(cs.Var)
		} else {
			c.Emit.EmitOp(method.POP)
		}
		c.EmitStmt(cs.Body)
		if cs.Var != nil {
			c.undeclareLocal(cs.Var)
		}
		if hasFinally {
			c.pop()
			c.EmitStmt(n.Finally)
		}
		c.Emit.EmitBranch(method.GOTO, endLbl, 64)

		kind := ""
		if cs.Type != nil {
			kind = internalName(cs.Type)
		}
		handlers = append(handlers, handlerRange{pc: handlerPC, kind: kind})
	}

	var finallyHandlerPC uint32
	if hasFinally {
		finallyHandlerPC = c.Emit.PC()
		c.Emit.AdjustStack(1) // the propagating exception
		c.recordHandlerFrame(finallyHandlerPC, nil)
		scratch := c.scratchLocalFor(symbols.Object)
		c.Emit.EmitVarInsn(method.ASTORE, scratch)
		c.EmitStmt(n.Finally)
		c.Emit.EmitVarInsn(method.ALOAD, scratch)
		c.Emit.EmitOp(method.ATHROW)
	}

	c.defineAndComplete(endLbl)

	for _, h := range handlers {
		c.exceptionTable = append(c.exceptionTable, ExcRange{
			StartPC: bodyStart, EndPC: bodyEnd, HandlerPC: h.pc, CatchInternalName: h.kind,
		})
	}
	if hasFinally {
		// Covers Body and every catch arm: an exception raised inside a
		// catch block must still run the finally before propagating.
		c.exceptionTable = append(c.exceptionTable, ExcRange{
			StartPC: bodyStart, EndPC: finallyHandlerPC, HandlerPC: finallyHandlerPC, CatchInternalName: "",
		})
	}
}
