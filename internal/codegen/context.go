// Package codegen implements the expression and statement lowering of
// spec.md §4.6-§4.9 (C7, C8): walking a resolved AST and driving an
// internal/method.Emitter, internal/constpool.Pool, and
// internal/stackmap.Builder to produce one method's Code attribute.
// Control structure here is grounded on the teacher's
// lang/compiler/compiler.go, whose fcomp/pcomp walk an expression or
// statement tree emitting into a block list; this package walks a real
// AST instead of the teacher's own parse tree, but keeps the same
// "one function emits its node, recursing into children, consulting a
// running Context for shared state" shape.
package codegen

import (
	"sort"

	"github.com/7mind/jbcgen/internal/ast"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/label"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/stackmap"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/token"
)

// Tag discriminates the kinds of lowering frame pushed onto a Context's
// method stack (spec.md §3 "Method stack"), used to route break/continue
// targets and to decide whether an abrupt exit (return/break/continue)
// must first run an enclosing finally block or monitor release.
type Tag uint8

const (
	TagNone Tag = iota
	TagLoop
	TagSwitch
	TagTryWithCatch
	TagTryWithFinally
	TagAbruptTryFinally
	TagSynchronized
)

// frame is one entry of the method-level lowering stack.
type frame struct {
	Tag Tag

	// StmtLabel is the statement label attached to a loop/switch, "" if
	// unlabeled.
	StmtLabel string

	// BreakTarget/ContinueTarget are the labels break/continue should jump
	// to for this construct; ContinueTarget is nil for switch frames
	// (continue is not valid there).
	BreakTarget, ContinueTarget *label.Label

	// FinallyBody, when Tag is TagTryWithFinally/TagAbruptTryFinally, is
	// invoked by every abrupt exit (return/break/continue/exception) that
	// unwinds through this frame. The finally body is inlined for every
	// target; no JSR/RET subroutine is emitted, whatever UseJSR holds.
	FinallyBody ast.Stmt

	// MonitorLocal, when Tag is TagSynchronized, is the local slot holding
	// the monitor object, released via MONITOREXIT on every exit path.
	MonitorLocal *symbols.Variable
}

// Context carries the per-method state threaded through expression and
// statement lowering.
type Context struct {
	Emit  *method.Emitter
	Pool  *constpool.Pool
	Diags *diag.Collector
	Frames *stackmap.Builder

	// Class is the type of the class whose
	// method is being compiled, used for "this" field access and
	// INVOKESPECIAL <init>/super calls.
	Class *symbols.Type

	// UseJSR marks a target older than 1.7. No lowering reads it: finally
	// bodies are inlined at each exit for every target, and no JSR/RET
	// subroutine is ever emitted.
	UseJSR bool

	// NoSuppressedExceptions mirrors ast.Try.NoSuppressed: true when the
	// target predates Throwable.addSuppressed, so try-with-resources
	// lowering discards a close() failure that happens while a primary
	// exception is in flight instead of chaining it.
	NoSuppressedExceptions bool

	// UseStringBuffer selects java.lang.StringBuffer instead of
	// StringBuilder for string concatenation, for targets older than 1.5
	// (spec.md §4.9).
	UseStringBuffer bool

	// AssertionsDisabledField is the synthesized `static boolean
	// $assertionsDisabled` field (internal/synth), read by every lowered
	// assert statement. Nil disables the disablement check entirely,
	// lowering `assert` unconditionally.
	AssertionsDisabledField *symbols.Variable

	stack []frame

	// exceptionTable accumulates the exception-table rows lowering
	// produces (synchronized monitor-release handlers, try-catch,
	// try-finally); internal/synth's method assembly step reads this via
	// ExceptionTable after the body is fully lowered.
	exceptionTable []ExcRange

	// liveLocals tracks the locals currently in lexical scope, in slot
	// order, for building StackMapTable frames at statement-level
	// control-flow merges (spec.md §4.5): such a merge always has an
	// empty operand stack by construction (Java statements never leave a
	// value live across a statement boundary), so only the locals portion
	// of a Frame varies from point to point.
	liveLocals []localEntry
}

type localEntry struct {
	slot int
	t    stackmap.VType
}

// DeclareParam records a method parameter (or "this") as live for the
// whole method body, called once per parameter before lowering starts.
func (c *Context) DeclareParam(v *symbols.Variable) { c.declareLocal(v) }

func (c *Context) declareLocal(v *symbols.Variable) {
	c.setLocalType(v.LocalIndex, stackmap.FromSymbol(v.Type))
}

func (c *Context) setLocalType(slot int, t stackmap.VType) {
	for i, e := range c.liveLocals {
		if e.slot == slot {
			c.liveLocals[i].t = t
			return
		}
	}
	c.liveLocals = append(c.liveLocals, localEntry{slot: slot, t: t})
	sort.Slice(c.liveLocals, func(i, j int) bool { return c.liveLocals[i].slot < c.liveLocals[j].slot })
}

func (c *Context) undeclareLocal(v *symbols.Variable) {
	for i, e := range c.liveLocals {
		if e.slot == v.LocalIndex {
			c.liveLocals = append(c.liveLocals[:i], c.liveLocals[i+1:]...)
			return
		}
	}
}

// currentFrame snapshots the live locals (with an empty operand stack)
// for recording at a statement-level branch target.
func (c *Context) currentFrame() stackmap.Frame {
	locals := make([]stackmap.VType, len(c.liveLocals))
	for i, e := range c.liveLocals {
		locals[i] = e.t
	}
	return stackmap.Frame{Locals: locals}
}

// recordHandlerFrame records a frame at an exception handler's entry
// PC, where the JVM has pushed exactly the caught throwable.
func (c *Context) recordHandlerFrame(pc uint32, excType *symbols.Type) {
	excVType := stackmap.Object("java/lang/Throwable")
	if excType != nil {
		excVType = stackmap.FromSymbol(excType)
	}
	f := c.currentFrame()
	f.Stack = []stackmap.VType{excVType}
	c.Frames.Record(pc, f, false)
}

// ExcRange is one exception-table row recorded during lowering, in terms
// of the PCs already resolved in the emitter's code buffer. CatchInternalName
// is "" for a catch-all (finally/synchronized) handler.
type ExcRange struct {
	StartPC, EndPC, HandlerPC uint32
	CatchInternalName         string
}

// ExceptionTable returns the exception-table rows recorded while
// lowering this method's body, for the caller to resolve each
// CatchInternalName into a constant-pool class index and assemble into
// a classfile.Code.Exceptions slice.
func (c *Context) ExceptionTable() []ExcRange { return c.exceptionTable }

// NewContext returns a Context ready to lower one method body.
func NewContext(emit *method.Emitter, pool *constpool.Pool, diags *diag.Collector, class *symbols.Type) *Context {
	return &Context{Emit: emit, Pool: pool, Diags: diags, Class: class, Frames: stackmap.NewBuilder()}
}

func (c *Context) push(f frame) { c.stack = append(c.stack, f) }
func (c *Context) pop()         { c.stack = c.stack[:len(c.stack)-1] }

// top returns the innermost frame, or nil if the stack is empty.
func (c *Context) top() *frame {
	if len(c.stack) == 0 {
		return nil
	}
	return &c.stack[len(c.stack)-1]
}

// findBreakTarget resolves the label a `break [target]` statement should
// jump to, and the finally/monitor frames that must run on the way out,
// innermost first.
func (c *Context) findBreakTarget(target string) (*label.Label, []frame) {
	return c.findTarget(target, true)
}

// findContinueTarget resolves a `continue [target]` statement's loop
// head label and unwound frames.
func (c *Context) findContinueTarget(target string) (*label.Label, []frame) {
	return c.findTarget(target, false)
}

func (c *Context) findTarget(target string, isBreak bool) (*label.Label, []frame) {
	var unwound []frame
	for i := len(c.stack) - 1; i >= 0; i-- {
		f := c.stack[i]
		switch f.Tag {
		case TagTryWithFinally, TagAbruptTryFinally, TagSynchronized:
			unwound = append(unwound, f)
			continue
		case TagLoop, TagSwitch:
			if isBreak && f.BreakTarget != nil && (target == "" || f.StmtLabel == target) {
				return f.BreakTarget, unwound
			}
			if !isBreak && f.Tag == TagLoop && f.ContinueTarget != nil && (target == "" || f.StmtLabel == target) {
				return f.ContinueTarget, unwound
			}
			unwound = append(unwound, f)
		default:
			unwound = append(unwound, f)
		}
	}
	return nil, unwound
}

// diagAt reports an error at pos. Lowering passes 0 (an unknown
// position), since the AST does not carry a precise one down to the
// instruction being diagnosed.
func (c *Context) diagAt(pos token.Pos, code diag.Code, format string, args ...interface{}) {
	c.Diags.Errorf(code, pos, format, args...)
}
