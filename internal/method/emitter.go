package method

import (
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/label"
	"github.com/7mind/jbcgen/internal/token"
)

// LineEntry is one row of a LineNumberTable attribute.
type LineEntry struct {
	PC   uint32
	Line int32
}

// LocalVarEntry is one row of a LocalVariableTable attribute.
type LocalVarEntry struct {
	StartPC, Length uint32
	Name, Descriptor string
	Index           uint16
}

// Emitter holds one method's code buffer, live operand-stack depth, and
// the bookkeeping spec.md §4.4 (C5) requires: max_stack/max_locals
// high-water marks, an optional LineNumberTable, and an optional
// LocalVariableTable (only populated when EmitDebugVars is set, mirroring
// javac's -g:vars).
type Emitter struct {
	Code []byte

	stack    int
	maxStack int

	maxLocals int

	lines []LineEntry
	vars  []LocalVarEntry

	EmitDebugVars bool

	diags *diag.Collector
	pos   token.Pos

	// lastWasGoto/lastGotoUse record the most recently emitted
	// instruction when it was an unconditional GOTO/GOTO_W, so that
	// DefineLabel can elide it per spec.md §4.3's goto-elision rule.
	lastWasGoto   bool
	lastGotoOpPC  uint32
	lastGotoWidth int
	lastLineIdx   int // index into lines of the entry recorded for the goto, -1 if none
}

// New returns an Emitter ready to accept instructions for a fresh method
// body.
func New(diags *diag.Collector, pos token.Pos) *Emitter {
	return &Emitter{diags: diags, pos: pos, lastLineIdx: -1}
}

// PC returns the current code-buffer length, i.e. the address the next
// emitted byte will occupy.
func (e *Emitter) PC() uint32 { return uint32(len(e.Code)) }

// StackDepth returns the emitter's current live operand-stack depth.
func (e *Emitter) StackDepth() int { return e.stack }

// MaxStack returns the high-water mark observed so far.
func (e *Emitter) MaxStack() int { return e.maxStack }

// NoteLocalSlot records that local slot index+words-1 is in use, growing
// max_locals if needed. Actual slot assignment is the caller's job (the
// codegen package tracks a simple bump allocator over the resolved
// symbol's LocalIndex); this just folds it into the high-water mark.
func (e *Emitter) NoteLocalSlot(index int, words int) {
	if index+words > e.maxLocals {
		e.maxLocals = index + words
	}
}

// MaxLocals returns the high-water mark of local slot usage.
func (e *Emitter) MaxLocals() int { return e.maxLocals }

// AdjustStack applies an explicit stack-depth correction for an
// instruction whose effect StackEffect could not compute (invokes,
// MULTIANEWARRAY). Under error recovery (spec.md §4.4) a resulting
// negative depth is clamped to zero rather than panicking — the
// generator keeps emitting so a single pass can surface every
// diagnostic.
func (e *Emitter) AdjustStack(delta int) {
	e.stack += delta
	if e.stack < 0 {
		e.stack = 0
	}
	if e.stack > e.maxStack {
		e.maxStack = e.stack
	}
}

func (e *Emitter) bumpStack(op Opcode) {
	if delta, ok := StackEffect(op); ok {
		e.AdjustStack(delta)
	}
}

func (e *Emitter) resetGotoTracking() {
	e.lastWasGoto = false
	e.lastLineIdx = -1
}

// EmitOp appends a single no-operand opcode and applies its static stack
// effect.
func (e *Emitter) EmitOp(op Opcode) {
	e.Code = append(e.Code, byte(op))
	e.bumpStack(op)
	e.resetGotoTracking()
}

// EmitOpU1 appends op followed by one unsigned byte operand.
func (e *Emitter) EmitOpU1(op Opcode, operand uint8) {
	e.Code = append(e.Code, byte(op), operand)
	e.bumpStack(op)
	e.resetGotoTracking()
}

// EmitOpI1 appends op followed by one signed byte operand (BIPUSH,
// NEWARRAY's atype is unsigned but IINC's const is signed).
func (e *Emitter) EmitOpI1(op Opcode, operand int8) {
	e.EmitOpU1(op, uint8(operand))
}

// EmitOpU2 appends op followed by a big-endian u2 operand (constant pool
// index, local-variable index via the wide-form, SIPUSH, etc.).
func (e *Emitter) EmitOpU2(op Opcode, operand uint16) {
	e.Code = append(e.Code, byte(op), byte(operand>>8), byte(operand))
	e.bumpStack(op)
	e.resetGotoTracking()
}

// EmitInvoke appends an invoke* instruction, correcting the stack by the
// method descriptor's argument/return word counts (spec.md §4.4): pop
// each parameter's words plus the receiver (unless static), then push
// the return type's words. INVOKEINTERFACE additionally appends the
// argument-count byte and the reserved zero byte.
func (e *Emitter) EmitInvoke(op Opcode, methodrefIdx uint16, argWords int, isStatic bool, pushWords int) {
	e.Code = append(e.Code, byte(op), byte(methodrefIdx>>8), byte(methodrefIdx))
	if op == INVOKEINTERFACE {
		popWords := argWords
		if !isStatic {
			popWords++
		}
		e.Code = append(e.Code, byte(popWords+0), 0)
	}
	popWords := argWords
	if !isStatic {
		popWords++
	}
	e.AdjustStack(pushWords - popWords)
	e.resetGotoTracking()
}

// EmitMultiANewArray appends MULTIANEWARRAY, popping dims index words
// and pushing the one-word array reference.
func (e *Emitter) EmitMultiANewArray(classIdx uint16, dims uint8) {
	e.Code = append(e.Code, byte(MULTIANEWARRAY), byte(classIdx>>8), byte(classIdx), dims)
	e.AdjustStack(1 - int(dims))
	e.resetGotoTracking()
}

// EmitFieldOp appends a GETSTATIC/PUTSTATIC/GETFIELD/PUTFIELD, correcting
// the stack by the field's word count and, for *FIELD, the popped
// receiver.
func (e *Emitter) EmitFieldOp(op Opcode, fieldrefIdx uint16, words int) {
	e.Code = append(e.Code, byte(op), byte(fieldrefIdx>>8), byte(fieldrefIdx))
	switch op {
	case GETSTATIC:
		e.AdjustStack(words)
	case PUTSTATIC:
		e.AdjustStack(-words)
	case GETFIELD:
		e.AdjustStack(words - 1)
	case PUTFIELD:
		e.AdjustStack(-words - 1)
	}
	e.resetGotoTracking()
}

// DefineLabel marks lab as defined at the current PC, applying the
// goto-elision peephole of spec.md §4.3: if the instruction immediately
// preceding this PC is the unconditional GOTO/GOTO_W whose own target is
// this same PC, and no local-variable-table debugging is in effect
// (which would make PC-exact line tracking across the deleted bytes
// load-bearing), the goto and its operand are deleted and any
// LineNumberTable entry recorded for it is rolled back.
func (e *Emitter) DefineLabel(lab *label.Label) {
	if e.lastWasGoto && !e.EmitDebugVars && uint32(len(e.Code)) == e.lastGotoOpPC+1+uint32(e.lastGotoWidth) {
		// Only elide if this label's only/first use is exactly that goto.
		if len(lab.Uses) == 1 && lab.Uses[0].OpPC == e.lastGotoOpPC {
			e.Code = e.Code[:e.lastGotoOpPC]
			if e.lastLineIdx >= 0 {
				e.lines = e.lines[:e.lastLineIdx]
			}
			lab.Uses = nil
		}
	}
	lab.Define(uint32(len(e.Code)))
	e.resetGotoTracking()
}

// EmitBranch emits a branch instruction targeting lab, choosing between
// the native short (2-byte offset) and wide forms per spec.md §4.3:
// below the 64-source-unit threshold (label.FitsShort) the native short
// op is used; above it, GOTO/JSR lower to their _W counterpart, and
// every other conditional op lowers to "invert-branch-skip-goto_w":
// `ifX target` becomes `if¬X skip; goto_w target; skip:`.
func (e *Emitter) EmitBranch(op Opcode, lab *label.Label, estimatedSpan int) {
	opPC := uint32(len(e.Code))

	if label.FitsShort(estimatedSpan) {
		e.Code = append(e.Code, byte(op), 0, 0)
		e.bumpStack(op)
		lab.Use(opPC, opPC+1, 2)
		e.trackGoto(op, opPC, 2)
		return
	}

	if wide, ok := WideForm(op); ok {
		e.Code = append(e.Code, byte(wide), 0, 0, 0, 0)
		e.bumpStack(op)
		lab.Use(opPC, opPC+1, 4)
		e.trackGoto(wide, opPC, 4)
		return
	}

	// Conditional branch beyond the short range: invert and skip over a
	// GOTO_W to the real target.
	inv, ok := Invert(op)
	if !ok {
		// Not an invertible conditional and has no _W form (shouldn't
		// happen for any real JVM opcode); fall back to the short form and
		// let Label.Complete raise BranchOffsetOverflow if it doesn't fit.
		e.Code = append(e.Code, byte(op), 0, 0)
		e.bumpStack(op)
		lab.Use(opPC, opPC+1, 2)
		return
	}
	skip := label.New()
	e.Code = append(e.Code, byte(inv), 0, 0)
	e.bumpStack(op)
	skipOpPC := opPC
	skip.Use(skipOpPC, skipOpPC+1, 2)

	gotoPC := uint32(len(e.Code))
	e.Code = append(e.Code, byte(GOTO_W), 0, 0, 0, 0)
	lab.Use(gotoPC, gotoPC+1, 4)

	skip.Define(uint32(len(e.Code)))
	e.resetGotoTracking()
	_ = skip // fully resolved: skip's only use was defined immediately above
	skip.Complete(e.Code, e.diags, e.pos)
}

func (e *Emitter) trackGoto(emittedOp Opcode, opPC uint32, width int) {
	if emittedOp == GOTO || emittedOp == GOTO_W {
		e.lastWasGoto = true
		e.lastGotoOpPC = opPC
		e.lastGotoWidth = width
		e.lastLineIdx = len(e.lines) - 1
	} else {
		e.resetGotoTracking()
	}
}

// RecordLine appends a LineNumberTable row for the current PC, skipping
// the append if line matches the most recently recorded one (a method
// body routinely emits many instructions per source line).
func (e *Emitter) RecordLine(line int32) {
	if len(e.lines) > 0 && e.lines[len(e.lines)-1].Line == line {
		return
	}
	e.lines = append(e.lines, LineEntry{PC: uint32(len(e.Code)), Line: line})
	e.lastLineIdx = len(e.lines) - 1
}

// Lines returns the recorded LineNumberTable rows.
func (e *Emitter) Lines() []LineEntry { return e.lines }

// RecordLocalVar appends a LocalVariableTable row, a no-op unless
// EmitDebugVars is set.
func (e *Emitter) RecordLocalVar(startPC, length uint32, name, descriptor string, index uint16) {
	if !e.EmitDebugVars {
		return
	}
	e.vars = append(e.vars, LocalVarEntry{StartPC: startPC, Length: length, Name: name, Descriptor: descriptor, Index: index})
}

// LocalVars returns the recorded LocalVariableTable rows.
func (e *Emitter) LocalVars() []LocalVarEntry { return e.vars }
