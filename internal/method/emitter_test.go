package method

import (
	"testing"

	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/token"
)

func TestEmitterStackTracking(t *testing.T) {
	e := New(diag.NewCollector(), token.Pos(0))
	e.NoteLocalSlot(0, 1)
	e.EmitOp(ICONST_1)
	e.EmitOp(ICONST_2)
	e.EmitOp(IADD)
	e.EmitOp(IRETURN)

	if e.MaxStack() != 2 {
		t.Errorf("want max stack 2, got %d", e.MaxStack())
	}
	if e.StackDepth() != 0 {
		t.Errorf("want final stack depth 0 (ireturn consumes the sum), got %d", e.StackDepth())
	}
	want := []byte{byte(ICONST_1), byte(ICONST_2), byte(IADD), byte(IRETURN)}
	if string(e.Code) != string(want) {
		t.Errorf("want code %v, got %v", want, e.Code)
	}
}

func TestEmitterOperandWidths(t *testing.T) {
	e := New(diag.NewCollector(), token.Pos(0))
	e.EmitOpU1(BIPUSH, 42)
	e.EmitOpU2(SIPUSH, 1000)
	e.EmitIinc(1, -1)

	if got, want := e.PC(), uint32(2+3+3); got != want {
		t.Errorf("want pc %d after emitting fixed-width instructions, got %d", want, got)
	}
}

func TestEmitterMaxLocalsTracksWidestSlot(t *testing.T) {
	e := New(diag.NewCollector(), token.Pos(0))
	e.NoteLocalSlot(0, 1) // this
	e.NoteLocalSlot(1, 2) // a long/double parameter occupies two slots
	if e.MaxLocals() != 3 {
		t.Errorf("want max locals 3, got %d", e.MaxLocals())
	}
}
