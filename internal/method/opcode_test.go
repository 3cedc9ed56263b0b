package method

import (
	"strings"
	"testing"
)

func TestOpcodeString(t *testing.T) {
	for op := range opcodeNames {
		if s := op.String(); strings.Contains(s, "illegal") {
			t.Errorf("opcode %#x round-trips to %q", uint8(op), s)
		}
	}
}

func TestOpcodeStringUnknown(t *testing.T) {
	// 0xca..0xfd are reserved/unused opcode values (JVMS §6.5).
	got := Opcode(0xca).String()
	if !strings.Contains(got, "illegal") {
		t.Errorf("want an illegal-opcode marker, got %q", got)
	}
}

func TestStackEffectKnownOpcodes(t *testing.T) {
	cases := []struct {
		op    Opcode
		delta int
	}{
		{NOP, 0},
		{ACONST_NULL, 1},
		{POP, -1},
		{POP2, -2},
		{DUP, 1},
		{LDC2_W, 2},
		{IADD, -1},
		{RETURN, 0},
	}
	for _, c := range cases {
		delta, ok := StackEffect(c.op)
		if !ok {
			t.Errorf("%s: expected a known static stack effect", c.op)
			continue
		}
		if delta != c.delta {
			t.Errorf("%s: want delta %d, got %d", c.op, c.delta, delta)
		}
	}
}

func TestStackEffectVariable(t *testing.T) {
	for _, op := range []Opcode{INVOKEVIRTUAL, INVOKESPECIAL, INVOKESTATIC, INVOKEINTERFACE, INVOKEDYNAMIC, MULTIANEWARRAY} {
		if _, ok := StackEffect(op); ok {
			t.Errorf("%s: expected a variable (descriptor-driven) stack effect, got a static one", op)
		}
	}
}

func TestWideForm(t *testing.T) {
	cases := []struct {
		op   Opcode
		want Opcode
		ok   bool
	}{
		{GOTO, GOTO_W, true},
		{JSR, JSR_W, true},
		{ILOAD, 0, false},
		{IINC, 0, false},
		{NOP, 0, false},
	}
	for _, c := range cases {
		got, ok := WideForm(c.op)
		if ok != c.ok {
			t.Errorf("%s: want ok=%t, got %t", c.op, c.ok, ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("%s: want %s, got %s", c.op, c.want, got)
		}
	}
}

func TestInvertCondition(t *testing.T) {
	cases := []struct{ op, want Opcode }{
		{IFEQ, IFNE},
		{IFNE, IFEQ},
		{IFLT, IFGE},
		{IF_ICMPEQ, IF_ICMPNE},
		{IFNULL, IFNONNULL},
	}
	for _, c := range cases {
		got, ok := Invert(c.op)
		if !ok {
			t.Errorf("%s: expected an invertible conditional branch", c.op)
			continue
		}
		if got != c.want {
			t.Errorf("%s: want inverse %s, got %s", c.op, c.want, got)
		}
		// inverting twice must return the original opcode.
		back, ok := Invert(got)
		if !ok || back != c.op {
			t.Errorf("%s: inverse of inverse should be %s, got %s (ok=%t)", c.op, c.op, back, ok)
		}
	}
	if Invert2, ok := Invert(GOTO); ok {
		t.Errorf("GOTO is unconditional, should not invert, got %s", Invert2)
	}
}

func TestIsConditionalBranch(t *testing.T) {
	for _, op := range []Opcode{IFEQ, IFNE, IF_ICMPEQ, IFNULL, IFNONNULL} {
		if !IsConditionalBranch(op) {
			t.Errorf("%s should be a conditional branch", op)
		}
	}
	for _, op := range []Opcode{GOTO, JSR, RETURN, NOP} {
		if IsConditionalBranch(op) {
			t.Errorf("%s should not be a conditional branch", op)
		}
	}
}
