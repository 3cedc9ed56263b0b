// Package label implements forward/backward branch-target bookkeeping
// (spec.md §3 "Label", §4.3 C4): a label records where it was defined (if
// yet known) and every use site that must be patched once it is. This is
// the same lazily-resolved-jump-address idea the teacher's assembler
// implements textually in lang/compiler/asm.go, where a jump's operand is
// first written as an index into the code section and only translated to
// a real address (indexToAddr) once the whole function has been laid
// out; here the same translation happens on raw bytes instead of text,
// and at definition time rather than at a second encoding pass, but the
// "collect uses, patch once the target is known" shape is identical.
package label

import (
	"math"

	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/token"
)

// Use records one branch instruction that referenced a label before (or
// as) it was defined.
type Use struct {
	OpPC  uint32 // PC of the branch opcode itself (offset is relative to this)
	UsePC uint32 // PC of the first byte of the operand to patch
	Width int    // 2 or 4
}

// Label is a lazily-defined branch target, per spec.md §3.
type Label struct {
	Defined      bool
	DefinitionPC uint32
	Uses         []Use

	// NoFrame marks a label used only by the internal "assume false,
	// materialize" boolean pattern (spec.md §4.6, §9 open question b):
	// the StackMapTable generator must skip recording a frame here
	// because the pattern's merge point has a statically-known,
	// single-predecessor stack shape.
NoFrame bool

	// SavedStack/SavedLocals hold an opaque snapshot of the operand stack
	// and locals typing captured at first use (for a forward branch) or at
	// definition time (for a backward branch), per spec.md §4.5 rule 1.
	// The snapshot type is owned by the stackmap package; label only
	// carries it so it can live alongside the PC bookkeeping it is
	// recorded with.
	SavedStack  interface{}
	SavedLocals interface{}
}

// New returns an undefined Label.
func New() *Label { return &Label{} }

// Define records pc as the label's definition point. It is an error to
// define the same label twice.
func (l *Label) Define(pc uint32) {
	l.Defined = true
	l.DefinitionPC = pc
}

// Use appends a deferred patch site: a branch instruction at opPC whose
// operand begins at usePC and is width bytes wide.
func (l *Label) Use(opPC, usePC uint32, width int) {
	l.Uses = append(l.Uses, Use{OpPC: opPC, UsePC: usePC, Width: width})
}

// Complete patches every recorded use in code with the signed branch
// offset (DefinitionPC - OpPC), reporting a BranchOffsetOverflow
// diagnostic for any 2-byte use whose offset does not fit in an int16
// (spec.md §4.3: the emitter must have chosen width 4 via emit_branch
// for such cases, so this is a last-resort consistency check, not the
// primary width-selection mechanism).
func (l *Label) Complete(code []byte, diags *diag.Collector, pos token.Pos) {
	if !l.Defined {
		if diags != nil && len(l.Uses) > 0 {
			diags.Fatalf("UNDEFINED_LABEL", pos, "label used but never defined")
		}
		return
	}
	for _, u := range l.Uses {
		offset := int64(l.DefinitionPC) - int64(u.OpPC)
		switch u.Width {
		case 2:
			if offset < math.MinInt16 || offset > math.MaxInt16 {
				if diags != nil {
					diags.Fatalf(diag.BranchOffsetOverflow, pos,
						"branch offset %d does not fit in 16 bits", offset)
				}
				continue
			}
			writeI16(code, u.UsePC, int16(offset))
		case 4:
			if offset < math.MinInt32 || offset > math.MaxInt32 {
				if diags != nil {
					diags.Fatalf(diag.BranchOffsetOverflow, pos,
						"branch offset %d does not fit in 32 bits", offset)
				}
				continue
			}
			writeI32(code, u.UsePC, int32(offset))
		}
	}
}

func writeI16(code []byte, at uint32, v int16) {
	code[at] = byte(uint16(v) >> 8)
	code[at+1] = byte(uint16(v))
}

func writeI32(code []byte, at uint32, v int32) {
	u := uint32(v)
	code[at] = byte(u >> 24)
	code[at+1] = byte(u >> 16)
	code[at+2] = byte(u >> 8)
	code[at+3] = byte(u)
}

// FitsShort reports whether a branch spanning approximately estimatedSpan
// source-level units (statements, sub-expressions) should use the native
// short (2-byte operand) branch form, per spec.md §4.3's 64-token
// threshold. estimatedSpan is a cheap static proxy for PC distance,
// exactly as spec.md describes it ("estimate span from over: size in
// source-token units"); callers without a better estimate may pass the
// actual PC delta once one of the two PCs is already known.
func FitsShort(estimatedSpan int) bool {
	const threshold = 64
	return estimatedSpan < threshold
}
