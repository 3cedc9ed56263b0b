// Package stackmap builds a method's StackMapTable attribute (JVMS
// §4.7.4, spec.md §4.5, C6): at every branch target the verifier needs a
// snapshot of the operand stack and local-variable types, encoded as a
// sequence of deltas from the previous frame. This package owns the
// verification-type model; internal/label only carries the opaque
// SavedStack/SavedLocals snapshots this package produces, exactly as
// spec.md's package boundary describes.
//
// The frame-merge bookkeeping is modeled on the teacher's
// lang/compiler/compiler.go block-linearization pass, which also
// reconciles a value computed along multiple incoming control-flow
// edges (there, initialstack; here, a typed frame) by intersecting what
// every predecessor agrees on.
package stackmap

import (
	"sort"

	"github.com/7mind/jbcgen/internal/symbols"
	"golang.org/x/exp/maps"
)

// VKind identifies a JVMS §4.10.1.2 verification_type_info tag.
type VKind uint8

const (
	VTop VKind = iota
	VInteger
	VFloat
	VLong
	VDouble
	VNull
	VUninitializedThis
	VObject
	VUninitialized
)

// VType is one verification type: a stack slot or local-variable slot
// shape. Object carries the class's internal name; Uninitialized
// carries the bytecode offset of the `new` that produced it (JVMS
// §4.10.1.4).
type VType struct {
	Kind           VKind
	ClassName      string // VObject
	NewOffset      uint16 // VUninitialized
}

var (
	Top               = VType{Kind: VTop}
	Integer           = VType{Kind: VInteger}
	Float             = VType{Kind: VFloat}
	Long              = VType{Kind: VLong}
	Double            = VType{Kind: VDouble}
	Null              = VType{Kind: VNull}
	UninitializedThis = VType{Kind: VUninitializedThis}
)

// Object returns the verification type for a reference to className
// (internal/slash form).
func Object(className string) VType { return VType{Kind: VObject, ClassName: className} }

// Uninitialized returns the verification type for an object under
// construction, tagged by the offset of the `new` instruction that
// allocated it.
func Uninitialized(newOffset uint16) VType { return VType{Kind: VUninitialized, NewOffset: newOffset} }

// FromSymbol maps a resolved field/local/stack type to its verification
// type, per JVMS §4.10.1.7's "type hierarchy for verification" mapping.
func FromSymbol(t *symbols.Type) VType {
	if t == nil {
		return Top
	}
	if t.IsPrimitive() {
		switch t.PrimitiveDescriptor {
		case 'I', 'B', 'C', 'S', 'Z':
			return Integer
		case 'F':
			return Float
		case 'J':
			return Long
		case 'D':
			return Double
		default: // 'V'
			return Top
		}
	}
	return Object(internalName(t))
}

func internalName(t *symbols.Type) string {
	if t.IsArray() {
		return t.Descriptor()
	}
	return dotsToSlashes(t.FullyQualifiedName)
}

func dotsToSlashes(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c == '.' {
			out[i] = '/'
		}
	}
	return string(out)
}

// Frame is a snapshot of the local-variable array and operand stack at
// one program point, in the "verification type list" form JVMS
// §4.10.1.4 frames are built from (long/double already occupy one list
// slot here; the Top-filler second slot is only materialized during
// serialization, per spec.md §4.5).
type Frame struct {
	Locals []VType
	Stack  []VType
}

// locals equality and stack equality, used by Merge to detect an exact
// same_frame/same_frame_extended match.
func equalTypes(a, b []VType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Merge intersects two frames reaching the same program point along
// different control-flow edges, per spec.md §4.5 rule 2. Stack shapes
// must already agree (a verifier error otherwise, reported upstream by
// the semantic layer, not here); locals are trimmed to the longest
// common prefix, since a local only definitely assigned along one
// incoming edge cannot be assumed live at the merge point.
func Merge(a, b Frame) Frame {
	n := len(a.Locals)
	if len(b.Locals) < n {
		n = len(b.Locals)
	}
	i := 0
	for i < n && a.Locals[i] == b.Locals[i] {
		i++
	}
	merged := Frame{
		Locals: append([]VType{}, a.Locals[:i]...),
		Stack:  a.Stack,
	}
	return merged
}

// Entry pairs a target PC with the Frame recorded there, plus whether a
// frame should be suppressed entirely (spec.md §4.5's NoFrame case: a
// merge point whose single predecessor's shape is already implied by
// straight-line fallthrough).
type Entry struct {
	PC       uint32
	Frame    Frame
	NoFrame  bool
}

// Builder accumulates per-label frames during emission and produces the
// final delta-encoded StackMapTable rows once every branch target in a
// method has been visited.
type Builder struct {
	byPC map[uint32]Entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byPC: make(map[uint32]Entry)}
}

// Record stores (or merges into) the frame at pc. Calling Record twice
// for the same pc merges the two frames per Merge, modeling multiple
// incoming edges converging on one label.
func (b *Builder) Record(pc uint32, f Frame, noFrame bool) {
	if existing, ok := b.byPC[pc]; ok {
		existing.Frame = Merge(existing.Frame, f)
		existing.NoFrame = existing.NoFrame && noFrame
		b.byPC[pc] = existing
		return
	}
	b.byPC[pc] = Entry{PC: pc, Frame: f, NoFrame: noFrame}
}

// Entries returns every recorded frame, sorted by PC ascending — the
// order JVMS §4.7.4 requires a StackMapTable to be serialized in.
// x/exp/maps.Keys supplies the key set; sorting it here keeps frame
// emission deterministic across Go map-iteration-order runs, the same
// determinism concern the teacher's compiler.go addresses by working
// off an explicit slice of blocks rather than a raw map range.
func (b *Builder) Entries() []Entry {
	pcs := maps.Keys(b.byPC)
	sort.Slice(pcs, func(i, j int) bool { return pcs[i] < pcs[j] })
	out := make([]Entry, 0, len(pcs))
	for _, pc := range pcs {
		out = append(out, b.byPC[pc])
	}
	return out
}

// Encode serializes the accumulated frames into raw stack_map_frame byte
// sequences (JVMS §4.7.4), given the implicit initial frame (the
// method's parameter-derived locals and an empty stack) to diff the
// first entry's offset_delta against, and the class's constant pool to
// intern Object class names.
//
// classIndex maps an internal class name to its already-interned
// CONSTANT_Class_info index; callers own interning since this package
// does not depend on constpool.
func Encode(entries []Entry, initialLocals []VType, classIndex func(name string) uint16) [][]byte {
	out := make([][]byte, 0, len(entries))
	prevLocals := initialLocals
	prevPC := -1 // first frame's offset_delta is its raw PC (no -1 adjustment)

	for _, e := range entries {
		if e.NoFrame {
			continue
		}
		offsetDelta := int(e.PC) - prevPC - 1
		out = append(out, encodeFrame(offsetDelta, prevLocals, e.Frame.Locals, e.Frame.Stack, classIndex))
		prevLocals = e.Frame.Locals
		prevPC = int(e.PC)
	}
	return out
}

func encodeFrame(offsetDelta int, prevLocals, locals, stack []VType, classIndex func(string) uint16) []byte {
	switch {
	case equalTypes(prevLocals, locals) && len(stack) == 0:
		return encodeSameFrame(offsetDelta)
	case equalTypes(prevLocals, locals) && len(stack) == 1:
		return encodeSame1StackFrame(offsetDelta, stack[0], classIndex)
	case len(locals) < len(prevLocals) && len(stack) == 0 && isPrefix(locals, prevLocals):
		chopped := len(prevLocals) - len(locals)
		if chopped <= 3 {
			return encodeChopFrame(offsetDelta, chopped)
		}
	case len(locals) > len(prevLocals) && len(stack) == 0 && isPrefix(prevLocals, locals):
		appended := locals[len(prevLocals):]
		if len(appended) <= 3 {
			return encodeAppendFrame(offsetDelta, appended, classIndex)
		}
	}
	return encodeFullFrame(offsetDelta, locals, stack, classIndex)
}

func isPrefix(short, long []VType) bool {
	if len(short) > len(long) {
		return false
	}
	return equalTypes(short, long[:len(short)])
}

func encodeSameFrame(offsetDelta int) []byte {
	if offsetDelta <= 63 {
		return []byte{byte(offsetDelta)}
	}
	return append([]byte{251}, u2(offsetDelta)...) // same_frame_extended
}

func encodeSame1StackFrame(offsetDelta int, s VType, classIndex func(string) uint16) []byte {
	info := encodeVType(s, classIndex)
	if offsetDelta <= 63 {
		return append([]byte{byte(64 + offsetDelta)}, info...)
	}
	return append(append([]byte{247}, u2(offsetDelta)...), info...)
}

func encodeChopFrame(offsetDelta, chopped int) []byte {
	return append([]byte{byte(251 - chopped)}, u2(offsetDelta)...)
}

func encodeAppendFrame(offsetDelta int, appended []VType, classIndex func(string) uint16) []byte {
	buf := append([]byte{byte(251 + len(appended))}, u2(offsetDelta)...)
	for _, t := range appended {
		buf = append(buf, encodeVType(t, classIndex)...)
	}
	return buf
}

func encodeFullFrame(offsetDelta int, locals, stack []VType, classIndex func(string) uint16) []byte {
	buf := append([]byte{255}, u2(offsetDelta)...)
	buf = append(buf, u2(len(locals))...)
	for _, t := range locals {
		buf = append(buf, encodeVType(t, classIndex)...)
	}
	buf = append(buf, u2(len(stack))...)
	for _, t := range stack {
		buf = append(buf, encodeVType(t, classIndex)...)
	}
	return buf
}

func encodeVType(t VType, classIndex func(string) uint16) []byte {
	switch t.Kind {
	case VTop:
		return []byte{0}
	case VInteger:
		return []byte{1}
	case VFloat:
		return []byte{2}
	case VDouble:
		return []byte{3}
	case VLong:
		return []byte{4}
	case VNull:
		return []byte{5}
	case VUninitializedThis:
		return []byte{6}
	case VObject:
		idx := classIndex(t.ClassName)
		return append([]byte{7}, u2(int(idx))...)
	case VUninitialized:
		return append([]byte{8}, u2(int(t.NewOffset))...)
	}
	return []byte{0}
}

func u2(v int) []byte { return []byte{byte(v >> 8), byte(v)} }
