package method

import "github.com/7mind/jbcgen/internal/label"

// pad4 returns the number of zero padding bytes needed so the next byte
// written starts at a multiple of 4 relative to the start of the method
// body, per JVMS §4.7's tableswitch/lookupswitch alignment requirement.
func pad4(pc uint32) int {
	return int((4 - (pc+1)%4) % 4)
}

// EmitTableSwitch appends a TABLESWITCH instruction, per JVMS §4.7: the
// selector (already on the stack) is compared against the dense
// [low, high] range, jumping to entries[key-low] or def if out of range.
// len(entries) must equal high-low+1.
func (e *Emitter) EmitTableSwitch(low, high int32, def *label.Label, entries []*label.Label) {
	opPC := uint32(len(e.Code))
	e.Code = append(e.Code, byte(TABLESWITCH))
	for i := 0; i < pad4(opPC); i++ {
		e.Code = append(e.Code, 0)
	}

	defUsePC := uint32(len(e.Code))
	e.Code = append(e.Code, 0, 0, 0, 0)
	def.Use(opPC, defUsePC, 4)

	e.Code = append(e.Code, i32Bytes(low)...)
	e.Code = append(e.Code, i32Bytes(high)...)

	for _, tgt := range entries {
		usePC := uint32(len(e.Code))
		e.Code = append(e.Code, 0, 0, 0, 0)
		tgt.Use(opPC, usePC, 4)
	}

	e.AdjustStack(-1)
	e.resetGotoTracking()
}

// EmitLookupSwitch appends a LOOKUPSWITCH instruction, per JVMS §4.7.
// keys and targets must be parallel; they need not be sorted, since the
// match-offset pairs are written in ascending key order (sortedIndices)
// whatever order they arrive in.
func (e *Emitter) EmitLookupSwitch(keys []int32, targets []*label.Label, def *label.Label) {
	opPC := uint32(len(e.Code))
	e.Code = append(e.Code, byte(LOOKUPSWITCH))
	for i := 0; i < pad4(opPC); i++ {
		e.Code = append(e.Code, 0)
	}

	defUsePC := uint32(len(e.Code))
	e.Code = append(e.Code, 0, 0, 0, 0)
	def.Use(opPC, defUsePC, 4)

	e.Code = append(e.Code, i32Bytes(int32(len(keys)))...)

	order := sortedIndices(keys)
	for _, i := range order {
		e.Code = append(e.Code, i32Bytes(keys[i])...)
		usePC := uint32(len(e.Code))
		e.Code = append(e.Code, 0, 0, 0, 0)
		targets[i].Use(opPC, usePC, 4)
	}

	e.AdjustStack(-1)
	e.resetGotoTracking()
}

func sortedIndices(keys []int32) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && keys[idx[j-1]] > keys[idx[j]]; j-- {
			idx[j-1], idx[j] = idx[j], idx[j-1]
		}
	}
	return idx
}

func i32Bytes(v int32) []byte {
	u := uint32(v)
	return []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
}
