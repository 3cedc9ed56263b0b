package synth

import (
	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/codegen"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/method"
	"github.com/7mind/jbcgen/internal/stackmap"
	"github.com/7mind/jbcgen/internal/symbols"
)

// AssembleCode turns a finished method.Emitter plus the StackMapTable
// frames and exception-table rows recorded alongside it into a
// classfile.Code attribute, ready to attach to a classfile.Method. It is
// shared by every synthesized method in this package and by the eventual
// driver assembling ordinary, source-declared methods lowered through
// internal/codegen, since both need exactly this same "emitter state ->
// Code attribute" translation.
func AssembleCode(pool *constpool.Pool, emit *method.Emitter, frames *stackmap.Builder, excTable []codegen.ExcRange, initialLocals []stackmap.VType, emitDebugVars bool) *classfile.Code {
	code := &classfile.Code{
		MaxStack:  uint16(emit.MaxStack()),
		MaxLocals: uint16(emit.MaxLocals()),
		Bytes:     emit.Code,
	}

	for _, ex := range excTable {
		catchType := uint16(0)
		if ex.CatchInternalName != "" {
			catchType = pool.InternClass(ex.CatchInternalName)
		}
		code.Exceptions = append(code.Exceptions, classfile.ExceptionTableEntry{
			StartPC:   uint16(ex.StartPC),
			EndPC:     uint16(ex.EndPC),
			HandlerPC: uint16(ex.HandlerPC),
			CatchType: catchType,
		})
	}

	for _, ln := range emit.Lines() {
		code.LineNumbers = append(code.LineNumbers, classfile.LineNumberEntry{
			StartPC: uint16(ln.PC), Line: uint16(ln.Line),
		})
	}

	if emitDebugVars {
		for _, v := range emit.LocalVars() {
			code.LocalVariables = append(code.LocalVariables, classfile.LocalVariableEntry{
				StartPC:       uint16(v.StartPC),
				Length:        uint16(v.Length),
				NameIdx:       pool.InternUtf8(v.Name),
				DescriptorIdx: pool.InternUtf8(v.Descriptor),
				Index:         v.Index,
			})
		}
	}

	if frames != nil {
		classIndex := func(name string) uint16 { return pool.InternClass(name) }
		for _, raw := range stackmap.Encode(frames.Entries(), initialLocals, classIndex) {
			code.StackMapTable = append(code.StackMapTable, classfile.StackMapFrame{Bytes: raw})
		}
	}

	return code
}

// AssembleMethod interns name/descriptor and wraps code into a
// classfile.Method, resolving a throws clause to constant-pool class
// indices.
func AssembleMethod(pool *constpool.Pool, name, descriptor string, access int, code *classfile.Code, throws []*symbols.Type, synthetic bool) classfile.Method {
	m := classfile.Method{
		AccessFlags:   uint16(access),
		NameIdx:       pool.InternUtf8(name),
		DescriptorIdx: pool.InternUtf8(descriptor),
		Code:          code,
		Synthetic:     synthetic,
	}
	for _, t := range throws {
		m.Exceptions = append(m.Exceptions, pool.InternClass(internalName(t)))
	}
	return m
}

// initialLocalsFor builds the implicit entry frame the StackMapTable
// generator diffs its first explicit entry against: `this` (unless
// static) followed by each parameter type, per JVMS §4.10.1.6.
func initialLocalsFor(owner *symbols.Type, isStatic bool, params []*symbols.Type) []stackmap.VType {
	var locals []stackmap.VType
	if !isStatic {
		locals = append(locals, stackmap.Object(internalName(owner)))
	}
	for _, p := range params {
		locals = append(locals, stackmap.FromSymbol(p))
		if p == symbols.Long || p == symbols.Double {
			locals = append(locals, stackmap.Top)
		}
	}
	return locals
}
