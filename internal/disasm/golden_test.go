package disasm_test

import (
	"path/filepath"
	"testing"

	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/disasm"
	"github.com/7mind/jbcgen/internal/filetest"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/stretchr/testify/require"
)

var updateGoldenTests = false

// TestDisassembleGolden builds one minimal class in memory (a public
// Widget extending Object with a single no-arg `run` method whose body
// is a bare return) and checks Disassemble's listing against a golden
// file, the same fixture-directory convention lang/parser's own tests
// use via this package.
func TestDisassembleGolden(t *testing.T) {
	dir := filepath.Join("testdata", "golden")
	for _, fi := range filetest.SourceFiles(t, dir, ".src") {
		t.Run(fi.Name(), func(t *testing.T) {
			cf := buildMinimalClass()
			out, err := disasm.Disassemble(cf)
			require.NoError(t, err)
			filetest.DiffOutput(t, fi, out, dir, &updateGoldenTests)
		})
	}
}

func buildMinimalClass() *classfile.ClassFile {
	pool := constpool.New(nil)
	this := pool.InternClass("Widget")
	super := pool.InternClass("java/lang/Object")
	nameIdx := pool.InternUtf8("run")
	descIdx := pool.InternUtf8("()V")

	return &classfile.ClassFile{
		Target:      classfile.Target8,
		Pool:        pool,
		AccessFlags: symbols.AccPublic | symbols.AccSuper,
		ThisClass:   this,
		SuperClass:  super,
		Methods: []classfile.Method{{
			AccessFlags:   symbols.AccPublic,
			NameIdx:       nameIdx,
			DescriptorIdx: descIdx,
			Code: &classfile.Code{
				MaxStack:  0,
				MaxLocals: 1,
				Bytes:     []byte{0xb1}, // return
			},
		}},
	}
}
