package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/7mind/jbcgen/internal/disasm"
)

// Disasm reads the .class file named by args[0] and prints its
// disassembly to stdout, the way the teacher's Tokenize/Parse commands
// read a source file and print its decoded form — here the "source" is
// already-compiled bytes rather than text.
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return printError(stdio, fmt.Errorf("disasm: %w", err))
	}
	defer f.Close()

	raw, err := disasm.ReadRaw(f)
	if err != nil {
		return printError(stdio, fmt.Errorf("disasm: %w", err))
	}

	out, err := disasm.DisassembleRaw(raw)
	if err != nil {
		return printError(stdio, fmt.Errorf("disasm: %w", err))
	}
	fmt.Fprint(stdio.Stdout, out)
	return nil
}
