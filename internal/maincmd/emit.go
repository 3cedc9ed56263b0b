package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/7mind/jbcgen/internal/classfile"
	"github.com/7mind/jbcgen/internal/constpool"
	"github.com/7mind/jbcgen/internal/diag"
	"github.com/7mind/jbcgen/internal/symbols"
	"github.com/7mind/jbcgen/internal/synth"
)

var targets = map[string]classfile.Target{
	"1.1": classfile.Target1_1,
	"1.2": classfile.Target1_2,
	"1.3": classfile.Target1_3,
	"1.4": classfile.Target1_4,
	"1.5": classfile.Target5,
	"5":   classfile.Target5,
	"1.6": classfile.Target6,
	"6":   classfile.Target6,
	"1.7": classfile.Target7,
	"7":   classfile.Target7,
	"1.8": classfile.Target8,
	"8":   classfile.Target8,
}

// Emit assembles a minimal demonstration class — a public class with
// just the implicit no-arg constructor synth.DefaultConstructor
// produces — and writes its serialized bytes to -o (or stdout). It
// exists to exercise internal/constpool, internal/classfile, and
// internal/synth end to end from the command line; real callers are
// expected to drive internal/codegen/internal/synth directly from their
// own AST and symbol tables rather than through this command (see the
// "emit" entry in longUsage in maincmd.go).
func (c *Cmd) Emit(_ context.Context, stdio mainer.Stdio, _ []string) error {
	target := classfile.Target8
	if c.Target != "" {
		t, ok := targets[c.Target]
		if !ok {
			return printError(stdio, fmt.Errorf("emit: unknown -target %q", c.Target))
		}
		target = t
	}

	name := c.Name
	if name == "" {
		name = "HelloWorld"
	}
	superName := c.Super
	if superName == "" {
		superName = "java/lang/Object"
	}

	diags := diag.NewCollector()
	pool := constpool.New(diags)

	super := symbols.Object
	if superName != "java/lang/Object" {
		super = symbols.ClassType(superName)
	}
	class := symbols.ClassType(name)
	class.Super = super

	plan := &synth.ClassPlan{
		Class:           class,
		Access:          symbols.AccPublic | symbols.AccSuper,
		HasExplicitCtor: false,
		TargetBelow1_5:  target.Major < classfile.Target5.Major,
		NoSuppressed:    c.NoSuppressed,
	}

	ctor := synth.DefaultConstructor(pool, diags, plan)

	if diags.Failed() {
		for _, d := range diags.Diagnostics() {
			fmt.Fprintln(stdio.Stderr, d.String())
		}
		return printError(stdio, fmt.Errorf("emit: synthesis failed"))
	}

	cf := &classfile.ClassFile{
		Target:      target,
		Pool:        pool,
		AccessFlags: uint16(plan.Access),
		ThisClass:   pool.InternClass(name),
		SuperClass:  pool.InternClass(superName),
		Methods:     []classfile.Method{ctor},
	}
	if !c.DebugNone {
		cf.SourceFileIdx = pool.InternUtf8(baseName(name) + ".java")
	}

	var out io.Writer = stdio.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return printError(stdio, fmt.Errorf("emit: %w", err))
		}
		defer f.Close()
		out = f
	}

	if err := cf.Write(out); err != nil {
		return printError(stdio, fmt.Errorf("emit: %w", err))
	}
	return nil
}

// baseName returns the simple name of an internal (slash-separated)
// class name, for deriving a plausible SourceFile attribute value.
func baseName(internalName string) string {
	for i := len(internalName) - 1; i >= 0; i-- {
		if internalName[i] == '/' {
			return internalName[i+1:]
		}
	}
	return internalName
}
