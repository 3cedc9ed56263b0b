package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Version prints the same build-version line -v/--version does, as a
// subcommand for scripts that prefer `jbcgen version` over a flag.
func (c *Cmd) Version(_ context.Context, stdio mainer.Stdio, _ []string) error {
	fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
	return nil
}
