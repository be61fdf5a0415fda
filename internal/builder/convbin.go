package builder

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrConvbin marks a failure of the external conversion tool, so the CLI
// can map it to its own exit code.
var ErrConvbin = errors.New("convbin failed")

// ConvbinRunner wraps a raw blob file into an .8xv AppVar with the given
// on-calculator name. Injectable so tests can run without the tool.
type ConvbinRunner func(ctx context.Context, binPath, outPath, name string) error

// RunConvbin invokes the external convbin tool.
func RunConvbin(ctx context.Context, binPath, outPath, name string) error {
	cmd := exec.CommandContext(ctx, "convbin",
		"-j", "bin",
		"-i", binPath,
		"-k", "8xv",
		"-o", outPath,
		"-n", name,
		"-r",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w for %s: %v (output: %s)", ErrConvbin, name, err, out)
	}
	return nil
}
