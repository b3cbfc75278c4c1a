package toolcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"femcheck.openqed.org/internal/manifest"
)

// maxOutputExcerpt caps how much captured tool output is carried in a
// result. Solver banners fit comfortably; mesh dumps do not belong there.
const maxOutputExcerpt = 600

// resolve locates the binary for a tool, either at its pinned path or on PATH.
func resolve(env Env, tool manifest.Tool) (string, error) {
	if tool.Path != "" {
		if _, err := os.Stat(tool.Path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, tool.Path)
		}
		return tool.Path, nil
	}

	path, err := env.LookPath(tool.Command)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, tool.Command)
	}
	return path, nil
}

// runProbe executes the tool and returns its combined output. A non-zero
// exit is returned alongside the output; several of the probed tools print
// their banner and then exit non-zero when invoked without a mesh file.
func runProbe(ctx context.Context, path string, tool manifest.Tool) (string, error) {
	timeout := tool.Timeout
	if timeout <= 0 {
		timeout = manifest.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, tool.Args...)
	// Without a wait delay, a killed tool that leaked the pipe to a child
	// process would block CombinedOutput past the timeout.
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()

	if ctx.Err() == context.DeadlineExceeded {
		return string(out), fmt.Errorf("timed out after %s: %w", timeout, context.DeadlineExceeded)
	}
	return string(out), err
}

// excerpt trims tool output down to something a report can carry. The cut
// backs off to a rune boundary so the excerpt stays valid UTF-8.
func excerpt(output string) string {
	output = strings.TrimSpace(output)
	if len(output) > maxOutputExcerpt {
		cut := maxOutputExcerpt
		for cut > 0 && !utf8.RuneStart(output[cut]) {
			cut--
		}
		output = output[:cut] + "..."
	}
	return output
}
