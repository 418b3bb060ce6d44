// Package command provides the default subprocess runner used by parsers
// and converters that shell out to external tools.
package command

import (
	"context"
	"os/exec"
	"time"

	"github.com/veritas-labs/ragstore/internal/core/ports/driven"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// DefaultTimeout bounds a single external tool invocation.
const DefaultTimeout = 120 * time.Second

// Runner executes external commands with a per-invocation timeout.
type Runner struct {
	timeout time.Duration
}

// New creates a runner. A non-positive timeout selects the default.
func New(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Run executes the command and returns its standard output. The context
// is bounded by the runner's timeout; a timed-out command is killed and
// reported as a normal error.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return exec.CommandContext(ctx, name, args...).Output()
}
