package postprocess

import (
	"context"

	"github.com/go-cmd/cmd"
)

// Runner executes an external tool and reports its final status
type Runner interface {
	Run(ctx context.Context, name string, args ...string) cmd.Status
}

// ExecRunner runs tools through go-cmd
type ExecRunner struct{}

// NewExecRunner creates a new runner backed by real processes
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts the command and waits for it. A cancelled context stops the
// process; the returned status is then incomplete.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) cmd.Status {
	c := cmd.NewCmd(name, args...)
	statusChan := c.Start()

	select {
	case status := <-statusChan:
		return status
	case <-ctx.Done():
		_ = c.Stop()
		status := <-statusChan
		if status.Error == nil {
			status.Error = ctx.Err()
		}
		return status
	}
}
