// Package proc runs external tools as argument-vector child processes with
// captured output and a bounded wait. No shell is ever involved, so paths
// with quotes or spaces need no escaping.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// ErrTimeout is returned (wrapped) when a tool exceeds its time limit and is killed.
var ErrTimeout = errors.New("timed out")

// Result holds the outcome of a single tool invocation.
type Result struct {
	Stdout []byte
	Stderr string
	Err    error
}

// OK reports whether the tool exited with status 0.
func (r Result) OK() bool { return r.Err == nil }

// Runner is the external-process capability used by the probe and ffmpeg
// packages. Tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs tools with os/exec. Timeout bounds each invocation (zero
// means no limit). When Tee is set, stderr is mirrored to it in real time.
type ExecRunner struct {
	Timeout time.Duration
	Tee     io.Writer
}

// waitDelay is how long Run waits for output pipes after killing a child.
const waitDelay = 5 * time.Second

// Run executes name with args, capturing stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Tee)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%s %w after %s", name, ErrTimeout, r.Timeout)
	}
	return Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.String(),
		Err:    err,
	}
}
