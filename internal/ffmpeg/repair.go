package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/backmassage/synothumb/internal/naming"
	"github.com/backmassage/synothumb/internal/probe"
	"github.com/backmassage/synothumb/internal/proc"
)

// Logger is the minimal logging interface needed by Repairer and Extractor.
type Logger interface {
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Validator checks a freshly written repair output.
type Validator interface {
	Validate(ctx context.Context, path string) probe.Validation
}

// Repairer rewrites a damaged container with a stream copy.
type Repairer struct {
	runner    proc.Runner
	bin       string
	validator Validator
	log       Logger
}

// NewRepairer returns a Repairer running ffmpeg at bin and validating its
// output with v.
func NewRepairer(runner proc.Runner, bin string, v Validator, log Logger) *Repairer {
	return &Repairer{runner: runner, bin: bin, validator: v, log: log}
}

// Repair copies src into naming.RepairPath(src) and returns that path once
// the copy validates. On any failure the output file is removed and an
// error is returned; the caller owns deleting the returned file.
func (r *Repairer) Repair(ctx context.Context, src string) (string, error) {
	dst := naming.RepairPath(src)
	rs := NewRetryState()

	for {
		res := r.runner.Run(ctx, r.bin, RepairArgs(src, dst, rs)...)
		if res.OK() {
			break
		}
		r.discard(dst)

		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("repair %s: %w", src, err)
		}
		action := rs.Advance(res.Stderr)
		if action == RetryNone {
			summary := Summarize(res.Stderr)
			r.log.Error("Repair failed for %s: %s", src, summary)
			return "", fmt.Errorf("repair %s: %w: %s", src, res.Err, summary)
		}
		r.log.Warn("Repair of %s failed, retrying (%s)", src, action)
	}

	if v := r.validator.Validate(ctx, dst); !v.Valid {
		r.discard(dst)
		r.log.Error("Repair attempt did not produce a valid video: %s", src)
		return "", fmt.Errorf("repair %s: %w", src, ErrRepairInvalid)
	}

	r.log.Debug("Successfully repaired %s", src)
	return dst, nil
}

// discard removes a partial repair output, logging anything but absence.
func (r *Repairer) discard(path string) {
	if err := removeIfExists(path); err != nil {
		r.log.Error("Error removing %s: %v", path, err)
	}
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
