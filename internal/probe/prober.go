package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/backmassage/synothumb/internal/proc"
)

// ErrNoDuration is returned by ParseJSON when the report lacks format.duration.
var ErrNoDuration = errors.New("no container duration in ffprobe output")

// Prober validates media files with ffprobe.
type Prober struct {
	runner proc.Runner
	bin    string
	log    Logger
}

// New returns a Prober running the ffprobe binary at bin through runner.
func New(runner proc.Runner, bin string, log Logger) *Prober {
	return &Prober{runner: runner, bin: bin, log: log}
}

// Args returns the ffprobe argument vector used to validate path.
func Args(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	}
}

// Validate reports whether path holds a readable container with a
// determinable duration. Every failure mode is logged with the path and
// returned as an invalid Validation; it never returns an error.
func (p *Prober) Validate(ctx context.Context, path string) Validation {
	res := p.runner.Run(ctx, p.bin, Args(path)...)
	if !res.OK() {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = res.Err.Error()
		}
		p.log.Error("Video validation failed for %s: %s", path, msg)
		return Invalid(msg)
	}

	duration, err := ParseJSON(res.Stdout)
	if err != nil {
		p.log.Error("Video validation failed for %s: %v", path, err)
		return Invalid(err.Error())
	}
	p.log.Debug("Validated %s (%.2fs)", path, duration)
	return Validation{Valid: true, Duration: duration}
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format *ffprobeFormat `json:"format"`
}

type ffprobeFormat struct {
	Duration *string `json:"duration"`
}

// ParseJSON extracts format.duration from ffprobe JSON output. A present but
// non-numeric duration still counts as present and yields 0.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (float64, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if raw.Format == nil || raw.Format.Duration == nil {
		return 0, ErrNoDuration
	}
	return parseFloat(*raw.Format.Duration), nil
}

// ffprobe returns numbers as strings.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
