// Package check resolves the ffmpeg/ffprobe binaries, provides the
// pre-pipeline dependency validation (CheckDeps) and the --check mode
// diagnostics (RunCheck).
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/backmassage/synothumb/internal/config"
	"github.com/backmassage/synothumb/internal/ffmpeg"
	"github.com/backmassage/synothumb/internal/proc"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
	ErrFfprobeNotFound = errors.New("ffprobe not found")
)

// PackageBinDirs are searched before PATH. The Synology ffmpeg6 package
// ships a newer build than the one bundled with DSM.
var PackageBinDirs = []string{"/var/packages/ffmpeg6/target/bin"}

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Tools holds the resolved binary paths.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// ResolveTools picks each binary from, in order: the explicit config path,
// the first PackageBinDirs entry holding an executable, then PATH. An
// explicit ffmpeg path also supplies ffprobe when one sits beside it. When
// nothing is found the bare name is kept so CheckDeps can report it.
func ResolveTools(cfg *config.Config) Tools {
	probeBin := cfg.FFprobePath
	if probeBin == "" {
		probeBin = siblingProbe(cfg.FFmpegPath)
	}
	return Tools{
		FFmpeg:  resolve(cfg.FFmpegPath, "ffmpeg", PackageBinDirs),
		FFprobe: resolve(probeBin, "ffprobe", PackageBinDirs),
	}
}

// siblingProbe derives .../ffprobe from a concrete .../ffmpeg path. A bare
// "ffmpeg" (PATH lookup) is not guessed from.
func siblingProbe(ffmpegBin string) string {
	if !strings.ContainsRune(ffmpegBin, os.PathSeparator) || filepath.Base(ffmpegBin) != "ffmpeg" {
		return ""
	}
	candidate := filepath.Join(filepath.Dir(ffmpegBin), "ffprobe")
	if isExecutable(candidate) {
		return candidate
	}
	return ""
}

func resolve(override, name string, dirs []string) string {
	if override != "" {
		return override
	}
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		if isExecutable(p) {
			return p
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	return name
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0
}

// available reports whether bin names a runnable tool, either as a path or
// via PATH lookup.
func available(bin string) bool {
	if strings.ContainsRune(bin, os.PathSeparator) {
		return isExecutable(bin)
	}
	_, err := exec.LookPath(bin)
	return err == nil
}

// CheckDeps is the pre-pipeline validation: both tools must be runnable.
// Returns a sentinel error (wrapped with the tried path) on failure.
func CheckDeps(t Tools) error {
	if !available(t.FFmpeg) {
		return fmt.Errorf("%w (tried %s)", ErrFfmpegNotFound, t.FFmpeg)
	}
	if !available(t.FFprobe) {
		return fmt.Errorf("%w (tried %s)", ErrFfprobeNotFound, t.FFprobe)
	}
	return nil
}

// RunCheck runs the interactive --check flow: prints the version of each
// tool and runs a tiny JPEG thumbnail encode through ffmpeg. This is
// informational only; it does not stop on failure. Returns false when any
// step failed.
func RunCheck(ctx context.Context, t Tools, runner proc.Runner, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkVersion(ctx, runner, "ffmpeg", t.FFmpeg, log)
	ok = checkVersion(ctx, runner, "ffprobe", t.FFprobe, log) && ok
	if !ok {
		return false
	}
	return checkThumbnailEncode(ctx, runner, t.FFmpeg, log)
}

// checkVersion logs the first line of "<bin> -version".
func checkVersion(ctx context.Context, runner proc.Runner, label, bin string, log Logger) bool {
	if !available(bin) {
		log.Error("%s not found (tried %s)", label, bin)
		return false
	}
	res := runner.Run(ctx, bin, "-version")
	if !res.OK() {
		log.Warn("%s found at %s but -version failed: %v", label, bin, res.Err)
		return false
	}
	log.Success("%s: %s", label, FirstLine(string(res.Stdout)))
	log.Info("  %s", bin)
	return true
}

// checkThumbnailEncode scales a synthetic frame to the thumbnail height and
// encodes it as JPEG, discarding the output.
func checkThumbnailEncode(ctx context.Context, runner proc.Runner, bin string, log Logger) bool {
	log.Info("Testing JPEG thumbnail encode...")
	res := runner.Run(ctx, bin, thumbnailTestArgs()...)
	if !res.OK() {
		log.Error("JPEG thumbnail encode failed: %s", ffmpeg.Summarize(res.Stderr))
		return false
	}
	log.Success("JPEG thumbnail encode works")
	return true
}

func thumbnailTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=320x240:duration=0.1",
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=-1:%d", ffmpeg.ThumbHeight),
		"-c:v", "mjpeg",
		"-f", "null", "-",
	}
}

// FirstLine returns s up to its first newline, trimmed.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
