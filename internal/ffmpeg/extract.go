package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/backmassage/synothumb/internal/naming"
	"github.com/backmassage/synothumb/internal/proc"
)

// Extractor grabs a single frame from a video as the Synology thumbnail.
type Extractor struct {
	runner proc.Runner
	bin    string
	height int
	verify bool
	log    Logger
}

// NewExtractor returns an Extractor running ffmpeg at bin. When verify is
// set every output is decoded and its height checked before install.
func NewExtractor(runner proc.Runner, bin string, verify bool, log Logger) *Extractor {
	return &Extractor{runner: runner, bin: bin, height: ThumbHeight, verify: verify, log: log}
}

// Extract writes a frame at seek seconds from src into dst. Output goes to
// a sibling temporary file first and is renamed over dst only after it
// exists (and verifies), so an existing dst is never clobbered by a
// partial image.
func (e *Extractor) Extract(ctx context.Context, src, dst string, seek float64) (err error) {
	tmp := filepath.Join(filepath.Dir(dst), naming.ThumbTempName)
	defer func() {
		if err == nil {
			return
		}
		if rmErr := removeIfExists(tmp); rmErr != nil {
			e.log.Error("Error removing %s: %v", tmp, rmErr)
		}
	}()

	res := e.runner.Run(ctx, e.bin, ThumbnailArgs(src, tmp, seek, e.height)...)
	if !res.OK() {
		summary := Summarize(res.Stderr)
		e.log.Error("Error creating thumbnail for %s: %s", src, summary)
		return fmt.Errorf("extract %s: %w: %s", src, res.Err, summary)
	}

	if _, statErr := os.Stat(tmp); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			e.log.Error("Error creating thumbnail for %s: no frame at %ss", src, FormatSeek(seek))
			return fmt.Errorf("extract %s at %ss: %w", src, FormatSeek(seek), ErrNoFrame)
		}
		return fmt.Errorf("extract %s: %w", src, statErr)
	}

	if e.verify {
		if vErr := VerifyThumbnail(tmp, e.height); vErr != nil {
			e.log.Error("Error creating thumbnail for %s: %v", src, vErr)
			return fmt.Errorf("extract %s: %w", src, vErr)
		}
	}

	if err := os.Rename(tmp, dst); err != nil {
		e.log.Error("Could not install thumbnail %s: %v", dst, err)
		return fmt.Errorf("install %s: %w", dst, err)
	}
	return nil
}
