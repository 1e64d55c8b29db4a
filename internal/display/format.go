// Package display holds console presentation helpers: the banner and the
// small formatters used by the header and footer lines of a run.
package display

import (
	"fmt"
	"strconv"
	"time"

	"github.com/backmassage/synothumb/internal/config"
)

// FormatElapsed renders d as seconds with two decimals ("12.34 seconds").
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2f seconds", d.Seconds())
}

// FormatOptions renders the behavior switches for the run header.
func FormatOptions(cfg *config.Config) string {
	return fmt.Sprintf("Options: Overwrite=%t, Repair=%t, Skip Errors=%t, Screenshot Time=%ss",
		cfg.Overwrite, cfg.Repair, cfg.SkipErrors, strconv.FormatFloat(cfg.SeekSeconds, 'f', -1, 64))
}

// FormatExecution renders the concurrency and tool settings for the run
// header. Zero timeout is shown as "none".
func FormatExecution(cfg *config.Config, ffmpeg, ffprobe string) string {
	timeout := "none"
	if cfg.ToolTimeout > 0 {
		timeout = cfg.ToolTimeout.String()
	}
	return fmt.Sprintf("Workers: %d, Tool timeout: %s, Verify: %t, ffmpeg: %s, ffprobe: %s",
		cfg.Workers, timeout, cfg.Verify, ffmpeg, ffprobe)
}
