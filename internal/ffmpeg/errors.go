package ffmpeg

import (
	"errors"
	"regexp"
	"strings"
)

// Sentinel errors returned (wrapped) by Repairer and Extractor.
var (
	ErrRepairInvalid = errors.New("repaired file did not pass validation")
	ErrNoFrame       = errors.New("ffmpeg produced no frame")
	ErrBadThumbnail  = errors.New("thumbnail failed verification")
)

// Pre-compiled regexes for classifying ffmpeg stderr output into retryable
// error categories. Checked in order by [RetryState.Advance].
var (
	reTimestampIssue = regexp.MustCompile(
		`(?i)Non-monotonous DTS|non monotonically increasing dts|` +
			`invalid, non monotonically increasing dts|` +
			`DTS .*out of order|PTS .*out of order|` +
			`pts has no value|missing PTS|Timestamps are unset`)

	reMuxQueueOverflow = regexp.MustCompile(
		`Too many packets buffered for output stream`)
)

// MatchTimestampIssue reports whether stderr contains a timestamp discontinuity.
func MatchTimestampIssue(stderr string) bool {
	return reTimestampIssue.MatchString(stderr)
}

// MatchMuxQueueOverflow reports whether stderr contains a mux queue overflow.
func MatchMuxQueueOverflow(stderr string) bool {
	return reMuxQueueOverflow.MatchString(stderr)
}

// maxSummaryLines bounds how much ffmpeg stderr goes into one log line.
const maxSummaryLines = 5

// Summarize returns the last few non-empty stderr lines joined with " | ",
// which is where ffmpeg puts the fatal reason.
func Summarize(stderr string) string {
	var lines []string
	for _, l := range strings.Split(stderr, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > maxSummaryLines {
		lines = lines[len(lines)-maxSummaryLines:]
	}
	return strings.Join(lines, " | ")
}
