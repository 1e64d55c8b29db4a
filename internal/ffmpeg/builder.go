package ffmpeg

import (
	"strconv"
)

// ThumbHeight is the fixed pixel height of SYNOPHOTO_THUMB_M.jpg.
const ThumbHeight = 480

// RepairArgs builds the stream-copy remux argument vector. No stream is
// re-encoded; the moov atom is moved to the front for fast start. rs
// supplies fixes accumulated by earlier failed attempts.
func RepairArgs(src, dst string, rs *RetryState) []string {
	args := make([]string, 0, 20)
	args = append(args, "-hide_banner", "-nostdin", "-v", "warning")

	// --- Pre-input flags (timestamp fix) ---
	if rs.TimestampFix {
		args = append(args, "-fflags", "+genpts+discardcorrupt")
	}

	args = append(args, "-i", src, "-c", "copy")

	if rs.MuxQueueSize > 0 {
		args = append(args, "-max_muxing_queue_size", strconv.Itoa(rs.MuxQueueSize))
	}

	return append(args, "-movflags", "faststart", "-y", dst)
}

// ThumbnailArgs builds the single-frame extraction argument vector: seek
// before the input for speed, decode one frame, scale to height keeping
// the aspect ratio, write a JPEG to dst.
func ThumbnailArgs(src, dst string, seek float64, height int) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "warning",
		"-ss", FormatSeek(seek),
		"-i", src,
		"-y",
		"-frames:v", "1",
		"-vf", "scale=-1:" + strconv.Itoa(height),
		"-update", "1",
		dst,
	}
}

// FormatSeek renders seconds the shortest way ffmpeg accepts ("1", "2.5").
func FormatSeek(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
