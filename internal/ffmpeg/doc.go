// Package ffmpeg builds and runs the two ffmpeg invocations the pipeline
// needs: a stream-copy remux that repairs a damaged container, and a
// single-frame JPEG extraction for the thumbnail.
//
// Types:
//   - Repairer: copy-remux into <src>.repaired.mp4, re-validated via probe.
//     Failed copies are classified from stderr and retried with at most
//     one fix per attempt (see RetryState).
//   - Extractor: seek + one frame + scale=-1:480 into a temporary JPEG that
//     is verified with imaging and renamed over SYNOPHOTO_THUMB_M.jpg.
//
// Both take a proc.Runner so tests can script ffmpeg's behavior.
package ffmpeg
