// Package pipeline orchestrates library discovery, per-file thumbnail
// generation, run statistics and the summary report.
//
// Types:
//   - Candidate: one video file found by the walk.
//   - Walker: lazy depth-first enumeration with @eaDir/#recycle pruning.
//   - Pipeline: bounded worker pool driving the per-file state machine
//     (target dir → stale cleanup → probe → repair → idempotence check →
//     extract → cleanup).
//   - Stats / RunStats: atomic counters and their snapshot.
//   - Observer: start, per-file, 10% progress and finish events.
//   - Report: the Process Summary block.
//
// Tool access goes through the Prober, Repairer and Extractor interfaces,
// satisfied by internal/probe and internal/ffmpeg.
package pipeline
