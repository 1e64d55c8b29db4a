// Package probe provides ffprobe-based media validation. A single JSON call
// per file asks for the container duration; a file is valid when ffprobe
// exits cleanly and reports one.
//
// Types:
//   - Validation (Valid, Message, Duration)
//   - Prober (wraps a proc.Runner and the ffprobe binary path)
//
// Functions:
//   - (*Prober).Validate(ctx, path) → Validation
//   - ParseJSON(data) → (duration, ok, error), exported for tests.
package probe
