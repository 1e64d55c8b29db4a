package probe

// Validation is the outcome of probing one file. It is consumed immediately
// by the pipeline and never persisted.
type Validation struct {
	Valid bool
	// Message carries the ffprobe diagnostic when Valid is false.
	Message string
	// Duration is the container duration in seconds, or 0 when ffprobe
	// reported a duration that does not parse as a number.
	Duration float64
}

// Invalid builds a failed Validation carrying msg.
func Invalid(msg string) Validation {
	return Validation{Message: msg}
}

// Logger is the minimal logging interface needed by the prober.
type Logger interface {
	Error(string, ...interface{})
	Debug(string, ...interface{})
}
