package ffmpeg

// RetryAction identifies which fix was applied (or none).
type RetryAction int

const (
	RetryNone          RetryAction = iota
	RetryFixTimestamps             // Enable +genpts+discardcorrupt.
	RetryIncreaseMux               // Raise max_muxing_queue_size to 16384.
)

const (
	maxAttempts      = 3
	muxQueueEscalate = 16384
)

// String returns the label used in retry log lines.
func (a RetryAction) String() string {
	switch a {
	case RetryFixTimestamps:
		return "regenerate timestamps"
	case RetryIncreaseMux:
		return "increase mux queue"
	default:
		return "none"
	}
}

// RetryState tracks which fallback fixes have been applied across repair
// attempts for a single file.
type RetryState struct {
	Attempt      int
	MaxAttempts  int
	MuxQueueSize int // Zero leaves ffmpeg's default.
	TimestampFix bool
}

// NewRetryState returns a state for a first, unmodified copy attempt.
func NewRetryState() *RetryState {
	return &RetryState{MaxAttempts: maxAttempts}
}

// Advance inspects stderr from a failed copy, finds the first matching
// error pattern whose fix has not yet been applied, applies that fix, and
// returns the action taken. Returns RetryNone when no fixable pattern
// matches or the attempt limit is reached.
//
// Pattern evaluation order: timestamp → mux queue. Only one fix is applied
// per call.
func (s *RetryState) Advance(stderr string) RetryAction {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts {
		return RetryNone
	}

	if !s.TimestampFix && MatchTimestampIssue(stderr) {
		s.TimestampFix = true
		return RetryFixTimestamps
	}
	if s.MuxQueueSize < muxQueueEscalate && MatchMuxQueueOverflow(stderr) {
		s.MuxQueueSize = muxQueueEscalate
		return RetryIncreaseMux
	}

	return RetryNone
}
