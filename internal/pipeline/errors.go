package pipeline

import "fmt"

// Kind classifies a per-file failure.
type Kind int

const (
	KindProbe      Kind = iota + 1 // File failed validation.
	KindRepair                     // Validation failed and so did repair.
	KindExtraction                 // ffmpeg could not produce a thumbnail.
	KindFilesystem                 // Target directory could not be prepared.
)

// String returns the label used in logs and the errors_total metric.
func (k Kind) String() string {
	switch k {
	case KindProbe:
		return "probe"
	case KindRepair:
		return "repair"
	case KindExtraction:
		return "extraction"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Failure is the error attached to a FileResult that ended in error.
type Failure struct {
	Kind Kind
	Path string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", f.Kind, f.Path, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }
