package pipeline

import (
	"path/filepath"
	"strings"
)

// Candidate is a video file eligible for a thumbnail. It lives only for
// the duration of its processing.
type Candidate struct {
	Path string // Full path as walked.
	Dir  string // Containing directory.
	Name string // Base name including extension.
	Ext  string // Lower-cased extension with leading dot.
}

// NewCandidate splits path into its Candidate fields.
func NewCandidate(path string) Candidate {
	name := filepath.Base(path)
	return Candidate{
		Path: path,
		Dir:  filepath.Dir(path),
		Name: name,
		Ext:  strings.ToLower(filepath.Ext(name)),
	}
}
