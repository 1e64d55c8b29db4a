package pipeline

import (
	"io/fs"
	"path/filepath"

	"github.com/backmassage/synothumb/internal/naming"
)

// Walker enumerates candidates under a library root. OnError, when set,
// receives subdirectories that could not be read; they are skipped.
type Walker struct {
	OnError func(path string, err error)
}

// Walk calls fn for each candidate under root in depth-first lexical order.
// Directories named @eaDir or #recycle are pruned at any depth, including
// the root itself. Film strips and leftover repair outputs are ignored.
// A failure to read root is returned; an error from fn stops the walk and
// is returned as is.
func (w Walker) Walk(root string, fn func(Candidate) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if w.OnError != nil {
				w.OnError(path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if naming.IsExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if t := d.Type(); !t.IsRegular() && t&fs.ModeSymlink == 0 {
			return nil
		}
		if !naming.IsCandidateName(d.Name()) {
			return nil
		}
		return fn(NewCandidate(path))
	})
}

// Count returns how many candidates Walk would produce. Used to size
// progress reporting before processing starts.
func (w Walker) Count(root string) (int, error) {
	n := 0
	err := w.Walk(root, func(Candidate) error {
		n++
		return nil
	})
	return n, err
}
