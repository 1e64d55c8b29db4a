package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/synothumb/internal/naming"
)

// process runs one candidate through the thumbnail state machine. Cleanup
// of the repaired copy and of an empty target directory happens on every
// return path.
func (p *Pipeline) process(ctx context.Context, c Candidate) (res FileResult) {
	start := time.Now()
	res = FileResult{Candidate: c, Outcome: OutcomeError}
	defer func() { res.Duration = time.Since(start) }()

	target := naming.TargetFor(c.Path)

	// --- Target directory ---
	if err := os.MkdirAll(target.Dir, 0o755); err != nil {
		p.log.Error("Cannot create %s: %v", target.Dir, err)
		res.Err = &Failure{Kind: KindFilesystem, Path: c.Path, Err: err}
		return res
	}
	defer p.removeIfEmpty(target.Dir)
	p.removeStale(target.Dir)

	// --- Validate, optionally repair ---
	src := c.Path
	v := p.prober.Validate(ctx, c.Path)
	if !v.Valid {
		p.log.Error("Invalid video file detected: %s", c.Path)
		kind, cause := KindProbe, errors.New(v.Message)

		if p.cfg.Repair && p.repairer != nil {
			p.log.Info("Attempting to repair %s", c.Path)
			fixed, err := p.repairer.Repair(ctx, c.Path)
			if err == nil {
				defer p.removeRepaired(fixed)
				src = fixed
				res.Repaired = true
			} else {
				kind, cause = KindRepair, err
			}
		}

		if !res.Repaired && !p.cfg.SkipErrors {
			p.log.Error("Skipping %s due to corruption", c.Path)
			res.Err = &Failure{Kind: kind, Path: c.Path, Err: cause}
			return res
		}
	}

	// --- Idempotence ---
	if !p.cfg.Overwrite && fileExists(target.Thumb) {
		p.log.Debug("Thumbnail exists, skipping %s", c.Path)
		res.Outcome = OutcomeSkipped
		return res
	}

	// --- Extract ---
	seek := p.cfg.SeekSeconds
	if v.Valid && v.Duration > 0 && v.Duration <= seek {
		seek = v.Duration / 2
		p.log.Debug("%s is only %.2fs long, seeking to %.2fs", c.Name, v.Duration, seek)
	}
	if err := p.extractor.Extract(ctx, src, target.Thumb, seek); err != nil {
		res.Err = &Failure{Kind: KindExtraction, Path: c.Path, Err: err}
		return res
	}

	p.log.Debug("Created thumbnail for %s", c.Path)
	res.Outcome = OutcomeProcessed
	return res
}

// removeStale deletes failure markers and interrupted extraction output
// left in dir by earlier runs.
func (p *Pipeline) removeStale(dir string) {
	for _, pattern := range []string{naming.FailMarkerGlob, naming.ThumbTempName} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
				p.log.Error("Error removing %s: %v", m, err)
			}
		}
	}
}

func (p *Pipeline) removeRepaired(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.log.Error("Error removing temporary file %s: %v", path, err)
	}
}

// removeIfEmpty deletes dir when nothing was written into it.
func (p *Pipeline) removeIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.log.Error("Error checking/removing directory %s: %v", dir, err)
		}
		return
	}
	if len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		p.log.Error("Error checking/removing directory %s: %v", dir, err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
