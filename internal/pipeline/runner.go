package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/synothumb/internal/config"
	"github.com/backmassage/synothumb/internal/probe"
)

// Prober validates a video before extraction.
type Prober interface {
	Validate(ctx context.Context, path string) probe.Validation
}

// Repairer produces a validated stream-copy of a damaged video. The
// returned path is owned by the caller.
type Repairer interface {
	Repair(ctx context.Context, path string) (string, error)
}

// Extractor writes a thumbnail frame from src into dst.
type Extractor interface {
	Extract(ctx context.Context, src, dst string, seek float64) error
}

// Logger is the logging interface the pipeline needs.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Pipeline processes every candidate under a library root. Build with New;
// a Pipeline runs once.
type Pipeline struct {
	cfg       *config.Config
	log       Logger
	prober    Prober
	repairer  Repairer
	extractor Extractor
	observer  Observer
	walker    Walker

	mu       sync.Mutex // Serializes stats, progress and observer calls.
	stats    Stats
	progress progressTracker
}

// New wires a Pipeline. repairer may be nil when cfg.Repair is false.
func New(cfg *config.Config, log Logger, prober Prober, repairer Repairer, extractor Extractor, observers ...Observer) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		log:       log,
		prober:    prober,
		repairer:  repairer,
		extractor: extractor,
		observer:  Observers(observers),
	}
	p.walker = Walker{OnError: func(path string, err error) {
		log.Error("Cannot read %s: %v", path, err)
	}}
	return p
}

// Run walks root and processes each candidate on cfg.Workers goroutines.
// The returned error is non-nil only when root cannot be enumerated or ctx
// was cancelled; per-file failures are counted in RunStats.Errors.
func (p *Pipeline) Run(ctx context.Context, root string) (RunStats, error) {
	start := time.Now()
	p.log.Info("Processing directory: %s", root)

	total, err := p.walker.Count(root)
	if err != nil {
		p.log.Error("Cannot scan %s: %v", root, err)
		return RunStats{}, fmt.Errorf("scan %s: %w", root, err)
	}
	if total == 0 {
		p.log.Info("No video files found to process")
	} else {
		p.log.Info("Found %d video files to process", total)
	}
	p.progress = progressTracker{total: total}
	p.observer.OnStart(total)

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan Candidate, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		return p.walker.Walk(root, func(c Candidate) error {
			select {
			case jobs <- c:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for c := range jobs {
				if gctx.Err() != nil {
					return nil
				}
				p.finish(p.process(gctx, c))
			}
			return nil
		})
	}
	err = g.Wait()

	stats := p.stats.Snapshot()
	p.observer.OnFinish(stats, time.Since(start))

	if ctxErr := ctx.Err(); ctxErr != nil {
		p.log.Warn("Interrupted after %d of %d files", stats.Total, total)
		return stats, ctxErr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		p.log.Error("Cannot scan %s: %v", root, err)
		return stats, fmt.Errorf("scan %s: %w", root, err)
	}
	return stats, nil
}

// finish records a result and emits observer events in completion order.
func (p *Pipeline) finish(r FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Record(r)
	p.observer.OnFileDone(r)
	if prog, ok := p.progress.advance(); ok {
		p.observer.OnProgress(prog)
	}
}
