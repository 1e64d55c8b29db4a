package pipeline

import "time"

// Progress is emitted each time completion crosses a 10% boundary.
type Progress struct {
	Done    int
	Total   int
	Percent int
}

// Observer receives run events. Calls are serialized by the pipeline, so
// implementations need no locking of their own for these callbacks.
type Observer interface {
	// OnStart is called once with the number of candidates found.
	OnStart(total int)
	// OnFileDone is called once per candidate after cleanup.
	OnFileDone(r FileResult)
	// OnProgress follows the OnFileDone that crossed a boundary.
	OnProgress(p Progress)
	// OnFinish is called once with the final counts, even on cancellation.
	OnFinish(stats RunStats, elapsed time.Duration)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) OnStart(int)                      {}
func (NopObserver) OnFileDone(FileResult)            {}
func (NopObserver) OnProgress(Progress)              {}
func (NopObserver) OnFinish(RunStats, time.Duration) {}

// Observers fans every event out to each member in order.
type Observers []Observer

func (obs Observers) OnStart(total int) {
	for _, o := range obs {
		o.OnStart(total)
	}
}

func (obs Observers) OnFileDone(r FileResult) {
	for _, o := range obs {
		o.OnFileDone(r)
	}
}

func (obs Observers) OnProgress(p Progress) {
	for _, o := range obs {
		o.OnProgress(p)
	}
}

func (obs Observers) OnFinish(stats RunStats, elapsed time.Duration) {
	for _, o := range obs {
		o.OnFinish(stats, elapsed)
	}
}

// progressTracker turns completions into 10% boundary events.
type progressTracker struct {
	total  int
	done   int
	decile int
}

// advance counts one completion and reports whether a new boundary was crossed.
func (t *progressTracker) advance() (Progress, bool) {
	t.done++
	if t.total <= 0 {
		return Progress{}, false
	}
	d := t.done * 10 / t.total
	if d <= t.decile {
		return Progress{}, false
	}
	t.decile = d
	return Progress{Done: t.done, Total: t.total, Percent: t.done * 100 / t.total}, true
}

// LogObserver writes progress and per-file outcomes to a Logger.
type LogObserver struct {
	NopObserver
	Log Logger
}

func (o LogObserver) OnFileDone(r FileResult) {
	if r.Err != nil {
		o.Log.Debug("%s: %s after %s (%v)", r.Candidate.Name, r.Outcome, r.Duration.Round(time.Millisecond), r.Err)
		return
	}
	o.Log.Debug("%s: %s in %s", r.Candidate.Name, r.Outcome, r.Duration.Round(time.Millisecond))
}

func (o LogObserver) OnProgress(p Progress) {
	o.Log.Info("Progress: %d%% (%d/%d)", p.Percent, p.Done, p.Total)
}
