package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/backmassage/synothumb/internal/config"
	"github.com/backmassage/synothumb/internal/logging"
	"github.com/backmassage/synothumb/internal/naming"
	"github.com/backmassage/synothumb/internal/probe"
)

// --- Fakes ---

// fakeProber reports files listed in invalid as broken and everything else
// as a valid 10 second clip, unless durations overrides it.
type fakeProber struct {
	invalid   map[string]bool
	durations map[string]float64
}

func (f *fakeProber) Validate(_ context.Context, path string) probe.Validation {
	if f.invalid[filepath.Base(path)] {
		return probe.Invalid("moov atom not found")
	}
	d := 10.0
	if v, ok := f.durations[filepath.Base(path)]; ok {
		d = v
	}
	return probe.Validation{Valid: true, Duration: d}
}

type fakeRepairer struct {
	mu    sync.Mutex
	fail  bool
	calls []string
}

func (f *fakeRepairer) Repair(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	if f.fail {
		return "", errors.New("repair failed")
	}
	out := naming.RepairPath(path)
	if err := os.WriteFile(out, []byte("repaired"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

type extractCall struct {
	src, dst string
	seek     float64
}

type fakeExtractor struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []extractCall
	// onCall, when set, runs after each call is recorded with the call count.
	onCall func(n int)
}

func (f *fakeExtractor) Extract(_ context.Context, src, dst string, seek float64) error {
	f.mu.Lock()
	f.calls = append(f.calls, extractCall{src, dst, seek})
	n := len(f.calls)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(n)
	}
	if f.fail[filepath.Base(src)] {
		return errors.New("Output file is empty, nothing was encoded")
	}
	return os.WriteFile(dst, []byte("jpeg:"+filepath.Base(src)), 0o644)
}

type recordingObserver struct {
	started  int
	results  []FileResult
	progress []Progress
	finished *RunStats
}

func (o *recordingObserver) OnStart(total int)       { o.started = total }
func (o *recordingObserver) OnFileDone(r FileResult) { o.results = append(o.results, r) }
func (o *recordingObserver) OnProgress(p Progress)   { o.progress = append(o.progress, p) }
func (o *recordingObserver) OnFinish(s RunStats, _ time.Duration) {
	o.finished = &s
}

type harness struct {
	cfg       config.Config
	prober    *fakeProber
	repairer  *fakeRepairer
	extractor *fakeExtractor
	observer  *recordingObserver
}

func newHarness() *harness {
	cfg := config.DefaultConfig()
	return &harness{
		cfg:       cfg,
		prober:    &fakeProber{invalid: map[string]bool{}, durations: map[string]float64{}},
		repairer:  &fakeRepairer{},
		extractor: &fakeExtractor{fail: map[string]bool{}},
		observer:  &recordingObserver{},
	}
}

func (h *harness) run(t *testing.T, root string) RunStats {
	t.Helper()
	p := New(&h.cfg, logging.Discard(), h.prober, h.repairer, h.extractor, h.observer)
	stats, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return stats
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
	return path
}

func walkNames(t *testing.T, root string) []string {
	t.Helper()
	var got []string
	err := Walker{}.Walk(root, func(c Candidate) error {
		rel, err := filepath.Rel(root, c.Path)
		if err != nil {
			return err
		}
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return got
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// --- Walker tests ---

func TestWalk_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"movie.mkv", "show.mp4", "music.mp3", "readme.txt", "anime.avi", "clip.webm", "photo.jpg"} {
		touch(t, dir, name)
	}

	got := walkNames(t, dir)
	want := []string{"anime.avi", "movie.mkv", "show.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_AllVideoExtensions(t *testing.T) {
	dir := t.TempDir()
	exts := naming.Extensions()
	for _, ext := range exts {
		touch(t, dir, "file"+ext)
	}
	if got := walkNames(t, dir); len(got) != len(exts) {
		t.Errorf("got %d candidates, want %d", len(got), len(exts))
	}
}

func TestWalk_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "MOVIE.MKV")
	touch(t, dir, "Show.Mp4")

	var exts []string
	err := Walker{}.Walk(dir, func(c Candidate) error {
		exts = append(exts, c.Ext)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(exts)
	if !reflect.DeepEqual(exts, []string{".mkv", ".mp4"}) {
		t.Errorf("exts = %v, want lower-cased .mkv and .mp4", exts)
	}
}

func TestWalk_PrunesReservedDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "keep.mp4")
	touch(t, filepath.Join(dir, "@eaDir", "keep.mp4"), "SYNOPHOTO_FILM.mp4")
	touch(t, filepath.Join(dir, "#recycle"), "deleted.mkv")
	touch(t, filepath.Join(dir, "Trips", "2019", "@eaDir"), "nested.mov")
	touch(t, filepath.Join(dir, "Trips", "2019"), "beach.mov")

	got := walkNames(t, dir)
	want := []string{"Trips/2019/beach.mov", "keep.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_ReservedRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "@eaDir")
	touch(t, root, "inside.mp4")
	if got := walkNames(t, root); len(got) != 0 {
		t.Errorf("got %v, want nothing under a reserved root", got)
	}
}

func TestWalk_ExcludesArtifacts(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "SYNOPHOTO_FILM_H264.mp4")
	touch(t, dir, "SYNOPHOTO_FILM_M.mp4")
	touch(t, dir, "SYNOPHOTO_FILM_MPEG4.mp4")
	touch(t, dir, "broken.avi.repaired.mp4")
	touch(t, dir, "real.mp4")

	got := walkNames(t, dir)
	if !reflect.DeepEqual(got, []string{"real.mp4"}) {
		t.Errorf("got %v, want [real.mp4]", got)
	}
}

func TestWalk_RecursiveLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Show", "Season 02"), "ep01.mkv")
	touch(t, filepath.Join(dir, "Show", "Season 01"), "ep02.mkv")
	touch(t, filepath.Join(dir, "Show", "Season 01"), "ep01.mkv")

	got := walkNames(t, dir)
	want := []string{"Show/Season 01/ep01.mkv", "Show/Season 01/ep02.mkv", "Show/Season 02/ep01.mkv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	err := Walker{}.Walk(filepath.Join(t.TempDir(), "nope"), func(Candidate) error { return nil })
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Walk(missing) error = %v, want not-exist", err)
	}
}

func TestWalk_UnreadableSubdirSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	touch(t, dir, "ok.mp4")
	locked := filepath.Join(dir, "locked")
	touch(t, locked, "hidden.mp4")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	var reported []string
	w := Walker{OnError: func(path string, _ error) { reported = append(reported, path) }}
	var got []string
	if err := w.Walk(dir, func(c Candidate) error {
		got = append(got, c.Name)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ok.mp4"}) {
		t.Errorf("got %v, want [ok.mp4]", got)
	}
	if len(reported) != 1 || reported[0] != locked {
		t.Errorf("reported %v, want [%s]", reported, locked)
	}
}

func TestWalk_CallbackErrorStops(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	touch(t, dir, "b.mp4")
	stop := errors.New("stop")
	n := 0
	err := Walker{}.Walk(dir, func(Candidate) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("Walk() = %v after %d calls, want stop after 1", err, n)
	}
}

// --- Pipeline tests ---

func TestRun_CreatesThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "clip.mp4")
	h := newHarness()

	stats := h.run(t, dir)

	want := RunStats{Total: 1, Processed: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	thumb := naming.TargetFor(src).Thumb
	if !exists(thumb) {
		t.Errorf("thumbnail missing at %s", thumb)
	}
	if len(h.extractor.calls) != 1 || h.extractor.calls[0].seek != 1.0 {
		t.Errorf("extract calls = %+v, want one at seek 1", h.extractor.calls)
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	h := newHarness()
	h.run(t, dir)

	h2 := newHarness()
	stats := h2.run(t, dir)
	if stats != (RunStats{Total: 1, Skipped: 1}) {
		t.Errorf("second run stats = %+v, want one skipped", stats)
	}
	if len(h2.extractor.calls) != 0 {
		t.Errorf("extractor invoked %d times on existing thumbnail", len(h2.extractor.calls))
	}
}

func TestRun_OverwriteRegenerates(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	newHarness().run(t, dir)

	h := newHarness()
	h.cfg.Overwrite = true
	stats := h.run(t, dir)
	if stats.Processed != 1 || len(h.extractor.calls) != 1 {
		t.Errorf("overwrite run: stats %+v, %d extract calls", stats, len(h.extractor.calls))
	}
}

func TestRun_InvalidWithoutRepairIsAbandoned(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "broken.avi")
	target := naming.TargetFor(src)
	touch(t, target.Dir, "SYNOPHOTO_THUMB_M.jpg.fail")

	h := newHarness()
	h.prober.invalid["broken.avi"] = true
	stats := h.run(t, dir)

	if stats != (RunStats{Total: 1, Errors: 1}) {
		t.Errorf("stats = %+v, want one error", stats)
	}
	if len(h.extractor.calls) != 0 || len(h.repairer.calls) != 0 {
		t.Errorf("no tool should run: extract %d, repair %d", len(h.extractor.calls), len(h.repairer.calls))
	}
	if exists(target.Dir) {
		t.Errorf("empty target dir %s left behind after abandonment", target.Dir)
	}
	r := h.observer.results[0]
	if r.Err == nil || r.Err.Kind != KindProbe {
		t.Errorf("failure = %v, want probe kind", r.Err)
	}
}

func TestRun_SkipErrorsUsesOriginal(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "broken.avi")
	h := newHarness()
	h.cfg.SkipErrors = true
	h.prober.invalid["broken.avi"] = true

	stats := h.run(t, dir)
	if stats.Processed != 1 {
		t.Errorf("stats = %+v, want processed", stats)
	}
	if len(h.extractor.calls) != 1 || h.extractor.calls[0].src != src {
		t.Errorf("extract calls = %+v, want original source", h.extractor.calls)
	}
}

func TestRun_RepairSuccess(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "broken.avi")
	h := newHarness()
	h.cfg.Repair = true
	h.prober.invalid["broken.avi"] = true

	stats := h.run(t, dir)
	if stats != (RunStats{Total: 1, Processed: 1, Repaired: 1}) {
		t.Errorf("stats = %+v", stats)
	}
	if got := h.extractor.calls[0].src; got != naming.RepairPath(src) {
		t.Errorf("extracted from %s, want repaired copy", got)
	}
	if exists(naming.RepairPath(src)) {
		t.Error("repaired copy outlived its candidate")
	}
}

func TestRun_RepairedThenExtractionFails(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "broken.mkv")
	h := newHarness()
	h.cfg.Repair = true
	h.prober.invalid["broken.mkv"] = true
	h.extractor.fail["broken.mkv.repaired.mp4"] = true

	stats := h.run(t, dir)
	if stats != (RunStats{Total: 1, Repaired: 1, Errors: 1}) {
		t.Errorf("stats = %+v, want one repaired error", stats)
	}
	if len(h.extractor.calls) != 1 || h.extractor.calls[0].src != naming.RepairPath(src) {
		t.Errorf("extract calls = %+v, want one from the repaired copy", h.extractor.calls)
	}
	if exists(naming.RepairPath(src)) {
		t.Error("repaired copy outlived a failed extraction")
	}
	if exists(naming.TargetFor(src).Dir) {
		t.Error("empty target dir not removed after extraction failure")
	}
	if r := h.observer.results[0]; !r.Repaired || r.Err == nil || r.Err.Kind != KindExtraction {
		t.Errorf("result = %+v, want repaired with extraction failure", r)
	}
}

func TestRun_RepairFailure(t *testing.T) {
	tests := []struct {
		name       string
		skipErrors bool
		want       RunStats
		extracts   int
	}{
		{"abandoned", false, RunStats{Total: 1, Errors: 1}, 0},
		{"skip errors falls through", true, RunStats{Total: 1, Processed: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, "broken.avi")
			h := newHarness()
			h.cfg.Repair = true
			h.cfg.SkipErrors = tt.skipErrors
			h.repairer.fail = true
			h.prober.invalid["broken.avi"] = true

			stats := h.run(t, dir)
			if stats != tt.want {
				t.Errorf("stats = %+v, want %+v", stats, tt.want)
			}
			if len(h.extractor.calls) != tt.extracts {
				t.Errorf("extract calls = %d, want %d", len(h.extractor.calls), tt.extracts)
			}
			if !tt.skipErrors {
				if r := h.observer.results[0]; r.Err == nil || r.Err.Kind != KindRepair {
					t.Errorf("failure = %v, want repair kind", r.Err)
				}
			}
		})
	}
}

func TestRun_ExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "clip.mkv")
	h := newHarness()
	h.extractor.fail["clip.mkv"] = true

	stats := h.run(t, dir)
	if stats != (RunStats{Total: 1, Errors: 1}) {
		t.Errorf("stats = %+v, want one error", stats)
	}
	if exists(naming.TargetFor(src).Dir) {
		t.Error("empty target dir not removed after extraction failure")
	}
	if r := h.observer.results[0]; r.Err == nil || r.Err.Kind != KindExtraction {
		t.Errorf("failure = %v, want extraction kind", r.Err)
	}
}

func TestRun_FailedOverwriteKeepsPriorThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "clip.mkv")
	newHarness().run(t, dir)
	thumb := naming.TargetFor(src).Thumb
	prior, err := os.ReadFile(thumb)
	if err != nil {
		t.Fatal(err)
	}

	h := newHarness()
	h.cfg.Overwrite = true
	h.extractor.fail["clip.mkv"] = true
	h.run(t, dir)

	got, err := os.ReadFile(thumb)
	if err != nil {
		t.Fatalf("prior thumbnail gone: %v", err)
	}
	if string(got) != string(prior) {
		t.Errorf("thumbnail changed: %q -> %q", prior, got)
	}
}

func TestRun_ShortClipSeekClamped(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "short.mp4")
	touch(t, dir, "long.mp4")
	h := newHarness()
	h.prober.durations["short.mp4"] = 0.5

	h.run(t, dir)
	seeks := map[string]float64{}
	for _, c := range h.extractor.calls {
		seeks[filepath.Base(c.src)] = c.seek
	}
	if seeks["short.mp4"] != 0.25 || seeks["long.mp4"] != 1.0 {
		t.Errorf("seeks = %v, want short 0.25 and long 1", seeks)
	}
}

func TestRun_EmptyLibrary(t *testing.T) {
	h := newHarness()
	stats := h.run(t, t.TempDir())
	if stats != (RunStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if len(h.observer.progress) != 0 {
		t.Errorf("progress events on empty library: %v", h.observer.progress)
	}
	if h.observer.finished == nil {
		t.Error("OnFinish not called")
	}
}

func TestRun_MissingRootIsFatal(t *testing.T) {
	h := newHarness()
	p := New(&h.cfg, logging.Discard(), h.prober, h.repairer, h.extractor)
	if _, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Run(missing root) should fail")
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(&h.cfg, logging.Discard(), h.prober, h.repairer, h.extractor, h.observer)
	if _, err := p.Run(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if h.observer.finished == nil {
		t.Error("OnFinish not called on cancellation")
	}
}

func TestRun_CancelledMidRun(t *testing.T) {
	dir := t.TempDir()
	const files, cancelAt = 10, 3
	for i := 0; i < files; i++ {
		touch(t, dir, fmt.Sprintf("clip%02d.mp4", i))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness()
	h.extractor.onCall = func(n int) {
		if n == cancelAt {
			cancel()
		}
	}
	p := New(&h.cfg, logging.Discard(), h.prober, h.repairer, h.extractor, h.observer)
	stats, err := p.Run(ctx, dir)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if n := len(h.extractor.calls); n != cancelAt {
		t.Errorf("extract calls = %d, want %d (nothing scheduled after cancel)", n, cancelAt)
	}
	if stats.Total != cancelAt || stats.Total >= files {
		t.Errorf("stats = %+v, want %d partial results", stats, cancelAt)
	}
	if h.observer.finished == nil {
		t.Fatal("OnFinish not called on cancellation")
	}
	if *h.observer.finished != stats {
		t.Errorf("OnFinish stats = %+v, want %+v", *h.observer.finished, stats)
	}
}

func TestRun_ProgressEvents(t *testing.T) {
	tests := []struct {
		files    int
		percents []int
	}{
		{20, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
		{3, []int{33, 66, 100}},
		{1, []int{100}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d files", tt.files), func(t *testing.T) {
			dir := t.TempDir()
			for i := 0; i < tt.files; i++ {
				touch(t, dir, fmt.Sprintf("clip%02d.mp4", i))
			}
			h := newHarness()
			h.run(t, dir)

			if h.observer.started != tt.files {
				t.Errorf("OnStart(%d), want %d", h.observer.started, tt.files)
			}
			var got []int
			for _, p := range h.observer.progress {
				got = append(got, p.Percent)
			}
			if !reflect.DeepEqual(got, tt.percents) {
				t.Errorf("progress = %v, want %v", got, tt.percents)
			}
		})
	}
}

func TestRun_ConcurrentWorkers(t *testing.T) {
	dir := t.TempDir()
	const n = 40
	for i := 0; i < n; i++ {
		sub := filepath.Join(dir, fmt.Sprintf("album%d", i%5))
		touch(t, sub, fmt.Sprintf("clip%02d.mp4", i))
	}
	touch(t, dir, "bad.mkv")
	touch(t, dir, "fail.mov")

	h := newHarness()
	h.cfg.Workers = 4
	h.prober.invalid["bad.mkv"] = true
	h.extractor.fail["fail.mov"] = true

	stats := h.run(t, dir)
	want := RunStats{Total: n + 2, Processed: n, Errors: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if stats.Total != stats.Processed+stats.Skipped+stats.Errors {
		t.Errorf("outcomes do not sum to total: %+v", stats)
	}
	if len(h.observer.results) != n+2 {
		t.Errorf("OnFileDone called %d times, want %d", len(h.observer.results), n+2)
	}
	if *h.observer.finished != stats {
		t.Errorf("OnFinish stats = %+v, want %+v", *h.observer.finished, stats)
	}
}

// --- Stats and report tests ---

func TestStats_Record(t *testing.T) {
	var s Stats
	s.Record(FileResult{Outcome: OutcomeProcessed, Repaired: true})
	s.Record(FileResult{Outcome: OutcomeSkipped})
	s.Record(FileResult{Outcome: OutcomeError, Repaired: true})
	s.Record(FileResult{Outcome: OutcomeError})

	want := RunStats{Total: 4, Processed: 1, Skipped: 1, Repaired: 2, Errors: 2}
	if got := s.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestReport_Lines(t *testing.T) {
	stats := RunStats{Total: 5, Processed: 2, Skipped: 1, Repaired: 1, Errors: 2}
	rule := "=================================================="

	got := Report{Stats: stats, RepairEnabled: true}.Lines()
	want := []string{
		rule,
		"Process Summary:",
		"  Total video files processed: 5",
		"  Thumbnails successfully created: 2",
		"  Files skipped (already exist): 1",
		"  Errors encountered: 2",
		"  Files successfully repaired: 1",
		rule,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() =\n%q\nwant\n%q", got, want)
	}

	got = Report{Stats: stats}.Lines()
	if len(got) != len(want)-1 {
		t.Errorf("repair line should be omitted when repair is disabled: %q", got)
	}
}

func TestFailure_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&Failure{Kind: KindExtraction, Path: "/v/a.mp4", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("Failure should unwrap to its cause")
	}
	if got := err.Error(); got != "extraction failed for /v/a.mp4: boom" {
		t.Errorf("Error() = %q", got)
	}
}
